package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"story-visualizer/internal/assetstore"
	"story-visualizer/internal/config"
	"story-visualizer/internal/ledger"
	"story-visualizer/internal/media"
	"story-visualizer/internal/provider"
	"story-visualizer/internal/repository/memory"
	"story-visualizer/internal/scanner"
	"story-visualizer/internal/service"
)

type stubNarration struct{}

func (stubNarration) Synthesize(context.Context, string, provider.NarrationOptions) ([]byte, error) {
	return []byte("mp3"), nil
}

func (stubNarration) Voices(context.Context) ([]provider.Voice, error) {
	return []provider.Voice{{ID: "v1", Name: "Stub"}}, nil
}

type stubImage struct{}

func (stubImage) Generate(context.Context, string, provider.ImageOptions) (*provider.ImageResult, error) {
	return &provider.ImageResult{Data: []byte("png"), Ext: "png"}, nil
}

type stubEncoder struct{}

func (stubEncoder) ProbeDuration(context.Context, string) (float64, error) { return 1, nil }

func (stubEncoder) EncodeSegment(context.Context, string, string, float64, string) error {
	return nil
}

func (stubEncoder) Concat(context.Context, []string, string) error { return nil }

func (stubEncoder) MixAudio(context.Context, string, string, string) error { return nil }

func (stubEncoder) BurnSubtitles(context.Context, string, string, string) error {
	return nil
}

type fixture struct {
	router *gin.Engine
	store  *assetstore.Store
	ledger *ledger.Ledger
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	gin.SetMode(gin.TestMode)
	log := zap.NewNop()

	cfg := &config.Config{
		AppName:        "StoryAI Visualizer",
		Port:           "8080",
		BaseURL:        "http://localhost:8080",
		Environment:    "test",
		Version:        "1.0.0",
		StartingPoints: 25,
	}

	store := assetstore.New(t.TempDir(), cfg.BaseURL, log)
	accountRepo := memory.NewAccountRepository()
	storyRepo := memory.NewStoryRepository()
	promptRepo := memory.NewPromptRepository()
	purchaseRepo := memory.NewPurchaseRepository()

	pointLedger := ledger.New(accountRepo, cfg.StartingPoints, log)
	completionScanner := scanner.New(store, log)
	assembler := media.NewAssembler(store, completionScanner, stubEncoder{}, log)

	storyService := service.NewStoryService(storyRepo, pointLedger, store, log)
	generationService := service.NewGenerationService(service.GenerationConfig{
		Ledger:           pointLedger,
		Store:            store,
		Prompts:          promptRepo,
		FreeNarration:    stubNarration{},
		PremiumNarration: stubNarration{},
		FreeImage:        stubImage{},
		PremiumImage:     stubImage{},
	}, log)
	purchaseService := service.NewPurchaseService(purchaseRepo, log)
	statsService := service.NewStatsService(accountRepo, storyRepo, promptRepo)

	h := New(cfg, storyService, generationService, purchaseService, statsService,
		pointLedger, completionScanner, assembler, store, log)

	router := gin.New()
	h.RegisterRoutes(router.Group("/api"))

	return &fixture{router: router, store: store, ledger: pointLedger}
}

func (f *fixture) do(t *testing.T, method, path string, body any) (int, map[string]any) {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)

	var payload map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &payload), "body: %s", w.Body.String())
	return w.Code, payload
}

func TestPremiumImageScenario(t *testing.T) {
	f := newFixture(t)

	code, body := f.do(t, http.MethodPost, "/api/story/initialize", gin.H{
		"access_id": "acct-1", "story_id": "42", "chapter_id": 1,
	})
	require.Equal(t, http.StatusOK, code)
	account := body["account"].(map[string]any)
	assert.EqualValues(t, 25, account["points"])

	code, body = f.do(t, http.MethodPost, "/api/scenario/initialize", gin.H{
		"story_id": "42", "chapter_id": 1,
	})
	require.Equal(t, http.StatusOK, code)
	assert.EqualValues(t, 1, body["scene_id"])

	code, body = f.do(t, http.MethodPost, "/api/scenario/image/premium/create", gin.H{
		"access_id": "acct-1", "story_id": "42", "chapter_id": 1, "scene_id": 1,
		"rate": 10, "custom_prompt": "a castle at dusk",
	})
	require.Equal(t, http.StatusOK, code)
	balance := body["balance"].(map[string]any)
	assert.EqualValues(t, 15, balance["afterAction"])

	found, err := f.store.FindImage("42", 1, 1)
	require.NoError(t, err)
	assert.Equal(t, "image.png", found)

	// Second call exceeds the balance: 401, no deduction.
	code, body = f.do(t, http.MethodPost, "/api/scenario/image/premium/create", gin.H{
		"access_id": "acct-1", "story_id": "42", "chapter_id": 1, "scene_id": 1,
		"rate": 20, "custom_prompt": "a bigger castle",
	})
	assert.Equal(t, http.StatusUnauthorized, code)
	assert.Equal(t, "error", body["status"])

	acc, err := f.ledger.EnsureAccount(context.Background(), "acct-1")
	require.NoError(t, err)
	assert.Equal(t, 15, acc.Points)
}

func TestPremiumGenerationForeignStoryForbidden(t *testing.T) {
	f := newFixture(t)

	code, _ := f.do(t, http.MethodPost, "/api/story/initialize", gin.H{
		"access_id": "acct-1", "story_id": "42", "chapter_id": 1,
	})
	require.Equal(t, http.StatusOK, code)

	// acct-2 needs an account, but not ownership of story 42.
	_, err := f.ledger.EnsureAccount(context.Background(), "acct-2")
	require.NoError(t, err)

	code, body := f.do(t, http.MethodPost, "/api/scenario/image/premium/create", gin.H{
		"access_id": "acct-2", "story_id": "42", "chapter_id": 1, "scene_id": 1,
		"rate": 10, "custom_prompt": "a heist",
	})
	assert.Equal(t, http.StatusForbidden, code)
	assert.Equal(t, "error", body["status"])
}

func TestContentSaveFetch(t *testing.T) {
	f := newFixture(t)

	code, _ := f.do(t, http.MethodPost, "/api/scenario/content/save", gin.H{
		"story_id": "42", "chapter_id": 1, "scene_id": 1, "content": "once upon a time",
	})
	require.Equal(t, http.StatusOK, code)

	code, body := f.do(t, http.MethodPost, "/api/scenario/content/fetch", gin.H{
		"story_id": "42", "chapter_id": 1, "scene_id": 1,
	})
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "once upon a time", body["content"])
}

func TestContentFetchMissingScene(t *testing.T) {
	f := newFixture(t)

	code, body := f.do(t, http.MethodPost, "/api/scenario/content/fetch", gin.H{
		"story_id": "42", "chapter_id": 1, "scene_id": 9,
	})
	assert.Equal(t, http.StatusNotFound, code)
	assert.Equal(t, "error", body["status"])
}

func TestBindValidation(t *testing.T) {
	f := newFixture(t)

	code, body := f.do(t, http.MethodPost, "/api/story/initialize", gin.H{
		"access_id": "acct-1",
	})
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "error", body["status"])
}

func TestTokenFundAndDeduct(t *testing.T) {
	f := newFixture(t)
	_, err := f.ledger.EnsureAccount(context.Background(), "acct-1")
	require.NoError(t, err)

	code, body := f.do(t, http.MethodPost, "/api/token/fund", gin.H{
		"access_id": "acct-1", "amount": 5,
	})
	require.Equal(t, http.StatusOK, code)
	balance := body["balance"].(map[string]any)
	assert.EqualValues(t, 25, balance["beforeAction"])
	assert.EqualValues(t, 30, balance["afterAction"])

	code, body = f.do(t, http.MethodPost, "/api/token/deduct", gin.H{
		"access_id": "acct-1", "amount": 40,
	})
	assert.Equal(t, http.StatusUnauthorized, code)
	assert.Equal(t, "error", body["status"])
}

func TestTokenUnknownAccountUnauthorized(t *testing.T) {
	f := newFixture(t)

	code, body := f.do(t, http.MethodPost, "/api/token/fund", gin.H{
		"access_id": "acct-nobody", "amount": 5,
	})
	assert.Equal(t, http.StatusUnauthorized, code)
	assert.Equal(t, "error", body["status"])

	code, body = f.do(t, http.MethodPost, "/api/token/deduct", gin.H{
		"access_id": "acct-nobody", "amount": 5,
	})
	assert.Equal(t, http.StatusUnauthorized, code)
	assert.Equal(t, "error", body["status"])
}

func TestPurchaseLifecycle(t *testing.T) {
	f := newFixture(t)
	purchase := gin.H{
		"property_of": "acct-1", "purchase_by": "acct-2",
		"story_id": "42", "chapter_id": "1",
	}

	code, body := f.do(t, http.MethodPost, "/api/purchase/validate", purchase)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, false, body["purchased"])

	code, _ = f.do(t, http.MethodPost, "/api/purchase/create", purchase)
	require.Equal(t, http.StatusOK, code)

	code, body = f.do(t, http.MethodPost, "/api/purchase/create", purchase)
	assert.Equal(t, http.StatusUnauthorized, code)
	assert.Equal(t, "error", body["status"])

	code, body = f.do(t, http.MethodPost, "/api/purchase/validate", purchase)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, true, body["purchased"])

	code, body = f.do(t, http.MethodGet, "/api/purchase/transactions", nil)
	require.Equal(t, http.StatusOK, code)
	assert.Len(t, body["transactions"], 1)

	code, _ = f.do(t, http.MethodPost, "/api/purchase/refund", purchase)
	require.Equal(t, http.StatusOK, code)

	code, body = f.do(t, http.MethodPost, "/api/purchase/refund", purchase)
	assert.Equal(t, http.StatusNotFound, code)
	assert.Equal(t, "error", body["status"])
}

func TestStatisticsCounts(t *testing.T) {
	f := newFixture(t)

	code, body := f.do(t, http.MethodGet, "/api/statistics/access/count", nil)
	require.Equal(t, http.StatusOK, code)
	assert.EqualValues(t, 0, body["count"])
	assert.NotContains(t, body, "earliestDate")

	_, err := f.ledger.EnsureAccount(context.Background(), "acct-1")
	require.NoError(t, err)

	code, body = f.do(t, http.MethodGet, "/api/statistics/access/count", nil)
	require.Equal(t, http.StatusOK, code)
	assert.EqualValues(t, 1, body["count"])
	assert.Contains(t, body, "earliestDate")
}

func TestLandingPayload(t *testing.T) {
	f := newFixture(t)

	code, body := f.do(t, http.MethodGet, "/api/", nil)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "success", body["status"])
	assert.Equal(t, "StoryAI Visualizer", body["app"])
	assert.Equal(t, "test", body["environment"])
}

func TestVoices(t *testing.T) {
	f := newFixture(t)

	code, body := f.do(t, http.MethodGet, "/api/narrate/voices", nil)
	require.Equal(t, http.StatusOK, code)
	voices := body["voices"].([]any)
	require.Len(t, voices, 1)
}

func TestSceneCountEndpoint(t *testing.T) {
	f := newFixture(t)

	code, _ := f.do(t, http.MethodPost, "/api/story/initialize", gin.H{
		"access_id": "acct-1", "story_id": "42", "chapter_id": 1,
	})
	require.Equal(t, http.StatusOK, code)
	for i := 0; i < 2; i++ {
		code, _ = f.do(t, http.MethodPost, "/api/scenario/initialize", gin.H{
			"story_id": "42", "chapter_id": 1,
		})
		require.Equal(t, http.StatusOK, code)
	}

	code, body := f.do(t, http.MethodGet, "/api/scenario/getCount?story_id=42&chapter_id=1", nil)
	require.Equal(t, http.StatusOK, code)
	assert.EqualValues(t, 2, body["count"])
}

func TestMoveSceneEndpoints(t *testing.T) {
	f := newFixture(t)

	require.NoError(t, f.store.WriteSceneFile("42", 1, 1, assetstore.ContentFile, []byte("one")))
	require.NoError(t, f.store.WriteSceneFile("42", 1, 2, assetstore.ContentFile, []byte("two")))

	code, _ := f.do(t, http.MethodPost, "/api/scenario/adjust/position/right", gin.H{
		"story_id": "42", "chapter_id": 1, "scene_id": 1,
	})
	require.Equal(t, http.StatusOK, code)

	data, err := f.store.ReadSceneFile("42", 1, 1, assetstore.ContentFile)
	require.NoError(t, err)
	assert.Equal(t, "two", string(data))

	// Moving the leftmost scene further left is rejected.
	code, body := f.do(t, http.MethodPost, "/api/scenario/adjust/position/left", gin.H{
		"story_id": "42", "chapter_id": 1, "scene_id": 1,
	})
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "error", body["status"])
}
