package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"story-visualizer/internal/assetstore"
	"story-visualizer/internal/ledger"
	"story-visualizer/internal/models"
	"story-visualizer/internal/repository/memory"
)

func newStoryFixture(t *testing.T) (*StoryService, *assetstore.Store) {
	t.Helper()
	log := zap.NewNop()
	store := assetstore.New(t.TempDir(), "http://localhost:8080", log)
	l := ledger.New(memory.NewAccountRepository(), 25, log)
	return NewStoryService(memory.NewStoryRepository(), l, store, log), store
}

func TestInitializeStoryCreatesAccountAndDirectories(t *testing.T) {
	svc, store := newStoryFixture(t)
	ctx := context.Background()

	account, err := svc.InitializeStory(ctx, "acct-1", "42", 1)
	require.NoError(t, err)
	assert.Equal(t, "acct-1", account.AccessID)
	assert.Equal(t, 25, account.Points)
	assert.True(t, store.ChapterExists("42", 1))
}

func TestInitializeStoryOwnershipFirstWriteWins(t *testing.T) {
	svc, _ := newStoryFixture(t)
	ctx := context.Background()

	_, err := svc.InitializeStory(ctx, "acct-1", "42", 1)
	require.NoError(t, err)

	// The owner may keep initializing chapters of their story.
	_, err = svc.InitializeStory(ctx, "acct-1", "42", 2)
	require.NoError(t, err)

	// Anyone else is rejected.
	_, err = svc.InitializeStory(ctx, "acct-2", "42", 3)
	assert.ErrorIs(t, err, models.ErrForbidden)
}

func TestInitializeStoryValidation(t *testing.T) {
	svc, _ := newStoryFixture(t)

	_, err := svc.InitializeStory(context.Background(), "", "42", 1)
	assert.ErrorIs(t, err, models.ErrValidation)

	_, err = svc.InitializeStory(context.Background(), "acct-1", "42", 0)
	assert.ErrorIs(t, err, models.ErrValidation)
}

func TestMoveSceneSwapsNeighbors(t *testing.T) {
	svc, store := newStoryFixture(t)
	ctx := context.Background()

	require.NoError(t, store.WriteSceneFile("42", 1, 1, assetstore.ContentFile, []byte("one")))
	require.NoError(t, store.WriteSceneFile("42", 1, 2, assetstore.ContentFile, []byte("two")))

	require.NoError(t, svc.MoveScene(ctx, "42", 1, 2, -1))

	data, err := store.ReadSceneFile("42", 1, 1, assetstore.ContentFile)
	require.NoError(t, err)
	assert.Equal(t, "two", string(data))
}

func TestMoveSceneLeftFromFirstPosition(t *testing.T) {
	svc, store := newStoryFixture(t)

	require.NoError(t, store.WriteSceneFile("42", 1, 1, assetstore.ContentFile, []byte("one")))

	err := svc.MoveScene(context.Background(), "42", 1, 1, -1)
	assert.ErrorIs(t, err, models.ErrValidation)
}

func TestSfxRoundTrip(t *testing.T) {
	svc, _ := newStoryFixture(t)
	ctx := context.Background()

	effects := []string{"rain", "thunder"}
	require.NoError(t, svc.SaveSfx(ctx, "42", 1, 1, effects))

	got, err := svc.FetchSfx(ctx, "42", 1, 1)
	require.NoError(t, err)
	assert.Equal(t, effects, got)
}

func TestSceneCount(t *testing.T) {
	svc, store := newStoryFixture(t)
	ctx := context.Background()

	require.NoError(t, store.EnsureStoryChapter("42", 1))
	for i := 0; i < 3; i++ {
		_, err := store.CreateScene("42", 1)
		require.NoError(t, err)
	}

	count, err := svc.SceneCount(ctx, "42", 1)
	require.NoError(t, err)
	assert.Equal(t, 3, count)
}
