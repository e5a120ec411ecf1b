package service

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"go.uber.org/zap"

	"story-visualizer/internal/assetstore"
	"story-visualizer/internal/cache"
	"story-visualizer/internal/ledger"
	"story-visualizer/internal/models"
	"story-visualizer/internal/provider"
)

// GenerationService coordinates paid and free asset generation. The premium
// flows follow a saga: deduct, call the provider, save, and on any failure
// after the deduction issue a compensating fund before surfacing the error.
type GenerationService struct {
	ledger  *ledger.Ledger
	store   *assetstore.Store
	prompts PromptRecorder

	freeNarration    provider.NarrationProvider
	premiumNarration provider.NarrationProvider
	freeImage        provider.ImageProvider
	premiumImage     provider.ImageProvider

	voiceCache      *cache.VoiceCache
	providerTimeout time.Duration
	logger          *zap.Logger
}

// PromptRecorder is the append-only audit sink for premium image prompts.
type PromptRecorder interface {
	Create(ctx context.Context, prompt *models.Prompt) error
}

// GenerationConfig wires the service's collaborators.
type GenerationConfig struct {
	Ledger           *ledger.Ledger
	Store            *assetstore.Store
	Prompts          PromptRecorder
	FreeNarration    provider.NarrationProvider
	PremiumNarration provider.NarrationProvider
	FreeImage        provider.ImageProvider
	PremiumImage     provider.ImageProvider
	VoiceCache       *cache.VoiceCache
	ProviderTimeout  time.Duration
}

func NewGenerationService(cfg GenerationConfig, logger *zap.Logger) *GenerationService {
	timeout := cfg.ProviderTimeout
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	return &GenerationService{
		ledger:           cfg.Ledger,
		store:            cfg.Store,
		prompts:          cfg.Prompts,
		freeNarration:    cfg.FreeNarration,
		premiumNarration: cfg.PremiumNarration,
		freeImage:        cfg.FreeImage,
		premiumImage:     cfg.PremiumImage,
		voiceCache:       cfg.VoiceCache,
		providerTimeout:  timeout,
		logger:           logger.Named("GenerationService"),
	}
}

// NarrationResult reports a finished narration generation.
type NarrationResult struct {
	AudioURL string                  `json:"audio_url"`
	Balance  *models.BalanceSnapshot `json:"balance,omitempty"`
}

// ImageGenResult reports a finished image generation.
type ImageGenResult struct {
	ImageURL string                  `json:"image_url"`
	Balance  *models.BalanceSnapshot `json:"balance,omitempty"`
}

// NarrateFree synthesizes narration through the free provider and stores it
// as the scene's narration track. No ledger interaction.
func (g *GenerationService) NarrateFree(ctx context.Context, storyID string, chapterID, sceneID int, text, language string) (*NarrationResult, error) {
	if g.freeNarration == nil {
		return nil, fmt.Errorf("free narration provider not configured: %w", models.ErrProvider)
	}
	if text == "" {
		return nil, fmt.Errorf("content is required: %w", models.ErrValidation)
	}

	callCtx, cancel := context.WithTimeout(ctx, g.providerTimeout)
	defer cancel()

	audio, err := g.freeNarration.Synthesize(callCtx, text, provider.NarrationOptions{Language: language})
	if err != nil {
		return nil, err
	}
	if err := g.store.WriteSceneFile(storyID, chapterID, sceneID, assetstore.NarrationFile, audio); err != nil {
		return nil, err
	}
	return &NarrationResult{
		AudioURL: g.store.FileURL(storyID, chapterID, sceneID, assetstore.NarrationFile),
	}, nil
}

// NarratePremium deducts rate points, synthesizes through the premium
// provider and stores the narration. The deduction is funded back when the
// provider call or the save fails.
func (g *GenerationService) NarratePremium(ctx context.Context, accessID, storyID string, chapterID, sceneID, rate int, voiceID, text string) (*NarrationResult, error) {
	if g.premiumNarration == nil {
		return nil, fmt.Errorf("premium narration provider not configured: %w", models.ErrProvider)
	}
	if text == "" {
		return nil, fmt.Errorf("content is required: %w", models.ErrValidation)
	}

	snapshot, err := g.ledger.Deduct(ctx, accessID, rate)
	if err != nil {
		return nil, err
	}

	callCtx, cancel := context.WithTimeout(ctx, g.providerTimeout)
	defer cancel()

	audio, err := g.premiumNarration.Synthesize(callCtx, text, provider.NarrationOptions{VoiceID: voiceID})
	if err != nil {
		return nil, g.refund(ctx, accessID, rate, err)
	}
	if err := g.store.WriteSceneFile(storyID, chapterID, sceneID, assetstore.NarrationFile, audio); err != nil {
		return nil, g.refund(ctx, accessID, rate, err)
	}

	return &NarrationResult{
		AudioURL: g.store.FileURL(storyID, chapterID, sceneID, assetstore.NarrationFile),
		Balance:  &snapshot,
	}, nil
}

// GenerateImageFree fetches scene artwork through the free (search) provider.
func (g *GenerationService) GenerateImageFree(ctx context.Context, storyID string, chapterID, sceneID int, query string) (*ImageGenResult, error) {
	if g.freeImage == nil {
		return nil, fmt.Errorf("free image provider not configured: %w", models.ErrProvider)
	}

	callCtx, cancel := context.WithTimeout(ctx, g.providerTimeout)
	defer cancel()

	result, err := g.freeImage.Generate(callCtx, query, provider.ImageOptions{})
	if err != nil {
		return nil, err
	}
	filename, err := g.store.ReplaceSceneImage(storyID, chapterID, sceneID, result.Ext, result.Data)
	if err != nil {
		return nil, err
	}
	return &ImageGenResult{
		ImageURL: g.store.FileURL(storyID, chapterID, sceneID, filename),
	}, nil
}

// GenerateImagePremium deducts rate points, generates artwork through the AI
// provider, stores it as the scene image plus a per-account copy, and appends
// the prompt audit record. The deduction is funded back when generation or
// the save fails.
func (g *GenerationService) GenerateImagePremium(ctx context.Context, accessID, storyID string, chapterID, sceneID, rate int, engine, size, customPrompt string) (*ImageGenResult, error) {
	if g.premiumImage == nil {
		return nil, fmt.Errorf("premium image provider not configured: %w", models.ErrProvider)
	}
	if customPrompt == "" {
		return nil, fmt.Errorf("custom_prompt is required: %w", models.ErrValidation)
	}

	snapshot, err := g.ledger.Deduct(ctx, accessID, rate)
	if err != nil {
		return nil, err
	}

	callCtx, cancel := context.WithTimeout(ctx, g.providerTimeout)
	defer cancel()

	result, err := g.premiumImage.Generate(callCtx, customPrompt, provider.ImageOptions{Engine: engine, Size: size})
	if err != nil {
		return nil, g.refund(ctx, accessID, rate, err)
	}
	filename, err := g.store.ReplaceSceneImage(storyID, chapterID, sceneID, result.Ext, result.Data)
	if err != nil {
		return nil, g.refund(ctx, accessID, rate, err)
	}

	// Keep a copy under the caller's personal subtree.
	if _, err := g.store.SaveUserImage(accessID, result.Data); err != nil {
		g.logger.Warn("Failed to copy generated image to user subtree",
			zap.String("accessID", accessID), zap.Error(err))
	}

	// The audit record is best-effort: the artifact is already paid for and
	// saved, so a logging failure must not fail the request.
	record := &models.Prompt{
		PromptID:  newPromptID(),
		StoryID:   storyID,
		ChapterID: fmt.Sprintf("%d", chapterID),
		AccessID:  accessID,
		Content:   customPrompt,
	}
	if err := g.prompts.Create(ctx, record); err != nil {
		g.logger.Error("Failed to append prompt audit record",
			zap.String("promptID", record.PromptID), zap.Error(err))
	}

	return &ImageGenResult{
		ImageURL: g.store.FileURL(storyID, chapterID, sceneID, filename),
		Balance:  &snapshot,
	}, nil
}

// Voices lists the premium provider's voices, through the cache when one is
// configured.
func (g *GenerationService) Voices(ctx context.Context) ([]provider.Voice, error) {
	if voices, ok := g.voiceCache.Get(ctx); ok {
		return voices, nil
	}

	src := g.premiumNarration
	if src == nil {
		src = g.freeNarration
	}
	if src == nil {
		return nil, fmt.Errorf("no narration provider configured: %w", models.ErrProvider)
	}

	callCtx, cancel := context.WithTimeout(ctx, g.providerTimeout)
	defer cancel()

	voices, err := src.Voices(callCtx)
	if err != nil {
		return nil, err
	}
	g.voiceCache.Set(ctx, voices)
	return voices, nil
}

// refund issues the compensating fund of a failed premium flow. The original
// failure is always what the caller sees; a refund failure is an operational
// incident and is logged as such.
func (g *GenerationService) refund(ctx context.Context, accessID string, rate int, cause error) error {
	// The request context may already be cancelled (that cancellation can be
	// the cause itself); the compensation must still land.
	if _, err := g.ledger.Fund(context.WithoutCancel(ctx), accessID, rate); err != nil {
		g.logger.Error("Compensating refund failed, manual correction required",
			zap.String("accessID", accessID), zap.Int("rate", rate),
			zap.NamedError("cause", cause), zap.Error(err))
	} else {
		g.logger.Info("Deduction refunded after failed generation",
			zap.String("accessID", accessID), zap.Int("rate", rate), zap.NamedError("cause", cause))
	}
	return cause
}

// newPromptID builds the time+random composite id used for prompt records.
func newPromptID() string {
	return fmt.Sprintf("%d-%d", time.Now().UnixMilli(), rand.Uint32())
}
