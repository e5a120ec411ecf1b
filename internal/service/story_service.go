package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"story-visualizer/internal/assetstore"
	"story-visualizer/internal/ledger"
	"story-visualizer/internal/models"
	"story-visualizer/internal/repository"
)

// StoryService drives the story/chapter/scene lifecycle: initialization,
// reordering, deletion and per-scene text/JSON asset I/O.
type StoryService struct {
	stories repository.StoryRepository
	ledger  *ledger.Ledger
	store   *assetstore.Store
	logger  *zap.Logger
}

func NewStoryService(stories repository.StoryRepository, l *ledger.Ledger, store *assetstore.Store, logger *zap.Logger) *StoryService {
	return &StoryService{
		stories: stories,
		ledger:  l,
		store:   store,
		logger:  logger.Named("StoryService"),
	}
}

// InitializeStory ensures the account, the story record and the chapter
// directory all exist. Ownership is fixed by the first record ever written
// for the story_id; a later init by a different account is rejected.
func (s *StoryService) InitializeStory(ctx context.Context, accessID, storyID string, chapterID int) (*models.Account, error) {
	if accessID == "" || storyID == "" || chapterID < 1 {
		return nil, fmt.Errorf("access_id, story_id and chapter_id are required: %w", models.ErrValidation)
	}

	account, err := s.ledger.EnsureAccount(ctx, accessID)
	if err != nil {
		return nil, err
	}

	if err := s.VerifyOwnership(ctx, accessID, storyID); err != nil {
		return nil, err
	}

	record := &models.Story{StoryID: storyID, ChapterID: chapterID, AccessID: accessID}
	if err := s.stories.Create(ctx, record); err != nil {
		return nil, err
	}

	if err := s.store.EnsureStoryChapter(storyID, chapterID); err != nil {
		return nil, err
	}

	s.logger.Info("Story initialized",
		zap.String("accessID", accessID), zap.String("storyID", storyID), zap.Int("chapterID", chapterID))
	return account, nil
}

// VerifyOwnership rejects callers that do not own the story. A story without
// any record yet belongs to nobody and passes.
func (s *StoryService) VerifyOwnership(ctx context.Context, accessID, storyID string) error {
	first, err := s.stories.FindFirstByStoryID(ctx, storyID)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return nil
		}
		return err
	}
	if first.AccessID != accessID {
		s.logger.Warn("Story ownership mismatch",
			zap.String("storyID", storyID), zap.String("owner", first.AccessID), zap.String("caller", accessID))
		return models.ErrForbidden
	}
	return nil
}

// InitializeChapter allocates the next chapter id for the story.
func (s *StoryService) InitializeChapter(_ context.Context, storyID string) (int, error) {
	if storyID == "" {
		return 0, fmt.Errorf("story_id is required: %w", models.ErrValidation)
	}
	return s.store.CreateChapter(storyID)
}

// InitializeScene allocates the next scene id in the chapter.
func (s *StoryService) InitializeScene(_ context.Context, storyID string, chapterID int) (int, error) {
	if storyID == "" || chapterID < 1 {
		return 0, fmt.Errorf("story_id and chapter_id are required: %w", models.ErrValidation)
	}
	return s.store.CreateScene(storyID, chapterID)
}

// MoveScene shifts a scene one position left (-1) or right (+1) by swapping
// directories with its neighbor.
func (s *StoryService) MoveScene(_ context.Context, storyID string, chapterID, sceneID, direction int) error {
	if storyID == "" || chapterID < 1 || sceneID < 1 {
		return fmt.Errorf("story_id, chapter_id and scene_id are required: %w", models.ErrValidation)
	}
	neighbor := sceneID + direction
	if neighbor < 1 {
		return fmt.Errorf("scene %d has no neighbor in that direction: %w", sceneID, models.ErrValidation)
	}
	return s.store.SwapSceneOrder(storyID, chapterID, sceneID, neighbor)
}

// DeleteScene removes a scene subtree.
func (s *StoryService) DeleteScene(_ context.Context, storyID string, chapterID, sceneID int) error {
	if storyID == "" || chapterID < 1 || sceneID < 1 {
		return fmt.Errorf("story_id, chapter_id and scene_id are required: %w", models.ErrValidation)
	}
	return s.store.DeleteScene(storyID, chapterID, sceneID)
}

// DeleteChapter removes a chapter subtree.
func (s *StoryService) DeleteChapter(_ context.Context, storyID string, chapterID int) error {
	if storyID == "" || chapterID < 1 {
		return fmt.Errorf("story_id and chapter_id are required: %w", models.ErrValidation)
	}
	return s.store.DeleteChapter(storyID, chapterID)
}

// SaveSceneText stores a text asset (content.txt or prompt.txt) for a scene.
func (s *StoryService) SaveSceneText(_ context.Context, storyID string, chapterID, sceneID int, filename, text string) error {
	if storyID == "" || chapterID < 1 || sceneID < 1 {
		return fmt.Errorf("story_id, chapter_id and scene_id are required: %w", models.ErrValidation)
	}
	return s.store.WriteSceneFile(storyID, chapterID, sceneID, filename, []byte(text))
}

// FetchSceneText reads a text asset for a scene.
func (s *StoryService) FetchSceneText(_ context.Context, storyID string, chapterID, sceneID int, filename string) (string, error) {
	if storyID == "" || chapterID < 1 || sceneID < 1 {
		return "", fmt.Errorf("story_id, chapter_id and scene_id are required: %w", models.ErrValidation)
	}
	data, err := s.store.ReadSceneFile(storyID, chapterID, sceneID, filename)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// SaveSfx stores the scene's sound-effect identifier list as JSON.
func (s *StoryService) SaveSfx(_ context.Context, storyID string, chapterID, sceneID int, effects []string) error {
	if storyID == "" || chapterID < 1 || sceneID < 1 {
		return fmt.Errorf("story_id, chapter_id and scene_id are required: %w", models.ErrValidation)
	}
	data, err := json.Marshal(effects)
	if err != nil {
		return fmt.Errorf("failed to encode sfx list: %w", err)
	}
	return s.store.WriteSceneFile(storyID, chapterID, sceneID, assetstore.SfxFile, data)
}

// FetchSfx reads the scene's sound-effect identifier list.
func (s *StoryService) FetchSfx(_ context.Context, storyID string, chapterID, sceneID int) ([]string, error) {
	if storyID == "" || chapterID < 1 || sceneID < 1 {
		return nil, fmt.Errorf("story_id, chapter_id and scene_id are required: %w", models.ErrValidation)
	}
	data, err := s.store.ReadSceneFile(storyID, chapterID, sceneID, assetstore.SfxFile)
	if err != nil {
		return nil, err
	}
	var effects []string
	if err := json.Unmarshal(data, &effects); err != nil {
		return nil, fmt.Errorf("corrupt sfx list: %w", err)
	}
	return effects, nil
}

// SceneCount returns the number of scenes in the chapter.
func (s *StoryService) SceneCount(_ context.Context, storyID string, chapterID int) (int, error) {
	if storyID == "" || chapterID < 1 {
		return 0, fmt.Errorf("story_id and chapter_id are required: %w", models.ErrValidation)
	}
	ids, err := s.store.ListScenes(storyID, chapterID)
	if err != nil {
		return 0, err
	}
	return len(ids), nil
}

// SceneAssets lists the scene's files grouped by extension, as public URLs.
func (s *StoryService) SceneAssets(_ context.Context, storyID string, chapterID, sceneID int) (map[string][]string, error) {
	if storyID == "" || chapterID < 1 || sceneID < 1 {
		return nil, fmt.Errorf("story_id, chapter_id and scene_id are required: %w", models.ErrValidation)
	}
	return s.store.ListSceneFilesByExtension(storyID, chapterID, sceneID)
}
