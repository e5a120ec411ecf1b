// Package scanner walks a story's chapter/scene subtree and reports which
// scenes are complete. A scene is complete iff its narration, artwork and
// content text all exist at the same time; that triple is what the assembler
// needs per scene.
package scanner

import (
	"errors"
	"fmt"

	"go.uber.org/zap"

	"story-visualizer/internal/assetstore"
	"story-visualizer/internal/models"
)

// Entry is one complete scene in a manifest, with resolved public URLs.
type Entry struct {
	Chapter int    `json:"chapter"`
	Scene   int    `json:"scene"`
	Sound   string `json:"sound"`
	BgMusic string `json:"bg_music,omitempty"`
	Image   string `json:"image"`
	Context string `json:"context"`
}

// Scanner reads the asset hierarchy through the AssetStore only.
type Scanner struct {
	store  *assetstore.Store
	logger *zap.Logger
}

func New(store *assetstore.Store, logger *zap.Logger) *Scanner {
	return &Scanner{store: store, logger: logger.Named("CompletionScanner")}
}

// ScanChapter returns the chapter's complete scenes in ascending scene order.
// Incomplete scenes are skipped silently; they are not errors.
func (s *Scanner) ScanChapter(storyID string, chapterID int) ([]Entry, error) {
	sceneIDs, err := s.store.ListScenes(storyID, chapterID)
	if err != nil {
		return nil, err
	}

	entries := make([]Entry, 0, len(sceneIDs))
	for _, sceneID := range sceneIDs {
		entry, ok, err := s.scanScene(storyID, chapterID, sceneID)
		if err != nil {
			return nil, err
		}
		if ok {
			entries = append(entries, entry)
		}
	}
	return entries, nil
}

// ScanStory returns the complete scenes of every chapter, chapters ascending,
// scenes ascending within each chapter.
func (s *Scanner) ScanStory(storyID string) ([]Entry, error) {
	chapterIDs, err := s.store.ListChapters(storyID)
	if err != nil {
		return nil, err
	}

	var entries []Entry
	for _, chapterID := range chapterIDs {
		chapterEntries, err := s.ScanChapter(storyID, chapterID)
		if err != nil {
			return nil, err
		}
		entries = append(entries, chapterEntries...)
	}
	return entries, nil
}

// scanScene builds the manifest entry for one scene. ok is false when the
// completeness triple is not satisfied.
func (s *Scanner) scanScene(storyID string, chapterID, sceneID int) (Entry, bool, error) {
	if !s.store.SceneFileExists(storyID, chapterID, sceneID, assetstore.NarrationFile) {
		return Entry{}, false, nil
	}
	if !s.store.SceneFileExists(storyID, chapterID, sceneID, assetstore.ContentFile) {
		return Entry{}, false, nil
	}
	imageName, err := s.store.FindImage(storyID, chapterID, sceneID)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return Entry{}, false, nil
		}
		return Entry{}, false, err
	}

	content, err := s.store.ReadSceneFile(storyID, chapterID, sceneID, assetstore.ContentFile)
	if err != nil {
		// The file existed a moment ago; treat a racing delete as incomplete.
		if errors.Is(err, models.ErrNotFound) {
			return Entry{}, false, nil
		}
		return Entry{}, false, fmt.Errorf("failed to read scene content: %w", err)
	}

	entry := Entry{
		Chapter: chapterID,
		Scene:   sceneID,
		Sound:   s.store.FileURL(storyID, chapterID, sceneID, assetstore.NarrationFile),
		Image:   s.store.FileURL(storyID, chapterID, sceneID, imageName),
		Context: string(content),
	}
	if s.store.SceneFileExists(storyID, chapterID, sceneID, assetstore.BgMusicFile) {
		entry.BgMusic = s.store.FileURL(storyID, chapterID, sceneID, assetstore.BgMusicFile)
	}
	return entry, true, nil
}
