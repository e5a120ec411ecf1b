// Package media turns a chapter's scenes into one slideshow video and a
// story's scenes into one PDF of image+caption cards.
package media

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"story-visualizer/internal/assetstore"
	"story-visualizer/internal/models"
	"story-visualizer/internal/scanner"
)

const (
	// VideoFileName is the assembled chapter video, stored in the chapter dir.
	VideoFileName = "chapter_video.mp4"
	// PDFFileName is the assembled story PDF, stored in the story dir.
	PDFFileName = "story.pdf"

	encodeConcurrency = 4
)

// VideoOptions selects the assembly variant. The v1 endpoint uses the zero
// value; v2 adds background music and subtitle burn-in when those assets exist.
type VideoOptions struct {
	WithBackgroundMusic bool
	WithSubtitles       bool
}

// Assembler builds aggregate media from per-scene assets. All asset access
// goes through the AssetStore; the actual transcoding goes through the
// VideoEncoder.
type Assembler struct {
	store   *assetstore.Store
	scanner *scanner.Scanner
	encoder VideoEncoder
	logger  *zap.Logger
}

func NewAssembler(store *assetstore.Store, sc *scanner.Scanner, encoder VideoEncoder, logger *zap.Logger) *Assembler {
	return &Assembler{
		store:   store,
		scanner: sc,
		encoder: encoder,
		logger:  logger.Named("MediaAssembler"),
	}
}

// AssembleChapterVideo renders every scene of the chapter, in numeric order,
// into one video. Unlike the scanner, this aborts with ErrAssembly when any
// in-scope scene is missing its image or narration: a partial video is worse
// than no video. A previously assembled output stays untouched on failure.
func (a *Assembler) AssembleChapterVideo(ctx context.Context, storyID string, chapterID int, opts VideoOptions) (string, error) {
	sceneIDs, err := a.store.ListScenes(storyID, chapterID)
	if err != nil {
		return "", err
	}
	if len(sceneIDs) == 0 {
		return "", fmt.Errorf("chapter has no scenes: %w", models.ErrAssembly)
	}

	// Validate the whole scope before doing any work.
	type sceneInput struct {
		id    int
		image string
		audio string
	}
	inputs := make([]sceneInput, 0, len(sceneIDs))
	for _, sceneID := range sceneIDs {
		imageName, err := a.store.FindImage(storyID, chapterID, sceneID)
		if err != nil {
			if errors.Is(err, models.ErrNotFound) {
				return "", fmt.Errorf("scene %d is missing its image: %w", sceneID, models.ErrAssembly)
			}
			return "", err
		}
		if !a.store.SceneFileExists(storyID, chapterID, sceneID, assetstore.NarrationFile) {
			return "", fmt.Errorf("scene %d is missing its narration: %w", sceneID, models.ErrAssembly)
		}
		inputs = append(inputs, sceneInput{
			id:    sceneID,
			image: a.store.ScenePath(storyID, chapterID, sceneID, imageName),
			audio: a.store.ScenePath(storyID, chapterID, sceneID, assetstore.NarrationFile),
		})
	}

	// Work in a temp dir on the same filesystem as the final output so the
	// last step is a rename.
	workDir, err := os.MkdirTemp(a.store.Root(), ".assembly-")
	if err != nil {
		return "", fmt.Errorf("failed to create assembly workspace: %w", models.ErrStorage)
	}
	defer os.RemoveAll(workDir)

	segments := make([]string, len(inputs))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(encodeConcurrency)
	for i, input := range inputs {
		i, input := i, input
		g.Go(func() error {
			duration, err := a.encoder.ProbeDuration(gctx, input.audio)
			if err != nil {
				return fmt.Errorf("scene %d: %w: %w", input.id, err, models.ErrAssembly)
			}
			segment := filepath.Join(workDir, fmt.Sprintf("segment_%04d.mp4", i))
			if err := a.encoder.EncodeSegment(gctx, input.image, input.audio, duration, segment); err != nil {
				return fmt.Errorf("scene %d: %w: %w", input.id, err, models.ErrAssembly)
			}
			segments[i] = segment
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return "", err
	}

	assembled := filepath.Join(workDir, "assembled.mp4")
	if err := a.encoder.Concat(ctx, segments, assembled); err != nil {
		return "", fmt.Errorf("concat failed: %w: %w", err, models.ErrAssembly)
	}

	if opts.WithBackgroundMusic {
		if music, ok := a.findBackgroundMusic(storyID, chapterID, sceneIDs); ok {
			mixed := filepath.Join(workDir, "mixed.mp4")
			if err := a.encoder.MixAudio(ctx, assembled, music, mixed); err != nil {
				return "", fmt.Errorf("background mix failed: %w: %w", err, models.ErrAssembly)
			}
			assembled = mixed
		}
	}

	if opts.WithSubtitles {
		if subs, ok := a.findSubtitles(storyID, chapterID); ok {
			subtitled := filepath.Join(workDir, "subtitled.mp4")
			if err := a.encoder.BurnSubtitles(ctx, assembled, subs, subtitled); err != nil {
				return "", fmt.Errorf("subtitle burn failed: %w: %w", err, models.ErrAssembly)
			}
			assembled = subtitled
		}
	}

	outPath := a.store.ChapterPath(storyID, chapterID, VideoFileName)
	if err := os.Rename(assembled, outPath); err != nil {
		return "", fmt.Errorf("failed to finalize video: %w", models.ErrStorage)
	}

	a.logger.Info("Chapter video assembled",
		zap.String("storyID", storyID), zap.Int("chapterID", chapterID),
		zap.Int("scenes", len(inputs)), zap.String("output", outPath))
	return outPath, nil
}

// findBackgroundMusic returns the first scene's bg track, in scene order.
func (a *Assembler) findBackgroundMusic(storyID string, chapterID int, sceneIDs []int) (string, bool) {
	for _, sceneID := range sceneIDs {
		if a.store.SceneFileExists(storyID, chapterID, sceneID, assetstore.BgMusicFile) {
			return a.store.ScenePath(storyID, chapterID, sceneID, assetstore.BgMusicFile), true
		}
	}
	return "", false
}

// findSubtitles returns the first .srt directly under the chapter directory.
func (a *Assembler) findSubtitles(storyID string, chapterID int) (string, bool) {
	names, err := a.store.ListChapterFiles(storyID, chapterID, ".srt")
	if err != nil || len(names) == 0 {
		return "", false
	}
	return a.store.ChapterPath(storyID, chapterID, names[0]), true
}

// AssembleStoryPDF lays the story's complete scenes out as bordered
// image+caption cards, columns cards per page, and writes one PDF into the
// story directory. Scene artwork is normalized to PNG page rasters before
// embedding.
func (a *Assembler) AssembleStoryPDF(ctx context.Context, storyID string, columns int) (string, error) {
	entries, err := a.scanner.ScanStory(storyID)
	if err != nil {
		return "", err
	}
	if len(entries) == 0 {
		return "", fmt.Errorf("story has no complete scenes: %w", models.ErrAssembly)
	}

	cards := make([]Card, 0, len(entries))
	for _, entry := range entries {
		imageName, err := a.store.FindImage(storyID, entry.Chapter, entry.Scene)
		if err != nil {
			return "", fmt.Errorf("scene %d/%d lost its image: %w", entry.Chapter, entry.Scene, models.ErrAssembly)
		}
		data, err := a.store.ReadSceneFile(storyID, entry.Chapter, entry.Scene, imageName)
		if err != nil {
			return "", fmt.Errorf("scene %d/%d image unreadable: %w", entry.Chapter, entry.Scene, models.ErrAssembly)
		}
		img, err := decodeImage(data)
		if err != nil {
			return "", fmt.Errorf("scene %d/%d: %w: %w", entry.Chapter, entry.Scene, err, models.ErrAssembly)
		}
		cards = append(cards, Card{Image: img, Caption: entry.Context})
	}

	workDir, err := os.MkdirTemp(a.store.Root(), ".assembly-")
	if err != nil {
		return "", fmt.Errorf("failed to create assembly workspace: %w", models.ErrStorage)
	}
	defer os.RemoveAll(workDir)

	pagePaths := make([]string, 0)
	for i, page := range composePages(cards, columns) {
		if err := ctx.Err(); err != nil {
			return "", err
		}
		data, err := encodePNG(page)
		if err != nil {
			return "", fmt.Errorf("page %d: %w: %w", i+1, err, models.ErrAssembly)
		}
		path := filepath.Join(workDir, fmt.Sprintf("page_%04d.png", i))
		if err := os.WriteFile(path, data, 0o644); err != nil {
			return "", fmt.Errorf("failed to write page raster: %w", models.ErrStorage)
		}
		pagePaths = append(pagePaths, path)
	}

	assembled := filepath.Join(workDir, "assembled.pdf")
	if err := api.ImportImagesFile(pagePaths, assembled, nil, nil); err != nil {
		return "", fmt.Errorf("pdf import failed: %w: %w", err, models.ErrAssembly)
	}

	outPath := a.store.StoryPath(storyID, PDFFileName)
	if err := os.Rename(assembled, outPath); err != nil {
		return "", fmt.Errorf("failed to finalize pdf: %w", models.ErrStorage)
	}

	a.logger.Info("Story PDF assembled",
		zap.String("storyID", storyID), zap.Int("cards", len(cards)),
		zap.Int("pages", len(pagePaths)), zap.String("output", outPath))
	return outPath, nil
}
