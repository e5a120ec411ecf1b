package media

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"story-visualizer/internal/assetstore"
	"story-visualizer/internal/models"
	"story-visualizer/internal/scanner"
)

// fakeEncoder records its invocations and writes marker files so the
// assembler's final rename has something to move.
type fakeEncoder struct {
	probed   []string
	encoded  []string
	concated [][]string
	mixed    int
	burned   int
}

func (f *fakeEncoder) ProbeDuration(_ context.Context, path string) (float64, error) {
	f.probed = append(f.probed, path)
	return 1.5, nil
}

func (f *fakeEncoder) EncodeSegment(_ context.Context, imagePath, _ string, _ float64, outPath string) error {
	f.encoded = append(f.encoded, imagePath)
	return os.WriteFile(outPath, []byte("segment"), 0o644)
}

func (f *fakeEncoder) Concat(_ context.Context, segmentPaths []string, outPath string) error {
	f.concated = append(f.concated, append([]string(nil), segmentPaths...))
	return os.WriteFile(outPath, []byte("video"), 0o644)
}

func (f *fakeEncoder) MixAudio(_ context.Context, videoPath, _, outPath string) error {
	f.mixed++
	data, err := os.ReadFile(videoPath)
	if err != nil {
		return err
	}
	return os.WriteFile(outPath, data, 0o644)
}

func (f *fakeEncoder) BurnSubtitles(_ context.Context, videoPath, _, outPath string) error {
	f.burned++
	data, err := os.ReadFile(videoPath)
	if err != nil {
		return err
	}
	return os.WriteFile(outPath, data, 0o644)
}

func newAssemblerFixture(t *testing.T) (*Assembler, *assetstore.Store, *fakeEncoder) {
	t.Helper()
	log := zap.NewNop()
	store := assetstore.New(t.TempDir(), "http://localhost:8080", log)
	sc := scanner.New(store, log)
	enc := &fakeEncoder{}
	return NewAssembler(store, sc, enc, log), store, enc
}

func pngBytes(t *testing.T) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 8, 8))
	for y := 0; y < 8; y++ {
		for x := 0; x < 8; x++ {
			img.Set(x, y, color.RGBA{R: uint8(x * 30), G: uint8(y * 30), B: 120, A: 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func makeRenderableScene(t *testing.T, store *assetstore.Store, storyID string, chapterID, sceneID int) {
	t.Helper()
	require.NoError(t, store.WriteSceneFile(storyID, chapterID, sceneID, assetstore.ContentFile, []byte("text")))
	require.NoError(t, store.WriteSceneFile(storyID, chapterID, sceneID, assetstore.NarrationFile, []byte("audio")))
	_, err := store.ReplaceSceneImage(storyID, chapterID, sceneID, "png", pngBytes(t))
	require.NoError(t, err)
}

func TestAssembleChapterVideoOrdersScenes(t *testing.T) {
	asm, store, enc := newAssemblerFixture(t)
	for i := 1; i <= 3; i++ {
		makeRenderableScene(t, store, "42", 1, i)
	}

	outPath, err := asm.AssembleChapterVideo(context.Background(), "42", 1, VideoOptions{})
	require.NoError(t, err)
	assert.Equal(t, store.ChapterPath("42", 1, VideoFileName), outPath)

	data, err := os.ReadFile(outPath)
	require.NoError(t, err)
	assert.Equal(t, "video", string(data))

	require.Len(t, enc.concated, 1)
	require.Len(t, enc.concated[0], 3)
	// Segments are indexed by scene order, so the list is already sorted.
	assert.Contains(t, enc.concated[0][0], "segment_0000")
	assert.Contains(t, enc.concated[0][2], "segment_0002")
	assert.Zero(t, enc.mixed)
	assert.Zero(t, enc.burned)
}

func TestAssembleChapterVideoFailsOnMissingNarration(t *testing.T) {
	asm, store, enc := newAssemblerFixture(t)
	makeRenderableScene(t, store, "42", 1, 1)
	makeRenderableScene(t, store, "42", 1, 2)
	makeRenderableScene(t, store, "42", 1, 3)

	// A previously assembled video must survive a failed rebuild.
	prior := store.ChapterPath("42", 1, VideoFileName)
	require.NoError(t, os.WriteFile(prior, []byte("old video"), 0o644))

	require.NoError(t, os.Remove(store.ScenePath("42", 1, 2, assetstore.NarrationFile)))

	_, err := asm.AssembleChapterVideo(context.Background(), "42", 1, VideoOptions{})
	assert.ErrorIs(t, err, models.ErrAssembly)
	assert.Empty(t, enc.encoded, "no encoding before validation passes")

	data, err := os.ReadFile(prior)
	require.NoError(t, err)
	assert.Equal(t, "old video", string(data))
}

func TestAssembleChapterVideoEmptyChapter(t *testing.T) {
	asm, store, _ := newAssemblerFixture(t)
	require.NoError(t, store.EnsureStoryChapter("42", 1))

	_, err := asm.AssembleChapterVideo(context.Background(), "42", 1, VideoOptions{})
	assert.ErrorIs(t, err, models.ErrAssembly)
}

func TestAssembleChapterVideoV2MixesAndBurns(t *testing.T) {
	asm, store, enc := newAssemblerFixture(t)
	makeRenderableScene(t, store, "42", 1, 1)
	require.NoError(t, store.WriteSceneFile("42", 1, 1, assetstore.BgMusicFile, []byte("music")))
	require.NoError(t, os.WriteFile(store.ChapterPath("42", 1, "captions.srt"), []byte("1\n"), 0o644))

	_, err := asm.AssembleChapterVideo(context.Background(), "42", 1,
		VideoOptions{WithBackgroundMusic: true, WithSubtitles: true})
	require.NoError(t, err)
	assert.Equal(t, 1, enc.mixed)
	assert.Equal(t, 1, enc.burned)
}

func TestAssembleChapterVideoV2WithoutExtrasStillBuilds(t *testing.T) {
	asm, store, enc := newAssemblerFixture(t)
	makeRenderableScene(t, store, "42", 1, 1)

	_, err := asm.AssembleChapterVideo(context.Background(), "42", 1,
		VideoOptions{WithBackgroundMusic: true, WithSubtitles: true})
	require.NoError(t, err)
	assert.Zero(t, enc.mixed, "no bg track, nothing to mix")
	assert.Zero(t, enc.burned, "no srt, nothing to burn")
}

func TestAssembleStoryPDF(t *testing.T) {
	asm, store, _ := newAssemblerFixture(t)
	makeRenderableScene(t, store, "42", 1, 1)
	makeRenderableScene(t, store, "42", 1, 2)
	makeRenderableScene(t, store, "42", 2, 1)

	outPath, err := asm.AssembleStoryPDF(context.Background(), "42", 2)
	require.NoError(t, err)
	assert.Equal(t, store.StoryPath("42", PDFFileName), outPath)

	info, err := os.Stat(outPath)
	require.NoError(t, err)
	assert.Positive(t, info.Size())
}

func TestAssembleStoryPDFNoCompleteScenes(t *testing.T) {
	asm, store, _ := newAssemblerFixture(t)
	// Image only, never complete.
	_, err := store.ReplaceSceneImage("42", 1, 1, "png", pngBytes(t))
	require.NoError(t, err)

	_, err = asm.AssembleStoryPDF(context.Background(), "42", 2)
	assert.ErrorIs(t, err, models.ErrAssembly)
}
