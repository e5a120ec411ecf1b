package scanner

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"story-visualizer/internal/assetstore"
)

func newTestScanner(t *testing.T) (*Scanner, *assetstore.Store) {
	t.Helper()
	store := assetstore.New(t.TempDir(), "http://localhost:8080", zap.NewNop())
	return New(store, zap.NewNop()), store
}

func makeCompleteScene(t *testing.T, store *assetstore.Store, storyID string, chapterID, sceneID int) {
	t.Helper()
	require.NoError(t, store.WriteSceneFile(storyID, chapterID, sceneID, assetstore.ContentFile, []byte("scene text")))
	require.NoError(t, store.WriteSceneFile(storyID, chapterID, sceneID, assetstore.NarrationFile, []byte("audio")))
	_, err := store.ReplaceSceneImage(storyID, chapterID, sceneID, "png", []byte("img"))
	require.NoError(t, err)
}

func removeFile(t *testing.T, path string) {
	t.Helper()
	require.NoError(t, os.Remove(path))
}

func TestScanChapterReportsOnlyCompleteScenes(t *testing.T) {
	sc, store := newTestScanner(t)

	makeCompleteScene(t, store, "42", 1, 1)
	// Scene 2 has no narration.
	require.NoError(t, store.WriteSceneFile("42", 1, 2, assetstore.ContentFile, []byte("text")))
	_, err := store.ReplaceSceneImage("42", 1, 2, "png", []byte("img"))
	require.NoError(t, err)
	makeCompleteScene(t, store, "42", 1, 3)

	entries, err := sc.ScanChapter("42", 1)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, 1, entries[0].Scene)
	assert.Equal(t, 3, entries[1].Scene)
	assert.Equal(t, "scene text", entries[0].Context)
	assert.Contains(t, entries[0].Sound, "narration.mp3")
	assert.Contains(t, entries[0].Image, "image.png")
	assert.Empty(t, entries[0].BgMusic)
}

func TestScanChapterCompletenessIsAllThree(t *testing.T) {
	sc, store := newTestScanner(t)
	makeCompleteScene(t, store, "42", 1, 1)

	entries, err := sc.ScanChapter("42", 1)
	require.NoError(t, err)
	require.Len(t, entries, 1)

	// Removing any one of the triple removes the scene from the manifest.
	require.NoError(t, store.DeleteScene("42", 1, 1))
	makeCompleteScene(t, store, "42", 1, 1)
	path := store.ScenePath("42", 1, 1, assetstore.ContentFile)
	removeFile(t, path)

	entries, err = sc.ScanChapter("42", 1)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestScanChapterIncludesBackgroundMusic(t *testing.T) {
	sc, store := newTestScanner(t)
	makeCompleteScene(t, store, "42", 1, 1)
	require.NoError(t, store.WriteSceneFile("42", 1, 1, assetstore.BgMusicFile, []byte("music")))

	entries, err := sc.ScanChapter("42", 1)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Contains(t, entries[0].BgMusic, "bg.mp3")
}

func TestScanStoryOrdersChaptersAndScenes(t *testing.T) {
	sc, store := newTestScanner(t)
	makeCompleteScene(t, store, "42", 2, 1)
	makeCompleteScene(t, store, "42", 1, 2)
	makeCompleteScene(t, store, "42", 1, 1)

	entries, err := sc.ScanStory("42")
	require.NoError(t, err)
	require.Len(t, entries, 3)
	assert.Equal(t, [2]int{1, 1}, [2]int{entries[0].Chapter, entries[0].Scene})
	assert.Equal(t, [2]int{1, 2}, [2]int{entries[1].Chapter, entries[1].Scene})
	assert.Equal(t, [2]int{2, 1}, [2]int{entries[2].Chapter, entries[2].Scene})
}
