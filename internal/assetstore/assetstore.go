// Package assetstore owns the on-disk Story -> Chapter -> Scene hierarchy.
// All path construction and directory manipulation happens here; other
// components never touch the tree directly.
package assetstore

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"story-visualizer/internal/models"
)

const (
	storyArchiveDir = "story_archive"
	userImagesDir   = "user_images"

	storyPrefix   = "Story_"
	chapterPrefix = "Chapter_"
	scenePrefix   = "Scene_"

	// Per-scene asset filenames.
	ContentFile   = "content.txt"
	PromptFile    = "prompt.txt"
	NarrationFile = "narration.mp3"
	BgMusicFile   = "bg.mp3"
	SfxFile       = "sfx.json"

	// ImageBase is the name (sans extension) of the scene artwork file.
	ImageBase = "image"
)

// Store manages the asset hierarchy rooted at a single storage directory.
// Mutating operations within one chapter are serialized through a keyed mutex,
// so concurrent scene creations cannot allocate the same id and concurrent
// writes to one scene cannot interleave.
type Store struct {
	root    string
	baseURL string
	logger  *zap.Logger

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// New creates a Store. root is created lazily; baseURL prefixes all asset URLs.
func New(root, baseURL string, logger *zap.Logger) *Store {
	return &Store{
		root:    root,
		baseURL: strings.TrimRight(baseURL, "/"),
		logger:  logger.Named("AssetStore"),
		locks:   make(map[string]*sync.Mutex),
	}
}

// Root returns the storage root directory.
func (s *Store) Root() string { return s.root }

func (s *Store) chapterLock(storyID string, chapterID int) *sync.Mutex {
	key := storyID + "/" + strconv.Itoa(chapterID)
	s.mu.Lock()
	defer s.mu.Unlock()
	lock, ok := s.locks[key]
	if !ok {
		lock = &sync.Mutex{}
		s.locks[key] = lock
	}
	return lock
}

func (s *Store) storyDir(storyID string) string {
	return filepath.Join(s.root, storyArchiveDir, storyPrefix+storyID)
}

func (s *Store) chapterDir(storyID string, chapterID int) string {
	return filepath.Join(s.storyDir(storyID), chapterPrefix+strconv.Itoa(chapterID))
}

func (s *Store) sceneDir(storyID string, chapterID, sceneID int) string {
	return filepath.Join(s.chapterDir(storyID, chapterID), scenePrefix+strconv.Itoa(sceneID))
}

// ScenePath resolves the absolute path of a per-scene asset file.
func (s *Store) ScenePath(storyID string, chapterID, sceneID int, filename string) string {
	return filepath.Join(s.sceneDir(storyID, chapterID, sceneID), filename)
}

// ChapterPath resolves the absolute path of a chapter-level file (legacy
// subtitle artifacts, assembled videos).
func (s *Store) ChapterPath(storyID string, chapterID int, filename string) string {
	return filepath.Join(s.chapterDir(storyID, chapterID), filename)
}

// StoryPath resolves the absolute path of a story-level file.
func (s *Store) StoryPath(storyID string, filename string) string {
	return filepath.Join(s.storyDir(storyID), filename)
}

// FileURL returns the public URL of a per-scene asset file.
func (s *Store) FileURL(storyID string, chapterID, sceneID int, filename string) string {
	return fmt.Sprintf("%s/storage/%s/%s%s/%s%d/%s%d/%s",
		s.baseURL, storyArchiveDir, storyPrefix, storyID,
		chapterPrefix, chapterID, scenePrefix, sceneID, filename)
}

// PublicURL maps an absolute path under the storage root onto its public URL.
// Paths outside the root are returned unchanged.
func (s *Store) PublicURL(path string) string {
	rel, err := filepath.Rel(s.root, path)
	if err != nil || strings.HasPrefix(rel, "..") {
		return path
	}
	return s.baseURL + "/storage/" + filepath.ToSlash(rel)
}

// EnsureStoryChapter creates the archive root, story and chapter directories
// if absent. Idempotent; never deletes anything.
func (s *Store) EnsureStoryChapter(storyID string, chapterID int) error {
	dir := s.chapterDir(storyID, chapterID)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		s.logger.Error("Failed to create chapter directory", zap.String("dir", dir), zap.Error(err))
		return fmt.Errorf("failed to create chapter directory: %w", models.ErrStorage)
	}
	return nil
}

// parseSuffix extracts the trailing integer of a directory name like
// "Scene_12". Returns false for names that do not match prefix+int.
func parseSuffix(name, prefix string) (int, bool) {
	if !strings.HasPrefix(name, prefix) {
		return 0, false
	}
	id, err := strconv.Atoi(strings.TrimPrefix(name, prefix))
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

// listIDs returns the sorted ids of subdirectories named prefix+int.
// Returns models.ErrNotFound when dir itself does not exist.
func listIDs(dir, prefix string) ([]int, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, models.ErrNotFound
		}
		return nil, fmt.Errorf("failed to read directory %s: %w", dir, models.ErrStorage)
	}

	var ids []int
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		if id, ok := parseSuffix(entry.Name(), prefix); ok {
			ids = append(ids, id)
		}
	}
	sort.Ints(ids)
	return ids, nil
}

// lowestFreeID returns the smallest positive integer absent from the sorted
// id list: the first gap, or len+1 when the sequence is dense.
func lowestFreeID(ids []int) int {
	for i, id := range ids {
		if id != i+1 {
			return i + 1
		}
	}
	return len(ids) + 1
}

// NextChapterID returns the smallest unused chapter id for the story.
func (s *Store) NextChapterID(storyID string) (int, error) {
	ids, err := listIDs(s.storyDir(storyID), chapterPrefix)
	if err != nil {
		return 0, err
	}
	return lowestFreeID(ids), nil
}

// NextSceneID returns the smallest unused scene id within the chapter.
func (s *Store) NextSceneID(storyID string, chapterID int) (int, error) {
	ids, err := listIDs(s.chapterDir(storyID, chapterID), scenePrefix)
	if err != nil {
		return 0, err
	}
	return lowestFreeID(ids), nil
}

// CreateChapter allocates the next chapter id and creates its directory.
// The story directory must already exist.
func (s *Store) CreateChapter(storyID string) (int, error) {
	lock := s.chapterLock(storyID, 0)
	lock.Lock()
	defer lock.Unlock()

	id, err := s.NextChapterID(storyID)
	if err != nil {
		return 0, err
	}
	if err := os.Mkdir(s.chapterDir(storyID, id), 0o755); err != nil {
		s.logger.Error("Failed to create chapter directory", zap.String("storyID", storyID), zap.Int("chapterID", id), zap.Error(err))
		return 0, fmt.Errorf("failed to create chapter directory: %w", models.ErrStorage)
	}
	s.logger.Info("Chapter created", zap.String("storyID", storyID), zap.Int("chapterID", id))
	return id, nil
}

// CreateScene allocates the next scene id in the chapter and creates its
// directory. Allocation and creation run under the chapter lock so two
// concurrent calls cannot compute the same id.
func (s *Store) CreateScene(storyID string, chapterID int) (int, error) {
	lock := s.chapterLock(storyID, chapterID)
	lock.Lock()
	defer lock.Unlock()

	id, err := s.NextSceneID(storyID, chapterID)
	if err != nil {
		return 0, err
	}
	if err := os.Mkdir(s.sceneDir(storyID, chapterID, id), 0o755); err != nil {
		s.logger.Error("Failed to create scene directory",
			zap.String("storyID", storyID), zap.Int("chapterID", chapterID), zap.Int("sceneID", id), zap.Error(err))
		return 0, fmt.Errorf("failed to create scene directory: %w", models.ErrStorage)
	}
	s.logger.Info("Scene created", zap.String("storyID", storyID), zap.Int("chapterID", chapterID), zap.Int("sceneID", id))
	return id, nil
}

// WriteSceneFile writes a per-scene asset, creating the scene directory when
// needed. The write goes to a temp file first and is renamed into place, so a
// concurrent reader never observes a partial file.
func (s *Store) WriteSceneFile(storyID string, chapterID, sceneID int, filename string, data []byte) error {
	lock := s.chapterLock(storyID, chapterID)
	lock.Lock()
	defer lock.Unlock()

	dir := s.sceneDir(storyID, chapterID, sceneID)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		s.logger.Error("Failed to create scene directory", zap.String("dir", dir), zap.Error(err))
		return fmt.Errorf("failed to create scene directory: %w", models.ErrStorage)
	}

	tmp := filepath.Join(dir, "."+filename+".tmp-"+uuid.NewString())
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		s.logger.Error("Failed to write scene file", zap.String("file", filename), zap.Error(err))
		return fmt.Errorf("failed to write scene file: %w", models.ErrStorage)
	}
	if err := os.Rename(tmp, filepath.Join(dir, filename)); err != nil {
		_ = os.Remove(tmp)
		s.logger.Error("Failed to finalize scene file", zap.String("file", filename), zap.Error(err))
		return fmt.Errorf("failed to finalize scene file: %w", models.ErrStorage)
	}
	return nil
}

// ReplaceSceneImage writes the scene artwork as image.<ext>, removing any
// previous artwork that had a different extension so a scene never carries
// two images.
func (s *Store) ReplaceSceneImage(storyID string, chapterID, sceneID int, ext string, data []byte) (string, error) {
	ext = strings.TrimPrefix(strings.ToLower(ext), ".")
	if ext == "" {
		ext = "png"
	}
	filename := ImageBase + "." + ext

	if old, err := s.FindImage(storyID, chapterID, sceneID); err == nil && old != filename {
		lock := s.chapterLock(storyID, chapterID)
		lock.Lock()
		_ = os.Remove(s.ScenePath(storyID, chapterID, sceneID, old))
		lock.Unlock()
	}

	if err := s.WriteSceneFile(storyID, chapterID, sceneID, filename, data); err != nil {
		return "", err
	}
	return filename, nil
}

// ReadSceneFile returns the contents of a per-scene asset.
func (s *Store) ReadSceneFile(storyID string, chapterID, sceneID int, filename string) ([]byte, error) {
	data, err := os.ReadFile(s.ScenePath(storyID, chapterID, sceneID, filename))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, models.ErrNotFound
		}
		return nil, fmt.Errorf("failed to read scene file: %w", models.ErrStorage)
	}
	return data, nil
}

func dirExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}

// StoryExists reports whether the story directory is present.
func (s *Store) StoryExists(storyID string) bool {
	return dirExists(s.storyDir(storyID))
}

// ChapterExists reports whether the chapter directory is present.
func (s *Store) ChapterExists(storyID string, chapterID int) bool {
	return dirExists(s.chapterDir(storyID, chapterID))
}

// SceneExists reports whether the scene directory is present.
func (s *Store) SceneExists(storyID string, chapterID, sceneID int) bool {
	return dirExists(s.sceneDir(storyID, chapterID, sceneID))
}

// SceneFileExists reports whether a per-scene asset file is present.
func (s *Store) SceneFileExists(storyID string, chapterID, sceneID int, filename string) bool {
	info, err := os.Stat(s.ScenePath(storyID, chapterID, sceneID, filename))
	return err == nil && !info.IsDir()
}

// DeleteScene removes the scene directory recursively.
func (s *Store) DeleteScene(storyID string, chapterID, sceneID int) error {
	lock := s.chapterLock(storyID, chapterID)
	lock.Lock()
	defer lock.Unlock()

	dir := s.sceneDir(storyID, chapterID, sceneID)
	if !dirExists(dir) {
		return models.ErrNotFound
	}
	if err := os.RemoveAll(dir); err != nil {
		s.logger.Error("Failed to delete scene", zap.String("dir", dir), zap.Error(err))
		return fmt.Errorf("failed to delete scene: %w", models.ErrStorage)
	}
	s.logger.Info("Scene deleted", zap.String("storyID", storyID), zap.Int("chapterID", chapterID), zap.Int("sceneID", sceneID))
	return nil
}

// DeleteChapter removes the chapter directory recursively.
func (s *Store) DeleteChapter(storyID string, chapterID int) error {
	lock := s.chapterLock(storyID, chapterID)
	lock.Lock()
	defer lock.Unlock()

	dir := s.chapterDir(storyID, chapterID)
	if !dirExists(dir) {
		return models.ErrNotFound
	}
	if err := os.RemoveAll(dir); err != nil {
		s.logger.Error("Failed to delete chapter", zap.String("dir", dir), zap.Error(err))
		return fmt.Errorf("failed to delete chapter: %w", models.ErrStorage)
	}
	s.logger.Info("Chapter deleted", zap.String("storyID", storyID), zap.Int("chapterID", chapterID))
	return nil
}

// SwapSceneOrder exchanges the contents of two scene directories. The rename
// goes through a unique temporary name so adjacent ids never collide.
func (s *Store) SwapSceneOrder(storyID string, chapterID, sceneA, sceneB int) error {
	lock := s.chapterLock(storyID, chapterID)
	lock.Lock()
	defer lock.Unlock()

	dirA := s.sceneDir(storyID, chapterID, sceneA)
	dirB := s.sceneDir(storyID, chapterID, sceneB)
	if !dirExists(dirA) || !dirExists(dirB) {
		return models.ErrNotFound
	}

	tmp := filepath.Join(s.chapterDir(storyID, chapterID), ".swap-"+uuid.NewString())
	if err := os.Rename(dirA, tmp); err != nil {
		return fmt.Errorf("failed to swap scenes: %w", models.ErrStorage)
	}
	if err := os.Rename(dirB, dirA); err != nil {
		// Put A back before surfacing the error.
		_ = os.Rename(tmp, dirA)
		return fmt.Errorf("failed to swap scenes: %w", models.ErrStorage)
	}
	if err := os.Rename(tmp, dirB); err != nil {
		return fmt.Errorf("failed to swap scenes: %w", models.ErrStorage)
	}
	s.logger.Info("Scenes swapped",
		zap.String("storyID", storyID), zap.Int("chapterID", chapterID),
		zap.Int("sceneA", sceneA), zap.Int("sceneB", sceneB))
	return nil
}

// ListChapters returns the chapter ids of a story in ascending order.
func (s *Store) ListChapters(storyID string) ([]int, error) {
	return listIDs(s.storyDir(storyID), chapterPrefix)
}

// ListScenes returns the scene ids of a chapter in ascending order.
func (s *Store) ListScenes(storyID string, chapterID int) ([]int, error) {
	return listIDs(s.chapterDir(storyID, chapterID), scenePrefix)
}

// FindImage returns the filename of the scene artwork ("image.<ext>"), or
// models.ErrNotFound when the scene has none.
func (s *Store) FindImage(storyID string, chapterID, sceneID int) (string, error) {
	entries, err := os.ReadDir(s.sceneDir(storyID, chapterID, sceneID))
	if err != nil {
		if os.IsNotExist(err) {
			return "", models.ErrNotFound
		}
		return "", fmt.Errorf("failed to read scene directory: %w", models.ErrStorage)
	}
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		ext := filepath.Ext(name)
		if ext != "" && strings.TrimSuffix(name, ext) == ImageBase {
			return name, nil
		}
	}
	return "", models.ErrNotFound
}

// ListSceneFilesByExtension groups the scene's files by extension (without the
// leading dot) and maps each to its public URL, ordered by filename.
func (s *Store) ListSceneFilesByExtension(storyID string, chapterID, sceneID int) (map[string][]string, error) {
	entries, err := os.ReadDir(s.sceneDir(storyID, chapterID, sceneID))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, models.ErrNotFound
		}
		return nil, fmt.Errorf("failed to read scene directory: %w", models.ErrStorage)
	}

	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		if !entry.IsDir() {
			names = append(names, entry.Name())
		}
	}
	sort.Strings(names)

	byExt := make(map[string][]string)
	for _, name := range names {
		ext := strings.TrimPrefix(filepath.Ext(name), ".")
		if ext == "" {
			continue
		}
		byExt[ext] = append(byExt[ext], s.FileURL(storyID, chapterID, sceneID, name))
	}
	return byExt, nil
}

// ListChapterFiles returns the filenames (not directories) directly under the
// chapter directory whose name has the given extension.
func (s *Store) ListChapterFiles(storyID string, chapterID int, ext string) ([]string, error) {
	entries, err := os.ReadDir(s.chapterDir(storyID, chapterID))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, models.ErrNotFound
		}
		return nil, fmt.Errorf("failed to read chapter directory: %w", models.ErrStorage)
	}
	var names []string
	for _, entry := range entries {
		if !entry.IsDir() && strings.EqualFold(filepath.Ext(entry.Name()), ext) {
			names = append(names, entry.Name())
		}
	}
	sort.Strings(names)
	return names, nil
}

// SaveUserImage stores a copy of a generated image under the caller's personal
// subtree and returns its path.
func (s *Store) SaveUserImage(accessID string, data []byte) (string, error) {
	dir := filepath.Join(s.root, userImagesDir, accessID)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		s.logger.Error("Failed to create user image directory", zap.String("dir", dir), zap.Error(err))
		return "", fmt.Errorf("failed to create user image directory: %w", models.ErrStorage)
	}
	path := filepath.Join(dir, fmt.Sprintf("image_%d.png", time.Now().UnixMilli()))
	if err := os.WriteFile(path, data, 0o644); err != nil {
		s.logger.Error("Failed to write user image", zap.String("path", path), zap.Error(err))
		return "", fmt.Errorf("failed to write user image: %w", models.ErrStorage)
	}
	return path, nil
}
