package handler

// Request bodies for the /api surface. Required fields are validated once at
// the boundary via binding tags; services re-check nothing but invariants.

type initializeStoryRequest struct {
	AccessID  string `json:"access_id" binding:"required"`
	StoryID   string `json:"story_id" binding:"required"`
	ChapterID int    `json:"chapter_id" binding:"required,min=1"`
}

type initializeChapterRequest struct {
	StoryID string `json:"story_id" binding:"required"`
}

type chapterRequest struct {
	StoryID   string `json:"story_id" binding:"required"`
	ChapterID int    `json:"chapter_id" binding:"required,min=1"`
}

type sceneRequest struct {
	StoryID   string `json:"story_id" binding:"required"`
	ChapterID int    `json:"chapter_id" binding:"required,min=1"`
	SceneID   int    `json:"scene_id" binding:"required,min=1"`
}

type sceneTextRequest struct {
	StoryID   string `json:"story_id" binding:"required"`
	ChapterID int    `json:"chapter_id" binding:"required,min=1"`
	SceneID   int    `json:"scene_id" binding:"required,min=1"`
	Content   string `json:"content" binding:"required"`
}

type sceneSfxRequest struct {
	StoryID   string   `json:"story_id" binding:"required"`
	ChapterID int      `json:"chapter_id" binding:"required,min=1"`
	SceneID   int      `json:"scene_id" binding:"required,min=1"`
	Effects   []string `json:"effects" binding:"required"`
}

type narrateFreeRequest struct {
	StoryID   string `json:"story_id" binding:"required"`
	ChapterID int    `json:"chapter_id" binding:"required,min=1"`
	SceneID   int    `json:"scene_id" binding:"required,min=1"`
	Content   string `json:"content" binding:"required"`
	Language  string `json:"language"`
}

type narratePremiumRequest struct {
	AccessID  string `json:"access_id" binding:"required"`
	StoryID   string `json:"story_id" binding:"required"`
	ChapterID int    `json:"chapter_id" binding:"required,min=1"`
	SceneID   int    `json:"scene_id" binding:"required,min=1"`
	Rate      int    `json:"rate" binding:"required,min=1"`
	VoiceID   string `json:"voiceId" binding:"required"`
	Content   string `json:"content" binding:"required"`
}

type imageFreeRequest struct {
	StoryID   string `json:"story_id" binding:"required"`
	ChapterID int    `json:"chapter_id" binding:"required,min=1"`
	SceneID   int    `json:"scene_id" binding:"required,min=1"`
	Query     string `json:"query" binding:"required"`
}

type imagePremiumRequest struct {
	AccessID     string `json:"access_id" binding:"required"`
	StoryID      string `json:"story_id" binding:"required"`
	ChapterID    int    `json:"chapter_id" binding:"required,min=1"`
	SceneID      int    `json:"scene_id" binding:"required,min=1"`
	Rate         int    `json:"rate" binding:"required,min=1"`
	Engine       string `json:"engine"`
	Size         string `json:"size"`
	CustomPrompt string `json:"custom_prompt" binding:"required"`
}

type videoGenerateRequest struct {
	StoryID   string `json:"story_id" binding:"required"`
	ChapterID int    `json:"chapter_id" binding:"required,min=1"`
}

type storyFetchRequest struct {
	StoryID string `json:"story_id" binding:"required"`
}

type createPDFRequest struct {
	StoryID      string `json:"story_id" binding:"required"`
	ColumnNumber int    `json:"column_number" binding:"required,min=1"`
}

type tokenRequest struct {
	AccessID string `json:"access_id" binding:"required"`
	Amount   int    `json:"amount" binding:"required,min=1"`
}

type purchaseRequest struct {
	PropertyOf string `json:"property_of" binding:"required"`
	PurchaseBy string `json:"purchase_by" binding:"required"`
	StoryID    string `json:"story_id" binding:"required"`
	ChapterID  string `json:"chapter_id" binding:"required"`
}
