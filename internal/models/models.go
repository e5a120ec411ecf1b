package models

import "time"

// Account tracks the point balance for one access_id.
type Account struct {
	ID       int64     `json:"-" db:"id"`
	AccessID string    `json:"access_id" db:"access_id"`
	Points   int       `json:"points" db:"points"`
	Created  time.Time `json:"created" db:"created_at"`
	Updated  time.Time `json:"updated" db:"updated_at"`
}

// Story records a story/chapter initialization. Ownership of a story is fixed
// by the first record ever written for its story_id.
type Story struct {
	ID          int64     `json:"-" db:"id"`
	StoryID     string    `json:"story_id" db:"story_id"`
	ChapterID   int       `json:"chapter_id" db:"chapter_id"`
	AccessID    string    `json:"access_id" db:"access_id"`
	IsPublished bool      `json:"isPublished" db:"is_published"`
	Created     time.Time `json:"created" db:"created_at"`
	Updated     time.Time `json:"updated" db:"updated_at"`
}

// Prompt is an append-only audit record of a premium image generation prompt.
type Prompt struct {
	ID        int64     `json:"-" db:"id"`
	PromptID  string    `json:"prompt_id" db:"prompt_id"`
	StoryID   string    `json:"story_id" db:"story_id"`
	ChapterID string    `json:"chapter_id" db:"chapter_id"`
	AccessID  string    `json:"access_id" db:"access_id"`
	Content   string    `json:"content" db:"content"`
	Created   time.Time `json:"created" db:"created_at"`
	Updated   time.Time `json:"updated" db:"updated_at"`
}

// Purchase marks a chapter asset as bought by an account.
type Purchase struct {
	ID         int64     `json:"-" db:"id"`
	PropertyOf string    `json:"property_of" db:"property_of"`
	PurchaseBy string    `json:"purchase_by" db:"purchase_by"`
	StoryID    string    `json:"story_id" db:"story_id"`
	ChapterID  string    `json:"chapter_id" db:"chapter_id"`
	Created    time.Time `json:"created" db:"created_at"`
	Updated    time.Time `json:"updated" db:"updated_at"`
}

// BalanceSnapshot reports an account balance around a ledger mutation.
// Field names are part of the public API.
type BalanceSnapshot struct {
	BeforeAction int `json:"beforeAction"`
	AfterAction  int `json:"afterAction"`
}

// CollectionStats summarizes one record collection for the statistics endpoints.
type CollectionStats struct {
	Count        int64     `json:"count"`
	EarliestDate time.Time `json:"-"`
	LatestDate   time.Time `json:"-"`
}

// StatsDateFormat matches the "%Y %B %d" date format of the statistics API.
const StatsDateFormat = "2006 January 02"
