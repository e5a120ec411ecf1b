// Package provider defines the abstract interfaces for external narration and
// image generation services.
package provider

import "context"

// Voice describes one synthesis voice offered by a narration provider.
type Voice struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Language string `json:"language,omitempty"`
	Gender   string `json:"gender,omitempty"`
}

// NarrationOptions tunes a synthesis request.
type NarrationOptions struct {
	Language string // BCP-47-ish language code, e.g. "en"
	VoiceID  string // provider voice id; empty selects the default
}

// NarrationProvider synthesizes narration audio (MP3) from text.
type NarrationProvider interface {
	Synthesize(ctx context.Context, text string, opts NarrationOptions) ([]byte, error)
	Voices(ctx context.Context) ([]Voice, error)
}

// ImageOptions tunes an image request.
type ImageOptions struct {
	Engine string // provider-specific model/engine name
	Size   string // e.g. "1024x1024"
}

// ImageResult carries the raw image bytes and their file extension
// (without the dot).
type ImageResult struct {
	Data []byte
	Ext  string
}

// ImageProvider produces scene artwork for a text prompt or query.
type ImageProvider interface {
	Generate(ctx context.Context, prompt string, opts ImageOptions) (*ImageResult, error)
}
