// Package playht implements the premium narration provider against the
// PlayHT v2 streaming API.
package playht

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"story-visualizer/internal/models"
	"story-visualizer/internal/provider"
)

const defaultBaseURL = "https://api.play.ht/api/v2"

var _ provider.NarrationProvider = (*Client)(nil)

// Config carries the PlayHT credentials.
type Config struct {
	APIKey  string
	UserID  string
	BaseURL string // overridable for tests
}

type Client struct {
	cfg        Config
	httpClient *http.Client
	logger     *zap.Logger
}

func New(cfg Config, logger *zap.Logger) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultBaseURL
	}
	return &Client{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: 90 * time.Second},
		logger:     logger.Named("PlayHT"),
	}
}

type ttsRequest struct {
	Text         string `json:"text"`
	Voice        string `json:"voice"`
	OutputFormat string `json:"output_format"`
	VoiceEngine  string `json:"voice_engine"`
}

func (c *Client) Synthesize(ctx context.Context, text string, opts provider.NarrationOptions) ([]byte, error) {
	if strings.TrimSpace(text) == "" {
		return nil, fmt.Errorf("text is required: %w", models.ErrValidation)
	}
	if opts.VoiceID == "" {
		return nil, fmt.Errorf("voiceId is required for premium narration: %w", models.ErrValidation)
	}

	body, err := json.Marshal(ttsRequest{
		Text:         text,
		Voice:        opts.VoiceID,
		OutputFormat: "mp3",
		VoiceEngine:  "PlayHT2.0",
	})
	if err != nil {
		return nil, fmt.Errorf("failed to encode tts request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.BaseURL+"/tts/stream", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to build tts request: %w", err)
	}
	c.setHeaders(req)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "audio/mpeg")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, models.ErrProviderTimeout
		}
		c.logger.Error("TTS stream request failed", zap.Error(err))
		return nil, fmt.Errorf("tts stream request failed: %w", models.ErrProvider)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		c.logger.Error("TTS stream rejected", zap.Int("status", resp.StatusCode), zap.ByteString("detail", detail))
		return nil, fmt.Errorf("tts stream returned status %d: %w", resp.StatusCode, models.ErrProvider)
	}

	audio, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read tts stream: %w", models.ErrProvider)
	}
	c.logger.Info("Premium narration synthesized", zap.Int("bytes", len(audio)), zap.String("voice", opts.VoiceID))
	return audio, nil
}

type voiceEntry struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Language string `json:"language"`
	Gender   string `json:"gender"`
}

func (c *Client) Voices(ctx context.Context) ([]provider.Voice, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.cfg.BaseURL+"/voices", nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build voices request: %w", err)
	}
	c.setHeaders(req)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, models.ErrProviderTimeout
		}
		c.logger.Error("Voices request failed", zap.Error(err))
		return nil, fmt.Errorf("voices request failed: %w", models.ErrProvider)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("voices request returned status %d: %w", resp.StatusCode, models.ErrProvider)
	}

	var entries []voiceEntry
	if err := json.NewDecoder(resp.Body).Decode(&entries); err != nil {
		return nil, fmt.Errorf("failed to decode voices response: %w", models.ErrProvider)
	}

	voices := make([]provider.Voice, 0, len(entries))
	for _, e := range entries {
		voices = append(voices, provider.Voice{ID: e.ID, Name: e.Name, Language: e.Language, Gender: e.Gender})
	}
	return voices, nil
}

func (c *Client) setHeaders(req *http.Request) {
	req.Header.Set("Authorization", c.cfg.APIKey)
	req.Header.Set("X-User-ID", c.cfg.UserID)
}
