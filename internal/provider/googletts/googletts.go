// Package googletts implements the free narration path against Google
// Translate's public TTS endpoint. Long texts are split into chunks below the
// endpoint's query limit and the resulting MP3 segments are concatenated.
package googletts

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"

	"story-visualizer/internal/models"
	"story-visualizer/internal/provider"
)

const (
	endpoint     = "https://translate.google.com/translate_tts"
	maxChunkSize = 200 // endpoint rejects longer q parameters
)

var _ provider.NarrationProvider = (*Client)(nil)

type Client struct {
	httpClient *http.Client
	logger     *zap.Logger
}

func New(logger *zap.Logger) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: 30 * time.Second},
		logger:     logger.Named("GoogleTTS"),
	}
}

func (c *Client) Synthesize(ctx context.Context, text string, opts provider.NarrationOptions) ([]byte, error) {
	if strings.TrimSpace(text) == "" {
		return nil, fmt.Errorf("text is required: %w", models.ErrValidation)
	}
	lang := opts.Language
	if lang == "" {
		lang = "en"
	}

	var audio []byte
	for _, chunk := range splitText(text, maxChunkSize) {
		segment, err := c.fetchChunk(ctx, chunk, lang)
		if err != nil {
			return nil, err
		}
		audio = append(audio, segment...)
	}
	c.logger.Info("Narration synthesized", zap.Int("bytes", len(audio)), zap.String("lang", lang))
	return audio, nil
}

func (c *Client) fetchChunk(ctx context.Context, chunk, lang string) ([]byte, error) {
	params := url.Values{}
	params.Set("ie", "UTF-8")
	params.Set("client", "tw-ob")
	params.Set("tl", lang)
	params.Set("q", chunk)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build TTS request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, models.ErrProviderTimeout
		}
		c.logger.Error("TTS request failed", zap.Error(err))
		return nil, fmt.Errorf("tts request failed: %w", models.ErrProvider)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		c.logger.Error("TTS request rejected", zap.Int("status", resp.StatusCode))
		return nil, fmt.Errorf("tts request returned status %d: %w", resp.StatusCode, models.ErrProvider)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read tts response: %w", models.ErrProvider)
	}
	return data, nil
}

// Voices returns the fixed set the free endpoint effectively offers: one
// default voice per supported language code.
func (c *Client) Voices(_ context.Context) ([]provider.Voice, error) {
	return []provider.Voice{
		{ID: "en", Name: "English (default)", Language: "en"},
		{ID: "es", Name: "Spanish (default)", Language: "es"},
		{ID: "fr", Name: "French (default)", Language: "fr"},
		{ID: "de", Name: "German (default)", Language: "de"},
		{ID: "ja", Name: "Japanese (default)", Language: "ja"},
	}, nil
}

// splitText breaks text into chunks of at most max runes, preferring to cut at
// sentence or word boundaries.
func splitText(text string, max int) []string {
	words := strings.Fields(text)
	var chunks []string
	var current strings.Builder

	for _, word := range words {
		if current.Len() > 0 && current.Len()+1+len(word) > max {
			chunks = append(chunks, current.String())
			current.Reset()
		}
		if current.Len() > 0 {
			current.WriteByte(' ')
		}
		current.WriteString(word)
	}
	if current.Len() > 0 {
		chunks = append(chunks, current.String())
	}
	return chunks
}
