// Package searchimg implements the free image provider: it looks the query up
// through Google Custom Search (image mode) and downloads the first hit.
package searchimg

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"path"
	"strings"
	"time"

	"go.uber.org/zap"
	"google.golang.org/api/customsearch/v1"
	"google.golang.org/api/option"

	"story-visualizer/internal/models"
	"story-visualizer/internal/provider"
)

var _ provider.ImageProvider = (*Client)(nil)

// Config carries the Custom Search credentials.
type Config struct {
	APIKey string
	CSEID  string
}

type Client struct {
	cfg        Config
	httpClient *http.Client
	logger     *zap.Logger
}

func New(cfg Config, logger *zap.Logger) *Client {
	return &Client{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: 30 * time.Second},
		logger:     logger.Named("SearchImage"),
	}
}

func (c *Client) Generate(ctx context.Context, query string, _ provider.ImageOptions) (*provider.ImageResult, error) {
	if query == "" {
		return nil, fmt.Errorf("query is required: %w", models.ErrValidation)
	}

	svc, err := customsearch.NewService(ctx, option.WithAPIKey(c.cfg.APIKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create search service: %w", models.ErrProvider)
	}

	resp, err := svc.Cse.List().Cx(c.cfg.CSEID).Q(query).SearchType("image").Num(5).Context(ctx).Do()
	if err != nil {
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return nil, models.ErrProviderTimeout
		}
		c.logger.Error("Image search failed", zap.String("query", query), zap.Error(err))
		return nil, fmt.Errorf("image search failed: %w", models.ErrProvider)
	}
	if len(resp.Items) == 0 {
		return nil, fmt.Errorf("no images found: %w", models.ErrNotFound)
	}

	// Take the first downloadable hit.
	var lastErr error
	for _, item := range resp.Items {
		result, err := c.download(ctx, item.Link)
		if err == nil {
			c.logger.Info("Search image fetched", zap.String("query", query), zap.String("url", item.Link))
			return result, nil
		}
		lastErr = err
	}
	return nil, fmt.Errorf("all image candidates failed to download: %w", lastErr)
}

func (c *Client) download(ctx context.Context, imageURL string) (*provider.ImageResult, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, imageURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build download request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, models.ErrProviderTimeout
		}
		return nil, fmt.Errorf("image download failed: %w", models.ErrProvider)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("image download returned status %d: %w", resp.StatusCode, models.ErrProvider)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, 20<<20))
	if err != nil {
		return nil, fmt.Errorf("failed to read image body: %w", models.ErrProvider)
	}

	return &provider.ImageResult{Data: data, Ext: imageExt(resp.Header.Get("Content-Type"), imageURL)}, nil
}

// imageExt picks a file extension from the content type, falling back to the
// URL path, then to png.
func imageExt(contentType, imageURL string) string {
	if mediaType, _, err := mime.ParseMediaType(contentType); err == nil {
		switch mediaType {
		case "image/jpeg":
			return "jpg"
		case "image/png":
			return "png"
		case "image/gif":
			return "gif"
		case "image/webp":
			return "webp"
		}
	}
	if ext := strings.TrimPrefix(path.Ext(imageURL), "."); ext != "" && len(ext) <= 4 {
		return strings.ToLower(ext)
	}
	return "png"
}
