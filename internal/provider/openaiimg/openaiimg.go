// Package openaiimg implements the premium image provider on the OpenAI
// images API.
package openaiimg

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"

	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"story-visualizer/internal/models"
	"story-visualizer/internal/provider"
)

var _ provider.ImageProvider = (*Client)(nil)

type Client struct {
	client *openai.Client
	logger *zap.Logger
}

func New(apiKey string, logger *zap.Logger) *Client {
	return &Client{
		client: openai.NewClient(apiKey),
		logger: logger.Named("OpenAIImage"),
	}
}

func (c *Client) Generate(ctx context.Context, prompt string, opts provider.ImageOptions) (*provider.ImageResult, error) {
	if prompt == "" {
		return nil, fmt.Errorf("prompt is required: %w", models.ErrValidation)
	}

	model := opts.Engine
	if model == "" {
		model = openai.CreateImageModelDallE3
	}
	size := opts.Size
	if size == "" {
		size = openai.CreateImageSize1024x1024
	}

	resp, err := c.client.CreateImage(ctx, openai.ImageRequest{
		Prompt:         prompt,
		Model:          model,
		Size:           size,
		N:              1,
		ResponseFormat: openai.CreateImageResponseFormatB64JSON,
	})
	if err != nil {
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return nil, models.ErrProviderTimeout
		}
		c.logger.Error("Image generation failed", zap.Error(err))
		return nil, fmt.Errorf("image generation failed: %w", models.ErrProvider)
	}
	if len(resp.Data) == 0 {
		return nil, fmt.Errorf("image generation returned no data: %w", models.ErrProvider)
	}

	data, err := base64.StdEncoding.DecodeString(resp.Data[0].B64JSON)
	if err != nil {
		return nil, fmt.Errorf("failed to decode generated image: %w", models.ErrProvider)
	}

	c.logger.Info("Image generated", zap.String("model", model), zap.String("size", size), zap.Int("bytes", len(data)))
	return &provider.ImageResult{Data: data, Ext: "png"}, nil
}
