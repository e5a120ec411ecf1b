package media

import (
	"image"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestComposePagesAdvancesEveryColumns(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 10, 10))
	cards := make([]Card, 5)
	for i := range cards {
		cards[i] = Card{Image: img, Caption: "caption"}
	}

	pages := composePages(cards, 2)
	assert.Len(t, pages, 3, "5 cards at 2 per page is 3 pages")

	pages = composePages(cards, 5)
	assert.Len(t, pages, 1)

	// A nonsense column count falls back to one card per page.
	pages = composePages(cards, 0)
	assert.Len(t, pages, 5)
}

func TestFitRectPreservesAspectRatio(t *testing.T) {
	dst := image.Rect(0, 0, 100, 100)

	wide := fitRect(image.Rect(0, 0, 200, 100), dst)
	assert.Equal(t, 100, wide.Dx())
	assert.Equal(t, 50, wide.Dy())
	assert.Equal(t, 25, wide.Min.Y, "centered vertically")

	tall := fitRect(image.Rect(0, 0, 100, 200), dst)
	assert.Equal(t, 50, tall.Dx())
	assert.Equal(t, 100, tall.Dy())
}

func TestWrapText(t *testing.T) {
	lines := wrapText("the quick brown fox jumps over the lazy dog", 15)
	require.NotEmpty(t, lines)
	for _, line := range lines {
		assert.LessOrEqual(t, len(line), 15)
	}
	assert.Equal(t, "the quick brown", lines[0])

	assert.Empty(t, wrapText("", 15))
}

// Minimal lossy WebP file, the kind the search image provider saves verbatim.
var webpSample = []byte{
	0x52, 0x49, 0x46, 0x46, 0x24, 0x00, 0x00, 0x00, // RIFF, 36 bytes follow
	0x57, 0x45, 0x42, 0x50, 0x56, 0x50, 0x38, 0x20, // WEBP, VP8 chunk
	0x18, 0x00, 0x00, 0x00, 0x30, 0x01, 0x00, 0x9d,
	0x01, 0x2a, 0x01, 0x00, 0x01, 0x00, 0x02, 0x00,
	0x34, 0x25, 0xa4, 0x00, 0x03, 0x70, 0x00, 0xfe,
	0xfb, 0xfd, 0x50, 0x00,
}

func TestDecodeImageSupportsWebP(t *testing.T) {
	img, err := decodeImage(webpSample)
	require.NoError(t, err)
	assert.Positive(t, img.Bounds().Dx())
	assert.Positive(t, img.Bounds().Dy())
}

func TestDecodeImageRejectsGarbage(t *testing.T) {
	_, err := decodeImage([]byte("not an image"))
	assert.Error(t, err)
}
