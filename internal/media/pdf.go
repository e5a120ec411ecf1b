package media

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"strings"

	// Register decoders for the raster formats scene artwork may arrive in.
	// The search provider stores whatever the source serves, webp included.
	_ "image/gif"
	_ "image/jpeg"

	xdraw "golang.org/x/image/draw"
	_ "golang.org/x/image/webp"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

// Card is one scene on a PDF page: its artwork plus caption text.
type Card struct {
	Image   image.Image
	Caption string
}

// Page geometry. Cards are laid out one row per page, columns cards wide; the
// row advances to a new page every columns cards.
const (
	cardWidth   = 360
	cardHeight  = 460
	imageInset  = 12
	imageHeight = 340
	cardGap     = 20
	pagePadding = 28
	captionLine = 16 // line height for basicfont.Face7x13
	maxCaption  = 5  // caption lines per card
)

// decodeImage normalizes arbitrary scene artwork (png/jpeg/gif/webp) into an
// in-memory raster.
func decodeImage(data []byte) (image.Image, error) {
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to decode scene image: %w", err)
	}
	return img, nil
}

// composePages renders cards into page rasters, columns cards per page.
func composePages(cards []Card, columns int) []*image.RGBA {
	if columns < 1 {
		columns = 1
	}

	pageW := pagePadding*2 + columns*cardWidth + (columns-1)*cardGap
	pageH := pagePadding*2 + cardHeight

	var pages []*image.RGBA
	for start := 0; start < len(cards); start += columns {
		end := start + columns
		if end > len(cards) {
			end = len(cards)
		}

		page := image.NewRGBA(image.Rect(0, 0, pageW, pageH))
		draw.Draw(page, page.Bounds(), image.White, image.Point{}, draw.Src)

		for i, card := range cards[start:end] {
			x := pagePadding + i*(cardWidth+cardGap)
			drawCard(page, card, x, pagePadding)
		}
		pages = append(pages, page)
	}
	return pages
}

// drawCard renders one bordered card: scaled image on top, caption below.
func drawCard(page *image.RGBA, card Card, x, y int) {
	border := color.RGBA{R: 60, G: 60, B: 60, A: 255}
	drawBorder(page, image.Rect(x, y, x+cardWidth, y+cardHeight), border)

	imgRect := fitRect(card.Image.Bounds(),
		image.Rect(x+imageInset, y+imageInset, x+cardWidth-imageInset, y+imageInset+imageHeight))
	xdraw.ApproxBiLinear.Scale(page, imgRect, card.Image, card.Image.Bounds(), draw.Over, nil)

	drawCaption(page, card.Caption, x+imageInset, y+imageInset+imageHeight+captionLine,
		cardWidth-2*imageInset)
}

// fitRect scales src into dst preserving aspect ratio, centered.
func fitRect(src, dst image.Rectangle) image.Rectangle {
	sw, sh := src.Dx(), src.Dy()
	dw, dh := dst.Dx(), dst.Dy()
	if sw == 0 || sh == 0 {
		return dst
	}

	w, h := dw, sh*dw/sw
	if h > dh {
		w, h = sw*dh/sh, dh
	}
	x := dst.Min.X + (dw-w)/2
	y := dst.Min.Y + (dh-h)/2
	return image.Rect(x, y, x+w, y+h)
}

func drawBorder(page *image.RGBA, r image.Rectangle, c color.Color) {
	for x := r.Min.X; x < r.Max.X; x++ {
		page.Set(x, r.Min.Y, c)
		page.Set(x, r.Min.Y+1, c)
		page.Set(x, r.Max.Y-1, c)
		page.Set(x, r.Max.Y-2, c)
	}
	for y := r.Min.Y; y < r.Max.Y; y++ {
		page.Set(r.Min.X, y, c)
		page.Set(r.Min.X+1, y, c)
		page.Set(r.Max.X-1, y, c)
		page.Set(r.Max.X-2, y, c)
	}
}

// drawCaption renders word-wrapped caption text, truncated to maxCaption lines.
func drawCaption(page *image.RGBA, text string, x, y, width int) {
	face := basicfont.Face7x13
	drawer := &font.Drawer{
		Dst:  page,
		Src:  image.NewUniform(color.RGBA{R: 20, G: 20, B: 20, A: 255}),
		Face: face,
	}

	for i, line := range wrapText(text, width/face.Advance) {
		if i >= maxCaption {
			break
		}
		drawer.Dot = fixed.P(x, y+i*captionLine)
		drawer.DrawString(line)
	}
}

// wrapText greedily wraps text into lines of at most maxChars characters.
func wrapText(text string, maxChars int) []string {
	if maxChars < 1 {
		maxChars = 1
	}
	var lines []string
	var current string
	for _, word := range strings.Fields(text) {
		if current == "" {
			current = word
			continue
		}
		if len(current)+1+len(word) > maxChars {
			lines = append(lines, current)
			current = word
			continue
		}
		current += " " + word
	}
	if current != "" {
		lines = append(lines, current)
	}
	return lines
}

// encodePNG writes a page raster as PNG bytes.
func encodePNG(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("failed to encode page: %w", err)
	}
	return buf.Bytes(), nil
}
