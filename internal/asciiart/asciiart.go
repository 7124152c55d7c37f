// Package asciiart renders images as text using a fixed intensity ramp.
package asciiart

import (
	"context"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"net/http"
	"strings"
	"time"

	_ "golang.org/x/image/bmp"
	"golang.org/x/image/draw"
	_ "golang.org/x/image/webp"
)

const (
	DefaultWidth = 100

	// terminal cells are roughly twice as tall as they are wide
	cellAspect = 0.55

	userAgent    = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/58.0.3029.110 Safari/537.3"
	maxImageSize = 20 << 20
)

// ramp goes from dark to light; index is gray/25.
var ramp = []byte{'@', '#', 'S', '%', '?', '*', '+', ';', ':', ',', '.'}

// Convert scales img to width columns, converts it to grayscale and maps each
// pixel to a ramp character. Rows are joined with "\n".
func Convert(img image.Image, width int) string {
	if width <= 0 {
		width = DefaultWidth
	}
	b := img.Bounds()
	if b.Dx() == 0 || b.Dy() == 0 {
		return ""
	}

	aspect := float64(b.Dy()) / float64(b.Dx())
	height := int(aspect * float64(width) * cellAspect)
	if height < 1 {
		height = 1
	}

	gray := image.NewGray(image.Rect(0, 0, width, height))
	draw.BiLinear.Scale(gray, gray.Bounds(), img, b, draw.Src, nil)

	var sb strings.Builder
	sb.Grow((width + 1) * height)
	for y := 0; y < height; y++ {
		if y > 0 {
			sb.WriteByte('\n')
		}
		row := gray.Pix[y*gray.Stride : y*gray.Stride+width]
		for _, px := range row {
			sb.WriteByte(ramp[int(px)/25])
		}
	}
	return sb.String()
}

type Fetcher struct {
	Client *http.Client
	Width  int
}

func NewFetcher(timeout time.Duration, width int) *Fetcher {
	return &Fetcher{Client: &http.Client{Timeout: timeout}, Width: width}
}

// FromURL downloads an image and converts it.
func (f *Fetcher) FromURL(ctx context.Context, url string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", fmt.Errorf("image request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := f.Client.Do(req)
	if err != nil {
		return "", fmt.Errorf("image download: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", fmt.Errorf("image download: unexpected status %s", resp.Status)
	}

	img, _, err := image.Decode(io.LimitReader(resp.Body, maxImageSize))
	if err != nil {
		return "", fmt.Errorf("image decode: %w", err)
	}
	return Convert(img, f.Width), nil
}
