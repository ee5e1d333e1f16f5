package encoder

import (
	"fmt"
	"image"
	"image/draw"
	"image/jpeg"
	"image/png"
	"os"
	"path/filepath"
	"strings"

	"github.com/dezoomify/dezoomify-go/internal/tile"
	"github.com/dezoomify/dezoomify-go/internal/vec2d"
	"golang.org/x/image/tiff"
)

// Canvas holds the full output framebuffer in memory, ported from
// original_source/src/encoder/canvas.rs. Go has no zero-cost equivalent
// of that file's generic Pixel trait, so a single concrete *image.RGBA
// buffer stands in for both the Rgba<u8> and Rgb<u8> specializations;
// the three-channel formats simply drop alpha on write.
type Canvas struct {
	image       *image.RGBA
	destination string
	jpegQuality int
	iccProfile  []byte
}

// NewCanvas allocates a canvas of the given size writing to destination
// on Finalize.
func NewCanvas(destination string, size vec2d.Vec2d, jpegQuality int) (*Canvas, error) {
	if jpegQuality <= 0 {
		jpegQuality = 90
	}
	return &Canvas{
		image:       image.NewRGBA(image.Rect(0, 0, int(size.X), int(size.Y))),
		destination: destination,
		jpegQuality: jpegQuality,
	}, nil
}

// Size returns the canvas's pixel dimensions.
func (c *Canvas) Size() vec2d.Vec2d {
	b := c.image.Bounds()
	return vec2d.New(uint(b.Dx()), uint(b.Dy()))
}

// AddTile validates the tile's origin, clamps its copy region to
// min(tile.BottomRight, canvas.Size), and blits its pixels. The first
// tile carrying an ICC profile wins; later tiles' profiles are ignored.
func (c *Canvas) AddTile(t tile.Tile) error {
	canvasSize := c.Size()
	if !t.Position.FitsInside(canvasSize) {
		return fmt.Errorf("%w at %v (canvas %v)", ErrInvalidData, t.Position, canvasSize)
	}

	if c.iccProfile == nil && t.ICCProfile != nil {
		c.iccProfile = t.ICCProfile
	}

	clampedSize := vec2d.MaxSizeInRect(t.Position, t.Size(), canvasSize)
	srcBounds := t.Image.Bounds()
	srcRect := image.Rect(
		srcBounds.Min.X, srcBounds.Min.Y,
		srcBounds.Min.X+int(clampedSize.X), srcBounds.Min.Y+int(clampedSize.Y),
	)
	dstRect := image.Rect(
		int(t.Position.X), int(t.Position.Y),
		int(t.Position.X)+int(clampedSize.X), int(t.Position.Y)+int(clampedSize.Y),
	)
	draw.Draw(c.image, dstRect, t.Image, srcRect.Min, draw.Src)
	return nil
}

// Finalize writes the framebuffer to disk, dispatching on the
// destination's extension exactly as the Rust ImageWriter did.
func (c *Canvas) Finalize() error {
	f, err := os.Create(c.destination)
	if err != nil {
		return fmt.Errorf("encoder: create %s: %w", c.destination, err)
	}
	defer f.Close()

	switch strings.ToLower(filepath.Ext(c.destination)) {
	case ".jpg", ".jpeg":
		// The standard library's jpeg encoder has no ICC-embedding API
		// (no APP2 segment writer); a captured ICC profile is silently
		// unavailable on this path, the JPEG analog of Open Question (a).
		return jpeg.Encode(f, c.image, &jpeg.Options{Quality: c.jpegQuality})
	case ".tif", ".tiff":
		// golang.org/x/image/tiff.Encode likewise has no ICC slot.
		return tiff.Encode(f, c.image, nil)
	case ".webp":
		return encodeWebP(f, c.image)
	default:
		return png.Encode(f, c.image)
	}
}
