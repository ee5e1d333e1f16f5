package tile

import (
	"bytes"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	"github.com/dezoomify/dezoomify-go/internal/vec2d"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// Decode turns a fetched tile body into a Tile positioned at position.
// The image format is auto-detected via the standard image.Decode
// registry, extended with golang.org/x/image/tiff and
// golang.org/x/image/webp so any of the formats a tile service might
// plausibly serve is recognized, exactly mirroring the "format
// auto-detected" requirement of the downloader's per-tile path.
//
// ICC profile extraction is best-effort: it is implemented for PNG
// (iCCP chunk) and JPEG (APP2 ICC_PROFILE segments), the two formats
// tile services overwhelmingly use; other formats yield a Tile with no
// ICCProfile rather than an error.
func Decode(raw []byte, position vec2d.Vec2d) (Tile, error) {
	img, format, err := image.Decode(bytes.NewReader(raw))
	if err != nil {
		return Tile{}, fmt.Errorf("tile: decode image: %w", err)
	}

	var icc []byte
	switch format {
	case "png":
		icc = pngICCProfile(raw)
	case "jpeg":
		icc = jpegICCProfile(raw)
	}

	return Tile{Position: position, Image: img, ICCProfile: icc}, nil
}
