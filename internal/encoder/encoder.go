// Package encoder implements the two sink designs (C8) that accept tiles
// in arbitrary spatial order and produce a final image: a random-access
// Canvas (full framebuffer) and a row-streaming PNG encoder that writes
// rows as soon as the pixelStreamer (C9) sees them complete.
package encoder

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/dezoomify/dezoomify-go/internal/tile"
	"github.com/dezoomify/dezoomify-go/internal/vec2d"
)

// ErrInvalidData is returned by AddTile when a tile's origin falls
// outside the canvas, mirroring the specification's InvalidData error
// kind ("tile too large for image").
var ErrInvalidData = errors.New("encoder: tile too large for image")

// Encoder is the common sink contract shared by Canvas and the streaming
// PNG encoder: {add_tile, finalize, size}.
type Encoder interface {
	AddTile(t tile.Tile) error
	Finalize() error
	Size() vec2d.Vec2d
}

// Options configures encoder construction.
type Options struct {
	JPEGQuality int // 1..100
	Compression int // 0..100, PNG only
}

// New constructs the encoder appropriate for destination's extension, per
// §4.7 step 7: PNG gets the streaming encoder; JPEG gets the canvas
// encoder with a quality setting; everything else gets the generic
// canvas encoder.
func New(destination string, size vec2d.Vec2d, opts Options) (Encoder, error) {
	switch strings.ToLower(filepath.Ext(destination)) {
	case ".png":
		return NewStreamingPNG(destination, size, opts.Compression)
	default:
		enc, err := NewCanvas(destination, size, opts.JPEGQuality)
		if err != nil {
			return nil, fmt.Errorf("encoder: %w", err)
		}
		return enc, nil
	}
}
