// Package tile defines the decoded-tile value type that flows from the
// downloader to an encoder.
package tile

import (
	"image"

	"github.com/dezoomify/dezoomify-go/internal/vec2d"
)

// Tile is a decoded image fragment positioned on the final canvas. It is
// produced once, by the downloader, and consumed exactly once, by an
// encoder's AddTile; nothing else retains a reference to it afterwards.
type Tile struct {
	Position     vec2d.Vec2d
	Image        image.Image
	ICCProfile   []byte
	EXIFMetadata []byte
}

// Size returns the tile's pixel dimensions.
func (t Tile) Size() vec2d.Vec2d {
	b := t.Image.Bounds()
	return vec2d.New(uint(b.Dx()), uint(b.Dy()))
}

// BottomRight returns Position + Size, the exclusive corner of the tile's
// footprint on the canvas.
func (t Tile) BottomRight() vec2d.Vec2d {
	return t.Position.Add(t.Size())
}

// Builder provides the same ergonomic construction style the original
// implementation's test suite relies on, without requiring every caller
// to populate a struct literal field by field.
type Builder struct {
	t Tile
}

// NewBuilder starts a Tile under construction.
func NewBuilder() *Builder { return &Builder{} }

func (b *Builder) AtPosition(p vec2d.Vec2d) *Builder {
	b.t.Position = p
	return b
}

func (b *Builder) WithImage(img image.Image) *Builder {
	b.t.Image = img
	return b
}

func (b *Builder) WithICCProfile(profile []byte) *Builder {
	b.t.ICCProfile = profile
	return b
}

func (b *Builder) WithEXIFMetadata(exif []byte) *Builder {
	b.t.EXIFMetadata = exif
	return b
}

func (b *Builder) Build() Tile { return b.t }
