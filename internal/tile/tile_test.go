package tile

import (
	"image"
	"testing"

	"github.com/dezoomify/dezoomify-go/internal/vec2d"
	"github.com/stretchr/testify/assert"
)

func TestBottomRight(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 4, 6))
	tl := NewBuilder().AtPosition(vec2d.New(10, 20)).WithImage(img).Build()
	assert.Equal(t, vec2d.New(4, 6), tl.Size())
	assert.Equal(t, vec2d.New(14, 26), tl.BottomRight())
}

func TestBuilderICCAndEXIF(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 1, 1))
	tl := NewBuilder().
		WithImage(img).
		WithICCProfile([]byte{1, 2, 3}).
		WithEXIFMetadata([]byte{4, 5}).
		Build()
	assert.Equal(t, []byte{1, 2, 3}, tl.ICCProfile)
	assert.Equal(t, []byte{4, 5}, tl.EXIFMetadata)
}
