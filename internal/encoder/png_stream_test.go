package encoder

import (
	"bytes"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/dezoomify/dezoomify-go/internal/vec2d"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStreamingPNGRoundTrips(t *testing.T) {
	dst := filepath.Join(t.TempDir(), "out.png")
	enc, err := NewStreamingPNG(dst, vec2d.New(2, 2), 20)
	require.NoError(t, err)

	require.NoError(t, enc.AddTile(makeTile(vec2d.New(0, 0), 2, 2, rgba(10, 20, 30))))
	require.NoError(t, enc.Finalize())

	data, err := os.ReadFile(dst)
	require.NoError(t, err)

	img, err := png.Decode(bytes.NewReader(data))
	require.NoError(t, err)
	assert.Equal(t, 2, img.Bounds().Dx())
	assert.Equal(t, 2, img.Bounds().Dy())

	r, g, b, _ := img.At(0, 0).RGBA()
	assert.Equal(t, uint32(10), r>>8)
	assert.Equal(t, uint32(20), g>>8)
	assert.Equal(t, uint32(30), b>>8)
}

func TestStreamingPNGEmbedsICCProfile(t *testing.T) {
	dst := filepath.Join(t.TempDir(), "icc.png")
	enc, err := NewStreamingPNG(dst, vec2d.New(1, 1), 0)
	require.NoError(t, err)

	tl := makeTile(vec2d.New(0, 0), 1, 1, rgba(1, 1, 1))
	tl.ICCProfile = []byte{0xCA, 0xFE, 0xBA, 0xBE}
	require.NoError(t, enc.AddTile(tl))
	require.NoError(t, enc.Finalize())

	data, err := os.ReadFile(dst)
	require.NoError(t, err)
	assert.Contains(t, string(data), "iCCP")
}

func TestStreamingPNGFinalizeWithoutTilesWritesBlankImage(t *testing.T) {
	dst := filepath.Join(t.TempDir(), "blank.png")
	enc, err := NewStreamingPNG(dst, vec2d.New(3, 3), 0)
	require.NoError(t, err)
	require.NoError(t, enc.Finalize())

	data, err := os.ReadFile(dst)
	require.NoError(t, err)
	img, err := png.Decode(bytes.NewReader(data))
	require.NoError(t, err)
	assert.Equal(t, 3, img.Bounds().Dx())
}

func rgba(r, g, b uint8) colorRGBA { return colorRGBA{r, g, b, 255} }

type colorRGBA struct{ R, G, B, A uint8 }

func (c colorRGBA) RGBA() (uint32, uint32, uint32, uint32) {
	r := uint32(c.R)
	r |= r << 8
	g := uint32(c.G)
	g |= g << 8
	b := uint32(c.B)
	b |= b << 8
	a := uint32(c.A)
	a |= a << 8
	return r, g, b, a
}
