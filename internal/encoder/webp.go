//go:build cgo

package encoder

/*
#cgo pkg-config: libwebp
#include <stdlib.h>
#include <webp/encode.h>
*/
import "C"
import (
	"fmt"
	"image"
	"image/draw"
	"io"
	"unsafe"
)

// encodeWebP writes img to w as lossless WebP using native libwebp via
// CGo, ported from pspoerri-geotiff2pmtiles's internal/encode/webp.go.
// Lossless is used (rather than that file's quality-based lossy mode)
// because the canvas encoder has no quality knob of its own for non-JPEG
// formats and lossless keeps the ICC-less output format-faithful to the
// decoded pixels.
func encodeWebP(w io.Writer, img image.Image) error {
	rgba := toRGBA(img)
	bounds := rgba.Bounds()
	width, height := bounds.Dx(), bounds.Dy()
	if width == 0 || height == 0 {
		return fmt.Errorf("encoder: webp: empty image")
	}

	var output *C.uint8_t
	size := C.WebPEncodeLosslessRGBA(
		(*C.uint8_t)(unsafe.Pointer(&rgba.Pix[0])),
		C.int(width),
		C.int(height),
		C.int(rgba.Stride),
		&output,
	)
	if size == 0 || output == nil {
		return fmt.Errorf("encoder: webp: encode failed")
	}
	defer C.WebPFree(unsafe.Pointer(output))

	_, err := w.Write(C.GoBytes(unsafe.Pointer(output), C.int(size)))
	return err
}

func toRGBA(img image.Image) *image.RGBA {
	if rgba, ok := img.(*image.RGBA); ok {
		return rgba
	}
	bounds := img.Bounds()
	rgba := image.NewRGBA(bounds)
	draw.Draw(rgba, bounds, img, bounds.Min, draw.Src)
	return rgba
}
