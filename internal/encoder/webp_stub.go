//go:build !cgo

package encoder

import (
	"fmt"
	"image"
	"io"
)

func encodeWebP(w io.Writer, img image.Image) error {
	return fmt.Errorf("encoder: webp output requires CGO (install libwebp-dev and build with CGO_ENABLED=1)")
}
