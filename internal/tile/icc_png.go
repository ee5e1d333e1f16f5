package tile

import (
	"bytes"
	"compress/zlib"
	"encoding/binary"
	"io"
)

var pngSignature = []byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n'}

// pngICCProfile scans raw PNG bytes for an iCCP chunk and returns the
// decompressed ICC profile, or nil if none is present or the chunk is
// malformed. PNG chunk layout: 4-byte big-endian length, 4-byte ASCII
// type, length bytes of data, 4-byte CRC.
func pngICCProfile(raw []byte) []byte {
	if len(raw) < len(pngSignature) || !bytes.Equal(raw[:len(pngSignature)], pngSignature) {
		return nil
	}
	pos := len(pngSignature)
	for pos+8 <= len(raw) {
		length := binary.BigEndian.Uint32(raw[pos : pos+4])
		chunkType := string(raw[pos+4 : pos+8])
		dataStart := pos + 8
		dataEnd := dataStart + int(length)
		if dataEnd+4 > len(raw) || dataEnd < dataStart {
			return nil
		}
		if chunkType == "iCCP" {
			return decodeICCPChunk(raw[dataStart:dataEnd])
		}
		if chunkType == "IDAT" || chunkType == "IEND" {
			// iCCP must precede IDAT per the PNG spec; no point scanning further.
			return nil
		}
		pos = dataEnd + 4 // skip CRC
	}
	return nil
}

// decodeICCPChunk parses an iCCP chunk's payload: a null-terminated
// profile name, a single compression-method byte (always 0, meaning
// zlib/deflate), then the compressed profile bytes.
func decodeICCPChunk(data []byte) []byte {
	nameEnd := bytes.IndexByte(data, 0)
	if nameEnd < 0 || nameEnd+2 > len(data) {
		return nil
	}
	compressed := data[nameEnd+2:]
	r, err := zlib.NewReader(bytes.NewReader(compressed))
	if err != nil {
		return nil
	}
	defer r.Close()
	profile, err := io.ReadAll(r)
	if err != nil {
		return nil
	}
	return profile
}
