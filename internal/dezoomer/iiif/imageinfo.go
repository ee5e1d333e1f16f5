package iiif

import (
	"encoding/json"
	"math"
	"strings"

	"github.com/dezoomify/dezoomify-go/internal/vec2d"
)

const defaultTileDimension = 512

// TileEntry is one "tiles" array entry (IIIF Image API 2/3) or the
// synthesized equivalent of a legacy tile_width/tile_height/
// scale_factors triple (IIIF Image API 1.x).
type TileEntry struct {
	Width        uint
	Height       uint
	ScaleFactors []uint
}

// ImageInfo is a normalized view of an info.json, independent of which
// IIIF Image API version produced it.
type ImageInfo struct {
	ID          string
	Context     string
	Width       uint
	Height      uint
	Tiles       []TileEntry
	Qualities   []string
	Formats     []string
	MaxArea     uint

	hasExplicitTiles bool
}

type rawTileEntry struct {
	Width        *uint  `json:"width"`
	Height       *uint  `json:"height"`
	ScaleFactors []uint `json:"scaleFactors"`
}

type rawProfileObject struct {
	Formats   []string `json:"formats"`
	Qualities []string `json:"qualities"`
	MaxArea   uint     `json:"maxArea"`
}

type rawImageInfo struct {
	Context json.RawMessage `json:"@context"`
	AltID   string          `json:"@id"`
	ID      string          `json:"id"`
	Width   uint            `json:"width"`
	Height  uint            `json:"height"`

	TileWidth    *uint          `json:"tile_width"`
	TileHeight   *uint          `json:"tile_height"`
	ScaleFactors []uint         `json:"scale_factors"`
	Tiles        []rawTileEntry `json:"tiles"`
	Profile      json.RawMessage `json:"profile"`
	Qualities    []string       `json:"qualities"`
	Formats      []string       `json:"formats"`
}

// ParseImageInfo parses an info.json body into a normalized ImageInfo,
// reconciling the legacy IIIF Image API 1.x top-level fields with the
// 2.x/3.x "tiles"/"profile" shapes.
func ParseImageInfo(body []byte) (*ImageInfo, error) {
	var raw rawImageInfo
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, err
	}

	info := &ImageInfo{
		ID:     firstNonEmpty(raw.ID, raw.AltID),
		Width:  raw.Width,
		Height: raw.Height,
	}
	if len(raw.Context) > 0 {
		var ctx string
		if err := json.Unmarshal(raw.Context, &ctx); err == nil {
			info.Context = ctx
		}
	}

	for _, t := range raw.Tiles {
		entry := TileEntry{ScaleFactors: t.ScaleFactors}
		if t.Width != nil {
			entry.Width = *t.Width
		}
		if t.Height != nil {
			entry.Height = *t.Height
		} else {
			entry.Height = entry.Width
		}
		info.Tiles = append(info.Tiles, entry)
	}
	if len(info.Tiles) > 0 {
		info.hasExplicitTiles = true
	}

	if len(info.Tiles) == 0 && (raw.TileWidth != nil || raw.TileHeight != nil) {
		w := defaultTileDimension
		if raw.TileWidth != nil {
			w = int(*raw.TileWidth)
		}
		h := w
		if raw.TileHeight != nil {
			h = int(*raw.TileHeight)
		}
		factors := raw.ScaleFactors
		if len(factors) == 0 {
			factors = []uint{1}
		}
		info.Tiles = append(info.Tiles, TileEntry{Width: uint(w), Height: uint(h), ScaleFactors: factors})
		info.hasExplicitTiles = true
	}

	if len(info.Tiles) == 0 {
		info.Tiles = append(info.Tiles, TileEntry{
			Width:        defaultTileDimension,
			Height:       defaultTileDimension,
			ScaleFactors: []uint{1},
		})
	}

	info.Qualities = raw.Qualities
	info.Formats = raw.Formats
	if len(raw.Profile) > 0 {
		formats, qualities, maxArea := parseProfile(raw.Profile)
		if len(info.Formats) == 0 {
			info.Formats = formats
		}
		if len(info.Qualities) == 0 {
			info.Qualities = qualities
		}
		info.MaxArea = maxArea
	}

	return info, nil
}

// parseProfile handles the IIIF "profile" field's two legal shapes: a
// bare compliance-level string, or an array mixing a compliance string
// with an object carrying formats/qualities/maxArea.
func parseProfile(raw json.RawMessage) (formats, qualities []string, maxArea uint) {
	var asString string
	if err := json.Unmarshal(raw, &asString); err == nil {
		return nil, nil, 0
	}
	var asArray []json.RawMessage
	if err := json.Unmarshal(raw, &asArray); err != nil {
		return nil, nil, 0
	}
	for _, item := range asArray {
		var obj rawProfileObject
		if err := json.Unmarshal(item, &obj); err != nil {
			continue
		}
		if len(obj.Formats) > 0 {
			formats = obj.Formats
		}
		if len(obj.Qualities) > 0 {
			qualities = obj.Qualities
		}
		if obj.MaxArea > 0 {
			maxArea = obj.MaxArea
		}
	}
	return formats, qualities, maxArea
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

// HasDistinctiveIIIFProperties reports whether this ImageInfo carries
// enough IIIF-specific structure (beyond a bare width/height) to be
// trusted when recovered from embedded, possibly non-JSON content.
func (i *ImageInfo) HasDistinctiveIIIFProperties() bool {
	if i.Width == 0 || i.Height == 0 {
		return false
	}
	return i.Context != "" || i.ID != "" || len(i.Qualities) > 0 || len(i.Formats) > 0 || i.hasExplicitTiles
}

var recognizedFormats = map[string]bool{
	"jpg": true, "png": true, "tif": true, "gif": true, "webp": true,
}

// bestFormat picks the first recognized format named in Formats,
// falling back to jpg.
func (i *ImageInfo) bestFormat() string {
	for _, f := range i.Formats {
		if recognizedFormats[strings.ToLower(f)] {
			return strings.ToLower(f)
		}
	}
	return "jpg"
}

// bestQuality follows the "default" quality introduced in IIIF Image
// API 2.0: images speaking API 1.x must request "native" instead.
func (i *ImageInfo) bestQuality() string {
	if isLegacyAPIVersion(i.Context) {
		return "native"
	}
	return "default"
}

func isLegacyAPIVersion(context string) bool {
	return strings.Contains(context, "/1.0/") || strings.Contains(context, "/1.1/")
}

// sizeFormat reports whether tile sizes should be rendered as "w,h" or
// the width-only "w," form mandated by the oldest API version.
type sizeFormat int

const (
	sizeFormatWidthHeight sizeFormat = iota
	sizeFormatWidthOnly
)

func (i *ImageInfo) sizeFormat() sizeFormat {
	if strings.Contains(i.Context, "/1.0/") {
		return sizeFormatWidthOnly
	}
	return sizeFormatWidthHeight
}

// effectiveSize returns the tile's pixel dimensions after shrinking it
// (preserving aspect ratio) to respect the info.json's maxArea, if any.
func (t TileEntry) effectiveSize(maxArea uint) vec2d.Vec2d {
	w, h := t.Width, t.Height
	if maxArea > 0 && w*h > maxArea {
		scale := math.Sqrt(float64(w) * float64(h) / float64(maxArea))
		w = uint(float64(w) / scale)
		h = uint(float64(h) / scale)
	}
	return vec2d.New(w, h)
}
