// Package iiif implements the International Image Interoperability
// Framework dezoomer: both the Image API (info.json tile pyramids) and
// the Presentation API (manifests naming one or more canvases, each
// pointing at an Image API service or a direct image link).
// See https://iiif.io/
package iiif

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/dezoomify/dezoomify-go/internal/dezoomer"
	"github.com/dezoomify/dezoomify-go/internal/vec2d"
)

// Dezoomer handles both IIIF info.json Image API services and IIIF
// Presentation API manifests.
type Dezoomer struct{}

// New returns a IIIF dezoomer.
func New() *Dezoomer { return &Dezoomer{} }

func (d *Dezoomer) Name() string { return "iiif" }

func (d *Dezoomer) ZoomLevels(ctx context.Context, in *dezoomer.Input) ([]dezoomer.ZoomLevel, error) {
	if !in.Contents.Known {
		return nil, &dezoomer.NeedsDataError{URI: in.URI}
	}
	if in.Contents.Err != nil {
		return nil, fmt.Errorf("iiif: fetch %s: %w", in.URI, in.Contents.Err)
	}
	return zoomLevels(in.URI, in.Contents.Body)
}

func (d *Dezoomer) DezoomerResult(ctx context.Context, in *dezoomer.Input) ([]dezoomer.ZoomableImage, error) {
	if !in.Contents.Known {
		return nil, &dezoomer.NeedsDataError{URI: in.URI}
	}
	if in.Contents.Err != nil {
		return nil, fmt.Errorf("iiif: fetch %s: %w", in.URI, in.Contents.Err)
	}
	uri, body := in.URI, in.Contents.Body

	// Quick, tolerant type sniff: a "type"/"@type" field names exactly
	// what this content is, sparing us a guess.
	var quick struct {
		Type  string `json:"type"`
		Type2 string `json:"@type"`
	}
	if err := json.Unmarshal(body, &quick); err == nil {
		switch firstNonEmpty(quick.Type, quick.Type2) {
		case "ImageService2", "ImageService3", "iiif:ImageProfile":
			levels, err := zoomLevels(uri, body)
			if err != nil {
				return nil, err
			}
			title := ""
			if len(levels) > 0 {
				title = levels[0].Title()
			}
			return []dezoomer.ZoomableImage{dezoomer.Resolved(levels, title)}, nil
		case "Manifest":
			if images, err := manifestToImages(body, uri); err == nil && len(images) > 0 {
				return images, nil
			} else if err != nil {
				return nil, err
			}
			// empty manifest: fall through to the heuristic chain below.
		}
	}

	if strings.HasSuffix(uri, "/info.json") {
		if levels, err := zoomLevels(uri, body); err == nil {
			title := ""
			if len(levels) > 0 {
				title = levels[0].Title()
			}
			return []dezoomer.ZoomableImage{dezoomer.Resolved(levels, title)}, nil
		}
	}

	if images, err := manifestToImages(body, uri); err == nil && len(images) > 0 {
		return images, nil
	} else if err != nil {
		return nil, err
	}

	levels, err := zoomLevels(uri, body)
	if err != nil {
		return nil, fmt.Errorf("%w: not a recognizable IIIF manifest or info.json", dezoomer.ErrWrongDezoomer)
	}
	title := ""
	if len(levels) > 0 {
		title = levels[0].Title()
	}
	return []dezoomer.ZoomableImage{dezoomer.Resolved(levels, title)}, nil
}

func manifestToImages(body []byte, uri string) ([]dezoomer.ZoomableImage, error) {
	infos, err := parseManifest(body, uri)
	if err != nil {
		return nil, err
	}
	images := make([]dezoomer.ZoomableImage, 0, len(infos))
	for _, info := range infos {
		images = append(images, dezoomer.Unresolved(info.imageURI, determineTitle(info)))
	}
	return images, nil
}

// zoomLevels parses raw_info as an info.json, falling back to scanning
// it for embedded JSON objects carrying distinctive IIIF properties
// (width/height plus an id, context, quality or format list, or an
// explicit tile grid) when it
// isn't valid JSON on its own — salvaging info accidentally embedded
// in a wrapping HTML/JS page.
func zoomLevels(url string, rawInfo []byte) ([]dezoomer.ZoomLevel, error) {
	info, err := ParseImageInfo(rawInfo)
	if err == nil {
		return zoomLevelsFromInfo(url, info), nil
	}

	var salvaged []dezoomer.ZoomLevel
	for _, candidate := range scanEmbeddedJSONObjects(rawInfo) {
		info, parseErr := ParseImageInfo(candidate)
		if parseErr != nil || !info.HasDistinctiveIIIFProperties() {
			continue
		}
		salvaged = append(salvaged, zoomLevelsFromInfo(url, info)...)
	}
	if len(salvaged) == 0 {
		return nil, fmt.Errorf("iiif: invalid info.json: %w", err)
	}
	return salvaged, nil
}

// scanEmbeddedJSONObjects extracts every balanced top-level {...}
// substring of raw, on the theory that a non-JSON wrapper (HTML, JS)
// may still embed one or more genuine JSON objects.
func scanEmbeddedJSONObjects(raw []byte) [][]byte {
	var objects [][]byte
	depth := 0
	start := -1
	inString := false
	escaped := false
	for i, b := range raw {
		if inString {
			switch {
			case escaped:
				escaped = false
			case b == '\\':
				escaped = true
			case b == '"':
				inString = false
			}
			continue
		}
		switch b {
		case '"':
			inString = true
		case '{':
			if depth == 0 {
				start = i
			}
			depth++
		case '}':
			if depth > 0 {
				depth--
				if depth == 0 && start >= 0 {
					objects = append(objects, raw[start:i+1])
					start = -1
				}
			}
		}
	}
	return objects
}

func zoomLevelsFromInfo(url string, info *ImageInfo) []dezoomer.ZoomLevel {
	baseURL := strings.ReplaceAll(url, "/info.json", "")
	id := info.ID
	if id == "" {
		id = baseURL
	}
	quality := info.bestQuality()
	format := info.bestFormat()
	sizeFmt := info.sizeFormat()
	fullSize := vec2d.New(info.Width, info.Height)

	var levels []dezoomer.ZoomLevel
	for _, tileEntry := range info.Tiles {
		tileSize := tileEntry.effectiveSize(info.MaxArea)
		for _, scaleFactor := range tileEntry.ScaleFactors {
			levels = append(levels, &level{
				id:          id,
				fullSize:    fullSize,
				scaleFactor: scaleFactor,
				tileSize:    tileSize,
				quality:     quality,
				format:      format,
				sizeFormat:  sizeFmt,
			})
		}
	}
	return levels
}

// level is one IIIF Image API scale factor: a regular grid of tiles,
// each requested at its own region/size within the full-resolution
// image.
type level struct {
	id          string
	fullSize    vec2d.Vec2d
	scaleFactor uint
	tileSize    vec2d.Vec2d
	quality     string
	format      string
	sizeFormat  sizeFormat

	emitted bool
}

func (l *level) Size() vec2d.Vec2d { return l.fullSize.DivScalar(l.scaleFactor) }
func (l *level) TileSize() vec2d.Vec2d { return l.tileSize }

func (l *level) Title() string {
	name := l.id
	if idx := strings.LastIndexByte(name, '/'); idx >= 0 {
		name = name[idx+1:]
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return "IIIF Image"
	}
	return name
}

func (l *level) PostProcess() func([]byte) ([]byte, error) { return nil }
func (l *level) SetFetchResult(results []dezoomer.FetchResult) {}

// TileURL renders a IIIF Image API request URL for the tile at
// gridPos, computing its full-resolution region from the grid position
// and clamping it to the image bounds via MaxSizeInRect.
func (l *level) TileURL(gridPos vec2d.Vec2d) string {
	scaledTileSize := l.tileSize.MulScalar(l.scaleFactor)
	xyPos := gridPos.Mul(scaledTileSize)
	clampedScaled := vec2d.MaxSizeInRect(xyPos, scaledTileSize, l.fullSize)
	requestSize := clampedScaled.DivScalar(l.scaleFactor)

	return fmt.Sprintf("%s/%d,%d,%d,%d/%s/0/%s.%s",
		l.id,
		xyPos.X, xyPos.Y, clampedScaled.X, clampedScaled.Y,
		formatSize(requestSize, l.sizeFormat),
		l.quality, l.format,
	)
}

func (l *level) NextTileReferences(previous []dezoomer.FetchResult) []dezoomer.TileReference {
	if l.emitted {
		return nil
	}
	l.emitted = true
	return dezoomer.GridTileReferences(l)
}

func formatSize(size vec2d.Vec2d, format sizeFormat) string {
	if format == sizeFormatWidthOnly {
		return fmt.Sprintf("%d,", size.X)
	}
	return fmt.Sprintf("%d,%d", size.X, size.Y)
}
