// Package zoomify implements the Zoomify tile-pyramid dezoomer variant:
// parse ImageProperties.xml, derive every level by halving until both
// dimensions fit in one tile, and number tiles in row-major order across
// the whole pyramid so every run of 256 tiles forms one TileGroup
// directory.
package zoomify

import (
	"context"
	"encoding/xml"
	"fmt"
	"strings"

	"github.com/dezoomify/dezoomify-go/internal/dezoomer"
	"github.com/dezoomify/dezoomify-go/internal/vec2d"
)

const propertiesMarker = "/ImageProperties.xml"

// Dezoomer recognizes URLs containing "/ImageProperties.xml".
type Dezoomer struct{}

// New returns a Zoomify dezoomer.
func New() *Dezoomer { return &Dezoomer{} }

func (d *Dezoomer) Name() string { return "zoomify" }

func (d *Dezoomer) ZoomLevels(ctx context.Context, in *dezoomer.Input) ([]dezoomer.ZoomLevel, error) {
	if !strings.Contains(in.URI, propertiesMarker) {
		return nil, fmt.Errorf("%w: %q is not a Zoomify ImageProperties.xml URL", dezoomer.ErrWrongDezoomer, in.URI)
	}
	if !in.Contents.Known {
		return nil, &dezoomer.NeedsDataError{URI: in.URI}
	}
	if in.Contents.Err != nil {
		return nil, fmt.Errorf("zoomify: fetch %s: %w", in.URI, in.Contents.Err)
	}
	return loadFromProperties(in.URI, in.Contents.Body)
}

func (d *Dezoomer) DezoomerResult(ctx context.Context, in *dezoomer.Input) ([]dezoomer.ZoomableImage, error) {
	levels, err := d.ZoomLevels(ctx, in)
	if err != nil {
		return nil, err
	}
	title := ""
	if len(levels) > 0 {
		title = levels[0].Title()
	}
	return []dezoomer.ZoomableImage{dezoomer.Resolved(levels, title)}, nil
}

type imageProperties struct {
	XMLName  xml.Name `xml:"IMAGE_PROPERTIES"`
	Width    uint     `xml:"WIDTH,attr"`
	Height   uint     `xml:"HEIGHT,attr"`
	TileSize uint     `xml:"TILESIZE,attr"`
}

func loadFromProperties(uri string, body []byte) ([]dezoomer.ZoomLevel, error) {
	var props imageProperties
	if err := xml.Unmarshal(body, &props); err != nil {
		return nil, fmt.Errorf("zoomify: parse ImageProperties.xml: %w", err)
	}
	if props.Width == 0 || props.Height == 0 || props.TileSize == 0 {
		return nil, fmt.Errorf("zoomify: ImageProperties.xml missing WIDTH/HEIGHT/TILESIZE")
	}

	baseURL := strings.SplitN(uri, propertiesMarker, 2)[0]
	title := titleFromBase(baseURL)
	infos := computeLevelSizes(props.Width, props.Height, props.TileSize)

	cumulative := uint(0)
	levels := make([]dezoomer.ZoomLevel, len(infos))
	for i, size := range infos {
		cols := ceilDiv(size.X, props.TileSize)
		rows := ceilDiv(size.Y, props.TileSize)
		levels[i] = &level{
			baseURL:               baseURL,
			size:                  size,
			tileSize:              props.TileSize,
			levelIndex:            i,
			title:                 title,
			cols:                  cols,
			cumulativeTilesBefore: cumulative,
		}
		cumulative += cols * rows
	}
	return levels, nil
}

// computeLevelSizes returns the pyramid's level sizes ordered smallest
// (fits in a single tile) first, largest (full resolution) last, each
// produced by repeatedly halving (rounding up) the previous size.
func computeLevelSizes(width, height, tileSize uint) []vec2d.Vec2d {
	sizes := []vec2d.Vec2d{vec2d.New(width, height)}
	for !fitsInOneTile(sizes[len(sizes)-1], tileSize) {
		last := sizes[len(sizes)-1]
		sizes = append(sizes, vec2d.New(ceilDiv(last.X, 2), ceilDiv(last.Y, 2)))
	}
	// sizes is currently largest-first; reverse to smallest-first.
	for i, j := 0, len(sizes)-1; i < j; i, j = i+1, j-1 {
		sizes[i], sizes[j] = sizes[j], sizes[i]
	}
	return sizes
}

func fitsInOneTile(size vec2d.Vec2d, tileSize uint) bool {
	return size.X <= tileSize && size.Y <= tileSize
}

func ceilDiv(a, b uint) uint {
	return (a + b - 1) / b
}

// titleFromBase extracts the last non-empty path segment of base (the
// URL with "/ImageProperties.xml" stripped), falling back to
// "zoomify_image" when none is found.
func titleFromBase(base string) string {
	parts := strings.Split(base+"/", "/")
	for i := len(parts) - 1; i >= 0; i-- {
		if parts[i] != "" {
			return parts[i]
		}
	}
	return "zoomify_image"
}

// level is one rung of a Zoomify pyramid. It computes every tile of the
// level up front in a single batch, since Zoomify's tile set does not
// depend on earlier fetch results.
type level struct {
	baseURL               string
	size                  vec2d.Vec2d
	tileSize              uint
	levelIndex            int
	title                 string
	cols                  uint
	cumulativeTilesBefore uint

	emitted bool
}

func (l *level) Size() vec2d.Vec2d     { return l.size }
func (l *level) TileSize() vec2d.Vec2d { return vec2d.New(l.tileSize, l.tileSize) }
func (l *level) Title() string         { return l.title }
func (l *level) PostProcess() func([]byte) ([]byte, error) { return nil }
func (l *level) SetFetchResult(results []dezoomer.FetchResult) {}

// TileURL builds the TileGroup-qualified URL for the tile at gridPos,
// deriving its group from the pyramid-wide row-major tile index: every
// level's tiles are numbered after all tiles of every lower level.
func (l *level) TileURL(gridPos vec2d.Vec2d) string {
	localIndex := gridPos.Y*l.cols + gridPos.X
	group := (l.cumulativeTilesBefore + localIndex) / 256
	return fmt.Sprintf("%s/TileGroup%d/%d-%d-%d.jpg", l.baseURL, group, l.levelIndex, gridPos.X, gridPos.Y)
}

func (l *level) NextTileReferences(previous []dezoomer.FetchResult) []dezoomer.TileReference {
	if l.emitted {
		return nil
	}
	l.emitted = true
	return dezoomer.GridTileReferences(l)
}
