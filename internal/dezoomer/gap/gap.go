// Package gap implements the Google Arts & Culture dezoomer. Unlike
// the other dezoomers, it needs two network round trips before it can
// produce zoom levels: the asset page's HTML first, then the tile-info
// XML document it points at. The Dezoomer value carries the page info
// extracted from the first round trip across to the second.
package gap

import (
	"context"
	"fmt"
	"strings"

	"github.com/dezoomify/dezoomify-go/internal/dezoomer"
	"github.com/dezoomify/dezoomify-go/internal/vec2d"
)

const (
	assetHostMarker = "artsandculture.google.com"
	tileInfoSuffix  = "=g"
)

// Dezoomer handles artsandculture.google.com asset pages.
type Dezoomer struct {
	pageInfo *PageInfo
}

// New returns a Google Arts & Culture dezoomer.
func New() *Dezoomer { return &Dezoomer{} }

func (d *Dezoomer) Name() string { return "google_arts_and_culture" }

func (d *Dezoomer) ZoomLevels(ctx context.Context, in *dezoomer.Input) ([]dezoomer.ZoomLevel, error) {
	validURI := strings.Contains(in.URI, assetHostMarker) ||
		(d.pageInfo != nil && strings.HasSuffix(in.URI, tileInfoSuffix))
	if !validURI {
		return nil, fmt.Errorf("%w: not a google arts & culture URL", dezoomer.ErrWrongDezoomer)
	}
	if !in.Contents.Known {
		return nil, &dezoomer.NeedsDataError{URI: in.URI}
	}
	if in.Contents.Err != nil {
		return nil, fmt.Errorf("google_arts_and_culture: fetch %s: %w", in.URI, in.Contents.Err)
	}

	if d.pageInfo == nil {
		info, err := ParsePageInfo(in.Contents.Body)
		if err != nil {
			return nil, fmt.Errorf("google_arts_and_culture: %w", err)
		}
		d.pageInfo = info
		return nil, &dezoomer.NeedsDataError{URI: info.TileInfoURL()}
	}

	info, err := parseTileInfo(in.Contents.Body)
	if err != nil {
		return nil, fmt.Errorf("google_arts_and_culture: %w", err)
	}

	levels := make([]dezoomer.ZoomLevel, len(info.PyramidLevel))
	for z, pl := range info.PyramidLevel {
		levels[z] = &level{
			size: vec2d.New(
				info.TileWidth*pl.NumTilesX-pl.EmptyPelsX,
				info.TileHeight*pl.NumTilesY-pl.EmptyPelsY,
			),
			tileSize: vec2d.New(info.TileWidth, info.TileHeight),
			z:        uint(z),
			pageInfo: d.pageInfo,
		}
	}
	return levels, nil
}

func (d *Dezoomer) DezoomerResult(ctx context.Context, in *dezoomer.Input) ([]dezoomer.ZoomableImage, error) {
	levels, err := d.ZoomLevels(ctx, in)
	if err != nil {
		return nil, err
	}
	title := ""
	if d.pageInfo != nil {
		title = d.pageInfo.Name
	}
	return []dezoomer.ZoomableImage{dezoomer.Resolved(levels, title)}, nil
}

// level is one level of a Google Arts & Culture tile pyramid.
type level struct {
	size     vec2d.Vec2d
	tileSize vec2d.Vec2d
	z        uint
	pageInfo *PageInfo

	emitted bool
}

func (l *level) Size() vec2d.Vec2d     { return l.size }
func (l *level) TileSize() vec2d.Vec2d { return l.tileSize }
func (l *level) Title() string         { return l.pageInfo.Name }

func (l *level) TileURL(gridPos vec2d.Vec2d) string {
	return computeTileURL(l.pageInfo, gridPos.X, gridPos.Y, l.z)
}

func (l *level) PostProcess() func([]byte) ([]byte, error) { return decryptTile }
func (l *level) SetFetchResult(results []dezoomer.FetchResult) {}

func (l *level) NextTileReferences(previous []dezoomer.FetchResult) []dezoomer.TileReference {
	if l.emitted {
		return nil
	}
	l.emitted = true
	return dezoomer.GridTileReferences(l)
}
