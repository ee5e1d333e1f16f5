package dezoomer

import "github.com/dezoomify/dezoomify-go/internal/vec2d"

// TilesRect is implemented by zoom levels whose tiles form a regular
// grid: every tile but the last row/column is exactly TileSize(), and
// the grid is covered once, top to bottom, left to right. Zoomify and
// IIIF levels both reduce to this shape.
type TilesRect interface {
	Size() vec2d.Vec2d
	TileSize() vec2d.Vec2d
	TileURL(gridPos vec2d.Vec2d) string
}

// GridTileReferences enumerates every grid cell of a TilesRect in a
// single batch: ceil(Size()/TileSize()) columns and rows, each cell's
// position being its grid coordinates times TileSize().
func GridTileReferences(tr TilesRect) []TileReference {
	size := tr.Size()
	tileSize := tr.TileSize()
	cols := ceilDiv(size.X, tileSize.X)
	rows := ceilDiv(size.Y, tileSize.Y)

	refs := make([]TileReference, 0, cols*rows)
	for y := uint(0); y < rows; y++ {
		for x := uint(0); x < cols; x++ {
			gridPos := vec2d.New(x, y)
			refs = append(refs, TileReference{
				URL:      tr.TileURL(gridPos),
				Position: vec2d.New(x*tileSize.X, y*tileSize.Y),
			})
		}
	}
	return refs
}

func ceilDiv(a, b uint) uint {
	if b == 0 {
		return 0
	}
	return (a + b - 1) / b
}
