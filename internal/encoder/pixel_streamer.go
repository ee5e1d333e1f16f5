package encoder

import (
	"fmt"

	"github.com/dezoomify/dezoomify-go/internal/tile"
	"github.com/dezoomify/dezoomify-go/internal/vec2d"
)

// pixelStreamer reorders arbitrarily-ordered tiles into top-to-bottom
// row-complete scanlines (C9). It tracks the next unwritten row
// yCursor, which never decreases, and buffers tiles whose rows are not
// yet complete. A row is complete when the tiles received so far cover
// its full width; the streamer trusts each tile's own dimensions rather
// than knowing the pyramid's tile layout in advance (tiles partition the
// canvas without overlap by construction, so summed coverage reaching
// the canvas width is equivalent to "every tile intersecting this row
// has arrived").
//
// Memory: a tile is referenced from the row buckets of every row it
// spans; once yCursor advances past a row, that row's bucket (and every
// tile reference in it whose last row that was) is dropped. When tiles
// arrive roughly top to bottom, about one tile-row's worth is buffered.
// The streamer does not enforce that bound: a tile below yCursor stays
// buffered until every row above it is complete, so tiles arriving far
// out of order can buffer more than one tile-row.
type pixelStreamer struct {
	width, height int
	bytesPerPixel int
	yCursor       int
	rowCoverage   []int
	tilesByRow    map[int][]bufferedTile
	writeRow      func(row []byte) error
}

type bufferedTile struct {
	tile        tile.Tile
	clampedSize vec2d.Vec2d
}

func newPixelStreamer(width, height, bytesPerPixel int, writeRow func([]byte) error) *pixelStreamer {
	return &pixelStreamer{
		width:         width,
		height:        height,
		bytesPerPixel: bytesPerPixel,
		rowCoverage:   make([]int, height),
		tilesByRow:    make(map[int][]bufferedTile),
		writeRow:      writeRow,
	}
}

// AddTile buffers t and flushes every scanline that becomes complete as
// a result, in increasing y order.
func (s *pixelStreamer) AddTile(t tile.Tile) error {
	canvasSize := vec2d.New(uint(s.width), uint(s.height))
	if !t.Position.FitsInside(canvasSize) {
		return fmt.Errorf("%w at %v (canvas %v)", ErrInvalidData, t.Position, canvasSize)
	}

	clamped := vec2d.MaxSizeInRect(t.Position, t.Size(), canvasSize)
	if clamped.X == 0 || clamped.Y == 0 {
		return nil
	}

	bt := bufferedTile{tile: t, clampedSize: clamped}
	startRow := int(t.Position.Y)
	endRow := startRow + int(clamped.Y)
	for y := startRow; y < endRow; y++ {
		if y < s.yCursor {
			continue // row already flushed; nothing left to contribute
		}
		s.rowCoverage[y] += int(clamped.X)
		s.tilesByRow[y] = append(s.tilesByRow[y], bt)
	}
	return s.flushComplete()
}

func (s *pixelStreamer) flushComplete() error {
	for s.yCursor < s.height && s.rowCoverage[s.yCursor] >= s.width {
		if err := s.flushRow(s.yCursor); err != nil {
			return err
		}
		delete(s.tilesByRow, s.yCursor)
		s.yCursor++
	}
	return nil
}

func (s *pixelStreamer) flushRow(y int) error {
	row := make([]byte, s.width*s.bytesPerPixel)
	for _, bt := range s.tilesByRow[y] {
		localY := y - int(bt.tile.Position.Y)
		srcBounds := bt.tile.Image.Bounds()
		for x := 0; x < int(bt.clampedSize.X); x++ {
			r, g, b, _ := bt.tile.Image.At(srcBounds.Min.X+x, srcBounds.Min.Y+localY).RGBA()
			destX := int(bt.tile.Position.X) + x
			o := destX * s.bytesPerPixel
			row[o] = byte(r >> 8)
			row[o+1] = byte(g >> 8)
			row[o+2] = byte(b >> 8)
		}
	}
	return s.writeRow(row)
}

// Finalize flushes every remaining row, including rows left partially
// (or entirely) uncovered by a partial download; uncovered pixels keep
// their zero-value (black) default, per the specification's partial
// download behavior.
func (s *pixelStreamer) Finalize() error {
	for s.yCursor < s.height {
		if err := s.flushRow(s.yCursor); err != nil {
			return err
		}
		delete(s.tilesByRow, s.yCursor)
		s.yCursor++
	}
	return nil
}
