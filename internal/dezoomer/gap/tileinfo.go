package gap

import (
	"bytes"
	"encoding/xml"
	"fmt"
)

// tileInfo is the tile pyramid description served at a Google Arts &
// Culture image's "=g" URL: a fixed tile size and one pyramidLevel
// entry per zoom level, smallest first.
type tileInfo struct {
	XMLName      xml.Name       `xml:"tile_info"`
	TileWidth    uint           `xml:"tile_width,attr"`
	TileHeight   uint           `xml:"tile_height,attr"`
	PyramidLevel []pyramidLevel `xml:"pyramid_level"`
}

// pyramidLevel describes one level's tile grid. The image is narrower
// than a whole number of tiles at most levels; emptyPels records how
// much of the final column/row of tiles is padding to trim off.
type pyramidLevel struct {
	NumTilesX  uint `xml:"num_tiles_x,attr"`
	NumTilesY  uint `xml:"num_tiles_y,attr"`
	EmptyPelsX uint `xml:"empty_pels_x,attr"`
	EmptyPelsY uint `xml:"empty_pels_y,attr"`
}

func parseTileInfo(body []byte) (*tileInfo, error) {
	var info tileInfo
	if err := xml.NewDecoder(bytes.NewReader(body)).Decode(&info); err != nil {
		return nil, fmt.Errorf("decoding tile_info xml: %w", err)
	}
	if len(info.PyramidLevel) == 0 {
		return nil, fmt.Errorf("tile_info has no pyramid levels")
	}
	return &info, nil
}
