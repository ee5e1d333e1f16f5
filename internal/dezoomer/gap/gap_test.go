package gap

import (
	"context"
	"testing"

	"github.com/dezoomify/dezoomify-go/internal/dezoomer"
	"github.com/dezoomify/dezoomify-go/internal/vec2d"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testPageHTML = "<!DOCTYPE html>\n<html><head><title>Â©Designers Anonymes</title></head>\n<body><script>var img=\"https://lh5.ggpht.com/test=s0\";</script></body></html>"

const testTileInfoXML = `<?xml version="1.0"?>
<tile_info tile_width="512" tile_height="512">
  <pyramid_level num_tiles_x="1" num_tiles_y="1" empty_pels_x="0" empty_pels_y="0"/>
  <pyramid_level num_tiles_x="2" num_tiles_y="2" empty_pels_x="100" empty_pels_y="50"/>
  <pyramid_level num_tiles_x="4" num_tiles_y="3" empty_pels_x="50" empty_pels_y="20"/>
  <pyramid_level num_tiles_x="6" num_tiles_y="5" empty_pels_x="10" empty_pels_y="5"/>
  <pyramid_level num_tiles_x="11" num_tiles_y="8" empty_pels_x="196" empty_pels_y="16"/>
</tile_info>`

func TestZoomLevelsExtractsPageInfoAndRequestsTileInfo(t *testing.T) {
	d := New()
	in := &dezoomer.Input{
		URI:      "https://artsandculture.google.com/asset/test",
		Contents: dezoomer.Contents{Known: true, Body: []byte(testPageHTML)},
	}

	_, err := d.ZoomLevels(context.Background(), in)
	require.Error(t, err)
	var needsData *dezoomer.NeedsDataError
	require.ErrorAs(t, err, &needsData)
	assert.True(t, len(needsData.URI) > 0)
	assert.Contains(t, needsData.URI, "lh5.ggpht.com")
	assert.True(t, needsData.URI[len(needsData.URI)-2:] == "=g")

	require.NotNil(t, d.pageInfo)
	assert.Equal(t, "https://lh5.ggpht.com/test", d.pageInfo.BaseURL)
	assert.Equal(t, "s0", d.pageInfo.Token)
}

func TestZoomLevelsParsesTileInfoAfterPageInfoIsKnown(t *testing.T) {
	d := &Dezoomer{pageInfo: &PageInfo{
		BaseURL: "https://lh5.ggpht.com/test",
		Token:   "test_token",
		Name:    "Test Image",
	}}

	in := &dezoomer.Input{
		URI:      "https://lh5.ggpht.com/test=g",
		Contents: dezoomer.Contents{Known: true, Body: []byte(testTileInfoXML)},
	}

	levels, err := d.ZoomLevels(context.Background(), in)
	require.NoError(t, err)
	require.Len(t, levels, 5)

	largest := levels[4]
	assert.Equal(t, uint(5436), largest.Size().X) // 11*512-196
	assert.Equal(t, uint(4080), largest.Size().Y) // 8*512-16
}

func TestZoomLevelsFullWorkflow(t *testing.T) {
	d := New()

	first := &dezoomer.Input{
		URI:      "https://artsandculture.google.com/asset/test",
		Contents: dezoomer.Contents{Known: true, Body: []byte(testPageHTML)},
	}
	_, err := d.ZoomLevels(context.Background(), first)
	var needsData *dezoomer.NeedsDataError
	require.ErrorAs(t, err, &needsData)

	second := &dezoomer.Input{
		URI:      needsData.URI,
		Contents: dezoomer.Contents{Known: true, Body: []byte(testTileInfoXML)},
	}
	levels, err := d.ZoomLevels(context.Background(), second)
	require.NoError(t, err)
	require.Len(t, levels, 5)
	assert.Contains(t, levels[0].Title(), "Designers Anonymes")
}

func TestZoomLevelsRejectsUnrelatedURIWithoutPageInfo(t *testing.T) {
	d := New()
	in := &dezoomer.Input{
		URI:      "https://example.com/test",
		Contents: dezoomer.Contents{Known: true, Body: []byte{}},
	}
	_, err := d.ZoomLevels(context.Background(), in)
	assert.ErrorIs(t, err, dezoomer.ErrWrongDezoomer)
}

func TestZoomLevelsAcceptsTileInfoURIOncePageInfoIsSet(t *testing.T) {
	d := &Dezoomer{pageInfo: &PageInfo{BaseURL: "https://lh5.ggpht.com/test", Token: "test_token", Name: "Test Image"}}
	in := &dezoomer.Input{
		URI:      "https://lh5.ggpht.com/test=g",
		Contents: dezoomer.Contents{Known: true, Body: []byte{}},
	}
	_, err := d.ZoomLevels(context.Background(), in)
	assert.NotErrorIs(t, err, dezoomer.ErrWrongDezoomer)
}

func TestZoomLevelsRejectsInvalidTileInfoXML(t *testing.T) {
	d := &Dezoomer{pageInfo: &PageInfo{BaseURL: "https://lh5.ggpht.com/test", Token: "test_token", Name: "Test Image"}}
	in := &dezoomer.Input{
		URI:      "https://lh5.ggpht.com/test=g",
		Contents: dezoomer.Contents{Known: true, Body: []byte(`<invalid>not a tile info</invalid>`)},
	}
	_, err := d.ZoomLevels(context.Background(), in)
	assert.Error(t, err)
}

func TestTileURLGeneration(t *testing.T) {
	page := &PageInfo{BaseURL: "https://lh5.ggpht.com/test", Token: "test_token", Name: "Test Image"}
	lvl := &level{size: vec2d.New(1024, 768), tileSize: vec2d.New(256, 256), z: 2, pageInfo: page}

	url := lvl.TileURL(vec2d.New(1, 1))
	assert.True(t, len(url) > len(page.BaseURL)+20)
	assert.Contains(t, url, "=x1-y1-z2-t")
	assert.True(t, url[:len(page.BaseURL)] == page.BaseURL)
}

func TestDezoomerName(t *testing.T) {
	assert.Equal(t, "google_arts_and_culture", New().Name())
}

func TestLevelTitleUsesPageName(t *testing.T) {
	page := &PageInfo{BaseURL: "https://lh5.ggpht.com/test", Token: "test_token", Name: "Test Image Name"}
	lvl := &level{size: vec2d.New(1024, 768), tileSize: vec2d.New(256, 256), z: 2, pageInfo: page}
	assert.Equal(t, "Test Image Name", lvl.Title())
}
