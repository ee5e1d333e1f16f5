package zoomify

import (
	"context"
	"fmt"
	"testing"

	"github.com/dezoomify/dezoomify-go/internal/dezoomer"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func propertiesXML(width, height, tileSize uint) []byte {
	return []byte(fmt.Sprintf(
		`<IMAGE_PROPERTIES WIDTH="%d" HEIGHT="%d" NUMTILES="1" NUMIMAGES="1" VERSION="1.8" TILESIZE="%d"/>`,
		width, height, tileSize))
}

func TestPanoramaLevelCountAndFirstBatch(t *testing.T) {
	body := propertiesXML(174550, 16991, 256)
	levels, err := loadFromProperties("http://example.com/images/manuscript123/ImageProperties.xml", body)
	require.NoError(t, err)
	require.Len(t, levels, 11)

	lvl3 := levels[3]
	refs := lvl3.NextTileReferences(nil)
	require.Len(t, refs, 6)
	for x, ref := range refs {
		assert.Equal(t, fmt.Sprintf("http://example.com/images/manuscript123/TileGroup0/3-%d-0.jpg", x), ref.URL)
	}
}

func TestTileGroupBoundaryCrossesAtTwoFiftySix(t *testing.T) {
	body := propertiesXML(12000, 9788, 256)
	levels, err := loadFromProperties("http://example.com/ImageProperties.xml", body)
	require.NoError(t, err)
	require.Len(t, levels, 7)

	lvl5 := levels[5]
	refs := lvl5.NextTileReferences(nil)

	var row14, row15 dezoomer.TileReference
	cols := lvl5.(*level).cols
	row14 = refs[14*int(cols)+0]
	row15 = refs[15*int(cols)+0]
	assert.Contains(t, row14.URL, "TileGroup1/5-0-14.jpg")
	assert.Contains(t, row15.URL, "TileGroup2/5-0-15.jpg")
}

func TestTitleExtractionFromNestedPath(t *testing.T) {
	assert.Equal(t, "manuscript123", titleFromBase("http://example.com/images/manuscript123"))
}

func TestTitleExtractionSimplePath(t *testing.T) {
	assert.Equal(t, "example.com", titleFromBase("http://example.com"))
}

func TestTitleExtractionIgnoresQueryString(t *testing.T) {
	baseURL := "https://library.example.edu/viewer/book_of_kells/ImageProperties.xml?cache=false"
	base := stripPropertiesMarker(baseURL)
	assert.Equal(t, "book_of_kells", titleFromBase(base))
}

func stripPropertiesMarker(uri string) string {
	for i := 0; i+len(propertiesMarker) <= len(uri); i++ {
		if uri[i:i+len(propertiesMarker)] == propertiesMarker {
			return uri[:i]
		}
	}
	return uri
}

func TestZoomLevelsRejectsUnrelatedURI(t *testing.T) {
	d := New()
	_, err := d.ZoomLevels(context.Background(), &dezoomer.Input{URI: "https://example.org/info.json"})
	require.Error(t, err)
	assert.ErrorIs(t, err, dezoomer.ErrWrongDezoomer)
}

func TestZoomLevelsRequestsDataWhenUnknown(t *testing.T) {
	d := New()
	_, err := d.ZoomLevels(context.Background(), &dezoomer.Input{URI: "http://example.com/ImageProperties.xml"})
	require.Error(t, err)
	var needsData *dezoomer.NeedsDataError
	assert.ErrorAs(t, err, &needsData)
}

func TestSmallestLevelFitsInOneTile(t *testing.T) {
	body := propertiesXML(174550, 16991, 256)
	levels, err := loadFromProperties("http://example.com/ImageProperties.xml", body)
	require.NoError(t, err)
	size := levels[0].Size()
	assert.LessOrEqual(t, size.X, uint(256))
	assert.LessOrEqual(t, size.Y, uint(256))
}

func TestLargestLevelIsFullResolution(t *testing.T) {
	body := propertiesXML(12000, 9788, 256)
	levels, err := loadFromProperties("http://example.com/ImageProperties.xml", body)
	require.NoError(t, err)
	last := levels[len(levels)-1].Size()
	assert.Equal(t, uint(12000), last.X)
	assert.Equal(t, uint(9788), last.Y)
}
