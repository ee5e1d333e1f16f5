package gap

import (
	"fmt"
	"regexp"
	"strings"
)

// PageInfo is what an artsandculture.google.com asset page's HTML
// reveals about the artwork it hosts: the CDN URL tiles are served
// from, the per-asset signing token embedded in that URL, and a
// human-readable name for the piece.
type PageInfo struct {
	BaseURL string
	Token   string
	Name    string
}

var (
	cdnImageURLPattern = regexp.MustCompile(`https://[a-zA-Z0-9.-]+\.(?:ggpht|googleusercontent)\.com/[^\s"'\\<>]+`)
	titleTagPattern    = regexp.MustCompile(`(?is)<title[^>]*>(.*?)</title>`)
)

// ParsePageInfo extracts a PageInfo from an asset page's HTML. Google
// embeds the artwork's zoomable-image CDN URL directly in the page; we
// recover the signing token from the part of that URL after its last
// "=" (Google's image-serving URLs append size/format directives
// there, and GAP's own pages stash the tile-signing token in the same
// position instead of a size spec).
func ParsePageInfo(html []byte) (*PageInfo, error) {
	match := cdnImageURLPattern.FindString(string(html))
	if match == "" {
		return nil, fmt.Errorf("google_arts_and_culture: no CDN image URL found in page")
	}

	baseURL := match
	token := ""
	if idx := strings.LastIndex(match, "="); idx > 0 {
		baseURL = match[:idx]
		token = match[idx+1:]
	}
	if token == "" {
		return nil, fmt.Errorf("google_arts_and_culture: could not recover signing token from %q", match)
	}

	name := "Google Arts & Culture image"
	if titleMatch := titleTagPattern.FindSubmatch(html); len(titleMatch) == 2 {
		if t := strings.TrimSpace(string(titleMatch[1])); t != "" {
			name = t
		}
	}

	return &PageInfo{BaseURL: baseURL, Token: token, Name: name}, nil
}

// TileInfoURL is the URL GAP serves this image's tile pyramid
// description at: the base CDN URL suffixed with "=g".
func (p *PageInfo) TileInfoURL() string {
	return p.BaseURL + "=g"
}
