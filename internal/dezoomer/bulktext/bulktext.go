// Package bulktext implements the bulk-URL-list dezoomer variant: a flat
// text file where each non-comment line names one image, optionally with
// a custom title.
package bulktext

import (
	"bufio"
	"context"
	"fmt"
	"net/url"
	"os"
	"path"
	"strconv"
	"strings"

	"github.com/dezoomify/dezoomify-go/internal/dezoomer"
)

// Dezoomer recognizes .txt/.urls files, or URIs whose name contains
// "bulk" or "list" (excluding `{{`/`}}` template placeholders reserved
// for a generic URL-template dezoomer), and turns each line into an
// unresolved ZoomableImage.
type Dezoomer struct{}

// New returns a bulk-text dezoomer.
func New() *Dezoomer { return &Dezoomer{} }

func (d *Dezoomer) Name() string { return "bulk_text" }

// ZoomLevels always fails: a bulk-text file never identifies a single
// image directly, only a list of images that each need their own
// dezoomer pass.
func (d *Dezoomer) ZoomLevels(ctx context.Context, in *dezoomer.Input) ([]dezoomer.ZoomLevel, error) {
	return nil, fmt.Errorf("%w: bulk_text never resolves directly to zoom levels", dezoomer.ErrWrongDezoomer)
}

func looksLikeBulkFile(uri string) bool {
	if strings.Contains(uri, "{{") || strings.Contains(uri, "}}") {
		return false
	}
	return strings.HasSuffix(uri, ".txt") ||
		strings.HasSuffix(uri, ".urls") ||
		strings.Contains(uri, "bulk") ||
		strings.Contains(uri, "list")
}

func (d *Dezoomer) DezoomerResult(ctx context.Context, in *dezoomer.Input) ([]dezoomer.ZoomableImage, error) {
	if !looksLikeBulkFile(in.URI) {
		return nil, fmt.Errorf("%w: %q does not look like a bulk URL list", dezoomer.ErrWrongDezoomer, in.URI)
	}
	if !in.Contents.Known {
		return nil, &dezoomer.NeedsDataError{URI: in.URI}
	}
	if in.Contents.Err != nil {
		return nil, fmt.Errorf("bulk_text: fetch %s: %w", in.URI, in.Contents.Err)
	}

	entries, err := parseTextURLs(string(in.Contents.Body))
	if err != nil {
		return nil, fmt.Errorf("bulk_text: %w", err)
	}
	if len(entries) == 0 {
		return nil, fmt.Errorf("bulk_text: no valid URLs found in %s", in.URI)
	}

	images := make([]dezoomer.ZoomableImage, 0, len(entries))
	for _, e := range entries {
		images = append(images, dezoomer.Unresolved(e.url, e.title))
	}
	return images, nil
}

type entry struct {
	url   string
	title string
}

// parseTextURLs parses a bulk-text file body into its entries. Blank
// lines and "#"-prefixed comments are skipped; each remaining line is
// "URL [custom title]" split on the first run of whitespace. A line
// whose URL portion is neither a parseable URL, an existing local path,
// nor a {{X}}/{{Y}} template is a fatal parse error naming the 1-based
// line number and the offending text.
func parseTextURLs(content string) ([]entry, error) {
	var entries []entry
	scanner := bufio.NewScanner(strings.NewReader(content))
	lineNum := 0
	for scanner.Scan() {
		lineNum++
		trimmed := strings.TrimSpace(scanner.Text())
		if trimmed == "" || strings.HasPrefix(trimmed, "#") {
			continue
		}

		urlPart := trimmed
		var customTitle string
		if idx := strings.IndexFunc(trimmed, func(r rune) bool { return r == ' ' || r == '\t' }); idx >= 0 {
			urlPart = trimmed[:idx]
			customTitle = strings.TrimSpace(trimmed[idx+1:])
		}

		if err := validateURLOrPath(urlPart); err != nil {
			return nil, fmt.Errorf("on line %d: %q is not a valid URL or file path", lineNum, urlPart)
		}

		title := customTitle
		if title == "" {
			title = deriveTitle(urlPart, lineNum)
		}
		entries = append(entries, entry{url: urlPart, title: title})
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read bulk text: %w", err)
	}
	return entries, nil
}

func validateURLOrPath(input string) error {
	if u, err := url.Parse(input); err == nil && u.Scheme != "" && u.Host != "" {
		return nil
	}
	if _, err := os.Stat(input); err == nil {
		return nil
	}
	if strings.Contains(input, "{{X}}") || strings.Contains(input, "{{Y}}") {
		return nil
	}
	return fmt.Errorf("not a valid URL or file path")
}

// deriveTitle extracts the last non-empty path segment of url, without
// its extension, as a display title; falls back to "URL_<line>" when
// that segment is empty or url doesn't parse as an absolute URL.
func deriveTitle(rawURL string, lineNum int) string {
	u, err := url.Parse(rawURL)
	if err == nil && u.Scheme != "" {
		segment := path.Base(u.Path)
		if segment != "" && segment != "." && segment != "/" {
			if ext := path.Ext(segment); ext != "" {
				segment = strings.TrimSuffix(segment, ext)
			}
			if segment != "" {
				return segment
			}
		}
	}
	return "URL_" + strconv.Itoa(lineNum)
}
