// Package config holds the flat, validated settings a run is configured
// with, populated directly from parsed flags by cmd/dezoomify-go/main.go
// (there is no env/file configuration layer in the teacher or the rest
// of the pack, so none is introduced here).
package config

import "fmt"

// Header is a single --header "Name: Value" flag occurrence.
type Header struct {
	Name  string
	Value string
}

// Config is every setting a single invocation of the CLI needs.
type Config struct {
	URL     string // positional argument; empty in bulk mode
	Bulk    string // --bulk PATH-OR-URL; mutually exclusive with URL
	Outfile string

	MaxWidth   int
	MaxHeight  int
	ZoomLevel  int // -1 means unset
	ImageIndex int // -1 means unset

	Compression int // 0..100, PNG only
	JPEGQuality int // 1..100

	Workers int
	Retries int

	Headers []Header
}

// Validate checks the range and mutual-exclusivity constraints named in
// the external interfaces section: compression/jpeg-quality ranges, and
// exactly one of a positional URL or --bulk.
func (c Config) Validate() error {
	if c.URL == "" && c.Bulk == "" {
		return fmt.Errorf("config: one of a URL argument or --bulk is required")
	}
	if c.URL != "" && c.Bulk != "" {
		return fmt.Errorf("config: --bulk and a positional URL are mutually exclusive")
	}
	if c.Compression < 0 || c.Compression > 100 {
		return fmt.Errorf("config: --compression must be in 0..100, got %d", c.Compression)
	}
	if c.JPEGQuality < 1 || c.JPEGQuality > 100 {
		return fmt.Errorf("config: --jpeg-quality must be in 1..100, got %d", c.JPEGQuality)
	}
	if c.Workers <= 0 {
		return fmt.Errorf("config: --workers must be positive, got %d", c.Workers)
	}
	if c.Retries < 0 {
		return fmt.Errorf("config: --retries must be non-negative, got %d", c.Retries)
	}
	return nil
}

// HeaderMap flattens Headers into the map[string]string shape the
// network client and downloader expect.
func (c Config) HeaderMap() map[string]string {
	if len(c.Headers) == 0 {
		return nil
	}
	m := make(map[string]string, len(c.Headers))
	for _, h := range c.Headers {
		m[h.Name] = h.Value
	}
	return m
}
