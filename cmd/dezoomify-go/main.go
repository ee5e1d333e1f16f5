// Command dezoomify-go reassembles a single large image from a deep-zoom
// tile service: given a URL (or, in bulk mode, a list of URLs), it picks
// a dezoomer, resolves an image and zoom level, downloads every tile
// concurrently, and writes the stitched result to disk.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"time"

	"github.com/dezoomify/dezoomify-go/internal/config"
	"github.com/dezoomify/dezoomify-go/internal/dezoomer"
	"github.com/dezoomify/dezoomify-go/internal/dezoomer/bulktext"
	"github.com/dezoomify/dezoomify-go/internal/dezoomer/gap"
	"github.com/dezoomify/dezoomify-go/internal/dezoomer/iiif"
	"github.com/dezoomify/dezoomify-go/internal/dezoomer/zoomify"
	"github.com/dezoomify/dezoomify-go/internal/encoder"
	"github.com/dezoomify/dezoomify-go/internal/logging"
	"github.com/dezoomify/dezoomify-go/internal/network"
	"github.com/dezoomify/dezoomify-go/internal/orchestrator"
)

// Exit codes, per the specification's external interfaces section.
const (
	exitSuccess      = 0
	exitFailure      = 1
	exitPartial      = 2
	exitInvalidInput = 3
)

// headerFlag implements flag.Value for repeatable -header "Name: Value"
// occurrences.
type headerFlag []config.Header

func (h *headerFlag) String() string {
	if h == nil {
		return ""
	}
	parts := make([]string, len(*h))
	for i, hdr := range *h {
		parts[i] = hdr.Name + ": " + hdr.Value
	}
	return strings.Join(parts, ", ")
}

func (h *headerFlag) Set(value string) error {
	name, val, ok := strings.Cut(value, ":")
	if !ok {
		return fmt.Errorf("-header must be in \"Name: Value\" form, got %q", value)
	}
	*h = append(*h, config.Header{Name: strings.TrimSpace(name), Value: strings.TrimSpace(val)})
	return nil
}

func main() {
	os.Exit(run())
}

func run() int {
	logger := logging.New(os.Stderr, "")

	outfile := flag.String("outfile", "", "Output file path.")
	maxWidth := flag.Int("max-width", 0, "Maximum output width (0 = unbounded).")
	maxHeight := flag.Int("max-height", 0, "Maximum output height (0 = unbounded).")
	zoomLevel := flag.Int("zoom-level", -1, "Zero-based zoom level index to use (-1 = auto).")
	imageIndex := flag.Int("image-index", -1, "Zero-based image index to use when a URL names several images (-1 = auto).")
	bulk := flag.String("bulk", "", "Path or URL to a bulk-text list of images; switches to bulk mode.")
	compression := flag.Int("compression", 20, "PNG compression level, 0-100.")
	jpegQuality := flag.Int("jpeg-quality", 90, "JPEG quality, 1-100.")
	workers := flag.Int("workers", 16, "Maximum concurrent tile fetches.")
	retries := flag.Int("retries", 3, "Maximum retry attempts per tile.")
	var headers headerFlag
	flag.Var(&headers, "header", "Extra HTTP request header \"Name: Value\" (repeatable).")
	flag.Parse()

	cfg := config.Config{
		Outfile:     *outfile,
		Bulk:        *bulk,
		MaxWidth:    *maxWidth,
		MaxHeight:   *maxHeight,
		ZoomLevel:   *zoomLevel,
		ImageIndex:  *imageIndex,
		Compression: *compression,
		JPEGQuality: *jpegQuality,
		Workers:     *workers,
		Retries:     *retries,
		Headers:     headers,
	}
	if cfg.Bulk == "" {
		if flag.NArg() != 1 {
			fmt.Fprintln(os.Stderr, "usage: dezoomify-go [flags] <url-or-file>")
			return exitInvalidInput
		}
		cfg.URL = flag.Arg(0)
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return exitInvalidInput
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	registry := dezoomer.NewRegistry()
	registry.Register(bulktext.New())
	registry.Register(zoomify.New())
	registry.Register(iiif.New())
	registry.Register(gap.New())

	net := network.NewClient(60*time.Second, cfg.HeaderMap())
	orch := orchestrator.New(registry, net, logger)

	opts := orchestrator.Options{
		Outfile:      cfg.Outfile,
		MaxWidth:     cfg.MaxWidth,
		MaxHeight:    cfg.MaxHeight,
		ZoomLevel:    cfg.ZoomLevel,
		ImageIndex:   cfg.ImageIndex,
		Workers:      cfg.Workers,
		Retries:      cfg.Retries,
		Headers:      cfg.HeaderMap(),
		Encoder:      encoder.Options{JPEGQuality: cfg.JPEGQuality, Compression: cfg.Compression},
		ShowProgress: true,
	}

	if cfg.Bulk != "" {
		stats, err := orch.RunBulk(ctx, cfg.Bulk, opts)
		if err != nil {
			logger.Printf("bulk run failed: %v", err)
			return exitFailure
		}
		fmt.Println(stats.String())
		switch {
		case stats.Failed == stats.Total:
			return exitFailure
		case stats.Failed > 0 || stats.Partial > 0:
			return exitPartial
		default:
			return exitSuccess
		}
	}

	result, err := orch.Run(ctx, cfg.URL, opts)
	if err != nil {
		var partial *orchestrator.PartialDownloadError
		if asPartial(err, &partial) {
			logger.Printf("partial download: %d/%d tiles written to %s", partial.Successful, partial.Total, partial.Destination)
			return exitPartial
		}
		logger.Printf("failed: %v", err)
		return exitFailure
	}
	logger.Printf("wrote %s (%d/%d tiles)", result.Destination, result.State.Successful, result.State.Total)
	return exitSuccess
}

func asPartial(err error, target **orchestrator.PartialDownloadError) bool {
	p, ok := err.(*orchestrator.PartialDownloadError)
	if ok {
		*target = p
	}
	return ok
}
