// Package orchestrator implements the top-level pipeline (C10): resolve
// a dezoomer for a URI, choose an image and a zoom level, run the
// downloader/encoder loop, and classify the result. It is the only
// package that wires every other component together.
package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"

	"github.com/dezoomify/dezoomify-go/internal/dezoomer"
	"github.com/dezoomify/dezoomify-go/internal/download"
	"github.com/dezoomify/dezoomify-go/internal/encoder"
	"github.com/dezoomify/dezoomify-go/internal/network"
	"github.com/dezoomify/dezoomify-go/internal/tile"
)

// maxNeedsDataDepth bounds the NeedsData resolution loop so a
// pathological dezoomer chain cannot recurse forever.
const maxNeedsDataDepth = 8

// Options configures one run, mirroring the CLI flags.
type Options struct {
	Outfile     string
	MaxWidth    int
	MaxHeight   int
	ZoomLevel   int // -1 means unset
	ImageIndex  int // -1 means unset
	Workers     int
	Retries     int
	Headers     map[string]string
	Encoder     encoder.Options
	ShowProgress bool
}

// Result is the terminal outcome of a single-image run.
type Result struct {
	Outcome     download.Outcome
	Destination string
	State       download.State
}

// ErrNoTile is returned when not a single tile of an image was fetched.
var ErrNoTile = errors.New("orchestrator: no tile downloaded")

// PartialDownloadError reports a run that wrote output but not every
// tile succeeded; the caller should treat this as exit code 2.
type PartialDownloadError struct {
	Successful, Total int
	Destination       string
}

func (e *PartialDownloadError) Error() string {
	return fmt.Sprintf("orchestrator: partial download: %d/%d tiles at %s", e.Successful, e.Total, e.Destination)
}

// Orchestrator drives the registry, network client, and downloader
// together to resolve and fetch one or many images.
type Orchestrator struct {
	Registry *dezoomer.Registry
	Network  *network.Client
	Logger   *log.Logger
}

// New builds an Orchestrator.
func New(registry *dezoomer.Registry, net *network.Client, logger *log.Logger) *Orchestrator {
	return &Orchestrator{Registry: registry, Network: net, Logger: logger}
}

func (o *Orchestrator) logf(format string, args ...interface{}) {
	if o.Logger != nil {
		o.Logger.Printf(format, args...)
	}
}

// Run resolves uri to a single image (when it names more than one and
// opts.ImageIndex is unset, the first is used), downloads its chosen zoom
// level, and writes the result to disk.
func (o *Orchestrator) Run(ctx context.Context, uri string, opts Options) (Result, error) {
	_, images, err := o.resolveDezoomerResult(ctx, uri, opts.Headers)
	if err != nil {
		return Result{}, err
	}

	img, err := o.chooseImage(images, opts.ImageIndex, false, nil)
	if err != nil {
		return Result{}, err
	}
	levels, err := o.resolveImage(ctx, img, opts.Headers, 0)
	if err != nil {
		return Result{}, err
	}
	lvl, err := o.chooseLevel(levels, opts.ZoomLevel, opts.MaxWidth, opts.MaxHeight, false, nil)
	if err != nil {
		return Result{}, err
	}

	destination := o.prepareOutputPath(opts.Outfile, lvl.Title(), img.Title())
	state, err := o.runLevel(ctx, lvl, destination, opts)
	if err != nil {
		return Result{}, err
	}

	result := Result{Outcome: state.Classify(), Destination: destination, State: state}
	switch result.Outcome {
	case download.Success:
		return result, nil
	case download.PartialDownload:
		return result, &PartialDownloadError{Successful: state.Successful, Total: state.Total, Destination: destination}
	default:
		return result, ErrNoTile
	}
}

// runLevel constructs the encoder for destination, drives the
// iterator/downloader loop against lvl, and finalizes the output file.
func (o *Orchestrator) runLevel(ctx context.Context, lvl dezoomer.ZoomLevel, destination string, opts Options) (download.State, error) {
	enc, err := encoder.New(destination, lvl.Size(), opts.Encoder)
	if err != nil {
		return download.State{}, fmt.Errorf("orchestrator: %w", err)
	}

	workers := opts.Workers
	if workers <= 0 {
		workers = 16
	}
	dl := download.New(o.Network.HTTP, workers, opts.Retries, opts.Headers)

	var progress *download.Progress
	if opts.ShowProgress {
		progress = download.NewProgress(estimateTileCount(lvl), lvl.Title())
	}

	var state download.State
	var encodeErr error
	// The downloader calls onTile from its worker goroutines; the encoder
	// is fed one tile at a time.
	var encodeMu sync.Mutex
	onTile := func(ref dezoomer.TileReference, data []byte, fetchErr error) {
		encodeMu.Lock()
		defer encodeMu.Unlock()
		if fetchErr != nil || encodeErr != nil {
			return
		}
		t, decodeErr := tile.Decode(data, ref.Position)
		if decodeErr != nil {
			encodeErr = fmt.Errorf("decode tile at %s: %w", ref.URL, decodeErr)
			return
		}
		if addErr := enc.AddTile(t); addErr != nil {
			encodeErr = addErr
		}
	}
	onBatch := func(results []dezoomer.FetchResult) {
		successful, failed := 0, 0
		for _, r := range results {
			if r.Err != nil {
				failed++
			} else {
				successful++
			}
		}
		state.Add(len(results), successful, failed)
		if progress != nil {
			progress.Add(len(results))
		}
	}

	dezoomer.RunZoomLevel(ctx, lvl, dl, onTile, onBatch)
	if progress != nil {
		progress.Finish()
	}
	if encodeErr != nil {
		return state, fmt.Errorf("orchestrator: %w", encodeErr)
	}
	if err := enc.Finalize(); err != nil {
		return state, fmt.Errorf("orchestrator: finalize %s: %w", destination, err)
	}
	return state, nil
}

func estimateTileCount(lvl dezoomer.ZoomLevel) int {
	size, tileSize := lvl.Size(), lvl.TileSize()
	if tileSize.X == 0 || tileSize.Y == 0 {
		return -1
	}
	cols := (size.X + tileSize.X - 1) / tileSize.X
	rows := (size.Y + tileSize.Y - 1) / tileSize.Y
	return int(cols * rows)
}
