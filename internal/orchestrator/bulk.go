package orchestrator

import (
	"context"
	"fmt"

	"github.com/dezoomify/dezoomify-go/internal/download"
)

// BulkStats accumulates per-image outcomes across a bulk run.
type BulkStats struct {
	Total, Successful, Partial, Failed int
}

func (b BulkStats) String() string {
	return fmt.Sprintf("%d total / %d successful / %d partial / %d failed", b.Total, b.Successful, b.Partial, b.Failed)
}

// RunBulk resolves uri to many ZoomableImages and runs each through the
// pipeline independently; one image's failure never aborts the batch.
// Cancellation of ctx does: no further image is started and the
// context's error is returned with the stats gathered so far.
func (o *Orchestrator) RunBulk(ctx context.Context, uri string, opts Options) (BulkStats, error) {
	_, images, err := o.resolveDezoomerResult(ctx, uri, opts.Headers)
	if err != nil {
		return BulkStats{}, err
	}

	stats := BulkStats{Total: len(images)}
	for i, img := range images {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return stats, ctxErr
		}
		levels, err := o.resolveImage(ctx, img, opts.Headers, 0)
		if err != nil {
			o.logf("image %d/%d: could not resolve: %v", i+1, stats.Total, err)
			stats.Failed++
			continue
		}
		lvl, err := o.chooseLevel(levels, opts.ZoomLevel, opts.MaxWidth, opts.MaxHeight, true, nil)
		if err != nil {
			o.logf("image %d/%d: no usable zoom level: %v", i+1, stats.Total, err)
			stats.Failed++
			continue
		}

		base := opts.Outfile
		if base == "" {
			base = deriveBaseName("", lvl.Title(), img.Title())
		} else {
			base = generateBulkOutputName(base, i)
		}
		destination := reservePath(base)

		state, err := o.runLevel(ctx, lvl, destination, opts)
		switch {
		case err != nil:
			o.logf("image %d/%d (%s): failed: %v", i+1, stats.Total, destination, err)
			stats.Failed++
		case state.Classify() == download.PartialDownload:
			o.logf("image %d/%d (%s): partial, %d/%d tiles", i+1, stats.Total, destination, state.Successful, state.Total)
			stats.Partial++
		default:
			o.logf("image %d/%d (%s): succeeded", i+1, stats.Total, destination)
			stats.Successful++
		}
	}
	o.logf("bulk run complete: %s", stats)
	return stats, nil
}
