package orchestrator

import (
	"context"
	"errors"
	"fmt"

	"github.com/dezoomify/dezoomify-go/internal/dezoomer"
)

// resolveDezoomerResult runs the registry against uri and drives the
// NeedsData loop (depth-capped) until a concrete []ZoomableImage comes
// back, per §4.7 step 2.
func (o *Orchestrator) resolveDezoomerResult(ctx context.Context, uri string, headers map[string]string) (dezoomer.Dezoomer, []dezoomer.ZoomableImage, error) {
	in := &dezoomer.Input{URI: uri, Headers: headers}
	dz, images, err := o.Registry.Auto(ctx, in)
	return o.driveNeedsData(ctx, dz, images, err, headers, 0)
}

// driveNeedsData fetches whatever URI a NeedsDataError names and calls
// back into the same Dezoomer instance, repeating until either a result
// is produced, a non-NeedsData error occurs, or the depth cap is hit.
func (o *Orchestrator) driveNeedsData(ctx context.Context, dz dezoomer.Dezoomer, images []dezoomer.ZoomableImage, err error, headers map[string]string, depth int) (dezoomer.Dezoomer, []dezoomer.ZoomableImage, error) {
	var needsData *dezoomer.NeedsDataError
	for errors.As(err, &needsData) {
		if depth >= maxNeedsDataDepth {
			return nil, nil, fmt.Errorf("orchestrator: needs-data chain exceeded depth %d", maxNeedsDataDepth)
		}
		depth++

		body, fetchErr := o.Network.Fetch(ctx, needsData.URI)
		in := &dezoomer.Input{
			URI:      needsData.URI,
			Headers:  headers,
			Contents: dezoomer.Contents{Known: true, Body: body, Err: fetchErr},
		}
		images, err = dz.DezoomerResult(ctx, in)
	}
	if err != nil {
		return nil, nil, err
	}
	return dz, images, nil
}

// resolveImage returns img's zoom levels, recursing through the registry
// on img's URL (per §4.7 step 4) when it is not already resolved.
func (o *Orchestrator) resolveImage(ctx context.Context, img dezoomer.ZoomableImage, headers map[string]string, depth int) ([]dezoomer.ZoomLevel, error) {
	if img.IsResolved() {
		return img.Levels(), nil
	}
	if depth >= maxNeedsDataDepth {
		return nil, fmt.Errorf("orchestrator: image resolution chain exceeded depth %d", maxNeedsDataDepth)
	}

	_, images, err := o.resolveDezoomerResult(ctx, img.URL(), headers)
	if err != nil {
		return nil, err
	}
	for _, next := range images {
		levels, err := o.resolveImage(ctx, next, headers, depth+1)
		if err == nil && len(levels) > 0 {
			return levels, nil
		}
	}
	return nil, dezoomer.ErrNoLevels
}

// ImagePrompter lets a caller choose interactively among several images;
// only used outside bulk mode when no --image-index is given.
type ImagePrompter func(images []dezoomer.ZoomableImage) (int, error)

// LevelPrompter is the zoom-level analog of ImagePrompter.
type LevelPrompter func(levels []dezoomer.ZoomLevel) (int, error)

// chooseImage implements §4.7 step 3.
func (o *Orchestrator) chooseImage(images []dezoomer.ZoomableImage, imageIndex int, bulk bool, prompt ImagePrompter) (dezoomer.ZoomableImage, error) {
	if len(images) == 0 {
		return dezoomer.ZoomableImage{}, dezoomer.ErrNoLevels
	}
	if len(images) == 1 {
		return images[0], nil
	}
	switch {
	case imageIndex >= 0:
		return images[resolveIndex(imageIndex, len(images))], nil
	case bulk:
		return images[0], nil
	case prompt != nil:
		idx, err := prompt(images)
		if err != nil {
			return dezoomer.ZoomableImage{}, err
		}
		return images[resolveIndex(idx, len(images))], nil
	default:
		// No terminal prompt wired up and no policy given: behave like
		// bulk mode rather than block forever on stdin.
		return images[0], nil
	}
}

// chooseLevel implements §4.7 step 5, including the auto-select-by-size
// policy when max width/height are given instead of an explicit index.
// bulk selects the policy for the no-override case: bulk mode
// auto-chooses the first available level, while single-image mode
// defaults to full resolution.
func (o *Orchestrator) chooseLevel(levels []dezoomer.ZoomLevel, zoomLevel, maxWidth, maxHeight int, bulk bool, prompt LevelPrompter) (dezoomer.ZoomLevel, error) {
	if len(levels) == 0 {
		return nil, dezoomer.ErrNoLevels
	}
	if len(levels) == 1 {
		return levels[0], nil
	}
	switch {
	case zoomLevel >= 0:
		return levels[resolveIndex(zoomLevel, len(levels))], nil
	case maxWidth > 0 || maxHeight > 0:
		return levels[chooseLevelAuto(levels, maxWidth, maxHeight)], nil
	case bulk:
		return levels[0], nil // bulk mode auto-chooses the first available level
	case prompt != nil:
		idx, err := prompt(levels)
		if err != nil {
			return nil, err
		}
		return levels[resolveIndex(idx, len(levels))], nil
	default:
		// Full resolution by default. Levels are not guaranteed to be
		// ordered smallest-first across dezoomer variants (Zoomify and
		// GAP are smallest-first, IIIF is largest-first), so the
		// highest-resolution level is found by comparing Size() rather
		// than trusting either end of the slice.
		return levels[highestResolutionIndex(levels)], nil
	}
}

// highestResolutionIndex returns the index of the level with the largest
// pixel area.
func highestResolutionIndex(levels []dezoomer.ZoomLevel) int {
	best := 0
	bestArea := uint64(0)
	for i, lvl := range levels {
		size := lvl.Size()
		area := uint64(size.X) * uint64(size.Y)
		if area > bestArea {
			bestArea = area
			best = i
		}
	}
	return best
}

// resolveIndex clamps an out-of-range index to the last available one
// rather than erroring, per the ported resolve_image_index/
// resolve_level_index behavior.
func resolveIndex(idx, count int) int {
	if idx < 0 {
		idx = 0
	}
	if idx >= count {
		idx = count - 1
	}
	return idx
}

// chooseLevelAuto picks the highest-resolution level that still fits
// within maxWidth/maxHeight (0 meaning "no limit on that axis"),
// falling back to the smallest level when none fits.
func chooseLevelAuto(levels []dezoomer.ZoomLevel, maxWidth, maxHeight int) int {
	best := -1
	for i, lvl := range levels {
		size := lvl.Size()
		if maxWidth > 0 && int(size.X) > maxWidth {
			continue
		}
		if maxHeight > 0 && int(size.Y) > maxHeight {
			continue
		}
		if best == -1 || size.X > levels[best].Size().X {
			best = i
		}
	}
	if best == -1 {
		smallest := 0
		for i, lvl := range levels {
			if lvl.Size().X < levels[smallest].Size().X {
				smallest = i
			}
		}
		return smallest
	}
	return best
}
