package dezoomer

import (
	"context"
	"errors"
	"fmt"
)

// Registry holds every known Dezoomer variant in priority order and
// implements the "auto" meta-dezoomer described in the specification:
// bulk-text, then explicit-list formats, then service-specific parsers,
// then a generic URL template fallback.
type Registry struct {
	variants []Dezoomer
}

// NewRegistry returns an empty registry; variants are added with
// Register, in the priority order callers want them tried.
func NewRegistry() *Registry {
	return &Registry{}
}

// Register appends a variant to the end of the try order.
func (r *Registry) Register(d Dezoomer) {
	r.variants = append(r.variants, d)
}

// Variants returns the registered dezoomers in priority order.
func (r *Registry) Variants() []Dezoomer {
	return append([]Dezoomer(nil), r.variants...)
}

// Auto tries each registered variant's DezoomerResult in order, skipping
// any that return ErrWrongDezoomer, and returns the first success along
// with the Dezoomer instance that produced it (the orchestrator must
// keep driving that same instance through any further NeedsData calls
// for this image).
func (r *Registry) Auto(ctx context.Context, in *Input) (Dezoomer, []ZoomableImage, error) {
	var lastErr error
	for _, variant := range r.variants {
		result, err := variant.DezoomerResult(ctx, in)
		if err == nil {
			return variant, result, nil
		}
		var needsData *NeedsDataError
		if errors.As(err, &needsData) {
			// This variant matched the input's fingerprint and is
			// mid-chain; propagate so the orchestrator can fetch and
			// retry the same instance.
			return variant, nil, err
		}
		if errors.Is(err, ErrWrongDezoomer) {
			continue
		}
		lastErr = err
	}
	if lastErr != nil {
		return nil, nil, fmt.Errorf("dezoomer: all variants failed, last error: %w", lastErr)
	}
	return nil, nil, fmt.Errorf("dezoomer: %w: no variant recognized %q", ErrWrongDezoomer, in.URI)
}
