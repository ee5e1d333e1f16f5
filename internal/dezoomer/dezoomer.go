// Package dezoomer defines the polymorphic protocol-driver contract
// shared by every supported tile service, plus the registry that tries
// each variant in priority order.
package dezoomer

import (
	"context"
	"fmt"

	"github.com/dezoomify/dezoomify-go/internal/vec2d"
)

// TileReference is a fetch instruction emitted by a ZoomLevel: the URL to
// fetch and the position the resulting tile occupies on the canvas.
type TileReference struct {
	URL      string
	Position vec2d.Vec2d
}

// FetchResult is what the downloader reports back to a ZoomLevel about
// one TileReference once it has been attempted.
type FetchResult struct {
	Reference TileReference
	Err       error
}

// ZoomLevel is one rung of a tile pyramid. It is a lazy, possibly finite
// sequence of tile batches: NextTileReferences is called repeatedly,
// each time after the previous batch's outcomes have been delivered via
// SetFetchResult, until it returns an empty batch.
type ZoomLevel interface {
	// Size is a hint of the total pixel dimensions this level covers.
	Size() vec2d.Vec2d
	// TileSize is a hint of the nominal (un-clamped) tile dimensions.
	TileSize() vec2d.Vec2d
	// Title is an optional human-readable name for this level, used to
	// derive an output filename when none is supplied explicitly.
	Title() string
	// NextTileReferences returns the next batch of tiles to fetch, given
	// the previous batch's outcomes (nil on the first call). An empty
	// return value terminates the iteration.
	NextTileReferences(previous []FetchResult) []TileReference
	// SetFetchResult is called once per batch with every outcome from
	// that batch, in the same order NextTileReferences returned them.
	SetFetchResult(results []FetchResult)
	// PostProcess optionally transforms a tile's raw bytes before they
	// are decoded as an image (e.g. Google Arts & Culture decryption).
	// Returns nil if no post-processing is required.
	PostProcess() func(raw []byte) ([]byte, error)
}

// Contents is what the orchestrator knows about a URI's body at the time
// it calls into a Dezoomer.
type Contents struct {
	// Known is false when the dezoomer has not been given any bytes yet
	// and must decide purely from the URI, or explicitly request them.
	Known bool
	// Body holds the successfully fetched bytes, when Known is true and
	// Err is nil.
	Body []byte
	// Err holds a fetch error, when Known is true and the fetch failed.
	Err error
}

// Input is the argument passed to a Dezoomer's entry points.
type Input struct {
	URI      string
	Contents Contents
	// Headers are the user-supplied request headers to be reused for
	// any further fetch this dezoomer triggers via NeedsDataError.
	Headers map[string]string
}

// ZoomableImage is either an already-resolved collection of ZoomLevels or
// an unresolved URL that needs another dezoomer pass to become one. This
// mirrors the specification's sum type: Resolved(ZoomLevels) |
// Unresolved(url, title?).
type ZoomableImage struct {
	levels []ZoomLevel
	url    string
	title  string
}

// Resolved builds an already-resolved ZoomableImage.
func Resolved(levels []ZoomLevel, title string) ZoomableImage {
	return ZoomableImage{levels: levels, title: title}
}

// Unresolved builds a ZoomableImage that still needs a dezoomer pass
// against url before its levels are known.
func Unresolved(url, title string) ZoomableImage {
	return ZoomableImage{url: url, title: title}
}

// IsResolved reports whether Levels can be called without another
// dezoomer pass.
func (z ZoomableImage) IsResolved() bool { return z.levels != nil }

// Levels returns the resolved zoom levels. Only valid when IsResolved.
func (z ZoomableImage) Levels() []ZoomLevel { return z.levels }

// URL returns the URL to resolve. Only valid when !IsResolved.
func (z ZoomableImage) URL() string { return z.url }

// Title returns the image's display title, if any.
func (z ZoomableImage) Title() string { return z.title }

// WithLevels returns a copy of z marked resolved with the given levels,
// used by the orchestrator once it has driven the dezoomer chain for an
// unresolved image.
func (z ZoomableImage) WithLevels(levels []ZoomLevel) ZoomableImage {
	z.levels = levels
	return z
}

// ErrWrongDezoomer is returned by a variant that does not recognize the
// input's fingerprint; the registry tries the next variant.
var ErrWrongDezoomer = fmt.Errorf("dezoomer: input does not match this variant")

// NeedsDataError asks the orchestrator to fetch URI and call back into
// the same Dezoomer instance with the resulting bytes.
type NeedsDataError struct {
	URI string
}

func (e *NeedsDataError) Error() string {
	return fmt.Sprintf("dezoomer: needs data from %s", e.URI)
}

// ErrNoLevels is returned when a dezoomer produced zero ZoomableImage.
var ErrNoLevels = fmt.Errorf("dezoomer: no levels found")

// Dezoomer is a named protocol driver. Implementations are not required
// to be safe for concurrent use; the orchestrator drives each instance
// single-threadedly across its NeedsData loop for one image.
type Dezoomer interface {
	Name() string
	// ZoomLevels returns zoom levels directly; used when the input
	// already identifies a single image without further indirection.
	ZoomLevels(ctx context.Context, in *Input) ([]ZoomLevel, error)
	// DezoomerResult returns a list of ZoomableImage, possibly
	// unresolved, for inputs that may describe more than one image
	// (e.g. a manifest with many pages) or need further resolution.
	DezoomerResult(ctx context.Context, in *Input) ([]ZoomableImage, error)
}
