package download

import (
	"io"
	"os"

	"github.com/schollz/progressbar/v3"
	"golang.org/x/term"
)

// Progress renders a per-image download progress bar, grounded on the
// schollz/progressbar/v3 usage pattern seen in the pack's tile
// downloader examples (progressbar.Default + bar.Add). It is a thin
// wrapper rather than a direct progressbar.ProgressBar so that bulk mode
// can swap in a fresh bar per image without leaking terminal state.
type Progress struct {
	bar *progressbar.ProgressBar
}

// NewProgress creates a progress bar for an image with the given total
// tile count and title. The bar is drawn on stderr; when stderr is not a
// terminal (e.g. redirected output, CI), rendering is suppressed entirely
// rather than spamming redraws.
func NewProgress(total int, title string) *Progress {
	var out io.Writer = os.Stderr
	if !term.IsTerminal(int(os.Stderr.Fd())) {
		out = io.Discard
	}
	bar := progressbar.NewOptions(total,
		progressbar.OptionSetDescription(title),
		progressbar.OptionSetWriter(out),
		progressbar.OptionShowCount(),
		progressbar.OptionClearOnFinish(),
	)
	return &Progress{bar: bar}
}

// Add advances the bar by n tiles (successes and failures both count,
// since the bar tracks "tiles attempted", matching DownloadState.Total).
func (p *Progress) Add(n int) {
	if p == nil || p.bar == nil {
		return
	}
	_ = p.bar.Add(n)
}

// Finish marks the bar as complete, regardless of the final outcome.
func (p *Progress) Finish() {
	if p == nil || p.bar == nil {
		return
	}
	_ = p.bar.Finish()
}
