package orchestrator

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

const defaultExtension = ".jpg"

// deriveBaseName picks an output filename from, in priority order, the
// explicit --outfile, the level's title, the image's title, or a
// default, per §4.7 step 6.
func deriveBaseName(outfile, levelTitle, imageTitle string) string {
	switch {
	case outfile != "":
		return outfile
	case levelTitle != "":
		return sanitizeFilename(levelTitle) + defaultExtension
	case imageTitle != "":
		return sanitizeFilename(imageTitle) + defaultExtension
	default:
		return "output" + defaultExtension
	}
}

func sanitizeFilename(name string) string {
	replacer := strings.NewReplacer("/", "_", "\\", "_", "\x00", "")
	return replacer.Replace(strings.TrimSpace(name))
}

var (
	reservationMu sync.Mutex
	reservedPaths = make(map[string]bool)
)

// reservePath claims path for this process, renaming name.ext to
// name(2).ext, name(3).ext, ... whenever path is already on disk or was
// already reserved earlier in this run. This is the process-wide
// mutex-protected collision set named in the concurrency model.
func reservePath(path string) string {
	reservationMu.Lock()
	defer reservationMu.Unlock()

	ext := filepath.Ext(path)
	stem := strings.TrimSuffix(path, ext)
	candidate := path
	for n := 2; pathTaken(candidate); n++ {
		candidate = fmt.Sprintf("%s(%d)%s", stem, n, ext)
	}
	reservedPaths[candidate] = true
	return candidate
}

func pathTaken(path string) bool {
	if reservedPaths[path] {
		return true
	}
	_, err := os.Stat(path)
	return err == nil
}

func (o *Orchestrator) prepareOutputPath(outfile, levelTitle, imageTitle string) string {
	return reservePath(deriveBaseName(outfile, levelTitle, imageTitle))
}

// generateBulkOutputName derives a per-image filename from a shared base
// when bulk mode is given an explicit --outfile: output.jpg at index 0
// becomes output_1.jpg. The stem is preserved byte-for-byte, including
// when it has no extension or contains non-ASCII characters.
func generateBulkOutputName(base string, index int) string {
	ext := filepath.Ext(base)
	stem := strings.TrimSuffix(base, ext)
	return fmt.Sprintf("%s_%d%s", stem, index+1, ext)
}
