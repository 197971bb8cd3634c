package audio

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"shopping-list/internal/domain"
)

// DefaultArchiveDir is relative to the working directory.
const DefaultArchiveDir = "uploads/audio"

const timestampLayout = "2006-01-02T15:04:05.000Z"

var timestampReplacer = strings.NewReplacer(":", "-", ".", "-")

// Archive writes raw uploads to disk, one file per request. It is only wired
// in development mode.
type Archive struct {
	dir string
	now func() time.Time
}

func NewArchive(dir string) *Archive {
	if dir == "" {
		dir = DefaultArchiveDir
	}
	return &Archive{dir: dir, now: time.Now}
}

// NewArchiveWithClock is NewArchive with a fixed time source.
func NewArchiveWithClock(dir string, now func() time.Time) *Archive {
	a := NewArchive(dir)
	a.now = now
	return a
}

// Save stores the upload as audio-<timestamp><ext> and returns its path.
func (a *Archive) Save(_ context.Context, upload domain.Upload) (string, error) {
	if err := os.MkdirAll(a.dir, 0755); err != nil {
		return "", fmt.Errorf("creating upload dir: %w", err)
	}

	timestamp := timestampReplacer.Replace(a.now().UTC().Format(timestampLayout))
	path := filepath.Join(a.dir, "audio-"+timestamp+upload.Extension())

	if err := os.WriteFile(path, upload.Data, 0644); err != nil {
		return "", fmt.Errorf("writing upload %s: %w", path, err)
	}

	return path, nil
}
