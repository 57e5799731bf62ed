// Package archive keeps every featured batch in an append-only JSON Lines
// file.
package archive

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/mrwolf/hallmark-server/internal/models"
)

const featuredFile = "featured.jsonl"

// maxLineSize bounds a single archived batch when reading back.
const maxLineSize = 1 << 20

type Archive struct {
	path string
	mu   sync.Mutex
}

// New returns an archive stored under dir. The directory is created on the
// first write.
func New(dir string) *Archive {
	return &Archive{path: filepath.Join(dir, featuredFile)}
}

// Path is the archive file location.
func (a *Archive) Path() string {
	return a.path
}

// Record appends one batch.
func (a *Archive) Record(batch models.FeaturedBatch) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	line, err := json.Marshal(batch)
	if err != nil {
		return fmt.Errorf("marshaling featured batch: %w", err)
	}

	if err := AppendLine(a.path, line); err != nil {
		return fmt.Errorf("appending featured batch: %w", err)
	}

	return nil
}

// Recent returns up to limit batches, newest first. A missing archive is
// empty, and lines that do not decode are skipped.
func (a *Archive) Recent(limit int) ([]models.FeaturedBatch, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	f, err := os.Open(a.path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("opening archive: %w", err)
	}
	defer f.Close()

	var batches []models.FeaturedBatch
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 64*1024), maxLineSize)
	for scanner.Scan() {
		var b models.FeaturedBatch
		if err := json.Unmarshal(scanner.Bytes(), &b); err != nil {
			continue
		}
		batches = append(batches, b)
		if limit > 0 && len(batches) > limit {
			batches = batches[1:]
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading archive: %w", err)
	}

	for i, j := 0, len(batches)-1; i < j; i, j = i+1, j-1 {
		batches[i], batches[j] = batches[j], batches[i]
	}
	return batches, nil
}
