// Package output persists the final record sequence.
package output

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/alpharomercoma/viableview-scraper/models"
)

// WriteJSON writes records as an indented UTF-8 JSON array with the field
// order fixed by the BusinessRecord struct. The file is written to a temp
// sibling and renamed so a crash never leaves a half-written output.
func WriteJSON(path string, records []models.BusinessRecord) error {
	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return fmt.Errorf("output: marshal records: %w", err)
	}
	data = append(data, '\n')

	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("output: create temp file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("output: write temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("output: close temp file: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("output: rename into place: %w", err)
	}

	slog.Info("output written", "path", path, "records", len(records))
	return nil
}
