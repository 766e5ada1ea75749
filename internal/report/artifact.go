package report

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/hamed0406/runnercheck/internal/domain"
)

const fileLayout = "20060102_150405"

// FileName is the artifact name for a run finished at t.
func FileName(t time.Time) string {
	return "domain_check_results_" + t.Format(fileLayout) + ".json"
}

// WriteJSON writes r into dir as the timestamped artifact and returns its
// path. The file is written to a temp name and renamed into place.
func WriteJSON(dir string, r *domain.ScanReport, at time.Time) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create output dir: %w", err)
	}
	path := filepath.Join(dir, FileName(at))

	tmp, err := os.CreateTemp(dir, ".domain_check_results_*.tmp")
	if err != nil {
		return "", fmt.Errorf("create temp artifact: %w", err)
	}
	defer os.Remove(tmp.Name())
	if err := tmp.Chmod(0o644); err != nil {
		tmp.Close()
		return "", fmt.Errorf("chmod artifact: %w", err)
	}

	enc := json.NewEncoder(tmp)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(r); err != nil {
		tmp.Close()
		return "", fmt.Errorf("encode artifact: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return "", fmt.Errorf("close artifact: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return "", fmt.Errorf("rename artifact: %w", err)
	}
	return path, nil
}

// ReadJSON loads an artifact back. Run metadata is not stored in the file.
func ReadJSON(path string) (*domain.ScanReport, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var r domain.ScanReport
	if err := json.Unmarshal(data, &r); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return &r, nil
}
