// Package store persists the signal and focus artifacts as whole-file JSON.
// Artifacts are periodically refreshed caches: concurrent writers are
// last-write-wins, and readers tolerate absent or stale files.
package store

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// WriteArtifact atomically replaces the artifact at path with the JSON
// encoding of v (temp file + rename, so readers never see a torn write).
func WriteArtifact(path string, v interface{}) (string, error) {
	if path == "" {
		return "", fmt.Errorf("store: artifact path is required")
	}
	payload, err := json.Marshal(v)
	if err != nil {
		return "", fmt.Errorf("store: marshal artifact: %w", err)
	}
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("store: ensure artifact dir: %w", err)
	}
	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".tmp-")
	if err != nil {
		return "", fmt.Errorf("store: create temp artifact: %w", err)
	}
	if _, err := tmp.Write(payload); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return "", fmt.Errorf("store: write artifact: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return "", fmt.Errorf("store: close artifact: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		os.Remove(tmp.Name())
		return "", fmt.Errorf("store: publish artifact: %w", err)
	}
	return path, nil
}

// FocusTargets reads the focus artifact's target list. A missing, corrupt,
// or differently shaped file reads as "no focus filter".
func FocusTargets(path string) []string {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil
	}
	var artifact struct {
		Targets []string `json:"targets"`
	}
	if err := json.Unmarshal(raw, &artifact); err != nil {
		return nil
	}
	return artifact.Targets
}
