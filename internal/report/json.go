package report

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
)

// Run modes recorded in the report.
const (
	ModeFull    = "full"
	ModePNGOnly = "png-only"
)

// AssetOutcome is the terminal state of one asset or crop.
type AssetOutcome struct {
	Asset string `json:"asset"`
	State string `json:"state"`
}

// RunReport is the machine-readable record of a finished run.
//
// Its bytes must be reproducible: two runs over identical inputs with
// identical outcomes produce identical reports. That rules out
// timestamps, durations, and run identifiers; those live in the run
// journal instead.
type RunReport struct {
	ManifestHash string `json:"manifest_hash"`
	Mode         string `json:"mode"`

	Total     int `json:"total"`
	Converted int `json:"converted"`
	Skipped   int `json:"skipped"`
	Failed    int `json:"failed"`

	DDSBytes  int64 `json:"dds_bytes"`
	PNGBytes  int64 `json:"png_bytes"`
	AVIFBytes int64 `json:"avif_bytes"`

	Warnings []string `json:"warnings"`
	Errors   []string `json:"errors"`

	Assets []AssetOutcome `json:"assets"`
}

// Normalize puts the report into canonical form: absent collections
// render as empty arrays rather than null, and asset outcomes are sorted
// by key.
func (r *RunReport) Normalize() {
	if r.Warnings == nil {
		r.Warnings = []string{}
	}
	if r.Errors == nil {
		r.Errors = []string{}
	}
	if r.Assets == nil {
		r.Assets = []AssetOutcome{}
	}
	sort.Slice(r.Assets, func(i, j int) bool {
		return r.Assets[i].Asset < r.Assets[j].Asset
	})
}

// Validate checks basic invariants and returns a descriptive error.
func (r *RunReport) Validate() error {
	if r == nil {
		return errors.New("report is nil")
	}
	if r.ManifestHash == "" {
		return errors.New("manifest_hash is required")
	}
	if r.Mode != ModeFull && r.Mode != ModePNGOnly {
		return fmt.Errorf("unknown mode: %q", r.Mode)
	}
	if r.Total < 0 || r.Converted < 0 || r.Skipped < 0 || r.Failed < 0 {
		return errors.New("negative counter")
	}
	for i, a := range r.Assets {
		if a.Asset == "" {
			return fmt.Errorf("assets[%d].asset is empty", i)
		}
		switch a.State {
		case "CONVERTED", "FAILED", "SKIPPED":
		default:
			return fmt.Errorf("assets[%d].state %q is not terminal", i, a.State)
		}
	}
	return nil
}

// MarshalStable returns the canonical report bytes: normalized, validated,
// indented, with a trailing newline. It works on a copy so the caller's
// slices are not reordered.
func (r RunReport) MarshalStable() ([]byte, error) {
	clone := r
	clone.Warnings = append([]string(nil), r.Warnings...)
	clone.Errors = append([]string(nil), r.Errors...)
	clone.Assets = append([]AssetOutcome(nil), r.Assets...)
	clone.Normalize()
	if err := clone.Validate(); err != nil {
		return nil, err
	}
	data, err := json.MarshalIndent(&clone, "", "  ")
	if err != nil {
		return nil, err
	}
	return append(data, '\n'), nil
}

// WriteFile writes the canonical report bytes to path atomically, creating
// parent directories as needed. Readers never observe a partial report.
func (r RunReport) WriteFile(path string) error {
	data, err := r.MarshalStable()
	if err != nil {
		return err
	}
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create report dir: %w", err)
	}
	tmp, err := os.CreateTemp(dir, ".report-*.json")
	if err != nil {
		return fmt.Errorf("create temp report: %w", err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("write temp report: %w", err)
	}
	if err := tmp.Chmod(0o644); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("chmod temp report: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("close temp report: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("rename report: %w", err)
	}
	return nil
}
