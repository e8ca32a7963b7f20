// Package journal persists per-run metadata and failure records under the
// output root, so a failed extraction leaves a machine-readable trail of
// what was attempted and why it stopped.
package journal

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

type RunStatus string

const (
	RunRunning   RunStatus = "running"
	RunSucceeded RunStatus = "succeeded"
	RunFailed    RunStatus = "failed"
)

type RunMode string

const (
	ModeFull    RunMode = "full"
	ModePNGOnly RunMode = "png-only"
)

// Run is the persistent metadata for one extraction attempt. It is written
// once the manifest hash is known and rewritten with final counts when the
// run ends; failures before the manifest exists record only a Failure.
type Run struct {
	RunID        string    `json:"run_id"`
	ManifestHash string    `json:"manifest_hash"`
	StartTime    time.Time `json:"start_time"`
	Mode         RunMode   `json:"mode"`
	Status       RunStatus `json:"status"`

	Converted int `json:"converted"`
	Skipped   int `json:"skipped"`
	Failed    int `json:"failed"`
}

func (r Run) Validate() error {
	var errs []error
	if strings.TrimSpace(r.RunID) == "" {
		errs = append(errs, errors.New("run_id is required"))
	}
	if strings.TrimSpace(r.ManifestHash) == "" {
		errs = append(errs, errors.New("manifest_hash is required"))
	}
	if r.StartTime.IsZero() {
		errs = append(errs, errors.New("start_time is required"))
	}
	switch r.Mode {
	case ModeFull, ModePNGOnly:
		// ok
	default:
		errs = append(errs, fmt.Errorf("invalid mode %q", r.Mode))
	}
	switch r.Status {
	case RunRunning, RunSucceeded, RunFailed:
		// ok
	default:
		errs = append(errs, fmt.Errorf("invalid status %q", r.Status))
	}
	if r.Converted < 0 || r.Skipped < 0 || r.Failed < 0 {
		errs = append(errs, errors.New("counters must be >= 0"))
	}
	if len(errs) == 0 {
		return nil
	}
	return errors.Join(errs...)
}

type FailureClass string

const (
	FailureClassConfig     FailureClass = "config"
	FailureClassMetadata   FailureClass = "metadata"
	FailureClassConversion FailureClass = "conversion"
	FailureClassSystem     FailureClass = "system"
)

// Failure is a recorded run termination reason. Asset is set only for
// conversion failures, naming the first asset that failed.
type Failure struct {
	FailureClass FailureClass `json:"failure_class"`
	Asset        *string      `json:"asset,omitempty"`
	ErrorCode    string       `json:"error_code"`
	ErrorMessage string       `json:"error_message"`
}

func (f Failure) Validate() error {
	var errs []error
	switch f.FailureClass {
	case FailureClassConfig, FailureClassMetadata, FailureClassConversion, FailureClassSystem:
		// ok
	default:
		errs = append(errs, fmt.Errorf("invalid failure_class %q", f.FailureClass))
	}
	if f.Asset != nil && strings.TrimSpace(*f.Asset) == "" {
		errs = append(errs, errors.New("asset must not be empty when provided"))
	}
	if strings.TrimSpace(f.ErrorCode) == "" {
		errs = append(errs, errors.New("error_code is required"))
	}
	if strings.TrimSpace(f.ErrorMessage) == "" {
		errs = append(errs, errors.New("error_message is required"))
	}
	if len(errs) == 0 {
		return nil
	}
	return errors.Join(errs...)
}
