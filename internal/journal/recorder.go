package journal

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Recorder is the write-side convenience wrapper around Store. Callers
// provide Run metadata and triggering errors; the recorder classifies
// errors into the failure taxonomy and persists the records.
type Recorder struct {
	Store *Store
}

// NewRunID returns a fresh identifier for one extraction attempt.
func (r *Recorder) NewRunID() string {
	return uuid.NewString()
}

// Begin persists the initial running record for a run. StartTime defaults
// to the current time when unset.
func (r *Recorder) Begin(run Run) error {
	if r == nil || r.Store == nil {
		return errors.New("Store is required")
	}
	if run.StartTime.IsZero() {
		run.StartTime = time.Now().UTC()
	}
	if run.Status == "" {
		run.Status = RunRunning
	}
	return r.Store.SaveRun(run)
}

// Finish rewrites the run record with its terminal status and final counts.
func (r *Recorder) Finish(run Run) error {
	if r == nil || r.Store == nil {
		return errors.New("Store is required")
	}
	if run.Status != RunSucceeded && run.Status != RunFailed {
		return fmt.Errorf("finish requires a terminal status, got %q", run.Status)
	}
	return r.Store.SaveRun(run)
}

// RecordFailure classifies err and persists it as the run's failure.json.
func (r *Recorder) RecordFailure(runID string, err error) error {
	if r == nil || r.Store == nil {
		return errors.New("Store is required")
	}
	f, ferr := failureFromError(err)
	if ferr != nil {
		return ferr
	}
	return r.Store.SaveFailure(runID, f)
}
