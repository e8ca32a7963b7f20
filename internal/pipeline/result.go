package pipeline

import (
	"sort"
	"time"
)

// Result is the summary of one conversion run.
type Result struct {
	// FinalState is the terminal state of each asset by manifest key,
	// including the sprite-crop keys.
	FinalState RunState

	Stats *Stats

	Elapsed time.Duration
}

// FirstFailed returns the lexically first FAILED asset key, or "" when the
// run had no failures. Iteration is over sorted keys so the answer is
// deterministic for a given final state.
func (r *Result) FirstFailed() string {
	keys := make([]string, 0, len(r.FinalState))
	for key := range r.FinalState {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	for _, key := range keys {
		if r.FinalState[key] == AssetFailed {
			return key
		}
	}
	return ""
}
