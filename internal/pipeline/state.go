// Package pipeline drives the sequential conversion of a texture manifest,
// tracking a small per-asset state machine and accumulating run statistics.
package pipeline

import "fmt"

// AssetState is the runtime conversion state of a single asset.
type AssetState string

const (
	AssetPending    AssetState = "PENDING"
	AssetConverting AssetState = "CONVERTING"
	AssetConverted  AssetState = "CONVERTED"
	AssetFailed     AssetState = "FAILED"
	AssetSkipped    AssetState = "SKIPPED"
)

// RunState holds per-asset state keyed by the asset's manifest key.
//
// It is mutated only through Transition so every state change is validated
// against the allowed edges.
type RunState map[string]AssetState

// IsTerminal reports whether the state is terminal (finished).
func IsTerminal(s AssetState) bool {
	switch s {
	case AssetConverted, AssetFailed, AssetSkipped:
		return true
	default:
		return false
	}
}

// Transition performs a validated transition for a single asset.
//
// The caller supplies the expected prior state (from) so a double-processed
// asset surfaces as an error instead of silently overwriting the outcome.
func Transition(state RunState, key string, from, to AssetState) error {
	cur, ok := state[key]
	if !ok {
		return fmt.Errorf("unknown asset in state: %q", key)
	}
	if cur != from {
		return fmt.Errorf("invalid transition for %q: expected %s, got %s", key, from, cur)
	}
	if !isAllowedTransition(from, to) {
		return fmt.Errorf("disallowed transition for %q: %s -> %s", key, from, to)
	}
	state[key] = to
	return nil
}

func isAllowedTransition(from, to AssetState) bool {
	switch from {
	case AssetPending:
		return to == AssetConverting || to == AssetSkipped
	case AssetConverting:
		return to == AssetConverted || to == AssetFailed
	default:
		return false
	}
}
