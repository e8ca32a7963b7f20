package manifest

import (
	"fmt"
	"path/filepath"

	"github.com/bmatcuk/doublestar/v4"
)

// ValidatePatterns rejects malformed glob patterns before a run starts.
func ValidatePatterns(patterns []string) error {
	for _, p := range patterns {
		if p == "" {
			return fmt.Errorf("empty pattern")
		}
		if !doublestar.ValidatePattern(p) {
			return fmt.Errorf("invalid pattern %q", p)
		}
	}
	return nil
}

// Filter returns the assets whose "category/name" key matches at least one
// of the glob patterns. Manifest order is preserved. With no patterns the
// manifest passes through unchanged.
func Filter(assets []Asset, patterns []string) ([]Asset, error) {
	if len(patterns) == 0 {
		return assets, nil
	}
	if err := ValidatePatterns(patterns); err != nil {
		return nil, err
	}

	out := make([]Asset, 0, len(assets))
	for _, a := range assets {
		if matchesAny(patterns, a.Key()) {
			out = append(out, a)
		}
	}
	return out, nil
}

func matchesAny(patterns []string, key string) bool {
	key = filepath.ToSlash(key)
	for _, pattern := range patterns {
		if ok, err := doublestar.Match(pattern, key); err == nil && ok {
			return true
		}
	}
	return false
}
