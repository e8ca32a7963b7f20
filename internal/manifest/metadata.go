package manifest

import (
	"encoding/json"
	"fmt"
	"os"
)

// MetadataError reports an unusable metadata file. Metadata problems are
// fatal before any conversion starts; they are never reported per-asset.
type MetadataError struct {
	Path    string
	Message string
	Cause   error
}

func (e *MetadataError) Error() string {
	if e == nil {
		return ""
	}
	return fmt.Sprintf("metadata %s: %s", e.Path, e.Message)
}

func (e *MetadataError) Unwrap() error { return e.Cause }

func metadataErrorf(path string, cause error, format string, args ...any) error {
	return &MetadataError{Path: path, Message: fmt.Sprintf(format, args...), Cause: cause}
}

// LoadTechIcons reads the technology metadata file and returns the sorted,
// deduplicated icon names.
//
// The file maps technology ids to records; only the "icon" field of each
// record is consumed, extra fields are ignored. A record without an icon
// name makes the whole file unusable.
func LoadTechIcons(path string) ([]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, metadataErrorf(path, err, "cannot read file")
	}

	var techs map[string]struct {
		Icon string `json:"icon"`
	}
	if err := json.Unmarshal(data, &techs); err != nil {
		return nil, metadataErrorf(path, err, "not a JSON object of technology records: %v", err)
	}

	icons := make([]string, 0, len(techs))
	for id, t := range techs {
		if t.Icon == "" {
			return nil, metadataErrorf(path, nil, "technology %q has no icon name", id)
		}
		icons = append(icons, t.Icon)
	}
	return uniqueSorted(icons), nil
}

// LoadSwapIcons reads the technology swap metadata file and returns the
// sorted, deduplicated swap icon names.
//
// The file maps swap group ids to lists of records; records without a
// "name" field are silently ignored. Names that duplicate tech icons are
// removed later, by Build.
func LoadSwapIcons(path string) ([]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, metadataErrorf(path, err, "cannot read file")
	}

	var swaps map[string][]struct {
		Name string `json:"name"`
	}
	if err := json.Unmarshal(data, &swaps); err != nil {
		return nil, metadataErrorf(path, err, "not a JSON object of swap lists: %v", err)
	}

	var names []string
	for _, group := range swaps {
		for _, s := range group {
			if s.Name == "" {
				continue
			}
			names = append(names, s.Name)
		}
	}
	return uniqueSorted(names), nil
}
