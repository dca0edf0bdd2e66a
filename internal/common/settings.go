package common

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

// Settings is a flat view over the dictionaries YAML file. Nested sequences
// and mappings are flattened to colon-separated keys, so
//
//	Unit:
//	  - name: Education City
//	    code: EC
//
// becomes "Unit:0:name" -> "Education City" and "Unit:0:code" -> "EC".
// Indexed loaders probe keys in order and stop at the first absent index.
type Settings map[string]string

// TryGet returns the value for key and whether it is present.
func (s Settings) TryGet(key string) (string, bool) {
	v, ok := s[key]
	return v, ok
}

// LoadSettings reads and flattens a YAML settings file.
func LoadSettings(path string) (Settings, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read settings: %w", err)
	}
	return ParseSettings(data)
}

// ParseSettings flattens YAML bytes into Settings.
func ParseSettings(data []byte) (Settings, error) {
	var doc map[string]any
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse settings: %w", err)
	}
	s := Settings{}
	for key, val := range doc {
		flatten(s, key, val)
	}
	return s, nil
}

func flatten(s Settings, prefix string, val any) {
	switch v := val.(type) {
	case map[string]any:
		for k, child := range v {
			flatten(s, prefix+":"+k, child)
		}
	case []any:
		for i, child := range v {
			flatten(s, prefix+":"+strconv.Itoa(i), child)
		}
	case nil:
		// absent keys stay absent
	default:
		s[prefix] = fmt.Sprintf("%v", v)
	}
}
