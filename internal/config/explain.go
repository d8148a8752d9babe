package config

import (
	"fmt"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Explain returns the effective value at a dotted YAML path and where it
// came from. List elements are addressed by index, e.g. layouts.0.name.
func Explain(res *LoadResult, path string) (any, Source, error) {
	if res == nil || res.Config == nil {
		return nil, Source{}, fmt.Errorf("no config loaded")
	}
	if path == "" {
		return nil, Source{}, fmt.Errorf("path is empty")
	}

	value, err := lookupValue(res.Config, path)
	if err != nil {
		return nil, Source{}, err
	}

	// The closest enclosing path written in the file wins.
	for p := path; p != ""; p = parentPath(p) {
		if src, ok := res.Sources[p]; ok {
			return value, src, nil
		}
	}
	return value, Source{Kind: SourceDefault}, nil
}

func parentPath(path string) string {
	i := strings.LastIndex(path, ".")
	if i < 0 {
		return ""
	}
	return path[:i]
}

// lookupValue walks the YAML form of cfg so every key is addressable by the
// name used in the file.
func lookupValue(cfg *Config, path string) (any, error) {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return nil, err
	}
	var cur any
	if err := yaml.Unmarshal(data, &cur); err != nil {
		return nil, err
	}

	for _, part := range splitPath(path) {
		switch node := cur.(type) {
		case map[string]any:
			v, ok := node[part]
			if !ok {
				return nil, fmt.Errorf("unknown config path %q", path)
			}
			cur = v
		case []any:
			i, err := strconv.Atoi(part)
			if err != nil || i < 0 || i >= len(node) {
				return nil, fmt.Errorf("config path %q: bad index %q", path, part)
			}
			cur = node[i]
		default:
			return nil, fmt.Errorf("config path %q: %q is not a section", path, part)
		}
	}
	return cur, nil
}

// splitPath splits on dots. Everything after "keybindings." or
// "mouse_bindings." is a single chord key.
func splitPath(path string) []string {
	for _, table := range []string{"keybindings", "mouse_bindings"} {
		if rest, ok := strings.CutPrefix(path, table+"."); ok {
			return []string{table, rest}
		}
	}
	return strings.Split(path, ".")
}
