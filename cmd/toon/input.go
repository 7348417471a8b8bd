package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/goccy/go-yaml"

	"github.com/paularlott/toon"
)

// readInput returns the contents of path, or of stdin when path is empty or "-".
func (a *app) readInput(path string) ([]byte, error) {
	if path == "" || path == "-" {
		a.log.Debug("reading stdin")
		return io.ReadAll(a.stdin)
	}
	a.log.Debug("reading file", "path", path)
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read input: %w", err)
	}
	return data, nil
}

// inputFormat picks json or yaml from the --from flag or the file extension.
func inputFormat(from, path string) (string, error) {
	switch strings.ToLower(from) {
	case "json":
		return "json", nil
	case "yaml", "yml":
		return "yaml", nil
	case "":
	default:
		return "", fmt.Errorf("unknown input format %q", from)
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return "yaml", nil
	}
	return "json", nil
}

// parseData decodes JSON or YAML into a value tree, keeping key order.
func parseData(data []byte, format string) (any, error) {
	if format == "yaml" {
		var v any
		if err := yaml.UnmarshalWithOptions(data, &v, yaml.UseOrderedMap()); err != nil {
			return nil, fmt.Errorf("parse yaml: %w", err)
		}
		return toon.NormalizeWith(v, normalizeYAML), nil
	}

	v, err := toon.FromJSON(data)
	if err != nil {
		return nil, fmt.Errorf("parse json: %w", err)
	}
	return v, nil
}

func (a *app) loadValue(s settings, path string) (any, error) {
	format, err := inputFormat(s.From, path)
	if err != nil {
		return nil, err
	}
	data, err := a.readInput(path)
	if err != nil {
		return nil, err
	}
	a.log.Debug("parsing input", "format", format, "bytes", len(data))
	return parseData(data, format)
}

// normalizeYAML converts the ordered mappings produced by yaml.UseOrderedMap.
func normalizeYAML(v any) (any, bool) {
	ms, ok := v.(yaml.MapSlice)
	if !ok {
		return nil, false
	}
	m := toon.NewMap()
	for _, item := range ms {
		m.Set(fmt.Sprint(item.Key), item.Value)
	}
	return m, true
}

// toYAML converts a value tree to types goccy/go-yaml marshals in order.
func toYAML(v any) any {
	switch val := v.(type) {
	case *toon.Map:
		ms := make(yaml.MapSlice, 0, val.Len())
		for _, e := range val.Entries() {
			ms = append(ms, yaml.MapItem{Key: e.Key, Value: toYAML(e.Value)})
		}
		return ms
	case []any:
		out := make([]any, len(val))
		for i, item := range val {
			out[i] = toYAML(item)
		}
		return out
	default:
		return v
	}
}

// render writes a decoded tree as JSON or YAML.
func render(v any, format string) ([]byte, error) {
	if format == "yaml" {
		return yaml.Marshal(toYAML(v))
	}
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, err
	}
	return append(data, '\n'), nil
}
