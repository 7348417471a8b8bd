package main

import (
	"fmt"
	"strings"

	"github.com/paularlott/cli"

	"github.com/paularlott/toon"
	"github.com/paularlott/toon/analyze"
)

// settings is the flag state shared by all commands. Zero values mean
// "use the preset".
type settings struct {
	Preset     string
	Indent     int // -1 keeps the preset value
	Delimiter  string
	MinRows    int
	MaxPreview int
	Pretty     bool

	From   string
	To     string
	Output string
	Strict bool

	Method        string
	CharsPerToken int
	JSON          bool
	Detailed      bool
	Iterations    int
}

func settingsFrom(cmd *cli.Command) settings {
	return settings{
		Preset:        cmd.GetString("preset"),
		Indent:        cmd.GetInt("indent"),
		Delimiter:     cmd.GetString("delimiter"),
		MinRows:       cmd.GetInt("min-rows"),
		MaxPreview:    cmd.GetInt("max-preview"),
		Pretty:        cmd.GetBool("pretty"),
		From:          cmd.GetString("from"),
		To:            cmd.GetString("to"),
		Output:        cmd.GetString("output"),
		Strict:        cmd.GetBool("strict"),
		Method:        cmd.GetString("method"),
		CharsPerToken: cmd.GetInt("chars-per-token"),
		JSON:          cmd.GetBool("json"),
		Detailed:      cmd.GetBool("detailed"),
		Iterations:    cmd.GetInt("iterations"),
	}
}

func parseDelimiter(s string) string {
	switch strings.ToLower(s) {
	case "tab", `\t`:
		return "\t"
	case "pipe":
		return "|"
	case "comma":
		return ","
	}
	return s
}

func (s settings) encodeOptions() (*toon.EncodeOptions, error) {
	opts, err := toon.PresetByName(s.Preset)
	if err != nil {
		return nil, err
	}
	if s.Indent >= 0 {
		opts.Indent = s.Indent
	}
	if s.Delimiter != "" {
		opts.Delimiter = parseDelimiter(s.Delimiter)
	}
	if s.MinRows > 0 {
		opts.MinRowsToTabular = s.MinRows
	}
	if s.MaxPreview > 0 {
		opts.MaxPreviewItems = s.MaxPreview
	}
	if s.Pretty {
		opts.PrettyPrint = true
	}
	opts.Normalizers = append(opts.Normalizers, normalizeYAML)
	return opts, nil
}

func (s settings) decodeOptions() (*toon.DecodeOptions, error) {
	opts, err := s.encodeOptions()
	if err != nil {
		return nil, err
	}
	d := opts.DecodeOptions()
	d.Strict = s.Strict
	return d, nil
}

func (s settings) analyzer() (*analyze.Analyzer, error) {
	opts, err := s.encodeOptions()
	if err != nil {
		return nil, err
	}
	method, err := analyze.ParseMethod(s.Method)
	if err != nil {
		return nil, err
	}
	a := analyze.New()
	a.Options = opts
	a.Estimator = analyze.Estimator{Method: method, CharsPerToken: s.CharsPerToken}
	return a, nil
}

func (s settings) outputFormat() (string, error) {
	switch strings.ToLower(s.To) {
	case "", "json":
		return "json", nil
	case "yaml", "yml":
		return "yaml", nil
	default:
		return "", fmt.Errorf("unknown output format %q", s.To)
	}
}
