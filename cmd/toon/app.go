package main

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/mattn/go-isatty"
	"github.com/paularlott/cli"
	"github.com/sergi/go-diff/diffmatchpatch"

	"github.com/paularlott/toon"
	"github.com/paularlott/toon/analyze"
)

var errRoundTrip = errors.New("round trip changed the document")

type app struct {
	stdin  io.Reader
	stdout io.Writer
	stderr io.Writer

	level *slog.LevelVar
	log   *slog.Logger
}

func newApp(stdin io.Reader, stdout, stderr io.Writer) *app {
	level := new(slog.LevelVar)
	level.Set(slog.LevelWarn)
	return &app{
		stdin:  stdin,
		stdout: stdout,
		stderr: stderr,
		level:  level,
		log:    newLogger(stderr, level),
	}
}

// configure applies the global flags.
func (a *app) configure(cmd *cli.Command) {
	if cmd.GetBool("verbose") {
		a.level.Set(slog.LevelDebug)
	}
	color.NoColor = cmd.GetBool("no-color") || !isTerminal(a.stdout)
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// writeOutput writes data to the --output file, or stdout.
func (a *app) writeOutput(s settings, data string) error {
	if !strings.HasSuffix(data, "\n") {
		data += "\n"
	}
	if s.Output == "" || s.Output == "-" {
		_, err := io.WriteString(a.stdout, data)
		return err
	}
	if err := os.WriteFile(s.Output, []byte(data), 0o644); err != nil {
		return fmt.Errorf("write output: %w", err)
	}
	a.log.Info("wrote output", "path", s.Output, "bytes", len(data))
	return nil
}

func (a *app) encode(s settings, path string) error {
	opts, err := s.encodeOptions()
	if err != nil {
		return err
	}
	v, err := a.loadValue(s, path)
	if err != nil {
		return err
	}
	return a.writeOutput(s, toon.EncodeWithOptions(v, opts))
}

func (a *app) decode(s settings, path string) error {
	opts, err := s.decodeOptions()
	if err != nil {
		return err
	}
	format, err := s.outputFormat()
	if err != nil {
		return err
	}
	data, err := a.readInput(path)
	if err != nil {
		return err
	}

	v, err := toon.DecodeWithOptions(string(data), opts)
	if err != nil {
		return err
	}
	out, err := render(v, format)
	if err != nil {
		return fmt.Errorf("render %s: %w", format, err)
	}
	return a.writeOutput(s, string(out))
}

func (a *app) validate(s settings, path string) error {
	opts, err := s.decodeOptions()
	if err != nil {
		return err
	}
	opts.Strict = true
	data, err := a.readInput(path)
	if err != nil {
		return err
	}

	if _, err := toon.DecodeWithOptions(string(data), opts); err != nil {
		fmt.Fprintf(a.stdout, "%s %v\n", color.RedString("invalid:"), err)
		return err
	}
	fmt.Fprintln(a.stdout, color.GreenString("valid"))
	return nil
}

func (a *app) analyze(s settings, path string) error {
	an, err := s.analyzer()
	if err != nil {
		return err
	}
	v, err := a.loadValue(s, path)
	if err != nil {
		return err
	}
	report, err := an.Compress(v)
	if err != nil {
		return err
	}

	if s.JSON {
		out, err := render(report, "json")
		if err != nil {
			return err
		}
		return a.writeOutput(s, string(out))
	}

	p := newPrinter(a.stdout)
	p.heading("Compression")
	p.row("JSON size", fmt.Sprintf("%d bytes", report.JSONBytes))
	p.row("TOON size", fmt.Sprintf("%d bytes", report.TOONBytes))
	p.row("Bytes saved", p.percent(report.PercentReduced))
	p.row("Compression ratio", fmt.Sprintf("%.3f", report.CompressionRatio))
	p.heading("Tokens")
	p.row("JSON tokens", fmt.Sprint(report.JSONTokens))
	p.row("TOON tokens", fmt.Sprint(report.TOONTokens))
	p.row("Tokens saved", fmt.Sprintf("%d (%s)", report.TokensSaved, p.percent(report.PercentSaved)))

	if s.Detailed {
		p.heading("Recommendations")
		for _, r := range report.Recommendations {
			p.recommendation(r)
		}
		p.heading("TOON")
		fmt.Fprintln(a.stdout, report.TOON)
	}
	return nil
}

func (a *app) benchmark(s settings, path string) error {
	an, err := s.analyzer()
	if err != nil {
		return err
	}
	v, err := a.loadValue(s, path)
	if err != nil {
		return err
	}

	a.log.Debug("running benchmark", "iterations", s.Iterations)
	result := an.Benchmark(v, s.Iterations)
	sizes, err := analyze.CompareSizes(v)
	if err != nil {
		return err
	}

	p := newPrinter(a.stdout)
	p.heading("Performance")
	p.row("Iterations", fmt.Sprint(result.Iterations))
	p.row("Encode total", result.EncodeTotal.String())
	p.row("Encode per op", result.EncodePerOp().String())
	p.row("Decode total", result.DecodeTotal.String())
	p.row("Decode per op", result.DecodePerOp().String())
	p.row("Total", result.Total().String())
	p.heading("Sizes")
	for _, size := range sizes {
		p.row(size.Format, fmt.Sprintf("%d bytes (%.2f KB)", size.Bytes, size.KB))
	}
	return nil
}

// roundtrip encodes, decodes and re-encodes the input. Any difference in
// the value tree or the text is reported with a line diff.
func (a *app) roundtrip(s settings, path string) error {
	opts, err := s.encodeOptions()
	if err != nil {
		return err
	}
	v, err := a.loadValue(s, path)
	if err != nil {
		return err
	}

	first := toon.EncodeWithOptions(v, opts)
	decoded, err := toon.DecodeWithOptions(first, opts.DecodeOptions())
	if err != nil {
		return err
	}
	second := toon.EncodeWithOptions(decoded, opts)

	treeOK := toon.Equal(toon.NormalizeWith(v, opts.Normalizers...), decoded)
	textOK := first == second
	a.log.Debug("round trip", "tree_equal", treeOK, "text_equal", textOK, "bytes", len(first))

	if treeOK && textOK {
		fmt.Fprintln(a.stdout, color.GreenString("round trip ok"))
		return nil
	}

	if !treeOK {
		fmt.Fprintln(a.stdout, color.YellowString("decoded value differs from the input"))
	}
	if !textOK {
		fmt.Fprintln(a.stdout, color.YellowString("re-encoded text differs:"))
		fmt.Fprint(a.stdout, lineDiff(first, second))
	}
	return errRoundTrip
}

// lineDiff renders a line-level diff of two texts with +/- prefixes.
func lineDiff(from, to string) string {
	dmp := diffmatchpatch.New()
	a, b, lines := dmp.DiffLinesToChars(from, to)
	diffs := dmp.DiffCharsToLines(dmp.DiffMain(a, b, false), lines)

	var out strings.Builder
	for _, d := range diffs {
		prefix, paint := "  ", fmt.Sprint
		switch d.Type {
		case diffmatchpatch.DiffInsert:
			prefix, paint = "+ ", color.New(color.FgGreen).Sprint
		case diffmatchpatch.DiffDelete:
			prefix, paint = "- ", color.New(color.FgRed).Sprint
		}
		for _, line := range strings.SplitAfter(d.Text, "\n") {
			if line == "" {
				continue
			}
			if !strings.HasSuffix(line, "\n") {
				line += "\n"
			}
			out.WriteString(paint(prefix + line))
		}
	}
	return out.String()
}
