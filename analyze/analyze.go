// Package analyze measures how much smaller TOON output is than the JSON
// encoding of the same data, in bytes and in estimated tokens.
package analyze

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/paularlott/toon"
)

// Analyzer compares the JSON and TOON encodings of values.
type Analyzer struct {
	Estimator Estimator
	Options   *toon.EncodeOptions // TOON layout to measure (default: toon.Readable())
}

// New creates an Analyzer using the character ratio estimator and the
// readable preset.
func New() *Analyzer {
	return &Analyzer{
		Estimator: Estimator{Method: CharacterRatio, CharsPerToken: defaultCharsPerToken},
		Options:   toon.Readable(),
	}
}

func (a *Analyzer) options() *toon.EncodeOptions {
	if a.Options == nil {
		return toon.Readable()
	}
	return a.Options
}

// Report is the full JSON versus TOON comparison of one value.
type Report struct {
	JSON string `json:"original_json"`
	TOON string `json:"compressed_toon"`

	JSONBytes        int     `json:"json_size_bytes"`
	TOONBytes        int     `json:"toon_size_bytes"`
	BytesReduced     int     `json:"bytes_reduced"`
	PercentReduced   float64 `json:"percent_reduced"`
	CompressionRatio float64 `json:"compression_ratio"`

	JSONTokens      int     `json:"json_tokens"`
	TOONTokens      int     `json:"toon_tokens"`
	TokensSaved     int     `json:"tokens_saved"`
	PercentSaved    float64 `json:"percent_saved"`
	EfficiencyRatio float64 `json:"efficiency_ratio"`

	Recommendations []Recommendation `json:"recommendations"`
}

// Summary is the short form of a Report.
type Summary struct {
	JSONBytes          int     `json:"json_size_bytes"`
	TOONBytes          int     `json:"toon_size_bytes"`
	BytesSavedPercent  float64 `json:"bytes_saved_percent"`
	TokensSavedPercent float64 `json:"tokens_saved_percent"`
}

// Summary returns the headline numbers of the report.
func (r *Report) Summary() Summary {
	return Summary{
		JSONBytes:          r.JSONBytes,
		TOONBytes:          r.TOONBytes,
		BytesSavedPercent:  r.PercentReduced,
		TokensSavedPercent: r.PercentSaved,
	}
}

// MarshalJSON renders v as JSON, keeping the key order of ordered maps.
func MarshalJSON(v any) (string, error) {
	data, err := json.Marshal(toon.Normalize(v))
	if err != nil {
		return "", fmt.Errorf("encode json: %w", err)
	}
	return string(data), nil
}

// Compress encodes v both ways and compares the results.
func (a *Analyzer) Compress(v any) (*Report, error) {
	jsonText, err := MarshalJSON(v)
	if err != nil {
		return nil, err
	}
	toonText := toon.EncodeWithOptions(v, a.options())

	r := &Report{
		JSON:       jsonText,
		TOON:       toonText,
		JSONBytes:  len(jsonText),
		TOONBytes:  len(toonText),
		JSONTokens: a.Estimator.Estimate(jsonText),
		TOONTokens: a.Estimator.Estimate(toonText),
	}
	r.BytesReduced = r.JSONBytes - r.TOONBytes
	r.TokensSaved = r.JSONTokens - r.TOONTokens
	r.PercentReduced = percent(r.BytesReduced, r.JSONBytes)
	r.PercentSaved = percent(r.TokensSaved, r.JSONTokens)
	if r.JSONBytes > 0 {
		r.CompressionRatio = round(float64(r.TOONBytes)/float64(r.JSONBytes), 3)
	}
	if r.JSONTokens > 0 {
		r.EfficiencyRatio = round(float64(r.TOONTokens)/float64(r.JSONTokens), 3)
	}
	r.Recommendations = Recommend(r.PercentReduced, r.PercentSaved)
	return r, nil
}

func percent(part, whole int) float64 {
	if whole <= 0 {
		return 0
	}
	return round(float64(part)/float64(whole)*100, 2)
}

// Budget reports how much of a token allowance the TOON form of v uses.
type Budget struct {
	MaxTokens        int     `json:"max_tokens"`
	TokensUsed       int     `json:"tokens_used"`
	TokensAvailable  int     `json:"tokens_available"`
	PercentUsed      float64 `json:"percent_used"`
	PercentAvailable float64 `json:"percent_available"`
	WithinBudget     bool    `json:"within_budget"`
}

// Budget estimates the TOON token cost of v against maxTokens.
func (a *Analyzer) Budget(maxTokens int, v any) Budget {
	used := a.Estimator.Estimate(toon.EncodeWithOptions(v, a.options()))
	b := Budget{
		MaxTokens:       maxTokens,
		TokensUsed:      used,
		TokensAvailable: max(0, maxTokens-used),
		WithinBudget:    used <= maxTokens,
	}
	if maxTokens > 0 {
		b.PercentUsed = round(float64(used)/float64(maxTokens)*100, 2)
	}
	b.PercentAvailable = round(100-b.PercentUsed, 2)
	return b
}

// FormatSize is the encoded size of a value in one format.
type FormatSize struct {
	Format string  `json:"format"`
	Bytes  int     `json:"size_bytes"`
	KB     float64 `json:"size_kb"`
}

// CompareSizes returns the size of v as JSON and under each TOON preset.
func CompareSizes(v any) ([]FormatSize, error) {
	jsonText, err := MarshalJSON(v)
	if err != nil {
		return nil, err
	}

	sizes := []FormatSize{newFormatSize("json", len(jsonText))}
	for _, preset := range []struct {
		name string
		opts *toon.EncodeOptions
	}{
		{"toon_readable", toon.Readable()},
		{"toon_compact", toon.Compact()},
		{"toon_tabular", toon.Tabular()},
	} {
		sizes = append(sizes, newFormatSize(preset.name, len(toon.EncodeWithOptions(v, preset.opts))))
	}
	return sizes, nil
}

func newFormatSize(format string, n int) FormatSize {
	return FormatSize{Format: format, Bytes: n, KB: round(float64(n)/1024, 2)}
}

// BenchmarkResult holds encode and decode timings.
type BenchmarkResult struct {
	Iterations  int           `json:"iterations"`
	EncodeTotal time.Duration `json:"encode_time"`
	DecodeTotal time.Duration `json:"decode_time"`
}

// EncodePerOp returns the mean encode time.
func (b BenchmarkResult) EncodePerOp() time.Duration {
	if b.Iterations == 0 {
		return 0
	}
	return b.EncodeTotal / time.Duration(b.Iterations)
}

// DecodePerOp returns the mean decode time.
func (b BenchmarkResult) DecodePerOp() time.Duration {
	if b.Iterations == 0 {
		return 0
	}
	return b.DecodeTotal / time.Duration(b.Iterations)
}

// Total returns the combined encode and decode time.
func (b BenchmarkResult) Total() time.Duration {
	return b.EncodeTotal + b.DecodeTotal
}

// Benchmark times iterations of Encode and of Decode on v.
func (a *Analyzer) Benchmark(v any, iterations int) BenchmarkResult {
	if iterations < 1 {
		iterations = 1
	}
	opts := a.options()
	decodeOpts := opts.DecodeOptions()

	start := time.Now()
	for range iterations {
		toon.EncodeWithOptions(v, opts)
	}
	encodeTotal := time.Since(start)

	encoded := toon.EncodeWithOptions(v, opts)
	start = time.Now()
	for range iterations {
		_, _ = toon.DecodeWithOptions(encoded, decodeOpts)
	}

	return BenchmarkResult{
		Iterations:  iterations,
		EncodeTotal: encodeTotal,
		DecodeTotal: time.Since(start),
	}
}
