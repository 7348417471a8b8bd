package analyze

import (
	"fmt"
	"math"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/paularlott/toon"
)

func TestEstimateTokens(t *testing.T) {
	tests := []struct {
		input    string
		expected int
	}{
		{"", 0},
		{"hello", 1},
		{"hello, world!", 4},
		{"{ }", 2},
		{"a.b.c", 3},
		{"$5", 2},
		{"   ", 0},
	}

	for _, tt := range tests {
		if got := EstimateTokens(tt.input); got != tt.expected {
			t.Errorf("EstimateTokens(%q) = %d, expected %d", tt.input, got, tt.expected)
		}
	}
}

func TestEstimator(t *testing.T) {
	tests := []struct {
		name      string
		estimator Estimator
		input     string
		expected  int
	}{
		{"zero value", Estimator{}, "abcdefgh", 2},
		{"rounds up", Estimator{Method: CharacterRatio}, "abcde", 2},
		{"custom ratio", Estimator{Method: CharacterRatio, CharsPerToken: 3}, "abcdefg", 3},
		{"word count", Estimator{Method: WordCount}, "the quick brown fox", 6},
		{"word count hyphens", Estimator{Method: WordCount}, "it's a well-known 42 fact", 6},
		{"punctuation", Estimator{Method: Punctuation}, "hello, world!", 4},
		{"empty", Estimator{Method: WordCount}, "", 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.estimator.Estimate(tt.input); got != tt.expected {
				t.Errorf("Expected %d, got %d", tt.expected, got)
			}
		})
	}
}

func TestParseMethod(t *testing.T) {
	for name, want := range map[string]Method{
		"":                CharacterRatio,
		"character_ratio": CharacterRatio,
		"WORD_COUNT":      WordCount,
		"punctuation":     Punctuation,
	} {
		got, err := ParseMethod(name)
		if err != nil || got != want {
			t.Errorf("ParseMethod(%q) = %v, %v", name, got, err)
		}
	}
	if _, err := ParseMethod("tiktoken"); err == nil {
		t.Error("Expected error for unknown method")
	}
}

func TestAnalyzeText(t *testing.T) {
	stats := Estimator{}.Analyze("abcdefgh")
	want := TextStats{Chars: 8, Words: 1, Tokens: 2, CharsPerToken: 4, Method: CharacterRatio}
	if diff := cmp.Diff(want, stats); diff != "" {
		t.Errorf("Analyze mismatch (-want +got):\n%s", diff)
	}
}

func records(n int) []any {
	rows := make([]any, n)
	for i := range rows {
		rows[i] = toon.MapOf(
			"id", i,
			"name", fmt.Sprintf("user%d", i),
			"email", fmt.Sprintf("user%d@example.com", i),
			"active", i%2 == 0,
		)
	}
	return rows
}

func TestCompress(t *testing.T) {
	report, err := New().Compress(records(40))
	if err != nil {
		t.Fatal(err)
	}

	if !strings.HasPrefix(report.JSON, `[{"id":0,"name":"user0"`) {
		t.Errorf("JSON should keep key order: %.40s", report.JSON)
	}
	if !strings.HasPrefix(report.TOON, "40]{id,name,email,active}:") {
		t.Errorf("Unexpected TOON header: %.40s", report.TOON)
	}
	if report.JSONBytes != len(report.JSON) || report.TOONBytes != len(report.TOON) {
		t.Error("Sizes do not match content")
	}
	if report.BytesReduced != report.JSONBytes-report.TOONBytes {
		t.Error("BytesReduced inconsistent")
	}
	if report.PercentReduced <= 30 {
		t.Errorf("Expected more than 30%% reduction, got %.2f", report.PercentReduced)
	}
	if report.TokensSaved <= 0 || report.CompressionRatio >= 1 || report.EfficiencyRatio >= 1 {
		t.Errorf("Expected savings: %+v", report.Summary())
	}
	if len(report.Recommendations) == 0 {
		t.Error("Expected recommendations")
	}

	summary := report.Summary()
	if summary.BytesSavedPercent != report.PercentReduced || summary.TokensSavedPercent != report.PercentSaved {
		t.Errorf("Summary mismatch: %+v", summary)
	}
}

func TestCompressRejectsNonFinite(t *testing.T) {
	if _, err := New().Compress(toon.MapOf("x", math.NaN())); err == nil {
		t.Error("Expected error for NaN")
	}
}

func TestRecommend(t *testing.T) {
	tests := []struct {
		bytes, tokens float64
		levels        []Level
	}{
		{75, 65, []Level{Excellent, Important}},
		{70, 10, []Level{Good}},
		{55, 60, []Level{Good}},
		{31, 0, []Level{Moderate}},
		{30, 0, []Level{Low}},
		{-5, 0, []Level{Low}},
	}

	for _, tt := range tests {
		var got []Level
		for _, r := range Recommend(tt.bytes, tt.tokens) {
			got = append(got, r.Level)
		}
		if diff := cmp.Diff(tt.levels, got); diff != "" {
			t.Errorf("Recommend(%v, %v) mismatch (-want +got):\n%s", tt.bytes, tt.tokens, diff)
		}
	}
}

func TestBudget(t *testing.T) {
	a := New()

	b := a.Budget(10, "abcdefgh")
	want := Budget{MaxTokens: 10, TokensUsed: 2, TokensAvailable: 8, PercentUsed: 20, PercentAvailable: 80, WithinBudget: true}
	if diff := cmp.Diff(want, b); diff != "" {
		t.Errorf("Budget mismatch (-want +got):\n%s", diff)
	}

	b = a.Budget(1, "abcdefgh")
	if b.WithinBudget || b.TokensAvailable != 0 {
		t.Errorf("Expected budget to be exceeded: %+v", b)
	}
}

func TestCompareSizes(t *testing.T) {
	sizes, err := CompareSizes(toon.MapOf("a", 1))
	if err != nil {
		t.Fatal(err)
	}
	want := []FormatSize{
		{Format: "json", Bytes: 7, KB: 0.01},
		{Format: "toon_readable", Bytes: 4, KB: 0},
		{Format: "toon_compact", Bytes: 4, KB: 0},
		{Format: "toon_tabular", Bytes: 4, KB: 0},
	}
	if diff := cmp.Diff(want, sizes); diff != "" {
		t.Errorf("CompareSizes mismatch (-want +got):\n%s", diff)
	}
}

func TestBenchmark(t *testing.T) {
	a := New()
	result := a.Benchmark(records(5), 3)
	if result.Iterations != 3 {
		t.Errorf("Expected 3 iterations, got %d", result.Iterations)
	}
	if result.Total() != result.EncodeTotal+result.DecodeTotal {
		t.Error("Total mismatch")
	}
	if result.EncodePerOp() > result.EncodeTotal {
		t.Error("Per-op time exceeds total")
	}

	if got := a.Benchmark(1, 0).Iterations; got != 1 {
		t.Errorf("Expected iterations floored to 1, got %d", got)
	}
}
