package analyze

import (
	"fmt"
	"math"
	"strings"
	"unicode"
)

// Method selects how an Estimator counts tokens.
type Method string

const (
	// CharacterRatio divides the byte length by CharsPerToken, rounding up.
	CharacterRatio Method = "character_ratio"
	// WordCount charges 1.3 tokens per word.
	WordCount Method = "word_count"
	// Punctuation charges one token per word plus one per punctuation mark.
	Punctuation Method = "punctuation"
)

const defaultCharsPerToken = 4

// ParseMethod resolves a method name. The empty string selects CharacterRatio.
func ParseMethod(name string) (Method, error) {
	switch Method(strings.ToLower(strings.TrimSpace(name))) {
	case "", CharacterRatio:
		return CharacterRatio, nil
	case WordCount:
		return WordCount, nil
	case Punctuation:
		return Punctuation, nil
	default:
		return "", fmt.Errorf("unknown estimate method %q", name)
	}
}

// Estimator approximates language-model token counts. The zero value uses
// CharacterRatio with four characters per token.
type Estimator struct {
	Method        Method
	CharsPerToken int
}

// Estimate returns the estimated token count of text.
func (e Estimator) Estimate(text string) int {
	switch e.Method {
	case WordCount:
		return int(math.Ceil(float64(countWords(text)) * 1.3))
	case Punctuation:
		return EstimateTokens(text)
	default:
		per := e.CharsPerToken
		if per <= 0 {
			per = defaultCharsPerToken
		}
		return (len(text) + per - 1) / per
	}
}

// TextStats describes a piece of text as seen by an Estimator.
type TextStats struct {
	Chars         int     `json:"length_chars"`
	Words         int     `json:"length_words"`
	Tokens        int     `json:"tokens_estimated"`
	CharsPerToken float64 `json:"chars_per_token"`
	Method        Method  `json:"analysis_method"`
}

// Analyze returns size statistics for text.
func (e Estimator) Analyze(text string) TextStats {
	stats := TextStats{
		Chars:  len(text),
		Words:  countWords(text),
		Tokens: e.Estimate(text),
		Method: e.Method,
	}
	if stats.Method == "" {
		stats.Method = CharacterRatio
	}
	if stats.Tokens > 0 {
		stats.CharsPerToken = round(float64(stats.Chars)/float64(stats.Tokens), 2)
	}
	return stats
}

// EstimateTokens returns a rough token count for a given input string.
// This uses a simple heuristic based on word boundaries and punctuation.
func EstimateTokens(text string) int {
	if text == "" {
		return 0
	}

	tokens := 0
	for _, word := range strings.Fields(text) {
		punct := 0
		letters := false
		for _, r := range word {
			if unicode.IsPunct(r) || unicode.IsSymbol(r) {
				punct++
			} else {
				letters = true
			}
		}

		// A bare run of punctuation costs one token per mark
		tokens += punct
		if letters {
			tokens++
		}
	}
	return tokens
}

// countWords counts runs of letters, apostrophes and hyphens.
func countWords(text string) int {
	words := 0
	inWord := false
	for _, r := range text {
		if unicode.IsLetter(r) || r == '\'' || r == '-' {
			if !inWord {
				words++
				inWord = true
			}
			continue
		}
		inWord = false
	}
	return words
}

func round(v float64, places int) float64 {
	p := math.Pow(10, float64(places))
	return math.Round(v*p) / p
}
