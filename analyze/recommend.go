package analyze

// Level grades a Recommendation.
type Level string

const (
	Excellent Level = "excellent"
	Good      Level = "good"
	Moderate  Level = "moderate"
	Low       Level = "low"
	Important Level = "important"
)

// Recommendation is advice derived from a compression result.
type Recommendation struct {
	Level   Level  `json:"level"`
	Message string `json:"message"`
	Action  string `json:"action"`
}

// Recommend grades a byte reduction and adds a token note when more than
// 60% of tokens are saved. Both arguments are percentages.
func Recommend(bytesPercent, tokensPercent float64) []Recommendation {
	var recs []Recommendation

	switch {
	case bytesPercent > 70:
		recs = append(recs, Recommendation{
			Level:   Excellent,
			Message: "Excellent compression: more than 70% smaller",
			Action:  "Use TOON for this kind of data in production",
		})
	case bytesPercent > 50:
		recs = append(recs, Recommendation{
			Level:   Good,
			Message: "Good compression: 50-70% smaller",
			Action:  "TOON is strongly recommended for this content",
		})
	case bytesPercent > 30:
		recs = append(recs, Recommendation{
			Level:   Moderate,
			Message: "Moderate compression: 30-50% smaller",
			Action:  "Consider TOON where the token budget is tight",
		})
	default:
		recs = append(recs, Recommendation{
			Level:   Low,
			Message: "Low compression: less than 30% smaller",
			Action:  "TOON may not suit this kind of data",
		})
	}

	if tokensPercent > 60 {
		recs = append(recs, Recommendation{
			Level:   Important,
			Message: "Significant token saving: more than 60%",
			Action:  "Expect a substantial reduction in model input cost",
		})
	}

	return recs
}
