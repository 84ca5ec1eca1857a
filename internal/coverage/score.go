package coverage

import "math"

// PreScore is the deterministic requirement score: a step table on the best
// semantic similarity, raised to a floor set by keyword overlap.
func PreScore(maxSimilarity, keywordOverlap float64) float64 {
	var base float64
	switch {
	case maxSimilarity >= 0.80:
		base = 0.80
	case maxSimilarity >= 0.70:
		base = 0.65
	case maxSimilarity >= 0.60:
		base = 0.50
	case maxSimilarity >= 0.45:
		base = 0.35
	case maxSimilarity >= 0.30:
		base = 0.20
	}

	var floor float64
	switch {
	case keywordOverlap >= 0.70:
		floor = 0.70
	case keywordOverlap >= 0.55:
		floor = 0.55
	case keywordOverlap >= 0.40:
		floor = 0.40
	case keywordOverlap >= 0.25:
		floor = 0.25
	}

	return math.Max(base, floor)
}

// AdjudicatedScore turns an adjudicator verdict into the final requirement score.
// preScore is only consulted for low-confidence absences.
func AdjudicatedScore(present bool, confidence, maxSimilarity, preScore float64) float64 {
	confidence = clamp01(confidence)

	if present {
		score := 0.5 + 0.5*confidence
		switch {
		case maxSimilarity >= 0.85:
			score *= 1.15
		case maxSimilarity >= 0.75:
			score *= 1.10
		case maxSimilarity >= 0.65:
			score *= 1.05
		}
		return math.Min(1, score)
	}

	switch {
	case confidence >= 0.80:
		return 0
	case confidence >= 0.65:
		return 0.10
	case confidence >= 0.50:
		return 0.25
	case maxSimilarity >= 0.60:
		return 0.45
	case maxSimilarity >= 0.45:
		return 0.35
	default:
		return math.Min(0.30, 0.8*preScore)
	}
}

// PenaltyFactor shrinks overall coverage when too few must-haves are present.
func PenaltyFactor(mustFulfillmentRate float64) float64 {
	switch {
	case mustFulfillmentRate < 0.30:
		return 0.50
	case mustFulfillmentRate < 0.50:
		return 0.70
	case mustFulfillmentRate < 0.70:
		return 0.85
	default:
		return 1.0
	}
}

func mean(details []Verdict, empty float64) float64 {
	if len(details) == 0 {
		return empty
	}
	var sum float64
	for _, d := range details {
		sum += d.Score
	}
	return sum / float64(len(details))
}

func clamp01(v float64) float64 {
	if math.IsNaN(v) || v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

func round(v float64, places int) float64 {
	p := math.Pow(10, float64(places))
	return math.Round(v*p) / p
}
