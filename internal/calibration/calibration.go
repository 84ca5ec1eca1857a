// Package calibration turns coverage and semantic signals into a 0-10 score with a
// tier and an audit trail of every penalty and bonus applied.
package calibration

import (
	"encoding/json"
	"math"
)

type Tier string

const (
	Outstanding Tier = "outstanding"
	Excellent   Tier = "excellent"
	Strong      Tier = "strong"
	Good        Tier = "good"
	Fair        Tier = "fair"
	Weak        Tier = "weak"
)

// Poor is only used for coverage and semantic tiers.
const Poor = "poor"

// Breakdown explains a calibrated score. FinalScore keeps full precision and
// decides the tier; Score returns the reported value.
type Breakdown struct {
	CoveragePoints float64 `json:"coverage_points"`
	CoverageTier   string  `json:"coverage_tier"`
	SemanticPoints float64 `json:"semantic_points"`
	SemanticTier   string  `json:"semantic_tier"`
	MustPoints     float64 `json:"must_points"`
	NicePoints     float64 `json:"nice_points"`

	MustFulfillmentRate float64 `json:"must_fulfillment_rate"`

	Penalties     []string `json:"penalties"`
	PenaltyFactor float64  `json:"penalty_factor"`
	Bonuses       []string `json:"bonuses"`
	BonusFactor   float64  `json:"bonus_factor"`

	RawScore   float64 `json:"raw_score"`
	FinalScore float64 `json:"final_score"`
	Tier       Tier    `json:"tier"`
}

// band is a linear piece: points = base + (v-from)*slope, capped at ceiling.
type band struct {
	from, base, slope, ceiling float64
	tier                       string
}

var (
	coverageBands = []band{
		{from: 0.90, base: 4.6, slope: 4, ceiling: 5.0, tier: "excellent"},
		{from: 0.75, base: 3.8, slope: 5.33, ceiling: 4.6, tier: "strong"},
		{from: 0.60, base: 3.0, slope: 5.33, ceiling: 3.8, tier: "good"},
		{from: 0.45, base: 2.2, slope: 5.33, ceiling: 3.0, tier: "fair"},
		{from: 0.30, base: 1.47, slope: 4.9, ceiling: 2.2, tier: "weak"},
		{from: 0, base: 0, slope: 4.9, ceiling: 2.2, tier: Poor},
	}
	semanticBands = []band{
		{from: 0.88, base: 3.1, slope: 3.33, ceiling: 3.5, tier: "excellent"},
		{from: 0.78, base: 2.4, slope: 7.0, ceiling: 3.1, tier: "strong"},
		{from: 0.65, base: 1.6, slope: 6.15, ceiling: 2.4, tier: "good"},
		{from: 0.50, base: 0.8, slope: 5.33, ceiling: 1.6, tier: "fair"},
		{from: 0.35, base: 0.3, slope: 3.33, ceiling: 0.8, tier: "weak"},
		{from: 0, base: 0, slope: 0.86, ceiling: 0.3, tier: Poor},
	}
	mustBands = []band{
		{from: 0.90, base: 1.4, slope: 1.0, ceiling: 1.5},
		{from: 0.75, base: 1.1, slope: 2.0, ceiling: 1.4},
		{from: 0.60, base: 0.7, slope: 2.67, ceiling: 1.1},
		{from: 0.40, base: 0.3, slope: 2.0, ceiling: 0.7},
		{from: 0, base: 0, slope: 0.75, ceiling: 0.3},
	}
)

// points evaluates the band containing v.
func points(bands []band, v float64) (float64, string) {
	for _, b := range bands {
		if v >= b.from {
			return math.Min(b.ceiling, b.base+(v-b.from)*b.slope), b.tier
		}
	}
	return 0, bands[len(bands)-1].tier
}

// Calibrate scores a candidate. Inputs outside [0, 1] are clamped.
func Calibrate(coverage, semantic, mustFulfillmentRate, niceCoverage float64) Breakdown {
	coverage = clamp01(coverage)
	semantic = clamp01(semantic)
	mustFulfillmentRate = clamp01(mustFulfillmentRate)
	niceCoverage = clamp01(niceCoverage)

	b := Breakdown{MustFulfillmentRate: mustFulfillmentRate}
	b.CoveragePoints, b.CoverageTier = points(coverageBands, coverage)
	b.SemanticPoints, b.SemanticTier = points(semanticBands, semantic)
	b.MustPoints, _ = points(mustBands, mustFulfillmentRate)
	b.NicePoints = math.Min(0.5, niceCoverage*0.5)
	b.RawScore = b.CoveragePoints + b.SemanticPoints + b.MustPoints + b.NicePoints

	b.PenaltyFactor = 1
	penalize := func(factor float64, reason string) {
		b.PenaltyFactor *= factor
		b.Penalties = append(b.Penalties, reason)
	}

	if mustFulfillmentRate < 0.50 {
		penalize(0.65, "Critical: <50% must-haves met (-35%)")
	}

	switch {
	case coverage < 0.40:
		penalize(0.75, "Low overall coverage (-25%)")
	case coverage < 0.60:
		penalize(0.90, "Moderate coverage gap (-10%)")
	}

	switch {
	case semantic < 0.40:
		penalize(0.70, "Very weak semantic relevance (-30%)")
	case semantic < 0.55:
		penalize(0.85, "Weak semantic relevance (-15%)")
	case semantic < 0.70:
		penalize(0.95, "Moderate semantic gap (-5%)")
	}

	if coverage >= 0.85 && semantic < 0.55 {
		penalize(0.85, "Mismatch: High coverage but weak semantic fit (-15%)")
	}

	b.BonusFactor = 1
	if coverage >= 0.90 && mustFulfillmentRate >= 0.90 {
		b.BonusFactor *= 1.08
		b.Bonuses = append(b.Bonuses, "Excellence bonus: High coverage + must-haves (+8%)")
	}
	if semantic >= 0.92 {
		b.BonusFactor *= 1.04
		b.Bonuses = append(b.Bonuses, "Perfect fit bonus: Excellent semantic match (+4%)")
	}

	b.FinalScore = math.Max(0, math.Min(10, b.RawScore*b.PenaltyFactor*b.BonusFactor))
	b.Tier = TierFor(b.FinalScore)
	return b
}

// Score is the final score rounded to one decimal.
func (b Breakdown) Score() float64 {
	return round(b.FinalScore, 1)
}

// TierFor maps a 0-10 score to its band.
func TierFor(score float64) Tier {
	switch {
	case score >= 9:
		return Outstanding
	case score >= 8:
		return Excellent
	case score >= 7:
		return Strong
	case score >= 6:
		return Good
	case score >= 5:
		return Fair
	default:
		return Weak
	}
}

var messages = map[Tier]string{
	Outstanding: "OUTSTANDING CANDIDATE - Immediate interview recommended.",
	Excellent:   "EXCELLENT FIT - Priority candidate for this role.",
	Strong:      "STRONG CANDIDATE - Definitely worth interviewing.",
	Good:        "GOOD MATCH - Consider for interview.",
	Fair:        "BORDERLINE - May be suitable with development.",
	Weak:        "UNDER-QUALIFIED - Does not meet minimum requirements.",
}

// Message is the recommendation prefix for a tier.
func Message(t Tier) string {
	if m, ok := messages[t]; ok {
		return m
	}
	return messages[Weak]
}

func (b Breakdown) MarshalJSON() ([]byte, error) {
	type plain Breakdown
	out := plain(b)
	out.CoveragePoints = round(out.CoveragePoints, 2)
	out.SemanticPoints = round(out.SemanticPoints, 2)
	out.MustPoints = round(out.MustPoints, 2)
	out.NicePoints = round(out.NicePoints, 2)
	out.MustFulfillmentRate = round(out.MustFulfillmentRate, 3)
	out.PenaltyFactor = round(out.PenaltyFactor, 3)
	out.BonusFactor = round(out.BonusFactor, 3)
	out.RawScore = round(out.RawScore, 2)
	out.FinalScore = round(out.FinalScore, 2)
	if out.Penalties == nil {
		out.Penalties = []string{}
	}
	if out.Bonuses == nil {
		out.Bonuses = []string{}
	}
	return json.Marshal(out)
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
