package usecase

import (
	"github.com/shopspring/decimal"

	"nexora/internal/config/configs"
	"nexora/internal/core/domain"
)

// ScoreThresholds are the breakpoints mapping aggregate CTR/CPC/CPA to
// score points. CTR is in percent, CPC and CPA in currency units.
type ScoreThresholds struct {
	CTRGood, CTRFair float64
	CPCGood, CPCFair float64
	CPAGood, CPAFair float64
}

// ThresholdsFromConfig lifts the configured breakpoints into the scorer's
// input struct.
func ThresholdsFromConfig(cfg configs.Automation) ScoreThresholds {
	return ScoreThresholds{
		CTRGood: cfg.CTRGood, CTRFair: cfg.CTRFair,
		CPCGood: cfg.CPCGood, CPCFair: cfg.CPCFair,
		CPAGood: cfg.CPAGood, CPAFair: cfg.CPAFair,
	}
}

// DefaultScoreThresholds returns the product's standard breakpoints.
func DefaultScoreThresholds() ScoreThresholds {
	return ScoreThresholds{
		CTRGood: 2.0, CTRFair: 1.0,
		CPCGood: 1.0, CPCFair: 2.0,
		CPAGood: 50.0, CPAFair: 100.0,
	}
}

// ScoreResult carries the composite score and the derived metrics it was
// computed from.
type ScoreResult struct {
	Score           int
	CTR             float64
	CPC             float64
	CPA             float64
	Conversions     int64
	Recommendations []string
	// Insufficient marks the neutral fallback used when no snapshots
	// exist for the window.
	Insufficient bool
}

// Scorer derives a 0-100 performance score from a campaign's recent
// metric snapshots. It is a pure computation with no side effects.
type Scorer struct {
	thresholds ScoreThresholds
}

func NewScorer(thresholds ScoreThresholds) *Scorer {
	return &Scorer{thresholds: thresholds}
}

// Score aggregates the snapshots and maps CTR, CPC and CPA to points.
// Each ratio is zero when its denominator is zero. With no snapshots at
// all the scorer fails closed: neutral score 50 and a single
// insufficient-data note. That default is policy, not an error.
func (s *Scorer) Score(snaps []domain.MetricSnapshot) ScoreResult {
	if len(snaps) == 0 {
		return ScoreResult{
			Score:           50,
			Recommendations: []string{"insufficient data for analysis"},
			Insufficient:    true,
		}
	}

	var impressions, clicks, conversions int64
	spend := decimal.Zero
	for _, m := range snaps {
		impressions += m.Impressions
		clicks += m.Clicks
		conversions += m.Conversions
		spend = spend.Add(m.Spend)
	}

	var ctr, cpc, cpa float64
	if impressions > 0 {
		ctr = float64(clicks) / float64(impressions) * 100
	}
	if clicks > 0 {
		cpc = spend.InexactFloat64() / float64(clicks)
	}
	if conversions > 0 {
		cpa = spend.InexactFloat64() / float64(conversions)
	}

	score := 0
	switch {
	case ctr > s.thresholds.CTRGood:
		score += 35
	case ctr > s.thresholds.CTRFair:
		score += 20
	}
	switch {
	case cpc < s.thresholds.CPCGood:
		score += 35
	case cpc < s.thresholds.CPCFair:
		score += 20
	}
	switch {
	case cpa < s.thresholds.CPAGood:
		score += 30
	case cpa < s.thresholds.CPAFair:
		score += 15
	}

	var recommendations []string
	if ctr < s.thresholds.CTRFair {
		recommendations = append(recommendations, "low CTR - improve creatives")
	}
	if cpc > s.thresholds.CPCFair {
		recommendations = append(recommendations, "high CPC - optimize bids")
	}
	if cpa > s.thresholds.CPAFair {
		recommendations = append(recommendations, "high CPA - review funnel")
	}

	return ScoreResult{
		Score:           score,
		CTR:             ctr,
		CPC:             cpc,
		CPA:             cpa,
		Conversions:     conversions,
		Recommendations: recommendations,
	}
}
