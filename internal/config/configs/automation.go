package configs

import "time"

// Automation hoists the optimization engine's business constants out of
// code so thresholds are swappable without a rebuild. Defaults match the
// original product rules.
type Automation struct {
	// SweepInterval enables the periodic sweep over all active
	// campaigns. Zero disables the ticker; the HTTP trigger remains.
	SweepInterval time.Duration `env:"SWEEP_INTERVAL" envDefault:"0"`

	// MetricsWindowDays is the rolling window aggregated for scoring.
	MetricsWindowDays int `env:"METRICS_WINDOW_DAYS" envDefault:"7"`

	// Scoring breakpoints. CTR is in percent, CPC/CPA in currency units.
	CTRGood float64 `env:"CTR_GOOD" envDefault:"2.0"`
	CTRFair float64 `env:"CTR_FAIR" envDefault:"1.0"`
	CPCGood float64 `env:"CPC_GOOD" envDefault:"1.0"`
	CPCFair float64 `env:"CPC_FAIR" envDefault:"2.0"`
	CPAGood float64 `env:"CPA_GOOD" envDefault:"50.0"`
	CPAFair float64 `env:"CPA_FAIR" envDefault:"100.0"`

	// Score bands driving budget decisions.
	IncreaseScore int `env:"INCREASE_SCORE" envDefault:"80"`
	DecreaseScore int `env:"DECREASE_SCORE" envDefault:"40"`
	PauseScore    int `env:"PAUSE_SCORE" envDefault:"20"`

	// Budget adjustment percentages.
	IncreasePercent float64 `env:"INCREASE_PERCENT" envDefault:"20"`
	DecreasePercent float64 `env:"DECREASE_PERCENT" envDefault:"30"`

	// Gate limits: campaign creation below FreeCampaignBudget is
	// auto-approved; any single transaction above MaxSingleTransaction
	// requires a human decision.
	FreeCampaignBudget   float64 `env:"FREE_CAMPAIGN_BUDGET" envDefault:"200"`
	MaxSingleTransaction float64 `env:"MAX_SINGLE_TRANSACTION" envDefault:"1000"`
}
