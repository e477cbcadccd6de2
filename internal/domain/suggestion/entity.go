package suggestion

import (
	"time"

	"vega/internal/domain/confidence"
	"vega/internal/domain/contract"
	"vega/internal/domain/scoring"
)

// Kind discriminates the suggestion variants
type Kind string

const (
	KindCall    Kind = "CALL"
	KindPut     Kind = "PUT"
	KindAlert   Kind = "ALERT"
	KindNoTrade Kind = "NO_TRADE"
)

// RiskTier is a coarse risk label for position sizing guidance
type RiskTier string

const (
	RiskLow      RiskTier = "LOW"
	RiskModerate RiskTier = "MODERATE"
	RiskHigh     RiskTier = "HIGH"
)

// ContractRef summarizes the referenced contract. Suggestions never carry the
// full Contract entity: contracts are transient per request.
type ContractRef struct {
	Symbol     string        `json:"symbol"`
	Kind       contract.Kind `json:"kind"`
	Strike     float64       `json:"strike"`
	Expiration time.Time     `json:"expiration"`
	DTE        int           `json:"dte"`
	Mid        float64       `json:"mid"`
	Delta      float64       `json:"delta"`
	IV         float64       `json:"iv"`
}

// Suggestion is one emitted trade idea, alert, or the explicit no-trade
// outcome. Reasons and Warnings are ordered and must never be stripped: they
// are the user-facing explanation trail.
type Suggestion struct {
	Kind     Kind         `json:"kind"`
	Contract *ContractRef `json:"contract,omitempty"`

	Breakdown          *scoring.Breakdown `json:"breakdown,omitempty"`
	Confidence         int                `json:"confidence,omitempty"`
	ConfidenceBucket   confidence.Bucket  `json:"confidenceBucket,omitempty"`
	CalibrationVersion string             `json:"calibrationVersion,omitempty"`
	RiskTier           RiskTier           `json:"riskTier,omitempty"`

	Reasons  []string `json:"reasons"`
	Warnings []string `json:"warnings,omitempty"`
}

func newRef(c contract.Contract) *ContractRef {
	return &ContractRef{
		Symbol:     c.Symbol,
		Kind:       c.Kind,
		Strike:     c.Strike,
		Expiration: c.Expiration,
		DTE:        c.DTE,
		Mid:        c.Mid,
		Delta:      c.Delta,
		IV:         c.IV,
	}
}
