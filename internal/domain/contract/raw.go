package contract

// RawContract is one loosely-typed contract cell as delivered by the market
// data provider. Unknown fields are dropped at decode time; missing fields
// default to zero and are resolved by the normalizer. Volatility arrives as a
// percentage and is converted to a fraction during normalization.
type RawContract struct {
	Symbol       string  `json:"symbol"`
	Bid          float64 `json:"bid"`
	Ask          float64 `json:"ask"`
	Last         float64 `json:"last"`
	Mark         float64 `json:"mark"`
	Delta        float64 `json:"delta"`
	Gamma        float64 `json:"gamma"`
	Theta        float64 `json:"theta"`
	Vega         float64 `json:"vega"`
	Volatility   float64 `json:"volatility"`
	TotalVolume  int64   `json:"totalVolume"`
	OpenInterest int64   `json:"openInterest"`
	Multiplier   float64 `json:"multiplier"`
	InTheMoney   bool    `json:"inTheMoney"`
}

// ExpDateMap mirrors the provider chain nesting: expiration key
// ("YYYY-MM-DD:dte") to strike key to contract cells. The front cell of each
// strike array is the live quote by provider convention.
type ExpDateMap map[string]map[string][]RawContract

// ChainSnapshot is the provider option chain for one underlying, still in its
// loosely-typed shape. Normalize converts it into []Contract; this type never
// travels past the normalization boundary.
type ChainSnapshot struct {
	Symbol          string
	UnderlyingPrice float64
	Calls           ExpDateMap
	Puts            ExpDateMap
}
