package schwab

import (
	"vega/internal/domain/contract"
)

// Wire shapes for the provider's REST responses. Decoded at the client
// boundary and immediately converted to domain types.

type quoteEnvelope struct {
	Quote quotePayload `json:"quote"`
}

type quotePayload struct {
	LastPrice   float64 `json:"lastPrice"`
	Mark        float64 `json:"mark"`
	BidPrice    float64 `json:"bidPrice"`
	AskPrice    float64 `json:"askPrice"`
	TotalVolume int64   `json:"totalVolume"`
}

type chainResponse struct {
	Symbol          string              `json:"symbol"`
	UnderlyingPrice float64             `json:"underlyingPrice"`
	CallExpDateMap  contract.ExpDateMap `json:"callExpDateMap"`
	PutExpDateMap   contract.ExpDateMap `json:"putExpDateMap"`
}

type historyResponse struct {
	Symbol  string   `json:"symbol"`
	Candles []candle `json:"candles"`
	Empty   bool     `json:"empty"`
}

type candle struct {
	Close    float64 `json:"close"`
	Datetime int64   `json:"datetime"`
}

type earningsResponse struct {
	Symbol           string `json:"symbol"`
	NextEarningsDate string `json:"nextEarningsDate"` // YYYY-MM-DD, empty when unknown
}

type newsResponse struct {
	Headlines []string `json:"headlines"`
}

type ratingsResponse struct {
	Buy  int `json:"buy"`
	Hold int `json:"hold"`
	Sell int `json:"sell"`
}
