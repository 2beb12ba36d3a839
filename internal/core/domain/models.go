package domain

import "time"

// RateQuote is one provider's yield figure after the protocol fee is applied.
type RateQuote struct {
	Provider  string    `json:"provider"`
	APR       float64   `json:"apr"`              // percent, fee-adjusted
	OK        bool      `json:"ok"`               // false when Error is set and no value is known
	Stale     bool      `json:"stale,omitempty"`  // served from the last-known-good snapshot
	Cached    bool      `json:"cached,omitempty"` // served from the rate cache
	Error     string    `json:"error,omitempty"`
	ErrorKind string    `json:"error_kind,omitempty"` // FetchErrorKind of the failure
	FetchedAt time.Time `json:"fetched_at"`
}

// RateSnapshot is the aggregated view of all configured providers.
type RateSnapshot struct {
	FeeMultiplier float64     `json:"fee_multiplier"`
	Quotes        []RateQuote `json:"quotes"`
	Partial       bool        `json:"partial"` // at least one provider failed
	GeneratedAt   time.Time   `json:"generated_at"`
}

// Quote returns the quote for provider, if present.
func (s *RateSnapshot) Quote(provider string) (RateQuote, bool) {
	for _, q := range s.Quotes {
		if q.Provider == provider {
			return q, true
		}
	}
	return RateQuote{}, false
}

// MinOutResult is the response for a slippage calculation.
type MinOutResult struct {
	Amount      string `json:"amount,omitempty"`
	SlippageBps uint64 `json:"slippage_bps"`
	Slippage    string `json:"slippage"`
	MinOut      string `json:"min_out"`
	Sentinel    bool   `json:"sentinel,omitempty"` // amount was undefined
}

// ConversionDirection selects which static token conversion to call.
type ConversionDirection string

const (
	ToDynamic ConversionDirection = "to_dynamic"
	ToStatic  ConversionDirection = "to_static"
)

// ConversionResult is the outcome of a static/dynamic amount conversion.
type ConversionResult struct {
	ChainID   uint64              `json:"chain_id"`
	Token     string              `json:"token"`
	Address   string              `json:"address"`
	Direction ConversionDirection `json:"direction"`
	AmountIn  string              `json:"amount_in"`
	AmountOut string              `json:"amount_out"`
}
