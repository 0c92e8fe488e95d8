package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// IndexQuote is one row of the market overview, built from the terminal
// gateway snapshot.
type IndexQuote struct {
	Symbol    string          `json:"symbol"`
	Name      string          `json:"name"`
	Last      decimal.Decimal `json:"last"`
	ChangePct decimal.Decimal `json:"change_pct"`
	Volume    int64           `json:"volume"`
	Timestamp time.Time       `json:"timestamp"`
}
