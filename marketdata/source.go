package marketdata

import (
	"context"
	"errors"

	"market-pulse/models"
)

// Source supplies the raw daily statistics for one index.
type Source interface {
	// Fetch returns the record for symbol on date (YYYY-MM-DD, empty
	// for the current day). Sources holding nothing for the date
	// return ErrNoData.
	Fetch(ctx context.Context, symbol, date string) (models.MarketRecord, error)

	// Name identifies the source on snapshots and metrics.
	Name() models.SnapshotSource
}

var (
	// ErrNoData indicates a source holds no record for the requested date.
	ErrNoData = errors.New("no market data for date")

	// ErrGatewayUnavailable indicates the terminal gateway could not be reached.
	ErrGatewayUnavailable = errors.New("terminal gateway unavailable")
)

// DefaultSymbol is the primary index tracked by the refresh loop.
const DefaultSymbol = "MASI"

// IndexTickers maps index symbols to terminal gateway tickers.
var IndexTickers = map[string]string{
	"MASI":  "MASI Index",
	"MADEX": "MADEX Index",
	"MSI20": "MSI20 Index",
	"CBI":   "CBI Index",
	"IAI":   "IAI Index",
}

// IndexNames maps index symbols to display names.
var IndexNames = map[string]string{
	"MASI":  "Moroccan All Shares Index",
	"MADEX": "Most Active Shares Index",
	"MSI20": "Morocco Stock Index 20",
	"CBI":   "Banks",
	"IAI":   "Insurance",
}

// Symbols returns the configured index symbols in display order.
func Symbols() []string {
	return []string{"MASI", "MADEX", "MSI20", "CBI", "IAI"}
}

// KnownSymbol reports whether symbol names a configured index.
func KnownSymbol(symbol string) bool {
	_, ok := IndexTickers[symbol]
	return ok
}
