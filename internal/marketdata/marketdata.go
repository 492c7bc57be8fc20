package marketdata

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// Ticker is a point-in-time quote for a symbol.
type Ticker struct {
	Symbol    string          `json:"symbol"`
	Last      decimal.Decimal `json:"last"`
	Bid       decimal.Decimal `json:"bid"`
	Ask       decimal.Decimal `json:"ask"`
	High      decimal.Decimal `json:"high"`
	Low       decimal.Decimal `json:"low"`
	Volume    decimal.Decimal `json:"volume"`
	Timestamp time.Time       `json:"timestamp"`
}

// Candle is one OHLCV bar.
type Candle struct {
	OpenTime time.Time       `json:"open_time"`
	Open     decimal.Decimal `json:"open"`
	High     decimal.Decimal `json:"high"`
	Low      decimal.Decimal `json:"low"`
	Close    decimal.Decimal `json:"close"`
	Volume   decimal.Decimal `json:"volume"`
}

// Source is the market-data collaborator contract. Concrete implementations
// (exchange clients, historical replays, simulated feeds) satisfy it; the
// engine never holds a concrete type.
type Source interface {
	Ticker(ctx context.Context, symbol string) (Ticker, error)
	// OHLCV returns up to limit bars for the symbol, oldest first.
	OHLCV(ctx context.Context, symbol string, timeframe string, limit int) ([]Candle, error)
}

// Closes extracts the close series as float64, oldest first.
func Closes(candles []Candle) []float64 {
	out := make([]float64, len(candles))
	for i, c := range candles {
		out[i] = c.Close.InexactFloat64()
	}
	return out
}
