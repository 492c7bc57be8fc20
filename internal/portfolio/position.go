package portfolio

import (
	"time"

	"github.com/shopspring/decimal"
)

type Side string

const (
	SideLong  Side = "long"
	SideShort Side = "short"
)

// Position is an open exposure. Immutable once created; adjustments require
// close and reopen.
type Position struct {
	ID         string           `json:"id"`
	Symbol     string           `json:"symbol"`
	Side       Side             `json:"side"`
	Amount     decimal.Decimal  `json:"amount"`
	EntryPrice decimal.Decimal  `json:"entry_price"`
	EntryTime  time.Time        `json:"entry_time"`
	StopLoss   *decimal.Decimal `json:"stop_loss,omitempty"`
	TakeProfit *decimal.Decimal `json:"take_profit,omitempty"`
}

// Notional is amount x entry price.
func (p Position) Notional() decimal.Decimal {
	return p.Amount.Mul(p.EntryPrice)
}

// UnrealizedPnL marks the position against a current price.
func (p Position) UnrealizedPnL(current decimal.Decimal) decimal.Decimal {
	if p.Side == SideShort {
		return p.Amount.Mul(p.EntryPrice.Sub(current))
	}
	return p.Amount.Mul(current.Sub(p.EntryPrice))
}

// Trade is the settlement record produced when a position closes.
type Trade struct {
	ID         string          `json:"id"`
	Symbol     string          `json:"symbol"`
	Side       Side            `json:"side"`
	Amount     decimal.Decimal `json:"amount"`
	EntryPrice decimal.Decimal `json:"entry_price"`
	ExitPrice  decimal.Decimal `json:"exit_price"`
	EntryTime  time.Time       `json:"entry_time"`
	ExitTime   time.Time       `json:"exit_time"`
	PnL        decimal.Decimal `json:"pnl"`
	PnLPct     float64         `json:"pnl_percentage"`
}

// Duration is derived from the stored timestamps, never cached.
func (t Trade) Duration() time.Duration {
	return t.ExitTime.Sub(t.EntryTime)
}
