// Package strategy defines the signal evaluators driving simulated trading.
// A strategy inspects a candle snapshot and emits a buy, sell, or hold
// decision; it never touches the book directly.
package strategy

import (
	"tradesim/internal/marketdata"
)

type Action string

const (
	ActionBuy  Action = "buy"
	ActionSell Action = "sell"
	ActionHold Action = "hold"
)

// Snapshot is the market state handed to a strategy for one evaluation.
// Candles are oldest first and Closes mirrors them as floats.
type Snapshot struct {
	Symbol  string
	Candles []marketdata.Candle
	Closes  []float64
}

// Signal is a single strategy decision. Values carries the indicator
// readings behind the decision for logging.
type Signal struct {
	Action Action
	Reason string
	Values map[string]float64
}

type Strategy interface {
	Name() string
	Analyze(snap Snapshot) (Signal, error)
}

func hold(reason string) Signal {
	return Signal{Action: ActionHold, Reason: reason}
}
