package strategy

import (
	"fmt"

	"tradesim/internal/indicators"
)

// SMACross buys when the fast moving average crosses above the slow one and
// sells on the opposite cross.
type SMACross struct {
	Fast int
	Slow int
}

func NewSMACross(fast, slow int) *SMACross {
	return &SMACross{Fast: fast, Slow: slow}
}

func (s *SMACross) Name() string { return "sma_cross" }

func (s *SMACross) Analyze(snap Snapshot) (Signal, error) {
	if s.Fast <= 0 || s.Slow <= s.Fast {
		return Signal{}, fmt.Errorf("sma_cross: bad periods fast=%d slow=%d", s.Fast, s.Slow)
	}
	if len(snap.Closes) < s.Slow+1 {
		return hold(fmt.Sprintf("need %d closes, have %d", s.Slow+1, len(snap.Closes))), nil
	}

	fast := indicators.SMA(snap.Closes, s.Fast)
	slow := indicators.SMA(snap.Closes, s.Slow)

	values := map[string]float64{
		"fast": fast[len(fast)-1],
		"slow": slow[len(slow)-1],
	}
	switch indicators.Crossover(fast, slow) {
	case 1:
		return Signal{Action: ActionBuy, Reason: "fast sma crossed above slow", Values: values}, nil
	case -1:
		return Signal{Action: ActionSell, Reason: "fast sma crossed below slow", Values: values}, nil
	}
	return Signal{Action: ActionHold, Reason: "no crossover", Values: values}, nil
}
