package strategy

import (
	"fmt"

	"tradesim/internal/indicators"
)

// MACDStrategy trades MACD line crossings of its signal line.
type MACDStrategy struct {
	Fast   int
	Slow   int
	Signal int
}

func NewMACDStrategy(fast, slow, signal int) *MACDStrategy {
	return &MACDStrategy{Fast: fast, Slow: slow, Signal: signal}
}

func (s *MACDStrategy) Name() string { return "macd" }

func (s *MACDStrategy) Analyze(snap Snapshot) (Signal, error) {
	if s.Fast <= 0 || s.Slow <= s.Fast || s.Signal <= 0 {
		return Signal{}, fmt.Errorf("macd: bad periods fast=%d slow=%d signal=%d", s.Fast, s.Slow, s.Signal)
	}
	need := s.Slow + s.Signal
	if len(snap.Closes) < need {
		return hold(fmt.Sprintf("need %d closes, have %d", need, len(snap.Closes))), nil
	}

	res := indicators.MACD(snap.Closes, s.Fast, s.Slow, s.Signal)
	if res == nil {
		return hold("macd series unavailable"), nil
	}

	n := len(res.MACD)
	values := map[string]float64{
		"macd":      res.MACD[n-1],
		"signal":    res.Signal[n-1],
		"histogram": res.Histogram[n-1],
	}
	switch indicators.Crossover(res.MACD, res.Signal) {
	case 1:
		return Signal{Action: ActionBuy, Reason: "macd crossed above signal", Values: values}, nil
	case -1:
		return Signal{Action: ActionSell, Reason: "macd crossed below signal", Values: values}, nil
	}
	return Signal{Action: ActionHold, Reason: "no macd crossover", Values: values}, nil
}
