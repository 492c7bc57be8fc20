package strategy

import (
	"fmt"

	"tradesim/internal/indicators"
)

// RSIStrategy buys oversold and sells overbought readings.
type RSIStrategy struct {
	Period     int
	Overbought float64
	Oversold   float64
}

func NewRSIStrategy(period int, overbought, oversold float64) *RSIStrategy {
	return &RSIStrategy{Period: period, Overbought: overbought, Oversold: oversold}
}

func (s *RSIStrategy) Name() string { return "rsi" }

func (s *RSIStrategy) Analyze(snap Snapshot) (Signal, error) {
	if s.Period <= 0 {
		return Signal{}, fmt.Errorf("rsi: bad period %d", s.Period)
	}
	if len(snap.Closes) < s.Period+1 {
		return hold(fmt.Sprintf("need %d closes, have %d", s.Period+1, len(snap.Closes))), nil
	}

	series := indicators.RSI(snap.Closes, s.Period)
	last := series[len(series)-1]
	values := map[string]float64{"rsi": last}

	switch {
	case last <= s.Oversold:
		return Signal{Action: ActionBuy, Reason: fmt.Sprintf("rsi %.1f below %.1f", last, s.Oversold), Values: values}, nil
	case last >= s.Overbought:
		return Signal{Action: ActionSell, Reason: fmt.Sprintf("rsi %.1f above %.1f", last, s.Overbought), Values: values}, nil
	}
	return Signal{Action: ActionHold, Reason: "rsi in neutral band", Values: values}, nil
}
