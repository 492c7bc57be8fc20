package strategy

import (
	"fmt"

	"tradesim/internal/config"
)

// ForName builds the named strategy from backtest config.
func ForName(name string, cfg config.BacktestConfig) (Strategy, error) {
	switch name {
	case "sma_cross":
		return NewSMACross(cfg.FastPeriod, cfg.SlowPeriod), nil
	case "rsi":
		return NewRSIStrategy(cfg.RSIPeriod, cfg.Overbought, cfg.Oversold), nil
	case "macd":
		return NewMACDStrategy(cfg.FastPeriod, cfg.SlowPeriod, cfg.SignalPeriod), nil
	}
	return nil, fmt.Errorf("unknown strategy %q", name)
}
