// Package metrics derives summary performance statistics from a closed-trade
// sequence and an initial balance. Every function is pure and guards its
// zero/empty inputs: undefined ratios come back as 0 or a signed infinity
// sentinel, never as an error.
package metrics

import (
	"math"

	"github.com/shopspring/decimal"

	"tradesim/internal/portfolio"
)

const tradingDaysPerYear = 252

// Report bundles every derived metric for a run.
type Report struct {
	SharpeRatio    float64 `json:"sharpe_ratio"`
	SortinoRatio   float64 `json:"sortino_ratio"`
	MaxDrawdown    float64 `json:"max_drawdown"`
	ProfitFactor   float64 `json:"profit_factor"`
	CalmarRatio    float64 `json:"calmar_ratio"`
	RecoveryFactor float64 `json:"recovery_factor"`
}

func Summarize(trades []portfolio.Trade, initialBalance decimal.Decimal) Report {
	return Report{
		SharpeRatio:    SharpeRatio(trades),
		SortinoRatio:   SortinoRatio(trades),
		MaxDrawdown:    MaxDrawdown(trades, initialBalance),
		ProfitFactor:   ProfitFactor(trades),
		CalmarRatio:    CalmarRatio(trades, initialBalance),
		RecoveryFactor: RecoveryFactor(trades, initialBalance),
	}
}

// SharpeRatio is mean(pnl)/stdev(pnl) annualized by sqrt(252), using sample
// standard deviation. 0 with fewer than two trades or zero deviation.
func SharpeRatio(trades []portfolio.Trade) float64 {
	returns := pnls(trades)
	if len(returns) < 2 {
		return 0
	}
	avg := mean(returns)
	sd := stdev(returns, avg)
	if sd == 0 {
		return 0
	}
	return avg / sd * math.Sqrt(tradingDaysPerYear)
}

// SortinoRatio shares Sharpe's numerator but divides by the RMS of negative
// returns only. +Inf when there is no downside and the mean return is
// positive, else 0.
func SortinoRatio(trades []portfolio.Trade) float64 {
	returns := pnls(trades)
	if len(returns) < 2 {
		return 0
	}
	avg := mean(returns)

	var sumSq float64
	var downs int
	for _, r := range returns {
		if r < 0 {
			sumSq += r * r
			downs++
		}
	}
	if downs == 0 {
		if avg > 0 {
			return math.Inf(1)
		}
		return 0
	}
	downside := math.Sqrt(sumSq / float64(downs))
	if downside == 0 {
		if avg > 0 {
			return math.Inf(1)
		}
		return 0
	}
	return avg / downside * math.Sqrt(tradingDaysPerYear)
}

// MaxDrawdown walks the cumulative balance in closing order and reports the
// largest peak-to-trough decline as a fraction of the peak.
func MaxDrawdown(trades []portfolio.Trade, initialBalance decimal.Decimal) float64 {
	if len(trades) == 0 {
		return 0
	}
	balance := initialBalance.InexactFloat64()
	peak := balance
	maxDD := 0.0
	for _, t := range trades {
		balance += t.PnL.InexactFloat64()
		if balance > peak {
			peak = balance
		}
		if peak > 0 {
			if dd := (peak - balance) / peak; dd > maxDD {
				maxDD = dd
			}
		}
	}
	return maxDD
}

// ProfitFactor is gross positive P&L over absolute gross negative P&L. +Inf
// when there are wins but no losses, 0 with no trades.
func ProfitFactor(trades []portfolio.Trade) float64 {
	if len(trades) == 0 {
		return 0
	}
	var grossWins, grossLosses float64
	for _, t := range trades {
		pnl := t.PnL.InexactFloat64()
		if pnl > 0 {
			grossWins += pnl
		} else if pnl < 0 {
			grossLosses += -pnl
		}
	}
	if grossLosses == 0 {
		if grossWins > 0 {
			return math.Inf(1)
		}
		return 0
	}
	return grossWins / grossLosses
}

// CalmarRatio is total return (relative to the initial balance) over max
// drawdown, with the usual sentinel rules.
func CalmarRatio(trades []portfolio.Trade, initialBalance decimal.Decimal) float64 {
	if len(trades) == 0 || !initialBalance.IsPositive() {
		return 0
	}
	totalReturn := sumPnL(trades) / initialBalance.InexactFloat64()
	maxDD := MaxDrawdown(trades, initialBalance)
	if maxDD == 0 {
		if totalReturn > 0 {
			return math.Inf(1)
		}
		return 0
	}
	return totalReturn / maxDD
}

// RecoveryFactor is absolute P&L over the max drawdown expressed in currency.
func RecoveryFactor(trades []portfolio.Trade, initialBalance decimal.Decimal) float64 {
	if len(trades) == 0 || !initialBalance.IsPositive() {
		return 0
	}
	total := sumPnL(trades)
	maxDD := MaxDrawdown(trades, initialBalance)
	if maxDD == 0 {
		if total > 0 {
			return math.Inf(1)
		}
		return 0
	}
	return total / (maxDD * initialBalance.InexactFloat64())
}

func pnls(trades []portfolio.Trade) []float64 {
	out := make([]float64, len(trades))
	for i, t := range trades {
		out[i] = t.PnL.InexactFloat64()
	}
	return out
}

func sumPnL(trades []portfolio.Trade) float64 {
	var sum float64
	for _, t := range trades {
		sum += t.PnL.InexactFloat64()
	}
	return sum
}

func mean(values []float64) float64 {
	var sum float64
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

func stdev(values []float64, avg float64) float64 {
	var sumSq float64
	for _, v := range values {
		d := v - avg
		sumSq += d * d
	}
	return math.Sqrt(sumSq / float64(len(values)-1))
}
