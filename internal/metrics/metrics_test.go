package metrics

import (
	"math"
	"testing"

	"github.com/shopspring/decimal"

	"tradesim/internal/portfolio"
)

func trades(pnls ...float64) []portfolio.Trade {
	out := make([]portfolio.Trade, len(pnls))
	for i, p := range pnls {
		out[i] = portfolio.Trade{PnL: decimal.NewFromFloat(p)}
	}
	return out
}

func near(t *testing.T, got, want, tol float64, name string) {
	t.Helper()
	if math.Abs(got-want) > tol {
		t.Fatalf("%s=%v want=%v", name, got, want)
	}
}

func TestSharpeRatioGuards(t *testing.T) {
	if got := SharpeRatio(nil); got != 0 {
		t.Fatalf("sharpe=%v want=0 with no trades", got)
	}
	if got := SharpeRatio(trades(50)); got != 0 {
		t.Fatalf("sharpe=%v want=0 with one trade", got)
	}
	if got := SharpeRatio(trades(10, 10, 10)); got != 0 {
		t.Fatalf("sharpe=%v want=0 with zero deviation", got)
	}
}

func TestSharpeRatioKnownValue(t *testing.T) {
	// mean=15, sample stdev over {10,20} = sqrt(50).
	want := 15 / math.Sqrt(50) * math.Sqrt(252)
	near(t, SharpeRatio(trades(10, 20)), want, 1e-9, "sharpe")
}

func TestSortinoRatioSentinels(t *testing.T) {
	if got := SortinoRatio(trades(10, 20)); !math.IsInf(got, 1) {
		t.Fatalf("sortino=%v want=+Inf with no downside and positive mean", got)
	}
	if got := SortinoRatio(trades(0, 0)); got != 0 {
		t.Fatalf("sortino=%v want=0 with flat returns", got)
	}
	if got := SortinoRatio(trades(50)); got != 0 {
		t.Fatalf("sortino=%v want=0 with one trade", got)
	}
}

func TestSortinoRatioKnownValue(t *testing.T) {
	// mean of {30,-10} = 10; downside RMS = 10.
	want := 1.0 * math.Sqrt(252)
	near(t, SortinoRatio(trades(30, -10)), want, 1e-9, "sortino")
}

func TestMaxDrawdown(t *testing.T) {
	initial := decimal.NewFromInt(1000)

	if got := MaxDrawdown(nil, initial); got != 0 {
		t.Fatalf("dd=%v want=0 with no trades", got)
	}

	// 1000 -> 1200 (peak) -> 900 -> 1100: worst decline 300/1200.
	got := MaxDrawdown(trades(200, -300, 200), initial)
	near(t, got, 0.25, 1e-9, "max_drawdown")
}

func TestMaxDrawdownMonotonicGains(t *testing.T) {
	got := MaxDrawdown(trades(10, 20, 30), decimal.NewFromInt(1000))
	if got != 0 {
		t.Fatalf("dd=%v want=0 when balance only rises", got)
	}
}

func TestProfitFactor(t *testing.T) {
	if got := ProfitFactor(nil); got != 0 {
		t.Fatalf("pf=%v want=0 with no trades", got)
	}
	if got := ProfitFactor(trades(10, 20)); !math.IsInf(got, 1) {
		t.Fatalf("pf=%v want=+Inf with wins only", got)
	}
	near(t, ProfitFactor(trades(100, -50)), 2, 1e-9, "profit_factor")
}

func TestCalmarRatio(t *testing.T) {
	initial := decimal.NewFromInt(1000)

	if got := CalmarRatio(trades(10, 20), initial); !math.IsInf(got, 1) {
		t.Fatalf("calmar=%v want=+Inf without drawdown", got)
	}

	// Total return 100/1000 = 0.1, drawdown 0.25.
	got := CalmarRatio(trades(200, -300, 200), initial)
	near(t, got, 0.1/0.25, 1e-9, "calmar")
}

func TestRecoveryFactor(t *testing.T) {
	initial := decimal.NewFromInt(1000)

	// Absolute P&L 100 over drawdown of 250 currency units.
	got := RecoveryFactor(trades(200, -300, 200), initial)
	near(t, got, 100.0/250.0, 1e-9, "recovery")

	// All-loss sequence divides a negative total by its own drawdown.
	got = RecoveryFactor(trades(-10, -20), initial)
	near(t, got, -1, 1e-9, "recovery")
}

func TestSummarizeEmpty(t *testing.T) {
	rep := Summarize(nil, decimal.NewFromInt(1000))
	if rep != (Report{}) {
		t.Fatalf("report=%+v want zero value", rep)
	}
}
