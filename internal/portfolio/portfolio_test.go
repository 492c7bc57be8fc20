package portfolio

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"
)

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

func TestOpenPosition_InsufficientFunds(t *testing.T) {
	p := New(dec("1000"))

	_, err := p.OpenPosition("BTC/USDT", SideLong, dec("0.1"), dec("40000"), nil, nil)
	if !errors.Is(err, ErrInsufficientFunds) {
		t.Fatalf("err=%v want ErrInsufficientFunds", err)
	}
	if got := p.Cash(); !got.Equal(dec("1000")) {
		t.Fatalf("cash=%v want=1000", got)
	}
	if p.OpenCount() != 0 {
		t.Fatalf("open=%d want=0", p.OpenCount())
	}
}

func TestOpenCloseLong_Scenario(t *testing.T) {
	p := New(dec("1000"))

	pos, err := p.OpenPosition("BTC/USDT", SideLong, dec("0.01"), dec("40000"), nil, nil)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if got := p.Cash(); !got.Equal(dec("600")) {
		t.Fatalf("cash=%v want=600", got)
	}
	if got := p.TotalBalance(); !got.Equal(dec("1000")) {
		t.Fatalf("total=%v want=1000", got)
	}

	trade, err := p.ClosePosition(pos.ID, dec("45000"))
	if err != nil {
		t.Fatalf("close: %v", err)
	}
	if !trade.PnL.Equal(dec("50")) {
		t.Fatalf("pnl=%v want=50", trade.PnL)
	}
	if got := p.Cash(); !got.Equal(dec("1050")) {
		t.Fatalf("cash=%v want=1050", got)
	}
	wantPct := 50.0 / 400.0 * 100
	if trade.PnLPct != wantPct {
		t.Fatalf("pnl_pct=%v want=%v", trade.PnLPct, wantPct)
	}
}

func TestRoundTripSamePriceRestoresCash(t *testing.T) {
	p := New(dec("1000"))

	pos, err := p.OpenPosition("ETH/USDT", SideLong, dec("0.2"), dec("2500"), nil, nil)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	trade, err := p.ClosePosition(pos.ID, dec("2500"))
	if err != nil {
		t.Fatalf("close: %v", err)
	}
	if !trade.PnL.IsZero() {
		t.Fatalf("pnl=%v want=0", trade.PnL)
	}
	if got := p.Cash(); !got.Equal(dec("1000")) {
		t.Fatalf("cash=%v want=1000", got)
	}
}

func TestShortPnLAndCashFlow(t *testing.T) {
	p := New(dec("1000"))

	pos, err := p.OpenPosition("BTC/USDT", SideShort, dec("0.01"), dec("40000"), nil, nil)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	// Short credits proceeds up front.
	if got := p.Cash(); !got.Equal(dec("1400")) {
		t.Fatalf("cash=%v want=1400", got)
	}

	trade, err := p.ClosePosition(pos.ID, dec("38000"))
	if err != nil {
		t.Fatalf("close: %v", err)
	}
	if !trade.PnL.Equal(dec("20")) {
		t.Fatalf("pnl=%v want=20", trade.PnL)
	}
	if got := p.Cash(); !got.Equal(dec("1020")) {
		t.Fatalf("cash=%v want=1020", got)
	}
}

func TestClosePosition_Unknown(t *testing.T) {
	p := New(dec("1000"))
	if _, err := p.ClosePosition("nope", dec("100")); !errors.Is(err, ErrPositionNotFound) {
		t.Fatalf("err=%v want ErrPositionNotFound", err)
	}
}

func TestPositionIDsUnique(t *testing.T) {
	p := New(dec("100000"))
	seen := map[string]bool{}
	for i := 0; i < 20; i++ {
		pos, err := p.OpenPosition("BTC/USDT", SideLong, dec("0.001"), dec("40000"), nil, nil)
		if err != nil {
			t.Fatalf("open %d: %v", i, err)
		}
		if seen[pos.ID] {
			t.Fatalf("duplicate id %s", pos.ID)
		}
		seen[pos.ID] = true
		if _, err := p.ClosePosition(pos.ID, dec("40000")); err != nil {
			t.Fatalf("close %d: %v", i, err)
		}
	}
}

func TestStats(t *testing.T) {
	p := New(dec("1000"))

	open := func(amount, price string) Position {
		t.Helper()
		pos, err := p.OpenPosition("BTC/USDT", SideLong, dec(amount), dec(price), nil, nil)
		if err != nil {
			t.Fatalf("open: %v", err)
		}
		return pos
	}

	a := open("0.01", "40000")
	if _, err := p.ClosePosition(a.ID, dec("45000")); err != nil {
		t.Fatalf("close: %v", err)
	}
	b := open("0.01", "40000")
	if _, err := p.ClosePosition(b.ID, dec("39000")); err != nil {
		t.Fatalf("close: %v", err)
	}
	c := open("0.01", "40000")
	if _, err := p.ClosePosition(c.ID, dec("40000")); err != nil {
		t.Fatalf("close: %v", err)
	}

	stats := p.Stats()
	if stats.ClosedTrades != 3 {
		t.Fatalf("closed=%d want=3", stats.ClosedTrades)
	}
	if stats.WinningTrades != 1 || stats.LosingTrades != 1 {
		t.Fatalf("wins=%d losses=%d want 1/1 (flat trade counts as neither)", stats.WinningTrades, stats.LosingTrades)
	}
	if want := 1.0 / 3.0; stats.WinRate != want {
		t.Fatalf("win_rate=%v want=%v", stats.WinRate, want)
	}
	if !stats.AvgWin.Equal(dec("50")) {
		t.Fatalf("avg_win=%v want=50", stats.AvgWin)
	}
	if !stats.AvgLoss.Equal(dec("-10")) {
		t.Fatalf("avg_loss=%v want=-10", stats.AvgLoss)
	}
}

func TestStatsEmpty(t *testing.T) {
	p := New(dec("1000"))
	stats := p.Stats()
	if stats.WinRate != 0 {
		t.Fatalf("win_rate=%v want=0", stats.WinRate)
	}
	if !stats.AvgWin.IsZero() || !stats.AvgLoss.IsZero() {
		t.Fatalf("avg_win=%v avg_loss=%v want zeros", stats.AvgWin, stats.AvgLoss)
	}
}

func TestUnrealizedPnLUsesMarks(t *testing.T) {
	p := New(dec("1000"))
	if _, err := p.OpenPosition("BTC/USDT", SideLong, dec("0.01"), dec("40000"), nil, nil); err != nil {
		t.Fatalf("open: %v", err)
	}

	marks := map[string]decimal.Decimal{"BTC/USDT": dec("42000")}
	if got := p.UnrealizedPnL(marks); !got.Equal(dec("20")) {
		t.Fatalf("unrealized=%v want=20", got)
	}
	// Total balance intentionally values open positions at entry.
	if got := p.TotalBalance(); !got.Equal(dec("1000")) {
		t.Fatalf("total=%v want=1000", got)
	}
	if got := p.TotalPnL(marks); !got.Equal(dec("20")) {
		t.Fatalf("total_pnl=%v want=20", got)
	}
}

func TestAuditTrail(t *testing.T) {
	p := New(dec("1000"))
	pos, err := p.OpenPosition("BTC/USDT", SideLong, dec("0.01"), dec("40000"), nil, nil)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if _, err := p.ClosePosition(pos.ID, dec("41000")); err != nil {
		t.Fatalf("close: %v", err)
	}

	trail := p.AuditTrail()
	if len(trail) != 2 {
		t.Fatalf("entries=%d want=2", len(trail))
	}
	if trail[0].Kind != "open" || trail[1].Kind != "close" {
		t.Fatalf("kinds=%s,%s want open,close", trail[0].Kind, trail[1].Kind)
	}
	if trail[0].PositionID != pos.ID {
		t.Fatalf("position_id=%s want=%s", trail[0].PositionID, pos.ID)
	}
}
