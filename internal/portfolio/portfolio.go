package portfolio

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var (
	ErrInsufficientFunds = errors.New("insufficient funds")
	ErrPositionNotFound  = errors.New("position not found")
)

// AuditEntry records one ledger mutation. The trail is an in-memory list,
// not a durable format.
type AuditEntry struct {
	Kind       string          `json:"kind"` // "open" or "close"
	At         time.Time       `json:"at"`
	PositionID string          `json:"position_id"`
	Symbol     string          `json:"symbol"`
	Side       Side            `json:"side"`
	Amount     decimal.Decimal `json:"amount"`
	Price      decimal.Decimal `json:"price"`
	PnL        decimal.Decimal `json:"pnl,omitempty"`
}

// Portfolio owns cash and the open/closed position sets. Mutated only by the
// execution engine on behalf of its caller.
type Portfolio struct {
	mu             sync.Mutex
	initialBalance decimal.Decimal
	cash           decimal.Decimal
	positions      map[string]Position
	closed         []Trade
	audit          []AuditEntry
}

func New(initialBalance decimal.Decimal) *Portfolio {
	return &Portfolio{
		initialBalance: initialBalance,
		cash:           initialBalance,
		positions:      make(map[string]Position),
	}
}

// OpenPosition debits cash by notional for longs (credits for shorts, which
// model proceeds received) and records the new position. A long whose cost
// exceeds available cash fails with ErrInsufficientFunds.
func (p *Portfolio) OpenPosition(symbol string, side Side, amount, entryPrice decimal.Decimal, stopLoss, takeProfit *decimal.Decimal) (Position, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	cost := amount.Mul(entryPrice)
	if side == SideLong && cost.GreaterThan(p.cash) {
		return Position{}, fmt.Errorf("%w: need %s, have %s", ErrInsufficientFunds, cost.StringFixed(2), p.cash.StringFixed(2))
	}

	pos := Position{
		ID:         uuid.NewString(),
		Symbol:     symbol,
		Side:       side,
		Amount:     amount,
		EntryPrice: entryPrice,
		EntryTime:  time.Now().UTC(),
		StopLoss:   stopLoss,
		TakeProfit: takeProfit,
	}

	if side == SideLong {
		p.cash = p.cash.Sub(cost)
	} else {
		p.cash = p.cash.Add(cost)
	}
	p.positions[pos.ID] = pos
	p.audit = append(p.audit, AuditEntry{
		Kind:       "open",
		At:         pos.EntryTime,
		PositionID: pos.ID,
		Symbol:     symbol,
		Side:       side,
		Amount:     amount,
		Price:      entryPrice,
	})
	return pos, nil
}

// ClosePosition settles the position at exitPrice, updates cash symmetrically
// to the open, appends the Trade and removes the position.
func (p *Portfolio) ClosePosition(id string, exitPrice decimal.Decimal) (Trade, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	pos, ok := p.positions[id]
	if !ok {
		return Trade{}, fmt.Errorf("%w: %s", ErrPositionNotFound, id)
	}
	exitTime := time.Now().UTC()

	var pnl decimal.Decimal
	if pos.Side == SideLong {
		pnl = pos.Amount.Mul(exitPrice.Sub(pos.EntryPrice))
		p.cash = p.cash.Add(pos.Amount.Mul(exitPrice))
	} else {
		pnl = pos.Amount.Mul(pos.EntryPrice.Sub(exitPrice))
		p.cash = p.cash.Sub(pos.Amount.Mul(exitPrice))
	}

	pnlPct := 0.0
	if notional := pos.Notional(); notional.IsPositive() {
		pnlPct = pnl.Div(notional).InexactFloat64() * 100
	}

	trade := Trade{
		ID:         pos.ID,
		Symbol:     pos.Symbol,
		Side:       pos.Side,
		Amount:     pos.Amount,
		EntryPrice: pos.EntryPrice,
		ExitPrice:  exitPrice,
		EntryTime:  pos.EntryTime,
		ExitTime:   exitTime,
		PnL:        pnl,
		PnLPct:     pnlPct,
	}

	p.closed = append(p.closed, trade)
	delete(p.positions, id)
	p.audit = append(p.audit, AuditEntry{
		Kind:       "close",
		At:         exitTime,
		PositionID: pos.ID,
		Symbol:     pos.Symbol,
		Side:       pos.Side,
		Amount:     pos.Amount,
		Price:      exitPrice,
		PnL:        pnl,
	})
	return trade, nil
}

func (p *Portfolio) InitialBalance() decimal.Decimal {
	return p.initialBalance
}

func (p *Portfolio) Cash() decimal.Decimal {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.cash
}

// TotalBalance is cash plus open notional at entry price. Unrealized
// mark-to-market is deliberately not included; see UnrealizedPnL.
func (p *Portfolio) TotalBalance() decimal.Decimal {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.totalBalanceLocked()
}

func (p *Portfolio) totalBalanceLocked() decimal.Decimal {
	total := p.cash
	for _, pos := range p.positions {
		total = total.Add(pos.Notional())
	}
	return total
}

// Equity is an alias for TotalBalance.
func (p *Portfolio) Equity() decimal.Decimal {
	return p.TotalBalance()
}

// RealizedPnL is the exact sum of closed-trade P&L.
func (p *Portfolio) RealizedPnL() decimal.Decimal {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.realizedLocked()
}

func (p *Portfolio) realizedLocked() decimal.Decimal {
	sum := decimal.Zero
	for _, t := range p.closed {
		sum = sum.Add(t.PnL)
	}
	return sum
}

// UnrealizedPnL marks every open position against the supplied prices.
// Positions without a mark contribute zero.
func (p *Portfolio) UnrealizedPnL(marks map[string]decimal.Decimal) decimal.Decimal {
	p.mu.Lock()
	defer p.mu.Unlock()
	sum := decimal.Zero
	for _, pos := range p.positions {
		if mark, ok := marks[pos.Symbol]; ok {
			sum = sum.Add(pos.UnrealizedPnL(mark))
		}
	}
	return sum
}

// TotalPnL is realized plus unrealized P&L against the supplied marks.
func (p *Portfolio) TotalPnL(marks map[string]decimal.Decimal) decimal.Decimal {
	return p.RealizedPnL().Add(p.UnrealizedPnL(marks))
}

func (p *Portfolio) Position(id string) (Position, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	pos, ok := p.positions[id]
	return pos, ok
}

func (p *Portfolio) OpenPositions() []Position {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]Position, 0, len(p.positions))
	for _, pos := range p.positions {
		out = append(out, pos)
	}
	return out
}

func (p *Portfolio) OpenCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.positions)
}

// ClosedTrades returns the settlement history in closing order.
func (p *Portfolio) ClosedTrades() []Trade {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]Trade, len(p.closed))
	copy(out, p.closed)
	return out
}

func (p *Portfolio) AuditTrail() []AuditEntry {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]AuditEntry, len(p.audit))
	copy(out, p.audit)
	return out
}

// Stats is the aggregate ledger view. Zero-P&L trades count as neither
// winning nor losing.
type Stats struct {
	InitialBalance decimal.Decimal `json:"initial_balance"`
	CurrentBalance decimal.Decimal `json:"current_balance"`
	Cash           decimal.Decimal `json:"cash"`
	RealizedPnL    decimal.Decimal `json:"realized_pnl"`
	PnLPct         float64         `json:"pnl_percentage"`
	OpenPositions  int             `json:"open_positions"`
	ClosedTrades   int             `json:"closed_trades"`
	WinningTrades  int             `json:"winning_trades"`
	LosingTrades   int             `json:"losing_trades"`
	WinRate        float64         `json:"win_rate"`
	AvgWin         decimal.Decimal `json:"avg_win"`
	AvgLoss        decimal.Decimal `json:"avg_loss"`
}

func (p *Portfolio) Stats() Stats {
	p.mu.Lock()
	defer p.mu.Unlock()

	var (
		wins, losses    int
		winSum, lossSum decimal.Decimal
		avgWin, avgLoss decimal.Decimal
		winRate, pnlPct float64
	)
	for _, t := range p.closed {
		switch {
		case t.PnL.IsPositive():
			wins++
			winSum = winSum.Add(t.PnL)
		case t.PnL.IsNegative():
			losses++
			lossSum = lossSum.Add(t.PnL)
		}
	}
	if wins > 0 {
		avgWin = winSum.Div(decimal.NewFromInt(int64(wins)))
	}
	if losses > 0 {
		avgLoss = lossSum.Div(decimal.NewFromInt(int64(losses)))
	}
	if len(p.closed) > 0 {
		winRate = float64(wins) / float64(len(p.closed))
	}
	realized := p.realizedLocked()
	if p.initialBalance.IsPositive() {
		pnlPct = realized.Div(p.initialBalance).InexactFloat64() * 100
	}

	return Stats{
		InitialBalance: p.initialBalance,
		CurrentBalance: p.totalBalanceLocked(),
		Cash:           p.cash,
		RealizedPnL:    realized,
		PnLPct:         pnlPct,
		OpenPositions:  len(p.positions),
		ClosedTrades:   len(p.closed),
		WinningTrades:  wins,
		LosingTrades:   losses,
		WinRate:        winRate,
		AvgWin:         avgWin,
		AvgLoss:        avgLoss,
	}
}
