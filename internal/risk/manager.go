package risk

import (
	"fmt"
	"sync"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"tradesim/internal/config"
	"tradesim/internal/portfolio"
)

// Manager gates proposed trades against drawdown and capital constraints and
// sizes positions from the account risk fraction.
type Manager struct {
	Config config.RiskConfig
	Book   *portfolio.Portfolio
	Logger *zap.Logger

	mu          sync.Mutex
	peakBalance decimal.Decimal
}

func New(cfg config.RiskConfig, book *portfolio.Portfolio, logger *zap.Logger) *Manager {
	return &Manager{
		Config:      cfg,
		Book:        book,
		Logger:      logger,
		peakBalance: book.InitialBalance(),
	}
}

// PositionSize derives an amount from the configured risk fraction and the
// stop distance. A zero distance means undefined risk: sizing is refused with
// a zero amount rather than dividing by zero.
func (m *Manager) PositionSize(entryPrice, stopPrice decimal.Decimal) decimal.Decimal {
	dist := entryPrice.Sub(stopPrice).Abs()
	if dist.IsZero() {
		return decimal.Zero
	}
	riskAmount := m.Book.TotalBalance().Mul(decimal.NewFromFloat(m.Config.RiskPerTrade))
	return riskAmount.Div(dist)
}

// CurrentDrawdown is the fraction of the peak balance lost, floored at zero.
// The peak is a high-water mark updated explicitly via UpdatePeakBalance,
// not on every read.
func (m *Manager) CurrentDrawdown() float64 {
	m.mu.Lock()
	peak := m.peakBalance
	m.mu.Unlock()
	if !peak.IsPositive() {
		return 0
	}
	dd := peak.Sub(m.Book.Equity()).Div(peak).InexactFloat64()
	if dd < 0 {
		return 0
	}
	return dd
}

// UpdatePeakBalance raises the high-water mark when equity made a new high.
// Callers must invoke it after each equity change before relying on drawdown
// for gating.
func (m *Manager) UpdatePeakBalance() {
	equity := m.Book.Equity()
	m.mu.Lock()
	defer m.mu.Unlock()
	if equity.GreaterThan(m.peakBalance) {
		m.peakBalance = equity
	}
}

func (m *Manager) PeakBalance() decimal.Decimal {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.peakBalance
}

// Assessment is the result of validating a proposed trade. Issues accumulate;
// validation never short-circuits.
type Assessment struct {
	Valid           bool            `json:"valid"`
	Issues          []string        `json:"issues"`
	PositionSize    decimal.Decimal `json:"position_size"`
	TradeCost       decimal.Decimal `json:"trade_cost"`
	CurrentDrawdown float64         `json:"current_drawdown"`
	RiskAmount      decimal.Decimal `json:"risk_amount"`
}

func (m *Manager) Validate(entryPrice, stopPrice, amount decimal.Decimal) Assessment {
	var issues []string

	dd := m.CurrentDrawdown()
	if dd >= m.Config.MaxDrawdown {
		issues = append(issues, fmt.Sprintf("maximum drawdown reached: %.2f%%", dd*100))
	}

	if entryPrice.Equal(stopPrice) {
		issues = append(issues, "stop loss cannot equal entry price")
	}

	cost := amount.Mul(entryPrice)
	cash := m.Book.Cash()
	if cost.GreaterThan(cash) {
		issues = append(issues, fmt.Sprintf("insufficient capital: need %s, have %s", cost.StringFixed(2), cash.StringFixed(2)))
	}

	dist := entryPrice.Sub(stopPrice).Abs()
	if dist.IsPositive() && entryPrice.IsPositive() {
		riskPerUnit := dist.Div(entryPrice).InexactFloat64()
		if riskPerUnit > 0.1 {
			issues = append(issues, fmt.Sprintf("high risk per trade: %.2f%%", riskPerUnit*100))
		}
	}

	if m.Logger != nil && len(issues) > 0 {
		m.Logger.Debug("trade validation failed",
			zap.String("entry_price", entryPrice.String()),
			zap.String("stop_price", stopPrice.String()),
			zap.Strings("issues", issues),
		)
	}

	return Assessment{
		Valid:           len(issues) == 0,
		Issues:          issues,
		PositionSize:    amount,
		TradeCost:       cost,
		CurrentDrawdown: dd,
		RiskAmount:      m.Book.TotalBalance().Mul(decimal.NewFromFloat(m.Config.RiskPerTrade)),
	}
}

// KellyFraction is the half-Kelly sizing fraction derived from historical
// win rate and average win/loss, clamped to [0, 0.25]. Returns 0 when there
// is no loss history to divide by.
func KellyFraction(winRate, avgWin, avgLoss float64) float64 {
	if avgLoss == 0 {
		return 0
	}
	winRatio := avgWin / abs(avgLoss)
	if winRatio == 0 {
		return 0
	}
	kelly := (winRate*winRatio - (1 - winRate)) / winRatio
	half := kelly / 2
	if half < 0 {
		return 0
	}
	if half > 0.25 {
		return 0.25
	}
	return half
}

// Metrics is a point-in-time risk report.
type Metrics struct {
	CurrentDrawdown  float64         `json:"current_drawdown"`
	MaxDrawdownLimit float64         `json:"max_drawdown_limit"`
	PeakBalance      decimal.Decimal `json:"peak_balance"`
	CurrentBalance   decimal.Decimal `json:"current_balance"`
	RiskPerTrade     float64         `json:"risk_per_trade"`
	CapitalAtRisk    decimal.Decimal `json:"capital_at_risk"`
	WinRate          float64         `json:"win_rate"`
	KellyFraction    float64         `json:"kelly_fraction"`
	OpenPositions    int             `json:"open_positions"`
}

func (m *Manager) Metrics() Metrics {
	stats := m.Book.Stats()
	return Metrics{
		CurrentDrawdown:  m.CurrentDrawdown(),
		MaxDrawdownLimit: m.Config.MaxDrawdown,
		PeakBalance:      m.PeakBalance(),
		CurrentBalance:   stats.CurrentBalance,
		RiskPerTrade:     m.Config.RiskPerTrade,
		CapitalAtRisk:    m.Book.TotalBalance().Mul(decimal.NewFromFloat(m.Config.RiskPerTrade)),
		WinRate:          stats.WinRate,
		KellyFraction:    KellyFraction(stats.WinRate, stats.AvgWin.InexactFloat64(), stats.AvgLoss.InexactFloat64()),
		OpenPositions:    stats.OpenPositions,
	}
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
