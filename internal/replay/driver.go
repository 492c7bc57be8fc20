package replay

import (
	"context"
	"fmt"
	"math"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"tradesim/internal/config"
	"tradesim/internal/execution"
	"tradesim/internal/marketdata"
	"tradesim/internal/metrics"
	"tradesim/internal/portfolio"
	"tradesim/internal/strategy"
)

// StepFunc is invoked once per bar. It may place orders through the engine;
// a returned error skips the bar and the run continues.
type StepFunc func(ctx context.Context, index int, market *HistoricalSource, engine *execution.Engine) error

// Driver replays a candle history against a fresh book. Each Run starts
// from index 0 with new state, so one Driver can back several runs.
type Driver struct {
	InitialBalance decimal.Decimal
	Slippage       decimal.Decimal
	FeeRate        decimal.Decimal
	Logger         *zap.Logger
}

// Result summarizes one completed run.
type Result struct {
	InitialBalance decimal.Decimal
	FinalBalance   decimal.Decimal
	TotalReturn    decimal.Decimal
	ReturnPct      float64
	ClosedTrades   int
	WinRate        float64
	AvgWin         decimal.Decimal
	AvgLoss        decimal.Decimal
	MaxWin         decimal.Decimal
	MaxLoss        decimal.Decimal
	Metrics        metrics.Report
	Trades         []portfolio.Trade
}

// Run walks the source from the first bar to the last, calling step at each
// bar and sweeping protective exits after it. Any positions still open after
// the last bar are closed at its price so the result reflects settled cash.
func (d *Driver) Run(ctx context.Context, source *HistoricalSource, step StepFunc) (Result, error) {
	if source == nil || source.Len() == 0 {
		return Result{}, fmt.Errorf("replay: empty source")
	}
	logger := d.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	book := portfolio.New(d.InitialBalance)
	engine := execution.New(source, book, d.Slippage, d.FeeRate, logger)

	steps := source.Len()
	for i := 0; i < steps; i++ {
		source.SetIndex(i)
		if err := step(ctx, i, source, engine); err != nil {
			logger.Warn("step failed, skipping bar", zap.Int("index", i), zap.Error(err))
			continue
		}
		if _, err := engine.CheckProtectiveExits(ctx); err != nil {
			logger.Debug("protective exit sweep failed", zap.Int("index", i), zap.Error(err))
		}
	}

	d.settle(ctx, book, engine, logger)
	return d.result(book), nil
}

// settle closes whatever is still open at the final bar's price.
func (d *Driver) settle(ctx context.Context, book *portfolio.Portfolio, engine *execution.Engine, logger *zap.Logger) {
	for _, pos := range book.OpenPositions() {
		if _, err := engine.Close(ctx, pos.ID, nil); err != nil {
			logger.Warn("could not settle open position", zap.String("id", pos.ID), zap.Error(err))
		}
	}
}

func (d *Driver) result(book *portfolio.Portfolio) Result {
	trades := book.ClosedTrades()
	stats := book.Stats()

	maxWin, maxLoss := decimal.Zero, decimal.Zero
	for _, t := range trades {
		if t.PnL.GreaterThan(maxWin) {
			maxWin = t.PnL
		}
		if t.PnL.LessThan(maxLoss) {
			maxLoss = t.PnL
		}
	}

	final := book.TotalBalance()
	total := final.Sub(d.InitialBalance)
	returnPct := 0.0
	if !d.InitialBalance.IsZero() {
		ratio, _ := total.Div(d.InitialBalance).Float64()
		returnPct = ratio * 100
	} else if total.IsPositive() {
		returnPct = math.Inf(1)
	}

	return Result{
		InitialBalance: d.InitialBalance,
		FinalBalance:   final,
		TotalReturn:    total,
		ReturnPct:      returnPct,
		ClosedTrades:   len(trades),
		WinRate:        stats.WinRate,
		AvgWin:         stats.AvgWin,
		AvgLoss:        stats.AvgLoss,
		MaxWin:         maxWin,
		MaxLoss:        maxLoss,
		Metrics:        metrics.Summarize(trades, d.InitialBalance),
		Trades:         trades,
	}
}

// StrategyStep adapts a signal strategy to a StepFunc: buy opens a single
// long with a percent stop when the book is flat, sell flattens everything.
func StrategyStep(s strategy.Strategy, cfg config.BacktestConfig) StepFunc {
	amount := decimal.NewFromFloat(cfg.Amount)
	stopPct := decimal.NewFromFloat(cfg.StopLossPct)

	return func(ctx context.Context, index int, market *HistoricalSource, engine *execution.Engine) error {
		candles, err := market.OHLCV(ctx, cfg.Symbol, cfg.Timeframe, cfg.Lookback)
		if err != nil {
			return err
		}
		snap := strategy.Snapshot{
			Symbol:  cfg.Symbol,
			Candles: candles,
			Closes:  marketdata.Closes(candles),
		}
		sig, err := s.Analyze(snap)
		if err != nil {
			return err
		}

		book := engine.Book()
		switch sig.Action {
		case strategy.ActionBuy:
			if book.OpenCount() > 0 {
				return nil
			}
			price := candles[len(candles)-1].Close
			stop := price.Mul(decimal.NewFromInt(1).Sub(stopPct))
			_, err := engine.Buy(ctx, execution.Order{
				Symbol:   cfg.Symbol,
				Amount:   amount,
				Price:    &price,
				StopLoss: &stop,
			})
			return err
		case strategy.ActionSell:
			for _, pos := range book.OpenPositions() {
				if _, err := engine.Close(ctx, pos.ID, nil); err != nil {
					return err
				}
			}
		}
		return nil
	}
}
