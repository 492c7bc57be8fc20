package execution

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"tradesim/internal/marketdata"
	"tradesim/internal/portfolio"
)

var one = decimal.NewFromInt(1)

// Order is a trading intent. Price is the reference price; when nil the
// engine fetches one from the market-data source.
type Order struct {
	Symbol     string
	Amount     decimal.Decimal
	Price      *decimal.Decimal
	StopLoss   *decimal.Decimal
	TakeProfit *decimal.Decimal
}

// Engine turns intents into fills against the ledger. The fill price models
// slippage, and the fee is folded into the effective price rather than
// deducted from cash separately.
type Engine struct {
	market   marketdata.Source
	book     *portfolio.Portfolio
	slippage decimal.Decimal
	feeRate  decimal.Decimal
	logger   *zap.Logger
}

func New(market marketdata.Source, book *portfolio.Portfolio, slippage, feeRate decimal.Decimal, logger *zap.Logger) *Engine {
	return &Engine{
		market:   market,
		book:     book,
		slippage: slippage,
		feeRate:  feeRate,
		logger:   logger,
	}
}

func (e *Engine) Book() *portfolio.Portfolio {
	return e.book
}

// CurrentPrice fetches the last traded price for a symbol. Transport errors
// propagate to the caller.
func (e *Engine) CurrentPrice(ctx context.Context, symbol string) (decimal.Decimal, error) {
	ticker, err := e.market.Ticker(ctx, symbol)
	if err != nil {
		return decimal.Zero, fmt.Errorf("fetch ticker %s: %w", symbol, err)
	}
	return ticker.Last, nil
}

// Buy opens a long position. The fill is reference x (1 + slippage) with the
// fee folded in by addition.
func (e *Engine) Buy(ctx context.Context, ord Order) (portfolio.Position, error) {
	ref, err := e.referencePrice(ctx, ord)
	if err != nil {
		return portfolio.Position{}, err
	}
	fill := e.foldFee(ref.Mul(one.Add(e.slippage)), ord.Amount, false)

	pos, err := e.book.OpenPosition(ord.Symbol, portfolio.SideLong, ord.Amount, fill, ord.StopLoss, ord.TakeProfit)
	if err != nil {
		return portfolio.Position{}, err
	}
	if e.logger != nil {
		e.logger.Info("buy filled",
			zap.String("position_id", pos.ID),
			zap.String("symbol", ord.Symbol),
			zap.String("amount", ord.Amount.String()),
			zap.String("fill_price", fill.StringFixed(2)),
		)
	}
	return pos, nil
}

// Sell opens a short position, the mirror of Buy: reference x (1 - slippage)
// with the fee folded in by subtraction.
func (e *Engine) Sell(ctx context.Context, ord Order) (portfolio.Position, error) {
	ref, err := e.referencePrice(ctx, ord)
	if err != nil {
		return portfolio.Position{}, err
	}
	fill := e.foldFee(ref.Mul(one.Sub(e.slippage)), ord.Amount, true)

	pos, err := e.book.OpenPosition(ord.Symbol, portfolio.SideShort, ord.Amount, fill, ord.StopLoss, ord.TakeProfit)
	if err != nil {
		return portfolio.Position{}, err
	}
	if e.logger != nil {
		e.logger.Info("sell filled",
			zap.String("position_id", pos.ID),
			zap.String("symbol", ord.Symbol),
			zap.String("amount", ord.Amount.String()),
			zap.String("fill_price", fill.StringFixed(2)),
		)
	}
	return pos, nil
}

// Close settles a position. Slippage works against the exit side and the fee
// always erodes the realized result: long closes subtract the folded fee,
// short closes add it.
func (e *Engine) Close(ctx context.Context, positionID string, price *decimal.Decimal) (portfolio.Trade, error) {
	pos, ok := e.book.Position(positionID)
	if !ok {
		return portfolio.Trade{}, fmt.Errorf("%w: %s", portfolio.ErrPositionNotFound, positionID)
	}

	ref, err := e.referencePrice(ctx, Order{Symbol: pos.Symbol, Price: price})
	if err != nil {
		return portfolio.Trade{}, err
	}

	var fill decimal.Decimal
	if pos.Side == portfolio.SideLong {
		fill = e.foldFee(ref.Mul(one.Sub(e.slippage)), pos.Amount, true)
	} else {
		fill = e.foldFee(ref.Mul(one.Add(e.slippage)), pos.Amount, false)
	}

	trade, err := e.book.ClosePosition(positionID, fill)
	if err != nil {
		return portfolio.Trade{}, err
	}
	if e.logger != nil {
		e.logger.Info("position closed",
			zap.String("position_id", trade.ID),
			zap.String("symbol", trade.Symbol),
			zap.String("pnl", trade.PnL.StringFixed(2)),
			zap.Float64("pnl_pct", trade.PnLPct),
		)
	}
	return trade, nil
}

type exitTrigger struct {
	positionID string
	price      decimal.Decimal
	reason     string
}

// CheckProtectiveExits scans every open position and closes those whose
// stop-loss or take-profit triggers against the current price. Stop-loss is
// checked first; when both would trigger, stop-loss wins. Triggered closures
// are collected during the scan and executed afterwards so closing never
// perturbs the iteration.
func (e *Engine) CheckProtectiveExits(ctx context.Context) ([]portfolio.Trade, error) {
	var triggered []exitTrigger
	for _, pos := range e.book.OpenPositions() {
		current, err := e.CurrentPrice(ctx, pos.Symbol)
		if err != nil {
			return nil, err
		}
		if trig, ok := protectiveExit(pos, current); ok {
			triggered = append(triggered, trig)
		}
	}

	var closed []portfolio.Trade
	for _, trig := range triggered {
		if e.logger != nil {
			e.logger.Info("protective exit triggered",
				zap.String("position_id", trig.positionID),
				zap.String("reason", trig.reason),
				zap.String("price", trig.price.String()),
			)
		}
		price := trig.price
		trade, err := e.Close(ctx, trig.positionID, &price)
		if err != nil {
			return closed, err
		}
		closed = append(closed, trade)
	}
	return closed, nil
}

func protectiveExit(pos portfolio.Position, current decimal.Decimal) (exitTrigger, bool) {
	long := pos.Side == portfolio.SideLong
	if pos.StopLoss != nil {
		if (long && current.LessThanOrEqual(*pos.StopLoss)) ||
			(!long && current.GreaterThanOrEqual(*pos.StopLoss)) {
			return exitTrigger{positionID: pos.ID, price: *pos.StopLoss, reason: "stop_loss"}, true
		}
	}
	if pos.TakeProfit != nil {
		if (long && current.GreaterThanOrEqual(*pos.TakeProfit)) ||
			(!long && current.LessThanOrEqual(*pos.TakeProfit)) {
			return exitTrigger{positionID: pos.ID, price: *pos.TakeProfit, reason: "take_profit"}, true
		}
	}
	return exitTrigger{}, false
}

func (e *Engine) referencePrice(ctx context.Context, ord Order) (decimal.Decimal, error) {
	if ord.Price != nil {
		return *ord.Price, nil
	}
	return e.CurrentPrice(ctx, ord.Symbol)
}

// foldFee inflates (or deflates, for sells and long closes) the fill price by
// fee_amount / amount where fee_amount = fill x amount x fee rate.
func (e *Engine) foldFee(fill, amount decimal.Decimal, subtract bool) decimal.Decimal {
	if !amount.IsPositive() {
		return fill
	}
	fee := fill.Mul(amount).Mul(e.feeRate)
	if subtract {
		return fill.Sub(fee.Div(amount))
	}
	return fill.Add(fee.Div(amount))
}
