package journal

import (
	"context"
	"encoding/json"
	"math"

	"gorm.io/datatypes"
	"gorm.io/gorm"

	"tradesim/internal/replay"
)

type Store struct {
	db *gorm.DB
}

func New(db *gorm.DB) *Store {
	return &Store{db: db}
}

// SaveRun writes the run header and its trades in one transaction and
// returns the run id.
func (s *Store) SaveRun(ctx context.Context, symbol, strategyName, timeframe string, res replay.Result, params any) (uint64, error) {
	if s == nil || s.db == nil {
		return 0, nil
	}

	var raw datatypes.JSON
	if params != nil {
		b, err := json.Marshal(params)
		if err != nil {
			return 0, err
		}
		raw = datatypes.JSON(b)
	}

	run := RunRecord{
		Symbol:         symbol,
		StrategyName:   strategyName,
		Timeframe:      timeframe,
		InitialBalance: res.InitialBalance,
		FinalBalance:   res.FinalBalance,
		TotalReturn:    res.TotalReturn,
		ReturnPct:      res.ReturnPct,
		ClosedTrades:   res.ClosedTrades,
		WinRate:        res.WinRate,
		SharpeRatio:    finiteOrNil(res.Metrics.SharpeRatio),
		SortinoRatio:   finiteOrNil(res.Metrics.SortinoRatio),
		MaxDrawdown:    finiteOrNil(res.Metrics.MaxDrawdown),
		ProfitFactor:   finiteOrNil(res.Metrics.ProfitFactor),
		CalmarRatio:    finiteOrNil(res.Metrics.CalmarRatio),
		RecoveryFactor: finiteOrNil(res.Metrics.RecoveryFactor),
		Params:         raw,
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&run).Error; err != nil {
			return err
		}
		for _, t := range res.Trades {
			rec := TradeRecord{
				RunID:      run.ID,
				TradeID:    t.ID,
				Symbol:     t.Symbol,
				Side:       string(t.Side),
				Amount:     t.Amount,
				EntryPrice: t.EntryPrice,
				ExitPrice:  t.ExitPrice,
				PnL:        t.PnL,
				PnLPct:     t.PnLPct,
				EntryTime:  t.EntryTime,
				ExitTime:   t.ExitTime,
			}
			if err := tx.Create(&rec).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return run.ID, nil
}

// finiteOrNil maps infinite or NaN ratios to NULL so postgres accepts them.
func finiteOrNil(v float64) *float64 {
	if math.IsInf(v, 0) || math.IsNaN(v) {
		return nil
	}
	return &v
}
