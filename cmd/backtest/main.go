package main

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"tradesim/internal/config"
	"tradesim/internal/db"
	"tradesim/internal/journal"
	"tradesim/internal/logger"
	"tradesim/internal/marketdata"
	"tradesim/internal/replay"
	"tradesim/internal/strategy"
)

func main() {
	cfgPath := os.Getenv("TS_CONFIG")
	if cfgPath == "" {
		cfgPath = "config/config.yaml"
	}

	envOnly := false
	if envOnlyRaw := os.Getenv("TS_ENV_ONLY"); envOnlyRaw != "" {
		envOnly = strings.EqualFold(envOnlyRaw, "true") || envOnlyRaw == "1"
	}

	cfg, err := config.Load(cfgPath, envOnly)
	if err != nil {
		panic(err)
	}

	logger, err := logger.New(cfg.Log)
	if err != nil {
		panic(err)
	}
	defer logger.Sync()

	strat, err := strategy.ForName(cfg.Backtest.Strategy, cfg.Backtest)
	if err != nil {
		logger.Fatal("strategy init failed", zap.Error(err))
	}

	candles := sampleCandles(cfg.Backtest)
	source := replay.NewHistoricalSource(map[string][]marketdata.Candle{
		cfg.Backtest.Symbol: candles,
	})

	driver := &replay.Driver{
		InitialBalance: decimal.NewFromFloat(cfg.Simulation.InitialBalance),
		Slippage:       decimal.NewFromFloat(cfg.Simulation.Slippage),
		FeeRate:        decimal.NewFromFloat(cfg.Simulation.Fee),
		Logger:         logger,
	}

	ctx := context.Background()
	logger.Info("running backtest",
		zap.String("symbol", cfg.Backtest.Symbol),
		zap.String("strategy", strat.Name()),
		zap.Int("candles", len(candles)),
	)

	result, err := driver.Run(ctx, source, replay.StrategyStep(strat, cfg.Backtest))
	if err != nil {
		logger.Fatal("backtest failed", zap.Error(err))
	}

	printResult(result)

	if cfg.DB.DSN != "" {
		if err := saveRun(ctx, cfg, strat.Name(), result); err != nil {
			logger.Warn("journal save failed", zap.Error(err))
		} else {
			logger.Info("run journaled")
		}
	}
}

// sampleCandles builds a deterministic hourly series around the base price,
// cycling through small up and down moves so crossovers actually occur.
func sampleCandles(cfg config.BacktestConfig) []marketdata.Candle {
	start := time.Now().Add(-time.Duration(cfg.Candles) * time.Hour).Truncate(time.Hour)
	out := make([]marketdata.Candle, 0, cfg.Candles)
	for i := 0; i < cfg.Candles; i++ {
		openP := cfg.BasePrice + float64(i%10)*100
		closeP := openP + float64(i%5-2)*100
		highP := openP
		if closeP > highP {
			highP = closeP
		}
		highP += 200
		lowP := openP
		if closeP < lowP {
			lowP = closeP
		}
		lowP -= 200

		out = append(out, marketdata.Candle{
			OpenTime: start.Add(time.Duration(i) * time.Hour),
			Open:     decimal.NewFromFloat(openP),
			High:     decimal.NewFromFloat(highP),
			Low:      decimal.NewFromFloat(lowP),
			Close:    decimal.NewFromFloat(closeP),
			Volume:   decimal.NewFromInt(int64(100 + i%50)),
		})
	}
	return out
}

func printResult(res replay.Result) {
	fmt.Println("==================================================")
	fmt.Println("BACKTEST RESULTS")
	fmt.Println("==================================================")
	fmt.Printf("Initial Balance:  %s\n", res.InitialBalance.StringFixed(2))
	fmt.Printf("Final Balance:    %s\n", res.FinalBalance.StringFixed(2))
	fmt.Printf("Total Return:     %s (%.2f%%)\n", res.TotalReturn.StringFixed(2), res.ReturnPct)
	fmt.Printf("Closed Trades:    %d\n", res.ClosedTrades)
	fmt.Printf("Win Rate:         %.2f%%\n", res.WinRate*100)
	fmt.Printf("Avg Win:          %s\n", res.AvgWin.StringFixed(2))
	fmt.Printf("Avg Loss:         %s\n", res.AvgLoss.StringFixed(2))
	fmt.Printf("Max Win:          %s\n", res.MaxWin.StringFixed(2))
	fmt.Printf("Max Loss:         %s\n", res.MaxLoss.StringFixed(2))
	fmt.Printf("Sharpe Ratio:     %.4f\n", res.Metrics.SharpeRatio)
	fmt.Printf("Sortino Ratio:    %.4f\n", res.Metrics.SortinoRatio)
	fmt.Printf("Max Drawdown:     %.2f%%\n", res.Metrics.MaxDrawdown*100)
	fmt.Printf("Profit Factor:    %.4f\n", res.Metrics.ProfitFactor)
	fmt.Printf("Calmar Ratio:     %.4f\n", res.Metrics.CalmarRatio)
	fmt.Printf("Recovery Factor:  %.4f\n", res.Metrics.RecoveryFactor)
	fmt.Println("==================================================")
}

func saveRun(ctx context.Context, cfg config.Config, strategyName string, res replay.Result) error {
	dbConn, err := db.Open(cfg.DB)
	if err != nil {
		return err
	}
	defer db.Close(dbConn)

	if err := db.AutoMigrate(dbConn); err != nil {
		return err
	}

	store := journal.New(dbConn.Gorm)
	_, err = store.SaveRun(ctx, cfg.Backtest.Symbol, strategyName, cfg.Backtest.Timeframe, res, cfg.Backtest)
	return err
}
