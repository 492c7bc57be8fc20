package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"tradesim/internal/config"
	cronrunner "tradesim/internal/cron"
	"tradesim/internal/db"
	"tradesim/internal/execution"
	"tradesim/internal/handler"
	"tradesim/internal/logger"
	"tradesim/internal/marketdata"
	"tradesim/internal/portfolio"
	"tradesim/internal/risk"
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

	var dbConn *db.DB
	if cfg.DB.DSN != "" {
		dbConn, err = db.Open(cfg.DB)
		if err != nil {
			logger.Fatal("db open failed", zap.Error(err))
		}
		defer db.Close(dbConn)

		if err := db.SetTimezone(dbConn, cfg.DB.Timezone); err != nil {
			logger.Warn("failed to set timezone", zap.Error(err))
		}
		if err := db.AutoMigrate(dbConn); err != nil {
			logger.Fatal("auto-migrate failed", zap.Error(err))
		}
	}

	market := marketdata.NewRandomWalkSource(
		map[string]float64{cfg.Paper.Symbol: cfg.Paper.BasePrice},
		cfg.Paper.StepPct,
		time.Minute,
		cfg.Paper.Seed,
	)
	book := portfolio.New(decimal.NewFromFloat(cfg.Simulation.InitialBalance))
	engine := execution.New(
		market,
		book,
		decimal.NewFromFloat(cfg.Simulation.Slippage),
		decimal.NewFromFloat(cfg.Simulation.Fee),
		logger,
	)
	riskMgr := risk.New(cfg.Risk, book, logger)
	strat := strategy.NewSMACross(cfg.Backtest.FastPeriod, cfg.Backtest.SlowPeriod)

	if strings.EqualFold(cfg.App.Env, "dev") {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Recovery())

	healthHandler := &handler.HealthHandler{DB: dbConn}
	healthHandler.Register(router)
	statusHandler := &handler.StatusHandler{Book: book, Risk: riskMgr}
	statusHandler.Register(router)

	srv := &http.Server{
		Addr:    cfg.Server.HTTPAddr,
		Handler: router,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cronRunner := cronrunner.New(logger, ctx)
	if cfg.Cron.Enabled {
		registerJobs(cronRunner, cfg, logger, market, engine, riskMgr, strat)
		cronRunner.Start()
		defer cronRunner.Stop()
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("http server starting", zap.String("addr", cfg.Server.HTTPAddr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		logger.Info("shutdown requested")
	case err := <-errCh:
		logger.Error("server error", zap.Error(err))
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = srv.Shutdown(shutdownCtx)
}

func registerJobs(
	runner *cronrunner.Runner,
	cfg config.Config,
	logger *zap.Logger,
	market *marketdata.RandomWalkSource,
	engine *execution.Engine,
	riskMgr *risk.Manager,
	strat strategy.Strategy,
) {
	book := engine.Book()
	amount := decimal.NewFromFloat(cfg.Paper.Amount)
	stopPct := decimal.NewFromFloat(cfg.Paper.StopLossPct)

	_, err := runner.Add("strategy", cfg.Cron.Strategy, func(ctx context.Context) error {
		candles, err := market.OHLCV(ctx, cfg.Paper.Symbol, "1m", cfg.Paper.Lookback)
		if err != nil {
			return err
		}
		sig, err := strat.Analyze(strategy.Snapshot{
			Symbol:  cfg.Paper.Symbol,
			Candles: candles,
			Closes:  marketdata.Closes(candles),
		})
		if err != nil {
			return err
		}

		switch sig.Action {
		case strategy.ActionBuy:
			if book.OpenCount() > 0 {
				return nil
			}
			price := candles[len(candles)-1].Close
			stop := price.Mul(decimal.NewFromInt(1).Sub(stopPct))

			size := amount
			if sized := riskMgr.PositionSize(price, stop); sized.IsPositive() && sized.LessThan(size) {
				size = sized
			}
			if check := riskMgr.Validate(price, stop, size); !check.Valid {
				logger.Info("entry blocked", zap.Strings("issues", check.Issues))
				return nil
			}

			pos, err := engine.Buy(ctx, execution.Order{
				Symbol:   cfg.Paper.Symbol,
				Amount:   size,
				Price:    &price,
				StopLoss: &stop,
			})
			if err != nil {
				return err
			}
			logger.Info("opened position",
				zap.String("id", pos.ID),
				zap.String("entry", pos.EntryPrice.String()),
				zap.String("amount", pos.Amount.String()),
				zap.String("reason", sig.Reason),
			)
		case strategy.ActionSell:
			for _, pos := range book.OpenPositions() {
				trade, err := engine.Close(ctx, pos.ID, nil)
				if err != nil {
					return err
				}
				logger.Info("closed position",
					zap.String("id", trade.ID),
					zap.String("pnl", trade.PnL.String()),
					zap.String("reason", sig.Reason),
				)
			}
		}
		return nil
	})
	if err != nil {
		logger.Warn("cron register strategy failed", zap.Error(err))
	}

	_, err = runner.Add("exit_sweep", cfg.Cron.ExitSweep, func(ctx context.Context) error {
		trades, err := engine.CheckProtectiveExits(ctx)
		if err != nil {
			return err
		}
		for _, t := range trades {
			logger.Info("protective exit",
				zap.String("id", t.ID),
				zap.String("pnl", t.PnL.String()),
			)
		}
		riskMgr.UpdatePeakBalance()
		return nil
	})
	if err != nil {
		logger.Warn("cron register exit sweep failed", zap.Error(err))
	}

	_, err = runner.Add("snapshot", cfg.Cron.Snapshot, func(ctx context.Context) error {
		stats := book.Stats()
		logger.Info("portfolio snapshot",
			zap.String("total_balance", stats.CurrentBalance.String()),
			zap.String("cash", stats.Cash.String()),
			zap.Int("open_positions", stats.OpenPositions),
			zap.Int("closed_trades", stats.ClosedTrades),
			zap.Float64("win_rate", stats.WinRate),
			zap.Float64("drawdown", riskMgr.CurrentDrawdown()),
		)
		return nil
	})
	if err != nil {
		logger.Warn("cron register snapshot failed", zap.Error(err))
	}
}
