package config

import (
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	App        AppConfig        `mapstructure:"app"`
	Server     ServerConfig     `mapstructure:"server"`
	Log        LogConfig        `mapstructure:"log"`
	DB         DBConfig         `mapstructure:"db"`
	Cron       CronConfig       `mapstructure:"cron"`
	Simulation SimulationConfig `mapstructure:"simulation"`
	Risk       RiskConfig       `mapstructure:"risk"`
	Backtest   BacktestConfig   `mapstructure:"backtest"`
	Paper      PaperConfig      `mapstructure:"paper"`
}

type AppConfig struct {
	Env string `mapstructure:"env"`
}

type ServerConfig struct {
	HTTPAddr string `mapstructure:"http_addr"`
}

type LogConfig struct {
	Level             string `mapstructure:"level"`
	Encoding          string `mapstructure:"encoding"`
	Development       bool   `mapstructure:"development"`
	Sampling          bool   `mapstructure:"sampling"`
	DisableCaller     bool   `mapstructure:"disable_caller"`
	DisableStacktrace bool   `mapstructure:"disable_stacktrace"`
}

// DBConfig points at the optional trade journal. An empty DSN disables it.
type DBConfig struct {
	DSN             string        `mapstructure:"dsn"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
	ConnMaxIdleTime time.Duration `mapstructure:"conn_max_idle_time"`
	Timezone        string        `mapstructure:"timezone"`
}

type CronConfig struct {
	Enabled   bool   `mapstructure:"enabled"`
	ExitSweep string `mapstructure:"exit_sweep"`
	Snapshot  string `mapstructure:"snapshot"`
	Strategy  string `mapstructure:"strategy"`
}

// SimulationConfig sets the execution model.
type SimulationConfig struct {
	InitialBalance float64 `mapstructure:"initial_balance"`
	Slippage       float64 `mapstructure:"slippage"`
	Fee            float64 `mapstructure:"fee"`
}

type RiskConfig struct {
	RiskPerTrade float64 `mapstructure:"risk_per_trade"`
	MaxDrawdown  float64 `mapstructure:"max_drawdown"`
}

type BacktestConfig struct {
	Symbol       string  `mapstructure:"symbol"`
	Timeframe    string  `mapstructure:"timeframe"`
	Strategy     string  `mapstructure:"strategy"`
	Candles      int     `mapstructure:"candles"`
	Lookback     int     `mapstructure:"lookback"`
	FastPeriod   int     `mapstructure:"fast_period"`
	SlowPeriod   int     `mapstructure:"slow_period"`
	SignalPeriod int     `mapstructure:"signal_period"`
	RSIPeriod    int     `mapstructure:"rsi_period"`
	Overbought   float64 `mapstructure:"overbought"`
	Oversold     float64 `mapstructure:"oversold"`
	Amount       float64 `mapstructure:"amount"`
	StopLossPct  float64 `mapstructure:"stop_loss_pct"`
	BasePrice    float64 `mapstructure:"base_price"`
}

type PaperConfig struct {
	Symbol      string  `mapstructure:"symbol"`
	BasePrice   float64 `mapstructure:"base_price"`
	StepPct     float64 `mapstructure:"step_pct"`
	Lookback    int     `mapstructure:"lookback"`
	Amount      float64 `mapstructure:"amount"`
	StopLossPct float64 `mapstructure:"stop_loss_pct"`
	Seed        int64   `mapstructure:"seed"`
}

func Load(path string, envOnly bool) (Config, error) {
	v := viper.New()
	v.SetEnvPrefix("TS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	v.AutomaticEnv()
	v.SetDefault("app.env", "dev")
	v.SetDefault("server.http_addr", ":8080")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.encoding", "console")
	v.SetDefault("log.development", true)
	v.SetDefault("log.sampling", false)
	v.SetDefault("log.disable_caller", false)
	v.SetDefault("log.disable_stacktrace", false)
	v.SetDefault("db.dsn", "")
	v.SetDefault("db.max_open_conns", 10)
	v.SetDefault("db.max_idle_conns", 5)
	v.SetDefault("db.conn_max_lifetime", "30m")
	v.SetDefault("db.conn_max_idle_time", "5m")
	v.SetDefault("db.timezone", "UTC")
	v.SetDefault("cron.enabled", true)
	v.SetDefault("cron.exit_sweep", "@every 15s")
	v.SetDefault("cron.snapshot", "@every 1m")
	v.SetDefault("cron.strategy", "@every 30s")
	v.SetDefault("simulation.initial_balance", 10000)
	v.SetDefault("simulation.slippage", 0.001)
	v.SetDefault("simulation.fee", 0.001)
	v.SetDefault("risk.risk_per_trade", 0.02)
	v.SetDefault("risk.max_drawdown", 0.2)
	v.SetDefault("backtest.symbol", "BTC/USDT")
	v.SetDefault("backtest.timeframe", "1h")
	v.SetDefault("backtest.strategy", "sma_cross")
	v.SetDefault("backtest.candles", 120)
	v.SetDefault("backtest.lookback", 50)
	v.SetDefault("backtest.fast_period", 10)
	v.SetDefault("backtest.slow_period", 20)
	v.SetDefault("backtest.signal_period", 9)
	v.SetDefault("backtest.rsi_period", 14)
	v.SetDefault("backtest.overbought", 70)
	v.SetDefault("backtest.oversold", 30)
	v.SetDefault("backtest.amount", 0.01)
	v.SetDefault("backtest.stop_loss_pct", 0.05)
	v.SetDefault("backtest.base_price", 40000)
	v.SetDefault("paper.symbol", "BTC/USDT")
	v.SetDefault("paper.base_price", 40000)
	v.SetDefault("paper.step_pct", 0.002)
	v.SetDefault("paper.lookback", 50)
	v.SetDefault("paper.amount", 0.01)
	v.SetDefault("paper.stop_loss_pct", 0.05)
	v.SetDefault("paper.seed", 1)

	if !envOnly {
		if err := v.ReadInConfig(); err != nil {
			return Config{}, err
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, err
	}

	return cfg, nil
}
