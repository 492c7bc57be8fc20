// Package journal persists completed simulation runs and their trades for
// later review. It is a reporting sink only; the engine never reads it back.
package journal

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

// RunRecord is one completed replay run.
type RunRecord struct {
	ID uint64 `gorm:"primaryKey;autoIncrement"`

	Symbol       string `gorm:"type:varchar(30);not null;index"`
	StrategyName string `gorm:"type:varchar(50);not null;index"`
	Timeframe    string `gorm:"type:varchar(10)"`

	InitialBalance decimal.Decimal `gorm:"type:numeric(30,10);not null"`
	FinalBalance   decimal.Decimal `gorm:"type:numeric(30,10);not null"`
	TotalReturn    decimal.Decimal `gorm:"type:numeric(30,10);not null"`
	ReturnPct      float64         `gorm:"type:double precision"`

	ClosedTrades int     `gorm:"not null"`
	WinRate      float64 `gorm:"type:double precision"`

	// Ratio metrics may be infinite; nil marks an undefined value.
	SharpeRatio    *float64 `gorm:"type:double precision"`
	SortinoRatio   *float64 `gorm:"type:double precision"`
	MaxDrawdown    *float64 `gorm:"type:double precision"`
	ProfitFactor   *float64 `gorm:"type:double precision"`
	CalmarRatio    *float64 `gorm:"type:double precision"`
	RecoveryFactor *float64 `gorm:"type:double precision"`

	Params datatypes.JSON `gorm:"type:jsonb"`

	CreatedAt time.Time `gorm:"type:timestamptz;autoCreateTime;index"`
}

func (RunRecord) TableName() string {
	return "sim_runs"
}

// TradeRecord is one closed trade within a run.
type TradeRecord struct {
	ID    uint64 `gorm:"primaryKey;autoIncrement"`
	RunID uint64 `gorm:"not null;index"`

	TradeID string `gorm:"type:text;not null"`
	Symbol  string `gorm:"type:varchar(30);not null;index"`
	Side    string `gorm:"type:varchar(10);not null"`

	Amount     decimal.Decimal `gorm:"type:numeric(30,10);not null"`
	EntryPrice decimal.Decimal `gorm:"type:numeric(30,10);not null"`
	ExitPrice  decimal.Decimal `gorm:"type:numeric(30,10);not null"`
	// Explicit column name because default GORM naming turns "PnL" into "pn_l".
	PnL    decimal.Decimal `gorm:"column:pnl;type:numeric(30,10);not null"`
	PnLPct float64         `gorm:"column:pnl_pct;type:double precision"`

	EntryTime time.Time `gorm:"type:timestamptz;not null"`
	ExitTime  time.Time `gorm:"type:timestamptz;not null;index"`

	CreatedAt time.Time `gorm:"type:timestamptz;autoCreateTime"`
}

func (TradeRecord) TableName() string {
	return "sim_trades"
}
