package handler

import (
	"math"
	"net/http"

	"github.com/gin-gonic/gin"

	"tradesim/internal/metrics"
	"tradesim/internal/portfolio"
	"tradesim/internal/risk"
)

// StatusHandler exposes the live paper-trading book over HTTP.
type StatusHandler struct {
	Book *portfolio.Portfolio
	Risk *risk.Manager
}

func (h *StatusHandler) Register(r *gin.Engine) {
	g := r.Group("/api/v1")
	g.GET("/portfolio", h.portfolio)
	g.GET("/positions", h.positions)
	g.GET("/trades", h.trades)
	g.GET("/risk", h.risk)
	g.GET("/metrics", h.metrics)
	g.GET("/audit", h.audit)
}

func (h *StatusHandler) portfolio(c *gin.Context) {
	if h.Book == nil {
		Error(c, http.StatusInternalServerError, "book unavailable")
		return
	}
	Ok(c, gin.H{
		"initial_balance": h.Book.InitialBalance(),
		"cash":            h.Book.Cash(),
		"total_balance":   h.Book.TotalBalance(),
		"realized_pnl":    h.Book.RealizedPnL(),
		"stats":           h.Book.Stats(),
	})
}

func (h *StatusHandler) positions(c *gin.Context) {
	if h.Book == nil {
		Error(c, http.StatusInternalServerError, "book unavailable")
		return
	}
	Ok(c, h.Book.OpenPositions())
}

func (h *StatusHandler) trades(c *gin.Context) {
	if h.Book == nil {
		Error(c, http.StatusInternalServerError, "book unavailable")
		return
	}
	Ok(c, h.Book.ClosedTrades())
}

func (h *StatusHandler) risk(c *gin.Context) {
	if h.Risk == nil {
		Error(c, http.StatusInternalServerError, "risk manager unavailable")
		return
	}
	Ok(c, h.Risk.Metrics())
}

func (h *StatusHandler) metrics(c *gin.Context) {
	if h.Book == nil {
		Error(c, http.StatusInternalServerError, "book unavailable")
		return
	}
	report := metrics.Summarize(h.Book.ClosedTrades(), h.Book.InitialBalance())
	// Infinite ratios are legal sentinels but not valid JSON numbers.
	Ok(c, gin.H{
		"sharpe_ratio":    jsonNumber(report.SharpeRatio),
		"sortino_ratio":   jsonNumber(report.SortinoRatio),
		"max_drawdown":    jsonNumber(report.MaxDrawdown),
		"profit_factor":   jsonNumber(report.ProfitFactor),
		"calmar_ratio":    jsonNumber(report.CalmarRatio),
		"recovery_factor": jsonNumber(report.RecoveryFactor),
	})
}

func jsonNumber(v float64) *float64 {
	if math.IsInf(v, 0) || math.IsNaN(v) {
		return nil
	}
	return &v
}

func (h *StatusHandler) audit(c *gin.Context) {
	if h.Book == nil {
		Error(c, http.StatusInternalServerError, "book unavailable")
		return
	}
	Ok(c, h.Book.AuditTrail())
}
