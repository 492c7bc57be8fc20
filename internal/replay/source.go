// Package replay drives a simulation over recorded candles, one bar at a
// time, and reports the resulting performance.
package replay

import (
	"context"
	"fmt"
	"sync"

	"tradesim/internal/marketdata"
)

// HistoricalSource serves recorded candles as a marketdata.Source, exposing
// only bars up to the current cursor so a step never sees the future.
type HistoricalSource struct {
	mu      sync.RWMutex
	candles map[string][]marketdata.Candle
	index   int
}

func NewHistoricalSource(candles map[string][]marketdata.Candle) *HistoricalSource {
	cp := make(map[string][]marketdata.Candle, len(candles))
	for sym, cs := range candles {
		cp[sym] = append([]marketdata.Candle(nil), cs...)
	}
	return &HistoricalSource{candles: cp}
}

// Len reports the number of replayable steps, the shortest series when
// symbols differ in length.
func (h *HistoricalSource) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	n := -1
	for _, cs := range h.candles {
		if n == -1 || len(cs) < n {
			n = len(cs)
		}
	}
	if n == -1 {
		return 0
	}
	return n
}

func (h *HistoricalSource) SetIndex(i int) {
	h.mu.Lock()
	h.index = i
	h.mu.Unlock()
}

func (h *HistoricalSource) Index() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.index
}

// Ticker quotes the bar at the cursor: last is the close, bid the low, ask
// the high.
func (h *HistoricalSource) Ticker(ctx context.Context, symbol string) (marketdata.Ticker, error) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	cs, ok := h.candles[symbol]
	if !ok || h.index < 0 || h.index >= len(cs) {
		return marketdata.Ticker{}, fmt.Errorf("no data for %s at index %d", symbol, h.index)
	}
	c := cs[h.index]
	return marketdata.Ticker{
		Symbol:    symbol,
		Last:      c.Close,
		Bid:       c.Low,
		Ask:       c.High,
		High:      c.High,
		Low:       c.Low,
		Volume:    c.Volume,
		Timestamp: c.OpenTime,
	}, nil
}

// OHLCV returns up to limit bars ending at the cursor, oldest first.
func (h *HistoricalSource) OHLCV(ctx context.Context, symbol, timeframe string, limit int) ([]marketdata.Candle, error) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	cs, ok := h.candles[symbol]
	if !ok || h.index < 0 || h.index >= len(cs) {
		return nil, fmt.Errorf("no data for %s at index %d", symbol, h.index)
	}
	end := h.index + 1
	start := end - limit
	if limit <= 0 || start < 0 {
		start = 0
	}
	out := make([]marketdata.Candle, end-start)
	copy(out, cs[start:end])
	return out, nil
}
