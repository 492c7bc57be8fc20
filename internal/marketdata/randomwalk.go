package marketdata

import (
	"context"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/shopspring/decimal"
)

// RandomWalkSource is a simulated feed for paper trading without exchange
// connectivity. Each Ticker call advances the walk by one bar; OHLCV serves
// the bars generated so far.
type RandomWalkSource struct {
	mu       sync.Mutex
	rng      *rand.Rand
	stepPct  float64
	interval time.Duration

	last    map[string]float64
	history map[string][]Candle
	now     time.Time
}

func NewRandomWalkSource(basePrices map[string]float64, stepPct float64, interval time.Duration, seed int64) *RandomWalkSource {
	if stepPct <= 0 {
		stepPct = 0.002
	}
	if interval <= 0 {
		interval = time.Minute
	}
	s := &RandomWalkSource{
		rng:      rand.New(rand.NewSource(seed)),
		stepPct:  stepPct,
		interval: interval,
		last:     make(map[string]float64, len(basePrices)),
		history:  make(map[string][]Candle, len(basePrices)),
		now:      time.Now().UTC(),
	}
	for symbol, price := range basePrices {
		s.last[symbol] = price
		// Seed enough history for indicator lookbacks.
		for i := 0; i < 60; i++ {
			s.appendBar(symbol)
		}
	}
	return s
}

func (s *RandomWalkSource) Ticker(_ context.Context, symbol string) (Ticker, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.last[symbol]; !ok {
		return Ticker{}, fmt.Errorf("no simulated feed for %s", symbol)
	}
	bar := s.appendBar(symbol)
	return Ticker{
		Symbol:    symbol,
		Last:      bar.Close,
		Bid:       bar.Low,
		Ask:       bar.High,
		High:      bar.High,
		Low:       bar.Low,
		Volume:    bar.Volume,
		Timestamp: bar.OpenTime,
	}, nil
}

func (s *RandomWalkSource) OHLCV(_ context.Context, symbol string, _ string, limit int) ([]Candle, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	bars, ok := s.history[symbol]
	if !ok {
		return nil, fmt.Errorf("no simulated feed for %s", symbol)
	}
	if limit <= 0 || limit > len(bars) {
		limit = len(bars)
	}
	out := make([]Candle, limit)
	copy(out, bars[len(bars)-limit:])
	return out, nil
}

func (s *RandomWalkSource) appendBar(symbol string) Candle {
	open := s.last[symbol]
	drift := (s.rng.Float64()*2 - 1) * s.stepPct
	closing := open * (1 + drift)
	high := open
	if closing > high {
		high = closing
	}
	high *= 1 + s.rng.Float64()*s.stepPct/2
	low := open
	if closing < low {
		low = closing
	}
	low *= 1 - s.rng.Float64()*s.stepPct/2
	s.now = s.now.Add(s.interval)
	bar := Candle{
		OpenTime: s.now,
		Open:     decimal.NewFromFloat(open),
		High:     decimal.NewFromFloat(high),
		Low:      decimal.NewFromFloat(low),
		Close:    decimal.NewFromFloat(closing),
		Volume:   decimal.NewFromFloat(50 + s.rng.Float64()*100),
	}
	s.last[symbol] = closing
	s.history[symbol] = append(s.history[symbol], bar)
	return bar
}
