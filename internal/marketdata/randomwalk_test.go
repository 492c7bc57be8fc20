package marketdata

import (
	"context"
	"testing"
	"time"
)

func newWalk() *RandomWalkSource {
	return NewRandomWalkSource(map[string]float64{"BTC/USDT": 40000}, 0.002, time.Minute, 1)
}

func TestRandomWalkSeedsHistory(t *testing.T) {
	s := newWalk()

	bars, err := s.OHLCV(context.Background(), "BTC/USDT", "1m", 0)
	if err != nil {
		t.Fatalf("ohlcv: %v", err)
	}
	if len(bars) != 60 {
		t.Fatalf("bars=%d want=60", len(bars))
	}
	for i := 1; i < len(bars); i++ {
		if !bars[i].OpenTime.After(bars[i-1].OpenTime) {
			t.Fatalf("bar %d not after bar %d", i, i-1)
		}
		if !bars[i].Open.Equal(bars[i-1].Close) {
			t.Fatalf("bar %d open=%v want previous close %v", i, bars[i].Open, bars[i-1].Close)
		}
	}
}

func TestRandomWalkTickerAdvances(t *testing.T) {
	s := newWalk()
	ctx := context.Background()

	tick, err := s.Ticker(ctx, "BTC/USDT")
	if err != nil {
		t.Fatalf("ticker: %v", err)
	}
	if !tick.Last.IsPositive() {
		t.Fatalf("last=%v want positive", tick.Last)
	}

	bars, err := s.OHLCV(ctx, "BTC/USDT", "1m", 0)
	if err != nil {
		t.Fatalf("ohlcv: %v", err)
	}
	if len(bars) != 61 {
		t.Fatalf("bars=%d want=61 after one tick", len(bars))
	}
}

func TestRandomWalkBoundsRespectStep(t *testing.T) {
	s := newWalk()

	bars, err := s.OHLCV(context.Background(), "BTC/USDT", "1m", 0)
	if err != nil {
		t.Fatalf("ohlcv: %v", err)
	}
	for i, b := range bars {
		if b.High.LessThan(b.Open) || b.High.LessThan(b.Close) {
			t.Fatalf("bar %d high=%v below open/close", i, b.High)
		}
		if b.Low.GreaterThan(b.Open) || b.Low.GreaterThan(b.Close) {
			t.Fatalf("bar %d low=%v above open/close", i, b.Low)
		}
	}
}

func TestRandomWalkDeterministicSeed(t *testing.T) {
	a, b := newWalk(), newWalk()
	ctx := context.Background()

	barsA, err := a.OHLCV(ctx, "BTC/USDT", "1m", 0)
	if err != nil {
		t.Fatalf("ohlcv: %v", err)
	}
	barsB, err := b.OHLCV(ctx, "BTC/USDT", "1m", 0)
	if err != nil {
		t.Fatalf("ohlcv: %v", err)
	}
	for i := range barsA {
		if !barsA[i].Close.Equal(barsB[i].Close) {
			t.Fatalf("bar %d diverged: %v vs %v", i, barsA[i].Close, barsB[i].Close)
		}
	}
}

func TestRandomWalkUnknownSymbol(t *testing.T) {
	s := newWalk()
	ctx := context.Background()

	if _, err := s.Ticker(ctx, "ETH/USDT"); err == nil {
		t.Fatal("want error for unknown symbol")
	}
	if _, err := s.OHLCV(ctx, "ETH/USDT", "1m", 10); err == nil {
		t.Fatal("want error for unknown symbol")
	}
}

func TestCloses(t *testing.T) {
	s := newWalk()
	bars, err := s.OHLCV(context.Background(), "BTC/USDT", "1m", 5)
	if err != nil {
		t.Fatalf("ohlcv: %v", err)
	}
	closes := Closes(bars)
	if len(closes) != len(bars) {
		t.Fatalf("len=%d want=%d", len(closes), len(bars))
	}
	for i := range closes {
		if closes[i] != bars[i].Close.InexactFloat64() {
			t.Fatalf("closes[%d]=%v want=%v", i, closes[i], bars[i].Close.InexactFloat64())
		}
	}
}
