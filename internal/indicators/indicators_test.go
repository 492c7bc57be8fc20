package indicators

import (
	"math"
	"testing"
)

func TestSMAWindowedMeans(t *testing.T) {
	got := SMA([]float64{100, 101, 102, 103, 104}, 3)
	want := []float64{101, 102, 103}
	if len(got) != len(want) {
		t.Fatalf("len=%d want=%d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("sma[%d]=%v want=%v", i, got[i], want[i])
		}
	}
}

func TestSMAShortInput(t *testing.T) {
	if got := SMA([]float64{1, 2}, 3); got != nil {
		t.Fatalf("sma=%v want=nil", got)
	}
	if got := SMA([]float64{1, 2, 3}, 0); got != nil {
		t.Fatalf("sma=%v want=nil for period 0", got)
	}
}

func TestEMASeededWithSMA(t *testing.T) {
	prices := []float64{10, 20, 30, 40}
	got := EMA(prices, 3)
	if len(got) != len(prices) {
		t.Fatalf("len=%d want=%d", len(got), len(prices))
	}
	if got[2] != 20 {
		t.Fatalf("seed=%v want=20", got[2])
	}
	// multiplier 2/(3+1) = 0.5: (40-20)*0.5 + 20 = 30.
	if got[3] != 30 {
		t.Fatalf("ema[3]=%v want=30", got[3])
	}
}

func TestRSIBounds(t *testing.T) {
	prices := []float64{
		44, 44.3, 44.1, 43.6, 44.3, 44.8, 45.1, 45.4, 45.8, 46.1,
		45.9, 46.3, 46.8, 46.4, 46.2, 45.6, 46.2, 46.3, 46.0, 46.4,
	}
	series := RSI(prices, 14)
	if len(series) == 0 {
		t.Fatal("rsi returned no values")
	}
	for i, v := range series {
		if v < 0 || v > 100 {
			t.Fatalf("rsi[%d]=%v outside [0,100]", i, v)
		}
	}
}

func TestRSIAllGains(t *testing.T) {
	prices := make([]float64, 16)
	for i := range prices {
		prices[i] = 100 + float64(i)
	}
	series := RSI(prices, 14)
	for i, v := range series {
		if v != 100 {
			t.Fatalf("rsi[%d]=%v want=100 with gains only", i, v)
		}
	}
}

func TestRSIAllLosses(t *testing.T) {
	prices := make([]float64, 16)
	for i := range prices {
		prices[i] = 100 - float64(i)
	}
	series := RSI(prices, 14)
	for i, v := range series {
		if v != 0 {
			t.Fatalf("rsi[%d]=%v want=0 with losses only", i, v)
		}
	}
}

func TestMACDWarmup(t *testing.T) {
	prices := make([]float64, 50)
	for i := range prices {
		prices[i] = 100 + 10*math.Sin(float64(i)/5)
	}
	res := MACD(prices, 12, 26, 9)
	if res == nil {
		t.Fatal("macd=nil want result")
	}
	if len(res.MACD) != len(prices) || len(res.Signal) != len(prices) || len(res.Histogram) != len(prices) {
		t.Fatalf("series lengths %d/%d/%d want %d", len(res.MACD), len(res.Signal), len(res.Histogram), len(prices))
	}
	last := len(prices) - 1
	if got := res.MACD[last] - res.Signal[last]; math.Abs(got-res.Histogram[last]) > 1e-9 {
		t.Fatalf("histogram=%v want=%v", res.Histogram[last], got)
	}
}

func TestMACDShortInput(t *testing.T) {
	if res := MACD([]float64{1, 2, 3}, 12, 26, 9); res != nil {
		t.Fatalf("macd=%v want=nil", res)
	}
}

func TestCrossover(t *testing.T) {
	if got := Crossover([]float64{1, 3}, []float64{2, 2}); got != 1 {
		t.Fatalf("crossover=%d want=1", got)
	}
	if got := Crossover([]float64{3, 1}, []float64{2, 2}); got != -1 {
		t.Fatalf("crossover=%d want=-1", got)
	}
	if got := Crossover([]float64{3, 4}, []float64{2, 2}); got != 0 {
		t.Fatalf("crossover=%d want=0", got)
	}
	if got := Crossover([]float64{1}, []float64{2}); got != 0 {
		t.Fatalf("crossover=%d want=0 on short input", got)
	}
}
