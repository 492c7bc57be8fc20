// Package indicators implements the technical indicators the bundled
// strategies are built on. All functions operate on close series oldest
// first and return nil when the input is too short.
package indicators

// SMA returns one value per full window: len(prices)-period+1 entries.
func SMA(prices []float64, period int) []float64 {
	if period <= 0 || len(prices) < period {
		return nil
	}
	out := make([]float64, 0, len(prices)-period+1)
	var sum float64
	for i, p := range prices {
		sum += p
		if i >= period {
			sum -= prices[i-period]
		}
		if i >= period-1 {
			out = append(out, sum/float64(period))
		}
	}
	return out
}

// EMA returns a full-length series seeded with the SMA of the first period
// values; entries before index period-1 are zero.
func EMA(prices []float64, period int) []float64 {
	if period <= 0 || len(prices) < period {
		return nil
	}
	out := make([]float64, len(prices))
	var seed float64
	for i := 0; i < period; i++ {
		seed += prices[i]
	}
	out[period-1] = seed / float64(period)

	multiplier := 2.0 / float64(period+1)
	for i := period; i < len(prices); i++ {
		out[i] = (prices[i]-out[i-1])*multiplier + out[i-1]
	}
	return out
}

// RSI returns one value per price from index period onward, each in
// [0, 100]. Uses Wilder smoothing of average gain and loss; an all-gain
// window reads 100, an all-loss window 0.
func RSI(prices []float64, period int) []float64 {
	if period <= 0 || len(prices) < period+1 {
		return nil
	}

	var avgGain, avgLoss float64
	for i := 1; i <= period; i++ {
		change := prices[i] - prices[i-1]
		if change > 0 {
			avgGain += change
		} else {
			avgLoss += -change
		}
	}
	avgGain /= float64(period)
	avgLoss /= float64(period)

	out := make([]float64, 0, len(prices)-period)
	out = append(out, rsiValue(avgGain, avgLoss))
	for i := period + 1; i < len(prices); i++ {
		change := prices[i] - prices[i-1]
		gain, loss := 0.0, 0.0
		if change > 0 {
			gain = change
		} else {
			loss = -change
		}
		avgGain = (avgGain*float64(period-1) + gain) / float64(period)
		avgLoss = (avgLoss*float64(period-1) + loss) / float64(period)
		out = append(out, rsiValue(avgGain, avgLoss))
	}
	return out
}

func rsiValue(avgGain, avgLoss float64) float64 {
	if avgLoss == 0 {
		if avgGain == 0 {
			return 50
		}
		return 100
	}
	rs := avgGain / avgLoss
	return 100 - 100/(1+rs)
}

// MACDResult holds full-length MACD series; entries before the respective
// warm-up indexes are zero.
type MACDResult struct {
	MACD      []float64
	Signal    []float64
	Histogram []float64
}

// MACD computes the fast/slow EMA difference, its EMA signal line, and the
// histogram between them.
func MACD(prices []float64, fastPeriod, slowPeriod, signalPeriod int) *MACDResult {
	if fastPeriod <= 0 || signalPeriod <= 0 || slowPeriod <= fastPeriod {
		return nil
	}
	if len(prices) < slowPeriod+signalPeriod-1 {
		return nil
	}

	fast := EMA(prices, fastPeriod)
	slow := EMA(prices, slowPeriod)

	macdLine := make([]float64, len(prices))
	for i := slowPeriod - 1; i < len(prices); i++ {
		macdLine[i] = fast[i] - slow[i]
	}

	signalLine := EMA(macdLine, signalPeriod)

	histogram := make([]float64, len(prices))
	for i := slowPeriod + signalPeriod - 2; i < len(prices); i++ {
		histogram[i] = macdLine[i] - signalLine[i]
	}

	return &MACDResult{
		MACD:      macdLine,
		Signal:    signalLine,
		Histogram: histogram,
	}
}

// Crossover reports whether the fast series crossed the slow between the two
// most recent points: +1 bullish, -1 bearish, 0 none.
func Crossover(fast, slow []float64) int {
	if len(fast) < 2 || len(slow) < 2 {
		return 0
	}
	currFast, prevFast := fast[len(fast)-1], fast[len(fast)-2]
	currSlow, prevSlow := slow[len(slow)-1], slow[len(slow)-2]
	switch {
	case prevFast <= prevSlow && currFast > currSlow:
		return 1
	case prevFast >= prevSlow && currFast < currSlow:
		return -1
	}
	return 0
}
