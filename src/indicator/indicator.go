// Package indicator provides pure technical indicator functions over
// ordered price series. Every function returns a slice aligned to the
// input length; positions where not enough history exists yet hold NaN
// rather than a silently substituted zero. Use Valid to test a value.
package indicator

import "math"

// Valid reports whether an indicator value is defined.
func Valid(v float64) bool {
	return !math.IsNaN(v)
}

func undefined(n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = math.NaN()
	}
	return out
}

// SMA computes the simple moving average over period samples.
func SMA(values []float64, period int) []float64 {
	out := undefined(len(values))
	if period <= 0 || len(values) < period {
		return out
	}
	sum := 0.0
	for i, v := range values {
		sum += v
		if i >= period {
			sum -= values[i-period]
		}
		if i >= period-1 {
			out[i] = sum / float64(period)
		}
	}
	return out
}

// EMA computes the exponential moving average with the standard smoothing
// factor 2/(period+1), seeded with the SMA of the first period samples.
func EMA(values []float64, period int) []float64 {
	return emaFrom(values, period, 0)
}

// emaFrom is EMA over values[start:], aligned to the full input length.
// It lets MACD run a signal-line EMA over a series whose head is undefined.
func emaFrom(values []float64, period, start int) []float64 {
	out := undefined(len(values))
	if period <= 0 || len(values)-start < period {
		return out
	}
	alpha := 2.0 / float64(period+1)
	seed := 0.0
	for i := start; i < start+period; i++ {
		seed += values[i]
	}
	prev := seed / float64(period)
	out[start+period-1] = prev
	for i := start + period; i < len(values); i++ {
		prev = alpha*values[i] + (1-alpha)*prev
		out[i] = prev
	}
	return out
}

// RSI computes the Relative Strength Index with Wilder smoothing. Values
// before index period are undefined.
func RSI(values []float64, period int) []float64 {
	out := undefined(len(values))
	if period <= 0 || len(values) <= period {
		return out
	}

	avgGain := 0.0
	avgLoss := 0.0
	for i := 1; i <= period; i++ {
		change := values[i] - values[i-1]
		if change > 0 {
			avgGain += change
		} else {
			avgLoss -= change
		}
	}
	avgGain /= float64(period)
	avgLoss /= float64(period)
	out[period] = rsiValue(avgGain, avgLoss)

	for i := period + 1; i < len(values); i++ {
		change := values[i] - values[i-1]
		gain, loss := 0.0, 0.0
		if change > 0 {
			gain = change
		} else {
			loss = -change
		}
		avgGain = (avgGain*float64(period-1) + gain) / float64(period)
		avgLoss = (avgLoss*float64(period-1) + loss) / float64(period)
		out[i] = rsiValue(avgGain, avgLoss)
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

// MACD computes the MACD line (fast EMA minus slow EMA), its signal line
// (EMA of the MACD line) and the histogram (line minus signal).
func MACD(values []float64, fast, slow, signal int) (line, signalLine, histogram []float64) {
	n := len(values)
	line = undefined(n)
	signalLine = undefined(n)
	histogram = undefined(n)
	if fast <= 0 || slow <= 0 || signal <= 0 || n < slow {
		return line, signalLine, histogram
	}

	fastEMA := EMA(values, fast)
	slowEMA := EMA(values, slow)
	for i := slow - 1; i < n; i++ {
		line[i] = fastEMA[i] - slowEMA[i]
	}

	signalLine = emaFrom(line, signal, slow-1)
	for i := range histogram {
		if Valid(line[i]) && Valid(signalLine[i]) {
			histogram[i] = line[i] - signalLine[i]
		}
	}
	return line, signalLine, histogram
}

// Bollinger computes the Bollinger Bands: an SMA middle band and upper and
// lower bands k population standard deviations away.
func Bollinger(values []float64, period int, k float64) (upper, middle, lower []float64) {
	n := len(values)
	upper = undefined(n)
	lower = undefined(n)
	middle = SMA(values, period)
	if period <= 1 || n < period {
		return upper, middle, lower
	}
	for i := period - 1; i < n; i++ {
		mean := middle[i]
		variance := 0.0
		for j := i - period + 1; j <= i; j++ {
			d := values[j] - mean
			variance += d * d
		}
		stddev := math.Sqrt(variance / float64(period))
		upper[i] = mean + k*stddev
		lower[i] = mean - k*stddev
	}
	return upper, middle, lower
}
