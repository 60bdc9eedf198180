package calculator

import (
	"math"

	talib "github.com/markcheno/go-talib"
)

// kdjSeed is the conventional starting value of K and D.
const kdjSeed = 50.0

// CalculateKDJ computes the K, D and J lines of a stochastic oscillator with
// the given lookback and smoothing. K and D are smoothed with weight 1/signal
// and seeded at 50; J = 3K - 2D. The first length-1 rows are NaN.
func CalculateKDJ(high, low, close []float64, length, signal int) (k, d, j []float64) {
	n := len(close)
	k = make([]float64, n)
	d = make([]float64, n)
	j = make([]float64, n)

	highest := talib.Max(high, length)
	lowest := talib.Min(low, length)

	alpha := 1.0 / float64(signal)
	prevK, prevD := kdjSeed, kdjSeed
	for i := 0; i < n; i++ {
		if i < length-1 {
			k[i], d[i], j[i] = math.NaN(), math.NaN(), math.NaN()
			continue
		}
		rsv := kdjSeed
		if rng := highest[i] - lowest[i]; rng != 0 {
			rsv = (close[i] - lowest[i]) / rng * 100
		}
		curK := (1-alpha)*prevK + alpha*rsv
		curD := (1-alpha)*prevD + alpha*curK
		k[i], d[i], j[i] = curK, curD, 3*curK-2*curD
		prevK, prevD = curK, curD
	}
	return k, d, j
}
