package analytics

import (
	"math"

	"github.com/montanaflynn/stats"
	"github.com/shopspring/decimal"
)

// SafeDiv делит num на den. Нулевой или отсутствующий знаменатель даёт 0.
func SafeDiv(num, den float64) float64 {
	if den == 0 {
		return 0
	}

	res := num / den
	if math.IsNaN(res) || math.IsInf(res, 0) {
		return 0
	}

	return res
}

// Efficiency: отношение продвижения производства к продвижению по времени.
// Если время ещё не тратилось, заказ считается идущим в темпе (1.0).
func Efficiency(productionProgress, timeProgress float64) float64 {
	if timeProgress == 0 {
		return 1.0
	}

	return SafeDiv(productionProgress, timeProgress)
}

func round3(v float64) float64 {
	return roundTo(v, 3)
}

func roundTo(v float64, places int32) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}

	return decimal.NewFromFloat(v).Round(places).InexactFloat64()
}

// mean возвращает 0 на пустом наборе.
func mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}

	m, err := stats.Mean(stats.Float64Data(values))
	if err != nil || math.IsNaN(m) {
		return 0
	}

	return m
}

func percent(part, total int) float64 {
	return SafeDiv(float64(part), float64(total)) * 100
}

func clampNonNegative(v *float64) float64 {
	if v == nil || *v < 0 || math.IsNaN(*v) || math.IsInf(*v, 0) {
		return 0
	}

	return *v
}
