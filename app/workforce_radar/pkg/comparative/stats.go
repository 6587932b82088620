package comparative

import (
	"math"
	"sort"
)

// WeightedMean 总权重为正时返回加权平均，否则退回算术平均；权重全部相同时直接取算术平均。
// values 为空时第二个返回值为 false。
func WeightedMean(values, weights []float64) (float64, bool) {
	if len(values) == 0 {
		return 0, false
	}
	total, equal := 0.0, true
	for i := range values {
		w := weightAt(weights, i)
		total += w
		if w != weightAt(weights, 0) {
			equal = false
		}
	}
	if total <= 0 || equal {
		return Mean(values), true
	}
	sum := 0.0
	for i, v := range values {
		sum += v * weightAt(weights, i)
	}
	return sum / total, true
}

func weightAt(weights []float64, i int) float64 {
	if i >= len(weights) {
		return 0
	}
	w := weights[i]
	if w <= 0 || math.IsNaN(w) || math.IsInf(w, 0) {
		return 0
	}
	return w
}

// Mean 算术平均，空列表返回 0
func Mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sum := 0.0
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

// Quantile 对已排序的列表按 p*(n-1) 位置线性插值，空列表返回 nil
func Quantile(sorted []float64, p float64) *float64 {
	n := len(sorted)
	if n == 0 {
		return nil
	}
	pos := p * float64(n-1)
	lo := int(math.Floor(pos))
	hi := int(math.Ceil(pos))
	v := sorted[lo]
	if hi != lo {
		v += (sorted[hi] - sorted[lo]) * (pos - float64(lo))
	}
	return &v
}

// FiveNumber 最小值、下四分位、中位数、上四分位、最大值
type FiveNumber struct {
	Min, Q1, Median, Q3, Max *float64
}

// Summarize 计算未加权的五数概括，不修改入参
func Summarize(values []float64) FiveNumber {
	sorted := append([]float64(nil), values...)
	sort.Float64s(sorted)
	return FiveNumber{
		Min:    Quantile(sorted, 0),
		Q1:     Quantile(sorted, 0.25),
		Median: Quantile(sorted, 0.5),
		Q3:     Quantile(sorted, 0.75),
		Max:    Quantile(sorted, 1),
	}
}
