/*
 * Copyright (C) 2024 IBM, Inc.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 *
 */

package detect

import (
	"math"
	"sort"

	"github.com/intentwatch/surge-pipeline/pkg/api"
)

// minPointsForTrend is the minimum sample size below which the trend is
// reported as stable regardless of slope.
const minPointsForTrend = 4

// ComputeBaseline derives the historical statistics of a series. When fewer
// than minDataPoints samples are available it returns a zero-valued baseline
// carrying the actual count, so that downstream surge detection naturally
// yields no events (stddev stays 0).
func ComputeBaseline(series *TimeSeries, minDataPoints int) *Baseline {
	n := len(series.Points)
	if n < minDataPoints {
		return &Baseline{Count: n, TrendDirection: api.TrendStable}
	}

	values := make([]float64, n)
	sum := float64(0)
	for i, p := range series.Points {
		values[i] = p.Count
		sum += p.Count
	}
	mean := sum / float64(n)

	// population standard deviation (divide by N, not N-1)
	sumSqDev := float64(0)
	for _, v := range values {
		d := v - mean
		sumSqDev += d * d
	}
	stdDev := math.Sqrt(sumSqDev / float64(n))

	sorted := make([]float64, n)
	copy(sorted, values)
	sort.Float64s(sorted)

	direction, strength := computeTrend(values)

	return &Baseline{
		Mean:           mean,
		StdDev:         stdDev,
		Median:         Percentile(sorted, 50),
		P75:            Percentile(sorted, 75),
		P90:            Percentile(sorted, 90),
		P95:            Percentile(sorted, 95),
		Min:            sorted[0],
		Max:            sorted[n-1],
		Count:          n,
		TrendDirection: direction,
		TrendStrength:  strength,
	}
}

// Percentile computes the p-th percentile of a sorted slice using linear
// interpolation between order statistics: index = p/100 * (N-1).
func Percentile(sorted []float64, p float64) float64 {
	if len(sorted) == 0 {
		return 0
	}
	index := p / 100 * float64(len(sorted)-1)
	lower := int(math.Floor(index))
	upper := int(math.Ceil(index))
	if lower == upper {
		return sorted[lower]
	}
	weight := index - float64(lower)
	return sorted[lower]*(1-weight) + sorted[upper]*weight
}

// computeTrend fits an ordinary least-squares slope of count against position
// index and normalizes it into a direction plus a strength in [0,1].
func computeTrend(values []float64) (api.TrendDirection, float64) {
	n := len(values)
	if n < minPointsForTrend {
		return api.TrendStable, 0
	}

	var sumX, sumY, sumXY, sumXX float64
	for i, v := range values {
		x := float64(i)
		sumX += x
		sumY += v
		sumXY += x * v
		sumXX += x * x
	}
	nf := float64(n)
	denominator := nf*sumXX - sumX*sumX
	if denominator == 0 {
		return api.TrendStable, 0
	}
	slope := (nf*sumXY - sumX*sumY) / denominator
	meanY := sumY / nf

	strength := math.Abs(slope) / math.Max(meanY, 1) * 10
	if strength > 1 {
		strength = 1
	}

	switch {
	case slope > 0.01*meanY:
		return api.TrendIncreasing, strength
	case slope < -0.01*meanY:
		return api.TrendDecreasing, strength
	default:
		return api.TrendStable, strength
	}
}
