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
	"testing"
	"time"

	"github.com/intentwatch/surge-pipeline/pkg/api"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// monthlySeries spreads pointsPerMonth points over every month of a year,
// with elevatedCount in the given months and baseCount elsewhere.
func monthlySeries(year int, baseCount, elevatedCount float64, elevated map[time.Month]bool, pointsPerMonth int) *TimeSeries {
	series := &TimeSeries{Granularity: api.GranularityDaily}
	for month := time.January; month <= time.December; month++ {
		count := baseCount
		if elevated[month] {
			count = elevatedCount
		}
		for day := 1; day <= pointsPerMonth; day++ {
			series.Points = append(series.Points, SignalDataPoint{
				Timestamp: time.Date(year, month, day, 12, 0, 0, 0, time.UTC),
				Count:     count,
			})
		}
	}
	return series
}

func Test_SeasonalPatternForMonth(t *testing.T) {
	name, ok := seasonalPatternForMonth(time.November)
	require.True(t, ok)
	assert.Equal(t, "q4-budget-flush", name)

	// February belongs to two patterns; table order wins
	name, ok = seasonalPatternForMonth(time.February)
	require.True(t, ok)
	assert.Equal(t, "new-year-planning", name)

	_, ok = seasonalPatternForMonth(time.May)
	assert.False(t, ok)
}

func Test_NextOccurrence(t *testing.T) {
	q4 := &seasonalPatterns[0]

	// mid-year: first pattern month still ahead
	now := time.Date(2024, 6, 15, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, time.Date(2024, 10, 1, 0, 0, 0, 0, time.UTC), q4.nextOccurrence(now))

	// inside the pattern: later months of the same pattern still count
	now = time.Date(2024, 10, 20, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, time.Date(2024, 11, 1, 0, 0, 0, 0, time.UTC), q4.nextOccurrence(now))

	// past the last pattern month: roll to next year
	now = time.Date(2024, 12, 5, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, time.Date(2025, 10, 1, 0, 0, 0, 0, time.UTC), q4.nextOccurrence(now))
}

func Test_DetectSeasonalQ4Elevation(t *testing.T) {
	now := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	series := monthlySeries(2023, 10, 30, map[time.Month]bool{
		time.October:  true,
		time.November: true,
		time.December: true,
	}, 4)

	matches := detectSeasonalPatterns(series, now)
	require.NotEmpty(t, matches)
	assert.Equal(t, "q4-budget-flush", matches[0].Pattern)
	// in-mean 30 over out-mean 10: ratio 3, confidence capped at 1
	assert.Equal(t, 1.0, matches[0].Confidence)
	assert.Equal(t, time.Date(2024, 10, 1, 0, 0, 0, 0, time.UTC), matches[0].NextOccurrence)
}

func Test_DetectSeasonalConfidenceScale(t *testing.T) {
	now := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	// ratio 1.4: just above the match threshold
	series := monthlySeries(2023, 10, 14, map[time.Month]bool{
		time.October:  true,
		time.November: true,
		time.December: true,
	}, 4)

	matches := detectSeasonalPatterns(series, now)
	require.Len(t, matches, 1)
	assert.Equal(t, "q4-budget-flush", matches[0].Pattern)
	assert.InDelta(t, 0.2, matches[0].Confidence, 1e-9)
}

func Test_DetectSeasonalBelowRatio(t *testing.T) {
	now := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	series := monthlySeries(2023, 10, 12, map[time.Month]bool{
		time.October: true,
	}, 4)
	assert.Empty(t, detectSeasonalPatterns(series, now))
}

func Test_DetectSeasonalSmallBuckets(t *testing.T) {
	now := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	// one point per month: two-month patterns fall below the bucket minimum
	// and are skipped rather than scored
	series := monthlySeries(2023, 1, 100, map[time.Month]bool{
		time.June: true,
		time.July: true,
	}, 1)
	for _, m := range detectSeasonalPatterns(series, now) {
		assert.NotEqual(t, "mid-year-review", m.Pattern)
		assert.NotEqual(t, "new-year-planning", m.Pattern)
	}
}

func Test_DetectSeasonalSortedByConfidence(t *testing.T) {
	now := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
	// q4 strongly elevated; september/october mildly elevated through the
	// back-to-business overlap
	series := monthlySeries(2023, 10, 40, map[time.Month]bool{
		time.October:  true,
		time.November: true,
		time.December: true,
	}, 4)

	matches := detectSeasonalPatterns(series, now)
	require.GreaterOrEqual(t, len(matches), 2)
	for i := 1; i < len(matches); i++ {
		assert.GreaterOrEqual(t, matches[i-1].Confidence, matches[i].Confidence)
	}
	assert.Equal(t, "q4-budget-flush", matches[0].Pattern)
}
