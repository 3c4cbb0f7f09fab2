/*
 * Copyright (C) 2021 IBM, Inc.
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

package test

import (
	"time"

	"github.com/intentwatch/surge-pipeline/pkg/api"
	"github.com/intentwatch/surge-pipeline/pkg/detect"
)

// DailySeries builds a daily-granularity series with one point per count,
// starting at start.
func DailySeries(start time.Time, counts []float64) *detect.TimeSeries {
	points := make([]detect.SignalDataPoint, 0, len(counts))
	for i, c := range counts {
		points = append(points, detect.SignalDataPoint{
			Timestamp: start.Add(time.Duration(i) * 24 * time.Hour),
			Count:     c,
		})
	}
	return &detect.TimeSeries{
		Points:      points,
		Granularity: api.GranularityDaily,
		Start:       start,
		End:         start.Add(time.Duration(len(counts)) * 24 * time.Hour),
	}
}

// ConstantSeries builds a daily series of n identical counts.
func ConstantSeries(start time.Time, n int, count float64) *detect.TimeSeries {
	counts := make([]float64, n)
	for i := range counts {
		counts[i] = count
	}
	return DailySeries(start, counts)
}

// TagPoints applies source/intent/competitor tags to the points in [from, to).
func TagPoints(series *detect.TimeSeries, from, to int, source, intent, competitor string) {
	for i := from; i < to && i < len(series.Points); i++ {
		series.Points[i].Source = source
		series.Points[i].IntentCategory = intent
		series.Points[i].Competitor = competitor
	}
}

// MonthlySpreadSeries builds a daily series spanning a full year with
// baseCount everywhere except the given months, which get elevatedCount.
// It emits pointsPerMonth points at the start of each month.
func MonthlySpreadSeries(year int, baseCount, elevatedCount float64, elevated map[time.Month]bool, pointsPerMonth int) *detect.TimeSeries {
	series := &detect.TimeSeries{Granularity: api.GranularityDaily}
	for month := time.January; month <= time.December; month++ {
		count := baseCount
		if elevated[month] {
			count = elevatedCount
		}
		for day := 1; day <= pointsPerMonth; day++ {
			series.Points = append(series.Points, detect.SignalDataPoint{
				Timestamp: time.Date(year, month, day, 12, 0, 0, 0, time.UTC),
				Count:     count,
			})
		}
	}
	series.Start = series.Points[0].Timestamp
	series.End = series.Points[len(series.Points)-1].Timestamp
	return series
}
