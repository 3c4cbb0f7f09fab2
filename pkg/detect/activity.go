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
	"github.com/intentwatch/surge-pipeline/pkg/api"
)

// assessActivity classifies the most recent data point: its percentile rank
// among all historical values and its z-distance from baseline. A zero-stddev
// baseline always yields a normal level.
func assessActivity(series *TimeSeries, baseline *Baseline, cfg *api.SurgeDetection) ActivityAssessment {
	assessment := ActivityAssessment{Level: api.ActivityNormal}
	if len(series.Points) == 0 {
		return assessment
	}

	latest := series.Points[0]
	for _, p := range series.Points[1:] {
		if p.Timestamp.After(latest.Timestamp) {
			latest = p
		}
	}
	assessment.CurrentValue = latest.Count

	below := 0
	for _, p := range series.Points {
		if p.Count < latest.Count {
			below++
		}
	}
	assessment.PercentileRank = float64(below) / float64(len(series.Points)) * 100

	if baseline.StdDev == 0 {
		return assessment
	}
	stdDevs := (latest.Count - baseline.Mean) / baseline.StdDev
	assessment.StdDevsFrom = stdDevs

	switch {
	case stdDevs >= cfg.MinStandardDeviations:
		assessment.Level = api.ActivitySurging
	case stdDevs >= 1:
		assessment.Level = api.ActivityElevated
	case stdDevs <= -1:
		assessment.Level = api.ActivityBelowBaseline
	default:
		assessment.Level = api.ActivityNormal
	}
	return assessment
}
