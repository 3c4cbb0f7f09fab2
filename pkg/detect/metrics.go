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
	"github.com/intentwatch/surge-pipeline/pkg/operational"
	"github.com/prometheus/client_golang/prometheus"
)

var (
	analysesTotal = operational.DefineMetric(
		"analyses_total",
		"Counter of analysis runs performed",
		operational.TypeCounter,
	)
	surgesDetected = operational.DefineMetric(
		"surges_detected_total",
		"Counter of surge events detected, by severity",
		operational.TypeCounter,
		"severity",
	)
	pointsFiltered = operational.DefineMetric(
		"points_filtered_total",
		"Counter of data points skipped by the configured filter expression",
		operational.TypeCounter,
	)
)

type detectorMetrics struct {
	analyses       prometheus.Counter
	surges         *prometheus.CounterVec
	filteredPoints prometheus.Counter
}

func newDetectorMetrics(opMetrics *operational.Metrics) *detectorMetrics {
	if opMetrics == nil {
		return nil
	}
	return &detectorMetrics{
		analyses:       opMetrics.NewCounter(&analysesTotal),
		surges:         opMetrics.NewCounterVec(&surgesDetected),
		filteredPoints: opMetrics.NewCounter(&pointsFiltered),
	}
}

func (m *detectorMetrics) observeAnalysis(events []*SurgeEvent) {
	if m == nil {
		return
	}
	m.analyses.Inc()
	for _, e := range events {
		m.surges.WithLabelValues(string(e.Severity)).Inc()
	}
}

func (m *detectorMetrics) observeFilteredPoints(n int) {
	if m == nil || n == 0 {
		return
	}
	m.filteredPoints.Add(float64(n))
}
