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
	"fmt"
	"sort"
	"sync"

	"github.com/Knetic/govaluate"
	"github.com/benbjohnson/clock"
	"github.com/intentwatch/surge-pipeline/pkg/api"
	"github.com/intentwatch/surge-pipeline/pkg/operational"
	log "github.com/sirupsen/logrus"
)

var dlog = log.WithField("component", "detect.Detector")

const (
	defaultMinStandardDeviations    = 2.0
	defaultMinPercentageIncrease    = 50.0
	defaultMinDataPointsForBaseline = 14
	defaultSurgeWindowHours         = 24
	defaultTrendWindowDays          = 7
	defaultBaselineWindowDays       = 30
)

// Detector is the surge detection service. The configuration it holds is only
// ever replaced wholesale (copy-on-write merge), never mutated field by field,
// so concurrent analyses need no coordination beyond the config read lock.
type Detector struct {
	mu      sync.RWMutex
	cfg     api.SurgeDetection
	filter  *govaluate.EvaluableExpression
	clock   clock.Clock
	causes  *causeTable
	metrics *detectorMetrics
}

// DefaultConfig returns the stock detection configuration.
func DefaultConfig() api.SurgeDetection {
	return api.SurgeDetection{
		MinStandardDeviations:    defaultMinStandardDeviations,
		MinPercentageIncrease:    defaultMinPercentageIncrease,
		MinDataPointsForBaseline: defaultMinDataPointsForBaseline,
		SurgeWindowHours:         defaultSurgeWindowHours,
		TrendWindowDays:          defaultTrendWindowDays,
		BaselineWindowDays:       defaultBaselineWindowDays,
		SeverityThresholds: api.SeverityThresholds{
			Minor:       2.0,
			Moderate:    2.5,
			Significant: 3.0,
			Critical:    4.0,
		},
	}
}

// NewDetector builds a detector from the given configuration; zero-valued
// fields fall back to defaults. opMetrics may be nil to disable operational
// metrics.
func NewDetector(cfg *api.SurgeDetection, opMetrics *operational.Metrics) (*Detector, error) {
	effective := DefaultConfig()
	if cfg != nil {
		applyOverrides(&effective, cfg)
	}
	if err := validateConfig(&effective); err != nil {
		return nil, err
	}
	filter, err := compileFilter(effective.Filter)
	if err != nil {
		return nil, err
	}
	dlog.Debugf("NewDetector config = %+v", effective)
	return &Detector{
		cfg:     effective,
		filter:  filter,
		clock:   clock.New(),
		causes:  newCauseTable(),
		metrics: newDetectorMetrics(opMetrics),
	}, nil
}

func applyOverrides(dst, src *api.SurgeDetection) {
	if src.MinStandardDeviations != 0 {
		dst.MinStandardDeviations = src.MinStandardDeviations
	}
	if src.MinPercentageIncrease != 0 {
		dst.MinPercentageIncrease = src.MinPercentageIncrease
	}
	if src.MinDataPointsForBaseline != 0 {
		dst.MinDataPointsForBaseline = src.MinDataPointsForBaseline
	}
	if src.SurgeWindowHours != 0 {
		dst.SurgeWindowHours = src.SurgeWindowHours
	}
	if src.TrendWindowDays != 0 {
		dst.TrendWindowDays = src.TrendWindowDays
	}
	if src.BaselineWindowDays != 0 {
		dst.BaselineWindowDays = src.BaselineWindowDays
	}
	if src.SeverityThresholds != (api.SeverityThresholds{}) {
		dst.SeverityThresholds = src.SeverityThresholds
	}
	if src.EnableSeasonalDetection != nil {
		dst.EnableSeasonalDetection = src.EnableSeasonalDetection
	}
	if src.Filter != "" {
		dst.Filter = src.Filter
	}
}

func validateConfig(cfg *api.SurgeDetection) error {
	if cfg.MinStandardDeviations <= 0 {
		return fmt.Errorf("minStandardDeviations must be positive, got %v", cfg.MinStandardDeviations)
	}
	if cfg.MinPercentageIncrease < 0 {
		return fmt.Errorf("minPercentageIncrease must not be negative, got %v", cfg.MinPercentageIncrease)
	}
	if cfg.MinDataPointsForBaseline < 1 {
		return fmt.Errorf("minDataPointsForBaseline must be at least 1, got %d", cfg.MinDataPointsForBaseline)
	}
	t := cfg.SeverityThresholds
	if t.Minor > t.Moderate || t.Moderate > t.Significant || t.Significant > t.Critical {
		return fmt.Errorf("severity thresholds must be monotonically increasing: %+v", t)
	}
	return nil
}

func compileFilter(expr string) (*govaluate.EvaluableExpression, error) {
	if expr == "" {
		return nil, nil
	}
	compiled, err := govaluate.NewEvaluableExpression(expr)
	if err != nil {
		return nil, fmt.Errorf("can't compile filter expression %q: %w", expr, err)
	}
	return compiled, nil
}

// Config returns a copy of the current configuration.
func (d *Detector) Config() api.SurgeDetection {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.cfg
}

// UpdateConfig merges the partial configuration over the current one and
// atomically replaces it. Fields absent from the partial map are preserved.
func (d *Detector) UpdateConfig(partial map[string]interface{}) error {
	merged := d.Config()
	if err := decodePartialConfig(partial, &merged); err != nil {
		return err
	}
	if err := validateConfig(&merged); err != nil {
		return err
	}
	filter, err := compileFilter(merged.Filter)
	if err != nil {
		return err
	}

	d.mu.Lock()
	d.cfg = merged
	d.filter = filter
	d.mu.Unlock()
	dlog.Infof("configuration updated: %+v", merged)
	return nil
}

// Analyze runs the full detection pipeline over a series. It is a pure
// function of the series, the optional context and the configuration held at
// call time; concurrent calls are safe.
func (d *Detector) Analyze(series *TimeSeries, ctx *AnalysisContext) *AnalysisResult {
	d.mu.RLock()
	cfg := d.cfg
	filter := d.filter
	d.mu.RUnlock()

	ordered := d.prepareSeries(series, filter)
	baseline := ComputeBaseline(ordered, cfg.MinDataPointsForBaseline)
	now := d.clock.Now()

	fin := newFinalizer(&cfg, ctx, d.causes, now)
	events := scanSurges(ordered, baseline, &cfg, fin)

	var seasonal []SeasonalMatch
	if cfg.SeasonalDetectionEnabled() {
		seasonal = detectSeasonalPatterns(ordered, now)
	}

	result := &AnalysisResult{
		Surges:          events,
		Baseline:        baseline,
		CurrentActivity: assessActivity(ordered, baseline, &cfg),
		Predictions:     buildPredictions(events, baseline, seasonal, now),
		Summary:         buildSummary(events),
	}
	if result.Surges == nil {
		result.Surges = []*SurgeEvent{}
	}
	d.metrics.observeAnalysis(events)
	dlog.Debugf("Analyze: %d points, %d surges, activity=%s",
		len(ordered.Points), len(events), result.CurrentActivity.Level)
	return result
}

// IsCurrentlySurging is the cheap single-point check reusing the severity
// thresholds, for callers that don't need full event extraction.
func (d *Detector) IsCurrentlySurging(currentValue float64, baseline *Baseline) CurrentSurgeStatus {
	cfg := d.Config()
	if baseline == nil || baseline.StdDev == 0 {
		return CurrentSurgeStatus{}
	}
	stdDevs := (currentValue - baseline.Mean) / baseline.StdDev
	status := CurrentSurgeStatus{StdDevs: stdDevs}
	if stdDevs >= cfg.MinStandardDeviations {
		status.Surging = true
		status.Severity = severityFor(stdDevs, &cfg.SeverityThresholds)
	}
	return status
}

// DetectSeasonalPatterns is the standalone seasonal check.
func (d *Detector) DetectSeasonalPatterns(series *TimeSeries) []SeasonalMatch {
	return detectSeasonalPatterns(series, d.clock.Now())
}

// prepareSeries defensively sorts a copy of the points chronologically and
// applies the configured filter expression. The input series is never mutated.
func (d *Detector) prepareSeries(series *TimeSeries, filter *govaluate.EvaluableExpression) *TimeSeries {
	if series == nil {
		return &TimeSeries{}
	}
	out := *series
	points := make([]SignalDataPoint, 0, len(series.Points))
	filtered := 0
	for _, p := range series.Points {
		if filter != nil && !evalPointFilter(filter, &p) {
			filtered++
			continue
		}
		points = append(points, p)
	}
	d.metrics.observeFilteredPoints(filtered)
	sort.SliceStable(points, func(i, j int) bool {
		return points[i].Timestamp.Before(points[j].Timestamp)
	})
	out.Points = points
	return &out
}

func evalPointFilter(filter *govaluate.EvaluableExpression, p *SignalDataPoint) bool {
	result, err := filter.Evaluate(map[string]interface{}{
		"count":      p.Count,
		"source":     p.Source,
		"intent":     p.IntentCategory,
		"competitor": p.Competitor,
	})
	if err != nil {
		dlog.Debugf("filter evaluation error, keeping point: %v", err)
		return true
	}
	keep, ok := result.(bool)
	return !ok || keep
}
