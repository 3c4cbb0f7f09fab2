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
	"time"

	"github.com/intentwatch/surge-pipeline/pkg/api"
)

// SignalDataPoint is a single timestamped activity observation produced by the
// upstream signal collector. It is consumed read-only.
type SignalDataPoint struct {
	Timestamp      time.Time         `json:"timestamp"`
	Count          float64           `json:"count"`
	Source         string            `json:"source,omitempty"`
	IntentCategory string            `json:"intentCategory,omitempty"`
	Competitor     string            `json:"competitor,omitempty"`
	Metadata       map[string]string `json:"metadata,omitempty"`
}

// TimeSeries is an ordered sequence of data points with a declared granularity.
// Points are expected to be sorted by timestamp ascending; Analyze sorts a copy
// defensively since the scan depends on chronological order.
type TimeSeries struct {
	Points      []SignalDataPoint `json:"points"`
	Granularity api.Granularity   `json:"granularity,omitempty"`
	Start       time.Time         `json:"start,omitempty"`
	End         time.Time         `json:"end,omitempty"`
}

// Baseline holds the historical statistics a series is compared against.
// It is recomputed fresh on every analysis, never mutated in place.
type Baseline struct {
	Mean           float64            `json:"mean"`
	StdDev         float64            `json:"stdDev"`
	Median         float64            `json:"median"`
	P75            float64            `json:"p75"`
	P90            float64            `json:"p90"`
	P95            float64            `json:"p95"`
	Min            float64            `json:"min"`
	Max            float64            `json:"max"`
	Count          int                `json:"count"`
	TrendDirection api.TrendDirection `json:"trendDirection"`
	TrendStrength  float64            `json:"trendStrength"`
}

// SurgeEvent is a finalized contiguous run of above-threshold activity.
type SurgeEvent struct {
	ID                 string            `json:"id"`
	Type               api.SurgeType     `json:"type"`
	Severity           api.SurgeSeverity `json:"severity"`
	StartTime          time.Time         `json:"startTime"`
	PeakTime           time.Time         `json:"peakTime"`
	EndTime            time.Time         `json:"endTime"`
	PeakValue          float64           `json:"peakValue"`
	BaselineValue      float64           `json:"baselineValue"`
	PercentageIncrease float64           `json:"percentageIncrease"`
	StdDevsAbove       float64           `json:"stdDevsAbove"`
	AffectedSources    []string          `json:"affectedSources,omitempty"`
	AffectedIntents    []string          `json:"affectedIntents,omitempty"`
	RelatedCompetitors []string          `json:"relatedCompetitors,omitempty"`
	PotentialCauses    []string          `json:"potentialCauses,omitempty"`
	Confidence         float64           `json:"confidence"`
	IsOngoing          bool              `json:"isOngoing"`
	DurationHours      float64           `json:"durationHours"`
	DurationDays       float64           `json:"durationDays"`
	Recommendation     string            `json:"recommendation"`
}

// SeasonalMatch reports a recurring calendar-month pattern found in a series.
type SeasonalMatch struct {
	Pattern        string    `json:"pattern"`
	Confidence     float64   `json:"confidence"`
	NextOccurrence time.Time `json:"nextOccurrence"`
}

// ActivityAssessment classifies the most recent data point against baseline.
type ActivityAssessment struct {
	Level          api.ActivityLevel `json:"level"`
	CurrentValue   float64           `json:"currentValue"`
	PercentileRank float64           `json:"percentileRank"`
	StdDevsFrom    float64           `json:"stdDevsFromBaseline"`
}

// Prediction is a forward-looking statement derived from surges, trend and seasonality.
type Prediction struct {
	Type              api.PredictionType `json:"type"`
	Probability       float64            `json:"probability"`
	ExpectedTimeframe string             `json:"expectedTimeframe"`
	BasedOn           []string           `json:"basedOn,omitempty"`
	Confidence        float64            `json:"confidence"`
}

// Summary aggregates counts across all detected surges.
type Summary struct {
	TotalSurgesDetected int           `json:"totalSurgesDetected"`
	ActiveSurges        int           `json:"activeSurges"`
	CriticalSurges      int           `json:"criticalSurges"`
	AvgSurgeDurationHrs float64       `json:"avgSurgeDurationHours"`
	MostCommonSurgeType api.SurgeType `json:"mostCommonSurgeType"`
	TopIntentCategories []string      `json:"topIntentCategories,omitempty"`
	TopCompetitors      []string      `json:"topCompetitors,omitempty"`
}

// AnalysisResult is the aggregate output of a full analysis run.
type AnalysisResult struct {
	Surges          []*SurgeEvent      `json:"surges"`
	Baseline        *Baseline          `json:"baseline"`
	CurrentActivity ActivityAssessment `json:"currentActivity"`
	Predictions     []Prediction       `json:"predictions"`
	Summary         Summary            `json:"summary"`
}

// AnalysisContext optionally supplies external knowledge used for cause
// attribution only; it does not alter the detection math.
type AnalysisContext struct {
	Competitors []string `json:"competitors,omitempty"`
	RecentNews  []string `json:"recentNews,omitempty"`
	ProfileType string   `json:"profileType,omitempty"`
}

// CurrentSurgeStatus is the result of the cheap single-point surge check.
type CurrentSurgeStatus struct {
	Surging  bool              `json:"surging"`
	Severity api.SurgeSeverity `json:"severity,omitempty"`
	StdDevs  float64           `json:"stdDevs"`
}
