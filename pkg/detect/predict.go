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
	"time"

	"github.com/intentwatch/surge-pipeline/pkg/api"
)

const (
	continuationProbability = 0.7
	minTrendStrengthForCast = 0.5
	seasonalForecastHorizon = 60 * 24 * time.Hour
	maxSeasonalPredictions  = 2
)

// buildPredictions derives forward-looking predictions from ongoing surges,
// the baseline trend and upcoming seasonal patterns, sorted by probability
// descending.
func buildPredictions(events []*SurgeEvent, baseline *Baseline, seasonal []SeasonalMatch, now time.Time) []Prediction {
	predictions := []Prediction{}

	var ongoing []*SurgeEvent
	for _, e := range events {
		if e.IsOngoing {
			ongoing = append(ongoing, e)
		}
	}
	if len(ongoing) > 0 {
		confidence := float64(0)
		basedOn := make([]string, 0, len(ongoing))
		for _, e := range ongoing {
			basedOn = append(basedOn, e.ID)
			if e.Confidence > confidence {
				confidence = e.Confidence
			}
		}
		predictions = append(predictions, Prediction{
			Type:              api.PredictionContinuation,
			Probability:       continuationProbability,
			ExpectedTimeframe: "24-72 hours",
			BasedOn:           basedOn,
			Confidence:        confidence,
		})
	}

	if baseline.TrendStrength > minTrendStrengthForCast {
		switch baseline.TrendDirection {
		case api.TrendIncreasing:
			predictions = append(predictions, Prediction{
				Type:              api.PredictionUpcomingSurge,
				Probability:       baseline.TrendStrength,
				ExpectedTimeframe: "1-2 weeks",
				BasedOn:           []string{"increasing baseline trend"},
				Confidence:        baseline.TrendStrength,
			})
		case api.TrendDecreasing:
			predictions = append(predictions, Prediction{
				Type:              api.PredictionDecline,
				Probability:       baseline.TrendStrength,
				ExpectedTimeframe: "1-2 weeks",
				BasedOn:           []string{"decreasing baseline trend"},
				Confidence:        baseline.TrendStrength,
			})
		}
	}

	added := 0
	for _, match := range seasonal {
		if added >= maxSeasonalPredictions {
			break
		}
		until := match.NextOccurrence.Sub(now)
		if until <= 0 || until > seasonalForecastHorizon {
			continue
		}
		days := int(until.Hours() / 24)
		predictions = append(predictions, Prediction{
			Type:              api.PredictionUpcomingSurge,
			Probability:       match.Confidence,
			ExpectedTimeframe: fmt.Sprintf("%d days (%s)", days, match.Pattern),
			BasedOn:           []string{match.Pattern},
			Confidence:        match.Confidence,
		})
		added++
	}

	sort.SliceStable(predictions, func(i, j int) bool {
		return predictions[i].Probability > predictions[j].Probability
	})
	return predictions
}

// surgeTypeOrder breaks frequency ties in summary aggregation.
var surgeTypeOrder = []api.SurgeType{
	api.SurgeTypeSuddenSpike,
	api.SurgeTypeSustainedTrend,
	api.SurgeTypeRecurringPattern,
	api.SurgeTypeEventDriven,
	api.SurgeTypeCompetitorRelated,
}

// buildSummary aggregates counts over all detected surges. An empty input
// yields a zero-valued summary carrying sudden-spike as the placeholder type;
// downstream consumers rely on the type never being empty.
func buildSummary(events []*SurgeEvent) Summary {
	summary := Summary{MostCommonSurgeType: api.SurgeTypeSuddenSpike}
	if len(events) == 0 {
		return summary
	}

	summary.TotalSurgesDetected = len(events)
	typeCounts := map[api.SurgeType]int{}
	totalDuration := float64(0)
	intentCounts := newTagCounter()
	competitorCounts := newTagCounter()

	for _, e := range events {
		if e.IsOngoing {
			summary.ActiveSurges++
		}
		if e.Severity == api.SeverityCritical {
			summary.CriticalSurges++
		}
		typeCounts[e.Type]++
		totalDuration += e.DurationHours
		for _, intent := range e.AffectedIntents {
			intentCounts.inc(intent)
		}
		for _, competitor := range e.RelatedCompetitors {
			competitorCounts.inc(competitor)
		}
	}

	summary.AvgSurgeDurationHrs = totalDuration / float64(len(events))

	best := 0
	for _, t := range surgeTypeOrder {
		if typeCounts[t] > best {
			best = typeCounts[t]
			summary.MostCommonSurgeType = t
		}
	}

	summary.TopIntentCategories = intentCounts.top(5)
	summary.TopCompetitors = competitorCounts.top(5)
	return summary
}

// tagCounter counts tag occurrences across events while preserving
// first-appearance order for deterministic tie-breaking.
type tagCounter struct {
	counts map[string]int
	order  []string
}

func newTagCounter() *tagCounter {
	return &tagCounter{counts: map[string]int{}}
}

func (tc *tagCounter) inc(tag string) {
	if _, ok := tc.counts[tag]; !ok {
		tc.order = append(tc.order, tag)
	}
	tc.counts[tag]++
}

func (tc *tagCounter) top(k int) []string {
	sorted := make([]string, len(tc.order))
	copy(sorted, tc.order)
	sort.SliceStable(sorted, func(i, j int) bool {
		return tc.counts[sorted[i]] > tc.counts[sorted[j]]
	})
	if len(sorted) > k {
		sorted = sorted[:k]
	}
	return sorted
}
