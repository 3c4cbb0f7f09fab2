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
	"time"
)

const (
	// minimum points required in each bucket before a pattern is considered
	minSeasonalBucketSize = 3
	// in-pattern vs out-of-pattern mean ratio required to report a match
	seasonalMatchRatio = 1.3
)

// seasonalPattern names a recurring set of calendar months with elevated
// buying activity.
type seasonalPattern struct {
	name   string
	months []time.Month
}

var seasonalPatterns = []seasonalPattern{
	{name: "q4-budget-flush", months: []time.Month{time.October, time.November, time.December}},
	{name: "new-year-planning", months: []time.Month{time.January, time.February}},
	{name: "tax-season", months: []time.Month{time.February, time.March, time.April}},
	{name: "mid-year-review", months: []time.Month{time.June, time.July}},
	{name: "back-to-business", months: []time.Month{time.September, time.October}},
}

func (p *seasonalPattern) containsMonth(m time.Month) bool {
	for _, month := range p.months {
		if month == m {
			return true
		}
	}
	return false
}

// seasonalPatternForMonth reports the first pattern (in table order) whose
// month set contains m.
func seasonalPatternForMonth(m time.Month) (string, bool) {
	for i := range seasonalPatterns {
		if seasonalPatterns[i].containsMonth(m) {
			return seasonalPatterns[i].name, true
		}
	}
	return "", false
}

// nextOccurrence returns the first day of the first pattern month strictly
// after the current month, rolling into next year if none remain.
func (p *seasonalPattern) nextOccurrence(now time.Time) time.Time {
	currentMonth := now.Month()
	next := time.Month(0)
	for _, m := range p.months {
		if m > currentMonth && (next == 0 || m < next) {
			next = m
		}
	}
	year := now.Year()
	if next == 0 {
		next = p.months[0]
		for _, m := range p.months {
			if m < next {
				next = m
			}
		}
		year++
	}
	return time.Date(year, next, 1, 0, 0, 0, 0, now.Location())
}

// detectSeasonalPatterns compares per-pattern monthly buckets against the rest
// of the series. Patterns lacking enough points in either bucket are skipped.
// Matches are sorted by confidence descending, ties kept in table order.
func detectSeasonalPatterns(series *TimeSeries, now time.Time) []SeasonalMatch {
	matches := []SeasonalMatch{}
	for i := range seasonalPatterns {
		pattern := &seasonalPatterns[i]

		var inSum, outSum float64
		var inCount, outCount int
		for _, p := range series.Points {
			if pattern.containsMonth(p.Timestamp.Month()) {
				inSum += p.Count
				inCount++
			} else {
				outSum += p.Count
				outCount++
			}
		}
		if inCount < minSeasonalBucketSize || outCount < minSeasonalBucketSize {
			continue
		}

		inMean := inSum / float64(inCount)
		outMean := outSum / float64(outCount)
		ratio := inMean / math.Max(outMean, 1)
		if ratio < seasonalMatchRatio {
			continue
		}

		matches = append(matches, SeasonalMatch{
			Pattern:        pattern.name,
			Confidence:     math.Min(1, (ratio-1)/2),
			NextOccurrence: pattern.nextOccurrence(now),
		})
	}

	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].Confidence > matches[j].Confidence
	})
	return matches
}
