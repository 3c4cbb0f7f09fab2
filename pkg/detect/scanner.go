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
	"math"
	"sort"
	"time"

	"github.com/intentwatch/surge-pipeline/pkg/api"
)

type scanState int

const (
	scanIdle scanState = iota
	scanAccumulating
)

// candidateSurge is an open surge event being accumulated by the scanner.
// Peak and tag sets are mutated while the run continues; everything else is
// computed once at finalization.
type candidateSurge struct {
	startTime     time.Time
	peakTime      time.Time
	peakValue     float64
	lastPointTime time.Time
	sources       *orderedSet
	intents       *orderedSet
	competitors   *orderedSet
}

// surgeScanner walks a series chronologically and accumulates contiguous
// above-threshold runs into candidate surge events.
type surgeScanner struct {
	cfg       *api.SurgeDetection
	baseline  *Baseline
	state     scanState
	candidate *candidateSurge
	events    []*SurgeEvent
}

func newSurgeScanner(cfg *api.SurgeDetection, baseline *Baseline) *surgeScanner {
	return &surgeScanner{cfg: cfg, baseline: baseline, state: scanIdle}
}

// isSurging evaluates the per-point surge condition: both the z-score and the
// percentage increase thresholds must be met.
func (s *surgeScanner) isSurging(count float64) bool {
	stdDevs := (count - s.baseline.Mean) / s.baseline.StdDev
	pctIncrease := (count - s.baseline.Mean) / math.Max(s.baseline.Mean, 1) * 100
	return stdDevs >= s.cfg.MinStandardDeviations && pctIncrease >= s.cfg.MinPercentageIncrease
}

// step feeds one point through the idle/accumulating automaton.
func (s *surgeScanner) step(p SignalDataPoint, fin *finalizer) {
	surging := s.isSurging(p.Count)
	switch s.state {
	case scanIdle:
		if surging {
			s.open(p)
			s.state = scanAccumulating
		}
	case scanAccumulating:
		if surging {
			s.accumulate(p)
		} else {
			s.close(fin, s.candidate.lastPointTime, false)
			s.state = scanIdle
		}
	}
	if s.state == scanAccumulating {
		s.candidate.lastPointTime = p.Timestamp
	}
}

// finish closes a run left open at the end of the series as ongoing.
func (s *surgeScanner) finish(fin *finalizer) {
	if s.state == scanAccumulating {
		s.close(fin, s.candidate.lastPointTime, true)
		s.state = scanIdle
	}
}

func (s *surgeScanner) open(p SignalDataPoint) {
	c := &candidateSurge{
		startTime:     p.Timestamp,
		peakTime:      p.Timestamp,
		peakValue:     p.Count,
		lastPointTime: p.Timestamp,
		sources:       newOrderedSet(),
		intents:       newOrderedSet(),
		competitors:   newOrderedSet(),
	}
	c.addTags(p)
	s.candidate = c
}

func (s *surgeScanner) accumulate(p SignalDataPoint) {
	c := s.candidate
	if p.Count > c.peakValue {
		c.peakValue = p.Count
		c.peakTime = p.Timestamp
	}
	c.addTags(p)
}

func (s *surgeScanner) close(fin *finalizer, end time.Time, ongoing bool) {
	event := fin.finalize(s.candidate, s.baseline, end, ongoing)
	s.events = append(s.events, event)
	s.candidate = nil
}

func (c *candidateSurge) addTags(p SignalDataPoint) {
	c.sources.add(p.Source)
	c.intents.add(p.IntentCategory)
	c.competitors.add(p.Competitor)
}

// scanSurges runs the full scan over a chronologically ordered series and
// returns finalized events sorted by standard deviations above baseline,
// descending. A zero-stddev baseline can never produce surges.
func scanSurges(series *TimeSeries, baseline *Baseline, cfg *api.SurgeDetection, fin *finalizer) []*SurgeEvent {
	if baseline.StdDev == 0 {
		return nil
	}

	scanner := newSurgeScanner(cfg, baseline)
	for _, p := range series.Points {
		scanner.step(p, fin)
	}
	scanner.finish(fin)

	events := scanner.events
	sort.SliceStable(events, func(i, j int) bool {
		return events[i].StdDevsAbove > events[j].StdDevsAbove
	})
	return events
}

// orderedSet is a string set preserving insertion order, used to accumulate
// affected sources, intents and competitors without duplicates.
type orderedSet struct {
	seen  map[string]bool
	items []string
}

func newOrderedSet() *orderedSet {
	return &orderedSet{seen: map[string]bool{}}
}

func (o *orderedSet) add(item string) {
	if item == "" || o.seen[item] {
		return
	}
	o.seen[item] = true
	o.items = append(o.items, item)
}

func (o *orderedSet) contains(item string) bool {
	return o.seen[item]
}

func (o *orderedSet) list() []string {
	return o.items
}

func surgeID(start time.Time) string {
	return fmt.Sprintf("surge-%d", start.Unix())
}
