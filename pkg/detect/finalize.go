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
	"strings"
	"time"

	"github.com/intentwatch/surge-pipeline/pkg/api"
)

// finalizer computes the derived fields of a closed candidate surge exactly
// once: duration, classification, cause attribution, confidence and the
// recommendation string.
type finalizer struct {
	cfg    *api.SurgeDetection
	ctx    *AnalysisContext
	causes *causeTable
	now    time.Time
}

func newFinalizer(cfg *api.SurgeDetection, ctx *AnalysisContext, causes *causeTable, now time.Time) *finalizer {
	if ctx == nil {
		ctx = &AnalysisContext{}
	}
	return &finalizer{cfg: cfg, ctx: ctx, causes: causes, now: now}
}

func (f *finalizer) finalize(c *candidateSurge, baseline *Baseline, end time.Time, ongoing bool) *SurgeEvent {
	stdDevsAbove := (c.peakValue - baseline.Mean) / baseline.StdDev
	pctIncrease := (c.peakValue - baseline.Mean) / math.Max(baseline.Mean, 1) * 100

	endOrNow := end
	if ongoing {
		endOrNow = f.now
	}
	durationHours := endOrNow.Sub(c.startTime).Hours()
	durationDays := durationHours / 24

	newsCauses := f.causes.matchNews(f.ctx.RecentNews, f.ctx.Competitors)
	causes := f.attributeCauses(newsCauses, c)

	surgeType := f.classifyType(c, len(newsCauses) > 0, durationDays)
	severity := severityFor(stdDevsAbove, &f.cfg.SeverityThresholds)
	confidence := f.scoreConfidence(stdDevsAbove, c.sources.list(), causes, durationDays, baseline.Count)

	event := &SurgeEvent{
		ID:                 surgeID(c.startTime),
		Type:               surgeType,
		Severity:           severity,
		StartTime:          c.startTime,
		PeakTime:           c.peakTime,
		EndTime:            end,
		PeakValue:          c.peakValue,
		BaselineValue:      baseline.Mean,
		PercentageIncrease: pctIncrease,
		StdDevsAbove:       stdDevsAbove,
		AffectedSources:    c.sources.list(),
		AffectedIntents:    c.intents.list(),
		RelatedCompetitors: c.competitors.list(),
		PotentialCauses:    causes,
		Confidence:         confidence,
		IsOngoing:          ongoing,
		DurationHours:      durationHours,
		DurationDays:       durationDays,
	}
	event.Recommendation = recommend(event)
	return event
}

// attributeCauses merges news-pattern causes with competitor, seasonal and
// intent-specific causes, deduplicated in attribution order.
func (f *finalizer) attributeCauses(newsCauses []string, c *candidateSurge) []string {
	set := newOrderedSet()
	for _, cause := range newsCauses {
		set.add(cause)
	}
	if len(c.competitors.list()) > 0 {
		set.add("competitor activity")
	}
	if name, ok := seasonalPatternForMonth(c.startTime.Month()); ok {
		set.add(fmt.Sprintf("seasonal pattern (%s)", name))
	}
	for _, intent := range c.intents.list() {
		if cause, ok := intentCauses[intent]; ok {
			set.add(cause)
		}
	}
	return set.list()
}

// classifyType picks the surge type; first match wins.
func (f *finalizer) classifyType(c *candidateSurge, hasNewsCause bool, durationDays float64) api.SurgeType {
	_, seasonalStart := seasonalPatternForMonth(c.startTime.Month())
	switch {
	case len(c.competitors.list()) > 0:
		return api.SurgeTypeCompetitorRelated
	case hasNewsCause:
		return api.SurgeTypeEventDriven
	case durationDays <= 3:
		return api.SurgeTypeSuddenSpike
	case durationDays >= 7 && seasonalStart:
		return api.SurgeTypeRecurringPattern
	case durationDays >= 7:
		return api.SurgeTypeSustainedTrend
	default:
		return api.SurgeTypeSuddenSpike
	}
}

// severityFor returns the highest tier whose threshold the z-score meets,
// checked from critical down.
func severityFor(stdDevsAbove float64, t *api.SeverityThresholds) api.SurgeSeverity {
	switch {
	case stdDevsAbove >= t.Critical:
		return api.SeverityCritical
	case stdDevsAbove >= t.Significant:
		return api.SeveritySignificant
	case stdDevsAbove >= t.Moderate:
		return api.SeverityModerate
	default:
		return api.SeverityMinor
	}
}

// scoreConfidence starts from 0.5 and adds bonus tiers for deviation
// magnitude, source diversity, cause attribution, duration and baseline
// sample richness, clamped to 1.
func (f *finalizer) scoreConfidence(stdDevsAbove float64, sources, causes []string, durationDays float64, baselineCount int) float64 {
	confidence := 0.5

	switch {
	case stdDevsAbove >= 4:
		confidence += 0.25
	case stdDevsAbove >= 3:
		confidence += 0.15
	case stdDevsAbove >= 2.5:
		confidence += 0.10
	}

	switch {
	case len(sources) >= 3:
		confidence += 0.15
	case len(sources) >= 2:
		confidence += 0.10
	}

	if len(causes) > 0 {
		confidence += 0.10
	}
	if durationDays >= 3 {
		confidence += 0.10
	}

	switch {
	case baselineCount >= 30:
		confidence += 0.10
	case baselineCount >= 14:
		confidence += 0.05
	}

	if confidence > 1 {
		confidence = 1
	}
	return confidence
}

// recommend builds the action string for an event. It is a deterministic
// function of severity, type, the ongoing flag and the affected tags.
func recommend(e *SurgeEvent) string {
	hasChurnIntent := false
	for _, intent := range e.AffectedIntents {
		if intent == IntentCompetitorChurn {
			hasChurnIntent = true
			break
		}
	}

	switch {
	case e.Severity == api.SeverityCritical && e.Type == api.SurgeTypeCompetitorRelated:
		return fmt.Sprintf("Urgent: competitor-driven surge detected. Launch a displacement campaign targeting %s accounts immediately.",
			strings.Join(e.RelatedCompetitors, ", "))
	case e.Severity == api.SeverityCritical && hasChurnIntent:
		return "Critical churn signals detected. Mobilize rapid-response outreach to at-risk accounts within 24 hours."
	case e.Severity == api.SeveritySignificant && e.IsOngoing:
		return "Significant surge still in progress. Escalate monitoring and alert the demand generation team."
	case e.Severity == api.SeverityModerate && e.Type == api.SurgeTypeSustainedTrend:
		return "Sustained growth in signal volume. Scale content and outreach resources to match demand."
	case e.Severity == api.SeverityModerate && e.Type == api.SurgeTypeRecurringPattern:
		return "Seasonal surge under way. Pre-position campaigns and budget ahead of the pattern peak."
	case e.Severity == api.SeverityMinor:
		return "Minor surge. Continue monitoring; no immediate action required."
	default:
		return "Surge detected. Review affected segments and adjust campaign targeting."
	}
}
