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
	"regexp"
	"strings"
)

// High-signal intent categories carrying a built-in cause attribution.
const (
	IntentCompetitorChurn = "competitor-churn"
	IntentComplianceNeed  = "compliance-need"
)

var intentCauses = map[string]string{
	IntentCompetitorChurn: "competitor customer churn signals",
	IntentComplianceNeed:  "compliance-driven demand",
}

// causeRule pairs a pattern matched against news headlines with the cause
// label it attributes. The table is declarative so the rule set can be tested
// and extended independently of the detection math.
type causeRule struct {
	pattern *regexp.Regexp
	label   string
}

type causeTable struct {
	rules []causeRule
}

// defaultCauseRules covers the common surge drivers seen in B2B signal feeds.
var defaultCauseRules = []struct {
	expr  string
	label string
}{
	{`(?i)\b(launch|launches|launched|release[sd]?|unveil)`, "product-launch"},
	{`(?i)\b(funding|raised|series [a-z]\b)`, "funding-event"},
	{`(?i)\b(acquisition|acquire[sd]?|merger)`, "merger-acquisition"},
	{`(?i)\b(outage|downtime|incident)`, "service-outage"},
	{`(?i)\b(breach|hacked?|vulnerabilit)`, "security-incident"},
	{`(?i)\b(price|prices|pricing)`, "pricing-change"},
	{`(?i)\b(layoffs?|restructur)`, "restructuring"},
	{`(?i)\b(conference|summit|webinar)`, "industry-event"},
	{`(?i)\b(regulation|regulatory|compliance|gdpr|hipaa)`, "regulatory-change"},
}

func newCauseTable() *causeTable {
	t := &causeTable{}
	for _, r := range defaultCauseRules {
		t.rules = append(t.rules, causeRule{pattern: regexp.MustCompile(r.expr), label: r.label})
	}
	return t
}

// matchNews scans the supplied headlines against the rule table, in table
// order, and reports each matched cause once. A known competitor mentioned by
// name in a headline additionally attributes a competitor-news cause.
func (t *causeTable) matchNews(news []string, knownCompetitors []string) []string {
	if len(news) == 0 {
		return nil
	}
	matched := newOrderedSet()
	for _, rule := range t.rules {
		for _, headline := range news {
			if rule.pattern.MatchString(headline) {
				matched.add(rule.label)
				break
			}
		}
	}
	for _, competitor := range knownCompetitors {
		if competitor == "" {
			continue
		}
		for _, headline := range news {
			if strings.Contains(strings.ToLower(headline), strings.ToLower(competitor)) {
				matched.add("competitor news (" + competitor + ")")
				break
			}
		}
	}
	return matched.list()
}
