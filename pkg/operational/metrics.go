/*
 * Copyright (C) 2022 IBM, Inc.
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

package operational

import (
	"fmt"

	"github.com/intentwatch/surge-pipeline/pkg/config"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"
)

type MetricType string

const (
	TypeCounter MetricType = "counter"
	TypeGauge   MetricType = "gauge"
)

type MetricDefinition struct {
	Name   string
	Help   string
	Type   MetricType
	Labels []string
}

var allMetrics = []MetricDefinition{}

// DefineMetric registers a metric definition for documentation purposes and
// returns it for instantiation through Metrics.
func DefineMetric(name, help string, t MetricType, labels ...string) MetricDefinition {
	def := MetricDefinition{
		Name:   name,
		Help:   help,
		Type:   t,
		Labels: labels,
	}
	allMetrics = append(allMetrics, def)
	return def
}

// Metrics instantiates prometheus collectors with the configured prefix and
// tolerates duplicate registration so tests can create it repeatedly.
type Metrics struct {
	settings *config.MetricsSettings
}

func NewMetrics(settings *config.MetricsSettings) *Metrics {
	if settings == nil {
		settings = &config.MetricsSettings{}
	}
	return &Metrics{settings: settings}
}

func (o *Metrics) prefixedName(name string) string {
	return o.settings.Prefix + name
}

func (o *Metrics) register(c prometheus.Collector, name string) prometheus.Collector {
	err := prometheus.DefaultRegisterer.Register(c)
	if err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			return are.ExistingCollector
		}
		logrus.Errorf("metrics registration error [%s]: %v", name, err)
		if !o.settings.NoPanic {
			panic(err)
		}
	}
	return c
}

func (o *Metrics) NewCounter(def *MetricDefinition) prometheus.Counter {
	verifyMetricType(def, TypeCounter)
	fullName := o.prefixedName(def.Name)
	c := prometheus.NewCounter(prometheus.CounterOpts{Name: fullName, Help: def.Help})
	return o.register(c, fullName).(prometheus.Counter)
}

func (o *Metrics) NewCounterVec(def *MetricDefinition) *prometheus.CounterVec {
	verifyMetricType(def, TypeCounter)
	fullName := o.prefixedName(def.Name)
	c := prometheus.NewCounterVec(prometheus.CounterOpts{Name: fullName, Help: def.Help}, def.Labels)
	return o.register(c, fullName).(*prometheus.CounterVec)
}

func (o *Metrics) NewGauge(def *MetricDefinition) prometheus.Gauge {
	verifyMetricType(def, TypeGauge)
	fullName := o.prefixedName(def.Name)
	g := prometheus.NewGauge(prometheus.GaugeOpts{Name: fullName, Help: def.Help})
	return o.register(g, fullName).(prometheus.Gauge)
}

func verifyMetricType(def *MetricDefinition, t MetricType) {
	if def.Type != t {
		logrus.Panicf("operational metric %q is of type %q, expected %q", def.Name, def.Type, t)
	}
}

// GetDocumentation renders the markdown documentation of all defined metrics.
func GetDocumentation() string {
	doc := ""
	for _, def := range allMetrics {
		doc += fmt.Sprintf(
			`
### %s
| **Name** | %s |
|:---|:---|
| **Description** | %s |
| **Type** | %s |

`,
			def.Name,
			def.Name,
			def.Help,
			def.Type,
		)
	}
	return doc
}
