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

package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_ParseConfigInlineJSON(t *testing.T) {
	opts := Options{
		Detection: `{"minStandardDeviations": 3, "severityThresholds": {"critical": 5}}`,
		Metrics:   MetricsSettings{Port: 9090, Prefix: "surge_"},
	}
	out, err := ParseConfig(&opts)
	require.NoError(t, err)
	assert.Equal(t, 3.0, out.Detection.MinStandardDeviations)
	assert.Equal(t, 5.0, out.Detection.SeverityThresholds.Critical)
	assert.Equal(t, 9090, out.Metrics.Port)
	assert.Equal(t, "surge_", out.Metrics.Prefix)
}

func Test_ParseConfigEmpty(t *testing.T) {
	out, err := ParseConfig(&Options{})
	require.NoError(t, err)
	assert.Zero(t, out.Detection.MinStandardDeviations)
}

func Test_ParseConfigInvalidJSON(t *testing.T) {
	_, err := ParseConfig(&Options{Detection: `{not json`})
	require.Error(t, err)
}

func Test_ParseConfigFile(t *testing.T) {
	raw := `
log-level: debug
detection:
  minStandardDeviations: 2.5
  minPercentageIncrease: 80
  enableSeasonalDetection: false
  severityThresholds:
    minor: 2.0
    moderate: 2.5
    significant: 3.0
    critical: 4.0
metricsSettings:
  port: 9102
  prefix: surge_
`
	fileName := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(fileName, []byte(raw), 0o600))

	out, err := ParseConfigFile(fileName)
	require.NoError(t, err)
	assert.Equal(t, "debug", out.LogLevel)
	assert.Equal(t, 2.5, out.Detection.MinStandardDeviations)
	assert.Equal(t, 80.0, out.Detection.MinPercentageIncrease)
	require.NotNil(t, out.Detection.EnableSeasonalDetection)
	assert.False(t, out.Detection.SeasonalDetectionEnabled())
	assert.Equal(t, 4.0, out.Detection.SeverityThresholds.Critical)
	assert.Equal(t, 9102, out.Metrics.Port)
}

func Test_ParseConfigFileMissing(t *testing.T) {
	_, err := ParseConfigFile(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
}

func Test_UnmarshalYaml(t *testing.T) {
	out, err := UnmarshalYaml(`
detection:
  filter: count < 1000
`)
	require.NoError(t, err)
	assert.Equal(t, "count < 1000", out.Detection.Filter)
	// the toggle is tri-state; absent means default-on
	assert.Nil(t, out.Detection.EnableSeasonalDetection)
	assert.True(t, out.Detection.SeasonalDetectionEnabled())
}

func Test_UnmarshalYamlInvalid(t *testing.T) {
	_, err := UnmarshalYaml(`detection: [not, a, map]`)
	require.Error(t, err)
}
