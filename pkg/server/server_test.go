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

package server

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/intentwatch/surge-pipeline/pkg/api"
	"github.com/intentwatch/surge-pipeline/pkg/config"
	"github.com/intentwatch/surge-pipeline/pkg/detect"
	"github.com/intentwatch/surge-pipeline/pkg/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupServer(t *testing.T) (*Server, *httptest.Server) {
	t.Helper()
	detector, err := detect.NewDetector(nil, nil)
	require.NoError(t, err)
	s := New(detector, &config.Server{Address: "127.0.0.1", Port: 0})
	ts := httptest.NewServer(s.Handler())
	t.Cleanup(ts.Close)
	return s, ts
}

func postJSON(t *testing.T, url, body string) *http.Response {
	t.Helper()
	resp, err := http.Post(url, "application/json", bytes.NewBufferString(body))
	require.NoError(t, err)
	t.Cleanup(func() { _ = resp.Body.Close() })
	return resp
}

func Test_HandleAnalyze(t *testing.T) {
	_, ts := setupServer(t)

	start := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
	series := test.DailySeries(start, []float64{10, 10, 10, 10, 10, 10, 10, 10, 10, 10, 10, 10, 10, 10, 100, 10})
	body, err := json.Marshal(map[string]interface{}{"series": series})
	require.NoError(t, err)

	resp := postJSON(t, ts.URL+"/analyze", string(body))
	require.Equal(t, http.StatusOK, resp.StatusCode)

	result := detect.AnalysisResult{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&result))
	require.Len(t, result.Surges, 1)
	assert.Equal(t, float64(100), result.Surges[0].PeakValue)
	assert.Equal(t, 1, result.Summary.TotalSurgesDetected)
	require.NotNil(t, result.Baseline)
	assert.Equal(t, 16, result.Baseline.Count)
}

func Test_HandleAnalyzeErrors(t *testing.T) {
	_, ts := setupServer(t)

	resp := postJSON(t, ts.URL+"/analyze", `{"context": {}}`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp = postJSON(t, ts.URL+"/analyze", `{not json`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	getResp, err := http.Get(ts.URL + "/analyze")
	require.NoError(t, err)
	defer getResp.Body.Close()
	assert.Equal(t, http.StatusMethodNotAllowed, getResp.StatusCode)
}

func Test_HandleSeasonal(t *testing.T) {
	_, ts := setupServer(t)

	series := test.MonthlySpreadSeries(2023, 10, 30, map[time.Month]bool{
		time.October:  true,
		time.November: true,
		time.December: true,
	}, 4)
	body, err := json.Marshal(series)
	require.NoError(t, err)

	resp := postJSON(t, ts.URL+"/seasonal", string(body))
	require.Equal(t, http.StatusOK, resp.StatusCode)

	matches := []detect.SeasonalMatch{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&matches))
	require.NotEmpty(t, matches)
	assert.Equal(t, "q4-budget-flush", matches[0].Pattern)
}

func Test_HandleConfigGet(t *testing.T) {
	_, ts := setupServer(t)

	resp, err := http.Get(ts.URL + "/config")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	cfg := api.SurgeDetection{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&cfg))
	assert.Equal(t, 2.0, cfg.MinStandardDeviations)
	assert.Equal(t, 50.0, cfg.MinPercentageIncrease)
}

func Test_HandleConfigPut(t *testing.T) {
	s, ts := setupServer(t)

	req, err := http.NewRequest(http.MethodPut, ts.URL+"/config", strings.NewReader(`{"minStandardDeviations": 3}`))
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	updated := api.SurgeDetection{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&updated))
	assert.Equal(t, 3.0, updated.MinStandardDeviations)
	// untouched fields survive the partial update
	assert.Equal(t, 50.0, updated.MinPercentageIncrease)
	assert.Equal(t, 3.0, s.detector.Config().MinStandardDeviations)

	// invalid updates are rejected and leave the config untouched
	req, err = http.NewRequest(http.MethodPut, ts.URL+"/config", strings.NewReader(`{"minStandardDeviations": -1}`))
	require.NoError(t, err)
	resp, err = http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, 3.0, s.detector.Config().MinStandardDeviations)
}

func Test_Readiness(t *testing.T) {
	detector, err := detect.NewDetector(nil, nil)
	require.NoError(t, err)
	s := New(detector, &config.Server{Address: "127.0.0.1", Port: 0})

	assert.NoError(t, s.IsAlive())
	assert.Error(t, s.IsReady())
	s.ready.Store(true)
	assert.NoError(t, s.IsReady())
}
