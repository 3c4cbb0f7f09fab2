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
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testScanSetup(t *testing.T) (*surgeScanner, *finalizer) {
	t.Helper()
	cfg := DefaultConfig()
	baseline := &Baseline{Mean: 10, StdDev: 1, Count: 30}
	now := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	return newSurgeScanner(&cfg, baseline), newFinalizer(&cfg, nil, newCauseTable(), now)
}

func point(ts time.Time, count float64) SignalDataPoint {
	return SignalDataPoint{Timestamp: ts, Count: count}
}

func Test_ScannerTransitions(t *testing.T) {
	scanner, fin := testScanSetup(t)
	start := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)

	// normal point keeps the scanner idle
	scanner.step(point(start, 10), fin)
	assert.Equal(t, scanIdle, scanner.state)

	// surging point opens a candidate
	scanner.step(point(start.Add(24*time.Hour), 20), fin)
	require.Equal(t, scanAccumulating, scanner.state)
	require.NotNil(t, scanner.candidate)
	assert.Equal(t, float64(20), scanner.candidate.peakValue)

	// higher surging point moves the peak
	scanner.step(point(start.Add(48*time.Hour), 25), fin)
	assert.Equal(t, float64(25), scanner.candidate.peakValue)
	assert.Equal(t, start.Add(48*time.Hour), scanner.candidate.peakTime)

	// lower surging point keeps the peak
	scanner.step(point(start.Add(72*time.Hour), 21), fin)
	assert.Equal(t, float64(25), scanner.candidate.peakValue)

	// non-surging point closes the candidate with end = previous point
	scanner.step(point(start.Add(96*time.Hour), 10), fin)
	assert.Equal(t, scanIdle, scanner.state)
	require.Len(t, scanner.events, 1)
	event := scanner.events[0]
	assert.Equal(t, start.Add(24*time.Hour), event.StartTime)
	assert.Equal(t, start.Add(72*time.Hour), event.EndTime)
	assert.False(t, event.IsOngoing)
	assert.Equal(t, float64(25), event.PeakValue)
	assert.InDelta(t, 15, event.StdDevsAbove, 1e-9)
}

func Test_ScannerOngoingAtSeriesEnd(t *testing.T) {
	scanner, fin := testScanSetup(t)
	start := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)

	scanner.step(point(start, 30), fin)
	scanner.step(point(start.Add(24*time.Hour), 35), fin)
	scanner.finish(fin)

	require.Len(t, scanner.events, 1)
	assert.True(t, scanner.events[0].IsOngoing)
	assert.Equal(t, start.Add(24*time.Hour), scanner.events[0].EndTime)
}

func Test_ScannerRequiresBothThresholds(t *testing.T) {
	cfg := DefaultConfig()
	// large mean: a 2-sigma move is a tiny percentage increase
	baseline := &Baseline{Mean: 1000, StdDev: 10, Count: 30}
	scanner := newSurgeScanner(&cfg, baseline)
	// 3 sigma above but only 3% increase: not surging
	assert.False(t, scanner.isSurging(1030))
	// both thresholds crossed
	assert.True(t, scanner.isSurging(1600))
}

func Test_ScanSurgesZeroStdDev(t *testing.T) {
	cfg := DefaultConfig()
	baseline := &Baseline{Mean: 10, StdDev: 0, Count: 30}
	fin := newFinalizer(&cfg, nil, newCauseTable(), time.Now())
	series := dailySeries([]float64{10, 10, 500, 10})
	assert.Nil(t, scanSurges(series, baseline, &cfg, fin))
}

func Test_ScanSurgesSortedByStdDevs(t *testing.T) {
	cfg := DefaultConfig()
	baseline := &Baseline{Mean: 10, StdDev: 1, Count: 30}
	fin := newFinalizer(&cfg, nil, newCauseTable(), time.Now())
	// two separate surges, the second one stronger
	series := dailySeries([]float64{10, 20, 10, 40, 10})
	events := scanSurges(series, baseline, &cfg, fin)
	require.Len(t, events, 2)
	assert.Greater(t, events[0].StdDevsAbove, events[1].StdDevsAbove)
	assert.Equal(t, float64(40), events[0].PeakValue)
}

func Test_OrderedSet(t *testing.T) {
	set := newOrderedSet()
	set.add("b")
	set.add("a")
	set.add("b")
	set.add("")
	assert.Equal(t, []string{"b", "a"}, set.list())
	assert.True(t, set.contains("a"))
	assert.False(t, set.contains("c"))
}
