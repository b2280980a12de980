/*
Copyright (c) Facebook, Inc. and its affiliates.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package pacer

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"

	"github.com/facebook/cadence/servo"
)

func TestFlattenKey(t *testing.T) {
	require.Equal(t, "some_key_with_stuff", flattenKey("some.key-with stuff"))
	require.Equal(t, "a_b_c", flattenKey("a=b/c"))
}

func TestPromStats(t *testing.T) {
	e := NewPrometheusExporter(0)
	s, err := e.NewStats("main")
	require.NoError(t, err)

	s.Observe(servo.Correction{Next: 1}, servo.StateInit)
	s.Observe(servo.Correction{Drift: 0.002, AccumulatedError: 0.002, Next: 0.998}, servo.StateLocked)
	s.UpdateCounterBy("task_ok", 2)
	s.UpdateCounterBy("task_ok", 1)
	s.SetCounter("clock_error", 4)

	require.Equal(t, 0.002, testutil.ToFloat64(s.accumulated))
	require.Equal(t, 0.998, testutil.ToFloat64(s.interval))
	require.Equal(t, 0.002, testutil.ToFloat64(s.drift))
	require.Equal(t, 1.0, testutil.ToFloat64(s.samples.WithLabelValues("INIT")))
	require.Equal(t, 1.0, testutil.ToFloat64(s.samples.WithLabelValues("LOCKED")))
	require.Equal(t, 3.0, testutil.ToFloat64(s.counters["task_ok"]))
	require.Equal(t, 4.0, testutil.ToFloat64(s.counters["clock_error"]))

	expected := `
# HELP cadence_accumulated_error_seconds accumulated cadence error
# TYPE cadence_accumulated_error_seconds gauge
cadence_accumulated_error_seconds{loop="main"} 0.002
`
	require.NoError(t, testutil.GatherAndCompare(e.registry, strings.NewReader(expected), "cadence_accumulated_error_seconds"))
}

func TestPromStatsSameLoopTwice(t *testing.T) {
	e := NewPrometheusExporter(0)
	a, err := e.NewStats("main")
	require.NoError(t, err)
	b, err := e.NewStats("main")
	require.NoError(t, err)
	a.Observe(servo.Correction{AccumulatedError: 0.5}, servo.StateLocked)
	require.Equal(t, 0.5, testutil.ToFloat64(b.accumulated))
}

func TestPromStatsSeveralLoops(t *testing.T) {
	e := NewPrometheusExporter(0)
	a, err := e.NewStats("a")
	require.NoError(t, err)
	b, err := e.NewStats("b")
	require.NoError(t, err)
	a.UpdateCounterBy("task_ok", 1)
	b.UpdateCounterBy("task_ok", 5)
	require.Equal(t, 1.0, testutil.ToFloat64(a.counters["task_ok"]))
	require.Equal(t, 5.0, testutil.ToFloat64(b.counters["task_ok"]))
	count, err := testutil.GatherAndCount(e.registry, "cadence_task_ok")
	require.NoError(t, err)
	require.Equal(t, 2, count)
}

func TestPrometheusHandler(t *testing.T) {
	e := NewPrometheusExporter(0)
	s, err := e.NewStats("main")
	require.NoError(t, err)
	s.Observe(servo.Correction{Drift: 0.25}, servo.StateLocked)

	rec := httptest.NewRecorder()
	e.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), `cadence_drift_seconds{loop="main"} 0.25`)
}
