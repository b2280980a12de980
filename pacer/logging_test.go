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
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/facebook/cadence/servo"
	"github.com/facebook/cadence/timespec"
)

var testSample0 = &Sample{
	Time:             timespec.Timestamp{Seconds: 101, Nanoseconds: 2000000},
	Measured:         1.002,
	Drift:            0.002,
	AccumulatedError: 0.002,
	Interval:         timespec.Timestamp{Nanoseconds: 998000000},
	State:            servo.StateLocked,
}

var testSample1 = &Sample{
	Time:             timespec.Timestamp{Seconds: 140},
	Measured:         37.5,
	Drift:            36.5,
	AccumulatedError: 36.502,
	Interval:         timespec.Timestamp{},
	State:            servo.StateClamped,
}

func TestSampleCSVRecords(t *testing.T) {
	got := testSample0.CSVRecords()
	want := []string{"101.002000000", "1.002000000", "0.002000000", "0.002000000", "0.998000000", "LOCKED"}

	// make sure we are in sync with header
	require.Equal(t, len(header), len(got))

	require.Equal(t, want, got)
}

func TestNewSample(t *testing.T) {
	c := servo.Correction{
		Interval:         timespec.Timestamp{Nanoseconds: 998000000},
		Measured:         1.002,
		Drift:            0.002,
		AccumulatedError: 0.002,
		Next:             0.998,
	}
	require.Equal(t, testSample0, NewSample(timespec.Timestamp{Seconds: 101, Nanoseconds: 2000000}, c, servo.StateLocked))
}

func TestCSVLoggerLog(t *testing.T) {
	b := &bytes.Buffer{}
	l := NewCSVLogger(b)

	require.NoError(t, l.Log(testSample0))
	require.NoError(t, l.Log(testSample1))

	want := `time,measured,drift,accumulated,interval,state
101.002000000,1.002000000,0.002000000,0.002000000,0.998000000,LOCKED
140.000000000,37.500000000,36.500000000,36.502000000,0.000000000,CLAMPED
`
	require.Equal(t, want, b.String())
}

func TestDummyLoggerLog(t *testing.T) {
	b := &bytes.Buffer{}
	l := NewDummyLogger(b)
	require.NoError(t, l.Log(testSample0))
	require.Equal(t, "drift = +0.002000000s, interval = 998ms\n", b.String())
}
