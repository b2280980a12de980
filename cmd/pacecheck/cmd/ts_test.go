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

package cmd

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/facebook/cadence/timespec"
)

func TestTsElapsed(t *testing.T) {
	b := &bytes.Buffer{}
	require.NoError(t, tsElapsedRun(b, "10", "10.5"))
	require.Equal(t, "0.500000000\n", b.String())

	b.Reset()
	require.NoError(t, tsElapsedRun(b, "10.5", "10"))
	require.Equal(t, "-0.500000000\n", b.String())

	require.Error(t, tsElapsedRun(b, "ten", "10"))
	require.Error(t, tsElapsedRun(b, "10", "1.0000000001"))
}

func TestTsAddSub(t *testing.T) {
	b := &bytes.Buffer{}
	require.NoError(t, tsOffsetRun(b, "10.5", "0.75", timespec.AddPositive))
	require.Equal(t, "11.250000000\tThu 1970-01-01 00:00:11.250000000\n", b.String())

	b.Reset()
	require.NoError(t, tsOffsetRun(b, "10.5", "0.75", timespec.SubPositive))
	require.Equal(t, "9.750000000\tThu 1970-01-01 00:00:09.750000000\n", b.String())

	require.ErrorIs(t, tsOffsetRun(b, "10.5", "-1", timespec.AddPositive), timespec.ErrNegativeOffset)
	require.ErrorIs(t, tsOffsetRun(b, "10.5", "NaN", timespec.SubPositive), timespec.ErrNotFinite)
	require.Error(t, tsOffsetRun(b, "10.5", "one", timespec.SubPositive))
}

func TestTsConv(t *testing.T) {
	b := &bytes.Buffer{}
	require.NoError(t, tsConvRun(b, "-1.25"))
	require.Equal(t, "(-2, 750000000)\t-1.25\n", b.String())

	require.ErrorIs(t, tsConvRun(b, "+Inf"), timespec.ErrNotFinite)
}

func TestTsNext(t *testing.T) {
	b := &bytes.Buffer{}
	require.NoError(t, tsNextRun(b, "10.5", "10", "1", "0"))
	require.Equal(t, "interval: 1.500000000\ndrift: -0.500000000\naccumulated: -0.500000000\nclamped: false\n", b.String())

	b.Reset()
	require.NoError(t, tsNextRun(b, "13", "10", "1", "0"))
	require.Equal(t, "interval: 0.000000000\ndrift: +2.000000000\naccumulated: +2.000000000\nclamped: true\n", b.String())

	require.Error(t, tsNextRun(b, "13", "10", "-1", "0"))
}

func TestTsNow(t *testing.T) {
	b := &bytes.Buffer{}
	require.NoError(t, tsNowRun(b, "monotonic"))
	require.Contains(t, b.String(), "resolution: ")
	require.Error(t, tsNowRun(b, "sundial"))
}
