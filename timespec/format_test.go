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

package timespec

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestStringify(t *testing.T) {
	ts := Timestamp{Seconds: 1609459237, Nanoseconds: 123456789}
	require.Equal(t, "Fri 2021-01-01 00:00:37.123456789", Stringify(ts))
	require.Equal(t, Stringify(ts), ts.String())
	require.Equal(t, Stringify(ts), Stringify(ts))
	require.Equal(t, "Thu 1970-01-01 00:00:00.000000000", Stringify(Timestamp{}))
}

func TestFormatterLocation(t *testing.T) {
	loc := time.FixedZone("UTC+2", 2*60*60)
	f := Formatter{Layout: "2006-01-02T15:04:05.000", Location: loc}
	ts := Timestamp{Seconds: 1609459237, Nanoseconds: 123456789}
	require.Equal(t, "2021-01-01T02:00:37.123", f.Format(ts))
}

func TestParse(t *testing.T) {
	ts := Timestamp{Seconds: 1609459237, Nanoseconds: 123456789}
	got, err := Parse(Stringify(ts))
	require.NoError(t, err)
	require.Equal(t, ts, got)

	_, err = Parse("not a timestamp")
	require.Error(t, err)
}

func TestDecimal(t *testing.T) {
	tests := []struct {
		in   Timestamp
		want string
	}{
		{Timestamp{Seconds: 1674148530, Nanoseconds: 671467104}, "1674148530.671467104"},
		{Timestamp{Seconds: -1, Nanoseconds: 750000000}, "-0.250000000"},
		{Timestamp{Seconds: -2, Nanoseconds: 0}, "-2.000000000"},
		{Timestamp{}, "0.000000000"},
	}
	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			require.Equal(t, tt.want, tt.in.Decimal())
			got, err := ParseDecimal(tt.want)
			require.NoError(t, err)
			require.Equal(t, tt.in, got)
		})
	}
}

func TestParseDecimal(t *testing.T) {
	got, err := ParseDecimal("5.2")
	require.NoError(t, err)
	require.Equal(t, Timestamp{Seconds: 5, Nanoseconds: 200000000}, got)

	got, err = ParseDecimal("-1.5")
	require.NoError(t, err)
	require.Equal(t, Timestamp{Seconds: -2, Nanoseconds: 500000000}, got)

	got, err = ParseDecimal(".5")
	require.NoError(t, err)
	require.Equal(t, Timestamp{Nanoseconds: 500000000}, got)

	got, err = ParseDecimal("42")
	require.NoError(t, err)
	require.Equal(t, Timestamp{Seconds: 42}, got)

	for _, bad := range []string{"", "-", "abc", "1.0000000001", "1.-5", "1.x", "--5", "1.+5"} {
		_, err := ParseDecimal(bad)
		require.Error(t, err, bad)
	}
}
