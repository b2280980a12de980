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
	"fmt"
	"math"
	"time"
)

const (
	// float64 bounds of int64 seconds, 2^63 is exactly representable
	maxFloatSeconds = float64(1 << 63)
	minFloatSeconds = -float64(1 << 63)

	maxDurationSeconds = math.MaxInt64 / NanosecondsPerSecond
	minDurationSeconds = math.MinInt64 / NanosecondsPerSecond
)

// Float64 returns t as floating point seconds.
// It is exact for nanosecond values within float64 precision.
func (t Timestamp) Float64() float64 {
	return float64(t.Seconds) + float64(t.Nanoseconds)/float64(NanosecondsPerSecond)
}

// FromFloat64 splits floating point seconds into a Timestamp.
// The split is floor based, so negative values keep a non-negative nanosecond part.
// Nanoseconds are rounded to nearest, carrying into seconds when rounding reaches a full second.
func FromFloat64(d float64) (Timestamp, error) {
	if err := checkFinite("from float64", d); err != nil {
		return Timestamp{}, err
	}
	fsec := math.Floor(d)
	if fsec < minFloatSeconds || fsec >= maxFloatSeconds {
		return Timestamp{}, fmt.Errorf("from float64: %v: %w", d, ErrOutOfRange)
	}
	sec := int64(fsec)
	nsec := int64(math.Round((d - fsec) * float64(NanosecondsPerSecond)))
	if nsec >= NanosecondsPerSecond {
		if sec == math.MaxInt64 {
			return Timestamp{}, fmt.Errorf("from float64: %v: %w", d, ErrOutOfRange)
		}
		sec++
		nsec -= NanosecondsPerSecond
	}
	return Timestamp{Seconds: sec, Nanoseconds: nsec}, nil
}

// FromTime converts time.Time into a Timestamp relative to the Unix epoch
func FromTime(t time.Time) Timestamp {
	return Timestamp{Seconds: t.Unix(), Nanoseconds: int64(t.Nanosecond())}
}

// Time turns t into time.Time, treating it as time since the Unix epoch
func (t Timestamp) Time() time.Time {
	return time.Unix(t.Seconds, t.Nanoseconds)
}

// FromDuration converts time.Duration into a Timestamp
func FromDuration(d time.Duration) Timestamp {
	return Normalize(0, int64(d))
}

// Duration returns t as time.Duration, saturating at the bounds of time.Duration
func (t Timestamp) Duration() time.Duration {
	if t.Seconds > maxDurationSeconds ||
		(t.Seconds == maxDurationSeconds && t.Nanoseconds > math.MaxInt64%NanosecondsPerSecond) {
		return time.Duration(math.MaxInt64)
	}
	if t.Seconds < minDurationSeconds {
		return time.Duration(math.MinInt64)
	}
	return time.Duration(t.Seconds*NanosecondsPerSecond + t.Nanoseconds)
}
