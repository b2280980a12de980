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
)

// Elapsed returns the directed difference y - x.
// The result has a negative Seconds part when y precedes x.
func Elapsed(x, y Timestamp) (Timestamp, error) {
	if err := checkValid("elapsed", x, y); err != nil {
		return Timestamp{}, err
	}
	sec, ok := subSeconds(y.Seconds, x.Seconds)
	if !ok {
		return Timestamp{}, fmt.Errorf("elapsed: %w", ErrOutOfRange)
	}
	nsec := y.Nanoseconds - x.Nanoseconds
	if nsec < 0 {
		// borrow a second
		if sec == math.MinInt64 {
			return Timestamp{}, fmt.Errorf("elapsed: %w", ErrOutOfRange)
		}
		sec--
		nsec += NanosecondsPerSecond
	}
	return Timestamp{Seconds: sec, Nanoseconds: nsec}, nil
}

// AddPositive returns base moved forward by offset seconds. offset must be >= 0,
// use SubPositive to move backwards.
func AddPositive(base Timestamp, offset float64) (Timestamp, error) {
	o, err := splitOffset("add positive", base, offset)
	if err != nil {
		return Timestamp{}, err
	}
	sec, ok := addSeconds(base.Seconds, o.Seconds)
	if !ok {
		return Timestamp{}, fmt.Errorf("add positive: %w", ErrOutOfRange)
	}
	nsec := base.Nanoseconds + o.Nanoseconds
	if nsec >= NanosecondsPerSecond {
		if sec == math.MaxInt64 {
			return Timestamp{}, fmt.Errorf("add positive: %w", ErrOutOfRange)
		}
		sec++
		nsec -= NanosecondsPerSecond
	}
	return Timestamp{Seconds: sec, Nanoseconds: nsec}, nil
}

// SubPositive returns base moved backwards by offset seconds. offset must be >= 0.
func SubPositive(base Timestamp, offset float64) (Timestamp, error) {
	o, err := splitOffset("sub positive", base, offset)
	if err != nil {
		return Timestamp{}, err
	}
	sec, ok := subSeconds(base.Seconds, o.Seconds)
	if !ok {
		return Timestamp{}, fmt.Errorf("sub positive: %w", ErrOutOfRange)
	}
	nsec := base.Nanoseconds - o.Nanoseconds
	if nsec < 0 {
		if sec == math.MinInt64 {
			return Timestamp{}, fmt.Errorf("sub positive: %w", ErrOutOfRange)
		}
		sec--
		nsec += NanosecondsPerSecond
	}
	return Timestamp{Seconds: sec, Nanoseconds: nsec}, nil
}

func splitOffset(op string, base Timestamp, offset float64) (Timestamp, error) {
	if err := checkValid(op, base); err != nil {
		return Timestamp{}, err
	}
	if err := checkFinite(op, offset); err != nil {
		return Timestamp{}, err
	}
	if offset < 0 {
		return Timestamp{}, fmt.Errorf("%s: %v: %w", op, offset, ErrNegativeOffset)
	}
	o, err := FromFloat64(offset)
	if err != nil {
		return Timestamp{}, fmt.Errorf("%s: %w", op, err)
	}
	return o, nil
}

func addSeconds(a, b int64) (int64, bool) {
	c := a + b
	if (b > 0 && c < a) || (b < 0 && c > a) {
		return 0, false
	}
	return c, true
}

func subSeconds(a, b int64) (int64, bool) {
	c := a - b
	if (b > 0 && c > a) || (b < 0 && c < a) {
		return 0, false
	}
	return c, true
}
