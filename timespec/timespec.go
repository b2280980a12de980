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

/*
Package timespec implements a seconds/nanoseconds timestamp and the arithmetic
periodic sampling loops need: conversion to and from floating point seconds,
directed differences and adding or subtracting positive offsets.

Every Timestamp produced by this package is normalized, that is its
Nanoseconds field lies in [0, 1e9). Seconds is signed so a Timestamp can
carry a negative difference. Operations never mutate their inputs.
*/
package timespec

import (
	"errors"
	"fmt"
	"math"
)

// NanosecondsPerSecond is the number of nanoseconds in one second
const NanosecondsPerSecond = int64(1000000000)

var (
	// ErrNotNormalized is returned when a Timestamp has nanoseconds outside of [0, 1e9)
	ErrNotNormalized = errors.New("timestamp is not normalized")
	// ErrNegativeOffset is returned when a negative offset is passed to AddPositive or SubPositive
	ErrNegativeOffset = errors.New("offset must not be negative")
	// ErrNotFinite is returned for NaN and infinite floating point input
	ErrNotFinite = errors.New("value is not finite")
	// ErrOutOfRange is returned when the result does not fit into int64 seconds
	ErrOutOfRange = errors.New("value is out of range")
)

// Timestamp is a point in time, or a signed difference between two points,
// expressed as whole seconds plus a non-negative nanosecond remainder.
// -0.25s is represented as Seconds = -1, Nanoseconds = 750000000.
type Timestamp struct {
	Seconds     int64
	Nanoseconds int64
}

// New returns a Timestamp if sec and nsec form a normalized pair
func New(sec, nsec int64) (Timestamp, error) {
	t := Timestamp{Seconds: sec, Nanoseconds: nsec}
	if !t.Valid() {
		return Timestamp{}, fmt.Errorf("new timestamp (%d, %d): %w", sec, nsec, ErrNotNormalized)
	}
	return t, nil
}

// Normalize carries or borrows whole seconds out of nsec so the result is normalized
func Normalize(sec, nsec int64) Timestamp {
	sec += nsec / NanosecondsPerSecond
	nsec %= NanosecondsPerSecond
	if nsec < 0 {
		nsec += NanosecondsPerSecond
		sec--
	}
	return Timestamp{Seconds: sec, Nanoseconds: nsec}
}

// Valid reports whether the nanoseconds part is within [0, 1e9)
func (t Timestamp) Valid() bool {
	return t.Nanoseconds >= 0 && t.Nanoseconds < NanosecondsPerSecond
}

// IsZero reports whether t is the zero Timestamp
func (t Timestamp) IsZero() bool {
	return t.Seconds == 0 && t.Nanoseconds == 0
}

// IsNegative reports whether t lies before the zero Timestamp
func (t Timestamp) IsNegative() bool {
	return t.Seconds < 0
}

// Compare returns -1 if t is before u, +1 if t is after u and 0 if they are equal.
// Both timestamps are expected to be normalized.
func (t Timestamp) Compare(u Timestamp) int {
	switch {
	case t.Seconds < u.Seconds:
		return -1
	case t.Seconds > u.Seconds:
		return 1
	}
	switch {
	case t.Nanoseconds < u.Nanoseconds:
		return -1
	case t.Nanoseconds > u.Nanoseconds:
		return 1
	}
	return 0
}

// Before reports whether t is before u
func (t Timestamp) Before(u Timestamp) bool { return t.Compare(u) == -1 }

func checkValid(op string, ts ...Timestamp) error {
	for _, t := range ts {
		if !t.Valid() {
			return fmt.Errorf("%s: (%d, %d): %w", op, t.Seconds, t.Nanoseconds, ErrNotNormalized)
		}
	}
	return nil
}

func checkFinite(op string, v float64) error {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return fmt.Errorf("%s: %v: %w", op, v, ErrNotFinite)
	}
	return nil
}
