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

package servo

import (
	"errors"
	"fmt"
	"math"

	log "github.com/sirupsen/logrus"

	"github.com/facebook/cadence/timespec"
)

var (
	// ErrBadPeriod is returned when the desired period is negative or not finite
	ErrBadPeriod = errors.New("desired period must be finite and >= 0")
	// ErrBadAccumulator is returned when the accumulated error is not finite
	ErrBadAccumulator = errors.New("accumulated error must be finite")
)

// Correction is the outcome of one interval calculation
type Correction struct {
	// Interval is how long the loop should sleep before the next sample
	Interval timespec.Timestamp
	// Measured is the period between the previous and the actual sample, in seconds
	Measured float64
	// Drift is Measured minus the desired period
	Drift float64
	// AccumulatedError is the updated running sum of drift, to be passed to the next call
	AccumulatedError float64
	// Next is Interval in seconds before it was converted
	Next float64
	// Clamped is set when the corrected interval was negative and got replaced by zero
	Clamped bool
}

func checkPeriod(desiredPeriod float64) error {
	if math.IsNaN(desiredPeriod) || math.IsInf(desiredPeriod, 0) || desiredPeriod < 0 {
		return fmt.Errorf("%v: %w", desiredPeriod, ErrBadPeriod)
	}
	return nil
}

// NextInterval derives the next sleep interval of a periodic loop.
// actual and previous are the timestamps of the current and the previous sample,
// desiredPeriod is the cadence in seconds and accumulatedError is the value
// returned in Correction.AccumulatedError by the previous call (0 for the first one).
// The interval is never negative: when the accumulated error exceeds the desired
// period the interval is zero and the excess stays in the accumulator.
func NextInterval(actual, previous timespec.Timestamp, desiredPeriod, accumulatedError float64) (Correction, error) {
	if err := checkPeriod(desiredPeriod); err != nil {
		return Correction{}, err
	}
	if math.IsNaN(accumulatedError) || math.IsInf(accumulatedError, 0) {
		return Correction{}, fmt.Errorf("%v: %w", accumulatedError, ErrBadAccumulator)
	}
	elapsed, err := timespec.Elapsed(previous, actual)
	if err != nil {
		return Correction{}, fmt.Errorf("measuring period: %w", err)
	}
	c := Correction{Measured: elapsed.Float64()}
	c.Drift = c.Measured - desiredPeriod
	c.AccumulatedError = accumulatedError + c.Drift
	c.Next = desiredPeriod - c.AccumulatedError
	if c.Next < 0 {
		c.Next = 0
		c.Clamped = true
	}
	c.Interval, err = timespec.FromFloat64(c.Next)
	if err != nil {
		return Correction{}, fmt.Errorf("converting interval: %w", err)
	}
	return c, nil
}

// IntervalServoCfg is an interval servo config
type IntervalServoCfg struct {
	// Period is the desired cadence in seconds
	Period float64
	// ResetThreshold drops the accumulated error when a single cycle drifts by more
	// than this many seconds, e.g. after the process was suspended. 0 disables it.
	ResetThreshold float64
}

// DefaultIntervalServoCfg returns default interval servo config
func DefaultIntervalServoCfg() *IntervalServoCfg {
	return &IntervalServoCfg{
		Period:         1.0,
		ResetThreshold: 0,
	}
}

// IntervalServo keeps the previous sample and the accumulated error of one loop.
// It is not safe for concurrent use, every loop needs its own.
type IntervalServo struct {
	cfg              *IntervalServoCfg
	previous         timespec.Timestamp
	accumulatedError float64
	count            int
}

// NewIntervalServo creates an interval servo
func NewIntervalServo(cfg *IntervalServoCfg) (*IntervalServo, error) {
	if err := checkPeriod(cfg.Period); err != nil {
		return nil, err
	}
	if cfg.ResetThreshold < 0 {
		return nil, fmt.Errorf("reset threshold %v must be >= 0", cfg.ResetThreshold)
	}
	return &IntervalServo{cfg: cfg}, nil
}

// AccumulatedError returns the running sum of drift
func (s *IntervalServo) AccumulatedError() float64 {
	return s.accumulatedError
}

// Count returns number of samples since the last reset
func (s *IntervalServo) Count() int {
	return s.count
}

// Reset forgets the previous sample and the accumulated error
func (s *IntervalServo) Reset() {
	s.count = 0
	s.accumulatedError = 0
	s.previous = timespec.Timestamp{}
}

func (s *IntervalServo) restart(actual timespec.Timestamp) (Correction, error) {
	s.previous = actual
	s.accumulatedError = 0
	interval, err := timespec.FromFloat64(s.cfg.Period)
	if err != nil {
		return Correction{}, err
	}
	return Correction{Interval: interval, Next: s.cfg.Period}, nil
}

// Sample takes the timestamp of the current sample and returns how long to sleep
func (s *IntervalServo) Sample(actual timespec.Timestamp) (Correction, State, error) {
	if !actual.Valid() {
		return Correction{}, StateInit, fmt.Errorf("sample (%d, %d): %w", actual.Seconds, actual.Nanoseconds, timespec.ErrNotNormalized)
	}
	if s.count == 0 {
		c, err := s.restart(actual)
		if err != nil {
			return Correction{}, StateInit, err
		}
		s.count = 1
		return c, StateInit, nil
	}

	c, err := NextInterval(actual, s.previous, s.cfg.Period, s.accumulatedError)
	if err != nil {
		return Correction{}, StateInit, err
	}
	s.count++
	if s.cfg.ResetThreshold > 0 && math.Abs(c.Drift) > s.cfg.ResetThreshold {
		log.Warningf("interval servo: drift %.9fs over reset threshold %.9fs, dropping accumulated error %.9fs", c.Drift, s.cfg.ResetThreshold, c.AccumulatedError)
		r, err := s.restart(actual)
		if err != nil {
			return Correction{}, StateInit, err
		}
		r.Measured = c.Measured
		r.Drift = c.Drift
		return r, StateJump, nil
	}
	s.previous = actual
	s.accumulatedError = c.AccumulatedError
	if c.Clamped {
		return c, StateClamped, nil
	}
	return c, StateLocked, nil
}
