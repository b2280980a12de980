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

package clock

import (
	"context"
	"fmt"
	"strings"
	"time"

	"golang.org/x/sys/unix"

	"github.com/facebook/cadence/timespec"
)

// supported clock names
const (
	Monotonic = "monotonic"
	Realtime  = "realtime"
	Boottime  = "boottime"
)

var clockIDs = map[string]int32{
	Monotonic: unix.CLOCK_MONOTONIC,
	Realtime:  unix.CLOCK_REALTIME,
	Boottime:  unix.CLOCK_BOOTTIME,
}

// ClockIDFromName returns clock id for one of the supported clock names
func ClockIDFromName(name string) (int32, error) {
	id, ok := clockIDs[strings.ToLower(name)]
	if !ok {
		return 0, fmt.Errorf("unsupported clock %q", name)
	}
	return id, nil
}

// Now reads current time of the clock
func Now(clockid int32) (timespec.Timestamp, error) {
	var ts unix.Timespec
	if err := unix.ClockGettime(clockid, &ts); err != nil {
		return timespec.Timestamp{}, fmt.Errorf("clock_gettime(%d): %w", clockid, err)
	}
	return fromTimespec(ts), nil
}

// Resolution returns resolution of the clock
func Resolution(clockid int32) (timespec.Timestamp, error) {
	var ts unix.Timespec
	if err := unix.ClockGetres(clockid, &ts); err != nil {
		return timespec.Timestamp{}, fmt.Errorf("clock_getres(%d): %w", clockid, err)
	}
	return fromTimespec(ts), nil
}

// System is a clock bound to a clock id
type System struct {
	ClockID int32
}

// NewSystem returns System clock for a clock name
func NewSystem(name string) (*System, error) {
	id, err := ClockIDFromName(name)
	if err != nil {
		return nil, err
	}
	return &System{ClockID: id}, nil
}

// Now reads current time of the clock
func (c *System) Now() (timespec.Timestamp, error) {
	return Now(c.ClockID)
}

// Sleep blocks for d or until ctx is cancelled
func (c *System) Sleep(ctx context.Context, d timespec.Timestamp) error {
	if d.IsNegative() || d.IsZero() {
		return ctx.Err()
	}
	timer := time.NewTimer(d.Duration())
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
