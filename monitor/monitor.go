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

package monitor

import (
	"context"
	"fmt"
	"io"

	"golang.org/x/sys/unix"

	"github.com/facebook/cadence/clock"
	"github.com/facebook/cadence/pacer"
	"github.com/facebook/cadence/timespec"
)

// WallClock returns the time log lines are stamped with
type WallClock func() (timespec.Timestamp, error)

func realtime() (timespec.Timestamp, error) {
	return clock.Now(unix.CLOCK_REALTIME)
}

// Monitor samples usage and writes it to the log
type Monitor struct {
	sampler Sampler
	w       *Writer
	wall    WallClock
	started bool
}

// New returns Monitor writing into w. Lines are stamped with wall time,
// CLOCK_REALTIME if wall is nil.
func New(s Sampler, w io.Writer, wall WallClock) *Monitor {
	if wall == nil {
		wall = realtime
	}
	return &Monitor{
		sampler: s,
		w:       NewWriter(w),
		wall:    wall,
	}
}

// Start writes the opening banner
func (m *Monitor) Start() error {
	if m.started {
		return fmt.Errorf("monitor already started")
	}
	ts, err := m.wall()
	if err != nil {
		return err
	}
	if err := m.w.Start(ts); err != nil {
		return err
	}
	m.started = true
	return nil
}

// Record samples usage once and writes it
func (m *Monitor) Record() error {
	if !m.started {
		return fmt.Errorf("monitor is not started")
	}
	usage, err := m.sampler.Sample()
	if err != nil {
		return err
	}
	ts, err := m.wall()
	if err != nil {
		return err
	}
	return m.w.Record(ts, usage)
}

// Stop writes the closing banner
func (m *Monitor) Stop() error {
	if !m.started {
		return fmt.Errorf("monitor is not started")
	}
	ts, err := m.wall()
	if err != nil {
		return err
	}
	m.started = false
	return m.w.Stop(ts)
}

// Task returns pacer task recording a line every cycle.
// The pacer's own timestamp is monotonic, so lines get wall time instead.
func (m *Monitor) Task() pacer.Task {
	return func(_ context.Context, _ timespec.Timestamp) error {
		return m.Record()
	}
}
