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
Package pacer runs a periodic loop at a fixed cadence.

Each cycle it reads the clock, asks the interval servo how long to sleep so
the long-run cadence matches the configured period, runs the task and sleeps.
The task's own run time is part of the measured period and gets compensated.
*/
package pacer

import (
	"context"
	"fmt"

	log "github.com/sirupsen/logrus"

	"github.com/facebook/cadence/servo"
	"github.com/facebook/cadence/timespec"
)

// Task is the work done every cycle. now is the timestamp the cycle was measured at.
type Task func(ctx context.Context, now timespec.Timestamp) error

// Pacer is a periodic loop
type Pacer struct {
	cfg   *Config
	clock Clock
	servo *servo.IntervalServo
	stats StatsServer
	l     Logger
}

// New creates a Pacer. l may be nil.
func New(cfg *Config, clk Clock, stats StatsServer, l Logger) (*Pacer, error) {
	s, err := servo.NewIntervalServo(&servo.IntervalServoCfg{
		Period:         cfg.Period,
		ResetThreshold: cfg.ResetThreshold,
	})
	if err != nil {
		return nil, fmt.Errorf("creating interval servo: %w", err)
	}
	return &Pacer{
		cfg:   cfg,
		clock: clk,
		servo: s,
		stats: stats,
		l:     l,
	}, nil
}

// AccumulatedError returns the loop's running sum of drift in seconds
func (p *Pacer) AccumulatedError() float64 {
	return p.servo.AccumulatedError()
}

func (p *Pacer) runTask(ctx context.Context, task Task, now timespec.Timestamp) {
	if task == nil {
		return
	}
	if err := task(ctx, now); err != nil {
		log.Errorf("task failed: %v", err)
		p.stats.UpdateCounterBy("task_error", 1)
		return
	}
	p.stats.UpdateCounterBy("task_ok", 1)
}

// Run a pacer. It returns when ctx is cancelled, the clock fails or
// the configured number of samples is taken.
func (p *Pacer) Run(ctx context.Context, task Task) error {
	for i := 0; p.cfg.Samples == 0 || i < p.cfg.Samples; i++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		now, err := p.clock.Now()
		if err != nil {
			p.stats.UpdateCounterBy("clock_error", 1)
			return fmt.Errorf("reading clock: %w", err)
		}
		c, state, err := p.servo.Sample(now)
		if err != nil {
			p.stats.UpdateCounterBy("servo_error", 1)
			return fmt.Errorf("correcting interval: %w", err)
		}
		p.stats.Observe(c, state)
		log.Debugf("measured %.9f drift %+.9f accumulated %+.9f servo %s interval %s",
			c.Measured, c.Drift, c.AccumulatedError, state, c.Interval.Decimal())
		if p.l != nil {
			if err := p.l.Log(NewSample(now, c, state)); err != nil {
				log.Errorf("logging sample: %v", err)
			}
		}

		p.runTask(ctx, task, now)

		if p.cfg.Samples != 0 && i == p.cfg.Samples-1 {
			break
		}
		if err := p.clock.Sleep(ctx, c.Interval); err != nil {
			return err
		}
	}
	return nil
}
