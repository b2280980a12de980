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
	"math"
	"sync"

	hdrhistogram "github.com/HdrHistogram/hdrhistogram-go"
	"github.com/eclesh/welford"

	"github.com/facebook/cadence/servo"
)

// |drift| is tracked in microseconds, up to a minute
const (
	histMinUS   = 1
	histMaxUS   = 60000000
	histSigFigs = 3
)

// StatsServer is a stats server interface
type StatsServer interface {
	SetCounter(key string, val int64)
	UpdateCounterBy(key string, count int64)
	// Observe records the outcome of one servo calculation
	Observe(c servo.Correction, state servo.State)
}

// Summary is a snapshot of loop statistics. Drift values are in seconds.
type Summary struct {
	Period           float64
	Samples          int64
	Clamped          int64
	Resets           int64
	MeanDrift        float64
	StddevDrift      float64
	P50Drift         float64
	P99Drift         float64
	MaxDrift         float64
	AccumulatedError float64
	LastInterval     float64
}

// Stats is an implementation of StatsServer keeping counters and drift distribution in memory
type Stats struct {
	mux      sync.Mutex
	period   float64
	counters map[string]int64
	drift    *welford.Stats
	absDrift *hdrhistogram.Histogram
	last     servo.Correction
}

// NewStats created new instance of Stats for a loop with given period
func NewStats(period float64) *Stats {
	return &Stats{
		period:   period,
		counters: map[string]int64{},
		drift:    welford.New(),
		absDrift: hdrhistogram.New(histMinUS, histMaxUS, histSigFigs),
	}
}

// UpdateCounterBy will increment counter
func (s *Stats) UpdateCounterBy(key string, count int64) {
	s.mux.Lock()
	s.counters[key] += count
	s.mux.Unlock()
}

// SetCounter will set a counter to the provided value.
func (s *Stats) SetCounter(key string, val int64) {
	s.mux.Lock()
	s.counters[key] = val
	s.mux.Unlock()
}

// Get returns an map of counters
func (s *Stats) Get() map[string]int64 {
	ret := make(map[string]int64)
	s.mux.Lock()
	for key, val := range s.counters {
		ret[key] = val
	}
	s.mux.Unlock()
	return ret
}

// Observe implements StatsServer
func (s *Stats) Observe(c servo.Correction, state servo.State) {
	s.mux.Lock()
	defer s.mux.Unlock()
	s.counters["samples"]++
	s.last = c
	switch state {
	case servo.StateInit:
		// nothing measured yet
		return
	case servo.StateJump:
		s.counters["resets"]++
	case servo.StateClamped:
		s.counters["clamped"]++
	}
	s.drift.Add(c.Drift)
	us := int64(math.Round(math.Abs(c.Drift) * 1e6))
	if us > s.absDrift.HighestTrackableValue() {
		us = s.absDrift.HighestTrackableValue()
	}
	// value is within range, RecordValue can't fail
	_ = s.absDrift.RecordValue(us)
}

// Snapshot returns current Summary
func (s *Stats) Snapshot() Summary {
	s.mux.Lock()
	defer s.mux.Unlock()
	sum := Summary{
		Period:           s.period,
		Samples:          s.counters["samples"],
		Clamped:          s.counters["clamped"],
		Resets:           s.counters["resets"],
		AccumulatedError: s.last.AccumulatedError,
		LastInterval:     s.last.Next,
	}
	if s.absDrift.TotalCount() > 0 {
		sum.MeanDrift = s.drift.Mean()
		sum.StddevDrift = s.drift.Stddev()
		sum.P50Drift = float64(s.absDrift.ValueAtQuantile(50)) / 1e6
		sum.P99Drift = float64(s.absDrift.ValueAtQuantile(99)) / 1e6
		sum.MaxDrift = float64(s.absDrift.Max()) / 1e6
	}
	return sum
}

// Reset all the values of counters and drift distribution
func (s *Stats) Reset() {
	s.mux.Lock()
	for k := range s.counters {
		s.counters[k] = 0
	}
	s.drift = welford.New()
	s.absDrift.Reset()
	s.last = servo.Correction{}
	s.mux.Unlock()
}

// multiStats fans stats out to several servers
type multiStats []StatsServer

// Tee returns StatsServer reporting to all given servers
func Tee(servers ...StatsServer) StatsServer {
	return multiStats(servers)
}

func (m multiStats) SetCounter(key string, val int64) {
	for _, s := range m {
		s.SetCounter(key, val)
	}
}

func (m multiStats) UpdateCounterBy(key string, count int64) {
	for _, s := range m {
		s.UpdateCounterBy(key, count)
	}
}

func (m multiStats) Observe(c servo.Correction, state servo.State) {
	for _, s := range m {
		s.Observe(c, state)
	}
}
