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
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/facebook/cadence/servo"
	"github.com/facebook/cadence/timespec"
)

// Sample has all the measurements of one cycle we may want to log
type Sample struct {
	Time             timespec.Timestamp
	Measured         float64
	Drift            float64
	AccumulatedError float64
	Interval         timespec.Timestamp
	State            servo.State
}

// NewSample builds Sample from servo output
func NewSample(now timespec.Timestamp, c servo.Correction, state servo.State) *Sample {
	return &Sample{
		Time:             now,
		Measured:         c.Measured,
		Drift:            c.Drift,
		AccumulatedError: c.AccumulatedError,
		Interval:         c.Interval,
		State:            state,
	}
}

var header = []string{
	"time",
	"measured",
	"drift",
	"accumulated",
	"interval",
	"state",
}

// CSVRecords returns all data from this sample as CSV. Must by synced with `header` variable.
func (s *Sample) CSVRecords() []string {
	return []string{
		s.Time.Decimal(),
		strconv.FormatFloat(s.Measured, 'f', 9, 64),
		strconv.FormatFloat(s.Drift, 'f', 9, 64),
		strconv.FormatFloat(s.AccumulatedError, 'f', 9, 64),
		s.Interval.Decimal(),
		s.State.String(),
	}
}

// Logger is something that can store Sample somewhere
type Logger interface {
	Log(*Sample) error
}

// CSVLogger logs Sample as CSV into given writer
type CSVLogger struct {
	csvwriter     *csv.Writer
	printedHeader bool
}

// NewCSVLogger returns new CSVLogger
func NewCSVLogger(w io.Writer) *CSVLogger {
	return &CSVLogger{
		csvwriter: csv.NewWriter(w),
	}
}

// Log implements Logger interface
func (l *CSVLogger) Log(s *Sample) error {
	if !l.printedHeader {
		if err := l.csvwriter.Write(header); err != nil {
			return err
		}
		l.printedHeader = true
	}
	if err := l.csvwriter.Write(s.CSVRecords()); err != nil {
		return err
	}
	l.csvwriter.Flush()
	return l.csvwriter.Error()
}

// DummyLogger logs drift and interval to given writer
type DummyLogger struct {
	w io.Writer
}

// NewDummyLogger returns new DummyLogger
func NewDummyLogger(w io.Writer) *DummyLogger {
	return &DummyLogger{w: w}
}

// Log implements Logger interface
func (l *DummyLogger) Log(s *Sample) error {
	_, err := fmt.Fprintf(l.w, "drift = %+.9fs, interval = %s\n", s.Drift, s.Interval.Duration())
	return err
}
