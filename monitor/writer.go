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
Package monitor samples host and process CPU and memory usage and writes
it in the monitoring log format trace converters read.

A log looks like

	Tue 2023-11-14 22:13:20.500000000; ********* Start Monitoring **********
	Tue 2023-11-14 22:13:21.000000000;host 41.20 6589.50 12.75;qemu 3.10 512.00 97.00
	Tue 2023-11-14 22:13:22.000001000; ********* Stopping Monitoring **********

Every record holds one entry per sampled name: memory percent, memory used in MiB and CPU percent.
*/
package monitor

import (
	"fmt"
	"io"
	"strings"

	"github.com/facebook/cadence/timespec"
)

// Banners opening and closing a monitoring log
const (
	StartBanner = " ********* Start Monitoring **********"
	StopBanner  = " ********* Stopping Monitoring **********"
)

const fieldSep = ";"

// Usage is resource usage of a single host or process
type Usage struct {
	Name       string
	MemPercent float64
	MemUsedMiB float64
	CPUPercent float64
}

func (u Usage) String() string {
	return fmt.Sprintf("%s %.2f %.2f %.2f", u.Name, u.MemPercent, u.MemUsedMiB, u.CPUPercent)
}

// Writer writes monitoring log
type Writer struct {
	w io.Writer
	f timespec.Formatter
}

// NewWriter returns Writer stamping lines with timespec.DefaultFormatter
func NewWriter(w io.Writer) *Writer {
	return &Writer{w: w, f: timespec.DefaultFormatter}
}

// Start writes the opening banner
func (w *Writer) Start(ts timespec.Timestamp) error {
	_, err := fmt.Fprintf(w.w, "%s%s%s\n", w.f.Format(ts), fieldSep, StartBanner)
	return err
}

// Record writes a line with all the entries
func (w *Writer) Record(ts timespec.Timestamp, usage []Usage) error {
	var b strings.Builder
	b.WriteString(w.f.Format(ts))
	for _, u := range usage {
		if strings.ContainsAny(u.Name, fieldSep+" \n") {
			return fmt.Errorf("name %q can't contain spaces or %q", u.Name, fieldSep)
		}
		b.WriteString(fieldSep)
		b.WriteString(u.String())
	}
	b.WriteString("\n")
	_, err := io.WriteString(w.w, b.String())
	return err
}

// Stop writes the closing banner
func (w *Writer) Stop(ts timespec.Timestamp) error {
	_, err := fmt.Fprintf(w.w, "%s%s%s\n", w.f.Format(ts), fieldSep, StopBanner)
	return err
}
