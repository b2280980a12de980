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
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/facebook/cadence/timespec"
)

// ErrNoStartBanner is returned when the log doesn't begin with StartBanner
var ErrNoStartBanner = errors.New("log must start with monitoring banner")

// Record is a parsed line of monitoring log
type Record struct {
	Time timespec.Timestamp
	// Offset is time elapsed since the start banner
	Offset timespec.Timestamp
	Usage  []Usage
}

// Log is a parsed monitoring log
type Log struct {
	Start   timespec.Timestamp
	Records []Record
	// Complete is set when the stop banner was found
	Complete bool
}

// Find returns all the usage entries with given name as time series
func (l *Log) Find(name string) []Record {
	res := []Record{}
	for _, r := range l.Records {
		for _, u := range r.Usage {
			if u.Name == name {
				res = append(res, Record{Time: r.Time, Offset: r.Offset, Usage: []Usage{u}})
			}
		}
	}
	return res
}

func parseUsage(entry string) (Usage, error) {
	cols := strings.Fields(entry)
	if len(cols) != 4 {
		return Usage{}, fmt.Errorf("entry %q: want 4 fields, got %d", entry, len(cols))
	}
	u := Usage{Name: cols[0]}
	var err error
	for i, dst := range []*float64{&u.MemPercent, &u.MemUsedMiB, &u.CPUPercent} {
		if *dst, err = strconv.ParseFloat(cols[i+1], 64); err != nil {
			return Usage{}, fmt.Errorf("entry %q: %w", entry, err)
		}
	}
	return u, nil
}

// ReadLog parses monitoring log
func ReadLog(r io.Reader) (*Log, error) {
	s := bufio.NewScanner(r)
	l := &Log{}
	lineNo := 0
	for s.Scan() {
		lineNo++
		line := s.Text()
		if line == "" {
			continue
		}
		cols := strings.Split(line, fieldSep)
		if len(cols) < 2 {
			return nil, fmt.Errorf("line %d: no fields", lineNo)
		}
		ts, err := timespec.Parse(cols[0])
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", lineNo, err)
		}
		if lineNo == 1 {
			if cols[1] != StartBanner {
				return nil, ErrNoStartBanner
			}
			l.Start = ts
			continue
		}
		if cols[1] == StopBanner {
			l.Complete = true
			break
		}
		rec := Record{Time: ts}
		if rec.Offset, err = timespec.Elapsed(l.Start, ts); err != nil {
			return nil, fmt.Errorf("line %d: %w", lineNo, err)
		}
		for _, entry := range cols[1:] {
			u, err := parseUsage(entry)
			if err != nil {
				return nil, fmt.Errorf("line %d: %w", lineNo, err)
			}
			rec.Usage = append(rec.Usage, u)
		}
		l.Records = append(l.Records, rec)
	}
	if err := s.Err(); err != nil {
		return nil, err
	}
	if lineNo == 0 {
		return nil, ErrNoStartBanner
	}
	return l, nil
}
