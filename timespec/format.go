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
	"strconv"
	"strings"
	"time"
)

// DefaultLayout renders a weekday, date, time and nanoseconds.
// Its first 30 characters match the "%a %Y-%m-%d %H:%M:%S.%f" layout monitor log readers parse.
const DefaultLayout = "Mon 2006-01-02 15:04:05.000000000"

// Formatter renders timestamps with a fixed layout and location
type Formatter struct {
	Layout   string
	Location *time.Location
}

// DefaultFormatter renders DefaultLayout in UTC
var DefaultFormatter = Formatter{Layout: DefaultLayout, Location: time.UTC}

func (f Formatter) layout() string {
	if f.Layout == "" {
		return DefaultLayout
	}
	return f.Layout
}

func (f Formatter) location() *time.Location {
	if f.Location == nil {
		return time.UTC
	}
	return f.Location
}

// Format renders t as time since the Unix epoch
func (f Formatter) Format(t Timestamp) string {
	return t.Time().In(f.location()).Format(f.layout())
}

// Parse reads back a string produced by Format
func (f Formatter) Parse(s string) (Timestamp, error) {
	tm, err := time.ParseInLocation(f.layout(), s, f.location())
	if err != nil {
		return Timestamp{}, err
	}
	return FromTime(tm), nil
}

// Stringify renders t with DefaultFormatter
func Stringify(t Timestamp) string {
	return DefaultFormatter.Format(t)
}

// Parse reads a string produced by Stringify
func Parse(s string) (Timestamp, error) {
	return DefaultFormatter.Parse(s)
}

// String implements fmt.Stringer
func (t Timestamp) String() string {
	return Stringify(t)
}

// Decimal renders t as signed seconds with nine fractional digits, e.g. "-0.250000000"
func (t Timestamp) Decimal() string {
	if t.Seconds < 0 && t.Nanoseconds > 0 {
		// (-1, 750000000) is -0.25
		return fmt.Sprintf("-%d.%09d", -(t.Seconds + 1), NanosecondsPerSecond-t.Nanoseconds)
	}
	return fmt.Sprintf("%d.%09d", t.Seconds, t.Nanoseconds)
}

// ParseDecimal reads signed decimal seconds with up to nine fractional digits
// without going through float64, so "1674148530.671467104" is kept exact.
func ParseDecimal(s string) (Timestamp, error) {
	str := strings.TrimSpace(s)
	negative := strings.HasPrefix(str, "-")
	str = strings.TrimPrefix(strings.TrimPrefix(str, "-"), "+")
	whole, frac, _ := strings.Cut(str, ".")
	if whole == "" && frac == "" {
		return Timestamp{}, fmt.Errorf("parse decimal %q: empty value", s)
	}
	if len(frac) > 9 {
		return Timestamp{}, fmt.Errorf("parse decimal %q: more than 9 fractional digits", s)
	}
	var sec, nsec uint64
	var err error
	if whole != "" {
		if sec, err = strconv.ParseUint(whole, 10, 63); err != nil {
			return Timestamp{}, fmt.Errorf("parse decimal %q: %w", s, err)
		}
	}
	if frac != "" {
		if nsec, err = strconv.ParseUint(frac+strings.Repeat("0", 9-len(frac)), 10, 63); err != nil {
			return Timestamp{}, fmt.Errorf("parse decimal %q: %w", s, err)
		}
	}
	if negative {
		return Normalize(-int64(sec), -int64(nsec)), nil
	}
	return Timestamp{Seconds: int64(sec), Nanoseconds: int64(nsec)}, nil
}
