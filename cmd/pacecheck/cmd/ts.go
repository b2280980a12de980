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

package cmd

import (
	"fmt"
	"io"
	"os"
	"strconv"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/facebook/cadence/clock"
	"github.com/facebook/cadence/servo"
	"github.com/facebook/cadence/timespec"
)

var tsClockFlag string

func init() {
	RootCmd.AddCommand(tsCmd)
	tsCmd.AddCommand(tsNowCmd, tsElapsedCmd, tsAddCmd, tsSubCmd, tsConvCmd, tsNextCmd)
	tsNowCmd.Flags().StringVar(&tsClockFlag, "clock", clock.Realtime, "clock to read: monotonic, realtime or boottime")
}

func parseTimestamp(s string) (timespec.Timestamp, error) {
	ts, err := timespec.ParseDecimal(s)
	if err != nil {
		return timespec.Timestamp{}, fmt.Errorf("timestamp %q: %w", s, err)
	}
	return ts, nil
}

func parseSeconds(s string) (float64, error) {
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("seconds %q: %w", s, err)
	}
	return v, nil
}

func printTimestamp(w io.Writer, ts timespec.Timestamp) {
	fmt.Fprintf(w, "%s\t%s\n", ts.Decimal(), ts)
}

func tsNowRun(w io.Writer, name string) error {
	id, err := clock.ClockIDFromName(name)
	if err != nil {
		return err
	}
	ts, err := clock.Now(id)
	if err != nil {
		return err
	}
	res, err := clock.Resolution(id)
	if err != nil {
		return err
	}
	printTimestamp(w, ts)
	fmt.Fprintf(w, "resolution: %s\n", res.Decimal())
	return nil
}

func tsElapsedRun(w io.Writer, from, to string) error {
	x, err := parseTimestamp(from)
	if err != nil {
		return err
	}
	y, err := parseTimestamp(to)
	if err != nil {
		return err
	}
	d, err := timespec.Elapsed(x, y)
	if err != nil {
		return err
	}
	fmt.Fprintln(w, d.Decimal())
	return nil
}

func tsOffsetRun(w io.Writer, base, offset string, op func(timespec.Timestamp, float64) (timespec.Timestamp, error)) error {
	b, err := parseTimestamp(base)
	if err != nil {
		return err
	}
	o, err := parseSeconds(offset)
	if err != nil {
		return err
	}
	ts, err := op(b, o)
	if err != nil {
		return err
	}
	printTimestamp(w, ts)
	return nil
}

func tsConvRun(w io.Writer, value string) error {
	v, err := parseSeconds(value)
	if err != nil {
		return err
	}
	ts, err := timespec.FromFloat64(v)
	if err != nil {
		return err
	}
	fmt.Fprintf(w, "(%d, %d)\t%s\n", ts.Seconds, ts.Nanoseconds, strconv.FormatFloat(ts.Float64(), 'f', -1, 64))
	return nil
}

func tsNextRun(w io.Writer, actual, previous, period, accumulated string) error {
	a, err := parseTimestamp(actual)
	if err != nil {
		return err
	}
	p, err := parseTimestamp(previous)
	if err != nil {
		return err
	}
	desired, err := parseSeconds(period)
	if err != nil {
		return err
	}
	acc, err := parseSeconds(accumulated)
	if err != nil {
		return err
	}
	c, err := servo.NextInterval(a, p, desired, acc)
	if err != nil {
		return err
	}
	fmt.Fprintf(w, "interval: %s\ndrift: %+.9f\naccumulated: %+.9f\nclamped: %v\n", c.Interval.Decimal(), c.Drift, c.AccumulatedError, c.Clamped)
	return nil
}

var tsCmd = &cobra.Command{
	Use:   "ts",
	Short: "Timestamp arithmetic. Timestamps are decimal seconds, e.g. 1674148530.671467104",
}

var tsNowCmd = &cobra.Command{
	Use:   "now",
	Short: "Print current time of a clock",
	Args:  cobra.NoArgs,
	Run: func(_ *cobra.Command, _ []string) {
		ConfigureVerbosity()
		if err := tsNowRun(os.Stdout, tsClockFlag); err != nil {
			log.Fatal(err)
		}
	},
}

var tsElapsedCmd = &cobra.Command{
	Use:   "elapsed FROM TO",
	Short: "Print TO - FROM",
	Args:  cobra.ExactArgs(2),
	Run: func(_ *cobra.Command, args []string) {
		ConfigureVerbosity()
		if err := tsElapsedRun(os.Stdout, args[0], args[1]); err != nil {
			log.Fatal(err)
		}
	},
}

var tsAddCmd = &cobra.Command{
	Use:   "add TIMESTAMP SECONDS",
	Short: "Move timestamp forward by non-negative number of seconds",
	Args:  cobra.ExactArgs(2),
	Run: func(_ *cobra.Command, args []string) {
		ConfigureVerbosity()
		if err := tsOffsetRun(os.Stdout, args[0], args[1], timespec.AddPositive); err != nil {
			log.Fatal(err)
		}
	},
}

var tsSubCmd = &cobra.Command{
	Use:   "sub TIMESTAMP SECONDS",
	Short: "Move timestamp back by non-negative number of seconds",
	Args:  cobra.ExactArgs(2),
	Run: func(_ *cobra.Command, args []string) {
		ConfigureVerbosity()
		if err := tsOffsetRun(os.Stdout, args[0], args[1], timespec.SubPositive); err != nil {
			log.Fatal(err)
		}
	},
}

var tsConvCmd = &cobra.Command{
	Use:   "conv SECONDS",
	Short: "Split floating point seconds into seconds and nanoseconds",
	Args:  cobra.ExactArgs(1),
	Run: func(_ *cobra.Command, args []string) {
		ConfigureVerbosity()
		if err := tsConvRun(os.Stdout, args[0]); err != nil {
			log.Fatal(err)
		}
	},
}

var tsNextCmd = &cobra.Command{
	Use:   "next ACTUAL PREVIOUS PERIOD ACCUMULATED",
	Short: "Compute corrected sleep interval of a periodic loop",
	Args:  cobra.ExactArgs(4),
	Run: func(_ *cobra.Command, args []string) {
		ConfigureVerbosity()
		if err := tsNextRun(os.Stdout, args[0], args[1], args[2], args[3]); err != nil {
			log.Fatal(err)
		}
	},
}
