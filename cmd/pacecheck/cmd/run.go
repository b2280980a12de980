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
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"sort"
	"strconv"
	"syscall"
	"time"

	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"golang.org/x/exp/maps"
	"golang.org/x/sync/errgroup"

	"github.com/facebook/cadence/clock"
	"github.com/facebook/cadence/pacer"
	"github.com/facebook/cadence/timespec"
)

var (
	runFlags    loopFlags
	runLoopsFlg int
	runWorkFlag time.Duration
)

var okString = color.GreenString("[ OK ]")
var failString = color.RedString("[FAIL]")

func init() {
	RootCmd.AddCommand(runCmd)
	runFlags.register(runCmd.Flags(), 10)
	runCmd.Flags().IntVarP(&runLoopsFlg, "loops", "l", 1, "number of independent loops to run concurrently")
	runCmd.Flags().DurationVarP(&runWorkFlag, "work", "w", 0, "time each cycle's task keeps busy, to see it compensated")
}

// loopResult is what a single loop ended with
type loopResult struct {
	name     string
	summary  pacer.Summary
	counters map[string]int64
	ok       bool
}

// clockFactory returns a new clock for every loop
type clockFactory func() (pacer.Clock, error)

func systemClocks(name string) clockFactory {
	return func() (pacer.Clock, error) {
		return clock.NewSystem(name)
	}
}

// busyTask simulates work taking d
func busyTask(clk pacer.Clock, d time.Duration) pacer.Task {
	if d <= 0 {
		return nil
	}
	return func(ctx context.Context, _ timespec.Timestamp) error {
		return clk.Sleep(ctx, timespec.FromDuration(d))
	}
}

func runLoops(ctx context.Context, cfg *pacer.Config, loops int, clocks clockFactory, work time.Duration, exporter *pacer.PrometheusExporter) ([]*loopResult, error) {
	if loops < 1 {
		return nil, fmt.Errorf("need at least one loop, got %d", loops)
	}
	if cfg.CSVPath != "" && loops > 1 {
		return nil, fmt.Errorf("CSV log can be written for a single loop only")
	}
	results := make([]*loopResult, loops)
	eg, ictx := errgroup.WithContext(ctx)
	for i := 0; i < loops; i++ {
		name := strconv.Itoa(i)
		clk, err := clocks()
		if err != nil {
			return nil, err
		}
		stats := pacer.NewStats(cfg.Period)
		var ss pacer.StatsServer = stats
		if exporter != nil {
			ps, err := exporter.NewStats(name)
			if err != nil {
				return nil, err
			}
			ss = pacer.Tee(stats, ps)
		}
		var l pacer.Logger
		if cfg.CSVPath != "" {
			f, err := os.Create(cfg.CSVPath)
			if err != nil {
				return nil, fmt.Errorf("creating CSV log: %w", err)
			}
			defer f.Close()
			l = pacer.NewCSVLogger(f)
		} else if log.IsLevelEnabled(log.DebugLevel) {
			l = pacer.NewDummyLogger(os.Stderr)
		}
		p, err := pacer.New(cfg, clk, ss, l)
		if err != nil {
			return nil, err
		}
		res := &loopResult{name: name}
		results[i] = res
		task := busyTask(clk, work)
		eg.Go(func() error {
			err := p.Run(ictx, task)
			res.summary = stats.Snapshot()
			res.counters = stats.Get()
			if err != nil && ctx.Err() == nil {
				return fmt.Errorf("loop %s: %w", name, err)
			}
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}
	for _, res := range results {
		ok, err := cfg.Evaluate(res.summary)
		if err != nil {
			return nil, err
		}
		res.ok = ok
	}
	return results, nil
}

func seconds(v float64) string {
	return strconv.FormatFloat(v, 'f', 9, 64)
}

func printResults(w io.Writer, cfg *pacer.Config, results []*loopResult) {
	table := tablewriter.NewWriter(w)
	table.Header("loop", "samples", "clamped", "resets", "mean", "stddev", "p50", "p99", "max", "accumulated")
	for _, res := range results {
		s := res.summary
		_ = table.Append([]string{
			res.name,
			strconv.FormatInt(s.Samples, 10),
			strconv.FormatInt(s.Clamped, 10),
			strconv.FormatInt(s.Resets, 10),
			seconds(s.MeanDrift),
			seconds(s.StddevDrift),
			seconds(s.P50Drift),
			seconds(s.P99Drift),
			seconds(s.MaxDrift),
			seconds(s.AccumulatedError),
		})
	}
	_ = table.Render()

	for _, res := range results {
		verdict := okString
		if !res.ok {
			verdict = failString
		}
		fmt.Fprintf(w, "%s loop %s: %s\n", verdict, res.name, color.BlueString(cfg.Check))
		if !rootVerboseFlag {
			continue
		}
		keys := maps.Keys(res.counters)
		sort.Strings(keys)
		for _, k := range keys {
			fmt.Fprintf(w, "\t%s: %d\n", k, res.counters[k])
		}
	}
}

func allOK(results []*loopResult) bool {
	for _, res := range results {
		if !res.ok {
			return false
		}
	}
	return true
}

func runRun(flags *pflag.FlagSet, f *loopFlags, loops int, work time.Duration) (bool, error) {
	cfg, err := f.loadConfig(flags)
	if err != nil {
		return false, err
	}
	var exporter *pacer.PrometheusExporter
	if cfg.MonitoringPort != 0 {
		exporter = pacer.NewPrometheusExporter(cfg.MonitoringPort)
		go func() {
			if err := exporter.Start(); err != nil {
				log.Errorf("prometheus exporter: %v", err)
			}
		}()
	}
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()
	results, err := runLoops(ctx, cfg, loops, systemClocks(cfg.Clock), work, exporter)
	if err != nil {
		return false, err
	}
	printResults(os.Stdout, cfg, results)
	return allOK(results), nil
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run drift-compensated loops and report how well they kept the period",
	Run: func(c *cobra.Command, _ []string) {
		ConfigureVerbosity()
		ok, err := runRun(c.Flags(), &runFlags, runLoopsFlg, runWorkFlag)
		if err != nil {
			log.Fatal(err)
		}
		if !ok {
			os.Exit(1)
		}
	},
}
