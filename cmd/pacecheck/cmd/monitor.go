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
	"errors"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/coreos/go-systemd/daemon"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/facebook/cadence/clock"
	"github.com/facebook/cadence/monitor"
	"github.com/facebook/cadence/pacer"
)

var (
	monitorFlags         loopFlags
	monitorOutputFlag    string
	monitorProcessesFlag []string
	monitorNoHostFlag    bool
)

func init() {
	RootCmd.AddCommand(monitorCmd)
	monitorFlags.register(monitorCmd.Flags(), 0)
	monitorCmd.Flags().StringVarP(&monitorOutputFlag, "output", "o", "", "file to write monitoring log into, stdout if empty")
	monitorCmd.Flags().StringSliceVar(&monitorProcessesFlag, "process", nil, "names of processes (such as VM hypervisors) to report separately")
	monitorCmd.Flags().BoolVar(&monitorNoHostFlag, "no-host", false, "don't report whole host usage")
}

func buildSampler(processes []string, noHost bool) (monitor.Sampler, error) {
	samplers := []monitor.Sampler{}
	if !noHost {
		h, err := monitor.NewHostSampler()
		if err != nil {
			return nil, err
		}
		samplers = append(samplers, h)
	}
	if len(processes) > 0 {
		samplers = append(samplers, monitor.NewProcessSampler(processes...))
	}
	if len(samplers) == 0 {
		return nil, errors.New("nothing to monitor")
	}
	return monitor.Join(samplers...), nil
}

// runMonitor writes monitoring log until ctx is done or the configured number of samples is taken
func runMonitor(ctx context.Context, cfg *pacer.Config, clk pacer.Clock, s monitor.Sampler, w io.Writer, wall monitor.WallClock) error {
	stats := pacer.NewStats(cfg.Period)
	p, err := pacer.New(cfg, clk, stats, nil)
	if err != nil {
		return err
	}
	m := monitor.New(s, w, wall)
	if err := m.Start(); err != nil {
		return err
	}
	if _, err := daemon.SdNotify(false, daemon.SdNotifyReady); err != nil {
		log.Warningf("failed to notify systemd: %v", err)
	}
	err = p.Run(ctx, m.Task())
	if stopErr := m.Stop(); stopErr != nil {
		return stopErr
	}
	if errors.Is(err, context.Canceled) {
		err = nil
	}
	sum := stats.Snapshot()
	log.Infof("monitor took %d samples, %d failed, accumulated error %+.9fs", sum.Samples, stats.Get()["task_error"], sum.AccumulatedError)
	return err
}

func monitorRun(flags *pflag.FlagSet, f *loopFlags) error {
	cfg, err := f.loadConfig(flags)
	if err != nil {
		return err
	}
	s, err := buildSampler(monitorProcessesFlag, monitorNoHostFlag)
	if err != nil {
		return err
	}
	clk, err := clock.NewSystem(cfg.Clock)
	if err != nil {
		return err
	}
	var w io.Writer = os.Stdout
	if monitorOutputFlag != "" {
		out, err := os.Create(monitorOutputFlag)
		if err != nil {
			return err
		}
		defer out.Close()
		w = out
	}
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()
	return runMonitor(ctx, cfg, clk, s, w, nil)
}

var monitorCmd = &cobra.Command{
	Use:   "monitor",
	Short: "Write host and process CPU/memory usage at a fixed cadence",
	Run: func(c *cobra.Command, _ []string) {
		ConfigureVerbosity()
		if err := monitorRun(c.Flags(), &monitorFlags); err != nil {
			log.Fatal(err)
		}
	},
}
