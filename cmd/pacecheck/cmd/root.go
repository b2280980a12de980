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
	"os"

	"github.com/davecgh/go-spew/spew"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/facebook/cadence/pacer"
)

// RootCmd is a main entry point. It's exported so pacecheck could be easily extended without touching core functionality.
var RootCmd = &cobra.Command{
	Use:   "pacecheck",
	Short: "Drift-compensated periodic loops and timestamp math",
}

// flags
var rootVerboseFlag bool

func init() {
	RootCmd.PersistentFlags().BoolVarP(&rootVerboseFlag, "verbose", "v", false, "verbose output")
}

// ConfigureVerbosity configures log verbosity based on parsed flags. Needs to be called by any subcommand.
func ConfigureVerbosity() {
	log.SetLevel(log.InfoLevel)
	if rootVerboseFlag {
		log.SetLevel(log.DebugLevel)
	}
}

// Execute is the main entry point for CLI interface
func Execute() {
	if err := RootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

// pacer flags shared by subcommands running loops
type loopFlags struct {
	config         string
	period         float64
	clock          string
	samples        int
	resetThreshold float64
	check          string
	monitoringPort int
	csv            string
}

func (f *loopFlags) register(flags *pflag.FlagSet, samples int) {
	defaults := pacer.DefaultConfig()
	flags.StringVarP(&f.config, "config", "c", "", "path to the yaml or toml config")
	flags.Float64VarP(&f.period, "period", "p", defaults.Period, "desired period in seconds")
	flags.StringVar(&f.clock, "clock", defaults.Clock, "clock to measure cadence on: monotonic, realtime or boottime")
	flags.IntVarP(&f.samples, "samples", "n", samples, "number of samples to take, 0 means until interrupted")
	flags.Float64Var(&f.resetThreshold, "reset-threshold", defaults.ResetThreshold, "drop accumulated error when a single cycle drifts more than this many seconds, 0 disables")
	flags.StringVar(&f.check, "check", defaults.Check, pacer.CheckHelp)
	flags.IntVar(&f.monitoringPort, "monitoringport", defaults.MonitoringPort, "port to export prometheus metrics on, 0 disables")
	flags.StringVar(&f.csv, "csv", defaults.CSVPath, "write per-sample CSV log into this file")
}

// loadConfig reads the config if given and applies flags explicitly set on command line on top of it
func (f *loopFlags) loadConfig(flags *pflag.FlagSet) (*pacer.Config, error) {
	cfg := pacer.DefaultConfig()
	cfg.Samples = f.samples
	if f.config != "" {
		var err error
		if cfg, err = pacer.ReadConfig(f.config); err != nil {
			return nil, fmt.Errorf("reading config from %q: %w", f.config, err)
		}
	}
	if flags.Changed("period") {
		cfg.Period = f.period
	}
	if flags.Changed("clock") {
		cfg.Clock = f.clock
	}
	if flags.Changed("samples") {
		cfg.Samples = f.samples
	}
	if flags.Changed("reset-threshold") {
		cfg.ResetThreshold = f.resetThreshold
	}
	if flags.Changed("check") {
		cfg.Check = f.check
	}
	if flags.Changed("monitoringport") {
		cfg.MonitoringPort = f.monitoringPort
	}
	if flags.Changed("csv") {
		cfg.CSVPath = f.csv
	}
	if err := cfg.EvalAndValidate(); err != nil {
		return nil, err
	}
	if log.IsLevelEnabled(log.DebugLevel) {
		log.Debugf("effective config: %s", spew.Sdump(cfg))
	}
	return cfg, nil
}
