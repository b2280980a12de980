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
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"github.com/Knetic/govaluate"
	toml "github.com/pelletier/go-toml/v2"
	yaml "gopkg.in/yaml.v2"

	"github.com/facebook/cadence/clock"
)

// Config represents configuration we expect to read from file
type Config struct {
	Period         float64 // desired cadence in seconds
	Clock          string  // name of the clock we measure cadence on
	ResetThreshold float64 // per-cycle drift in seconds above which accumulated error is dropped, 0 disables
	Samples        int     // stop after this many samples, 0 means run until cancelled
	Check          string  // expression deciding whether the loop kept its cadence
	MonitoringPort int     // port to export prometheus metrics on, 0 disables
	CSVPath        string  // write per-sample CSV log into this file

	checkExpr *govaluate.EvaluableExpression
}

// DefaultConfig returns Config with default values
func DefaultConfig() *Config {
	return &Config{
		Period: 1.0,
		Clock:  clock.Monotonic,
		Check:  DefaultCheck,
	}
}

// EvalAndValidate makes sure config is valid and evaluates expressions for further use.
func (c *Config) EvalAndValidate() error {
	if c.Period <= 0 {
		return fmt.Errorf("bad config: 'period' must be >0")
	}
	if _, err := clock.ClockIDFromName(c.Clock); err != nil {
		return fmt.Errorf("bad config: 'clock': %w", err)
	}
	if c.ResetThreshold < 0 {
		return fmt.Errorf("bad config: 'resetthreshold' must be >=0")
	}
	if c.Samples < 0 {
		return fmt.Errorf("bad config: 'samples' must be >=0")
	}
	if c.MonitoringPort < 0 || c.MonitoringPort > 65535 {
		return fmt.Errorf("bad config: 'monitoringport' must be between 0 and 65535")
	}
	if c.Check == "" {
		c.Check = DefaultCheck
	}
	expr, err := prepareCheck(c.Check)
	if err != nil {
		return fmt.Errorf("bad config: 'check': %w", err)
	}
	c.checkExpr = expr
	return nil
}

// ReadConfig reads config and unmarshals it from yaml or toml into Config, based on file extension
func ReadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	c := DefaultConfig()
	switch filepath.Ext(path) {
	case ".toml":
		d := toml.NewDecoder(bytes.NewReader(data))
		d.DisallowUnknownFields()
		err = d.Decode(c)
	default:
		err = yaml.UnmarshalStrict(data, c)
	}
	return c, err
}
