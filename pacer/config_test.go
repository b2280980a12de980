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
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestEvalAndValidate(t *testing.T) {
	c := &Config{
		Period:         0,
		Clock:          "sundial",
		ResetThreshold: -1,
		Samples:        -1,
		MonitoringPort: 70000,
		Check:          "p999 < 1",
	}
	require.Equal(t, fmt.Errorf("bad config: 'period' must be >0"), c.EvalAndValidate())

	c.Period = 0.5
	require.EqualError(t, c.EvalAndValidate(), `bad config: 'clock': unsupported clock "sundial"`)

	c.Clock = "realtime"
	require.Equal(t, fmt.Errorf("bad config: 'resetthreshold' must be >=0"), c.EvalAndValidate())

	c.ResetThreshold = 0.1
	require.Equal(t, fmt.Errorf("bad config: 'samples' must be >=0"), c.EvalAndValidate())

	c.Samples = 10
	require.Equal(t, fmt.Errorf("bad config: 'monitoringport' must be between 0 and 65535"), c.EvalAndValidate())

	c.MonitoringPort = 4269
	require.EqualError(t, c.EvalAndValidate(), `bad config: 'check': unsupported variable "p999"`)

	c.Check = ""
	require.Nil(t, c.EvalAndValidate())
	require.Equal(t, DefaultCheck, c.Check)
}

func TestReadConfigYAML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "pacer.yaml")
	data := `period: 0.25
clock: boottime
resetthreshold: 2
samples: 40
check: "p99 < 0.01"
`
	require.NoError(t, os.WriteFile(path, []byte(data), 0644))
	c, err := ReadConfig(path)
	require.NoError(t, err)
	want := DefaultConfig()
	want.Period = 0.25
	want.Clock = "boottime"
	want.ResetThreshold = 2
	want.Samples = 40
	want.Check = "p99 < 0.01"
	require.Equal(t, want, c)
	require.NoError(t, c.EvalAndValidate())
}

func TestReadConfigYAMLUnknownField(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "pacer.yaml")
	require.NoError(t, os.WriteFile(path, []byte("period: 1\nfrequency: 3\n"), 0644))
	_, err := ReadConfig(path)
	require.Error(t, err)
}

func TestReadConfigTOML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "pacer.toml")
	data := `Period = 2.0
Clock = "realtime"
Samples = 5
MonitoringPort = 9100
CSVPath = "/tmp/pacer.csv"
`
	require.NoError(t, os.WriteFile(path, []byte(data), 0644))
	c, err := ReadConfig(path)
	require.NoError(t, err)
	want := DefaultConfig()
	want.Period = 2
	want.Clock = "realtime"
	want.Samples = 5
	want.MonitoringPort = 9100
	want.CSVPath = "/tmp/pacer.csv"
	require.Equal(t, want, c)
}

func TestReadConfigTOMLUnknownField(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "pacer.toml")
	require.NoError(t, os.WriteFile(path, []byte("Frequency = 3\n"), 0644))
	_, err := ReadConfig(path)
	require.Error(t, err)
}

func TestReadConfigMissing(t *testing.T) {
	_, err := ReadConfig(filepath.Join(t.TempDir(), "nope.yaml"))
	require.ErrorIs(t, err, os.ErrNotExist)
}
