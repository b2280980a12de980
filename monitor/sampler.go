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
	"fmt"
	"os"
	"sort"

	"github.com/shirou/gopsutil/cpu"
	"github.com/shirou/gopsutil/mem"
	"github.com/shirou/gopsutil/process"
	log "github.com/sirupsen/logrus"
)

const bytesInMiB = 1024 * 1024

// Sampler returns current usage of whatever it watches
type Sampler interface {
	Sample() ([]Usage, error)
}

// HostSampler reports whole host usage as a single entry
type HostSampler struct {
	Name string
}

// NewHostSampler returns HostSampler named after the hostname
func NewHostSampler() (*HostSampler, error) {
	name, err := os.Hostname()
	if err != nil {
		return nil, err
	}
	return &HostSampler{Name: name}, nil
}

// Sample implements Sampler. CPU usage is measured since the previous call.
func (s *HostSampler) Sample() ([]Usage, error) {
	vm, err := mem.VirtualMemory()
	if err != nil {
		return nil, fmt.Errorf("reading memory stats: %w", err)
	}
	cpus, err := cpu.Percent(0, false)
	if err != nil {
		return nil, fmt.Errorf("reading cpu stats: %w", err)
	}
	if len(cpus) != 1 {
		return nil, fmt.Errorf("want total cpu usage, got %d values", len(cpus))
	}
	return []Usage{{
		Name:       s.Name,
		MemPercent: vm.UsedPercent,
		MemUsedMiB: float64(vm.Used) / bytesInMiB,
		CPUPercent: cpus[0],
	}}, nil
}

// ProcessSampler reports usage of processes with given names, such as VM hypervisors.
// Usage of processes sharing a name is summed up.
type ProcessSampler struct {
	Names []string
	// processes seen so far, kept to measure cpu usage between calls
	procs map[int32]*process.Process
}

// NewProcessSampler returns ProcessSampler for processes with given names
func NewProcessSampler(names ...string) *ProcessSampler {
	return &ProcessSampler{
		Names: names,
		procs: map[int32]*process.Process{},
	}
}

func (s *ProcessSampler) wanted(name string) bool {
	for _, n := range s.Names {
		if n == name {
			return true
		}
	}
	return false
}

// Sample implements Sampler. Names with no running process are reported with zero usage.
func (s *ProcessSampler) Sample() ([]Usage, error) {
	pids, err := process.Pids()
	if err != nil {
		return nil, fmt.Errorf("listing processes: %w", err)
	}
	byName := map[string]*Usage{}
	for _, n := range s.Names {
		byName[n] = &Usage{Name: n}
	}
	alive := map[int32]*process.Process{}
	for _, pid := range pids {
		p, ok := s.procs[pid]
		if !ok {
			if p, err = process.NewProcess(pid); err != nil {
				// exited meanwhile
				continue
			}
		}
		name, err := p.Name()
		if err != nil || !s.wanted(name) {
			continue
		}
		alive[pid] = p
		u := byName[name]
		if val, err := p.MemoryPercent(); err == nil {
			u.MemPercent += float64(val)
		}
		if val, err := p.MemoryInfo(); err == nil {
			u.MemUsedMiB += float64(val.RSS) / bytesInMiB
		}
		val, err := p.Percent(0)
		if err != nil {
			log.Debugf("process %d (%s): cpu usage: %v", pid, name, err)
			continue
		}
		u.CPUPercent += val
	}
	s.procs = alive
	res := make([]Usage, 0, len(byName))
	for _, u := range byName {
		res = append(res, *u)
	}
	sort.Slice(res, func(i, j int) bool { return res[i].Name < res[j].Name })
	return res, nil
}

type multiSampler []Sampler

// Join returns Sampler concatenating entries of all given samplers
func Join(samplers ...Sampler) Sampler {
	return multiSampler(samplers)
}

func (m multiSampler) Sample() ([]Usage, error) {
	res := []Usage{}
	for _, s := range m {
		u, err := s.Sample()
		if err != nil {
			return nil, err
		}
		res = append(res, u...)
	}
	return res, nil
}
