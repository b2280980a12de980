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
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	log "github.com/sirupsen/logrus"

	"github.com/facebook/cadence/servo"
)

const metricPrefix = "cadence_"

// PrometheusExporter holds the exporter details
type PrometheusExporter struct {
	registry   *prometheus.Registry
	listenPort int
}

// NewPrometheusExporter creates a new instance of PrometheusExporter
func NewPrometheusExporter(listenPort int) *PrometheusExporter {
	return &PrometheusExporter{registry: prometheus.NewRegistry(), listenPort: listenPort}
}

// Handler returns http handler serving registered metrics
func (e *PrometheusExporter) Handler() http.Handler {
	return promhttp.HandlerFor(
		e.registry,
		promhttp.HandlerOpts{
			// Opt into OpenMetrics to support exemplars.
			EnableOpenMetrics: true,
		},
	)
}

// Start starts the exporter. It blocks until the http server fails.
func (e *PrometheusExporter) Start() error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", e.Handler())
	log.Infof("exporting metrics on :%d/metrics", e.listenPort)
	return http.ListenAndServe(fmt.Sprintf(":%d", e.listenPort), mux)
}

// register adds collector to the registry, reusing the one registered before if any
func (e *PrometheusExporter) register(c prometheus.Collector) (prometheus.Collector, error) {
	if err := e.registry.Register(c); err != nil {
		are := &prometheus.AlreadyRegisteredError{}
		if errors.As(err, are) {
			return are.ExistingCollector, nil
		}
		return nil, err
	}
	return c, nil
}

// PromStats is a StatsServer exporting a single loop's data to prometheus
type PromStats struct {
	e      *PrometheusExporter
	labels prometheus.Labels

	accumulated prometheus.Gauge
	interval    prometheus.Gauge
	drift       prometheus.Gauge
	samples     *prometheus.CounterVec

	mux      sync.Mutex
	counters map[string]prometheus.Gauge
}

// NewStats returns StatsServer for the loop with given name
func (e *PrometheusExporter) NewStats(loop string) (*PromStats, error) {
	labels := prometheus.Labels{"loop": loop}
	s := &PromStats{
		e:        e,
		labels:   labels,
		counters: map[string]prometheus.Gauge{},
	}
	gauge := func(name, help string) (prometheus.Gauge, error) {
		c, err := e.register(prometheus.NewGauge(prometheus.GaugeOpts{
			Name:        metricPrefix + name,
			Help:        help,
			ConstLabels: labels,
		}))
		if err != nil {
			return nil, fmt.Errorf("registering %s: %w", name, err)
		}
		return c.(prometheus.Gauge), nil
	}
	var err error
	if s.accumulated, err = gauge("accumulated_error_seconds", "accumulated cadence error"); err != nil {
		return nil, err
	}
	if s.interval, err = gauge("interval_seconds", "last computed sleep interval"); err != nil {
		return nil, err
	}
	if s.drift, err = gauge("drift_seconds", "last per-cycle drift"); err != nil {
		return nil, err
	}
	c, err := e.register(prometheus.NewCounterVec(prometheus.CounterOpts{
		Name:        metricPrefix + "samples_total",
		Help:        "samples taken by servo state",
		ConstLabels: labels,
	}, []string{"state"}))
	if err != nil {
		return nil, fmt.Errorf("registering samples_total: %w", err)
	}
	s.samples = c.(*prometheus.CounterVec)
	return s, nil
}

// Observe implements StatsServer
func (s *PromStats) Observe(c servo.Correction, state servo.State) {
	s.samples.WithLabelValues(state.String()).Inc()
	s.accumulated.Set(c.AccumulatedError)
	s.interval.Set(c.Next)
	s.drift.Set(c.Drift)
}

func (s *PromStats) counter(key string) prometheus.Gauge {
	s.mux.Lock()
	defer s.mux.Unlock()
	if g, ok := s.counters[key]; ok {
		return g
	}
	c, err := s.e.register(prometheus.NewGauge(prometheus.GaugeOpts{
		Name:        metricPrefix + flattenKey(key),
		Help:        key,
		ConstLabels: s.labels,
	}))
	if err != nil {
		log.Errorf("failed to register metric %s %v", key, err)
		return nil
	}
	g := c.(prometheus.Gauge)
	s.counters[key] = g
	return g
}

// SetCounter implements StatsServer
func (s *PromStats) SetCounter(key string, val int64) {
	if g := s.counter(key); g != nil {
		g.Set(float64(val))
	}
}

// UpdateCounterBy implements StatsServer
func (s *PromStats) UpdateCounterBy(key string, count int64) {
	if g := s.counter(key); g != nil {
		g.Add(float64(count))
	}
}

func flattenKey(key string) string {
	key = strings.ReplaceAll(key, " ", "_")
	key = strings.ReplaceAll(key, ".", "_")
	key = strings.ReplaceAll(key, "-", "_")
	key = strings.ReplaceAll(key, "=", "_")
	key = strings.ReplaceAll(key, "/", "_")
	return key
}
