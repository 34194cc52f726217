// Copyright 2015 The Cockroach Authors.
//
// Use of this software is governed by the CockroachDB Software License
// included in the /LICENSE file.

package metric

import (
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	prometheusgo "github.com/prometheus/client_model/go"
)

// Metadata holds the name and help text of a metric.
type Metadata struct {
	Name string
	Help string
}

// exportedName returns the prometheus-compatible metric name.
func (m Metadata) exportedName() string {
	return strings.ReplaceAll(m.Name, ".", "_")
}

// Iterable is the interface implemented by every metric that can be added to
// a Registry.
type Iterable interface {
	// GetName returns the name of the metric.
	GetName() string
	// GetHelp returns the help text of the metric.
	GetHelp() string
	collector() prometheus.Collector
}

// Counter is a monotonically increasing count.
type Counter struct {
	Metadata
	c prometheus.Counter
}

var _ Iterable = (*Counter)(nil)

// NewCounter creates a counter.
func NewCounter(metadata Metadata) *Counter {
	return &Counter{
		Metadata: metadata,
		c: prometheus.NewCounter(prometheus.CounterOpts{
			Name: metadata.exportedName(),
			Help: metadata.Help,
		}),
	}
}

// GetName implements Iterable.
func (c *Counter) GetName() string { return c.Name }

// GetHelp implements Iterable.
func (c *Counter) GetHelp() string { return c.Help }

func (c *Counter) collector() prometheus.Collector { return c.c }

// Inc increments the counter by v, which must not be negative.
func (c *Counter) Inc(v int64) {
	c.c.Add(float64(v))
}

// Count returns the current value of the counter.
func (c *Counter) Count() int64 {
	var m prometheusgo.Metric
	if err := c.c.Write(&m); err != nil {
		return 0
	}
	return int64(m.GetCounter().GetValue())
}

// Gauge tracks a value that can go up and down.
type Gauge struct {
	Metadata
	g prometheus.Gauge
}

var _ Iterable = (*Gauge)(nil)

// NewGauge creates a gauge.
func NewGauge(metadata Metadata) *Gauge {
	return &Gauge{
		Metadata: metadata,
		g: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: metadata.exportedName(),
			Help: metadata.Help,
		}),
	}
}

// GetName implements Iterable.
func (g *Gauge) GetName() string { return g.Name }

// GetHelp implements Iterable.
func (g *Gauge) GetHelp() string { return g.Help }

func (g *Gauge) collector() prometheus.Collector { return g.g }

// Update sets the gauge's value.
func (g *Gauge) Update(v int64) {
	g.g.Set(float64(v))
}

// Inc adds v to the gauge's value.
func (g *Gauge) Inc(v int64) {
	g.g.Add(float64(v))
}

// Value returns the gauge's current value.
func (g *Gauge) Value() int64 {
	var m prometheusgo.Metric
	if err := g.g.Write(&m); err != nil {
		return 0
	}
	return int64(m.GetGauge().GetValue())
}
