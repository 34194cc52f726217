// Copyright 2015 The Cockroach Authors.
//
// Use of this software is governed by the CockroachDB Software License
// included in the /LICENSE file.

package metric

import (
	"io"
	"reflect"
	"sort"

	"github.com/cockroachdb/errors"
	"github.com/cockroachdb/groupflow/pkg/util/syncutil"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/common/expfmt"
)

// Struct can be implemented by the types of members of a metric container
// so that the members get automatically registered by AddMetricStruct.
type Struct interface {
	MetricStruct()
}

// A Registry is a list of metrics. It provides a simple way of iterating
// over them and exporting them.
type Registry struct {
	mu struct {
		syncutil.Mutex
		tracked map[string]Iterable
	}
	prom *prometheus.Registry
}

// NewRegistry creates a new Registry.
func NewRegistry() *Registry {
	r := &Registry{prom: prometheus.NewRegistry()}
	r.mu.tracked = make(map[string]Iterable)
	return r
}

// AddMetric adds the passed-in metric to the registry. Adding two metrics
// with the same name is an error.
func (r *Registry) AddMetric(metric Iterable) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.mu.tracked[metric.GetName()]; ok {
		return errors.Newf("metric %q already registered", metric.GetName())
	}
	if err := r.prom.Register(metric.collector()); err != nil {
		return errors.Wrapf(err, "registering %q", metric.GetName())
	}
	r.mu.tracked[metric.GetName()] = metric
	return nil
}

// AddMetricStruct examines all fields of metricStruct and adds all Iterable
// fields to the registry. Fields that are nil pointers are skipped.
func (r *Registry) AddMetricStruct(metricStruct interface{}) error {
	v := reflect.ValueOf(metricStruct)
	if v.Kind() == reflect.Ptr {
		v = v.Elem()
	}
	if v.Kind() != reflect.Struct {
		return errors.AssertionFailedf("expected a struct, got %T", metricStruct)
	}
	t := v.Type()
	for i := 0; i < v.NumField(); i++ {
		vfield, tfield := v.Field(i), t.Field(i)
		if !tfield.IsExported() {
			continue
		}
		if vfield.Kind() == reflect.Ptr && vfield.IsNil() {
			continue
		}
		m, ok := vfield.Interface().(Iterable)
		if !ok {
			continue
		}
		if err := r.AddMetric(m); err != nil {
			return err
		}
	}
	return nil
}

// Each calls f for every registered metric, in name order.
func (r *Registry) Each(f func(name string, m Iterable)) {
	r.mu.Lock()
	metrics := make([]Iterable, 0, len(r.mu.tracked))
	for _, m := range r.mu.tracked {
		metrics = append(metrics, m)
	}
	r.mu.Unlock()
	sort.Slice(metrics, func(i, j int) bool {
		return metrics[i].GetName() < metrics[j].GetName()
	})
	for _, m := range metrics {
		f(m.GetName(), m)
	}
}

// WriteText writes every registered metric to w in the prometheus text
// exposition format.
func (r *Registry) WriteText(w io.Writer) error {
	families, err := r.prom.Gather()
	if err != nil {
		return errors.Wrap(err, "gathering metrics")
	}
	for _, mf := range families {
		if _, err := expfmt.MetricFamilyToText(w, mf); err != nil {
			return errors.Wrap(err, "writing metrics")
		}
	}
	return nil
}
