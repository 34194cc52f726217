// Copyright 2016 The Cockroach Authors.
//
// Use of this software is governed by the CockroachDB Software License
// included in the /LICENSE file.

/*
Package metric provides the counters and gauges exported by the execution
layer.

# Adding a new metric

Declare the metric's Metadata, construct it, and add it to a Registry:

	var metaFlattenOpens = metric.Metadata{
		Name: "sql.exec.flatten.opens",
		Help: "Number of times a flatten cursor was opened",
	}

	m := Metrics{FlattenOpens: metric.NewCounter(metaFlattenOpens)}
	registry.AddMetricStruct(m)

and update it as work happens:

	m.FlattenOpens.Inc(1)

Metrics are backed by prometheus collectors. Registry.WriteText renders every
registered metric in the prometheus text exposition format. Dots in metric
names become underscores in the exported names.
*/
package metric
