// Copyright 2025 The Cockroach Authors.
//
// Use of this software is governed by the CockroachDB Software License
// included in the /LICENSE file.

package execinfra

import "github.com/cockroachdb/groupflow/pkg/util/metric"

var (
	metaFlattenOpens = metric.Metadata{
		Name: "sql.exec.flatten.opens",
		Help: "Number of times a flatten cursor was opened",
	}
	metaGroupScanOpens = metric.Metadata{
		Name: "sql.exec.group_scan.opens",
		Help: "Number of times a group scan cursor was opened",
	}
	metaGroupScanRows = metric.Metadata{
		Name: "sql.exec.group_scan.rows",
		Help: "Number of rows read by group scans",
	}
	metaValuesScanOpens = metric.Metadata{
		Name: "sql.exec.values_scan.opens",
		Help: "Number of times a values scan cursor was opened",
	}
	metaFlattenPendingHighWater = metric.Metadata{
		Name: "sql.exec.flatten.pending.max",
		Help: "Largest number of rows a flatten cursor queued at once",
	}
)

// Metrics are the metrics of the execution operators.
type Metrics struct {
	FlattenOpens            *metric.Counter
	FlattenPendingHighWater *metric.Gauge
	GroupScanOpens          *metric.Counter
	GroupScanRows           *metric.Counter
	ValuesScanOpens         *metric.Counter
}

// MakeMetrics instantiates the metrics.
func MakeMetrics() Metrics {
	return Metrics{
		FlattenOpens:            metric.NewCounter(metaFlattenOpens),
		FlattenPendingHighWater: metric.NewGauge(metaFlattenPendingHighWater),
		GroupScanOpens:          metric.NewCounter(metaGroupScanOpens),
		GroupScanRows:           metric.NewCounter(metaGroupScanRows),
		ValuesScanOpens:         metric.NewCounter(metaValuesScanOpens),
	}
}

// MetricStruct implements metric.Struct.
func (Metrics) MetricStruct() {}

var _ metric.Struct = Metrics{}
