// Package metrics exposes Prometheus instrumentation for a matrix run.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

const (
	NAMESPACE = "fgmatrix"
)

var (
	DecoderStats = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name:      "decoder_lines_total",
			Help:      "Lines handed to the decoder.",
			Namespace: NAMESPACE},
		[]string{"name"},
	)
	DecoderErrors = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name:      "decoder_error_count",
			Help:      "Lines the decoder rejected.",
			Namespace: NAMESPACE},
		[]string{"name", "error"},
	)
	DecoderTime = prometheus.NewSummaryVec(
		prometheus.SummaryOpts{
			Name:       "decoder_summary_time_us",
			Help:       "Time to decode a line in microseconds.",
			Namespace:  NAMESPACE,
			Objectives: map[float64]float64{0.5: 0.05, 0.9: 0.01, 0.99: 0.001},
		},
		[]string{"name"},
	)
	ProducerRecords = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name:      "producer_records_total",
			Help:      "Records folded into the matrix.",
			Namespace: NAMESPACE},
	)
	ProducerErrors = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name:      "producer_error_count",
			Help:      "Records the producer skipped.",
			Namespace: NAMESPACE},
		[]string{"error"},
	)
	ProducerTime = prometheus.NewSummary(
		prometheus.SummaryOpts{
			Name:       "producer_summary_time_us",
			Help:       "Time to fold a record in microseconds.",
			Namespace:  NAMESPACE,
			Objectives: map[float64]float64{0.5: 0.05, 0.9: 0.01, 0.99: 0.001},
		},
	)
	MatrixEntries = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name:      "matrix_entries",
			Help:      "Distinct (srcip, dstip, dstport, proto) keys in the matrix.",
			Namespace: NAMESPACE},
	)
	EmitBytes = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name:      "emit_bytes_total",
			Help:      "Bytes handed to the transport.",
			Namespace: NAMESPACE},
		[]string{"format", "transport"},
	)
	RunTime = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name:      "run_time_ms",
			Help:      "Duration of each stage of the last run in milliseconds.",
			Namespace: NAMESPACE},
		[]string{"stage"},
	)
)

func init() {
	prometheus.MustRegister(DecoderStats)
	prometheus.MustRegister(DecoderErrors)
	prometheus.MustRegister(DecoderTime)

	prometheus.MustRegister(ProducerRecords)
	prometheus.MustRegister(ProducerErrors)
	prometheus.MustRegister(ProducerTime)

	prometheus.MustRegister(MatrixEntries)
	prometheus.MustRegister(EmitBytes)
	prometheus.MustRegister(RunTime)
}
