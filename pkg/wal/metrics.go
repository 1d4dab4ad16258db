package wal

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	statusSuccess = "success"
	statusError   = "error"

	pathBuffered = "buffered"
	pathBatch    = "batch"
)

// Metrics holds the Prometheus collectors shared by every writer created with it.
// Gauges are summed across those writers. A nil *Metrics records nothing.
type Metrics struct {
	framesAppended prometheus.Counter
	batchesWritten prometheus.Counter
	bytesWritten   *prometheus.CounterVec
	flushesTotal   *prometheus.CounterVec
	flushDuration  prometheus.Histogram
	pendingBytes   prometheus.Gauge
	bufferCapacity prometheus.Gauge
}

// NewMetrics creates the writer metrics and registers them with reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		framesAppended: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "freyjawal_frames_appended_total",
				Help: "Total number of frames staged by Append",
			},
		),

		batchesWritten: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "freyjawal_batches_written_total",
				Help: "Total number of pre-encoded batches written directly",
			},
		),

		bytesWritten: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "freyjawal_bytes_written_total",
				Help: "Bytes handed to the file backend",
			},
			[]string{"path"},
		),

		flushesTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "freyjawal_flushes_total",
				Help: "Total number of write+sync cycles of the staging buffer",
			},
			[]string{"status"},
		),

		flushDuration: factory.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "freyjawal_flush_duration_seconds",
				Help:    "Time spent writing and syncing the staging buffer",
				Buckets: prometheus.ExponentialBuckets(0.0001, 2, 16),
			},
		),

		pendingBytes: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "freyjawal_pending_bytes",
				Help: "Bytes staged in memory and not yet durable",
			},
		),

		bufferCapacity: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "freyjawal_buffer_capacity_bytes",
				Help: "Capacity of the staging buffers",
			},
		),
	}
}

func (m *Metrics) recordAppend() {
	if m == nil {
		return
	}
	m.framesAppended.Inc()
}

func (m *Metrics) recordBatch(n int) {
	if m == nil {
		return
	}
	m.batchesWritten.Inc()
	m.bytesWritten.WithLabelValues(pathBatch).Add(float64(n))
}

func (m *Metrics) recordWrite(n int) {
	if m == nil || n <= 0 {
		return
	}
	m.bytesWritten.WithLabelValues(pathBuffered).Add(float64(n))
}

func (m *Metrics) recordFlush(success bool, duration time.Duration) {
	if m == nil {
		return
	}
	status := statusSuccess
	if !success {
		status = statusError
	}
	m.flushesTotal.WithLabelValues(status).Inc()
	m.flushDuration.Observe(duration.Seconds())
}

func (m *Metrics) addPending(delta int) {
	if m == nil || delta == 0 {
		return
	}
	m.pendingBytes.Add(float64(delta))
}

func (m *Metrics) addCapacity(delta int) {
	if m == nil || delta == 0 {
		return
	}
	m.bufferCapacity.Add(float64(delta))
}
