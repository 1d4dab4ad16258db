package wal

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ssargent/freyjawal/pkg/backend"
)

func TestMetrics_RecordWriterActivity(t *testing.T) {
	reg := prometheus.NewRegistry()
	metrics := NewMetrics(reg)

	mem := &memBackend{}
	w, err := New(Config{
		Path:       "mem.wal",
		BufferSize: 100,
		Metrics:    metrics,
		Backend:    func(string) (backend.FileBackend, error) { return mem, nil },
	})
	require.NoError(t, err)
	assert.Equal(t, float64(100), testutil.ToFloat64(metrics.bufferCapacity))

	require.NoError(t, w.Append(sized(1, 40), false))
	require.NoError(t, w.Append(sized(2, 40), false))
	assert.Equal(t, float64(2), testutil.ToFloat64(metrics.framesAppended))
	assert.Equal(t, float64(80), testutil.ToFloat64(metrics.pendingBytes))

	require.NoError(t, w.Flush())
	assert.Equal(t, float64(0), testutil.ToFloat64(metrics.pendingBytes))
	assert.Equal(t, float64(1), testutil.ToFloat64(metrics.flushesTotal.WithLabelValues(statusSuccess)))
	assert.Equal(t, float64(80), testutil.ToFloat64(metrics.bytesWritten.WithLabelValues(pathBuffered)))

	mem.failSyncs = 1
	require.NoError(t, w.Append(sized(3, 40), false))
	assert.Error(t, w.Flush())
	assert.Equal(t, float64(1), testutil.ToFloat64(metrics.flushesTotal.WithLabelValues(statusError)))

	_, err = w.AppendBatch([]byte("abcd"))
	require.NoError(t, err)
	assert.Equal(t, float64(1), testutil.ToFloat64(metrics.batchesWritten))
	assert.Equal(t, float64(4), testutil.ToFloat64(metrics.bytesWritten.WithLabelValues(pathBatch)))

	// Oversized frame grows the buffer gauge.
	require.NoError(t, w.Append(sized(4, 150), false))
	assert.Equal(t, float64(300), testutil.ToFloat64(metrics.bufferCapacity))

	require.NoError(t, w.Close())
	assert.Equal(t, float64(0), testutil.ToFloat64(metrics.pendingBytes))
	assert.Equal(t, float64(0), testutil.ToFloat64(metrics.bufferCapacity))
}

func TestMetrics_NilIsSafe(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.recordAppend()
		m.recordBatch(1)
		m.recordWrite(1)
		m.recordFlush(true, 0)
		m.addPending(1)
		m.addCapacity(1)
	})
}
