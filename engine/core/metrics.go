package core

import (
	"sync"
	"sync/atomic"
)

/** @brief Counters describing constant transfer activity since start up. */
type MetricsState struct {
	/** @brief Number of apply calls on any constant buffer. */
	Applies atomic.Uint64
	/** @brief Number of times a transfer plan was executed because the source was dirty. */
	Rebuilds atomic.Uint64
	/** @brief Total bytes written into register buffers by transfer plans. */
	BytesTransferred atomic.Uint64
	/** @brief Number of stage bind calls handed to a binder. */
	Binds atomic.Uint64
}

/** @brief A plain copy of the metric counters. */
type MetricsSnapshot struct {
	Applies          uint64
	Rebuilds         uint64
	BytesTransferred uint64
	Binds            uint64
}

var onceMetrics sync.Once
var metricsState *MetricsState

func metrics() *MetricsState {
	onceMetrics.Do(func() {
		metricsState = &MetricsState{}
	})
	return metricsState
}

func MetricsRecordApply() {
	metrics().Applies.Add(1)
}

func MetricsRecordRebuild(bytes uint64) {
	m := metrics()
	m.Rebuilds.Add(1)
	m.BytesTransferred.Add(bytes)
}

func MetricsRecordBind() {
	metrics().Binds.Add(1)
}

func MetricsFrame() MetricsSnapshot {
	m := metrics()
	return MetricsSnapshot{
		Applies:          m.Applies.Load(),
		Rebuilds:         m.Rebuilds.Load(),
		BytesTransferred: m.BytesTransferred.Load(),
		Binds:            m.Binds.Load(),
	}
}
