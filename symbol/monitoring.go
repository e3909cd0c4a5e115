// Copyright 2026 The airgap Authors. All rights reserved.
// Use of this source code is governed under the MIT License
// that can be found in the LICENSE file.

package symbol

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	emitArtifacts = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "airgap_emit_artifacts",
		Help: "Count of artifacts written.",
	})

	emitWireBytes = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "airgap_emit_wire_bytes",
		Help: "Count of block wire bytes encoded into artifacts.",
	})

	emitErrors = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "airgap_emit_errors",
		Help: "Count of errors encountered emitting artifacts.",
	}, []string{"kind"})

	emitRenderSeconds = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "airgap_emit_render_seconds",
		Help:    "Time taken to encode and save one artifact.",
		Buckets: prometheus.ExponentialBuckets(0.001, 2, 14),
	})

	emitWorkersBusy = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "airgap_emit_workers_busy",
		Help: "Count of emit workers currently rendering an artifact.",
	})
)

// RegisterMonitoring registers all of this package's monitoring metrics.
func RegisterMonitoring(reg prometheus.Registerer) {
	reg.MustRegister(
		emitArtifacts,
		emitWireBytes,
		emitErrors,
		emitRenderSeconds,
		emitWorkersBusy,
	)
}
