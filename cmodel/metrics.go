// SPDX-License-Identifier: GPL-2.0-or-later

package cmodel

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	resultLabel = "result"
	kindLabel   = "kind"
)

var (
	traceCount = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "cmodel_traces_total",
		Help: "The number of box traces.",
	}, []string{
		kindLabel,
	})

	brushTraceCount = promauto.NewCounter(prometheus.CounterOpts{
		Name: "cmodel_brush_traces_total",
		Help: "The number of brushes clipped against by traces.",
	})

	pointContentsCount = promauto.NewCounter(prometheus.CounterOpts{
		Name: "cmodel_point_contents_total",
		Help: "The number of point contents queries.",
	})

	boxLeafsCount = promauto.NewCounter(prometheus.CounterOpts{
		Name: "cmodel_box_leafs_total",
		Help: "The number of box leaf queries.",
	})

	mapLoadCount = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "cmodel_map_loads_total",
		Help: "The number of map loads.",
	}, []string{
		resultLabel,
	})
)

func instrumentTrace(position bool, brushes int) {
	kind := "sweep"
	if position {
		kind = "position"
	}
	traceCount.
		With(prometheus.Labels{kindLabel: kind}).
		Inc()
	if brushes > 0 {
		brushTraceCount.Add(float64(brushes))
	}
}

func instrumentMapLoad(err error) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	mapLoadCount.
		With(prometheus.Labels{resultLabel: result}).
		Inc()
}
