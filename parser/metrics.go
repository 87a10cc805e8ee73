package parser

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	opsApplied = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "servo",
		Subsystem: "parser",
		Name:      "operations_applied_total",
		Help:      "Tree operations applied to live documents, by kind.",
	}, []string{"kind"})

	sessionsEnded = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "servo",
		Subsystem: "parser",
		Name:      "sessions_total",
		Help:      "Parse sessions ended, by outcome.",
	}, []string{"outcome"})

	chunksFed = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "servo",
		Subsystem: "parser",
		Name:      "chunks_fed_total",
		Help:      "Input chunks handed to parse sessions.",
	})

	sessionsActive = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "servo",
		Subsystem: "parser",
		Name:      "sessions_active",
		Help:      "Parse sessions neither complete nor aborted.",
	})
)
