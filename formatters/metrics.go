package formatters

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	definitionsLoaded = promauto.NewCounter(prometheus.CounterOpts{
		Name: "formatter_definitions_loaded",
		Help: "Total number of formatter definitions registered.",
	})

	definitionsRejected = promauto.NewCounter(prometheus.CounterOpts{
		Name: "formatter_definitions_rejected",
		Help: "Total number of formatter definitions that failed to load.",
	})
)
