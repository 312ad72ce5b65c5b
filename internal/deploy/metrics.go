package deploy

import "github.com/prometheus/client_golang/prometheus"

var (
	deployStepsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "endpointd",
			Subsystem: "deploy",
			Name:      "steps_total",
			Help:      "Provisioning steps by outcome",
		},
		[]string{"step", "result"},
	)

	teardownResourcesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "endpointd",
			Subsystem: "teardown",
			Name:      "resources_total",
			Help:      "Resources visited by teardown, by outcome",
		},
		[]string{"kind", "outcome"},
	)
)

func init() {
	prometheus.MustRegister(deployStepsTotal, teardownResourcesTotal)
}

func observeStep(step Step, err error) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	deployStepsTotal.WithLabelValues(string(step), result).Inc()
}
