// Package telemetry wires crash reporting and metrics exposition.
package telemetry

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// MetricsHandler returns the Prometheus /metrics handler. Collectors are
// registered at package init time by the packages that own them (the
// messaging layer registers its event counters via promauto).
func MetricsHandler() http.Handler {
	return promhttp.Handler()
}
