// Package metrics holds the Prometheus collectors of the controller.
// All collectors register with the default registry.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	PotiCycles = promauto.NewCounter(prometheus.CounterOpts{
		Name: "potileds_poti_cycles_total",
		Help: "Number of times the potis were sampled",
	})

	PotiUpdates = promauto.NewCounter(prometheus.CounterOpts{
		Name: "potileds_poti_updates_total",
		Help: "Number of samples that left the dead zone and produced a color update",
	})

	PotiSuppressed = promauto.NewCounter(prometheus.CounterOpts{
		Name: "potileds_poti_suppressed_total",
		Help: "Number of samples dropped because all potis stayed inside the dead zone",
	})

	PotiRaw = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "potileds_poti_raw",
		Help: "Last raw ADC reading per poti",
	}, []string{"poti"})

	RendererBrightness = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "potileds_renderer_brightness",
		Help: "Brightness level of the current color state, before clamping",
	})

	RendererChannel = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "potileds_renderer_channel",
		Help: "Channel values of the current color state",
	}, []string{"channel"})

	RendererNotifications = promauto.NewCounter(prometheus.CounterOpts{
		Name: "potileds_renderer_notifications_total",
		Help: "Number of state changes published to subscribers",
	})
)

// Handler serves all registered metrics.
func Handler() http.Handler {
	return promhttp.Handler()
}
