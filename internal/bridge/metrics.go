package bridge

import (
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics counts bridge traffic. Each Metrics owns its registry so several
// servers (and tests) can coexist in one process.
type Metrics struct {
	registry *prometheus.Registry

	ActiveClients prometheus.Gauge
	TotalClients  prometheus.Counter
	Exchanges     *prometheus.CounterVec
	BytesSent     prometheus.Counter
	BytesReceived prometheus.Counter
	Duration      prometheus.Histogram
}

// NewMetrics creates and registers the bridge metrics.
func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		ActiveClients: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "scc1_bridge_active_clients",
			Help: "Connected websocket clients",
		}),
		TotalClients: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "scc1_bridge_clients_total",
			Help: "Websocket clients accepted since start",
		}),
		Exchanges: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "scc1_bridge_exchanges_total",
				Help: "Command exchanges by command and result",
			},
			[]string{"command", "result"},
		),
		BytesSent: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "scc1_bridge_tx_bytes_total",
			Help: "Command payload bytes sent to the device",
		}),
		BytesReceived: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "scc1_bridge_rx_bytes_total",
			Help: "Response payload bytes received from the device",
		}),
		Duration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "scc1_bridge_exchange_duration_seconds",
			Help:    "Time spent in one device exchange",
			Buckets: []float64{.001, .0025, .005, .01, .025, .05, .1, .25, .5, 1, 3},
		}),
	}

	m.registry.MustRegister(
		m.ActiveClients,
		m.TotalClients,
		m.Exchanges,
		m.BytesSent,
		m.BytesReceived,
		m.Duration,
	)
	return m
}

// Observe records one exchange.
func (m *Metrics) Observe(command byte, tx, rx []byte, elapsed time.Duration, err error) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	m.Exchanges.WithLabelValues(fmt.Sprintf("0x%02X", command), result).Inc()
	m.BytesSent.Add(float64(len(tx)))
	m.BytesReceived.Add(float64(len(rx)))
	m.Duration.Observe(elapsed.Seconds())
}

// Handler serves the metrics in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
