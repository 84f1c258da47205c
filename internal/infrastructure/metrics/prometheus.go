// Package metrics implementa ports.Metrics con Prometheus.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/jhoicas/optica-core/internal/application/ports"
)

var _ ports.Metrics = (*Prometheus)(nil)

// Prometheus agrupa los colectores del servicio en un registro propio,
// para que los tests puedan crear varias instancias sin chocar con el registro global.
type Prometheus struct {
	registry        *prometheus.Registry
	transferOps     *prometheus.CounterVec
	cashOps         *prometheus.CounterVec
	requestCounter  *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
}

// New registra los colectores bajo el namespace dado (p. ej. "optica_core").
func New(namespace string) *Prometheus {
	p := &Prometheus{
		registry: prometheus.NewRegistry(),
		transferOps: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "stock_transfer_operations_total",
				Help:      "Operaciones de traslado por acción y resultado",
			},
			[]string{"action", "outcome"},
		),
		cashOps: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "caisse_operations_total",
				Help:      "Operaciones de caja por tipo y resultado",
			},
			[]string{"operation", "outcome"},
		),
		requestCounter: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "http_requests_total",
				Help:      "Peticiones HTTP por método, ruta y estado",
			},
			[]string{"method", "route", "status"},
		),
		requestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "http_request_duration_seconds",
				Help:      "Duración de las peticiones HTTP",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"method", "route"},
		),
	}
	p.registry.MustRegister(
		p.transferOps,
		p.cashOps,
		p.requestCounter,
		p.requestDuration,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return p
}

func (p *Prometheus) ObserveTransfer(action, outcome string) {
	p.transferOps.WithLabelValues(action, outcome).Inc()
}

func (p *Prometheus) ObserveCash(operation, outcome string) {
	p.cashOps.WithLabelValues(operation, outcome).Inc()
}

// ObserveRequest registra una petición HTTP ya respondida.
func (p *Prometheus) ObserveRequest(method, route, status string, elapsed time.Duration) {
	p.requestCounter.WithLabelValues(method, route, status).Inc()
	p.requestDuration.WithLabelValues(method, route).Observe(elapsed.Seconds())
}

// Handler expone el registro en formato texto de Prometheus.
func (p *Prometheus) Handler() http.Handler {
	return promhttp.HandlerFor(p.registry, promhttp.HandlerOpts{})
}

// Registry se usa en tests con prometheus/testutil.
func (p *Prometheus) Registry() *prometheus.Registry { return p.registry }
