// Package metrics expone las métricas de negocio del inventario y de HTTP en Prometheus.
package metrics

import (
	"errors"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/jhoicas/stock-ledger/internal/application/inventory"
	"github.com/jhoicas/stock-ledger/internal/domain"
	"github.com/jhoicas/stock-ledger/internal/domain/entity"
)

var _ inventory.Metrics = (*Metrics)(nil)

// Metrics contadores e histogramas registrados en un registry propio.
type Metrics struct {
	registry *prometheus.Registry

	MovementsTotal      *prometheus.CounterVec
	TransferTransitions *prometheus.CounterVec
	TransferDuration    *prometheus.HistogramVec
	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec
}

// New registra las métricas con el prefijo dado (p. ej. "stock_ledger").
func New(prefix string) *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)
	m := &Metrics{
		registry: reg,
		MovementsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: prefix + "_inventory_movements_total",
			Help: "Movimientos registrados en el ledger por tipo",
		}, []string{"movement_type", "effect"}),
		TransferTransitions: factory.NewCounterVec(prometheus.CounterOpts{
			Name: prefix + "_transfer_transitions_total",
			Help: "Transiciones de traslado por acción y resultado",
		}, []string{"action", "result"}),
		TransferDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    prefix + "_transfer_transition_duration_seconds",
			Help:    "Duración de las transiciones de traslado",
			Buckets: prometheus.DefBuckets,
		}, []string{"action"}),
		HTTPRequestsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: prefix + "_http_requests_total",
			Help: "Total de peticiones HTTP",
		}, []string{"method", "path", "status"}),
		HTTPRequestDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    prefix + "_http_request_duration_seconds",
			Help:    "Duración de las peticiones HTTP",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "path", "status"}),
	}
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	return m
}

// Registry registry donde viven las métricas.
func (m *Metrics) Registry() *prometheus.Registry { return m.registry }

// MovementRecorded cuenta un movimiento del ledger.
func (m *Metrics) MovementRecorded(t entity.MovementType) {
	m.MovementsTotal.WithLabelValues(string(t), t.Effect().String()).Inc()
}

// TransferTransition cuenta la transición con su resultado y registra la duración.
func (m *Metrics) TransferTransition(action string, err error, elapsed time.Duration) {
	m.TransferTransitions.WithLabelValues(action, Result(err)).Inc()
	m.TransferDuration.WithLabelValues(action).Observe(elapsed.Seconds())
}

// Result etiqueta acotada para un error de transición.
func Result(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, domain.ErrInsufficientStock):
		return "insufficient_stock"
	case errors.Is(err, domain.ErrInvalidStateTransition):
		return "invalid_transition"
	case errors.Is(err, domain.ErrConcurrencyConflict):
		return "conflict"
	case errors.Is(err, domain.ErrTransferNotFound), errors.Is(err, domain.ErrNotFound),
		errors.Is(err, domain.ErrProductNotFound), errors.Is(err, domain.ErrWarehouseNotFound):
		return "not_found"
	case errors.Is(err, domain.ErrInvalidInput):
		return "invalid_input"
	}
	return "error"
}

// Middleware mide cada petición usando la ruta registrada (no la URL) para acotar cardinalidad.
func (m *Metrics) Middleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()
		status := c.Response().StatusCode()
		if err != nil {
			var fe *fiber.Error
			if errors.As(err, &fe) {
				status = fe.Code
			} else {
				status = fiber.StatusInternalServerError
			}
		}
		path := c.Route().Path
		labels := []string{c.Method(), path, strconv.Itoa(status)}
		m.HTTPRequestsTotal.WithLabelValues(labels...).Inc()
		m.HTTPRequestDuration.WithLabelValues(labels...).Observe(time.Since(start).Seconds())
		return err
	}
}

// Handler expone /metrics para fiber.
func (m *Metrics) Handler() fiber.Handler {
	return adaptor.HTTPHandler(promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{}))
}
