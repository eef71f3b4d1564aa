// Package metrics expone contadores Prometheus del motor de stock y del servidor HTTP.
package metrics

import (
	"context"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/jhoicas/Reagentes-api/internal/application/inventory"
)

var _ inventory.EventPublisher = (*Recorder)(nil)

const namespace = "reagentes"

// Recorder agrupa las métricas en un registry propio.
type Recorder struct {
	registry     *prometheus.Registry
	stockEvents  *prometheus.CounterVec
	movedQty     *prometheus.CounterVec
	depletions   prometheus.Counter
	lotQuantity  *prometheus.GaugeVec
	httpRequests *prometheus.CounterVec
	httpDuration *prometheus.HistogramVec
}

// NewRecorder registra las métricas del servicio y los colectores de runtime.
func NewRecorder() *Recorder {
	r := &Recorder{
		registry: prometheus.NewRegistry(),
		stockEvents: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "stock_events_total",
			Help:      "Eventos de stock confirmados, por tipo.",
		}, []string{"type"}),
		movedQty: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "moved_quantity_total",
			Help:      "Cantidad movida en unidad base, por dirección y unidad.",
		}, []string{"direction", "unit"}),
		depletions: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "lots_depleted_total",
			Help:      "Lotes eliminados por quedar en cero.",
		}),
		lotQuantity: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "lot_quantity",
			Help:      "Cantidad actual del lote tras el último movimiento.",
		}, []string{"lot_id", "unit"}),
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "Peticiones HTTP atendidas.",
		}, []string{"method", "route", "status"}),
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "Latencia de las peticiones HTTP.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),
	}
	r.registry.MustRegister(
		r.stockEvents, r.movedQty, r.depletions, r.lotQuantity, r.httpRequests, r.httpDuration,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return r
}

// Publish implementa inventory.EventPublisher.
func (r *Recorder) Publish(_ context.Context, event inventory.StockEvent) {
	r.stockEvents.WithLabelValues(event.Type).Inc()
	qty, _ := event.Quantity.Float64()
	if qty > 0 {
		switch event.Type {
		case inventory.EventInboundRecorded, inventory.EventOutboundDeleted:
			r.movedQty.WithLabelValues("in", event.Unit).Add(qty)
		case inventory.EventOutboundRecorded, inventory.EventInboundDeleted:
			r.movedQty.WithLabelValues("out", event.Unit).Add(qty)
		}
	}
	if event.LotID == 0 {
		return
	}
	lotID := strconv.FormatInt(event.LotID, 10)
	if event.Depleted {
		r.depletions.Inc()
		r.lotQuantity.DeleteLabelValues(lotID, event.Unit)
		return
	}
	if lotQty, _ := event.LotQuantity.Float64(); lotQty > 0 {
		r.lotQuantity.WithLabelValues(lotID, event.Unit).Set(lotQty)
	}
}

// Middleware mide cada petición usando la ruta registrada (no la URL) como etiqueta.
func (r *Recorder) Middleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()
		route := c.Route().Path
		status := c.Response().StatusCode()
		if err != nil {
			if fe, ok := err.(*fiber.Error); ok {
				status = fe.Code
			}
		}
		r.httpRequests.WithLabelValues(c.Method(), route, strconv.Itoa(status)).Inc()
		r.httpDuration.WithLabelValues(c.Method(), route).Observe(time.Since(start).Seconds())
		return err
	}
}

// Handler expone el registry en formato Prometheus.
func (r *Recorder) Handler() fiber.Handler {
	return adaptor.HTTPHandler(promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{Registry: r.registry}))
}

// Registry para tests o para registrar colectores adicionales.
func (r *Recorder) Registry() *prometheus.Registry { return r.registry }
