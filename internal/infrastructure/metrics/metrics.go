// Package metrics expone contadores Prometheus del servidor HTTP, del libro de
// movimientos y de la cola de impresión.
package metrics

import (
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/farmacia-pos/internal/application/ports"
)

const namespace = "farmacia"

var _ ports.LedgerMetrics = (*Metrics)(nil)

// Metrics colectores propios en un registry aislado (un registry por proceso;
// los tests crean el suyo).
type Metrics struct {
	Registry *prometheus.Registry

	httpRequests  *prometheus.CounterVec
	httpDuration  *prometheus.HistogramVec
	sales         *prometheus.CounterVec
	saleItems     prometheus.Counter
	saleAmount    *prometheus.CounterVec
	settledRows   prometheus.Counter
	settledAmount prometheus.Counter
	printJobs     *prometheus.CounterVec
	printDuration prometheus.Histogram
}

// New registra todos los colectores.
func New() *Metrics {
	m := &Metrics{
		Registry: prometheus.NewRegistry(),
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Subsystem: "http", Name: "requests_total",
			Help: "Total de requests HTTP atendidos.",
		}, []string{"method", "path", "status"}),
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace, Subsystem: "http", Name: "request_duration_seconds",
			Help:    "Duración de los requests HTTP.",
			Buckets: prometheus.ExponentialBuckets(0.005, 2, 10),
		}, []string{"method", "path"}),
		sales: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Subsystem: "ledger", Name: "sales_total",
			Help: "Ventas registradas por forma de pago.",
		}, []string{"payment_type"}),
		saleItems: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace, Subsystem: "ledger", Name: "sale_rows_total",
			Help: "Filas de movimiento creadas por ventas.",
		}),
		saleAmount: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Subsystem: "ledger", Name: "sales_amount_reais_total",
			Help: "Valor vendido en reales por forma de pago.",
		}, []string{"payment_type"}),
		settledRows: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace, Subsystem: "ledger", Name: "settled_rows_total",
			Help: "Filas fiado marcadas como pagadas.",
		}),
		settledAmount: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace, Subsystem: "ledger", Name: "settled_amount_reais_total",
			Help: "Valor cobrado de cuentas fiado.",
		}),
		printJobs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Subsystem: "printer", Name: "jobs_total",
			Help: "Trabajos de impresión por resultado.",
		}, []string{"printer", "status"}),
		printDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace, Subsystem: "printer", Name: "job_duration_seconds",
			Help:    "Duración de los trabajos de impresión, incluida la espera en cola.",
			Buckets: prometheus.ExponentialBuckets(0.05, 2, 10),
		}),
	}
	m.Registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.httpRequests, m.httpDuration,
		m.sales, m.saleItems, m.saleAmount,
		m.settledRows, m.settledAmount,
		m.printJobs, m.printDuration,
	)
	return m
}

// SaleRegistered implementa ports.LedgerMetrics.
func (m *Metrics) SaleRegistered(paymentType string, items int, total decimal.Decimal) {
	m.sales.WithLabelValues(paymentType).Inc()
	m.saleItems.Add(float64(items))
	m.saleAmount.WithLabelValues(paymentType).Add(total.InexactFloat64())
}

// RowsSettled implementa ports.LedgerMetrics.
func (m *Metrics) RowsSettled(rows int, amount decimal.Decimal) {
	m.settledRows.Add(float64(rows))
	m.settledAmount.Add(amount.InexactFloat64())
}

// PrintJob implementa printer.JobObserver.
func (m *Metrics) PrintJob(printer, status string, d time.Duration) {
	m.printJobs.WithLabelValues(printer, status).Inc()
	m.printDuration.Observe(d.Seconds())
}

// Middleware mide cada request. Se etiqueta con la ruta registrada (no la URL)
// para no explotar la cardinalidad con IDs.
func (m *Metrics) Middleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()
		status := c.Response().StatusCode()
		if err != nil {
			if fe, ok := err.(*fiber.Error); ok {
				status = fe.Code
			} else {
				status = fiber.StatusInternalServerError
			}
		}
		path := c.Route().Path
		m.httpRequests.WithLabelValues(c.Method(), path, strconv.Itoa(status)).Inc()
		m.httpDuration.WithLabelValues(c.Method(), path).Observe(time.Since(start).Seconds())
		return err
	}
}

// Handler GET /metrics.
func (m *Metrics) Handler() fiber.Handler {
	return adaptor.HTTPHandler(promhttp.HandlerFor(m.Registry, promhttp.HandlerOpts{}))
}
