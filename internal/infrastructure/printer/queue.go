// Package printer adaptadores de impresión térmica: spooler del SO, agente
// HTTP y una cola que serializa y limita los trabajos hacia la impresora.
package printer

import (
	"context"
	"errors"
	"fmt"
	"time"

	"golang.org/x/time/rate"

	"github.com/jhoicas/farmacia-pos/internal/application/ports"
	"github.com/jhoicas/farmacia-pos/internal/domain"
	"github.com/jhoicas/farmacia-pos/pkg/logger"
)

var _ ports.Printer = (*Queue)(nil)

// JobObserver recibe el resultado de cada trabajo (métricas).
type JobObserver interface {
	PrintJob(printer, status string, d time.Duration)
}

// Queue serializa los trabajos (una impresora térmica no intercala cupons) y
// limita la tasa para que un doble clic no imprima dos veces seguidas al instante.
type Queue struct {
	next     ports.Printer
	turn     chan struct{} // un trabajo a la vez
	limiter  *rate.Limiter
	timeout  time.Duration
	observer JobObserver
	log      *logger.Logger
}

// NewQueue perSecond <= 0 desactiva el límite.
func NewQueue(next ports.Printer, perSecond float64, timeout time.Duration, observer JobObserver, log *logger.Logger) *Queue {
	limit := rate.Inf
	if perSecond > 0 {
		limit = rate.Limit(perSecond)
	}
	if log == nil {
		log = logger.Nop()
	}
	return &Queue{
		next:     next,
		turn:     make(chan struct{}, 1),
		limiter:  rate.NewLimiter(limit, 1),
		timeout:  timeout,
		observer: observer,
		log:      log.Named("printer"),
	}
}

func (q *Queue) Name() string { return q.next.Name() }

// Print espera turno y cupo antes de enviar. Si el contexto vence esperando,
// el trabajo no se envía.
func (q *Queue) Print(ctx context.Context, data []byte) (string, error) {
	if len(data) == 0 {
		return "", fmt.Errorf("%w: trabajo vacío", domain.ErrInvalidInput)
	}
	if q.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, q.timeout)
		defer cancel()
	}

	start := time.Now()
	select {
	case q.turn <- struct{}{}:
		defer func() { <-q.turn }()
	case <-ctx.Done():
		q.observe("throttled", start)
		return "", fmt.Errorf("%w: cola de impresión: %v", domain.ErrPrinterUnavailable, ctx.Err())
	}

	if err := q.limiter.Wait(ctx); err != nil {
		q.observe("throttled", start)
		return "", fmt.Errorf("%w: cola de impresión: %v", domain.ErrPrinterUnavailable, err)
	}
	jobID, err := q.next.Print(ctx, data)
	if err != nil {
		q.observe("error", start)
		q.log.Warn().Err(err).Str("printer", q.next.Name()).Int("bytes", len(data)).Msg("falla de impresión")
		if !errors.Is(err, domain.ErrPrinterUnavailable) {
			err = fmt.Errorf("%w: %v", domain.ErrPrinterUnavailable, err)
		}
		return "", err
	}
	q.observe("ok", start)
	q.log.Info().Str("printer", q.next.Name()).Str("job", jobID).Int("bytes", len(data)).Msg("cupom impreso")
	return jobID, nil
}

func (q *Queue) observe(status string, start time.Time) {
	if q.observer != nil {
		q.observer.PrintJob(q.next.Name(), status, time.Since(start))
	}
}
