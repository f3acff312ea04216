// Package scheduler tareas periódicas del servidor (robfig/cron).
package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/jhoicas/farmacia-pos/pkg/logger"
)

// Reconciler alinea el precio actual de las filas abiertas con el maestro.
type Reconciler interface {
	Reconcile(ctx context.Context) (int64, error)
}

// Scheduler envoltorio de cron con logging de cada ejecución.
type Scheduler struct {
	cron    *cron.Cron
	timeout time.Duration
	log     *logger.Logger
}

// New crea el scheduler. Las expresiones usan 5 campos (minuto hora día mes día-semana).
func New(log *logger.Logger) *Scheduler {
	if log == nil {
		log = logger.Nop()
	}
	log = log.Named("scheduler")
	return &Scheduler{
		cron: cron.New(
			cron.WithLogger(cronLogger{log}),
			cron.WithChain(cron.Recover(cronLogger{log})),
		),
		timeout: 5 * time.Minute,
		log:     log,
	}
}

// cronLogger adapta cron.Logger a zerolog. Los mensajes internos de cron van
// a debug; los pánicos recuperados de una tarea, a error.
type cronLogger struct {
	log *logger.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.log.Debug().Fields(keysAndValues).Msg("cron: " + msg)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.log.Error().Err(err).Fields(keysAndValues).Msg("cron: " + msg)
}

// AddReconcile agenda la reconciliación de precios. expresión vacía no agenda nada.
func (s *Scheduler) AddReconcile(expr string, r Reconciler) error {
	if expr == "" {
		return nil
	}
	if _, err := s.cron.AddFunc(expr, func() { s.RunReconcile(r) }); err != nil {
		return fmt.Errorf("cron %q: %w", expr, err)
	}
	s.log.Info().Str("cron", expr).Msg("reconciliación de precios agendada")
	return nil
}

// RunReconcile una ejecución con timeout propio.
func (s *Scheduler) RunReconcile(r Reconciler) {
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()
	start := time.Now()
	n, err := r.Reconcile(ctx)
	if err != nil {
		s.log.Error().Err(err).Msg("reconciliación de precios falló")
		return
	}
	s.log.Info().Int64("filas", n).Dur("duracion", time.Since(start)).Msg("reconciliación de precios")
}

// Entries cantidad de tareas agendadas.
func (s *Scheduler) Entries() int { return len(s.cron.Entries()) }

func (s *Scheduler) Start() { s.cron.Start() }

// Stop detiene el cron y espera a que terminen las tareas en curso.
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
}
