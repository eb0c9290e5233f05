// Package audit implements the asynchronous, best-effort audit sink.
// Events are buffered in a bounded channel and written by a single
// goroutine; a full buffer drops the event. Persistence failures are
// logged locally and never reach the caller.
package audit

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"cinescope/config"
	"cinescope/internal/domain/entity"
	"cinescope/internal/domain/lifecycle"
	"cinescope/internal/domain/repository"
	"cinescope/internal/domain/service"

	"github.com/google/uuid"
	"go.uber.org/fx"
)

type asyncLogger struct {
	repo    repository.AuditRepository
	ch      chan entity.AuditEvent
	done    chan struct{}
	wg      sync.WaitGroup
	dropped atomic.Uint64
	closed  atomic.Bool
	logger  *slog.Logger
}

// Params holds dependencies for the audit logger, injected by Fx.
type Params struct {
	fx.In
	fx.Lifecycle

	Repo   repository.AuditRepository
	Config *config.Config
	Logger *slog.Logger
}

// NewLogger is the constructor for the asynchronous AuditLogger. The
// writer goroutine drains remaining events on shutdown.
func NewLogger(params Params) service.AuditLogger {
	l := &asyncLogger{
		repo:   params.Repo,
		ch:     make(chan entity.AuditEvent, params.Config.Audit.BufferSize),
		done:   make(chan struct{}),
		logger: params.Logger,
	}

	l.wg.Add(1)
	go l.run()

	params.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			l.stop()

			return nil
		},
	})

	return l
}

// Record enqueues the event without ever blocking the caller. A full
// buffer drops the event and counts the drop.
func (l *asyncLogger) Record(ctx context.Context, event entity.AuditEvent) {
	if l.closed.Load() {
		return
	}

	if event.ID == "" {
		event.ID = uuid.New().String()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}

	select {
	case l.ch <- event:
	default:
		dropped := l.dropped.Add(1)
		l.logger.Warn("Audit buffer full, event dropped",
			slog.String("type", event.Type),
			slog.Uint64("totalDropped", dropped))
	}
}

func (l *asyncLogger) run() {
	defer l.wg.Done()

	for {
		select {
		case event := <-l.ch:
			l.persist(event)
		case <-l.done:
			for {
				select {
				case event := <-l.ch:
					l.persist(event)
				default:
					return
				}
			}
		}
	}
}

// persist writes a single event. Failures are logged and swallowed;
// audit writes are never retried.
func (l *asyncLogger) persist(event entity.AuditEvent) {
	ctx, cancel := context.WithTimeout(context.Background(), lifecycle.DefaultTimeout)
	defer cancel()

	if err := l.repo.Append(ctx, &event); err != nil {
		l.logger.Error("Failed to persist audit event",
			slog.String("type", event.Type),
			slog.String("status", string(event.Status)),
			slog.Any("error", err))
	}
}

func (l *asyncLogger) stop() {
	if l.closed.Swap(true) {
		return
	}

	close(l.done)
	l.wg.Wait()
}
