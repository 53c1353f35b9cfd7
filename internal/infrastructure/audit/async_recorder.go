package audit

import (
	"context"
	"errors"

	"github.com/rs/zerolog"

	"dam-inspection-system/internal/domain"
	"dam-inspection-system/internal/ports"
)

// ErrQueueFull черга аудиту переповнена, запис відкинуто
var ErrQueueFull = errors.New("audit queue is full")

// DefaultBufferSize розмір черги за замовчуванням
const DefaultBufferSize = 1024

type entry struct {
	mission   *domain.InspectionMission
	telemetry *domain.TelemetryUpdate
}

// AsyncRecorder ставить записи аудиту в обмежену чергу і пише їх у
// сховище з окремої горутини. Виклики Record* ніколи не блокуються.
type AsyncRecorder struct {
	next    ports.AuditRecorder
	queue   chan entry
	metrics ports.Metrics
	log     zerolog.Logger
}

// NewAsyncRecorder створює новий екземпляр AsyncRecorder
func NewAsyncRecorder(next ports.AuditRecorder, size int, metrics ports.Metrics, log zerolog.Logger) *AsyncRecorder {
	if size <= 0 {
		size = DefaultBufferSize
	}
	if metrics == nil {
		metrics = ports.NopMetrics{}
	}
	return &AsyncRecorder{
		next:    next,
		queue:   make(chan entry, size),
		metrics: metrics,
		log:     log.With().Str("component", "audit_queue").Logger(),
	}
}

// RecordMission ставить копію місії в чергу
func (r *AsyncRecorder) RecordMission(ctx context.Context, mission *domain.InspectionMission) error {
	m := mission.Clone()
	return r.enqueue(entry{mission: &m})
}

// RecordTelemetry ставить копію оновлення в чергу
func (r *AsyncRecorder) RecordTelemetry(ctx context.Context, update *domain.TelemetryUpdate) error {
	u := *update
	return r.enqueue(entry{telemetry: &u})
}

// Len кількість записів, що очікують
func (r *AsyncRecorder) Len() int {
	return len(r.queue)
}

// Run пише записи до скасування ctx, після чого дописує залишок черги
func (r *AsyncRecorder) Run(ctx context.Context) error {
	for {
		select {
		case e := <-r.queue:
			r.write(ctx, e)
		case <-ctx.Done():
			r.drain()
			return nil
		}
	}
}

func (r *AsyncRecorder) enqueue(e entry) error {
	select {
	case r.queue <- e:
		return nil
	default:
		return ErrQueueFull
	}
}

func (r *AsyncRecorder) drain() {
	for {
		select {
		case e := <-r.queue:
			r.write(context.Background(), e)
		default:
			return
		}
	}
}

func (r *AsyncRecorder) write(ctx context.Context, e entry) {
	switch {
	case e.mission != nil:
		if err := r.next.RecordMission(ctx, e.mission); err != nil {
			r.metrics.AuditFailure("mission")
			r.log.Error().Err(err).Str("mission_id", e.mission.ID.String()).Msg("failed to write mission audit record")
		}
	case e.telemetry != nil:
		if err := r.next.RecordTelemetry(ctx, e.telemetry); err != nil {
			r.metrics.AuditFailure("telemetry")
			r.log.Error().Err(err).Str("update_id", e.telemetry.ID.String()).Msg("failed to write telemetry audit record")
		}
	}
}

// MultiRecorder пише кожен запис в усі сховища і повертає першу помилку
type MultiRecorder []ports.AuditRecorder

// RecordMission передає місію всім сховищам
func (m MultiRecorder) RecordMission(ctx context.Context, mission *domain.InspectionMission) error {
	var firstErr error
	for _, r := range m {
		if err := r.RecordMission(ctx, mission); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// RecordTelemetry передає оновлення телеметрії всім сховищам
func (m MultiRecorder) RecordTelemetry(ctx context.Context, update *domain.TelemetryUpdate) error {
	var firstErr error
	for _, r := range m {
		if err := r.RecordTelemetry(ctx, update); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
