package activity

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"backoffice/internal/platform/metrics"
)

// Sink receives a best-effort copy of every appended record, keyed by target
// ID so records for the same entity stay ordered. The store append is the
// source of truth; sink failures are observed, never propagated.
type Sink interface {
	Publish(ctx context.Context, key, value []byte) error
}

// Publisher is the write path of the audit log. It stamps records, appends
// them to the store, and hands them to the fan-out worker.
type Publisher struct {
	store   Store
	outbox  chan<- Record
	logger  *slog.Logger
	metrics *metrics.Metrics
}

type PublisherOption func(*Publisher)

func WithLogger(logger *slog.Logger) PublisherOption {
	return func(p *Publisher) {
		p.logger = logger
	}
}

func WithMetrics(m *metrics.Metrics) PublisherOption {
	return func(p *Publisher) {
		p.metrics = m
	}
}

// WithOutbox attaches the fan-out channel drained by a Worker. Without it,
// records are stored but not forwarded to any sink.
func WithOutbox(outbox chan<- Record) PublisherOption {
	return func(p *Publisher) {
		p.outbox = outbox
	}
}

func NewPublisher(store Store, opts ...PublisherOption) *Publisher {
	p := &Publisher{store: store}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Emit appends one record to the store and queues it for sink fan-out.
// An error means the record was not persisted; the caller decides whether
// that aborts its operation (see the lifecycle engine's ordering policy).
func (p *Publisher) Emit(ctx context.Context, record Record) (Record, error) {
	if record.CreatedAt.IsZero() {
		record.CreatedAt = time.Now()
	}

	stored, err := p.store.Append(ctx, record)
	if err != nil {
		return Record{}, err
	}
	if p.metrics != nil {
		p.metrics.ActivityAppended.Inc()
	}

	if p.outbox != nil {
		select {
		case p.outbox <- stored:
		default:
			// Fan-out is best-effort; a full outbox must not block the
			// request path.
			if p.metrics != nil {
				p.metrics.ActivitySinkErrors.Inc()
			}
			if p.logger != nil {
				p.logger.WarnContext(ctx, "activity outbox full, dropping fan-out copy",
					"record_id", stored.ID,
					"action", stored.Action,
				)
			}
		}
	}

	return stored, nil
}

// Recent lists the most recent records, newest first.
func (p *Publisher) Recent(ctx context.Context, limit int) ([]Record, error) {
	return p.store.ListRecent(ctx, limit)
}

// encodeRecord is the wire form shared by the worker and its tests.
func encodeRecord(record Record) ([]byte, error) {
	return json.Marshal(record)
}
