package activity

import (
	"context"
	"log/slog"

	"backoffice/internal/platform/metrics"
)

// Worker drains the publisher's outbox and forwards records to the sink.
// Keeping fan-out off the request path means a slow broker never delays a
// lifecycle transition.
type Worker struct {
	sink    Sink
	inbox   <-chan Record
	logger  *slog.Logger
	metrics *metrics.Metrics
}

func NewWorker(sink Sink, inbox <-chan Record, logger *slog.Logger, m *metrics.Metrics) *Worker {
	return &Worker{sink: sink, inbox: inbox, logger: logger, metrics: m}
}

func (w *Worker) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case record := <-w.inbox:
			w.forward(ctx, record)
		}
	}
}

func (w *Worker) forward(ctx context.Context, record Record) {
	payload, err := encodeRecord(record)
	if err != nil {
		w.observeFailure(ctx, record, err)
		return
	}
	if err := w.sink.Publish(ctx, []byte(record.TargetID.String()), payload); err != nil {
		w.observeFailure(ctx, record, err)
	}
}

func (w *Worker) observeFailure(ctx context.Context, record Record, err error) {
	if w.metrics != nil {
		w.metrics.ActivitySinkErrors.Inc()
	}
	if w.logger != nil {
		w.logger.WarnContext(ctx, "activity sink publish failed",
			"record_id", record.ID,
			"action", record.Action,
			"error", err,
		)
	}
}
