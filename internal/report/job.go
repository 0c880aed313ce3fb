package report

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"rfid-attendance/internal/queue"
)

// JobType is the queue message type of an export job.
const JobType = "report.export"

// Job asks a worker to save a table as a workbook.
type Job struct {
	ID          string    `json:"id"`
	RequestedBy string    `json:"requestedBy"`
	RequestedAt time.Time `json:"requestedAt"`
	Table       Table     `json:"table"`
}

// Message wraps the job for publishing.
func (j Job) Message() (queue.Message, error) {
	body, err := json.Marshal(j)
	if err != nil {
		return queue.Message{}, err
	}
	return queue.Message{Type: JobType, Body: body}, nil
}

// ExportObserver is told about each finished export.
type ExportObserver interface {
	ObserveExport(mode, result string)
}

// Worker runs export jobs from a queue.
type Worker struct {
	exporter *Exporter
	dir      string
	logger   *zap.Logger
	observer ExportObserver
}

// NewWorker writes workbooks into dir. observer may be nil.
func NewWorker(exporter *Exporter, dir string, observer ExportObserver, logger *zap.Logger) *Worker {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Worker{exporter: exporter, dir: dir, logger: logger, observer: observer}
}

// Handle processes a single message and returns the saved path.
func (w *Worker) Handle(msg queue.Message) (string, error) {
	if msg.Type != JobType {
		return "", fmt.Errorf("unexpected message type %q", msg.Type)
	}
	var job Job
	if err := json.Unmarshal(msg.Body, &job); err != nil {
		return "", fmt.Errorf("decode export job: %w", err)
	}

	path, err := w.exporter.SaveTo(w.dir, job.Table)
	switch {
	case errors.Is(err, ErrEmptyReport):
		w.observe("empty")
		w.logger.Warn("export job had no rows", zap.String("job_id", job.ID))
		return "", err
	case err != nil:
		w.observe("error")
		return "", fmt.Errorf("export job %s: %w", job.ID, err)
	}
	w.observe("ok")
	w.logger.Info("export job done",
		zap.String("job_id", job.ID),
		zap.String("requested_by", job.RequestedBy),
		zap.String("path", path),
	)
	return path, nil
}

// Run consumes q until ctx ends. Failed jobs are logged and skipped.
func (w *Worker) Run(ctx context.Context, q queue.Queue) error {
	messages, err := q.Consume(ctx)
	if err != nil {
		return fmt.Errorf("queue consume init: %w", err)
	}
	w.logger.Info("export worker started", zap.String("dir", w.dir))
	for msg := range messages {
		if _, err := w.Handle(msg); err != nil && !errors.Is(err, ErrEmptyReport) {
			w.logger.Error("export job failed", zap.Error(err))
		}
	}
	w.logger.Info("export worker stopped")
	return nil
}

func (w *Worker) observe(result string) {
	if w.observer != nil {
		w.observer.ObserveExport("job", result)
	}
}
