package ingest

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/phrazzld/tasklane-api/internal/domain"
	"github.com/phrazzld/tasklane-api/internal/metrics"
	"github.com/phrazzld/tasklane-api/internal/platform/logger"
	"github.com/phrazzld/tasklane-api/internal/schema"
)

// Defaults applied when Options fields are zero.
const (
	DefaultMaxRows           = 10000
	DefaultMaxReportedErrors = 100
)

// BulkWriter persists accepted tasks atomically.
type BulkWriter interface {
	CreateMany(ctx context.Context, tasks []*domain.Task) (int64, error)
}

// Options bounds a pipeline run.
type Options struct {
	// MaxRows is the largest number of data rows accepted per document.
	MaxRows int
	// MaxReportedErrors caps the row errors kept in a BatchError.
	MaxReportedErrors int
}

// Result describes a committed import.
type Result struct {
	Persisted int64
	// Tasks holds the persisted tasks with their storage-assigned ids.
	Tasks []*domain.Task
}

// Pipeline parses, validates and persists CSV task imports.
type Pipeline struct {
	writer BulkWriter
	opts   Options
	logger *slog.Logger
}

// NewPipeline creates a Pipeline writing to w.
func NewPipeline(w BulkWriter, opts Options, logger *slog.Logger) (*Pipeline, error) {
	if w == nil {
		return nil, errors.New("bulk writer cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	if opts.MaxRows <= 0 {
		opts.MaxRows = DefaultMaxRows
	}
	if opts.MaxReportedErrors <= 0 {
		opts.MaxReportedErrors = DefaultMaxReportedErrors
	}
	return &Pipeline{
		writer: w,
		opts:   opts,
		logger: logger.With(slog.String("component", "ingest_pipeline")),
	}, nil
}

// Run imports the CSV document read from r on behalf of ownerID.
//
// Errors:
//   - a *MalformedError (domain.ErrMalformedInput) when the document cannot be
//     parsed or exceeds MaxRows; nothing is persisted
//   - a *BatchError (domain.ErrValidation) listing invalid rows; nothing is persisted
//   - ErrNoValidRows when the document has no data rows; the writer is not called
//   - the writer's error when the bulk insert fails
func (p *Pipeline) Run(ctx context.Context, r io.Reader, ownerID int64) (*Result, error) {
	log := logger.FromContextOrDefault(ctx, p.logger).With(slog.Int64("owner_id", ownerID))

	rows, err := newRowReader(r)
	if err != nil {
		metrics.ImportsRejected.WithLabelValues("malformed").Inc()
		log.Debug("import rejected: bad header", slog.String("error", err.Error()))
		return nil, err
	}

	var (
		accepted []*domain.Task
		failures = &BatchError{}
	)
	for {
		record, rowNum, err := rows.next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			metrics.ImportsRejected.WithLabelValues("malformed").Inc()
			log.Debug("import rejected: malformed document", slog.String("error", err.Error()))
			return nil, err
		}
		if rowNum > p.opts.MaxRows {
			metrics.ImportsRejected.WithLabelValues("too_many_rows").Inc()
			return nil, &MalformedError{
				Reason: fmt.Sprintf("document exceeds %d rows", p.opts.MaxRows),
				Err:    ErrTooManyRows,
			}
		}

		in, err := schema.ParseTask(schema.FromRecord(record))
		if err != nil {
			var verr *domain.ValidationError
			if !errors.As(err, &verr) {
				return nil, fmt.Errorf("validate row %d: %w", rowNum, err)
			}
			failures.Total++
			if len(failures.Rows) < p.opts.MaxReportedErrors {
				failures.Rows = append(failures.Rows, RowError{Row: rowNum, Fields: verr.Fields})
			}
			continue
		}

		accepted = append(accepted, domain.NewTask(*in, ownerID))
	}

	if failures.Total > 0 {
		metrics.ImportsRejected.WithLabelValues("invalid_rows").Inc()
		log.Info("import rejected: invalid rows",
			slog.Int("invalid_rows", failures.Total),
			slog.Int("valid_rows", len(accepted)))
		return nil, failures
	}
	if len(accepted) == 0 {
		metrics.ImportsRejected.WithLabelValues("empty").Inc()
		return nil, ErrNoValidRows
	}

	n, err := p.writer.CreateMany(ctx, accepted)
	if err != nil {
		log.Error("import persistence failed",
			slog.String("error", err.Error()),
			slog.Int("row_count", len(accepted)))
		return nil, fmt.Errorf("persist %d imported tasks: %w", len(accepted), err)
	}

	metrics.TasksImported.Add(float64(n))
	log.Info("import committed", slog.Int64("persisted", n))
	return &Result{Persisted: n, Tasks: accepted}, nil
}
