package commands

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"orderlifecycle/internal/core/domain/model/kernel"
	"orderlifecycle/internal/core/domain/model/order"
	"orderlifecycle/internal/core/ports"
	"orderlifecycle/internal/pkg/errs"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"
)

// StatusUpdater applies a single status change. It is implemented by
// *UpdateOrderStatusCommandHandler.
type StatusUpdater interface {
	Handle(ctx context.Context, command UpdateOrderStatusCommand) (*order.Order, error)
}

// BatchUpdateResult partitions the input of a batch: every input position is
// counted exactly once, in SuccessIDs or in FailedIDs, and both lists keep
// input order. FailedReasons maps a failed id to its error code; when an id
// fails more than once the first failing position wins.
type BatchUpdateResult struct {
	TotalCount    int                    `json:"totalCount"`
	SuccessCount  int                    `json:"successCount"`
	FailureCount  int                    `json:"failureCount"`
	SuccessIDs    []kernel.UUID          `json:"successIds"`
	FailedIDs     []kernel.UUID          `json:"failedIds"`
	FailedReasons map[kernel.UUID]string `json:"failedReasons"`
}

// BatchSettings bounds a batch run.
type BatchSettings struct {
	MaxBatchSize int
	Concurrency  int
	// ItemTimeout bounds each item. Zero disables it.
	ItemTimeout time.Duration
}

// BatchUpdateOrderStatusCommandHandler runs one UpdateOrderStatusCommand per
// input id on a bounded worker pool. Item failures never abort the batch.
// When ctx ends, items that have not started yet fail with CANCELLED.
type BatchUpdateOrderStatusCommandHandler struct {
	updater  StatusUpdater
	settings BatchSettings
	logger   *slog.Logger
	metrics  ports.StatusMetrics
	tracer   trace.Tracer
}

// NewBatchUpdateOrderStatusCommandHandler accepts a nil metrics.
func NewBatchUpdateOrderStatusCommandHandler(
	updater StatusUpdater,
	settings BatchSettings,
	logger *slog.Logger,
	metrics ports.StatusMetrics,
) (*BatchUpdateOrderStatusCommandHandler, error) {
	if updater == nil {
		return nil, errs.NewValueIsRequiredError("updater")
	}
	if logger == nil {
		return nil, errs.NewValueIsRequiredError("logger")
	}
	if settings.MaxBatchSize < 1 {
		return nil, errs.NewValueIsOutOfRangeError("max batch size", settings.MaxBatchSize, 1, "unbounded")
	}
	if settings.Concurrency < 1 || settings.Concurrency > settings.MaxBatchSize {
		return nil, errs.NewValueIsOutOfRangeError("concurrency", settings.Concurrency, 1, settings.MaxBatchSize)
	}
	if settings.ItemTimeout < 0 {
		return nil, errs.NewValueIsInvalidErrorWithCause(
			"item timeout is invalid", fmt.Errorf("%s is negative", settings.ItemTimeout),
		)
	}

	return &BatchUpdateOrderStatusCommandHandler{
		updater:  updater,
		settings: settings,
		logger:   logger.With("component", "batch_update_order_status"),
		metrics:  metrics,
		tracer:   otel.Tracer(tracerName),
	}, nil
}

// Handle returns an error only for invalid input, in which case nothing is
// processed.
func (h *BatchUpdateOrderStatusCommandHandler) Handle(
	ctx context.Context,
	command BatchUpdateOrderStatusCommand,
) (BatchUpdateResult, error) {
	if err := command.Validate(); err != nil {
		return BatchUpdateResult{}, err
	}

	ids := command.OrderIDs()
	if len(ids) > h.settings.MaxBatchSize {
		return BatchUpdateResult{}, errs.NewValueIsOutOfRangeError("orderIds", len(ids), 1, h.settings.MaxBatchSize)
	}

	ctx, span := h.tracer.Start(ctx, "BatchUpdateOrderStatus", trace.WithAttributes(
		attribute.Int("batch.size", len(ids)),
		attribute.String("order.target_status", command.Target().String()),
		attribute.String("operator.id", command.Operator().ID()),
	))
	defer span.End()

	started := time.Now()
	outcomes := make([]error, len(ids))

	var g errgroup.Group
	g.SetLimit(h.settings.Concurrency)
	for i, id := range ids {
		g.Go(func() error {
			outcomes[i] = h.processItem(ctx, id, command)
			return nil
		})
	}
	_ = g.Wait()

	result := aggregate(ids, outcomes)

	if h.metrics != nil {
		for _, err := range outcomes {
			outcome := ports.OutcomeSuccess
			if err != nil {
				outcome = order.CodeOf(err).String()
			}
			h.metrics.BatchItemObserved(outcome)
		}
		h.metrics.BatchObserved(len(ids), time.Since(started))
	}

	span.SetAttributes(
		attribute.Int("batch.success_count", result.SuccessCount),
		attribute.Int("batch.failure_count", result.FailureCount),
	)
	h.logger.InfoContext(ctx, "Batch status update finished",
		"target", command.Target().String(),
		"operator", command.Operator().ID(),
		"total", result.TotalCount,
		"succeeded", result.SuccessCount,
		"failed", result.FailureCount,
		"elapsed", time.Since(started),
	)

	return result, nil
}

func (h *BatchUpdateOrderStatusCommandHandler) processItem(
	ctx context.Context,
	id kernel.UUID,
	batch BatchUpdateOrderStatusCommand,
) error {
	if err := ctx.Err(); err != nil {
		return order.NewCancelledError(id, err)
	}

	if h.settings.ItemTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, h.settings.ItemTimeout)
		defer cancel()
	}

	command, err := NewUpdateOrderStatusCommand(id, batch.Target(), batch.Operator(), batch.Notes())
	if err != nil {
		return order.NewInfrastructureError(id, err)
	}

	_, err = h.updater.Handle(ctx, command)
	return err
}

func aggregate(ids []kernel.UUID, outcomes []error) BatchUpdateResult {
	result := BatchUpdateResult{
		TotalCount:    len(ids),
		SuccessIDs:    make([]kernel.UUID, 0, len(ids)),
		FailedIDs:     make([]kernel.UUID, 0),
		FailedReasons: make(map[kernel.UUID]string),
	}

	for i, id := range ids {
		err := outcomes[i]
		if err == nil {
			result.SuccessIDs = append(result.SuccessIDs, id)
			continue
		}

		result.FailedIDs = append(result.FailedIDs, id)
		if _, seen := result.FailedReasons[id]; !seen {
			result.FailedReasons[id] = order.CodeOf(err).String()
		}
	}

	result.SuccessCount = len(result.SuccessIDs)
	result.FailureCount = len(result.FailedIDs)
	return result
}
