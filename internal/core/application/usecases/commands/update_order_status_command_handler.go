package commands

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"orderlifecycle/internal/core/domain/model/audit"
	"orderlifecycle/internal/core/domain/model/kernel"
	"orderlifecycle/internal/core/domain/model/operator"
	"orderlifecycle/internal/core/domain/model/order"
	"orderlifecycle/internal/core/domain/services"
	"orderlifecycle/internal/core/ports"
	"orderlifecycle/internal/pkg/errs"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "orderlifecycle/commands"

// DefaultPublishTimeout bounds the post-commit publish of one change.
const DefaultPublishTimeout = 2 * time.Second

// StatusValidator is the subset of services.StatusValidator used by the handler.
type StatusValidator interface {
	Validate(current, target order.Status, o *order.Order) order.ValidationResult
}

// PermissionGate is the subset of services.PermissionGate used by the handler.
type PermissionGate interface {
	Authorize(ctx context.Context, op operator.Operator, current, target order.Status, o *order.Order) (services.Decision, error)
}

// UpdateOrderStatusCommandHandler applies one status change:
//
//	begin -> load -> validate -> authorize -> compare-and-set -> append audit -> commit
//
// Every failure is a *order.StatusError and ends the call without retry.
// Nothing is written unless the whole sequence succeeds, so rejected
// requests leave neither a status change nor an audit record behind.
//
// The handler holds no mutable state and is safe for concurrent use; each
// call creates its own unit of work.
type UpdateOrderStatusCommandHandler struct {
	uowFactory StatusUoWFactory
	validator  StatusValidator
	gate       PermissionGate
	logger     *slog.Logger

	publisher      ports.StatusChangePublisher
	publishTimeout time.Duration
	metrics        ports.StatusMetrics
	tracer         trace.Tracer
	now            func() time.Time
}

// UpdateOption configures optional collaborators of the handler.
type UpdateOption func(*UpdateOrderStatusCommandHandler)

// WithPublisher announces every committed change.
func WithPublisher(p ports.StatusChangePublisher) UpdateOption {
	return func(h *UpdateOrderStatusCommandHandler) { h.publisher = p }
}

// WithPublishTimeout replaces DefaultPublishTimeout. Non-positive values are ignored.
func WithPublishTimeout(d time.Duration) UpdateOption {
	return func(h *UpdateOrderStatusCommandHandler) {
		if d > 0 {
			h.publishTimeout = d
		}
	}
}

func WithMetrics(m ports.StatusMetrics) UpdateOption {
	return func(h *UpdateOrderStatusCommandHandler) { h.metrics = m }
}

// WithClock replaces time.Now as the source of change timestamps.
func WithClock(now func() time.Time) UpdateOption {
	return func(h *UpdateOrderStatusCommandHandler) { h.now = now }
}

func NewUpdateOrderStatusCommandHandler(
	uowFactory StatusUoWFactory,
	validator StatusValidator,
	gate PermissionGate,
	logger *slog.Logger,
	opts ...UpdateOption,
) (*UpdateOrderStatusCommandHandler, error) {
	if uowFactory == nil {
		return nil, errs.NewValueIsRequiredError("uowFactory")
	}
	if validator == nil {
		return nil, errs.NewValueIsRequiredError("validator")
	}
	if gate == nil {
		return nil, errs.NewValueIsRequiredError("gate")
	}
	if logger == nil {
		return nil, errs.NewValueIsRequiredError("logger")
	}

	h := &UpdateOrderStatusCommandHandler{
		uowFactory: uowFactory,
		validator:  validator,
		gate:       gate,
		logger:     logger.With("component", "update_order_status"),
		tracer:     otel.Tracer(tracerName),
		now:        time.Now,

		publishTimeout: DefaultPublishTimeout,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h, nil
}

// Handle returns the updated order or a *order.StatusError.
func (h *UpdateOrderStatusCommandHandler) Handle(
	ctx context.Context,
	command UpdateOrderStatusCommand,
) (*order.Order, error) {
	if err := command.Validate(); err != nil {
		return nil, err
	}

	ctx, span := h.tracer.Start(ctx, "UpdateOrderStatus", trace.WithAttributes(
		attribute.String("order.id", command.OrderID().String()),
		attribute.String("order.target_status", command.Target().String()),
		attribute.String("operator.id", command.Operator().ID()),
	))
	defer span.End()

	updated, record, from, err := h.apply(ctx, command)

	outcome := ports.OutcomeSuccess
	if err != nil {
		outcome = order.CodeOf(err).String()
	}
	if h.metrics != nil {
		h.metrics.TransitionObserved(from, command.Target(), outcome)
	}

	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, outcome)
		h.logFailure(ctx, command, err)
		return nil, err
	}

	span.SetAttributes(attribute.Int64("order.version", updated.Version()))
	h.logger.InfoContext(ctx, "Order status changed",
		"order_id", updated.ID().String(),
		"from", from.String(),
		"to", updated.Status().String(),
		"version", updated.Version(),
		"operator", command.Operator().ID(),
	)

	h.publish(ctx, record)
	return updated, nil
}

func (h *UpdateOrderStatusCommandHandler) apply(
	ctx context.Context,
	command UpdateOrderStatusCommand,
) (*order.Order, *audit.StatusChangeRecord, order.Status, error) {
	id := command.OrderID()
	target := command.Target()

	uow := h.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, nil, order.Unknown, infrastructureError(id, fmt.Errorf("begin: %w", err))
	}
	defer func() {
		_ = uow.Rollback(ctx)
	}()

	repo := uow.OrderRepository()

	o, err := repo.Get(ctx, id)
	if errors.Is(err, errs.ErrObjectNotFound) {
		return nil, nil, order.Unknown, order.NewNotFoundError(id, err)
	}
	if err != nil {
		return nil, nil, order.Unknown, infrastructureError(id, fmt.Errorf("load order: %w", err))
	}
	from := o.Status()

	if result := h.validator.Validate(from, target, o); !result.Valid {
		return nil, nil, from, order.NewValidationError(id, result)
	}

	decision, err := h.gate.Authorize(ctx, command.Operator(), from, target, o)
	if err != nil {
		return nil, nil, from, infrastructureError(id, err)
	}
	if !decision.Allowed {
		return nil, nil, from, order.NewPermissionError(id, decision.Reason)
	}

	changedAt := o.NextChangeTime(h.now())
	newVersion, err := repo.CompareAndSetStatus(ctx, id, o.Version(), target, changedAt)
	if errors.Is(err, errs.ErrVersionConflict) {
		return nil, nil, from, order.NewConflictError(id, err)
	}
	if err != nil {
		return nil, nil, from, infrastructureError(id, fmt.Errorf("write status: %w", err))
	}

	if err = o.ApplyStatusChange(target, newVersion, changedAt); err != nil {
		return nil, nil, from, infrastructureError(id, fmt.Errorf("apply status: %w", err))
	}

	record, err := audit.NewStatusChangeRecord(o, from, command.Operator(), command.Notes())
	if err != nil {
		return nil, nil, from, infrastructureError(id, fmt.Errorf("build audit record: %w", err))
	}

	if err = uow.AuditTrail().Append(ctx, record); err != nil {
		return nil, nil, from, infrastructureError(id, fmt.Errorf("append audit record: %w", err))
	}

	if err = uow.Commit(ctx); err != nil {
		return nil, nil, from, infrastructureError(id, fmt.Errorf("commit: %w", err))
	}

	return o, record, from, nil
}

func (h *UpdateOrderStatusCommandHandler) publish(ctx context.Context, record *audit.StatusChangeRecord) {
	if h.publisher == nil {
		return
	}
	// The change is committed; a lost event must not fail the request, and a
	// slow broker must not hold the caller past publishTimeout.
	publishCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), h.publishTimeout)
	defer cancel()

	if err := h.publisher.Publish(publishCtx, record); err != nil {
		h.logger.WarnContext(ctx, "Failed to publish status change",
			"order_id", record.OrderID().String(),
			"version", record.Version(),
			"error", err,
		)
	}
}

func (h *UpdateOrderStatusCommandHandler) logFailure(ctx context.Context, command UpdateOrderStatusCommand, err error) {
	attrs := []any{
		"order_id", command.OrderID().String(),
		"target", command.Target().String(),
		"operator", command.Operator().ID(),
		"code", order.CodeOf(err).String(),
		"error", err,
	}
	if order.KindOf(err) == order.KindInfrastructure {
		h.logger.ErrorContext(ctx, "Order status change failed", attrs...)
		return
	}
	h.logger.InfoContext(ctx, "Order status change rejected", attrs...)
}

// infrastructureError reports context expiry as CANCELLED so batch results
// tell timeouts apart from storage failures.
func infrastructureError(id kernel.UUID, err error) *order.StatusError {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return order.NewCancelledError(id, err)
	}
	return order.NewInfrastructureError(id, err)
}
