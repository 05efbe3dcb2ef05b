// Package http exposes the order status operations over REST. Requests are
// validated against the embedded OpenAPI document; the operator is taken
// from the X-Operator-ID header, which an upstream gateway has authenticated.
package http

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"orderlifecycle/internal/core/application/usecases/commands"
	"orderlifecycle/internal/core/application/usecases/queries"
	"orderlifecycle/internal/core/domain/model/audit"
	"orderlifecycle/internal/core/domain/model/kernel"
	"orderlifecycle/internal/core/domain/model/operator"
	"orderlifecycle/internal/core/domain/model/order"

	"github.com/labstack/echo/v4"
)

type (
	UpdateOrderStatusHandler interface {
		Handle(ctx context.Context, command commands.UpdateOrderStatusCommand) (*order.Order, error)
	}

	BatchUpdateOrderStatusHandler interface {
		Handle(ctx context.Context, command commands.BatchUpdateOrderStatusCommand) (commands.BatchUpdateResult, error)
	}

	GetStatusHistoryHandler interface {
		Handle(ctx context.Context, query queries.GetStatusHistoryQuery) ([]*audit.StatusChangeRecord, error)
	}

	CheckPermissionHandler interface {
		Handle(ctx context.Context, query queries.CheckPermissionQuery) (queries.CheckPermissionQueryResponse, error)
	}
)

// Server implements ServerInterface on top of the command and query handlers.
type Server struct {
	updateHandler     UpdateOrderStatusHandler
	batchHandler      BatchUpdateOrderStatusHandler
	historyHandler    GetStatusHistoryHandler
	permissionHandler CheckPermissionHandler
	logger            *slog.Logger
}

func NewServer(
	updateHandler UpdateOrderStatusHandler,
	batchHandler BatchUpdateOrderStatusHandler,
	historyHandler GetStatusHistoryHandler,
	permissionHandler CheckPermissionHandler,
	logger *slog.Logger,
) *Server {
	return &Server{
		updateHandler:     updateHandler,
		batchHandler:      batchHandler,
		historyHandler:    historyHandler,
		permissionHandler: permissionHandler,
		logger:            logger.With("component", "http"),
	}
}

// Error is the body of every non-2xx response.
type Error struct {
	Code    string                  `json:"code"`
	Message string                  `json:"message"`
	Errors  []order.ValidationError `json:"errors,omitempty"`
}

type StatusChangeRequest struct {
	Status string `json:"status"`
	Notes  string `json:"notes"`
}

type BatchStatusChangeRequest struct {
	OrderIDs []string `json:"orderIds"`
	Status   string   `json:"status"`
	Notes    string   `json:"notes"`
}

type OrderResponse struct {
	ID              string    `json:"id"`
	Status          string    `json:"status"`
	PaymentStatus   string    `json:"paymentStatus"`
	Amount          string    `json:"amount"`
	Version         int64     `json:"version"`
	StatusChangedAt time.Time `json:"statusChangedAt"`
}

type StatusChangeRecordResponse struct {
	ID         string    `json:"id"`
	OrderID    string    `json:"orderId"`
	FromStatus string    `json:"fromStatus"`
	ToStatus   string    `json:"toStatus"`
	OperatorID string    `json:"operatorId"`
	Notes      string    `json:"notes,omitempty"`
	Timestamp  time.Time `json:"timestamp"`
	Outcome    string    `json:"outcome"`
	Version    int64     `json:"version"`
}

type PermissionDecisionResponse struct {
	Allowed       bool   `json:"allowed"`
	Reason        string `json:"reason,omitempty"`
	CurrentStatus string `json:"currentStatus"`
	Role          string `json:"role"`
	RequiredRole  string `json:"requiredRole"`
}

// UpdateOrderStatus handles PATCH /api/v1/orders/{orderId}/status.
func (s *Server) UpdateOrderStatus(ctx echo.Context, orderID string, params OperatorParams) error {
	id, op, err := parseOrderAndOperator(orderID, params.OperatorID)
	if err != nil {
		return s.writeBadRequest(ctx, err)
	}

	var body StatusChangeRequest
	if err = ctx.Bind(&body); err != nil {
		return s.writeBadRequest(ctx, err)
	}

	cmd, err := commands.NewUpdateOrderStatusCommand(id, requestedStatus(body.Status), op, body.Notes)
	if err != nil {
		return s.writeBadRequest(ctx, err)
	}

	updated, err := s.updateHandler.Handle(ctx.Request().Context(), cmd)
	if err != nil {
		return s.writeStatusError(ctx, err)
	}

	return ctx.JSON(http.StatusOK, OrderResponse{
		ID:              updated.ID().String(),
		Status:          updated.Status().String(),
		PaymentStatus:   updated.PaymentStatus().String(),
		Amount:          updated.Amount().StringFixed(2),
		Version:         updated.Version(),
		StatusChangedAt: updated.StatusChangedAt(),
	})
}

// BatchUpdateOrderStatus handles POST /api/v1/orders/status/batch. Item
// failures are part of a 200 response; only malformed input fails the call.
func (s *Server) BatchUpdateOrderStatus(ctx echo.Context, params OperatorParams) error {
	op, err := operator.NewOperator(params.OperatorID)
	if err != nil {
		return s.writeBadRequest(ctx, err)
	}

	var body BatchStatusChangeRequest
	if err = ctx.Bind(&body); err != nil {
		return s.writeBadRequest(ctx, err)
	}

	ids := make([]kernel.UUID, 0, len(body.OrderIDs))
	for _, raw := range body.OrderIDs {
		id, parseErr := kernel.UUIDFromString(raw)
		if parseErr != nil {
			return s.writeBadRequest(ctx, parseErr)
		}
		ids = append(ids, id)
	}

	cmd, err := commands.NewBatchUpdateOrderStatusCommand(ids, requestedStatus(body.Status), op, body.Notes)
	if err != nil {
		return s.writeBadRequest(ctx, err)
	}

	result, err := s.batchHandler.Handle(ctx.Request().Context(), cmd)
	if err != nil {
		return s.writeBadRequest(ctx, err)
	}

	return ctx.JSON(http.StatusOK, result)
}

// GetStatusHistory handles GET /api/v1/orders/{orderId}/status/history.
func (s *Server) GetStatusHistory(ctx echo.Context, orderID string) error {
	id, err := kernel.UUIDFromString(orderID)
	if err != nil {
		return s.writeBadRequest(ctx, err)
	}

	query, err := queries.NewGetStatusHistoryQuery(id)
	if err != nil {
		return s.writeBadRequest(ctx, err)
	}

	records, err := s.historyHandler.Handle(ctx.Request().Context(), query)
	if err != nil {
		return s.writeStatusError(ctx, order.NewInfrastructureError(id, err))
	}

	response := make([]StatusChangeRecordResponse, len(records))
	for i, r := range records {
		response[i] = StatusChangeRecordResponse{
			ID:         r.ID().String(),
			OrderID:    r.OrderID().String(),
			FromStatus: r.FromStatus().String(),
			ToStatus:   r.ToStatus().String(),
			OperatorID: r.OperatorID(),
			Notes:      r.Notes(),
			Timestamp:  r.Timestamp(),
			Outcome:    string(r.Outcome()),
			Version:    r.Version(),
		}
	}

	return ctx.JSON(http.StatusOK, response)
}

// CheckPermission handles GET /api/v1/orders/{orderId}/status/permission.
func (s *Server) CheckPermission(ctx echo.Context, orderID string, params CheckPermissionParams) error {
	id, op, err := parseOrderAndOperator(orderID, params.OperatorID)
	if err != nil {
		return s.writeBadRequest(ctx, err)
	}

	target, err := order.ParseStatus(params.Target)
	if err != nil {
		return s.writeBadRequest(ctx, err)
	}

	query, err := queries.NewCheckPermissionQuery(id, op, target)
	if err != nil {
		return s.writeBadRequest(ctx, err)
	}

	decision, err := s.permissionHandler.Handle(ctx.Request().Context(), query)
	if err != nil {
		return s.writeStatusError(ctx, err)
	}

	return ctx.JSON(http.StatusOK, PermissionDecisionResponse{
		Allowed:       decision.Allowed,
		Reason:        decision.Reason,
		CurrentStatus: decision.CurrentStatus.String(),
		Role:          decision.Role.String(),
		RequiredRole:  decision.RequiredRole.String(),
	})
}

// ErrorHandler renders errors that escape the handlers, such as parameter
// binding failures and unknown routes, in the Error format.
func ErrorHandler(err error, ctx echo.Context) {
	if ctx.Response().Committed {
		return
	}

	code := http.StatusInternalServerError
	message := http.StatusText(code)
	var httpErr *echo.HTTPError
	if errors.As(err, &httpErr) {
		code = httpErr.Code
		if m, ok := httpErr.Message.(string); ok {
			message = m
		} else {
			message = http.StatusText(code)
		}
	}

	_ = ctx.JSON(code, Error{Code: errorCodeForStatus(code), Message: message})
}

func (s *Server) writeBadRequest(ctx echo.Context, err error) error {
	return ctx.JSON(http.StatusBadRequest, Error{Code: "BAD_REQUEST", Message: err.Error()})
}

func (s *Server) writeStatusError(ctx echo.Context, err error) error {
	var statusErr *order.StatusError
	if !errors.As(err, &statusErr) {
		statusErr = order.NewInfrastructureError(kernel.UUID{}, err)
	}

	httpStatus := httpStatusOf(statusErr.Kind)
	if statusErr.Kind == order.KindInfrastructure {
		s.logger.ErrorContext(ctx.Request().Context(), "Request failed",
			"path", ctx.Path(),
			"code", statusErr.Code.String(),
			"error", err,
		)
	}

	return ctx.JSON(httpStatus, Error{
		Code:    statusErr.Code.String(),
		Message: statusErr.Message,
		Errors:  statusErr.Errors,
	})
}

func httpStatusOf(kind order.ErrorKind) int {
	switch kind {
	case order.KindNotFound:
		return http.StatusNotFound
	case order.KindValidation:
		return http.StatusUnprocessableEntity
	case order.KindPermission:
		return http.StatusForbidden
	case order.KindConflict:
		return http.StatusConflict
	default:
		return http.StatusServiceUnavailable
	}
}

func errorCodeForStatus(status int) string {
	switch status {
	case http.StatusBadRequest:
		return "BAD_REQUEST"
	case http.StatusNotFound:
		return "ROUTE_NOT_FOUND"
	case http.StatusMethodNotAllowed:
		return "METHOD_NOT_ALLOWED"
	default:
		return "INTERNAL"
	}
}

// requestedStatus maps an unrecognized target to order.Unknown, which the
// validator rejects with UNKNOWN_STATUS.
func requestedStatus(raw string) order.Status {
	status, err := order.ParseStatus(raw)
	if err != nil {
		return order.Unknown
	}
	return status
}

func parseOrderAndOperator(orderID, operatorID string) (kernel.UUID, operator.Operator, error) {
	id, err := kernel.UUIDFromString(orderID)
	if err != nil {
		return kernel.UUID{}, operator.Operator{}, err
	}

	op, err := operator.NewOperator(operatorID)
	if err != nil {
		return kernel.UUID{}, operator.Operator{}, err
	}

	return id, op, nil
}
