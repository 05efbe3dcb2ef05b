package http

import (
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/oapi-codegen/runtime"
)

const operatorHeader = "X-Operator-ID"

// ServerInterface lists the operations of openapi.yaml.
type ServerInterface interface {
	// (PATCH /api/v1/orders/{orderId}/status)
	UpdateOrderStatus(ctx echo.Context, orderID string, params OperatorParams) error
	// (POST /api/v1/orders/status/batch)
	BatchUpdateOrderStatus(ctx echo.Context, params OperatorParams) error
	// (GET /api/v1/orders/{orderId}/status/history)
	GetStatusHistory(ctx echo.Context, orderID string) error
	// (GET /api/v1/orders/{orderId}/status/permission)
	CheckPermission(ctx echo.Context, orderID string, params CheckPermissionParams) error
}

// OperatorParams carries the resolved X-Operator-ID header.
type OperatorParams struct {
	OperatorID string
}

type CheckPermissionParams struct {
	OperatorParams
	Target string
}

// ServerInterfaceWrapper binds path, query and header parameters before
// calling the handler.
type ServerInterfaceWrapper struct {
	Handler ServerInterface
}

func (w *ServerInterfaceWrapper) UpdateOrderStatus(ctx echo.Context) error {
	orderID, err := bindOrderID(ctx)
	if err != nil {
		return err
	}

	var params OperatorParams
	if params.OperatorID, err = bindOperator(ctx); err != nil {
		return err
	}

	return w.Handler.UpdateOrderStatus(ctx, orderID, params)
}

func (w *ServerInterfaceWrapper) BatchUpdateOrderStatus(ctx echo.Context) error {
	var params OperatorParams
	var err error
	if params.OperatorID, err = bindOperator(ctx); err != nil {
		return err
	}

	return w.Handler.BatchUpdateOrderStatus(ctx, params)
}

func (w *ServerInterfaceWrapper) GetStatusHistory(ctx echo.Context) error {
	orderID, err := bindOrderID(ctx)
	if err != nil {
		return err
	}

	return w.Handler.GetStatusHistory(ctx, orderID)
}

func (w *ServerInterfaceWrapper) CheckPermission(ctx echo.Context) error {
	orderID, err := bindOrderID(ctx)
	if err != nil {
		return err
	}

	var params CheckPermissionParams
	if params.OperatorID, err = bindOperator(ctx); err != nil {
		return err
	}

	err = runtime.BindQueryParameter("form", true, true, "target", ctx.QueryParams(), &params.Target)
	if err != nil {
		return badRequest(fmt.Sprintf("Invalid format for parameter target: %s", err))
	}

	return w.Handler.CheckPermission(ctx, orderID, params)
}

// EchoRouter is satisfied by *echo.Echo and *echo.Group.
type EchoRouter interface {
	GET(path string, h echo.HandlerFunc, m ...echo.MiddlewareFunc) *echo.Route
	PATCH(path string, h echo.HandlerFunc, m ...echo.MiddlewareFunc) *echo.Route
	POST(path string, h echo.HandlerFunc, m ...echo.MiddlewareFunc) *echo.Route
}

// RegisterHandlers mounts si on router. baseURL prefixes every path.
func RegisterHandlers(router EchoRouter, si ServerInterface, baseURL string) {
	wrapper := ServerInterfaceWrapper{Handler: si}

	router.PATCH(baseURL+"/api/v1/orders/:orderId/status", wrapper.UpdateOrderStatus)
	router.POST(baseURL+"/api/v1/orders/status/batch", wrapper.BatchUpdateOrderStatus)
	router.GET(baseURL+"/api/v1/orders/:orderId/status/history", wrapper.GetStatusHistory)
	router.GET(baseURL+"/api/v1/orders/:orderId/status/permission", wrapper.CheckPermission)
}

func bindOrderID(ctx echo.Context) (string, error) {
	var orderID string
	err := runtime.BindStyledParameterWithOptions("simple", "orderId", ctx.Param("orderId"), &orderID,
		runtime.BindStyledParameterOptions{ParamLocation: runtime.ParamLocationPath, Explode: false, Required: true})
	if err != nil {
		return "", badRequest(fmt.Sprintf("Invalid format for parameter orderId: %s", err))
	}
	return orderID, nil
}

func bindOperator(ctx echo.Context) (string, error) {
	values := ctx.Request().Header.Values(operatorHeader)
	if len(values) != 1 {
		return "", badRequest(fmt.Sprintf("Expected one value for header %s, got %d", operatorHeader, len(values)))
	}

	var operatorID string
	err := runtime.BindStyledParameterWithOptions("simple", operatorHeader, values[0], &operatorID,
		runtime.BindStyledParameterOptions{ParamLocation: runtime.ParamLocationHeader, Explode: false, Required: true})
	if err != nil {
		return "", badRequest(fmt.Sprintf("Invalid format for header %s: %s", operatorHeader, err))
	}
	return operatorID, nil
}

func badRequest(message string) error {
	return echo.NewHTTPError(http.StatusBadRequest, message)
}
