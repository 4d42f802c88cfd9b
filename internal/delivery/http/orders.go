package http

import (
	"net/http"

	"github.com/autobotela-sys/zap-trading/internal/dto"
	"github.com/autobotela-sys/zap-trading/pkg/middleware"

	"github.com/labstack/echo/v4"
)

func (h *HttpAPIHandler) SetupOrders(base *echo.Group, authGuard echo.MiddlewareFunc) {
	orders := base.Group("/orders", authGuard)
	{
		orders.POST("/place", h.PlaceOrder)
		orders.GET("", h.ListOrders)
	}
}

// PlaceOrder returns 200 with the per-account breakdown whenever the
// batch ran, regardless of how many accounts succeeded. Only
// pre-condition failures surface as a top-level error.
func (h *HttpAPIHandler) PlaceOrder(c echo.Context) error {
	var req dto.PlaceOrderRequest
	if err := h.bindAndValidate(c, &req); err != nil {
		return c.JSON(http.StatusBadRequest, dto.NewBadRequestResponse(err.Error()))
	}

	response, err := h.service.OrderService.PlaceBatch(c.Request().Context(), middleware.UserID(c), req)
	if err != nil {
		return h.errorResponse(c, err)
	}
	return c.JSON(http.StatusOK, response)
}

func (h *HttpAPIHandler) ListOrders(c echo.Context) error {
	orders, err := h.service.OrderService.ListOrders(c.Request().Context(), middleware.UserID(c), c.QueryParam("status"))
	if err != nil {
		return h.errorResponse(c, err)
	}
	return c.JSON(http.StatusOK, orders)
}
