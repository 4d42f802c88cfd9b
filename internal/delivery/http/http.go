package http

import (
	"context"
	"errors"
	"net/http"

	"github.com/autobotela-sys/zap-trading/internal/dto"
	"github.com/autobotela-sys/zap-trading/internal/service"
	"github.com/autobotela-sys/zap-trading/pkg/logger"
	"github.com/autobotela-sys/zap-trading/pkg/middleware"
	"github.com/autobotela-sys/zap-trading/pkg/ws"

	goValidator "github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
)

type HttpAPIHandler struct {
	echo      *echo.Echo
	log       *logger.Logger
	validator *goValidator.Validate
	service   *service.Service
	hub       *ws.Hub
}

func NewHttpAPIHandler(ctx context.Context, e *echo.Echo, log *logger.Logger, validator *goValidator.Validate, service *service.Service, hub *ws.Hub) *HttpAPIHandler {
	return &HttpAPIHandler{
		echo:      e,
		log:       log,
		validator: validator,
		service:   service,
		hub:       hub,
	}
}

func (h *HttpAPIHandler) SetupRoutes() {
	h.echo.Use(middleware.NewRateLimiterMiddleware())

	base := h.echo.Group("/api")
	authGuard := middleware.NewJWTAuthMiddleware(h.service.AuthService.VerifyToken)

	h.SetupAuth(base, authGuard)
	h.SetupAccounts(base, authGuard)
	h.SetupOrders(base, authGuard)
	h.SetupPositions(base, authGuard)
	h.SetupWebsocket()

	h.echo.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"status": "healthy"})
	})
}

// bindAndValidate decodes the request body and runs struct validation.
func (h *HttpAPIHandler) bindAndValidate(c echo.Context, req interface{}) error {
	if err := c.Bind(req); err != nil {
		return err
	}
	return h.validator.Struct(req)
}

// errorResponse maps service errors to HTTP status codes.
func (h *HttpAPIHandler) errorResponse(c echo.Context, err error) error {
	switch {
	case errors.Is(err, service.ErrNotFound), errors.Is(err, service.ErrNoValidAccounts):
		return c.JSON(http.StatusNotFound, dto.NewNotFoundResponse(err.Error()))
	case errors.Is(err, service.ErrEmailTaken),
		errors.Is(err, service.ErrExchangeFailed),
		errors.Is(err, service.ErrUnknownIndex),
		errors.Is(err, service.ErrInvalidLots),
		errors.Is(err, service.ErrInvalidOptionType):
		return c.JSON(http.StatusBadRequest, dto.NewBadRequestResponse(err.Error()))
	case errors.Is(err, service.ErrInvalidCredentials):
		return c.JSON(http.StatusUnauthorized, dto.NewBaseResponse(http.StatusUnauthorized, err.Error(), nil))
	default:
		h.log.Error("unhandled request error", logger.ErrorField(err))
		return c.JSON(http.StatusInternalServerError, dto.NewBaseResponse(http.StatusInternalServerError, "internal server error", nil))
	}
}
