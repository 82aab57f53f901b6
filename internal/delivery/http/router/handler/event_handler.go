package handler

import (
	"log/slog"
	"net/http"

	"loyalty/internal/delivery/http/response"
	"loyalty/internal/usecase"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
)

// EventHandler receives earning events from the order and registration
// subsystems. The hooks are idempotent, so upstream retries are safe.
type EventHandler struct {
	earningUC usecase.EarningUsecase
	logger    *slog.Logger
}

// NewEventHandler is the constructor for EventHandler, injected by Fx.
func NewEventHandler(earningUC usecase.EarningUsecase, logger *slog.Logger) *EventHandler {
	return &EventHandler{
		earningUC: earningUC,
		logger:    logger,
	}
}

// OrderCompleted awards points for a completed order.
func (h *EventHandler) OrderCompleted(c echo.Context) error {
	var input *usecase.OrderCompletedInput
	if err := c.Bind(&input); err != nil {
		return response.BindingError(c, "INVALID_INPUT", "Invalid order completion payload")
	}
	if err := c.Validate(input); err != nil {
		return errors.WithStack(err)
	}

	result, err := h.earningUC.OnOrderCompleted(c.Request().Context(), input)
	if err != nil {
		return errors.WithStack(err)
	}

	if result.Duplicate {
		return response.Success(c, http.StatusOK, result, "Order already awarded")
	}

	return response.Success(c, http.StatusOK, result, "Points awarded successfully")
}

// signupInput carries the registration event payload.
type signupInput struct {
	UserID uuid.UUID `json:"user_id" validate:"required"`
}

// Signup awards the one-time signup bonus.
func (h *EventHandler) Signup(c echo.Context) error {
	var input *signupInput
	if err := c.Bind(&input); err != nil {
		return response.BindingError(c, "INVALID_INPUT", "Invalid signup payload")
	}
	if err := c.Validate(input); err != nil {
		return errors.WithStack(err)
	}

	result, err := h.earningUC.OnSignup(c.Request().Context(), input.UserID)
	if err != nil {
		return errors.WithStack(err)
	}

	if result.Duplicate {
		return response.Success(c, http.StatusOK, result, "Signup bonus already awarded")
	}

	return response.Success(c, http.StatusOK, result, "Signup bonus awarded successfully")
}
