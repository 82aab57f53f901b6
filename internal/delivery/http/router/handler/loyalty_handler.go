// Package handler contains the HTTP handlers for the application.
package handler

import (
	"log/slog"
	"net/http"
	"strconv"

	"loyalty/internal/delivery/http/response"
	"loyalty/internal/usecase"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
)

// LoyaltyHandler holds dependencies for the loyalty account endpoints.
type LoyaltyHandler struct {
	balanceUC    usecase.BalanceUsecase
	redemptionUC usecase.RedemptionUsecase
	voucherUC    usecase.VoucherUsecase
	logger       *slog.Logger
}

// NewLoyaltyHandler is the constructor for LoyaltyHandler, injected by Fx.
func NewLoyaltyHandler(
	balanceUC usecase.BalanceUsecase,
	redemptionUC usecase.RedemptionUsecase,
	voucherUC usecase.VoucherUsecase,
	logger *slog.Logger,
) *LoyaltyHandler {
	return &LoyaltyHandler{
		balanceUC:    balanceUC,
		redemptionUC: redemptionUC,
		voucherUC:    voucherUC,
		logger:       logger,
	}
}

// GetBalance returns the user's point balance and lifetime totals.
func (h *LoyaltyHandler) GetBalance(c echo.Context) error {
	userID, err := uuid.Parse(c.Param("userId"))
	if err != nil {
		return response.BadRequest(c, "INVALID_USER_ID", "Invalid user ID")
	}

	account, err := h.balanceUC.GetBalance(c.Request().Context(), userID)
	if err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusOK, account, "Balance retrieved successfully")
}

// ListTransactions returns the user's ledger entries, newest first.
// The optional limit query parameter caps the page size.
func (h *LoyaltyHandler) ListTransactions(c echo.Context) error {
	userID, err := uuid.Parse(c.Param("userId"))
	if err != nil {
		return response.BadRequest(c, "INVALID_USER_ID", "Invalid user ID")
	}

	limit := 0
	if raw := c.QueryParam("limit"); raw != "" {
		limit, err = strconv.Atoi(raw)
		if err != nil || limit < 0 {
			return response.BadRequest(c, "INVALID_LIMIT", "Invalid limit")
		}
	}

	entries, err := h.balanceUC.ListTransactions(c.Request().Context(), userID, limit)
	if err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusOK, entries, "Transactions retrieved successfully")
}

// ListRewards returns the active reward catalog.
func (h *LoyaltyHandler) ListRewards(c echo.Context) error {
	rewards, err := h.balanceUC.ListRewards(c.Request().Context())
	if err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusOK, rewards, "Rewards retrieved successfully")
}

// Redeem converts points into a voucher for the requested reward.
func (h *LoyaltyHandler) Redeem(c echo.Context) error {
	var input *usecase.RedeemInput
	if err := c.Bind(&input); err != nil {
		return response.BindingError(c, "INVALID_INPUT", "Invalid redemption input")
	}
	if err := c.Validate(input); err != nil {
		return errors.WithStack(err)
	}

	result, err := h.redemptionUC.Redeem(c.Request().Context(), input)
	if err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusCreated, result, "Reward redeemed successfully")
}

// ListVouchers returns the user's usable vouchers. When the orderTotal query
// parameter is present, vouchers are annotated with their discount for that
// total and sorted best-first.
func (h *LoyaltyHandler) ListVouchers(c echo.Context) error {
	userID, err := uuid.Parse(c.Param("userId"))
	if err != nil {
		return response.BadRequest(c, "INVALID_USER_ID", "Invalid user ID")
	}

	var orderTotal *float64
	if raw := c.QueryParam("orderTotal"); raw != "" {
		total, err := strconv.ParseFloat(raw, 64)
		if err != nil || total <= 0 {
			return response.BadRequest(c, "INVALID_ORDER_TOTAL", "Invalid order total")
		}
		orderTotal = &total
	}

	vouchers, err := h.voucherUC.ListActiveVouchers(c.Request().Context(), userID, orderTotal)
	if err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusOK, vouchers, "Vouchers retrieved successfully")
}

// ApplyVoucher consumes a voucher against an order and returns the discount.
func (h *LoyaltyHandler) ApplyVoucher(c echo.Context) error {
	var input *usecase.ApplyVoucherInput
	if err := c.Bind(&input); err != nil {
		return response.BindingError(c, "INVALID_INPUT", "Invalid voucher application input")
	}
	if err := c.Validate(input); err != nil {
		return errors.WithStack(err)
	}

	result, err := h.voucherUC.ApplyToOrder(c.Request().Context(), input)
	if err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusOK, result, "Voucher applied successfully")
}

// VoucherQR renders the voucher's redemption code as a PNG QR image.
func (h *LoyaltyHandler) VoucherQR(c echo.Context) error {
	code := c.Param("code")
	if code == "" {
		return response.BadRequest(c, "INVALID_CODE", "Missing voucher code")
	}

	png, err := h.voucherUC.VoucherQR(c.Request().Context(), code)
	if err != nil {
		return errors.WithStack(err)
	}

	return c.Blob(http.StatusOK, "image/png", png)
}

// HealthCheck is a simple handler to check if the service is up.
func HealthCheck(c echo.Context) error {
	return response.Success(c, http.StatusOK, map[string]string{"status": "ok"}, "Service is healthy")
}
