package handler

import (
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"loyalty/internal/domain/entity"
	"loyalty/internal/usecase"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
)

// stubBalanceUsecase returns canned data for the read endpoints.
type stubBalanceUsecase struct {
	account *entity.LoyaltyAccount
	entries []*entity.LedgerEntry
	rewards []*entity.RewardDefinition
}

func (s *stubBalanceUsecase) GetBalance(_ context.Context, userID uuid.UUID) (*entity.LoyaltyAccount, error) {
	if s.account != nil {
		return s.account, nil
	}

	return entity.ZeroAccount(userID), nil
}

func (s *stubBalanceUsecase) ListTransactions(context.Context, uuid.UUID, int) ([]*entity.LedgerEntry, error) {
	return s.entries, nil
}

func (s *stubBalanceUsecase) ListRewards(context.Context) ([]*entity.RewardDefinition, error) {
	return s.rewards, nil
}

// stubVoucherUsecase serves the QR endpoint.
type stubVoucherUsecase struct {
	png []byte
}

func (s *stubVoucherUsecase) ApplyToOrder(context.Context, *usecase.ApplyVoucherInput) (*usecase.ApplyVoucherResult, error) {
	return nil, nil
}

func (s *stubVoucherUsecase) ListActiveVouchers(context.Context, uuid.UUID, *float64) ([]*usecase.AnnotatedVoucher, error) {
	return nil, nil
}

func (s *stubVoucherUsecase) VoucherQR(context.Context, string) ([]byte, error) {
	return s.png, nil
}

func TestLoyaltyHandler_GetBalance_Integration(t *testing.T) {
	userID := uuid.New()
	handler := &LoyaltyHandler{
		balanceUC: &stubBalanceUsecase{account: &entity.LoyaltyAccount{
			UserID:        userID,
			PointsBalance: 240,
			TotalEarned:   240,
		}},
		logger: slog.Default(),
	}

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/loyalty/users/"+userID.String()+"/balance", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("userId")
	c.SetParamValues(userID.String())

	err := handler.GetBalance(c)
	assert.NoError(t, err)
	assert.Equal(t, http.StatusOK, rec.Code)

	responseBody := rec.Body.String()
	assert.Contains(t, responseBody, userID.String())
	assert.Contains(t, responseBody, "240")
	assert.Contains(t, responseBody, "Balance retrieved successfully")
}

func TestLoyaltyHandler_GetBalance_InvalidUserID(t *testing.T) {
	handler := &LoyaltyHandler{
		balanceUC: &stubBalanceUsecase{},
		logger:    slog.Default(),
	}

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/loyalty/users/not-a-uuid/balance", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("userId")
	c.SetParamValues("not-a-uuid")

	err := handler.GetBalance(c)
	assert.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "INVALID_USER_ID")
}

func TestLoyaltyHandler_ListTransactions_InvalidLimit(t *testing.T) {
	handler := &LoyaltyHandler{
		balanceUC: &stubBalanceUsecase{},
		logger:    slog.Default(),
	}

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/loyalty/users/"+uuid.NewString()+"/transactions?limit=-3", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("userId")
	c.SetParamValues(uuid.NewString())

	err := handler.ListTransactions(c)
	assert.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "INVALID_LIMIT")
}

func TestLoyaltyHandler_VoucherQR_Integration(t *testing.T) {
	png := []byte{0x89, 'P', 'N', 'G'}
	handler := &LoyaltyHandler{
		voucherUC: &stubVoucherUsecase{png: png},
		logger:    slog.Default(),
	}

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/loyalty/vouchers/ABCD2345/qr", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("code")
	c.SetParamValues("ABCD2345")

	err := handler.VoucherQR(c)
	assert.NoError(t, err)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "image/png", rec.Header().Get(echo.HeaderContentType))
	assert.Equal(t, png, rec.Body.Bytes())
}
