package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/Sema-5678/topup-service/internal/domain/model"
)

type MockLedgerRepository struct {
	mock.Mock
}

func (m *MockLedgerRepository) ApplyCredit(ctx context.Context, ownerID int64, amount decimal.Decimal, currency string, referenceID string) (*model.UserBalance, error) {
	args := m.Called(ctx, ownerID, amount, currency, referenceID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.UserBalance), args.Error(1)
}

func (m *MockLedgerRepository) GetBalance(ctx context.Context, ownerID int64) (*model.UserBalance, error) {
	args := m.Called(ctx, ownerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.UserBalance), args.Error(1)
}

func balanceRequest(t *testing.T, ownerID string) (echo.Context, *httptest.ResponseRecorder) {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetPath("/api/v1/owners/:id/balance")
	c.SetParamNames("id")
	c.SetParamValues(ownerID)
	return c, rec
}

func TestBalanceHandler_GetBalance(t *testing.T) {
	t.Run("returns balance in minor and major units", func(t *testing.T) {
		ledger := new(MockLedgerRepository)
		ledger.On("GetBalance", mock.Anything, int64(42)).
			Return(&model.UserBalance{OwnerID: 42, BalanceMinor: 10050}, nil)

		h := NewBalanceHandler(ledger, zap.NewNop())
		c, rec := balanceRequest(t, "42")

		require.NoError(t, h.GetBalance(c))
		assert.Equal(t, http.StatusOK, rec.Code)

		var resp balanceResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Equal(t, int64(42), resp.OwnerID)
		assert.Equal(t, int64(10050), resp.BalanceMinor)
		assert.Equal(t, "100.50", resp.Balance)
		ledger.AssertExpectations(t)
	})

	t.Run("unknown owner reads as zero balance", func(t *testing.T) {
		ledger := new(MockLedgerRepository)
		ledger.On("GetBalance", mock.Anything, int64(7)).
			Return(&model.UserBalance{OwnerID: 7, BalanceMinor: 0}, nil)

		h := NewBalanceHandler(ledger, zap.NewNop())
		c, rec := balanceRequest(t, "7")

		require.NoError(t, h.GetBalance(c))
		assert.Equal(t, http.StatusOK, rec.Code)

		var resp balanceResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Equal(t, "0.00", resp.Balance)
	})

	t.Run("rejects non-numeric owner id", func(t *testing.T) {
		ledger := new(MockLedgerRepository)
		h := NewBalanceHandler(ledger, zap.NewNop())
		c, rec := balanceRequest(t, "not-a-number")

		require.NoError(t, h.GetBalance(c))
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		ledger.AssertNotCalled(t, "GetBalance")
	})

	t.Run("ledger failure maps to 500", func(t *testing.T) {
		ledger := new(MockLedgerRepository)
		ledger.On("GetBalance", mock.Anything, int64(42)).
			Return(nil, errors.New("connection refused"))

		h := NewBalanceHandler(ledger, zap.NewNop())
		c, rec := balanceRequest(t, "42")

		require.NoError(t, h.GetBalance(c))
		assert.Equal(t, http.StatusInternalServerError, rec.Code)
	})
}
