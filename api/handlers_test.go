package api

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"cardex/models"
	"cardex/service"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockUserService struct{ mock.Mock }

func (m *mockUserService) GetOrCreateUser(ctx context.Context, id, displayName string) (*models.User, error) {
	args := m.Called(ctx, id, displayName)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *mockUserService) ListUsers(ctx context.Context) ([]*models.User, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.User), args.Error(1)
}

func (m *mockUserService) GetSetCompletion(ctx context.Context, userID string) ([]*models.SetCompletion, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.SetCompletion), args.Error(1)
}

type mockInventoryService struct{ mock.Mock }

func (m *mockInventoryService) GetHoldings(ctx context.Context, userID string) (models.Holdings, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(models.Holdings), args.Error(1)
}

func (m *mockInventoryService) GetHoldingDetails(ctx context.Context, userID string) ([]*models.HoldingDetail, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.HoldingDetail), args.Error(1)
}

func (m *mockInventoryService) Adjust(ctx context.Context, userID string, cardID int64, delta int64) (int64, error) {
	args := m.Called(ctx, userID, cardID, delta)
	return args.Get(0).(int64), args.Error(1)
}

func (m *mockInventoryService) GetHistory(ctx context.Context, userID string, limit int) ([]*models.InventoryHistory, error) {
	args := m.Called(ctx, userID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.InventoryHistory), args.Error(1)
}

type mockTradeRequestService struct{ mock.Mock }

func (m *mockTradeRequestService) CreateRequest(ctx context.Context, fromUserID, toUserID string, cardID int64) (*models.TradeRequest, error) {
	args := m.Called(ctx, fromUserID, toUserID, cardID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.TradeRequest), args.Error(1)
}

func (m *mockTradeRequestService) WithdrawRequest(ctx context.Context, fromUserID, toUserID string, cardID int64) error {
	args := m.Called(ctx, fromUserID, toUserID, cardID)
	return args.Error(0)
}

func (m *mockTradeRequestService) Decide(ctx context.Context, requestID int64, actorID string, decision models.TradeDecision) (*models.TradeRequest, *models.TradeSession, error) {
	args := m.Called(ctx, requestID, actorID, decision)
	var request *models.TradeRequest
	var session *models.TradeSession
	if args.Get(0) != nil {
		request = args.Get(0).(*models.TradeRequest)
	}
	if args.Get(1) != nil {
		session = args.Get(1).(*models.TradeSession)
	}
	return request, session, args.Error(2)
}

func (m *mockTradeRequestService) ListIncoming(ctx context.Context, userID string) ([]*models.TradeRequest, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.TradeRequest), args.Error(1)
}

func (m *mockTradeRequestService) ListOutgoing(ctx context.Context, userID string) ([]*models.TradeRequest, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.TradeRequest), args.Error(1)
}

type mockTradeSessionService struct{ mock.Mock }

func (m *mockTradeSessionService) Confirm(ctx context.Context, sessionID int64, actorID string) (*models.TradeSession, error) {
	args := m.Called(ctx, sessionID, actorID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.TradeSession), args.Error(1)
}

func (m *mockTradeSessionService) GetSession(ctx context.Context, sessionID int64) (*models.TradeSession, error) {
	args := m.Called(ctx, sessionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.TradeSession), args.Error(1)
}

func (m *mockTradeSessionService) ListSessionsByUser(ctx context.Context, userID string) ([]*models.TradeSession, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.TradeSession), args.Error(1)
}

// newTestServer wires a Server whose identity middleware accepts any
// X-User-ID without further service calls
func newTestServer(t *testing.T, inventory service.InventoryService, requests service.TradeRequestService, sessions service.TradeSessionService) http.Handler {
	t.Helper()

	users := new(mockUserService)
	users.On("GetOrCreateUser", mock.Anything, mock.Anything, mock.Anything).
		Return(&models.User{ID: "alice"}, nil).Maybe()

	server := NewServer(users, nil, inventory, nil, requests, sessions, nil)
	return server.Router()
}

func TestHandleAdjustInventory(t *testing.T) {
	t.Run("adjusts the caller's own holding", func(t *testing.T) {
		inventory := new(mockInventoryService)
		inventory.On("Adjust", mock.Anything, "alice", int64(7), int64(2)).Return(int64(3), nil)
		router := newTestServer(t, inventory, nil, nil)

		req := httptest.NewRequest(http.MethodPost, "/api/inventory/adjust", strings.NewReader(`{"card_id":7,"delta":2}`))
		req.Header.Set("X-User-ID", "alice")
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.JSONEq(t, `{"card_id":7,"new_quantity":3}`, rec.Body.String())
		inventory.AssertExpectations(t)
	})

	t.Run("underflow maps to 400", func(t *testing.T) {
		inventory := new(mockInventoryService)
		inventory.On("Adjust", mock.Anything, "alice", int64(7), int64(-5)).Return(int64(0), service.ErrInvalidQuantity)
		router := newTestServer(t, inventory, nil, nil)

		req := httptest.NewRequest(http.MethodPost, "/api/inventory/adjust", strings.NewReader(`{"card_id":7,"delta":-5}`))
		req.Header.Set("X-User-ID", "alice")
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Contains(t, rec.Body.String(), "invalid_quantity")
	})

	t.Run("missing identity header maps to 401", func(t *testing.T) {
		router := newTestServer(t, new(mockInventoryService), nil, nil)

		req := httptest.NewRequest(http.MethodPost, "/api/inventory/adjust", strings.NewReader(`{"card_id":7,"delta":1}`))
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("malformed body maps to 400", func(t *testing.T) {
		router := newTestServer(t, new(mockInventoryService), nil, nil)

		req := httptest.NewRequest(http.MethodPost, "/api/inventory/adjust", strings.NewReader(`{"card_id":`))
		req.Header.Set("X-User-ID", "alice")
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestHandleCreateRequest(t *testing.T) {
	t.Run("201 with the created request", func(t *testing.T) {
		requests := new(mockTradeRequestService)
		requests.On("CreateRequest", mock.Anything, "alice", "bob", int64(7)).Return(&models.TradeRequest{
			ID:         11,
			FromUserID: "alice",
			ToUserID:   "bob",
			CardID:     7,
			Status:     models.TradeRequestStatusPending,
		}, nil)
		router := newTestServer(t, nil, requests, nil)

		req := httptest.NewRequest(http.MethodPost, "/api/trades/requests", strings.NewReader(`{"to_user_id":"bob","card_id":7}`))
		req.Header.Set("X-User-ID", "alice")
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		require.Equal(t, http.StatusCreated, rec.Code)
		assert.Contains(t, rec.Body.String(), `"status":"pending"`)
	})

	t.Run("duplicate maps to 409", func(t *testing.T) {
		requests := new(mockTradeRequestService)
		requests.On("CreateRequest", mock.Anything, "alice", "bob", int64(7)).Return(nil, service.ErrDuplicateRequest)
		router := newTestServer(t, nil, requests, nil)

		req := httptest.NewRequest(http.MethodPost, "/api/trades/requests", strings.NewReader(`{"to_user_id":"bob","card_id":7}`))
		req.Header.Set("X-User-ID", "alice")
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusConflict, rec.Code)
		assert.Contains(t, rec.Body.String(), "duplicate_request")
	})

	t.Run("self trade maps to 400", func(t *testing.T) {
		requests := new(mockTradeRequestService)
		requests.On("CreateRequest", mock.Anything, "alice", "alice", int64(7)).Return(nil, service.ErrSelfTrade)
		router := newTestServer(t, nil, requests, nil)

		req := httptest.NewRequest(http.MethodPost, "/api/trades/requests", strings.NewReader(`{"to_user_id":"alice","card_id":7}`))
		req.Header.Set("X-User-ID", "alice")
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Contains(t, rec.Body.String(), "self_trade")
	})
}

func TestHandleDecideRequest(t *testing.T) {
	t.Run("accept returns the session id", func(t *testing.T) {
		requests := new(mockTradeRequestService)
		requests.On("Decide", mock.Anything, int64(11), "bob", models.TradeDecisionAccept).Return(
			&models.TradeRequest{ID: 11, Status: models.TradeRequestStatusAccepted},
			&models.TradeSession{ID: 21},
			nil,
		)
		router := newTestServer(t, nil, requests, nil)

		req := httptest.NewRequest(http.MethodPost, "/api/trades/requests/11/decide", strings.NewReader(`{"decision":"accept"}`))
		req.Header.Set("X-User-ID", "bob")
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)
		assert.JSONEq(t, `{"status":"accepted","session_id":21}`, rec.Body.String())
	})

	t.Run("non-owner maps to 403", func(t *testing.T) {
		requests := new(mockTradeRequestService)
		requests.On("Decide", mock.Anything, int64(11), "mallory", models.TradeDecisionAccept).Return(nil, nil, service.ErrForbidden)
		router := newTestServer(t, nil, requests, nil)

		req := httptest.NewRequest(http.MethodPost, "/api/trades/requests/11/decide", strings.NewReader(`{"decision":"accept"}`))
		req.Header.Set("X-User-ID", "mallory")
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusForbidden, rec.Code)
	})

	t.Run("stale decide maps to 409", func(t *testing.T) {
		requests := new(mockTradeRequestService)
		requests.On("Decide", mock.Anything, int64(11), "bob", models.TradeDecisionRefuse).Return(nil, nil, service.ErrAlreadyDecided)
		router := newTestServer(t, nil, requests, nil)

		req := httptest.NewRequest(http.MethodPost, "/api/trades/requests/11/decide", strings.NewReader(`{"decision":"refuse"}`))
		req.Header.Set("X-User-ID", "bob")
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusConflict, rec.Code)
	})
}

func TestHandleConfirmSession(t *testing.T) {
	t.Run("confirm returns the completed session", func(t *testing.T) {
		sessions := new(mockTradeSessionService)
		sessions.On("Confirm", mock.Anything, int64(21), "alice").Return(&models.TradeSession{
			ID:                   21,
			RequesterID:          "alice",
			OwnerID:              "bob",
			CardID:               7,
			Status:               models.TradeSessionStatusCompleted,
			ConfirmedByRequester: true,
			ConfirmedByOwner:     true,
		}, nil)
		router := newTestServer(t, nil, nil, sessions)

		req := httptest.NewRequest(http.MethodPost, "/api/trades/sessions/21/confirm", nil)
		req.Header.Set("X-User-ID", "alice")
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), `"status":"completed"`)
		assert.Contains(t, rec.Body.String(), `"confirmed_by_requester":true`)
	})

	t.Run("gone owner copy maps to 422", func(t *testing.T) {
		sessions := new(mockTradeSessionService)
		sessions.On("Confirm", mock.Anything, int64(21), "alice").Return(nil, service.ErrInsufficientQuantity)
		router := newTestServer(t, nil, nil, sessions)

		req := httptest.NewRequest(http.MethodPost, "/api/trades/sessions/21/confirm", nil)
		req.Header.Set("X-User-ID", "alice")
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
		assert.Contains(t, rec.Body.String(), "insufficient_quantity")
	})

	t.Run("strangers cannot read a session", func(t *testing.T) {
		sessions := new(mockTradeSessionService)
		sessions.On("GetSession", mock.Anything, int64(21)).Return(&models.TradeSession{
			ID:          21,
			RequesterID: "alice",
			OwnerID:     "bob",
		}, nil)
		router := newTestServer(t, nil, nil, sessions)

		req := httptest.NewRequest(http.MethodGet, "/api/trades/sessions/21", nil)
		req.Header.Set("X-User-ID", "mallory")
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusForbidden, rec.Code)
	})
}
