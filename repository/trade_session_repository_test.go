package repository

import (
	"context"
	"testing"
	"time"

	"cardex/models"
	"cardex/repository/testutil"
	"cardex/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTradeSessionRepository(t *testing.T) {
	testDB := testutil.SetupTestDatabase(t)

	requestRepo := NewTradeRequestRepository(testDB.DB)
	sessionRepo := NewTradeSessionRepository(testDB.DB)
	ctx := context.Background()

	testutil.SeedUser(t, testDB.DB, "requester", "Alice")
	testutil.SeedUser(t, testDB.DB, "owner", "Bob")
	cardID := testutil.SeedCard(t, testDB.DB, "alpha", "001", "Storm Drake")

	request := &models.TradeRequest{FromUserID: "requester", ToUserID: "owner", CardID: cardID}
	require.NoError(t, requestRepo.Create(ctx, request))
	_, err := requestRepo.MarkDecided(ctx, request.ID, models.TradeRequestStatusAccepted, time.Now())
	require.NoError(t, err)

	session := &models.TradeSession{
		RequestID:   request.ID,
		RequesterID: "requester",
		OwnerID:     "owner",
		CardID:      cardID,
	}

	t.Run("create starts in waiting state", func(t *testing.T) {
		err := sessionRepo.Create(ctx, session)
		require.NoError(t, err)
		assert.NotZero(t, session.ID)
		assert.Equal(t, models.TradeSessionStatusWaitingRealLife, session.Status)
		assert.False(t, session.ConfirmedByRequester)
		assert.False(t, session.ConfirmedByOwner)
	})

	t.Run("one session per request", func(t *testing.T) {
		duplicate := &models.TradeSession{
			RequestID:   request.ID,
			RequesterID: "requester",
			OwnerID:     "owner",
			CardID:      cardID,
		}
		err := sessionRepo.Create(ctx, duplicate)
		assert.ErrorIs(t, err, service.ErrAlreadyDecided)
	})

	t.Run("first confirm completes the session", func(t *testing.T) {
		completed, err := sessionRepo.MarkCompleted(ctx, session.ID, true, true, time.Now())
		require.NoError(t, err)
		assert.True(t, completed)

		stored, err := sessionRepo.GetByID(ctx, session.ID)
		require.NoError(t, err)
		require.NotNil(t, stored)
		assert.Equal(t, models.TradeSessionStatusCompleted, stored.Status)
		assert.True(t, stored.ConfirmedByRequester)
		assert.True(t, stored.ConfirmedByOwner)
		assert.NotNil(t, stored.CompletedAt)
	})

	t.Run("second confirm matches nothing", func(t *testing.T) {
		completed, err := sessionRepo.MarkCompleted(ctx, session.ID, true, true, time.Now())
		require.NoError(t, err)
		assert.False(t, completed)
	})

	t.Run("listed for both participants", func(t *testing.T) {
		forRequester, err := sessionRepo.GetByUser(ctx, "requester")
		require.NoError(t, err)
		assert.Len(t, forRequester, 1)

		forOwner, err := sessionRepo.GetByUser(ctx, "owner")
		require.NoError(t, err)
		assert.Len(t, forOwner, 1)

		forStranger, err := sessionRepo.GetByUser(ctx, "stranger")
		require.NoError(t, err)
		assert.Empty(t, forStranger)
	})
}
