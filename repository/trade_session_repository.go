package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"cardex/database"
	"cardex/models"
	"cardex/service"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// TradeSessionRepository implements the TradeSessionRepository interface
type TradeSessionRepository struct {
	q queryable
}

// NewTradeSessionRepository creates a new trade session repository
func NewTradeSessionRepository(db *database.DB) *TradeSessionRepository {
	return &TradeSessionRepository{q: db.Pool}
}

// newTradeSessionRepositoryWithTx creates a new trade session repository with a transaction
func newTradeSessionRepositoryWithTx(tx queryable) *TradeSessionRepository {
	return &TradeSessionRepository{q: tx}
}

// Create inserts a session for an accepted request. The unique constraint
// on request_id means a request can never spawn two sessions.
func (r *TradeSessionRepository) Create(ctx context.Context, session *models.TradeSession) error {
	query := `
		INSERT INTO trade_sessions (request_id, requester_id, owner_id, card_id, status)
		VALUES ($1, $2, $3, $4, 'waiting_real_life')
		RETURNING id, status, confirmed_by_requester, confirmed_by_owner, created_at
	`

	err := r.q.QueryRow(ctx, query,
		session.RequestID,
		session.RequesterID,
		session.OwnerID,
		session.CardID,
	).Scan(
		&session.ID,
		&session.Status,
		&session.ConfirmedByRequester,
		&session.ConfirmedByOwner,
		&session.CreatedAt,
	)

	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return service.ErrAlreadyDecided
		}
		return fmt.Errorf("failed to create trade session: %w", err)
	}

	return nil
}

// GetByID retrieves a session by its ID
func (r *TradeSessionRepository) GetByID(ctx context.Context, id int64) (*models.TradeSession, error) {
	query := `
		SELECT id, request_id, requester_id, owner_id, card_id, status,
		       confirmed_by_requester, confirmed_by_owner, created_at, completed_at
		FROM trade_sessions
		WHERE id = $1
	`

	var session models.TradeSession
	err := r.q.QueryRow(ctx, query, id).Scan(
		&session.ID,
		&session.RequestID,
		&session.RequesterID,
		&session.OwnerID,
		&session.CardID,
		&session.Status,
		&session.ConfirmedByRequester,
		&session.ConfirmedByOwner,
		&session.CreatedAt,
		&session.CompletedAt,
	)

	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get trade session %d: %w", id, err)
	}

	return &session, nil
}

// MarkCompleted flips a waiting session to completed with both confirmation
// flags set. The status guard ensures only the first confirmer wins; a
// second confirm matches zero rows.
func (r *TradeSessionRepository) MarkCompleted(ctx context.Context, id int64, byRequester, byOwner bool, completedAt time.Time) (bool, error) {
	query := `
		UPDATE trade_sessions
		SET status = 'completed',
		    confirmed_by_requester = $2,
		    confirmed_by_owner = $3,
		    completed_at = $4
		WHERE id = $1 AND status = 'waiting_real_life'
	`

	result, err := r.q.Exec(ctx, query, id, byRequester, byOwner, completedAt)
	if err != nil {
		return false, fmt.Errorf("failed to complete trade session %d: %w", id, err)
	}

	return result.RowsAffected() > 0, nil
}

// GetByUser returns sessions where the user is either participant, most
// recent first
func (r *TradeSessionRepository) GetByUser(ctx context.Context, userID string) ([]*models.TradeSession, error) {
	query := `
		SELECT id, request_id, requester_id, owner_id, card_id, status,
		       confirmed_by_requester, confirmed_by_owner, created_at, completed_at
		FROM trade_sessions
		WHERE requester_id = $1 OR owner_id = $1
		ORDER BY created_at DESC
	`

	rows, err := r.q.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get trade sessions for user %s: %w", userID, err)
	}
	defer rows.Close()

	var sessions []*models.TradeSession
	for rows.Next() {
		var session models.TradeSession
		err := rows.Scan(
			&session.ID,
			&session.RequestID,
			&session.RequesterID,
			&session.OwnerID,
			&session.CardID,
			&session.Status,
			&session.ConfirmedByRequester,
			&session.ConfirmedByOwner,
			&session.CreatedAt,
			&session.CompletedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan trade session: %w", err)
		}
		sessions = append(sessions, &session)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate trade sessions: %w", err)
	}

	return sessions, nil
}
