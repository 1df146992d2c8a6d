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

// TradeRequestRepository implements the TradeRequestRepository interface
type TradeRequestRepository struct {
	q queryable
}

// NewTradeRequestRepository creates a new trade request repository
func NewTradeRequestRepository(db *database.DB) *TradeRequestRepository {
	return &TradeRequestRepository{q: db.Pool}
}

// newTradeRequestRepositoryWithTx creates a new trade request repository with a transaction
func newTradeRequestRepositoryWithTx(tx queryable) *TradeRequestRepository {
	return &TradeRequestRepository{q: tx}
}

// Create inserts a pending request. The partial unique index on pending
// triples is the duplicate guard; a violation surfaces as
// ErrDuplicateRequest without any read-before-write race window.
func (r *TradeRequestRepository) Create(ctx context.Context, request *models.TradeRequest) error {
	query := `
		INSERT INTO trade_requests (from_user_id, to_user_id, card_id, status)
		VALUES ($1, $2, $3, 'pending')
		RETURNING id, status, created_at
	`

	err := r.q.QueryRow(ctx, query,
		request.FromUserID,
		request.ToUserID,
		request.CardID,
	).Scan(&request.ID, &request.Status, &request.CreatedAt)

	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) {
			switch pgErr.Code {
			case "23505":
				return service.ErrDuplicateRequest
			case "23503":
				return fmt.Errorf("request references unknown user or card: %w", service.ErrNotFound)
			case "23514":
				return service.ErrSelfTrade
			}
		}
		return fmt.Errorf("failed to create trade request: %w", err)
	}

	return nil
}

// GetByID retrieves a request by its ID
func (r *TradeRequestRepository) GetByID(ctx context.Context, id int64) (*models.TradeRequest, error) {
	query := `
		SELECT id, from_user_id, to_user_id, card_id, status, created_at, decided_at
		FROM trade_requests
		WHERE id = $1
	`

	var request models.TradeRequest
	err := r.q.QueryRow(ctx, query, id).Scan(
		&request.ID,
		&request.FromUserID,
		&request.ToUserID,
		&request.CardID,
		&request.Status,
		&request.CreatedAt,
		&request.DecidedAt,
	)

	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get trade request %d: %w", id, err)
	}

	return &request, nil
}

// DeletePending removes a still-pending request matching the triple
func (r *TradeRequestRepository) DeletePending(ctx context.Context, fromUserID, toUserID string, cardID int64) (bool, error) {
	query := `
		DELETE FROM trade_requests
		WHERE from_user_id = $1 AND to_user_id = $2 AND card_id = $3 AND status = 'pending'
	`

	result, err := r.q.Exec(ctx, query, fromUserID, toUserID, cardID)
	if err != nil {
		return false, fmt.Errorf("failed to withdraw trade request: %w", err)
	}

	return result.RowsAffected() > 0, nil
}

// MarkDecided flips a pending request to accepted or refused. The status
// guard in the WHERE clause is what makes a concurrent double decide
// observable: the loser matches zero rows.
func (r *TradeRequestRepository) MarkDecided(ctx context.Context, id int64, status models.TradeRequestStatus, decidedAt time.Time) (bool, error) {
	query := `
		UPDATE trade_requests
		SET status = $2, decided_at = $3
		WHERE id = $1 AND status = 'pending'
	`

	result, err := r.q.Exec(ctx, query, id, status, decidedAt)
	if err != nil {
		return false, fmt.Errorf("failed to decide trade request %d: %w", id, err)
	}

	return result.RowsAffected() > 0, nil
}

// GetPendingForOwner returns pending requests addressed to a user
func (r *TradeRequestRepository) GetPendingForOwner(ctx context.Context, userID string) ([]*models.TradeRequest, error) {
	return r.getPending(ctx, "to_user_id", userID)
}

// GetPendingFromRequester returns pending requests sent by a user
func (r *TradeRequestRepository) GetPendingFromRequester(ctx context.Context, userID string) ([]*models.TradeRequest, error) {
	return r.getPending(ctx, "from_user_id", userID)
}

func (r *TradeRequestRepository) getPending(ctx context.Context, column, userID string) ([]*models.TradeRequest, error) {
	query := fmt.Sprintf(`
		SELECT id, from_user_id, to_user_id, card_id, status, created_at, decided_at
		FROM trade_requests
		WHERE %s = $1 AND status = 'pending'
		ORDER BY created_at DESC
	`, column)

	rows, err := r.q.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get pending trade requests for user %s: %w", userID, err)
	}
	defer rows.Close()

	var requests []*models.TradeRequest
	for rows.Next() {
		var request models.TradeRequest
		err := rows.Scan(
			&request.ID,
			&request.FromUserID,
			&request.ToUserID,
			&request.CardID,
			&request.Status,
			&request.CreatedAt,
			&request.DecidedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan trade request: %w", err)
		}
		requests = append(requests, &request)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate trade requests: %w", err)
	}

	return requests, nil
}
