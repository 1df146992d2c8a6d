package repository

import (
	"context"
	"fmt"

	"cardex/database"
	"cardex/models"
	"github.com/jackc/pgx/v5"
)

// UserRepository implements the UserRepository interface
type UserRepository struct {
	q queryable
}

// NewUserRepository creates a new user repository
func NewUserRepository(db *database.DB) *UserRepository {
	return &UserRepository{q: db.Pool}
}

// newUserRepositoryWithTx creates a new user repository with a transaction
func newUserRepositoryWithTx(tx queryable) *UserRepository {
	return &UserRepository{q: tx}
}

// GetByID retrieves a user by their identity-provider ID
func (r *UserRepository) GetByID(ctx context.Context, id string) (*models.User, error) {
	query := `
		SELECT
			u.id,
			u.display_name,
			u.created_at,
			u.updated_at,
			COALESCE(
				(SELECT SUM(uc.quantity) FROM user_cards uc WHERE uc.user_id = u.id AND uc.quantity > 0),
				0
			) AS card_count
		FROM users u
		WHERE u.id = $1
	`

	var user models.User
	err := r.q.QueryRow(ctx, query, id).Scan(
		&user.ID,
		&user.DisplayName,
		&user.CreatedAt,
		&user.UpdatedAt,
		&user.CardCount,
	)

	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user %s: %w", id, err)
	}

	return &user, nil
}

// Create inserts a new user row
func (r *UserRepository) Create(ctx context.Context, id, displayName string) (*models.User, error) {
	query := `
		INSERT INTO users (id, display_name)
		VALUES ($1, $2)
		RETURNING id, display_name, created_at, updated_at
	`

	var user models.User
	err := r.q.QueryRow(ctx, query, id, displayName).Scan(
		&user.ID,
		&user.DisplayName,
		&user.CreatedAt,
		&user.UpdatedAt,
	)

	if err != nil {
		return nil, fmt.Errorf("failed to create user %s: %w", id, err)
	}

	return &user, nil
}

// GetAll returns all users with their total card counts, most cards first
func (r *UserRepository) GetAll(ctx context.Context) ([]*models.User, error) {
	query := `
		SELECT
			u.id,
			u.display_name,
			u.created_at,
			u.updated_at,
			COALESCE(
				(SELECT SUM(uc.quantity) FROM user_cards uc WHERE uc.user_id = u.id AND uc.quantity > 0),
				0
			) AS card_count
		FROM users u
		ORDER BY card_count DESC, u.id
	`

	rows, err := r.q.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to get all users: %w", err)
	}
	defer rows.Close()

	var users []*models.User
	for rows.Next() {
		var user models.User
		err := rows.Scan(
			&user.ID,
			&user.DisplayName,
			&user.CreatedAt,
			&user.UpdatedAt,
			&user.CardCount,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan user: %w", err)
		}
		users = append(users, &user)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate users: %w", err)
	}

	return users, nil
}
