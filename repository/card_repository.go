package repository

import (
	"context"
	"fmt"

	"cardex/database"
	"cardex/models"
	"github.com/jackc/pgx/v5"
)

// CardRepository implements the CardRepository interface
type CardRepository struct {
	q queryable
}

// NewCardRepository creates a new card repository
func NewCardRepository(db *database.DB) *CardRepository {
	return &CardRepository{q: db.Pool}
}

// newCardRepositoryWithTx creates a new card repository with a transaction
func newCardRepositoryWithTx(tx queryable) *CardRepository {
	return &CardRepository{q: tx}
}

// Create inserts a new catalog card
func (r *CardRepository) Create(ctx context.Context, card *models.Card) error {
	query := `
		INSERT INTO cards (code, name, set_name, rarity, color, image_url)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at
	`

	err := r.q.QueryRow(ctx, query,
		card.Code,
		card.Name,
		card.SetName,
		card.Rarity,
		card.Color,
		card.ImageURL,
	).Scan(&card.ID, &card.CreatedAt)

	if err != nil {
		return fmt.Errorf("failed to create card %s/%s: %w", card.SetName, card.Code, err)
	}

	return nil
}

// GetByID retrieves a card by its ID
func (r *CardRepository) GetByID(ctx context.Context, id int64) (*models.Card, error) {
	query := `
		SELECT id, code, name, set_name, rarity, color, image_url, created_at
		FROM cards
		WHERE id = $1
	`

	var card models.Card
	err := r.q.QueryRow(ctx, query, id).Scan(
		&card.ID,
		&card.Code,
		&card.Name,
		&card.SetName,
		&card.Rarity,
		&card.Color,
		&card.ImageURL,
		&card.CreatedAt,
	)

	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get card %d: %w", id, err)
	}

	return &card, nil
}

// GetBySet returns all cards of one set, ordered by collector code
func (r *CardRepository) GetBySet(ctx context.Context, setName string) ([]*models.Card, error) {
	query := `
		SELECT id, code, name, set_name, rarity, color, image_url, created_at
		FROM cards
		WHERE set_name = $1
		ORDER BY code
	`

	rows, err := r.q.Query(ctx, query, setName)
	if err != nil {
		return nil, fmt.Errorf("failed to get cards for set %s: %w", setName, err)
	}
	defer rows.Close()

	return scanCards(rows)
}

// GetAll returns the whole catalog ordered by set and collector code
func (r *CardRepository) GetAll(ctx context.Context) ([]*models.Card, error) {
	query := `
		SELECT id, code, name, set_name, rarity, color, image_url, created_at
		FROM cards
		ORDER BY set_name, code
	`

	rows, err := r.q.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to get all cards: %w", err)
	}
	defer rows.Close()

	return scanCards(rows)
}

// GetSetCompletion returns per-set owned-unique counts for a user
func (r *CardRepository) GetSetCompletion(ctx context.Context, userID string) ([]*models.SetCompletion, error) {
	query := `
		SELECT
			c.set_name,
			COUNT(*) AS total_cards,
			COUNT(uc.card_id) AS owned_unique
		FROM cards c
		LEFT JOIN user_cards uc
			ON uc.card_id = c.id AND uc.user_id = $1 AND uc.quantity > 0
		GROUP BY c.set_name
		ORDER BY c.set_name
	`

	rows, err := r.q.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get set completion for user %s: %w", userID, err)
	}
	defer rows.Close()

	var completions []*models.SetCompletion
	for rows.Next() {
		var c models.SetCompletion
		if err := rows.Scan(&c.SetName, &c.TotalCards, &c.OwnedUnique); err != nil {
			return nil, fmt.Errorf("failed to scan set completion: %w", err)
		}
		completions = append(completions, &c)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate set completions: %w", err)
	}

	return completions, nil
}

func scanCards(rows pgx.Rows) ([]*models.Card, error) {
	var cards []*models.Card
	for rows.Next() {
		var card models.Card
		err := rows.Scan(
			&card.ID,
			&card.Code,
			&card.Name,
			&card.SetName,
			&card.Rarity,
			&card.Color,
			&card.ImageURL,
			&card.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan card: %w", err)
		}
		cards = append(cards, &card)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate cards: %w", err)
	}

	return cards, nil
}
