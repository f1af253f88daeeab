package listing

import (
	"context"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

var ErrListingNotFound = errors.New("listing not found")

type repository struct {
	db *sqlx.DB
}

func NewRepository(db *sqlx.DB) Repository {
	return &repository{db: db}
}

func (r *repository) Create(ctx context.Context, name, address, category, description string, userID int, username string) (*Listing, error) {
	query := `
		INSERT INTO listings (name, address, category, description, user_id, username)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, name, address, category, description, user_id, username, created_at
	`

	var listing Listing
	err := r.db.GetContext(ctx, &listing, query, name, address, category, description, userID, username)
	if err != nil {
		return nil, err
	}

	return &listing, nil
}

func (r *repository) GetByID(ctx context.Context, id int) (*Listing, error) {
	query := `
		SELECT id, name, address, category, description, user_id, username, created_at
		FROM listings
		WHERE id = $1
	`

	var listing Listing
	err := r.db.GetContext(ctx, &listing, query, id)
	if err != nil {
		return nil, err
	}

	return &listing, nil
}

func (r *repository) Update(ctx context.Context, id int, name, address, category, description string) (*Listing, error) {
	query := `
		UPDATE listings
		SET name = $2, address = $3, category = $4, description = $5
		WHERE id = $1
		RETURNING id, name, address, category, description, user_id, username, created_at
	`

	var listing Listing
	err := r.db.GetContext(ctx, &listing, query, id, name, address, category, description)
	if err != nil {
		return nil, err
	}

	return &listing, nil
}

func (r *repository) Delete(ctx context.Context, id int) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM listings WHERE id = $1`, id)
	if err != nil {
		return err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}

	if rowsAffected == 0 {
		return ErrListingNotFound
	}

	return nil
}

// Search runs a parameterized keyword/category/time-window search. Every user
// supplied value travels as a bind argument, never spliced into the SQL text.
func (r *repository) Search(ctx context.Context, filter SearchFilter) ([]Listing, error) {
	query := `
		SELECT l.id, l.name, l.address, l.category, l.description, l.user_id, l.username, l.created_at
		FROM listings l
		WHERE (l.name ILIKE '%' || $1 || '%'
			OR l.description ILIKE '%' || $1 || '%'
			OR l.address ILIKE '%' || $1 || '%')
	`
	args := []interface{}{filter.Keyword}

	if len(filter.Categories) > 0 {
		args = append(args, pq.Array(filter.Categories))
		query += fmt.Sprintf(" AND l.category = ANY($%d)", len(args))
	}

	if !filter.StartTime.IsZero() && !filter.EndTime.IsZero() {
		args = append(args, filter.StartTime, filter.EndTime)
		query += fmt.Sprintf(` AND EXISTS (
			SELECT 1 FROM availabilities a
			WHERE a.listing_id = l.id
			  AND a.is_available = TRUE
			  AND a.start_time >= $%d
			  AND a.end_time <= $%d
		)`, len(args)-1, len(args))
	}

	args = append(args, filter.Limit)
	query += fmt.Sprintf(" ORDER BY l.name ASC LIMIT $%d", len(args))

	listings := []Listing{}
	err := r.db.SelectContext(ctx, &listings, query, args...)
	if err != nil {
		return nil, err
	}

	return listings, nil
}

func (r *repository) ListByOwner(ctx context.Context, userID, limit int) ([]Listing, error) {
	query := `
		SELECT id, name, address, category, description, user_id, username, created_at
		FROM listings
		WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT $2
	`

	listings := []Listing{}
	err := r.db.SelectContext(ctx, &listings, query, userID, limit)
	if err != nil {
		return nil, err
	}

	return listings, nil
}

func (r *repository) NameExists(ctx context.Context, name string) (bool, error) {
	query := `SELECT EXISTS(SELECT 1 FROM listings WHERE name = $1)`

	var exists bool
	err := r.db.GetContext(ctx, &exists, query, name)
	if err != nil {
		return false, err
	}

	return exists, nil
}
