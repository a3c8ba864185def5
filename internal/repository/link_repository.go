package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/stwalsh4118/acquire/internal/database"
	"github.com/stwalsh4118/acquire/internal/models"
)

type linkRepository struct {
	db *database.Database
}

// NewLinkRepository creates a PostgreSQL-backed LinkRepository over the
// link_inbox table.
func NewLinkRepository(db *database.Database) LinkRepository {
	return &linkRepository{db: db}
}

func (r *linkRepository) ListForUser(ctx context.Context, userID, folderID string) ([]models.PendingLink, error) {
	query := `
		SELECT id, url, folder_id, user_id, created_at
		FROM link_inbox
		WHERE user_id = $1 AND ($2 = '' OR folder_id = $2)
		ORDER BY created_at, id
	`
	rows, err := r.db.Pool.Query(ctx, query, userID, folderID)
	if err != nil {
		return nil, fmt.Errorf("failed to query pending links: %w", err)
	}
	defer rows.Close()

	links := []models.PendingLink{}
	for rows.Next() {
		var l models.PendingLink
		if err := rows.Scan(&l.ID, &l.URL, &l.FolderID, &l.UserID, &l.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan pending link row: %w", err)
		}
		links = append(links, l)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating pending link rows: %w", err)
	}
	return links, nil
}

func (r *linkRepository) Get(ctx context.Context, id string) (*models.PendingLink, error) {
	var l models.PendingLink
	err := r.db.Pool.QueryRow(ctx, `
		SELECT id, url, folder_id, user_id, created_at FROM link_inbox WHERE id = $1
	`, id).Scan(&l.ID, &l.URL, &l.FolderID, &l.UserID, &l.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to query pending link %s: %w", id, err)
	}
	return &l, nil
}

func (r *linkRepository) Create(ctx context.Context, l *models.PendingLink) error {
	_, err := r.db.Pool.Exec(ctx, `
		INSERT INTO link_inbox (id, url, folder_id, user_id, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`, l.ID, l.URL, l.FolderID, l.UserID, l.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert pending link: %w", err)
	}
	return nil
}

func (r *linkRepository) Delete(ctx context.Context, id string) error {
	tag, err := r.db.Pool.Exec(ctx, `DELETE FROM link_inbox WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete pending link %s: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
