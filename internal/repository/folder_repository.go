package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/stwalsh4118/acquire/internal/database"
	"github.com/stwalsh4118/acquire/internal/models"
)

// rowScanner is satisfied by both pgx.Row and pgx.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

type folderRepository struct {
	db *database.Database
}

// NewFolderRepository creates a PostgreSQL-backed FolderRepository.
func NewFolderRepository(db *database.Database) FolderRepository {
	return &folderRepository{db: db}
}

const folderColumns = `
	f.id, f.user_id, f.name, f.description, f.status, f.transaction_type,
	f.budget, f.start_date, f.status_updated_at, f.color, f.created_at`

func scanFolder(row rowScanner) (models.SearchFolder, error) {
	var f models.SearchFolder
	err := row.Scan(
		&f.ID,
		&f.UserID,
		&f.Name,
		&f.Description,
		&f.Status,
		&f.TransactionType,
		&f.Budget,
		&f.StartDate,
		&f.StatusUpdatedAt,
		&f.Color,
		&f.CreatedAt,
	)
	return f, err
}

func (r *folderRepository) ListForUser(ctx context.Context, userID string) ([]models.SearchFolder, error) {
	query := `
		SELECT ` + folderColumns + `
		FROM folders f
		WHERE f.user_id = $1
		   OR EXISTS (SELECT 1 FROM folder_shares s WHERE s.folder_id = f.id AND s.user_id = $1)
		ORDER BY f.created_at, f.id
	`

	rows, err := r.db.Pool.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query folders for user %s: %w", userID, err)
	}
	defer rows.Close()

	folders := []models.SearchFolder{}
	for rows.Next() {
		f, err := scanFolder(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan folder row: %w", err)
		}
		folders = append(folders, f)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating folder rows: %w", err)
	}
	return folders, nil
}

func (r *folderRepository) Get(ctx context.Context, id string) (*models.SearchFolder, error) {
	query := `SELECT ` + folderColumns + ` FROM folders f WHERE f.id = $1`

	f, err := scanFolder(r.db.Pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to query folder %s: %w", id, err)
	}
	return &f, nil
}

func (r *folderRepository) Create(ctx context.Context, f *models.SearchFolder) error {
	query := `
		INSERT INTO folders (
			id, user_id, name, description, status, transaction_type,
			budget, start_date, status_updated_at, color, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`
	_, err := r.db.Pool.Exec(ctx, query,
		f.ID, f.UserID, f.Name, f.Description, f.Status, f.TransactionType,
		f.Budget, f.StartDate, f.StatusUpdatedAt, f.Color, f.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert folder: %w", err)
	}
	return nil
}

func (r *folderRepository) Update(ctx context.Context, f *models.SearchFolder) error {
	query := `
		UPDATE folders SET
			name = $2, description = $3, status = $4, transaction_type = $5,
			budget = $6, start_date = $7, status_updated_at = $8, color = $9
		WHERE id = $1
	`
	tag, err := r.db.Pool.Exec(ctx, query,
		f.ID, f.Name, f.Description, f.Status, f.TransactionType,
		f.Budget, f.StartDate, f.StatusUpdatedAt, f.Color,
	)
	if err != nil {
		return fmt.Errorf("failed to update folder %s: %w", f.ID, err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *folderRepository) Role(ctx context.Context, folderID, userID string) (models.ShareRole, bool, error) {
	query := `
		SELECT
			f.user_id = $2 AS is_owner,
			(SELECT s.role FROM folder_shares s WHERE s.folder_id = f.id AND s.user_id = $2)
		FROM folders f
		WHERE f.id = $1
	`

	var isOwner bool
	var role *string
	err := r.db.Pool.QueryRow(ctx, query, folderID, userID).Scan(&isOwner, &role)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("failed to query role on folder %s: %w", folderID, err)
	}

	if isOwner {
		return models.RoleOwner, true, nil
	}
	if role == nil {
		return "", false, nil
	}
	return models.ParseShareRole(*role), true, nil
}

func (r *folderRepository) Share(ctx context.Context, s *models.FolderShare) error {
	query := `
		INSERT INTO folder_shares (folder_id, user_id, role, created_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (folder_id, user_id) DO UPDATE SET role = EXCLUDED.role
	`
	if _, err := r.db.Pool.Exec(ctx, query, s.FolderID, s.UserID, s.Role, s.CreatedAt); err != nil {
		return fmt.Errorf("failed to share folder %s: %w", s.FolderID, err)
	}
	return nil
}

func (r *folderRepository) CascadeImpact(ctx context.Context, folderID string) (models.CascadeImpact, error) {
	query := `
		SELECT
			(SELECT COUNT(*) FROM properties WHERE folder_id = $1),
			(SELECT COUNT(*) FROM visits WHERE folder_id = $1),
			(SELECT COUNT(*) FROM documents WHERE folder_id = $1),
			(SELECT COUNT(*) FROM link_inbox WHERE folder_id = $1)
	`

	var impact models.CascadeImpact
	err := r.db.Pool.QueryRow(ctx, query, folderID).Scan(
		&impact.Properties,
		&impact.Visits,
		&impact.Documents,
		&impact.PendingLinks,
	)
	if err != nil {
		return impact, fmt.Errorf("failed to count cascade impact for folder %s: %w", folderID, err)
	}
	return impact, nil
}

// cascadeStatements run in order; children before the folder row.
var cascadeStatements = []string{
	`DELETE FROM renovations WHERE property_id IN (SELECT id FROM properties WHERE folder_id = $1)`,
	`DELETE FROM properties WHERE folder_id = $1`,
	`DELETE FROM visits WHERE folder_id = $1`,
	`DELETE FROM documents WHERE folder_id = $1`,
	`DELETE FROM link_inbox WHERE folder_id = $1`,
	`DELETE FROM shared_itineraries WHERE folder_id = $1`,
	`DELETE FROM folder_shares WHERE folder_id = $1`,
}

func (r *folderRepository) DeleteCascade(ctx context.Context, folderID string) error {
	return r.db.WithTx(ctx, func(tx pgx.Tx) error {
		for _, stmt := range cascadeStatements {
			if _, err := tx.Exec(ctx, stmt, folderID); err != nil {
				return fmt.Errorf("failed to cascade delete folder %s: %w", folderID, err)
			}
		}

		tag, err := tx.Exec(ctx, `DELETE FROM folders WHERE id = $1`, folderID)
		if err != nil {
			return fmt.Errorf("failed to delete folder %s: %w", folderID, err)
		}
		if tag.RowsAffected() == 0 {
			return ErrNotFound
		}
		return nil
	})
}
