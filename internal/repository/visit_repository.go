package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/stwalsh4118/acquire/internal/database"
	"github.com/stwalsh4118/acquire/internal/models"
)

type visitRepository struct {
	db *database.Database
}

// NewVisitRepository creates a PostgreSQL-backed VisitRepository.
func NewVisitRepository(db *database.Database) VisitRepository {
	return &visitRepository{db: db}
}

const visitColumns = `
	id, property_id, folder_id, user_id, date, time, contact_name, contact_phone,
	checklist, notes, status, client_feedback, photos, created_at`

func scanVisit(row rowScanner) (models.Visit, error) {
	var v models.Visit
	err := row.Scan(
		&v.ID,
		&v.PropertyID,
		&v.FolderID,
		&v.UserID,
		&v.Date,
		&v.Time,
		&v.ContactName,
		&v.ContactPhone,
		&v.Checklist,
		&v.Notes,
		&v.Status,
		&v.ClientFeedback,
		&v.Photos,
		&v.CreatedAt,
	)
	return v, err
}

func checklistOrEmpty(items []models.ChecklistItem) []models.ChecklistItem {
	if items == nil {
		return []models.ChecklistItem{}
	}
	return items
}

func (r *visitRepository) ListByFolders(ctx context.Context, folderIDs []string) ([]models.Visit, error) {
	visits := []models.Visit{}
	if len(folderIDs) == 0 {
		return visits, nil
	}

	rows, err := r.db.Pool.Query(ctx, `SELECT `+visitColumns+`
		FROM visits
		WHERE folder_id = ANY($1)
		ORDER BY date, time, id`, folderIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to query visits: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		v, err := scanVisit(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan visit row: %w", err)
		}
		visits = append(visits, v)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating visit rows: %w", err)
	}
	return visits, nil
}

func (r *visitRepository) Get(ctx context.Context, id string) (*models.Visit, error) {
	v, err := scanVisit(r.db.Pool.QueryRow(ctx, `SELECT `+visitColumns+` FROM visits WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to query visit %s: %w", id, err)
	}
	return &v, nil
}

func (r *visitRepository) Create(ctx context.Context, v *models.Visit) error {
	_, err := r.db.Pool.Exec(ctx, `INSERT INTO visits (`+visitColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)`,
		v.ID, v.PropertyID, v.FolderID, v.UserID, v.Date, v.Time, v.ContactName, v.ContactPhone,
		checklistOrEmpty(v.Checklist), v.Notes, v.Status, v.ClientFeedback, v.Photos, v.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert visit: %w", err)
	}
	return nil
}

func (r *visitRepository) Update(ctx context.Context, v *models.Visit) error {
	tag, err := r.db.Pool.Exec(ctx, `
		UPDATE visits SET
			property_id = $2, date = $3, time = $4, contact_name = $5, contact_phone = $6,
			checklist = $7, notes = $8, status = $9, client_feedback = $10, photos = $11
		WHERE id = $1
	`, v.ID, v.PropertyID, v.Date, v.Time, v.ContactName, v.ContactPhone,
		checklistOrEmpty(v.Checklist), v.Notes, v.Status, v.ClientFeedback, v.Photos,
	)
	if err != nil {
		return fmt.Errorf("failed to update visit %s: %w", v.ID, err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *visitRepository) UpdateStatus(ctx context.Context, id string, status models.VisitStatus) error {
	tag, err := r.db.Pool.Exec(ctx, `UPDATE visits SET status = $2 WHERE id = $1`, id, status)
	if err != nil {
		return fmt.Errorf("failed to update status of visit %s: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *visitRepository) Delete(ctx context.Context, id string) error {
	tag, err := r.db.Pool.Exec(ctx, `DELETE FROM visits WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete visit %s: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
