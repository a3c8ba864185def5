package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/stwalsh4118/acquire/internal/database"
	"github.com/stwalsh4118/acquire/internal/models"
)

type documentRepository struct {
	db *database.Database
}

// NewDocumentRepository creates a PostgreSQL-backed DocumentRepository.
func NewDocumentRepository(db *database.Database) DocumentRepository {
	return &documentRepository{db: db}
}

const documentColumns = `id, folder_id, property_id, name, category, file_url, file_type, created_at`

func scanDocument(row rowScanner) (models.PropertyDocument, error) {
	var d models.PropertyDocument
	err := row.Scan(&d.ID, &d.FolderID, &d.PropertyID, &d.Name, &d.Category, &d.FileURL, &d.FileType, &d.CreatedAt)
	return d, err
}

func (r *documentRepository) ListByFolders(ctx context.Context, folderIDs []string) ([]models.PropertyDocument, error) {
	docs := []models.PropertyDocument{}
	if len(folderIDs) == 0 {
		return docs, nil
	}

	rows, err := r.db.Pool.Query(ctx, `SELECT `+documentColumns+`
		FROM documents
		WHERE folder_id = ANY($1)
		ORDER BY created_at DESC, id`, folderIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to query documents: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		d, err := scanDocument(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan document row: %w", err)
		}
		docs = append(docs, d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating document rows: %w", err)
	}
	return docs, nil
}

func (r *documentRepository) Get(ctx context.Context, id string) (*models.PropertyDocument, error) {
	d, err := scanDocument(r.db.Pool.QueryRow(ctx, `SELECT `+documentColumns+` FROM documents WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to query document %s: %w", id, err)
	}
	return &d, nil
}

func (r *documentRepository) Create(ctx context.Context, d *models.PropertyDocument) error {
	_, err := r.db.Pool.Exec(ctx, `INSERT INTO documents (`+documentColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		d.ID, d.FolderID, d.PropertyID, d.Name, d.Category, d.FileURL, d.FileType, d.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert document: %w", err)
	}
	return nil
}

func (r *documentRepository) Delete(ctx context.Context, id string) error {
	tag, err := r.db.Pool.Exec(ctx, `DELETE FROM documents WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete document %s: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
