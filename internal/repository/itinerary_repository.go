package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/stwalsh4118/acquire/internal/database"
	"github.com/stwalsh4118/acquire/internal/models"
)

type itineraryRepository struct {
	db *database.Database
}

// NewItineraryRepository creates a PostgreSQL-backed ItineraryRepository.
func NewItineraryRepository(db *database.Database) ItineraryRepository {
	return &itineraryRepository{db: db}
}

func (r *itineraryRepository) Create(ctx context.Context, it *models.SharedItinerary) error {
	visitIDs := it.VisitIDs
	if visitIDs == nil {
		visitIDs = []string{}
	}
	_, err := r.db.Pool.Exec(ctx, `
		INSERT INTO shared_itineraries (id, folder_id, token, client_name, visit_ids, expires_at, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`, it.ID, it.FolderID, it.Token, it.ClientName, visitIDs, it.ExpiresAt, it.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert itinerary: %w", err)
	}
	return nil
}

func (r *itineraryRepository) GetByToken(ctx context.Context, token string) (*models.SharedItinerary, error) {
	var it models.SharedItinerary
	err := r.db.Pool.QueryRow(ctx, `
		SELECT id, folder_id, token, client_name, visit_ids, expires_at, created_at
		FROM shared_itineraries
		WHERE token = $1
	`, token).Scan(&it.ID, &it.FolderID, &it.Token, &it.ClientName, &it.VisitIDs, &it.ExpiresAt, &it.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to query itinerary: %w", err)
	}
	return &it, nil
}

// NewPostgresStore wires every PostgreSQL repository over one pool.
func NewPostgresStore(db *database.Database) *Store {
	return &Store{
		Folders:     NewFolderRepository(db),
		Properties:  NewPropertyRepository(db),
		Visits:      NewVisitRepository(db),
		Documents:   NewDocumentRepository(db),
		Links:       NewLinkRepository(db),
		Itineraries: NewItineraryRepository(db),
	}
}
