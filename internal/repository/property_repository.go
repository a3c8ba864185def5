package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/stwalsh4118/acquire/internal/database"
	"github.com/stwalsh4118/acquire/internal/models"
)

type propertyRepository struct {
	db *database.Database
}

// NewPropertyRepository creates a PostgreSQL-backed PropertyRepository.
func NewPropertyRepository(db *database.Database) PropertyRepository {
	return &propertyRepository{db: db}
}

const propertyColumns = `
	id, folder_id, title, url, address, exact_address, price, fees,
	environments, rooms, bathrooms, toilets, parking, sqft, covered_sqft,
	uncovered_sqft, age, floor, status, rating, notes, images, location, created_at`

func scanProperty(row rowScanner) (models.Property, error) {
	var p models.Property
	err := row.Scan(
		&p.ID,
		&p.FolderID,
		&p.Title,
		&p.URL,
		&p.Address,
		&p.ExactAddress,
		&p.Price,
		&p.Fees,
		&p.Environments,
		&p.Rooms,
		&p.Bathrooms,
		&p.Toilets,
		&p.Parking,
		&p.Sqft,
		&p.CoveredSqft,
		&p.UncoveredSqft,
		&p.Age,
		&p.Floor,
		&p.Status,
		&p.Rating,
		&p.Notes,
		&p.Images,
		&p.Location,
		&p.CreatedAt,
	)
	return p, err
}

func propertyArgs(p *models.Property) []any {
	images := p.Images
	if images == nil {
		images = []string{}
	}
	return []any{
		p.ID, p.FolderID, p.Title, p.URL, p.Address, p.ExactAddress, p.Price, p.Fees,
		p.Environments, p.Rooms, p.Bathrooms, p.Toilets, p.Parking, p.Sqft, p.CoveredSqft,
		p.UncoveredSqft, p.Age, p.Floor, p.Status, p.Rating, p.Notes, images, p.Location, p.CreatedAt,
	}
}

func (r *propertyRepository) ListByFolders(ctx context.Context, folderIDs []string) ([]models.Property, error) {
	properties := []models.Property{}
	if len(folderIDs) == 0 {
		return properties, nil
	}

	query := `SELECT ` + propertyColumns + `
		FROM properties
		WHERE folder_id = ANY($1)
		ORDER BY created_at DESC, id`

	rows, err := r.db.Pool.Query(ctx, query, folderIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to query properties: %w", err)
	}
	defer rows.Close()

	index := map[string]int{}
	ids := []string{}
	for rows.Next() {
		p, err := scanProperty(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan property row: %w", err)
		}
		p.RenovationCosts = []models.RenovationItem{}
		index[p.ID] = len(properties)
		ids = append(ids, p.ID)
		properties = append(properties, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating property rows: %w", err)
	}

	items, err := r.renovationsFor(ctx, ids)
	if err != nil {
		return nil, err
	}
	for _, item := range items {
		i := index[item.PropertyID]
		properties[i].RenovationCosts = append(properties[i].RenovationCosts, item)
	}

	return properties, nil
}

func (r *propertyRepository) renovationsFor(ctx context.Context, propertyIDs []string) ([]models.RenovationItem, error) {
	if len(propertyIDs) == 0 {
		return nil, nil
	}

	rows, err := r.db.Pool.Query(ctx, `
		SELECT id, property_id, category, description, estimated_cost
		FROM renovations
		WHERE property_id = ANY($1)
		ORDER BY property_id, id
	`, propertyIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to query renovations: %w", err)
	}
	defer rows.Close()

	var items []models.RenovationItem
	for rows.Next() {
		var item models.RenovationItem
		if err := rows.Scan(&item.ID, &item.PropertyID, &item.Category, &item.Description, &item.EstimatedCost); err != nil {
			return nil, fmt.Errorf("failed to scan renovation row: %w", err)
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating renovation rows: %w", err)
	}
	return items, nil
}

func (r *propertyRepository) Get(ctx context.Context, id string) (*models.Property, error) {
	query := `SELECT ` + propertyColumns + ` FROM properties WHERE id = $1`

	p, err := scanProperty(r.db.Pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to query property %s: %w", id, err)
	}

	items, err := r.renovationsFor(ctx, []string{id})
	if err != nil {
		return nil, err
	}
	p.RenovationCosts = append([]models.RenovationItem{}, items...)
	return &p, nil
}

func (r *propertyRepository) Create(ctx context.Context, p *models.Property) error {
	query := `INSERT INTO properties (` + propertyColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20, $21, $22, $23, $24)`

	return r.db.WithTx(ctx, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, query, propertyArgs(p)...); err != nil {
			return fmt.Errorf("failed to insert property: %w", err)
		}
		return insertRenovations(ctx, tx, p.ID, p.RenovationCosts)
	})
}

func (r *propertyRepository) Update(ctx context.Context, p *models.Property) error {
	query := `
		UPDATE properties SET
			folder_id = $2, title = $3, url = $4, address = $5, exact_address = $6,
			price = $7, fees = $8, environments = $9, rooms = $10, bathrooms = $11,
			toilets = $12, parking = $13, sqft = $14, covered_sqft = $15,
			uncovered_sqft = $16, age = $17, floor = $18, status = $19, rating = $20,
			notes = $21, images = $22, location = $23
		WHERE id = $1
	`
	// created_at is the last positional arg and is never updated
	args := propertyArgs(p)
	return r.db.WithTx(ctx, func(tx pgx.Tx) error {
		tag, err := tx.Exec(ctx, query, args[:len(args)-1]...)
		if err != nil {
			return fmt.Errorf("failed to update property %s: %w", p.ID, err)
		}
		if tag.RowsAffected() == 0 {
			return ErrNotFound
		}
		if _, err := tx.Exec(ctx, `DELETE FROM renovations WHERE property_id = $1`, p.ID); err != nil {
			return fmt.Errorf("failed to clear renovations of property %s: %w", p.ID, err)
		}
		return insertRenovations(ctx, tx, p.ID, p.RenovationCosts)
	})
}

func (r *propertyRepository) UpdateStatus(ctx context.Context, id string, status models.PropertyStatus) error {
	tag, err := r.db.Pool.Exec(ctx, `UPDATE properties SET status = $2 WHERE id = $1`, id, status)
	if err != nil {
		return fmt.Errorf("failed to update status of property %s: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *propertyRepository) ReplaceRenovations(ctx context.Context, propertyID string, items []models.RenovationItem) error {
	return r.db.WithTx(ctx, func(tx pgx.Tx) error {
		var exists bool
		if err := tx.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM properties WHERE id = $1)`, propertyID).Scan(&exists); err != nil {
			return fmt.Errorf("failed to check property %s: %w", propertyID, err)
		}
		if !exists {
			return ErrNotFound
		}

		if _, err := tx.Exec(ctx, `DELETE FROM renovations WHERE property_id = $1`, propertyID); err != nil {
			return fmt.Errorf("failed to clear renovations of property %s: %w", propertyID, err)
		}
		return insertRenovations(ctx, tx, propertyID, items)
	})
}

func insertRenovations(ctx context.Context, tx pgx.Tx, propertyID string, items []models.RenovationItem) error {
	for _, item := range items {
		_, err := tx.Exec(ctx, `
			INSERT INTO renovations (id, property_id, category, description, estimated_cost)
			VALUES ($1, $2, $3, $4, $5)
		`, item.ID, propertyID, item.Category, item.Description, item.EstimatedCost)
		if err != nil {
			return fmt.Errorf("failed to insert renovation for property %s: %w", propertyID, err)
		}
	}
	return nil
}

func (r *propertyRepository) Delete(ctx context.Context, id string) error {
	// renovations go with the property through ON DELETE CASCADE
	tag, err := r.db.Pool.Exec(ctx, `DELETE FROM properties WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete property %s: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
