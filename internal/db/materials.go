package db

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/philipposk/ThatJob/internal/types"
)

// CreateMaterial inserts an uploaded career material for a user.
func (db *DB) CreateMaterial(ctx context.Context, m *types.Material) error {
	err := db.pool.QueryRow(ctx,
		`INSERT INTO materials (user_id, type, title, content, file_url, file_name, file_type)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)
		 RETURNING id, created_at`,
		m.UserID, m.Type, m.Title, m.Content, m.FileURL, m.FileName, m.FileType,
	).Scan(&m.ID, &m.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create material: %w", err)
	}
	return nil
}

// MaterialsByUser returns all materials for a user, newest first.
func (db *DB) MaterialsByUser(ctx context.Context, userID uuid.UUID) ([]types.Material, error) {
	rows, err := db.pool.Query(ctx,
		`SELECT id, user_id, type, title, content, file_url, file_name, file_type, created_at
		 FROM materials WHERE user_id = $1
		 ORDER BY created_at DESC`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list materials: %w", err)
	}
	defer rows.Close()

	var materials []types.Material
	for rows.Next() {
		var m types.Material
		if err := rows.Scan(&m.ID, &m.UserID, &m.Type, &m.Title, &m.Content,
			&m.FileURL, &m.FileName, &m.FileType, &m.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan material: %w", err)
		}
		materials = append(materials, m)
	}
	return materials, rows.Err()
}

// GetMaterial retrieves one material scoped to its owner. Returns nil, nil
// when the material does not exist or belongs to another user.
func (db *DB) GetMaterial(ctx context.Context, userID, id uuid.UUID) (*types.Material, error) {
	var m types.Material
	err := db.pool.QueryRow(ctx,
		`SELECT id, user_id, type, title, content, file_url, file_name, file_type, created_at
		 FROM materials WHERE id = $1 AND user_id = $2`,
		id, userID,
	).Scan(&m.ID, &m.UserID, &m.Type, &m.Title, &m.Content,
		&m.FileURL, &m.FileName, &m.FileType, &m.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get material: %w", err)
	}
	return &m, nil
}

// DeleteMaterial removes a material scoped to its owner. Returns whether a
// row was deleted.
func (db *DB) DeleteMaterial(ctx context.Context, userID, id uuid.UUID) (bool, error) {
	tag, err := db.pool.Exec(ctx,
		`DELETE FROM materials WHERE id = $1 AND user_id = $2`,
		id, userID,
	)
	if err != nil {
		return false, fmt.Errorf("failed to delete material: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}
