package db

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/philipposk/ThatJob/internal/types"
)

// CreateDocument stores a generated document.
func (db *DB) CreateDocument(ctx context.Context, d *types.GeneratedDocument) error {
	citations, err := json.Marshal(d.Citations)
	if err != nil {
		return fmt.Errorf("failed to marshal citations: %w", err)
	}

	err = db.pool.QueryRow(ctx,
		`INSERT INTO generated_documents
		   (id, user_id, job_posting_id, type, cv_content, cover_content, alignment_score, citations)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		 RETURNING created_at, updated_at`,
		d.ID, d.UserID, d.JobPostingID, d.Type, d.CVContent, d.CoverContent, d.Alignment, citations,
	).Scan(&d.CreatedAt, &d.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create document: %w", err)
	}
	return nil
}

// GetDocument retrieves a document scoped to its owner. Returns nil, nil
// when the document does not exist or belongs to another user.
func (db *DB) GetDocument(ctx context.Context, userID, id uuid.UUID) (*types.GeneratedDocument, error) {
	var d types.GeneratedDocument
	var citations []byte

	err := db.pool.QueryRow(ctx,
		`SELECT id, user_id, job_posting_id, type, cv_content, cover_content, alignment_score, citations,
		        created_at, updated_at
		 FROM generated_documents WHERE id = $1 AND user_id = $2`,
		id, userID,
	).Scan(&d.ID, &d.UserID, &d.JobPostingID, &d.Type, &d.CVContent, &d.CoverContent,
		&d.Alignment, &citations, &d.CreatedAt, &d.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get document: %w", err)
	}

	if citations != nil {
		_ = json.Unmarshal(citations, &d.Citations)
	}
	return &d, nil
}

// DocumentsByUser lists a user's generated documents, newest first.
func (db *DB) DocumentsByUser(ctx context.Context, userID uuid.UUID) ([]types.GeneratedDocument, error) {
	rows, err := db.pool.Query(ctx,
		`SELECT id, user_id, job_posting_id, type, cv_content, cover_content, alignment_score, citations,
		        created_at, updated_at
		 FROM generated_documents WHERE user_id = $1
		 ORDER BY created_at DESC`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list documents: %w", err)
	}
	defer rows.Close()

	var documents []types.GeneratedDocument
	for rows.Next() {
		var d types.GeneratedDocument
		var citations []byte
		if err := rows.Scan(&d.ID, &d.UserID, &d.JobPostingID, &d.Type, &d.CVContent, &d.CoverContent,
			&d.Alignment, &citations, &d.CreatedAt, &d.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan document: %w", err)
		}
		if citations != nil {
			_ = json.Unmarshal(citations, &d.Citations)
		}
		documents = append(documents, d)
	}
	return documents, rows.Err()
}

// UpdateDocumentContent replaces a document's content after a chat-driven
// edit.
func (db *DB) UpdateDocumentContent(ctx context.Context, userID, id uuid.UUID, cvContent, coverContent *string) error {
	tag, err := db.pool.Exec(ctx,
		`UPDATE generated_documents
		 SET cv_content = COALESCE($3, cv_content),
		     cover_content = COALESCE($4, cover_content),
		     updated_at = NOW()
		 WHERE id = $1 AND user_id = $2`,
		id, userID, cvContent, coverContent,
	)
	if err != nil {
		return fmt.Errorf("failed to update document: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("document %s not found", id)
	}
	return nil
}
