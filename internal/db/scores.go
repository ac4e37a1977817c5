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

// UpsertMatchingScore stores the score for a (user, job) pair. Recomputation
// overwrites the previous score; the latest write wins.
func (db *DB) UpsertMatchingScore(ctx context.Context, userID, jobID uuid.UUID, score *types.MatchingScore) error {
	data, err := json.Marshal(score)
	if err != nil {
		return fmt.Errorf("failed to marshal matching score: %w", err)
	}

	_, err = db.pool.Exec(ctx,
		`INSERT INTO matching_scores (user_id, job_posting_id, score, updated_at)
		 VALUES ($1, $2, $3, NOW())
		 ON CONFLICT (user_id, job_posting_id) DO UPDATE SET score = $3, updated_at = NOW()`,
		userID, jobID, data,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert matching score: %w", err)
	}
	return nil
}

// GetMatchingScore retrieves the stored score for a (user, job) pair.
// Returns nil, nil when no score has been computed.
func (db *DB) GetMatchingScore(ctx context.Context, userID, jobID uuid.UUID) (*types.MatchingScore, error) {
	var data []byte
	err := db.pool.QueryRow(ctx,
		`SELECT score FROM matching_scores WHERE user_id = $1 AND job_posting_id = $2`,
		userID, jobID,
	).Scan(&data)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get matching score: %w", err)
	}

	var score types.MatchingScore
	if err := json.Unmarshal(data, &score); err != nil {
		return nil, fmt.Errorf("failed to unmarshal matching score: %w", err)
	}
	return &score, nil
}
