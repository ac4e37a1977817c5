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

// CreateJobPosting stores an analyzed job posting.
func (db *DB) CreateJobPosting(ctx context.Context, p *types.JobPosting) error {
	var requirements, companyInfo []byte
	var err error
	if p.Requirements != nil {
		if requirements, err = json.Marshal(p.Requirements); err != nil {
			return fmt.Errorf("failed to marshal requirements: %w", err)
		}
	}
	if p.CompanyInfo != nil {
		if companyInfo, err = json.Marshal(p.CompanyInfo); err != nil {
			return fmt.Errorf("failed to marshal company info: %w", err)
		}
	}

	err = db.pool.QueryRow(ctx,
		`INSERT INTO job_postings (id, user_id, url, title, company, description, requirements, company_info)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		 RETURNING created_at`,
		p.ID, p.UserID, p.URL, p.Title, p.Company, p.Description, requirements, companyInfo,
	).Scan(&p.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create job posting: %w", err)
	}
	return nil
}

// GetJobPosting retrieves a posting scoped to its owner. Returns nil, nil
// when the posting does not exist or belongs to another user.
func (db *DB) GetJobPosting(ctx context.Context, userID, id uuid.UUID) (*types.JobPosting, error) {
	var p types.JobPosting
	var requirements, companyInfo []byte

	err := db.pool.QueryRow(ctx,
		`SELECT id, user_id, url, title, company, description, requirements, company_info, created_at
		 FROM job_postings WHERE id = $1 AND user_id = $2`,
		id, userID,
	).Scan(&p.ID, &p.UserID, &p.URL, &p.Title, &p.Company, &p.Description,
		&requirements, &companyInfo, &p.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get job posting: %w", err)
	}

	if requirements != nil {
		_ = json.Unmarshal(requirements, &p.Requirements)
	}
	if companyInfo != nil {
		_ = json.Unmarshal(companyInfo, &p.CompanyInfo)
	}
	return &p, nil
}

// JobPostingsByUser lists a user's postings, newest first.
func (db *DB) JobPostingsByUser(ctx context.Context, userID uuid.UUID) ([]types.JobPosting, error) {
	rows, err := db.pool.Query(ctx,
		`SELECT id, user_id, url, title, company, description, requirements, company_info, created_at
		 FROM job_postings WHERE user_id = $1
		 ORDER BY created_at DESC`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list job postings: %w", err)
	}
	defer rows.Close()

	var postings []types.JobPosting
	for rows.Next() {
		var p types.JobPosting
		var requirements, companyInfo []byte
		if err := rows.Scan(&p.ID, &p.UserID, &p.URL, &p.Title, &p.Company, &p.Description,
			&requirements, &companyInfo, &p.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan job posting: %w", err)
		}
		if requirements != nil {
			_ = json.Unmarshal(requirements, &p.Requirements)
		}
		if companyInfo != nil {
			_ = json.Unmarshal(companyInfo, &p.CompanyInfo)
		}
		postings = append(postings, p)
	}
	return postings, rows.Err()
}
