package jobs

import (
	"context"

	"backoffice/internal/platform/querier"
)

type PGRunStore struct {
	DB querier.Querier
}

func NewRunStore(db querier.Querier) *PGRunStore {
	return &PGRunStore{DB: db}
}

func (s *PGRunStore) StartRun(ctx context.Context, companyID, jobType string) (string, error) {
	var id string
	err := s.DB.QueryRow(ctx, `
    INSERT INTO job_runs (company_id, job_type, status)
    VALUES ($1,$2,$3)
    RETURNING id
  `, nullIfEmpty(companyID), jobType, StatusRunning).Scan(&id)
	return id, err
}

func (s *PGRunStore) FinishRun(ctx context.Context, runID, status string, detailsJSON []byte) error {
	_, err := s.DB.Exec(ctx, `
    UPDATE job_runs
    SET status = $1, details_json = $2, completed_at = now()
    WHERE id = $3
  `, status, detailsJSON, runID)
	return err
}

func nullIfEmpty(value string) any {
	if value == "" {
		return nil
	}
	return value
}
