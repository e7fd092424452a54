package db

import (
	"context"
	"encoding/json"

	"github.com/google/uuid"
)

const importJobColumns = `id, kind_class, target_kind, object_key, file_name, status, total_rows, succeeded_rows, failed_rows, errors, created_at, updated_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanImportJob(row rowScanner) (ImportJob, error) {
	var j ImportJob
	err := row.Scan(
		&j.ID,
		&j.KindClass,
		&j.TargetKind,
		&j.ObjectKey,
		&j.FileName,
		&j.Status,
		&j.TotalRows,
		&j.SucceededRows,
		&j.FailedRows,
		&j.Errors,
		&j.CreatedAt,
		&j.UpdatedAt,
	)
	return j, err
}

type CreateImportJobParams struct {
	ID         uuid.UUID
	KindClass  string
	TargetKind string
	ObjectKey  string
	FileName   string
}

func (q *Queries) CreateImportJob(ctx context.Context, arg CreateImportJobParams) (ImportJob, error) {
	row := q.db.QueryRow(ctx, `
		INSERT INTO import_jobs (id, kind_class, target_kind, object_key, file_name, status)
		VALUES ($1, $2, $3, $4, $5, 'pending')
		RETURNING `+importJobColumns,
		arg.ID, arg.KindClass, arg.TargetKind, arg.ObjectKey, arg.FileName)
	return scanImportJob(row)
}

func (q *Queries) GetImportJob(ctx context.Context, id uuid.UUID) (ImportJob, error) {
	row := q.db.QueryRow(ctx, `
		SELECT `+importJobColumns+`
		FROM import_jobs
		WHERE id = $1`, id)
	return scanImportJob(row)
}

func (q *Queries) ListImportJobs(ctx context.Context, limit int32) ([]ImportJob, error) {
	rows, err := q.db.Query(ctx, `
		SELECT `+importJobColumns+`
		FROM import_jobs
		ORDER BY created_at DESC
		LIMIT $1`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var jobs []ImportJob
	for rows.Next() {
		j, err := scanImportJob(rows)
		if err != nil {
			return nil, err
		}
		jobs = append(jobs, j)
	}
	return jobs, rows.Err()
}

type StartImportJobParams struct {
	ID        uuid.UUID
	TotalRows int32
}

// StartImportJob marks a job as running and resets its counters. A job that
// gets retried after a transient failure starts over from a clean slate.
func (q *Queries) StartImportJob(ctx context.Context, arg StartImportJobParams) error {
	_, err := q.db.Exec(ctx, `
		UPDATE import_jobs
		SET status = 'running', total_rows = $2, succeeded_rows = 0, failed_rows = 0, errors = '[]'::jsonb, updated_at = now()
		WHERE id = $1`,
		arg.ID, arg.TotalRows)
	return err
}

type UpdateImportJobProgressParams struct {
	ID            uuid.UUID
	SucceededRows int32
	FailedRows    int32
	Errors        json.RawMessage
}

func (q *Queries) UpdateImportJobProgress(ctx context.Context, arg UpdateImportJobProgressParams) error {
	_, err := q.db.Exec(ctx, `
		UPDATE import_jobs
		SET succeeded_rows = $2, failed_rows = $3, errors = $4, updated_at = now()
		WHERE id = $1`,
		arg.ID, arg.SucceededRows, arg.FailedRows, arg.Errors)
	return err
}

type CompleteImportJobParams struct {
	ID            uuid.UUID
	SucceededRows int32
	FailedRows    int32
	Errors        json.RawMessage
}

func (q *Queries) CompleteImportJob(ctx context.Context, arg CompleteImportJobParams) error {
	_, err := q.db.Exec(ctx, `
		UPDATE import_jobs
		SET status = 'done', succeeded_rows = $2, failed_rows = $3, errors = $4, updated_at = now()
		WHERE id = $1`,
		arg.ID, arg.SucceededRows, arg.FailedRows, arg.Errors)
	return err
}

type FailImportJobParams struct {
	ID     uuid.UUID
	Errors json.RawMessage
}

func (q *Queries) FailImportJob(ctx context.Context, arg FailImportJobParams) error {
	_, err := q.db.Exec(ctx, `
		UPDATE import_jobs
		SET status = 'failed', errors = $2, updated_at = now()
		WHERE id = $1`,
		arg.ID, arg.Errors)
	return err
}

// GetStaleImportJobs returns jobs stuck in the running state, typically left
// behind by a worker that died mid-import.
func (q *Queries) GetStaleImportJobs(ctx context.Context) ([]ImportJob, error) {
	rows, err := q.db.Query(ctx, `
		SELECT `+importJobColumns+`
		FROM import_jobs
		WHERE status = 'running' AND updated_at < now() - interval '10 minutes'`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var jobs []ImportJob
	for rows.Next() {
		j, err := scanImportJob(rows)
		if err != nil {
			return nil, err
		}
		jobs = append(jobs, j)
	}
	return jobs, rows.Err()
}

func (q *Queries) ResetImportJobToPending(ctx context.Context, id uuid.UUID) error {
	_, err := q.db.Exec(ctx, `
		UPDATE import_jobs
		SET status = 'pending', updated_at = now()
		WHERE id = $1`, id)
	return err
}
