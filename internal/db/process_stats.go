package db

import (
	"context"

	"github.com/google/uuid"
)

type AddProcessTimeParams struct {
	JobID      uuid.UUID
	StatType   string
	Amount     int32
	DurationMs int64
}

func (q *Queries) AddProcessTime(ctx context.Context, arg AddProcessTimeParams) error {
	_, err := q.db.Exec(ctx, `
		INSERT INTO process_stats (job_id, stat_type, amount, duration_ms)
		VALUES ($1, $2, $3, $4)`,
		arg.JobID, arg.StatType, arg.Amount, arg.DurationMs)
	return err
}

type PredictProcessTimeParams struct {
	StatType string
	Amount   int64
}

// PredictProcessTime estimates how many milliseconds processing Amount units
// will take, based on the average throughput of past runs of the same stat
// type. Returns 0 when there is no history yet.
func (q *Queries) PredictProcessTime(ctx context.Context, arg PredictProcessTimeParams) (int64, error) {
	row := q.db.QueryRow(ctx, `
		SELECT COALESCE(ROUND(SUM(duration_ms)::numeric / NULLIF(SUM(amount), 0) * $2), 0)::bigint
		FROM process_stats
		WHERE stat_type = $1`,
		arg.StatType, arg.Amount)
	var ms int64
	if err := row.Scan(&ms); err != nil {
		return 0, err
	}
	return ms, nil
}
