package timing

import (
	"context"

	"github.com/ecograph/backend/internal/db"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

const StatTypeCSVImport = "csv_import"

func AddImportProcessingTime(
	ctx context.Context,
	jobID uuid.UUID,
	amount int64,
	durationMs int64,
	statType string,
	conn *pgxpool.Pool,
) error {
	q := db.New(conn)

	return q.AddProcessTime(ctx, db.AddProcessTimeParams{
		JobID:      jobID,
		StatType:   statType,
		Amount:     int32(amount),
		DurationMs: durationMs,
	})
}

func PredictImportProcessingTime(ctx context.Context, amount int64, statType string, conn *pgxpool.Pool) (int64, error) {
	q := db.New(conn)

	return q.PredictProcessTime(ctx, db.PredictProcessTimeParams{
		StatType: statType,
		Amount:   amount,
	})
}
