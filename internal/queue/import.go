package queue

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/ecograph/backend/internal/db"
	"github.com/ecograph/backend/internal/storage"
	"github.com/ecograph/backend/internal/timing"
	"github.com/ecograph/backend/internal/util"
	"github.com/ecograph/backend/pkg/graph"
	"github.com/ecograph/backend/pkg/importer"
	"github.com/ecograph/backend/pkg/leaselock"
	"github.com/ecograph/backend/pkg/logger"
	"github.com/ecograph/backend/pkg/store"
	"github.com/ecograph/backend/pkg/validate"

	awss3 "github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rabbitmq/amqp091-go"
	"golang.org/x/sync/errgroup"
)

type ImportJobMsg struct {
	Message string `json:"message"`
	JobID   string `json:"job_id"`
}

// ImportRowError records why one CSV row was not applied. Row 0 marks a
// failure of the file as a whole.
type ImportRowError struct {
	Row     int    `json:"row"`
	Message string `json:"message"`
}

const (
	importChunkSize      = 50
	maxRecordedRowErrors = 100
)

// ProcessImportMessage runs one CSV import job end to end: fetch the file
// from S3, map its rows, and submit each row through the upsert coordinator.
//
// Failures split two ways. Anything wrong with the file itself (unreadable
// CSV, unknown kind, missing columns) marks the job failed and acks the
// message; retrying cannot fix the file. Infrastructure failures return an
// error so the message takes the retry queue. Per-row rejections are not
// failures: they are counted and recorded on the job.
func ProcessImportMessage(
	ctx context.Context,
	s3Client *awss3.Client,
	conn *pgxpool.Pool,
	graphStore store.GraphStore,
	msg string,
) (err error) {
	data := new(ImportJobMsg)
	if err = json.Unmarshal([]byte(msg), data); err != nil {
		return err
	}
	jobID, err := uuid.Parse(data.JobID)
	if err != nil {
		return fmt.Errorf("invalid job id %q: %w", data.JobID, err)
	}

	q := db.New(conn)
	job, err := q.GetImportJob(ctx, jobID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			logger.Warn("[Queue] Import job not found, dropping message", "job_id", jobID)
			return nil
		}
		return err
	}
	if job.Status == db.ImportStatusDone {
		logger.Info("[Queue] Import job already done, skipping", "job_id", jobID)
		return nil
	}

	lockClient := leaselock.New(conn)
	lease, err := lockClient.Acquire(ctx, "import:"+jobID.String(), leaselock.Options{
		TTL:         10 * time.Minute,
		RenewEvery:  4 * time.Minute,
		Wait:        false,
		TokenPrefix: "csv-import/",
	})
	if err != nil {
		if errors.Is(err, leaselock.ErrBusy) {
			logger.Info("[Queue] Import job claimed by another worker, skipping", "job_id", jobID)
			return nil
		}
		return err
	}
	defer func() {
		if releaseErr := lease.Release(context.Background()); releaseErr != nil {
			logger.Warn("[Queue] Failed to release import lease", "job_id", jobID, "err", releaseErr)
		}
	}()

	failJob := func(reason string) error {
		logger.Warn("[Queue] Import job failed", "job_id", jobID, "reason", reason)
		errsJSON, marshalErr := json.Marshal([]ImportRowError{{Row: 0, Message: reason}})
		if marshalErr != nil {
			return marshalErr
		}
		return q.FailImportJob(ctx, db.FailImportJobParams{ID: jobID, Errors: errsJSON})
	}

	fileData, err := storage.GetFile(ctx, s3Client, job.ObjectKey)
	if err != nil {
		return err
	}

	table, err := importer.Parse(bytes.NewReader(*fileData))
	if err != nil {
		return failJob(fmt.Sprintf("unreadable CSV file: %v", err))
	}

	var (
		entityRows       []importer.EntityRow
		relationshipRows []importer.RelationshipRow
	)
	switch job.KindClass {
	case db.ImportClassEntity:
		entityRows, err = importer.EntityRows(table, job.TargetKind)
	case db.ImportClassRelationship:
		relationshipRows, err = importer.RelationshipRows(table, job.TargetKind)
	default:
		return failJob(fmt.Sprintf("unknown kind class %q", job.KindClass))
	}
	if err != nil {
		return failJob(err.Error())
	}

	total := len(entityRows) + len(relationshipRows)
	if err = q.StartImportJob(ctx, db.StartImportJobParams{ID: jobID, TotalRows: int32(total)}); err != nil {
		return err
	}

	coordinator, err := graph.NewCoordinator(graph.NewCoordinatorParams{Store: graphStore})
	if err != nil {
		return err
	}

	var (
		mu        sync.Mutex
		succeeded int32
		failed    int32
		rowErrors = make([]ImportRowError, 0)
	)
	recordError := func(line int, message string) {
		mu.Lock()
		defer mu.Unlock()
		failed++
		if len(rowErrors) < maxRecordedRowErrors {
			rowErrors = append(rowErrors, ImportRowError{Row: line, Message: message})
		}
	}
	recordOutcome := func(line int, out graph.Outcome, submitErr error) error {
		if submitErr != nil {
			// Store outages and cancellations abort the whole import so the
			// message can be retried; they are not row failures.
			if errors.Is(submitErr, store.ErrStoreUnavailable) ||
				errors.Is(submitErr, context.Canceled) ||
				errors.Is(submitErr, context.DeadlineExceeded) {
				return submitErr
			}
			recordError(line, submitErr.Error())
			return nil
		}
		if out.Rejected() {
			recordError(line, violationSummary(out.Violations))
			return nil
		}
		mu.Lock()
		succeeded++
		mu.Unlock()
		return nil
	}

	parallel := int(util.GetEnvNumeric("IMPORT_PARALLEL", 4))
	if parallel < 1 {
		parallel = 1
	}

	start := time.Now()
	processChunk := func(from, to int) error {
		g, groupCtx := errgroup.WithContext(lease.Context)
		g.SetLimit(parallel)
		for i := from; i < to; i++ {
			if job.KindClass == db.ImportClassEntity {
				row := entityRows[i]
				g.Go(func() error {
					out, submitErr := util.RetryWithContext(groupCtx, 3, func(ctx context.Context) (graph.Outcome, error) {
						return coordinator.SubmitEntity(ctx, job.TargetKind, row.Attrs)
					})
					return recordOutcome(row.Line, out, submitErr)
				})
			} else {
				row := relationshipRows[i]
				g.Go(func() error {
					out, submitErr := util.RetryWithContext(groupCtx, 3, func(ctx context.Context) (graph.Outcome, error) {
						return coordinator.SubmitRelationship(ctx, job.TargetKind, row.Source, row.Target, row.Attrs)
					})
					return recordOutcome(row.Line, out, submitErr)
				})
			}
		}
		if err := g.Wait(); err != nil {
			return err
		}

		mu.Lock()
		progress := db.UpdateImportJobProgressParams{
			ID:            jobID,
			SucceededRows: succeeded,
			FailedRows:    failed,
		}
		errsJSON, marshalErr := json.Marshal(rowErrors)
		mu.Unlock()
		if marshalErr != nil {
			return marshalErr
		}
		progress.Errors = errsJSON

		return q.UpdateImportJobProgress(lease.Context, progress)
	}

	if err = store.ChunkRange(total, importChunkSize, processChunk); err != nil {
		return err
	}

	mu.Lock()
	finalSucceeded, finalFailed := succeeded, failed
	errsJSON, marshalErr := json.Marshal(rowErrors)
	mu.Unlock()
	if marshalErr != nil {
		return marshalErr
	}

	if err = q.CompleteImportJob(ctx, db.CompleteImportJobParams{
		ID:            jobID,
		SucceededRows: finalSucceeded,
		FailedRows:    finalFailed,
		Errors:        errsJSON,
	}); err != nil {
		return err
	}

	duration := time.Since(start)
	if total > 0 {
		if err = timing.AddImportProcessingTime(ctx, jobID, int64(total), duration.Milliseconds(), timing.StatTypeCSVImport, conn); err != nil {
			return err
		}
	}

	logger.Info(
		"[Queue] Import job completed",
		"job_id", jobID,
		"total", total,
		"succeeded", finalSucceeded,
		"failed", finalFailed,
		"duration_ms", duration.Milliseconds(),
	)
	return nil
}

func violationSummary(violations []validate.Violation) string {
	parts := make([]string, 0, len(violations))
	for _, v := range violations {
		if v.Field != "" {
			parts = append(parts, fmt.Sprintf("%s: %s", v.Field, v.Message))
			continue
		}
		parts = append(parts, v.Message)
	}
	return strings.Join(parts, "; ")
}

// FailImportJobFromMessage marks the job referenced by a dead-lettered
// message as failed. Best effort: malformed messages are dropped.
func FailImportJobFromMessage(ctx context.Context, conn *pgxpool.Pool, msgBody []byte, reason string) {
	var data ImportJobMsg
	if err := json.Unmarshal(msgBody, &data); err != nil {
		return
	}
	jobID, err := uuid.Parse(data.JobID)
	if err != nil {
		return
	}
	errsJSON, err := json.Marshal([]ImportRowError{{Row: 0, Message: reason}})
	if err != nil {
		return
	}

	q := db.New(conn)
	if err := q.FailImportJob(ctx, db.FailImportJobParams{ID: jobID, Errors: errsJSON}); err != nil {
		logger.Warn("[Queue] Failed to mark dead-lettered import job as failed", "job_id", jobID, "err", err)
	}
}

// RecoverStaleImports requeues jobs left in the running state by a worker
// that died mid-import. Runs once at worker startup.
func RecoverStaleImports(
	ctx context.Context,
	ch *amqp091.Channel,
	conn *pgxpool.Pool,
) error {
	q := db.New(conn)

	staleJobs, err := q.GetStaleImportJobs(ctx)
	if err != nil {
		return fmt.Errorf("failed to get stale import jobs: %w", err)
	}

	if len(staleJobs) == 0 {
		logger.Debug("[Queue] No stale import jobs found")
		return nil
	}

	logger.Info("[Queue] Found stale import jobs", "count", len(staleJobs))

	for _, job := range staleJobs {
		if err := q.ResetImportJobToPending(ctx, job.ID); err != nil {
			logger.Error("[Queue] Failed to reset import job status", "job_id", job.ID, "err", err)
			continue
		}

		queueData := ImportJobMsg{
			Message: "Recovered stale import job",
			JobID:   job.ID.String(),
		}

		msgBytes, err := json.Marshal(queueData)
		if err != nil {
			logger.Error("[Queue] Failed to marshal queue message", "job_id", job.ID, "err", err)
			continue
		}

		if err := PublishFIFO(ch, ImportQueue, msgBytes); err != nil {
			logger.Error("[Queue] Failed to republish import job", "job_id", job.ID, "err", err)
			continue
		}

		logger.Info("[Queue] Recovered stale import job", "job_id", job.ID)
	}

	return nil
}
