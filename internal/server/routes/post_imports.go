package routes

import (
	"encoding/json"
	"net/http"

	"github.com/ecograph/backend/internal/db"
	"github.com/ecograph/backend/internal/queue"
	"github.com/ecograph/backend/internal/server/middleware"
	"github.com/ecograph/backend/internal/storage"
	"github.com/ecograph/backend/pkg/logger"
	"github.com/ecograph/backend/pkg/schema"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

// CreateImportHandler accepts a CSV upload (multipart/form-data), stores it
// in S3, records an import job, and queues it for the worker. The response
// is 202: the rows are processed asynchronously and progress is polled via
// GET /imports/:id.
func CreateImportHandler(c echo.Context) error {
	type createImportBody struct {
		KindClass  string `form:"kind_class" validate:"required"`
		TargetKind string `form:"target_kind" validate:"required"`
	}

	type createImportResponse struct {
		Message string        `json:"message"`
		Job     *db.ImportJob `json:"job,omitempty"`
	}

	data := new(createImportBody)
	if err := c.Bind(data); err != nil {
		return c.JSON(http.StatusBadRequest, createImportResponse{
			Message: "Invalid request body",
		})
	}
	if err := c.Validate(data); err != nil {
		return c.JSON(http.StatusBadRequest, createImportResponse{
			Message: "Invalid request body",
		})
	}

	switch data.KindClass {
	case db.ImportClassEntity:
		if _, err := schema.LookupEntity(data.TargetKind); err != nil {
			return respondStoreError(c, err)
		}
	case db.ImportClassRelationship:
		if _, err := schema.LookupRelationship(data.TargetKind); err != nil {
			return respondStoreError(c, err)
		}
	default:
		return c.JSON(http.StatusBadRequest, createImportResponse{
			Message: "Kind class must be 'entity' or 'relationship'",
		})
	}

	form, err := c.MultipartForm()
	if err != nil {
		return c.JSON(http.StatusBadRequest, createImportResponse{
			Message: "Invalid request body",
		})
	}
	uploads := form.File["file"]
	if len(uploads) != 1 {
		return c.JSON(http.StatusBadRequest, createImportResponse{
			Message: "Exactly one CSV file is required",
		})
	}
	upload := uploads[0]

	user := c.(*middleware.AppContext).User
	if user == nil {
		return c.JSON(http.StatusUnauthorized, createImportResponse{
			Message: "Unauthorized",
		})
	}

	ctx := c.Request().Context()
	s3Client := c.(*middleware.AppContext).App.S3

	src, err := upload.Open()
	if err != nil {
		return c.JSON(http.StatusBadRequest, createImportResponse{
			Message: "Could not open file",
		})
	}
	defer src.Close()

	jobID := uuid.New()
	key, err := storage.PutFile(ctx, s3Client, "imports", upload.Filename, jobID.String(), src)
	if err != nil {
		logger.Error("Failed to upload file", "err", err)
		return c.JSON(http.StatusInternalServerError, createImportResponse{
			Message: "Internal server error",
		})
	}

	conn := c.(*middleware.AppContext).App.DBConn
	q := db.New(conn)
	job, err := q.CreateImportJob(ctx, db.CreateImportJobParams{
		ID:         jobID,
		KindClass:  data.KindClass,
		TargetKind: data.TargetKind,
		ObjectKey:  key,
		FileName:   upload.Filename,
	})
	if err != nil {
		logger.Error("Failed to create import job", "err", err)
		if delErr := storage.DeleteFile(ctx, s3Client, key); delErr != nil {
			logger.Error("Failed to delete orphaned upload", "err", delErr)
		}
		return c.JSON(http.StatusInternalServerError, createImportResponse{
			Message: "Internal server error",
		})
	}

	msg, _ := json.Marshal(queue.ImportJobMsg{
		Message: "New import job",
		JobID:   jobID.String(),
	})
	ch := c.(*middleware.AppContext).App.Queue
	if err := queue.PublishFIFO(ch, queue.ImportQueue, msg); err != nil {
		logger.Error("Failed to publish to import_queue", "err", err)
	}

	return c.JSON(http.StatusAccepted, createImportResponse{
		Message: "Import job queued successfully",
		Job:     &job,
	})
}
