package routes

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/ecograph/backend/internal/db"
	"github.com/ecograph/backend/internal/server/middleware"
	sutil "github.com/ecograph/backend/internal/server/util"
	"github.com/ecograph/backend/internal/storage"
	"github.com/ecograph/backend/internal/timing"
	"github.com/ecograph/backend/pkg/importer"
	"github.com/ecograph/backend/pkg/logger"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/labstack/echo/v4"
)

// GetImportsHandler lists the most recent import jobs
func GetImportsHandler(c echo.Context) error {
	type listImportsParams struct {
		Limit int `query:"limit"`
	}

	params := new(listImportsParams)
	if err := c.Bind(params); err != nil {
		return c.JSON(http.StatusBadRequest, messageResponse{Message: "Invalid query parameters"})
	}

	user := c.(*middleware.AppContext).User
	if user == nil {
		return c.JSON(http.StatusUnauthorized, map[string]string{"error": "Unauthorized"})
	}

	limit, _ := sutil.ClampPaging(params.Limit, 0)

	ctx := c.Request().Context()
	conn := c.(*middleware.AppContext).App.DBConn
	q := db.New(conn)

	jobs, err := q.ListImportJobs(ctx, int32(limit))
	if err != nil {
		logger.Error("Failed to list import jobs", "err", err)
		return c.JSON(http.StatusInternalServerError, messageResponse{
			Message: "Internal server error",
		})
	}

	type listImportsResponse struct {
		Message string         `json:"message"`
		Jobs    []db.ImportJob `json:"jobs"`
	}

	return c.JSON(http.StatusOK, listImportsResponse{
		Message: "Import jobs fetched successfully",
		Jobs:    jobs,
	})
}

// GetImportHandler returns one import job with its progress counters and row
// errors. While the job is still running the response carries a processing
// time estimate based on past imports, and a presigned link to the uploaded
// file is included when available.
func GetImportHandler(c echo.Context) error {
	type getImportResponse struct {
		Message              string        `json:"message"`
		Job                  *db.ImportJob `json:"job,omitempty"`
		EstimatedRemainingMs *int64        `json:"estimated_remaining_ms,omitempty"`
		DownloadLink         string        `json:"download_link,omitempty"`
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, getImportResponse{
			Message: "Invalid import job id",
		})
	}

	user := c.(*middleware.AppContext).User
	if user == nil {
		return c.JSON(http.StatusUnauthorized, getImportResponse{
			Message: "Unauthorized",
		})
	}

	ctx := c.Request().Context()
	conn := c.(*middleware.AppContext).App.DBConn
	q := db.New(conn)

	job, err := q.GetImportJob(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return c.JSON(http.StatusNotFound, getImportResponse{
				Message: "Import job not found",
			})
		}
		logger.Error("Failed to get import job", "err", err)
		return c.JSON(http.StatusInternalServerError, getImportResponse{
			Message: "Internal server error",
		})
	}

	resp := getImportResponse{
		Message: "Import job fetched successfully",
		Job:     &job,
	}

	if sutil.ImportActive(job.Status) && job.TotalRows > 0 {
		remaining := sutil.RemainingRows(job.TotalRows, job.SucceededRows, job.FailedRows)
		estimate, err := timing.PredictImportProcessingTime(ctx, remaining, timing.StatTypeCSVImport, conn)
		if err != nil {
			logger.Error("Failed to predict processing time", "err", err)
		} else {
			resp.EstimatedRemainingMs = &estimate
		}
	}

	s3Client := c.(*middleware.AppContext).App.S3
	link, err := storage.GenerateDownloadLink(ctx, s3Client, job.ObjectKey)
	if err != nil {
		logger.Error("Failed to generate download link", "err", err)
	} else {
		resp.DownloadLink = link
	}

	return c.JSON(http.StatusOK, resp)
}

// GetImportTemplateHandler returns the header-only CSV template for one kind,
// so operators can fill in a file with the right columns
func GetImportTemplateHandler(c echo.Context) error {
	user := c.(*middleware.AppContext).User
	if user == nil {
		return c.JSON(http.StatusUnauthorized, map[string]string{"error": "Unauthorized"})
	}

	class := c.Param("class")
	kind := c.Param("kind")

	var (
		cols []string
		err  error
	)
	switch class {
	case db.ImportClassEntity:
		cols, err = importer.EntityTemplate(kind)
	case db.ImportClassRelationship:
		cols, err = importer.RelationshipTemplate(kind)
	default:
		return c.JSON(http.StatusBadRequest, messageResponse{
			Message: "Kind class must be 'entity' or 'relationship'",
		})
	}
	if err != nil {
		return respondStoreError(c, err)
	}

	filename := fmt.Sprintf("%s_%s_template.csv", class, strings.ToLower(kind))
	c.Response().Header().Set(echo.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%q", filename))
	return c.Blob(http.StatusOK, "text/csv", []byte(strings.Join(cols, ",")+"\n"))
}
