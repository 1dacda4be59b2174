package api

import (
	"errors"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"quizhub/internal/jobs"
	"quizhub/internal/middleware"
	"quizhub/internal/models"
)

// ExportHandler covers CSV export submission, polling and download.
type ExportHandler struct {
	queue  *jobs.Queue
	dir    string
	logger *zap.Logger
}

func NewExportHandler(queue *jobs.Queue, dir string, logger *zap.Logger) *ExportHandler {
	return &ExportHandler{queue: queue, dir: dir, logger: logger}
}

// SubmitUserExport starts an export of the caller's own scores.
func (h *ExportHandler) SubmitUserExport(c echo.Context) error {
	args := jobs.UserExportArgs{UserID: middleware.UserID(c)}
	handle, err := h.queue.Submit(c.Request().Context(), jobs.KindUserExport, args)
	if err != nil {
		h.logger.Error("export submit failed", zap.Error(err))
		return errorJSON(c, http.StatusServiceUnavailable, "Export could not be started")
	}
	return c.JSON(http.StatusAccepted, map[string]string{
		"task_id": handle,
		"message": "CSV export started",
	})
}

// SubmitAllExport starts an export of every user's scores. Admin only.
func (h *ExportHandler) SubmitAllExport(c echo.Context) error {
	handle, err := h.queue.Submit(c.Request().Context(), jobs.KindAllExport, nil)
	if err != nil {
		h.logger.Error("export submit failed", zap.Error(err))
		return errorJSON(c, http.StatusServiceUnavailable, "Export could not be started")
	}
	return c.JSON(http.StatusAccepted, map[string]string{
		"task_id": handle,
		"message": "CSV export started",
	})
}

// Status polls the job behind a handle. The payload shape depends on the
// state: SUCCESS carries the artifact filename and a download URL, FAILURE
// carries the error, anything else a progress message.
func (h *ExportHandler) Status(c echo.Context) error {
	handle := c.Param("task_id")
	job, err := h.queue.Status(c.Request().Context(), handle)
	if err != nil {
		if errors.Is(err, jobs.ErrUnknownJob) {
			return notFound(c, "Task")
		}
		h.logger.Error("status poll failed", zap.Error(err))
		return errorJSON(c, http.StatusInternalServerError, "Failed to load task status")
	}

	payload := map[string]interface{}{
		"task_id": job.ID,
		"state":   string(job.State),
	}
	switch job.State {
	case jobs.StateSuccess:
		if strings.HasSuffix(job.Result, ".csv") {
			payload["filename"] = job.Result
			payload["download_url"] = "/api/export/download/" + job.Result
		} else {
			payload["message"] = job.Result
		}
	case jobs.StateFailure:
		payload["error"] = job.Error
	default:
		payload["message"] = "Task is " + strings.ToLower(string(job.State))
	}
	return c.JSON(http.StatusOK, payload)
}

// Download streams a finished artifact as an attachment. Customers can only
// fetch exports of their own scores; admins can fetch anything.
func (h *ExportHandler) Download(c echo.Context) error {
	filename := c.Param("filename")
	if filename != filepath.Base(filename) || strings.Contains(filename, "..") {
		return notFound(c, "File")
	}

	if middleware.Role(c) != models.RoleAdmin {
		if jobs.ExportOwnerID(filename) != middleware.UserID(c) {
			return notFound(c, "File")
		}
	}

	path := filepath.Join(h.dir, filename)
	if _, err := os.Stat(path); err != nil {
		return notFound(c, "File")
	}
	return c.Attachment(path, filename)
}
