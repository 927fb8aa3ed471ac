package handler

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"leasing-import-backend/internal/models"
	"leasing-import-backend/internal/services/billing"
	"leasing-import-backend/internal/services/importer"
	service "leasing-import-backend/internal/services/reconciliation"
)

const multipartMemory = 8 << 20

// ImportService is the part of service.ImportService the handler drives.
type ImportService interface {
	Prepare(ctx context.Context, companyID uuid.UUID, filename string, src io.Reader) (*service.Plan, error)
	Submit(ctx context.Context, plan *service.Plan, opts service.ExecuteOptions) (*models.ImportBatch, error)
	Batch(ctx context.Context, id uuid.UUID) (*models.ImportBatch, error)
	BatchAudit(ctx context.Context, id uuid.UUID) ([]models.ImportAuditLog, error)
}

type ImportHandler struct {
	service       ImportService
	log           *logrus.Logger
	maxUploadSize int64
}

func NewImportHandler(s ImportService, log *logrus.Logger, maxUploadSize int64) *ImportHandler {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &ImportHandler{service: s, log: log, maxUploadSize: maxUploadSize}
}

// Preview runs everything up to persistence and returns the plan.
func (h *ImportHandler) Preview(c *gin.Context) {
	if !h.parseForm(c) {
		return
	}
	plan, ok := h.prepare(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"blocked": plan.Blocked(),
		"plan":    plan,
	})
}

// Upload prepares the file and runs the import in the background.
func (h *ImportHandler) Upload(c *gin.Context) {
	if !h.parseForm(c) {
		return
	}
	opts, err := executeOptions(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	plan, ok := h.prepare(c)
	if !ok {
		return
	}

	if plan.Blocked() && !opts.Force {
		c.JSON(http.StatusUnprocessableEntity, gin.H{
			"error":       service.ErrValidationFailed.Error(),
			"issues":      plan.Validation.Issues,
			"issue_count": plan.Validation.IssueCount,
		})
		return
	}

	batch, err := h.service.Submit(c.Request.Context(), plan, opts)
	if err != nil {
		h.writeError(c, err)
		return
	}

	h.log.WithFields(logrus.Fields{
		"batch_id":   batch.ID,
		"company_id": plan.CompanyID,
		"contracts":  len(plan.Contracts),
	}).Info("import batch submitted")

	c.JSON(http.StatusAccepted, gin.H{
		"batch_id": batch.ID.String(),
		"status":   batch.Status,
	})
}

func (h *ImportHandler) GetBatch(c *gin.Context) {
	id, err := uuid.Parse(c.Param("batchId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid batch ID"})
		return
	}

	batch, err := h.service.Batch(c.Request.Context(), id)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, batch)
}

// GetBatchAudit lists what happened to each contract of a batch.
func (h *ImportHandler) GetBatchAudit(c *gin.Context) {
	id, err := uuid.Parse(c.Param("batchId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid batch ID"})
		return
	}

	logs, err := h.service.BatchAudit(c.Request.Context(), id)
	if err != nil {
		h.writeError(c, err)
		return
	}
	if logs == nil {
		logs = []models.ImportAuditLog{}
	}
	c.JSON(http.StatusOK, gin.H{"batch_id": id, "entries": logs})
}

// parseForm enforces the upload size limit and parses the multipart body.
func (h *ImportHandler) parseForm(c *gin.Context) bool {
	if h.maxUploadSize > 0 {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxUploadSize)
	}
	if err := c.Request.ParseMultipartForm(multipartMemory); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": "file too large"})
		} else {
			c.JSON(http.StatusBadRequest, gin.H{"error": "multipart form required"})
		}
		return false
	}
	return true
}

func (h *ImportHandler) prepare(c *gin.Context) (*service.Plan, bool) {
	companyID, err := uuid.Parse(c.PostForm("company_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid company ID"})
		return nil, false
	}

	file, header, err := c.Request.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "file required"})
		return nil, false
	}
	defer file.Close()

	plan, err := h.service.Prepare(c.Request.Context(), companyID, header.Filename, file)
	if err != nil {
		h.writeError(c, err)
		return nil, false
	}
	return plan, true
}

func executeOptions(c *gin.Context) (service.ExecuteOptions, error) {
	opts := service.ExecuteOptions{Year: time.Now().Year()}

	if v := c.PostForm("year"); v != "" {
		year, err := strconv.Atoi(v)
		if err != nil || year < 1900 || year > 2200 {
			return opts, errors.New("invalid year")
		}
		opts.Year = year
	}

	var err error
	if opts.UpdateMode, err = formBool(c, "update_mode"); err != nil {
		return opts, err
	}
	if opts.Force, err = formBool(c, "force"); err != nil {
		return opts, err
	}
	return opts, nil
}

func formBool(c *gin.Context, key string) (bool, error) {
	v := c.PostForm(key)
	if v == "" {
		return false, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, errors.New("invalid " + key)
	}
	return b, nil
}

func (h *ImportHandler) writeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, importer.ErrEmptyFile), errors.Is(err, importer.ErrMissingColumn):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, billing.ErrNoBillingEntity):
		c.JSON(http.StatusPreconditionFailed, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrValidationFailed):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrBatchNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "batch not found"})
	default:
		h.log.WithError(err).Error("import request failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}
