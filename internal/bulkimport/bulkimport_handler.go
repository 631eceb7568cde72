package bulkimport

import (
	"net/http"
	"path/filepath"
	"strings"

	bulkimporterrors "aisg-audit/internal/bulkimport/errors"
	"aisg-audit/internal/shared/apperror"
	"aisg-audit/internal/shared/response"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const maxUploadBytes = 10 << 20

type Handler struct {
	service Service
	logger  *zap.Logger
}

func NewHandler(service Service, logger ...*zap.Logger) *Handler {
	l := zap.L().Named("bulkimport.handler")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("bulkimport.handler")
	}
	return &Handler{service: service, logger: l}
}

func (h *Handler) writeServiceError(c *gin.Context, err error) {
	httpErr := apperror.ToHTTP(err)
	h.logger.Warn("import request failed",
		zap.String("path", c.FullPath()),
		zap.Int("status", httpErr.Status),
		zap.String("code", httpErr.Code),
		zap.String("message", httpErr.Message),
	)
	response.Error(c, httpErr.Status, httpErr.Code, httpErr.Message, httpErr.Details)
}

func (h *Handler) ImportEmployees(c *gin.Context) {
	companyID := c.GetString("company_id")

	var req ImportRequest
	if err := c.ShouldBind(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Input tidak valid", err.Error())
		return
	}

	fh, err := c.FormFile("file")
	if err != nil || !strings.EqualFold(filepath.Ext(fh.Filename), ".xlsx") {
		h.writeServiceError(c, bulkimporterrors.ErrFileRequired)
		return
	}
	if fh.Size > maxUploadBytes {
		response.Error(c, http.StatusRequestEntityTooLarge, "VALIDATION_ERROR", "File terlalu besar (maksimal 10MB)", nil)
		return
	}

	f, err := fh.Open()
	if err != nil {
		h.writeServiceError(c, bulkimporterrors.ErrInvalidWorkbook)
		return
	}
	defer f.Close()

	h.logger.Info("http import employees",
		zap.String("company_id", companyID),
		zap.String("file", fh.Filename),
		zap.Int("year", req.Year),
		zap.Int("month", req.Month),
		zap.Bool("dry_run", req.DryRun),
		zap.Bool("partial", req.Partial),
	)

	resp, err := h.service.Import(c.Request.Context(), companyID, req, f)
	if err != nil {
		h.writeServiceError(c, err)
		return
	}

	status := http.StatusOK
	if resp.Committed {
		status = http.StatusCreated
	}
	response.Success(c, status, resp, nil)
}
