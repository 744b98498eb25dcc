package handler

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/workforce-api/internal/dto"
	"github.com/noah-isme/workforce-api/internal/service"
	appErrors "github.com/noah-isme/workforce-api/pkg/errors"
	"github.com/noah-isme/workforce-api/pkg/response"
)

type recurrenceService interface {
	Validate(ctx context.Context, req dto.RecurrencePatternRequest) dto.ValidatePatternResponse
	Expand(ctx context.Context, req dto.RecurrencePatternRequest) (*dto.ExpandPatternResponse, error)
	ToggleException(ctx context.Context, req dto.ToggleExceptionRequest) (*dto.ToggleExceptionResponse, error)
	Export(ctx context.Context, req dto.ExportRecurrenceRequest, format dto.ExportFormat) (*dto.ExportResult, error)
	ClearCache(ctx context.Context) int
}

// RecurrenceHandler exposes recurrence pattern endpoints.
type RecurrenceHandler struct {
	service recurrenceService
}

// NewRecurrenceHandler constructs the handler.
func NewRecurrenceHandler(svc *service.RecurrenceService) *RecurrenceHandler {
	return &RecurrenceHandler{service: svc}
}

// Validate godoc
// @Summary Validate a recurrence pattern
// @Description Always answers 200; problems are listed when the pattern cannot be expanded.
// @Tags Recurrence
// @Accept json
// @Produce json
// @Param payload body dto.RecurrencePatternRequest true "Recurrence pattern"
// @Success 200 {object} response.Envelope
// @Router /recurrence/validate [post]
func (h *RecurrenceHandler) Validate(c *gin.Context) {
	var req dto.RecurrencePatternRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid pattern payload"))
		return
	}
	response.JSON(c, http.StatusOK, h.service.Validate(c.Request.Context(), req), nil)
}

// Expand godoc
// @Summary Expand a recurrence pattern into dated occurrences
// @Tags Recurrence
// @Accept json
// @Produce json
// @Param payload body dto.RecurrencePatternRequest true "Recurrence pattern"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /recurrence/expand [post]
func (h *RecurrenceHandler) Expand(c *gin.Context) {
	var req dto.RecurrencePatternRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid pattern payload"))
		return
	}
	result, err := h.service.Expand(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result, nil, map[string]interface{}{"count": len(result.Occurrences)})
}

// ToggleException godoc
// @Summary Add or remove an exception date
// @Tags Recurrence
// @Accept json
// @Produce json
// @Param payload body dto.ToggleExceptionRequest true "Exception toggle"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /recurrence/exceptions [post]
func (h *RecurrenceHandler) ToggleException(c *gin.Context) {
	var req dto.ToggleExceptionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid exception payload"))
		return
	}
	result, err := h.service.ToggleException(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result, nil)
}

// Export godoc
// @Summary Export a roster sheet for a pattern
// @Tags Recurrence
// @Accept json
// @Produce text/csv
// @Produce application/pdf
// @Param format query string false "csv or pdf" default(csv)
// @Param payload body dto.ExportRecurrenceRequest true "Export payload"
// @Success 200 {file} file
// @Failure 400 {object} response.Envelope
// @Router /recurrence/export [post]
func (h *RecurrenceHandler) Export(c *gin.Context) {
	var req dto.ExportRecurrenceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid export payload"))
		return
	}
	format := dto.ExportFormat(strings.ToLower(c.DefaultQuery("format", string(dto.ExportFormatCSV))))
	result, err := h.service.Export(c.Request.Context(), req, format)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.File(c, result.Filename, result.ContentType, result.Body)
}

// ClearCache godoc
// @Summary Clear the occurrence cache
// @Tags Recurrence
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Envelope
// @Router /recurrence/cache [delete]
func (h *RecurrenceHandler) ClearCache(c *gin.Context) {
	dropped := h.service.ClearCache(c.Request.Context())
	response.JSON(c, http.StatusOK, gin.H{"cleared": dropped}, nil)
}
