package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/workforce-api/internal/dto"
	"github.com/noah-isme/workforce-api/internal/models"
	"github.com/noah-isme/workforce-api/internal/service"
	appErrors "github.com/noah-isme/workforce-api/pkg/errors"
	"github.com/noah-isme/workforce-api/pkg/response"
)

type availabilityService interface {
	List(ctx context.Context, actor service.Actor, query dto.ListAvailabilityQuery) ([]models.AvailabilityBlock, *models.Pagination, error)
	Get(ctx context.Context, actor service.Actor, id string) (*models.AvailabilityBlock, error)
	Preview(ctx context.Context, actor service.Actor, req dto.AvailabilityRequest) (*dto.ConflictReport, error)
	Create(ctx context.Context, actor service.Actor, req dto.CreateAvailabilityRequest) (*dto.CreateAvailabilityResponse, error)
	Delete(ctx context.Context, actor service.Actor, id string) error
}

// AvailabilityHandler exposes availability, shift and booking blocks.
type AvailabilityHandler struct {
	service availabilityService
}

// NewAvailabilityHandler constructs the handler.
func NewAvailabilityHandler(svc *service.AvailabilityService) *AvailabilityHandler {
	return &AvailabilityHandler{service: svc}
}

// List godoc
// @Summary List availability blocks
// @Tags Availability
// @Produce json
// @Security BearerAuth
// @Param subject_id query string false "Subject ID"
// @Param status query []string false "Statuses" collectionFormat(multi)
// @Param from query string false "Range start (YYYY-MM-DD or RFC3339)"
// @Param to query string false "Range end (YYYY-MM-DD or RFC3339)"
// @Param page query int false "Page"
// @Param page_size query int false "Page size"
// @Success 200 {object} response.Envelope
// @Router /availability [get]
func (h *AvailabilityHandler) List(c *gin.Context) {
	actor, err := actorFromContext(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	var query dto.ListAvailabilityQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid query parameters"))
		return
	}
	blocks, pagination, err := h.service.List(c.Request.Context(), actor, query)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, blocks, pagination)
}

// ListForSubject godoc
// @Summary List one subject's availability blocks
// @Description Owners and managers may read any subject; other callers only their own calendar.
// @Tags Availability
// @Produce json
// @Security BearerAuth
// @Param subjectId path string true "Subject ID"
// @Param status query []string false "Status filter"
// @Param from query string false "Window start"
// @Param to query string false "Window end"
// @Param page query int false "Page"
// @Param page_size query int false "Page size"
// @Success 200 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Router /subjects/{subjectId}/availability [get]
func (h *AvailabilityHandler) ListForSubject(c *gin.Context) {
	actor, err := actorFromContext(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	var query dto.ListAvailabilityQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid query parameters"))
		return
	}
	query.SubjectID = c.Param("subjectId")
	blocks, pagination, err := h.service.List(c.Request.Context(), actor, query)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, blocks, pagination)
}

// Get godoc
// @Summary Get an availability block
// @Tags Availability
// @Produce json
// @Security BearerAuth
// @Param id path string true "Block ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /availability/{id} [get]
func (h *AvailabilityHandler) Get(c *gin.Context) {
	actor, err := actorFromContext(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	block, err := h.service.Get(c.Request.Context(), actor, c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, block, nil)
}

// Preview godoc
// @Summary Preview conflicts for a proposed block
// @Description Classifies every generated occurrence against existing blocks and recommends a strategy. Nothing is written.
// @Tags Availability
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param payload body dto.AvailabilityRequest true "Proposed block"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /availability/conflicts [post]
func (h *AvailabilityHandler) Preview(c *gin.Context) {
	actor, err := actorFromContext(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	var req dto.AvailabilityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid availability payload"))
		return
	}
	report, err := h.service.Preview(c.Request.Context(), actor, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, report, nil)
}

// Create godoc
// @Summary Create a single or recurring block
// @Description When conflicts exist the request must carry confirm=true and the recommended strategy, otherwise 409 is returned with the conflict report in error.details.
// @Tags Availability
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param payload body dto.CreateAvailabilityRequest true "Block to create"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /availability [post]
func (h *AvailabilityHandler) Create(c *gin.Context) {
	actor, err := actorFromContext(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	var req dto.CreateAvailabilityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid availability payload"))
		return
	}
	result, err := h.service.Create(c.Request.Context(), actor, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, result)
}

// Delete godoc
// @Summary Delete an availability block
// @Tags Availability
// @Security BearerAuth
// @Param id path string true "Block ID"
// @Success 204
// @Failure 404 {object} response.Envelope
// @Router /availability/{id} [delete]
func (h *AvailabilityHandler) Delete(c *gin.Context) {
	actor, err := actorFromContext(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	if err := h.service.Delete(c.Request.Context(), actor, c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
