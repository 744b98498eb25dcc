package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/workforce-api/internal/dto"
	"github.com/noah-isme/workforce-api/internal/middleware"
	"github.com/noah-isme/workforce-api/internal/models"
	"github.com/noah-isme/workforce-api/internal/service"
	appErrors "github.com/noah-isme/workforce-api/pkg/errors"
)

type availabilityServiceMock struct {
	actor     service.Actor
	query     dto.ListAvailabilityQuery
	createReq dto.CreateAvailabilityRequest
	createErr error
	deleted   string
}

func (m *availabilityServiceMock) List(ctx context.Context, actor service.Actor, query dto.ListAvailabilityQuery) ([]models.AvailabilityBlock, *models.Pagination, error) {
	m.actor = actor
	m.query = query
	return []models.AvailabilityBlock{{ID: "b-1"}}, &models.Pagination{Page: 1, PageSize: 50, TotalCount: 1}, nil
}

func (m *availabilityServiceMock) Get(ctx context.Context, actor service.Actor, id string) (*models.AvailabilityBlock, error) {
	return nil, appErrors.Clone(appErrors.ErrNotFound, "availability block not found")
}

func (m *availabilityServiceMock) Preview(ctx context.Context, actor service.Actor, req dto.AvailabilityRequest) (*dto.ConflictReport, error) {
	return &dto.ConflictReport{Strategy: models.ResolutionNone}, nil
}

func (m *availabilityServiceMock) Create(ctx context.Context, actor service.Actor, req dto.CreateAvailabilityRequest) (*dto.CreateAvailabilityResponse, error) {
	m.createReq = req
	if m.createErr != nil {
		return nil, m.createErr
	}
	return &dto.CreateAvailabilityResponse{Strategy: req.Strategy}, nil
}

func (m *availabilityServiceMock) Delete(ctx context.Context, actor service.Actor, id string) error {
	m.deleted = id
	return nil
}

func withClaims(c *gin.Context) {
	c.Set(middleware.ContextUserKey, &models.JWTClaims{UserID: "manager-1", OrganizationID: "org-1", Role: models.RoleManager})
}

func createPayload() []byte {
	return []byte(`{"subjectId":"staff-1","subjectType":"STAFF","kind":"SHIFT","status":"available","startTime":"09:00","endTime":"17:00","pattern":{"frequency":"WEEKLY","startDate":"2024-01-01","occurrences":4},"confirm":true,"strategy":"merge"}`)
}

func TestAvailabilityHandlerListBindsQuery(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mockSvc := &availabilityServiceMock{}
	handler := &AvailabilityHandler{service: mockSvc}
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request, _ = http.NewRequest(http.MethodGet, "/availability?subject_id=staff-1&status=available&status=tentative&page=2", nil)
	withClaims(c)

	handler.List(c)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "org-1", mockSvc.actor.OrganizationID)
	assert.Equal(t, "staff-1", mockSvc.query.SubjectID)
	assert.Equal(t, []string{"available", "tentative"}, mockSvc.query.Status)
	assert.Equal(t, 2, mockSvc.query.Page)
	assert.Contains(t, w.Body.String(), `"total_count":1`)
}

func TestAvailabilityHandlerListForSubjectUsesPath(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mockSvc := &availabilityServiceMock{}
	handler := &AvailabilityHandler{service: mockSvc}
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request, _ = http.NewRequest(http.MethodGet, "/subjects/staff-9/availability?subject_id=staff-1&status=busy", nil)
	c.Params = gin.Params{{Key: "subjectId", Value: "staff-9"}}
	withClaims(c)

	handler.ListForSubject(c)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "staff-9", mockSvc.query.SubjectID)
	assert.Equal(t, []string{"busy"}, mockSvc.query.Status)
}

func TestSubjectAvailabilityRouteSelfAccess(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mockSvc := &availabilityServiceMock{}
	handler := &AvailabilityHandler{service: mockSvc}
	router := gin.New()
	router.GET("/subjects/:subjectId/availability",
		func(c *gin.Context) {
			c.Set(middleware.ContextUserKey, &models.JWTClaims{UserID: "staff-1", OrganizationID: "org-1", Role: models.RoleStaff})
			c.Next()
		},
		middleware.RBAC(string(models.RoleOwner), string(models.RoleManager), middleware.SelfAccess),
		handler.ListForSubject,
	)

	own := httptest.NewRecorder()
	router.ServeHTTP(own, httptest.NewRequest(http.MethodGet, "/subjects/staff-1/availability", nil))
	assert.Equal(t, http.StatusOK, own.Code)
	assert.Equal(t, "staff-1", mockSvc.query.SubjectID)

	other := httptest.NewRecorder()
	router.ServeHTTP(other, httptest.NewRequest(http.MethodGet, "/subjects/staff-2/availability", nil))
	assert.Equal(t, http.StatusForbidden, other.Code)
}

func TestAvailabilityHandlerRequiresClaims(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := &AvailabilityHandler{service: &availabilityServiceMock{}}
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request, _ = http.NewRequest(http.MethodGet, "/availability", nil)

	handler.List(c)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAvailabilityHandlerCreate(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mockSvc := &availabilityServiceMock{}
	handler := &AvailabilityHandler{service: mockSvc}
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request, _ = http.NewRequest(http.MethodPost, "/availability", bytes.NewReader(createPayload()))
	c.Request.Header.Set("Content-Type", "application/json")
	withClaims(c)

	handler.Create(c)

	require.Equal(t, http.StatusCreated, w.Code)
	assert.True(t, mockSvc.createReq.Confirm)
	assert.Equal(t, models.ResolutionMerge, mockSvc.createReq.Strategy)
	assert.Equal(t, 4, mockSvc.createReq.Pattern.Occurrences)
	assert.Equal(t, models.BlockKindShift, mockSvc.createReq.Kind)
}

func TestAvailabilityHandlerCreateConflictCarriesReport(t *testing.T) {
	gin.SetMode(gin.TestMode)
	report := &dto.ConflictReport{Strategy: models.ResolutionOverride, TotalConflicts: 2}
	mockSvc := &availabilityServiceMock{createErr: appErrors.WithDetails(appErrors.Clone(appErrors.ErrConflict, "2 conflicting block(s) found"), report)}
	handler := &AvailabilityHandler{service: mockSvc}
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request, _ = http.NewRequest(http.MethodPost, "/availability", bytes.NewReader(createPayload()))
	c.Request.Header.Set("Content-Type", "application/json")
	withClaims(c)

	handler.Create(c)

	require.Equal(t, http.StatusConflict, w.Code)
	var body struct {
		Error struct {
			Code    string             `json:"code"`
			Details dto.ConflictReport `json:"details"`
		} `json:"error"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "CONFLICT", body.Error.Code)
	assert.Equal(t, models.ResolutionOverride, body.Error.Details.Strategy)
	assert.Equal(t, 2, body.Error.Details.TotalConflicts)
}

func TestAvailabilityHandlerPreviewInvalidBody(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := &AvailabilityHandler{service: &availabilityServiceMock{}}
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request, _ = http.NewRequest(http.MethodPost, "/availability/conflicts", bytes.NewReader([]byte(`{"subjectId":`)))
	c.Request.Header.Set("Content-Type", "application/json")
	withClaims(c)

	handler.Preview(c)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAvailabilityHandlerGetNotFound(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := &AvailabilityHandler{service: &availabilityServiceMock{}}
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request, _ = http.NewRequest(http.MethodGet, "/availability/missing", nil)
	c.Params = gin.Params{{Key: "id", Value: "missing"}}
	withClaims(c)

	handler.Get(c)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestAvailabilityHandlerDelete(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mockSvc := &availabilityServiceMock{}
	handler := &AvailabilityHandler{service: mockSvc}
	router := gin.New()
	router.Use(func(c *gin.Context) {
		withClaims(c)
		c.Next()
	})
	router.DELETE("/availability/:id", handler.Delete)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodDelete, "/availability/b-9", nil)
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "b-9", mockSvc.deleted)
}
