package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/workforce-api/internal/models"
	appErrors "github.com/noah-isme/workforce-api/pkg/errors"
)

type tokenValidatorStub struct {
	seen string
}

func (s *tokenValidatorStub) ValidateToken(token string) (*models.JWTClaims, error) {
	s.seen = token
	if token != "good" {
		return nil, appErrors.Clone(appErrors.ErrUnauthorized, "invalid token")
	}
	return &models.JWTClaims{UserID: "u-1", OrganizationID: "org-1", Role: models.RoleStaff}, nil
}

func protectedRouter(mw gin.HandlerFunc) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.GET("/me", mw, func(c *gin.Context) {
		value, ok := c.Get(ContextUserKey)
		if !ok {
			c.String(http.StatusOK, "anonymous")
			return
		}
		c.String(http.StatusOK, value.(*models.JWTClaims).UserID)
	})
	return router
}

func serve(router *gin.Engine, authorization string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, "/me", nil)
	if authorization != "" {
		req.Header.Set("Authorization", authorization)
	}
	router.ServeHTTP(w, req)
	return w
}

func TestJWTMiddleware(t *testing.T) {
	validator := &tokenValidatorStub{}
	router := protectedRouter(JWT(validator))

	w := serve(router, "Bearer good")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "u-1", w.Body.String())
	assert.Equal(t, "good", validator.seen)

	assert.Equal(t, http.StatusUnauthorized, serve(router, "").Code)
	assert.Equal(t, http.StatusUnauthorized, serve(router, "Basic abc").Code)
	assert.Equal(t, http.StatusUnauthorized, serve(router, "Bearer ").Code)
	assert.Equal(t, http.StatusUnauthorized, serve(router, "Bearer bad").Code)
}

func TestOptionalJWTMiddleware(t *testing.T) {
	router := protectedRouter(OptionalJWT(&tokenValidatorStub{}))

	assert.Equal(t, "u-1", serve(router, "bearer good").Body.String())
	assert.Equal(t, "anonymous", serve(router, "Bearer bad").Body.String())
	assert.Equal(t, "anonymous", serve(router, "").Body.String())
}
