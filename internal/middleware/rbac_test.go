package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"github.com/noah-isme/workforce-api/internal/models"
)

func rbacRouter(claims *models.JWTClaims, allowed ...string) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(func(c *gin.Context) {
		if claims != nil {
			c.Set(ContextUserKey, claims)
		}
		c.Next()
	})
	router.POST("/subjects/:subjectId/availability", RBAC(allowed...), func(c *gin.Context) {
		c.Status(http.StatusNoContent)
	})
	return router
}

func TestRBAC(t *testing.T) {
	allowed := []string{string(models.RoleOwner), string(models.RoleManager), SelfAccess}
	cases := []struct {
		name   string
		claims *models.JWTClaims
		path   string
		status int
	}{
		{"no claims", nil, "/subjects/staff-1/availability", http.StatusUnauthorized},
		{"manager", &models.JWTClaims{UserID: "m-1", Role: models.RoleManager}, "/subjects/staff-1/availability", http.StatusNoContent},
		{"staff self", &models.JWTClaims{UserID: "staff-1", Role: models.RoleStaff}, "/subjects/staff-1/availability", http.StatusNoContent},
		{"staff other", &models.JWTClaims{UserID: "staff-2", Role: models.RoleStaff}, "/subjects/staff-1/availability", http.StatusForbidden},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			router := rbacRouter(tc.claims, allowed...)
			w := httptest.NewRecorder()
			req, _ := http.NewRequest(http.MethodPost, tc.path, nil)
			router.ServeHTTP(w, req)
			assert.Equal(t, tc.status, w.Code)
		})
	}
}

func TestRequireRolesOwnerOnly(t *testing.T) {
	router := rbacRouter(&models.JWTClaims{UserID: "m-1", Role: models.RoleManager}, string(models.RoleOwner))
	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodPost, "/subjects/m-1/availability", nil)
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusForbidden, w.Code)
}
