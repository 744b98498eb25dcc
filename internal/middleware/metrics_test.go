package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

type httpObserverStub struct {
	paths    []string
	statuses []int
}

func (s *httpObserverStub) ObserveHTTPRequest(method, path string, status int, duration time.Duration) {
	s.paths = append(s.paths, method+" "+path)
	s.statuses = append(s.statuses, status)
}

func TestMetricsUsesRouteTemplate(t *testing.T) {
	gin.SetMode(gin.TestMode)
	observer := &httpObserverStub{}
	router := gin.New()
	router.Use(Metrics(observer))
	router.GET("/availability/:id", func(c *gin.Context) { c.Status(http.StatusOK) })

	for _, target := range []string{"/availability/b-1", "/nowhere"} {
		w := httptest.NewRecorder()
		req, _ := http.NewRequest(http.MethodGet, target, nil)
		router.ServeHTTP(w, req)
	}

	assert.Equal(t, []string{"GET /availability/:id", "GET unmatched"}, observer.paths)
	assert.Equal(t, []int{http.StatusOK, http.StatusNotFound}, observer.statuses)
}
