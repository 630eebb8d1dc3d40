package health

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/baldhadhaval08/pantry-wizard/internal/pkg/common"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func serveReady(t *testing.T, db Pinger) *httptest.ResponseRecorder {
	t.Helper()
	gin.SetMode(gin.TestMode)
	r := gin.New()
	h := NewHandler("test", db, nil)
	r.GET("/ready", h.ReadinessCheck)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ready", nil))
	return w
}

func TestReadinessCheck(t *testing.T) {
	w := serveReady(t, func(context.Context) error { return nil })
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "ready")
}

func TestReadinessCheckDatabaseDown(t *testing.T) {
	w := serveReady(t, func(context.Context) error { return errors.New("dial tcp: connection refused") })
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)

	var body common.ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, common.ErrCodeServiceUnavailable, body.Code)
	assert.NotContains(t, w.Body.String(), "connection refused")
}
