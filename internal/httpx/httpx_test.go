package httpx

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/MikeMC777/taller-ecom/internal/apperr"
)

type staticVerifier map[string]int64

func (v staticVerifier) Verify(token string) (int64, error) {
	if id, ok := v[token]; ok {
		return id, nil
	}
	return 0, errors.New("bad token")
}

func init() { gin.SetMode(gin.TestMode) }

func TestStatusOf(t *testing.T) {
	cases := map[error]int{
		apperr.NotFound("Customer", 1):                http.StatusNotFound,
		apperr.TypeMismatch("repair", "sale"):         http.StatusBadRequest,
		apperr.InvalidPatch("x"):                      http.StatusBadRequest,
		apperr.Invalid("x", nil):                      http.StatusBadRequest,
		apperr.Forbidden():                            http.StatusForbidden,
		apperr.Unauthenticated("x"):                   http.StatusUnauthorized,
		apperr.Conflict("x", nil):                     http.StatusConflict,
		apperr.IntegrityViolation("Repair", 1, "svc"): http.StatusInternalServerError,
		apperr.StoreFailure(errors.New("boom")):       http.StatusInternalServerError,
		apperr.StoreFailure(context.DeadlineExceeded): http.StatusGatewayTimeout,
	}
	for err, want := range cases {
		assert.Equal(t, want, StatusOf(err), err.Error())
	}
}

func TestWriteErrorHidesInternalCause(t *testing.T) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	WriteError(c, apperr.StoreFailure(errors.New("pq: relation does not exist")))

	require.Equal(t, http.StatusInternalServerError, w.Code)
	var body HTTPError
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "something went wrong", body.Error)
}

func TestAuth(t *testing.T) {
	r := gin.New()
	r.Use(RequestID(), Auth(staticVerifier{"good": 7}))
	r.GET("/me", func(c *gin.Context) {
		id, _ := Principal(c)
		c.JSON(http.StatusOK, gin.H{"id": id})
	})

	cases := []struct {
		header string
		want   int
	}{
		{"", http.StatusUnauthorized},
		{"Token good", http.StatusUnauthorized},
		{"Bearer bad", http.StatusUnauthorized},
		{"Bearer good", http.StatusOK},
		{"bearer good", http.StatusOK},
	}
	for _, tc := range cases {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/me", nil)
		if tc.header != "" {
			req.Header.Set("Authorization", tc.header)
		}
		r.ServeHTTP(w, req)
		assert.Equal(t, tc.want, w.Code, tc.header)
		assert.NotEmpty(t, w.Header().Get("X-Request-ID"))
	}
}

func TestLoggerAndMetrics(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	reg := prometheus.NewRegistry()
	m := NewMetrics(reg)

	r := gin.New()
	r.Use(RequestID(), Logger(zap.New(core)), m.Handler(), Timeout(time.Second))
	r.GET("/items/:id", func(c *gin.Context) {
		_, ok := c.Request.Context().Deadline()
		assert.True(t, ok)
		c.Status(http.StatusNoContent)
	})

	req := httptest.NewRequest(http.MethodGet, "/items/3", nil)
	req.Header.Set("X-Request-ID", "abc")
	r.ServeHTTP(httptest.NewRecorder(), req)

	require.Equal(t, 1, logs.Len())
	entry := logs.All()[0]
	assert.Equal(t, "abc", entry.ContextMap()["rid"])
	assert.Equal(t, "/items/3", entry.ContextMap()["path"])
	assert.Equal(t, 1.0, testutil.ToFloat64(m.requests.WithLabelValues("GET", "/items/:id", "204")))
}
