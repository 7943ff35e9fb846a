package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCounters(t *testing.T) {
	m := New()

	m.RecordLogin(ResultSuccess)
	m.RecordLogin(ResultInvalidCredentials)
	m.RecordLogin(ResultInvalidCredentials)
	m.RecordRegister(ResultConflict)
	m.RecordAuthorize(ResultExpired)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.logins.WithLabelValues(ResultSuccess)))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.logins.WithLabelValues(ResultInvalidCredentials)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.registrations.WithLabelValues(ResultConflict)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.authorizations.WithLabelValues(ResultExpired)))
}

func TestHandler_ExposesMetrics(t *testing.T) {
	m := New()
	m.RecordAuthorize(ResultMissingToken)
	m.RecordRequest(http.MethodGet, "/users/me", http.StatusUnauthorized, 5*time.Millisecond)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), `gophauth_authorize_total{result="missing_token"} 1`)
	assert.Contains(t, string(body), "gophauth_http_request_duration_seconds")
}
