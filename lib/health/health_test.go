package health

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeUpstream struct{ name, state string }

func (f fakeUpstream) Name() string  { return f.name }
func (f fakeUpstream) State() string { return f.state }

func run(t *testing.T, h http.HandlerFunc) (int, Health) {
	t.Helper()
	rec := httptest.NewRecorder()
	h(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	var out Health
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	return rec.Code, out
}

func TestCheckHealthy(t *testing.T) {
	code, h := run(t, Check(
		[]Upstream{fakeUpstream{"tmdb", "closed"}, fakeUpstream{"google-books", "half-open"}},
		map[string]bool{"tmdb": true},
	))
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, StatusOK, h.Status)
	assert.Equal(t, StatusOK, h.Upstreams["tmdb"].Status)
	assert.Equal(t, "recovering", h.Upstreams["google-books"].Message)
	assert.Equal(t, StatusOK, h.Credentials["tmdb"].Status)
}

func TestCheckOpenBreaker(t *testing.T) {
	code, h := run(t, Check([]Upstream{fakeUpstream{"tmdb", "open"}}, nil))
	assert.Equal(t, http.StatusServiceUnavailable, code)
	assert.Equal(t, StatusDegraded, h.Status)
	assert.Equal(t, "error", h.Upstreams["tmdb"].Status)
}

func TestCheckMissingCredential(t *testing.T) {
	code, h := run(t, Check([]Upstream{fakeUpstream{"tmdb", "closed"}}, map[string]bool{"tmdb": false}))
	assert.Equal(t, http.StatusServiceUnavailable, code)
	assert.Equal(t, StatusDegraded, h.Status)
	assert.Equal(t, "not configured", h.Credentials["tmdb"].Message)
}
