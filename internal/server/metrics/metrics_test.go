package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestObserveRequest(t *testing.T) {
	m := New()

	m.ObserveRequest(http.MethodGet, "/market", http.StatusOK, 20*time.Millisecond)
	m.ObserveRequest(http.MethodGet, "/market", http.StatusOK, 10*time.Millisecond)
	m.ObserveRequest(http.MethodPost, "/listings", http.StatusUnauthorized, time.Millisecond)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.requests.WithLabelValues("GET", "/market", "200")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.requests.WithLabelValues("POST", "/listings", "401")))
	assert.Equal(t, 2, testutil.CollectAndCount(m.duration))
}

func TestAuthEvent(t *testing.T) {
	m := New()

	m.AuthEvent("login", true)
	m.AuthEvent("login", false)
	m.AuthEvent("login", false)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.authEvents.WithLabelValues("login", OutcomeSuccess)))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.authEvents.WithLabelValues("login", OutcomeFailure)))
}

func TestListingEvent(t *testing.T) {
	m := New()

	m.ListingEvent("published")

	expected := `
# HELP falcontrade_listings_events_total Listing lifecycle events (created, published, deleted).
# TYPE falcontrade_listings_events_total counter
falcontrade_listings_events_total{event="published"} 1
`
	require.NoError(t, testutil.CollectAndCompare(m.listingEvents, strings.NewReader(expected)))
}

func TestNew_IndependentRegistries(t *testing.T) {
	a, b := New(), New()

	a.ListingEvent("created")

	assert.Equal(t, 1.0, testutil.ToFloat64(a.listingEvents.WithLabelValues("created")))
	assert.Equal(t, 0.0, testutil.ToFloat64(b.listingEvents.WithLabelValues("created")))
}

func TestHandler(t *testing.T) {
	m := New()
	m.AuthEvent("register", true)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, `falcontrade_auth_events_total{event="register",outcome="success"} 1`)
	assert.Contains(t, body, "go_goroutines")
}
