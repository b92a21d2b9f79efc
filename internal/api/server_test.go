package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/valuation-api/internal/store"
	"github.com/sells-group/valuation-api/internal/valuation"
)

func newTestServer(t *testing.T, opts ...ServerOption) (*Server, store.Store) {
	t.Helper()

	st, err := store.NewSQLite(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	require.NoError(t, st.Migrate(context.Background()))
	t.Cleanup(func() { st.Close() })

	return NewServer(st, valuation.NewCalculator(), opts...), st
}

func doJSON(t *testing.T, h http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestHealth(t *testing.T) {
	s, _ := newTestServer(t)

	rec := doJSON(t, s.Router(), http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestCreateValuation(t *testing.T) {
	s, _ := newTestServer(t)
	h := s.Router()

	rec := doJSON(t, h, http.MethodPost, "/api/v1/valuations", map[string]any{
		"category":        "스마트스토어",
		"monthly_revenue": 1000,
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var resp valuationResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))

	assert.NotEmpty(t, resp.ID)
	assert.Equal(t, int64(22_680), resp.Value)
	assert.Equal(t, "2만원", resp.FormattedValue)
	assert.Equal(t, 5, resp.Percentile)
	assert.Equal(t, valuation.ConfidenceLow, resp.Confidence)
	assert.Equal(t, valuation.MethodRevenueBased, resp.Method)

	// Round trip through the result endpoint.
	rec = doJSON(t, h, http.MethodGet, "/api/v1/valuations/"+resp.ID, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var fetched valuationResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &fetched))
	assert.Equal(t, resp.Value, fetched.Value)
	assert.Equal(t, resp.FormattedValue, fetched.FormattedValue)
}

func TestCreateValuationValidation(t *testing.T) {
	s, _ := newTestServer(t)
	h := s.Router()

	cases := []struct {
		name string
		body map[string]any
	}{
		{"missing category", map[string]any{"monthly_revenue": 1000}},
		{"negative revenue", map[string]any{"category": "saas", "monthly_revenue": -1}},
		{"negative profit", map[string]any{"category": "saas", "monthly_profit": -1}},
		{"negative audience", map[string]any{"category": "video", "audience_size": -5}},
		{"negative engagement", map[string]any{"category": "video", "avg_views": -1.0}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := doJSON(t, h, http.MethodPost, "/api/v1/valuations", tc.body)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
		})
	}

	t.Run("malformed body", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/valuations", bytes.NewBufferString("{not json"))
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestGetValuationNotFound(t *testing.T) {
	s, _ := newTestServer(t)

	rec := doJSON(t, s.Router(), http.MethodGet, "/api/v1/valuations/nope", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestCreateLeadValidation(t *testing.T) {
	s, _ := newTestServer(t)
	h := s.Router()

	rec := doJSON(t, h, http.MethodPost, "/api/v1/leads", map[string]any{"name": "Kim"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doJSON(t, h, http.MethodPost, "/api/v1/leads", map[string]any{"email": "not-an-email"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doJSON(t, h, http.MethodPost, "/api/v1/leads", map[string]any{
		"email":        "a@example.com",
		"valuation_id": "missing",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCreateLeadPersists(t *testing.T) {
	s, st := newTestServer(t)

	rec := doJSON(t, s.Router(), http.MethodPost, "/api/v1/leads", map[string]any{
		"email": "owner@example.com",
		"name":  "Kim Jiwoo",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	leads, err := st.ListLeads(context.Background(), store.LeadFilter{})
	require.NoError(t, err)
	require.Len(t, leads, 1)
	assert.Equal(t, "owner@example.com", leads[0].Email)
}

// stubSF records inserted leads and returns a fixed ID.
type stubSF struct {
	mu      sync.Mutex
	records []map[string]any
}

func (f *stubSF) Query(ctx context.Context, soql string, out any) error { return nil }

func (f *stubSF) InsertOne(ctx context.Context, sObjectName string, record map[string]any) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.records = append(f.records, record)
	return "00Q5e00000AbCdEfGH", nil
}

func (f *stubSF) UpdateOne(ctx context.Context, sObjectName string, id string, fields map[string]any) error {
	return nil
}

func (f *stubSF) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.records)
}

func TestCreateLeadPushesToSalesforce(t *testing.T) {
	sf := &stubSF{}
	s, st := newTestServer(t, WithSalesforce(sf))

	rec := doJSON(t, s.Router(), http.MethodPost, "/api/v1/leads", map[string]any{
		"email": "owner@example.com",
		"name":  "Kim Jiwoo",
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	assert.Eventually(t, func() bool {
		return sf.count() == 1
	}, 2*time.Second, 10*time.Millisecond)

	assert.Eventually(t, func() bool {
		synced, err := st.ListLeads(context.Background(), store.LeadFilter{Status: "synced"})
		return err == nil && len(synced) == 1 && synced[0].SalesforceID == "00Q5e00000AbCdEfGH"
	}, 2*time.Second, 10*time.Millisecond)
}

func TestCreateEvent(t *testing.T) {
	s, st := newTestServer(t)
	h := s.Router()

	rec := doJSON(t, h, http.MethodPost, "/api/v1/events", map[string]any{
		"path":       "/valuation/step-1",
		"referrer":   "https://naver.com",
		"session_id": "sess-1",
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	n, err := st.CountPageViews(context.Background(), time.Now().Add(-time.Minute))
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	rec = doJSON(t, h, http.MethodPost, "/api/v1/events", map[string]any{"referrer": "x"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestFunnelEndpoint(t *testing.T) {
	s, _ := newTestServer(t)
	h := s.Router()

	doJSON(t, h, http.MethodPost, "/api/v1/events", map[string]any{"path": "/valuation"})
	doJSON(t, h, http.MethodPost, "/api/v1/valuations", map[string]any{
		"category":        "blog",
		"monthly_revenue": 1_000_000,
	})

	rec := doJSON(t, h, http.MethodGet, "/api/v1/metrics/funnel?hours=24", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var snap struct {
		PageViews  int `json:"page_views"`
		Valuations int `json:"valuations"`
		Leads      int `json:"leads"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &snap))
	assert.Equal(t, 1, snap.PageViews)
	assert.Equal(t, 1, snap.Valuations)
	assert.Zero(t, snap.Leads)

	rec = doJSON(t, h, http.MethodGet, "/api/v1/metrics/funnel?hours=bogus", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRateLimiter(t *testing.T) {
	s, _ := newTestServer(t, WithRateLimit(0.1, 1))
	h := s.Router()

	rec := doJSON(t, h, http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, h, http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
}
