package server

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/placement-engine/internal/query"
	"github.com/jonathan/placement-engine/internal/search"
	"github.com/jonathan/placement-engine/internal/store"
	"github.com/jonathan/placement-engine/internal/types"
)

func testServer(t *testing.T) (*Server, *store.MemStore) {
	t.Helper()
	mem := store.NewMemStore()
	mem.Put(types.Internship{ID: uuid.New(), Role: "React Developer", Company: "Acme",
		Location: "Remote", RequiredSkills: []string{"React"}, Seats: 2})
	mem.Put(types.Internship{ID: uuid.New(), Role: "Data Analyst", Company: "Numera",
		Location: "Bangalore", RequiredSkills: []string{"SQL"}, Seats: 1})
	mem.Put(types.Student{ID: uuid.New(), Name: "Asha", Department: "CS"})

	svc := search.NewService(query.DefaultConfig(), mem)
	t.Cleanup(svc.Close)

	return &Server{
		store:      mem,
		closeStore: func() {},
		svc:        svc,
		options:    store.NewOptionCache(mem),
		logger:     slog.Default(),
	}, mem
}

func doRequest(t *testing.T, s *Server, target string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	s.routes().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func TestHandleHealth(t *testing.T) {
	s, _ := testServer(t)

	rec := doRequest(t, s, "/health")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", decodeBody(t, rec)["status"])
}

func TestHandleCollections(t *testing.T) {
	s, _ := testServer(t)

	rec := doRequest(t, s, "/collections?role=admin")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, float64(3), decodeBody(t, rec)["count"])

	rec = doRequest(t, s, "/collections")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doRequest(t, s, "/collections?role=nobody")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestHandleSearch(t *testing.T) {
	s, _ := testServer(t)

	rec := doRequest(t, s, "/search?role=student&collection=internships&q=react")
	require.Equal(t, http.StatusOK, rec.Code)

	body := decodeBody(t, rec)
	assert.Equal(t, float64(1), body["total_count"])
	assert.NotContains(t, body, "error")
}

func TestHandleSearch_FiltersParameter(t *testing.T) {
	s, _ := testServer(t)

	filters := `{"location":["Bangalore"]}`
	rec := doRequest(t, s, "/search?role=student&collection=internships&filters="+
		strings.ReplaceAll(filters, `"`, "%22"))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, float64(1), decodeBody(t, rec)["total_count"])
}

func TestHandleSearch_ParameterErrors(t *testing.T) {
	s, _ := testServer(t)

	rec := doRequest(t, s, "/search?collection=internships")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doRequest(t, s, "/search?role=student")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doRequest(t, s, "/search?role=student&collection=internships&filters=notjson")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doRequest(t, s, "/search?role=student&collection=students")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestHandleSuggestions(t *testing.T) {
	s, _ := testServer(t)

	rec := doRequest(t, s, "/search/suggestions?role=student&collection=internships&q=quantum")
	require.Equal(t, http.StatusOK, rec.Code)

	suggestions := decodeBody(t, rec)["suggestions"].([]any)
	require.NotEmpty(t, suggestions)
	assert.Contains(t, suggestions[0], "broader search term")
}

func TestHandleFilterOptions(t *testing.T) {
	s, _ := testServer(t)

	rec := doRequest(t, s, "/filters/options?collection=internships&field=location")
	require.Equal(t, http.StatusOK, rec.Code)

	options := decodeBody(t, rec)["options"].([]any)
	assert.ElementsMatch(t, []any{"Remote", "Bangalore"}, options)

	rec = doRequest(t, s, "/filters/options?collection=internships")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandleDashboard(t *testing.T) {
	s, _ := testServer(t)

	rec := doRequest(t, s, "/dashboard")
	require.Equal(t, http.StatusOK, rec.Code)

	body := decodeBody(t, rec)
	dashboard := body["dashboard"].(map[string]any)
	stats := dashboard["stats"].(map[string]any)
	assert.Equal(t, float64(1), stats["total_students"])
	assert.Equal(t, float64(2), stats["total_internships"])
}

func TestHandleExport(t *testing.T) {
	s, _ := testServer(t)

	rec := doRequest(t, s, "/export?collection=internships")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/csv", rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "internships.csv")
	assert.Contains(t, rec.Body.String(), "React Developer")

	rec = doRequest(t, s, "/export")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doRequest(t, s, "/export?collection=no_such")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestHandleSearchStream_EmitsResultEvents(t *testing.T) {
	s, _ := testServer(t)

	ctx, cancel := context.WithTimeout(context.Background(), 800*time.Millisecond)
	defer cancel()

	req := httptest.NewRequest(http.MethodGet,
		"/search/stream?role=student&collection=internships&q=react", nil).WithContext(ctx)
	rec := httptest.NewRecorder()
	s.routes().ServeHTTP(rec, req)

	assert.Equal(t, "text/event-stream", rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Body.String(), "event: results")
	assert.Contains(t, rec.Body.String(), "React Developer")
}

// lastEventData returns the data payload of the final event of the given
// type in an SSE body.
func lastEventData(t *testing.T, body, event string) string {
	t.Helper()
	var data string
	for _, block := range strings.Split(body, "\n\n") {
		lines := strings.SplitN(block, "\n", 2)
		if len(lines) == 2 && lines[0] == "event: "+event {
			data = strings.TrimPrefix(lines[1], "data: ")
		}
	}
	require.NotEmpty(t, data)
	return data
}

func TestHandleSearchStream_AppliesSortParameter(t *testing.T) {
	s, _ := testServer(t)

	ctx, cancel := context.WithTimeout(context.Background(), 800*time.Millisecond)
	defer cancel()

	req := httptest.NewRequest(http.MethodGet,
		"/search/stream?role=student&collection=internships&sort=seats&order=asc", nil).WithContext(ctx)
	rec := httptest.NewRecorder()
	s.routes().ServeHTTP(rec, req)

	var rs struct {
		Items []struct {
			Record struct {
				Seats int `json:"seats"`
			} `json:"record"`
		} `json:"items"`
	}
	payload := lastEventData(t, rec.Body.String(), "results")
	require.NoError(t, json.Unmarshal([]byte(payload), &rs))

	require.Len(t, rs.Items, 2)
	assert.Equal(t, 1, rs.Items[0].Record.Seats)
	assert.Equal(t, 2, rs.Items[1].Record.Seats)
}

func TestHTTPStatusMapping(t *testing.T) {
	assert.Equal(t, http.StatusNotFound, HTTPStatus(&search.ErrUnknownScope{Role: "x", Collection: "y"}))
	assert.Equal(t, http.StatusNotFound, HTTPStatus(store.ErrUnknownCollection))
	assert.Equal(t, http.StatusBadRequest, HTTPStatus(&ErrMissingParam{Param: "role"}))
	assert.Equal(t, http.StatusBadRequest, HTTPStatus(&ErrBadFilter{}))
	assert.Equal(t, http.StatusInternalServerError, HTTPStatus(assert.AnError))
}

func TestStreamWriter(t *testing.T) {
	rec := httptest.NewRecorder()
	sse, err := newStreamWriter(rec)
	require.NoError(t, err)

	rs := &types.ResultSet{
		Items:      []types.SearchResult{{Record: types.Student{Name: "Asha"}}},
		TotalCount: 1,
	}
	require.NoError(t, sse.writeResults(rs))
	sse.writeError("store down")

	body := rec.Body.String()
	assert.Equal(t, "text/event-stream", rec.Header().Get("Content-Type"))
	assert.Contains(t, body, "event: results\ndata: ")
	assert.Contains(t, body, `"total_count":1`)
	assert.Contains(t, body, "event: error\ndata: {\"error\":\"store down\"}\n\n")
}
