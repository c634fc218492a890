package server

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/jonathan/placement-engine/internal/analytics"
	"github.com/jonathan/placement-engine/internal/export"
	"github.com/jonathan/placement-engine/internal/query"
	"github.com/jonathan/placement-engine/internal/search"
	"github.com/jonathan/placement-engine/internal/types"
)

// jsonResponse writes a JSON response with the given status code
func (s *Server) jsonResponse(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		s.logger.Error("failed to encode response", "err", err)
	}
}

// errorResponse writes a JSON error response
func (s *Server) errorResponse(w http.ResponseWriter, status int, message string) {
	s.jsonResponse(w, status, map[string]string{"error": message})
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	s.jsonResponse(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleCollections lists the collections a role may search.
func (s *Server) handleCollections(w http.ResponseWriter, r *http.Request) {
	role := r.URL.Query().Get("role")
	if role == "" {
		s.errorResponse(w, http.StatusBadRequest, "role query parameter is required")
		return
	}
	collections := s.svc.AvailableCollections(role)
	if collections == nil {
		s.errorResponse(w, http.StatusNotFound, "unknown role")
		return
	}
	s.jsonResponse(w, http.StatusOK, map[string]any{
		"collections": collections,
		"count":       len(collections),
	})
}

// searchRequest decodes the shared search query parameters.
func searchRequest(r *http.Request) (search.Request, error) {
	q := r.URL.Query()
	req := search.Request{
		Role:       q.Get("role"),
		Collection: q.Get("collection"),
		Term:       q.Get("q"),
		SortBy:     q.Get("sort"),
		SortDesc:   q.Get("order") != "asc",
	}
	if req.Role == "" {
		return req, &ErrMissingParam{Param: "role"}
	}
	if req.Collection == "" {
		return req, &ErrMissingParam{Param: "collection"}
	}
	if raw := q.Get("filters"); raw != "" {
		var filters query.FilterValues
		if err := json.Unmarshal([]byte(raw), &filters); err != nil {
			return req, &ErrBadFilter{Cause: err}
		}
		req.Filters = filters
	}
	if skills := q.Get("viewer_skills"); skills != "" {
		req.ViewerSkills = strings.Split(skills, ",")
	}
	return req, nil
}

// handleSearch runs a one-shot search evaluation.
func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	req, err := searchRequest(r)
	if err != nil {
		s.errorResponse(w, HTTPStatus(err), err.Error())
		return
	}

	rs, err := s.svc.Search(r.Context(), req)
	if err != nil {
		s.errorResponse(w, HTTPStatus(err), err.Error())
		return
	}

	resp := map[string]any{
		"items":       rs.Items,
		"total_count": rs.TotalCount,
		"elapsed_ms":  rs.ElapsedMs,
	}
	if rs.Err != nil {
		// Store failures degrade to an empty result set with a non-fatal
		// error flag; the panel can show a retry affordance.
		resp["error"] = rs.Err.Error()
	}
	s.jsonResponse(w, http.StatusOK, resp)
}

// handleSearchStream opens a live search session and streams every
// recomputed result set as an SSE event until the client disconnects.
func (s *Server) handleSearchStream(w http.ResponseWriter, r *http.Request) {
	req, err := searchRequest(r)
	if err != nil {
		s.errorResponse(w, HTTPStatus(err), err.Error())
		return
	}

	sse, err := newStreamWriter(w)
	if err != nil {
		s.errorResponse(w, http.StatusInternalServerError, err.Error())
		return
	}

	results := make(chan *types.ResultSet, 1)
	sess, err := s.svc.NewSession(r.Context(), req.Role, func(rs *types.ResultSet) {
		select {
		case results <- rs:
		case <-r.Context().Done():
		}
	}, search.WithViewerSkills(req.ViewerSkills))
	if err != nil {
		sse.writeError(err.Error())
		return
	}
	defer sess.Close()

	if req.Collection != "" {
		if err := sess.SwitchCollection(req.Collection); err != nil {
			sse.writeError(err.Error())
			return
		}
	}
	sess.UpdateQuery(req.Term, req.Filters)
	if req.SortBy != "" {
		sess.SetSort(req.SortBy, req.SortDesc)
	}

	for {
		select {
		case <-r.Context().Done():
			return
		case rs := <-results:
			if rs.Err != nil {
				sse.writeError(rs.Err.Error())
				continue
			}
			if err := sse.writeResults(rs); err != nil {
				return
			}
		}
	}
}

// handleSuggestions returns heuristic filter guidance for a result count.
func (s *Server) handleSuggestions(w http.ResponseWriter, r *http.Request) {
	req, err := searchRequest(r)
	if err != nil {
		s.errorResponse(w, HTTPStatus(err), err.Error())
		return
	}
	rs, err := s.svc.Search(r.Context(), req)
	if err != nil {
		s.errorResponse(w, HTTPStatus(err), err.Error())
		return
	}
	suggestions := s.svc.Suggestions(rs.TotalCount, req.Term, req.Filters)
	s.jsonResponse(w, http.StatusOK, map[string]any{"suggestions": suggestions})
}

// handleFilterOptions returns the distinct values observed for a field.
func (s *Server) handleFilterOptions(w http.ResponseWriter, r *http.Request) {
	collection := r.URL.Query().Get("collection")
	field := r.URL.Query().Get("field")
	if collection == "" || field == "" {
		s.errorResponse(w, http.StatusBadRequest, "collection and field query parameters are required")
		return
	}
	values, err := s.options.DistinctValues(r.Context(), collection, field)
	if err != nil {
		s.errorResponse(w, HTTPStatus(err), err.Error())
		return
	}
	s.jsonResponse(w, http.StatusOK, map[string]any{"options": values})
}

// handleDashboard computes aggregates and insights from the current
// snapshots.
func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	students, internships, applications, err := s.fetchCollections(ctx)
	if err != nil {
		// Analytics degrades to an empty dashboard with an error flag; the
		// search path keeps working independently.
		s.jsonResponse(w, http.StatusOK, map[string]any{
			"dashboard": nil,
			"error":     err.Error(),
		})
		return
	}

	dashboard := analytics.ComputeDashboard(students, internships, applications, time.Now())
	s.jsonResponse(w, http.StatusOK, map[string]any{"dashboard": dashboard})
}

// handleExport streams a collection as CSV.
func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	collection := r.URL.Query().Get("collection")
	if collection == "" {
		s.errorResponse(w, http.StatusBadRequest, "collection query parameter is required")
		return
	}

	records, err := s.store.FetchAll(r.Context(), collection)
	if err != nil {
		s.errorResponse(w, HTTPStatus(err), err.Error())
		return
	}

	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", `attachment; filename="`+collection+`.csv"`)
	if err := export.Rows(w, records); err != nil {
		s.logger.Error("export failed", "collection", collection, "err", err)
	}
}

func (s *Server) fetchCollections(ctx context.Context) ([]types.Student, []types.Internship, []types.Application, error) {
	studentRecords, err := s.store.FetchAll(ctx, types.CollectionStudents)
	if err != nil {
		return nil, nil, nil, err
	}
	internshipRecords, err := s.store.FetchAll(ctx, types.CollectionInternships)
	if err != nil {
		return nil, nil, nil, err
	}
	applicationRecords, err := s.store.FetchAll(ctx, types.CollectionApplications)
	if err != nil {
		return nil, nil, nil, err
	}

	students := make([]types.Student, 0, len(studentRecords))
	for _, r := range studentRecords {
		if st, ok := r.(types.Student); ok {
			students = append(students, st)
		}
	}
	internships := make([]types.Internship, 0, len(internshipRecords))
	for _, r := range internshipRecords {
		if in, ok := r.(types.Internship); ok {
			internships = append(internships, in)
		}
	}
	applications := make([]types.Application, 0, len(applicationRecords))
	for _, r := range applicationRecords {
		if ap, ok := r.(types.Application); ok {
			applications = append(applications, ap)
		}
	}
	return students, internships, applications, nil
}
