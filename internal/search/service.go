package search

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/jonathan/placement-engine/internal/query"
	"github.com/jonathan/placement-engine/internal/store"
	"github.com/jonathan/placement-engine/internal/types"
)

// Request describes one search evaluation.
type Request struct {
	Role       string `validate:"required"`
	Collection string `validate:"required"`
	Term       string
	Filters    query.FilterValues
	SortBy     string
	SortDesc   bool

	// ViewerSkills is the searching person's skill set, used to attach
	// skill-match summaries to internship results for the student role.
	ViewerSkills []string
}

// ErrUnknownScope indicates a role/collection pair outside the role search
// configuration.
type ErrUnknownScope struct {
	Role       string
	Collection string
}

func (e *ErrUnknownScope) Error() string {
	return fmt.Sprintf("role %q may not search collection %q", e.Role, e.Collection)
}

// Service is the search path entry point: it evaluates one-shot searches and
// owns the shared evaluation pipeline used by live sessions.
type Service struct {
	cfg      *query.Config
	store    store.Store
	manager  *store.Manager
	validate *validator.Validate
	logger   *slog.Logger
}

// ServiceOption configures a Service.
type ServiceOption func(*Service)

// WithServiceLogger sets a custom logger. Default is slog.Default().
func WithServiceLogger(logger *slog.Logger) ServiceOption {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// NewService creates a search service over the given store.
func NewService(cfg *query.Config, st store.Store, opts ...ServiceOption) *Service {
	s := &Service{
		cfg:      cfg,
		store:    st,
		manager:  store.NewManager(st),
		validate: validator.New(),
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Close cancels every live subscription owned by the service's sessions.
func (s *Service) Close() {
	s.manager.Close()
}

// AvailableCollections returns the {key, label} pairs the role may search.
func (s *Service) AvailableCollections(role string) []query.CollectionOption {
	return s.cfg.AvailableCollections(role)
}

// Search runs a one-shot evaluation: fetch, constrain, match, rank, annotate.
// Store failures are recovered into an empty result set with the Err flag set;
// only configuration errors are returned as errors.
func (s *Service) Search(ctx context.Context, req Request) (*types.ResultSet, error) {
	if err := s.validate.Struct(req); err != nil {
		return nil, fmt.Errorf("invalid search request: %w", err)
	}
	cc := s.cfg.CollectionConfig(req.Role, req.Collection)
	if cc == nil {
		return nil, &ErrUnknownScope{Role: req.Role, Collection: req.Collection}
	}

	started := time.Now()

	records, err := s.store.FetchAll(ctx, req.Collection)
	if err != nil {
		s.logger.Warn("search fetch failed; returning empty result set",
			"collection", req.Collection, "err", err)
		return &types.ResultSet{
			Items:     []types.SearchResult{},
			ElapsedMs: time.Since(started).Milliseconds(),
			Err:       err,
		}, nil
	}

	constraints, order := query.Build(s.cfg, req.Role, req.Collection, req.Filters)
	records = query.Apply(records, constraints, order)

	rs := s.evaluate(records, cc, req)
	rs.ElapsedMs = time.Since(started).Milliseconds()
	return rs, nil
}

// evaluate runs the in-memory portion of the search path over an
// already-delivered snapshot.
func (s *Service) evaluate(records []types.Record, cc *query.CollectionConfig, req Request) *types.ResultSet {
	results := Match(records, req.Term, cc.SearchFields)
	Rank(results, req.Term, cc.SearchFields)

	if req.Role == "student" && req.Collection == types.CollectionInternships {
		for i := range results {
			if internship, ok := results[i].Record.(types.Internship); ok {
				results[i].SkillMatch = ScoreSkills(internship.RequiredSkills, req.ViewerSkills)
			}
		}
	}

	if req.SortBy != "" {
		SortResults(results, req.SortBy, req.SortDesc)
	}

	return &types.ResultSet{
		Items:      results,
		TotalCount: len(results),
	}
}

// Suggestions returns heuristic filter guidance for the latest result count.
func (s *Service) Suggestions(resultCount int, term string, filters query.FilterValues) []string {
	return FilterSuggestions(resultCount, term, filters)
}
