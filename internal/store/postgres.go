package store

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/jonathan/placement-engine/internal/query"
	"github.com/jonathan/placement-engine/internal/types"
)

// notifyChannel is the Postgres NOTIFY channel carrying the name of the
// changed collection as its payload. Triggers on the three collection tables
// are expected to emit on it after every insert, update, or delete.
const notifyChannel = "collection_changes"

// PostgresStore is the production Store: per-collection tables plus a
// LISTEN/NOTIFY change feed. Every notification triggers a full requery, so
// subscribers always receive complete replacement snapshots.
type PostgresStore struct {
	pool   *pgxpool.Pool
	logger *slog.Logger
}

// PostgresOption configures a PostgresStore.
type PostgresOption func(*PostgresStore)

// WithPostgresLogger sets a custom logger. Default is slog.Default().
func WithPostgresLogger(logger *slog.Logger) PostgresOption {
	return func(s *PostgresStore) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// ConnectPostgres establishes a connection pool and verifies it.
func ConnectPostgres(ctx context.Context, databaseURL string, opts ...PostgresOption) (*PostgresStore, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	s := &PostgresStore{pool: pool, logger: slog.Default()}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Close closes the connection pool.
func (s *PostgresStore) Close() {
	if s.pool != nil {
		s.pool.Close()
	}
}

// Subscribe implements Store. The initial snapshot is queried immediately;
// afterwards a dedicated listening connection requeries on every notification
// for the collection.
func (s *PostgresStore) Subscribe(ctx context.Context, collection string, constraints []query.Constraint, order query.Order) (<-chan Snapshot, CancelFunc, error) {
	if !knownCollection(collection) {
		return nil, nil, ErrUnknownCollection
	}

	subCtx, stop := context.WithCancel(ctx)
	ch := make(chan Snapshot, 1)

	var once sync.Once
	cancel := func() {
		once.Do(stop)
	}

	go s.run(subCtx, collection, constraints, order, ch)

	return ch, cancel, nil
}

func (s *PostgresStore) run(ctx context.Context, collection string, constraints []query.Constraint, order query.Order, ch chan Snapshot) {
	defer close(ch)

	deliver := func(snap Snapshot) {
		// Replace-on-change: drop a pending stale snapshot for the new one.
		for {
			select {
			case <-ctx.Done():
				return
			case ch <- snap:
				return
			default:
				select {
				case <-ch:
				default:
				}
			}
		}
	}

	requery := func() {
		records, err := s.queryCollection(ctx, collection, constraints, order)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			s.logger.Error("snapshot query failed", "collection", collection, "err", err)
			deliver(Snapshot{Err: err})
			return
		}
		deliver(Snapshot{Records: records})
	}

	requery()

	conn, err := s.pool.Acquire(ctx)
	if err != nil {
		if ctx.Err() == nil {
			deliver(Snapshot{Err: fmt.Errorf("failed to acquire listen connection: %w", err)})
		}
		return
	}
	defer conn.Release()

	if _, err := conn.Exec(ctx, "LISTEN "+notifyChannel); err != nil {
		deliver(Snapshot{Err: fmt.Errorf("failed to listen on %s: %w", notifyChannel, err)})
		return
	}

	for {
		notification, err := conn.Conn().WaitForNotification(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			deliver(Snapshot{Err: fmt.Errorf("notification wait failed: %w", err)})
			return
		}
		if notification.Payload == collection {
			requery()
		}
	}
}

// FetchAll implements Store.
func (s *PostgresStore) FetchAll(ctx context.Context, collection string) ([]types.Record, error) {
	if !knownCollection(collection) {
		return nil, ErrUnknownCollection
	}
	records, err := s.queryCollection(ctx, collection, nil, query.DefaultOrder())
	if err != nil {
		return nil, &StoreUnavailableError{Collection: collection, Cause: err}
	}
	return records, nil
}

func knownCollection(name string) bool {
	switch name {
	case types.CollectionStudents, types.CollectionInternships, types.CollectionApplications:
		return true
	}
	return false
}

// listFields are the text[] columns per collection; membership constraints on
// them use array overlap instead of equality.
var listFields = map[string]map[string]bool{
	types.CollectionStudents:    {"skills": true},
	types.CollectionInternships: {"required_skills": true},
}

func (s *PostgresStore) queryCollection(ctx context.Context, collection string, constraints []query.Constraint, order query.Order) ([]types.Record, error) {
	where, args := buildWhere(collection, constraints)

	// Applications carry applied_at instead of a created_at column.
	if collection == types.CollectionApplications && order.Field == "created_at" {
		order.Field = "applied_at"
	}

	sql := fmt.Sprintf("SELECT %s FROM %s%s%s",
		selectColumns(collection), collection, where, buildOrder(order))

	rows, err := s.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query %s: %w", collection, err)
	}
	defer rows.Close()

	var records []types.Record
	for rows.Next() {
		record, err := scanRecord(collection, rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan %s row: %w", collection, err)
		}
		records = append(records, record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read %s rows: %w", collection, err)
	}
	return records, nil
}

func buildWhere(collection string, constraints []query.Constraint) (string, []any) {
	if len(constraints) == 0 {
		return "", nil
	}
	clauses := make([]string, 0, len(constraints))
	args := make([]any, 0, len(constraints))
	for _, c := range constraints {
		args = append(args, constraintArg(c))
		placeholder := fmt.Sprintf("$%d", len(args))
		switch c.Op {
		case query.OpEquals:
			clauses = append(clauses, fmt.Sprintf("%s = %s", c.Field, placeholder))
		case query.OpIn:
			if listFields[collection][c.Field] {
				clauses = append(clauses, fmt.Sprintf("%s && %s", c.Field, placeholder))
			} else {
				clauses = append(clauses, fmt.Sprintf("%s = ANY(%s)", c.Field, placeholder))
			}
		case query.OpGreaterOrEqual:
			clauses = append(clauses, fmt.Sprintf("%s >= %s", c.Field, placeholder))
		case query.OpLessOrEqual:
			clauses = append(clauses, fmt.Sprintf("%s <= %s", c.Field, placeholder))
		}
	}
	return " WHERE " + strings.Join(clauses, " AND "), args
}

func constraintArg(c query.Constraint) any {
	if c.Op == query.OpIn {
		return c.Values
	}
	return c.Value
}

func buildOrder(order query.Order) string {
	if order.Field == "" {
		return ""
	}
	dir := "ASC"
	if order.Desc {
		dir = "DESC"
	}
	return fmt.Sprintf(" ORDER BY %s %s", order.Field, dir)
}

func selectColumns(collection string) string {
	switch collection {
	case types.CollectionStudents:
		return "id, name, email, phone, university, major, graduation_year, skills, resume_url, bio, gpa, department, created_at"
	case types.CollectionInternships:
		return "id, role, company, location, description, required_skills, seats, stipend, department, created_at"
	case types.CollectionApplications:
		return "id, student_id, internship_id, status, applied_at, updated_at"
	}
	return "*"
}

// rowScanner is satisfied by pgx.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanRecord(collection string, row rowScanner) (types.Record, error) {
	switch collection {
	case types.CollectionStudents:
		var st types.Student
		err := row.Scan(&st.ID, &st.Name, &st.Email, &st.Phone, &st.University,
			&st.Major, &st.GraduationYear, &st.Skills, &st.ResumeURL, &st.Bio,
			&st.GPA, &st.Department, &st.CreatedAt)
		return st, err
	case types.CollectionInternships:
		var in types.Internship
		err := row.Scan(&in.ID, &in.Role, &in.Company, &in.Location, &in.Description,
			&in.RequiredSkills, &in.Seats, &in.Stipend, &in.Department, &in.CreatedAt)
		return in, err
	case types.CollectionApplications:
		var ap types.Application
		err := row.Scan(&ap.ID, &ap.StudentID, &ap.InternshipID, &ap.Status,
			&ap.AppliedAt, &ap.UpdatedAt)
		return ap, err
	}
	return nil, ErrUnknownCollection
}
