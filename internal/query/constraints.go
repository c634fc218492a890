// Package query builds normalized constraints from role filter configuration
// and active filter values, and evaluates them against in-memory records.
package query

import (
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/jonathan/placement-engine/internal/types"
)

// Op identifies a constraint predicate.
type Op string

// Constraint operators.
const (
	OpEquals         Op = "eq"
	OpIn             Op = "in"
	OpGreaterOrEqual Op = "gte"
	OpLessOrEqual    Op = "lte"
)

// Constraint is a normalized, collection-agnostic predicate derived from one
// filter value.
type Constraint struct {
	Field  string
	Op     Op
	Value  any      // Equals and range bounds
	Values []string // In
}

// Order is the result ordering instruction attached to a constraint set.
type Order struct {
	Field string
	Desc  bool
}

// DefaultOrder is most-recent-first by creation timestamp.
func DefaultOrder() Order {
	return Order{Field: "created_at", Desc: true}
}

// Range is a {min, max} filter value. A bound equal to the schema's open
// extreme contributes no constraint.
type Range struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

// FilterValues maps filter field names to user-chosen values: a []string for
// membership filters, a Range for range filters, or a scalar for equality.
type FilterValues map[string]any

// Build translates the active filter values for (role, collection) into an
// ordered constraint list plus the default ordering. Unknown filter keys and
// values that do not match their declared schema kind are silently dropped so
// that future UI filters cannot break the engine.
func Build(cfg *Config, role, collection string, filters FilterValues) ([]Constraint, Order) {
	order := DefaultOrder()

	cc := cfg.CollectionConfig(role, collection)
	if cc == nil || len(filters) == 0 {
		return nil, order
	}

	// Iterate declared filters in schema order so the output is deterministic.
	var constraints []Constraint
	for _, fs := range cc.Filters {
		raw, ok := filters[fs.Field]
		if !ok || raw == nil {
			continue
		}
		constraints = append(constraints, buildOne(fs, raw)...)
	}
	return constraints, order
}

func buildOne(fs FilterSchema, raw any) []Constraint {
	switch fs.Kind {
	case FilterMembership:
		values := toStringList(raw)
		if len(values) == 0 {
			if s, ok := scalarString(raw); ok && s != "" {
				return []Constraint{{Field: fs.Field, Op: OpEquals, Value: s}}
			}
			return nil
		}
		return []Constraint{{Field: fs.Field, Op: OpIn, Values: values}}
	case FilterRange:
		rng, ok := toRange(raw)
		if !ok {
			return nil
		}
		var out []Constraint
		if rng.Min > fs.OpenMin() {
			out = append(out, Constraint{Field: fs.Field, Op: OpGreaterOrEqual, Value: rng.Min})
		}
		if rng.Max < fs.OpenMax() {
			out = append(out, Constraint{Field: fs.Field, Op: OpLessOrEqual, Value: rng.Max})
		}
		return out
	}
	return nil
}

// toStringList accepts []string and []any-of-strings; anything else is not a
// membership value.
func toStringList(raw any) []string {
	switch v := raw.(type) {
	case []string:
		out := make([]string, 0, len(v))
		for _, s := range v {
			if s != "" {
				out = append(out, s)
			}
		}
		return out
	case []any:
		out := make([]string, 0, len(v))
		for _, e := range v {
			if s, ok := e.(string); ok && s != "" {
				out = append(out, s)
			}
		}
		return out
	}
	return nil
}

func scalarString(raw any) (string, bool) {
	s, ok := raw.(string)
	return s, ok
}

// toRange accepts a Range, *Range, or a JSON-decoded {"min":..,"max":..} map.
func toRange(raw any) (Range, bool) {
	switch v := raw.(type) {
	case Range:
		return v, true
	case *Range:
		if v == nil {
			return Range{}, false
		}
		return *v, true
	case map[string]any:
		rng := Range{Min: 0, Max: math.Inf(1)}
		minV, hasMin := toFloat(v["min"])
		maxV, hasMax := toFloat(v["max"])
		if !hasMin && !hasMax {
			return Range{}, false
		}
		if hasMin {
			rng.Min = minV
		}
		if hasMax {
			rng.Max = maxV
		}
		return rng, true
	}
	return Range{}, false
}

func toFloat(raw any) (float64, bool) {
	switch v := raw.(type) {
	case float64:
		return v, true
	case int:
		return float64(v), true
	}
	return 0, false
}

// Matches reports whether the record satisfies the constraint. Records missing
// the constrained field do not match, except that an empty constraint set
// always passes (handled by Apply).
func (c Constraint) Matches(r types.Record) bool {
	val, ok := r.Field(c.Field)
	if !ok {
		return false
	}
	switch c.Op {
	case OpEquals:
		return equalsValue(val, c.Value)
	case OpIn:
		return inValues(val, c.Values)
	case OpGreaterOrEqual:
		n, ok := numericValue(val)
		bound, bok := toFloat(c.Value)
		return ok && bok && n >= bound
	case OpLessOrEqual:
		n, ok := numericValue(val)
		bound, bok := toFloat(c.Value)
		return ok && bok && n <= bound
	}
	return false
}

func equalsValue(val, want any) bool {
	if ws, ok := want.(string); ok {
		if vs, ok := val.(string); ok {
			return strings.EqualFold(vs, ws)
		}
		return false
	}
	wn, wok := toFloat(want)
	vn, vok := numericValue(val)
	return wok && vok && wn == vn
}

func inValues(val any, set []string) bool {
	switch v := val.(type) {
	case string:
		for _, s := range set {
			if strings.EqualFold(v, s) {
				return true
			}
		}
	case []string:
		for _, elem := range v {
			for _, s := range set {
				if strings.EqualFold(elem, s) {
					return true
				}
			}
		}
	}
	return false
}

func numericValue(val any) (float64, bool) {
	switch v := val.(type) {
	case float64:
		return v, true
	case int:
		return float64(v), true
	case time.Time:
		return float64(v.Unix()), true
	}
	return 0, false
}

// Apply filters records down to those satisfying every constraint, then sorts
// by the given order. An empty constraint set retains everything.
func Apply(records []types.Record, constraints []Constraint, order Order) []types.Record {
	out := make([]types.Record, 0, len(records))
	for _, r := range records {
		keep := true
		for _, c := range constraints {
			if !c.Matches(r) {
				keep = false
				break
			}
		}
		if keep {
			out = append(out, r)
		}
	}
	Sort(out, order)
	return out
}

// Sort orders records in place by the order's field. Records without the field
// are treated as equal and keep their input order. The sort is stable so equal
// keys keep their input order.
func Sort(records []types.Record, order Order) {
	if order.Field == "" {
		return
	}
	sort.SliceStable(records, func(i, j int) bool {
		less, ok := lessByField(records[i], records[j], order.Field)
		if !ok {
			return false
		}
		if order.Desc {
			return !less
		}
		return less
	})
}

func lessByField(a, b types.Record, field string) (bool, bool) {
	av, aok := a.Field(field)
	bv, bok := b.Field(field)
	if !aok || !bok {
		return false, false
	}
	if as, ok := av.(string); ok {
		if bs, ok := bv.(string); ok {
			return strings.ToLower(as) < strings.ToLower(bs), true
		}
	}
	an, aok := numericValue(av)
	bn, bok := numericValue(bv)
	if aok && bok {
		return an < bn, true
	}
	return false, false
}

// Fingerprint renders a constraint set to a stable string, used to key live
// subscriptions by logical query shape.
func Fingerprint(collection, role string, constraints []Constraint) string {
	var sb strings.Builder
	sb.WriteString(collection)
	sb.WriteByte('|')
	sb.WriteString(role)
	for _, c := range constraints {
		sb.WriteByte('|')
		sb.WriteString(c.Field)
		sb.WriteByte(':')
		sb.WriteString(string(c.Op))
		sb.WriteByte(':')
		if c.Op == OpIn {
			sb.WriteString(strings.Join(c.Values, ","))
		} else {
			sb.WriteString(fmt.Sprintf("%v", c.Value))
		}
	}
	return sb.String()
}
