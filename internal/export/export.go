// Package export renders search results as delimited tabular data.
package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/jonathan/placement-engine/internal/types"
)

// Rows writes records as CSV: a header row from the first record's field
// names, then one row per record. Values containing the delimiter are quoted
// by the encoder. An empty input writes nothing.
func Rows(w io.Writer, records []types.Record) error {
	if len(records) == 0 {
		return nil
	}

	cw := csv.NewWriter(w)
	header := records[0].FieldNames()
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}

	for _, r := range records {
		row := make([]string, len(header))
		for i, field := range header {
			val, ok := r.Field(field)
			if !ok {
				continue
			}
			row[i] = formatValue(val)
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("failed to write row: %w", err)
		}
	}

	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("failed to flush csv: %w", err)
	}
	return nil
}

// ResultRows writes a result set's records, ignoring the ephemeral derived
// fields.
func ResultRows(w io.Writer, results []types.SearchResult) error {
	records := make([]types.Record, 0, len(results))
	for _, res := range results {
		records = append(records, res.Record)
	}
	return Rows(w, records)
}

func formatValue(val any) string {
	switch v := val.(type) {
	case string:
		return v
	case int:
		return strconv.Itoa(v)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case []string:
		return strings.Join(v, "; ")
	case time.Time:
		return v.Format(time.RFC3339)
	}
	return fmt.Sprintf("%v", val)
}
