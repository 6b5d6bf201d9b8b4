// Package schedule implements the CSV exchange format used to move activity
// schedules in and out of the dashboard. Encoding always emits the full header
// set; decoding tolerates quoted fields, doubled quotes, and CRLF terminators,
// and mints ids for rows that arrive without one.
package schedule

import (
	"fmt"
	"sort"
	"strings"

	"github.com/google/uuid"

	"fieldops/internal/types"
)

// Header is the canonical column order for the exchange format. Export always
// emits exactly these columns; import matches them by trimmed name.
var Header = []string{
	"id", "promoterId", "date", "time", "community",
	"objective", "status", "place", "notes",
}

// requiredColumns must be present in an imported header row.
var requiredColumns = []string{"promoterId", "date", "objective"}

// SchemaError reports an import whose header row is missing required columns.
// Nothing from such a file is ever applied.
type SchemaError struct {
	Missing []string
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("schedule: missing required columns: %s", strings.Join(e.Missing, ", "))
}

// =============================================================================
// ENCODE
// =============================================================================

// Encode renders activities as a schedule CSV blob, header row first.
func Encode(activities []types.Activity) string {
	var b strings.Builder
	writeRecord(&b, Header)
	for _, a := range activities {
		writeRecord(&b, []string{
			a.ID,
			a.PromoterID,
			a.Date,
			a.Time,
			a.Community,
			a.Objective,
			string(a.Status),
			a.Place,
			flattenNotes(a.Notes),
		})
	}
	return b.String()
}

func writeRecord(b *strings.Builder, fields []string) {
	for i, f := range fields {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(quoteField(f))
	}
	b.WriteByte('\n')
}

// quoteField wraps a field in quotes (doubling internal quotes) only when it
// contains a comma, quote, or newline.
func quoteField(f string) string {
	if !strings.ContainsAny(f, ",\"\n\r") {
		return f
	}
	return `"` + strings.ReplaceAll(f, `"`, `""`) + `"`
}

// flattenNotes joins note texts so the trail survives a round trip through a
// spreadsheet as a single cell.
func flattenNotes(notes []types.ObservationNote) string {
	if len(notes) == 0 {
		return ""
	}
	parts := make([]string, 0, len(notes))
	for _, n := range notes {
		parts = append(parts, n.Text)
	}
	return strings.Join(parts, "\n")
}

// =============================================================================
// DECODE
// =============================================================================

// Decode parses a schedule CSV blob into activities. The header row is
// matched by exact trimmed column name; unknown columns are ignored, missing
// optional columns default to empty, a missing or empty status defaults to
// Programado, and rows without an id get a freshly minted one. A non-empty
// notes cell becomes a single freshly minted note holding the cell text:
// note ids, authors, and timestamps do not survive the format, only the
// flattened text does.
func Decode(input string) ([]types.Activity, error) {
	records := scan(input)
	if len(records) == 0 {
		return nil, &SchemaError{Missing: append([]string(nil), requiredColumns...)}
	}

	index := make(map[string]int, len(records[0]))
	for i, name := range records[0] {
		index[strings.TrimSpace(name)] = i
	}

	var missing []string
	for _, col := range requiredColumns {
		if _, ok := index[col]; !ok {
			missing = append(missing, col)
		}
	}
	if len(missing) > 0 {
		sort.Strings(missing)
		return nil, &SchemaError{Missing: missing}
	}

	// Field values are kept verbatim so encode/decode round-trips losslessly;
	// only header names are trimmed.
	field := func(row []string, name string) string {
		i, ok := index[name]
		if !ok || i >= len(row) {
			return ""
		}
		return row[i]
	}

	activities := make([]types.Activity, 0, len(records)-1)
	for _, row := range records[1:] {
		a := types.Activity{
			ID:         field(row, "id"),
			PromoterID: field(row, "promoterId"),
			Date:       field(row, "date"),
			Time:       field(row, "time"),
			Community:  field(row, "community"),
			Objective:  field(row, "objective"),
			Status:     types.Status(field(row, "status")),
			Place:      field(row, "place"),
		}
		if a.ID == "" {
			a.ID = MintID()
		}
		if a.Status == "" {
			a.Status = types.StatusScheduled
		}
		if text := field(row, "notes"); text != "" {
			a.Notes = []types.ObservationNote{{ID: MintID(), Text: text}}
		}
		activities = append(activities, a)
	}
	return activities, nil
}

// MintID returns a fresh identifier for rows and notes created client-side.
// Ids only need to be unique until the remote store assigns canonical ones.
func MintID() string {
	return uuid.NewString()
}

// scan is a single-pass tokenizer for quoted CSV. A quote toggles quoting
// state unless it is the first of a doubled pair inside quotes, which
// collapses to one literal quote. Commas and line terminators only delimit
// outside quotes; \r\n counts as one terminator. The final field and row are
// flushed even without a trailing terminator, and rows whose every field is
// blank after trimming are dropped.
func scan(input string) [][]string {
	var (
		records  [][]string
		row      []string
		field    strings.Builder
		inQuotes bool
	)

	endField := func() {
		row = append(row, field.String())
		field.Reset()
	}
	endRow := func() {
		endField()
		for _, f := range row {
			if strings.TrimSpace(f) != "" {
				records = append(records, row)
				break
			}
		}
		row = nil
	}

	for i := 0; i < len(input); i++ {
		c := input[i]
		switch {
		case c == '"':
			if inQuotes && i+1 < len(input) && input[i+1] == '"' {
				field.WriteByte('"')
				i++
			} else {
				inQuotes = !inQuotes
			}
		case c == ',' && !inQuotes:
			endField()
		case (c == '\n' || c == '\r') && !inQuotes:
			if c == '\r' && i+1 < len(input) && input[i+1] == '\n' {
				i++
			}
			endRow()
		default:
			field.WriteByte(c)
		}
	}
	if field.Len() > 0 || len(row) > 0 {
		endRow()
	}
	return records
}
