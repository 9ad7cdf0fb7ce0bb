package history

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	model "github.com/hireprep/hireprep/backend/internal/model/history"
)

// Sort keys accepted by Controls.SortKey.
const (
	SortByCreatedAt = "createdAt"
	SortByScore     = "score"
	SortByFeedback  = "feedback"
	SortByID        = "id"
)

// Controls describes a projection over a history snapshot.
type Controls struct {
	SearchTerm    string
	SortKey       string
	SortDirection string // "asc" or "desc"
	LatestOnly    bool
}

// Project is a pure function of (records, controls): filter, stable sort,
// optional truncation to the single top record under the current sort.
// "Latest" is deliberately relative to whatever the user is sorting by,
// not forced to timestamp-descending.
func Project(records []model.SessionRecord, controls Controls) []model.SessionRecord {
	out := make([]model.SessionRecord, 0, len(records))
	term := strings.ToLower(strings.TrimSpace(controls.SearchTerm))
	for _, rec := range records {
		if term == "" || matchesSearch(rec, term) {
			out = append(out, rec.Clone())
		}
	}

	key := controls.SortKey
	if key == "" {
		key = SortByCreatedAt
	}
	desc := strings.EqualFold(controls.SortDirection, "desc") || controls.SortDirection == ""

	sort.SliceStable(out, func(i, j int) bool {
		// Absent values (nil score, nil timestamp sentinel) rank last
		// regardless of direction.
		ai, aj := absentUnderKey(out[i], key), absentUnderKey(out[j], key)
		if ai != aj {
			return !ai
		}
		c := compareRecords(out[i], out[j], key)
		if c == 0 {
			// deterministic tie break
			if desc {
				return out[i].ID > out[j].ID
			}
			return out[i].ID < out[j].ID
		}
		if desc {
			return c > 0
		}
		return c < 0
	})

	if controls.LatestOnly && len(out) > 1 {
		out = out[:1]
	}
	return out
}

// matchesSearch tests a case-insensitive substring match against every
// stringified field: score, formatted date, feedback, and the
// feature-specific extras.
func matchesSearch(rec model.SessionRecord, term string) bool {
	for _, field := range searchFields(rec) {
		if strings.Contains(strings.ToLower(field), term) {
			return true
		}
	}
	return false
}

func searchFields(rec model.SessionRecord) []string {
	fields := []string{rec.ID, rec.Feedback, formatScore(rec.Score), FormatTimestamp(rec.CreatedAt)}
	for _, v := range rec.Extra {
		fields = append(fields, fmt.Sprintf("%v", v))
	}
	return fields
}

// compareRecords returns -1, 0 or 1 ordering a before/equal/after b under
// the given key. Nil scores and nil timestamps compare below every present
// value.
func compareRecords(a, b model.SessionRecord, key string) int {
	switch key {
	case SortByScore:
		return compareFloatPtr(a.Score, b.Score)
	case SortByFeedback:
		return strings.Compare(strings.ToLower(a.Feedback), strings.ToLower(b.Feedback))
	case SortByID:
		return strings.Compare(a.ID, b.ID)
	default: // SortByCreatedAt
		return compareTimePtr(a.CreatedAt, b.CreatedAt)
	}
}

func absentUnderKey(rec model.SessionRecord, key string) bool {
	switch key {
	case SortByScore:
		return rec.Score == nil
	case SortByCreatedAt:
		return rec.CreatedAt == nil
	default:
		return false
	}
}

func compareFloatPtr(a, b *float64) int {
	switch {
	case a == nil && b == nil:
		return 0
	case a == nil:
		return -1
	case b == nil:
		return 1
	case *a < *b:
		return -1
	case *a > *b:
		return 1
	default:
		return 0
	}
}

// compareTimePtr compares by the underlying instant regardless of the
// original wire representation; nil sentinels rank below any real time.
func compareTimePtr(a, b *time.Time) int {
	switch {
	case a == nil && b == nil:
		return 0
	case a == nil:
		return -1
	case b == nil:
		return 1
	case a.Before(*b):
		return -1
	case a.After(*b):
		return 1
	default:
		return 0
	}
}

func formatScore(score *float64) string {
	if score == nil {
		return ""
	}
	return strconv.FormatFloat(*score, 'f', -1, 64)
}

// FormatTimestamp renders a timestamp for display and export; the nil
// sentinel renders empty.
func FormatTimestamp(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}

// Export columns understood by ToDelimitedText. Unknown column names are
// looked up in Extra.
const (
	ColID        = "id"
	ColScore     = "score"
	ColFeedback  = "feedback"
	ColCreatedAt = "createdAt"
)

// ToDelimitedText renders one header row plus one row per record. Values
// are sanitized so no cell can shift column alignment: internal newlines
// become spaces, and any value containing the delimiter or a quote is
// wrapped in double quotes with inner quotes doubled.
func ToDelimitedText(records []model.SessionRecord, columns []string, delimiter string) string {
	if delimiter == "" {
		delimiter = ","
	}

	var b strings.Builder
	for i, col := range columns {
		if i > 0 {
			b.WriteString(delimiter)
		}
		b.WriteString(sanitizeCell(col, delimiter))
	}
	b.WriteString("\n")

	for _, rec := range records {
		for i, col := range columns {
			if i > 0 {
				b.WriteString(delimiter)
			}
			b.WriteString(sanitizeCell(cellValue(rec, col), delimiter))
		}
		b.WriteString("\n")
	}
	return b.String()
}

func cellValue(rec model.SessionRecord, column string) string {
	switch column {
	case ColID:
		return rec.ID
	case ColScore:
		return formatScore(rec.Score)
	case ColFeedback:
		return rec.Feedback
	case ColCreatedAt:
		return FormatTimestamp(rec.CreatedAt)
	default:
		if v, ok := rec.Extra[column]; ok {
			return fmt.Sprintf("%v", v)
		}
		return ""
	}
}

func sanitizeCell(value, delimiter string) string {
	value = strings.NewReplacer("\r\n", " ", "\n", " ", "\r", " ").Replace(value)
	if strings.Contains(value, delimiter) || strings.Contains(value, `"`) {
		value = `"` + strings.ReplaceAll(value, `"`, `""`) + `"`
	}
	return value
}
