package journal

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// MaxListLimit bounds how many trades one List call returns
const MaxListLimit = 10000

// Filter narrows List queries. Zero values match everything.
type Filter struct {
	From   time.Time // inclusive
	To     time.Time // inclusive
	Setup  string
	Symbol string
	Limit  int
}

// ParseFilter reads from, to, setup, symbol and limit query parameters.
// Dates are YYYY-MM-DD or RFC3339; a date-only "to" covers that whole day.
func ParseFilter(q url.Values) (Filter, error) {
	var f Filter

	if raw := strings.TrimSpace(q.Get("from")); raw != "" {
		t, _, err := parseFilterDate(raw)
		if err != nil {
			return Filter{}, fmt.Errorf("invalid from: %w", err)
		}
		f.From = t
	}

	if raw := strings.TrimSpace(q.Get("to")); raw != "" {
		t, dateOnly, err := parseFilterDate(raw)
		if err != nil {
			return Filter{}, fmt.Errorf("invalid to: %w", err)
		}
		if dateOnly {
			t = t.Add(24*time.Hour - time.Second)
		}
		f.To = t
	}

	if !f.From.IsZero() && !f.To.IsZero() && f.To.Before(f.From) {
		return Filter{}, fmt.Errorf("to must not be before from")
	}

	f.Setup = strings.TrimSpace(q.Get("setup"))
	f.Symbol = normalizeSymbol(q.Get("symbol"))

	if raw := strings.TrimSpace(q.Get("limit")); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil || limit < 0 {
			return Filter{}, fmt.Errorf("invalid limit %q", raw)
		}
		f.Limit = limit
	}
	if f.Limit > MaxListLimit {
		f.Limit = MaxListLimit
	}

	return f, nil
}

func parseFilterDate(raw string) (time.Time, bool, error) {
	if t, err := time.ParseInLocation("2006-01-02", raw, time.UTC); err == nil {
		return t, true, nil
	}
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return time.Time{}, false, fmt.Errorf("expected YYYY-MM-DD or RFC3339, got %q", raw)
	}
	return t.UTC(), false, nil
}

// where renders the filter as a SQL condition over the trades table
func (f Filter) where() (string, []interface{}) {
	var clauses []string
	var args []interface{}

	if !f.From.IsZero() {
		clauses = append(clauses, "traded_at >= ?")
		args = append(args, f.From.Unix())
	}
	if !f.To.IsZero() {
		clauses = append(clauses, "traded_at <= ?")
		args = append(args, f.To.Unix())
	}
	if f.Setup != "" {
		clauses = append(clauses, "setup = ?")
		args = append(args, f.Setup)
	}
	if f.Symbol != "" {
		clauses = append(clauses, "symbol = ?")
		args = append(args, f.Symbol)
	}

	if len(clauses) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(clauses, " AND "), args
}
