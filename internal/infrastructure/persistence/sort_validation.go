package persistence

import (
	"strings"

	"gorm.io/gorm/clause"
)

// sortSpec whitelists the sort keys a list endpoint accepts. Keys are the
// names clients send, values the columns they sort on. Anything else falls
// back to the default column, so user input never reaches ORDER BY.
type sortSpec struct {
	columns  map[string]string
	fallback string
}

var (
	tenantSort = sortSpec{
		columns: map[string]string{
			"created_at":      "created_at",
			"updated_at":      "updated_at",
			"name":            "name",
			"unit_number":     "unit_number",
			"rent_amount":     "rent_amount",
			"amount_due":      "amount_due",
			"due_day":         "due_day",
			"status":          "status",
			"last_payment_at": "last_payment_at",
		},
		fallback: "created_at",
	}

	paymentSort = sortSpec{
		columns: map[string]string{
			"created_at":   "created_at",
			"amount":       "amount",
			"paid_at":      "paid_at",
			"type":         "payment_type",
			"payment_type": "payment_type",
			"status":       "status",
		},
		fallback: "paid_at",
	}

	archiveSort = sortSpec{
		columns: map[string]string{
			"archived_at": "archived_at",
			"archived_by": "archived_by",
		},
		fallback: "archived_at",
	}
)

// column resolves a client sort key
func (s sortSpec) column(key string) string {
	if col, ok := s.columns[strings.ToLower(strings.TrimSpace(key))]; ok {
		return col
	}
	return s.fallback
}

// order builds ORDER BY <column> <dir>, id <dir>. The id tie-break keeps
// pages stable when many rows share a value, e.g. amount_due = 0.
func (s sortSpec) order(key, dir string) clause.OrderBy {
	desc := !isAscending(dir)
	return clause.OrderBy{Columns: []clause.OrderByColumn{
		{Column: clause.Column{Name: s.column(key)}, Desc: desc},
		{Column: clause.Column{Name: "id"}, Desc: desc},
	}}
}

// isAscending accepts "asc" in any case; everything else sorts descending
func isAscending(dir string) bool {
	return strings.EqualFold(strings.TrimSpace(dir), "asc")
}
