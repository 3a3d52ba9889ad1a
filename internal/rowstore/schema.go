package rowstore

import (
	"fmt"
	"slices"
)

type Table string

const (
	TableUsers    Table = "users"
	TableTasks    Table = "tasks"
	TableSessions Table = "sessions"
	TableLogins   Table = "logins"
)

// TableSchema fixes the column order of a table. Key is the column every
// backend keeps unique.
type TableSchema struct {
	Name    Table
	Key     string
	Columns []string
}

func (s TableSchema) HasColumn(col string) bool {
	return slices.Contains(s.Columns, col)
}

var schemas = []TableSchema{
	{
		Name:    TableUsers,
		Key:     "user_email",
		Columns: []string{"user_email", "name", "role", "created_at"},
	},
	{
		Name: TableTasks,
		Key:  "task_id",
		Columns: []string{
			"task_id", "title", "description", "assignee_email", "created_at", "due_at",
			"status", "total_time_seconds", "created_by", "closed_by", "closed_at",
		},
	},
	{
		Name: TableSessions,
		Key:  "session_id",
		Columns: []string{
			"session_id", "task_id", "user_email", "start_at", "pause_at", "resume_at",
			"end_at", "duration_seconds", "kind", "automatic",
		},
	},
	{
		Name:    TableLogins,
		Key:     "login_id",
		Columns: []string{"login_id", "user_email", "login_at", "logout_at", "total_logged_seconds"},
	},
}

// legacyColumns maps header labels of spreadsheets provisioned by the first
// deployment onto current column names. Positions are unchanged.
var legacyColumns = map[string]string{
	"prénom":        "name",
	"rôle":          "role",
	"titre":         "title",
	"assigné_email": "assignee_email",
	"due_datetime":  "due_at",
	"statut":        "status",
	"pause_type":    "kind",
}

// CanonicalColumn resolves a legacy header label to its column name.
func CanonicalColumn(label string) string {
	if c, ok := legacyColumns[label]; ok {
		return c
	}
	return label
}

// Tables lists every table in provisioning order.
func Tables() []Table {
	out := make([]Table, 0, len(schemas))
	for _, s := range schemas {
		out = append(out, s.Name)
	}
	return out
}

// SchemaFor returns the schema of a table.
func SchemaFor(t Table) (TableSchema, error) {
	for _, s := range schemas {
		if s.Name == t {
			return s, nil
		}
	}
	return TableSchema{}, fmt.Errorf("table %q: %w", t, ErrUnknownTable)
}
