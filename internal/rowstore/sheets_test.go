package rowstore_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"testing"

	"github.com/andihoo/chrono/internal/rowstore"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"
)

const fakeSpreadsheetID = "sheet-1"

// fakeSheets is an in-memory stand-in for the subset of the Sheets v4 REST
// API the store uses.
type fakeSheets struct {
	mu     sync.Mutex
	order  []string
	grid   map[string][][]string
	fail   bool
	writes int
}

func newFakeSheets() *fakeSheets {
	return &fakeSheets{grid: make(map[string][][]string)}
}

func (f *fakeSheets) addSheet(title string, rows ...[]string) {
	if _, ok := f.grid[title]; !ok {
		f.order = append(f.order, title)
	}
	f.grid[title] = rows
}

func (f *fakeSheets) rows(title string) [][]string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.grid[title]
}

func newFakeSheetsStore(t *testing.T) (*fakeSheets, *rowstore.SheetsStore) {
	t.Helper()
	fake := newFakeSheets()
	srv := httptest.NewServer(fake)
	t.Cleanup(srv.Close)

	store, err := rowstore.NewSheetsStore(context.Background(), rowstore.SheetsConfig{
		SpreadsheetID: fakeSpreadsheetID,
		ClientOptions: []option.ClientOption{
			option.WithHTTPClient(srv.Client()),
			option.WithEndpoint(srv.URL + "/"),
		},
	})
	require.NoError(t, err)
	return fake, store
}

func (f *fakeSheets) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.fail {
		http.Error(w, `{"error":{"code":503,"message":"backend down"}}`, http.StatusServiceUnavailable)
		return
	}

	path := strings.TrimPrefix(r.URL.Path, "/v4/spreadsheets/"+fakeSpreadsheetID)
	switch {
	case path == "" && r.Method == http.MethodGet:
		doc := &sheets.Spreadsheet{SpreadsheetId: fakeSpreadsheetID}
		for _, title := range f.order {
			doc.Sheets = append(doc.Sheets, &sheets.Sheet{Properties: &sheets.SheetProperties{Title: title}})
		}
		writeFakeJSON(w, doc)

	case path == ":batchUpdate":
		var req sheets.BatchUpdateSpreadsheetRequest
		_ = json.NewDecoder(r.Body).Decode(&req)
		for _, rq := range req.Requests {
			if rq.AddSheet != nil {
				f.addSheet(rq.AddSheet.Properties.Title)
			}
		}
		f.writes++
		writeFakeJSON(w, &sheets.BatchUpdateSpreadsheetResponse{SpreadsheetId: fakeSpreadsheetID})

	case path == "/values:batchUpdate":
		var req sheets.BatchUpdateValuesRequest
		_ = json.NewDecoder(r.Body).Decode(&req)
		for _, vr := range req.Data {
			title, ref := splitRange(vr.Range)
			col, row := parseCell(ref)
			f.setCell(title, row, col, toStrings(vr.Values[0])[0])
		}
		f.writes++
		writeFakeJSON(w, &sheets.BatchUpdateValuesResponse{SpreadsheetId: fakeSpreadsheetID})

	case strings.HasPrefix(path, "/values/"):
		rng := strings.TrimPrefix(path, "/values/")
		if strings.HasSuffix(rng, ":append") {
			title, _ := splitRange(strings.TrimSuffix(rng, ":append"))
			var vr sheets.ValueRange
			_ = json.NewDecoder(r.Body).Decode(&vr)
			for _, row := range vr.Values {
				f.grid[title] = append(f.grid[title], toStrings(row))
			}
			f.writes++
			writeFakeJSON(w, &sheets.AppendValuesResponse{SpreadsheetId: fakeSpreadsheetID})
			return
		}
		title, ref := splitRange(rng)
		if _, ok := f.grid[title]; !ok {
			http.Error(w, `{"error":{"code":400,"message":"Unable to parse range"}}`, http.StatusBadRequest)
			return
		}
		if r.Method == http.MethodPut {
			var vr sheets.ValueRange
			_ = json.NewDecoder(r.Body).Decode(&vr)
			_, row := parseCell(ref)
			for i, cell := range toStrings(vr.Values[0]) {
				f.setCell(title, row, i, cell)
			}
			f.writes++
			writeFakeJSON(w, &sheets.UpdateValuesResponse{SpreadsheetId: fakeSpreadsheetID})
			return
		}
		resp := &sheets.ValueRange{Range: rng, MajorDimension: "ROWS"}
		rows := f.grid[title]
		if ref == "1:1" && len(rows) > 0 {
			rows = rows[:1]
		}
		for _, row := range rows {
			resp.Values = append(resp.Values, toCells(row))
		}
		writeFakeJSON(w, resp)

	default:
		http.NotFound(w, r)
	}
}

func (f *fakeSheets) setCell(title string, row, col int, v string) {
	g := f.grid[title]
	for len(g) < row {
		g = append(g, nil)
	}
	for len(g[row-1]) <= col {
		g[row-1] = append(g[row-1], "")
	}
	g[row-1][col] = v
	f.grid[title] = g
}

func writeFakeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}

func splitRange(rng string) (title, ref string) {
	i := strings.LastIndex(rng, "!")
	if i < 0 {
		title = rng
	} else {
		title, ref = rng[:i], rng[i+1:]
	}
	title = strings.TrimSuffix(strings.TrimPrefix(title, "'"), "'")
	return strings.ReplaceAll(title, "''", "'"), ref
}

// parseCell reads an A1 reference into a zero-based column and 1-based row.
func parseCell(ref string) (col, row int) {
	i := 0
	col = -1
	for i < len(ref) && ref[i] >= 'A' && ref[i] <= 'Z' {
		col = (col+1)*26 + int(ref[i]-'A')
		i++
	}
	row, _ = strconv.Atoi(ref[i:])
	if col < 0 {
		col = 0
	}
	return col, row
}

func toStrings(cells []interface{}) []string {
	out := make([]string, len(cells))
	for i, c := range cells {
		if s, ok := c.(string); ok {
			out[i] = s
		}
	}
	return out
}

func toCells(values []string) []interface{} {
	out := make([]interface{}, len(values))
	for i, v := range values {
		out[i] = v
	}
	return out
}

func TestSheetsStore_EnsureSchemaCreatesWorksheets(t *testing.T) {
	fake, store := newFakeSheetsStore(t)
	require.NoError(t, store.EnsureSchema(context.Background()))

	assert.Equal(t, []string{"Users", "Tâches", "Sessions", "Logins"}, fake.order)
	header := fake.rows("Tâches")[0]
	assert.Equal(t, "task_id", header[0])
	assert.Equal(t, "closed_at", header[len(header)-1])

	writes := fake.writes
	require.NoError(t, store.EnsureSchema(context.Background()))
	assert.Equal(t, writes, fake.writes, "a provisioned spreadsheet is left alone")
}

func TestSheetsStore_ReadsLegacyHeaders(t *testing.T) {
	fake, store := newFakeSheetsStore(t)
	fake.addSheet("Sessions",
		[]string{"session_id", "task_id", "user_email", "start_at", "pause_at", "resume_at", "end_at", "duration_seconds", "pause_type"},
		[]string{"S-1", "GLOBAL_PAUSE", "a@x.io", "2025-01-02 09:00:00", "", "", "2025-01-02 10:00:00", "3600", "auto_stop"},
		[]string{},
		[]string{"S-2", "T-1", "a@x.io", "2025-01-02 10:00:00"},
	)

	rows, err := store.FetchAll(context.Background(), rowstore.TableSessions)
	require.NoError(t, err)
	require.Len(t, rows, 2, "blank rows are skipped")
	assert.Equal(t, "auto_stop", rows[0]["kind"])
	assert.Equal(t, "", rows[1]["pause_at"], "short rows are padded")

	// Updates address the sheet row, blank rows included.
	require.NoError(t, store.UpdateByKey(context.Background(), rowstore.TableSessions, "session_id", "S-2",
		rowstore.Row{"pause_at": "p", "automatic": ""}))
	assert.Equal(t, "p", fake.rows("Sessions")[3][4])
}

func TestSheetsStore_EnsureSchemaRewritesLegacyHeaderOnly(t *testing.T) {
	fake, store := newFakeSheetsStore(t)
	fake.addSheet("Users",
		[]string{"user_email", "prénom", "rôle", "created_at"},
		[]string{"a@x.io", "Ann", "admin", "2025-01-01 08:00:00"},
	)

	require.NoError(t, store.EnsureSchema(context.Background()))

	users := fake.rows("Users")
	assert.Equal(t, []string{"user_email", "name", "role", "created_at"}, users[0])
	assert.Equal(t, "Ann", users[1][1])
}

func TestSheetsStore_Unavailable(t *testing.T) {
	fake, store := newFakeSheetsStore(t)
	require.NoError(t, store.EnsureSchema(context.Background()))

	fake.mu.Lock()
	fake.fail = true
	fake.mu.Unlock()

	_, err := store.FetchAll(context.Background(), rowstore.TableUsers)
	require.ErrorIs(t, err, rowstore.ErrUnavailable)

	err = store.Append(context.Background(), rowstore.TableUsers, rowstore.Row{"user_email": "a@x.io"})
	require.ErrorIs(t, err, rowstore.ErrUnavailable)
}

func TestNewSheetsStore_RequiresConfiguration(t *testing.T) {
	_, err := rowstore.NewSheetsStore(context.Background(), rowstore.SheetsConfig{})
	require.Error(t, err)

	_, err = rowstore.NewSheetsStore(context.Background(), rowstore.SheetsConfig{SpreadsheetID: "x"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no credentials")

	_, err = rowstore.NewSheetsStore(context.Background(), rowstore.SheetsConfig{
		SpreadsheetID:   "x",
		CredentialsJSON: `{"type":"authorized_user"}`,
	})
	require.Error(t, err)
}
