package rowstore

import (
	"context"
	"errors"
	"fmt"
	"os"
	"slices"
	"strconv"
	"strings"
	"sync"

	"golang.org/x/oauth2/google"
	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"
)

// DefaultWorksheets are the worksheet titles the first deployment created.
var DefaultWorksheets = map[Table]string{
	TableUsers:    "Users",
	TableTasks:    "Tâches",
	TableSessions: "Sessions",
	TableLogins:   "Logins",
}

// SheetsConfig selects a spreadsheet and the service-account credentials
// used to reach it. Either CredentialsJSON or CredentialsFile is required
// unless ClientOptions already carry an authenticated HTTP client.
type SheetsConfig struct {
	SpreadsheetID   string
	CredentialsFile string
	CredentialsJSON string
	Worksheets      map[Table]string
	ClientOptions   []option.ClientOption
}

// SheetsStore keeps each table in one worksheet of a Google spreadsheet.
// Row 1 of every worksheet holds the column headers.
type SheetsStore struct {
	svc           *sheets.Service
	spreadsheetID string
	titles        map[Table]string

	// serializes read-then-write sequences issued by this process
	mu sync.Mutex
}

func NewSheetsStore(ctx context.Context, cfg SheetsConfig) (*SheetsStore, error) {
	if cfg.SpreadsheetID == "" {
		return nil, fmt.Errorf("sheets store: spreadsheet id is required")
	}

	var opts []option.ClientOption
	creds, err := loadCredentials(cfg)
	if err != nil {
		return nil, err
	}
	if creds != nil {
		jwtCfg, err := google.JWTConfigFromJSON(creds, sheets.SpreadsheetsScope)
		if err != nil {
			return nil, fmt.Errorf("parsing service account credentials: %w", err)
		}
		opts = append(opts, option.WithTokenSource(jwtCfg.TokenSource(ctx)))
	} else if len(cfg.ClientOptions) == 0 {
		return nil, fmt.Errorf("sheets store: no credentials configured")
	}
	opts = append(opts, cfg.ClientOptions...)

	svc, err := sheets.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("creating sheets client: %w: %w", ErrUnavailable, err)
	}

	titles := make(map[Table]string, len(DefaultWorksheets))
	for t, title := range DefaultWorksheets {
		titles[t] = title
	}
	for t, title := range cfg.Worksheets {
		if title != "" {
			titles[t] = title
		}
	}

	return &SheetsStore{svc: svc, spreadsheetID: cfg.SpreadsheetID, titles: titles}, nil
}

func loadCredentials(cfg SheetsConfig) ([]byte, error) {
	if cfg.CredentialsJSON != "" {
		return []byte(cfg.CredentialsJSON), nil
	}
	if cfg.CredentialsFile == "" {
		return nil, nil
	}
	data, err := os.ReadFile(cfg.CredentialsFile)
	if err != nil {
		return nil, fmt.Errorf("reading credentials file: %w", err)
	}
	return data, nil
}

// EnsureSchema adds missing worksheets and rewrites header rows that differ
// from the schema. Data rows are never touched.
func (s *SheetsStore) EnsureSchema(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, err := s.svc.Spreadsheets.Get(s.spreadsheetID).Context(ctx).Do()
	if err != nil {
		return unavailable("loading spreadsheet", err)
	}
	existing := make(map[string]bool, len(doc.Sheets))
	for _, sh := range doc.Sheets {
		if sh.Properties != nil {
			existing[sh.Properties.Title] = true
		}
	}

	var add []*sheets.Request
	for _, t := range Tables() {
		if title := s.titles[t]; !existing[title] {
			add = append(add, &sheets.Request{
				AddSheet: &sheets.AddSheetRequest{Properties: &sheets.SheetProperties{Title: title}},
			})
		}
	}
	if len(add) > 0 {
		req := &sheets.BatchUpdateSpreadsheetRequest{Requests: add}
		if _, err := s.svc.Spreadsheets.BatchUpdate(s.spreadsheetID, req).Context(ctx).Do(); err != nil {
			return unavailable("adding worksheets", err)
		}
	}

	for _, t := range Tables() {
		schema, _ := SchemaFor(t)
		title := s.titles[t]
		resp, err := s.svc.Spreadsheets.Values.Get(s.spreadsheetID, quoteTitle(title)+"!1:1").Context(ctx).Do()
		if err != nil {
			return unavailable("reading "+title+" header", err)
		}
		var header []string
		if len(resp.Values) > 0 {
			header = cellsToStrings(resp.Values[0])
		}
		if slices.Equal(header, schema.Columns) {
			continue
		}
		vr := &sheets.ValueRange{Values: [][]interface{}{stringsToCells(schema.Columns)}}
		if _, err := s.svc.Spreadsheets.Values.Update(s.spreadsheetID, quoteTitle(title)+"!A1", vr).
			ValueInputOption("RAW").Context(ctx).Do(); err != nil {
			return unavailable("writing "+title+" header", err)
		}
	}
	return nil
}

func (s *SheetsStore) FetchAll(ctx context.Context, table Table) ([]Row, error) {
	sheet, err := s.read(ctx, table)
	if err != nil {
		return nil, err
	}
	out := make([]Row, 0, len(sheet.rows))
	for _, r := range sheet.rows {
		if r == nil {
			continue
		}
		out = append(out, r)
	}
	return out, nil
}

func (s *SheetsStore) Append(ctx context.Context, table Table, row Row) error {
	schema, err := SchemaFor(table)
	if err != nil {
		return err
	}
	if err := checkAppend(schema, row); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	sheet, err := s.read(ctx, table)
	if err != nil {
		return err
	}
	if len(matchRows(sheet.present(), schema.Key, row[schema.Key])) > 0 {
		return fmt.Errorf("%s %s=%q: %w", table, schema.Key, row[schema.Key], ErrDuplicateKey)
	}

	cells := make([]string, max(len(sheet.header), len(schema.Columns)))
	for _, col := range schema.Columns {
		cells[sheet.columnIndex(col)] = row[col]
	}
	vr := &sheets.ValueRange{Values: [][]interface{}{stringsToCells(cells)}}
	_, err = s.svc.Spreadsheets.Values.Append(s.spreadsheetID, quoteTitle(sheet.title)+"!A1", vr).
		ValueInputOption("RAW").
		InsertDataOption("INSERT_ROWS").
		Context(ctx).Do()
	if err != nil {
		return unavailable("appending to "+sheet.title, err)
	}
	return nil
}

func (s *SheetsStore) UpdateByKey(ctx context.Context, table Table, keyColumn, keyValue string, fields Row) error {
	schema, err := SchemaFor(table)
	if err != nil {
		return err
	}
	if err := checkUpdate(schema, keyColumn, fields); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	sheet, err := s.read(ctx, table)
	if err != nil {
		return err
	}
	var hits []int
	for i, r := range sheet.rows {
		if r != nil && r[keyColumn] == keyValue {
			hits = append(hits, i)
		}
	}
	if err := checkMatchCount(schema, keyColumn, keyValue, len(hits)); err != nil {
		return err
	}
	if keyChangeConflicts(schema, sheet.present(), sheet.presentIndex(hits[0]), fields) {
		return fmt.Errorf("%s %s=%q: %w", table, schema.Key, fields[schema.Key], ErrDuplicateKey)
	}
	if len(fields) == 0 {
		return nil
	}

	// Data row i lives on sheet row i+2 (row 1 is the header).
	sheetRow := hits[0] + 2
	data := make([]*sheets.ValueRange, 0, len(fields))
	for _, col := range schema.Columns {
		v, ok := fields[col]
		if !ok {
			continue
		}
		ref := quoteTitle(sheet.title) + "!" + columnLetter(sheet.columnIndex(col)) + strconv.Itoa(sheetRow)
		data = append(data, &sheets.ValueRange{Range: ref, Values: [][]interface{}{{v}}})
	}
	req := &sheets.BatchUpdateValuesRequest{ValueInputOption: "RAW", Data: data}
	if _, err := s.svc.Spreadsheets.Values.BatchUpdate(s.spreadsheetID, req).Context(ctx).Do(); err != nil {
		return unavailable("updating "+sheet.title, err)
	}
	return nil
}

// worksheet is one table as read from the spreadsheet. rows keeps the sheet
// positions of data rows; blank rows are nil.
type worksheet struct {
	title  string
	schema TableSchema
	header []string
	rows   []Row
}

func (w *worksheet) present() []Row {
	out := make([]Row, 0, len(w.rows))
	for _, r := range w.rows {
		if r != nil {
			out = append(out, r)
		}
	}
	return out
}

// presentIndex converts a position in rows to a position in present().
func (w *worksheet) presentIndex(i int) int {
	n := 0
	for j := 0; j < i; j++ {
		if w.rows[j] != nil {
			n++
		}
	}
	return n
}

// columnIndex locates a column by header, falling back to its schema
// position for headers written before the column existed.
func (w *worksheet) columnIndex(col string) int {
	for i, h := range w.header {
		if h == col {
			return i
		}
	}
	for i, c := range w.schema.Columns {
		if c == col {
			return i
		}
	}
	return len(w.header)
}

func (s *SheetsStore) read(ctx context.Context, table Table) (*worksheet, error) {
	schema, err := SchemaFor(table)
	if err != nil {
		return nil, err
	}
	title := s.titles[table]
	resp, err := s.svc.Spreadsheets.Values.Get(s.spreadsheetID, quoteTitle(title)).Context(ctx).Do()
	if err != nil {
		return nil, unavailable("reading "+title, err)
	}

	w := &worksheet{title: title, schema: schema}
	if len(resp.Values) == 0 {
		w.header = schema.Columns
		return w, nil
	}
	for _, h := range cellsToStrings(resp.Values[0]) {
		w.header = append(w.header, CanonicalColumn(strings.TrimSpace(h)))
	}
	for _, raw := range resp.Values[1:] {
		cells := cellsToStrings(raw)
		if blank(cells) {
			w.rows = append(w.rows, nil)
			continue
		}
		row := make(Row, len(schema.Columns))
		for _, col := range schema.Columns {
			row[col] = ""
		}
		for i, h := range w.header {
			if i < len(cells) && schema.HasColumn(h) {
				row[h] = cells[i]
			}
		}
		w.rows = append(w.rows, row)
	}
	return w, nil
}

func unavailable(what string, err error) error {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%s: %w", what, err)
	}
	return fmt.Errorf("%s: %w: %w", what, ErrUnavailable, err)
}

func quoteTitle(title string) string {
	return "'" + strings.ReplaceAll(title, "'", "''") + "'"
}

// columnLetter converts a zero-based column index to A1 notation.
func columnLetter(i int) string {
	var b []byte
	for i >= 0 {
		b = append([]byte{byte('A' + i%26)}, b...)
		i = i/26 - 1
	}
	return string(b)
}

func cellsToStrings(cells []interface{}) []string {
	out := make([]string, len(cells))
	for i, c := range cells {
		if c != nil {
			out[i] = fmt.Sprint(c)
		}
	}
	return out
}

func stringsToCells(values []string) []interface{} {
	out := make([]interface{}, len(values))
	for i, v := range values {
		out[i] = v
	}
	return out
}

func blank(cells []string) bool {
	for _, c := range cells {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}
