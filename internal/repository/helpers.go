package repository

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// legacyLayout is the timestamp format of rows written by the spreadsheet-era
// deployment. Those values carry no zone and are read as local time.
const legacyLayout = "2006-01-02 15:04:05"

// formatTime renders a timestamp for storage.
func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}

// formatNullableTime renders an optional timestamp; nil is an empty cell.
func formatNullableTime(t *time.Time) string {
	if t == nil {
		return ""
	}
	return formatTime(*t)
}

// parseTime accepts RFC 3339 and the legacy layout.
func parseTime(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t.UTC(), nil
	}
	t, err := time.ParseInLocation(legacyLayout, s, time.Local)
	if err != nil {
		return time.Time{}, fmt.Errorf("unrecognized timestamp %q", s)
	}
	return t.UTC(), nil
}

// parseNullableTime returns nil for empty or unparseable cells.
func parseNullableTime(s string) *time.Time {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	t, err := parseTime(s)
	if err != nil {
		return nil
	}
	return &t
}

// parseLenientTime returns the zero time for empty or unparseable cells.
func parseLenientTime(s string) time.Time {
	if t := parseNullableTime(s); t != nil {
		return *t
	}
	return time.Time{}
}

// parseSeconds reads an integer cell. Spreadsheets may hand back "3600.0";
// empty and garbage cells read as zero.
func parseSeconds(s string) int64 {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0
	}
	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		return n
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return int64(f)
	}
	return 0
}

func formatSeconds(n int64) string {
	return strconv.FormatInt(n, 10)
}

// boolToCell stores true as "1" and false as an empty cell.
func boolToCell(b bool) string {
	if b {
		return "1"
	}
	return ""
}

func cellToBool(s string) bool {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "1", "true", "yes":
		return true
	}
	return false
}
