package durations

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

const zeroHMS = "00:00:00"

// FormatHMS renders seconds as HH:MM:SS. Hours are not capped at 24.
func FormatHMS(seconds int64) string {
	if seconds < 0 {
		return zeroHMS
	}
	h := seconds / 3600
	m := (seconds % 3600) / 60
	s := seconds % 60
	return fmt.Sprintf("%02d:%02d:%02d", h, m, s)
}

// SecondsToHMS accepts whatever a row store hands back for a duration cell
// and renders it as HH:MM:SS. Negative, non-numeric or non-finite input
// yields "00:00:00"; fractional seconds are truncated.
func SecondsToHMS(v any) string {
	secs, ok := toSeconds(v)
	if !ok {
		return zeroHMS
	}
	return FormatHMS(secs)
}

func toSeconds(v any) (int64, bool) {
	switch n := v.(type) {
	case int:
		return int64(n), true
	case int32:
		return int64(n), true
	case int64:
		return n, true
	case uint:
		return int64(n), true
	case uint32:
		return int64(n), true
	case uint64:
		if n > math.MaxInt64 {
			return 0, false
		}
		return int64(n), true
	case float32:
		return floatSeconds(float64(n))
	case float64:
		return floatSeconds(n)
	case time.Duration:
		return int64(n / time.Second), true
	case string:
		s := strings.TrimSpace(n)
		if s == "" {
			return 0, false
		}
		if i, err := strconv.ParseInt(s, 10, 64); err == nil {
			return i, true
		}
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return 0, false
		}
		return floatSeconds(f)
	default:
		return 0, false
	}
}

func floatSeconds(f float64) (int64, bool) {
	if math.IsNaN(f) || math.IsInf(f, 0) || f > math.MaxInt64 {
		return 0, false
	}
	return int64(f), true
}
