package domain

import "github.com/google/uuid"

// Identifier prefixes keep the record type visible in the raw store.
const (
	prefixTask    = "T"
	prefixSession = "S"
	prefixPause   = "P"
	prefixLogin   = "L"
)

func newID(prefix string) string {
	return prefix + "-" + uuid.New().String()
}

func NewTaskID() string    { return newID(prefixTask) }
func NewSessionID() string { return newID(prefixSession) }
func NewPauseID() string   { return newID(prefixPause) }
func NewLoginID() string   { return newID(prefixLogin) }
