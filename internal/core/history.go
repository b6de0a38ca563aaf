package core

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// DefaultHistorySize is the number of reload records kept.
const DefaultHistorySize = 20

// ReloadRecord is one entry of the reload history.
type ReloadRecord struct {
	ID         uuid.UUID `json:"id"`
	At         time.Time `json:"at"`
	Source     string    `json:"source"`
	Trigger    string    `json:"trigger"`
	IPAddress  string    `json:"ip_address,omitempty"`
	Applied    bool      `json:"applied"`
	Rows       int       `json:"rows"`
	DurationMS int64     `json:"duration_ms"`
	Error      string    `json:"error,omitempty"`
	// Malformed marks input that was fetched but had no header and data
	// rows. Such a reload leaves the state untouched.
	Malformed bool `json:"malformed,omitempty"`
}

// History is a fixed-size ring of reload records, safe for concurrent use.
type History struct {
	mu      sync.Mutex
	entries []ReloadRecord
	next    int
	full    bool
}

// NewHistory creates a history keeping the last size records.
func NewHistory(size int) *History {
	if size <= 0 {
		size = DefaultHistorySize
	}
	return &History{entries: make([]ReloadRecord, size)}
}

// Add stores rec, evicting the oldest record when full.
func (h *History) Add(rec ReloadRecord) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.entries[h.next] = rec
	h.next = (h.next + 1) % len(h.entries)
	if h.next == 0 {
		h.full = true
	}
}

// List returns the records, newest first.
func (h *History) List() []ReloadRecord {
	h.mu.Lock()
	defer h.mu.Unlock()

	n := h.next
	if h.full {
		n = len(h.entries)
	}
	out := make([]ReloadRecord, 0, n)
	for i := 1; i <= n; i++ {
		idx := (h.next - i + len(h.entries)) % len(h.entries)
		out = append(out, h.entries[idx])
	}
	return out
}

// Last returns the newest record.
func (h *History) Last() (ReloadRecord, bool) {
	list := h.List()
	if len(list) == 0 {
		return ReloadRecord{}, false
	}
	return list[0], true
}
