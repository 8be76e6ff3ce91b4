package executor

import (
	"sync"
	"time"

	"github.com/user/webpilot/internal/config"
	apperrors "github.com/user/webpilot/internal/errors"
)

// HistoryStats tracks history store bookkeeping
type HistoryStats struct {
	Recorded     int64 `json:"recorded"`
	Evicted      int64 `json:"evicted"`
	Size         int   `json:"size"`
	MaxSize      int   `json:"max_size"`
	Correlations int   `json:"correlations"`
}

// historyEntry is one recorded result in the global insertion-order list
type historyEntry struct {
	correlationID string
	result        *Result
	recordedAt    time.Time
	prev, next    *historyEntry
}

// History is a bounded, insertion-ordered store of execution results
// keyed by correlation id. The capacity bounds the whole store, not any
// single correlation: when it is exceeded the globally oldest entries
// are evicted first, whichever correlation they belong to.
type History struct {
	maxSize    int
	size       int
	byID       map[string][]*historyEntry
	head, tail *historyEntry // head is the oldest entry
	mu         sync.RWMutex
	stats      HistoryStats
}

// NewHistory creates a history store with the given capacity
func NewHistory(maxSize int) *History {
	if maxSize <= 0 {
		maxSize = config.DefaultMaxHistorySize
	}
	return &History{
		maxSize: maxSize,
		byID:    make(map[string][]*historyEntry),
		stats:   HistoryStats{MaxSize: maxSize},
	}
}

// Record appends a result under a correlation id, evicting the oldest
// entries if the store is over capacity
func (h *History) Record(correlationID string, result *Result) {
	if correlationID == "" || result == nil {
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	entry := &historyEntry{
		correlationID: correlationID,
		result:        result,
		recordedAt:    time.Now(),
	}

	h.byID[correlationID] = append(h.byID[correlationID], entry)
	h.appendEntry(entry)
	h.size++
	h.stats.Recorded++

	for h.size > h.maxSize {
		h.evictOldest()
	}

	h.stats.Size = h.size
	h.stats.Correlations = len(h.byID)
}

// ForCorrelation returns the retained results for a correlation id in
// execution order. Unknown ids yield an empty slice.
func (h *History) ForCorrelation(correlationID string) ([]*Result, error) {
	if correlationID == "" {
		return nil, apperrors.NewValidationError("correlation id must not be empty")
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	entries := h.byID[correlationID]
	results := make([]*Result, 0, len(entries))
	for _, entry := range entries {
		results = append(results, entry.result)
	}
	return results, nil
}

// Size returns the current number of retained results
func (h *History) Size() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.size
}

// Stats returns a copy of the store statistics
func (h *History) Stats() HistoryStats {
	h.mu.RLock()
	defer h.mu.RUnlock()

	stats := h.stats
	stats.Size = h.size
	stats.Correlations = len(h.byID)
	return stats
}

// Clear drops all retained results
func (h *History) Clear() {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.byID = make(map[string][]*historyEntry)
	h.head = nil
	h.tail = nil
	h.size = 0
	h.stats.Size = 0
	h.stats.Correlations = 0
}

// appendEntry adds an entry at the tail of the global list
func (h *History) appendEntry(entry *historyEntry) {
	entry.prev = h.tail
	entry.next = nil

	if h.tail != nil {
		h.tail.next = entry
	}
	h.tail = entry

	if h.head == nil {
		h.head = entry
	}
}

// evictOldest removes the head of the global list. Per-correlation
// slices append in global order, so the head is always the first entry
// of its correlation.
func (h *History) evictOldest() {
	entry := h.head
	if entry == nil {
		return
	}

	h.head = entry.next
	if h.head != nil {
		h.head.prev = nil
	} else {
		h.tail = nil
	}

	entries := h.byID[entry.correlationID]
	if len(entries) <= 1 {
		delete(h.byID, entry.correlationID)
	} else {
		h.byID[entry.correlationID] = entries[1:]
	}

	h.size--
	h.stats.Evicted++
}
