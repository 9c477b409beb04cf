// Package asrun keeps the per-channel history of previously selected
// events, used to suppress immediate repeats.
package asrun

import "sync"

// Entry is the subset of a schedule event needed to detect repeats.
type Entry struct {
	EventID string
	EndMS   int64
}

// Log is a table of per-channel as-run histories keyed by channel id.
// Entries are kept in insertion order; callers only ever read a bounded
// suffix, so the log is never eagerly trimmed. Removal is the explicit
// compensation for a selection that later failed to load.
type Log struct {
	mu      sync.Mutex
	entries map[string][]Entry
}

// NewLog returns an empty as-run table.
func NewLog() *Log {
	return &Log{entries: make(map[string][]Entry)}
}

// Append adds an entry to the tail of the channel's history. No
// de-duplication is performed.
func (l *Log) Append(channelID string, e Entry) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.entries[channelID] = append(l.entries[channelID], e)
}

// Last returns up to n most recent entries for the channel, oldest first.
// It returns an empty slice when nothing has been recorded.
func (l *Log) Last(channelID string, n int) []Entry {
	l.mu.Lock()
	defer l.mu.Unlock()

	hist := l.entries[channelID]
	if n <= 0 || len(hist) == 0 {
		return nil
	}
	if n > len(hist) {
		n = len(hist)
	}
	out := make([]Entry, n)
	copy(out, hist[len(hist)-n:])
	return out
}

// Remove deletes the first entry with a matching event id, if present.
// It is a no-op when the channel has no history or the id is absent.
func (l *Log) Remove(channelID, eventID string) {
	l.mu.Lock()
	defer l.mu.Unlock()

	hist := l.entries[channelID]
	for i, e := range hist {
		if e.EventID == eventID {
			l.entries[channelID] = append(hist[:i:i], hist[i+1:]...)
			return
		}
	}
}

// Len reports the number of recorded entries for the channel.
func (l *Log) Len(channelID string) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.entries[channelID])
}
