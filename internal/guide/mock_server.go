package guide

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"time"
)

// MockServer provides a configurable schedule-source mock for testing.
type MockServer struct {
	*httptest.Server
	mu       sync.Mutex
	channels []ChannelInfo
	events   map[string][]Event // channel id -> window events, ascending
	delay    map[string]time.Duration
	failures map[string]int // remaining failures before success per path prefix
	hits     map[string]int
}

// NewMockServer creates a schedule-source mock serving /channels and
// /channels/{id}/schedule.
func NewMockServer() *MockServer {
	mock := &MockServer{
		events:   make(map[string][]Event),
		delay:    make(map[string]time.Duration),
		failures: make(map[string]int),
		hits:     make(map[string]int),
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/channels", mock.handleChannels)
	mux.HandleFunc("/channels/", mock.handleSchedule)

	mock.Server = httptest.NewServer(mux)
	return mock
}

// SetChannels replaces the channel list served by /channels.
func (m *MockServer) SetChannels(chs ...ChannelInfo) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.channels = chs
}

// SetEvents replaces the schedule window served for one channel.
func (m *MockServer) SetEvents(channelID string, events ...Event) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events[channelID] = events
}

// SetDelay adds an artificial delay for requests whose path starts with prefix.
func (m *MockServer) SetDelay(prefix string, d time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.delay[prefix] = d
}

// SetFailures makes the next count requests matching prefix fail with 500.
func (m *MockServer) SetFailures(prefix string, count int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failures[prefix] = count
}

// Hits reports how many requests matched the given path prefix.
func (m *MockServer) Hits(prefix string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for path, count := range m.hits {
		if strings.HasPrefix(path, prefix) {
			n += count
		}
	}
	return n
}

// intercept applies hit counting, artificial delay and injected failures.
// It reports whether the request was already answered.
func (m *MockServer) intercept(w http.ResponseWriter, path string) bool {
	m.mu.Lock()
	var wait time.Duration
	for prefix, d := range m.delay {
		if strings.HasPrefix(path, prefix) {
			wait = d
		}
	}
	failed := false
	for prefix := range m.failures {
		if strings.HasPrefix(path, prefix) && m.failures[prefix] > 0 {
			m.failures[prefix]--
			failed = true
		}
	}
	m.hits[path]++
	m.mu.Unlock()

	if wait > 0 {
		time.Sleep(wait)
	}
	if failed {
		http.Error(w, "injected failure", http.StatusInternalServerError)
		return true
	}
	return false
}

func (m *MockServer) handleChannels(w http.ResponseWriter, r *http.Request) {
	if m.intercept(w, r.URL.Path) {
		return
	}
	m.mu.Lock()
	chs := m.channels
	m.mu.Unlock()

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(chs) //nolint:errcheck
}

func (m *MockServer) handleSchedule(w http.ResponseWriter, r *http.Request) {
	if m.intercept(w, r.URL.Path) {
		return
	}
	// Path shape: /channels/{id}/schedule
	parts := strings.Split(strings.Trim(r.URL.Path, "/"), "/")
	if len(parts) != 3 || parts[2] != "schedule" {
		http.NotFound(w, r)
		return
	}
	m.mu.Lock()
	events, ok := m.events[parts[1]]
	m.mu.Unlock()
	if !ok {
		events = []Event{}
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(events) //nolint:errcheck
}
