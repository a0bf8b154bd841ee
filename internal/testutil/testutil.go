package testutil

import (
	"fmt"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/lherron/fixq/internal/db"
	"github.com/lherron/fixq/internal/store"
)

// TempDB creates a temporary SQLite database with migrations applied.
func TempDB(t *testing.T) (*db.DB, string) {
	t.Helper()

	dbPath := filepath.Join(t.TempDir(), "test.db")

	database, err := db.Open(dbPath)
	if err != nil {
		t.Fatalf("Failed to create test database: %v", err)
	}

	if err := database.Migrate(); err != nil {
		database.Close()
		t.Fatalf("Failed to run migrations: %v", err)
	}

	t.Cleanup(func() {
		database.Close()
	})

	return database, dbPath
}

// TempStore returns a SQLite-backed store over a fresh temporary database.
func TempStore(t *testing.T) *store.SQLStore {
	t.Helper()
	database, _ := TempDB(t)
	return store.New(database)
}

// Entry is one line captured by Logger.
type Entry struct {
	Level   string
	Message string
}

// Logger records every entry for later assertions.
type Logger struct {
	mu      sync.Mutex
	entries []Entry
}

func (l *Logger) Info(format string, args ...any) { l.add("info", format, args...) }
func (l *Logger) Warn(format string, args ...any) { l.add("warn", format, args...) }

func (l *Logger) add(level, format string, args ...any) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.entries = append(l.entries, Entry{Level: level, Message: fmt.Sprintf(format, args...)})
}

// Entries returns a copy of the recorded entries in order.
func (l *Logger) Entries() []Entry {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]Entry(nil), l.entries...)
}

// Count returns how many entries were logged at level.
func (l *Logger) Count(level string) int {
	n := 0
	for _, e := range l.Entries() {
		if e.Level == level {
			n++
		}
	}
	return n
}

// Infos returns the number of info entries.
func (l *Logger) Infos() int { return l.Count("info") }

// Warns returns the number of warn entries.
func (l *Logger) Warns() int { return l.Count("warn") }

// Reset drops every recorded entry.
func (l *Logger) Reset() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.entries = nil
}

// Contains reports whether any entry's message contains substr.
func (l *Logger) Contains(substr string) bool {
	for _, e := range l.Entries() {
		if strings.Contains(e.Message, substr) {
			return true
		}
	}
	return false
}

// AssertLogged fails the test unless exactly infos info entries and warns
// warn entries were recorded.
func (l *Logger) AssertLogged(t *testing.T, infos, warns int) {
	t.Helper()
	if got := l.Infos(); got != infos {
		t.Errorf("expected %d info entries, got %d: %v", infos, got, l.Entries())
	}
	if got := l.Warns(); got != warns {
		t.Errorf("expected %d warn entries, got %d: %v", warns, got, l.Entries())
	}
}

// AssertNoError asserts that an error is nil
func AssertNoError(t *testing.T, err error) {
	t.Helper()
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
}

// AssertError asserts that an error is not nil
func AssertError(t *testing.T, err error) {
	t.Helper()
	if err == nil {
		t.Fatal("Expected error, got nil")
	}
}

// AssertEqual asserts that two values are equal
func AssertEqual(t *testing.T, expected, actual interface{}) {
	t.Helper()
	if expected != actual {
		t.Fatalf("Expected %v, got %v", expected, actual)
	}
}
