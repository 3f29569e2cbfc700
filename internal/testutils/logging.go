package testutils

import "sync"

// TestingT is the subset of testing.T used by these helpers
type TestingT interface {
	Errorf(format string, args ...any)
}

// FieldsToMap converts alternating key/value log fields to a map, reporting
// malformed entries through t instead of panicking.
func FieldsToMap(t TestingT, fields []any) map[string]any {
	fieldsMap := make(map[string]any)

	for i := 0; i < len(fields); i += 2 {
		if i+1 >= len(fields) {
			t.Errorf("Malformed fields slice: missing value for key at index %d", i)
			continue
		}

		key, ok := fields[i].(string)
		if !ok {
			t.Errorf("Malformed fields slice: key at index %d is not a string, got %T", i, fields[i])
			continue
		}

		fieldsMap[key] = fields[i+1]
	}

	return fieldsMap
}

// SilentLogger satisfies the application logger and discards everything
type SilentLogger struct{}

func (SilentLogger) Debug(string, ...any) {}
func (SilentLogger) Info(string, ...any)  {}
func (SilentLogger) Warn(string, ...any)  {}
func (SilentLogger) Error(string, ...any) {}

// Entry is one call recorded by RecordingLogger
type Entry struct {
	Level   string
	Message string
	Fields  []any
}

// RecordingLogger satisfies the application logger and keeps every entry.
// It is safe for use from the goroutines started by servers under test.
type RecordingLogger struct {
	mu      sync.Mutex
	entries []Entry
}

func (r *RecordingLogger) record(level, msg string, fields []any) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries = append(r.entries, Entry{Level: level, Message: msg, Fields: fields})
}

func (r *RecordingLogger) Debug(msg string, fields ...any) { r.record("DEBUG", msg, fields) }
func (r *RecordingLogger) Info(msg string, fields ...any)  { r.record("INFO", msg, fields) }
func (r *RecordingLogger) Warn(msg string, fields ...any)  { r.record("WARN", msg, fields) }
func (r *RecordingLogger) Error(msg string, fields ...any) { r.record("ERROR", msg, fields) }

// Entries returns the entries recorded at level, or all entries when level is empty
func (r *RecordingLogger) Entries(level string) []Entry {
	r.mu.Lock()
	defer r.mu.Unlock()

	var out []Entry
	for _, e := range r.entries {
		if level == "" || e.Level == level {
			out = append(out, e)
		}
	}
	return out
}
