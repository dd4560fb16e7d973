package mocks

import (
	"context"
	"sync"

	"github.com/phrazzld/annotate-api/internal/generation"
)

// MockCompleter implements generation.Completer for testing.
// Without CompleteFn it returns Response (or Err) for every call.
type MockCompleter struct {
	CompleteFn func(ctx context.Context, call int, prompt generation.Prompt) (string, error)
	CloseFn    func() error

	// Default response values
	Response string
	Err      error

	mu      sync.Mutex
	calls   int
	closed  int
	Prompts []generation.Prompt
}

var _ generation.Completer = (*MockCompleter)(nil)

// Complete implements generation.Completer.Complete. call is 1-based.
func (m *MockCompleter) Complete(ctx context.Context, prompt generation.Prompt) (string, error) {
	m.mu.Lock()
	m.calls++
	call := m.calls
	m.Prompts = append(m.Prompts, prompt)
	m.mu.Unlock()

	if m.CompleteFn != nil {
		return m.CompleteFn(ctx, call, prompt)
	}
	if m.Err != nil {
		return "", m.Err
	}
	return m.Response, nil
}

// Close implements generation.Completer.Close
func (m *MockCompleter) Close() error {
	m.mu.Lock()
	m.closed++
	m.mu.Unlock()

	if m.CloseFn != nil {
		return m.CloseFn()
	}
	return nil
}

// Calls returns how many completion calls were made.
func (m *MockCompleter) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

// CloseCount returns how many times Close was called.
func (m *MockCompleter) CloseCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.closed
}

// MockClientFactory implements generation.ClientFactory, handing out Client
// on every Open unless OpenFn or Err says otherwise.
type MockClientFactory struct {
	OpenFn func(ctx context.Context, req generation.Request) (generation.Completer, error)
	Client generation.Completer
	Err    error

	mu       sync.Mutex
	Requests []generation.Request
}

var _ generation.ClientFactory = (*MockClientFactory)(nil)

// Open implements generation.ClientFactory.Open
func (m *MockClientFactory) Open(ctx context.Context, req generation.Request) (generation.Completer, error) {
	m.mu.Lock()
	m.Requests = append(m.Requests, req)
	m.mu.Unlock()

	if m.OpenFn != nil {
		return m.OpenFn(ctx, req)
	}
	if m.Err != nil {
		return nil, m.Err
	}
	return m.Client, nil
}

// MockArchive is an in-memory generation.Archive.
type MockArchive struct {
	SaveErr error

	mu      sync.Mutex
	records map[string]generation.ArchivedTask
}

var _ generation.Archive = (*MockArchive)(nil)

// NewMockArchive creates an empty archive.
func NewMockArchive() *MockArchive {
	return &MockArchive{records: make(map[string]generation.ArchivedTask)}
}

// Save implements generation.Archive.Save
func (m *MockArchive) Save(ctx context.Context, record generation.ArchivedTask) error {
	if m.SaveErr != nil {
		return m.SaveErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.records[record.Snapshot.TaskID] = record
	return nil
}

// Load implements generation.Archive.Load
func (m *MockArchive) Load(ctx context.Context, id string) (*generation.ArchivedTask, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	rec, ok := m.records[id]
	if !ok {
		return nil, generation.ErrTaskNotFound
	}
	return &rec, nil
}

// Len returns the number of stored records.
func (m *MockArchive) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.records)
}
