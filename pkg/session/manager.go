package session

import (
	"fmt"
	"sync"

	"github.com/jp-knj/jetmd/internal/logging"
	"github.com/jp-knj/jetmd/internal/parse"
	"github.com/jp-knj/jetmd/pkg/ast"
)

// Manager is a registry of sessions addressed by id, for embeddings (WASM
// hosts, RPC bridges) that cannot hold a Session handle directly. Library
// callers can also use Sessions without a Manager via Open.
//
// The Manager serializes registry access; individual sessions remain
// single-caller.
type Manager struct {
	mu       sync.Mutex
	sessions map[string]*Session
	debug    bool
}

// NewManager creates an empty registry. With debug set, every incremental
// edit is cross-checked against a full reparse.
func NewManager(debug bool) *Manager {
	return &Manager{
		sessions: make(map[string]*Session),
		debug:    debug,
	}
}

// Open creates a standalone session without a registry.
func Open(id string, source []byte, cfg parse.Config) *Session {
	return newSession(id, source, cfg, false)
}

// Create parses source from scratch and stores the session under id.
// An existing session with the same id is replaced.
func (m *Manager) Create(id string, source []byte, cfg parse.Config) *Session {
	s := newSession(id, source, cfg, m.debug)
	m.mu.Lock()
	m.sessions[id] = s
	m.mu.Unlock()
	logging.Default().Debug("session created", "id", id, "bytes", len(source))
	return s
}

// Get returns the session with the given id.
func (m *Manager) Get(id string) (*Session, error) {
	m.mu.Lock()
	s, ok := m.sessions[id]
	m.mu.Unlock()
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrNotFound, id)
	}
	return s, nil
}

// Edit applies edits to the session with the given id.
// An unknown id or invalid edit leaves all state unchanged.
func (m *Manager) Edit(id string, edits []Edit) (*Delta, error) {
	s, err := m.Get(id)
	if err != nil {
		return nil, err
	}
	d, err := s.Edit(edits)
	if err != nil {
		return nil, err
	}
	logging.Default().Debug("session edited",
		"id", id, "edits", len(edits), "reuse", d.ReuseRatio)
	return d, nil
}

// Snapshot returns a borrowed view of the session's current tree.
func (m *Manager) Snapshot(id string) (*ast.Node, error) {
	s, err := m.Get(id)
	if err != nil {
		return nil, err
	}
	return s.Snapshot(), nil
}

// Destroy removes the session, releasing its buffer and tree.
func (m *Manager) Destroy(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.sessions[id]; !ok {
		return fmt.Errorf("%w: %q", ErrNotFound, id)
	}
	delete(m.sessions, id)
	logging.Default().Debug("session destroyed", "id", id)
	return nil
}

// Len reports the number of live sessions.
func (m *Manager) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}
