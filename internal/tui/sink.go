package tui

import (
	"sync"

	tea "github.com/charmbracelet/bubbletea"

	"voicechat/internal/domain"
)

// Sink forwards controller snapshots into a running program. Snapshots
// published before Attach are dropped; the model reads the initial state
// from the controller itself.
type Sink struct {
	mu      sync.RWMutex
	program *tea.Program
}

func (s *Sink) Attach(program *tea.Program) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.program = program
}

func (s *Sink) SessionChanged(snapshot domain.Snapshot) {
	s.mu.RLock()
	program := s.program
	s.mu.RUnlock()

	if program != nil {
		program.Send(SnapshotMsg{Snapshot: snapshot})
	}
}
