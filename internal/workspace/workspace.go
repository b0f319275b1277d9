// Package workspace manages per-session scratch directories. Every
// workspace created for a session is removed exactly once, on both success
// and failure exit paths; a stale sweep at daemon start reclaims directories
// left behind by crashed runs.
package workspace

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Manager creates session workspaces under a fixed root directory.
type Manager struct {
	root string
}

// NewManager constructs a workspace manager rooted at root.
func NewManager(root string) (*Manager, error) {
	root = strings.TrimSpace(root)
	if root == "" {
		return nil, fmt.Errorf("workspace root must not be empty")
	}
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("create workspace root: %w", err)
	}
	return &Manager{root: root}, nil
}

// Root returns the directory session workspaces are created under.
func (m *Manager) Root() string {
	return m.root
}

// Create allocates a scratch directory for the given session.
func (m *Manager) Create(sessionID string) (*Workspace, error) {
	sessionID = strings.TrimSpace(sessionID)
	if sessionID == "" {
		return nil, fmt.Errorf("session id must not be empty")
	}
	if sessionID != filepath.Base(sessionID) {
		return nil, fmt.Errorf("session id %q is not a valid directory name", sessionID)
	}
	dir := filepath.Join(m.root, sessionID)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create session workspace: %w", err)
	}
	return &Workspace{dir: dir}, nil
}

// Workspace is one session's scratch directory.
type Workspace struct {
	dir string
}

// Dir returns the workspace directory path.
func (w *Workspace) Dir() string {
	return w.dir
}

// Path joins name onto the workspace directory.
func (w *Workspace) Path(name string) string {
	return filepath.Join(w.dir, name)
}

// Cleanup removes the workspace directory and everything in it. Safe to call
// more than once.
func (w *Workspace) Cleanup() error {
	if w == nil || w.dir == "" {
		return nil
	}
	if err := os.RemoveAll(w.dir); err != nil {
		return fmt.Errorf("remove workspace %q: %w", w.dir, err)
	}
	return nil
}
