package appstate

import (
	"strings"
	"sync"
)

// Identity is the single shared context holding the current session token,
// username and game id. Every component receives it at construction. Each
// field has exactly one writing component; everyone else reads through the
// Reader interface.
type Identity struct {
	mu        sync.RWMutex
	sessionID string
	username  string
	gameID    string
}

// Reader is the read-only view handed to components that only stamp
// outbound commands or render.
type Reader interface {
	SessionID() string
	Username() string
	GameID() string
}

// SessionWriter is exposed only to the session coordinator.
type SessionWriter interface {
	SetSession(sessionID, username string)
	ClearSession()
}

// GameWriter is exposed only to the game session machine.
type GameWriter interface {
	SetGame(id string)
	ClearGame()
}

func NewIdentity() *Identity { return &Identity{} }

func (i *Identity) SessionID() string {
	i.mu.RLock()
	defer i.mu.RUnlock()
	return i.sessionID
}

func (i *Identity) Username() string {
	i.mu.RLock()
	defer i.mu.RUnlock()
	return i.username
}

func (i *Identity) GameID() string {
	i.mu.RLock()
	defer i.mu.RUnlock()
	return i.gameID
}

func (i *Identity) SetSession(sessionID, username string) {
	i.mu.Lock()
	i.sessionID = strings.TrimSpace(sessionID)
	i.username = strings.TrimSpace(username)
	i.mu.Unlock()
}

// ClearSession drops the session fields. The game id is left to its own
// writer; a game cannot outlive a session, so the coordinator triggers the
// game machine's reset alongside this call.
func (i *Identity) ClearSession() {
	i.mu.Lock()
	i.sessionID = ""
	i.username = ""
	i.mu.Unlock()
}

func (i *Identity) SetGame(id string) {
	i.mu.Lock()
	i.gameID = strings.TrimSpace(id)
	i.mu.Unlock()
}

func (i *Identity) ClearGame() {
	i.mu.Lock()
	i.gameID = ""
	i.mu.Unlock()
}
