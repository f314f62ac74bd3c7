package session

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/park285/chess-arena-client/internal/appstate"
	"github.com/park285/chess-arena-client/internal/command"
	"github.com/park285/chess-arena-client/internal/obslog"
	"github.com/park285/chess-arena-client/internal/ui"
	"github.com/park285/chess-arena-client/pkg/protocol"
)

// State is the coordinator's lifecycle position.
type State string

const (
	StateAnonymous     State = "ANONYMOUS"
	StateVerifying     State = "VERIFYING"
	StateAuthenticated State = "AUTHENTICATED"
	StateConflicted    State = "CONFLICTED"
)

var (
	ErrMissingCredentials  = errors.New("username and password are required")
	ErrVerificationPending = errors.New("session verification in progress")
)

// Transport is the slice of the connection manager the coordinator needs
// for forced disconnects.
type Transport interface {
	Close(ctx context.Context) error
}

type identity interface {
	appstate.SessionWriter
	SessionID() string
	Username() string
}

// Coordinator owns authentication state, cached-token resumption and
// duplicate-session conflict resolution.
type Coordinator struct {
	mu      sync.RWMutex
	state   State
	profile *protocol.UserData

	store     Store
	out       *command.Builder
	id        identity
	transport Transport
	notifier  ui.Notifier
	prompter  ui.Prompter
	surface   ui.Surface
	text      *ui.Formatter

	onAuthenticated []func(*protocol.UserData)
	onReset         []func()
}

func NewCoordinator(store Store, out *command.Builder, id identity, transport Transport,
	notifier ui.Notifier, prompter ui.Prompter, surface ui.Surface, text *ui.Formatter) *Coordinator {
	return &Coordinator{
		state:     StateAnonymous,
		store:     store,
		out:       out,
		id:        id,
		transport: transport,
		notifier:  notifier,
		prompter:  prompter,
		surface:   surface,
		text:      text,
	}
}

// OnAuthenticated registers a hook fired with fresh user data whenever a
// session becomes (or is confirmed) authenticated.
func (c *Coordinator) OnAuthenticated(fn func(*protocol.UserData)) {
	if fn != nil {
		c.onAuthenticated = append(c.onAuthenticated, fn)
	}
}

// OnReset registers a hook fired whenever the session is torn down
// (logout, invalidation, acknowledged conflict). Dependent state owners
// use it to drop state that cannot outlive the session.
func (c *Coordinator) OnReset(fn func()) {
	if fn != nil {
		c.onReset = append(c.onReset, fn)
	}
}

func (c *Coordinator) State() State {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.state
}

func (c *Coordinator) Authenticated() bool { return c.State() == StateAuthenticated }

// Profile returns the last server-confirmed profile, or nil.
func (c *Coordinator) Profile() *protocol.UserData {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.profile
}

func (c *Coordinator) setState(s State) {
	c.mu.Lock()
	c.state = s
	c.mu.Unlock()
}

// ResumeFromCache is invoked when the transport opens. With a cached
// token present, VERIFY_SESSION must be the first outbound command;
// otherwise the user lands on the entry surface.
func (c *Coordinator) ResumeFromCache(ctx context.Context) {
	cached, err := c.store.Load(ctx)
	if err != nil {
		obslog.L().Warn("session_cache_load_failed", zap.Error(err))
	}
	if cached == nil {
		c.surface.ShowEntry()
		return
	}

	c.id.SetSession(cached.SessionID, cached.Username)
	c.setState(StateVerifying)
	if err := c.out.VerifySession(ctx); err != nil {
		c.setState(StateAnonymous)
		c.surface.ShowEntry()
	}
}

// Login validates locally, then submits LOGIN. Empty credentials never
// reach the server.
func (c *Coordinator) Login(ctx context.Context, username, password string) error {
	if strings.TrimSpace(username) == "" || password == "" {
		return ErrMissingCredentials
	}
	if c.State() == StateVerifying {
		return ErrVerificationPending
	}
	return c.out.Login(ctx, username, password)
}

// Register validates locally, then submits REGISTER.
func (c *Coordinator) Register(ctx context.Context, username, password, email string) error {
	if strings.TrimSpace(username) == "" || password == "" {
		return ErrMissingCredentials
	}
	if c.State() == StateVerifying {
		return ErrVerificationPending
	}
	return c.out.Register(ctx, username, password, email)
}

// Logout emits LOGOUT best-effort, then clears the cache and local state
// synchronously regardless of server acknowledgment.
func (c *Coordinator) Logout(ctx context.Context) {
	if c.Authenticated() {
		_ = c.out.Logout(ctx)
	}
	c.teardown(ctx)
	c.notifier.Notice(c.text.LoggedOut())
	c.surface.ShowEntry()
}

// AcknowledgeConflict is the user's explicit answer to the duplicate
// session modal: only now is the cached token cleared.
func (c *Coordinator) AcknowledgeConflict(ctx context.Context) {
	c.teardown(ctx)
	c.surface.ShowEntry()
}

// teardown clears the durable cache, in-memory fields and dependent
// state, and lands in ANONYMOUS.
func (c *Coordinator) teardown(ctx context.Context) {
	if err := c.store.Clear(ctx); err != nil {
		obslog.L().Warn("session_cache_clear_failed", zap.Error(err))
	}
	c.clearLocal()
}

func (c *Coordinator) clearLocal() {
	c.id.ClearSession()
	c.mu.Lock()
	c.profile = nil
	c.state = StateAnonymous
	c.mu.Unlock()
	for _, fn := range c.onReset {
		fn()
	}
}

// OnTransportDown routes the user back to the entry surface without
// touching the cached token, so a later reconnect can resume.
func (c *Coordinator) OnTransportDown() {
	if c.State() == StateConflicted {
		return
	}
	c.setState(StateAnonymous)
	c.surface.ShowEntry()
}

func (c *Coordinator) establish(ctx context.Context, sessionID string, data *protocol.UserData) {
	username := ""
	if data != nil {
		username = data.Username
	}
	c.id.SetSession(sessionID, username)
	if err := c.store.Save(ctx, &Cached{SessionID: sessionID, Username: username}); err != nil {
		obslog.L().Warn("session_cache_save_failed", zap.Error(err))
	}
	c.mu.Lock()
	c.state = StateAuthenticated
	c.profile = data
	c.mu.Unlock()

	for _, fn := range c.onAuthenticated {
		fn(data)
	}
	c.surface.ShowLobby()
}

func (c *Coordinator) handleSessionValid(env *protocol.Envelope) {
	var msg protocol.SessionValid
	if err := env.As(&msg); err != nil {
		obslog.L().Warn("drop_bad_payload", zap.String("type", env.Type), zap.Error(err))
		return
	}
	c.establish(context.Background(), msg.SessionID, msg.UserData)
}

func (c *Coordinator) handleSessionInvalid() {
	c.teardown(context.Background())
	c.surface.ShowEntry()
}

func (c *Coordinator) handleLoginResponse(env *protocol.Envelope) {
	var msg protocol.LoginResponse
	if err := env.As(&msg); err != nil {
		obslog.L().Warn("drop_bad_payload", zap.String("type", env.Type), zap.Error(err))
		return
	}
	if msg.Status == protocol.StatusSuccess {
		c.establish(context.Background(), msg.SessionID, msg.UserData)
		return
	}
	c.notifier.Notice(c.text.LoginFailed(msg.Message))
}

func (c *Coordinator) handleRegisterResponse(env *protocol.Envelope) {
	var msg protocol.RegisterResponse
	if err := env.As(&msg); err != nil {
		obslog.L().Warn("drop_bad_payload", zap.String("type", env.Type), zap.Error(err))
		return
	}
	if msg.Status == protocol.StatusSuccess {
		c.notifier.Notice(c.text.RegisterOK())
		c.surface.ShowEntry()
		return
	}
	c.notifier.Notice(c.text.RegisterFailed(msg.Message))
}

// handleDuplicateConflict forces a disconnect, keeps the cached token
// (another tab may still be using it) and parks in CONFLICTED until the
// user acknowledges.
func (c *Coordinator) handleDuplicateConflict(env *protocol.Envelope) {
	var msg protocol.DuplicateSession
	if err := env.As(&msg); err != nil {
		obslog.L().Warn("drop_bad_payload", zap.String("type", env.Type), zap.Error(err))
		return
	}
	obslog.L().Warn("duplicate_session", zap.String("message", msg.Message))

	c.setState(StateConflicted)
	c.id.ClearSession()
	c.mu.Lock()
	c.profile = nil
	c.mu.Unlock()

	// Close from a separate goroutine: this runs on the reader goroutine
	// that Close waits for.
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = c.transport.Close(ctx)
	}()

	if msg.Message != "" {
		c.notifier.Notice(msg.Message)
	}
	ack := c.prompter.Confirm(c.text.ConflictPrompt())
	go func() {
		<-ack
		c.AcknowledgeConflict(context.Background())
	}()
}
