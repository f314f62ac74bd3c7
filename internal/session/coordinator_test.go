package session

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"

	"github.com/park285/chess-arena-client/internal/appstate"
	"github.com/park285/chess-arena-client/internal/command"
	"github.com/park285/chess-arena-client/internal/ui"
	"github.com/park285/chess-arena-client/pkg/protocol"
)

type captureSender struct {
	mu   sync.Mutex
	sent []any
}

func (s *captureSender) Send(_ context.Context, v any) error {
	s.mu.Lock()
	s.sent = append(s.sent, v)
	s.mu.Unlock()
	return nil
}

func (s *captureSender) first() any {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.sent) == 0 {
		return nil
	}
	return s.sent[0]
}

func (s *captureSender) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sent)
}

type fakeTransport struct {
	mu     sync.Mutex
	closed int
}

func (f *fakeTransport) Close(context.Context) error {
	f.mu.Lock()
	f.closed++
	f.mu.Unlock()
	return nil
}

func (f *fakeTransport) closeCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.closed
}

type recordSurface struct {
	mu   sync.Mutex
	last string
}

func (s *recordSurface) set(v string) {
	s.mu.Lock()
	s.last = v
	s.mu.Unlock()
}

func (s *recordSurface) get() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.last
}

func (s *recordSurface) ShowEntry() { s.set("entry") }
func (s *recordSurface) ShowLobby() { s.set("lobby") }
func (s *recordSurface) ShowGame()  { s.set("game") }

// manualPrompter hands the answer channel to the test.
type manualPrompter struct {
	ch chan bool
}

func (p *manualPrompter) Confirm(string) <-chan bool { return p.ch }

type fixture struct {
	coord     *Coordinator
	sender    *captureSender
	store     Store
	id        *appstate.Identity
	transport *fakeTransport
	surface   *recordSurface
	prompter  *manualPrompter
}

func newFixture(t *testing.T) (*fixture, func()) {
	t.Helper()
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("miniredis: %v", err)
	}
	store, err := NewRedisStore(fmt.Sprintf("redis://%s/0", mr.Addr()))
	if err != nil {
		t.Fatalf("NewRedisStore: %v", err)
	}

	sender := &captureSender{}
	id := appstate.NewIdentity()
	text := ui.NewFormatter(nil)
	out := command.NewBuilder(sender, id, ui.NopNotifier{}, text)
	tr := &fakeTransport{}
	surface := &recordSurface{}
	prompter := &manualPrompter{ch: make(chan bool, 1)}

	coord := NewCoordinator(store, out, id, tr, ui.NopNotifier{}, prompter, surface, text)
	f := &fixture{coord: coord, sender: sender, store: store, id: id,
		transport: tr, surface: surface, prompter: prompter}
	return f, func() { mr.Close() }
}

func env(t *testing.T, raw string) *protocol.Envelope {
	t.Helper()
	e, err := protocol.Decode([]byte(raw))
	if err != nil {
		t.Fatalf("Decode(%q): %v", raw, err)
	}
	return e
}

func TestResumeSendsVerifyFirst(t *testing.T) {
	f, cleanup := newFixture(t)
	defer cleanup()
	ctx := context.Background()

	if err := f.store.Save(ctx, &Cached{SessionID: "tok-1", Username: "alice"}); err != nil {
		t.Fatalf("Save: %v", err)
	}

	f.coord.ResumeFromCache(ctx)

	if f.coord.State() != StateVerifying {
		t.Fatalf("state = %s, want VERIFYING", f.coord.State())
	}
	v, ok := f.sender.first().(protocol.VerifySession)
	if !ok {
		t.Fatalf("first frame = %T, want VERIFY_SESSION", f.sender.first())
	}
	if v.SessionID != "tok-1" {
		t.Fatalf("session id = %q, want tok-1", v.SessionID)
	}
}

func TestResumeWithoutCacheShowsEntry(t *testing.T) {
	f, cleanup := newFixture(t)
	defer cleanup()

	f.coord.ResumeFromCache(context.Background())

	if f.sender.count() != 0 {
		t.Fatal("no cached token means nothing to verify")
	}
	if f.surface.get() != "entry" {
		t.Fatalf("surface = %q, want entry", f.surface.get())
	}
	if f.coord.State() != StateAnonymous {
		t.Fatalf("state = %s, want ANONYMOUS", f.coord.State())
	}
}

func TestLoginValidation(t *testing.T) {
	f, cleanup := newFixture(t)
	defer cleanup()
	ctx := context.Background()

	if err := f.coord.Login(ctx, "", "pw"); err != ErrMissingCredentials {
		t.Fatalf("empty username: %v", err)
	}
	if err := f.coord.Login(ctx, "alice", ""); err != ErrMissingCredentials {
		t.Fatalf("empty password: %v", err)
	}
	if f.sender.count() != 0 {
		t.Fatal("invalid credentials must not reach the server")
	}

	_ = f.store.Save(ctx, &Cached{SessionID: "tok", Username: "alice"})
	f.coord.ResumeFromCache(ctx)
	if err := f.coord.Login(ctx, "alice", "pw"); err != ErrVerificationPending {
		t.Fatalf("login during verification: %v", err)
	}
}

func TestLoginSuccessEstablishesSession(t *testing.T) {
	f, cleanup := newFixture(t)
	defer cleanup()

	var hookData *protocol.UserData
	f.coord.OnAuthenticated(func(d *protocol.UserData) { hookData = d })

	h := NewCoreHandler(f.coord)
	if !h.TryHandle(env(t, `{"type":"LOGIN_RESPONSE","status":"success","session_id":"tok-9","user_data":{"username":"alice","rating":1500}}`)) {
		t.Fatal("LOGIN_RESPONSE not claimed")
	}

	if !f.coord.Authenticated() {
		t.Fatalf("state = %s, want AUTHENTICATED", f.coord.State())
	}
	if f.id.SessionID() != "tok-9" || f.id.Username() != "alice" {
		t.Fatalf("identity = %q/%q", f.id.SessionID(), f.id.Username())
	}
	cached, err := f.store.Load(context.Background())
	if err != nil || cached == nil || cached.SessionID != "tok-9" {
		t.Fatalf("cache = %+v, %v", cached, err)
	}
	if hookData == nil || hookData.Rating != 1500 {
		t.Fatalf("OnAuthenticated hook data = %+v", hookData)
	}
	if f.surface.get() != "lobby" {
		t.Fatalf("surface = %q, want lobby", f.surface.get())
	}
}

func TestLoginFailureStaysAnonymous(t *testing.T) {
	f, cleanup := newFixture(t)
	defer cleanup()

	h := NewCoreHandler(f.coord)
	h.TryHandle(env(t, `{"type":"LOGIN_RESPONSE","status":"error","message":"bad password"}`))

	if f.coord.State() != StateAnonymous {
		t.Fatalf("state = %s, want ANONYMOUS", f.coord.State())
	}
	if f.id.SessionID() != "" {
		t.Fatal("failed login must not set a session")
	}
}

func TestSessionInvalidTearsDown(t *testing.T) {
	f, cleanup := newFixture(t)
	defer cleanup()
	ctx := context.Background()

	resets := 0
	f.coord.OnReset(func() { resets++ })

	_ = f.store.Save(ctx, &Cached{SessionID: "tok", Username: "alice"})
	f.coord.ResumeFromCache(ctx)

	h := NewCoreHandler(f.coord)
	h.TryHandle(env(t, `{"type":"SESSION_INVALID"}`))

	if f.coord.State() != StateAnonymous {
		t.Fatalf("state = %s, want ANONYMOUS", f.coord.State())
	}
	if cached, _ := f.store.Load(ctx); cached != nil {
		t.Fatal("invalid session must clear the cache")
	}
	if resets != 1 {
		t.Fatalf("reset hooks fired %d times", resets)
	}
	if f.surface.get() != "entry" {
		t.Fatalf("surface = %q, want entry", f.surface.get())
	}
}

func TestLogoutClearsSynchronously(t *testing.T) {
	f, cleanup := newFixture(t)
	defer cleanup()
	ctx := context.Background()

	h := NewCoreHandler(f.coord)
	h.TryHandle(env(t, `{"type":"SESSION_VALID","session_id":"tok","user_data":{"username":"alice"}}`))
	if !f.coord.Authenticated() {
		t.Fatal("precondition: authenticated")
	}

	f.coord.Logout(ctx)

	if f.coord.State() != StateAnonymous {
		t.Fatalf("state = %s, want ANONYMOUS", f.coord.State())
	}
	if f.id.SessionID() != "" {
		t.Fatal("identity not cleared")
	}
	if cached, _ := f.store.Load(ctx); cached != nil {
		t.Fatal("cache not cleared")
	}
}

func TestDuplicateConflictPreservesCacheUntilAck(t *testing.T) {
	f, cleanup := newFixture(t)
	defer cleanup()
	ctx := context.Background()

	h := NewCoreHandler(f.coord)
	h.TryHandle(env(t, `{"type":"SESSION_VALID","session_id":"tok","user_data":{"username":"alice"}}`))

	ch := NewConflictHandler(f.coord)
	if !ch.TryHandle(env(t, `{"type":"DUPLICATE_SESSION","message":"logged in elsewhere"}`)) {
		t.Fatal("DUPLICATE_SESSION not claimed")
	}

	if f.coord.State() != StateConflicted {
		t.Fatalf("state = %s, want CONFLICTED", f.coord.State())
	}
	// A disconnect while conflicted must not disturb the modal state.
	f.coord.OnTransportDown()
	if f.coord.State() != StateConflicted {
		t.Fatal("transport drop overrode the conflict state")
	}

	// The cached token survives until the user acknowledges.
	if cached, _ := f.store.Load(ctx); cached == nil || cached.SessionID != "tok" {
		t.Fatalf("cache = %+v, must survive until ack", cached)
	}
	waitFor(t, func() bool { return f.transport.closeCount() == 1 })

	f.prompter.ch <- true
	waitFor(t, func() bool {
		cached, _ := f.store.Load(ctx)
		return cached == nil
	})
	waitFor(t, func() bool { return f.coord.State() == StateAnonymous })
}

func TestTransportDownKeepsCache(t *testing.T) {
	f, cleanup := newFixture(t)
	defer cleanup()
	ctx := context.Background()

	h := NewCoreHandler(f.coord)
	h.TryHandle(env(t, `{"type":"SESSION_VALID","session_id":"tok","user_data":{"username":"alice"}}`))

	f.coord.OnTransportDown()

	if f.coord.State() != StateAnonymous {
		t.Fatalf("state = %s, want ANONYMOUS", f.coord.State())
	}
	if cached, _ := f.store.Load(ctx); cached == nil {
		t.Fatal("a dropped connection must not clear the cached token")
	}
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("condition not met in time")
}
