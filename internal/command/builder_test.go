package command

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/park285/chess-arena-client/internal/appstate"
	"github.com/park285/chess-arena-client/internal/transport"
	"github.com/park285/chess-arena-client/internal/ui"
	"github.com/park285/chess-arena-client/pkg/protocol"
)

type captureSender struct {
	mu   sync.Mutex
	sent []any
	err  error
}

func (s *captureSender) Send(_ context.Context, v any) error {
	if s.err != nil {
		return s.err
	}
	s.mu.Lock()
	s.sent = append(s.sent, v)
	s.mu.Unlock()
	return nil
}

func (s *captureSender) last() any {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.sent) == 0 {
		return nil
	}
	return s.sent[len(s.sent)-1]
}

type recordNotifier struct {
	notes []string
}

func (n *recordNotifier) Notice(text string) { n.notes = append(n.notes, text) }

func newTestBuilder() (*Builder, *captureSender, *appstate.Identity, *recordNotifier) {
	sender := &captureSender{}
	id := appstate.NewIdentity()
	notifier := &recordNotifier{}
	b := NewBuilder(sender, id, notifier, ui.NewFormatter(nil))
	return b, sender, id, notifier
}

func TestSessionStamping(t *testing.T) {
	b, sender, id, _ := newTestBuilder()
	ctx := context.Background()
	id.SetSession("tok-1", "alice")

	if err := b.GetAvailablePlayers(ctx); err != nil {
		t.Fatalf("GetAvailablePlayers: %v", err)
	}
	msg, ok := sender.last().(protocol.GetAvailablePlayers)
	if !ok {
		t.Fatalf("frame = %T", sender.last())
	}
	if msg.Type != protocol.TypeGetAvailablePlayers || msg.SessionID != "tok-1" {
		t.Fatalf("frame = %+v", msg)
	}
}

func TestGameStamping(t *testing.T) {
	b, sender, id, _ := newTestBuilder()
	ctx := context.Background()
	id.SetSession("tok-1", "alice")
	id.SetGame("g-5")

	if err := b.Move(ctx, "e2e4"); err != nil {
		t.Fatalf("Move: %v", err)
	}
	mv, ok := sender.last().(protocol.Move)
	if !ok {
		t.Fatalf("frame = %T", sender.last())
	}
	if mv.SessionID != "tok-1" || mv.GameID != "g-5" || mv.Move != "e2e4" {
		t.Fatalf("frame = %+v", mv)
	}

	if err := b.Resign(ctx); err != nil {
		t.Fatalf("Resign: %v", err)
	}
	rs, ok := sender.last().(protocol.Resign)
	if !ok || rs.GameID != "g-5" {
		t.Fatalf("frame = %+v", sender.last())
	}

	if err := b.DrawResponse(ctx, true); err != nil {
		t.Fatalf("DrawResponse: %v", err)
	}
	dr, ok := sender.last().(protocol.DrawResponse)
	if !ok || !dr.Accepted {
		t.Fatalf("frame = %+v", sender.last())
	}
}

func TestLoginCarriesNoSession(t *testing.T) {
	b, sender, _, _ := newTestBuilder()

	if err := b.Login(context.Background(), "alice", "pw"); err != nil {
		t.Fatalf("Login: %v", err)
	}
	msg, ok := sender.last().(protocol.Login)
	if !ok || msg.Username != "alice" || msg.Password != "pw" {
		t.Fatalf("frame = %+v", sender.last())
	}
}

func TestNotConnectedSurfacesNotice(t *testing.T) {
	sender := &captureSender{err: transport.ErrNotConnected}
	id := appstate.NewIdentity()
	notifier := &recordNotifier{}
	b := NewBuilder(sender, id, notifier, ui.NewFormatter(nil))

	err := b.GetGameHistory(context.Background(), 5)
	if !errors.Is(err, transport.ErrNotConnected) {
		t.Fatalf("err = %v", err)
	}
	if len(notifier.notes) != 1 {
		t.Fatalf("notices = %v", notifier.notes)
	}
}
