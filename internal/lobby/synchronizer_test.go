package lobby

import (
	"context"
	"sync"
	"testing"
	"time"

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

func (s *captureSender) frames() []any {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]any(nil), s.sent...)
}

type staticAuth bool

func (a staticAuth) Authenticated() bool { return bool(a) }

func newTestSynchronizer(t *testing.T, authed bool, accept bool) (*Synchronizer, *captureSender) {
	t.Helper()
	sender := &captureSender{}
	id := appstate.NewIdentity()
	text := ui.NewFormatter(nil)
	out := command.NewBuilder(sender, id, ui.NopNotifier{}, text)
	s := NewSynchronizer(out, staticAuth(authed), ui.NopNotifier{}, ui.StaticPrompter(accept), text)
	return s, sender
}

func env(t *testing.T, raw string) *protocol.Envelope {
	t.Helper()
	e, err := protocol.Decode([]byte(raw))
	if err != nil {
		t.Fatalf("Decode(%q): %v", raw, err)
	}
	return e
}

func TestPlayerListReplacedWholesale(t *testing.T) {
	s, _ := newTestSynchronizer(t, true, true)

	s.TryHandle(env(t, `{"type":"PLAYER_LIST","players":[{"username":"alice","rating":1500,"status":"available"},{"username":"bob","rating":1400,"status":"in_game"}]}`))
	if got := s.Players(); len(got) != 2 || got[0].Username != "alice" {
		t.Fatalf("players = %+v", got)
	}

	s.TryHandle(env(t, `{"type":"PLAYER_LIST","players":[{"username":"carol","rating":1600,"status":"available"}]}`))
	got := s.Players()
	if len(got) != 1 || got[0].Username != "carol" {
		t.Fatalf("push must replace, not merge: %+v", got)
	}

	s.TryHandle(env(t, `{"type":"PLAYER_LIST","players":[]}`))
	if got := s.Players(); len(got) != 0 {
		t.Fatalf("empty push must clear the list: %+v", got)
	}
}

func TestLeaderboardApplied(t *testing.T) {
	s, _ := newTestSynchronizer(t, true, true)
	s.TryHandle(env(t, `{"type":"LEADERBOARD","players":[{"rank":1,"username":"alice","rating":1800,"wins":10,"losses":2,"draws":1}]}`))
	got := s.LeaderboardEntries()
	if len(got) != 1 || got[0].Rank != 1 || got[0].Wins != 10 {
		t.Fatalf("leaderboard = %+v", got)
	}
}

func TestGameHistoryApplied(t *testing.T) {
	s, _ := newTestSynchronizer(t, true, true)
	s.TryHandle(env(t, `{"type":"GAME_HISTORY","games":[{"game_id":"g1","white_player":"alice","black_player":"bob","result":"WHITE_WIN","reason":"checkmate","move_count":24}]}`))
	got := s.History()
	if len(got) != 1 || got[0].GameID != "g1" || got[0].MoveCount != 24 {
		t.Fatalf("history = %+v", got)
	}
}

func TestRequestsGuardedByAuth(t *testing.T) {
	s, sender := newTestSynchronizer(t, false, true)
	ctx := context.Background()

	if err := s.RequestPlayers(ctx); err != ErrNotAuthenticated {
		t.Fatalf("RequestPlayers: %v", err)
	}
	if err := s.RequestLeaderboard(ctx, 10); err != ErrNotAuthenticated {
		t.Fatalf("RequestLeaderboard: %v", err)
	}
	if err := s.ChallengePlayer(ctx, "bob"); err != ErrNotAuthenticated {
		t.Fatalf("ChallengePlayer: %v", err)
	}
	if err := s.RequestHistory(ctx, 10); err != ErrNotAuthenticated {
		t.Fatalf("RequestHistory: %v", err)
	}
	if len(sender.frames()) != 0 {
		t.Fatal("guarded requests must not reach the wire")
	}
}

func TestChallengeAcceptSendsExactlyOne(t *testing.T) {
	s, sender := newTestSynchronizer(t, true, true)

	s.TryHandle(env(t, `{"type":"CHALLENGE_RECEIVED","from_username":"bob","challenge_id":"ch-7"}`))

	var frames []any
	waitFor(t, func() bool {
		frames = sender.frames()
		return len(frames) == 1
	})
	acc, ok := frames[0].(protocol.AcceptChallenge)
	if !ok {
		t.Fatalf("frame = %T, want ACCEPT_CHALLENGE", frames[0])
	}
	if acc.ChallengeID != "ch-7" {
		t.Fatalf("challenge id = %q", acc.ChallengeID)
	}
	// No second response for the same decision.
	time.Sleep(20 * time.Millisecond)
	if got := sender.frames(); len(got) != 1 {
		t.Fatalf("decision resolved %d times", len(got))
	}
}

func TestChallengeDecline(t *testing.T) {
	s, sender := newTestSynchronizer(t, true, false)

	s.TryHandle(env(t, `{"type":"CHALLENGE_RECEIVED","from_username":"bob","challenge_id":"ch-8"}`))

	var frames []any
	waitFor(t, func() bool {
		frames = sender.frames()
		return len(frames) == 1
	})
	dec, ok := frames[0].(protocol.DeclineChallenge)
	if !ok {
		t.Fatalf("frame = %T, want DECLINE_CHALLENGE", frames[0])
	}
	if dec.ChallengeID != "ch-8" {
		t.Fatalf("challenge id = %q", dec.ChallengeID)
	}
}

func TestPlayerStatusUpdateTriggersRefresh(t *testing.T) {
	s, sender := newTestSynchronizer(t, true, true)

	s.TryHandle(env(t, `{"type":"PLAYER_STATUS_UPDATE","username":"bob","status":"in_game"}`))

	frames := sender.frames()
	if len(frames) != 1 {
		t.Fatalf("expected one refresh request, got %d", len(frames))
	}
	if _, ok := frames[0].(protocol.GetAvailablePlayers); !ok {
		t.Fatalf("frame = %T, want GET_AVAILABLE_PLAYERS", frames[0])
	}
}

func TestAuthenticationPrimesPlayerList(t *testing.T) {
	s, sender := newTestSynchronizer(t, true, true)

	s.OnAuthenticated(&protocol.UserData{Username: "alice", Rating: 1500})

	if p := s.Profile(); p == nil || p.Username != "alice" {
		t.Fatalf("profile = %+v", p)
	}
	frames := sender.frames()
	if len(frames) != 1 {
		t.Fatalf("expected one frame on authentication, got %d", len(frames))
	}
	if _, ok := frames[0].(protocol.GetAvailablePlayers); !ok {
		t.Fatalf("frame = %T, want GET_AVAILABLE_PLAYERS", frames[0])
	}
}

func TestResetDropsProjections(t *testing.T) {
	s, _ := newTestSynchronizer(t, true, true)
	s.TryHandle(env(t, `{"type":"PLAYER_LIST","players":[{"username":"alice"}]}`))
	s.ApplyProfile(&protocol.UserData{Username: "me", Rating: 1500})

	s.Reset()

	if len(s.Players()) != 0 || len(s.LeaderboardEntries()) != 0 || len(s.History()) != 0 {
		t.Fatal("projections survived a reset")
	}
	if s.Profile() != nil {
		t.Fatal("profile survived a reset")
	}
}

func TestUnknownTypeNotClaimed(t *testing.T) {
	s, _ := newTestSynchronizer(t, true, true)
	if s.TryHandle(env(t, `{"type":"MATCH_STARTED"}`)) {
		t.Fatal("lobby must not claim game messages")
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
