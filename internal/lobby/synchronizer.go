package lobby

import (
	"context"
	"errors"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/park285/chess-arena-client/internal/command"
	"github.com/park285/chess-arena-client/internal/obslog"
	"github.com/park285/chess-arena-client/internal/ui"
	"github.com/park285/chess-arena-client/pkg/protocol"
)

// ErrNotAuthenticated guards lobby requests issued without a live session.
var ErrNotAuthenticated = errors.New("not authenticated")

type sessionState interface {
	Authenticated() bool
}

// Synchronizer owns the lobby projection: the player list, the
// leaderboard and the local profile view. All three are derived entirely
// from server pushes; each push replaces the projection wholesale.
type Synchronizer struct {
	mu          sync.RWMutex
	players     []protocol.Player
	leaderboard []protocol.LeaderboardEntry
	history     []protocol.GameHistoryItem
	profile     *protocol.UserData

	out      *command.Builder
	auth     sessionState
	notifier ui.Notifier
	prompter ui.Prompter
	text     *ui.Formatter
}

func NewSynchronizer(out *command.Builder, auth sessionState, notifier ui.Notifier,
	prompter ui.Prompter, text *ui.Formatter) *Synchronizer {
	return &Synchronizer{out: out, auth: auth, notifier: notifier, prompter: prompter, text: text}
}

func (s *Synchronizer) Name() string { return "lobby" }

// Players returns a copy of the current player projection.
func (s *Synchronizer) Players() []protocol.Player {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]protocol.Player(nil), s.players...)
}

// LeaderboardEntries returns a copy of the current leaderboard projection.
func (s *Synchronizer) LeaderboardEntries() []protocol.LeaderboardEntry {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]protocol.LeaderboardEntry(nil), s.leaderboard...)
}

// History returns a copy of the last received game history.
func (s *Synchronizer) History() []protocol.GameHistoryItem {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]protocol.GameHistoryItem(nil), s.history...)
}

// Profile returns the last applied profile view, or nil.
func (s *Synchronizer) Profile() *protocol.UserData {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.profile
}

// OnAuthenticated runs when a session becomes authenticated: it applies
// the fresh profile and primes the lobby with a player-list request so
// the view is populated on entry.
func (s *Synchronizer) OnAuthenticated(data *protocol.UserData) {
	s.ApplyProfile(data)
	_ = s.RequestPlayers(context.Background())
}

// ApplyProfile replaces the profile projection with fresh user data.
func (s *Synchronizer) ApplyProfile(data *protocol.UserData) {
	if data == nil {
		return
	}
	s.mu.Lock()
	s.profile = data
	s.mu.Unlock()
}

// Reset drops every projection; fired when the session ends.
func (s *Synchronizer) Reset() {
	s.mu.Lock()
	s.players = nil
	s.leaderboard = nil
	s.history = nil
	s.profile = nil
	s.mu.Unlock()
}

// RequestPlayers asks for a fresh player list. Fails locally without a
// live session.
func (s *Synchronizer) RequestPlayers(ctx context.Context) error {
	if !s.auth.Authenticated() {
		s.notifier.Notice(s.text.NotAuthenticated())
		return ErrNotAuthenticated
	}
	return s.out.GetAvailablePlayers(ctx)
}

// RequestLeaderboard asks for the top players. Fails locally without a
// live session.
func (s *Synchronizer) RequestLeaderboard(ctx context.Context, limit int) error {
	if !s.auth.Authenticated() {
		s.notifier.Notice(s.text.NotAuthenticated())
		return ErrNotAuthenticated
	}
	return s.out.GetLeaderboard(ctx, limit)
}

// ChallengePlayer sends a challenge to the named player.
func (s *Synchronizer) ChallengePlayer(ctx context.Context, target string) error {
	if !s.auth.Authenticated() {
		s.notifier.Notice(s.text.NotAuthenticated())
		return ErrNotAuthenticated
	}
	return s.out.Challenge(ctx, target)
}

// RequestHistory asks for this account's finished games.
func (s *Synchronizer) RequestHistory(ctx context.Context, limit int) error {
	if !s.auth.Authenticated() {
		s.notifier.Notice(s.text.NotAuthenticated())
		return ErrNotAuthenticated
	}
	return s.out.GetGameHistory(ctx, limit)
}

// ReloadProfile re-verifies the session, which returns fresh user data.
func (s *Synchronizer) ReloadProfile(ctx context.Context) error {
	if !s.auth.Authenticated() {
		return ErrNotAuthenticated
	}
	return s.out.VerifySession(ctx)
}

func (s *Synchronizer) TryHandle(env *protocol.Envelope) bool {
	switch env.Type {
	case protocol.TypePlayerList:
		s.handlePlayerList(env)
	case protocol.TypeLeaderboard:
		s.handleLeaderboard(env)
	case protocol.TypeGameHistory:
		s.handleGameHistory(env)
	case protocol.TypeChallengeReceived:
		s.handleChallengeReceived(env)
	case protocol.TypeChallengeSent:
		s.handleChallengeSent(env)
	case protocol.TypeChallengeCancelled:
		s.handleChallengeCancelled(env)
	case protocol.TypePlayerStatusUpdate:
		// Somebody's availability changed; refresh the whole list.
		if s.auth.Authenticated() {
			_ = s.out.GetAvailablePlayers(context.Background())
		}
	default:
		return false
	}
	return true
}

func (s *Synchronizer) handlePlayerList(env *protocol.Envelope) {
	var msg protocol.PlayerList
	if err := env.As(&msg); err != nil {
		obslog.L().Warn("drop_bad_payload", zap.String("type", env.Type), zap.Error(err))
		return
	}
	s.mu.Lock()
	s.players = msg.Players
	s.mu.Unlock()
	obslog.L().Debug("player_list_applied", zap.Int("count", len(msg.Players)))
}

func (s *Synchronizer) handleLeaderboard(env *protocol.Envelope) {
	var msg protocol.Leaderboard
	if err := env.As(&msg); err != nil {
		obslog.L().Warn("drop_bad_payload", zap.String("type", env.Type), zap.Error(err))
		return
	}
	s.mu.Lock()
	s.leaderboard = msg.Players
	s.mu.Unlock()
	obslog.L().Debug("leaderboard_applied", zap.Int("count", len(msg.Players)))
}

func (s *Synchronizer) handleGameHistory(env *protocol.Envelope) {
	var msg protocol.GameHistory
	if err := env.As(&msg); err != nil {
		obslog.L().Warn("drop_bad_payload", zap.String("type", env.Type), zap.Error(err))
		return
	}
	s.mu.Lock()
	s.history = msg.Games
	s.mu.Unlock()
	obslog.L().Debug("game_history_applied", zap.Int("count", len(msg.Games)))
}

// handleChallengeReceived surfaces a binary decision that must resolve to
// exactly one of ACCEPT_CHALLENGE or DECLINE_CHALLENGE for the
// originating challenge id. The decision is an asynchronous continuation
// so inbound processing is never blocked on the user.
func (s *Synchronizer) handleChallengeReceived(env *protocol.Envelope) {
	var msg protocol.ChallengeReceived
	if err := env.As(&msg); err != nil {
		obslog.L().Warn("drop_bad_payload", zap.String("type", env.Type), zap.Error(err))
		return
	}
	decisionID := uuid.NewString()
	obslog.L().Info("challenge_received",
		zap.String("from", msg.FromUsername),
		zap.String("challenge_id", msg.ChallengeID),
		zap.String("decision_id", decisionID),
	)

	answer := s.prompter.Confirm(s.text.ChallengePrompt(msg.FromUsername))
	go func() {
		accepted := <-answer
		ctx := context.Background()
		var err error
		if accepted {
			err = s.out.AcceptChallenge(ctx, msg.ChallengeID)
		} else {
			err = s.out.DeclineChallenge(ctx, msg.ChallengeID)
		}
		obslog.L().Info("challenge_resolved",
			zap.String("decision_id", decisionID),
			zap.Bool("accepted", accepted),
			zap.Error(err),
		)
	}()
}

func (s *Synchronizer) handleChallengeSent(env *protocol.Envelope) {
	var msg protocol.ChallengeSent
	if err := env.As(&msg); err != nil {
		obslog.L().Warn("drop_bad_payload", zap.String("type", env.Type), zap.Error(err))
		return
	}
	s.notifier.Notice(s.text.ChallengeSent(msg.TargetUsername))
}

func (s *Synchronizer) handleChallengeCancelled(env *protocol.Envelope) {
	var msg protocol.ChallengeCancelled
	if err := env.As(&msg); err != nil {
		obslog.L().Warn("drop_bad_payload", zap.String("type", env.Type), zap.Error(err))
		return
	}
	s.notifier.Notice(s.text.ChallengeCancelled(msg.Message))
}
