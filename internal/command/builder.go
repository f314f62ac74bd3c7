package command

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/park285/chess-arena-client/internal/appstate"
	"github.com/park285/chess-arena-client/internal/obslog"
	"github.com/park285/chess-arena-client/internal/transport"
	"github.com/park285/chess-arena-client/internal/ui"
	"github.com/park285/chess-arena-client/pkg/protocol"
)

// Sender is what the builder needs from the transport.
type Sender interface {
	Send(ctx context.Context, v any) error
}

// Builder constructs typed outbound envelopes, stamping the current
// session token and game id from the shared identity. Sends are
// fire-and-forget; there is no correlation id, so callers rely on the
// at-most-one-outstanding-request-per-type convention.
type Builder struct {
	sender   Sender
	id       appstate.Reader
	notifier ui.Notifier
	text     *ui.Formatter
}

func NewBuilder(sender Sender, id appstate.Reader, notifier ui.Notifier, text *ui.Formatter) *Builder {
	return &Builder{sender: sender, id: id, notifier: notifier, text: text}
}

func (b *Builder) send(ctx context.Context, msgType string, v any) error {
	err := b.sender.Send(ctx, v)
	if err != nil {
		if errors.Is(err, transport.ErrNotConnected) && b.notifier != nil {
			b.notifier.Notice(b.text.NotConnected())
		}
		obslog.L().Warn("send_failed", zap.String("type", msgType), zap.Error(err))
		return err
	}
	obslog.L().Debug("sent", zap.String("type", msgType))
	return nil
}

func (b *Builder) Login(ctx context.Context, username, password string) error {
	return b.send(ctx, protocol.TypeLogin, protocol.Login{
		Type: protocol.TypeLogin, Username: username, Password: password,
	})
}

func (b *Builder) Register(ctx context.Context, username, password, email string) error {
	return b.send(ctx, protocol.TypeRegister, protocol.Register{
		Type: protocol.TypeRegister, Username: username, Password: password, Email: email,
	})
}

func (b *Builder) VerifySession(ctx context.Context) error {
	return b.send(ctx, protocol.TypeVerifySession, protocol.VerifySession{
		Type: protocol.TypeVerifySession, SessionID: b.id.SessionID(),
	})
}

func (b *Builder) Logout(ctx context.Context) error {
	return b.send(ctx, protocol.TypeLogout, protocol.Logout{
		Type: protocol.TypeLogout, SessionID: b.id.SessionID(),
	})
}

func (b *Builder) GetAvailablePlayers(ctx context.Context) error {
	return b.send(ctx, protocol.TypeGetAvailablePlayers, protocol.GetAvailablePlayers{
		Type: protocol.TypeGetAvailablePlayers, SessionID: b.id.SessionID(),
	})
}

func (b *Builder) GetLeaderboard(ctx context.Context, limit int) error {
	return b.send(ctx, protocol.TypeGetLeaderboard, protocol.GetLeaderboard{
		Type: protocol.TypeGetLeaderboard, SessionID: b.id.SessionID(), Limit: limit,
	})
}

func (b *Builder) Challenge(ctx context.Context, targetUsername string) error {
	return b.send(ctx, protocol.TypeChallenge, protocol.Challenge{
		Type: protocol.TypeChallenge, SessionID: b.id.SessionID(), TargetUsername: targetUsername,
	})
}

func (b *Builder) AcceptChallenge(ctx context.Context, challengeID string) error {
	return b.send(ctx, protocol.TypeAcceptChallenge, protocol.AcceptChallenge{
		Type: protocol.TypeAcceptChallenge, SessionID: b.id.SessionID(), ChallengeID: challengeID,
	})
}

func (b *Builder) DeclineChallenge(ctx context.Context, challengeID string) error {
	return b.send(ctx, protocol.TypeDeclineChallenge, protocol.DeclineChallenge{
		Type: protocol.TypeDeclineChallenge, SessionID: b.id.SessionID(), ChallengeID: challengeID,
	})
}

func (b *Builder) GetGameState(ctx context.Context, gameID string) error {
	return b.send(ctx, protocol.TypeGetGameState, protocol.GetGameState{
		Type: protocol.TypeGetGameState, SessionID: b.id.SessionID(), GameID: gameID,
	})
}

func (b *Builder) GetGameHistory(ctx context.Context, limit int) error {
	return b.send(ctx, protocol.TypeGetGameHistory, protocol.GetGameHistory{
		Type: protocol.TypeGetGameHistory, SessionID: b.id.SessionID(), Limit: limit,
	})
}

func (b *Builder) Move(ctx context.Context, move string) error {
	return b.send(ctx, protocol.TypeMove, protocol.Move{
		Type: protocol.TypeMove, SessionID: b.id.SessionID(), GameID: b.id.GameID(), Move: move,
	})
}

func (b *Builder) Resign(ctx context.Context) error {
	return b.send(ctx, protocol.TypeResign, protocol.Resign{
		Type: protocol.TypeResign, SessionID: b.id.SessionID(), GameID: b.id.GameID(),
	})
}

func (b *Builder) DrawOffer(ctx context.Context) error {
	return b.send(ctx, protocol.TypeDrawOffer, protocol.DrawOffer{
		Type: protocol.TypeDrawOffer, SessionID: b.id.SessionID(), GameID: b.id.GameID(),
	})
}

func (b *Builder) DrawResponse(ctx context.Context, accepted bool) error {
	return b.send(ctx, protocol.TypeDrawResponse, protocol.DrawResponse{
		Type: protocol.TypeDrawResponse, SessionID: b.id.SessionID(), GameID: b.id.GameID(), Accepted: accepted,
	})
}
