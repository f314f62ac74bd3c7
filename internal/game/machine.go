package game

import (
	"context"
	"errors"
	"sync"

	"go.uber.org/zap"

	"github.com/park285/chess-arena-client/internal/appstate"
	"github.com/park285/chess-arena-client/internal/command"
	"github.com/park285/chess-arena-client/internal/obslog"
	"github.com/park285/chess-arena-client/internal/ui"
	"github.com/park285/chess-arena-client/pkg/protocol"
)

// Phase is the game session lifecycle: NONE → ACTIVE → ENDED → NONE.
type Phase string

const (
	PhaseNone   Phase = "NONE"
	PhaseActive Phase = "ACTIVE"
	PhaseEnded  Phase = "ENDED"
)

var (
	ErrNoActiveGame = errors.New("no active game")
	ErrNoSummary    = errors.New("no game summary to dismiss")
	ErrSquareEmpty  = errors.New("square holds no piece")
	ErrBadSquare    = errors.New("square index out of range")
)

const noSelection = -1

type gameIdentity interface {
	appstate.GameWriter
	GameID() string
	Username() string
}

// lobbyRefresher is the slice of the lobby the machine pokes after a
// summary is dismissed.
type lobbyRefresher interface {
	RequestPlayers(ctx context.Context) error
	ReloadProfile(ctx context.Context) error
}

// Machine owns the active game: identity, color assignment, turn, board
// projection, local selection and check status. At most one game exists
// per session.
type Machine struct {
	mu          sync.RWMutex
	phase       Phase
	myColor     string
	turn        string
	board       Board
	haveBoard   bool
	checkColor  string // color currently in check, "" when none
	selection   int
	summary     *Summary
	whitePlayer string
	blackPlayer string

	out      *command.Builder
	id       gameIdentity
	notifier ui.Notifier
	prompter ui.Prompter
	surface  ui.Surface
	text     *ui.Formatter
	lobby    lobbyRefresher

	onEnded []func(*Summary)
}

func NewMachine(out *command.Builder, id gameIdentity, notifier ui.Notifier,
	prompter ui.Prompter, surface ui.Surface, text *ui.Formatter, lobby lobbyRefresher) *Machine {
	return &Machine{
		phase:     PhaseNone,
		selection: noSelection,
		out:       out,
		id:        id,
		notifier:  notifier,
		prompter:  prompter,
		surface:   surface,
		text:      text,
		lobby:     lobby,
	}
}

func (m *Machine) Name() string { return "game" }

// OnEnded registers a hook fired once per GAME_ENDED with the final
// summary, before the user dismisses it.
func (m *Machine) OnEnded(fn func(*Summary)) {
	if fn != nil {
		m.onEnded = append(m.onEnded, fn)
	}
}

func (m *Machine) Phase() Phase {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.phase
}

func (m *Machine) MyColor() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.myColor
}

// Flipped reports whether display order is mirrored: true exactly when
// the local player holds the color whose pieces start at the top.
func (m *Machine) Flipped() bool {
	return m.MyColor() == protocol.ColorBlack
}

func (m *Machine) Turn() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.turn
}

// TurnLabel renders the turn indicator for the presentation layer.
func (m *Machine) TurnLabel() string {
	m.mu.RLock()
	turn, mine := m.turn, m.myColor
	m.mu.RUnlock()
	if turn == "" {
		return ""
	}
	if turn == mine {
		return m.text.YourTurn(mine)
	}
	return m.text.OpponentTurn(turn)
}

func (m *Machine) Selection() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.selection
}

// BoardSnapshot returns the current board and whether one has been
// received for the active game.
func (m *Machine) BoardSnapshot() (Board, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.board, m.haveBoard
}

// CheckSquare returns the logical index of the king in check, -1 when no
// check is reported. Recomputed from current positions on every call.
func (m *Machine) CheckSquare() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.checkColor == "" || !m.haveBoard {
		return noSelection
	}
	return m.board.KingSquare(m.checkColor)
}

// Summary returns the pending end-of-game summary, nil outside ENDED.
func (m *Machine) Summary() *Summary {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.summary
}

func (m *Machine) Players() (white, black string) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.whitePlayer, m.blackPlayer
}

// Reset tears the machine back to NONE; wired to session teardown since
// a game cannot outlive its session.
func (m *Machine) Reset() {
	m.mu.Lock()
	m.phase = PhaseNone
	m.myColor = ""
	m.turn = ""
	m.board = Board{}
	m.haveBoard = false
	m.checkColor = ""
	m.selection = noSelection
	m.summary = nil
	m.whitePlayer = ""
	m.blackPlayer = ""
	m.mu.Unlock()
	m.id.ClearGame()
}

// TapSquare drives the selection sub-machine. The first tap on an
// occupied square selects it; the second tap submits the move and always
// returns to idle.
func (m *Machine) TapSquare(ctx context.Context, index int) error {
	if index < 0 || index >= Squares {
		return ErrBadSquare
	}
	if m.Phase() != PhaseActive {
		return ErrNoActiveGame
	}

	m.mu.Lock()
	if m.selection == noSelection {
		if m.board[index].Empty() {
			m.mu.Unlock()
			return ErrSquareEmpty
		}
		m.selection = index
		m.mu.Unlock()
		return nil
	}
	from := m.selection
	m.selection = noSelection
	m.mu.Unlock()

	return m.out.Move(ctx, ToAlgebraic(from)+ToAlgebraic(index))
}

// ClearSelection drops any pending selection without submitting.
func (m *Machine) ClearSelection() {
	m.mu.Lock()
	m.selection = noSelection
	m.mu.Unlock()
}

func (m *Machine) Resign(ctx context.Context) error {
	if m.Phase() != PhaseActive {
		return ErrNoActiveGame
	}
	return m.out.Resign(ctx)
}

func (m *Machine) OfferDraw(ctx context.Context) error {
	if m.Phase() != PhaseActive {
		return ErrNoActiveGame
	}
	return m.out.DrawOffer(ctx)
}

// DismissSummary is the only ENDED → NONE transition. It also refreshes
// the lobby projection and reloads the profile.
func (m *Machine) DismissSummary(ctx context.Context) error {
	m.mu.Lock()
	if m.phase != PhaseEnded {
		m.mu.Unlock()
		return ErrNoSummary
	}
	m.phase = PhaseNone
	m.summary = nil
	m.myColor = ""
	m.turn = ""
	m.board = Board{}
	m.haveBoard = false
	m.checkColor = ""
	m.selection = noSelection
	m.mu.Unlock()

	m.id.ClearGame()
	m.surface.ShowLobby()
	_ = m.lobby.ReloadProfile(ctx)
	_ = m.lobby.RequestPlayers(ctx)
	return nil
}

func (m *Machine) TryHandle(env *protocol.Envelope) bool {
	switch env.Type {
	case protocol.TypeMatchStarted:
		m.handleMatchStarted(env)
	case protocol.TypeGameState, protocol.TypeOpponentMove:
		m.handleGameState(env)
	case protocol.TypeMoveAccepted:
		m.handleMoveAccepted(env)
	case protocol.TypeMoveRejected:
		m.handleMoveRejected(env)
	case protocol.TypeDrawOfferReceived:
		m.handleDrawOfferReceived()
	case protocol.TypeGameEnded:
		m.handleGameEnded(env)
	default:
		return false
	}
	return true
}

func (m *Machine) handleMatchStarted(env *protocol.Envelope) {
	var msg protocol.MatchStarted
	if err := env.As(&msg); err != nil {
		obslog.L().Warn("drop_bad_payload", zap.String("type", env.Type), zap.Error(err))
		return
	}

	m.mu.Lock()
	m.phase = PhaseActive
	m.myColor = msg.YourColor
	m.turn = ""
	m.board = Board{}
	m.haveBoard = false
	m.checkColor = ""
	m.selection = noSelection
	m.summary = nil
	m.mu.Unlock()

	m.id.SetGame(msg.GameID)
	obslog.L().Info("match_started",
		zap.String("game_id", msg.GameID),
		zap.String("my_color", msg.YourColor),
	)

	m.surface.ShowGame()
	_ = m.out.GetGameState(context.Background(), msg.GameID)
}

// handleGameState applies a full game-state push (GAME_STATE or the
// identically shaped OPPONENT_MOVE). An unparseable push is dropped with
// prior state intact.
func (m *Machine) handleGameState(env *protocol.Envelope) {
	var msg protocol.GameState
	if err := env.As(&msg); err != nil {
		obslog.L().Warn("drop_bad_payload", zap.String("type", env.Type), zap.Error(err))
		return
	}

	board, haveBoard := Board{}, false
	if msg.BoardState != "" {
		b, err := DecodeBoard(msg.BoardState)
		if err != nil {
			obslog.L().Warn("drop_bad_board_state", zap.String("type", env.Type), zap.Error(err))
			return
		}
		board, haveBoard = b, true
	}

	m.mu.Lock()
	if m.phase == PhaseNone {
		// Reconnect into a game already in progress.
		m.phase = PhaseActive
	}
	if haveBoard {
		m.board = board
		m.haveBoard = true
	}
	if msg.CurrentTurn != "" {
		m.turn = msg.CurrentTurn
	}
	if msg.WhitePlayer != "" {
		m.whitePlayer = msg.WhitePlayer
	}
	if msg.BlackPlayer != "" {
		m.blackPlayer = msg.BlackPlayer
	}
	inCheck := msg.IsCheck && msg.CurrentTurn != "" && msg.CurrentTurn == m.myColor
	if inCheck {
		m.checkColor = m.myColor
	} else {
		m.checkColor = ""
	}
	m.mu.Unlock()

	if env.Type == protocol.TypeGameState && msg.GameID != "" {
		m.id.SetGame(msg.GameID)
		m.surface.ShowGame()
	}
	if inCheck {
		m.notifier.Notice(m.text.CheckYou())
	}
}

func (m *Machine) handleMoveAccepted(env *protocol.Envelope) {
	var msg protocol.MoveAccepted
	if err := env.As(&msg); err != nil {
		obslog.L().Warn("drop_bad_payload", zap.String("type", env.Type), zap.Error(err))
		return
	}

	board, haveBoard := Board{}, false
	if msg.BoardState != "" {
		b, err := DecodeBoard(msg.BoardState)
		if err != nil {
			obslog.L().Warn("drop_bad_board_state", zap.String("type", env.Type), zap.Error(err))
			return
		}
		board, haveBoard = b, true
	}

	m.mu.Lock()
	if haveBoard {
		m.board = board
		m.haveBoard = true
	}
	if msg.CurrentTurn != "" {
		m.turn = msg.CurrentTurn
	}
	// After our move is accepted the side to move is the opponent; a
	// reported check therefore pins their king.
	opponentChecked := msg.IsCheck && msg.CurrentTurn != ""
	if opponentChecked {
		m.checkColor = msg.CurrentTurn
	} else {
		m.checkColor = ""
	}
	m.mu.Unlock()

	if opponentChecked {
		m.notifier.Notice(m.text.CheckOpponent())
	}
}

// handleMoveRejected reverts the selection sub-machine to idle; the
// rejection is non-fatal and causes no phase transition.
func (m *Machine) handleMoveRejected(env *protocol.Envelope) {
	var msg protocol.MoveRejected
	if err := env.As(&msg); err != nil {
		obslog.L().Warn("drop_bad_payload", zap.String("type", env.Type), zap.Error(err))
		return
	}
	m.ClearSelection()
	m.notifier.Notice(m.text.MoveRejected(msg.Reason))
}

// handleDrawOfferReceived surfaces the yes/no decision asynchronously;
// the continuation resolves to exactly one DRAW_RESPONSE.
func (m *Machine) handleDrawOfferReceived() {
	answer := m.prompter.Confirm(m.text.DrawPrompt())
	go func() {
		accepted := <-answer
		_ = m.out.DrawResponse(context.Background(), accepted)
	}()
}

func (m *Machine) handleGameEnded(env *protocol.Envelope) {
	var msg protocol.GameEnded
	if err := env.As(&msg); err != nil {
		obslog.L().Warn("drop_bad_payload", zap.String("type", env.Type), zap.Error(err))
		return
	}

	summary := &Summary{
		Result:          msg.Result,
		Winner:          msg.Winner,
		Loser:           msg.Loser,
		Reason:          msg.Reason,
		WhitePlayer:     msg.WhitePlayer,
		BlackPlayer:     msg.BlackPlayer,
		MoveCount:       msg.MoveCount,
		DurationSeconds: msg.DurationSeconds,
		MoveHistory:     msg.MoveHistory,
	}

	m.mu.Lock()
	m.phase = PhaseEnded
	m.summary = summary
	m.selection = noSelection
	m.checkColor = ""
	m.mu.Unlock()

	obslog.L().Info("game_ended",
		zap.String("result", msg.Result),
		zap.String("reason", msg.Reason),
		zap.Int("moves", msg.MoveCount),
	)

	var headline string
	switch summary.OutcomeFor(m.id.Username()) {
	case OutcomeWin:
		headline = m.text.Victory()
	case OutcomeLoss:
		headline = m.text.Defeat()
	case OutcomeDraw:
		headline = m.text.Draw()
	default:
		headline = m.text.GameOver()
	}
	m.notifier.Notice(headline + " (" + FormatReason(msg.Reason) + ")")

	for _, fn := range m.onEnded {
		fn(summary)
	}
}
