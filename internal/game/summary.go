package game

import (
	"fmt"

	"github.com/park285/chess-arena-client/pkg/protocol"
)

// Summary captures the final GAME_ENDED facts for display until the user
// dismisses them.
type Summary struct {
	Result          string
	Winner          string
	Loser           string
	Reason          string
	WhitePlayer     string
	BlackPlayer     string
	MoveCount       int
	DurationSeconds int
	MoveHistory     []string
}

type Outcome string

const (
	OutcomeWin     Outcome = "win"
	OutcomeLoss    Outcome = "loss"
	OutcomeDraw    Outcome = "draw"
	OutcomeUnknown Outcome = "unknown"
)

// OutcomeFor resolves the local player's result. Winner/loser fields are
// authoritative; when neither matches (older servers omit them), the
// result falls back through the color assignments.
func (s *Summary) OutcomeFor(username string) Outcome {
	if s.Result != protocol.ResultWhiteWin && s.Result != protocol.ResultBlackWin {
		return OutcomeDraw
	}
	if username != "" && s.Winner == username {
		return OutcomeWin
	}
	if username != "" && s.Loser == username {
		return OutcomeLoss
	}

	isWhite := username != "" && s.WhitePlayer == username
	isBlack := username != "" && s.BlackPlayer == username
	switch {
	case (s.Result == protocol.ResultWhiteWin && isWhite) || (s.Result == protocol.ResultBlackWin && isBlack):
		return OutcomeWin
	case (s.Result == protocol.ResultWhiteWin && isBlack) || (s.Result == protocol.ResultBlackWin && isWhite):
		return OutcomeLoss
	default:
		return OutcomeUnknown
	}
}

// FormatReason maps the server's end-of-game reason codes to display
// text, passing unknown codes through.
func FormatReason(reason string) string {
	switch reason {
	case "checkmate":
		return "Checkmate"
	case "resignation":
		return "Resignation"
	case "timeout":
		return "Time Out"
	case "draw_agreement":
		return "Draw by Agreement"
	case "stalemate":
		return "Stalemate"
	case "opponent_disconnected":
		return "Opponent Disconnected"
	case "insufficient_material":
		return "Insufficient Material"
	case "":
		return "Game Over"
	default:
		return reason
	}
}

// FormatDuration renders seconds as m:ss.
func FormatDuration(seconds int) string {
	if seconds < 0 {
		seconds = 0
	}
	return fmt.Sprintf("%d:%02d", seconds/60, seconds%60)
}
