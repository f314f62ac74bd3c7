package ui

import (
	"fmt"

	"github.com/park285/chess-arena-client/internal/msgcat"
)

// Formatter renders user-facing text through the message catalog, with
// hardcoded fallbacks when a template is missing or broken.
type Formatter struct {
	cat *msgcat.Catalog
}

func NewFormatter(cat *msgcat.Catalog) *Formatter {
	return &Formatter{cat: cat}
}

func (f *Formatter) render(key string, data map[string]any, fallback string) string {
	if f == nil || f.cat == nil {
		return fallback
	}
	out, err := f.cat.Render(key, data)
	if err != nil {
		return fallback
	}
	return out
}

func (f *Formatter) Connected() string {
	return f.render("conn.connected", nil, "Connected to server.")
}

func (f *Formatter) Disconnected() string {
	return f.render("conn.disconnected", nil, "Disconnected from server.")
}

func (f *Formatter) NotConnected() string {
	return f.render("conn.not_connected", nil, "Not connected to server.")
}

func (f *Formatter) LoginFailed(reason string) string {
	return f.render("auth.login_failed", map[string]any{"Reason": reason},
		fmt.Sprintf("Login failed: %s", reason))
}

func (f *Formatter) RegisterOK() string {
	return f.render("auth.register_ok", nil, "Registration successful! Please login.")
}

func (f *Formatter) RegisterFailed(reason string) string {
	return f.render("auth.register_failed", map[string]any{"Reason": reason},
		fmt.Sprintf("Registration failed: %s", reason))
}

func (f *Formatter) LoggedOut() string {
	return f.render("auth.logged_out", nil, "Logged out.")
}

func (f *Formatter) ConflictPrompt() string {
	return f.render("auth.conflict_prompt", nil,
		"Another connection is using this session. Dismiss and sign in again?")
}

func (f *Formatter) ChallengePrompt(from string) string {
	return f.render("lobby.challenge_prompt", map[string]any{"From": from},
		fmt.Sprintf("You have received a challenge from %s. Do you accept?", from))
}

func (f *Formatter) ChallengeSent(target string) string {
	return f.render("lobby.challenge_sent", map[string]any{"Target": target},
		fmt.Sprintf("Challenge sent to %s.", target))
}

func (f *Formatter) ChallengeCancelled(reason string) string {
	return f.render("lobby.challenge_cancelled", map[string]any{"Reason": reason},
		fmt.Sprintf("Challenge cancelled: %s", reason))
}

func (f *Formatter) NotAuthenticated() string {
	return f.render("lobby.not_authenticated", nil, "Not logged in.")
}

func (f *Formatter) YourTurn(color string) string {
	return f.render("game.your_turn", map[string]any{"Color": color},
		fmt.Sprintf("YOUR TURN (%s)", color))
}

func (f *Formatter) OpponentTurn(color string) string {
	return f.render("game.opponent_turn", map[string]any{"Color": color},
		fmt.Sprintf("Opponent's turn (%s)", color))
}

func (f *Formatter) CheckYou() string {
	return f.render("game.check_you", nil, "CHECK! You must defend your king!")
}

func (f *Formatter) CheckOpponent() string {
	return f.render("game.check_opponent", nil, "CHECK! Opponent's king is under attack.")
}

func (f *Formatter) MoveRejected(reason string) string {
	return f.render("game.move_rejected", map[string]any{"Reason": reason},
		fmt.Sprintf("Move rejected: %s", reason))
}

func (f *Formatter) DrawPrompt() string {
	return f.render("game.draw_prompt", nil, "Your opponent has offered a draw. Do you accept?")
}

func (f *Formatter) Victory() string { return f.render("game.victory", nil, "Victory!") }
func (f *Formatter) Defeat() string  { return f.render("game.defeat", nil, "Defeat") }
func (f *Formatter) Draw() string    { return f.render("game.draw", nil, "Draw") }
func (f *Formatter) GameOver() string {
	return f.render("game.game_over", nil, "Game Over")
}

func (f *Formatter) ServerError(code, reason string) string {
	return f.render("server.error", map[string]any{"Code": code, "Reason": reason},
		fmt.Sprintf("Server error %s: %s", code, reason))
}
