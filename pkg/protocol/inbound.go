package protocol

// Inbound payloads. Field sets follow the server's frames; absent
// optional fields decode to zero values.

// UserData is the profile blob attached to SESSION_VALID and a
// successful LOGIN_RESPONSE.
type UserData struct {
	UserID   int    `json:"user_id"`
	Username string `json:"username"`
	Rating   int    `json:"rating"`
	Wins     int    `json:"wins"`
	Losses   int    `json:"losses"`
	Draws    int    `json:"draws"`
}

type SessionValid struct {
	SessionID string    `json:"session_id"`
	UserData  *UserData `json:"user_data"`
}

type LoginResponse struct {
	Status    string    `json:"status"`
	SessionID string    `json:"session_id"`
	UserData  *UserData `json:"user_data"`
	Message   string    `json:"message"`
}

type RegisterResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

type DuplicateSession struct {
	Message string `json:"message"`
}

// Player is one lobby entry. The list is replaced wholesale on every
// PLAYER_LIST push.
type Player struct {
	Username string `json:"username"`
	Rating   int    `json:"rating"`
	Status   string `json:"status"`
}

type PlayerList struct {
	Players []Player `json:"players"`
}

type LeaderboardEntry struct {
	Rank     int    `json:"rank"`
	Username string `json:"username"`
	Rating   int    `json:"rating"`
	Wins     int    `json:"wins"`
	Losses   int    `json:"losses"`
	Draws    int    `json:"draws"`
}

type Leaderboard struct {
	Players []LeaderboardEntry `json:"players"`
}

type ChallengeSent struct {
	TargetUsername string `json:"target_username"`
	Status         string `json:"status"`
}

type ChallengeReceived struct {
	FromUsername string `json:"from_username"`
	ChallengeID  string `json:"challenge_id"`
}

type ChallengeCancelled struct {
	ChallengeID string `json:"challenge_id"`
	Message     string `json:"message"`
}

type MatchStarted struct {
	GameID    string `json:"game_id"`
	YourColor string `json:"your_color"`
}

// GameState doubles as the OPPONENT_MOVE payload, which has the same
// shape. BoardState is the compact rank-major encoding.
type GameState struct {
	GameID      string `json:"game_id"`
	WhitePlayer string `json:"white_player"`
	BlackPlayer string `json:"black_player"`
	BoardState  string `json:"board_state"`
	CurrentTurn string `json:"current_turn"`
	IsCheck     bool   `json:"is_check"`
}

type MoveAccepted struct {
	BoardState  string `json:"board_state"`
	CurrentTurn string `json:"current_turn"`
	IsCheck     bool   `json:"is_check"`
}

type MoveRejected struct {
	Reason string `json:"reason"`
}

type GameEnded struct {
	Result          string   `json:"result"`
	Winner          string   `json:"winner"`
	Loser           string   `json:"loser"`
	Reason          string   `json:"reason"`
	WhitePlayer     string   `json:"white_player"`
	BlackPlayer     string   `json:"black_player"`
	MoveCount       int      `json:"move_count"`
	DurationSeconds int      `json:"duration_seconds"`
	MoveHistory     []string `json:"move_history"`
}

// GameHistoryItem is one finished game in the GAME_HISTORY response.
type GameHistoryItem struct {
	GameID      string `json:"game_id"`
	WhitePlayer string `json:"white_player"`
	BlackPlayer string `json:"black_player"`
	Result      string `json:"result"`
	Reason      string `json:"reason"`
	MoveCount   int    `json:"move_count"`
	EndedAt     string `json:"ended_at"`
}

type GameHistory struct {
	Games []GameHistoryItem `json:"games"`
}

type ErrorMessage struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}
