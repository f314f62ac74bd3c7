package protocol

// Outbound commands. Session-scoped commands carry the current session
// token; game-scoped commands carry the current game id as well. The
// command builder stamps both.

type Login struct {
	Type     string `json:"type"`
	Username string `json:"username"`
	Password string `json:"password"`
}

type Register struct {
	Type     string `json:"type"`
	Username string `json:"username"`
	Password string `json:"password"`
	Email    string `json:"email"`
}

type VerifySession struct {
	Type      string `json:"type"`
	SessionID string `json:"session_id"`
}

type Logout struct {
	Type      string `json:"type"`
	SessionID string `json:"session_id"`
}

type GetAvailablePlayers struct {
	Type      string `json:"type"`
	SessionID string `json:"session_id"`
}

type GetLeaderboard struct {
	Type      string `json:"type"`
	SessionID string `json:"session_id"`
	Limit     int    `json:"limit"`
}

type Challenge struct {
	Type           string `json:"type"`
	SessionID      string `json:"session_id"`
	TargetUsername string `json:"target_username"`
}

type AcceptChallenge struct {
	Type        string `json:"type"`
	SessionID   string `json:"session_id"`
	ChallengeID string `json:"challenge_id"`
}

type DeclineChallenge struct {
	Type        string `json:"type"`
	SessionID   string `json:"session_id"`
	ChallengeID string `json:"challenge_id"`
}

type GetGameState struct {
	Type      string `json:"type"`
	SessionID string `json:"session_id"`
	GameID    string `json:"game_id"`
}

type GetGameHistory struct {
	Type      string `json:"type"`
	SessionID string `json:"session_id"`
	Limit     int    `json:"limit"`
}

// Move carries a four-character from+to algebraic pair, e.g. "e2e4".
type Move struct {
	Type      string `json:"type"`
	SessionID string `json:"session_id"`
	GameID    string `json:"game_id"`
	Move      string `json:"move"`
}

type Resign struct {
	Type      string `json:"type"`
	SessionID string `json:"session_id"`
	GameID    string `json:"game_id"`
}

type DrawOffer struct {
	Type      string `json:"type"`
	SessionID string `json:"session_id"`
	GameID    string `json:"game_id"`
}

type DrawResponse struct {
	Type      string `json:"type"`
	SessionID string `json:"session_id"`
	GameID    string `json:"game_id"`
	Accepted  bool   `json:"accepted"`
}
