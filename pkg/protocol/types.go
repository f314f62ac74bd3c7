package protocol

// Message type discriminators. Every frame on the wire is a JSON object
// carrying one of these under the "type" key.
const (
	// Session
	TypeVerifySession  = "VERIFY_SESSION"
	TypeSessionValid   = "SESSION_VALID"
	TypeSessionInvalid = "SESSION_INVALID"

	// Authentication
	TypeLogin            = "LOGIN"
	TypeLoginResponse    = "LOGIN_RESPONSE"
	TypeRegister         = "REGISTER"
	TypeRegisterResponse = "REGISTER_RESPONSE"
	TypeLogout           = "LOGOUT"
	TypeDuplicateSession = "DUPLICATE_SESSION"

	// Lobby
	TypeGetAvailablePlayers = "GET_AVAILABLE_PLAYERS"
	TypePlayerList          = "PLAYER_LIST"
	TypePlayerStatusUpdate  = "PLAYER_STATUS_UPDATE"
	TypeGetLeaderboard      = "GET_LEADERBOARD"
	TypeLeaderboard         = "LEADERBOARD"

	// Matchmaking
	TypeChallenge          = "CHALLENGE"
	TypeChallengeSent      = "CHALLENGE_SENT"
	TypeChallengeReceived  = "CHALLENGE_RECEIVED"
	TypeAcceptChallenge    = "ACCEPT_CHALLENGE"
	TypeDeclineChallenge   = "DECLINE_CHALLENGE"
	TypeChallengeCancelled = "CHALLENGE_CANCELLED"
	TypeMatchStarted       = "MATCH_STARTED"

	// Gameplay
	TypeMove              = "MOVE"
	TypeMoveAccepted      = "MOVE_ACCEPTED"
	TypeMoveRejected      = "MOVE_REJECTED"
	TypeOpponentMove      = "OPPONENT_MOVE"
	TypeResign            = "RESIGN"
	TypeDrawOffer         = "DRAW_OFFER"
	TypeDrawOfferReceived = "DRAW_OFFER_RECEIVED"
	TypeDrawResponse      = "DRAW_RESPONSE"
	TypeGameEnded         = "GAME_ENDED"

	// Game state
	TypeGetGameState   = "GET_GAME_STATE"
	TypeGameState      = "GAME_STATE"
	TypeGetGameHistory = "GET_GAME_HISTORY"
	TypeGameHistory    = "GAME_HISTORY"

	// System
	TypeError = "ERROR"
)

// StatusSuccess is the positive value of the "status" field on
// LOGIN_RESPONSE and REGISTER_RESPONSE frames.
const StatusSuccess = "success"

// Player lobby availability states.
const (
	PlayerAvailable = "available"
	PlayerBusy      = "busy"
	PlayerInGame    = "in_game"
)

// Color identifies a chess side as the server spells it.
const (
	ColorWhite = "white"
	ColorBlack = "black"
)

// Game results as reported by GAME_ENDED.
const (
	ResultWhiteWin = "WHITE_WIN"
	ResultBlackWin = "BLACK_WIN"
	ResultDraw     = "DRAW"
)
