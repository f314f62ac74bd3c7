package session

import (
	"github.com/park285/chess-arena-client/internal/obslog"
	"github.com/park285/chess-arena-client/pkg/protocol"
	"go.uber.org/zap"
)

// ConflictHandler claims DUPLICATE_SESSION ahead of every other handler
// so a conflict pre-empts generic session handling. Register it first.
type ConflictHandler struct {
	c *Coordinator
}

func NewConflictHandler(c *Coordinator) *ConflictHandler { return &ConflictHandler{c: c} }

func (h *ConflictHandler) Name() string { return "session-conflict" }

func (h *ConflictHandler) TryHandle(env *protocol.Envelope) bool {
	if env.Type != protocol.TypeDuplicateSession {
		return false
	}
	h.c.handleDuplicateConflict(env)
	return true
}

// CoreHandler is the router's default: it processes the core session and
// auth messages that no feature handler claimed.
type CoreHandler struct {
	c *Coordinator
}

func NewCoreHandler(c *Coordinator) *CoreHandler { return &CoreHandler{c: c} }

func (h *CoreHandler) Name() string { return "session-core" }

func (h *CoreHandler) TryHandle(env *protocol.Envelope) bool {
	switch env.Type {
	case protocol.TypeSessionValid:
		h.c.handleSessionValid(env)
	case protocol.TypeSessionInvalid:
		h.c.handleSessionInvalid()
	case protocol.TypeLoginResponse:
		h.c.handleLoginResponse(env)
	case protocol.TypeRegisterResponse:
		h.c.handleRegisterResponse(env)
	case protocol.TypeError:
		var msg protocol.ErrorMessage
		if err := env.As(&msg); err != nil {
			obslog.L().Warn("drop_bad_payload", zap.String("type", env.Type), zap.Error(err))
			return true
		}
		h.c.notifier.Notice(h.c.text.ServerError(msg.Code, msg.Message))
	default:
		return false
	}
	return true
}
