package router

import (
	"go.uber.org/zap"

	"github.com/park285/chess-arena-client/internal/obslog"
	"github.com/park285/chess-arena-client/pkg/protocol"
)

// Handler is one feature module in the dispatch chain. TryHandle returns
// true when the message is claimed, which stops propagation.
type Handler interface {
	Name() string
	TryHandle(env *protocol.Envelope) bool
}

// Router offers each inbound envelope to the registered handlers in fixed
// order; the first claim wins. Messages nobody claims go to the core
// handler, and are dropped (logged) if the core declines too. A handler
// panic is contained, logged and treated as non-claiming so one bad
// handler can never stall the dispatch loop.
type Router struct {
	handlers []Handler
	core     Handler
}

func New(core Handler, handlers ...Handler) *Router {
	return &Router{handlers: handlers, core: core}
}

// Register appends a handler behind the existing chain.
func (r *Router) Register(h Handler) {
	if h != nil {
		r.handlers = append(r.handlers, h)
	}
}

// Dispatch parses one raw frame and routes it. Parse failures are logged
// and dropped at this boundary; they never propagate.
func (r *Router) Dispatch(raw []byte) {
	env, err := protocol.Decode(raw)
	if err != nil {
		obslog.L().Warn("drop_malformed_frame", zap.Error(err))
		return
	}

	for _, h := range r.handlers {
		if r.tryHandle(h, env) {
			return
		}
	}
	if r.core != nil && r.tryHandle(r.core, env) {
		return
	}
	obslog.L().Debug("drop_unclaimed_message", zap.String("type", env.Type))
}

func (r *Router) tryHandle(h Handler, env *protocol.Envelope) (claimed bool) {
	defer func() {
		if rec := recover(); rec != nil {
			obslog.L().Error("handler_panic",
				zap.String("handler", h.Name()),
				zap.String("type", env.Type),
				zap.Any("panic", rec),
			)
			claimed = false
		}
	}()
	return h.TryHandle(env)
}
