package transport

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"
	"nhooyr.io/websocket"
	"nhooyr.io/websocket/wsjson"

	"github.com/park285/chess-arena-client/internal/obslog"
)

// Status is the connection lifecycle as seen by the rest of the client.
type Status string

const (
	StatusConnecting Status = "connecting"
	StatusOpen       Status = "open"
	StatusClosed     Status = "closed"
	StatusError      Status = "error"
)

// ErrNotConnected is returned by Send when the transport is not open.
var ErrNotConnected = errors.New("transport not connected")

type MessageCallback func(frame []byte)

type StatusCallback func(status Status)

type msgEntry struct {
	id       int
	callback MessageCallback
}

type statusEntry struct {
	id       int
	callback StatusCallback
}

// Conn owns the single persistent websocket to the game server. Inbound
// frames are delivered to message callbacks from one reader goroutine, in
// arrival order. There is no automatic reconnect; reconnection is an
// explicit Connect after a close. Every teardown path, peer close and
// ping failure included, stops both goroutines.
type Conn struct {
	wsURL        string
	dialTimeout  time.Duration
	pingInterval time.Duration

	conn    *websocket.Conn // guarded by statusM
	status  Status
	statusM sync.RWMutex

	msgCbs    []msgEntry
	statusCbs []statusEntry
	nextCbID  int
	cbM       sync.RWMutex

	writeM sync.Mutex

	stopCh   chan struct{}
	stopOnce sync.Once
	wg       sync.WaitGroup

	rootCtx    context.Context
	rootCancel context.CancelFunc
}

func New(wsURL string, dialTimeout, pingInterval time.Duration) *Conn {
	if dialTimeout <= 0 {
		dialTimeout = 10 * time.Second
	}
	if pingInterval <= 0 {
		pingInterval = 30 * time.Second
	}
	return &Conn{
		wsURL:        wsURL,
		dialTimeout:  dialTimeout,
		pingInterval: pingInterval,
		status:       StatusClosed,
	}
}

// Connect dials the endpoint. Safe to call again after a close: the
// previous connection's goroutines are drained before the stop channel
// and root context are reused.
func (c *Conn) Connect(ctx context.Context) error {
	c.statusM.Lock()
	if c.status == StatusOpen || c.status == StatusConnecting {
		c.statusM.Unlock()
		return nil
	}
	c.statusM.Unlock()

	c.wg.Wait()

	c.rootCtx, c.rootCancel = context.WithCancel(context.Background())
	c.stopCh = make(chan struct{})
	c.stopOnce = sync.Once{}
	c.setStatus(StatusConnecting)

	dialCtx, cancel := context.WithTimeout(ctx, c.dialTimeout)
	defer cancel()

	conn, _, err := websocket.Dial(dialCtx, c.wsURL, &websocket.DialOptions{
		CompressionMode: websocket.CompressionNoContextTakeover,
	})
	if err != nil {
		c.setStatus(StatusError)
		return err
	}

	c.statusM.Lock()
	c.conn = conn
	c.statusM.Unlock()
	c.setStatus(StatusOpen)

	c.wg.Add(2)
	go c.listen()
	go c.pingLoop()
	return nil
}

func (c *Conn) listen() {
	defer c.wg.Done()
	for {
		select {
		case <-c.stopCh:
			return
		default:
		}

		conn := c.current()
		if conn == nil {
			return
		}
		_, data, err := conn.Read(c.rootCtx)
		if err != nil {
			if c.isStopping() {
				return
			}
			if websocket.CloseStatus(err) != -1 {
				c.shutdown(websocket.StatusGoingAway, "read failure", StatusClosed)
			} else {
				obslog.L().Warn("ws_read_error", zap.Error(err))
				c.shutdown(websocket.StatusGoingAway, "read failure", StatusError)
			}
			return
		}

		c.cbM.RLock()
		callbacks := make([]msgEntry, len(c.msgCbs))
		copy(callbacks, c.msgCbs)
		c.cbM.RUnlock()
		for _, entry := range callbacks {
			if entry.callback != nil {
				entry.callback(data)
			}
		}
	}
}

func (c *Conn) pingLoop() {
	defer c.wg.Done()
	t := time.NewTicker(c.pingInterval)
	defer t.Stop()
	failures := 0
	for {
		select {
		case <-c.stopCh:
			return
		case <-t.C:
			conn := c.current()
			if conn == nil {
				continue
			}
			ctx, cancel := context.WithTimeout(c.rootCtx, 3*time.Second)
			err := conn.Ping(ctx)
			cancel()
			if err != nil {
				if c.isStopping() {
					return
				}
				failures++
				if failures >= 2 {
					obslog.L().Warn("ws_ping_failure", zap.Error(err))
					c.shutdown(websocket.StatusGoingAway, "ping failure", StatusError)
					return
				}
				continue
			}
			failures = 0
		}
	}
}

// shutdown tears the connection down after a failure detected on the
// reader or ping goroutine: it stops both goroutines, closes the socket
// and publishes the final status. Only the first caller acts, so a read
// error and a ping failure racing each other produce one status event.
func (c *Conn) shutdown(code websocket.StatusCode, reason string, status Status) {
	fired := false
	c.stopOnceDo(func() {
		close(c.stopCh)
		fired = true
	})
	if !fired {
		return
	}
	if c.rootCancel != nil {
		c.rootCancel()
	}
	_ = c.closeConn(code, reason)
	c.setStatus(status)
}

// Send writes one JSON command frame. Fails with ErrNotConnected when the
// transport is not open instead of surfacing a write panic to callers.
func (c *Conn) Send(ctx context.Context, v any) error {
	c.statusM.RLock()
	conn := c.conn
	open := c.status == StatusOpen && conn != nil
	c.statusM.RUnlock()
	if !open {
		return ErrNotConnected
	}

	dctx := ctx
	if _, ok := ctx.Deadline(); !ok {
		var cancel context.CancelFunc
		dctx, cancel = context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
	}

	c.writeM.Lock()
	defer c.writeM.Unlock()
	return wsjson.Write(dctx, conn, v)
}

// OnMessage registers a raw frame callback and returns its id.
func (c *Conn) OnMessage(cb MessageCallback) int {
	c.cbM.Lock()
	defer c.cbM.Unlock()
	c.nextCbID++
	c.msgCbs = append(c.msgCbs, msgEntry{id: c.nextCbID, callback: cb})
	return c.nextCbID
}

func (c *Conn) RemoveMessageCallback(id int) {
	c.cbM.Lock()
	defer c.cbM.Unlock()
	for i, cb := range c.msgCbs {
		if cb.id == id {
			c.msgCbs = append(c.msgCbs[:i], c.msgCbs[i+1:]...)
			break
		}
	}
}

// OnStateChange registers a status callback and returns its id.
func (c *Conn) OnStateChange(cb StatusCallback) int {
	c.cbM.Lock()
	defer c.cbM.Unlock()
	c.nextCbID++
	c.statusCbs = append(c.statusCbs, statusEntry{id: c.nextCbID, callback: cb})
	return c.nextCbID
}

func (c *Conn) RemoveStateCallback(id int) {
	c.cbM.Lock()
	defer c.cbM.Unlock()
	for i, cb := range c.statusCbs {
		if cb.id == id {
			c.statusCbs = append(c.statusCbs[:i], c.statusCbs[i+1:]...)
			break
		}
	}
}

// Status returns the current connection status.
func (c *Conn) Status() Status {
	c.statusM.RLock()
	defer c.statusM.RUnlock()
	return c.status
}

func (c *Conn) setStatus(status Status) {
	c.statusM.Lock()
	c.status = status
	c.statusM.Unlock()

	c.cbM.RLock()
	callbacks := make([]statusEntry, len(c.statusCbs))
	copy(callbacks, c.statusCbs)
	c.cbM.RUnlock()
	for _, entry := range callbacks {
		if entry.callback != nil {
			entry.callback(status)
		}
	}
}

// Close shuts the connection down and waits for the reader and ping
// goroutines to drain, bounded by ctx. A connection already torn down by
// a failure keeps its error status.
func (c *Conn) Close(ctx context.Context) error {
	fired := false
	c.stopOnceDo(func() {
		close(c.stopCh)
		fired = true
	})
	if fired {
		if c.rootCancel != nil {
			c.rootCancel()
		}
		_ = c.closeConn(websocket.StatusNormalClosure, "close")
	}

	done := make(chan struct{})
	go func() {
		c.wg.Wait()
		close(done)
	}()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-done:
		if fired {
			c.setStatus(StatusClosed)
		}
		return nil
	}
}

func (c *Conn) stopOnceDo(fn func()) {
	if c.stopCh == nil {
		return
	}
	c.stopOnce.Do(fn)
}

func (c *Conn) current() *websocket.Conn {
	c.statusM.RLock()
	defer c.statusM.RUnlock()
	return c.conn
}

func (c *Conn) closeConn(code websocket.StatusCode, reason string) error {
	c.statusM.Lock()
	conn := c.conn
	c.conn = nil
	c.statusM.Unlock()
	if conn == nil {
		return nil
	}
	return conn.Close(code, reason)
}

func (c *Conn) isStopping() bool {
	if c.stopCh == nil {
		return true
	}
	select {
	case <-c.stopCh:
		return true
	default:
		return false
	}
}
