package client

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/park285/chess-arena-client/internal/appstate"
	"github.com/park285/chess-arena-client/internal/archive"
	"github.com/park285/chess-arena-client/internal/command"
	"github.com/park285/chess-arena-client/internal/config"
	"github.com/park285/chess-arena-client/internal/game"
	"github.com/park285/chess-arena-client/internal/lobby"
	"github.com/park285/chess-arena-client/internal/obslog"
	"github.com/park285/chess-arena-client/internal/router"
	"github.com/park285/chess-arena-client/internal/session"
	"github.com/park285/chess-arena-client/internal/transport"
	"github.com/park285/chess-arena-client/internal/ui"
)

// Options carries the presentation surfaces the client renders into.
type Options struct {
	Config   *config.AppConfig
	Notifier ui.Notifier
	Prompter ui.Prompter
	Surface  ui.Surface
	Status   ui.StatusSink
	Text     *ui.Formatter
}

// Client wires the transport, dispatch chain and feature modules into
// one runnable unit. All inbound processing happens on the transport's
// reader goroutine in arrival order.
type Client struct {
	cfg *config.AppConfig

	conn     *transport.Conn
	identity *appstate.Identity
	out      *command.Builder
	coord    *session.Coordinator
	lobby    *lobby.Synchronizer
	game     *game.Machine
	router   *router.Router
	archive  archive.Repository

	notifier ui.Notifier
	text     *ui.Formatter
	status   ui.StatusSink
}

func New(opts Options) (*Client, error) {
	cfg := opts.Config

	identity := appstate.NewIdentity()
	conn := transport.New(cfg.ServerWSURL, cfg.ConnectTimeout, cfg.PingInterval)
	out := command.NewBuilder(conn, identity, opts.Notifier, opts.Text)

	store, err := buildStore(cfg)
	if err != nil {
		return nil, err
	}
	repo, err := buildArchive(cfg)
	if err != nil {
		return nil, err
	}

	coord := session.NewCoordinator(store, out, identity, conn,
		opts.Notifier, opts.Prompter, opts.Surface, opts.Text)
	sync := lobby.NewSynchronizer(out, coord, opts.Notifier, opts.Prompter, opts.Text)
	machine := game.NewMachine(out, identity, opts.Notifier, opts.Prompter,
		opts.Surface, opts.Text, sync)

	coord.OnAuthenticated(sync.OnAuthenticated)
	coord.OnReset(sync.Reset)
	coord.OnReset(machine.Reset)

	machine.OnEnded(func(s *game.Summary) {
		rec := archive.NewRecord()
		rec.GameID = identity.GameID()
		rec.Username = identity.Username()
		rec.MyColor = machine.MyColor()
		rec.Result = s.Result
		rec.Reason = s.Reason
		rec.WhitePlayer = s.WhitePlayer
		rec.BlackPlayer = s.BlackPlayer
		rec.MoveCount = s.MoveCount
		rec.DurationSeconds = s.DurationSeconds
		rec.MoveHistory = s.MoveHistory
		go func() {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := repo.SaveResult(ctx, rec); err != nil {
				obslog.L().Warn("archive_save_failed", zap.Error(err))
			}
		}()
	})

	// Conflict pre-empts everything; core takes whatever the feature
	// handlers decline.
	disp := router.New(session.NewCoreHandler(coord),
		session.NewConflictHandler(coord), sync, machine)

	c := &Client{
		cfg:      cfg,
		conn:     conn,
		identity: identity,
		out:      out,
		coord:    coord,
		lobby:    sync,
		game:     machine,
		router:   disp,
		archive:  repo,
		notifier: opts.Notifier,
		text:     opts.Text,
		status:   opts.Status,
	}

	conn.OnMessage(disp.Dispatch)
	conn.OnStateChange(c.onTransportStatus)
	return c, nil
}

func buildStore(cfg *config.AppConfig) (session.Store, error) {
	if cfg.RedisURL != "" {
		store, err := session.NewRedisStore(cfg.RedisURL)
		if err == nil {
			return store, nil
		}
		obslog.L().Warn("redis_store_unavailable", zap.Error(err))
	}
	return session.NewFileStore(cfg.SessionCachePath), nil
}

func buildArchive(cfg *config.AppConfig) (archive.Repository, error) {
	if cfg.DatabaseURL != "" {
		repo, err := archive.NewPostgresRepository(cfg.DatabaseURL)
		if err == nil {
			return repo, nil
		}
		obslog.L().Warn("archive_db_unavailable", zap.Error(err))
	}
	return archive.NewMemoryRepository(), nil
}

func (c *Client) onTransportStatus(status transport.Status) {
	if c.status != nil {
		c.status.ConnectionStatus(string(status))
	}
	switch status {
	case transport.StatusOpen:
		c.notifier.Notice(c.text.Connected())
		c.coord.ResumeFromCache(context.Background())
	case transport.StatusClosed, transport.StatusError:
		c.notifier.Notice(c.text.Disconnected())
		c.coord.OnTransportDown()
	}
}

// Connect probes the endpoint when configured, then dials. Reconnection
// after a drop is this same call again; it is never automatic.
func (c *Client) Connect(ctx context.Context) error {
	if c.cfg.ProbeBeforeDial {
		if err := transport.Probe(ctx, c.cfg.ServerWSURL, c.cfg.ConnectTimeout); err != nil {
			obslog.L().Warn("endpoint_probe_failed", zap.Error(err))
		}
	}
	return c.conn.Connect(ctx)
}

// Close tears down the transport and the archive.
func (c *Client) Close(ctx context.Context) error {
	err := c.conn.Close(ctx)
	if cerr := c.archive.Close(); err == nil {
		err = cerr
	}
	return err
}

func (c *Client) Connected() bool { return c.conn.Status() == transport.StatusOpen }

func (c *Client) Session() *session.Coordinator { return c.coord }

func (c *Client) Lobby() *lobby.Synchronizer { return c.lobby }

func (c *Client) Game() *game.Machine { return c.game }

func (c *Client) Login(ctx context.Context, username, password string) error {
	return c.coord.Login(ctx, username, password)
}

func (c *Client) Register(ctx context.Context, username, password, email string) error {
	return c.coord.Register(ctx, username, password, email)
}

func (c *Client) Logout(ctx context.Context) { c.coord.Logout(ctx) }

func (c *Client) AcknowledgeConflict(ctx context.Context) { c.coord.AcknowledgeConflict(ctx) }

func (c *Client) RefreshPlayers(ctx context.Context) error { return c.lobby.RequestPlayers(ctx) }

func (c *Client) RefreshLeaderboard(ctx context.Context) error {
	return c.lobby.RequestLeaderboard(ctx, c.cfg.LeaderboardLimit)
}

func (c *Client) Challenge(ctx context.Context, target string) error {
	return c.lobby.ChallengePlayer(ctx, target)
}

func (c *Client) TapSquare(ctx context.Context, index int) error { return c.game.TapSquare(ctx, index) }

func (c *Client) Resign(ctx context.Context) error { return c.game.Resign(ctx) }

func (c *Client) OfferDraw(ctx context.Context) error { return c.game.OfferDraw(ctx) }

func (c *Client) DismissSummary(ctx context.Context) error { return c.game.DismissSummary(ctx) }

// RequestGameHistory asks the server for this account's finished games.
func (c *Client) RequestGameHistory(ctx context.Context, limit int) error {
	return c.lobby.RequestHistory(ctx, limit)
}

// RecentArchive reads the locally archived finished games.
func (c *Client) RecentArchive(ctx context.Context, limit int) ([]archive.Record, error) {
	return c.archive.Recent(ctx, limit)
}
