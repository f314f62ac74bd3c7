package main

import (
	"bufio"
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/park285/chess-arena-client/internal/client"
	"github.com/park285/chess-arena-client/internal/config"
	"github.com/park285/chess-arena-client/internal/game"
	"github.com/park285/chess-arena-client/internal/msgcat"
	"github.com/park285/chess-arena-client/internal/obslog"
	"github.com/park285/chess-arena-client/internal/ui"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}
	if err := obslog.InitFromEnv(); err != nil {
		log.Fatalf("logger init error: %v", err)
	}

	cat, err := msgcat.New(cfg.MessageOverrideDir)
	if err != nil {
		log.Fatalf("message catalog error: %v", err)
	}
	text := ui.NewFormatter(cat)

	term := newTerminal()
	c, err := client.New(client.Options{
		Config:   cfg,
		Notifier: term,
		Prompter: term,
		Surface:  term,
		Status:   term,
		Text:     text,
	})
	if err != nil {
		log.Fatalf("client init error: %v", err)
	}

	cctx, cancel := context.WithTimeout(context.Background(), cfg.ConnectTimeout)
	if err := c.Connect(cctx); err != nil {
		cancel()
		log.Fatalf("connect error: %v", err)
	}
	cancel()

	done := make(chan struct{})
	go func() {
		runREPL(c, term)
		close(done)
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	select {
	case <-sigCh:
	case <-done:
	}

	sctx, scancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer scancel()
	_ = c.Close(sctx)
}

func runREPL(c *client.Client, term *terminal) {
	sc := bufio.NewScanner(os.Stdin)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" {
			continue
		}
		if term.feedAnswer(line) {
			continue
		}
		if !handleLine(c, line) {
			return
		}
	}
}

// handleLine executes one command; returns false to quit.
func handleLine(c *client.Client, line string) bool {
	parts := strings.Fields(line)
	cmd := strings.ToLower(parts[0])
	args := parts[1:]
	ctx := context.Background()

	switch cmd {
	case "help":
		fmt.Println(helpText())
	case "quit", "exit":
		return false

	case "login":
		if len(args) < 2 {
			fmt.Println("usage: login <user> <pass>")
			return true
		}
		report(c.Login(ctx, args[0], args[1]))
	case "register":
		if len(args) < 2 {
			fmt.Println("usage: register <user> <pass> [email]")
			return true
		}
		email := ""
		if len(args) >= 3 {
			email = args[2]
		}
		report(c.Register(ctx, args[0], args[1], email))
	case "logout":
		c.Logout(ctx)
	case "ack":
		c.AcknowledgeConflict(ctx)
	case "reconnect":
		report(c.Connect(ctx))

	case "players":
		if err := c.RefreshPlayers(ctx); err == nil {
			// The refreshed list arrives asynchronously; show what we have.
			for _, p := range c.Lobby().Players() {
				fmt.Printf("  %-20s %4d  %s\n", p.Username, p.Rating, p.Status)
			}
		}
	case "leaderboard", "lb":
		if err := c.RefreshLeaderboard(ctx); err == nil {
			for _, e := range c.Lobby().LeaderboardEntries() {
				fmt.Printf("  #%-3d %-20s %4d  %dW/%dL/%dD\n",
					e.Rank, e.Username, e.Rating, e.Wins, e.Losses, e.Draws)
			}
		}
	case "challenge":
		if len(args) < 1 {
			fmt.Println("usage: challenge <user>")
			return true
		}
		report(c.Challenge(ctx, args[0]))
	case "profile":
		if p := c.Lobby().Profile(); p != nil {
			fmt.Printf("  %s rating=%d %dW/%dL/%dD\n", p.Username, p.Rating, p.Wins, p.Losses, p.Draws)
		} else {
			fmt.Println("  (no profile)")
		}
	case "history":
		limit := 10
		if len(args) >= 1 {
			if n, err := strconv.Atoi(args[0]); err == nil && n > 0 {
				limit = n
			}
		}
		if err := c.RequestGameHistory(ctx, limit); err == nil {
			for _, g := range c.Lobby().History() {
				fmt.Printf("  %s vs %s  %s (%s, %d moves)\n",
					g.WhitePlayer, g.BlackPlayer, g.Result, g.Reason, g.MoveCount)
			}
		}
	case "archive":
		recs, err := c.RecentArchive(ctx, 10)
		if err != nil {
			fmt.Println("archive error: " + err.Error())
			return true
		}
		for _, r := range recs {
			fmt.Printf("  %s  %s vs %s  %s (%s) %s\n",
				r.EndedAt.Format("2006-01-02 15:04"), r.WhitePlayer, r.BlackPlayer,
				r.Result, r.Reason, game.FormatDuration(r.DurationSeconds))
		}

	case "board":
		fmt.Println(renderBoard(c.Game()))
	case "tap":
		if len(args) < 1 {
			fmt.Println("usage: tap <square>")
			return true
		}
		idx, err := game.FromAlgebraic(strings.ToLower(args[0]))
		if err != nil {
			fmt.Println(err.Error())
			return true
		}
		report(c.TapSquare(ctx, idx))
	case "move":
		if len(args) < 1 || len(args[0]) != 4 {
			fmt.Println("usage: move <from><to>  e.g. move e2e4")
			return true
		}
		sq := strings.ToLower(args[0])
		from, err := game.FromAlgebraic(sq[:2])
		if err != nil {
			fmt.Println(err.Error())
			return true
		}
		to, err := game.FromAlgebraic(sq[2:])
		if err != nil {
			fmt.Println(err.Error())
			return true
		}
		if err := c.TapSquare(ctx, from); err != nil {
			fmt.Println(err.Error())
			return true
		}
		report(c.TapSquare(ctx, to))
	case "resign":
		report(c.Resign(ctx))
	case "draw":
		report(c.OfferDraw(ctx))
	case "dismiss", "ok":
		if s := c.Game().Summary(); s != nil {
			fmt.Printf("  %s, %s, %d moves in %s\n", s.Result, game.FormatReason(s.Reason),
				s.MoveCount, game.FormatDuration(s.DurationSeconds))
		}
		report(c.DismissSummary(ctx))

	default:
		fmt.Println("Unknown command. Try 'help'.")
	}
	return true
}

func report(err error) {
	if err != nil {
		fmt.Println("error: " + err.Error())
	}
}

func helpText() string {
	return strings.Join([]string{
		"♞ Chess Arena Client",
		"",
		"  login <user> <pass>      register <user> <pass> [email]",
		"  logout                   ack (dismiss session conflict)",
		"  players  leaderboard     challenge <user>",
		"  profile  history [n]     archive",
		"  board    move e2e4       tap <square>",
		"  resign   draw            dismiss",
		"  reconnect  quit",
	}, "\n")
}
