package main

import (
	"fmt"
	"strings"
	"sync"

	"github.com/park285/chess-arena-client/internal/game"
)

// terminal is the stdin/stdout presentation layer. Notices print
// immediately; yes/no prompts park a channel that the read loop feeds
// from the next y/n line.
type terminal struct {
	mu      sync.Mutex
	pending chan bool
}

func newTerminal() *terminal { return &terminal{} }

func (t *terminal) Notice(text string) {
	fmt.Println(">> " + text)
}

func (t *terminal) Confirm(prompt string) <-chan bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.pending != nil {
		// Only one question at a time; a second one is answered no.
		ch := make(chan bool, 1)
		ch <- false
		return ch
	}
	fmt.Println("?? " + prompt + " [y/n]")
	t.pending = make(chan bool, 1)
	return t.pending
}

// feedAnswer resolves the pending prompt, reporting whether the line was
// consumed as an answer.
func (t *terminal) feedAnswer(line string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.pending == nil {
		return false
	}
	switch strings.ToLower(strings.TrimSpace(line)) {
	case "y", "yes":
		t.pending <- true
	case "n", "no":
		t.pending <- false
	default:
		fmt.Println("?? please answer y or n")
		return true
	}
	t.pending = nil
	return true
}

func (t *terminal) ShowEntry() {
	fmt.Println("-- entry: login <user> <pass> | register <user> <pass> [email]")
}

func (t *terminal) ShowLobby() {
	fmt.Println("-- lobby: players | leaderboard | challenge <user> | history | logout")
}

func (t *terminal) ShowGame() {
	fmt.Println("-- game: board | move <from><to> | tap <square> | resign | draw")
}

func (t *terminal) ConnectionStatus(text string) {
	fmt.Println("-- connection: " + text)
}

// renderBoard prints the board in the player's orientation with rank and
// file legends, marking the selected square and a king in check.
func renderBoard(m *game.Machine) string {
	board, ok := m.BoardSnapshot()
	if !ok {
		return "(no board yet)"
	}
	flipped := m.Flipped()
	selected := m.Selection()
	checked := m.CheckSquare()

	var b strings.Builder
	for row := 0; row < 8; row++ {
		displayRank := 8 - row
		if flipped {
			displayRank = row + 1
		}
		b.WriteString(fmt.Sprintf("%d ", displayRank))
		for col := 0; col < 8; col++ {
			logical := game.DisplayIndex(row*8+col, flipped)
			p := board[logical]
			cell := string(p.Glyph())
			switch logical {
			case selected:
				cell = "[" + cell + "]"
			case checked:
				cell = "!" + cell + "!"
			default:
				cell = " " + cell + " "
			}
			b.WriteString(cell)
		}
		b.WriteByte('\n')
	}
	b.WriteString("  ")
	for col := 0; col < 8; col++ {
		file := byte('a' + col)
		if flipped {
			file = byte('h' - col)
		}
		b.WriteString(fmt.Sprintf(" %c ", file))
	}
	if label := m.TurnLabel(); label != "" {
		b.WriteString("\n" + label)
	}
	return b.String()
}
