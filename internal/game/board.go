package game

import (
	"fmt"
	"strings"
)

// Squares are addressed by a logical index in [0,63], row-major, with
// index 0 at the top-left of the unflipped (white-at-bottom) orientation,
// i.e. a8. The index space is orientation-independent; flipping only
// changes display order.

const Squares = 64

// Piece is one board occupant, encoded by its wire letter. The letter's
// case encodes the side; the zero value is an empty square.
type Piece byte

func (p Piece) Empty() bool { return p == 0 }

func (p Piece) White() bool { return p >= 'A' && p <= 'Z' }

func (p Piece) King() bool { return p == 'K' || p == 'k' }

// Glyph returns the figurine for the piece. Both sides use the filled
// set; the side is carried separately by case.
func (p Piece) Glyph() rune {
	switch p {
	case 'p', 'P':
		return '♟'
	case 'r', 'R':
		return '♜'
	case 'n', 'N':
		return '♞'
	case 'b', 'B':
		return '♝'
	case 'q', 'Q':
		return '♛'
	case 'k', 'K':
		return '♚'
	default:
		return ' '
	}
}

// Board is the local projection of the server's board.
type Board [Squares]Piece

const pieceLetters = "prnbqkPRNBQK"

// DecodeBoard parses the compact rank-major encoding: 8 rank segments
// separated by '/', top rank first; digits are runs of empty squares,
// letters single pieces. Trailing space-separated fields (as in a full
// FEN) are ignored. A malformed string leaves no partial result.
func DecodeBoard(state string) (Board, error) {
	var b Board
	placement := state
	if i := strings.IndexByte(placement, ' '); i >= 0 {
		placement = placement[:i]
	}
	ranks := strings.Split(placement, "/")
	if len(ranks) != 8 {
		return Board{}, fmt.Errorf("board encoding has %d ranks, want 8", len(ranks))
	}

	idx := 0
	for r, rank := range ranks {
		for _, ch := range rank {
			switch {
			case ch >= '1' && ch <= '8':
				idx += int(ch - '0')
			case strings.ContainsRune(pieceLetters, ch):
				if idx >= Squares {
					return Board{}, fmt.Errorf("board encoding overflows at rank %d", r+1)
				}
				b[idx] = Piece(ch)
				idx++
			default:
				return Board{}, fmt.Errorf("bad character %q in board encoding", ch)
			}
		}
		if idx != (r+1)*8 {
			return Board{}, fmt.Errorf("rank %d covers %d squares, want 8", r+1, idx-r*8)
		}
	}
	return b, nil
}

// KingSquare locates the king of the given color, -1 when absent.
func (b Board) KingSquare(color string) int {
	want := Piece('k')
	if color == "white" {
		want = 'K'
	}
	for i, p := range b {
		if p == want {
			return i
		}
	}
	return -1
}

// ToAlgebraic converts a logical index to algebraic notation, e.g.
// 0 → "a8", 63 → "h1". Returns "" for an out-of-range index.
func ToAlgebraic(index int) string {
	if index < 0 || index >= Squares {
		return ""
	}
	rank := 8 - index/8
	file := byte('a' + index%8)
	return fmt.Sprintf("%c%d", file, rank)
}

// FromAlgebraic is the inverse of ToAlgebraic; the pair is a bijection
// over [0,63].
func FromAlgebraic(s string) (int, error) {
	if len(s) != 2 {
		return 0, fmt.Errorf("bad square %q", s)
	}
	file := s[0]
	rank := s[1]
	if file < 'a' || file > 'h' || rank < '1' || rank > '8' {
		return 0, fmt.Errorf("bad square %q", s)
	}
	return (8-int(rank-'0'))*8 + int(file-'a'), nil
}

// FlipIndex mirrors a logical index for the flipped orientation. It is
// an involution: FlipIndex(FlipIndex(i)) == i.
func FlipIndex(index int) int { return Squares - 1 - index }

// DisplayIndex maps a logical index to its placement position. Flipping
// affects rendering order only, never move encoding.
func DisplayIndex(logical int, flipped bool) int {
	if flipped {
		return FlipIndex(logical)
	}
	return logical
}
