// Package board implements the position representation and incremental
// move-make/undo machinery: bitboards, Zobrist hashing, FEN handling,
// move generation, legality and static exchange evaluation.
package board

import "fmt"

// Square indexes the board 0-63 in little-endian rank-file order: A1 is 0,
// H1 is 7, A8 is 56 and H8 is 63. NoSquare (64) marks "no square here".
type Square uint8

const (
	A1, B1, C1, D1, E1, F1, G1, H1 Square = 0, 1, 2, 3, 4, 5, 6, 7
	A2, B2, C2, D2, E2, F2, G2, H2 Square = 8, 9, 10, 11, 12, 13, 14, 15
	A3, B3, C3, D3, E3, F3, G3, H3 Square = 16, 17, 18, 19, 20, 21, 22, 23
	A4, B4, C4, D4, E4, F4, G4, H4 Square = 24, 25, 26, 27, 28, 29, 30, 31
	A5, B5, C5, D5, E5, F5, G5, H5 Square = 32, 33, 34, 35, 36, 37, 38, 39
	A6, B6, C6, D6, E6, F6, G6, H6 Square = 40, 41, 42, 43, 44, 45, 46, 47
	A7, B7, C7, D7, E7, F7, G7, H7 Square = 48, 49, 50, 51, 52, 53, 54, 55
	A8, B8, C8, D8, E8, F8, G8, H8 Square = 56, 57, 58, 59, 60, 61, 62, 63

	NoSquare Square = 64
)

// NewSquare builds a square from 0-indexed file and rank.
func NewSquare(file, rank int) Square {
	return Square(8*rank + file)
}

// File returns the square's file, 0 for the a-file through 7 for the h-file.
func (sq Square) File() int {
	return int(sq % 8)
}

// Rank returns the square's rank, 0 for rank 1 through 7 for rank 8.
func (sq Square) Rank() int {
	return int(sq / 8)
}

// RelativeRank returns the rank as seen by the given color: each side counts
// its own back rank as 0.
func (sq Square) RelativeRank(c Color) int {
	if c == Black {
		return 7 - sq.Rank()
	}
	return sq.Rank()
}

// Mirror flips the square to the other half of the board (E1 <-> E8).
func (sq Square) Mirror() Square {
	return sq ^ 56
}

// RelativeSquare translates a white-perspective square for the given color:
// White keeps it, Black gets its mirror.
func RelativeSquare(c Color, sq Square) Square {
	if c == Black {
		return sq.Mirror()
	}
	return sq
}

// String formats the square in algebraic notation, or "-" for NoSquare.
func (sq Square) String() string {
	if sq >= NoSquare {
		return "-"
	}
	return string([]byte{byte('a' + sq.File()), byte('1' + sq.Rank())})
}

// ParseSquare reads algebraic notation like "e4" back into a Square.
func ParseSquare(s string) (Square, error) {
	if len(s) == 2 {
		file, rank := int(s[0]-'a'), int(s[1]-'1')
		if file|rank >= 0 && file < 8 && rank < 8 {
			return NewSquare(file, rank), nil
		}
	}
	return NoSquare, fmt.Errorf("invalid square: %s", s)
}

// Direction is a board step expressed as a square-index delta.
type Direction int

const (
	North Direction = 8
	South Direction = -8
	East  Direction = 1
	West  Direction = -1
)

// Add steps the square by a direction. The caller guarantees the result
// stays on the board.
func (sq Square) Add(d Direction) Square {
	return Square(int(sq) + int(d))
}

// PawnPush returns the forward direction of the given color's pawns.
func PawnPush(c Color) Direction {
	if c == Black {
		return South
	}
	return North
}
