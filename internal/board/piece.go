package board

import "strings"

// Color is the side a piece belongs to.
type Color uint8

const (
	White Color = iota
	Black
	NoColor
)

var colorNames = [3]string{"White", "Black", "NoColor"}

// String returns the color name.
func (c Color) String() string {
	if c > NoColor {
		return colorNames[NoColor]
	}
	return colorNames[c]
}

// Other returns the opposite color.
func (c Color) Other() Color {
	return c ^ 1
}

// PieceType is a piece kind without its color.
type PieceType uint8

const (
	Pawn PieceType = iota
	Knight
	Bishop
	Rook
	Queen
	King
	NoPieceType
)

var pieceTypeNames = [7]string{"Pawn", "Knight", "Bishop", "Rook", "Queen", "King", "None"}

// String returns the piece type name.
func (pt PieceType) String() string {
	if pt > NoPieceType {
		return pieceTypeNames[NoPieceType]
	}
	return pieceTypeNames[pt]
}

// PieceValue holds the material value of each piece type in centipawns.
// King and NoPieceType are zero so exchange arithmetic can index the array
// with whatever stands on a square, including nothing.
var PieceValue = [7]int{100, 320, 330, 500, 900, 0, 0}

// Piece is a colored piece. The white pieces take values 0-5 in PieceType
// order and the black pieces 6-11, so type and color fall out of a division
// by 6 and the value doubles as an index into per-piece tables.
type Piece uint8

const (
	WhitePawn Piece = iota
	WhiteKnight
	WhiteBishop
	WhiteRook
	WhiteQueen
	WhiteKing
	BlackPawn
	BlackKnight
	BlackBishop
	BlackRook
	BlackQueen
	BlackKing
	NoPiece
)

// pieceChars maps a piece to its FEN letter, in Piece order.
const pieceChars = "PNBRQKpnbrqk"

// NewPiece builds a Piece from its type and color.
func NewPiece(pt PieceType, c Color) Piece {
	if pt >= NoPieceType || c >= NoColor {
		return NoPiece
	}
	return Piece(6*c) + Piece(pt)
}

// Type returns the piece's kind.
func (p Piece) Type() PieceType {
	if p >= NoPiece {
		return NoPieceType
	}
	return PieceType(p % 6)
}

// Color returns the piece's side.
func (p Piece) Color() Color {
	if p >= NoPiece {
		return NoColor
	}
	return Color(p / 6)
}

// Value returns the piece's material value in centipawns.
func (p Piece) Value() int {
	return PieceValue[p.Type()]
}

// String returns the piece's FEN letter, uppercase for white.
func (p Piece) String() string {
	if p >= NoPiece {
		return " "
	}
	return pieceChars[p : p+1]
}

// PieceFromChar is the inverse of String: it maps a FEN letter to a piece,
// or to NoPiece for anything unrecognized.
func PieceFromChar(c byte) Piece {
	if i := strings.IndexByte(pieceChars, c); i >= 0 {
		return Piece(i)
	}
	return NoPiece
}
