package board

import "fmt"

// Move encodes a chess move in 16 bits:
// bits 0-5:   from square (0-63)
// bits 6-11:  to square (0-63)
// bits 12-13: promotion piece (0=Knight, 1=Bishop, 2=Rook, 3=Queen)
// bits 14-15: kind (0=normal, 1=promotion, 2=en passant, 3=castling)
//
// Castling is encoded as "king captures own rook": from is the king square,
// to is the rook square. This keeps the encoding uniform across standard
// chess and Chess960.
type Move uint16

// Move kinds
const (
	FlagNormal    uint16 = 0 << 14
	FlagPromotion uint16 = 1 << 14
	FlagEnPassant uint16 = 2 << 14
	FlagCastling  uint16 = 3 << 14
)

// NoMove represents an invalid or null move.
const NoMove Move = 0

// NewMove creates a normal move.
func NewMove(from, to Square) Move {
	return Move(from) | Move(to)<<6
}

// NewPromotion creates a promotion move.
func NewPromotion(from, to Square, promo PieceType) Move {
	promoIdx := promo - Knight
	return Move(from) | Move(to)<<6 | Move(promoIdx)<<12 | Move(FlagPromotion)
}

// NewEnPassant creates an en passant capture move.
func NewEnPassant(from, to Square) Move {
	return Move(from) | Move(to)<<6 | Move(FlagEnPassant)
}

// NewCastling creates a castling move from the king square to the rook square.
func NewCastling(kingSq, rookSq Square) Move {
	return Move(kingSq) | Move(rookSq)<<6 | Move(FlagCastling)
}

// From returns the origin square.
func (m Move) From() Square {
	return Square(m & 0x3F)
}

// To returns the destination square. For castling this is the rook square.
func (m Move) To() Square {
	return Square((m >> 6) & 0x3F)
}

// Flag returns the move kind bits.
func (m Move) Flag() uint16 {
	return uint16(m) & 0xC000
}

// Promotion returns the promotion piece type (only valid if IsPromotion() is true).
func (m Move) Promotion() PieceType {
	return PieceType((m>>12)&3) + Knight
}

// IsPromotion returns true if this is a promotion move.
func (m Move) IsPromotion() bool {
	return m.Flag() == FlagPromotion
}

// IsCastling returns true if this is a castling move.
func (m Move) IsCastling() bool {
	return m.Flag() == FlagCastling
}

// IsEnPassant returns true if this is an en passant capture.
func (m Move) IsEnPassant() bool {
	return m.Flag() == FlagEnPassant
}

// IsOK reports whether the move has distinct from and to squares. NoMove and
// null-move style encodings fail this.
func (m Move) IsOK() bool {
	return m.From() != m.To()
}

// String returns the UCI format of the move (e.g., "e2e4", "e7e8q").
// Castling prints as the king's destination in standard chess style.
func (m Move) String() string {
	if m == NoMove {
		return "0000"
	}

	to := m.To()
	if m.IsCastling() {
		// Render king destination rather than the rook square
		kingSide := m.To() > m.From()
		rank := m.From().Rank()
		if kingSide {
			to = NewSquare(6, rank)
		} else {
			to = NewSquare(2, rank)
		}
	}

	s := m.From().String() + to.String()
	if m.IsPromotion() {
		promoChars := []byte{'n', 'b', 'r', 'q'}
		s += string(promoChars[m.Promotion()-Knight])
	}
	return s
}

// ParseMove parses a UCI format move string in the context of a position.
// Both "e1g1" and king-takes-rook notation are accepted for castling.
func ParseMove(s string, pos *Position) (Move, error) {
	if len(s) < 4 {
		return NoMove, fmt.Errorf("invalid move string: %s", s)
	}

	from, err := ParseSquare(s[0:2])
	if err != nil {
		return NoMove, err
	}

	to, err := ParseSquare(s[2:4])
	if err != nil {
		return NoMove, err
	}

	if len(s) == 5 {
		var promo PieceType
		switch s[4] {
		case 'n':
			promo = Knight
		case 'b':
			promo = Bishop
		case 'r':
			promo = Rook
		case 'q':
			promo = Queen
		default:
			return NoMove, fmt.Errorf("invalid promotion piece: %c", s[4])
		}
		return NewPromotion(from, to, promo), nil
	}

	piece := pos.PieceOn(from)
	if piece == NoPiece {
		return NoMove, fmt.Errorf("no piece at %s", from)
	}

	if piece.Type() == King {
		// King-takes-own-rook notation
		if target := pos.PieceOn(to); target == NewPiece(Rook, piece.Color()) {
			return NewCastling(from, to), nil
		}
		// Classic two-file king hop
		if abs(to.File()-from.File()) == 2 {
			rookSq := pos.CastlingRookSquare(castlingRightOf(piece.Color(), to > from))
			return NewCastling(from, rookSq), nil
		}
	}

	if piece.Type() == Pawn && to == pos.EpSquare() {
		return NewEnPassant(from, to), nil
	}

	return NewMove(from, to), nil
}

// MoveList is a fixed-size list of moves to avoid allocations.
type MoveList struct {
	moves [256]Move
	count int
}

// Add adds a move to the list.
func (ml *MoveList) Add(m Move) {
	ml.moves[ml.count] = m
	ml.count++
}

// Len returns the number of moves in the list.
func (ml *MoveList) Len() int {
	return ml.count
}

// Get returns the move at index i.
func (ml *MoveList) Get(i int) Move {
	return ml.moves[i]
}

// Clear empties the list.
func (ml *MoveList) Clear() {
	ml.count = 0
}

// Contains returns true if the list contains the move.
func (ml *MoveList) Contains(m Move) bool {
	for i := 0; i < ml.count; i++ {
		if ml.moves[i] == m {
			return true
		}
	}
	return false
}

// Slice returns the moves as a slice backed by the list.
func (ml *MoveList) Slice() []Move {
	return ml.moves[:ml.count]
}
