package board

import (
	"fmt"
	"strconv"
	"strings"
)

// StartFEN is the FEN string for the starting position.
const StartFEN = "rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - 0 1"

// NewPosition creates the starting position with a fresh root StateInfo.
func NewPosition() *Position {
	p := &Position{}
	_ = p.Set(StartFEN, false, &StateInfo{})
	return p
}

// Set initializes the position from a FEN string. Standard FEN, Shredder-FEN
// and X-FEN castling fields are accepted. The caller supplies the root
// StateInfo, which the position links as the chain root.
//
// Parsing is deliberately forgiving: fields after the first malformed token
// are left at their defaults, matching the convention that the front-end is
// responsible for producing sane FENs. An error is returned only when the
// result is not a usable position.
func (p *Position) Set(fen string, chess960 bool, st *StateInfo) error {
	*p = Position{}
	*st = StateInfo{}
	p.st = st
	for sq := A1; sq <= H8; sq++ {
		p.board[sq] = NoPiece
	}
	st.EpSquare = NoSquare
	for i := range p.castlingRookSq {
		p.castlingRookSq[i] = NoSquare
	}

	fields := strings.Fields(fen)
	if len(fields) < 2 {
		return fmt.Errorf("fen %q: need at least placement and side fields", fen)
	}

	// 1. Piece placement, rank 8 down to rank 1
	sq := int(A8)
	for i := 0; i < len(fields[0]); i++ {
		switch c := fields[0][i]; {
		case c >= '1' && c <= '8':
			sq += int(c - '0')
		case c == '/':
			sq -= 16
		default:
			if pc := PieceFromChar(c); pc != NoPiece && sq >= int(A1) && sq <= int(H8) {
				p.putPiece(pc, Square(sq))
				sq++
			}
		}
	}

	// 2. Active color
	if fields[1] == "b" {
		p.sideToMove = Black
	}

	if p.pieceCount[WhiteKing] != 1 || p.pieceCount[BlackKing] != 1 {
		return fmt.Errorf("fen %q: each side needs exactly one king", fen)
	}

	// 3. Castling availability: FEN letters, Shredder-FEN file letters, and
	// X-FEN inner-rook file letters all name a rook starting square.
	if len(fields) > 2 && fields[2] != "-" {
		for i := 0; i < len(fields[2]); i++ {
			token := fields[2][i]
			c := White
			if token >= 'a' && token <= 'z' {
				c = Black
				token -= 'a' - 'A'
			}
			rook := NewPiece(Rook, c)

			var rsq Square
			switch {
			case token == 'K':
				for rsq = RelativeSquare(c, H1); p.board[rsq] != rook && rsq > RelativeSquare(c, A1); rsq-- {
				}
			case token == 'Q':
				for rsq = RelativeSquare(c, A1); p.board[rsq] != rook && rsq < RelativeSquare(c, H1); rsq++ {
				}
			case token >= 'A' && token <= 'H':
				rsq = NewSquare(int(token-'A'), RelativeSquare(c, A1).Rank())
			default:
				continue
			}
			if p.board[rsq] == rook {
				p.setCastlingRight(c, rsq)
			}
		}
	}

	// 4. En passant square. Kept only if a capture is geometrically possible:
	// a friendly pawn attacks it, an enemy pawn sits in front of it, and both
	// the square and the square behind it are empty.
	if len(fields) > 3 && len(fields[3]) == 2 {
		us, them := p.sideToMove, p.sideToMove.Other()
		ep, err := ParseSquare(fields[3])
		wantRank := 5 // relative rank 6
		if err == nil && ep.RelativeRank(us) == wantRank {
			ok := pawnAttacks[them][ep]&p.pieces[us][Pawn] != 0 &&
				p.pieces[them][Pawn].IsSet(ep.Add(PawnPush(them))) &&
				p.all&(SquareBB(ep)|SquareBB(ep.Add(PawnPush(us)))) == 0
			if ok {
				st.EpSquare = ep
			}
		}
	}

	// 5-6. Halfmove clock and fullmove number; sensible defaults on garbage.
	fullMove := 1
	if len(fields) > 4 {
		if v, err := strconv.Atoi(fields[4]); err == nil && v >= 0 {
			st.Rule50 = v
		}
	}
	if len(fields) > 5 {
		if v, err := strconv.Atoi(fields[5]); err == nil && v > 0 {
			fullMove = v
		}
	}
	p.gamePly = 2 * (fullMove - 1)
	if p.sideToMove == Black {
		p.gamePly++
	}

	p.chess960 = chess960
	p.setState()

	return p.Validate()
}

// SetEndgame initializes the position from a Kaufman-style material code such
// as "KBNKQQ". The pieces listed before the second K go to color c, the rest
// to the other color. Mainly a helper to derive material keys.
func (p *Position) SetEndgame(code string, c Color, st *StateInfo) error {
	if len(code) == 0 || code[0] != 'K' {
		return fmt.Errorf("endgame code %q must start with K", code)
	}

	weakAt := strings.Index(code[1:], "K") + 1
	if weakAt == 0 {
		return fmt.Errorf("endgame code %q needs a second K", code)
	}
	strongEnd := weakAt
	if v := strings.Index(code, "v"); v >= 0 && v < strongEnd {
		strongEnd = v
	}

	sides := [2]string{code[weakAt:], code[:strongEnd]}
	sides[c] = strings.ToLower(sides[c])

	fen := fmt.Sprintf("8/%s%d/8/8/8/8/%s%d/8 w - - 0 10",
		sides[0], 8-len(sides[0]), sides[1], 8-len(sides[1]))

	return p.Set(fen, false, st)
}

// Fen returns the FEN representation of the position. In case of Chess960 the
// Shredder-FEN castling notation is used.
func (p *Position) Fen() string {
	var sb strings.Builder

	for rank := 7; rank >= 0; rank-- {
		empty := 0
		for file := 0; file < 8; file++ {
			pc := p.board[NewSquare(file, rank)]
			if pc == NoPiece {
				empty++
				continue
			}
			if empty > 0 {
				sb.WriteString(strconv.Itoa(empty))
				empty = 0
			}
			sb.WriteString(pc.String())
		}
		if empty > 0 {
			sb.WriteString(strconv.Itoa(empty))
		}
		if rank > 0 {
			sb.WriteByte('/')
		}
	}

	if p.sideToMove == White {
		sb.WriteString(" w ")
	} else {
		sb.WriteString(" b ")
	}

	if !p.CanCastle(AllCastling) {
		sb.WriteByte('-')
	} else {
		appendRight := func(cr CastlingRights, std byte, shredderBase byte) {
			if !p.CanCastle(cr) {
				return
			}
			if p.chess960 {
				sb.WriteByte(shredderBase + byte(p.castlingRookSq[cr].File()))
			} else {
				sb.WriteByte(std)
			}
		}
		appendRight(WhiteKingSide, 'K', 'A')
		appendRight(WhiteQueenSide, 'Q', 'A')
		appendRight(BlackKingSide, 'k', 'a')
		appendRight(BlackQueenSide, 'q', 'a')
	}

	if p.st.EpSquare == NoSquare {
		sb.WriteString(" - ")
	} else {
		sb.WriteString(" " + p.st.EpSquare.String() + " ")
	}

	fullMove := 1 + (p.gamePly-boolToInt(p.sideToMove == Black))/2
	sb.WriteString(strconv.Itoa(p.st.Rule50))
	sb.WriteByte(' ')
	sb.WriteString(strconv.Itoa(fullMove))

	return sb.String()
}

// Flip resets the position to its color-flipped mirror image. Debugging aid
// for symmetry checks.
func (p *Position) Flip() error {
	fields := strings.Fields(p.Fen())

	ranks := strings.Split(fields[0], "/")
	for i, j := 0, len(ranks)-1; i < j; i, j = i+1, j-1 {
		ranks[i], ranks[j] = ranks[j], ranks[i]
	}
	placement := swapCase(strings.Join(ranks, "/"))

	side := "w"
	if fields[1] == "w" {
		side = "b"
	}

	castling := swapCase(fields[2])

	ep := fields[3]
	if ep != "-" {
		if ep[1] == '3' {
			ep = ep[:1] + "6"
		} else {
			ep = ep[:1] + "3"
		}
	}

	fen := placement + " " + side + " " + castling + " " + ep + " " + fields[4] + " " + fields[5]
	return p.Set(fen, p.chess960, p.st)
}

func swapCase(s string) string {
	out := []byte(s)
	for i, c := range out {
		switch {
		case c >= 'a' && c <= 'z':
			out[i] = c - 'a' + 'A'
		case c >= 'A' && c <= 'Z':
			out[i] = c - 'A' + 'a'
		}
	}
	return string(out)
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
