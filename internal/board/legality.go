package board

// Legal tests whether a pseudo-legal move is fully legal.
func (p *Position) Legal(m Move) bool {
	us := p.sideToMove
	them := us.Other()
	from := m.From()
	to := m.To()

	// En passant: simulate the capture and look for a ray hitting the king
	// through either vacated square.
	if m.IsEnPassant() {
		ksq := p.KingSquare(us)
		capSq := to.Add(PawnPush(them))
		occupied := (p.all ^ SquareBB(from) ^ SquareBB(capSq)) | SquareBB(to)

		return RookAttacks(ksq, occupied)&p.PiecesOf(them, Rook, Queen) == 0 &&
			BishopAttacks(ksq, occupied)&p.PiecesOf(them, Bishop, Queen) == 0
	}

	// Castling: the king may not cross or land on an attacked square. The
	// generator defers this check to here.
	if m.IsCastling() {
		dest := RelativeSquare(us, C1)
		if to > from { // king side: the rook sits beyond the king
			dest = RelativeSquare(us, G1)
		}
		// Walk from the destination back toward the origin; in Chess960 the
		// destination can lie on either side of the king.
		step := East
		if dest > from {
			step = West
		}

		for s := dest; s != from; s = s.Add(step) {
			if p.attackersToExist(s, p.all, them) {
				return false
			}
		}

		// In Chess960 the castling rook itself can be shielding the king
		// from a slider on the back rank.
		if p.chess960 && p.st.BlockersForKing[us].IsSet(to) {
			return false
		}
		return true
	}

	// King moves: the destination must be safe with the king off its
	// origin square.
	if p.board[from].Type() == King {
		return !p.attackersToExist(to, p.all^SquareBB(from), them)
	}

	// Any other move is legal iff the piece is not pinned or stays on the
	// pin ray.
	return !p.st.BlockersForKing[us].IsSet(from) ||
		Aligned(from, to, p.KingSquare(us))
}

// PseudoLegal validates an arbitrary 16-bit move against the current
// position. Moves read from the transposition table can be corrupted by
// data races or key aliasing; this filter guarantees such moves are either
// rejected or safe to feed into Legal and DoMove.
func (p *Position) PseudoLegal(m Move) bool {
	us := p.sideToMove
	from := m.From()
	to := m.To()
	pc := p.board[from]

	// Uncommon move kinds go through the generator, which encodes their full
	// constraints.
	if m.Flag() != FlagNormal {
		var ml MoveList
		if p.st.CheckersBB != 0 {
			p.Generate(&ml, GenEvasions)
		} else {
			p.Generate(&ml, GenNonEvasions)
		}
		return ml.Contains(m)
	}

	if !m.IsOK() {
		return false
	}

	if pc == NoPiece || pc.Color() != us {
		return false
	}

	if p.occupied[us].IsSet(to) {
		return false
	}

	if pc.Type() == Pawn {
		// A normal pawn move never lands on a promotion rank
		if (Rank1 | Rank8).IsSet(to) {
			return false
		}

		isCapture := pawnAttacks[us][from]&p.occupied[us.Other()]&SquareBB(to) != 0
		isSinglePush := from.Add(PawnPush(us)) == to && p.IsEmpty(to)
		isDoublePush := from.Add(PawnPush(us)).Add(PawnPush(us)) == to &&
			from.RelativeRank(us) == 1 && p.IsEmpty(to) && p.IsEmpty(to.Add(PawnPush(us.Other())))

		if !isCapture && !isSinglePush && !isDoublePush {
			return false
		}
	} else if !PieceTypeAttacks(pc.Type(), from, p.all).IsSet(to) {
		return false
	}

	// Under check the move must resolve the check the same way the evasion
	// generator would.
	if checkers := p.st.CheckersBB; checkers != 0 {
		if pc.Type() != King {
			if checkers.MoreThanOne() {
				return false
			}
			checkerSq := checkers.LSB()
			if !(Between(p.KingSquare(us), checkerSq) | SquareBB(checkerSq)).IsSet(to) {
				return false
			}
		} else if p.attackersToExist(to, p.all^SquareBB(from), us.Other()) {
			return false
		}
	}

	return true
}

// GivesCheck tests whether a pseudo-legal move checks the enemy king.
func (p *Position) GivesCheck(m Move) bool {
	us := p.sideToMove
	them := us.Other()
	from := m.From()
	to := m.To()

	// Direct check
	if p.st.CheckSquares[p.board[from].Type()].IsSet(to) {
		return true
	}

	// Discovered check: the mover was shielding the enemy king
	if p.st.BlockersForKing[them].IsSet(from) {
		return !Aligned(from, to, p.KingSquare(them)) || m.IsCastling()
	}

	switch m.Flag() {
	case FlagPromotion:
		return PieceTypeAttacks(m.Promotion(), to, p.all^SquareBB(from)).
			IsSet(p.KingSquare(them))

	case FlagEnPassant:
		// Discovered check through the captured pawn's square
		capSq := NewSquare(to.File(), from.Rank())
		b := (p.all ^ SquareBB(from) ^ SquareBB(capSq)) | SquareBB(to)
		ksq := p.KingSquare(them)

		return RookAttacks(ksq, b)&p.PiecesOf(us, Rook, Queen) != 0 ||
			BishopAttacks(ksq, b)&p.PiecesOf(us, Bishop, Queen) != 0

	case FlagCastling:
		// The rook ends on its post-castling square; that is the checking
		// candidate
		rookTo := RelativeSquare(us, D1)
		if to > from {
			rookTo = RelativeSquare(us, F1)
		}
		return p.st.CheckSquares[Rook].IsSet(rookTo)
	}

	return false
}
