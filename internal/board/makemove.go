package board

// Prefetcher warms the cache line that will be probed for a key. The
// transposition table implements it; the position only needs this one hook,
// which keeps the dependency pointing from the table to the board types and
// not back.
type Prefetcher interface {
	Prefetch(key uint64)
}

// DoMove makes a move and fills newSt with everything needed to undo it.
// The move must be legal. If tt is non-nil the destination cluster of the
// new position key is prefetched. The returned DirtyPiece describes the
// board delta for incremental evaluators.
func (p *Position) DoMove(m Move, newSt *StateInfo, givesCheck bool, tt Prefetcher) DirtyPiece {
	k := p.st.Key ^ zobrist.side

	newSt.copyForward(p.st)
	newSt.Previous = p.st
	p.st = newSt

	p.gamePly++
	newSt.Rule50++
	newSt.PliesFromNull++

	us := p.sideToMove
	them := us.Other()
	from := m.From()
	to := m.To()
	pc := p.board[from]

	var captured Piece
	if m.IsEnPassant() {
		captured = NewPiece(Pawn, them)
	} else {
		captured = p.board[to]
	}

	checkEP := false

	dp := DirtyPiece{Pc: pc, From: from, To: to, RemoveSq: NoSquare, AddSq: NoSquare}

	if m.IsCastling() {
		kingTo, rookFrom, rookTo := p.doCastling(true, us, from, to)
		dp.To = kingTo
		dp.RemovePc = captured
		dp.RemoveSq = rookFrom
		dp.AddPc = captured
		dp.AddSq = rookTo
		to = kingTo

		k ^= zobrist.psq[captured][rookFrom] ^ zobrist.psq[captured][rookTo]
		newSt.NonPawnKey[us] ^= zobrist.psq[captured][rookFrom] ^ zobrist.psq[captured][rookTo]
		captured = NoPiece
	} else if captured != NoPiece {
		capSq := to

		if captured.Type() == Pawn {
			if m.IsEnPassant() {
				capSq = to.Add(PawnPush(them))
			}
			newSt.PawnKey ^= zobrist.psq[captured][capSq]
		} else {
			newSt.NonPawnMaterial[them] -= captured.Value()
			newSt.NonPawnKey[them] ^= zobrist.psq[captured][capSq]
			if captured.Type() <= Bishop {
				newSt.MinorPieceKey ^= zobrist.psq[captured][capSq]
			}
		}

		dp.RemovePc = captured
		dp.RemoveSq = capSq

		p.removePiece(capSq)

		k ^= zobrist.psq[captured][capSq]
		newSt.MaterialKey ^= zobrist.psq[captured][8+p.pieceCount[captured]]

		newSt.Rule50 = 0
	}

	k ^= zobrist.psq[pc][from] ^ zobrist.psq[pc][to]

	if newSt.EpSquare != NoSquare {
		k ^= zobrist.enpassant[newSt.EpSquare.File()]
		newSt.EpSquare = NoSquare
	}

	if newSt.CastlingRights != 0 && p.castlingRightsMask[from]|p.castlingRightsMask[to] != 0 {
		k ^= zobrist.castling[newSt.CastlingRights]
		newSt.CastlingRights &^= p.castlingRightsMask[from] | p.castlingRightsMask[to]
		k ^= zobrist.castling[newSt.CastlingRights]
	}

	// The tricky Chess960 castling board update already happened above
	if !m.IsCastling() {
		p.movePiece(from, to)
	}

	if pc.Type() == Pawn {
		if int(from)^int(to) == 16 {
			// Double push: decide below whether an ep capture would be legal
			checkEP = true
		} else if m.IsPromotion() {
			promotion := NewPiece(m.Promotion(), us)

			p.removePiece(to)
			p.putPiece(promotion, to)

			dp.AddPc = promotion
			dp.AddSq = to
			dp.To = NoSquare

			// zobrist.psq[pawn][to] is zero on the back rank, so the pawn
			// needs no clearing here
			k ^= zobrist.psq[promotion][to]
			newSt.NonPawnKey[us] ^= zobrist.psq[promotion][to]
			newSt.MaterialKey ^= zobrist.psq[promotion][8+p.pieceCount[promotion]-1] ^
				zobrist.psq[pc][8+p.pieceCount[pc]]

			if promotion.Type() <= Bishop {
				newSt.MinorPieceKey ^= zobrist.psq[promotion][to]
			}

			newSt.NonPawnMaterial[us] += promotion.Value()
		}

		newSt.PawnKey ^= zobrist.psq[pc][from] ^ zobrist.psq[pc][to]

		newSt.Rule50 = 0
	} else {
		newSt.NonPawnKey[us] ^= zobrist.psq[pc][from] ^ zobrist.psq[pc][to]

		if pc.Type() <= Bishop {
			newSt.MinorPieceKey ^= zobrist.psq[pc][from] ^ zobrist.psq[pc][to]
		}
	}

	newSt.CapturedPiece = captured

	if givesCheck {
		newSt.CheckersBB = p.AttackersTo(p.KingSquare(them), p.all) & p.occupied[us]
	} else {
		newSt.CheckersBB = 0
	}

	p.sideToMove = them

	p.setCheckInfo()

	// An ep square is stored only if an ep capture is actually legal on the
	// next move.
	if checkEP {
		epSq := to.Add(PawnPush(them))
		k ^= p.epSquareIfLegal(epSq, to, us)
	}

	newSt.Key = k
	if tt != nil {
		tt.Prefetch(k)
	}

	// Repetition info: ply distance to the previous occurrence of this key,
	// negative once the position occurred twice before.
	newSt.Repetition = 0
	end := min(newSt.Rule50, newSt.PliesFromNull)
	if end >= 4 {
		stp := newSt.Previous.Previous
		for i := 4; i <= end; i += 2 {
			stp = stp.Previous.Previous
			if stp.Key == newSt.Key {
				if stp.Repetition != 0 {
					newSt.Repetition = -i
				} else {
					newSt.Repetition = i
				}
				break
			}
		}
	}

	return dp
}

// epSquareIfLegal vets a double push's en passant square. It stores the
// square in the state and returns its key contribution only when some enemy
// pawn could legally play the capture; otherwise the state keeps no ep
// square. us is the side that just pushed, to its pawn's landing square.
func (p *Position) epSquareIfLegal(epSq, to Square, us Color) uint64 {
	them := us.Other()

	pawns := pawnAttacks[us][epSq] & p.pieces[them][Pawn]

	// No pawn can reach the square at all
	if pawns == 0 {
		return 0
	}

	// A checker other than the pushed pawn makes any ep reply illegal
	if p.st.CheckersBB&^SquareBB(to) != 0 {
		return 0
	}

	ksq := p.KingSquare(them)

	if pawns.MoreThanOne() {
		// Two candidate pawns with at least one unpinned: no horizontal
		// exposure is possible, ep is legal.
		if !(p.st.BlockersForKing[them] & pawns).MoreThanOne() {
			p.st.EpSquare = epSq
			return zobrist.enpassant[epSq.File()]
		}

		// Both pawns pinned by bishops. If neither is on the king's file the
		// king is not in front of the pushed pawn, and either capture would
		// expose it diagonally.
		if FileMask[ksq.File()]&pawns == 0 {
			return 0
		}

		// The pawn on the king file can never capture legally; vet the other
		pawns &^= FileMask[ksq.File()]
	}

	capturer := pawns.LSB()
	occupied := (p.all ^ SquareBB(capturer) ^ SquareBB(to)) | SquareBB(epSq)

	if RookAttacks(ksq, occupied)&p.PiecesOf(us, Rook, Queen) == 0 &&
		BishopAttacks(ksq, occupied)&p.PiecesOf(us, Bishop, Queen) == 0 {
		p.st.EpSquare = epSq
		return zobrist.enpassant[epSq.File()]
	}
	return 0
}

// UndoMove unmakes a move. The position is restored to exactly the state
// before the corresponding DoMove.
func (p *Position) UndoMove(m Move) {
	p.sideToMove = p.sideToMove.Other()

	us := p.sideToMove
	from := m.From()
	to := m.To()

	if m.IsCastling() {
		p.doCastling(false, us, from, to)
	} else {
		if m.IsPromotion() {
			to = m.To()
			p.removePiece(to)
			p.putPiece(NewPiece(Pawn, us), to)
		}

		p.movePiece(to, from)

		if p.st.CapturedPiece != NoPiece {
			capSq := to
			if m.IsEnPassant() {
				capSq = to.Add(PawnPush(us.Other()))
			}
			p.putPiece(p.st.CapturedPiece, capSq)
		}
	}

	p.st = p.st.Previous
	p.gamePly--
}

// doCastling moves king and rook for castling (do=true) or back (do=false).
// Both pieces are removed before either is replaced because the source and
// destination squares can overlap in Chess960. from is the king square, to
// the rook square as encoded in the move.
func (p *Position) doCastling(do bool, us Color, from, to Square) (kingTo, rookFrom, rookTo Square) {
	kingSide := to > from
	rookFrom = to
	if kingSide {
		kingTo = RelativeSquare(us, G1)
		rookTo = RelativeSquare(us, F1)
	} else {
		kingTo = RelativeSquare(us, C1)
		rookTo = RelativeSquare(us, D1)
	}

	if do {
		p.removePiece(from)
		p.removePiece(rookFrom)
		p.putPiece(NewPiece(King, us), kingTo)
		p.putPiece(NewPiece(Rook, us), rookTo)
	} else {
		p.removePiece(kingTo)
		p.removePiece(rookTo)
		p.putPiece(NewPiece(King, us), from)
		p.putPiece(NewPiece(Rook, us), rookFrom)
	}
	return
}

// DoNullMove flips the side to move without touching the board. Requires the
// side to move not to be in check.
func (p *Position) DoNullMove(newSt *StateInfo, tt Prefetcher) {
	prev := p.st
	*newSt = *prev
	newSt.Previous = prev
	p.st = newSt

	if newSt.EpSquare != NoSquare {
		newSt.Key ^= zobrist.enpassant[newSt.EpSquare.File()]
		newSt.EpSquare = NoSquare
	}

	newSt.Key ^= zobrist.side
	if tt != nil {
		tt.Prefetch(newSt.Key)
	}

	newSt.PliesFromNull = 0

	p.sideToMove = p.sideToMove.Other()

	p.setCheckInfo()

	newSt.Repetition = 0
}

// UndoNullMove reverts a DoNullMove.
func (p *Position) UndoNullMove() {
	p.st = p.st.Previous
	p.sideToMove = p.sideToMove.Other()
}
