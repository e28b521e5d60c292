package board

// GenType selects which class of pseudo-legal moves to generate.
type GenType int

const (
	// GenCaptures: captures and queen promotions.
	GenCaptures GenType = iota
	// GenQuiets: non-captures and underpromotions.
	GenQuiets
	// GenEvasions: check evasions, only valid when in check.
	GenEvasions
	// GenNonEvasions: all pseudo-legal moves, only valid when not in check.
	GenNonEvasions
)

func rank7BB(c Color) Bitboard {
	if c == White {
		return Rank7
	}
	return Rank2
}

// Generate appends the pseudo-legal moves of the requested class to ml.
func (p *Position) Generate(ml *MoveList, gt GenType) {
	us := p.sideToMove
	them := us.Other()
	ksq := p.KingSquare(us)
	checkers := p.st.CheckersBB

	// Square mask the generated non-king moves must land on
	var target Bitboard
	switch gt {
	case GenCaptures:
		target = p.occupied[them]
	case GenQuiets:
		target = ^p.all
	case GenEvasions:
		target = Between(ksq, checkers.LSB()) | checkers
	case GenNonEvasions:
		target = ^p.occupied[us]
	}

	// In double check only the king can move
	if gt != GenEvasions || !checkers.MoreThanOne() {
		p.generatePawnMoves(ml, gt, target)

		for pt := Knight; pt <= Queen; pt++ {
			for from := p.pieces[us][pt]; from != 0; {
				f := from.PopLSB()
				for att := PieceTypeAttacks(pt, f, p.all) & target; att != 0; {
					ml.Add(NewMove(f, att.PopLSB()))
				}
			}
		}
	}

	// King moves; evasions ignore the target mask
	kingTarget := target
	if gt == GenEvasions {
		kingTarget = ^p.occupied[us]
	}
	for att := kingAttacks[ksq] & kingTarget; att != 0; {
		ml.Add(NewMove(ksq, att.PopLSB()))
	}

	if (gt == GenQuiets || gt == GenNonEvasions) && checkers == 0 {
		for _, cr := range [2]CastlingRights{castlingRightOf(us, true), castlingRightOf(us, false)} {
			if p.CanCastle(cr) && !p.CastlingImpeded(cr) {
				ml.Add(NewCastling(ksq, p.castlingRookSq[cr]))
			}
		}
	}
}

func (p *Position) generatePawnMoves(ml *MoveList, gt GenType, target Bitboard) {
	us := p.sideToMove
	them := us.Other()
	up := PawnPush(us)

	pawnsOn7 := p.pieces[us][Pawn] & rank7BB(us)
	pawnsNotOn7 := p.pieces[us][Pawn] &^ rank7BB(us)

	enemies := p.occupied[them]
	if gt == GenEvasions {
		enemies = p.st.CheckersBB
	}

	// Single and double pushes
	if gt != GenCaptures {
		for b := pawnsNotOn7; b != 0; {
			from := b.PopLSB()
			to := from.Add(up)
			if !p.IsEmpty(to) {
				continue
			}
			if target.IsSet(to) {
				ml.Add(NewMove(from, to))
			}
			if from.RelativeRank(us) == 1 {
				to2 := to.Add(up)
				if p.IsEmpty(to2) && target.IsSet(to2) {
					ml.Add(NewMove(from, to2))
				}
			}
		}
	}

	// Promotions, both capturing and quiet
	for b := pawnsOn7; b != 0; {
		from := b.PopLSB()

		if gt != GenCaptures {
			to := from.Add(up)
			if p.IsEmpty(to) && (gt != GenEvasions || target.IsSet(to)) {
				addPromotions(ml, gt, from, to)
			}
		}

		for att := pawnAttacks[us][from] & enemies; att != 0; {
			addPromotions(ml, gt, from, att.PopLSB())
		}
	}

	// Regular captures
	if gt != GenQuiets {
		for b := pawnsNotOn7; b != 0; {
			from := b.PopLSB()
			for att := pawnAttacks[us][from] & enemies; att != 0; {
				ml.Add(NewMove(from, att.PopLSB()))
			}
		}

		if ep := p.st.EpSquare; ep != NoSquare {
			// An ep capture can only resolve a check by taking the checking
			// pawn itself
			if gt == GenEvasions && p.st.CheckersBB != SquareBB(ep.Add(PawnPush(them))) {
				return
			}
			for b := pawnAttacks[them][ep] & pawnsNotOn7; b != 0; {
				ml.Add(NewEnPassant(b.PopLSB(), ep))
			}
		}
	}
}

func addPromotions(ml *MoveList, gt GenType, from, to Square) {
	if gt != GenQuiets {
		ml.Add(NewPromotion(from, to, Queen))
	}
	if gt != GenCaptures {
		ml.Add(NewPromotion(from, to, Rook))
		ml.Add(NewPromotion(from, to, Bishop))
		ml.Add(NewPromotion(from, to, Knight))
	}
}

// GenerateLegal fills ml with all fully legal moves.
func (p *Position) GenerateLegal(ml *MoveList) {
	us := p.sideToMove
	ksq := p.KingSquare(us)
	pinned := p.st.BlockersForKing[us] & p.occupied[us]

	var pseudo MoveList
	if p.st.CheckersBB != 0 {
		p.Generate(&pseudo, GenEvasions)
	} else {
		p.Generate(&pseudo, GenNonEvasions)
	}

	for i := 0; i < pseudo.Len(); i++ {
		m := pseudo.Get(i)
		// Only pins, king moves and en passant can turn a pseudo-legal move
		// illegal; everything else is cheap to keep.
		if (pinned.IsSet(m.From()) || m.From() == ksq || m.IsEnPassant()) && !p.Legal(m) {
			continue
		}
		ml.Add(m)
	}
}

// Perft counts the leaf nodes of the legal move tree at the given depth.
// The standard way to verify move generation and do/undo correctness.
func Perft(p *Position, depth int) int64 {
	if depth == 0 {
		return 1
	}

	var ml MoveList
	p.GenerateLegal(&ml)
	if depth == 1 {
		return int64(ml.Len())
	}

	var nodes int64
	for i := 0; i < ml.Len(); i++ {
		m := ml.Get(i)
		var st StateInfo
		p.DoMove(m, &st, p.GivesCheck(m), nil)
		nodes += Perft(p, depth-1)
		p.UndoMove(m)
	}
	return nodes
}
