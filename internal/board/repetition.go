package board

// IsDraw tests whether the position is drawn by the 50-move rule or by
// repetition at the given search ply. Stalemates are not detected here.
func (p *Position) IsDraw(ply int) bool {
	if p.st.Rule50 > 99 && (p.st.CheckersBB == 0 || p.hasLegalMoves()) {
		return true
	}

	return p.IsRepetition(ply)
}

// IsRepetition returns a draw if the position repeated once strictly after
// the root, or twice at or below it. The sign of the stored repetition
// distance encodes which case applies.
func (p *Position) IsRepetition(ply int) bool {
	return p.st.Repetition != 0 && p.st.Repetition < ply
}

// HasRepeated tests whether any position since the last irreversible move
// has already occurred at least once before.
func (p *Position) HasRepeated() bool {
	stc := p.st
	end := min(p.st.Rule50, p.st.PliesFromNull)
	for end >= 4 {
		if stc.Repetition != 0 {
			return true
		}
		stc = stc.Previous
		end--
	}
	return false
}

// UpcomingRepetition tests whether the side to move has a move that
// immediately repeats a previous position. Walks the state chain
// accumulating pairwise key differences; when the accumulated difference
// cancels, the remaining difference is a single reversible move key that is
// looked up in the cuckoo tables and verified against the current board.
func (p *Position) UpcomingRepetition(ply int) bool {
	end := min(p.st.Rule50, p.st.PliesFromNull)
	if end < 3 {
		return false
	}

	originalKey := p.st.Key
	stp := p.st.Previous
	other := originalKey ^ stp.Key ^ zobrist.side

	for i := 3; i <= end; i += 2 {
		stp = stp.Previous
		other ^= stp.Key ^ stp.Previous.Key ^ zobrist.side
		stp = stp.Previous

		if other != 0 {
			continue
		}

		moveKey := originalKey ^ stp.Key
		j := cuckooLookup(moveKey)
		if j < 0 {
			continue
		}

		move := cuckooMove[j]
		s1, s2 := move.From(), move.To()

		if Between(s1, s2)&p.all != 0 {
			continue
		}

		if ply > i {
			return true
		}

		// For nodes before or at the root, require a true repetition rather
		// than a move back to the current position.
		if stp.Repetition != 0 {
			return true
		}
	}
	return false
}

func (p *Position) hasLegalMoves() bool {
	var ml MoveList
	p.GenerateLegal(&ml)
	return ml.Len() > 0
}
