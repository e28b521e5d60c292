package board

import "testing"

// playUCI applies a sequence of UCI moves, keeping the StateInfo chain alive
// in the returned slice.
func playUCI(t *testing.T, pos *Position, states *[]StateInfo, moves ...string) {
	t.Helper()
	for _, uci := range moves {
		m, err := ParseMove(uci, pos)
		if err != nil {
			t.Fatalf("parse %s: %v", uci, err)
		}
		*states = append(*states, StateInfo{})
		pos.DoMove(m, &(*states)[len(*states)-1], pos.GivesCheck(m), nil)
	}
}

func newGame() (*Position, *[]StateInfo) {
	states := make([]StateInfo, 1, 64)
	pos := &Position{}
	_ = pos.Set(StartFEN, false, &states[0])
	return pos, &states
}

func TestUpcomingRepetition(t *testing.T) {
	pos, states := newGame()

	// After 1. Nf3 Nf6 2. Ng1 black can play Ng8 and repeat the start
	// position.
	playUCI(t, pos, states, "g1f3", "g8f6", "f3g1")

	if !pos.UpcomingRepetition(4) {
		t.Errorf("Ng8 repeats the start position; upcoming repetition expected")
	}

	// Before the knights returned there is nothing to repeat
	pos2, states2 := newGame()
	playUCI(t, pos2, states2, "g1f3", "g8f6")
	if pos2.UpcomingRepetition(4) {
		t.Errorf("no repetition is reachable after just two moves")
	}
}

// TestUpcomingRepetitionMatchesIsDraw verifies the documented equivalence:
// upcoming_repetition holds exactly when some legal move leads to a child
// for which is_draw holds.
func TestUpcomingRepetitionMatchesIsDraw(t *testing.T) {
	positions := []struct {
		moves []string
		ply   int
	}{
		{[]string{"g1f3", "g8f6", "f3g1"}, 4},
		{[]string{"g1f3", "g8f6"}, 3},
		{[]string{"e2e4", "e7e5", "g1f3", "b8c6"}, 5},
		{[]string{"b1c3", "b8c6", "c3b1", "c6b8", "b1c3", "b8c6", "c3b1"}, 8},
	}

	for _, tc := range positions {
		pos, states := newGame()
		playUCI(t, pos, states, tc.moves...)

		anyDraw := false
		var ml MoveList
		pos.GenerateLegal(&ml)
		for i := 0; i < ml.Len(); i++ {
			m := ml.Get(i)
			var st StateInfo
			pos.DoMove(m, &st, pos.GivesCheck(m), nil)
			if pos.IsDraw(tc.ply + 1) {
				anyDraw = true
			}
			pos.UndoMove(m)
		}

		if got := pos.UpcomingRepetition(tc.ply); got != anyDraw {
			t.Errorf("after %v: UpcomingRepetition(%d) = %v but a drawing move exists = %v",
				tc.moves, tc.ply, got, anyDraw)
		}
	}
}

func TestRepetitionDetection(t *testing.T) {
	pos, states := newGame()

	// Knight shuffle back to the initial position once
	playUCI(t, pos, states, "g1f3", "g8f6", "f3g1", "f6g8")

	if pos.State().Repetition == 0 {
		t.Fatalf("first repetition must record a ply distance")
	}
	if !pos.IsRepetition(5) {
		t.Errorf("one repetition above the root is a draw in search")
	}
	if !pos.HasRepeated() {
		t.Errorf("HasRepeated must see the shuffle")
	}

	// Shuffle again: the second repetition is flagged negative (3-fold done)
	playUCI(t, pos, states, "g1f3", "g8f6", "f3g1", "f6g8")
	if pos.State().Repetition >= 0 {
		t.Errorf("second repetition must be negative, got %d", pos.State().Repetition)
	}
	if !pos.IsRepetition(1) {
		t.Errorf("a completed 3-fold draws at any ply")
	}
}

func TestFiftyMoveRule(t *testing.T) {
	var pos Position
	var root StateInfo
	// One quiet move away from the 100 half-move mark
	if err := pos.Set("4k3/8/8/8/8/8/8/4KN2 w - - 99 80", false, &root); err != nil {
		t.Fatalf("Set: %v", err)
	}

	if pos.IsDraw(1) {
		t.Errorf("99 half-moves is not yet a draw")
	}

	var st StateInfo
	m := NewMove(F1, G3)
	pos.DoMove(m, &st, pos.GivesCheck(m), nil)

	if !pos.IsDraw(2) {
		t.Errorf("100 half-moves without progress is a draw")
	}
}

func TestCaptureResetsRule50(t *testing.T) {
	pos := mustSet(t, "4k3/8/8/3p4/4P3/8/8/4K3 w - - 42 50", false)

	var st StateInfo
	m := NewMove(E4, D5)
	pos.DoMove(m, &st, pos.GivesCheck(m), nil)

	if pos.Rule50() != 0 {
		t.Errorf("capture must reset the half-move clock, got %d", pos.Rule50())
	}
}
