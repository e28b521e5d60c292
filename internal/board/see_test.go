package board

import "testing"

func TestSeeGe(t *testing.T) {
	tests := []struct {
		name      string
		fen       string
		move      Move
		threshold int
		want      bool
	}{
		{
			name:      "quiet move meets zero threshold",
			fen:       StartFEN,
			move:      NewMove(E2, E4),
			threshold: 0,
			want:      true,
		},
		{
			name:      "rook grabs undefended pawn",
			fen:       "1k6/8/8/8/8/8/p7/R3K3 w - - 0 1",
			move:      NewMove(A1, A2),
			threshold: 100,
			want:      true,
		},
		{
			name:      "rook grabs defended pawn and dies",
			fen:       "1k6/8/8/8/8/1p6/p7/R3K3 w - - 0 1",
			move:      NewMove(A1, A2),
			threshold: 0,
			want:      false,
		},
		{
			name:      "equal trade knight for knight",
			fen:       "4k3/8/4n3/8/8/4N3/8/4K3 w - - 0 1",
			move:      NewMove(E3, E6),
			threshold: 0,
			want:      true, // even exchange meets a zero threshold outright
		},
		{
			name:      "queen takes rook defended by pawn",
			fen:       "4k3/5p2/4r3/8/8/8/4Q3/4K3 w - - 0 1",
			move:      NewMove(E2, E6),
			threshold: 0,
			want:      false, // wins 500, loses 900 to f7xe6
		},
		{
			name:      "queen takes rook defended by pawn, low threshold",
			fen:       "4k3/5p2/4r3/8/8/8/4Q3/4K3 w - - 0 1",
			move:      NewMove(E2, E6),
			threshold: -500,
			want:      true, // net -400 is still above -500
		},
		{
			name:      "pawn takes pawn, simple win",
			fen:       "4k3/8/8/3p4/4P3/8/8/4K3 w - - 0 1",
			move:      NewMove(E4, D5),
			threshold: 100,
			want:      true,
		},
		{
			name:      "xray recapture through rook battery",
			fen:       "4k3/4r3/8/8/8/4p3/4R3/4RK2 w - - 0 1",
			move:      NewMove(E2, E3),
			threshold: 0,
			want:      true, // Rxe3 Rxe3 Rxe3 wins a pawn and a rook for a rook
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			pos := mustSet(t, tc.fen, false)
			if got := pos.SeeGe(tc.move, tc.threshold); got != tc.want {
				t.Errorf("SeeGe(%s, %d) = %v, want %v", tc.move, tc.threshold, got, tc.want)
			}
		})
	}
}

func TestSeeGeNonNormalMoves(t *testing.T) {
	pos := mustSet(t, "4k3/8/8/3Pp3/8/8/8/4K3 w - e6 0 2", false)

	ep := NewEnPassant(D5, E6)
	if !pos.SeeGe(ep, 0) {
		t.Errorf("en passant passes a zero-threshold SEE")
	}
	if pos.SeeGe(ep, 1) {
		t.Errorf("en passant fails a positive-threshold SEE")
	}
}
