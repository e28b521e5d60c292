package board

// StateInfo is a per-ply snapshot of everything a move changes besides the
// board itself. The search stack owns the nodes and passes them to
// DoMove/DoNullMove; the position only keeps a pointer to the current tip
// and links snapshots through Previous.
type StateInfo struct {
	// Carried forward on DoMove (then updated incrementally)
	MaterialKey     uint64
	PawnKey         uint64
	MinorPieceKey   uint64
	NonPawnKey      [2]uint64
	NonPawnMaterial [2]int
	CastlingRights  CastlingRights
	Rule50          int
	PliesFromNull   int
	EpSquare        Square

	// Recomputed for every move
	Key             uint64
	CheckersBB      Bitboard
	BlockersForKing [2]Bitboard
	Pinners         [2]Bitboard
	CheckSquares    [6]Bitboard
	CapturedPiece   Piece
	Repetition      int
	Previous        *StateInfo
}

// copyForward copies the fields that are carried from the previous ply into a
// fresh snapshot. Everything else is recomputed by DoMove.
func (st *StateInfo) copyForward(prev *StateInfo) {
	st.MaterialKey = prev.MaterialKey
	st.PawnKey = prev.PawnKey
	st.MinorPieceKey = prev.MinorPieceKey
	st.NonPawnKey = prev.NonPawnKey
	st.NonPawnMaterial = prev.NonPawnMaterial
	st.CastlingRights = prev.CastlingRights
	st.Rule50 = prev.Rule50
	st.PliesFromNull = prev.PliesFromNull
	st.EpSquare = prev.EpSquare
}

// DirtyPiece summarizes the board delta of one move for incremental
// evaluators: the moved piece, an optional removal (capture, or the rook on
// castling) and an optional addition (promotion piece, or the rook on
// castling). To is NoSquare for promotions because the pawn disappears.
type DirtyPiece struct {
	Pc   Piece
	From Square
	To   Square

	RemovePc Piece
	RemoveSq Square

	AddPc Piece
	AddSq Square
}
