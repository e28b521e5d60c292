package board

// Zobrist key material. Generated once at package init from a fixed-seed
// xorshift64* generator so keys are identical across runs and platforms.
var zobrist struct {
	psq       [12][64]uint64 // [Piece][Square]
	enpassant [8]uint64      // One per file
	castling  [16]uint64     // All castling-rights combinations
	side      uint64         // XORed when black is to move
	noPawns   uint64         // Base of the pawn key
}

// Simple PRNG for reproducible Zobrist keys
type prng struct {
	state uint64
}

// xorshift64* algorithm
func (p *prng) next() uint64 {
	p.state ^= p.state >> 12
	p.state ^= p.state << 25
	p.state ^= p.state >> 27
	return p.state * 0x2545F4914F6CDD1D
}

func initZobrist() {
	rng := prng{state: 0x9D39247E33776D41} // Fixed seed

	for pc := WhitePawn; pc <= BlackKing; pc++ {
		for sq := A1; sq <= H8; sq++ {
			zobrist.psq[pc][sq] = rng.next()
		}
	}

	// Pawns never stand on the back ranks, so their keys there are zero.
	// Promotion key updates rely on this: moving a pawn to rank 8 XORs in
	// nothing, and only the promoted piece's key has to be added.
	for _, pc := range [2]Piece{WhitePawn, BlackPawn} {
		for sq := A1; sq <= H1; sq++ {
			zobrist.psq[pc][sq] = 0
		}
		for sq := A8; sq <= H8; sq++ {
			zobrist.psq[pc][sq] = 0
		}
	}

	for file := 0; file < 8; file++ {
		zobrist.enpassant[file] = rng.next()
	}

	zobrist.castling[0] = 0
	for i := 1; i < 16; i++ {
		zobrist.castling[i] = rng.next()
	}

	zobrist.side = rng.next()
	zobrist.noPawns = rng.next()
}

// PieceSquareKey returns the Zobrist key for a piece on a square.
func PieceSquareKey(pc Piece, sq Square) uint64 {
	return zobrist.psq[pc][sq]
}

// SideKey returns the Zobrist key XORed in when black is to move.
func SideKey() uint64 {
	return zobrist.side
}

// Cuckoo tables for upcoming-repetition detection (Marcel van Kervinck's
// algorithm): Zobrist keys of every reversible non-pawn move, stored in a
// perfect hash built by cuckoo displacement over two slots.
const cuckooTableSize = 8192

// cuckooEntryCount is the number of (piece, s1, s2) reversible move pairs on
// an empty board; the build is required to insert exactly this many entries.
const cuckooEntryCount = 3668

var (
	cuckoo     [cuckooTableSize]uint64
	cuckooMove [cuckooTableSize]Move
)

// First and second hash functions for indexing the cuckoo tables
func cuckooH1(key uint64) int { return int(key>>51) & 0x1fff }
func cuckooH2(key uint64) int { return int(key>>35) & 0x1fff }

func initCuckoo() {
	for i := range cuckoo {
		cuckoo[i] = 0
		cuckooMove[i] = NoMove
	}

	count := 0
	for pc := WhitePawn; pc <= BlackKing; pc++ {
		if pc.Type() == Pawn {
			continue
		}
		for s1 := A1; s1 <= H8; s1++ {
			for s2 := s1 + 1; s2 <= H8; s2++ {
				if !PieceTypeAttacks(pc.Type(), s1, 0).IsSet(s2) {
					continue
				}

				move := NewMove(s1, s2)
				key := zobrist.psq[pc][s1] ^ zobrist.psq[pc][s2] ^ zobrist.side

				i := cuckooH1(key)
				for {
					cuckoo[i], key = key, cuckoo[i]
					cuckooMove[i], move = move, cuckooMove[i]
					if move == NoMove { // Arrived at an empty slot
						break
					}
					// Push the victim to its alternative slot
					if i == cuckooH1(key) {
						i = cuckooH2(key)
					} else {
						i = cuckooH1(key)
					}
				}
				count++
			}
		}
	}

	if count != cuckooEntryCount {
		panic("cuckoo table build inserted an unexpected number of entries")
	}
}

// cuckooLookup returns the slot holding the given move key, or -1.
func cuckooLookup(key uint64) int {
	if i := cuckooH1(key); cuckoo[i] == key {
		return i
	}
	if i := cuckooH2(key); cuckoo[i] == key {
		return i
	}
	return -1
}
