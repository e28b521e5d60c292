package tt

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/hailam/chesscore/internal/board"
)

func TestProbeWriteRoundTrip(t *testing.T) {
	table := New(1, 1)
	table.NewSearch()

	key := uint64(0xDEADBEEFCAFEBABE)

	hit, data, writer := table.Probe(key)
	assert.False(t, hit)
	assert.Equal(t, board.NoMove, data.Move)
	assert.Equal(t, ValueNone, data.Value)
	assert.Equal(t, ValueNone, data.Eval)
	assert.Equal(t, BoundNone, data.Bound)

	move := board.NewMove(board.E2, board.E4)
	writer.Write(key, 42, true, BoundExact, 10, move, 17, table.Generation())

	hit, data, _ = table.Probe(key)
	assert.True(t, hit)
	assert.Equal(t, move, data.Move)
	assert.Equal(t, int16(42), data.Value)
	assert.Equal(t, int16(17), data.Eval)
	assert.Equal(t, 10, data.Depth)
	assert.Equal(t, BoundExact, data.Bound)
	assert.True(t, data.PV)
}

// sameClusterKeys returns keys that map to the same cluster as base, each
// with a distinct 16-bit verification key.
func sameClusterKeys(table *Table, base uint64, n int) []uint64 {
	cl := table.First(base)
	keys := make([]uint64, 0, n)
	seen := map[uint16]bool{uint16(base): true}

	for candidate := base + 1; len(keys) < n; candidate += 0x9E3779B97F4A7C15 {
		if table.First(candidate) != cl || seen[uint16(candidate)] {
			continue
		}
		seen[uint16(candidate)] = true
		keys = append(keys, candidate)
	}
	return keys
}

// TestReplacementPrefersAgedEntry: an entry from six searches ago loses its
// slot to a new write even though the newcomer is shallower, while deeper
// current-generation entries survive.
func TestReplacementPrefersAgedEntry(t *testing.T) {
	table := New(1, 1)
	table.NewSearch()

	aged := uint64(0xDEADBEEFCAFEBABE)
	_, _, writer := table.Probe(aged)
	writer.Write(aged, 42, true, BoundExact, 10, board.NewMove(board.E2, board.E4), 17,
		table.Generation())

	for i := 0; i < 6; i++ {
		table.NewSearch()
	}

	// Fill the remaining five slots with deep, fresh entries
	fillers := sameClusterKeys(table, aged, 6)
	for _, k := range fillers[:5] {
		_, _, w := table.Probe(k)
		w.Write(k, 1, false, BoundLower, 20, board.NoMove, 1, table.Generation())
	}

	// A miss in the full cluster must pick the aged entry's slot
	newcomer := fillers[5]
	hit, _, w := table.Probe(newcomer)
	assert.False(t, hit)
	w.Write(newcomer, 5, false, BoundUpper, 4, board.NoMove, 5, table.Generation())

	hit, data, _ := table.Probe(newcomer)
	assert.True(t, hit)
	assert.Equal(t, 4, data.Depth)
	assert.Equal(t, BoundUpper, data.Bound)

	// The aged entry is gone, the fresh deep ones are intact
	hit, _, _ = table.Probe(aged)
	assert.False(t, hit)
	for _, k := range fillers[:5] {
		hit, data, _ := table.Probe(k)
		assert.True(t, hit)
		assert.Equal(t, 20, data.Depth)
	}
}

func TestMovePreservedOnEmptyRewrite(t *testing.T) {
	table := New(1, 1)
	table.NewSearch()

	key := uint64(0x123456789ABCDEF0)
	move := board.NewMove(board.G1, board.F3)

	_, _, w := table.Probe(key)
	w.Write(key, 30, false, BoundLower, 10, move, 15, table.Generation())

	// Re-probing the same position without a better move keeps the old one,
	// and an unconvincing shallow write only decays the stored depth.
	hit, _, w := table.Probe(key)
	assert.True(t, hit)
	w.Write(key, 8, false, BoundLower, 2, board.NoMove, 8, table.Generation())

	hit, data, _ := table.Probe(key)
	assert.True(t, hit)
	assert.Equal(t, move, data.Move)
	assert.Equal(t, 9, data.Depth, "survivor decays by one ply")
	assert.Equal(t, int16(30), data.Value, "survivor keeps its body")
}

func TestExactBoundAlwaysReplaces(t *testing.T) {
	table := New(1, 1)
	table.NewSearch()

	key := uint64(0xFEEDFACE12345678)
	_, _, w := table.Probe(key)
	w.Write(key, 50, false, BoundLower, 20, board.NoMove, 50, table.Generation())

	_, _, w = table.Probe(key)
	w.Write(key, 7, false, BoundExact, 2, board.NoMove, 7, table.Generation())

	_, data, _ := table.Probe(key)
	assert.Equal(t, 2, data.Depth)
	assert.Equal(t, BoundExact, data.Bound)
	assert.Equal(t, int16(7), data.Value)
}

func TestClearResetsEverything(t *testing.T) {
	table := New(1, 4)
	table.NewSearch()

	key := uint64(0xABCDEF)
	_, _, w := table.Probe(key)
	w.Write(key, 1, false, BoundExact, 8, board.NoMove, 1, table.Generation())

	table.Clear(4)

	assert.Equal(t, uint8(0), table.Generation())
	hit, _, _ := table.Probe(key)
	assert.False(t, hit)
	assert.Equal(t, 0, table.Hashfull(0))
}

// TestHashfull fills the first slot of the first 1000 clusters and checks
// the permille estimate, including its generation filter. A 1 MB table has
// 16384 clusters, so cluster i is reached by the key i<<50.
func TestHashfull(t *testing.T) {
	table := New(1, 1)
	table.NewSearch()

	for i := uint64(0); i < 1000; i++ {
		key := i << 50
		_, _, w := table.Probe(key)
		w.Write(key, 0, false, BoundLower, 5, board.NoMove, 0, table.Generation())
	}

	// 1000 of 6000 sampled slots occupied
	assert.Equal(t, 166, table.Hashfull(0))

	table.NewSearch()
	assert.Equal(t, 0, table.Hashfull(0), "previous generation filtered out")
	assert.Equal(t, 166, table.Hashfull(1), "one-generation window includes them")
}

func TestZeroSizeTableDoesNotCrash(t *testing.T) {
	table := New(0, 1)

	hit, data, w := table.Probe(0x1234)
	assert.False(t, hit)
	assert.Equal(t, board.NoMove, data.Move)

	w.Write(0x1234, 1, false, BoundExact, 5, board.NoMove, 1, table.Generation())
	assert.Equal(t, 0, table.Hashfull(7))
}

func TestGenerationWraps(t *testing.T) {
	table := New(1, 1)

	key := uint64(0x55AA55AA55AA55AA)
	table.NewSearch()
	_, _, w := table.Probe(key)
	w.Write(key, 3, false, BoundLower, 12, board.NoMove, 3, table.Generation())

	// Drive the 5-bit generation counter through a full wrap; the entry must
	// still be found with its stored depth intact.
	for i := 0; i < 32; i++ {
		table.NewSearch()
	}

	hit, data, _ := table.Probe(key)
	assert.True(t, hit)
	assert.Equal(t, 12, data.Depth)
}

func TestReplaceScorePicksMinimum(t *testing.T) {
	table := New(1, 1)
	table.NewSearch()

	base := uint64(0x0F0F0F0F0F0F0F0F)
	keys := append([]uint64{base}, sameClusterKeys(table, base, 5)...)

	// Occupy all six slots with increasing depths
	for i, k := range keys {
		_, _, w := table.Probe(k)
		w.Write(k, 0, false, BoundLower, 4+i, board.NoMove, 0, table.Generation())
	}

	// A miss now must evict the shallowest entry (slot with minimum
	// depth - age score)
	extra := sameClusterKeys(table, base, 7)[6]
	hit, _, w := table.Probe(extra)
	assert.False(t, hit)
	w.Write(extra, 0, false, BoundLower, 30, board.NoMove, 0, table.Generation())

	hit, _, _ = table.Probe(keys[0]) // depth 4, the shallowest
	assert.False(t, hit, "shallowest entry should have been evicted")
	for _, k := range keys[1:] {
		hit, _, _ := table.Probe(k)
		assert.True(t, hit)
	}
}
