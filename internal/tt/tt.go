// Package tt implements the shared transposition table: a fixed-capacity,
// cache-line-aligned associative cache probed concurrently by all search
// threads without locks. Entries are packed into a single 64-bit word next
// to a 16-bit verification key; both are written with naturally atomic
// stores and never together, so readers can observe torn pairs. That is
// deliberate: any move coming out of the table is re-validated by the
// position's PseudoLegal filter before use.
package tt

import (
	"fmt"
	"math/bits"
	"os"
	"sync/atomic"
	"unsafe"

	"golang.org/x/sync/errgroup"

	"github.com/hailam/chesscore/internal/board"
)

// Bound describes how a stored value relates to the true search value.
type Bound uint8

const (
	BoundNone Bound = iota
	BoundUpper
	BoundLower
	BoundExact
)

// ValueNone marks an unset value or eval field.
const ValueNone int16 = 32002

const (
	// ClusterSize is the number of entries sharing one cache line.
	ClusterSize = 6

	// DepthEntryOffset shifts stored depths so that depth8 == 0 can mean
	// "empty" while quiescence depths down to 1-DepthEntryOffset still fit.
	DepthEntryOffset = 3

	generationBits = 3
	// GenerationDelta is added to the table generation per search; the low
	// bits of genBound8 stay untouched.
	GenerationDelta = 1 << generationBits
	generationCycle = 255 + GenerationDelta
	generationMask  = (0xFF << generationBits) & 0xFF
)

// A packed entry is one 64-bit word:
//
//	bits  0-15  move16
//	bits 16-31  value16
//	bits 32-47  eval16
//	bits 48-55  genBound8 (bits 0-1 bound, bit 2 pv, bits 3-7 generation)
//	bits 56-63  depth8 (depth + DepthEntryOffset; 0 = empty)
type packedEntry uint64

func packEntry(move16 uint16, value16, eval16 int16, genBound8, depth8 uint8) packedEntry {
	return packedEntry(move16) |
		packedEntry(uint16(value16))<<16 |
		packedEntry(uint16(eval16))<<32 |
		packedEntry(genBound8)<<48 |
		packedEntry(depth8)<<56
}

func (e packedEntry) move16() uint16   { return uint16(e) }
func (e packedEntry) value16() int16   { return int16(uint16(e >> 16)) }
func (e packedEntry) eval16() int16    { return int16(uint16(e >> 32)) }
func (e packedEntry) genBound8() uint8 { return uint8(e >> 48) }
func (e packedEntry) depth8() uint8    { return uint8(e >> 56) }
func (e packedEntry) bound() Bound     { return Bound(e.genBound8() & 0x3) }
func (e packedEntry) isPV() bool       { return e.genBound8()&0x4 != 0 }
func (e packedEntry) depth() int       { return int(e.depth8()) - DepthEntryOffset }
func (e packedEntry) isOccupied() bool { return e.depth8() != 0 }

// relativeAge measures how many generations ago the entry was written.
// generationCycle keeps the subtraction correct across the 8-bit wrap while
// the mask drops the bound/pv bits.
func (e packedEntry) relativeAge(generation8 uint8) int {
	return (generationCycle + int(generation8) - int(e.genBound8())) & generationMask
}

func (e packedEntry) replaceScore(generation8 uint8) int {
	return int(e.depth8()) - e.relativeAge(generation8)
}

// Cluster is one cache line of the table: six packed entries, their six
// verification keys, and padding to 64 bytes. Callers receiving a *Cluster
// from First must treat it as opaque.
type Cluster struct {
	entry [ClusterSize]atomic.Uint64
	key   [ClusterSize]uint16
	_     [2]uint16
}

// save updates slot i. The 64-bit payload and the 16-bit key are stored
// separately and can race with concurrent readers; see the package comment.
func (c *Cluster) save(i int, key uint64, value int16, pv bool, bound Bound,
	depth int, move board.Move, eval int16, generation8 uint8) {

	oldKey16 := c.key[i]
	e := packedEntry(c.entry[i].Load())

	move16 := e.move16()
	// Preserve the old ttmove unless we have a new one or a new position
	if move != board.NoMove || uint16(key) != oldKey16 {
		move16 = uint16(move)
	}

	pvBit := uint8(0)
	pvBonus := 0
	if pv {
		pvBit = 1 << 2
		pvBonus = 2
	}

	// Overwrite less valuable entries (cheapest checks first)
	if bound == BoundExact ||
		uint16(key) != oldKey16 ||
		depth+DepthEntryOffset+pvBonus > int(e.depth8())-4 ||
		e.relativeAge(generation8) != 0 {

		depth8 := uint8(depth + DepthEntryOffset)
		genBound8 := generation8 | pvBit | uint8(bound)

		c.entry[i].Store(uint64(packEntry(move16, value, eval, genBound8, depth8)))
		c.key[i] = uint16(key)
		return
	}

	// The survivor slowly ages so stale shallow entries eventually lose
	// the slot.
	depth8 := e.depth8()
	if e.depth() >= 5 && e.bound() != BoundExact {
		depth8--
	}
	c.entry[i].Store(uint64(packEntry(move16, e.value16(), e.eval16(), e.genBound8(), depth8)))
}

// Data is the decoded content of a probed entry.
type Data struct {
	Move  board.Move
	Value int16
	Eval  int16
	Depth int
	Bound Bound
	PV    bool
}

// Writer grants write access to the slot a probe settled on.
type Writer struct {
	c *Cluster
	i int
}

// Write stores a new search result into the bound slot, applying the
// depth/age replacement policy.
func (w Writer) Write(key uint64, value int16, pv bool, bound Bound, depth int,
	move board.Move, eval int16, generation8 uint8) {
	w.c.save(w.i, key, value, pv, bound, depth, move, eval, generation8)
}

// Table is the process-wide transposition table. One instance is shared by
// every search thread; only the main thread resizes it or bumps the
// generation between searches.
type Table struct {
	table        []Cluster
	clusterCount uint64
	generation8  uint8
}

// New allocates a table of the given size and zeroes it.
func New(megaBytes, threads int) *Table {
	t := &Table{}
	t.Resize(megaBytes, threads)
	return t
}

// Resize releases the current storage and allocates clusterCount =
// mb * 2^20 / 64 clusters. Sizes below 1 MB are tolerated but give a
// zero-capacity table whose probes all miss into a single scratch cluster;
// 1 MB is the practical floor. Allocation failure is fatal.
func (t *Table) Resize(megaBytes, threads int) {
	t.table = nil

	if megaBytes < 0 {
		megaBytes = 0
	}
	t.clusterCount = uint64(megaBytes) * 1024 * 1024 / uint64(unsafe.Sizeof(Cluster{}))

	t.table = allocClusters(t.clusterCount, megaBytes)
	t.Clear(threads)
}

// allocClusters returns a 64-byte-aligned cluster array. At least one
// cluster is always allocated so a zero-capacity table still has a scratch
// line to absorb probes.
func allocClusters(n uint64, megaBytes int) []Cluster {
	count := n
	if count == 0 {
		count = 1
	}

	defer func() {
		if r := recover(); r != nil {
			fmt.Fprintf(os.Stderr, "Failed to allocate %dMB for transposition table.\n", megaBytes)
			os.Exit(1)
		}
	}()

	const lineSize = 64
	buf := make([]byte, count*lineSize+lineSize)
	base := uintptr(unsafe.Pointer(unsafe.SliceData(buf)))
	off := (lineSize - base%lineSize) % lineSize
	return unsafe.Slice((*Cluster)(unsafe.Pointer(unsafe.SliceData(buf[off:]))), count)
}

// Clear zeroes the whole table, striped across the given number of
// goroutines, and resets the generation. Returns once every stripe is done.
func (t *Table) Clear(threads int) {
	t.generation8 = 0

	if threads < 1 {
		threads = 1
	}
	total := uint64(len(t.table))
	stride := total / uint64(threads)

	var g errgroup.Group
	for i := 0; i < threads; i++ {
		start := stride * uint64(i)
		end := start + stride
		if i == threads-1 {
			end = total
		}
		g.Go(func() error {
			for c := start; c < end; c++ {
				cl := &t.table[c]
				for j := 0; j < ClusterSize; j++ {
					cl.entry[j].Store(0)
					cl.key[j] = 0
				}
			}
			return nil
		})
	}
	_ = g.Wait()
}

// NewSearch ages the table by one generation. Called once per search from
// the main thread.
func (t *Table) NewSearch() {
	t.generation8 += GenerationDelta
}

// Generation returns the current generation tag.
func (t *Table) Generation() uint8 {
	return t.generation8
}

// First returns the cluster a key maps to. Exposed for software prefetch;
// the pointer must be treated as opaque.
func (t *Table) First(key uint64) *Cluster {
	hi, _ := bits.Mul64(key, t.clusterCount)
	return &t.table[hi]
}

// Prefetch touches the cache line the key hashes to. Implements
// board.Prefetcher.
func (t *Table) Prefetch(key uint64) {
	_ = t.First(key).entry[0].Load()
}

// Probe looks the key up in its cluster. On a hit it returns the decoded
// entry and a writer bound to the matching slot. On a miss it returns a
// writer bound to the slot with the lowest replace score, the one the
// caller should overwrite.
func (t *Table) Probe(key uint64) (bool, Data, Writer) {
	cl := t.First(key)
	key16 := uint16(key)

	for i := 0; i < ClusterSize; i++ {
		if cl.key[i] == key16 {
			e := packedEntry(cl.entry[i].Load())
			return e.isOccupied(), Data{
				Move:  board.Move(e.move16()),
				Value: e.value16(),
				Eval:  e.eval16(),
				Depth: e.depth(),
				Bound: e.bound(),
				PV:    e.isPV(),
			}, Writer{cl, i}
		}
	}

	replaceI := 0
	replaceScore := packedEntry(cl.entry[0].Load()).replaceScore(t.generation8)
	for i := 1; i < ClusterSize; i++ {
		if score := packedEntry(cl.entry[i].Load()).replaceScore(t.generation8); score < replaceScore {
			replaceI = i
			replaceScore = score
		}
	}

	return false, Data{
		Move:  board.NoMove,
		Value: ValueNone,
		Eval:  ValueNone,
		Depth: -DepthEntryOffset,
		Bound: BoundNone,
	}, Writer{cl, replaceI}
}

// Hashfull estimates the permille of entries written in the last maxAge
// generations by sampling the first min(1000, clusterCount) clusters.
func (t *Table) Hashfull(maxAge int) int {
	sample := uint64(1000)
	if t.clusterCount < sample {
		sample = t.clusterCount
	}
	if sample == 0 {
		return 0
	}

	maxAgeInternal := maxAge * GenerationDelta
	cnt := 0
	for i := uint64(0); i < sample; i++ {
		for j := 0; j < ClusterSize; j++ {
			e := packedEntry(t.table[i].entry[j].Load())
			if e.isOccupied() && e.relativeAge(t.generation8) <= maxAgeInternal {
				cnt++
			}
		}
	}

	return cnt * 1000 / (int(sample) * ClusterSize)
}
