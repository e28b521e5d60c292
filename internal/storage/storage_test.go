package storage

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestPerftRunRoundTrip(t *testing.T) {
	s, err := OpenInMemory()
	if err != nil {
		t.Fatalf("open in-memory store: %v", err)
	}
	defer s.Close()

	run := &PerftRun{
		FEN:     "rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - 0 1",
		Depth:   4,
		Nodes:   []int64{20, 400, 8902, 197281},
		Elapsed: 120 * time.Millisecond,
		NPS:     1_700_000,
	}
	assert.NoError(t, s.RecordPerft(run))
	assert.NotEmpty(t, run.ID)
	assert.False(t, run.When.IsZero())

	runs, err := s.PerftRuns()
	assert.NoError(t, err)
	assert.Len(t, runs, 1)
	assert.Equal(t, run.ID, runs[0].ID)
	assert.Equal(t, run.Nodes, runs[0].Nodes)
	assert.Equal(t, run.FEN, runs[0].FEN)
}

func TestBenchRunRoundTrip(t *testing.T) {
	s, err := OpenInMemory()
	if err != nil {
		t.Fatalf("open in-memory store: %v", err)
	}
	defer s.Close()

	for i := 0; i < 3; i++ {
		run := &BenchRun{
			HashMB:   16,
			Threads:  4,
			Probes:   1_000_000,
			Hits:     420_000,
			Writes:   600_000,
			Hashfull: 312,
			Elapsed:  time.Second,
		}
		assert.NoError(t, s.RecordBench(run))
	}

	runs, err := s.BenchRuns()
	assert.NoError(t, err)
	assert.Len(t, runs, 3)

	seen := map[string]bool{}
	for _, r := range runs {
		assert.False(t, seen[r.ID], "duplicate run id %s", r.ID)
		seen[r.ID] = true
		assert.Equal(t, 16, r.HashMB)
	}
}

func TestPrefixesAreDisjoint(t *testing.T) {
	s, err := OpenInMemory()
	if err != nil {
		t.Fatalf("open in-memory store: %v", err)
	}
	defer s.Close()

	assert.NoError(t, s.RecordPerft(&PerftRun{Depth: 1, Nodes: []int64{20}}))
	assert.NoError(t, s.RecordBench(&BenchRun{HashMB: 1}))

	perft, err := s.PerftRuns()
	assert.NoError(t, err)
	bench, err := s.BenchRuns()
	assert.NoError(t, err)
	assert.Len(t, perft, 1)
	assert.Len(t, bench, 1)
}
