// Command chesscore drives the position core: perft verification runs and
// transposition-table benchmarks, optionally recorded to the local run store.
package main

import (
	"flag"
	"fmt"
	"os"
	"sync/atomic"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/pkg/profile"
	"github.com/rs/zerolog"
	"github.com/schollz/progressbar/v3"
	"golang.org/x/sync/errgroup"

	"github.com/hailam/chesscore/internal/board"
	"github.com/hailam/chesscore/internal/storage"
	"github.com/hailam/chesscore/internal/tt"
)

func main() {
	log := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()

	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}

	switch os.Args[1] {
	case "perft":
		runPerft(log, os.Args[2:])
	case "bench":
		runBench(log, os.Args[2:])
	default:
		usage()
		os.Exit(2)
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, "usage: chesscore perft|bench [flags]")
}

func runPerft(log zerolog.Logger, args []string) {
	fs := flag.NewFlagSet("perft", flag.ExitOnError)
	fen := fs.String("fen", board.StartFEN, "position to count from")
	depth := fs.Int("depth", 5, "maximum perft depth")
	chess960 := fs.Bool("chess960", false, "use Chess960 castling rules")
	store := fs.Bool("store", false, "record the run in the local store")
	cpuprofile := fs.Bool("cpuprofile", false, "write a CPU profile")
	_ = fs.Parse(args)

	if *cpuprofile {
		defer profile.Start(profile.ProfilePath(".")).Stop()
	}

	var pos board.Position
	var st board.StateInfo
	if err := pos.Set(*fen, *chess960, &st); err != nil {
		log.Fatal().Err(err).Msg("invalid FEN")
	}

	log.Info().Str("fen", pos.Fen()).Int("depth", *depth).Msg("perft")

	bar := progressbar.Default(int64(*depth), "perft")
	nodes := make([]int64, 0, *depth)
	start := time.Now()
	for d := 1; d <= *depth; d++ {
		n := board.Perft(&pos, d)
		nodes = append(nodes, n)
		_ = bar.Add(1)
		fmt.Printf("depth %d: %s nodes\n", d, humanize.Comma(n))
	}
	elapsed := time.Since(start)

	total := int64(0)
	for _, n := range nodes {
		total += n
	}
	nps := int64(float64(total) / elapsed.Seconds())
	log.Info().
		Str("total", humanize.Comma(total)).
		Str("nps", humanize.Comma(nps)).
		Dur("elapsed", elapsed).
		Msg("done")

	if *store {
		recordPerft(log, &storage.PerftRun{
			FEN:      pos.Fen(),
			Chess960: *chess960,
			Depth:    *depth,
			Nodes:    nodes,
			Elapsed:  elapsed,
			NPS:      nps,
		})
	}
}

func recordPerft(log zerolog.Logger, run *storage.PerftRun) {
	s, err := storage.Open()
	if err != nil {
		log.Error().Err(err).Msg("open run store")
		return
	}
	defer s.Close()
	if err := s.RecordPerft(run); err != nil {
		log.Error().Err(err).Msg("record run")
		return
	}
	log.Info().Str("id", run.ID).Msg("run recorded")
}

func runBench(log zerolog.Logger, args []string) {
	fs := flag.NewFlagSet("bench", flag.ExitOnError)
	hashMB := fs.Int("hash", 16, "transposition table size in MB")
	threads := fs.Int("threads", 4, "worker goroutines")
	games := fs.Int("games", 200, "random game walks per worker")
	store := fs.Bool("store", false, "record the run in the local store")
	cpuprofile := fs.Bool("cpuprofile", false, "write a CPU profile")
	_ = fs.Parse(args)

	if *cpuprofile {
		defer profile.Start(profile.ProfilePath(".")).Stop()
	}

	table := tt.New(*hashMB, *threads)
	table.NewSearch()

	log.Info().Int("hash_mb", *hashMB).Int("threads", *threads).Msg("bench")

	var probes, hits, writes atomic.Int64
	start := time.Now()

	var g errgroup.Group
	for w := 0; w < *threads; w++ {
		g.Go(func() error {
			rng := uint64(0x1234_5678_9ABC_DEF0 + w*977)
			for game := 0; game < *games; game++ {
				benchWalk(table, &rng, &probes, &hits, &writes)
			}
			return nil
		})
	}
	_ = g.Wait()
	elapsed := time.Since(start)

	hashfull := table.Hashfull(7)
	rate := int64(float64(probes.Load()) / elapsed.Seconds())
	log.Info().
		Str("probes", humanize.Comma(probes.Load())).
		Str("hits", humanize.Comma(hits.Load())).
		Str("writes", humanize.Comma(writes.Load())).
		Str("probes_per_sec", humanize.Comma(rate)).
		Int("hashfull", hashfull).
		Dur("elapsed", elapsed).
		Msg("done")

	if *store {
		s, err := storage.Open()
		if err != nil {
			log.Error().Err(err).Msg("open run store")
			return
		}
		defer s.Close()
		run := &storage.BenchRun{
			HashMB:   *hashMB,
			Threads:  *threads,
			Probes:   probes.Load(),
			Hits:     hits.Load(),
			Writes:   writes.Load(),
			Hashfull: hashfull,
			Elapsed:  elapsed,
		}
		if err := s.RecordBench(run); err != nil {
			log.Error().Err(err).Msg("record run")
			return
		}
		log.Info().Str("id", run.ID).Msg("run recorded")
	}
}

// benchWalk plays one random legal game walk, probing and writing the table
// at every position the way a search would.
func benchWalk(table *tt.Table, rng *uint64, probes, hits, writes *atomic.Int64) {
	var pos board.Position
	states := make([]board.StateInfo, 0, 256)
	states = append(states, board.StateInfo{})
	_ = pos.Set(board.StartFEN, false, &states[0])

	for ply := 0; ply < 120; ply++ {
		hit, data, writer := table.Probe(pos.Key())
		probes.Add(1)
		if hit {
			hits.Add(1)
			// A cached move must survive corruption filtering before use
			if data.Move != board.NoMove && !pos.PseudoLegal(data.Move) {
				data.Move = board.NoMove
			}
		}

		var ml board.MoveList
		pos.GenerateLegal(&ml)
		if ml.Len() == 0 || pos.IsDraw(ply) {
			return
		}

		m := ml.Get(int(nextRand(rng) % uint64(ml.Len())))

		writer.Write(pos.Key(), int16(nextRand(rng)%2000)-1000, ply%8 == 0,
			tt.BoundLower, 2+ply%14, m, int16(nextRand(rng)%2000)-1000,
			table.Generation())
		writes.Add(1)

		states = append(states, board.StateInfo{})
		pos.DoMove(m, &states[len(states)-1], pos.GivesCheck(m), table)
	}
}

func nextRand(s *uint64) uint64 {
	*s ^= *s >> 12
	*s ^= *s << 25
	*s ^= *s >> 27
	return *s * 0x2545F4914F6CDD1D
}
