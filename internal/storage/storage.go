package storage

import (
	"encoding/json"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/google/uuid"
)

// Key prefixes
const (
	prefixPerft = "perft/"
	prefixBench = "bench/"
)

// PerftRun records one perft verification run.
type PerftRun struct {
	ID       string        `json:"id"`
	When     time.Time     `json:"when"`
	FEN      string        `json:"fen"`
	Chess960 bool          `json:"chess960"`
	Depth    int           `json:"depth"`
	Nodes    []int64       `json:"nodes"` // Nodes[i] is the count at depth i+1
	Elapsed  time.Duration `json:"elapsed"`
	NPS      int64         `json:"nps"`
}

// BenchRun records one transposition-table benchmark run.
type BenchRun struct {
	ID       string        `json:"id"`
	When     time.Time     `json:"when"`
	HashMB   int           `json:"hash_mb"`
	Threads  int           `json:"threads"`
	Probes   int64         `json:"probes"`
	Hits     int64         `json:"hits"`
	Writes   int64         `json:"writes"`
	Hashfull int           `json:"hashfull"`
	Elapsed  time.Duration `json:"elapsed"`
}

// Store wraps BadgerDB for persistent run records.
type Store struct {
	db *badger.DB
}

// Open opens the store in the default database directory.
func Open() (*Store, error) {
	dbDir, err := DatabaseDir()
	if err != nil {
		return nil, err
	}
	return openAt(badger.DefaultOptions(dbDir))
}

// OpenInMemory opens a throwaway in-memory store, used by tests.
func OpenInMemory() (*Store, error) {
	return openAt(badger.DefaultOptions("").WithInMemory(true))
}

func openAt(opts badger.Options) (*Store, error) {
	opts.Logger = nil

	db, err := badger.Open(opts)
	if err != nil {
		return nil, err
	}
	return &Store{db: db}, nil
}

// Close closes the database.
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// RecordPerft stores a perft run, assigning it a fresh ID.
func (s *Store) RecordPerft(run *PerftRun) error {
	run.ID = uuid.NewString()
	if run.When.IsZero() {
		run.When = time.Now()
	}
	return s.put(prefixPerft+run.ID, run)
}

// RecordBench stores a benchmark run, assigning it a fresh ID.
func (s *Store) RecordBench(run *BenchRun) error {
	run.ID = uuid.NewString()
	if run.When.IsZero() {
		run.When = time.Now()
	}
	return s.put(prefixBench+run.ID, run)
}

// PerftRuns returns every stored perft run.
func (s *Store) PerftRuns() ([]PerftRun, error) {
	var runs []PerftRun
	err := s.list(prefixPerft, func(val []byte) error {
		var run PerftRun
		if err := json.Unmarshal(val, &run); err != nil {
			return err
		}
		runs = append(runs, run)
		return nil
	})
	return runs, err
}

// BenchRuns returns every stored benchmark run.
func (s *Store) BenchRuns() ([]BenchRun, error) {
	var runs []BenchRun
	err := s.list(prefixBench, func(val []byte) error {
		var run BenchRun
		if err := json.Unmarshal(val, &run); err != nil {
			return err
		}
		runs = append(runs, run)
		return nil
	})
	return runs, err
}

func (s *Store) put(key string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(key), data)
	})
}

func (s *Store) list(prefix string, each func(val []byte) error) error {
	return s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(prefix)
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Rewind(); it.Valid(); it.Next() {
			if err := it.Item().Value(each); err != nil {
				return err
			}
		}
		return nil
	})
}
