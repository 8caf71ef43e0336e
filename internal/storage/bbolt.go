package storage

import (
	"encoding/json"
	"fmt"
	"time"

	bolt "go.etcd.io/bbolt"

	"github.com/msealand/fastuiupdates/internal/sink"
)

// Compile-time proof that BoltStore satisfies the Store interface.
var _ Store = (*BoltStore)(nil)

var bucketSamples = []byte("samples")

// BoltStore is an ACID bbolt-backed implementation of Store.
// Keys come from the bucket sequence, so history from earlier runs is kept
// in order rather than overwritten when poll counts restart at 1.
type BoltStore struct {
	db   *bolt.DB
	path string
}

// Open opens (or creates) a bbolt database at path and initialises the
// samples bucket.
func Open(path string) (*BoltStore, error) {
	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: 2 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("storage: open %s: %w", path, err)
	}

	if err := db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(bucketSamples)
		return err
	}); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("storage: init buckets: %w", err)
	}

	return &BoltStore{db: db, path: path}, nil
}

func (s *BoltStore) Append(sample sink.Sample) error {
	data, err := json.Marshal(sample)
	if err != nil {
		return fmt.Errorf("storage: encode sample: %w", err)
	}
	return s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketSamples)
		seq, err := b.NextSequence()
		if err != nil {
			return err
		}
		return b.Put(seqKey(seq), data)
	})
}

func (s *BoltStore) Count() (int, error) {
	var n int
	err := s.db.View(func(tx *bolt.Tx) error {
		n = tx.Bucket(bucketSamples).Stats().KeyN
		return nil
	})
	return n, err
}

func (s *BoltStore) Last() (sink.Sample, bool, error) {
	var (
		sample sink.Sample
		ok     bool
	)
	err := s.db.View(func(tx *bolt.Tx) error {
		_, v := tx.Bucket(bucketSamples).Cursor().Last()
		if v == nil {
			return nil
		}
		if err := json.Unmarshal(v, &sample); err != nil {
			return fmt.Errorf("storage: decode sample: %w", err)
		}
		ok = true
		return nil
	})
	return sample, ok, err
}

func (s *BoltStore) Recent(n int) ([]sink.Sample, error) {
	if n <= 0 {
		return nil, nil
	}
	out := make([]sink.Sample, 0, n)
	err := s.db.View(func(tx *bolt.Tx) error {
		c := tx.Bucket(bucketSamples).Cursor()
		for k, v := c.Last(); k != nil && len(out) < n; k, v = c.Prev() {
			var sample sink.Sample
			if err := json.Unmarshal(v, &sample); err != nil {
				return fmt.Errorf("storage: decode sample: %w", err)
			}
			out = append(out, sample)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	// Newest-first from the cursor; callers want chronological order.
	for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
		out[i], out[j] = out[j], out[i]
	}
	return out, nil
}

func (s *BoltStore) Prune(keep int) error {
	if keep < 0 {
		keep = 0
	}
	return s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketSamples)
		excess := b.Stats().KeyN - keep
		if excess <= 0 {
			return nil
		}
		toDelete := make([][]byte, 0, excess)
		c := b.Cursor()
		for k, _ := c.First(); k != nil && len(toDelete) < excess; k, _ = c.Next() {
			toDelete = append(toDelete, append([]byte{}, k...))
		}
		for _, k := range toDelete {
			if err := b.Delete(k); err != nil {
				return err
			}
		}
		return nil
	})
}

// DBPath returns the filesystem path of the underlying bbolt database file.
func (s *BoltStore) DBPath() string { return s.path }

// Close closes the underlying bbolt database.
func (s *BoltStore) Close() error {
	return s.db.Close()
}
