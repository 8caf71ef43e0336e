// Package storage records the sampler's tick history. The history is a log
// for inspection only; nothing in fastui restores the counter from it.
package storage

import (
	"encoding/binary"

	"github.com/msealand/fastuiupdates/internal/sink"
)

// Store is the persistence abstraction for recorded samples.
// Implementations must be safe for concurrent use.
type Store interface {
	// Append records one sample after every sample appended before it.
	Append(s sink.Sample) error

	// Count returns the number of samples currently stored.
	Count() (int, error)

	// Last returns the most recently appended sample. ok is false when the
	// store is empty.
	Last() (s sink.Sample, ok bool, err error)

	// Recent returns up to n of the newest samples, oldest first.
	Recent(n int) ([]sink.Sample, error)

	// Prune deletes the oldest samples so that at most keep remain.
	Prune(keep int) error

	// DBPath returns the filesystem path of the database file ("" for in-memory).
	DBPath() string

	Close() error
}

// seqKey encodes a sequence number so that byte order matches append order.
func seqKey(seq uint64) []byte {
	k := make([]byte, 8)
	binary.BigEndian.PutUint64(k, seq)
	return k
}
