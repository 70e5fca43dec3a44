// Package seqstore provides non-volatile persistence for an msp.Store,
// keeping package msp itself storage-agnostic per its component boundaries.
// Two real backends are provided: an mmap-backed file standing in for the
// flight target's memory-mapped NVM, and a LevelDB-backed history used by
// the ground simulator.
package seqstore

// Backend snapshots and restores the pair of 64-bit words msp.Store.Snapshot
// and msp.Store.Restore exchange.
type Backend interface {
	// Load returns the last snapshotted values, or (0, 0, nil) if none has
	// ever been written.
	Load() (values, inits uint64, err error)

	// Save persists values and inits, overwriting whatever was last
	// snapshotted.
	Save(values, inits uint64) error

	// Close releases any resources the backend holds open.
	Close() error
}
