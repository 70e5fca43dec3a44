package seqstore

import (
	"encoding/binary"
	"time"

	"github.com/syndtr/goleveldb/leveldb"
	"github.com/syndtr/goleveldb/leveldb/util"
)

// latestKey indexes the most recently written snapshot so Load doesn't have
// to scan the history on every restart.
var latestKey = []byte("latest")

// historyPrefix keys every snapshot ever written, one entry per Save call,
// ordered by write time so a ground session can be replayed after the fact.
const historyPrefix = "h"

// LevelDBBackend keeps every snapshot ever written to it, not just the
// latest, so a bench session can be replayed against the exact sequence of
// values/inits pairs the engine produced. Grounded on the teacher's
// syndtr/goleveldb usage in its chain database layer.
type LevelDBBackend struct {
	db *leveldb.DB
}

// OpenLevelDB opens or creates the LevelDB database at path.
func OpenLevelDB(path string) (*LevelDBBackend, error) {
	db, err := leveldb.OpenFile(path, nil)
	if err != nil {
		return nil, err
	}
	return &LevelDBBackend{db: db}, nil
}

// Load implements Backend.
func (b *LevelDBBackend) Load() (values, inits uint64, err error) {
	raw, err := b.db.Get(latestKey, nil)
	if err == leveldb.ErrNotFound {
		return 0, 0, nil
	}
	if err != nil {
		return 0, 0, err
	}
	return decodeSnapshot(raw)
}

// Save implements Backend.
func (b *LevelDBBackend) Save(values, inits uint64) error {
	raw := encodeSnapshot(values, inits)

	batch := new(leveldb.Batch)
	batch.Put(latestKey, raw)
	batch.Put(historyKey(time.Now()), raw)
	return b.db.Write(batch, nil)
}

// Close implements Backend.
func (b *LevelDBBackend) Close() error {
	return b.db.Close()
}

// History returns every snapshot ever written, oldest first.
func (b *LevelDBBackend) History() ([]Snapshot, error) {
	iter := b.db.NewIterator(util.BytesPrefix([]byte(historyPrefix)), nil)
	defer iter.Release()

	var out []Snapshot
	for iter.Next() {
		values, inits, err := decodeSnapshot(iter.Value())
		if err != nil {
			return nil, err
		}
		out = append(out, Snapshot{
			At:     decodeHistoryTime(iter.Key()),
			Values: values,
			Inits:  inits,
		})
	}
	return out, iter.Error()
}

// Snapshot is one historical values/inits pair as recorded by
// LevelDBBackend.Save.
type Snapshot struct {
	At     time.Time
	Values uint64
	Inits  uint64
}

func encodeSnapshot(values, inits uint64) []byte {
	buf := make([]byte, 16)
	binary.BigEndian.PutUint64(buf[0:8], values)
	binary.BigEndian.PutUint64(buf[8:16], inits)
	return buf
}

func decodeSnapshot(raw []byte) (values, inits uint64, err error) {
	if len(raw) != 16 {
		return 0, 0, leveldb.ErrNotFound
	}
	return binary.BigEndian.Uint64(raw[0:8]), binary.BigEndian.Uint64(raw[8:16]), nil
}

func historyKey(t time.Time) []byte {
	key := make([]byte, len(historyPrefix)+8)
	copy(key, historyPrefix)
	binary.BigEndian.PutUint64(key[len(historyPrefix):], uint64(t.UnixNano()))
	return key
}

func decodeHistoryTime(key []byte) time.Time {
	nanos := binary.BigEndian.Uint64(key[len(historyPrefix):])
	return time.Unix(0, int64(nanos))
}
