package seqstore

import "fmt"

// Kind names the backend implementation to open.
type Kind string

const (
	KindMMap    Kind = "mmap"
	KindLevelDB Kind = "leveldb"
)

// Open opens the backend named by kind at path.
func Open(kind Kind, path string) (Backend, error) {
	switch kind {
	case KindMMap:
		return OpenMMap(path)
	case KindLevelDB:
		return OpenLevelDB(path)
	default:
		return nil, fmt.Errorf("seqstore: unknown backend kind %q", kind)
	}
}
