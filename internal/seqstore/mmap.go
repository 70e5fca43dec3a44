package seqstore

import (
	"encoding/binary"
	"os"

	"github.com/edsrzf/mmap-go"
)

// mmapFileSize is the fixed size of the backing file: two big-endian
// uint64s, values then inits.
const mmapFileSize = 16

// MMapBackend memory-maps a small file as a stand-in for the flight
// target's memory-mapped non-volatile storage region (see
// Peripherals/.../memory-mapped register access in the original firmware's
// out-of-scope peripheral list; here it is the one piece of that surface
// the core does ask to have persisted).
type MMapBackend struct {
	f   *os.File
	buf mmap.MMap
}

// OpenMMap opens or creates the file at path and memory-maps it.
func OpenMMap(path string) (*MMapBackend, error) {
	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE, 0o600)
	if err != nil {
		return nil, err
	}
	if info, err := f.Stat(); err != nil {
		f.Close()
		return nil, err
	} else if info.Size() < mmapFileSize {
		if err := f.Truncate(mmapFileSize); err != nil {
			f.Close()
			return nil, err
		}
	}

	m, err := mmap.Map(f, mmap.RDWR, 0)
	if err != nil {
		f.Close()
		return nil, err
	}
	return &MMapBackend{f: f, buf: m}, nil
}

// Load implements Backend.
func (b *MMapBackend) Load() (values, inits uint64, err error) {
	values = binary.BigEndian.Uint64(b.buf[0:8])
	inits = binary.BigEndian.Uint64(b.buf[8:16])
	return values, inits, nil
}

// Save implements Backend.
func (b *MMapBackend) Save(values, inits uint64) error {
	binary.BigEndian.PutUint64(b.buf[0:8], values)
	binary.BigEndian.PutUint64(b.buf[8:16], inits)
	return b.buf.Flush()
}

// Close implements Backend.
func (b *MMapBackend) Close() error {
	if err := b.buf.Unmap(); err != nil {
		b.f.Close()
		return err
	}
	return b.f.Close()
}
