// Package mspconfig loads the bench/ground-tooling configuration for the
// MSP experiment side: the wire parameters spec.md §6 calls out
// (MSP_EXP_ADDR, MSP_EXP_MTU) plus where the EGSE daemon binds and how the
// sequence-flag store is persisted. Grounded on cmd/gprobe/config.go's
// tomlSettings/gprobeConfig pattern, using the teacher's real dependency
// github.com/naoina/toml.
package mspconfig

import (
	"bufio"
	"errors"
	"os"
	"reflect"

	"github.com/naoina/toml"
)

// StateBackend selects which internal/seqstore implementation backs the
// sequence-flag store's persistence.
type StateBackend string

const (
	// BackendMMap memory-maps a small file, modeling the flight target's
	// memory-mapped NVM region.
	BackendMMap StateBackend = "mmap"

	// BackendLevelDB keeps a timestamped history of every snapshot in a
	// LevelDB database, useful for replaying a ground test session.
	BackendLevelDB StateBackend = "leveldb"
)

// Config is the EGSE/simulator configuration loaded from a TOML file.
type Config struct {
	// ExpAddr is the experiment's 7-bit MSP address (MSP_EXP_ADDR).
	ExpAddr byte

	// MTU is the maximum data-frame payload in bytes (MSP_EXP_MTU).
	MTU uint32

	// Bind is the listen address for the EGSE HTTP/websocket bridge.
	Bind string

	// StatePath is the file or database path backing sequence-flag
	// persistence.
	StatePath string

	// StateBackend selects the persistence implementation.
	StateBackend StateBackend
}

// Defaults mirrors the kind of zero-config starting point
// defaultNodeConfig() provides in the teacher's cmd/gprobe: a usable
// configuration for a single bench experiment without a TOML file.
var Defaults = Config{
	ExpAddr:      0x35,
	MTU:          507,
	Bind:         "127.0.0.1:7350",
	StatePath:    "mspstate.db",
	StateBackend: BackendMMap,
}

// tomlSettings mirrors the teacher's cmd/gprobe tomlSettings: TOML keys use
// the same names as the Go struct fields, with no case folding.
var tomlSettings = toml.Config{
	NormFieldName: func(rt reflect.Type, key string) string { return key },
	FieldToKey:    func(rt reflect.Type, field string) string { return field },
}

// Load reads a TOML configuration file into a copy of Defaults.
func Load(path string) (Config, error) {
	cfg := Defaults

	f, err := os.Open(path)
	if err != nil {
		return cfg, err
	}
	defer f.Close()

	if err := tomlSettings.NewDecoder(bufio.NewReader(f)).Decode(&cfg); err != nil {
		var lineErr *toml.LineError
		if errors.As(err, &lineErr) {
			return cfg, errors.New(path + ", " + err.Error())
		}
		return cfg, err
	}
	return cfg, nil
}
