// Command mspd is the EGSE daemon: it loads a bench configuration, opens the
// configured sequence-flag persistence backend, restores it into a fresh
// *msp.Engine wired to a no-op Application, and serves the HTTP/websocket
// bridge in internal/egse until interrupted. Nothing here runs on the flight
// target.
package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"github.com/tstana/cubes-fw-sub000/internal/egse"
	"github.com/tstana/cubes-fw-sub000/internal/seqstore"
	"github.com/tstana/cubes-fw-sub000/log"
	"github.com/tstana/cubes-fw-sub000/msp"
	"github.com/tstana/cubes-fw-sub000/mspconfig"
)

func main() {
	configPath := flag.String("config", "", "path to a TOML mspconfig.Config file")
	flag.Parse()

	if err := run(*configPath); err != nil {
		log.Crit("mspd: fatal", "err", err)
		os.Exit(1)
	}
}

func run(configPath string) error {
	cfg := mspconfig.Defaults
	if configPath != "" {
		loaded, err := mspconfig.Load(configPath)
		if err != nil {
			return err
		}
		cfg = loaded
	}

	kind := seqstore.KindMMap
	if cfg.StateBackend == mspconfig.BackendLevelDB {
		kind = seqstore.KindLevelDB
	}
	backend, err := seqstore.Open(kind, cfg.StatePath)
	if err != nil {
		return err
	}
	defer backend.Close()

	store := msp.NewStore()
	values, inits, err := backend.Load()
	if err != nil {
		return err
	}
	store.Restore(values, inits)

	codec := msp.NewFrameCodec(cfg.ExpAddr, cfg.MTU)
	engine := msp.NewEngine(codec, noopApplication{}, store)

	bridge := egse.New(engine)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	log.Info("mspd: starting", "bind", cfg.Bind, "backend", cfg.StateBackend)
	err = bridge.Serve(ctx, cfg.Bind)

	values, inits = store.Snapshot()
	if saveErr := backend.Save(values, inits); saveErr != nil {
		log.Error("mspd: failed to persist sequence flags on shutdown", "err", saveErr)
	}
	return err
}

// noopApplication satisfies msp.Application for the daemon: the bridge only
// needs to poke the engine's state machine from the REST surface, not run a
// real application behind it.
type noopApplication struct{}

func (noopApplication) SendStart(msp.Opcode, *uint32)       {}
func (noopApplication) SendData(msp.Opcode, []byte, uint32) {}
func (noopApplication) SendComplete(msp.Opcode)             {}
func (noopApplication) SendError(msp.Opcode, msp.Code)      {}
func (noopApplication) RecvStart(msp.Opcode, uint32)        {}
func (noopApplication) RecvData(msp.Opcode, []byte, uint32) {}
func (noopApplication) RecvComplete(msp.Opcode)             {}
func (noopApplication) RecvError(msp.Opcode, msp.Code)      {}
func (noopApplication) RecvSyscommand(msp.Opcode)           {}
