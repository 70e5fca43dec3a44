// Package egse implements the bench Electrical Ground Support Equipment
// bridge: an HTTP/websocket front end that lets ground tooling poke an
// *msp.Engine that is wired to a software stand-in for the OBC, without the
// operator having to speak the wire protocol by hand. None of this runs on
// the flight target.
package egse

import (
	"context"
	"encoding/hex"
	"encoding/json"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/VictoriaMetrics/fastcache"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/julienschmidt/httprouter"
	"golang.org/x/sync/errgroup"

	"github.com/tstana/cubes-fw-sub000/log"
	"github.com/tstana/cubes-fw-sub000/msp"
)

// replaySignatureCacheBytes sizes the fastcache instance used to flag likely
// transport-level replay loops. This is a diagnostic aid only; the
// authoritative duplicate-transaction suppression lives in msp.Store.
const replaySignatureCacheBytes = 1 << 20 // 1 MiB

// Event is one state-transition or upcall notification broadcast to every
// /stream subscriber, serialized as JSON.
type Event struct {
	Time          time.Time `json:"time"`
	CorrelationID string    `json:"correlation_id,omitempty"`
	Kind          string    `json:"kind"`
	State         string    `json:"state"`
	Detail        string    `json:"detail,omitempty"`
}

// Bridge serves the REST surface and websocket stream in front of a single
// *msp.Engine.
type Bridge struct {
	engine *msp.Engine

	replaySeen *fastcache.Cache

	mu          sync.Mutex
	subscribers map[*subscriber]struct{}

	upgrader websocket.Upgrader
}

type subscriber struct {
	conn *websocket.Conn
	out  chan Event
}

// New returns a Bridge fronting engine.
func New(engine *msp.Engine) *Bridge {
	return &Bridge{
		engine:      engine,
		replaySeen:  fastcache.New(replaySignatureCacheBytes),
		subscribers: make(map[*subscriber]struct{}),
	}
}

// Router builds the httprouter.Router exposing this bridge's REST surface.
func (b *Bridge) Router() *httprouter.Router {
	r := httprouter.New()
	r.GET("/flags", b.handleFlags)
	r.GET("/state", b.handleState)
	r.POST("/frame", b.handleFrame)
	r.GET("/stream", b.handleStream)
	return r
}

// Serve runs the HTTP server on addr until ctx is canceled, supervising the
// listener and a subscriber-teardown goroutine together: when the listener
// fails or ctx is canceled, the server is closed and every /stream
// subscriber is disconnected.
func (b *Bridge) Serve(ctx context.Context, addr string) error {
	srv := &http.Server{Addr: addr, Handler: b.Router()}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		ln, err := net.Listen("tcp", addr)
		if err != nil {
			return err
		}
		log.Info("egse: listening", "addr", addr)
		errc := make(chan error, 1)
		go func() { errc <- srv.Serve(ln) }()
		select {
		case <-ctx.Done():
			return srv.Close()
		case err := <-errc:
			return err
		}
	})
	g.Go(func() error {
		<-ctx.Done()
		b.closeSubscribers()
		return nil
	})
	return g.Wait()
}

func (b *Bridge) handleFlags(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	values, inits := b.engine.Store().Snapshot()
	writeJSON(w, map[string]uint64{"values": values, "inits": inits})
}

func (b *Bridge) handleState(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	writeJSON(w, map[string]string{"state": b.engine.State().String()})
}

// frameRequest is the body of POST /frame: a hex-encoded raw MSP frame as
// the transport would have handed it to Engine.OnRecv.
type frameRequest struct {
	HexFrame string `json:"hex_frame"`
}

func (b *Bridge) handleFrame(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var req frameRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	buf, err := hex.DecodeString(req.HexFrame)
	if err != nil {
		http.Error(w, "hex_frame: "+err.Error(), http.StatusBadRequest)
		return
	}

	corrID := uuid.NewString()
	if b.replaySeen.Has(buf) {
		b.broadcast(Event{CorrelationID: corrID, Kind: "replay-suspected", State: b.engine.State().String()})
	}
	b.replaySeen.Set(buf, []byte{1})

	err = b.engine.OnRecv(buf)
	evt := Event{CorrelationID: corrID, Kind: "recv", State: b.engine.State().String()}
	if err != nil {
		evt.Detail = err.Error()
	}
	b.broadcast(evt)

	resp := map[string]string{"correlation_id": corrID, "state": b.engine.State().String()}
	if err != nil {
		resp["error"] = err.Error()
	}
	writeJSON(w, resp)
}

func (b *Bridge) handleStream(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	conn, err := b.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Warn("egse: websocket upgrade failed", "err", err)
		return
	}
	sub := &subscriber{conn: conn, out: make(chan Event, 32)}

	b.mu.Lock()
	b.subscribers[sub] = struct{}{}
	b.mu.Unlock()

	defer func() {
		b.mu.Lock()
		delete(b.subscribers, sub)
		b.mu.Unlock()
		conn.Close()
	}()

	for evt := range sub.out {
		if err := conn.WriteJSON(evt); err != nil {
			return
		}
	}
}

// Broadcast publishes evt to every connected /stream subscriber. Exported so
// code outside the HTTP handlers can publish its own notifications alongside
// the HTTP-triggered ones.
func (b *Bridge) Broadcast(evt Event) { b.broadcast(evt) }

func (b *Bridge) broadcast(evt Event) {
	if evt.Time.IsZero() {
		evt.Time = time.Now()
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	for sub := range b.subscribers {
		select {
		case sub.out <- evt:
		default:
			log.Warn("egse: dropping event for slow subscriber")
		}
	}
}

func (b *Bridge) closeSubscribers() {
	b.mu.Lock()
	defer b.mu.Unlock()
	for sub := range b.subscribers {
		close(sub.out)
		delete(b.subscribers, sub)
	}
}

func writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}
