package egse

import (
	"encoding/hex"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/tstana/cubes-fw-sub000/msp"
)

type nopApp struct{}

func (nopApp) SendStart(msp.Opcode, *uint32)       {}
func (nopApp) SendData(msp.Opcode, []byte, uint32) {}
func (nopApp) SendComplete(msp.Opcode)             {}
func (nopApp) SendError(msp.Opcode, msp.Code)      {}
func (nopApp) RecvStart(msp.Opcode, uint32)        {}
func (nopApp) RecvData(msp.Opcode, []byte, uint32) {}
func (nopApp) RecvComplete(msp.Opcode)             {}
func (nopApp) RecvError(msp.Opcode, msp.Code)      {}
func (nopApp) RecvSyscommand(msp.Opcode)           {}

func newTestBridge() *Bridge {
	codec := msp.NewFrameCodec(0x35, 64)
	engine := msp.NewEngine(codec, nopApp{}, nil)
	return New(engine)
}

func TestHandleStateReportsReady(t *testing.T) {
	b := newTestBridge()
	srv := httptest.NewServer(b.Router())
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/state")
	require.NoError(t, err)
	defer resp.Body.Close()

	var body map[string]string
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	require.Equal(t, "READY", body["state"])
}

func TestHandleFlagsStartsAtZero(t *testing.T) {
	b := newTestBridge()
	srv := httptest.NewServer(b.Router())
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/flags")
	require.NoError(t, err)
	defer resp.Body.Close()

	var body map[string]uint64
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	require.Zero(t, body["values"])
	require.Zero(t, body["inits"])
}

func TestHandleFrameInjectsNullHeader(t *testing.T) {
	b := newTestBridge()
	srv := httptest.NewServer(b.Router())
	defer srv.Close()

	codec := msp.NewFrameCodec(0x35, 64)
	buf := make([]byte, msp.HeaderSize)
	buf[0] = byte(msp.OpNull)
	fcs := codec.GenerateFCS(buf[0:5], true)
	buf[5] = byte(fcs >> 24)
	buf[6] = byte(fcs >> 16)
	buf[7] = byte(fcs >> 8)
	buf[8] = byte(fcs)

	reqBody := `{"hex_frame":"` + hex.EncodeToString(buf) + `"}`
	resp, err := http.Post(srv.URL+"/frame", "application/json", strings.NewReader(reqBody))
	require.NoError(t, err)
	defer resp.Body.Close()

	var body map[string]string
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	require.NotEmpty(t, body["correlation_id"])
}

func TestHandleFrameRejectsBadHex(t *testing.T) {
	b := newTestBridge()
	srv := httptest.NewServer(b.Router())
	defer srv.Close()

	resp, err := http.Post(srv.URL+"/frame", "application/json", strings.NewReader(`{"hex_frame":"zz"}`))
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
}
