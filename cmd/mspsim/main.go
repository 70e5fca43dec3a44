// Command mspsim is a mock-OBC console: a bench operator types commands that
// drive a *msp.Engine wired to an in-memory Application, exercising the full
// transaction lifecycle by hand before any real OBC integration. It never
// runs on the flight target.
package main

import (
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/olekukonko/tablewriter"
	"github.com/peterh/liner"
	cli "gopkg.in/urfave/cli.v1"

	"github.com/tstana/cubes-fw-sub000/log"
	"github.com/tstana/cubes-fw-sub000/msp"
	"github.com/tstana/cubes-fw-sub000/mspconfig"
)

const historyFile = ".mspsim_history"

func main() {
	app := cli.NewApp()
	app.Name = "mspsim"
	app.Usage = "mock-OBC console for driving an MSP experiment engine by hand"
	app.Flags = []cli.Flag{
		cli.StringFlag{Name: "config", Usage: "path to a TOML mspconfig.Config file"},
	}
	app.Action = run

	if err := app.Run(os.Args); err != nil {
		log.Crit("mspsim: fatal", "err", err)
		os.Exit(1)
	}
}

func run(ctx *cli.Context) error {
	cfg := mspconfig.Defaults
	if path := ctx.String("config"); path != "" {
		loaded, err := mspconfig.Load(path)
		if err != nil {
			return err
		}
		cfg = loaded
	}

	codec := msp.NewFrameCodec(cfg.ExpAddr, cfg.MTU)
	stub := &echoApp{}
	engine := msp.NewEngine(codec, stub, nil)

	console := &console{engine: engine, codec: codec}
	return console.loop()
}

type console struct {
	engine *msp.Engine
	codec  *msp.FrameCodec
}

func (c *console) loop() error {
	line := liner.NewLiner()
	defer line.Close()
	line.SetCtrlCAborts(true)

	if f, err := os.Open(historyFile); err == nil {
		line.ReadHistory(f)
		f.Close()
	}
	defer func() {
		if f, err := os.Create(historyFile); err == nil {
			line.WriteHistory(f)
			f.Close()
		}
	}()

	fmt.Println("mspsim ready. Commands: send <opcode-hex> <payload-hex>, request <opcode-hex>, poll, flags, abort, quit")
	for {
		input, err := line.Prompt("mspsim> ")
		if err != nil {
			if err == liner.ErrPromptAborted || err == io.EOF {
				return nil
			}
			return err
		}
		line.AppendHistory(input)

		if err := c.dispatch(strings.Fields(input)); err != nil {
			fmt.Println("error:", err)
		}
	}
}

func (c *console) dispatch(fields []string) error {
	if len(fields) == 0 {
		return nil
	}
	switch fields[0] {
	case "quit", "exit":
		os.Exit(0)
	case "send":
		return c.cmdSend(fields[1:])
	case "request":
		return c.cmdRequest(fields[1:])
	case "poll":
		return c.cmdPoll()
	case "flags":
		return c.cmdFlags()
	case "abort":
		return c.cmdAbort()
	default:
		return fmt.Errorf("unknown command %q", fields[0])
	}
	return nil
}

func (c *console) cmdSend(args []string) error {
	if len(args) < 1 {
		return fmt.Errorf("usage: send <opcode-hex> [payload-hex]")
	}
	opHex := strings.TrimPrefix(args[0], "0x")
	op, err := strconv.ParseUint(opHex, 16, 8)
	if err != nil {
		return err
	}

	var payload []byte
	if len(args) > 1 {
		payload, err = hex.DecodeString(args[1])
		if err != nil {
			return err
		}
	}

	buf := make([]byte, msp.HeaderSize)
	c.codec.FormatHeader(buf, msp.Opcode(op), 0, uint32(len(payload)))
	// The console plays the role of the OBC, so the header must validate
	// as an OBC-originated frame.
	fcs := c.codec.GenerateFCS(buf[0:5], true)
	buf[5], buf[6], buf[7], buf[8] = byte(fcs>>24), byte(fcs>>16), byte(fcs>>8), byte(fcs)

	if err := c.engine.OnRecv(buf); err != nil {
		return err
	}

	if len(payload) == 0 {
		return nil
	}
	data := make([]byte, 1+len(payload)+4)
	// The header went out with frame-ID 0, so the first data frame carries
	// frame-ID 1.
	data[0] = byte(msp.OpData) | 0x80
	copy(data[1:], payload)
	dataFCS := c.codec.GenerateFCS(data[0:1+len(payload)], true)
	data[1+len(payload)], data[1+len(payload)+1], data[1+len(payload)+2], data[1+len(payload)+3] =
		byte(dataFCS>>24), byte(dataFCS>>16), byte(dataFCS>>8), byte(dataFCS)
	return c.engine.OnRecv(data)
}

func (c *console) cmdRequest(args []string) error {
	if len(args) < 1 {
		return fmt.Errorf("usage: request <opcode-hex>")
	}
	return c.cmdSend(args)
}

func (c *console) cmdPoll() error {
	buf := make([]byte, c.codec.MinBufferSize())
	n, err := c.engine.OnSend(buf)
	fmt.Printf("<- % x\n", buf[:n])
	return err
}

func (c *console) cmdAbort() error {
	return c.engine.OnRecv(mustNullFrame(c.codec))
}

func (c *console) cmdFlags() error {
	values, inits := c.engine.Store().Snapshot()

	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{"word", "values", "inits"})
	for i := 0; i < 4; i++ {
		table.Append([]string{
			strconv.Itoa(i),
			fmt.Sprintf("%04x", uint16(values>>(16*i))),
			fmt.Sprintf("%04x", uint16(inits>>(16*i))),
		})
	}
	table.Render()
	fmt.Println("state:", c.engine.State())
	return nil
}

func mustNullFrame(codec *msp.FrameCodec) []byte {
	buf := make([]byte, msp.HeaderSize)
	fcs := codec.GenerateFCS(buf[0:5], true)
	buf[5], buf[6], buf[7], buf[8] = byte(fcs>>24), byte(fcs>>16), byte(fcs>>8), byte(fcs)
	return buf
}
