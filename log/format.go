package log

import (
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
	colorable "github.com/mattn/go-colorable"
)

var lvlColor = map[Lvl]*color.Color{
	LvlCrit:  color.New(color.FgMagenta, color.Bold),
	LvlError: color.New(color.FgRed, color.Bold),
	LvlWarn:  color.New(color.FgYellow),
	LvlInfo:  color.New(color.FgGreen),
	LvlDebug: color.New(color.FgCyan),
	LvlTrace: color.New(color.FgWhite),
}

// NewTerminalHandler returns a Handler that writes human-readable,
// level-colored lines to w. When w is an *os.File, output is wrapped with
// go-colorable so ANSI color codes render correctly on every platform the
// ground tooling runs on.
func NewTerminalHandler(w io.Writer) Handler {
	if f, ok := w.(*os.File); ok {
		w = colorable.NewColorable(f)
	}
	return FuncHandler(func(r *Record) error {
		lvlTxt := r.Lvl.String()
		if c, ok := lvlColor[r.Lvl]; ok {
			lvlTxt = c.Sprint(lvlTxt)
		}
		_, err := fmt.Fprintf(w, "[%s] %-5s %s%s (%+v)\n",
			r.Time.Format("15:04:05.000"), lvlTxt, r.Msg, ctxString(r.Ctx), r.Call)
		return err
	})
}
