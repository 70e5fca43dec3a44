// Package log provides structured, leveled logging in the same convention
// as the internal "log" package of the teacher node this firmware's ground
// tooling is modeled on: package-level Crit/Error/Warn/Info/Debug/Trace
// functions taking a message and alternating key/value context, dispatched
// through a swappable root Handler. The teacher's own log package source
// was not available to copy, so this is a from-scratch re-creation of the
// same calling convention, grounded on its real go-stack/stack dependency
// for caller attribution.
package log

import (
	"fmt"
	"os"
	"time"

	"github.com/go-stack/stack"
)

// Lvl is a logging severity level, ordered from most to least severe.
type Lvl int

const (
	LvlCrit Lvl = iota
	LvlError
	LvlWarn
	LvlInfo
	LvlDebug
	LvlTrace
)

func (l Lvl) String() string {
	switch l {
	case LvlCrit:
		return "CRIT"
	case LvlError:
		return "ERROR"
	case LvlWarn:
		return "WARN"
	case LvlInfo:
		return "INFO"
	case LvlDebug:
		return "DEBUG"
	case LvlTrace:
		return "TRACE"
	default:
		return "UNKNOWN"
	}
}

// Record is a single log event passed to a Handler.
type Record struct {
	Time time.Time
	Lvl  Lvl
	Msg  string
	Ctx  []interface{}
	Call stack.Call
}

// Logger emits Records to an attached Handler, tagging every record with
// context supplied at construction time via With.
type Logger struct {
	ctx     []interface{}
	handler Handler
}

var root = &Logger{handler: defaultHandler()}

func defaultHandler() Handler {
	return LvlFilterHandler(LvlInfo, NewTerminalHandler(os.Stderr))
}

// Root returns the root logger. Package-level Crit/Error/.../Trace are
// shorthand for Root().<Level>.
func Root() *Logger { return root }

// SetHandler replaces the root logger's handler, e.g. to redirect output or
// raise/lower the level filter.
func SetHandler(h Handler) { root.SetHandler(h) }

// New returns a Logger that prepends ctx to every record it emits, writing
// through the same handler as the root logger.
func New(ctx ...interface{}) *Logger {
	return &Logger{ctx: ctx, handler: root.handler}
}

// SetHandler replaces this logger's handler.
func (l *Logger) SetHandler(h Handler) { l.handler = h }

func (l *Logger) write(lvl Lvl, msg string, ctx []interface{}) {
	if l.handler == nil {
		return
	}
	all := make([]interface{}, 0, len(l.ctx)+len(ctx))
	all = append(all, l.ctx...)
	all = append(all, ctx...)
	r := &Record{
		Time: time.Now(),
		Lvl:  lvl,
		Msg:  msg,
		Ctx:  all,
		Call: stack.Caller(2),
	}
	_ = l.handler.Log(r)
}

func (l *Logger) Crit(msg string, ctx ...interface{})  { l.write(LvlCrit, msg, ctx) }
func (l *Logger) Error(msg string, ctx ...interface{}) { l.write(LvlError, msg, ctx) }
func (l *Logger) Warn(msg string, ctx ...interface{})  { l.write(LvlWarn, msg, ctx) }
func (l *Logger) Info(msg string, ctx ...interface{})  { l.write(LvlInfo, msg, ctx) }
func (l *Logger) Debug(msg string, ctx ...interface{}) { l.write(LvlDebug, msg, ctx) }
func (l *Logger) Trace(msg string, ctx ...interface{}) { l.write(LvlTrace, msg, ctx) }

// Package-level shorthand for Root().<Level>.
func Crit(msg string, ctx ...interface{})  { root.write(LvlCrit, msg, ctx) }
func Error(msg string, ctx ...interface{}) { root.write(LvlError, msg, ctx) }
func Warn(msg string, ctx ...interface{})  { root.write(LvlWarn, msg, ctx) }
func Info(msg string, ctx ...interface{})  { root.write(LvlInfo, msg, ctx) }
func Debug(msg string, ctx ...interface{}) { root.write(LvlDebug, msg, ctx) }
func Trace(msg string, ctx ...interface{}) { root.write(LvlTrace, msg, ctx) }

// ctxString renders a key/value context slice the way the terminal
// formatter does, usable by handlers that want a plain-text fallback.
func ctxString(ctx []interface{}) string {
	s := ""
	for i := 0; i+1 < len(ctx); i += 2 {
		s += fmt.Sprintf(" %v=%v", ctx[i], ctx[i+1])
	}
	return s
}
