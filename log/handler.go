package log

// Handler processes a single Record. Log is called synchronously from the
// logger that produced the record.
type Handler interface {
	Log(r *Record) error
}

// FuncHandler turns a plain function into a Handler.
type FuncHandler func(r *Record) error

func (f FuncHandler) Log(r *Record) error { return f(r) }

// DiscardHandler drops every record. Used in tests that want a silent
// engine.
func DiscardHandler() Handler {
	return FuncHandler(func(*Record) error { return nil })
}

// LvlFilterHandler wraps h so that only records at or above the severity of
// maxLvl (i.e. numerically <= maxLvl) reach it.
func LvlFilterHandler(maxLvl Lvl, h Handler) Handler {
	return FuncHandler(func(r *Record) error {
		if r.Lvl > maxLvl {
			return nil
		}
		return h.Log(r)
	})
}

// MultiHandler fans a record out to every handler in hs.
func MultiHandler(hs ...Handler) Handler {
	return FuncHandler(func(r *Record) error {
		for _, h := range hs {
			_ = h.Log(r)
		}
		return nil
	})
}
