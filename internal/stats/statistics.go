// Package stats provides the optional statistics handle used by the local
// search engine.
package stats

type Counter interface {
	Inc()
	Add(n uint64)
}

type Timer interface {
	// Start starts a measurement, the returned function stops it.
	Start() func()
}

// Statistics is an external counters/timers sink.
type Statistics interface {
	Counter(name string) Counter
	Timer(name string) Timer
}

// Facade forwards to a Statistics handle or discards everything when the
// handle is nil. Names are prefixed and handles are cached per name.
type Facade struct {
	stats    Statistics
	prefix   string
	counters map[string]Counter
	timers   map[string]Timer
}

func NewFacade(s Statistics, prefix string) *Facade {
	return &Facade{
		stats:    s,
		prefix:   prefix,
		counters: make(map[string]Counter),
		timers:   make(map[string]Timer),
	}
}

func (f *Facade) Enabled() bool {
	return f != nil && f.stats != nil
}

func (f *Facade) Prefix() string {
	return f.prefix
}

func (f *Facade) counter(name string) Counter {
	c, ok := f.counters[name]
	if !ok {
		c = f.stats.Counter(f.prefix + name)
		f.counters[name] = c
	}
	return c
}

func (f *Facade) Inc(name string) {
	if !f.Enabled() {
		return
	}
	f.counter(name).Inc()
}

func (f *Facade) Add(name string, n uint64) {
	if !f.Enabled() || n == 0 {
		return
	}
	f.counter(name).Add(n)
}

func nop() {}

// Time starts the named timer, call the result to stop it.
func (f *Facade) Time(name string) func() {
	if !f.Enabled() {
		return nop
	}
	t, ok := f.timers[name]
	if !ok {
		t = f.stats.Timer(f.prefix + name)
		f.timers[name] = t
	}
	return t.Start()
}
