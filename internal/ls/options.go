package ls

import (
	"github.com/Supermarcel10/bitwuzla/internal/stats"
	log "github.com/sirupsen/logrus"
)

const (
	DefaultSeed            = 27644437
	DefaultStatsPrefix     = "lib::ls::bv::"
	DefaultMaxStalls       = 10000
	DefaultProbPickInverse = 990
)

type Options struct {
	// MaxNProps caps the total number of propagation steps, 0 is unlimited.
	MaxNProps uint64
	// MaxNUpdates caps the total number of cone update recomputations, 0 is
	// unlimited. A stalled move counts as one update.
	MaxNUpdates uint64
	Seed        uint32

	LogLevel       uint32
	VerbosityLevel uint32
	// Logger defaults to a new logger on stderr with a level derived from
	// LogLevel and VerbosityLevel.
	Logger *log.Logger

	StatsPrefix string
	Statistics  stats.Statistics

	// MaxStalls is the number of consecutive failed moves after which the
	// engine gives up, 0 never gives up.
	MaxStalls uint64
	// ProbPickInverse is the probability in per mille of preferring an
	// inverse value over a consistent value.
	ProbPickInverse uint32
	UseIneqBounds   bool
}

func DefaultOptions() Options {
	return Options{
		Seed:            DefaultSeed,
		StatsPrefix:     DefaultStatsPrefix,
		MaxStalls:       DefaultMaxStalls,
		ProbPickInverse: DefaultProbPickInverse,
		UseIneqBounds:   true,
	}
}

func (o Options) logLevel() log.Level {
	switch {
	case o.LogLevel >= 2:
		return log.TraceLevel
	case o.LogLevel == 1:
		return log.DebugLevel
	case o.VerbosityLevel >= 1:
		return log.InfoLevel
	default:
		return log.WarnLevel
	}
}

// Result is the outcome of a move.
type Result uint8

const (
	Running Result = iota
	Sat
	UnsatSignal
	ResourceExhausted
)

var resultNames = [...]string{
	Running:           "running",
	Sat:               "sat",
	UnsatSignal:       "unknown (gave up)",
	ResourceExhausted: "resource exhausted",
}

func (r Result) String() string {
	if int(r) >= len(resultNames) {
		return "invalid"
	}
	return resultNames[r]
}

func (r Result) Terminal() bool {
	return r != Running
}
