package main

import (
	"fmt"
	"os"

	yices2 "github.com/ianamason/yices2_go_bindings/yices_api"
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/Supermarcel10/bitwuzla/internal/ls"
	"github.com/Supermarcel10/bitwuzla/internal/problem"
	"github.com/Supermarcel10/bitwuzla/internal/smt"
	"github.com/Supermarcel10/bitwuzla/internal/stats"
)

var (
	ProblemFile string

	seed       uint32
	maxProps   uint64
	maxUpdates uint64
	maxMoves   uint64
	maxStalls  uint64
	verbosity  uint32
	logLevel   uint32
	showStats  bool
	verify     bool
)

var solveCommand = &cobra.Command{
	Use:   "solve",
	Short: "run local search on a problem file",
	Long:  ``,
	RunE: func(cmd *cobra.Command, _ []string) error {
		return solveExec(cmd.Flags())
	},
}

func init() {
	solveCommand.Flags().StringVar(&ProblemFile, "file", "", "problem file")
	solveCommand.Flags().Uint32Var(&seed, "seed", ls.DefaultSeed, "random seed")
	solveCommand.Flags().Uint64Var(&maxProps, "max-props", 0, "propagation step budget, 0 is unlimited")
	solveCommand.Flags().Uint64Var(&maxUpdates, "max-updates", 0, "cone update budget, 0 is unlimited")
	solveCommand.Flags().Uint64Var(&maxMoves, "max-moves", 0, "move limit, 0 is unlimited")
	solveCommand.Flags().Uint64Var(&maxStalls, "max-stalls", ls.DefaultMaxStalls, "consecutive failed moves before giving up")
	solveCommand.Flags().Uint32Var(&verbosity, "verbosity", 0, "verbosity level")
	solveCommand.Flags().Uint32Var(&logLevel, "log-level", 0, "log level")
	solveCommand.Flags().BoolVar(&showStats, "stats", false, "print statistics")
	solveCommand.Flags().BoolVar(&verify, "verify", false, "check the result with yices")
	_ = solveCommand.MarkFlagRequired("file")
}

// options starts from the defaults, applies the problem file options and
// then every flag given on the command line.
func options(flags *pflag.FlagSet, p *problem.Problem) ls.Options {
	opts := ls.DefaultOptions()
	p.Options.Apply(&opts)
	if flags.Changed("seed") {
		opts.Seed = seed
	}
	if flags.Changed("max-props") {
		opts.MaxNProps = maxProps
	}
	if flags.Changed("max-updates") {
		opts.MaxNUpdates = maxUpdates
	}
	if flags.Changed("max-stalls") {
		opts.MaxStalls = maxStalls
	}
	if flags.Changed("verbosity") {
		opts.VerbosityLevel = verbosity
	}
	if flags.Changed("log-level") {
		opts.LogLevel = logLevel
	}
	return opts
}

func solveExec(flags *pflag.FlagSet) error {
	p, err := problem.Load(ProblemFile)
	if err != nil {
		return err
	}
	opts := options(flags, p)
	if opts.VerbosityLevel == 0 {
		log.SetLevel(log.WarnLevel)
	}

	var prom *stats.Prometheus
	if showStats {
		if prom, err = stats.NewPrometheus(prometheus.NewRegistry()); err != nil {
			return err
		}
		opts.Statistics = prom
	}

	engine := ls.New(opts)
	ids, err := p.Build(engine)
	if err != nil {
		return err
	}
	log.Infof("loaded %s: %d nodes, %d roots", ProblemFile, engine.NumNodes(), len(engine.Roots()))

	result, err := engine.Run(maxMoves)
	if err != nil {
		return errors.Wrap(err, "local search")
	}
	fmt.Println(result)
	log.Infof("moves %d, props %d, updates %d, stalls %d",
		engine.NumMoves(), engine.NumProps(), engine.NumUpdates(), engine.NumStalls())

	if result == ls.Sat {
		for _, decl := range p.Nodes {
			id := ids[decl.Name]
			kind, _ := engine.Kind(id)
			if !kind.IsLeaf() {
				continue
			}
			value, err := engine.GetAssignment(id)
			if err != nil {
				return err
			}
			fmt.Printf("%-16s %s\n", decl.Name, value)
		}
	}

	if verify && result == ls.Sat {
		yices2.Init()
		defer yices2.Exit()
		ok, err := smt.VerifyModel(engine)
		if err != nil {
			return err
		}
		if !ok {
			return errors.New("assignment does not satisfy the roots")
		}
		log.Infof("assignment verified")
	}

	if prom != nil {
		entries, err := prom.Snapshot()
		if err != nil {
			return err
		}
		stats.Render(os.Stdout, entries)
	}
	return nil
}
