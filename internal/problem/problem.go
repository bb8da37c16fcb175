// Package problem reads local search problems from YAML files and builds
// them into an engine.
package problem

import (
	"os"
	"strings"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/Supermarcel10/bitwuzla/internal/bigint"
	"github.com/Supermarcel10/bitwuzla/internal/bv"
	"github.com/Supermarcel10/bitwuzla/internal/ls"
)

type Problem struct {
	Options OptionsDecl `yaml:"options"`
	Nodes   []NodeDecl  `yaml:"nodes"`
	Roots   []string    `yaml:"roots"`
}

// OptionsDecl overrides engine options. Unset fields keep the defaults.
type OptionsDecl struct {
	Seed            *uint32 `yaml:"seed"`
	MaxProps        *uint64 `yaml:"max_props"`
	MaxUpdates      *uint64 `yaml:"max_updates"`
	MaxStalls       *uint64 `yaml:"max_stalls"`
	Verbosity       *uint32 `yaml:"verbosity"`
	LogLevel        *uint32 `yaml:"log_level"`
	ProbPickInverse *uint32 `yaml:"prob_pick_inverse"`
	UseIneqBounds   *bool   `yaml:"use_ineq_bounds"`
}

// NodeDecl describes one node. A const with a value and no domain is a
// constant, with a domain the value is the initial assignment of a
// variable.
type NodeDecl struct {
	Name    string   `yaml:"name"`
	Kind    string   `yaml:"kind"`
	Size    uint64   `yaml:"size"`
	Domain  string   `yaml:"domain"`
	Value   string   `yaml:"value"`
	Args    []string `yaml:"args"`
	Indices []uint64 `yaml:"indices"`
}

func (o OptionsDecl) Apply(opts *ls.Options) {
	if o.Seed != nil {
		opts.Seed = *o.Seed
	}
	if o.MaxProps != nil {
		opts.MaxNProps = *o.MaxProps
	}
	if o.MaxUpdates != nil {
		opts.MaxNUpdates = *o.MaxUpdates
	}
	if o.MaxStalls != nil {
		opts.MaxStalls = *o.MaxStalls
	}
	if o.Verbosity != nil {
		opts.VerbosityLevel = *o.Verbosity
	}
	if o.LogLevel != nil {
		opts.LogLevel = *o.LogLevel
	}
	if o.ProbPickInverse != nil {
		opts.ProbPickInverse = *o.ProbPickInverse
	}
	if o.UseIneqBounds != nil {
		opts.UseIneqBounds = *o.UseIneqBounds
	}
}

func Load(path string) (*Problem, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "read problem")
	}
	p, err := Parse(data)
	if err != nil {
		return nil, errors.Wrapf(err, "parse %s", path)
	}
	return p, nil
}

func Parse(data []byte) (*Problem, error) {
	var p Problem
	if err := yaml.Unmarshal(data, &p); err != nil {
		return nil, err
	}
	seen := make(map[string]bool, len(p.Nodes))
	for i, n := range p.Nodes {
		if n.Name == "" {
			return nil, errors.Errorf("node %d has no name", i)
		}
		if strings.HasPrefix(n.Name, "!") {
			return nil, errors.Errorf("node name %q starts with '!'", n.Name)
		}
		if seen[n.Name] {
			return nil, errors.Errorf("duplicate node %q", n.Name)
		}
		seen[n.Name] = true
	}
	if len(p.Roots) == 0 {
		return nil, errors.New("no roots")
	}
	return &p, nil
}

// Build creates the nodes in order, registers the roots and returns the id
// of every named node.
func (p *Problem) Build(e *ls.Engine) (map[string]uint64, error) {
	ids := make(map[string]uint64, len(p.Nodes))
	for _, decl := range p.Nodes {
		id, err := buildNode(e, decl, ids)
		if err != nil {
			return nil, errors.Wrapf(err, "node %s", decl.Name)
		}
		ids[decl.Name] = id
	}
	for _, name := range p.Roots {
		id, err := rootID(e, name, ids)
		if err != nil {
			return nil, errors.Wrapf(err, "root %s", name)
		}
		if err := e.RegisterRoot(id); err != nil {
			return nil, errors.Wrapf(err, "root %s", name)
		}
	}
	return ids, nil
}

func rootID(e *ls.Engine, name string, ids map[string]uint64) (uint64, error) {
	inverted := strings.HasPrefix(name, "!")
	id, ok := ids[strings.TrimPrefix(name, "!")]
	if !ok {
		return 0, errors.Wrap(ls.ErrUnknownID, "unknown node")
	}
	if inverted {
		return e.InvertNode(id)
	}
	return id, nil
}

func buildNode(e *ls.Engine, decl NodeDecl, ids map[string]uint64) (uint64, error) {
	kind, err := ls.ParseKind(decl.Kind)
	if err != nil {
		return 0, err
	}
	var domain *bv.Domain
	if decl.Domain != "" {
		d, err := bv.ParseDomain(decl.Domain)
		if err != nil {
			return 0, err
		}
		if decl.Size != 0 && decl.Size != d.Size() {
			return 0, errors.Wrapf(ls.ErrInvalidWidth, "domain %s has width %d, size is %d", decl.Domain, d.Size(), decl.Size)
		}
		domain = &d
	}

	if kind.IsLeaf() {
		if len(decl.Args) > 0 {
			return 0, errors.Wrap(ls.ErrInvalidArity, "leaf with arguments")
		}
		return buildLeaf(e, decl, domain)
	}

	children := make([]uint64, len(decl.Args))
	sizes := make([]uint64, len(decl.Args))
	for i, arg := range decl.Args {
		id, ok := ids[arg]
		if !ok {
			return 0, errors.Wrapf(ls.ErrUnknownID, "argument %s", arg)
		}
		children[i] = id
		if sizes[i], err = e.Size(id); err != nil {
			return 0, err
		}
	}
	if domain != nil {
		return e.MkNodeWithDomain(kind, *domain, children, decl.Indices, decl.Name)
	}
	size := decl.Size
	if size == 0 {
		if size, err = ls.ResultSize(kind, sizes, decl.Indices); err != nil {
			return 0, err
		}
	}
	return e.MkNode(kind, size, children, decl.Indices, decl.Name)
}

func buildLeaf(e *ls.Engine, decl NodeDecl, domain *bv.Domain) (uint64, error) {
	size := decl.Size
	if domain != nil {
		size = domain.Size()
	}
	if size == 0 {
		return 0, errors.Wrap(ls.ErrInvalidWidth, "leaf without size or domain")
	}
	if size > ls.MaxWidth {
		return 0, errors.Wrapf(ls.ErrInvalidWidth, "leaf of width %d", size)
	}
	if decl.Value == "" {
		if domain != nil {
			return e.MkNodeWithDomain(ls.KindConst, *domain, nil, nil, decl.Name)
		}
		return e.MkNode(ls.KindConst, size, nil, nil, decl.Name)
	}
	value, err := parseValue(decl.Value, size)
	if err != nil {
		return 0, err
	}
	if domain == nil {
		d := bv.NewFixedDomain(value)
		domain = &d
	}
	return e.MkConst(value, *domain, decl.Name)
}

// parseValue accepts decimal, 0x and 0b literals. Negative values are taken
// in two's complement.
func parseValue(s string, size uint64) (bv.BitVector, error) {
	i, err := bigint.FromString(s)
	if err != nil {
		return bv.BitVector{}, err
	}
	if i.Ge(bigint.Pow2(size)) || i.Lt(bigint.Pow2(size-1).Neg()) {
		return bv.BitVector{}, errors.Wrapf(ls.ErrInvalidWidth, "value %s does not fit in %d bits", s, size)
	}
	return bv.FromInteger(size, i), nil
}
