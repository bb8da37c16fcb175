package main

import (
	"fmt"

	yices2 "github.com/ianamason/yices2_go_bindings/yices_api"
	"github.com/spf13/cobra"

	"github.com/Supermarcel10/bitwuzla/internal/ls"
	"github.com/Supermarcel10/bitwuzla/internal/problem"
	"github.com/Supermarcel10/bitwuzla/internal/smt"
)

var checkCommand = &cobra.Command{
	Use:   "check",
	Short: "decide a problem file exactly with yices",
	Long:  ``,
	RunE: func(*cobra.Command, []string) error {
		return checkExec()
	},
}

func init() {
	checkCommand.Flags().StringVar(&ProblemFile, "file", "", "problem file")
	_ = checkCommand.MarkFlagRequired("file")
}

func checkExec() error {
	yices2.Init()
	defer yices2.Exit()

	p, err := problem.Load(ProblemFile)
	if err != nil {
		return err
	}
	engine := ls.New(ls.DefaultOptions())
	ids, err := p.Build(engine)
	if err != nil {
		return err
	}
	verdict, err := smt.CheckSat(engine)
	if err != nil {
		return err
	}
	switch verdict.Status {
	case yices2.StatusSat:
	case yices2.StatusUnsat:
		fmt.Println("unsat")
		return nil
	default:
		fmt.Println("unknown")
		return nil
	}
	fmt.Println("sat")
	for _, decl := range p.Nodes {
		if value, ok := verdict.Values[ids[decl.Name]]; ok {
			fmt.Printf("%-16s %s\n", decl.Name, value)
		}
	}
	return nil
}
