package main

import (
	"fmt"
	"os"

	"fjacquet/sie-report/cmd/formula"
	"fjacquet/sie-report/cmd/ink2"
	"fjacquet/sie-report/cmd/report"
	"fjacquet/sie-report/cmd/root"
	"fjacquet/sie-report/cmd/seed"
	"fjacquet/sie-report/cmd/stored"
)

func init() {
	root.Init()

	root.Cmd.AddCommand(report.Cmd)
	root.Cmd.AddCommand(ink2.Cmd)
	root.Cmd.AddCommand(formula.Cmd)
	root.Cmd.AddCommand(stored.Cmd)
	root.Cmd.AddCommand(seed.Cmd)
}

func main() {
	if err := root.Cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
