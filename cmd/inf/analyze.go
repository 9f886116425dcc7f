package main

import (
	"fmt"

	inf "github.com/signadot/inf-format/go-inf"

	"github.com/scott-cotton/cli"
)

func analyze(cfg *AnalyzeConfig, cc *cli.Context, args []string) error {
	args, err := cfg.Analyze.Parse(cc, args)
	if err != nil {
		return err
	}
	failed := false
	err = eachInput(cc, args, func(name string, d []byte) error {
		info, err := inf.Analyze(d)
		if perr := info.Print(cc.Out); perr != nil {
			return perr
		}
		if err != nil {
			failed = true
			fmt.Fprintf(cc.Out, "error: %v\n", err)
		}
		return nil
	})
	if err != nil {
		return err
	}
	if failed {
		return cli.ExitCodeErr(1)
	}
	return nil
}
