package main

import (
	"fmt"

	inf "github.com/signadot/inf-format/go-inf"
	"github.com/signadot/inf-format/go-inf/encode"
	"github.com/signadot/inf-format/go-inf/query"

	"github.com/scott-cotton/cli"
)

func find(cfg *FindConfig, cc *cli.Context, args []string) error {
	args, err := cfg.Find.Parse(cc, args)
	if err != nil {
		return err
	}
	if len(args) == 0 {
		return fmt.Errorf("%w: find requires an expression", cli.ErrUsage)
	}
	q, err := query.Compile(args[0])
	if err != nil {
		return fmt.Errorf("%w: %w", cli.ErrUsage, err)
	}
	files := args[1:]
	if len(files) == 0 {
		files = []string{"-"}
	}
	encOpts := cfg.encOpts(cc.Out)
	for _, file := range files {
		d, err := readInput(cc, file)
		if err != nil {
			return err
		}
		doc, err := inf.Decode(d, inf.DecodeOptions(cfg.decOpts()...))
		if err != nil {
			return fmt.Errorf("error decoding %s: %w", file, err)
		}
		res, err := q.Find(doc, query.MaxDepth(cfg.Depth))
		if err != nil {
			return fmt.Errorf("error querying %s: %w", file, err)
		}
		for _, r := range res {
			if cfg.Print {
				if err := encode.EncodeObject(r.Object, doc.Dialect, cc.Out, encOpts...); err != nil {
					return err
				}
				continue
			}
			if _, err := fmt.Fprintf(cc.Out, "%s:%s [%s] _RefID = %d\n", file, r.Path, r.Object.Class, r.Object.RefID); err != nil {
				return err
			}
		}
	}
	return nil
}
