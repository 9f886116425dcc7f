package main

import (
	"errors"
	"fmt"

	inf "github.com/signadot/inf-format/go-inf"
	"github.com/signadot/inf-format/go-inf/libdiff"

	"github.com/scott-cotton/cli"
)

func diff(cfg *DiffConfig, cc *cli.Context, args []string) error {
	args, err := cfg.Diff.Parse(cc, args)
	if err != nil {
		cfg.Diff.Usage(cc, err)
		return cli.ExitCodeErr(1)
	}
	if len(args) != 2 {
		return fmt.Errorf("%w: diff requires 2 args, got %v", cli.ErrUsage, args)
	}
	a, err := cfg.text(cc, args[0])
	if err != nil {
		return err
	}
	b, err := cfg.text(cc, args[1])
	if err != nil {
		return err
	}
	lines := libdiff.DiffLines(a, b)
	if err := libdiff.Write(cc.Out, lines,
		libdiff.Context(cfg.Context),
		libdiff.Color(cfg.color(cc.Out)),
		libdiff.Names(args[0], args[1])); err != nil {
		return err
	}
	if libdiff.Changed(lines) {
		return cli.ExitCodeErr(1)
	}
	return nil
}

// text is the text rendering of file; text files are used as they are.
func (cfg *DiffConfig) text(cc *cli.Context, file string) (string, error) {
	d, err := readInput(cc, file)
	if err != nil {
		return "", err
	}
	s, err := inf.DecodeAndRender(d, inf.DecodeOptions(cfg.decOpts()...))
	if errors.Is(err, inf.ErrAlreadyText) {
		return string(d), nil
	}
	if err != nil {
		return "", fmt.Errorf("error decoding %s: %w", file, err)
	}
	return s, nil
}
