package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	inf "github.com/signadot/inf-format/go-inf"
	"github.com/signadot/inf-format/go-inf/batch"

	"github.com/google/gops/agent"
	"github.com/scott-cotton/cli"
)

func convert(cfg *ConvertConfig, cc *cli.Context, args []string) error {
	args, err := cfg.Convert.Parse(cc, args)
	if err != nil {
		return err
	}
	if len(args) > 2 {
		return fmt.Errorf("%w: convert takes at most 2 args, got %d", cli.ErrUsage, len(args))
	}
	if cfg.InPlace && len(args) > 1 {
		return fmt.Errorf("%w: -in-place takes no output", cli.ErrUsage)
	}
	if cfg.Gops {
		if err := agent.Listen(agent.Options{}); err != nil {
			theLog.Warn("gops agent failed", "error", err)
		}
		defer agent.Close()
	}

	in := batch.DefaultInput
	if len(args) > 0 {
		in = args[0]
	}
	fi, err := os.Stat(in)
	if err != nil {
		if len(args) == 0 {
			return fmt.Errorf("%w: no input given and %q not found", cli.ErrUsage, in)
		}
		return err
	}
	if !fi.IsDir() {
		if cfg.InPlace {
			return convertFile(cfg, cc, in, in)
		}
		out := ""
		if len(args) == 2 {
			out = args[1]
		}
		return convertFile(cfg, cc, in, out)
	}
	return convertDir(cfg, cc, in, outDir(cfg, in, args))
}

func outDir(cfg *ConvertConfig, in string, args []string) string {
	switch {
	case cfg.InPlace:
		return in
	case len(args) == 2:
		return args[1]
	case cfg.ToText:
		return batch.DefaultTextDir
	default:
		return batch.DefaultBinaryDir
	}
}

func (cfg *ConvertConfig) batchOpts(render []inf.Opt) []batch.Opt {
	return []batch.Opt{
		batch.ToText(cfg.ToText),
		batch.Workers(cfg.Workers),
		batch.Logger(theLog),
		batch.RenderOptions(render...),
	}
}

func convertDir(cfg *ConvertConfig, cc *cli.Context, in, out string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	opts := cfg.batchOpts([]inf.Opt{inf.DecodeOptions(cfg.decOpts()...)})
	stats, err := batch.Dir(ctx, in, out, opts...)
	if stats != nil {
		if perr := stats.Print(cc.Out, cfg.ToText); perr != nil {
			return perr
		}
	}
	if err != nil {
		return err
	}
	if stats.Count(batch.Failed) > 0 {
		return cli.ExitCodeErr(1)
	}
	return nil
}

// convertFile converts in to out, or to the command output when out is
// empty.
func convertFile(cfg *ConvertConfig, cc *cli.Context, in, out string) error {
	if out != "" {
		opts := cfg.batchOpts([]inf.Opt{inf.DecodeOptions(cfg.decOpts()...)})
		r, err := batch.File(in, out, opts...)
		return fileResult(in, r, err)
	}
	d, err := readInput(cc, in)
	if err != nil {
		return err
	}
	res, r, convErr := batch.Convert(d, cfg.batchOpts(cfg.renderOpts(cc.Out))...)
	if r != batch.Skipped && r != batch.Failed {
		if _, err := cc.Out.Write(res); err != nil {
			return err
		}
	}
	return fileResult(in, r, convErr)
}

func fileResult(name string, r batch.Result, err error) error {
	switch r {
	case batch.Failed:
		return fmt.Errorf("error converting %s: %w", name, err)
	case batch.Skipped:
		return fmt.Errorf("skipped %s: %w", name, err)
	case batch.Binary:
		theLog.Warn("text conversion failed, wrote binary", "file", name, "error", err)
	default:
		theLog.Debug(r.String(), "file", name)
	}
	return nil
}
