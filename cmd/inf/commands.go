package main

import (
	"github.com/signadot/inf-format/go-inf/batch"
	"github.com/signadot/inf-format/go-inf/format"

	"github.com/scott-cotton/cli"
)

func MainCommand() *cli.Command {
	cfg := &MainConfig{}
	sOpts, err := cli.StructOpts(cfg)
	if err != nil {
		panic(err)
	}
	opts := append(sOpts, []*cli.Opt{
		&cli.Opt{
			Name:        "o",
			Description: "output file (default stdout)",
			Type:        cli.NamedFuncOpt(cfg.outOpt, "(filepath)"),
		},
		&cli.Opt{
			Name:        "d",
			Aliases:     []string{"dialect"},
			Description: "binary dialect, detected when not given: object/o, simple/s",
			Type:        cli.NamedFuncOpt(cfg.dialectFunc, "(dialect)"),
		}}...)

	return cli.NewCommandAt(&cfg.Main, "inf").
		WithSynopsis("inf [opts] command [opts]").
		WithDescription("inf decompresses binary INF files and renders them as text.").
		WithOpts(opts...).
		WithRun(func(cc *cli.Context, args []string) error {
			return infMain(cfg, cc, args)
		}).
		WithSubs(
			ConvertCommand(cfg),
			AnalyzeCommand(cfg),
			DumpCommand(cfg),
			FindCommand(cfg),
			DiffCommand(cfg))
}

func ConvertCommand(mainCfg *MainConfig) *cli.Command {
	cfg := &ConvertConfig{MainConfig: mainCfg, Workers: batch.DefaultWorkers()}
	opts, err := cli.StructOpts(cfg)
	if err != nil {
		panic(err)
	}
	return cli.NewCommandAt(&cfg.Convert, "convert").
		WithAliases("c", "conv").
		WithSynopsis("convert [-t] [-w n] [-in-place] [-gops] [in [out]]").
		WithDescription(convertDescription).
		WithOpts(opts...).
		WithRun(func(cc *cli.Context, args []string) error {
			return convert(cfg, cc, args)
		})
}

const convertDescription = `convert decompresses INF files, or with -t renders them as text.

The input is a file or a directory. A directory is searched recursively
for *.inf files, and each is written to the same relative path under the
output directory. Without arguments the input is Inf and the output is
Inf_decompressed, or Inf_text with -t. With -in-place the files of the
input directory are replaced.

A single input file is written to out, or to the command output when out
is not given.

Text files are copied as they are, files of unknown format are skipped,
and a file which decompresses but cannot be rendered as text is written
decompressed.`

func AnalyzeCommand(mainCfg *MainConfig) *cli.Command {
	cfg := &AnalyzeConfig{MainConfig: mainCfg}
	return cli.NewCommandAt(&cfg.Analyze, "analyze").
		WithAliases("a").
		WithSynopsis("analyze [files]").
		WithDescription("show the header and string table of INF files without writing").
		WithRun(func(cc *cli.Context, args []string) error {
			return analyze(cfg, cc, args)
		})
}

func DumpCommand(mainCfg *MainConfig) *cli.Command {
	cfg := &DumpConfig{MainConfig: mainCfg, Format: format.YAMLFormat}
	sOpts, err := cli.StructOpts(cfg)
	if err != nil {
		panic(err)
	}
	opts := append(sOpts, &cli.Opt{
		Name:        "O",
		Aliases:     []string{"ofmt"},
		Description: "output format: yaml/y, json/j, inf/i",
		Type:        cli.NamedFuncOpt(cfg.fmtFunc, "(format)"),
	})
	return cli.NewCommandAt(&cfg.Dump, "dump").
		WithSynopsis("dump [-O format] [-w] [files]").
		WithDescription("dump the decoded tree of INF files; with -w, a.inf is dumped to a.inf.yaml, a.inf.json or a.inf.txt").
		WithOpts(opts...).
		WithRun(func(cc *cli.Context, args []string) error {
			return dump(cfg, cc, args)
		})
}

func FindCommand(mainCfg *MainConfig) *cli.Command {
	cfg := &FindConfig{MainConfig: mainCfg, Depth: -1}
	opts, err := cli.StructOpts(cfg)
	if err != nil {
		panic(err)
	}
	return cli.NewCommandAt(&cfg.Find, "find").
		WithAliases("f").
		WithSynopsis("find [-p] [-depth n] <expr> [files]").
		WithDescription(findDescription).
		WithOpts(opts...).
		WithRun(func(cc *cli.Context, args []string) error {
			return find(cfg, cc, args)
		})
}

const findDescription = `find lists the objects of INF files for which expr is true.

expr is an expr-lang expression over

  class    the object class
  refID    the object ref-id
  section  the enclosing section name
  depth    the nesting depth
  path     the enclosing section names joined by /
  props    property values by name
  has(n)   whether property n is present

for example: class == "cButton" && props.Text == "OK"`

func DiffCommand(mainCfg *MainConfig) *cli.Command {
	cfg := &DiffConfig{MainConfig: mainCfg, Context: 3}
	opts, err := cli.StructOpts(cfg)
	if err != nil {
		panic(err)
	}
	return cli.NewCommandAt(&cfg.Diff, "diff").
		WithAliases("d", "di").
		WithSynopsis("diff [-U n] a b").
		WithDescription("diff the text renderings of two INF files").
		WithOpts(opts...).
		WithRun(func(cc *cli.Context, args []string) error {
			return diff(cfg, cc, args)
		})
}
