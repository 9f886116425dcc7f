package main

import (
	"fmt"
	"io"
	"os"

	inf "github.com/signadot/inf-format/go-inf"
	"github.com/signadot/inf-format/go-inf/decode"
	"github.com/signadot/inf-format/go-inf/encode"
	"github.com/signadot/inf-format/go-inf/format"

	"github.com/scott-cotton/cli"

	"github.com/mattn/go-isatty"
)

type MainConfig struct {
	Color   bool `cli:"name=color desc='render text with color'"`
	Verbose bool `cli:"name=v aliases=verbose desc='show detailed output'"`

	// Dialect forces the binary dialect instead of detecting it.
	Dialect *format.Dialect

	Out      string
	CloseOut func() error

	Main *cli.Command
}

func (cfg *MainConfig) dialectFunc(cc *cli.Context, v string) (any, error) {
	d, err := format.ParseDialect(v)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", cli.ErrUsage, err)
	}
	cfg.Dialect = &d
	return d, nil
}

func (cfg *MainConfig) decOpts() []decode.DecodeOption {
	if cfg.Dialect == nil {
		return nil
	}
	return []decode.DecodeOption{decode.WithDialect(*cfg.Dialect)}
}

// encOpts adds colors when asked to with -color, or when -color is not
// given and w is a terminal.
func (cfg *MainConfig) encOpts(w io.Writer) []encode.EncodeOption {
	if cfg.color(w) {
		return []encode.EncodeOption{encode.EncodeColors(encode.NewColors())}
	}
	return nil
}

func (cfg *MainConfig) color(w io.Writer) bool {
	if cfg.Color {
		return true
	}
	for _, opt := range cfg.Main.Opts {
		if opt.Name != "color" {
			continue
		}
		if opt.Value != nil {
			return false
		}
		break
	}
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd())
}

func (cfg *MainConfig) renderOpts(w io.Writer) []inf.Opt {
	return []inf.Opt{
		inf.DecodeOptions(cfg.decOpts()...),
		inf.EncodeOptions(cfg.encOpts(w)...),
	}
}

type ConvertConfig struct {
	*MainConfig

	ToText  bool `cli:"name=t aliases=text desc='convert to text instead of only decompressing'"`
	Workers int  `cli:"name=w aliases=workers desc='number of files converted in parallel (default $INF_WORKERS or the number of CPUs)'"`
	InPlace bool `cli:"name=in-place desc='replace the files of the input directory'"`
	Gops    bool `cli:"name=gops desc='start a gops agent'"`

	Convert *cli.Command
}

type AnalyzeConfig struct {
	*MainConfig

	Analyze *cli.Command
}

type DumpConfig struct {
	*MainConfig

	Format format.Format
	Write  bool `cli:"name=w aliases=write desc='write each dump next to its input, named by the format suffix'"`

	Dump *cli.Command
}

func (cfg *DumpConfig) fmtFunc(_ *cli.Context, v string) (any, error) {
	f, err := format.ParseFormat(v)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", cli.ErrUsage, err)
	}
	cfg.Format = f
	return f, nil
}

type FindConfig struct {
	*MainConfig

	Print bool `cli:"name=p aliases=print desc='print matching objects instead of listing them'"`
	Depth int  `cli:"name=depth desc='do not look below this nesting depth, negative for no limit'"`

	Find *cli.Command
}

type DiffConfig struct {
	*MainConfig

	Context int `cli:"name=U desc='lines of context, negative for all'"`

	Diff *cli.Command
}
