package main

import (
	"bytes"
	"fmt"
	"os"

	inf "github.com/signadot/inf-format/go-inf"
	"github.com/signadot/inf-format/go-inf/decode"
	"github.com/signadot/inf-format/go-inf/encode"
	"github.com/signadot/inf-format/go-inf/format"

	"github.com/scott-cotton/cli"
)

func dump(cfg *DumpConfig, cc *cli.Context, args []string) error {
	args, err := cfg.Dump.Parse(cc, args)
	if err != nil {
		return err
	}
	if cfg.Write {
		return dumpFiles(cfg, cc, args)
	}
	opts := []encode.EncodeOption{encode.EncodeFormat(cfg.Format)}
	if cfg.Format.IsINF() {
		opts = append(opts, cfg.encOpts(cc.Out)...)
	}
	return eachInput(cc, args, func(_ string, d []byte) error {
		doc, err := inf.Decode(d, inf.DecodeOptions(cfg.decOpts()...))
		if err != nil {
			return err
		}
		return encode.Encode(doc, cc.Out, opts...)
	})
}

// dumpFiles writes the dump of each file to the file name plus the
// format suffix.
func dumpFiles(cfg *DumpConfig, cc *cli.Context, files []string) error {
	if len(files) == 0 {
		return fmt.Errorf("%w: -w needs input files", cli.ErrUsage)
	}
	for _, file := range files {
		if file == "-" {
			return fmt.Errorf("%w: -w cannot dump standard input", cli.ErrUsage)
		}
		d, err := readInput(cc, file)
		if err != nil {
			return err
		}
		out, err := dumpFile(d, file, cfg.Format, cfg.decOpts()...)
		if err != nil {
			return fmt.Errorf("error processing %s: %w", file, err)
		}
		theLog.Debug("dumped", "file", file, "output", out)
	}
	return nil
}

func dumpFile(d []byte, file string, f format.Format, decOpts ...decode.DecodeOption) (string, error) {
	doc, err := inf.Decode(d, inf.DecodeOptions(decOpts...))
	if err != nil {
		return "", err
	}
	buf := bytes.NewBuffer(nil)
	if err := encode.Encode(doc, buf, encode.EncodeFormat(f)); err != nil {
		return "", err
	}
	out := file + f.Suffix()
	return out, os.WriteFile(out, buf.Bytes(), 0o644)
}
