// Package batch converts INF files and directory trees of them.
//
// Files are independent: each is classified, unwrapped and optionally
// rendered to text on its own, and a failure in one file is counted
// rather than stopping the run. Directories are processed by a bounded
// pool of workers.
package batch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"
	"sync/atomic"

	inf "github.com/signadot/inf-format/go-inf"
	"github.com/signadot/inf-format/go-inf/debug"
	"github.com/signadot/inf-format/go-inf/format"

	"golang.org/x/sync/errgroup"
)

// Ext is the extension of the files a directory run picks up, compared
// without regard to case.
const Ext = ".inf"

const (
	DefaultInput      = "Inf"
	DefaultBinaryDir  = "Inf_decompressed"
	DefaultTextDir    = "Inf_text"
	WorkersEnv        = "INF_WORKERS"
	defaultPermission = 0o644
)

// Result is the outcome of processing one file.
type Result int

const (
	Skipped Result = iota
	Decompressed
	Converted
	Text
	Binary
	Failed

	numResults
)

func (r Result) String() string {
	switch r {
	case Skipped:
		return "skipped"
	case Decompressed:
		return "decompressed"
	case Converted:
		return "converted"
	case Text:
		return "text"
	case Binary:
		return "binary"
	case Failed:
		return "error"
	default:
		return "<result " + strconv.Itoa(int(r)) + ">"
	}
}

type Config struct {
	ToText  bool
	Workers int
	Log     *slog.Logger
	Render  []inf.Opt
}

type Opt func(*Config)

func ToText(v bool) Opt {
	return func(c *Config) { c.ToText = v }
}

func Workers(n int) Opt {
	return func(c *Config) { c.Workers = n }
}

func Logger(l *slog.Logger) Opt {
	return func(c *Config) { c.Log = l }
}

// RenderOptions are passed to inf.Render when converting to text.
func RenderOptions(opts ...inf.Opt) Opt {
	return func(c *Config) { c.Render = append(c.Render, opts...) }
}

// DefaultWorkers is $INF_WORKERS if set to a positive number and the
// number of CPUs otherwise.
func DefaultWorkers() int {
	if n, err := strconv.Atoi(os.Getenv(WorkersEnv)); err == nil && n > 0 {
		return n
	}
	return runtime.NumCPU()
}

func newConfig(opts []Opt) *Config {
	cfg := &Config{Workers: DefaultWorkers()}
	for _, o := range opts {
		o(cfg)
	}
	if cfg.Workers < 1 {
		cfg.Workers = 1
	}
	if cfg.Log == nil {
		cfg.Log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return cfg
}

// Convert processes the contents of one file. The returned bytes are
// what should be written for it: the decompressed binary, its text
// rendering or, for text input, the input itself. Binary results carry
// the rendering error that caused the fallback.
func Convert(data []byte, opts ...Opt) ([]byte, Result, error) {
	cfg := newConfig(opts)
	return convert(data, cfg)
}

func convert(data []byte, cfg *Config) ([]byte, Result, error) {
	bin, c, err := inf.Binary(data)
	switch {
	case errors.Is(err, inf.ErrAlreadyText):
		return data, Text, nil
	case errors.Is(err, format.ErrUnknownFormat):
		return nil, Skipped, err
	case err != nil:
		return nil, Failed, err
	}
	if !cfg.ToText {
		return bin, Decompressed, nil
	}
	text, err := inf.Render(bin, cfg.Render...)
	if err != nil {
		return bin, Binary, fmt.Errorf("%s input: %w", c, err)
	}
	return []byte(text), Converted, nil
}

// File processes the file in and writes the result to out, creating its
// directory. Nothing is written for skipped or failed files, nor for
// text files converted in place.
func File(in, out string, opts ...Opt) (Result, error) {
	return file(in, out, newConfig(opts))
}

func file(in, out string, cfg *Config) (Result, error) {
	data, err := os.ReadFile(in)
	if err != nil {
		return Failed, err
	}
	res, r, convErr := convert(data, cfg)
	if r == Skipped || r == Failed {
		return r, convErr
	}
	if r == Text && samePath(in, out) {
		return r, nil
	}
	if err := os.MkdirAll(filepath.Dir(out), 0o755); err != nil {
		return Failed, err
	}
	if err := os.WriteFile(out, res, defaultPermission); err != nil {
		return Failed, err
	}
	return r, convErr
}

func samePath(a, b string) bool {
	aa, err := filepath.Abs(a)
	if err != nil {
		return a == b
	}
	bb, err := filepath.Abs(b)
	if err != nil {
		return a == b
	}
	return aa == bb
}

// Find lists the INF files under dir in lexical order.
func Find(dir string) ([]string, error) {
	var res []string
	err := filepath.WalkDir(dir, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && strings.EqualFold(filepath.Ext(p), Ext) {
			res = append(res, p)
		}
		return nil
	})
	return res, err
}

// Dir processes every INF file under in, writing each to the same
// relative path under out. out may equal in. Per file failures are
// logged and counted; the returned error is only for failures to list
// in or a cancelled ctx.
func Dir(ctx context.Context, in, out string, opts ...Opt) (*Stats, error) {
	cfg := newConfig(opts)
	files, err := Find(in)
	if err != nil {
		return nil, err
	}
	cfg.Log.Info("found files", "count", len(files), "input", in, "output", out, "text", cfg.ToText)

	stats := &Stats{}
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(cfg.Workers)
	for _, f := range files {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			rel, err := filepath.Rel(in, f)
			if err != nil {
				stats.Add(Failed)
				cfg.Log.Error("bad path", "file", f, "error", err)
				return nil
			}
			r, err := file(f, filepath.Join(out, rel), cfg)
			stats.Add(r)
			logResult(cfg.Log, rel, r, err)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return stats, err
	}
	return stats, ctx.Err()
}

func logResult(l *slog.Logger, rel string, r Result, err error) {
	if debug.Batch() {
		debug.Logf("batch %s: %s (%v)\n", rel, r, err)
	}
	switch r {
	case Failed:
		l.Error("failed", "file", rel, "error", err)
	case Binary:
		l.Warn("text conversion failed, wrote binary", "file", rel, "error", err)
	case Skipped:
		l.Debug("skipped", "file", rel, "reason", err)
	default:
		l.Info(r.String(), "file", rel)
	}
}

// Stats counts results. It is safe for concurrent use.
type Stats struct {
	counts [numResults]atomic.Int64
}

func (s *Stats) Add(r Result) {
	if r >= 0 && r < numResults {
		s.counts[r].Add(1)
	}
}

func (s *Stats) Count(r Result) int64 {
	if r < 0 || r >= numResults {
		return 0
	}
	return s.counts[r].Load()
}

func (s *Stats) Total() int64 {
	var n int64
	for i := range s.counts {
		n += s.counts[i].Load()
	}
	return n
}

// Print writes a summary. toText selects which of the converted and
// decompressed counts is shown.
func (s *Stats) Print(w io.Writer, toText bool) error {
	var lines []string
	if toText {
		lines = append(lines, fmt.Sprintf("  Converted to text: %d", s.Count(Converted)))
	} else {
		lines = append(lines, fmt.Sprintf("  Decompressed: %d", s.Count(Decompressed)))
	}
	lines = append(lines,
		fmt.Sprintf("  Already text: %d", s.Count(Text)),
		fmt.Sprintf("  Binary (fallback): %d", s.Count(Binary)),
		fmt.Sprintf("  Errors: %d", s.Count(Failed)),
		fmt.Sprintf("  Skipped: %d", s.Count(Skipped)),
	)
	_, err := io.WriteString(w, "Done!\n"+strings.Join(lines, "\n")+"\n")
	return err
}
