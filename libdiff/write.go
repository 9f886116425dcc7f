package libdiff

import (
	"fmt"
	"io"

	"github.com/fatih/color"
)

type writeConfig struct {
	context int
	color   bool
	from    string
	to      string
}

type WriteOpt func(*writeConfig)

// Context sets the number of unchanged lines shown around each change;
// a negative value shows every line.
func Context(n int) WriteOpt {
	return func(c *writeConfig) { c.context = n }
}

func Color(v bool) WriteOpt {
	return func(c *writeConfig) { c.color = v }
}

// Names sets the names printed in the header.
func Names(from, to string) WriteOpt {
	return func(c *writeConfig) { c.from, c.to = from, to }
}

// Write prints lines as a unified diff. Nothing is written when no
// line changed.
func Write(w io.Writer, lines []Line, opts ...WriteOpt) error {
	cfg := &writeConfig{context: 3, from: "a", to: "b"}
	for _, o := range opts {
		o(cfg)
	}
	if !Changed(lines) {
		return nil
	}
	del, ins, hunk := fmt.Sprint, fmt.Sprint, fmt.Sprint
	if cfg.color {
		del = color.New(color.FgRed).Sprint
		ins = color.New(color.FgGreen).Sprint
		hunk = color.New(color.FgCyan).Sprint
	}
	if _, err := fmt.Fprintf(w, "--- %s\n+++ %s\n", cfg.from, cfg.to); err != nil {
		return err
	}
	for _, h := range hunks(lines, cfg.context) {
		if _, err := fmt.Fprintln(w, hunk(hunkHeader(lines, h))); err != nil {
			return err
		}
		for _, l := range h {
			text := l.Op.Prefix() + l.Text
			switch l.Op {
			case Delete:
				text = del(text)
			case Insert:
				text = ins(text)
			}
			if _, err := fmt.Fprintln(w, text); err != nil {
				return err
			}
		}
	}
	return nil
}

// hunks groups changed lines with up to n lines of context, merging
// groups whose context overlaps.
func hunks(lines []Line, n int) [][]Line {
	if n < 0 {
		return [][]Line{lines}
	}
	keep := make([]bool, len(lines))
	for i, l := range lines {
		if l.Op == Equal {
			continue
		}
		for j := max(0, i-n); j <= min(len(lines)-1, i+n); j++ {
			keep[j] = true
		}
	}
	var res [][]Line
	start := -1
	for i := range lines {
		switch {
		case keep[i] && start < 0:
			start = i
		case !keep[i] && start >= 0:
			res = append(res, lines[start:i])
			start = -1
		}
	}
	if start >= 0 {
		res = append(res, lines[start:])
	}
	return res
}

// hunkStart finds the line numbers at which h starts in each input.
func hunkStart(all, h []Line) (int, int) {
	from, to := 1, 1
	for i := range all {
		if &all[i] == &h[0] {
			break
		}
		if all[i].From != 0 {
			from = all[i].From + 1
		}
		if all[i].To != 0 {
			to = all[i].To + 1
		}
	}
	return from, to
}

// hunkHeader is the "@@ -from,n +to,m @@" line of h. An empty side
// starts at the line preceding the hunk.
func hunkHeader(all, h []Line) string {
	from, to := hunkStart(all, h)
	var n, m int
	for _, l := range h {
		if l.Op != Insert {
			n++
		}
		if l.Op != Delete {
			m++
		}
	}
	if n == 0 {
		from--
	}
	if m == 0 {
		to--
	}
	return fmt.Sprintf("@@ -%d,%d +%d,%d @@", from, n, to, m)
}
