package libdiff

import (
	"strings"

	diffpatch "github.com/sergi/go-diff/diffmatchpatch"
)

type Op int

const (
	Equal Op = iota
	Delete
	Insert
)

func (o Op) Prefix() string {
	switch o {
	case Delete:
		return "-"
	case Insert:
		return "+"
	default:
		return " "
	}
}

// Line is one line of a diff. From and To are 1-based line numbers in
// the respective inputs, 0 when the line is not there.
type Line struct {
	Op   Op
	Text string
	From int
	To   int
}

// DiffLines diffs from and to line by line. Line endings, LF or CRLF,
// are not part of Line.Text.
func DiffLines(from, to string) []Line {
	m := map[string]rune{}
	var texts []string
	fromLines, toLines := splitLines(from), splitLines(to)
	fromRunes := mapLines(m, &texts, fromLines)
	toRunes := mapLines(m, &texts, toLines)

	diffCfg := diffpatch.New()
	diffs := diffCfg.DiffMainRunes(fromRunes, toRunes, false)

	res := make([]Line, 0, max(len(fromLines), len(toLines)))
	fi, ti := 0, 0
	for i := range diffs {
		diff := &diffs[i]
		for _, r := range diff.Text {
			l := Line{Text: texts[runeIndex(r)]}
			switch diff.Type {
			case diffpatch.DiffDelete:
				fi++
				l.Op, l.From = Delete, fi
			case diffpatch.DiffInsert:
				ti++
				l.Op, l.To = Insert, ti
			case diffpatch.DiffEqual:
				fi++
				ti++
				l.Op, l.From, l.To = Equal, fi, ti
			}
			res = append(res, l)
		}
	}
	return res
}

// mapLines gives each distinct line a rune so that the runes can be
// diffed in place of the lines.
func mapLines(m map[string]rune, texts *[]string, lines []string) []rune {
	rs := make([]rune, len(lines))
	for i, line := range lines {
		r, ok := m[line]
		if !ok {
			r = indexRune(len(*texts))
			m[line] = r
			*texts = append(*texts, line)
		}
		rs[i] = r
	}
	return rs
}

// Runes in the surrogate range do not survive the string conversions
// inside diffmatchpatch, so indices skip over it.
const (
	surrogateMin = 0xD800
	surrogateLen = 0x800
)

func indexRune(i int) rune {
	if i >= surrogateMin {
		return rune(i + surrogateLen)
	}
	return rune(i)
}

func runeIndex(r rune) int {
	if r >= surrogateMin+surrogateLen {
		return int(r) - surrogateLen
	}
	return int(r)
}

func splitLines(s string) []string {
	if s == "" {
		return nil
	}
	lines := strings.Split(strings.TrimSuffix(s, "\n"), "\n")
	for i, l := range lines {
		lines[i] = strings.TrimSuffix(l, "\r")
	}
	return lines
}

// Changed reports whether any line differs.
func Changed(lines []Line) bool {
	for i := range lines {
		if lines[i].Op != Equal {
			return true
		}
	}
	return false
}
