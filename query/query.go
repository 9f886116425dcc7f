// Package query selects decoded INF objects with expr-lang expressions.
//
// An expression is evaluated once per object with these names in scope:
//
//	class    string            the object class
//	refID    int               the synthesized ref-id (0 in the simple dialect)
//	section  string            the name of the enclosing section, "" for the root
//	depth    int               nesting depth, 0 for the root
//	props    map[string]any    property values by name
//	has(n)   bool              whether property n is present
//	path     string            section names from the root, joined by "/"
//
// A property with one value maps to that value (string, float64, or
// the blob length as int); other properties map to a list of values.
//
//	class == "cButton" && props.Text == "OK"
//	depth > 1 && has("Icon")
package query

import (
	"fmt"

	"github.com/signadot/inf-format/go-inf/debug"
	"github.com/signadot/inf-format/go-inf/ir"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"
)

type Env struct {
	Class   string            `expr:"class"`
	RefID   int               `expr:"refID"`
	Section string            `expr:"section"`
	Depth   int               `expr:"depth"`
	Props   map[string]any    `expr:"props"`
	Path    string            `expr:"path"`
	Has     func(string) bool `expr:"has"`
}

// Query is a compiled expression. It is safe for concurrent use.
type Query struct {
	src string
	prg *vm.Program
}

func Compile(src string) (*Query, error) {
	prg, err := expr.Compile(src, expr.Env(Env{}), expr.AsBool())
	if err != nil {
		return nil, fmt.Errorf("could not compile %q: %w", src, err)
	}
	return &Query{src: src, prg: prg}, nil
}

func (q *Query) String() string { return q.src }

// Match evaluates q against o.
func (q *Query) Match(o *ir.Object, depth int, in *ir.Section, path string) (bool, error) {
	env := NewEnv(o, depth, in, path)
	res, err := expr.Run(q.prg, env)
	if err != nil {
		return false, fmt.Errorf("%q on %s: %w", q.src, o.Class, err)
	}
	ok, _ := res.(bool)
	if debug.Query() {
		debug.Logf("query %q on %s (ref %d) at %q: %t\n", q.src, o.Class, o.RefID, path, ok)
	}
	return ok, nil
}

func NewEnv(o *ir.Object, depth int, in *ir.Section, path string) Env {
	env := Env{
		Class: o.Class,
		RefID: o.RefID,
		Depth: depth,
		Path:  path,
		Props: make(map[string]any, len(o.Props)),
	}
	if in != nil {
		env.Section = in.Name
	}
	for _, p := range o.Props {
		if _, ok := env.Props[p.Name]; ok {
			continue
		}
		env.Props[p.Name] = propValue(p)
	}
	env.Has = func(name string) bool {
		_, ok := env.Props[name]
		return ok
	}
	return env
}

func propValue(p ir.Property) any {
	if len(p.Values) == 1 {
		return p.Values[0].Any()
	}
	vals := make([]any, len(p.Values))
	for i, v := range p.Values {
		vals[i] = v.Any()
	}
	return vals
}

// Result is one matching object.
type Result struct {
	Object  *ir.Object
	Depth   int
	Section *ir.Section
	Path    string
}

type findConfig struct {
	maxDepth int
}

type FindOpt func(*findConfig)

// MaxDepth stops Find from descending below depth n. A negative n, the
// default, means no limit.
func MaxDepth(n int) FindOpt {
	return func(c *findConfig) { c.maxDepth = n }
}

// Find returns the objects of doc matching q in document order.
func (q *Query) Find(doc *ir.Document, opts ...FindOpt) ([]Result, error) {
	cfg := &findConfig{maxDepth: -1}
	for _, o := range opts {
		o(cfg)
	}
	var res []Result
	paths := map[*ir.Object]string{}
	err := doc.Walk(func(o *ir.Object, depth int, in *ir.Section) error {
		path, ok := paths[o]
		if !ok && in != nil {
			path = in.Name
		}
		for _, s := range o.Sections {
			sp := joinPath(path, s.Name)
			for _, c := range s.Objects {
				paths[c] = sp
			}
			if s.Object != nil {
				paths[s.Object] = sp
			}
		}
		match, err := q.Match(o, depth, in, path)
		if err != nil {
			return err
		}
		if match {
			res = append(res, Result{Object: o, Depth: depth, Section: in, Path: path})
		}
		if cfg.maxDepth >= 0 && depth >= cfg.maxDepth {
			return ir.SkipChildren
		}
		return nil
	})
	return res, err
}

func joinPath(parent, name string) string {
	if parent == "" {
		return name
	}
	return parent + "/" + name
}
