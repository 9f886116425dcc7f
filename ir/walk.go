package ir

import "errors"

// SkipChildren returned from a WalkFunc skips the sections of the
// current object.
var SkipChildren = errors.New("skip children")

// WalkFunc is called for each object with its nesting depth (the root
// and simple dialect sections are at 0) and the section holding it (nil
// for the root).
type WalkFunc func(obj *Object, depth int, in *Section) error

// Walk visits the objects of d in document order: an object, then the
// objects of its sections in order.
func (d *Document) Walk(fn WalkFunc) error {
	if d.Root != nil {
		if err := walk(d.Root, 0, nil, fn); err != nil {
			return err
		}
	}
	for _, s := range d.Sections {
		if err := walkSection(s, 0, fn); err != nil {
			return err
		}
	}
	return nil
}

func walk(o *Object, depth int, in *Section, fn WalkFunc) error {
	err := fn(o, depth, in)
	if err == SkipChildren {
		return nil
	}
	if err != nil {
		return err
	}
	for _, s := range o.Sections {
		if err := walkSection(s, depth+1, fn); err != nil {
			return err
		}
	}
	return nil
}

func walkSection(s *Section, depth int, fn WalkFunc) error {
	switch s.Kind {
	case ContainerSection:
		for _, o := range s.Objects {
			if err := walk(o, depth, s, fn); err != nil {
				return err
			}
		}
	case InlineSection:
		if s.Object != nil {
			return walk(s.Object, depth, s, fn)
		}
	}
	return nil
}

// Objects returns the objects of d in document order.
func (d *Document) Objects() []*Object {
	var res []*Object
	d.Walk(func(o *Object, _ int, _ *Section) error {
		res = append(res, o)
		return nil
	})
	return res
}
