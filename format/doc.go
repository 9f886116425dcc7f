// Package format identifies INF inputs and names output formats.
//
// # Usage
//
//	// Decide what a file holds
//	c := format.Classify(data)
//	switch c.Kind {
//	case format.Compressed:
//	    // unwrap c.Version envelope first
//	case format.Decompressed:
//	    // decode directly
//	}
//
//	// Pick the binary dialect of a decompressed buffer
//	d := format.DetectDialect(data, firstString)
//
// Dialect detection is a best-effort heuristic: the binary format has no
// dialect byte, so it pattern-matches header count fields and the first
// string table entry.
//
// # Related Packages
//
//   - github.com/signadot/inf-format/go-inf/envelope - unwrap compressed input
//   - github.com/signadot/inf-format/go-inf/decode - decode binary INF to IR
package format
