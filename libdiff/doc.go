// Package libdiff diffs rendered INF documents line by line.
//
// # Usage
//
//	// Compute the line diff between two renderings
//	lines := libdiff.DiffLines(oldText, newText)
//
//	// Print it as a unified diff with 3 lines of context
//	err := libdiff.Write(os.Stdout, lines, libdiff.Names("old.inf", "new.inf"))
//
// # Related Packages
//
//   - github.com/signadot/inf-format/go-inf/encode - renders the text being diffed
package libdiff
