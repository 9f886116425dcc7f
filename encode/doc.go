// Package encode renders decoded INF documents.
//
// # Usage
//
//	// Render as text INF
//	err := encode.Encode(doc, w)
//
//	// Render with terminal colors
//	err := encode.Encode(doc, w, encode.EncodeColors(encode.NewColors()))
//
//	// Dump the decoded tree as YAML
//	err := encode.Encode(doc, w, encode.EncodeFormat(format.YAMLFormat))
//
// Text output is byte-exact without colors: CRLF line endings, one tab
// per nesting level, a synthesized _RefID as the first property of every
// object dialect object, integral numbers below 1e15 without a decimal
// point.
//
// # Related Packages
//
//   - github.com/signadot/inf-format/go-inf/ir - decoded document model
//   - github.com/signadot/inf-format/go-inf/decode - decode binary INF to IR
package encode
