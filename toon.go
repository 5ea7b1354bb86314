// Package toon implements the encoding half of TOON (Token-Oriented Object Notation).
// TOON is a line-oriented, indentation-based text format that encodes the JSON data model
// with explicit structure and minimal quoting. Encoding is deterministic: the same value
// with the same options always produces byte-identical output, so every formatting
// decision (delimiter choice, quoting, number canonicalization, array layout) is a
// normative rule of the format rather than a stylistic default.
//
// Encoding runs in two phases. Normalization converts an arbitrary Go value into a
// canonical tree restricted to nil, bool, float64, string, []Value and *Object, either
// strictly (rejecting anything outside the JSON value space) or best-effort with
// sanitize mode. Rendering is a pure function from the canonical tree to text.
package toon

import (
	"fmt"

	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// Value is a node in the canonical value tree produced by Normalize:
// nil, bool, float64, string, []Value, or *Object.
type Value = any

// Object is the mapping node of the canonical tree. It preserves key
// insertion order, which the encoder reproduces in its output. Callers
// that need an explicit field order build one with NewObject; plain Go
// maps are normalized with sorted keys instead, since they carry no
// order of their own.
type Object = orderedmap.OrderedMap[string, Value]

// NewObject returns an empty insertion-ordered mapping.
func NewObject() *Object {
	return orderedmap.New[string, Value]()
}

// Absent marks a value that is not present, the way an unset field is
// distinct from a null one. In sanitize mode an Absent mapping value
// drops the field entirely, while an Absent sequence element becomes
// null so element indexes stay aligned. Strict mode rejects it.
var Absent absent

type absent struct{}

// Mode selects how Normalize treats values outside the JSON value space.
type Mode int

const (
	// Strict fails with *InvalidValueError on any value that is not
	// null, boolean, finite number, string, sequence or plain mapping.
	Strict Mode = iota
	// Sanitize coerces such values instead: non-finite numbers become
	// null, big integers become decimal strings, timestamps become
	// RFC 3339 strings, functions and other opaque values become null.
	Sanitize
)

// EncodeOptions configures TOON encoding behavior. The zero value (and a
// nil pointer) selects the defaults: strict normalization, two-space
// indentation, and a nesting depth limit of 128.
type EncodeOptions struct {
	Sanitize bool // Coerce non-JSON values instead of failing (default: false)
	Indent   int  // Number of spaces per indentation level (default: 2)
	MaxDepth int  // Maximum nesting depth before encoding fails (default: 128)
}

const (
	defaultIndent   = 2
	defaultMaxDepth = 128
)

// InvalidValueError reports a value that strict normalization cannot
// represent in the JSON value space.
type InvalidValueError struct {
	Type   string // Go type of the offending value
	Reason string // optional detail, e.g. "non-finite number"
}

func (e *InvalidValueError) Error() string {
	if e.Reason != "" {
		return fmt.Sprintf("toon: cannot encode %s: %s", e.Type, e.Reason)
	}
	return fmt.Sprintf("toon: cannot encode value of type %s", e.Type)
}

// DepthExceededError reports input nested more deeply than the
// configured maximum. It guards both normalization and rendering
// against stack exhaustion on adversarial or cyclic input.
type DepthExceededError struct {
	MaxDepth int
}

func (e *DepthExceededError) Error() string {
	return fmt.Sprintf("toon: nesting depth exceeds maximum of %d", e.MaxDepth)
}

// Encode converts a Go value to TOON format using default options.
func Encode(v any) (string, error) {
	return EncodeWithOptions(v, nil)
}

// EncodeWithOptions converts a Go value to TOON format. The output has
// no trailing whitespace on any line and always ends with a single
// newline.
func EncodeWithOptions(v any, opts *EncodeOptions) (string, error) {
	if opts == nil {
		opts = &EncodeOptions{}
	}
	indent := opts.Indent
	if indent <= 0 {
		indent = defaultIndent
	}
	maxDepth := opts.MaxDepth
	if maxDepth <= 0 {
		maxDepth = defaultMaxDepth
	}
	mode := Strict
	if opts.Sanitize {
		mode = Sanitize
	}

	norm := &normalizer{mode: mode, maxDepth: maxDepth}
	canonical, err := norm.normalize(v, 0)
	if err != nil {
		return "", err
	}
	enc := &encoder{indentSize: indent, maxDepth: maxDepth}
	return enc.render(canonical)
}

// Normalize converts a Go value into the canonical tree the encoder
// consumes, without rendering it. Normalization is idempotent: feeding
// its output back through Normalize yields an equivalent tree.
func Normalize(v any, mode Mode) (Value, error) {
	norm := &normalizer{mode: mode, maxDepth: defaultMaxDepth}
	return norm.normalize(v, 0)
}
