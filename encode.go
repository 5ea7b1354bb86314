package toon

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// encoder renders a canonical tree to text. It assumes its input
// already satisfies the canonical-tree invariants: leaves are nil,
// bool, float64 or string, sequences are []Value, mappings are
// *Object, and the tree is acyclic.
type encoder struct {
	indentSize  int
	maxDepth    int
	indentCache []string
}

type layoutKind int

const (
	layoutInline layoutKind = iota
	layoutTabular
	layoutList
)

// arrayLayout describes how one sequence renders into its parent
// context: the count header that attaches to the preceding key or dash
// token, the body, and the delimiter the body cells use.
type arrayLayout struct {
	kind   layoutKind
	header string   // "[N]", plus "{k1,k2,...}" for tabular
	body   string   // joined cells for inline, indented lines otherwise
	delim  string   // "," or "\t"
	fields []string // tabular column order, from the first row
}

// numericLiteral matches strings that would read back as numbers:
// optional sign, digits, optional fraction, optional exponent.
var numericLiteral = regexp.MustCompile(`^[+-]?[0-9]+(?:\.[0-9]+)?(?:[eE][+-]?[0-9]+)?$`)

func (e *encoder) render(v Value) (string, error) {
	var out string
	switch val := v.(type) {
	case *Object:
		if val.Len() > 0 {
			rendered, err := e.renderObject(val, 0)
			if err != nil {
				return "", err
			}
			out = rendered
		}
	case []Value:
		al, err := e.encodeArray(val, 0)
		if err != nil {
			return "", err
		}
		out = al.header + ":"
		if al.kind == layoutInline {
			if al.body != "" {
				out += " " + al.body
			}
		} else {
			out += "\n" + al.body
		}
	default:
		token, err := e.primitive(val, ",")
		if err != nil {
			return "", err
		}
		out = token
	}
	return finish(out), nil
}

// finish strips trailing horizontal whitespace from every line and
// appends the single trailing newline.
func finish(s string) string {
	lines := strings.Split(s, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimRight(line, " \t")
	}
	return strings.Join(lines, "\n") + "\n"
}

func (e *encoder) indent(depth int) string {
	for len(e.indentCache) <= depth {
		level := len(e.indentCache)
		e.indentCache = append(e.indentCache, strings.Repeat(" ", level*e.indentSize))
	}
	return e.indentCache[depth]
}

func (e *encoder) primitive(v Value, delim string) (string, error) {
	switch val := v.(type) {
	case nil:
		return "null", nil
	case bool:
		return strconv.FormatBool(val), nil
	case float64:
		return formatNumber(val), nil
	case string:
		return e.encodeString(val, delim), nil
	}
	return "", &InvalidValueError{Type: fmt.Sprintf("%T", v), Reason: "not a canonical value"}
}

// formatNumber produces the shortest plain-decimal form: no exponent
// marker, no redundant trailing zeros. The 'f' format expands large and
// small magnitudes to full decimal digits instead of scientific
// notation.
func formatNumber(f float64) string {
	if f == 0 {
		return "0" // also covers negative zero on handcrafted trees
	}
	return strconv.FormatFloat(f, 'f', -1, 64)
}

func (e *encoder) encodeString(s, delim string) string {
	if needsQuoting(s, delim) {
		return quote(s)
	}
	return s
}

func (e *encoder) encodeKey(key string) string {
	return e.encodeString(key, ",")
}

func needsQuoting(s, delim string) bool {
	if s == "" {
		return true
	}
	switch s {
	case "true", "false", "null":
		return true
	}
	if strings.TrimSpace(s) != s {
		return true
	}
	if s[0] == '-' {
		return true
	}
	if numericLiteral.MatchString(s) {
		return true
	}
	for _, r := range s {
		if r < 0x20 {
			return true
		}
		switch r {
		// Comma and tab are reserved regardless of the active
		// delimiter so either delimiter reads back unambiguously.
		case '"', '\\', ':', ',', '\t':
			return true
		}
	}
	return delim != "" && strings.Contains(s, delim)
}

func quote(s string) string {
	var b strings.Builder
	b.Grow(len(s) + 2)
	b.WriteByte('"')
	for _, r := range s {
		switch r {
		case '\\':
			b.WriteString(`\\`)
		case '"':
			b.WriteString(`\"`)
		case '\n':
			b.WriteString(`\n`)
		case '\r':
			b.WriteString(`\r`)
		case '\t':
			b.WriteString(`\t`)
		default:
			b.WriteRune(r)
		}
	}
	b.WriteByte('"')
	return b.String()
}

func isPrimitive(v Value) bool {
	switch v.(type) {
	case nil, bool, float64, string:
		return true
	}
	return false
}

// inlineDelimiter picks the delimiter for a primitive array: tab when
// any string element contains a literal comma, comma otherwise. Only
// string values are scanned; this scan scope is part of the format.
func inlineDelimiter(seq []Value) string {
	for _, el := range seq {
		if s, ok := el.(string); ok && strings.Contains(s, ",") {
			return "\t"
		}
	}
	return ","
}

// tabularFields reports whether every element is a mapping over the
// same key set with only primitive values, returning the column order
// taken from the first row. Empty arrays never qualify.
func tabularFields(seq []Value) ([]string, bool) {
	if len(seq) == 0 {
		return nil, false
	}
	first, ok := seq[0].(*Object)
	if !ok || first.Len() == 0 {
		return nil, false
	}
	fields := make([]string, 0, first.Len())
	for pair := first.Oldest(); pair != nil; pair = pair.Next() {
		fields = append(fields, pair.Key)
	}
	for _, el := range seq {
		obj, ok := el.(*Object)
		if !ok || obj.Len() != len(fields) {
			return nil, false
		}
		for _, f := range fields {
			v, ok := obj.Get(f)
			if !ok || !isPrimitive(v) {
				return nil, false
			}
		}
	}
	return fields, true
}

// tabularDelimiter scans every string cell for a literal comma, the
// same rule inlineDelimiter applies to elements.
func tabularDelimiter(seq []Value, fields []string) string {
	for _, el := range seq {
		obj := el.(*Object)
		for _, f := range fields {
			v, _ := obj.Get(f)
			if s, ok := v.(string); ok && strings.Contains(s, ",") {
				return "\t"
			}
		}
	}
	return ","
}

// encodeArray chooses a layout for one sequence. Bodies for tabular
// and list layouts are indented one level deeper than depth; the
// caller owns the header line.
func (e *encoder) encodeArray(seq []Value, depth int) (arrayLayout, error) {
	if depth > e.maxDepth {
		return arrayLayout{}, &DepthExceededError{MaxDepth: e.maxDepth}
	}
	count := "[" + strconv.Itoa(len(seq)) + "]"

	allPrimitive := true
	for _, el := range seq {
		if !isPrimitive(el) {
			allPrimitive = false
			break
		}
	}
	if allPrimitive {
		delim := inlineDelimiter(seq)
		cells := make([]string, len(seq))
		for i, el := range seq {
			cell, err := e.primitive(el, delim)
			if err != nil {
				return arrayLayout{}, err
			}
			cells[i] = cell
		}
		return arrayLayout{
			kind:   layoutInline,
			header: count,
			body:   strings.Join(cells, delim),
			delim:  delim,
		}, nil
	}

	if fields, ok := tabularFields(seq); ok {
		delim := tabularDelimiter(seq, fields)
		var header strings.Builder
		header.WriteString(count)
		header.WriteByte('{')
		for i, f := range fields {
			if i > 0 {
				header.WriteByte(',')
			}
			header.WriteString(e.encodeKey(f))
		}
		header.WriteByte('}')

		rowIndent := e.indent(depth + 1)
		rows := make([]string, len(seq))
		for i, el := range seq {
			obj := el.(*Object)
			cells := make([]string, len(fields))
			for j, f := range fields {
				v, _ := obj.Get(f)
				cell, err := e.primitive(v, delim)
				if err != nil {
					return arrayLayout{}, err
				}
				cells[j] = cell
			}
			rows[i] = rowIndent + strings.Join(cells, delim)
		}
		return arrayLayout{
			kind:   layoutTabular,
			header: header.String(),
			body:   strings.Join(rows, "\n"),
			delim:  delim,
			fields: fields,
		}, nil
	}

	items := make([]string, len(seq))
	for i, el := range seq {
		item, err := e.renderListItem(el, depth+1)
		if err != nil {
			return arrayLayout{}, err
		}
		items[i] = item
	}
	return arrayLayout{
		kind:   layoutList,
		header: count,
		body:   strings.Join(items, "\n"),
		delim:  ",",
	}, nil
}

func (e *encoder) renderObject(obj *Object, depth int) (string, error) {
	var b strings.Builder
	first := true
	for pair := obj.Oldest(); pair != nil; pair = pair.Next() {
		if !first {
			b.WriteByte('\n')
		}
		first = false
		line, err := e.renderField(pair.Key, pair.Value, depth)
		if err != nil {
			return "", err
		}
		b.WriteString(line)
	}
	return b.String(), nil
}

// renderField produces the line (or lines) for one `key: value` entry
// at the given indent level.
func (e *encoder) renderField(key string, v Value, depth int) (string, error) {
	if depth > e.maxDepth {
		return "", &DepthExceededError{MaxDepth: e.maxDepth}
	}
	ind := e.indent(depth)
	k := e.encodeKey(key)

	switch val := v.(type) {
	case *Object:
		if val.Len() == 0 {
			return ind + k + ":", nil
		}
		nested, err := e.renderObject(val, depth+1)
		if err != nil {
			return "", err
		}
		return ind + k + ":\n" + nested, nil
	case []Value:
		al, err := e.encodeArray(val, depth)
		if err != nil {
			return "", err
		}
		line := ind + k + al.header + ":"
		if al.kind == layoutInline {
			if al.body != "" {
				line += " " + al.body
			}
			return line, nil
		}
		return line + "\n" + al.body, nil
	default:
		token, err := e.primitive(val, ",")
		if err != nil {
			return "", err
		}
		return ind + k + ": " + token, nil
	}
}

// renderListItem produces the `- ` line (or lines) for one list-layout
// element at the given indent level. A mapping item attaches its first
// field to the dash line; remaining fields render one level deeper.
func (e *encoder) renderListItem(v Value, depth int) (string, error) {
	if depth > e.maxDepth {
		return "", &DepthExceededError{MaxDepth: e.maxDepth}
	}
	ind := e.indent(depth)

	switch val := v.(type) {
	case *Object:
		if val.Len() == 0 {
			return ind + "-", nil
		}
		var b strings.Builder
		firstPair := val.Oldest()
		firstLine, err := e.renderDashField(firstPair.Key, firstPair.Value, depth)
		if err != nil {
			return "", err
		}
		b.WriteString(firstLine)
		for pair := firstPair.Next(); pair != nil; pair = pair.Next() {
			line, err := e.renderField(pair.Key, pair.Value, depth+1)
			if err != nil {
				return "", err
			}
			b.WriteByte('\n')
			b.WriteString(line)
		}
		return b.String(), nil
	case []Value:
		al, err := e.encodeArray(val, depth)
		if err != nil {
			return "", err
		}
		line := ind + "- " + al.header + ":"
		if al.kind == layoutInline {
			if al.body != "" {
				line += " " + al.body
			}
			return line, nil
		}
		return line + "\n" + al.body, nil
	default:
		token, err := e.primitive(val, ",")
		if err != nil {
			return "", err
		}
		return ind + "- " + token, nil
	}
}

// renderDashField is renderField for the first field of a mapping list
// item: the entry rides on the dash line, and any nested body shifts
// one extra level so it aligns under the item's remaining fields.
func (e *encoder) renderDashField(key string, v Value, depth int) (string, error) {
	ind := e.indent(depth)
	k := e.encodeKey(key)

	switch val := v.(type) {
	case *Object:
		if val.Len() == 0 {
			return ind + "- " + k + ":", nil
		}
		nested, err := e.renderObject(val, depth+2)
		if err != nil {
			return "", err
		}
		return ind + "- " + k + ":\n" + nested, nil
	case []Value:
		al, err := e.encodeArray(val, depth+1)
		if err != nil {
			return "", err
		}
		line := ind + "- " + k + al.header + ":"
		if al.kind == layoutInline {
			if al.body != "" {
				line += " " + al.body
			}
			return line, nil
		}
		return line + "\n" + al.body, nil
	default:
		token, err := e.primitive(val, ",")
		if err != nil {
			return "", err
		}
		return ind + "- " + k + ": " + token, nil
	}
}
