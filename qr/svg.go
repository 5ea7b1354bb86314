package qr

import (
	"fmt"
	"strings"
)

// SVGOptions configures SVG rendering. The zero value (and a nil
// pointer) selects the defaults.
type SVGOptions struct {
	ModuleSize int    // Pixels per module (default: 4)
	Border     int    // Quiet-zone width in modules (default: 4)
	Foreground string // Dark module fill (default: "#000000")
	Background string // Background fill (default: "#ffffff")
}

// SVG renders text as a self-contained SVG document. Output is
// deterministic: the same text, level and options always produce the
// same string.
func SVG(text string, level Level, opts *SVGOptions) (string, error) {
	if opts == nil {
		opts = &SVGOptions{}
	}
	moduleSize := opts.ModuleSize
	if moduleSize <= 0 {
		moduleSize = 4
	}
	border := opts.Border
	if border <= 0 {
		border = 4
	}
	fg := opts.Foreground
	if fg == "" {
		fg = "#000000"
	}
	bg := opts.Background
	if bg == "" {
		bg = "#ffffff"
	}

	matrix, err := Matrix(text, level)
	if err != nil {
		return "", err
	}

	size := (len(matrix) + 2*border) * moduleSize
	var b strings.Builder
	fmt.Fprintf(&b, `<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d" shape-rendering="crispEdges">`, size, size, size, size)
	fmt.Fprintf(&b, `<rect width="%d" height="%d" fill="%s"/>`, size, size, bg)
	b.WriteString(`<path fill="` + fg + `" d="`)
	for y, row := range matrix {
		for x, dark := range row {
			if dark {
				fmt.Fprintf(&b, "M%d %dh%dv%dh-%dz", (x+border)*moduleSize, (y+border)*moduleSize, moduleSize, moduleSize, moduleSize)
			}
		}
	}
	b.WriteString(`"/></svg>`)
	return b.String(), nil
}

// Text renders the matrix with two characters per module for roughly
// square terminal output.
func Text(text string, level Level) (string, error) {
	matrix, err := Matrix(text, level)
	if err != nil {
		return "", err
	}
	var b strings.Builder
	for _, row := range matrix {
		for _, dark := range row {
			if dark {
				b.WriteString("██")
			} else {
				b.WriteString("  ")
			}
		}
		b.WriteByte('\n')
	}
	return b.String(), nil
}
