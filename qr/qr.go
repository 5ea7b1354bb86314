// Package qr renders QR symbols as module matrices or standalone SVG
// documents. It exchanges no data with the TOON encoder; the two sit
// side by side in this module.
package qr

import (
	"fmt"

	qrcode "github.com/skip2/go-qrcode"
)

// Level selects the error correction level of the symbol.
type Level int

const (
	LevelLow      Level = iota // L, ~7% recovery
	LevelMedium                // M, ~15% recovery
	LevelQuartile              // Q, ~25% recovery
	LevelHigh                  // H, ~30% recovery
)

func (l Level) recovery() (qrcode.RecoveryLevel, error) {
	switch l {
	case LevelLow:
		return qrcode.Low, nil
	case LevelMedium:
		return qrcode.Medium, nil
	case LevelQuartile:
		return qrcode.High, nil
	case LevelHigh:
		return qrcode.Highest, nil
	}
	return 0, fmt.Errorf("qr: unknown error correction level %d", l)
}

// ParseLevel maps the conventional single-letter names to a Level.
func ParseLevel(s string) (Level, error) {
	switch s {
	case "L", "l":
		return LevelLow, nil
	case "M", "m":
		return LevelMedium, nil
	case "Q", "q":
		return LevelQuartile, nil
	case "H", "h":
		return LevelHigh, nil
	}
	return 0, fmt.Errorf("qr: unknown error correction level %q", s)
}

// Matrix returns the module grid for text, true for dark modules. The
// grid is square and excludes the quiet zone; renderers add their own
// border.
func Matrix(text string, level Level) ([][]bool, error) {
	rl, err := level.recovery()
	if err != nil {
		return nil, err
	}
	code, err := qrcode.New(text, rl)
	if err != nil {
		return nil, fmt.Errorf("qr: building symbol: %w", err)
	}
	code.DisableBorder = true
	return code.Bitmap(), nil
}
