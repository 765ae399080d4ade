package diag

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fatih/color"
	"golang.org/x/term"
)

// ColorMode selects when severity labels are colorized.
type ColorMode string

const (
	ColorAuto ColorMode = "auto"
	ColorOn   ColorMode = "on"
	ColorOff  ColorMode = "off"
)

// ParseColorMode reads an auto|on|off value.
func ParseColorMode(value string) (ColorMode, error) {
	switch strings.TrimSpace(strings.ToLower(value)) {
	case "", "auto":
		return ColorAuto, nil
	case "on", "always":
		return ColorOn, nil
	case "off", "never":
		return ColorOff, nil
	default:
		return "", fmt.Errorf("invalid color value %q (expected auto|on|off)", value)
	}
}

// enabled resolves the mode against the sink.
func (m ColorMode) enabled(out io.Writer) bool {
	switch m {
	case ColorOn:
		return true
	case ColorOff:
		return false
	}
	if _, ok := os.LookupEnv("NO_COLOR"); ok {
		return false
	}
	f, ok := out.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

func severityColor(sev Severity) *color.Color {
	switch sev {
	case SevWarning:
		return color.New(color.FgYellow, color.Bold)
	case SevError:
		return color.New(color.FgRed, color.Bold)
	default:
		return color.New(color.FgHiRed, color.Bold, color.Underline)
	}
}
