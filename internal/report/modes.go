package report

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"
)

// OutputFormat selects how results are rendered.
type OutputFormat string

// Supported output formats.
const (
	OutputFormatTable OutputFormat = "table"
	OutputFormatYAML  OutputFormat = "yaml"
	OutputFormatJSON  OutputFormat = "json"
)

// ColorMode controls ANSI coloring of table output.
type ColorMode string

// Supported color modes.
const (
	ColorModeAuto   ColorMode = "auto"
	ColorModeAlways ColorMode = "always"
	ColorModeNever  ColorMode = "never"
)

const (
	unsupportedOutputFormatMessageConstant = "unsupported output format"
	unsupportedColorModeMessageConstant    = "unsupported color mode"
	unsupportedValueTemplateConstant       = "%w: %q"
	noColorEnvironmentVariableConstant     = "NO_COLOR"
)

// ErrUnsupportedOutputFormat indicates an output format outside table, yaml, and json.
var ErrUnsupportedOutputFormat = errors.New(unsupportedOutputFormatMessageConstant)

// ErrUnsupportedColorMode indicates a color mode outside auto, always, and never.
var ErrUnsupportedColorMode = errors.New(unsupportedColorModeMessageConstant)

var isTerminalDescriptor = term.IsTerminal

// ParseOutputFormat normalizes a user-supplied output format. Empty selects the table.
func ParseOutputFormat(value string) (OutputFormat, error) {
	normalized := OutputFormat(strings.ToLower(strings.TrimSpace(value)))
	switch normalized {
	case "":
		return OutputFormatTable, nil
	case OutputFormatTable, OutputFormatYAML, OutputFormatJSON:
		return normalized, nil
	default:
		return "", fmt.Errorf(unsupportedValueTemplateConstant, ErrUnsupportedOutputFormat, value)
	}
}

// ParseColorMode normalizes a user-supplied color mode. Empty selects auto.
func ParseColorMode(value string) (ColorMode, error) {
	normalized := ColorMode(strings.ToLower(strings.TrimSpace(value)))
	switch normalized {
	case "":
		return ColorModeAuto, nil
	case ColorModeAuto, ColorModeAlways, ColorModeNever:
		return normalized, nil
	default:
		return "", fmt.Errorf(unsupportedValueTemplateConstant, ErrUnsupportedColorMode, value)
	}
}

// ColorEnabled decides whether output to the writer should be colored.
// Auto colors only terminals and honors NO_COLOR.
func ColorEnabled(mode ColorMode, writer io.Writer) bool {
	switch mode {
	case ColorModeAlways:
		return true
	case ColorModeNever:
		return false
	}
	if len(strings.TrimSpace(os.Getenv(noColorEnvironmentVariableConstant))) > 0 {
		return false
	}
	file, isFile := writer.(*os.File)
	if !isFile {
		return false
	}
	return isTerminalDescriptor(int(file.Fd()))
}
