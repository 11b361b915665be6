// Package report renders audit reports as JSON, Markdown or YAML.
package report

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/idilettant/seoaudit/audit"
)

// Format names an output encoding.
type Format string

const (
	FormatJSON     Format = "json"
	FormatMarkdown Format = "markdown"
	FormatYAML     Format = "yaml"
)

// ErrUnknownFormat is returned by ParseFormat.
var ErrUnknownFormat = errors.New("unknown report format")

// ParseFormat accepts json, markdown (or md) and yaml (or yml).
func ParseFormat(raw string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "", "json":
		return FormatJSON, nil
	case "markdown", "md":
		return FormatMarkdown, nil
	case "yaml", "yml":
		return FormatYAML, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownFormat, raw)
	}
}

// Write renders r to w. indent only affects JSON.
func Write(w io.Writer, r audit.Report, format Format, indent bool) error {
	var (
		data []byte
		err  error
	)

	switch format {
	case FormatJSON:
		data, err = JSON(r, indent)
	case FormatMarkdown:
		data, err = Markdown(r)
	case FormatYAML:
		data, err = YAML(r)
	default:
		return fmt.Errorf("%w: %q", ErrUnknownFormat, format)
	}

	if err != nil {
		return err
	}

	_, err = w.Write(data)

	return err
}

func ensureNewline(data []byte) []byte {
	if len(data) == 0 || data[len(data)-1] != '\n' {
		return append(data, '\n')
	}

	return data
}
