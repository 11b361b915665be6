package report

import (
	"encoding/json"
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/idilettant/seoaudit/audit"
)

// JSON encodes r with the report field names. The output always ends with a newline.
func JSON(r audit.Report, indent bool) ([]byte, error) {
	var (
		data []byte
		err  error
	)

	if indent {
		data, err = json.MarshalIndent(r, "", "  ")
	} else {
		data, err = json.Marshal(r)
	}

	if err != nil {
		return nil, fmt.Errorf("encode json report: %w", err)
	}

	return ensureNewline(data), nil
}

// YAML encodes r with the same keys as JSON by round-tripping through a generic value.
func YAML(r audit.Report) ([]byte, error) {
	data, err := json.Marshal(r)
	if err != nil {
		return nil, fmt.Errorf("encode yaml report: %w", err)
	}

	var generic any
	if err := json.Unmarshal(data, &generic); err != nil {
		return nil, fmt.Errorf("encode yaml report: %w", err)
	}

	out, err := yaml.Marshal(generic)
	if err != nil {
		return nil, fmt.Errorf("encode yaml report: %w", err)
	}

	return ensureNewline(out), nil
}
