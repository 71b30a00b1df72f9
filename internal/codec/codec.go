// Package codec abstracts over the two interchangeable serialization formats
// used for desired-state input and state output: JSON and YAML.
package codec

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"
)

// Format selects a serialization syntax.
type Format string

const (
	// JSON is the widely interoperable structured-document format.
	JSON Format = "json"
	// YAML is the human-editable structured-record format.
	YAML Format = "yaml"
)

// ParseFormat converts a format name into a Format.
func ParseFormat(name string) (Format, error) {
	switch name {
	case "json":
		return JSON, nil
	case "yaml", "yml":
		return YAML, nil
	default:
		return "", fmt.Errorf("unsupported format %q (expected json or yaml)", name)
	}
}

// Encode writes v to w in the selected format.
func Encode(format Format, w io.Writer, v any) error {
	switch format {
	case JSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if err := enc.Encode(v); err != nil {
			return fmt.Errorf("json encode: %w", err)
		}
	case YAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return fmt.Errorf("yaml encode: %w", err)
		}
		if err := enc.Close(); err != nil {
			return fmt.Errorf("yaml encode: %w", err)
		}
	default:
		return fmt.Errorf("unsupported format %q", format)
	}
	return nil
}

// EncodeToString renders v in the selected format as a string. Used for
// error diagnostics that embed serialized configurations.
func EncodeToString(format Format, v any) (string, error) {
	var buf bytes.Buffer
	if err := Encode(format, &buf, v); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// Decode parses data in the selected format into v.
func Decode(format Format, data []byte, v any) error {
	switch format {
	case JSON:
		if err := json.Unmarshal(data, v); err != nil {
			return fmt.Errorf("json decode: %w", err)
		}
	case YAML:
		if err := yaml.Unmarshal(data, v); err != nil {
			return fmt.Errorf("yaml decode: %w", err)
		}
	default:
		return fmt.Errorf("unsupported format %q", format)
	}
	return nil
}
