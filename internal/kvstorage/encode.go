package kvstorage

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"
)

// Format names a serialization format for dumping the store.
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
	FormatTOML Format = "toml"
)

// Formats lists the supported dump formats.
var Formats = []Format{FormatJSON, FormatYAML, FormatTOML}

// ParseFormat converts a user-supplied name into a Format.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(s) {
	case "", "json":
		return FormatJSON, nil
	case "yaml", "yml":
		return FormatYAML, nil
	case "toml":
		return FormatTOML, nil
	}
	return "", fmt.Errorf("unknown format %q (allowed: json, yaml, toml): %w", s, ErrInvalidArgument)
}

// EncodeJSON returns the pretty-printed JSON form used for the store file
// and backups.
func EncodeJSON(e *Entries) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(e); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Encode writes e to w in the given format.
func Encode(w io.Writer, e *Entries, f Format) error {
	switch f {
	case FormatJSON:
		data, err := EncodeJSON(e)
		if err != nil {
			return fmt.Errorf("encoding json: %w", err)
		}
		_, err = w.Write(data)
		return err
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(e); err != nil {
			return fmt.Errorf("encoding yaml: %w", err)
		}
		return enc.Close()
	case FormatTOML:
		// The encoder sorts map keys, so keys are written one at a time.
		enc := toml.NewEncoder(w)
		for _, k := range e.Keys() {
			vals, _ := e.Get(k)
			if err := enc.Encode(map[string][]string{k: vals}); err != nil {
				return fmt.Errorf("encoding toml: %w", err)
			}
		}
		return nil
	}
	return fmt.Errorf("unknown format %q: %w", f, ErrInvalidArgument)
}
