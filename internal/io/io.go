// Package io reads batch field values from files and writes composed payloads.
package io

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"go.yaml.in/yaml/v3"

	"github.com/idlab-discover/buckwheat-cli/internal/batch"
	"github.com/idlab-discover/buckwheat-cli/internal/form"
)

// ResolveFormat maps "", "auto", "json", "yaml" or "yml" to json or yaml.
// For "auto" the format is taken from the file extension, defaulting to JSON.
func ResolveFormat(path, format string) (string, error) {
	actual := strings.ToLower(strings.TrimSpace(format))
	switch actual {
	case "", "auto":
		switch strings.ToLower(filepath.Ext(path)) {
		case ".yaml", ".yml":
			return "yaml", nil
		default:
			return "json", nil
		}
	case "json":
		return "json", nil
	case "yaml", "yml":
		return "yaml", nil
	default:
		return "", fmt.Errorf("unsupported format: %q (expected json|yaml)", format)
	}
}

// ReadValues reads raw field values from a JSON or YAML batch file.
// Both formats go through the YAML decoder so numeric fields may be written
// either as numbers or as strings.
func ReadValues(path string, format string) (form.Values, error) {
	if _, err := ResolveFormat(path, format); err != nil {
		return form.Values{}, err
	}
	f, err := os.Open(path)
	if err != nil {
		return form.Values{}, err
	}
	defer f.Close()
	return DecodeValues(f)
}

// DecodeValues decodes one batch document. Unknown keys are rejected.
func DecodeValues(r io.Reader) (form.Values, error) {
	var v form.Values
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&v); err != nil {
		if errors.Is(err, io.EOF) {
			return form.Values{}, errors.New("batch file is empty")
		}
		return form.Values{}, fmt.Errorf("decode batch file: %w", err)
	}
	return v, nil
}

// EncodePayload writes p to w as indented JSON or YAML.
func EncodePayload(w io.Writer, p batch.Payload, format string) error {
	switch format {
	case "yaml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(p); err != nil {
			return err
		}
		return enc.Close()
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		enc.SetEscapeHTML(false)
		return enc.Encode(p)
	default:
		return fmt.Errorf("unsupported format: %q (expected json|yaml)", format)
	}
}

// WritePayload writes p to outputPath. The extension must match the format.
// The file is only created once the payload encodes successfully.
func WritePayload(p batch.Payload, outputPath string, format string) error {
	actual, err := ResolveFormat(outputPath, format)
	if err != nil {
		return err
	}

	ext := strings.ToLower(filepath.Ext(outputPath))
	switch actual {
	case "yaml":
		if ext != ".yaml" && ext != ".yml" {
			return fmt.Errorf("output path extension %q does not match format %q", ext, actual)
		}
	case "json":
		if ext != ".json" {
			return fmt.Errorf("output path extension %q does not match format %q", ext, actual)
		}
	}

	var buf bytes.Buffer
	if err := EncodePayload(&buf, p, actual); err != nil {
		return err
	}
	if dir := filepath.Dir(outputPath); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	return os.WriteFile(outputPath, buf.Bytes(), 0o644)
}
