package main

import (
	"io"
	"os"
	"path/filepath"
	"strings"

	json "github.com/goccy/go-json"
	"gopkg.in/yaml.v3"
)

// readInput reads content from a file or stdin
func readInput(path string, stdin io.Reader) ([]byte, error) {
	if path == InputSourceStdin {
		return io.ReadAll(stdin)
	}

	return os.ReadFile(path)
}

// writeOutput writes content to a file or stdout
func writeOutput(path string, data []byte, stdout io.Writer) error {
	if path == FlagDefaultOutput {
		_, err := stdout.Write(data)
		return err
	}

	return os.WriteFile(path, data, FilePermissions)
}

// loadData decodes the render context from a data file or an inline JSON
// string. The file wins when both are given.
func loadData(jsonStr, filePath string) (any, error) {
	if filePath != "" {
		raw, err := os.ReadFile(filePath)
		if err != nil {
			return nil, err
		}
		switch strings.ToLower(filepath.Ext(filePath)) {
		case DataExtYAML, DataExtYML:
			return decodeYAML(raw)
		default:
			return decodeJSON(raw)
		}
	}
	if jsonStr != "" {
		return decodeJSON([]byte(jsonStr))
	}
	return map[string]any{}, nil
}

func decodeJSON(raw []byte) (any, error) {
	var result any
	if err := json.Unmarshal(raw, &result); err != nil {
		return nil, err
	}
	return result, nil
}

func decodeYAML(raw []byte) (any, error) {
	var result any
	if err := yaml.Unmarshal(raw, &result); err != nil {
		return nil, err
	}
	return result, nil
}

// marshalJSON encodes v with indentation and a trailing newline
func marshalJSON(v any) ([]byte, error) {
	out, err := json.MarshalIndent(v, "", JSONIndent)
	if err != nil {
		return nil, err
	}
	return append(out, '\n'), nil
}
