package internal

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

// mustacheSuite mirrors the layout of the Mustache conformance YAML files
type mustacheSuite struct {
	Overview string         `yaml:"overview"`
	Tests    []mustacheCase `yaml:"tests"`
}

type mustacheCase struct {
	Name     string            `yaml:"name"`
	Desc     string            `yaml:"desc"`
	Data     any               `yaml:"data"`
	Template string            `yaml:"template"`
	Partials map[string]string `yaml:"partials"`
	Expected string            `yaml:"expected"`
}

func TestMustacheConformance(t *testing.T) {
	files, err := filepath.Glob(filepath.Join("testdata", "spec", "*.yml"))
	require.NoError(t, err)
	require.NotEmpty(t, files)

	for _, file := range files {
		raw, err := os.ReadFile(file)
		require.NoError(t, err)

		var suite mustacheSuite
		require.NoError(t, yaml.Unmarshal(raw, &suite), file)

		t.Run(strings.TrimSuffix(filepath.Base(file), ".yml"), func(t *testing.T) {
			for _, tc := range suite.Tests {
				t.Run(tc.Name, func(t *testing.T) {
					tokenizer := newTestTokenizer()
					config := DefaultRendererConfig()
					config.IgnoreMissingPartials = true
					renderer := NewRenderer(tokenizer, nil, mapPartials(tc.Partials), config, nil)

					tree, err := tokenizer.Parse(tc.Template, DefaultDelimiters())
					require.NoError(t, err)

					frame := NewFrame(tc.Data, nil, LookupOptions{}, nil)
					got, err := renderer.Render(context.Background(), tree, frame, nil)
					require.NoError(t, err)
					assert.Equal(t, tc.Expected, got, tc.Desc)
				})
			}
		})
	}
}
