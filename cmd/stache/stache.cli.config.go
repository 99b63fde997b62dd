package main

import (
	"io"
	"os"

	"github.com/itsatony/go-stache"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/yaml.v3"
)

// fileConfig is the YAML config file accepted by --config
type fileConfig struct {
	Delimiters            string `yaml:"delimiters"`
	IgnoreCase            bool   `yaml:"ignore_case"`
	SkipRecursiveLookup   bool   `yaml:"skip_recursive_lookup"`
	SkipHTMLEncoding      bool   `yaml:"skip_html_encoding"`
	Strict                bool   `yaml:"strict"`
	IgnoreMissingPartials bool   `yaml:"ignore_missing_partials"`
	MaxDepth              int    `yaml:"max_depth"`
	Partials              string `yaml:"partials"`
}

// loadFileConfig reads path, or returns the zero config when path is empty
func loadFileConfig(path string) (*fileConfig, error) {
	cfg := &fileConfig{}
	if path == "" {
		return cfg, nil
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	if err := yaml.Unmarshal(raw, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// options translates the config into engine options
func (c *fileConfig) options() ([]stache.Option, error) {
	var opts []stache.Option
	if c.Delimiters != "" {
		delims, err := stache.ParseDelimiterSet(c.Delimiters)
		if err != nil {
			return nil, err
		}
		opts = append(opts, stache.WithDelimiters(delims.Open, delims.Close))
	}
	if c.IgnoreCase {
		opts = append(opts, stache.WithIgnoreCaseOnLookup(true))
	}
	if c.SkipRecursiveLookup {
		opts = append(opts, stache.WithSkipRecursiveLookup(true))
	}
	if c.SkipHTMLEncoding {
		opts = append(opts, stache.WithSkipHTMLEncoding(true))
	}
	if c.Strict {
		opts = append(opts, stache.WithDataMissIsError(true))
	}
	if c.IgnoreMissingPartials {
		opts = append(opts, stache.WithIgnoreMissingPartials(true))
	}
	if c.MaxDepth > 0 {
		opts = append(opts, stache.WithMaxRecursionDepth(c.MaxDepth))
	}
	if c.Partials != "" {
		loader, err := stache.NewFileLoader(stache.FileLoaderConfig{Root: c.Partials})
		if err != nil {
			return nil, err
		}
		opts = append(opts, stache.WithPartialLoader(loader))
	}
	return opts, nil
}

// newLogger returns a console logger on w when verbose, otherwise a no-op
func newLogger(verbose bool, w io.Writer) *zap.Logger {
	if !verbose {
		return zap.NewNop()
	}
	encoder := zapcore.NewConsoleEncoder(zap.NewDevelopmentEncoderConfig())
	return zap.New(zapcore.NewCore(encoder, zapcore.AddSync(w), zap.DebugLevel))
}
