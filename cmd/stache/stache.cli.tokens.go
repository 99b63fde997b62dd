package main

import (
	"errors"
	"flag"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"
)

// tokensConfig holds parsed tokens command configuration
type tokensConfig struct {
	templatePath string
	format       string
	configPath   string
}

func runTokens(args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	cfg, err := parseTokensFlags(args)
	if err != nil {
		fmt.Fprintf(stderr, FmtErrorWithCause, ErrMsgMissingTemplate, err)
		return ExitCodeUsageError
	}

	templateSource, err := readInput(cfg.templatePath, stdin)
	if err != nil {
		fmt.Fprintf(stderr, FmtErrorWithCause, ErrMsgReadFileFailed, err)
		return ExitCodeInputError
	}

	engine, code := newParseEngine(cfg.configPath, stderr)
	if engine == nil {
		return code
	}

	tmpl, err := engine.Parse(string(templateSource))
	if err != nil {
		fmt.Fprintf(stderr, FmtErrorWithCause, ErrMsgParseTemplateFailed, err)
		return ExitCodeValidationError
	}

	var out []byte
	switch cfg.format {
	case OutputFormatJSON:
		out, err = marshalJSON(tmpl.Tokens())
	case OutputFormatYAML:
		out, err = yaml.Marshal(tmpl.Tokens())
	default:
		out = []byte(tmpl.Dump())
	}
	if err != nil {
		fmt.Fprintf(stderr, FmtErrorWithCause, ErrMsgMarshalFailed, err)
		return ExitCodeError
	}

	_, _ = stdout.Write(out)
	return ExitCodeSuccess
}

func parseTokensFlags(args []string) (*tokensConfig, error) {
	fs := flag.NewFlagSet(CmdNameTokens, flag.ContinueOnError)
	fs.SetOutput(io.Discard) // Suppress default error messages

	cfg := &tokensConfig{}

	fs.StringVar(&cfg.templatePath, FlagTemplate, "", "")
	fs.StringVar(&cfg.templatePath, FlagTemplateShort, "", "")
	fs.StringVar(&cfg.format, FlagFormat, FlagDefaultFormat, "")
	fs.StringVar(&cfg.format, FlagFormatShort, FlagDefaultFormat, "")
	fs.StringVar(&cfg.configPath, FlagConfig, "", "")
	fs.StringVar(&cfg.configPath, FlagConfigShort, "", "")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	if cfg.templatePath == "" {
		return nil, errors.New(ErrMsgMissingTemplate)
	}

	switch cfg.format {
	case OutputFormatText, OutputFormatJSON, OutputFormatYAML:
	default:
		return nil, errors.New(ErrMsgInvalidFormat)
	}

	return cfg, nil
}
