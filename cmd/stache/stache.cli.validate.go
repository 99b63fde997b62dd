package main

import (
	"errors"
	"flag"
	"fmt"
	"io"

	"github.com/itsatony/go-stache"
)

// validateConfig holds parsed validate command configuration
type validateConfig struct {
	templatePath string
	format       string
	configPath   string
}

// validationOutput represents JSON output for validation
type validationOutput struct {
	Valid bool                   `json:"valid"`
	Error *stache.ParseErrorInfo `json:"error,omitempty"`
}

func runValidate(args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	cfg, err := parseValidateFlags(args)
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

	source := string(templateSource)
	output := validationOutput{Valid: true}
	if err := engine.Validate(source); err != nil {
		info, ok := stache.AsParseError(err, source)
		if !ok {
			fmt.Fprintf(stderr, FmtErrorWithCause, ErrMsgParseTemplateFailed, err)
			return ExitCodeError
		}
		output = validationOutput{Error: &info}
	}

	if cfg.format == OutputFormatJSON {
		out, err := marshalJSON(output)
		if err != nil {
			fmt.Fprintf(stderr, FmtErrorWithCause, ErrMsgMarshalFailed, err)
			return ExitCodeError
		}
		_, _ = stdout.Write(out)
	} else if output.Valid {
		fmt.Fprintln(stdout, ValidationTextSuccess)
	} else {
		fmt.Fprintf(stdout, ValidationTextFailure+FmtNewline,
			output.Error.Kind, output.Error.Message, output.Error.Line, output.Error.Column)
	}

	if !output.Valid {
		return ExitCodeValidationError
	}
	return ExitCodeSuccess
}

func parseValidateFlags(args []string) (*validateConfig, error) {
	fs := flag.NewFlagSet(CmdNameValidate, flag.ContinueOnError)
	fs.SetOutput(io.Discard) // Suppress default error messages

	cfg := &validateConfig{}

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

	if cfg.format != OutputFormatText && cfg.format != OutputFormatJSON {
		return nil, errors.New(ErrMsgInvalidFormat)
	}

	return cfg, nil
}

// newParseEngine builds an engine from the config file for the parse-only
// commands. On failure it reports to stderr and returns a nil engine.
func newParseEngine(configPath string, stderr io.Writer) (*stache.Engine, int) {
	fileCfg, err := loadFileConfig(configPath)
	if err != nil {
		fmt.Fprintf(stderr, FmtErrorWithCause, ErrMsgInvalidConfig, err)
		return nil, ExitCodeUsageError
	}
	opts, err := fileCfg.options()
	if err != nil {
		fmt.Fprintf(stderr, FmtErrorWithCause, ErrMsgEngineFailed, err)
		return nil, ExitCodeUsageError
	}
	engine, err := stache.New(append(opts, stache.WithTemplateCache(false))...)
	if err != nil {
		fmt.Fprintf(stderr, FmtErrorWithCause, ErrMsgEngineFailed, err)
		return nil, ExitCodeUsageError
	}
	return engine, ExitCodeSuccess
}
