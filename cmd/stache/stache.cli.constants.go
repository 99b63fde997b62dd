package main

// Command names
const (
	CmdNameRender   = "render"
	CmdNameValidate = "validate"
	CmdNameTokens   = "tokens"
	CmdNameVersion  = "version"
	CmdNameHelp     = "help"
)

// Flag names - long form
const (
	FlagTemplate   = "template"
	FlagData       = "data"
	FlagDataFile   = "data-file"
	FlagPartials   = "partials"
	FlagOutput     = "output"
	FlagFormat     = "format"
	FlagStrictMode = "strict"
	FlagConfig     = "config"
	FlagVerbose    = "verbose"
)

// Flag names - short form
const (
	FlagTemplateShort = "t"
	FlagDataShort     = "d"
	FlagDataFileShort = "f"
	FlagPartialsShort = "p"
	FlagOutputShort   = "o"
	FlagFormatShort   = "F"
	FlagConfigShort   = "c"
	FlagVerboseShort  = "v"
)

// Flag default values
const (
	FlagDefaultOutput = "-" // stdout
	FlagDefaultFormat = "text"
)

// Output formats
const (
	OutputFormatText = "text"
	OutputFormatJSON = "json"
	OutputFormatYAML = "yaml"
)

// Data file extensions decoded as YAML; everything else is JSON
const (
	DataExtYAML = ".yaml"
	DataExtYML  = ".yml"
)

// Exit codes
const (
	ExitCodeSuccess         = 0
	ExitCodeError           = 1
	ExitCodeUsageError      = 2
	ExitCodeValidationError = 3
	ExitCodeInputError      = 4
)

// Input source indicators
const (
	InputSourceStdin = "-"
)

// Error messages - ALL must be constants
const (
	ErrMsgUnknownCommand      = "unknown command"
	ErrMsgMissingTemplate     = "template source required"
	ErrMsgInvalidData         = "invalid data"
	ErrMsgInvalidConfig       = "invalid config file"
	ErrMsgReadFileFailed      = "failed to read file"
	ErrMsgWriteOutputFailed   = "failed to write output"
	ErrMsgParseTemplateFailed = "template parsing failed"
	ErrMsgRenderFailed        = "template rendering failed"
	ErrMsgEngineFailed        = "failed to create engine"
	ErrMsgPartialsDirFailed   = "failed to open partials directory"
	ErrMsgInvalidFormat       = "invalid output format"
	ErrMsgMarshalFailed       = "failed to encode output"
)

// Help text templates
const (
	HelpMainUsage = `go-stache - Mustache template CLI

Usage:
    stache <command> [options]

Commands:
    render      Render a template with data
    validate    Check a template for parse errors
    tokens      Show the parsed token tree of a template
    version     Show version information
    help        Show help for a command

Use "stache help <command>" for more information about a command.`

	HelpRenderUsage = `Render a template with data

Usage:
    stache render [options]

Options:
    -t, --template <file>   Template file (use "-" for stdin)
    -d, --data <json>       JSON data string
    -f, --data-file <file>  JSON or YAML (.yaml, .yml) data file
    -p, --partials <dir>    Directory holding <name>.mustache partials
    -o, --output <file>     Output file (default: stdout)
    -c, --config <file>     YAML config file
    --strict                Fail on names missing from the data
    -v, --verbose           Write debug logs to stderr

Examples:
    stache render -t page.mustache -d '{"name": "Alice"}'
    stache render -t page.mustache -f data.yaml -p ./partials
    cat page.mustache | stache render -t - -d '{"name": "Bob"}'
    stache render -t page.mustache -f data.json -o page.html`

	HelpValidateUsage = `Check a template for parse errors

Usage:
    stache validate [options]

Options:
    -t, --template <file>   Template file (use "-" for stdin)
    -F, --format <format>   Output format: text, json (default: text)
    -c, --config <file>     YAML config file (initial delimiters)

Examples:
    stache validate -t page.mustache
    cat page.mustache | stache validate -t - -F json`

	HelpTokensUsage = `Show the parsed token tree of a template

Usage:
    stache tokens [options]

Options:
    -t, --template <file>   Template file (use "-" for stdin)
    -F, --format <format>   Output format: text, json, yaml (default: text)
    -c, --config <file>     YAML config file (initial delimiters)

Examples:
    stache tokens -t page.mustache
    stache tokens -t page.mustache -F json`

	HelpVersionUsage = `Show version information

Usage:
    stache version [options]

Options:
    -F, --format <format>   Output format: text, json (default: text)`

	HelpHelpUsage = `Show help for a command

Usage:
    stache help [command]

Commands:
    render      Show help for render command
    validate    Show help for validate command
    tokens      Show help for tokens command
    version     Show help for version command`
)

// Version output format templates
const (
	VersionTextTemplate = "go-stache version %s\nCommit: %s\nBranch: %s\nBuilt: %s\nGo: %s"
	VersionUnknown      = "unknown"
)

// Validation output format templates
const (
	ValidationTextSuccess = "Template is valid"
	ValidationTextFailure = "[%s] %s at line %d, column %d"
)

// CLI metadata
const (
	CLIName        = "stache"
	CLIDescription = "Mustache template CLI"
)

// File permission constant
const (
	FilePermissions = 0644
)

// Format string constants
const (
	FmtErrorWithDetail = "%s: %s\n"
	FmtErrorWithCause  = "%s: %v\n"
	FmtNewline         = "\n"
)

// JSON indentation
const (
	JSONIndent = "  "
)
