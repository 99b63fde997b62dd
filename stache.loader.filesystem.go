package stache

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/itsatony/go-cuserr"
	"github.com/valyala/fasttemplate"
	"go.uber.org/zap"
)

// FileLoaderConfig configures a FileLoader.
type FileLoaderConfig struct {
	// Root is the directory templates are read from.
	Root string

	// Pattern maps a template name to a path below Root.
	// {name} and {ext} are replaced by the template name and Extension.
	// Default: "{name}.{ext}"
	Pattern string

	// Extension fills the {ext} placeholder.
	// Default: "mustache"
	Extension string

	// Logger receives debug logs. Default: no logging.
	Logger *zap.Logger
}

// FileLoader reads templates from files below a root directory.
//
// Example:
//
//	loader, err := stache.NewFileLoader(stache.FileLoaderConfig{Root: "./templates"})
//	// "emails/welcome" -> ./templates/emails/welcome.mustache
type FileLoader struct {
	root      string
	extension string
	pattern   *fasttemplate.Template
	logger    *zap.Logger
}

// FileLoaderDriver opens FileLoaders with the connection string as root.
type FileLoaderDriver struct{}

func init() {
	RegisterLoaderDriver(LoaderNameFile, &FileLoaderDriver{})
}

// Open creates a FileLoader rooted at connectionString.
func (d *FileLoaderDriver) Open(connectionString string) (TemplateLoader, error) {
	return NewFileLoader(FileLoaderConfig{Root: connectionString})
}

// NewFileLoader creates a file loader. The root must be an existing directory.
func NewFileLoader(config FileLoaderConfig) (*FileLoader, error) {
	if config.Pattern == "" {
		config.Pattern = FileLoaderDefaultPattern
	}
	if config.Extension == "" {
		config.Extension = FileLoaderDefaultExtension
	}
	if config.Logger == nil {
		config.Logger = zap.NewNop()
	}

	info, err := os.Stat(config.Root)
	if err != nil {
		return nil, cuserr.WrapStdError(err, ErrCodeLoader, ErrMsgFileLoaderRootStat).
			WithMetadata(MetaKeyRoot, config.Root)
	}
	if !info.IsDir() {
		return nil, cuserr.NewValidationError(ErrCodeLoader, ErrMsgFileLoaderRootStat).
			WithMetadata(MetaKeyRoot, config.Root)
	}

	pattern, err := fasttemplate.NewTemplate(config.Pattern, FileLoaderTagStart, FileLoaderTagEnd)
	if err != nil {
		return nil, cuserr.WrapStdError(err, ErrCodeLoader, ErrMsgInvalidPathPattern).
			WithMetadata(MetaKeyPath, config.Pattern)
	}

	return &FileLoader{
		root:      config.Root,
		extension: config.Extension,
		pattern:   pattern,
		logger:    config.Logger,
	}, nil
}

// MustNewFileLoader creates a file loader or panics.
func MustNewFileLoader(config FileLoaderConfig) *FileLoader {
	loader, err := NewFileLoader(config)
	if err != nil {
		panic(err)
	}
	return loader
}

// Root returns the loader's root directory
func (l *FileLoader) Root() string {
	return l.root
}

// Path returns the file path name maps to. Names that would leave the root
// are rejected.
func (l *FileLoader) Path(name string) (string, error) {
	if name == "" {
		return "", cuserr.NewValidationError(ErrCodeLoader, ErrMsgEmptyTemplateName)
	}
	rel := l.pattern.ExecuteString(map[string]any{
		FileLoaderPlaceholderName: name,
		FileLoaderPlaceholderExt:  l.extension,
	})
	rel = filepath.FromSlash(rel)
	if !filepath.IsLocal(rel) {
		return "", cuserr.NewValidationError(ErrCodeLoader, ErrMsgPathEscapesRoot).
			WithMetadata(MetaKeyTemplate, name).
			WithMetadata(MetaKeyPath, rel)
	}
	return filepath.Join(l.root, rel), nil
}

// Load reads the template file for name. A missing file is reported as not found.
func (l *FileLoader) Load(ctx context.Context, name string) (string, bool, error) {
	if err := ctx.Err(); err != nil {
		return "", false, err
	}

	path, err := l.Path(name)
	if err != nil {
		return "", false, err
	}

	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		l.logger.Debug(LogMsgTemplateLoaded,
			zap.String(LogFieldLoader, LoaderNameFile),
			zap.String(LogFieldPath, path),
			zap.Bool(LogFieldFound, false))
		return "", false, nil
	}
	if err != nil {
		return "", false, cuserr.WrapStdError(err, ErrCodeLoader, ErrMsgReadTemplate).
			WithMetadata(MetaKeyTemplate, name).
			WithMetadata(MetaKeyPath, path)
	}

	l.logger.Debug(LogMsgTemplateLoaded,
		zap.String(LogFieldLoader, LoaderNameFile),
		zap.String(LogFieldPath, path),
		zap.Int(LogFieldLength, len(data)))
	return string(data), true, nil
}
