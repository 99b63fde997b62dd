// Package stache is a Mustache template engine.
//
// Templates use the standard Mustache tag syntax with {{ and }} delimiters:
//
//	Hello, {{name}}!
//
// # Basic Usage
//
// Create an engine and render a template string:
//
//	engine := stache.MustNew()
//	result, err := engine.Render(ctx, "Hello, {{name}}!", map[string]any{
//	    "name": "Alice",
//	})
//	// result: "Hello, Alice!"
//
// # Tags
//
//	{{name}}            escaped interpolation
//	{{{name}}} {{&name}} unescaped interpolation
//	{{#list}}..{{/list}} section: repeated for lists, shown for truthy values
//	{{^list}}..{{/list}} inverted section: shown for falsy or empty values
//	{{>partial}}        partial include
//	{{! comment }}      comment
//	{{=<% %>=}}         change delimiters
//
// Names may be dotted paths (person.name); "." refers to the current value.
//
// # Data
//
// Data can be maps, structs, pointers to structs, slices and arrays. Struct
// fields and zero-argument methods are looked up by name. Functions act as
// lambdas:
//
//	data := map[string]any{
//	    "bold": func(text string) string { return "<b>" + text + "</b>" },
//	    "now":  func() string { return time.Now().Format(time.RFC3339) },
//	}
//
// Section lambdas receive the raw, unrendered section body and their output
// is rendered as a template with the delimiters in effect at the section.
//
// Lookup, iteration and truthiness are extensible with WithValueGetter,
// WithEnumerationConverter and WithTruthyCheck.
//
// # Loaders
//
// Render resolves its first argument through a TemplateLoader. The default
// StringLoader treats it as template text. MapLoader, FileLoader,
// PostgresLoader, CachedLoader and CompositeLoader serve named templates:
//
//	files := stache.MustNewFileLoader(stache.FileLoaderConfig{Root: "./templates"})
//	engine := stache.MustNew(stache.WithTemplateLoader(files))
//	result, err := engine.Render(ctx, "emails/welcome", user)
//
// # Errors
//
// Errors are *cuserr.CustomError values with codes STACHE_PARSE,
// STACHE_RENDER, STACHE_LOADER and STACHE_REGISTRY. The typed cause is
// available through errors.As:
//
//	var parseErr *stache.ParseError
//	if errors.As(err, &parseErr) {
//	    fmt.Println(parseErr.Kind, parseErr.Offset)
//	}
package stache

// Version is the library version
const Version = "1.0.0"
