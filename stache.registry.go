package stache

import (
	"github.com/itsatony/go-stache/internal"
	"go.uber.org/zap"
)

// ValueGetter reads a named member out of container values it applies to.
// Getters added through options run before the built-in ones, and among
// themselves the last added runs first.
type ValueGetter = internal.ValueGetter

// EnumerationConverter turns a value into the sequence a section iterates
type EnumerationConverter = internal.EnumerationConverter

// TruthyCheck decides section truthiness for the values it recognizes
type TruthyCheck = internal.TruthyCheck

// buildRegistry creates a registry with the defaults plus the configured entries
func buildRegistry(config *engineConfig, logger *zap.Logger) (*internal.Registry, error) {
	registry := internal.NewRegistry(logger)
	for _, g := range config.valueGetters {
		if err := registry.AddValueGetter(g); err != nil {
			return nil, NewRegistryError(err)
		}
	}
	for _, c := range config.enumerationConverters {
		if err := registry.AddEnumerationConverter(c); err != nil {
			return nil, NewRegistryError(err)
		}
	}
	for _, t := range config.truthyChecks {
		if err := registry.AddTruthyCheck(t); err != nil {
			return nil, NewRegistryError(err)
		}
	}
	return registry, nil
}
