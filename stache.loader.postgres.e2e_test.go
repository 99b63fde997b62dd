//go:build integration

package stache

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

// setupPostgresContainer starts an ephemeral PostgreSQL container.
func setupPostgresContainer(t *testing.T) (*PostgresLoader, string, func()) {
	t.Helper()
	ctx := context.Background()

	container, err := postgres.Run(ctx, "postgres:15",
		postgres.WithDatabase("stache_test"),
		postgres.WithUsername("test"),
		postgres.WithPassword("test"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second),
		),
	)
	require.NoError(t, err, "failed to start postgres container")

	connStr, err := container.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err, "failed to get connection string")

	loader, err := NewPostgresLoader(PostgresConfig{
		ConnectionString: connStr,
		AutoMigrate:      true,
	})
	require.NoError(t, err, "failed to create postgres loader")

	cleanup := func() {
		_ = loader.Close()
		_ = container.Terminate(ctx)
	}
	return loader, connStr, cleanup
}

func TestPostgres_E2E_CRUD(t *testing.T) {
	loader, _, cleanup := setupPostgresContainer(t)
	defer cleanup()
	ctx := context.Background()

	t.Run("save", func(t *testing.T) {
		version, err := loader.Save(ctx, "greet", "Hello {{name}}")
		require.NoError(t, err)
		assert.Equal(t, 1, version)
	})

	t.Run("load", func(t *testing.T) {
		source, found, err := loader.Load(ctx, "greet")
		require.NoError(t, err)
		assert.True(t, found)
		assert.Equal(t, "Hello {{name}}", source)
	})

	t.Run("save bumps version", func(t *testing.T) {
		version, err := loader.Save(ctx, "greet", "Hi {{name}}")
		require.NoError(t, err)
		assert.Equal(t, 2, version)

		tmpl, err := loader.Get(ctx, "greet")
		require.NoError(t, err)
		require.NotNil(t, tmpl)
		assert.Equal(t, "Hi {{name}}", tmpl.Source)
		assert.Equal(t, 2, tmpl.Version)
		assert.False(t, tmpl.UpdatedAt.IsZero())
	})

	t.Run("missing", func(t *testing.T) {
		_, found, err := loader.Load(ctx, "nope")
		require.NoError(t, err)
		assert.False(t, found)
	})

	t.Run("names", func(t *testing.T) {
		_, err := loader.Save(ctx, "alpha", "a")
		require.NoError(t, err)
		names, err := loader.Names(ctx)
		require.NoError(t, err)
		assert.Equal(t, []string{"alpha", "greet"}, names)
	})

	t.Run("delete", func(t *testing.T) {
		deleted, err := loader.Delete(ctx, "alpha")
		require.NoError(t, err)
		assert.True(t, deleted)

		deleted, err = loader.Delete(ctx, "alpha")
		require.NoError(t, err)
		assert.False(t, deleted)
	})

	t.Run("schema version", func(t *testing.T) {
		version, err := loader.CurrentSchemaVersion(ctx)
		require.NoError(t, err)
		assert.Equal(t, 1, version)
		require.NoError(t, loader.RunMigrations(ctx), "migrations are idempotent")
	})
}

func TestPostgres_E2E_Engine(t *testing.T) {
	loader, _, cleanup := setupPostgresContainer(t)
	defer cleanup()
	ctx := context.Background()

	_, err := loader.Save(ctx, "page", "<ul>\n{{#items}}\n  {{>item}}\n{{/items}}\n</ul>\n")
	require.NoError(t, err)
	_, err = loader.Save(ctx, "item", "<li>{{.}}</li>\n")
	require.NoError(t, err)

	cached := NewCachedLoader(loader, DefaultCacheConfig())
	engine := MustNew(WithTemplateLoader(cached))

	result, err := engine.Render(ctx, "page", map[string]any{"items": []string{"a", "b"}})
	require.NoError(t, err)
	assert.Equal(t, "<ul>\n  <li>a</li>\n  <li>b</li>\n</ul>\n", result)

	_, err = loader.Save(ctx, "item", "<li>[{{.}}]</li>\n")
	require.NoError(t, err)
	cached.Invalidate("item")

	result, err = engine.Render(ctx, "page", map[string]any{"items": []string{"a"}})
	require.NoError(t, err)
	assert.Equal(t, "<ul>\n  <li>[a]</li>\n</ul>\n", result)
}

func TestPostgres_E2E_ConcurrentSaves(t *testing.T) {
	loader, _, cleanup := setupPostgresContainer(t)
	defer cleanup()
	ctx := context.Background()

	const writers = 10
	var wg sync.WaitGroup
	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := loader.Save(ctx, "shared", "x")
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	tmpl, err := loader.Get(ctx, "shared")
	require.NoError(t, err)
	assert.Equal(t, writers, tmpl.Version)
}

func TestPostgres_E2E_Driver(t *testing.T) {
	_, connStr, cleanup := setupPostgresContainer(t)
	defer cleanup()

	loader, err := OpenLoader(LoaderNamePostgres, connStr)
	require.NoError(t, err)
	defer func() { _ = loader.(*PostgresLoader).Close() }()

	_, found, err := loader.Load(context.Background(), "anything")
	require.NoError(t, err)
	assert.False(t, found)
}
