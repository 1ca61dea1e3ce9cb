package config

import (
	"testing"

	"github.com/egarcia91/BondiolaFC/internal/docstore"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func env(vars map[string]string) func(string) (string, bool) {
	return func(key string) (string, bool) {
		v, ok := vars[key]
		return v, ok
	}
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := load(env(nil))
	require.NoError(t, err)
	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, docstore.BackendMemory, cfg.Store.Backend)
	assert.False(t, cfg.Slack.Enabled())
	assert.Empty(t, cfg.ProjectID)
}

func TestLoadBackends(t *testing.T) {
	t.Run("sqlite", func(t *testing.T) {
		cfg, err := load(env(map[string]string{
			"DOCSTORE":          "sqlite",
			"TURSO_PRIMARY_URL": "libsql://club.turso.io",
			"TURSO_AUTH_TOKEN":  "secret",
		}))
		require.NoError(t, err)
		assert.Equal(t, docstore.Options{
			Backend:    docstore.BackendSQLite,
			DBPath:     "bondiola.db",
			PrimaryURL: "libsql://club.turso.io",
			AuthToken:  "secret",
		}, cfg.Store)
	})

	t.Run("firestore", func(t *testing.T) {
		cfg, err := load(env(map[string]string{
			"DOCSTORE":            "firestore",
			"FIREBASE_PROJECT_ID": "bondiola",
		}))
		require.NoError(t, err)
		assert.Equal(t, "bondiola", cfg.Store.FirebaseProjectID)
	})

	t.Run("mongo", func(t *testing.T) {
		cfg, err := load(env(map[string]string{
			"DOCSTORE":  "mongo",
			"MONGO_URI": "mongodb://localhost:27017",
		}))
		require.NoError(t, err)
		assert.Equal(t, "mongodb://localhost:27017", cfg.Store.MongoURI)
		assert.Equal(t, "bondiola", cfg.Store.MongoDatabase)
	})

	t.Run("missing required", func(t *testing.T) {
		_, err := load(env(map[string]string{"DOCSTORE": "mongo"}))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "MONGO_URI")
	})

	t.Run("unknown", func(t *testing.T) {
		_, err := load(env(map[string]string{"DOCSTORE": "redis"}))
		assert.Error(t, err)
	})
}

func TestSlackEnabled(t *testing.T) {
	cfg, err := load(env(map[string]string{
		"PORT":             "3000",
		"SLACK_BOT_TOKEN":  "xoxb-1",
		"SLACK_CHANNEL_ID": "C1",
		"GCP_PROJECT":      "bondiola-gcp",
	}))
	require.NoError(t, err)
	assert.Equal(t, "3000", cfg.Port)
	assert.True(t, cfg.Slack.Enabled())
	assert.Equal(t, "bondiola-gcp", cfg.ProjectID)
}
