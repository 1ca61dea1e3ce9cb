package config

import (
	"fmt"
	"os"

	"github.com/charmbracelet/log"
	"github.com/egarcia91/BondiolaFC/internal/docstore"
	"github.com/joho/godotenv"
)

const defaultPort = "8080"

// Load reads configuration from environment variables and .env file.
func Load() Config {
	err := godotenv.Load()
	if err != nil {
		log.Info("No .env file found, reading from environment variables")
	}

	cfg, err := load(os.LookupEnv)
	if err != nil {
		log.Fatal("Invalid configuration", "error", err)
	}
	return cfg
}

func load(lookup func(string) (string, bool)) (Config, error) {
	getEnv := func(key, fallback string) string {
		if value, ok := lookup(key); ok && value != "" {
			return value
		}
		return fallback
	}
	var missing []string
	// A helper to get an env var required by the selected backend.
	required := func(key string) string {
		value := getEnv(key, "")
		if value == "" {
			missing = append(missing, key)
		}
		return value
	}

	cfg := Config{
		Port: getEnv("PORT", defaultPort),
		Store: docstore.Options{
			Backend: getEnv("DOCSTORE", docstore.BackendMemory),
		},
		Slack: SlackConfig{
			Token:     getEnv("SLACK_BOT_TOKEN", ""),
			ChannelID: getEnv("SLACK_CHANNEL_ID", ""),
		},
		ProjectID: getEnv("GCP_PROJECT", ""),
	}

	switch cfg.Store.Backend {
	case docstore.BackendMemory:
	case docstore.BackendSQLite:
		cfg.Store.DBPath = getEnv("DB_NAME", "bondiola.db")
		cfg.Store.PrimaryURL = getEnv("TURSO_PRIMARY_URL", "")
		cfg.Store.AuthToken = getEnv("TURSO_AUTH_TOKEN", "")
	case docstore.BackendFirestore:
		cfg.Store.FirebaseProjectID = required("FIREBASE_PROJECT_ID")
		cfg.Store.FirebaseCredentials = getEnv("FIREBASE_CREDENTIALS_JSON", "")
	case docstore.BackendMongo:
		cfg.Store.MongoURI = required("MONGO_URI")
		cfg.Store.MongoDatabase = getEnv("MONGO_DATABASE", "bondiola")
	default:
		return Config{}, fmt.Errorf("unknown DOCSTORE %q", cfg.Store.Backend)
	}

	if len(missing) > 0 {
		return Config{}, fmt.Errorf("required environment variables not set: %v", missing)
	}
	return cfg, nil
}
