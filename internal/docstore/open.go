package docstore

import (
	"context"
	"fmt"

	"github.com/charmbracelet/log"
	"github.com/egarcia91/BondiolaFC/internal/database"
)

// Backend names accepted by Open.
const (
	BackendMemory    = "memory"
	BackendSQLite    = "sqlite"
	BackendFirestore = "firestore"
	BackendMongo     = "mongo"
)

// Options selects and configures a backend.
type Options struct {
	Backend string

	// sqlite
	DBPath     string
	PrimaryURL string
	AuthToken  string

	// firestore
	FirebaseProjectID   string
	FirebaseCredentials string

	// mongo
	MongoURI      string
	MongoDatabase string
}

// Open builds the configured Store. The returned teardown releases the
// underlying connection and is never nil on success.
func Open(ctx context.Context, opts Options) (Store, func(), error) {
	log.Info("Opening document store", "backend", opts.Backend)
	switch opts.Backend {
	case BackendMemory, "":
		return NewMemory(), func() {}, nil
	case BackendSQLite:
		db, teardown, err := database.InitDB(opts.DBPath, opts.PrimaryURL, opts.AuthToken)
		if err != nil {
			return nil, nil, err
		}
		return NewSQL(db), teardown, nil
	case BackendFirestore:
		return NewFirestore(ctx, opts.FirebaseProjectID, opts.FirebaseCredentials)
	case BackendMongo:
		return NewMongo(ctx, opts.MongoURI, opts.MongoDatabase)
	default:
		return nil, nil, fmt.Errorf("unknown document store backend %q", opts.Backend)
	}
}
