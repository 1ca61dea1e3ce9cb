package docstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
)

var _ Store = (*sqlStore)(nil)

// sqlStore keeps every document as a msgpack blob in the documents table
// created by the database package migrations.
type sqlStore struct {
	db *sql.DB
	mu sync.RWMutex
}

// NewSQL creates a Store on top of an initialized database.
func NewSQL(db *sql.DB) Store {
	return &sqlStore{db: db}
}

func (s *sqlStore) List(ctx context.Context, collection string) ([]Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, data FROM documents
		WHERE collection = ?
		ORDER BY created_at, rowid
	`, collection)
	if err != nil {
		return nil, fmt.Errorf("failed to list %s: %w", collection, err)
	}
	defer rows.Close()

	records := []Record{}
	for rows.Next() {
		var id string
		var blob []byte
		if err := rows.Scan(&id, &blob); err != nil {
			return nil, fmt.Errorf("failed to scan %s row: %w", collection, err)
		}
		doc, err := decode(blob)
		if err != nil {
			log.Error("Skipping undecodable document", "collection", collection, "id", id, "error", err)
			continue
		}
		records = append(records, Record{ID: id, Data: doc})
	}
	return records, rows.Err()
}

func (s *sqlStore) Get(ctx context.Context, collection, id string) (Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.get(ctx, s.db, collection, id)
}

type queryRower interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func (s *sqlStore) get(ctx context.Context, q queryRower, collection, id string) (Record, error) {
	var blob []byte
	err := q.QueryRowContext(ctx, "SELECT data FROM documents WHERE collection = ? AND id = ?", collection, id).Scan(&blob)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Record{}, fmt.Errorf("%s/%s: %w", collection, id, ErrNotFound)
		}
		return Record{}, fmt.Errorf("failed to get %s/%s: %w", collection, id, err)
	}
	doc, err := decode(blob)
	if err != nil {
		return Record{}, err
	}
	return Record{ID: id, Data: doc}, nil
}

func (s *sqlStore) Create(ctx context.Context, collection string, data Document) (string, error) {
	blob, err := encode(data)
	if err != nil {
		return "", err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	id := uuid.NewString()
	now := time.Now().UnixNano()
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO documents (collection, id, data, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?)
	`, collection, id, blob, now, now)
	if err != nil {
		return "", fmt.Errorf("failed to create %s document: %w", collection, err)
	}
	log.Debug("Created document", "collection", collection, "id", id)
	return id, nil
}

func (s *sqlStore) Update(ctx context.Context, collection, id string, data Document) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	current, err := s.get(ctx, tx, collection, id)
	if err != nil {
		return err
	}
	blob, err := encode(merge(current.Data, data))
	if err != nil {
		return err
	}
	_, err = tx.ExecContext(ctx, `
		UPDATE documents SET data = ?, updated_at = ?
		WHERE collection = ? AND id = ?
	`, blob, time.Now().UnixNano(), collection, id)
	if err != nil {
		return fmt.Errorf("failed to update %s/%s: %w", collection, id, err)
	}
	return tx.Commit()
}

func (s *sqlStore) Delete(ctx context.Context, collection, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx, "DELETE FROM documents WHERE collection = ? AND id = ?", collection, id)
	if err != nil {
		return fmt.Errorf("failed to delete %s/%s: %w", collection, id, err)
	}
	return nil
}

// FindOne scans the collection in creation order. Documents are opaque blobs,
// so there is no SQL index on their fields.
func (s *sqlStore) FindOne(ctx context.Context, collection, field string, value any) (Record, error) {
	records, err := s.List(ctx, collection)
	if err != nil {
		return Record{}, err
	}
	for _, r := range records {
		if v, ok := r.Data[field]; ok && valuesEqual(v, value) {
			return r, nil
		}
	}
	return Record{}, fmt.Errorf("%s where %s=%v: %w", collection, field, value, ErrNotFound)
}
