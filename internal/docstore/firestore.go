package docstore

import (
	"context"
	"errors"
	"fmt"

	"cloud.google.com/go/firestore"
	firebase "firebase.google.com/go/v4"
	"github.com/charmbracelet/log"
	"google.golang.org/api/iterator"
	"google.golang.org/api/option"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

var _ Store = (*firestoreStore)(nil)

type firestoreStore struct {
	client *firestore.Client
}

// NewFirestore connects to the Firestore database of a Firebase project.
// credentialsJSON may be empty to use application default credentials.
func NewFirestore(ctx context.Context, projectID, credentialsJSON string) (Store, func(), error) {
	var opts []option.ClientOption
	if credentialsJSON != "" {
		opts = append(opts, option.WithCredentialsJSON([]byte(credentialsJSON)))
	}
	app, err := firebase.NewApp(ctx, &firebase.Config{ProjectID: projectID}, opts...)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to initialize firebase app: %w", err)
	}
	client, err := app.Firestore(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create Firestore client: %w", err)
	}
	teardown := func() {
		if err := client.Close(); err != nil {
			log.Error("Failed to close Firestore client", "error", err)
		}
	}
	log.Info("Connected to Firestore", "project", projectID)
	return &firestoreStore{client: client}, teardown, nil
}

func (s *firestoreStore) List(ctx context.Context, collection string) ([]Record, error) {
	return s.collect(s.client.Collection(collection).Documents(ctx), collection)
}

func (s *firestoreStore) collect(iter *firestore.DocumentIterator, collection string) ([]Record, error) {
	defer iter.Stop()

	records := []Record{}
	for {
		doc, err := iter.Next()
		if errors.Is(err, iterator.Done) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", collection, err)
		}
		records = append(records, Record{ID: doc.Ref.ID, Data: Document(doc.Data())})
	}
	return records, nil
}

func (s *firestoreStore) Get(ctx context.Context, collection, id string) (Record, error) {
	doc, err := s.client.Collection(collection).Doc(id).Get(ctx)
	if err != nil {
		return Record{}, s.wrap(err, collection, id)
	}
	return Record{ID: doc.Ref.ID, Data: Document(doc.Data())}, nil
}

func (s *firestoreStore) Create(ctx context.Context, collection string, data Document) (string, error) {
	ref, _, err := s.client.Collection(collection).Add(ctx, map[string]any(data))
	if err != nil {
		return "", fmt.Errorf("failed to create %s document: %w", collection, err)
	}
	return ref.ID, nil
}

// Update replaces each given top-level field. Nested maps are replaced whole,
// like the web SDK's updateDoc, rather than deep-merged.
func (s *firestoreStore) Update(ctx context.Context, collection, id string, data Document) error {
	if len(data) == 0 {
		return nil
	}
	updates := make([]firestore.Update, 0, len(data))
	for k, v := range data {
		updates = append(updates, firestore.Update{FieldPath: firestore.FieldPath{k}, Value: v})
	}
	_, err := s.client.Collection(collection).Doc(id).Update(ctx, updates)
	if err != nil {
		return s.wrap(err, collection, id)
	}
	return nil
}

func (s *firestoreStore) Delete(ctx context.Context, collection, id string) error {
	_, err := s.client.Collection(collection).Doc(id).Delete(ctx)
	if err != nil {
		return fmt.Errorf("failed to delete %s/%s: %w", collection, id, err)
	}
	return nil
}

func (s *firestoreStore) FindOne(ctx context.Context, collection, field string, value any) (Record, error) {
	iter := s.client.Collection(collection).Where(field, "==", value).Limit(1).Documents(ctx)
	records, err := s.collect(iter, collection)
	if err != nil {
		return Record{}, err
	}
	if len(records) == 0 {
		return Record{}, fmt.Errorf("%s where %s=%v: %w", collection, field, value, ErrNotFound)
	}
	return records[0], nil
}

func (s *firestoreStore) wrap(err error, collection, id string) error {
	if status.Code(err) == codes.NotFound {
		return fmt.Errorf("%s/%s: %w", collection, id, ErrNotFound)
	}
	return fmt.Errorf("firestore %s/%s: %w", collection, id, err)
}
