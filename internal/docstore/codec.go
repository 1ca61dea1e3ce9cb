package docstore

import (
	"bytes"
	"fmt"

	"github.com/vmihailenco/msgpack/v5"
)

// encode serializes a document into the msgpack blob kept by the SQL and
// memory backends.
func encode(doc Document) ([]byte, error) {
	if doc == nil {
		doc = Document{}
	}
	b, err := msgpack.Marshal(map[string]any(doc))
	if err != nil {
		return nil, fmt.Errorf("failed to encode document: %w", err)
	}
	return b, nil
}

// decode is the inverse of encode. Loose decoding keeps numbers as
// int64/uint64/float64 instead of the smallest wire type.
func decode(b []byte) (Document, error) {
	dec := msgpack.NewDecoder(bytes.NewReader(b))
	dec.UseLooseInterfaceDecoding(true)
	var m map[string]any
	if err := dec.Decode(&m); err != nil {
		return nil, fmt.Errorf("failed to decode document: %w", err)
	}
	if m == nil {
		m = map[string]any{}
	}
	return Document(m), nil
}

// clone returns a deep copy of doc by round-tripping it through the codec.
func clone(doc Document) (Document, error) {
	b, err := encode(doc)
	if err != nil {
		return nil, err
	}
	return decode(b)
}

// merge returns base with the top-level fields of patch replacing its own.
func merge(base, patch Document) Document {
	out := make(Document, len(base)+len(patch))
	for k, v := range base {
		out[k] = v
	}
	for k, v := range patch {
		out[k] = v
	}
	return out
}
