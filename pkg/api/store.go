package api

import (
	"encoding/json"
	"fmt"
	"regexp"
	"sort"
	"strings"
	"sync"
	"time"
)

// indexIDPattern constrains index identifiers: leading letter, then
// letters, digits, hyphens, underscores, or dots, 3 to 255 characters.
var indexIDPattern = regexp.MustCompile(`^[a-zA-Z][a-zA-Z0-9\-_\.]{2,254}$`)

// ValidateIndexID reports whether id is an acceptable index identifier.
func ValidateIndexID(id string) error {
	if !indexIDPattern.MatchString(id) {
		return fmt.Errorf("invalid index ID %q: must start with a letter and contain only letters, digits, hyphens, underscores, or dots (3-255 characters)", id)
	}
	return nil
}

// ErrIndexNotFound is returned for operations on unknown indexes.
type ErrIndexNotFound struct{ IndexID string }

func (e ErrIndexNotFound) Error() string {
	return fmt.Sprintf("index %q not found", e.IndexID)
}

// ErrIndexExists is returned when creating an index that already exists.
type ErrIndexExists struct{ IndexID string }

func (e ErrIndexExists) Error() string {
	return fmt.Sprintf("index %q already exists", e.IndexID)
}

// index holds one index's metadata and documents.
type index struct {
	meta IndexMetadata
	docs []map[string]any
}

// IndexStore is an in-memory metastore view with naive full-text search.
// It backs the index management, search, and ingest endpoints.
//
// IndexStore is thread-safe.
type IndexStore struct {
	mu      sync.RWMutex
	indexes map[string]*index
}

// NewIndexStore creates an empty store.
func NewIndexStore() *IndexStore {
	return &IndexStore{indexes: make(map[string]*index)}
}

// Create registers a new index.
func (s *IndexStore) Create(indexID string) (IndexMetadata, error) {
	if err := ValidateIndexID(indexID); err != nil {
		return IndexMetadata{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.indexes[indexID]; exists {
		return IndexMetadata{}, ErrIndexExists{IndexID: indexID}
	}

	meta := IndexMetadata{
		IndexID:   indexID,
		CreatedAt: time.Now().UTC(),
	}
	s.indexes[indexID] = &index{meta: meta}
	return meta, nil
}

// List returns metadata for all indexes, sorted by index ID.
func (s *IndexStore) List() []IndexMetadata {
	s.mu.RLock()
	defer s.mu.RUnlock()

	all := make([]IndexMetadata, 0, len(s.indexes))
	for _, idx := range s.indexes {
		all = append(all, idx.meta)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].IndexID < all[j].IndexID })
	return all
}

// Get returns metadata for one index.
func (s *IndexStore) Get(indexID string) (IndexMetadata, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	idx, exists := s.indexes[indexID]
	if !exists {
		return IndexMetadata{}, ErrIndexNotFound{IndexID: indexID}
	}
	return idx.meta, nil
}

// Delete removes an index and its documents.
func (s *IndexStore) Delete(indexID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.indexes[indexID]; !exists {
		return ErrIndexNotFound{IndexID: indexID}
	}
	delete(s.indexes, indexID)
	return nil
}

// Ingest appends documents to an index. Each document is one JSON
// object; a line that fails to parse aborts the batch.
func (s *IndexStore) Ingest(indexID string, lines [][]byte) (int, error) {
	docs := make([]map[string]any, 0, len(lines))
	for i, line := range lines {
		var doc map[string]any
		if err := json.Unmarshal(line, &doc); err != nil {
			return 0, fmt.Errorf("document %d is not a JSON object: %w", i+1, err)
		}
		docs = append(docs, doc)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	idx, exists := s.indexes[indexID]
	if !exists {
		return 0, ErrIndexNotFound{IndexID: indexID}
	}

	idx.docs = append(idx.docs, docs...)
	idx.meta.NumDocs = len(idx.docs)
	return len(docs), nil
}

// Search matches documents whose serialized form contains the query as
// a case-insensitive substring. An empty query matches nothing.
func (s *IndexStore) Search(indexID string, req SearchRequest) (SearchResponse, error) {
	start := time.Now()

	s.mu.RLock()
	idx, exists := s.indexes[indexID]
	if !exists {
		s.mu.RUnlock()
		return SearchResponse{}, ErrIndexNotFound{IndexID: indexID}
	}
	docs := idx.docs
	s.mu.RUnlock()

	maxHits := req.MaxHits
	if maxHits <= 0 {
		maxHits = 20
	}

	query := strings.ToLower(req.Query)
	var matches []map[string]any
	if query != "" {
		for _, doc := range docs {
			serialized, err := json.Marshal(doc)
			if err != nil {
				continue
			}
			if strings.Contains(strings.ToLower(string(serialized)), query) {
				matches = append(matches, doc)
			}
		}
	}

	hits := matches
	if req.StartOffset > 0 {
		if req.StartOffset >= len(hits) {
			hits = nil
		} else {
			hits = hits[req.StartOffset:]
		}
	}
	if len(hits) > maxHits {
		hits = hits[:maxHits]
	}
	if hits == nil {
		hits = []map[string]any{}
	}

	return SearchResponse{
		NumHits:           len(matches),
		Hits:              hits,
		ElapsedTimeMicros: time.Since(start).Microseconds(),
	}, nil
}
