// Package vecstore persists chunk vectors and their metadata sidecar and
// answers nearest-neighbor queries over them. On disk the store is a vector
// index file plus a newline-delimited metadata record file; the Nth vector
// always corresponds to the Nth metadata record. In memory, similarity
// search is served by a chromem collection rebuilt at load time.
package vecstore

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"sort"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/philippgille/chromem-go"
	"github.com/rs/zerolog/log"

	"localfind/internal/embedding"
)

// ErrInconsistent reports a vector/metadata desynchronization. The affected
// scope needs a full rebuild; the store refuses to serve from it.
var ErrInconsistent = errors.New("vector index and metadata sidecar are out of sync")

// IndexEntry is the persisted unit: one chunk's metadata, keyed by its
// ordinal position, which is also the position of its vector in the index.
type IndexEntry struct {
	ID          int       `json:"id"`
	SourcePath  string    `json:"path"`
	ChunkIndex  int       `json:"chunk"`
	StartOffset int       `json:"start"`
	EndOffset   int       `json:"end"`
	Snippet     string    `json:"text"`
	ModTime     time.Time `json:"mtime"`
}

// Scored pairs an entry with its cosine similarity to a query vector.
type Scored struct {
	Entry      IndexEntry
	Similarity float32
}

// Status summarizes the persisted state. A never-built store reports zero
// values, not an error.
type Status struct {
	Entries   int
	Dimension int
	LastBuild time.Time
	BuildID   string
}

const collectionName = "chunks"

// Store holds the loaded index. Queries may run concurrently; a rebuild
// excludes them while the new state is swapped in.
type Store struct {
	dir string

	mu       sync.RWMutex
	entries  []IndexEntry
	dim      int
	manifest manifest
	coll     *chromem.Collection
}

// Open loads the persisted store under dir. A missing index yields an empty
// store. A desynchronized index yields an empty store together with
// ErrInconsistent so the caller can trigger a rebuild.
func Open(dir string) (*Store, error) {
	s := &Store{dir: dir}

	entries, vectors, man, err := loadFiles(dir)
	if err != nil {
		if errors.Is(err, ErrInconsistent) {
			log.Warn().Str("dir", dir).Err(err).Msg("index inconsistent, rebuild required")
			return s, err
		}
		return nil, err
	}
	if len(entries) == 0 {
		return s, nil
	}

	coll, err := buildCollection(entries, vectors)
	if err != nil {
		return nil, err
	}
	s.entries = entries
	s.dim = len(vectors[0])
	s.manifest = man
	s.coll = coll
	return s, nil
}

// Rebuild atomically replaces the whole store scope with the given entries
// and vectors. Either the new state lands completely or the prior consistent
// state is retained. Vectors are normalized so inner product equals cosine
// similarity.
func (s *Store) Rebuild(entries []IndexEntry, vectors [][]float32) error {
	if len(entries) != len(vectors) {
		return fmt.Errorf("%w: %d entries, %d vectors", ErrInconsistent, len(entries), len(vectors))
	}
	dim := 0
	for i := range vectors {
		if i == 0 {
			dim = len(vectors[i])
		}
		if len(vectors[i]) != dim || dim == 0 {
			return fmt.Errorf("vector %d: dimension %d, want %d", i, len(vectors[i]), dim)
		}
		embedding.Normalize(vectors[i])
	}
	for i := range entries {
		entries[i].ID = i
	}
	man := manifest{
		BuildID:   uuid.NewString(),
		BuiltAt:   time.Now().UTC(),
		Entries:   len(entries),
		Dimension: dim,
	}

	var coll *chromem.Collection
	if len(entries) > 0 {
		var err error
		coll, err = buildCollection(entries, vectors)
		if err != nil {
			return err
		}
	}

	if err := saveFiles(s.dir, entries, vectors, man); err != nil {
		return err
	}

	s.mu.Lock()
	s.entries = entries
	s.dim = dim
	s.manifest = man
	s.coll = coll
	s.mu.Unlock()

	log.Info().Int("entries", len(entries)).Str("build", man.BuildID).Msg("vector store rebuilt")
	return nil
}

// Query returns the k entries most similar to vec, descending, ties broken
// by insertion order. An empty store returns no results and no error.
func (s *Store) Query(ctx context.Context, vec []float32, k int) ([]Scored, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if len(s.entries) == 0 || k <= 0 {
		return nil, nil
	}
	if len(vec) != s.dim {
		return nil, fmt.Errorf("query dimension %d, index dimension %d", len(vec), s.dim)
	}
	if k > len(s.entries) {
		k = len(s.entries)
	}

	q := make([]float32, len(vec))
	copy(q, vec)
	embedding.Normalize(q)

	results, err := s.coll.QueryWithOptions(ctx, chromem.QueryOptions{
		QueryEmbedding: q,
		NResults:       k,
	})
	if err != nil {
		return nil, fmt.Errorf("similarity query: %w", err)
	}

	scored := make([]Scored, 0, len(results))
	for _, r := range results {
		ord, err := strconv.Atoi(r.ID)
		if err != nil || ord < 0 || ord >= len(s.entries) {
			return nil, fmt.Errorf("%w: unknown ordinal %q", ErrInconsistent, r.ID)
		}
		scored = append(scored, Scored{Entry: s.entries[ord], Similarity: r.Similarity})
	}
	sort.SliceStable(scored, func(i, j int) bool {
		if scored[i].Similarity != scored[j].Similarity {
			return scored[i].Similarity > scored[j].Similarity
		}
		return scored[i].Entry.ID < scored[j].Entry.ID
	})
	return scored, nil
}

// Status reports entry count and last build information.
func (s *Store) Status() Status {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return Status{
		Entries:   len(s.entries),
		Dimension: s.dim,
		LastBuild: s.manifest.BuiltAt,
		BuildID:   s.manifest.BuildID,
	}
}

// Dir returns the directory backing this store.
func (s *Store) Dir() string { return s.dir }

// Close releases the in-memory collection. The persisted files are already
// durable; a closed store serves no further queries.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = nil
	s.coll = nil
	s.dim = 0
	return nil
}

func buildCollection(entries []IndexEntry, vectors [][]float32) (*chromem.Collection, error) {
	db := chromem.NewDB()
	coll, err := db.CreateCollection(collectionName, nil, nil)
	if err != nil {
		return nil, fmt.Errorf("create collection: %w", err)
	}
	docs := make([]chromem.Document, len(entries))
	for i := range entries {
		docs[i] = chromem.Document{
			ID:        strconv.Itoa(i),
			Content:   entries[i].Snippet,
			Embedding: vectors[i],
		}
	}
	if err := coll.AddDocuments(context.Background(), docs, runtime.NumCPU()); err != nil {
		return nil, fmt.Errorf("add documents: %w", err)
	}
	return coll, nil
}
