// Package vectorindex provides an in-memory inner-product similarity index
// with per-vector metadata, logical deletion, rebuild-only compaction and
// snapshot persistence.
package vectorindex

import (
	"sort"
	"sync"

	"github.com/veridex-labs/veridex/internal/domain"
)

const defaultOverfetchMultiplier = 3

// Index stores L2-normalized vectors alongside an order-aligned metadata
// slice. The two always have equal length: updates to both commit as one
// unit inside a single critical section, and at most one writer mutation
// is in flight at a time. Reads may run concurrently.
type Index struct {
	mu        sync.RWMutex
	dim       int
	vectors   [][]float32
	records   []domain.ChunkRecord
	byID      map[string]int
	dirty     bool
	gen       uint64
	overfetch int

	persistence *Persistence
}

// Option configures an Index.
type Option func(*Index)

// WithPersistence attaches local-disk (and optionally remote) snapshot
// storage.
func WithPersistence(p *Persistence) Option {
	return func(ix *Index) { ix.persistence = p }
}

// WithOverfetchMultiplier tunes how many raw candidates a filtered search
// inspects before widening to the whole index.
func WithOverfetchMultiplier(n int) Option {
	return func(ix *Index) {
		if n > 0 {
			ix.overfetch = n
		}
	}
}

// New creates an empty index. The dimension is fixed for the index's
// lifetime; it comes from the active embedding provider.
func New(dim int, opts ...Option) (*Index, error) {
	if dim <= 0 {
		return nil, domain.NewDomainError(domain.ErrCodeValidation, "index dimension must be positive")
	}
	ix := &Index{
		dim:       dim,
		byID:      make(map[string]int),
		overfetch: defaultOverfetchMultiplier,
	}
	for _, opt := range opts {
		opt(ix)
	}
	return ix, nil
}

// Dim returns the fixed vector dimension.
func (ix *Index) Dim() int {
	return ix.dim
}

// Len returns the total number of stored vectors, including logically
// deleted ones.
func (ix *Index) Len() int {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	return len(ix.vectors)
}

// Live returns the number of non-deleted vectors.
func (ix *Index) Live() int {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	live := 0
	for i := range ix.records {
		if !ix.records[i].Deleted {
			live++
		}
	}
	return live
}

// Add appends vectors with their metadata records in call order and returns
// the chunk ids in that order. Lengths must match and every vector must
// have the index dimension; a violation fails the whole call without
// touching existing state.
func (ix *Index) Add(vectors [][]float32, records []domain.ChunkRecord) ([]string, error) {
	if len(vectors) != len(records) {
		return nil, domain.ErrLengthMismatch
	}
	for _, v := range vectors {
		if len(v) != ix.dim {
			return nil, domain.ErrDimensionMismatch
		}
	}

	ix.mu.Lock()
	defer ix.mu.Unlock()

	ids := make([]string, len(records))
	base := len(ix.vectors)
	for i := range records {
		ix.vectors = append(ix.vectors, vectors[i])
		ix.records = append(ix.records, records[i])
		ix.byID[records[i].ChunkID] = base + i
		ids[i] = records[i].ChunkID
	}
	ix.markMutated()
	return ids, nil
}

// markMutated flags unsaved state and advances the mutation generation a
// concurrent Save checks before declaring the index clean. Callers hold
// the write lock.
func (ix *Index) markMutated() {
	ix.dirty = true
	ix.gen++
}

// Search returns the top-k records by inner product, score descending, ties
// broken by earlier insertion. Logically deleted records are skipped. With
// a filter, candidates are over-fetched (k times the multiplier, widening
// to the whole index when short) so that k filter-passing results come back
// whenever that many exist. An empty index yields an empty slice.
func (ix *Index) Search(query []float32, k int, filter map[string]string) []domain.SearchHit {
	ix.mu.RLock()
	defer ix.mu.RUnlock()

	hits := []domain.SearchHit{}
	if k <= 0 || len(query) != ix.dim || len(ix.vectors) == 0 {
		return hits
	}

	type scored struct {
		idx   int
		score float32
	}
	candidates := make([]scored, 0, len(ix.vectors))
	for i, v := range ix.vectors {
		if ix.records[i].Deleted {
			continue
		}
		candidates = append(candidates, scored{idx: i, score: dot(v, query)})
	}

	sort.Slice(candidates, func(i, j int) bool {
		if candidates[i].score != candidates[j].score {
			return candidates[i].score > candidates[j].score
		}
		return candidates[i].idx < candidates[j].idx
	})

	// Initial window for filtered search; widened below rather than ever
	// truncating filter-passing results.
	window := k * ix.overfetch
	if filter == nil || window > len(candidates) {
		window = len(candidates)
	}

	take := func(from, to int) {
		for _, c := range candidates[from:to] {
			if len(hits) == k {
				return
			}
			record := ix.records[c.idx]
			if filter != nil && !record.Matches(filter) {
				continue
			}
			hits = append(hits, domain.SearchHit{
				Score:    c.score,
				Content:  record.Content,
				Metadata: record,
			})
		}
	}

	take(0, window)
	if len(hits) < k && window < len(candidates) {
		take(window, len(candidates))
	}
	return hits
}

// MarkDeleted sets the logical-delete flag on a chunk. The vector keeps its
// slot until Rebuild; there is no O(1) physical delete.
func (ix *Index) MarkDeleted(chunkID string) bool {
	ix.mu.Lock()
	defer ix.mu.Unlock()

	i, ok := ix.byID[chunkID]
	if !ok || ix.records[i].Deleted {
		return false
	}
	ix.records[i].Deleted = true
	ix.markMutated()
	return true
}

// MarkDocumentDeleted flags every chunk of a document and returns how many
// were newly flagged.
func (ix *Index) MarkDocumentDeleted(docID string) int {
	ix.mu.Lock()
	defer ix.mu.Unlock()

	flagged := 0
	for i := range ix.records {
		if ix.records[i].DocID == docID && !ix.records[i].Deleted {
			ix.records[i].Deleted = true
			flagged++
		}
	}
	if flagged > 0 {
		ix.markMutated()
	}
	return flagged
}

// Rebuild constructs fresh vector and metadata stores from the non-deleted
// entries, preserving relative order, and swaps them in atomically. This is
// the only path that reclaims space. Returns the number of slots reclaimed.
func (ix *Index) Rebuild() int {
	ix.mu.Lock()
	defer ix.mu.Unlock()

	vectors := make([][]float32, 0, len(ix.vectors))
	records := make([]domain.ChunkRecord, 0, len(ix.records))
	byID := make(map[string]int)
	for i := range ix.records {
		if ix.records[i].Deleted {
			continue
		}
		byID[ix.records[i].ChunkID] = len(records)
		vectors = append(vectors, ix.vectors[i])
		records = append(records, ix.records[i])
	}

	removed := len(ix.vectors) - len(vectors)
	ix.vectors = vectors
	ix.records = records
	ix.byID = byID
	if removed > 0 {
		ix.markMutated()
	}
	return removed
}

// Persistent reports whether snapshot persistence is configured.
func (ix *Index) Persistent() bool {
	return ix.persistence != nil
}

// Dirty reports whether the index has unsaved mutations.
func (ix *Index) Dirty() bool {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	return ix.dirty
}

func dot(a, b []float32) float32 {
	var sum float32
	for i := range a {
		sum += a[i] * b[i]
	}
	return sum
}
