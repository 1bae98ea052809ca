package vectorindex

import (
	"bytes"
	"context"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/veridex-labs/veridex/internal/domain"
)

const (
	// VectorsFile is the binary vector snapshot artifact.
	VectorsFile = "vectors.bin"
	// MetadataFile is the order-aligned metadata collection artifact.
	MetadataFile = "metadata.json"

	snapshotMagic = uint32(0x56445831) // "VDX1"
)

// RemoteStore mirrors snapshot artifacts to object storage. Satisfied by
// the S3 adapter in the composition root. Any Get error means "not
// available remotely" and falls back to local disk.
type RemoteStore interface {
	Put(ctx context.Context, key string, data []byte) error
	Get(ctx context.Context, key string) ([]byte, error)
}

// Persistence holds the snapshot destinations. Remote may be nil.
type Persistence struct {
	Dir    string
	Remote RemoteStore
}

// Save persists the index as two artifacts: a binary vector snapshot and a
// JSON metadata collection, written locally (atomic rename) and mirrored to
// the remote store when one is configured. Remote mirror failures are
// logged, not fatal: local disk remains the durability floor.
func (ix *Index) Save(ctx context.Context) error {
	if ix.persistence == nil {
		return domain.NewDomainError(domain.ErrCodeInvalidOperation, "index has no persistence configured")
	}

	ix.mu.RLock()
	gen := ix.gen
	vectorData, err := encodeVectors(ix.dim, ix.vectors)
	if err != nil {
		ix.mu.RUnlock()
		return err
	}
	metaData, err := json.Marshal(ix.records)
	if err != nil {
		ix.mu.RUnlock()
		return fmt.Errorf("failed to encode metadata: %w", err)
	}
	ix.mu.RUnlock()

	if err := os.MkdirAll(ix.persistence.Dir, 0o755); err != nil {
		return fmt.Errorf("failed to create snapshot dir: %w", err)
	}
	if err := writeAtomic(filepath.Join(ix.persistence.Dir, VectorsFile), vectorData); err != nil {
		return err
	}
	if err := writeAtomic(filepath.Join(ix.persistence.Dir, MetadataFile), metaData); err != nil {
		return err
	}

	if remote := ix.persistence.Remote; remote != nil {
		if err := remote.Put(ctx, VectorsFile, vectorData); err != nil {
			log.Printf("vectorindex: remote mirror of %s failed: %v", VectorsFile, err)
		} else if err := remote.Put(ctx, MetadataFile, metaData); err != nil {
			log.Printf("vectorindex: remote mirror of %s failed: %v", MetadataFile, err)
		}
	}

	// Writers may have landed while the snapshot was on its way to disk or
	// the mirror. The index is clean only if the generation captured under
	// the read lock still matches; otherwise it stays dirty for the next
	// save.
	ix.mu.Lock()
	if ix.gen == gen {
		ix.dirty = false
	}
	ix.mu.Unlock()
	return nil
}

// Load restores a snapshot, preferring the remote store and falling back to
// local disk. With no snapshot anywhere the index stays in its valid,
// empty-but-dimensioned state. A vector/metadata count divergence is a
// corruption signal: the load is refused and prior state kept.
func (ix *Index) Load(ctx context.Context) error {
	if ix.persistence == nil {
		return domain.NewDomainError(domain.ErrCodeInvalidOperation, "index has no persistence configured")
	}

	vectorData, metaData, found := ix.fetchSnapshot(ctx)
	if !found {
		return nil
	}

	dim, vectors, err := decodeVectors(vectorData)
	if err != nil {
		return err
	}
	if dim != ix.dim {
		return domain.NewDomainErrorWithCause(domain.ErrCodeCorruptSnapshot,
			fmt.Sprintf("snapshot dimension %d does not match index dimension %d", dim, ix.dim), nil)
	}

	var records []domain.ChunkRecord
	if err := json.Unmarshal(metaData, &records); err != nil {
		return domain.NewDomainErrorWithCause(domain.ErrCodeCorruptSnapshot, "failed to decode metadata", err)
	}

	if len(vectors) != len(records) {
		log.Printf("vectorindex: data-integrity event: %d vectors vs %d metadata records, load refused",
			len(vectors), len(records))
		return domain.ErrCountDivergence
	}

	byID := make(map[string]int, len(records))
	for i := range records {
		byID[records[i].ChunkID] = i
	}

	ix.mu.Lock()
	ix.vectors = vectors
	ix.records = records
	ix.byID = byID
	ix.dirty = false
	ix.gen++
	ix.mu.Unlock()
	return nil
}

// fetchSnapshot retrieves both artifacts from the preferred source. Both
// must come from the same source to stay order-aligned.
func (ix *Index) fetchSnapshot(ctx context.Context) (vectorData, metaData []byte, found bool) {
	if remote := ix.persistence.Remote; remote != nil {
		v, errV := remote.Get(ctx, VectorsFile)
		m, errM := remote.Get(ctx, MetadataFile)
		if errV == nil && errM == nil {
			return v, m, true
		}
		log.Printf("vectorindex: remote snapshot unavailable, trying local disk")
	}

	v, errV := os.ReadFile(filepath.Join(ix.persistence.Dir, VectorsFile))
	m, errM := os.ReadFile(filepath.Join(ix.persistence.Dir, MetadataFile))
	if errV != nil || errM != nil {
		return nil, nil, false
	}
	return v, m, true
}

func encodeVectors(dim int, vectors [][]float32) ([]byte, error) {
	buf := &bytes.Buffer{}
	header := []uint32{snapshotMagic, uint32(dim), uint32(len(vectors))}
	for _, h := range header {
		if err := binary.Write(buf, binary.LittleEndian, h); err != nil {
			return nil, fmt.Errorf("failed to encode vector header: %w", err)
		}
	}
	for _, v := range vectors {
		if err := binary.Write(buf, binary.LittleEndian, v); err != nil {
			return nil, fmt.Errorf("failed to encode vectors: %w", err)
		}
	}
	return buf.Bytes(), nil
}

func decodeVectors(data []byte) (int, [][]float32, error) {
	buf := bytes.NewReader(data)
	var magic, dim, count uint32
	for _, p := range []*uint32{&magic, &dim, &count} {
		if err := binary.Read(buf, binary.LittleEndian, p); err != nil {
			return 0, nil, domain.NewDomainErrorWithCause(domain.ErrCodeCorruptSnapshot, "truncated vector snapshot", err)
		}
	}
	if magic != snapshotMagic {
		return 0, nil, domain.NewDomainError(domain.ErrCodeCorruptSnapshot, "vector snapshot has wrong magic")
	}

	// The header is untrusted until the payload size backs it up; a corrupt
	// count must not drive the allocation below.
	const headerSize = 12
	want := uint64(count) * uint64(dim) * 4
	if uint64(len(data)) < headerSize+want {
		return 0, nil, domain.NewDomainError(domain.ErrCodeCorruptSnapshot,
			fmt.Sprintf("vector snapshot has %d bytes, header claims %d vectors of dimension %d", len(data), count, dim))
	}

	vectors := make([][]float32, count)
	for i := range vectors {
		v := make([]float32, dim)
		if err := binary.Read(buf, binary.LittleEndian, v); err != nil {
			return 0, nil, domain.NewDomainErrorWithCause(domain.ErrCodeCorruptSnapshot, "truncated vector data", err)
		}
		vectors[i] = v
	}
	return int(dim), vectors, nil
}

func writeAtomic(path string, data []byte) error {
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", tmp, err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("failed to replace %s: %w", path, err)
	}
	return nil
}
