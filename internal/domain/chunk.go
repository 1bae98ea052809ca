package domain

import "fmt"

// ChunkRecord is the metadata stored alongside each vector in the index.
// One record exists per embedded passage; records are immutable after
// insertion except the logical-delete flag.
type ChunkRecord struct {
	ChunkID    string            `json:"chunk_id"`
	DocID      string            `json:"doc_id"`
	OwnerID    string            `json:"owner_id"`
	Filename   string            `json:"filename"`
	Page       *int              `json:"page,omitempty"`
	Ordinal    int               `json:"ordinal"`
	Identifier string            `json:"identifier,omitempty"`
	Region     string            `json:"region,omitempty"`
	Content    string            `json:"content"`
	Deleted    bool              `json:"deleted,omitempty"`
	Extra      map[string]string `json:"extra,omitempty"`
}

// ChunkIDFor builds the canonical chunk id for a document ordinal.
func ChunkIDFor(docID string, ordinal int) string {
	return fmt.Sprintf("%s:%d", docID, ordinal)
}

// Field returns the value of a named metadata field and whether the field
// is present. Known fields are checked first, then the Extra map.
func (r *ChunkRecord) Field(name string) (string, bool) {
	switch name {
	case "chunk_id":
		return r.ChunkID, true
	case "doc_id":
		return r.DocID, true
	case "owner_id":
		return r.OwnerID, true
	case "filename":
		return r.Filename, true
	case "identifier":
		return r.Identifier, r.Identifier != ""
	case "region":
		return r.Region, r.Region != ""
	}
	v, ok := r.Extra[name]
	return v, ok
}

// Matches reports whether the record satisfies an exact-match filter.
// A record matches iff every filter field is present and equal.
func (r *ChunkRecord) Matches(filter map[string]string) bool {
	for k, want := range filter {
		got, ok := r.Field(k)
		if !ok || got != want {
			return false
		}
	}
	return true
}

// SearchHit is one ranked result from a similarity query. Ephemeral,
// never persisted.
type SearchHit struct {
	Score    float32     `json:"score"`
	Content  string      `json:"content"`
	Metadata ChunkRecord `json:"metadata"`
}
