package entity

import (
	"time"

	"github.com/google/uuid"
)

// DocumentChunk is a contiguous slice of a document's extracted text.
// (document_id, chunk_index) is the natural key: re-submission updates in
// place rather than duplicating.
type DocumentChunk struct {
	Id         uuid.UUID
	DocumentId uuid.UUID
	ChunkIndex int
	Text       string
	TokenCount *int
	CreatedAt  time.Time
	UpdatedAt  *time.Time
}

// ChunkEmbedding is one-to-one with a DocumentChunk.
type ChunkEmbedding struct {
	Id        uuid.UUID
	ChunkId   uuid.UUID
	Model     string
	Dim       int
	Vector    []float32
	CreatedAt time.Time
}

// ScoredChunk is a search hit joined back to its document.
type ScoredChunk struct {
	DocumentId       uuid.UUID
	DocumentFilename string
	ChunkIndex       int
	Snippet          string
	Score            float64
	CreatedAt        time.Time
	UpdatedAt        *time.Time
}
