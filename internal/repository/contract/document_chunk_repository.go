package contract

import (
	"context"

	"sparke-core-be/internal/entity"
	"sparke-core-be/internal/repository/specification"

	"github.com/google/uuid"
)

type DocumentChunkRepository interface {
	// UpsertBatch merges chunks keyed by (document_id, chunk_index) and
	// back-fills entity ids (existing rows keep their original id).
	UpsertBatch(ctx context.Context, chunks []*entity.DocumentChunk) error
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.DocumentChunk, error)
	Count(ctx context.Context, specs ...specification.Specification) (int64, error)

	// ListForSubject returns a subject's chunks ordered by chunk index with a
	// neutral score; this is the search engine's zero-row fallback.
	ListForSubject(ctx context.Context, subjectId uuid.UUID, limit, offset int) ([]*entity.ScoredChunk, error)
}
