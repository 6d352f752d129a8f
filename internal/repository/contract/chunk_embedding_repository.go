package contract

import (
	"context"

	"sparke-core-be/internal/entity"
	"sparke-core-be/internal/repository/specification"

	"github.com/google/uuid"
)

type ChunkEmbeddingRepository interface {
	// UpsertBatch overwrites model/dim/vector on conflict by chunk id.
	UpsertBatch(ctx context.Context, embeddings []*entity.ChunkEmbedding) error
	Count(ctx context.Context, specs ...specification.Specification) (int64, error)

	// SearchSimilar ranks a subject's chunks by cosine distance to the query
	// vector (ascending). maxDistance, when non-nil, filters out rows farther
	// than the given cosine distance before ranking.
	SearchSimilar(ctx context.Context, subjectId uuid.UUID, vector []float32, limit, offset int, maxDistance *float64) ([]*entity.ScoredChunk, error)
}
