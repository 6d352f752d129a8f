package implementation

import (
	"context"
	"time"

	"sparke-core-be/internal/entity"
	"sparke-core-be/internal/mapper"
	"sparke-core-be/internal/model"
	"sparke-core-be/internal/repository/contract"
	"sparke-core-be/internal/repository/specification"

	"github.com/google/uuid"
	"github.com/pgvector/pgvector-go"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// scoredChunkRow is the shared scan target for search and fallback queries.
type scoredChunkRow struct {
	DocumentId       uuid.UUID
	DocumentFilename string
	ChunkIndex       int
	Snippet          string
	Score            float64
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

func (r *scoredChunkRow) toEntity() *entity.ScoredChunk {
	var updatedAt *time.Time
	if !r.UpdatedAt.IsZero() {
		t := r.UpdatedAt
		updatedAt = &t
	}
	return &entity.ScoredChunk{
		DocumentId:       r.DocumentId,
		DocumentFilename: r.DocumentFilename,
		ChunkIndex:       r.ChunkIndex,
		Snippet:          r.Snippet,
		Score:            r.Score,
		CreatedAt:        r.CreatedAt,
		UpdatedAt:        updatedAt,
	}
}

type ChunkEmbeddingRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.ChunkEmbeddingMapper
}

func NewChunkEmbeddingRepository(db *gorm.DB) contract.ChunkEmbeddingRepository {
	return &ChunkEmbeddingRepositoryImpl{
		db:     db,
		mapper: mapper.NewChunkEmbeddingMapper(),
	}
}

func (r *ChunkEmbeddingRepositoryImpl) applySpecifications(db *gorm.DB, specs ...specification.Specification) *gorm.DB {
	for _, spec := range specs {
		db = spec.Apply(db)
	}
	return db
}

func (r *ChunkEmbeddingRepositoryImpl) UpsertBatch(ctx context.Context, embeddings []*entity.ChunkEmbedding) error {
	if len(embeddings) == 0 {
		return nil
	}

	models := make([]*model.ChunkEmbedding, len(embeddings))
	for i, e := range embeddings {
		models[i] = r.mapper.ToModel(e)
	}

	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "chunk_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"model", "dim", "embedding"}),
		}).
		Create(&models).Error
	if err != nil {
		return err
	}

	for i, m := range models {
		*embeddings[i] = *r.mapper.ToEntity(m)
	}
	return nil
}

func (r *ChunkEmbeddingRepositoryImpl) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	var count int64
	query := r.applySpecifications(r.db.WithContext(ctx).Model(&model.ChunkEmbedding{}), specs...)
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// SearchSimilar ranks by pgvector cosine distance. Score is reported as
// cosine similarity: 1 - (embedding <=> query).
func (r *ChunkEmbeddingRepositoryImpl) SearchSimilar(ctx context.Context, subjectId uuid.UUID, vector []float32, limit, offset int, maxDistance *float64) ([]*entity.ScoredChunk, error) {
	queryVector := pgvector.NewVector(vector)

	query := r.db.WithContext(ctx).
		Table("chunk_embeddings").
		Select("document_chunks.document_id, documents.filename as document_filename, document_chunks.chunk_index, document_chunks.text as snippet, 1 - (chunk_embeddings.embedding <=> ?) as score, document_chunks.created_at, document_chunks.updated_at", queryVector).
		Joins("JOIN document_chunks ON document_chunks.id = chunk_embeddings.chunk_id").
		Joins("JOIN documents ON documents.id = document_chunks.document_id").
		Where("documents.subject_id = ?", subjectId)

	if maxDistance != nil {
		query = query.Where("(chunk_embeddings.embedding <=> ?) <= ?", queryVector, *maxDistance)
	}

	var rows []*scoredChunkRow
	err := query.
		Order(gorm.Expr("chunk_embeddings.embedding <=> ?", queryVector)).
		Limit(limit).
		Offset(offset).
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	chunks := make([]*entity.ScoredChunk, len(rows))
	for i, row := range rows {
		chunks[i] = row.toEntity()
	}
	return chunks, nil
}
