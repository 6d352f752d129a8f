package implementation

import (
	"context"
	"fmt"

	"sparke-core-be/internal/entity"
	"sparke-core-be/internal/mapper"
	"sparke-core-be/internal/model"
	"sparke-core-be/internal/repository/contract"
	"sparke-core-be/internal/repository/specification"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type DocumentChunkRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.ChunkMapper
}

func NewDocumentChunkRepository(db *gorm.DB) contract.DocumentChunkRepository {
	return &DocumentChunkRepositoryImpl{
		db:     db,
		mapper: mapper.NewChunkMapper(),
	}
}

func (r *DocumentChunkRepositoryImpl) applySpecifications(db *gorm.DB, specs ...specification.Specification) *gorm.DB {
	for _, spec := range specs {
		db = spec.Apply(db)
	}
	return db
}

func (r *DocumentChunkRepositoryImpl) UpsertBatch(ctx context.Context, chunks []*entity.DocumentChunk) error {
	if len(chunks) == 0 {
		return nil
	}

	models := make([]*model.DocumentChunk, len(chunks))
	for i, c := range chunks {
		models[i] = r.mapper.ToModel(c)
	}

	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "document_id"}, {Name: "chunk_index"}},
			DoUpdates: clause.AssignmentColumns([]string{"text", "token_count", "updated_at"}),
		}).
		Create(&models).Error
	if err != nil {
		return err
	}

	// On conflict the returned id is not reliable, so re-read the surviving
	// rows and map them back by (document_id, chunk_index).
	documentIds := make([]uuid.UUID, 0, 1)
	seen := make(map[uuid.UUID]bool)
	for _, c := range chunks {
		if !seen[c.DocumentId] {
			seen[c.DocumentId] = true
			documentIds = append(documentIds, c.DocumentId)
		}
	}

	var rows []*model.DocumentChunk
	if err := r.db.WithContext(ctx).Where("document_id IN ?", documentIds).Find(&rows).Error; err != nil {
		return err
	}

	byKey := make(map[string]*model.DocumentChunk, len(rows))
	for _, row := range rows {
		byKey[fmt.Sprintf("%s:%d", row.DocumentId, row.ChunkIndex)] = row
	}
	for i, c := range chunks {
		row, ok := byKey[fmt.Sprintf("%s:%d", c.DocumentId, c.ChunkIndex)]
		if !ok {
			return fmt.Errorf("chunk (%s, %d) missing after upsert", c.DocumentId, c.ChunkIndex)
		}
		*chunks[i] = *r.mapper.ToEntity(row)
	}
	return nil
}

func (r *DocumentChunkRepositoryImpl) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.DocumentChunk, error) {
	var models []*model.DocumentChunk
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.Find(&models).Error; err != nil {
		return nil, err
	}
	return r.mapper.ToEntities(models), nil
}

func (r *DocumentChunkRepositoryImpl) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	var count int64
	query := r.applySpecifications(r.db.WithContext(ctx).Model(&model.DocumentChunk{}), specs...)
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func (r *DocumentChunkRepositoryImpl) ListForSubject(ctx context.Context, subjectId uuid.UUID, limit, offset int) ([]*entity.ScoredChunk, error) {
	var rows []*scoredChunkRow
	err := r.db.WithContext(ctx).
		Table("document_chunks").
		Select("document_chunks.document_id, documents.filename as document_filename, document_chunks.chunk_index, document_chunks.text as snippet, document_chunks.created_at, document_chunks.updated_at").
		Joins("JOIN documents ON documents.id = document_chunks.document_id").
		Where("documents.subject_id = ?", subjectId).
		Order("documents.created_at ASC, document_chunks.chunk_index ASC").
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
