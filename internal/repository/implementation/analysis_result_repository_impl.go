package implementation

import (
	"context"
	"errors"

	"sparke-core-be/internal/entity"
	"sparke-core-be/internal/mapper"
	"sparke-core-be/internal/model"
	"sparke-core-be/internal/repository/contract"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type AnalysisResultRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.AnalysisResultMapper
}

func NewAnalysisResultRepository(db *gorm.DB) contract.AnalysisResultRepository {
	return &AnalysisResultRepositoryImpl{
		db:     db,
		mapper: mapper.NewAnalysisResultMapper(),
	}
}

func (r *AnalysisResultRepositoryImpl) Upsert(ctx context.Context, result *entity.AnalysisResult) error {
	m := r.mapper.ToModel(result)
	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "document_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"engine_version", "result_payload", "updated_at"}),
		}).
		Create(m).Error
	if err != nil {
		return err
	}
	*result = *r.mapper.ToEntity(m)
	return nil
}

func (r *AnalysisResultRepositoryImpl) FindByDocumentId(ctx context.Context, documentId uuid.UUID) (*entity.AnalysisResult, error) {
	var m model.AnalysisResult
	err := r.db.WithContext(ctx).Where("document_id = ?", documentId).First(&m).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return r.mapper.ToEntity(&m), nil
}
