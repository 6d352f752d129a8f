package implementation

import (
	"context"
	"errors"

	"sparke-core-be/internal/entity"
	"sparke-core-be/internal/mapper"
	"sparke-core-be/internal/model"
	"sparke-core-be/internal/repository/contract"
	"sparke-core-be/internal/repository/specification"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type InsightSessionRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.InsightSessionMapper
}

func NewInsightSessionRepository(db *gorm.DB) contract.InsightSessionRepository {
	return &InsightSessionRepositoryImpl{
		db:     db,
		mapper: mapper.NewInsightSessionMapper(),
	}
}

func (r *InsightSessionRepositoryImpl) applySpecifications(db *gorm.DB, specs ...specification.Specification) *gorm.DB {
	for _, spec := range specs {
		db = spec.Apply(db)
	}
	return db
}

func (r *InsightSessionRepositoryImpl) Create(ctx context.Context, session *entity.InsightSession) error {
	m := r.mapper.ToModel(session)
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return err
	}
	*session = *r.mapper.ToEntity(m)
	return nil
}

func (r *InsightSessionRepositoryImpl) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.InsightSession, error) {
	var m model.InsightSession
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return r.mapper.ToEntity(&m), nil
}

func (r *InsightSessionRepositoryImpl) UpdateStatusResult(ctx context.Context, id uuid.UUID, status entity.InsightSessionStatus, result []byte) error {
	updates := map[string]interface{}{"status": string(status)}
	if result != nil {
		updates["result"] = datatypes.JSON(result)
	}
	return r.db.WithContext(ctx).
		Model(&model.InsightSession{}).
		Where("id = ?", id).
		Updates(updates).Error
}
