package mapper

import (
	"time"

	"sparke-core-be/internal/entity"
	"sparke-core-be/internal/model"

	"gorm.io/datatypes"
)

type DocumentMapper struct{}

func NewDocumentMapper() *DocumentMapper {
	return &DocumentMapper{}
}

func (m *DocumentMapper) ToEntity(d *model.Document) *entity.Document {
	if d == nil {
		return nil
	}
	return &entity.Document{
		Id:         d.Id,
		SubjectId:  d.SubjectId,
		Filename:   d.Filename,
		StorageKey: d.StorageKey,
		Status:     entity.DocumentStatus(d.Status),
		CreatedAt:  d.CreatedAt,
		UpdatedAt:  nonZeroTime(d.UpdatedAt),
	}
}

func (m *DocumentMapper) ToModel(d *entity.Document) *model.Document {
	if d == nil {
		return nil
	}
	var updatedAt time.Time
	if d.UpdatedAt != nil {
		updatedAt = *d.UpdatedAt
	}
	return &model.Document{
		Id:         d.Id,
		SubjectId:  d.SubjectId,
		Filename:   d.Filename,
		StorageKey: d.StorageKey,
		Status:     string(d.Status),
		CreatedAt:  d.CreatedAt,
		UpdatedAt:  updatedAt,
	}
}

func (m *DocumentMapper) ToEntities(docs []*model.Document) []*entity.Document {
	entities := make([]*entity.Document, len(docs))
	for i, d := range docs {
		entities[i] = m.ToEntity(d)
	}
	return entities
}

type AnalysisResultMapper struct{}

func NewAnalysisResultMapper() *AnalysisResultMapper {
	return &AnalysisResultMapper{}
}

func (m *AnalysisResultMapper) ToEntity(r *model.AnalysisResult) *entity.AnalysisResult {
	if r == nil {
		return nil
	}
	return &entity.AnalysisResult{
		Id:            r.Id,
		DocumentId:    r.DocumentId,
		EngineVersion: r.EngineVersion,
		ResultPayload: []byte(r.ResultPayload),
		CreatedAt:     r.CreatedAt,
		UpdatedAt:     nonZeroTime(r.UpdatedAt),
	}
}

func (m *AnalysisResultMapper) ToModel(r *entity.AnalysisResult) *model.AnalysisResult {
	if r == nil {
		return nil
	}
	var updatedAt time.Time
	if r.UpdatedAt != nil {
		updatedAt = *r.UpdatedAt
	}
	return &model.AnalysisResult{
		Id:            r.Id,
		DocumentId:    r.DocumentId,
		EngineVersion: r.EngineVersion,
		ResultPayload: datatypes.JSON(r.ResultPayload),
		CreatedAt:     r.CreatedAt,
		UpdatedAt:     updatedAt,
	}
}

func nonZeroTime(t time.Time) *time.Time {
	if t.IsZero() {
		return nil
	}
	out := t
	return &out
}
