package mapper

import (
	"encoding/json"
	"time"

	"sparke-core-be/internal/entity"
	"sparke-core-be/internal/model"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

type InsightSessionMapper struct{}

func NewInsightSessionMapper() *InsightSessionMapper {
	return &InsightSessionMapper{}
}

func (m *InsightSessionMapper) ToEntity(s *model.InsightSession) *entity.InsightSession {
	if s == nil {
		return nil
	}
	var documentIds []uuid.UUID
	if len(s.DocumentIds) > 0 {
		// Malformed stored ids are treated as empty rather than failing reads.
		_ = json.Unmarshal(s.DocumentIds, &documentIds)
	}
	return &entity.InsightSession{
		Id:          s.Id,
		SubjectId:   s.SubjectId,
		DocumentIds: documentIds,
		Status:      entity.InsightSessionStatus(s.Status),
		Result:      []byte(s.Result),
		CreatedAt:   s.CreatedAt,
		UpdatedAt:   nonZeroTime(s.UpdatedAt),
	}
}

func (m *InsightSessionMapper) ToModel(s *entity.InsightSession) *model.InsightSession {
	if s == nil {
		return nil
	}
	var updatedAt time.Time
	if s.UpdatedAt != nil {
		updatedAt = *s.UpdatedAt
	}
	documentIds, _ := json.Marshal(s.DocumentIds)
	return &model.InsightSession{
		Id:          s.Id,
		SubjectId:   s.SubjectId,
		DocumentIds: datatypes.JSON(documentIds),
		Status:      string(s.Status),
		Result:      datatypes.JSON(s.Result),
		CreatedAt:   s.CreatedAt,
		UpdatedAt:   updatedAt,
	}
}
