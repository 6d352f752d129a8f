package mapper

import (
	"sparke-core-be/internal/entity"
	"sparke-core-be/internal/model"
)

type SubjectMapper struct{}

func NewSubjectMapper() *SubjectMapper {
	return &SubjectMapper{}
}

func (m *SubjectMapper) ToEntity(s *model.Subject) *entity.Subject {
	if s == nil {
		return nil
	}
	return &entity.Subject{
		Id:         s.Id,
		Name:       s.Name,
		UserId:     s.UserId,
		ArchivedAt: s.ArchivedAt,
		CreatedAt:  s.CreatedAt,
		UpdatedAt:  nonZeroTime(s.UpdatedAt),
	}
}
