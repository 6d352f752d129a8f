package dto

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

type CreateInsightSessionRequest struct {
	DocumentIds []uuid.UUID `json:"documentIds" validate:"required,min=1"`
}

type CreateInsightSessionResponse struct {
	Id     uuid.UUID `json:"id"`
	Status string    `json:"status"`
}

type InsightSessionResponse struct {
	Id          uuid.UUID       `json:"id"`
	SubjectId   uuid.UUID       `json:"subjectId"`
	DocumentIds []uuid.UUID     `json:"documentIds"`
	Status      string          `json:"status"`
	Result      json.RawMessage `json:"result,omitempty"`
	CreatedAt   time.Time       `json:"createdAt"`
	UpdatedAt   *time.Time      `json:"updatedAt"`
}
