package dto

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

type UploadDocumentResponse struct {
	Id     uuid.UUID `json:"id"`
	Status string    `json:"status"`
}

type ReprocessDocumentResponse struct {
	Id     uuid.UUID `json:"id"`
	Status string    `json:"status"`
}

type DocumentItemResponse struct {
	Id        uuid.UUID `json:"id"`
	Filename  string    `json:"filename"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"createdAt"`
}

type DocumentUrlResponse struct {
	Url       string    `json:"url"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// AnalysisResponse returns the worker payload verbatim.
type AnalysisResponse struct {
	DocumentId    uuid.UUID       `json:"documentId"`
	EngineVersion string          `json:"engineVersion"`
	Result        json.RawMessage `json:"resultPayload"`
	CreatedAt     time.Time       `json:"createdAt"`
	UpdatedAt     *time.Time      `json:"updatedAt"`
}
