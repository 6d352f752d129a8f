package dto

import (
	"encoding/json"

	"github.com/google/uuid"
)

// UpdateAnalysisRequest is the oracle worker's result callback body.
type UpdateAnalysisRequest struct {
	EngineVersion string          `json:"engineVersion" validate:"required"`
	Result        json.RawMessage `json:"resultPayload" validate:"required"`
}

type UpdateAnalysisResponse struct {
	DocumentId uuid.UUID `json:"documentId"`
	Status     string    `json:"status"`
}

type ReindexChunk struct {
	Index     int       `json:"index" validate:"min=0"`
	Text      string    `json:"text" validate:"required"`
	Embedding []float32 `json:"embedding" validate:"required"`
	Tokens    *int      `json:"tokens"`
}

// ReindexRequest carries one document's full chunk/embedding batch.
type ReindexRequest struct {
	DocumentId uuid.UUID      `json:"documentId" validate:"required"`
	Model      string         `json:"model" validate:"required"`
	Dim        int            `json:"dim" validate:"required,min=1"`
	Chunks     []ReindexChunk `json:"chunks" validate:"required,min=1,dive"`
}

type ReindexResponse struct {
	UpsertedChunks     int `json:"upsertedChunks"`
	UpsertedEmbeddings int `json:"upsertedEmbeddings"`
}

type InternalDocumentItem struct {
	Id         uuid.UUID `json:"id"`
	Filename   string    `json:"filename"`
	StorageKey string    `json:"storageKey"`
	Status     string    `json:"status"`
}

type InternalChunkItem struct {
	DocumentId uuid.UUID `json:"documentId"`
	Index      int       `json:"index"`
	Text       string    `json:"text"`
	Tokens     *int      `json:"tokens"`
}

// AnalysisCompletedMessage travels the in-process bus between the analysis
// callback and the reindex scheduler.
type AnalysisCompletedMessage struct {
	DocumentId uuid.UUID `json:"documentId"`
	SubjectId  uuid.UUID `json:"subjectId"`
}

// UpdateInsightSessionRequest is the worker's session completion callback.
type UpdateInsightSessionRequest struct {
	Status string          `json:"status" validate:"required,oneof=PENDING READY FAILED"`
	Result json.RawMessage `json:"result"`
}

type UpdateInsightSessionResponse struct {
	SessionId uuid.UUID `json:"sessionId"`
	Status    string    `json:"status"`
}
