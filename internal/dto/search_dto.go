package dto

import (
	"time"

	"github.com/google/uuid"
)

type SearchRequest struct {
	Query     string   `json:"query" validate:"required,min=2"`
	K         int      `json:"k"`
	Threshold *float64 `json:"threshold"`
	Offset    int      `json:"offset"`
}

type SearchResultItem struct {
	DocumentId       uuid.UUID  `json:"documentId"`
	DocumentFilename string     `json:"documentFilename"`
	ChunkIndex       int        `json:"chunkIndex"`
	Snippet          string     `json:"snippet"`
	Score            float64    `json:"score"`
	CreatedAt        *time.Time `json:"createdAt,omitempty"`
	UpdatedAt        *time.Time `json:"updatedAt,omitempty"`
}

type SearchResponse struct {
	Results []SearchResultItem `json:"results"`
	// Reserved for cursor paging; always null, offset paging only.
	NextCursor *string `json:"nextCursor"`
	TookMs     int64   `json:"tookMs"`
}
