package model

import (
	"time"

	"github.com/google/uuid"
)

type DocumentChunk struct {
	Id         uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	DocumentId uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_document_chunk_key,priority:1"`
	ChunkIndex int       `gorm:"not null;uniqueIndex:idx_document_chunk_key,priority:2"` // 0-based within the document
	Text       string    `gorm:"type:text;not null"`
	TokenCount *int
	CreatedAt  time.Time `gorm:"autoCreateTime"`
	UpdatedAt  time.Time `gorm:"autoUpdateTime"`
}

func (DocumentChunk) TableName() string {
	return "document_chunks"
}
