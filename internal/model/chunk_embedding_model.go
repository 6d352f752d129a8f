package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/pgvector/pgvector-go"
)

type ChunkEmbedding struct {
	Id        uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	ChunkId   uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex"` // One embedding per chunk
	Model     string          `gorm:"type:varchar(128);not null"`
	Dim       int             `gorm:"not null"`
	Embedding pgvector.Vector `gorm:"type:vector(1536)"` // Must match ENGINE_DIMENSION
	CreatedAt time.Time       `gorm:"autoCreateTime"`
}

func (ChunkEmbedding) TableName() string {
	return "chunk_embeddings"
}
