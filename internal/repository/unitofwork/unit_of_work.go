package unitofwork

import (
	"context"

	"sparke-core-be/internal/repository/contract"
)

type UnitOfWork interface {
	Begin(ctx context.Context) error
	Commit() error
	Rollback() error

	SubjectRepository() contract.SubjectRepository
	DocumentRepository() contract.DocumentRepository
	AnalysisResultRepository() contract.AnalysisResultRepository
	DocumentChunkRepository() contract.DocumentChunkRepository
	ChunkEmbeddingRepository() contract.ChunkEmbeddingRepository
	InsightSessionRepository() contract.InsightSessionRepository
}
