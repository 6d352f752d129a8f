package contract

import (
	"context"

	"sparke-core-be/internal/entity"

	"github.com/google/uuid"
)

type AnalysisResultRepository interface {
	// Upsert overwrites engineVersion/resultPayload on conflict by document.
	Upsert(ctx context.Context, result *entity.AnalysisResult) error
	FindByDocumentId(ctx context.Context, documentId uuid.UUID) (*entity.AnalysisResult, error)
}
