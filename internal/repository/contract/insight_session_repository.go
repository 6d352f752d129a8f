package contract

import (
	"context"

	"sparke-core-be/internal/entity"
	"sparke-core-be/internal/repository/specification"

	"github.com/google/uuid"
)

type InsightSessionRepository interface {
	Create(ctx context.Context, session *entity.InsightSession) error
	FindOne(ctx context.Context, specs ...specification.Specification) (*entity.InsightSession, error)

	// UpdateStatusResult sets the status and, when result is non-nil, the
	// opaque result payload.
	UpdateStatusResult(ctx context.Context, id uuid.UUID, status entity.InsightSessionStatus, result []byte) error
}
