package contract

import (
	"context"

	"sparke-core-be/internal/entity"
	"sparke-core-be/internal/repository/specification"

	"github.com/google/uuid"
)

type DocumentRepository interface {
	Create(ctx context.Context, doc *entity.Document) error
	FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Document, error)
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Document, error)
	Count(ctx context.Context, specs ...specification.Specification) (int64, error)

	// UpdateStatus moves a document unconditionally (compensating cleanup,
	// trusted callback transitions).
	UpdateStatus(ctx context.Context, id uuid.UUID, status entity.DocumentStatus) error

	// UpdateStatusWhere performs a conditional transition: the row only moves
	// when its current status is one of `from`. Returns false when no row
	// matched, which serializes concurrent reprocess attempts at the storage
	// layer.
	UpdateStatusWhere(ctx context.Context, id uuid.UUID, from []entity.DocumentStatus, to entity.DocumentStatus) (bool, error)
}
