package contract

import (
	"context"

	"sparke-core-be/internal/entity"
	"sparke-core-be/internal/repository/specification"
)

// SubjectRepository is read-only here: subject CRUD lives in an external
// service, the core only resolves ownership.
type SubjectRepository interface {
	FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Subject, error)
	Count(ctx context.Context, specs ...specification.Specification) (int64, error)
}
