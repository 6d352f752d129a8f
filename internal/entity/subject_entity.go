package entity

import (
	"time"

	"github.com/google/uuid"
)

// Subject is owned by the external subject-CRUD surface; the core only reads
// it for ownership checks.
type Subject struct {
	Id         uuid.UUID
	Name       string
	UserId     uuid.UUID
	ArchivedAt *time.Time
	CreatedAt  time.Time
	UpdatedAt  *time.Time
}
