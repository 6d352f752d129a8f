package entity

import (
	"time"

	"github.com/google/uuid"
)

type DocumentStatus string

const (
	DocumentStatusUploaded   DocumentStatus = "UPLOADED"
	DocumentStatusQueued     DocumentStatus = "QUEUED"
	DocumentStatusProcessing DocumentStatus = "PROCESSING"
	DocumentStatusCompleted  DocumentStatus = "COMPLETED"
	DocumentStatusFailed     DocumentStatus = "FAILED"
)

// IsTerminal reports whether no further automatic transition occurs without
// an explicit reprocess.
func (s DocumentStatus) IsTerminal() bool {
	return s == DocumentStatusCompleted || s == DocumentStatusFailed
}

type Document struct {
	Id         uuid.UUID
	SubjectId  uuid.UUID
	Filename   string
	StorageKey string // Assigned at creation, never changes
	Status     DocumentStatus
	CreatedAt  time.Time
	UpdatedAt  *time.Time
}

// AnalysisResult is one-to-one with a Document. It is only readable once the
// document is COMPLETED; a row left behind by a failed run is never served.
type AnalysisResult struct {
	Id            uuid.UUID
	DocumentId    uuid.UUID
	EngineVersion string
	ResultPayload []byte // Opaque JSON, stored and returned verbatim
	CreatedAt     time.Time
	UpdatedAt     *time.Time
}
