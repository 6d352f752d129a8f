package entity

import (
	"time"

	"github.com/google/uuid"
)

type InsightSessionStatus string

const (
	InsightSessionPending InsightSessionStatus = "PENDING"
	InsightSessionReady   InsightSessionStatus = "READY"
	InsightSessionFailed  InsightSessionStatus = "FAILED"
)

func (s InsightSessionStatus) IsTerminal() bool {
	return s == InsightSessionReady || s == InsightSessionFailed
}

// InsightSession is created PENDING and transitions exactly once to READY or
// FAILED; no further mutation after a terminal status.
type InsightSession struct {
	Id          uuid.UUID
	SubjectId   uuid.UUID
	DocumentIds []uuid.UUID
	Status      InsightSessionStatus
	Result      []byte // Opaque JSON from the worker
	CreatedAt   time.Time
	UpdatedAt   *time.Time
}
