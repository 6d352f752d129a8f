package events

import (
	"time"

	"github.com/google/uuid"
)

// Job type codes consumed by the oracle worker.
const (
	JobDocumentProcess = "DOCUMENT_PROCESS"
	JobSubjectReindex  = "SUBJECT_REINDEX"
	JobInsightSession  = "INSIGHT_SESSION"
)

func NewDocumentProcessJob(documentId uuid.UUID, storageKey string, ownerId uuid.UUID, forceOcr bool) Event {
	data := map[string]interface{}{
		"documentId": documentId.String(),
		"storageKey": storageKey,
		"ownerId":    ownerId.String(),
	}
	if forceOcr {
		data["forceOcr"] = true
	}
	return BaseEvent{
		Type:       JobDocumentProcess,
		Data:       data,
		OccurredAt: time.Now(),
	}
}

func NewSubjectReindexJob(subjectId uuid.UUID) Event {
	return BaseEvent{
		Type: JobSubjectReindex,
		Data: map[string]interface{}{
			"subjectId": subjectId.String(),
		},
		OccurredAt: time.Now(),
	}
}

func NewInsightSessionJob(subjectId, sessionId uuid.UUID, documentIds []uuid.UUID) Event {
	ids := make([]string, len(documentIds))
	for i, id := range documentIds {
		ids[i] = id.String()
	}
	return BaseEvent{
		Type: JobInsightSession,
		Data: map[string]interface{}{
			"subjectId":   subjectId.String(),
			"sessionId":   sessionId.String(),
			"documentIds": ids,
		},
		OccurredAt: time.Now(),
	}
}
