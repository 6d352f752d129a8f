package service

import (
	"context"
	"encoding/json"
	"math"
	"testing"
	"time"

	"sparke-core-be/internal/dto"
	"sparke-core-be/internal/entity"
	internalEvents "sparke-core-be/internal/events"
	"sparke-core-be/internal/pkg/apperror"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newInternalServiceForTest(uow *fakeUnitOfWork, bus *fakeBusPublisher, broadcaster *internalEvents.Broadcaster) IInternalService {
	if broadcaster == nil {
		broadcaster = internalEvents.NewBroadcaster(nopLogger{})
	}
	return NewInternalService(&fakeFactory{uow: uow}, bus, broadcaster, testDimension, nopLogger{})
}

func validReindexRequest(documentId uuid.UUID) *dto.ReindexRequest {
	tokens := 12
	return &dto.ReindexRequest{
		DocumentId: documentId,
		Model:      "text-embedding-3-small",
		Dim:        testDimension,
		Chunks: []dto.ReindexChunk{
			{Index: 0, Text: "first", Embedding: []float32{1, 0, 0, 0}, Tokens: &tokens},
			{Index: 1, Text: "second", Embedding: []float32{0, 1, 0, 0}},
		},
	}
}

func TestUpdateAnalysis(t *testing.T) {
	subjectId := uuid.New()
	doc := &entity.Document{Id: uuid.New(), SubjectId: subjectId, Status: entity.DocumentStatusProcessing}

	t.Run("stores result, completes document and notifies the bus", func(t *testing.T) {
		uow := newFakeUnitOfWork()
		uow.documents.doc = doc
		bus := &fakeBusPublisher{}
		svc := newInternalServiceForTest(uow, bus, nil)

		res, err := svc.UpdateAnalysis(context.Background(), doc.Id, &dto.UpdateAnalysisRequest{
			EngineVersion: "engine-2.1.0",
			Result:        json.RawMessage(`{"summary":"ok"}`),
		})
		require.NoError(t, err)
		assert.Equal(t, "COMPLETED", res.Status)

		require.Len(t, uow.analyses.upserted, 1)
		assert.Equal(t, "engine-2.1.0", uow.analyses.upserted[0].EngineVersion)
		assert.Equal(t, []entity.DocumentStatus{entity.DocumentStatusCompleted}, uow.documents.statusUpdates)

		require.Len(t, bus.messages, 1)
		var msg dto.AnalysisCompletedMessage
		require.NoError(t, json.Unmarshal(bus.messages[0], &msg))
		assert.Equal(t, doc.Id, msg.DocumentId)
		assert.Equal(t, subjectId, msg.SubjectId)
	})

	t.Run("bus failure does not fail the callback", func(t *testing.T) {
		uow := newFakeUnitOfWork()
		uow.documents.doc = doc
		bus := &fakeBusPublisher{err: assert.AnError}
		svc := newInternalServiceForTest(uow, bus, nil)

		_, err := svc.UpdateAnalysis(context.Background(), doc.Id, &dto.UpdateAnalysisRequest{
			EngineVersion: "engine-2.1.0",
			Result:        json.RawMessage(`{}`),
		})
		assert.NoError(t, err)
		assert.Equal(t, []entity.DocumentStatus{entity.DocumentStatusCompleted}, uow.documents.statusUpdates)
	})

	t.Run("unknown document is not found", func(t *testing.T) {
		uow := newFakeUnitOfWork()
		svc := newInternalServiceForTest(uow, &fakeBusPublisher{}, nil)

		_, err := svc.UpdateAnalysis(context.Background(), uuid.New(), &dto.UpdateAnalysisRequest{
			EngineVersion: "engine-2.1.0",
			Result:        json.RawMessage(`{}`),
		})
		assert.True(t, apperror.IsKind(err, apperror.KindNotFound))
	})
}

func TestReindex(t *testing.T) {
	subjectId := uuid.New()
	doc := &entity.Document{Id: uuid.New(), SubjectId: subjectId, Status: entity.DocumentStatusProcessing}

	t.Run("upserts chunks and embeddings in one transaction", func(t *testing.T) {
		uow := newFakeUnitOfWork()
		uow.documents.doc = doc
		svc := newInternalServiceForTest(uow, &fakeBusPublisher{}, nil)

		res, err := svc.Reindex(context.Background(), subjectId, validReindexRequest(doc.Id))
		require.NoError(t, err)
		assert.Equal(t, 2, res.UpsertedChunks)
		assert.Equal(t, 2, res.UpsertedEmbeddings)

		assert.Equal(t, 1, uow.begun)
		assert.Equal(t, 1, uow.committed)
		require.Len(t, uow.chunks.upserted, 1)
		require.Len(t, uow.embeddings.upserted, 1)

		// Embeddings are keyed by the chunk ids settled during the chunk upsert.
		chunks := uow.chunks.upserted[0]
		embeddings := uow.embeddings.upserted[0]
		for i := range chunks {
			assert.Equal(t, chunks[i].Id, embeddings[i].ChunkId)
			assert.Equal(t, testDimension, embeddings[i].Dim)
		}
	})

	t.Run("validation failures never open a transaction", func(t *testing.T) {
		cases := map[string]func(req *dto.ReindexRequest){
			"dim mismatch": func(req *dto.ReindexRequest) {
				req.Dim = testDimension + 1
				for i := range req.Chunks {
					req.Chunks[i].Embedding = append(req.Chunks[i].Embedding, 0)
				}
			},
			"negative index": func(req *dto.ReindexRequest) {
				req.Chunks[0].Index = -1
			},
			"duplicate index": func(req *dto.ReindexRequest) {
				req.Chunks[1].Index = req.Chunks[0].Index
			},
			"embedding length mismatch": func(req *dto.ReindexRequest) {
				req.Chunks[1].Embedding = []float32{1, 0}
			},
			"non-finite component": func(req *dto.ReindexRequest) {
				req.Chunks[0].Embedding[2] = float32(math.NaN())
			},
		}
		for name, mutate := range cases {
			t.Run(name, func(t *testing.T) {
				uow := newFakeUnitOfWork()
				uow.documents.doc = doc
				svc := newInternalServiceForTest(uow, &fakeBusPublisher{}, nil)

				req := validReindexRequest(doc.Id)
				mutate(req)

				_, err := svc.Reindex(context.Background(), subjectId, req)
				assert.True(t, apperror.IsKind(err, apperror.KindBadRequest))
				assert.Zero(t, uow.begun, "a bad batch must not touch storage")
				assert.Empty(t, uow.chunks.upserted)
				assert.Empty(t, uow.embeddings.upserted)
			})
		}
	})

	t.Run("document outside the subject is not found", func(t *testing.T) {
		uow := newFakeUnitOfWork()
		svc := newInternalServiceForTest(uow, &fakeBusPublisher{}, nil)

		_, err := svc.Reindex(context.Background(), subjectId, validReindexRequest(uuid.New()))
		assert.True(t, apperror.IsKind(err, apperror.KindNotFound))
	})
}

func TestUpdateInsightSession(t *testing.T) {
	subjectId := uuid.New()

	t.Run("terminal transition persists, notifies and closes the stream", func(t *testing.T) {
		session := &entity.InsightSession{
			Id:        uuid.New(),
			SubjectId: subjectId,
			Status:    entity.InsightSessionPending,
			CreatedAt: time.Now(),
		}
		uow := newFakeUnitOfWork()
		uow.sessions.session = session
		broadcaster := internalEvents.NewBroadcaster(nopLogger{})
		svc := newInternalServiceForTest(uow, &fakeBusPublisher{}, broadcaster)

		events, cancel := broadcaster.Subscribe(session.Id)
		defer cancel()

		res, err := svc.UpdateInsightSession(context.Background(), subjectId, session.Id, &dto.UpdateInsightSessionRequest{
			Status: "READY",
			Result: json.RawMessage(`{"insight":"done"}`),
		})
		require.NoError(t, err)
		assert.Equal(t, "READY", res.Status)
		assert.Equal(t, []entity.InsightSessionStatus{entity.InsightSessionReady}, uow.sessions.statuses)

		event, ok := <-events
		require.True(t, ok)
		assert.Equal(t, "READY", event.Status)

		_, ok = <-events
		assert.False(t, ok, "the stream closes after a terminal event")
		assert.Zero(t, broadcaster.SubscriberCount(session.Id))
	})

	t.Run("finished session conflicts", func(t *testing.T) {
		uow := newFakeUnitOfWork()
		uow.sessions.session = &entity.InsightSession{
			Id:        uuid.New(),
			SubjectId: subjectId,
			Status:    entity.InsightSessionReady,
		}
		svc := newInternalServiceForTest(uow, &fakeBusPublisher{}, nil)

		_, err := svc.UpdateInsightSession(context.Background(), subjectId, uow.sessions.session.Id, &dto.UpdateInsightSessionRequest{Status: "FAILED"})
		assert.True(t, apperror.IsKind(err, apperror.KindConflict))
		assert.Empty(t, uow.sessions.statuses)
	})

	t.Run("unknown session is not found", func(t *testing.T) {
		uow := newFakeUnitOfWork()
		svc := newInternalServiceForTest(uow, &fakeBusPublisher{}, nil)

		_, err := svc.UpdateInsightSession(context.Background(), subjectId, uuid.New(), &dto.UpdateInsightSessionRequest{Status: "READY"})
		assert.True(t, apperror.IsKind(err, apperror.KindNotFound))
	})
}
