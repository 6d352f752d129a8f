package service

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"time"

	"sparke-core-be/internal/dto"
	"sparke-core-be/internal/entity"
	internalEvents "sparke-core-be/internal/events"
	"sparke-core-be/internal/pkg/apperror"
	"sparke-core-be/internal/pkg/logger"
	"sparke-core-be/internal/repository/specification"
	"sparke-core-be/internal/repository/unitofwork"

	"github.com/google/uuid"
)

// IInternalService is the surface behind the HMAC trust boundary: only the
// oracle worker reaches it.
type IInternalService interface {
	UpdateAnalysis(ctx context.Context, documentId uuid.UUID, req *dto.UpdateAnalysisRequest) (*dto.UpdateAnalysisResponse, error)
	Reindex(ctx context.Context, subjectId uuid.UUID, req *dto.ReindexRequest) (*dto.ReindexResponse, error)
	ListDocuments(ctx context.Context, subjectId uuid.UUID) ([]*dto.InternalDocumentItem, error)
	ListChunks(ctx context.Context, subjectId uuid.UUID) ([]*dto.InternalChunkItem, error)
	UpdateInsightSession(ctx context.Context, subjectId, sessionId uuid.UUID, req *dto.UpdateInsightSessionRequest) (*dto.UpdateInsightSessionResponse, error)
}

type internalService struct {
	uowFactory  unitofwork.RepositoryFactory
	publisher   IPublisherService
	broadcaster *internalEvents.Broadcaster
	dimension   int
	logger      logger.ILogger
}

func NewInternalService(
	uowFactory unitofwork.RepositoryFactory,
	publisher IPublisherService,
	broadcaster *internalEvents.Broadcaster,
	dimension int,
	log logger.ILogger,
) IInternalService {
	return &internalService{
		uowFactory:  uowFactory,
		publisher:   publisher,
		broadcaster: broadcaster,
		dimension:   dimension,
		logger:      log,
	}
}

func (s *internalService) UpdateAnalysis(ctx context.Context, documentId uuid.UUID, req *dto.UpdateAnalysisRequest) (*dto.UpdateAnalysisResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	doc, err := uow.DocumentRepository().FindOne(ctx, specification.ByID{ID: documentId})
	if err != nil {
		return nil, err
	}
	if doc == nil {
		return nil, apperror.NotFound("document not found", nil)
	}

	result := entity.AnalysisResult{
		Id:            uuid.New(),
		DocumentId:    doc.Id,
		EngineVersion: req.EngineVersion,
		ResultPayload: []byte(req.Result),
		CreatedAt:     time.Now(),
	}
	if err := uow.AnalysisResultRepository().Upsert(ctx, &result); err != nil {
		return nil, err
	}

	if err := uow.DocumentRepository().UpdateStatus(ctx, doc.Id, entity.DocumentStatusCompleted); err != nil {
		return nil, err
	}

	// Downstream reindex is auxiliary; a bus failure must not fail the
	// worker's callback.
	msg, _ := json.Marshal(dto.AnalysisCompletedMessage{
		DocumentId: doc.Id,
		SubjectId:  doc.SubjectId,
	})
	if err := s.publisher.Publish(ctx, msg); err != nil {
		s.logger.Warn("InternalService", "Failed to publish analysis-completed message", map[string]interface{}{
			"document_id": doc.Id,
			"error":       err.Error(),
		})
	}

	return &dto.UpdateAnalysisResponse{
		DocumentId: doc.Id,
		Status:     string(entity.DocumentStatusCompleted),
	}, nil
}

func (s *internalService) Reindex(ctx context.Context, subjectId uuid.UUID, req *dto.ReindexRequest) (*dto.ReindexResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	doc, err := s.findSubjectDocument(ctx, uow, subjectId, req.DocumentId)
	if err != nil {
		return nil, err
	}

	// All validation happens before the transaction: a bad batch never
	// touches storage.
	if err := s.validateBatch(req); err != nil {
		return nil, err
	}

	now := time.Now()
	chunks := make([]*entity.DocumentChunk, len(req.Chunks))
	for i, c := range req.Chunks {
		chunks[i] = &entity.DocumentChunk{
			Id:         uuid.New(),
			DocumentId: doc.Id,
			ChunkIndex: c.Index,
			Text:       c.Text,
			TokenCount: c.Tokens,
			CreatedAt:  now,
		}
	}

	if err := uow.Begin(ctx); err != nil {
		return nil, err
	}
	defer uow.Rollback()

	if err := uow.DocumentChunkRepository().UpsertBatch(ctx, chunks); err != nil {
		return nil, err
	}

	// Chunk ids are settled now (existing rows kept theirs), so the
	// embeddings can be keyed.
	embeddings := make([]*entity.ChunkEmbedding, len(chunks))
	for i, c := range chunks {
		embeddings[i] = &entity.ChunkEmbedding{
			Id:        uuid.New(),
			ChunkId:   c.Id,
			Model:     req.Model,
			Dim:       req.Dim,
			Vector:    req.Chunks[i].Embedding,
			CreatedAt: now,
		}
	}
	if err := uow.ChunkEmbeddingRepository().UpsertBatch(ctx, embeddings); err != nil {
		return nil, err
	}

	if err := uow.Commit(); err != nil {
		return nil, err
	}

	return &dto.ReindexResponse{
		UpsertedChunks:     len(chunks),
		UpsertedEmbeddings: len(embeddings),
	}, nil
}

func (s *internalService) validateBatch(req *dto.ReindexRequest) error {
	if req.Dim != s.dimension {
		return apperror.BadRequest(fmt.Sprintf("dim %d does not match configured dimension %d", req.Dim, s.dimension), nil)
	}
	seen := make(map[int]bool, len(req.Chunks))
	for _, c := range req.Chunks {
		if c.Index < 0 {
			return apperror.BadRequest(fmt.Sprintf("chunk index %d is negative", c.Index), nil)
		}
		if seen[c.Index] {
			return apperror.BadRequest(fmt.Sprintf("chunk index %d appears more than once", c.Index), nil)
		}
		seen[c.Index] = true
		if len(c.Embedding) != req.Dim {
			return apperror.BadRequest(fmt.Sprintf("chunk %d embedding length %d does not match dim %d", c.Index, len(c.Embedding), req.Dim), nil)
		}
		for _, v := range c.Embedding {
			f := float64(v)
			if math.IsNaN(f) || math.IsInf(f, 0) {
				return apperror.BadRequest(fmt.Sprintf("chunk %d embedding contains a non-finite component", c.Index), nil)
			}
		}
	}
	return nil
}

func (s *internalService) ListDocuments(ctx context.Context, subjectId uuid.UUID) ([]*dto.InternalDocumentItem, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	docs, err := uow.DocumentRepository().FindAll(ctx,
		specification.BySubjectId{SubjectID: subjectId},
		specification.OrderBy{Field: "created_at", Desc: false},
	)
	if err != nil {
		return nil, err
	}

	items := make([]*dto.InternalDocumentItem, len(docs))
	for i, d := range docs {
		items[i] = &dto.InternalDocumentItem{
			Id:         d.Id,
			Filename:   d.Filename,
			StorageKey: d.StorageKey,
			Status:     string(d.Status),
		}
	}
	return items, nil
}

func (s *internalService) ListChunks(ctx context.Context, subjectId uuid.UUID) ([]*dto.InternalChunkItem, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	docs, err := uow.DocumentRepository().FindAll(ctx,
		specification.BySubjectId{SubjectID: subjectId},
		specification.OrderBy{Field: "created_at", Desc: false},
	)
	if err != nil {
		return nil, err
	}

	var items []*dto.InternalChunkItem
	for _, d := range docs {
		chunks, err := uow.DocumentChunkRepository().FindAll(ctx,
			specification.ByDocumentId{DocumentID: d.Id},
			specification.OrderBy{Field: "chunk_index", Desc: false},
		)
		if err != nil {
			return nil, err
		}
		for _, c := range chunks {
			items = append(items, &dto.InternalChunkItem{
				DocumentId: c.DocumentId,
				Index:      c.ChunkIndex,
				Text:       c.Text,
				Tokens:     c.TokenCount,
			})
		}
	}
	return items, nil
}

func (s *internalService) UpdateInsightSession(ctx context.Context, subjectId, sessionId uuid.UUID, req *dto.UpdateInsightSessionRequest) (*dto.UpdateInsightSessionResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	session, err := uow.InsightSessionRepository().FindOne(ctx,
		specification.ByID{ID: sessionId},
		specification.BySubjectId{SubjectID: subjectId},
	)
	if err != nil {
		return nil, err
	}
	if session == nil {
		return nil, apperror.NotFound("insight session not found", nil)
	}

	status := entity.InsightSessionStatus(req.Status)
	if session.Status.IsTerminal() {
		return nil, apperror.Conflict("insight session already finished", nil)
	}

	if err := uow.InsightSessionRepository().UpdateStatusResult(ctx, session.Id, status, []byte(req.Result)); err != nil {
		return nil, err
	}

	s.broadcaster.Emit(internalEvents.SessionEvent{
		SessionId:  session.Id,
		Status:     string(status),
		Result:     req.Result,
		OccurredAt: time.Now(),
	})

	return &dto.UpdateInsightSessionResponse{
		SessionId: session.Id,
		Status:    string(status),
	}, nil
}

func (s *internalService) findSubjectDocument(ctx context.Context, uow unitofwork.UnitOfWork, subjectId, documentId uuid.UUID) (*entity.Document, error) {
	doc, err := uow.DocumentRepository().FindOne(ctx,
		specification.ByID{ID: documentId},
		specification.BySubjectId{SubjectID: subjectId},
	)
	if err != nil {
		return nil, err
	}
	if doc == nil {
		return nil, apperror.NotFound("document not found", nil)
	}
	return doc, nil
}
