package service

import (
	"context"
	"time"

	"sparke-core-be/internal/dto"
	"sparke-core-be/internal/entity"
	internalEvents "sparke-core-be/internal/events"
	"sparke-core-be/internal/pkg/apperror"
	"sparke-core-be/internal/pkg/logger"
	"sparke-core-be/internal/repository/specification"
	"sparke-core-be/internal/repository/unitofwork"
	"sparke-core-be/pkg/events"

	"github.com/google/uuid"
)

type IInsightService interface {
	Create(ctx context.Context, userId, subjectId uuid.UUID, req *dto.CreateInsightSessionRequest) (*dto.CreateInsightSessionResponse, error)
	Get(ctx context.Context, userId, sessionId uuid.UUID) (*dto.InsightSessionResponse, error)
	Stream(ctx context.Context, userId, sessionId uuid.UUID) (*dto.InsightSessionResponse, <-chan internalEvents.SessionEvent, func(), error)
}

type insightService struct {
	uowFactory  unitofwork.RepositoryFactory
	jobs        JobPublisher
	broadcaster *internalEvents.Broadcaster
	logger      logger.ILogger
}

func NewInsightService(
	uowFactory unitofwork.RepositoryFactory,
	jobs JobPublisher,
	broadcaster *internalEvents.Broadcaster,
	log logger.ILogger,
) IInsightService {
	return &insightService{
		uowFactory:  uowFactory,
		jobs:        jobs,
		broadcaster: broadcaster,
		logger:      log,
	}
}

func (s *insightService) Create(ctx context.Context, userId, subjectId uuid.UUID, req *dto.CreateInsightSessionRequest) (*dto.CreateInsightSessionResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	subject, err := uow.SubjectRepository().FindOne(ctx,
		specification.ByID{ID: subjectId},
		specification.UserOwnedBy{UserID: userId},
		specification.NotArchived{},
	)
	if err != nil {
		return nil, err
	}
	if subject == nil {
		return nil, apperror.NotFound("subject not found", nil)
	}

	documentIds := dedupe(req.DocumentIds)
	count, err := uow.DocumentRepository().Count(ctx,
		specification.ByIDs{IDs: documentIds},
		specification.BySubjectId{SubjectID: subjectId},
	)
	if err != nil {
		return nil, err
	}
	if count != int64(len(documentIds)) {
		return nil, apperror.NotFound("document not found", nil)
	}

	session := entity.InsightSession{
		Id:          uuid.New(),
		SubjectId:   subjectId,
		DocumentIds: documentIds,
		Status:      entity.InsightSessionPending,
		CreatedAt:   time.Now(),
	}
	if err := uow.InsightSessionRepository().Create(ctx, &session); err != nil {
		return nil, err
	}

	// A publish failure leaves the session PENDING; the operator can re-drive
	// the job, so the create still succeeds.
	job := events.NewInsightSessionJob(subjectId, session.Id, documentIds)
	if err := s.jobs.Publish(ctx, job); err != nil {
		s.logger.Warn("InsightService", "Failed to enqueue insight job, session stays PENDING", map[string]interface{}{
			"session_id": session.Id,
			"error":      err.Error(),
		})
	}

	return &dto.CreateInsightSessionResponse{
		Id:     session.Id,
		Status: string(session.Status),
	}, nil
}

func (s *insightService) Get(ctx context.Context, userId, sessionId uuid.UUID) (*dto.InsightSessionResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	session, err := s.findOwnedSession(ctx, uow, userId, sessionId)
	if err != nil {
		return nil, err
	}
	return toInsightSessionResponse(session), nil
}

// Stream hands back the current snapshot plus a live event channel. For a
// session that already finished, the channel arrives closed so the consumer
// drains the snapshot and terminates.
func (s *insightService) Stream(ctx context.Context, userId, sessionId uuid.UUID) (*dto.InsightSessionResponse, <-chan internalEvents.SessionEvent, func(), error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	session, err := s.findOwnedSession(ctx, uow, userId, sessionId)
	if err != nil {
		return nil, nil, nil, err
	}

	if session.Status.IsTerminal() {
		ch := make(chan internalEvents.SessionEvent)
		close(ch)
		return toInsightSessionResponse(session), ch, func() {}, nil
	}

	ch, cancel := s.broadcaster.Subscribe(session.Id)

	// The worker may have finished between the snapshot read and the
	// subscription; that terminal emit went to nobody. Re-read so the caller
	// is not parked on a stream that will never close.
	latest, err := uow.InsightSessionRepository().FindOne(ctx, specification.ByID{ID: session.Id})
	if err != nil {
		cancel()
		return nil, nil, nil, err
	}
	if latest != nil && latest.Status.IsTerminal() {
		cancel()
		closed := make(chan internalEvents.SessionEvent)
		close(closed)
		return toInsightSessionResponse(latest), closed, func() {}, nil
	}

	return toInsightSessionResponse(session), ch, cancel, nil
}

func (s *insightService) findOwnedSession(ctx context.Context, uow unitofwork.UnitOfWork, userId, sessionId uuid.UUID) (*entity.InsightSession, error) {
	session, err := uow.InsightSessionRepository().FindOne(ctx, specification.ByID{ID: sessionId})
	if err != nil {
		return nil, err
	}
	if session == nil {
		return nil, apperror.NotFound("insight session not found", nil)
	}

	subject, err := uow.SubjectRepository().FindOne(ctx,
		specification.ByID{ID: session.SubjectId},
		specification.UserOwnedBy{UserID: userId},
	)
	if err != nil {
		return nil, err
	}
	if subject == nil {
		return nil, apperror.NotFound("insight session not found", nil)
	}
	return session, nil
}

func toInsightSessionResponse(session *entity.InsightSession) *dto.InsightSessionResponse {
	return &dto.InsightSessionResponse{
		Id:          session.Id,
		SubjectId:   session.SubjectId,
		DocumentIds: session.DocumentIds,
		Status:      string(session.Status),
		Result:      session.Result,
		CreatedAt:   session.CreatedAt,
		UpdatedAt:   session.UpdatedAt,
	}
}

func dedupe(ids []uuid.UUID) []uuid.UUID {
	seen := make(map[uuid.UUID]bool, len(ids))
	out := make([]uuid.UUID, 0, len(ids))
	for _, id := range ids {
		if !seen[id] {
			seen[id] = true
			out = append(out, id)
		}
	}
	return out
}
