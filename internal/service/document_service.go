package service

import (
	"context"
	"fmt"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"sparke-core-be/internal/dto"
	"sparke-core-be/internal/entity"
	"sparke-core-be/internal/pkg/apperror"
	"sparke-core-be/internal/pkg/logger"
	"sparke-core-be/internal/repository/specification"
	"sparke-core-be/internal/repository/unitofwork"
	"sparke-core-be/pkg/blob"
	"sparke-core-be/pkg/events"

	"github.com/google/uuid"
)

// JobPublisher is the broker surface the services need; satisfied by
// pkg/nats.Publisher.
type JobPublisher interface {
	Publish(ctx context.Context, event events.Event) error
	Healthy() bool
}

type IDocumentService interface {
	Upload(ctx context.Context, userId, subjectId uuid.UUID, filename string, content []byte) (*dto.UploadDocumentResponse, error)
	Reprocess(ctx context.Context, userId, subjectId, documentId uuid.UUID, forceOcr string) (*dto.ReprocessDocumentResponse, error)
	List(ctx context.Context, userId, subjectId uuid.UUID) ([]*dto.DocumentItemResponse, error)
	GetAnalysis(ctx context.Context, userId, subjectId, documentId uuid.UUID) (*dto.AnalysisResponse, error)
	GetSignedUrl(ctx context.Context, userId, subjectId, documentId uuid.UUID) (*dto.DocumentUrlResponse, error)
}

// Extensions the oracle worker can actually process.
var allowedExtensions = map[string]bool{
	".pdf":  true,
	".txt":  true,
	".md":   true,
	".docx": true,
	".doc":  true,
}

var unsafeFilenameChars = regexp.MustCompile(`[^a-zA-Z0-9._-]`)

const signedUrlTTL = 15 * time.Minute

type documentService struct {
	uowFactory unitofwork.RepositoryFactory
	blobStore  blob.Store
	jobs       JobPublisher
	logger     logger.ILogger
}

func NewDocumentService(
	uowFactory unitofwork.RepositoryFactory,
	blobStore blob.Store,
	jobs JobPublisher,
	log logger.ILogger,
) IDocumentService {
	return &documentService{
		uowFactory: uowFactory,
		blobStore:  blobStore,
		jobs:       jobs,
		logger:     log,
	}
}

func (s *documentService) Upload(ctx context.Context, userId, subjectId uuid.UUID, filename string, content []byte) (*dto.UploadDocumentResponse, error) {
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

	ext := strings.ToLower(filepath.Ext(filename))
	if !allowedExtensions[ext] {
		return nil, apperror.BadRequest(fmt.Sprintf("unsupported file type %q", ext), nil)
	}
	if len(content) == 0 {
		return nil, apperror.BadRequest("uploaded file is empty", nil)
	}

	doc := entity.Document{
		Id:        uuid.New(),
		SubjectId: subjectId,
		Filename:  filename,
		Status:    entity.DocumentStatusUploaded,
		CreatedAt: time.Now(),
	}
	doc.StorageKey = fmt.Sprintf("documents/%s/%s/%s", userId, doc.Id, sanitizeFilename(filename))

	if err := uow.DocumentRepository().Create(ctx, &doc); err != nil {
		return nil, err
	}

	// Blob write strictly before publish: never enqueue work for bytes that
	// don't exist.
	if err := s.blobStore.Put(ctx, doc.StorageKey, content); err != nil {
		s.markFailed(ctx, uow, doc.Id)
		return nil, apperror.Unavailable("document storage failed", err)
	}

	job := events.NewDocumentProcessJob(doc.Id, doc.StorageKey, userId, false)
	if err := s.jobs.Publish(ctx, job); err != nil {
		s.markFailed(ctx, uow, doc.Id)
		return nil, apperror.Unavailable("failed to enqueue processing job", err)
	}

	if err := uow.DocumentRepository().UpdateStatus(ctx, doc.Id, entity.DocumentStatusQueued); err != nil {
		return nil, err
	}

	return &dto.UploadDocumentResponse{
		Id:     doc.Id,
		Status: string(entity.DocumentStatusQueued),
	}, nil
}

// markFailed is the compensating transition for a half-done upload. Its own
// failure is logged and swallowed so the original error stays visible.
func (s *documentService) markFailed(ctx context.Context, uow unitofwork.UnitOfWork, documentId uuid.UUID) {
	if err := uow.DocumentRepository().UpdateStatus(ctx, documentId, entity.DocumentStatusFailed); err != nil {
		s.logger.Error("DocumentService", "Compensating FAILED transition did not apply", map[string]interface{}{
			"document_id": documentId,
			"error":       err.Error(),
		})
	}
}

func (s *documentService) Reprocess(ctx context.Context, userId, subjectId, documentId uuid.UUID, forceOcr string) (*dto.ReprocessDocumentResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	doc, err := s.findOwnedDocument(ctx, uow, userId, subjectId, documentId)
	if err != nil {
		return nil, err
	}

	// The conditional update is the advisory lock: only one caller can move
	// the document out of a terminal state.
	moved, err := uow.DocumentRepository().UpdateStatusWhere(ctx, doc.Id,
		[]entity.DocumentStatus{entity.DocumentStatusCompleted, entity.DocumentStatusFailed},
		entity.DocumentStatusQueued,
	)
	if err != nil {
		return nil, err
	}
	if !moved {
		return nil, apperror.Conflict("document is not in a terminal state", nil)
	}

	job := events.NewDocumentProcessJob(doc.Id, doc.StorageKey, userId, parseTruthy(forceOcr))
	if err := s.jobs.Publish(ctx, job); err != nil {
		s.markFailed(ctx, uow, doc.Id)
		return nil, apperror.Unavailable("failed to enqueue processing job", err)
	}

	return &dto.ReprocessDocumentResponse{
		Id:     doc.Id,
		Status: string(entity.DocumentStatusQueued),
	}, nil
}

func (s *documentService) List(ctx context.Context, userId, subjectId uuid.UUID) ([]*dto.DocumentItemResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	if err := s.requireOwnedSubject(ctx, uow, userId, subjectId); err != nil {
		return nil, err
	}

	docs, err := uow.DocumentRepository().FindAll(ctx,
		specification.BySubjectId{SubjectID: subjectId},
		specification.OrderBy{Field: "created_at", Desc: true},
	)
	if err != nil {
		return nil, err
	}

	items := make([]*dto.DocumentItemResponse, len(docs))
	for i, d := range docs {
		items[i] = &dto.DocumentItemResponse{
			Id:        d.Id,
			Filename:  d.Filename,
			Status:    string(d.Status),
			CreatedAt: d.CreatedAt,
		}
	}
	return items, nil
}

func (s *documentService) GetAnalysis(ctx context.Context, userId, subjectId, documentId uuid.UUID) (*dto.AnalysisResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	doc, err := s.findOwnedDocument(ctx, uow, userId, subjectId, documentId)
	if err != nil {
		return nil, err
	}

	// A result row left behind by an earlier run is never served while the
	// document is not COMPLETED.
	if doc.Status != entity.DocumentStatusCompleted {
		return nil, apperror.NotFound("analysis not available", nil)
	}

	result, err := uow.AnalysisResultRepository().FindByDocumentId(ctx, doc.Id)
	if err != nil {
		return nil, err
	}
	if result == nil {
		return nil, apperror.NotFound("analysis not available", nil)
	}

	return &dto.AnalysisResponse{
		DocumentId:    result.DocumentId,
		EngineVersion: result.EngineVersion,
		Result:        result.ResultPayload,
		CreatedAt:     result.CreatedAt,
		UpdatedAt:     result.UpdatedAt,
	}, nil
}

func (s *documentService) GetSignedUrl(ctx context.Context, userId, subjectId, documentId uuid.UUID) (*dto.DocumentUrlResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	doc, err := s.findOwnedDocument(ctx, uow, userId, subjectId, documentId)
	if err != nil {
		return nil, err
	}

	signed, err := s.blobStore.SignedURL(ctx, doc.StorageKey, signedUrlTTL)
	if err != nil {
		return nil, apperror.Unavailable("document storage failed", err)
	}

	return &dto.DocumentUrlResponse{
		Url:       signed.Url,
		ExpiresAt: signed.ExpiresAt,
	}, nil
}

func (s *documentService) requireOwnedSubject(ctx context.Context, uow unitofwork.UnitOfWork, userId, subjectId uuid.UUID) error {
	subject, err := uow.SubjectRepository().FindOne(ctx,
		specification.ByID{ID: subjectId},
		specification.UserOwnedBy{UserID: userId},
		specification.NotArchived{},
	)
	if err != nil {
		return err
	}
	if subject == nil {
		// Absent and not-owned are deliberately the same answer.
		return apperror.NotFound("subject not found", nil)
	}
	return nil
}

func (s *documentService) findOwnedDocument(ctx context.Context, uow unitofwork.UnitOfWork, userId, subjectId, documentId uuid.UUID) (*entity.Document, error) {
	if err := s.requireOwnedSubject(ctx, uow, userId, subjectId); err != nil {
		return nil, err
	}
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

// parseTruthy accepts the documented forceOcr spellings; anything else,
// including absent, is false.
func parseTruthy(value string) bool {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "1", "true", "yes":
		return true
	}
	return false
}

func sanitizeFilename(filename string) string {
	base := filepath.Base(filename)
	cleaned := unsafeFilenameChars.ReplaceAllString(base, "_")
	if cleaned == "" || cleaned == "." || cleaned == ".." {
		return "file"
	}
	return cleaned
}
