package service

import (
	"context"
	"time"

	"sparke-core-be/internal/entity"
	"sparke-core-be/internal/repository/contract"
	"sparke-core-be/internal/repository/specification"
	"sparke-core-be/internal/repository/unitofwork"
	"sparke-core-be/pkg/blob"
	"sparke-core-be/pkg/events"

	"github.com/google/uuid"
)

// In-memory doubles for the repository and collaborator surfaces. Each fake
// records the calls the tests need to assert on and nothing more.

type nopLogger struct{}

func (nopLogger) Debug(module, message string, details map[string]interface{}) {}
func (nopLogger) Info(module, message string, details map[string]interface{})  {}
func (nopLogger) Warn(module, message string, details map[string]interface{})  {}
func (nopLogger) Error(module, message string, details map[string]interface{}) {}
func (nopLogger) Sync() error                                                  { return nil }

type fakeSubjectRepo struct {
	subject *entity.Subject
	err     error
}

func (f *fakeSubjectRepo) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Subject, error) {
	return f.subject, f.err
}

func (f *fakeSubjectRepo) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	if f.subject == nil {
		return 0, f.err
	}
	return 1, f.err
}

type fakeDocumentRepo struct {
	doc  *entity.Document
	docs []*entity.Document

	created       []*entity.Document
	statusUpdates []entity.DocumentStatus
	createErr     error
	updateErr     error

	whereMoved bool
	whereFrom  []entity.DocumentStatus
	whereTo    entity.DocumentStatus

	countResult int64
}

func (f *fakeDocumentRepo) Create(ctx context.Context, doc *entity.Document) error {
	if f.createErr != nil {
		return f.createErr
	}
	f.created = append(f.created, doc)
	return nil
}

func (f *fakeDocumentRepo) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Document, error) {
	return f.doc, nil
}

func (f *fakeDocumentRepo) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Document, error) {
	return f.docs, nil
}

func (f *fakeDocumentRepo) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	return f.countResult, nil
}

func (f *fakeDocumentRepo) UpdateStatus(ctx context.Context, id uuid.UUID, status entity.DocumentStatus) error {
	if f.updateErr != nil {
		return f.updateErr
	}
	f.statusUpdates = append(f.statusUpdates, status)
	return nil
}

func (f *fakeDocumentRepo) UpdateStatusWhere(ctx context.Context, id uuid.UUID, from []entity.DocumentStatus, to entity.DocumentStatus) (bool, error) {
	f.whereFrom = from
	f.whereTo = to
	if f.whereMoved {
		f.statusUpdates = append(f.statusUpdates, to)
	}
	return f.whereMoved, nil
}

type fakeAnalysisResultRepo struct {
	result   *entity.AnalysisResult
	upserted []*entity.AnalysisResult
}

func (f *fakeAnalysisResultRepo) Upsert(ctx context.Context, result *entity.AnalysisResult) error {
	f.upserted = append(f.upserted, result)
	return nil
}

func (f *fakeAnalysisResultRepo) FindByDocumentId(ctx context.Context, documentId uuid.UUID) (*entity.AnalysisResult, error) {
	return f.result, nil
}

type fakeDocumentChunkRepo struct {
	chunks   []*entity.DocumentChunk
	fallback []*entity.ScoredChunk

	upserted    [][]*entity.DocumentChunk
	fallbackHit bool
}

func (f *fakeDocumentChunkRepo) UpsertBatch(ctx context.Context, chunks []*entity.DocumentChunk) error {
	f.upserted = append(f.upserted, chunks)
	return nil
}

func (f *fakeDocumentChunkRepo) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.DocumentChunk, error) {
	return f.chunks, nil
}

func (f *fakeDocumentChunkRepo) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	return int64(len(f.chunks)), nil
}

func (f *fakeDocumentChunkRepo) ListForSubject(ctx context.Context, subjectId uuid.UUID, limit, offset int) ([]*entity.ScoredChunk, error) {
	f.fallbackHit = true
	return f.fallback, nil
}

type fakeChunkEmbeddingRepo struct {
	hits []*entity.ScoredChunk

	upserted        [][]*entity.ChunkEmbedding
	lastLimit       int
	lastOffset      int
	lastMaxDistance *float64
}

func (f *fakeChunkEmbeddingRepo) UpsertBatch(ctx context.Context, embeddings []*entity.ChunkEmbedding) error {
	f.upserted = append(f.upserted, embeddings)
	return nil
}

func (f *fakeChunkEmbeddingRepo) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	return 0, nil
}

func (f *fakeChunkEmbeddingRepo) SearchSimilar(ctx context.Context, subjectId uuid.UUID, vector []float32, limit, offset int, maxDistance *float64) ([]*entity.ScoredChunk, error) {
	f.lastLimit = limit
	f.lastOffset = offset
	f.lastMaxDistance = maxDistance
	return f.hits, nil
}

type fakeInsightSessionRepo struct {
	session *entity.InsightSession
	// queue serves successive FindOne calls before falling back to session,
	// so tests can change what a re-read observes.
	queue []*entity.InsightSession

	created  []*entity.InsightSession
	statuses []entity.InsightSessionStatus
	results  [][]byte
}

func (f *fakeInsightSessionRepo) Create(ctx context.Context, session *entity.InsightSession) error {
	f.created = append(f.created, session)
	return nil
}

func (f *fakeInsightSessionRepo) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.InsightSession, error) {
	if len(f.queue) > 0 {
		next := f.queue[0]
		f.queue = f.queue[1:]
		return next, nil
	}
	return f.session, nil
}

func (f *fakeInsightSessionRepo) UpdateStatusResult(ctx context.Context, id uuid.UUID, status entity.InsightSessionStatus, result []byte) error {
	f.statuses = append(f.statuses, status)
	f.results = append(f.results, result)
	return nil
}

type fakeUnitOfWork struct {
	subjects   *fakeSubjectRepo
	documents  *fakeDocumentRepo
	analyses   *fakeAnalysisResultRepo
	chunks     *fakeDocumentChunkRepo
	embeddings *fakeChunkEmbeddingRepo
	sessions   *fakeInsightSessionRepo

	begun     int
	committed int
	rolled    int
}

func newFakeUnitOfWork() *fakeUnitOfWork {
	return &fakeUnitOfWork{
		subjects:   &fakeSubjectRepo{},
		documents:  &fakeDocumentRepo{},
		analyses:   &fakeAnalysisResultRepo{},
		chunks:     &fakeDocumentChunkRepo{},
		embeddings: &fakeChunkEmbeddingRepo{},
		sessions:   &fakeInsightSessionRepo{},
	}
}

func (f *fakeUnitOfWork) Begin(ctx context.Context) error { f.begun++; return nil }
func (f *fakeUnitOfWork) Commit() error                   { f.committed++; return nil }
func (f *fakeUnitOfWork) Rollback() error                 { f.rolled++; return nil }

func (f *fakeUnitOfWork) SubjectRepository() contract.SubjectRepository { return f.subjects }
func (f *fakeUnitOfWork) DocumentRepository() contract.DocumentRepository {
	return f.documents
}
func (f *fakeUnitOfWork) AnalysisResultRepository() contract.AnalysisResultRepository {
	return f.analyses
}
func (f *fakeUnitOfWork) DocumentChunkRepository() contract.DocumentChunkRepository {
	return f.chunks
}
func (f *fakeUnitOfWork) ChunkEmbeddingRepository() contract.ChunkEmbeddingRepository {
	return f.embeddings
}
func (f *fakeUnitOfWork) InsightSessionRepository() contract.InsightSessionRepository {
	return f.sessions
}

type fakeFactory struct {
	uow *fakeUnitOfWork
}

func (f *fakeFactory) NewUnitOfWork(ctx context.Context) unitofwork.UnitOfWork {
	return f.uow
}

type fakeJobPublisher struct {
	published  []events.Event
	publishErr error
	healthy    bool
}

func (f *fakeJobPublisher) Publish(ctx context.Context, event events.Event) error {
	if f.publishErr != nil {
		return f.publishErr
	}
	f.published = append(f.published, event)
	return nil
}

func (f *fakeJobPublisher) Healthy() bool { return f.healthy }

type fakeBlobStore struct {
	puts   map[string][]byte
	putErr error
}

func newFakeBlobStore() *fakeBlobStore {
	return &fakeBlobStore{puts: make(map[string][]byte)}
}

func (f *fakeBlobStore) Put(ctx context.Context, key string, data []byte) error {
	if f.putErr != nil {
		return f.putErr
	}
	f.puts[key] = data
	return nil
}

func (f *fakeBlobStore) SignedURL(ctx context.Context, key string, ttl time.Duration) (*blob.SignedURL, error) {
	return &blob.SignedURL{
		Url:       "http://localhost/uploads/" + key,
		ExpiresAt: time.Now().Add(ttl),
	}, nil
}

func (f *fakeBlobStore) Healthy(ctx context.Context) bool { return true }

type fakeEmbeddingProvider struct {
	vector []float32
	err    error
	calls  int
}

func (f *fakeEmbeddingProvider) Generate(ctx context.Context, text, taskType string) ([]float32, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.vector, nil
}

type fakeBusPublisher struct {
	messages [][]byte
	err      error
}

func (f *fakeBusPublisher) Publish(ctx context.Context, payload []byte) error {
	if f.err != nil {
		return f.err
	}
	f.messages = append(f.messages, payload)
	return nil
}
