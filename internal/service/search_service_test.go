package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"sparke-core-be/internal/dto"
	"sparke-core-be/internal/entity"
	"sparke-core-be/internal/pkg/apperror"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testDimension = 4

func newSearchServiceForTest(uow *fakeUnitOfWork, provider *fakeEmbeddingProvider) ISearchService {
	return NewSearchService(&fakeFactory{uow: uow}, provider, testDimension, 10000, nopLogger{})
}

func testVector() []float32 {
	return []float32{0.5, 0.5, 0.5, 0.5}
}

func TestSearch(t *testing.T) {
	userId := uuid.New()
	subjectId := uuid.New()

	hit := &entity.ScoredChunk{
		DocumentId:       uuid.New(),
		DocumentFilename: "brief.pdf",
		ChunkIndex:       3,
		Snippet:          "consideration is required",
		Score:            0.87,
		CreatedAt:        time.Now(),
	}

	t.Run("returns ranked rows with score and timing", func(t *testing.T) {
		uow := newFakeUnitOfWork()
		uow.subjects.subject = ownedSubject(userId)
		uow.embeddings.hits = []*entity.ScoredChunk{hit}
		provider := &fakeEmbeddingProvider{vector: testVector()}
		svc := newSearchServiceForTest(uow, provider)

		res, err := svc.Search(context.Background(), userId, subjectId, &dto.SearchRequest{Query: "consideration"})
		require.NoError(t, err)
		require.Len(t, res.Results, 1)
		assert.Equal(t, 0.87, res.Results[0].Score)
		assert.Equal(t, "brief.pdf", res.Results[0].DocumentFilename)
		assert.Nil(t, res.NextCursor)
		assert.GreaterOrEqual(t, res.TookMs, int64(0))
		assert.False(t, uow.chunks.fallbackHit)
	})

	t.Run("defaults k and converts threshold to a distance cap", func(t *testing.T) {
		uow := newFakeUnitOfWork()
		uow.subjects.subject = ownedSubject(userId)
		uow.embeddings.hits = []*entity.ScoredChunk{hit}
		svc := newSearchServiceForTest(uow, &fakeEmbeddingProvider{vector: testVector()})

		threshold := 0.4
		_, err := svc.Search(context.Background(), userId, subjectId, &dto.SearchRequest{Query: "consideration", Threshold: &threshold})
		require.NoError(t, err)
		assert.Equal(t, 20, uow.embeddings.lastLimit)
		require.NotNil(t, uow.embeddings.lastMaxDistance)
		assert.InDelta(t, 0.6, *uow.embeddings.lastMaxDistance, 1e-9)
	})

	t.Run("absent threshold runs the query unfiltered", func(t *testing.T) {
		uow := newFakeUnitOfWork()
		uow.subjects.subject = ownedSubject(userId)
		uow.embeddings.hits = []*entity.ScoredChunk{hit}
		svc := newSearchServiceForTest(uow, &fakeEmbeddingProvider{vector: testVector()})

		res, err := svc.Search(context.Background(), userId, subjectId, &dto.SearchRequest{Query: "consideration"})
		require.NoError(t, err)
		assert.Equal(t, 20, uow.embeddings.lastLimit)
		assert.Nil(t, uow.embeddings.lastMaxDistance)
		require.Len(t, res.Results, 1)
		assert.False(t, uow.chunks.fallbackHit)
	})

	t.Run("out-of-range threshold is clamped before conversion", func(t *testing.T) {
		uow := newFakeUnitOfWork()
		uow.subjects.subject = ownedSubject(userId)
		uow.embeddings.hits = []*entity.ScoredChunk{hit}
		svc := newSearchServiceForTest(uow, &fakeEmbeddingProvider{vector: testVector()})

		high := 2.0
		_, err := svc.Search(context.Background(), userId, subjectId, &dto.SearchRequest{Query: "consideration", Threshold: &high})
		require.NoError(t, err)
		require.NotNil(t, uow.embeddings.lastMaxDistance)
		assert.InDelta(t, 0.0, *uow.embeddings.lastMaxDistance, 1e-9)

		low := -0.5
		_, err = svc.Search(context.Background(), userId, subjectId, &dto.SearchRequest{Query: "consideration", Threshold: &low})
		require.NoError(t, err)
		require.NotNil(t, uow.embeddings.lastMaxDistance)
		assert.InDelta(t, 1.0, *uow.embeddings.lastMaxDistance, 1e-9)
	})

	t.Run("clamps k and offset", func(t *testing.T) {
		uow := newFakeUnitOfWork()
		uow.subjects.subject = ownedSubject(userId)
		uow.embeddings.hits = []*entity.ScoredChunk{hit}
		svc := newSearchServiceForTest(uow, &fakeEmbeddingProvider{vector: testVector()})

		_, err := svc.Search(context.Background(), userId, subjectId, &dto.SearchRequest{Query: "consideration", K: 5000, Offset: -3})
		require.NoError(t, err)
		assert.Equal(t, 100, uow.embeddings.lastLimit)
		assert.Equal(t, 0, uow.embeddings.lastOffset)
	})

	t.Run("short query is rejected before embedding", func(t *testing.T) {
		uow := newFakeUnitOfWork()
		uow.subjects.subject = ownedSubject(userId)
		provider := &fakeEmbeddingProvider{vector: testVector()}
		svc := newSearchServiceForTest(uow, provider)

		_, err := svc.Search(context.Background(), userId, subjectId, &dto.SearchRequest{Query: " a "})
		assert.True(t, apperror.IsKind(err, apperror.KindBadRequest))
		assert.Zero(t, provider.calls)
	})

	t.Run("embedding outage is unavailable", func(t *testing.T) {
		uow := newFakeUnitOfWork()
		uow.subjects.subject = ownedSubject(userId)
		svc := newSearchServiceForTest(uow, &fakeEmbeddingProvider{err: errors.New("timeout")})

		_, err := svc.Search(context.Background(), userId, subjectId, &dto.SearchRequest{Query: "consideration"})
		assert.True(t, apperror.IsKind(err, apperror.KindUnavailable))
	})

	t.Run("wrong embedding dimension is a bad request", func(t *testing.T) {
		uow := newFakeUnitOfWork()
		uow.subjects.subject = ownedSubject(userId)
		svc := newSearchServiceForTest(uow, &fakeEmbeddingProvider{vector: []float32{1, 0}})

		_, err := svc.Search(context.Background(), userId, subjectId, &dto.SearchRequest{Query: "consideration"})
		assert.True(t, apperror.IsKind(err, apperror.KindBadRequest))
	})

	t.Run("zero rows falls back to chunk order with neutral scores", func(t *testing.T) {
		uow := newFakeUnitOfWork()
		uow.subjects.subject = ownedSubject(userId)
		uow.chunks.fallback = []*entity.ScoredChunk{
			{DocumentId: uuid.New(), DocumentFilename: "brief.pdf", ChunkIndex: 0, Snippet: "intro", Score: 0},
			{DocumentId: uuid.New(), DocumentFilename: "brief.pdf", ChunkIndex: 1, Snippet: "body", Score: 0},
		}
		svc := newSearchServiceForTest(uow, &fakeEmbeddingProvider{vector: testVector()})

		res, err := svc.Search(context.Background(), userId, subjectId, &dto.SearchRequest{Query: "nothing matches"})
		require.NoError(t, err)
		assert.True(t, uow.chunks.fallbackHit)
		require.Len(t, res.Results, 2)
		assert.Equal(t, float64(0), res.Results[0].Score)
		assert.Equal(t, float64(0), res.Results[1].Score)
	})

	t.Run("repeated query reuses the cached embedding", func(t *testing.T) {
		uow := newFakeUnitOfWork()
		uow.subjects.subject = ownedSubject(userId)
		uow.embeddings.hits = []*entity.ScoredChunk{hit}
		provider := &fakeEmbeddingProvider{vector: testVector()}
		svc := newSearchServiceForTest(uow, provider)

		for i := 0; i < 3; i++ {
			_, err := svc.Search(context.Background(), userId, subjectId, &dto.SearchRequest{Query: "Consideration"})
			require.NoError(t, err)
		}
		assert.Equal(t, 1, provider.calls)
	})

	t.Run("unknown subject is not found", func(t *testing.T) {
		uow := newFakeUnitOfWork()
		svc := newSearchServiceForTest(uow, &fakeEmbeddingProvider{vector: testVector()})

		_, err := svc.Search(context.Background(), userId, subjectId, &dto.SearchRequest{Query: "consideration"})
		assert.True(t, apperror.IsKind(err, apperror.KindNotFound))
	})
}
