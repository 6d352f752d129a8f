package service

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"
	"time"

	"sparke-core-be/internal/dto"
	"sparke-core-be/internal/entity"
	"sparke-core-be/internal/pkg/apperror"
	"sparke-core-be/internal/pkg/logger"
	"sparke-core-be/internal/repository/specification"
	"sparke-core-be/internal/repository/unitofwork"
	"sparke-core-be/pkg/embedding"

	"github.com/google/uuid"
	gocache "github.com/patrickmn/go-cache"
)

type ISearchService interface {
	Search(ctx context.Context, userId, subjectId uuid.UUID, req *dto.SearchRequest) (*dto.SearchResponse, error)
}

const (
	defaultK       = 20
	maxK           = 100
	queryCacheTTL  = 10 * time.Minute
	queryCacheGC   = 15 * time.Minute
	minQueryLength = 2
)

type searchService struct {
	uowFactory        unitofwork.RepositoryFactory
	embeddingProvider embedding.Provider
	queryCache        *gocache.Cache
	dimension         int
	maxOffset         int
	logger            logger.ILogger
}

func NewSearchService(
	uowFactory unitofwork.RepositoryFactory,
	embeddingProvider embedding.Provider,
	dimension int,
	maxOffset int,
	log logger.ILogger,
) ISearchService {
	return &searchService{
		uowFactory:        uowFactory,
		embeddingProvider: embeddingProvider,
		queryCache:        gocache.New(queryCacheTTL, queryCacheGC),
		dimension:         dimension,
		maxOffset:         maxOffset,
		logger:            log,
	}
}

func (s *searchService) Search(ctx context.Context, userId, subjectId uuid.UUID, req *dto.SearchRequest) (*dto.SearchResponse, error) {
	started := time.Now()
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

	query := strings.TrimSpace(req.Query)
	if len(query) < minQueryLength {
		return nil, apperror.BadRequest("query must be at least 2 characters", nil)
	}

	k := clamp(req.K, 1, maxK)
	if req.K == 0 {
		k = defaultK
	}
	offset := clamp(req.Offset, 0, s.maxOffset)

	vector, err := s.embedQuery(ctx, query)
	if err != nil {
		return nil, err
	}

	// A caller threshold is a similarity floor; the index filters on
	// distance. Without one the nearest-neighbor query runs unfiltered.
	var maxDistance *float64
	if req.Threshold != nil {
		d := 1 - clampFloat(*req.Threshold, 0, 1)
		maxDistance = &d
	}

	rows, err := uow.ChunkEmbeddingRepository().SearchSimilar(ctx, subjectId, vector, k, offset, maxDistance)
	if err != nil {
		return nil, err
	}

	if len(rows) == 0 {
		// Degraded mode: first k chunks with a neutral score so the endpoint
		// never dead-ends while content exists. Logged loudly because an
		// empty primary query can also mean a broken vector index.
		rows, err = uow.DocumentChunkRepository().ListForSubject(ctx, subjectId, k, offset)
		if err != nil {
			return nil, err
		}
		s.logger.Warn("SearchService", "Similarity query returned no rows, serving chunk-order fallback", map[string]interface{}{
			"subject_id": subjectId,
			"fallback":   true,
			"returned":   len(rows),
		})
	}

	results := make([]dto.SearchResultItem, len(rows))
	for i, r := range rows {
		results[i] = toSearchResultItem(r)
	}

	return &dto.SearchResponse{
		Results:    results,
		NextCursor: nil,
		TookMs:     time.Since(started).Milliseconds(),
	}, nil
}

func (s *searchService) embedQuery(ctx context.Context, query string) ([]float32, error) {
	cacheKey := queryCacheKey(query)
	if cached, found := s.queryCache.Get(cacheKey); found {
		return cached.([]float32), nil
	}

	vector, err := s.embeddingProvider.Generate(ctx, query, embedding.TaskTypeQuery)
	if err != nil {
		return nil, apperror.Unavailable("embedding service unavailable", err)
	}
	if len(vector) != s.dimension {
		return nil, apperror.BadRequest(fmt.Sprintf("embedding dimension %d does not match configured dimension %d", len(vector), s.dimension), nil)
	}

	s.queryCache.Set(cacheKey, vector, gocache.DefaultExpiration)
	return vector, nil
}

func toSearchResultItem(r *entity.ScoredChunk) dto.SearchResultItem {
	item := dto.SearchResultItem{
		DocumentId:       r.DocumentId,
		DocumentFilename: r.DocumentFilename,
		ChunkIndex:       r.ChunkIndex,
		Snippet:          r.Snippet,
		Score:            r.Score,
		UpdatedAt:        r.UpdatedAt,
	}
	if !r.CreatedAt.IsZero() {
		t := r.CreatedAt
		item.CreatedAt = &t
	}
	return item
}

func queryCacheKey(query string) string {
	sum := sha256.Sum256([]byte(strings.ToLower(query)))
	return hex.EncodeToString(sum[:])
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func clampFloat(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
