package controller

import (
	"strconv"

	"sparke-core-be/internal/dto"
	"sparke-core-be/internal/pkg/serverutils"
	"sparke-core-be/internal/service"

	"github.com/gofiber/fiber/v2"
)

type ISearchController interface {
	RegisterRoutes(r fiber.Router)
	Search(ctx *fiber.Ctx) error
}

type searchController struct {
	searchService service.ISearchService
	rateLimiter   fiber.Handler
}

// NewSearchController takes the rate limiter as a handler so its storage and
// limits stay an operational concern of the server wiring.
func NewSearchController(searchService service.ISearchService, rateLimiter fiber.Handler) ISearchController {
	return &searchController{
		searchService: searchService,
		rateLimiter:   rateLimiter,
	}
}

func (c *searchController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/subjects/:subjectId")
	h.Use(serverutils.JwtMiddleware)
	if c.rateLimiter != nil {
		h.Get("search", c.rateLimiter, c.Search)
	} else {
		h.Get("search", c.Search)
	}
}

func (c *searchController) Search(ctx *fiber.Ctx) error {
	userId := currentUserId(ctx)
	subjectId, err := parseUUIDParam(ctx, "subjectId")
	if err != nil {
		return err
	}

	req := dto.SearchRequest{
		Query:  ctx.Query("query"),
		K:      ctx.QueryInt("k", 0),
		Offset: ctx.QueryInt("offset", 0),
	}
	if raw := ctx.Query("threshold"); raw != "" {
		if threshold, err := strconv.ParseFloat(raw, 64); err == nil {
			req.Threshold = &threshold
		}
	}

	res, err := c.searchService.Search(ctx.Context(), userId, subjectId, &req)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success search subject", res))
}
