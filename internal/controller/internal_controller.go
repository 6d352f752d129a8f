package controller

import (
	"sparke-core-be/internal/dto"
	"sparke-core-be/internal/pkg/internalauth"
	"sparke-core-be/internal/pkg/serverutils"
	"sparke-core-be/internal/service"

	"github.com/gofiber/fiber/v2"
)

// IInternalController is the oracle worker's callback surface. Every route is
// behind the HMAC verifier.
type IInternalController interface {
	RegisterRoutes(r fiber.Router)
	UpdateAnalysis(ctx *fiber.Ctx) error
	Reindex(ctx *fiber.Ctx) error
	ListDocuments(ctx *fiber.Ctx) error
	ListChunks(ctx *fiber.Ctx) error
	UpdateInsightSession(ctx *fiber.Ctx) error
}

type internalController struct {
	internalService service.IInternalService
	verifier        *internalauth.Verifier
}

func NewInternalController(internalService service.IInternalService, verifier *internalauth.Verifier) IInternalController {
	return &internalController{
		internalService: internalService,
		verifier:        verifier,
	}
}

func (c *internalController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/internal")
	h.Use(internalauth.Middleware(c.verifier))
	h.Put("documents/:documentId/analysis", c.UpdateAnalysis)
	h.Put("reindex/:subjectId/chunks", c.Reindex)
	h.Get("subjects/:subjectId/documents", c.ListDocuments)
	h.Get("subjects/:subjectId/chunks", c.ListChunks)
	h.Put("insight-sessions/:subjectId/:sessionId", c.UpdateInsightSession)
}

func (c *internalController) UpdateAnalysis(ctx *fiber.Ctx) error {
	documentId, err := parseUUIDParam(ctx, "documentId")
	if err != nil {
		return err
	}

	var req dto.UpdateAnalysisRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.internalService.UpdateAnalysis(ctx.Context(), documentId, &req)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success store analysis", res))
}

func (c *internalController) Reindex(ctx *fiber.Ctx) error {
	subjectId, err := parseUUIDParam(ctx, "subjectId")
	if err != nil {
		return err
	}

	var req dto.ReindexRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.internalService.Reindex(ctx.Context(), subjectId, &req)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success reindex chunks", res))
}

func (c *internalController) ListDocuments(ctx *fiber.Ctx) error {
	subjectId, err := parseUUIDParam(ctx, "subjectId")
	if err != nil {
		return err
	}

	res, err := c.internalService.ListDocuments(ctx.Context(), subjectId)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success list subject documents", res))
}

func (c *internalController) ListChunks(ctx *fiber.Ctx) error {
	subjectId, err := parseUUIDParam(ctx, "subjectId")
	if err != nil {
		return err
	}

	res, err := c.internalService.ListChunks(ctx.Context(), subjectId)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success list subject chunks", res))
}

func (c *internalController) UpdateInsightSession(ctx *fiber.Ctx) error {
	subjectId, err := parseUUIDParam(ctx, "subjectId")
	if err != nil {
		return err
	}
	sessionId, err := parseUUIDParam(ctx, "sessionId")
	if err != nil {
		return err
	}

	var req dto.UpdateInsightSessionRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.internalService.UpdateInsightSession(ctx.Context(), subjectId, sessionId, &req)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success update insight session", res))
}
