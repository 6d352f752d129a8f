package controller

import (
	"io"

	"sparke-core-be/internal/pkg/apperror"
	"sparke-core-be/internal/pkg/serverutils"
	"sparke-core-be/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type IDocumentController interface {
	RegisterRoutes(r fiber.Router)
	Upload(ctx *fiber.Ctx) error
	List(ctx *fiber.Ctx) error
	Reprocess(ctx *fiber.Ctx) error
	GetAnalysis(ctx *fiber.Ctx) error
	GetUrl(ctx *fiber.Ctx) error
}

type documentController struct {
	documentService service.IDocumentService
}

func NewDocumentController(documentService service.IDocumentService) IDocumentController {
	return &documentController{
		documentService: documentService,
	}
}

func (c *documentController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/subjects/:subjectId/documents")
	h.Use(serverutils.JwtMiddleware)
	h.Post("", c.Upload)
	h.Get("", c.List)
	h.Post(":id/reprocess", c.Reprocess)
	h.Get(":id/analysis", c.GetAnalysis)
	h.Get(":id/url", c.GetUrl)
}

func (c *documentController) Upload(ctx *fiber.Ctx) error {
	userId := currentUserId(ctx)
	subjectId, err := parseUUIDParam(ctx, "subjectId")
	if err != nil {
		return err
	}

	fileHeader, err := ctx.FormFile("file")
	if err != nil {
		return apperror.BadRequest("multipart field 'file' is required", err)
	}

	file, err := fileHeader.Open()
	if err != nil {
		return apperror.BadRequest("uploaded file could not be read", err)
	}
	defer file.Close()

	content, err := io.ReadAll(file)
	if err != nil {
		return apperror.BadRequest("uploaded file could not be read", err)
	}

	res, err := c.documentService.Upload(ctx.Context(), userId, subjectId, fileHeader.Filename, content)
	if err != nil {
		return err
	}

	return ctx.Status(fiber.StatusCreated).JSON(serverutils.SuccessResponse("Success upload document", res))
}

func (c *documentController) List(ctx *fiber.Ctx) error {
	userId := currentUserId(ctx)
	subjectId, err := parseUUIDParam(ctx, "subjectId")
	if err != nil {
		return err
	}

	res, err := c.documentService.List(ctx.Context(), userId, subjectId)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success list documents", res))
}

func (c *documentController) Reprocess(ctx *fiber.Ctx) error {
	userId := currentUserId(ctx)
	subjectId, err := parseUUIDParam(ctx, "subjectId")
	if err != nil {
		return err
	}
	documentId, err := parseUUIDParam(ctx, "id")
	if err != nil {
		return err
	}

	res, err := c.documentService.Reprocess(ctx.Context(), userId, subjectId, documentId, ctx.Query("forceOcr"))
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success requeue document", res))
}

func (c *documentController) GetAnalysis(ctx *fiber.Ctx) error {
	userId := currentUserId(ctx)
	subjectId, err := parseUUIDParam(ctx, "subjectId")
	if err != nil {
		return err
	}
	documentId, err := parseUUIDParam(ctx, "id")
	if err != nil {
		return err
	}

	res, err := c.documentService.GetAnalysis(ctx.Context(), userId, subjectId, documentId)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success show analysis", res))
}

func (c *documentController) GetUrl(ctx *fiber.Ctx) error {
	userId := currentUserId(ctx)
	subjectId, err := parseUUIDParam(ctx, "subjectId")
	if err != nil {
		return err
	}
	documentId, err := parseUUIDParam(ctx, "id")
	if err != nil {
		return err
	}

	res, err := c.documentService.GetSignedUrl(ctx.Context(), userId, subjectId, documentId)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success sign document url", res))
}

// currentUserId reads the id the JWT middleware stored in Locals.
func currentUserId(ctx *fiber.Ctx) uuid.UUID {
	userIdStr, _ := ctx.Locals("user_id").(string)
	userId, _ := uuid.Parse(userIdStr)
	return userId
}

func parseUUIDParam(ctx *fiber.Ctx, name string) (uuid.UUID, error) {
	id, err := uuid.Parse(ctx.Params(name))
	if err != nil {
		return uuid.Nil, apperror.BadRequest("invalid "+name, err)
	}
	return id, nil
}
