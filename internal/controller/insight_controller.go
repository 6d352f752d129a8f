package controller

import (
	"bufio"
	"encoding/json"
	"fmt"
	"time"

	"sparke-core-be/internal/dto"
	"sparke-core-be/internal/pkg/serverutils"
	"sparke-core-be/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/valyala/fasthttp"
)

type IInsightController interface {
	RegisterRoutes(r fiber.Router)
	Create(ctx *fiber.Ctx) error
	Show(ctx *fiber.Ctx) error
	Stream(ctx *fiber.Ctx) error
}

const streamKeepAlive = 15 * time.Second

type insightController struct {
	insightService service.IInsightService
}

func NewInsightController(insightService service.IInsightService) IInsightController {
	return &insightController{
		insightService: insightService,
	}
}

func (c *insightController) RegisterRoutes(r fiber.Router) {
	create := r.Group("/subjects/:subjectId/insight-sessions")
	create.Use(serverutils.JwtMiddleware)
	create.Post("", c.Create)

	read := r.Group("/insight-sessions")
	read.Use(serverutils.JwtMiddleware)
	read.Get(":sessionId", c.Show)
	read.Get(":sessionId/stream", c.Stream)
}

func (c *insightController) Create(ctx *fiber.Ctx) error {
	userId := currentUserId(ctx)
	subjectId, err := parseUUIDParam(ctx, "subjectId")
	if err != nil {
		return err
	}

	var req dto.CreateInsightSessionRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.insightService.Create(ctx.Context(), userId, subjectId, &req)
	if err != nil {
		return err
	}

	return ctx.Status(fiber.StatusCreated).JSON(serverutils.SuccessResponse("Success create insight session", res))
}

func (c *insightController) Show(ctx *fiber.Ctx) error {
	userId := currentUserId(ctx)
	sessionId, err := parseUUIDParam(ctx, "sessionId")
	if err != nil {
		return err
	}

	res, err := c.insightService.Get(ctx.Context(), userId, sessionId)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success show insight session", res))
}

// Stream is the SSE surface: one event per status transition, closing after a
// terminal event or client disconnect.
func (c *insightController) Stream(ctx *fiber.Ctx) error {
	userId := currentUserId(ctx)
	sessionId, err := parseUUIDParam(ctx, "sessionId")
	if err != nil {
		return err
	}

	snapshot, events, cancel, err := c.insightService.Stream(ctx.Context(), userId, sessionId)
	if err != nil {
		return err
	}

	ctx.Set(fiber.HeaderContentType, "text/event-stream")
	ctx.Set(fiber.HeaderCacheControl, "no-cache")
	ctx.Set(fiber.HeaderConnection, "keep-alive")

	ctx.Context().SetBodyStreamWriter(fasthttp.StreamWriter(func(w *bufio.Writer) {
		defer cancel()

		if err := writeSSE(w, "snapshot", snapshot); err != nil {
			return
		}

		keepAlive := time.NewTicker(streamKeepAlive)
		defer keepAlive.Stop()

		for {
			select {
			case event, ok := <-events:
				if !ok {
					return
				}
				if err := writeSSE(w, "status", event); err != nil {
					return
				}
			case <-keepAlive.C:
				// Comment frame keeps proxies open and surfaces dead clients.
				if _, err := fmt.Fprint(w, ": ping\n\n"); err != nil {
					return
				}
				if err := w.Flush(); err != nil {
					return
				}
			}
		}
	}))

	return nil
}

func writeSSE(w *bufio.Writer, event string, data interface{}) error {
	payload, err := json.Marshal(data)
	if err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "event: %s\ndata: %s\n\n", event, payload); err != nil {
		return err
	}
	return w.Flush()
}
