package controller

import (
	"sparke-core-be/internal/pkg/serverutils"
	"sparke-core-be/internal/service"
	"sparke-core-be/pkg/blob"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

type IHealthController interface {
	RegisterRoutes(r fiber.Router)
	Health(ctx *fiber.Ctx) error
}

type healthController struct {
	db        *gorm.DB
	blobStore blob.Store
	jobs      service.JobPublisher
}

func NewHealthController(db *gorm.DB, blobStore blob.Store, jobs service.JobPublisher) IHealthController {
	return &healthController{
		db:        db,
		blobStore: blobStore,
		jobs:      jobs,
	}
}

func (c *healthController) RegisterRoutes(r fiber.Router) {
	r.Get("/health", c.Health)
}

type healthProbe struct {
	Database bool `json:"database"`
	Blob     bool `json:"blob"`
	Broker   bool `json:"broker"`
}

type healthResponse struct {
	Status string      `json:"status"`
	Probes healthProbe `json:"probes"`
}

func (c *healthController) Health(ctx *fiber.Ctx) error {
	probes := healthProbe{
		Blob:   c.blobStore.Healthy(ctx.Context()),
		Broker: c.jobs.Healthy(),
	}

	if sqlDB, err := c.db.DB(); err == nil {
		probes.Database = sqlDB.PingContext(ctx.Context()) == nil
	}

	status := "ok"
	if !probes.Database || !probes.Blob || !probes.Broker {
		status = "degraded"
	}

	res := healthResponse{Status: status, Probes: probes}
	if status != "ok" {
		return ctx.Status(fiber.StatusServiceUnavailable).JSON(serverutils.SuccessResponse("Service degraded", res))
	}
	return ctx.JSON(serverutils.SuccessResponse("Service healthy", res))
}
