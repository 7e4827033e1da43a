package handlers

import (
	"log"

	"github.com/gofiber/fiber/v2"
	"github.com/referly/referral-api/internal/service"
)

type DashboardHandler struct {
	ds service.DashboardService
}

func NewDashboardHandler(ds service.DashboardService) *DashboardHandler {
	return &DashboardHandler{ds: ds}
}

func (h *DashboardHandler) GetStats(c *fiber.Ctx) error {
	stats, err := h.ds.Stats(c.Context())
	if err != nil {
		log.Printf("dashboard stats failed: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Internal server error",
		})
	}
	return c.Status(fiber.StatusOK).JSON(stats)
}

func (h *DashboardHandler) GetActivity(c *fiber.Ctx) error {
	activities, err := h.ds.RecentActivity(c.Context())
	if err != nil {
		log.Printf("dashboard activity failed: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Internal server error",
		})
	}
	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"activities": activities,
	})
}
