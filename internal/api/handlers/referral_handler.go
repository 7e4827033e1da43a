package handlers

import (
	"errors"
	"log"

	"github.com/gofiber/fiber/v2"
	"github.com/referly/referral-api/internal/models"
	"github.com/referly/referral-api/internal/service"
	"github.com/referly/referral-api/internal/transfer"
)

type ReferralHandler struct {
	rs service.ReferralService
}

func NewReferralHandler(rs service.ReferralService) *ReferralHandler {
	return &ReferralHandler{rs: rs}
}

func (h *ReferralHandler) GetCode(c *fiber.Ctx) error {
	code, err := h.rs.GetCode(c.Context(), GetUserID(c))
	if err != nil {
		if errors.Is(err, service.ErrUserNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": "User not found",
			})
		}
		log.Printf("referral code failed: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Internal server error",
		})
	}
	return c.Status(fiber.StatusOK).JSON(code)
}

func (h *ReferralHandler) GetStats(c *fiber.Ctx) error {
	stats, err := h.rs.GetStats(c.Context(), GetUserID(c))
	if err != nil {
		log.Printf("referral stats failed: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Internal server error",
		})
	}
	return c.Status(fiber.StatusOK).JSON(stats)
}

func (h *ReferralHandler) Validate(c *fiber.Ctx) error {
	var req transfer.ValidateReferralRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}
	if err := validate.Struct(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Referral code is required",
		})
	}

	referrer, err := h.rs.Validate(c.Context(), req.ReferralCode)
	if err != nil {
		if errors.Is(err, service.ErrInvalidReferralCode) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": "Invalid referral code",
			})
		}
		log.Printf("referral validation failed: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Internal server error",
		})
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"referrer":     referrer,
		"pointsEarned": models.ReferralPoints,
	})
}
