package handlers

import (
	"errors"
	"log"

	"github.com/gofiber/fiber/v2"
	"github.com/referly/referral-api/internal/service"
	"github.com/referly/referral-api/internal/transfer"
)

type WalletHandler struct {
	ws service.WalletService
}

func NewWalletHandler(ws service.WalletService) *WalletHandler {
	return &WalletHandler{ws: ws}
}

func (h *WalletHandler) GetStatus(c *fiber.Ctx) error {
	wallet, found, err := h.ws.Status(c.Context(), GetUserID(c))
	if err != nil {
		log.Printf("wallet status failed: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Internal server error",
		})
	}
	if !found {
		return c.Status(fiber.StatusOK).JSON(fiber.Map{
			"isConnected": false,
			"wallet":      nil,
		})
	}
	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"isConnected": true,
		"wallet":      wallet,
	})
}

func (h *WalletHandler) Connect(c *fiber.Ctx) error {
	var req transfer.ConnectWalletRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}
	if err := validate.Struct(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Wallet address is required",
		})
	}

	wallet, err := h.ws.Connect(c.Context(), GetUserID(c), &req)
	if err != nil {
		if errors.Is(err, service.ErrWalletTaken) {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "This wallet is already connected to another account",
			})
		}
		log.Printf("wallet connect failed: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Internal server error",
		})
	}
	return c.Status(fiber.StatusOK).JSON(wallet)
}

func (h *WalletHandler) Disconnect(c *fiber.Ctx) error {
	err := h.ws.Disconnect(c.Context(), GetUserID(c))
	if err != nil {
		if errors.Is(err, service.ErrWalletNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": "No wallet connection found",
			})
		}
		log.Printf("wallet disconnect failed: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Internal server error",
		})
	}
	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"message": "Wallet disconnected successfully",
	})
}

func (h *WalletHandler) UpdateBalance(c *fiber.Ctx) error {
	var req transfer.UpdateBalanceRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	wallet, err := h.ws.UpdateBalance(c.Context(), GetUserID(c), &req)
	if err != nil {
		if errors.Is(err, service.ErrWalletNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": "No wallet connection found",
			})
		}
		log.Printf("wallet balance update failed: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Internal server error",
		})
	}
	return c.Status(fiber.StatusOK).JSON(wallet)
}
