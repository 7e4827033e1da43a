package handlers

import (
	"errors"
	"fmt"
	"log"

	"github.com/gofiber/fiber/v2"
	config "github.com/referly/referral-api/configs"
	"github.com/referly/referral-api/internal/service"
)

type TwitterHandler struct {
	ts  service.TwitterService
	cfg config.Config
}

func NewTwitterHandler(cfg config.Config, ts service.TwitterService) *TwitterHandler {
	return &TwitterHandler{ts: ts, cfg: cfg}
}

func (h *TwitterHandler) GetAuthURL(c *fiber.Ctx) error {
	userID := GetUserID(c)

	authURL, err := h.ts.BeginAuthorization(c.Context(), userID)
	if err != nil {
		if errors.Is(err, service.ErrTwitterNotConfigured) {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "Twitter OAuth configuration missing. Please check environment variables.",
			})
		}
		log.Printf("auth url generation failed: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Internal server error",
		})
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"authorizationUrl": authURL,
	})
}

// Callback is provider-invoked; success and failure both end in a redirect
// back to the frontend, never a JSON error page.
func (h *TwitterHandler) Callback(c *fiber.Ctx) error {
	requestToken := c.Query("oauth_token")
	verifier := c.Query("oauth_verifier")

	_, err := h.ts.CompleteAuthorization(c.Context(), requestToken, verifier)
	if err != nil {
		log.Printf("twitter callback failed: %v", err)
		return c.Redirect(fmt.Sprintf("%s/dashboard/social?error=twitter_auth_failed", h.cfg.FrontendURL), fiber.StatusTemporaryRedirect)
	}

	return c.Redirect(fmt.Sprintf("%s/dashboard/social?success=twitter_connected", h.cfg.FrontendURL), fiber.StatusTemporaryRedirect)
}

func (h *TwitterHandler) GetStatus(c *fiber.Ctx) error {
	status, err := h.ts.Status(c.Context(), GetUserID(c))
	if err != nil {
		log.Printf("twitter status failed: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Internal server error",
		})
	}
	return c.Status(fiber.StatusOK).JSON(status)
}

func (h *TwitterHandler) Disconnect(c *fiber.Ctx) error {
	err := h.ts.Disconnect(c.Context(), GetUserID(c))
	if err != nil {
		if errors.Is(err, service.ErrConnectionNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": "No active Twitter connection found",
			})
		}
		log.Printf("twitter disconnect failed: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Internal server error",
		})
	}
	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"message": "Twitter account disconnected successfully",
	})
}

func (h *TwitterHandler) ListConnections(c *fiber.Ctx) error {
	connections, err := h.ts.ListActive(c.Context())
	if err != nil {
		log.Printf("list twitter connections failed: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Internal server error",
		})
	}
	return c.Status(fiber.StatusOK).JSON(connections)
}

func (h *TwitterHandler) RecentPosts(c *fiber.Ctx) error {
	tweets, err := h.ts.RecentPosts(c.Context(), GetUserID(c))
	if err != nil {
		if errors.Is(err, service.ErrConnectionNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": "Twitter account not connected",
			})
		}
		log.Printf("recent posts failed: %v", err)
		return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{
			"error": "Unable to fetch tweets",
		})
	}
	return c.Status(fiber.StatusOK).JSON(tweets)
}
