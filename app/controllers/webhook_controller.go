package controllers

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/log"

	"github.com/promocraft/catalog/app/repository"
	"github.com/promocraft/catalog/internal/pkg/dataverse"
	"github.com/promocraft/catalog/internal/pkg/env"
	"github.com/promocraft/catalog/internal/pkg/metrics/counter"
)

var webhookMerger *dataverse.Merger

// InitializeWebhookController wires the merger against the global repositories.
func InitializeWebhookController() {
	webhookMerger = dataverse.NewMerger(repository.GetGlobalRepositories())
}

// HandleDataverseWebhook receives push updates from the CRM. The signature is
// verified over the raw body before any parsing happens.
func HandleDataverseWebhook(c *fiber.Ctx) error {
	raw := c.Body()
	timestamp := c.Get("x-timestamp")
	signature := c.Get("x-signature")

	secret := env.GetEnv("DATAVERSE_WEBHOOK_SECRET", "")
	if err := dataverse.VerifySignature(raw, timestamp, signature, secret); err != nil {
		switch {
		case errors.Is(err, dataverse.ErrStaleTimestamp):
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "stale timestamp"})
		case errors.Is(err, dataverse.ErrNoSecret):
			log.Error("[Webhook] DATAVERSE_WEBHOOK_SECRET is not set, rejecting call")
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "invalid signature"})
		default:
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "invalid signature"})
		}
	}

	payload, err := dataverse.ParsePayload(raw)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid payload", "message": err.Error()})
	}

	_ = counter.AddWebhookEvent(payload.Event)

	result, err := webhookMerger.Apply(payload)
	if err != nil {
		log.Errorf("[Webhook] Merge failed for %s: %v", payload.Product.IDDataverse, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal error"})
	}

	return c.Status(fiber.StatusOK).JSON(result)
}
