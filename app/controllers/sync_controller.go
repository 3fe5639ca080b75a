package controllers

import (
	"encoding/json"
	"errors"
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/log"
	"gorm.io/gorm"

	"github.com/promocraft/catalog/app/models"
	"github.com/promocraft/catalog/app/repository"
	"github.com/promocraft/catalog/internal/pkg/cache"
	"github.com/promocraft/catalog/internal/pkg/env"
	"github.com/promocraft/catalog/internal/pkg/metrics/counter"
)

const (
	defaultFailureLimit = 50
	maxFailureLimit     = 500
)

// serverError shapes a 500 response. The raw error is only exposed in dev.
func serverError(c *fiber.Ctx, message string, err error) error {
	body := fiber.Map{"error": "internal_server_error", "message": message}
	if env.IsDev() && err != nil {
		body["detail"] = err.Error()
	}
	return c.Status(fiber.StatusInternalServerError).JSON(body)
}

// HandleSyncStatus returns the rolling status record of every sync type plus
// the open failure count. The response is cached briefly because dashboards
// poll it aggressively.
func HandleSyncStatus(c *fiber.Ctx) error {
	if cached, err := cache.GetSyncOverview(); err == nil && cached != "" {
		c.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
		return c.SendString(cached)
	}

	repos := repository.GetGlobalRepositories()
	records, err := repos.SyncMetadata.GetAll()
	if err != nil {
		return serverError(c, "Failed to load sync status", err)
	}

	type statusRow struct {
		models.SyncMetadata
		UnresolvedFailures int64 `json:"unresolved_failures"`
	}

	rows := make([]statusRow, 0, len(records))
	for _, rec := range records {
		count, err := repos.FailedSync.CountUnresolved(failureSourceFor(rec.Type))
		if err != nil {
			log.Warnf("[API] Counting failures for %s: %v", rec.Type, err)
		}
		rows = append(rows, statusRow{SyncMetadata: rec, UnresolvedFailures: count})
	}

	response := fiber.Map{"syncs": rows}
	if events, err := counter.WebhookEventCounts(); err == nil && len(events) > 0 {
		response["webhook_events"] = events
	}
	if payload, err := json.Marshal(response); err == nil {
		if cerr := cache.CacheSyncOverview(payload); cerr != nil {
			log.Warnf("[API] Status cache write failed: %v", cerr)
		}
	}
	return c.Status(fiber.StatusOK).JSON(response)
}

// HandleSyncFailures lists unresolved ledger entries, oldest attempt first.
// Query params: type (ledger source, default zecat) and limit.
func HandleSyncFailures(c *fiber.Ctx) error {
	source := c.Query("type", models.FailedSourceZecat)
	limit := defaultFailureLimit
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "bad_request", "message": "limit must be a positive integer"})
		}
		limit = parsed
	}
	if limit > maxFailureLimit {
		limit = maxFailureLimit
	}

	repos := repository.GetGlobalRepositories()
	failures, err := repos.FailedSync.Unresolved(source, limit)
	if err != nil {
		return serverError(c, "Failed to load failures", err)
	}
	total, err := repos.FailedSync.CountUnresolved(source)
	if err != nil {
		log.Warnf("[API] Counting failures for %s: %v", source, err)
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"type":     source,
		"total":    total,
		"failures": failures,
	})
}

// HandleResolveFailure marks one ledger entry as resolved by operator action.
func HandleResolveFailure(c *fiber.Ctx) error {
	id, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil || id == 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "bad_request", "message": "invalid failure id"})
	}

	repos := repository.GetGlobalRepositories()
	if err := repos.FailedSync.Resolve(uint(id)); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "not_found", "message": "No unresolved failure with that id"})
		}
		return serverError(c, "Failed to resolve", err)
	}
	return c.Status(fiber.StatusOK).JSON(fiber.Map{"ok": true, "id": id})
}

// failureSourceFor maps a metadata type to its ledger source, e.g.
// "zecat_sync" -> "zecat". Family runs share the supplier's ledger source.
func failureSourceFor(syncType string) string {
	switch syncType {
	case models.SyncTypeZecat, models.SyncTypeFamilies:
		return models.FailedSourceZecat
	case models.SyncTypeDataverse:
		return models.FailedSourceDataverse
	default:
		return models.FailedSourceManual
	}
}
