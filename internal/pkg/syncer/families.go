package syncer

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2/log"
	"github.com/google/uuid"

	"github.com/promocraft/catalog/app/models"
	"github.com/promocraft/catalog/app/repository"
	"github.com/promocraft/catalog/internal/pkg/sku"
	"github.com/promocraft/catalog/internal/pkg/zecat"
)

// Family slugs with this prefix belong to the supplier's express-logo program
// and are never shown in the storefront.
const hiddenFamilyPrefix = "logo-24"

// RunFamilies reconciles the supplier's family listing. Families missing from
// the listing are hidden rather than deleted so manual curation survives
// supplier hiccups.
func (r *Runner) RunFamilies(ctx context.Context) error {
	runID := uuid.New().String()
	syncType := models.SyncTypeFamilies

	ok, err := r.locker.Acquire(syncType, runID)
	if err != nil {
		log.Warnf("[Sync] Run lock unavailable, proceeding without it: %v", err)
	} else if !ok {
		return ErrAlreadyRunning
	}
	defer r.locker.Release(syncType, runID)

	if err := r.repos.SyncMetadata.BeginRun(syncType, runID); err != nil {
		return fmt.Errorf("recording run start: %w", err)
	}
	start := time.Now()

	families, err := r.api.ListFamilies(ctx)
	if err != nil {
		stats := repository.SyncStats{Duration: time.Since(start)}
		if ferr := r.repos.SyncMetadata.FinishRun(syncType, runID, models.SyncStatusFailed, stats, err.Error()); ferr != nil {
			log.Errorf("[Sync] Recording failed run: %v", ferr)
		}
		return fmt.Errorf("listing families: %w", err)
	}

	stats := repository.SyncStats{}
	keep := make([]string, 0, len(families))
	for _, f := range families {
		id := f.ID.String()
		if id == "" || id == "0" {
			stats.Skipped++
			continue
		}
		if isHiddenFamily(f) {
			stats.Skipped++
			continue
		}
		slug := f.Slug
		if slug == "" {
			slug = strings.ToLower(sku.Slug(f.DisplayTitle()))
		}
		family := &models.Family{
			SupplierID:  id,
			Title:       f.DisplayTitle(),
			Slug:        slug,
			Description: f.Description,
			IconURL:     f.IconURL,
			Show:        true,
		}
		if err := r.repos.Family.Upsert(family); err != nil {
			stats.Failed++
			r.recordFamilyFailure(id, err)
			log.Errorf("[Sync] Family upsert failed for id %s: %v", id, err)
			continue
		}
		stats.Updated++
		keep = append(keep, id)
	}
	stats.Total = len(families)

	if len(keep) > 0 {
		hidden, err := r.repos.Family.DeactivateMissing(keep)
		if err != nil {
			log.Errorf("[Sync] Hiding absent families failed: %v", err)
		} else if hidden > 0 {
			log.Infof("[Sync] %d families hidden (absent from listing)", hidden)
		}
	}

	stats.Duration = time.Since(start)
	status := models.SyncStatusCompleted
	if stats.Failed > 0 {
		status = models.SyncStatusPartial
	}
	if err := r.repos.SyncMetadata.FinishRun(syncType, runID, status, stats, ""); err != nil {
		return fmt.Errorf("recording run result: %w", err)
	}
	r.invalidateStatusCache()

	log.Infof("[Sync] Family run %s finished: status=%s total=%d upserted=%d skipped=%d failed=%d",
		runID, status, stats.Total, stats.Updated, stats.Skipped, stats.Failed)
	return nil
}

// isHiddenFamily filters the supplier's express-logo families and anything
// the supplier itself flags as hidden.
func isHiddenFamily(f zecat.WireFamily) bool {
	if f.Show != nil && !*f.Show {
		return true
	}
	slug := strings.ToLower(f.Slug)
	title := strings.ToLower(f.DisplayTitle())
	return strings.HasPrefix(slug, hiddenFamilyPrefix) || strings.HasPrefix(title, hiddenFamilyPrefix)
}

func (r *Runner) recordFamilyFailure(id string, err error) {
	rec := repository.FailureRecord{
		SyncType:   models.FailedSourceZecat,
		EntityType: models.FailedEntityFamily,
		EntityID:   id,
		Message:    err.Error(),
		Attempts:   1,
	}
	if lerr := r.repos.FailedSync.RecordFailure(rec); lerr != nil {
		log.Errorf("[Sync] Ledger write failed for family %s: %v", id, lerr)
	}
}
