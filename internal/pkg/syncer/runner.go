package syncer

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gofiber/fiber/v2/log"
	"github.com/google/uuid"

	"github.com/promocraft/catalog/app/models"
	"github.com/promocraft/catalog/app/repository"
	"github.com/promocraft/catalog/internal/pkg/cache"
	"github.com/promocraft/catalog/internal/pkg/env"
	"github.com/promocraft/catalog/internal/pkg/metrics/counter"
	"github.com/promocraft/catalog/internal/pkg/sku"
	"github.com/promocraft/catalog/internal/pkg/zecat"
)

const (
	DefaultConcurrency = 3
	// DefaultMaxRetries matches the fetch attempts the supplier client makes
	// when it is not configured explicitly, so ledger attempt counts stay
	// truthful.
	DefaultMaxRetries = 3
	// How many failed entities the end-of-run summary enumerates.
	failureSummaryLimit = 10
)

// Options configure one Runner. Zero values fall back to the defaults the
// environment configuration declares.
type Options struct {
	SyncType    string
	Concurrency int
	MaxRetries  int
	Incremental bool
}

// OptionsFromEnv reads the ZECAT_* pipeline knobs.
func OptionsFromEnv() Options {
	concurrency, _ := strconv.Atoi(env.GetEnv("ZECAT_CONCURRENCY", "3"))
	maxRetries, _ := strconv.Atoi(env.GetEnv("ZECAT_MAX_RETRIES", "3"))
	return Options{
		SyncType:    models.SyncTypeZecat,
		Concurrency: concurrency,
		MaxRetries:  maxRetries,
		Incremental: env.GetEnv("ZECAT_INCREMENTAL_SYNC", "false") == "true",
	}
}

// Runner drives one pull-based reconciliation of the supplier catalog against
// the local store: list ids, fan out detail fetches through a bounded worker
// pool, upsert, and record the outcome in the sync metadata and the failure
// ledger.
type Runner struct {
	api    CatalogAPI
	repos  *repository.Repositories
	locker Locker
	opts   Options
}

// NewRunner creates a Runner backed by the redis run lock.
func NewRunner(api CatalogAPI, repos *repository.Repositories, opts Options) *Runner {
	return NewRunnerWithLocker(api, repos, redisLocker{}, opts)
}

// NewRunnerWithLocker creates a Runner with an explicit Locker.
func NewRunnerWithLocker(api CatalogAPI, repos *repository.Repositories, locker Locker, opts Options) *Runner {
	if opts.SyncType == "" {
		opts.SyncType = models.SyncTypeZecat
	}
	if opts.Concurrency <= 0 {
		opts.Concurrency = DefaultConcurrency
	}
	if opts.MaxRetries <= 0 {
		opts.MaxRetries = DefaultMaxRetries
	}
	return &Runner{api: api, repos: repos, locker: locker, opts: opts}
}

// Run executes one full sync. Per-entity failures are isolated and recorded;
// only a listing failure or a metadata persistence failure aborts the run.
func (r *Runner) Run(ctx context.Context) error {
	runID := uuid.New().String()

	ok, err := r.locker.Acquire(r.opts.SyncType, runID)
	if err != nil {
		log.Warnf("[Sync] Run lock unavailable, proceeding without it: %v", err)
	} else if !ok {
		return ErrAlreadyRunning
	}
	defer r.locker.Release(r.opts.SyncType, runID)

	log.Infof("[Sync] Starting %s run %s (concurrency=%d incremental=%v)",
		r.opts.SyncType, runID, r.opts.Concurrency, r.opts.Incremental)

	if err := r.repos.SyncMetadata.BeginRun(r.opts.SyncType, runID); err != nil {
		return fmt.Errorf("recording run start: %w", err)
	}
	start := time.Now()

	ids, err := r.api.ListProductIDs(ctx)
	if err != nil {
		// A truncated id list must never be acted upon: the whole run fails.
		stats := repository.SyncStats{Duration: time.Since(start)}
		if ferr := r.repos.SyncMetadata.FinishRun(r.opts.SyncType, runID, models.SyncStatusFailed, stats, err.Error()); ferr != nil {
			log.Errorf("[Sync] Recording failed run: %v", ferr)
		}
		return fmt.Errorf("listing catalog ids: %w", err)
	}

	total := len(ids)
	log.Infof("[Sync] %d catalog ids listed", total)

	stats := &runStats{}
	progressEvery := total / 20 // ~5% steps
	if progressEvery < 10 {
		progressEvery = 10
	}

	var next atomic.Int64
	var wg sync.WaitGroup
	for w := 0; w < r.opts.Concurrency; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				idx := int(next.Add(1)) - 1
				if idx >= total {
					return
				}
				r.syncOne(ctx, ids[idx], stats)

				if done := idx + 1; done%progressEvery == 0 || done == total {
					log.Infof("[Sync] Progress %d/%d | created=%d updated=%d skipped=%d failed=%d",
						done, total,
						stats.created.Load(), stats.updated.Load(), stats.skipped.Load(), stats.failed.Load())
				}
			}
		}()
	}
	// All workers must have drained before the metadata is finalized,
	// otherwise incomplete stats would be reported as final.
	wg.Wait()

	final := stats.snapshot(total)
	final.Duration = time.Since(start)

	status := models.SyncStatusCompleted
	if final.Failed > 0 {
		status = models.SyncStatusPartial
	}
	if err := r.repos.SyncMetadata.FinishRun(r.opts.SyncType, runID, status, final, ""); err != nil {
		return fmt.Errorf("recording run result: %w", err)
	}
	r.invalidateStatusCache()
	if err := counter.FlushAll(); err != nil {
		log.Warnf("[Sync] Flushing touch counters: %v", err)
	}

	log.Infof("[Sync] %s run %s finished: status=%s total=%d created=%d updated=%d skipped=%d failed=%d duration=%s",
		r.opts.SyncType, runID, status, final.Total, final.Created, final.Updated, final.Skipped, final.Failed, final.Duration)
	if final.Failed > 0 {
		r.logFailures()
	}

	return nil
}

// syncOne runs the strictly sequential per-entity lifecycle:
// fetch -> change detect -> upsert -> ledger/counters.
func (r *Runner) syncOne(ctx context.Context, id string, stats *runStats) {
	source := failureSource(r.opts.SyncType)

	entry, err := r.api.FetchProduct(ctx, id)
	if err != nil {
		stats.failed.Add(1)
		r.recordFailure(source, id, err, r.opts.MaxRetries)
		log.Errorf("[Sync] Fetch failed for id %s: %v", id, err)
		return
	}

	existing, err := r.repos.Entry.FindByAnyID(id)
	if err != nil {
		stats.failed.Add(1)
		r.recordFailure(source, id, err, 1)
		log.Errorf("[Sync] Lookup failed for id %s: %v", id, err)
		return
	}

	// SKUs are generated before the change check so a stored record with
	// completed SKUs compares equal to a fresh fetch of the same data.
	sku.EnsureVariantSKUs(entry.BaseIdentifier(), entry.Variants)

	if r.opts.Incremental && existing != nil && !EntryChanged(existing, entry) {
		stats.skipped.Add(1)
		r.resolveEntity(source, id)
		return
	}

	outcome, err := r.repos.Entry.UpsertFromSupplier(entry)
	if err != nil {
		stats.failed.Add(1)
		r.recordFailure(source, id, err, 1)
		log.Errorf("[Sync] Upsert failed for id %s: %v", id, err)
		return
	}

	switch outcome {
	case repository.OutcomeCreated:
		stats.created.Add(1)
	case repository.OutcomeUpdated:
		stats.updated.Add(1)
	default:
		stats.skipped.Add(1)
	}
	_ = counter.AddEntrySyncTouch(entry.ID)
	r.resolveEntity(source, id)
}

func (r *Runner) recordFailure(source, id string, err error, attempts int) {
	rec := repository.FailureRecord{
		SyncType:   source,
		EntityType: models.FailedEntityProduct,
		EntityID:   id,
		Message:    err.Error(),
		Attempts:   attempts,
	}
	var statusErr *zecat.StatusError
	if errors.As(err, &statusErr) {
		rec.StatusCode = statusErr.StatusCode
	}
	if lerr := r.repos.FailedSync.RecordFailure(rec); lerr != nil {
		log.Errorf("[Sync] Ledger write failed for id %s: %v", id, lerr)
	}
}

// resolveEntity closes a previously recorded failure after the entity synced
// successfully. Ledger problems never fail the entity.
func (r *Runner) resolveEntity(source, id string) {
	if err := r.repos.FailedSync.ResolveEntity(source, models.FailedEntityProduct, id); err != nil {
		log.Warnf("[Sync] Auto-resolve failed for id %s: %v", id, err)
	}
}

// invalidateStatusCache drops the cached dashboard document so the next
// status request sees this run. Cache problems are logged, never fatal: the
// database stays authoritative.
func (r *Runner) invalidateStatusCache() {
	if err := cache.InvalidateSyncOverview(); err != nil {
		log.Warnf("[Sync] Status cache invalidation failed: %v", err)
	}
}

func (r *Runner) logFailures() {
	failures, err := r.repos.FailedSync.Unresolved(failureSource(r.opts.SyncType), failureSummaryLimit)
	if err != nil {
		log.Warnf("[Sync] Could not enumerate failures: %v", err)
		return
	}
	log.Warnf("[Sync] First %d unresolved failures:", len(failures))
	for i, f := range failures {
		log.Warnf("[Sync]   %d. %s %s (attempts=%d): %s", i+1, f.EntityType, f.EntityID, f.AttemptCount, f.ErrorMessage)
	}
}
