package syncer

import (
	"context"
	"errors"
	"strings"
	"sync/atomic"

	"github.com/promocraft/catalog/app/models"
	"github.com/promocraft/catalog/app/repository"
	"github.com/promocraft/catalog/internal/pkg/cache"
	"github.com/promocraft/catalog/internal/pkg/zecat"
)

// ErrAlreadyRunning is returned when another run of the same sync type holds
// the run lock.
var ErrAlreadyRunning = errors.New("syncer: a run of this sync type is already in progress")

// CatalogAPI is the slice of the supplier client the pipeline consumes.
// *zecat.Client satisfies it; tests substitute fakes.
type CatalogAPI interface {
	ListProductIDs(ctx context.Context) ([]string, error)
	FetchProduct(ctx context.Context, id string) (*models.CatalogEntry, error)
	ListFamilies(ctx context.Context) ([]zecat.WireFamily, error)
}

// Locker guards against two concurrent runs of the same sync type.
type Locker interface {
	Acquire(syncType, runID string) (bool, error)
	Release(syncType, runID string) error
}

type redisLocker struct{}

func (redisLocker) Acquire(syncType, runID string) (bool, error) {
	return cache.AcquireSyncLock(syncType, runID)
}

func (redisLocker) Release(syncType, runID string) error {
	return cache.ReleaseSyncLock(syncType, runID)
}

// NopLocker never blocks a run; used by tests and one-off manual invocations.
type NopLocker struct{}

func (NopLocker) Acquire(string, string) (bool, error) { return true, nil }
func (NopLocker) Release(string, string) error         { return nil }

// runStats are the shared counters workers update concurrently.
type runStats struct {
	created atomic.Int64
	updated atomic.Int64
	skipped atomic.Int64
	failed  atomic.Int64
}

func (s *runStats) snapshot(total int) repository.SyncStats {
	return repository.SyncStats{
		Total:   total,
		Created: int(s.created.Load()),
		Updated: int(s.updated.Load()),
		Skipped: int(s.skipped.Load()),
		Failed:  int(s.failed.Load()),
	}
}

// failureSource maps a SyncMetadata type to the short ledger source name,
// e.g. "zecat_sync" -> "zecat".
func failureSource(syncType string) string {
	return strings.TrimSuffix(syncType, "_sync")
}
