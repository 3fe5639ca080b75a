package cache

import (
	"time"
)

const (
	// Redis key prefixes
	SyncLockKeyPrefix     = "sync:lock:"
	SyncStatusOverviewKey = "sync:status:overview"

	// A sync run holding the lock longer than this is assumed dead.
	SyncLockTTL = 2 * time.Hour

	// The cached status document is short-lived; the database stays authoritative.
	SyncStatusTTL = 30 * time.Second
)

// AcquireSyncLock takes the per-sync-type run lock. Returns false when another
// run of the same type already holds it.
func AcquireSyncLock(syncType, runID string) (bool, error) {
	return GetClient().SetNX(ctx, SyncLockKeyPrefix+syncType, runID, SyncLockTTL).Result()
}

// ReleaseSyncLock releases the run lock if it is still owned by runID.
func ReleaseSyncLock(syncType, runID string) error {
	current, err := Get(SyncLockKeyPrefix + syncType)
	if err != nil {
		return nil // lock expired or cache unavailable; nothing to release
	}
	if current != runID {
		return nil
	}
	return Delete(SyncLockKeyPrefix + syncType)
}

// CacheSyncOverview stores the serialized status document dashboards poll.
func CacheSyncOverview(payload []byte) error {
	return Set(SyncStatusOverviewKey, payload, SyncStatusTTL)
}

// GetSyncOverview returns the cached status document, if any.
func GetSyncOverview() (string, error) {
	return Get(SyncStatusOverviewKey)
}

// InvalidateSyncOverview drops the cached status document so the next
// dashboard request reflects a just-finished run instead of waiting out the
// TTL.
func InvalidateSyncOverview() error {
	return Delete(SyncStatusOverviewKey)
}
