package repository

import (
	"time"

	"gorm.io/gorm"

	"github.com/promocraft/catalog/app/models"
)

// UpsertOutcome classifies what an upsert did to the store.
type UpsertOutcome string

const (
	OutcomeCreated UpsertOutcome = "created"
	OutcomeUpdated UpsertOutcome = "updated"
	OutcomeSkipped UpsertOutcome = "skipped"
)

// SyncStats are the aggregate counters of one sync run.
type SyncStats struct {
	Total    int
	Created  int
	Updated  int
	Skipped  int
	Failed   int
	Duration time.Duration
}

// FailureRecord is one per-entity failure reported to the ledger.
type FailureRecord struct {
	SyncType   string
	EntityType string
	EntityID   string
	Message    string
	Code       string
	StatusCode int
	Attempts   int
	Payload    []byte
}

// EntryRepository defines catalog-entry database operations
type EntryRepository interface {
	// FindByAnyID matches on the supplier identifier OR the legacy external
	// identifier, because the same logical entry may have been created under
	// either naming scheme historically.
	FindByAnyID(supplierID string) (*models.CatalogEntry, error)
	GetByID(id uint) (*models.CatalogEntry, error)
	GetByDataverseID(dataverseID string) (*models.CatalogEntry, error)
	// UpsertFromSupplier writes the normalized record with full-overwrite
	// semantics and mirrors the supplier id into the legacy identifier field.
	UpsertFromSupplier(entry *models.CatalogEntry) (UpsertOutcome, error)
	Create(entry *models.CatalogEntry) error
	Save(entry *models.CatalogEntry) error
	Count() (int64, error)
}

// FamilyRepository defines family database operations
type FamilyRepository interface {
	Upsert(family *models.Family) error
	// DeactivateMissing hides families absent from the latest supplier
	// listing instead of deleting them. Returns the number of rows hidden.
	DeactivateMissing(keepSupplierIDs []string) (int64, error)
	Count() (int64, error)
}

// SyncMetadataRepository maintains the single rolling status record per sync type
type SyncMetadataRepository interface {
	BeginRun(syncType, runID string) error
	FinishRun(syncType, runID, status string, stats SyncStats, errMessage string) error
	GetByType(syncType string) (*models.SyncMetadata, error)
	GetAll() ([]models.SyncMetadata, error)
}

// FailedSyncRepository is the durable per-entity failure ledger
type FailedSyncRepository interface {
	// RecordFailure upserts the unresolved record for the entity, adding the
	// consumed attempts and overwriting the error detail.
	RecordFailure(rec FailureRecord) error
	Unresolved(syncType string, limit int) ([]models.FailedSync, error)
	CountUnresolved(syncType string) (int64, error)
	Resolve(id uint) error
	// ResolveEntity marks any unresolved record for the entity as resolved;
	// called after a later successful sync of the same entity.
	ResolveEntity(syncType, entityType, entityID string) error
}

// DvEventRepository is the append-only webhook audit log
type DvEventRepository interface {
	Append(event *models.DvEvent) error
	ListByEntry(entryID uint, limit int) ([]models.DvEvent, error)
}

// Repositories struct holds all repository instances
type Repositories struct {
	Entry        EntryRepository
	Family       FamilyRepository
	SyncMetadata SyncMetadataRepository
	FailedSync   FailedSyncRepository
	DvEvent      DvEventRepository
}

// NewRepositories creates a new instance of all repositories
func NewRepositories(db *gorm.DB) *Repositories {
	return &Repositories{
		Entry:        NewEntryRepository(db),
		Family:       NewFamilyRepository(db),
		SyncMetadata: NewSyncMetadataRepository(db),
		FailedSync:   NewFailedSyncRepository(db),
		DvEvent:      NewDvEventRepository(db),
	}
}
