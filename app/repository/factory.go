package repository

import (
	"sync"

	"gorm.io/gorm"
)

// Factory manages repository instances and ensures they are singletons
type Factory struct {
	db    *gorm.DB
	repos *Repositories
	once  sync.Once
}

// NewFactory creates a new repository factory
func NewFactory(db *gorm.DB) *Factory {
	return &Factory{
		db: db,
	}
}

// GetRepositories returns a singleton instance of all repositories
func (f *Factory) GetRepositories() *Repositories {
	f.once.Do(func() {
		f.repos = NewRepositories(f.db)
	})
	return f.repos
}

// GetEntryRepository returns the catalog entry repository instance
func (f *Factory) GetEntryRepository() EntryRepository {
	return f.GetRepositories().Entry
}

// GetFamilyRepository returns the family repository instance
func (f *Factory) GetFamilyRepository() FamilyRepository {
	return f.GetRepositories().Family
}

// GetSyncMetadataRepository returns the sync metadata repository instance
func (f *Factory) GetSyncMetadataRepository() SyncMetadataRepository {
	return f.GetRepositories().SyncMetadata
}

// GetFailedSyncRepository returns the failure ledger repository instance
func (f *Factory) GetFailedSyncRepository() FailedSyncRepository {
	return f.GetRepositories().FailedSync
}

// GetDvEventRepository returns the webhook audit repository instance
func (f *Factory) GetDvEventRepository() DvEventRepository {
	return f.GetRepositories().DvEvent
}

// Global factory instance
var globalFactory *Factory
var factoryOnce sync.Once

// InitializeFactory initializes the global repository factory
func InitializeFactory(db *gorm.DB) {
	factoryOnce.Do(func() {
		globalFactory = NewFactory(db)
	})
}

// GetGlobalFactory returns the global repository factory instance
func GetGlobalFactory() *Factory {
	if globalFactory == nil {
		panic("Repository factory not initialized. Call InitializeFactory first.")
	}
	return globalFactory
}

// GetGlobalRepositories returns the global repositories instance
func GetGlobalRepositories() *Repositories {
	return GetGlobalFactory().GetRepositories()
}
