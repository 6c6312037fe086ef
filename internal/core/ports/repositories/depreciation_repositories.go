package repositories

import (
	"context"
	"time"

	"github.com/templetrust/templeledger/internal/core/domain"
)

// DepreciationReader defines read operations for asset depreciation data.
type DepreciationReader interface {
	// FindAssetByID retrieves one registered depreciable asset.
	FindAssetByID(ctx context.Context, assetID string) (*domain.DepreciableAsset, error)

	// FindScheduleByAsset retrieves an asset's stored schedule rows ordered
	// by period index.
	FindScheduleByAsset(ctx context.Context, assetID string) ([]domain.DepreciationScheduleEntry, error)

	// FindScheduleEntryByID retrieves one schedule row.
	FindScheduleEntryByID(ctx context.Context, scheduleID string) (*domain.DepreciationScheduleEntry, error)
}

// DepreciationWriter defines write operations for asset depreciation data.
type DepreciationWriter interface {
	// SaveAsset registers a depreciable asset.
	SaveAsset(ctx context.Context, asset domain.DepreciableAsset) error

	// SaveScheduleEntries inserts schedule rows. A unique index on
	// (asset, period index) keeps recomputation idempotent: existing rows are
	// left untouched and the number of newly inserted rows is returned.
	SaveScheduleEntries(ctx context.Context, entries []domain.DepreciationScheduleEntry) (int, error)

	// LinkJournalEntry records the journal entry that posted a schedule row.
	LinkJournalEntry(ctx context.Context, scheduleID string, journalEntryID string, updatedBy string, updatedAt time.Time) error
}

// DepreciationRepositoryFacade combines all depreciation repository interfaces.
type DepreciationRepositoryFacade interface {
	DepreciationReader
	DepreciationWriter
}
