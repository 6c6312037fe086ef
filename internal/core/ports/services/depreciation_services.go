package services

import (
	"context"
	"time"

	"github.com/templetrust/templeledger/internal/core/domain"
	"github.com/templetrust/templeledger/internal/dto"
)

// DepreciationSvcFacade computes per-asset depreciation schedules and posts
// their charges into the ledger.
type DepreciationSvcFacade interface {
	// RegisterAsset stores a depreciable asset for scheduling.
	RegisterAsset(ctx context.Context, req dto.RegisterAssetRequest, actorID string) (*domain.DepreciableAsset, error)

	// GetAsset retrieves a registered asset.
	GetAsset(ctx context.Context, assetID string) (*domain.DepreciableAsset, error)

	// ComputeSchedule computes the asset's schedule up to asOf. Idempotent per
	// (asset, period): already-stored rows are returned, never duplicated.
	ComputeSchedule(ctx context.Context, assetID string, asOf time.Time, actorID string) ([]domain.DepreciationScheduleEntry, error)

	// PostScheduleEntry posts one schedule row as a two-line entry
	// (debit depreciation expense, credit accumulated depreciation).
	// Propagates ledger posting failures such as ErrPeriodClosed.
	PostScheduleEntry(ctx context.Context, scheduleID string, actorID string) (*domain.JournalEntry, error)
}
