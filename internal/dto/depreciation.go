package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/templetrust/templeledger/internal/core/domain"
)

// RegisterAssetRequest registers a depreciable asset for scheduling.
type RegisterAssetRequest struct {
	Name               string                    `json:"name" binding:"required"`
	Cost               decimal.Decimal           `json:"cost" binding:"required"`
	SalvageValue       decimal.Decimal           `json:"salvageValue"`
	UsefulLifePeriods  int                       `json:"usefulLifePeriods" binding:"omitempty,min=1"`
	Method             domain.DepreciationMethod `json:"method" binding:"required,oneof=STRAIGHT_LINE WRITTEN_DOWN_VALUE DOUBLE_DECLINING UNITS_OF_PRODUCTION ANNUITY SINKING_FUND DEPLETION"`
	Rate               decimal.Decimal           `json:"rate"`
	Multiplier         decimal.Decimal           `json:"multiplier"`
	InterestRate       decimal.Decimal           `json:"interestRate"`
	TotalUnits         decimal.Decimal           `json:"totalUnits"`
	UsageUnits         []decimal.Decimal         `json:"usageUnits"`
	AcquiredOn         time.Time                 `json:"acquiredOn" binding:"required"`
	ExpenseAccount     string                    `json:"expenseAccount" binding:"required,accountcode"`
	AccumulatedAccount string                    `json:"accumulatedAccount" binding:"required,accountcode"`
}

// ComputeScheduleRequest computes an asset's schedule up to a date.
type ComputeScheduleRequest struct {
	AsOf time.Time `json:"asOf" binding:"required"`
}

// ScheduleEntryResponse defines the data returned for one schedule row.
type ScheduleEntryResponse struct {
	ScheduleID       string          `json:"scheduleID"`
	AssetID          string          `json:"assetID"`
	PeriodIndex      int             `json:"periodIndex"`
	PeriodStart      time.Time       `json:"periodStart"`
	PeriodEnd        time.Time       `json:"periodEnd"`
	OpeningBookValue decimal.Decimal `json:"openingBookValue"`
	Charge           decimal.Decimal `json:"charge"`
	ClosingBookValue decimal.Decimal `json:"closingBookValue"`
	JournalEntryID   *string         `json:"journalEntryID,omitempty"`
}

// ToScheduleEntryResponse converts one schedule row to its DTO.
func ToScheduleEntryResponse(e *domain.DepreciationScheduleEntry) ScheduleEntryResponse {
	return ScheduleEntryResponse{
		ScheduleID:       e.ScheduleID,
		AssetID:          e.AssetID,
		PeriodIndex:      e.PeriodIndex,
		PeriodStart:      e.PeriodStart,
		PeriodEnd:        e.PeriodEnd,
		OpeningBookValue: e.OpeningBookValue,
		Charge:           e.Charge,
		ClosingBookValue: e.ClosingBookValue,
		JournalEntryID:   e.JournalEntryID,
	}
}

// ToScheduleEntryResponses converts a schedule to DTOs.
func ToScheduleEntryResponses(entries []domain.DepreciationScheduleEntry) []ScheduleEntryResponse {
	responses := make([]ScheduleEntryResponse, len(entries))
	for i := range entries {
		responses[i] = ToScheduleEntryResponse(&entries[i])
	}
	return responses
}
