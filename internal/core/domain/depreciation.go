package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// DepreciationMethod selects the charge formula for an asset.
type DepreciationMethod string

const (
	StraightLine     DepreciationMethod = "STRAIGHT_LINE"
	WrittenDownValue DepreciationMethod = "WRITTEN_DOWN_VALUE"
	DoubleDeclining  DepreciationMethod = "DOUBLE_DECLINING"
	UnitsOfProduction DepreciationMethod = "UNITS_OF_PRODUCTION"
	Annuity          DepreciationMethod = "ANNUITY"
	SinkingFund      DepreciationMethod = "SINKING_FUND"
	Depletion        DepreciationMethod = "DEPLETION"
)

// DepreciableAsset carries everything the calculator needs for one asset.
// Usage-based methods read per-period units from UsageUnits, indexed by
// period (period 1 at index 0).
type DepreciableAsset struct {
	AssetID           string             `json:"assetID"`
	Name              string             `json:"name"`
	Cost              decimal.Decimal    `json:"cost"`
	SalvageValue      decimal.Decimal    `json:"salvageValue"`
	UsefulLifePeriods int                `json:"usefulLifePeriods"`
	Method            DepreciationMethod `json:"method"`
	Rate              decimal.Decimal    `json:"rate"`         // WDV family, e.g. 0.20
	Multiplier        decimal.Decimal    `json:"multiplier"`   // Declining-balance multiplier, e.g. 2
	InterestRate      decimal.Decimal    `json:"interestRate"` // Annuity / sinking fund
	TotalUnits        decimal.Decimal    `json:"totalUnits"`   // Estimated units or reserves
	UsageUnits        []decimal.Decimal  `json:"usageUnits,omitempty"`
	AcquiredOn        time.Time          `json:"acquiredOn"`
	ExpenseAccount    string             `json:"expenseAccount"`     // Depreciation expense account code
	AccumulatedAccount string            `json:"accumulatedAccount"` // Accumulated depreciation account code
	AuditFields
}

// DepreciationScheduleEntry is one period's slice of an asset's depreciation
// schedule. At most one row exists per (asset, period index).
type DepreciationScheduleEntry struct {
	ScheduleID       string          `json:"scheduleID"`
	AssetID          string          `json:"assetID"`
	PeriodIndex      int             `json:"periodIndex"` // 1-based
	PeriodStart      time.Time       `json:"periodStart"`
	PeriodEnd        time.Time       `json:"periodEnd"`
	OpeningBookValue decimal.Decimal `json:"openingBookValue"`
	Charge           decimal.Decimal `json:"charge"`
	ClosingBookValue decimal.Decimal `json:"closingBookValue"`
	JournalEntryID   *string         `json:"journalEntryID"` // Set once the charge is posted
	AuditFields
}
