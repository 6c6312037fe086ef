package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/templetrust/templeledger/internal/core/domain"
)

// SetupYearRequest starts a new financial year at the given date.
type SetupYearRequest struct {
	StartDate time.Time `json:"startDate" binding:"required"`
}

// ClosePeriodRequest closes a financial period as of the closing date.
type ClosePeriodRequest struct {
	ClosingDate time.Time `json:"closingDate" binding:"required"`
}

// PeriodResponse defines the data returned for a financial period.
type PeriodResponse struct {
	PeriodID  string              `json:"periodID"`
	Kind      domain.PeriodKind   `json:"kind"`
	StartDate time.Time           `json:"startDate"`
	EndDate   time.Time           `json:"endDate"`
	Status    domain.PeriodStatus `json:"status"`
	ClosedAt  *time.Time          `json:"closedAt,omitempty"`
}

// ToPeriodResponse converts a domain.FinancialPeriod to PeriodResponse DTO.
func ToPeriodResponse(p *domain.FinancialPeriod) PeriodResponse {
	return PeriodResponse{
		PeriodID:  p.PeriodID,
		Kind:      p.Kind,
		StartDate: p.StartDate,
		EndDate:   p.EndDate,
		Status:    p.Status,
		ClosedAt:  p.ClosedAt,
	}
}

// ToPeriodResponses converts a slice of periods to DTOs.
func ToPeriodResponses(periods []domain.FinancialPeriod) []PeriodResponse {
	responses := make([]PeriodResponse, len(periods))
	for i := range periods {
		responses[i] = ToPeriodResponse(&periods[i])
	}
	return responses
}

// ClosingResultResponse reports a successful period close.
type ClosingResultResponse struct {
	PeriodID       string                     `json:"periodID"`
	ClosedAt       time.Time                  `json:"closedAt"`
	ClosingEntryID *string                    `json:"closingEntryID,omitempty"`
	NextPeriodID   string                     `json:"nextPeriodID"`
	Snapshot       map[string]decimal.Decimal `json:"snapshot"`
}

// ToClosingResultResponse converts a domain.ClosingResult to its DTO.
func ToClosingResultResponse(r *domain.ClosingResult) ClosingResultResponse {
	return ClosingResultResponse{
		PeriodID:       r.PeriodID,
		ClosedAt:       r.ClosedAt,
		ClosingEntryID: r.ClosingEntryID,
		NextPeriodID:   r.NextPeriodID,
		Snapshot:       r.Snapshot,
	}
}
