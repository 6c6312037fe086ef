package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/templetrust/templeledger/internal/core/domain"
)

// EntryLineRequest is one debit or credit line of a new journal entry.
// Exactly one side, always a positive amount.
type EntryLineRequest struct {
	AccountCode string             `json:"accountCode" binding:"required,accountcode"`
	Side        domain.BalanceSide `json:"side" binding:"required,oneof=DEBIT CREDIT"`
	Amount      decimal.Decimal    `json:"amount" binding:"required"`
}

// CreateEntryRequest defines the data originating modules supply to record a
// journal entry. SourceType/SourceID form the idempotency key.
type CreateEntryRequest struct {
	Date       time.Time          `json:"date" binding:"required"`
	Narration  string             `json:"narration" binding:"required"`
	SourceType string             `json:"sourceType"`
	SourceID   string             `json:"sourceID"`
	Lines      []EntryLineRequest `json:"lines" binding:"required,min=2,dive"`
}

// SourceRef builds the domain source reference from the request.
func (r CreateEntryRequest) SourceRef() domain.SourceRef {
	return domain.SourceRef{Type: r.SourceType, ID: r.SourceID}
}

// ReverseEntryRequest defines the data needed to reverse a posted entry.
type ReverseEntryRequest struct {
	Date   time.Time `json:"date" binding:"required"`
	Reason string    `json:"reason" binding:"required"`
}

// LineResponse defines the data returned for a journal line.
type LineResponse struct {
	LineID      string             `json:"lineID"`
	AccountCode string             `json:"accountCode"`
	Side        domain.BalanceSide `json:"side"`
	Amount      decimal.Decimal    `json:"amount"`
}

// EntryResponse defines the data returned for a journal entry.
type EntryResponse struct {
	EntryID           string             `json:"entryID"`
	EntryDate         time.Time          `json:"entryDate"`
	Narration         string             `json:"narration"`
	Status            domain.EntryStatus `json:"status"`
	SourceType        string             `json:"sourceType,omitempty"`
	SourceID          string             `json:"sourceID,omitempty"`
	ReversesEntryID   *string            `json:"reversesEntryID,omitempty"`
	ReversedByEntryID *string            `json:"reversedByEntryID,omitempty"`
	Lines             []LineResponse     `json:"lines,omitempty"`
	CreatedAt         time.Time          `json:"createdAt"`
	CreatedBy         string             `json:"createdBy"`
}

// ToEntryResponse converts a domain.JournalEntry to EntryResponse DTO.
func ToEntryResponse(e *domain.JournalEntry) EntryResponse {
	resp := EntryResponse{
		EntryID:           e.EntryID,
		EntryDate:         e.EntryDate,
		Narration:         e.Narration,
		Status:            e.Status,
		SourceType:        e.Source.Type,
		SourceID:          e.Source.ID,
		ReversesEntryID:   e.ReversesEntryID,
		ReversedByEntryID: e.ReversedByEntryID,
		CreatedAt:         e.CreatedAt,
		CreatedBy:         e.CreatedBy,
	}
	if len(e.Lines) > 0 {
		resp.Lines = make([]LineResponse, len(e.Lines))
		for i, l := range e.Lines {
			resp.Lines[i] = LineResponse{
				LineID:      l.LineID,
				AccountCode: l.AccountCode,
				Side:        l.Side,
				Amount:      l.Amount,
			}
		}
	}
	return resp
}
