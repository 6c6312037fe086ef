package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/templetrust/templeledger/internal/core/domain"
)

// StatementLineRequest is one row of an imported bank statement.
type StatementLineRequest struct {
	StatementDate time.Time          `json:"statementDate" binding:"required"`
	Amount        decimal.Decimal    `json:"amount" binding:"required"`
	Direction     domain.BalanceSide `json:"direction" binding:"required,oneof=DEBIT CREDIT"`
	Description   string             `json:"description"`
	ExternalRef   string             `json:"externalRef" binding:"required"`
}

// ImportStatementRequest imports a bank statement for one ledger bank account.
type ImportStatementRequest struct {
	AccountCode string                 `json:"accountCode" binding:"required,accountcode"`
	Lines       []StatementLineRequest `json:"lines" binding:"required,min=1,dive"`
}

// AutoMatchRequest runs automatic matching for one bank account.
// WindowDays of zero uses the configured default.
type AutoMatchRequest struct {
	AccountCode string `json:"accountCode" binding:"required,accountcode"`
	WindowDays  int    `json:"windowDays" binding:"omitempty,min=1"`
}

// ManualMatchRequest links a statement line and a journal line by hand.
type ManualMatchRequest struct {
	StatementLineID string `json:"statementLineID" binding:"required"`
	JournalLineID   string `json:"journalLineID" binding:"required"`
}

// MatchResponse defines the data returned for a reconciliation match.
type MatchResponse struct {
	MatchID         string                 `json:"matchID"`
	StatementLineID string                 `json:"statementLineID"`
	JournalLineID   string                 `json:"journalLineID"`
	Confidence      domain.MatchConfidence `json:"confidence"`
	AmountMismatch  bool                   `json:"amountMismatch"`
	Inconsistent    bool                   `json:"inconsistent"`
	MatchedAt       time.Time              `json:"matchedAt"`
}

// ToMatchResponse converts a domain.ReconciliationMatch to MatchResponse DTO.
func ToMatchResponse(m *domain.ReconciliationMatch) MatchResponse {
	return MatchResponse{
		MatchID:         m.MatchID,
		StatementLineID: m.StatementLineID,
		JournalLineID:   m.JournalLineID,
		Confidence:      m.Confidence,
		AmountMismatch:  m.AmountMismatch,
		Inconsistent:    m.Inconsistent,
		MatchedAt:       m.MatchedAt,
	}
}

// ToMatchResponses converts a slice of matches to DTOs.
func ToMatchResponses(ms []domain.ReconciliationMatch) []MatchResponse {
	responses := make([]MatchResponse, len(ms))
	for i := range ms {
		responses[i] = ToMatchResponse(&ms[i])
	}
	return responses
}

// AutoMatchResponse reports the outcome of one automatic matching run.
type AutoMatchResponse struct {
	Matches   []MatchResponse `json:"matches"`
	Ambiguous []string        `json:"ambiguous"`
	Unmatched []string        `json:"unmatched"`
}
