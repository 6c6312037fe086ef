package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/templetrust/templeledger/internal/core/domain"
)

// BalanceResponse defines the data returned for a single account balance.
type BalanceResponse struct {
	AccountCode string          `json:"accountCode"`
	AsOf        time.Time       `json:"asOf"`
	Balance     decimal.Decimal `json:"balance"`
}

// TrialBalanceRowResponse is one account's row in the trial balance.
type TrialBalanceRowResponse struct {
	AccountCode string              `json:"accountCode"`
	AccountName string              `json:"accountName"`
	Class       domain.AccountClass `json:"class"`
	Debit       decimal.Decimal     `json:"debit"`
	Credit      decimal.Decimal     `json:"credit"`
}

// TrialBalanceResponse is the full trial balance report.
type TrialBalanceResponse struct {
	AsOf        time.Time                 `json:"asOf"`
	Rows        []TrialBalanceRowResponse `json:"rows"`
	TotalDebit  decimal.Decimal           `json:"totalDebit"`
	TotalCredit decimal.Decimal           `json:"totalCredit"`
}

// ToTrialBalanceResponse converts the domain report to its DTO.
func ToTrialBalanceResponse(r *domain.TrialBalanceReport) TrialBalanceResponse {
	rows := make([]TrialBalanceRowResponse, len(r.Rows))
	for i, row := range r.Rows {
		rows[i] = TrialBalanceRowResponse{
			AccountCode: row.AccountCode,
			AccountName: row.AccountName,
			Class:       row.Class,
			Debit:       row.Debit,
			Credit:      row.Credit,
		}
	}
	return TrialBalanceResponse{
		AsOf:        r.AsOf,
		Rows:        rows,
		TotalDebit:  r.TotalDebit,
		TotalCredit: r.TotalCredit,
	}
}
