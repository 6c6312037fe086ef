package dto

import (
	"time"

	"github.com/templetrust/templeledger/internal/core/domain"
)

// CreateAccountRequest defines the data needed to create a new account.
// The account class and normal balance side are derived from the code's
// leading digit, not supplied by the caller.
type CreateAccountRequest struct {
	Code          string `json:"code" binding:"required,accountcode"`
	Name          string `json:"name" binding:"required"`
	ParentCode    string `json:"parentCode" binding:"omitempty,accountcode"`
	IsBankAccount bool   `json:"isBankAccount"`
}

// AccountResponse defines the data returned for an account.
type AccountResponse struct {
	Code          string              `json:"code"`
	Name          string              `json:"name"`
	Class         domain.AccountClass `json:"class"`
	NormalBalance domain.BalanceSide  `json:"normalBalance"`
	ParentCode    string              `json:"parentCode"`
	IsBankAccount bool                `json:"isBankAccount"`
	IsActive      bool                `json:"isActive"`
	CreatedAt     time.Time           `json:"createdAt"`
	CreatedBy     string              `json:"createdBy"`
}

// ToAccountResponse converts a domain.Account to AccountResponse DTO.
func ToAccountResponse(acc *domain.Account) AccountResponse {
	return AccountResponse{
		Code:          acc.Code,
		Name:          acc.Name,
		Class:         acc.Class,
		NormalBalance: acc.NormalBalance,
		ParentCode:    acc.ParentCode,
		IsBankAccount: acc.IsBankAccount,
		IsActive:      acc.IsActive,
		CreatedAt:     acc.CreatedAt,
		CreatedBy:     acc.CreatedBy,
	}
}

// ToAccountResponses converts a slice of domain.Account to []AccountResponse.
func ToAccountResponses(accs []domain.Account) []AccountResponse {
	responses := make([]AccountResponse, len(accs))
	for i := range accs {
		responses[i] = ToAccountResponse(&accs[i])
	}
	return responses
}
