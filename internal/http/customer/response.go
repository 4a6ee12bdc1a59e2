package customer

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/emicollect/internal/customer"
	"github.com/MrJamesThe3rd/emicollect/internal/loan"
	"github.com/MrJamesThe3rd/emicollect/internal/ranking"
)

type customerResponse struct {
	ID        int64              `json:"id"`
	Name      string             `json:"name"`
	Phone     string             `json:"phone"`
	Address   string             `json:"address"`
	Frequency customer.Frequency `json:"frequency"`
	CreatedAt time.Time          `json:"created_at"`
}

// debtStatusResponse is a worklist row: the customer plus the aggregates the
// collector sorts by.
type debtStatusResponse struct {
	customerResponse

	TotalRemainingDebt  decimal.Decimal `json:"total_remaining_debt"`
	EarliestNextDueDate *time.Time      `json:"earliest_next_due_date,omitempty"`
}

func toResponse(c *customer.Customer) customerResponse {
	return customerResponse{
		ID:        c.ID,
		Name:      c.Name,
		Phone:     c.Phone,
		Address:   c.Address,
		Frequency: c.Frequency,
		CreatedAt: c.CreatedAt,
	}
}

func toStatusResponse(s ranking.DebtStatus) debtStatusResponse {
	return debtStatusResponse{
		customerResponse:    toResponse(s.Customer),
		TotalRemainingDebt:  s.TotalRemainingDebt,
		EarliestNextDueDate: s.EarliestNextDueDate,
	}
}

func toStatusResponseList(statuses []ranking.DebtStatus) []debtStatusResponse {
	resp := make([]debtStatusResponse, len(statuses))
	for i, s := range statuses {
		resp[i] = toStatusResponse(s)
	}

	return resp
}

type loanResponse struct {
	ID             int64           `json:"id"`
	CustomerID     int64           `json:"customer_id"`
	ItemName       string          `json:"item_name"`
	TotalPrincipal decimal.Decimal `json:"total_principal"`
	DownPayment    decimal.Decimal `json:"down_payment"`
	CurrentBalance decimal.Decimal `json:"current_balance"`
	Frequency      loan.Frequency  `json:"frequency"`
	NextDueDate    time.Time       `json:"next_due_date"`
	IsClosed       bool            `json:"is_closed"`
}

func loansToResponseList(loans []*loan.Loan) []loanResponse {
	resp := make([]loanResponse, len(loans))
	for i, l := range loans {
		resp[i] = loanResponse{
			ID:             l.ID,
			CustomerID:     l.CustomerID,
			ItemName:       l.ItemName,
			TotalPrincipal: l.TotalPrincipal,
			DownPayment:    l.DownPayment,
			CurrentBalance: l.CurrentBalance,
			Frequency:      l.Frequency,
			NextDueDate:    l.NextDueDate,
			IsClosed:       l.IsClosed,
		}
	}

	return resp
}
