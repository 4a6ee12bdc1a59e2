package loan

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/emicollect/internal/loan"
)

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

type paymentResponse struct {
	ID         uuid.UUID       `json:"id"`
	LoanID     int64           `json:"loan_id"`
	AmountPaid decimal.Decimal `json:"amount_paid"`
	DatePaid   time.Time       `json:"date_paid"`
}

// settlementResponse is what the collector sees right after taking money:
// the recorded payment, the loan as it now stands, and ready-to-share
// receipt text.
type settlementResponse struct {
	Payment paymentResponse `json:"payment"`
	Loan    loanResponse    `json:"loan"`
	Receipt string          `json:"receipt"`
}

func toResponse(l *loan.Loan) loanResponse {
	return loanResponse{
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

func toPaymentResponse(p *loan.Payment) paymentResponse {
	return paymentResponse{
		ID:         p.ID,
		LoanID:     p.LoanID,
		AmountPaid: p.AmountPaid,
		DatePaid:   p.DatePaid,
	}
}

func toPaymentResponseList(payments []*loan.Payment) []paymentResponse {
	resp := make([]paymentResponse, len(payments))
	for i, p := range payments {
		resp[i] = toPaymentResponse(p)
	}

	return resp
}
