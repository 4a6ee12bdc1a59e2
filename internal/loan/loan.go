package loan

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Frequency is the installment cadence a loan was written with.
type Frequency string

const (
	FrequencyWeekly  Frequency = "WEEKLY"
	FrequencyMonthly Frequency = "MONTHLY"
)

func (f Frequency) Valid() bool {
	return f == FrequencyWeekly || f == FrequencyMonthly
}

var (
	ErrNotFound      = errors.New("loan not found")
	ErrInvalidAmount = errors.New("invalid payment amount")
	ErrInvalidLoan   = errors.New("invalid loan")
)

// Loan is a single financed item with a shrinking balance and a recurring
// due date. CurrentBalance never goes below zero and IsClosed holds exactly
// when the balance reaches zero.
type Loan struct {
	ID             int64
	CustomerID     int64
	ItemName       string
	TotalPrincipal decimal.Decimal
	DownPayment    decimal.Decimal
	CurrentBalance decimal.Decimal
	Frequency      Frequency
	NextDueDate    time.Time
	IsClosed       bool
}

// Payment is an append-only record of an installment received against a
// loan. Exactly one is written per successful settlement.
type Payment struct {
	ID         uuid.UUID
	LoanID     int64
	AmountPaid decimal.Decimal
	DatePaid   time.Time
}
