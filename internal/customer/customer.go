package customer

import (
	"errors"
	"time"
)

// Frequency is how often the collector visits a customer.
type Frequency string

const (
	FrequencyWeekly  Frequency = "WEEKLY"
	FrequencyMonthly Frequency = "MONTHLY"
)

func (f Frequency) Valid() bool {
	return f == FrequencyWeekly || f == FrequencyMonthly
}

var (
	ErrNotFound = errors.New("customer not found")
	ErrInvalid  = errors.New("invalid customer")
)

// Customer is a borrower on the collection round. The id is assigned by the
// store on creation.
type Customer struct {
	ID        int64
	Name      string
	Phone     string
	Address   string
	Frequency Frequency
	CreatedAt time.Time
}
