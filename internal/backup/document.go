package backup

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/emicollect/internal/customer"
	"github.com/MrJamesThe3rd/emicollect/internal/loan"
)

var ErrMalformedBackup = errors.New("malformed backup")

// Document is the transfer format: one JSON object with all records and a
// snapshot timestamp. Dates travel as integer milliseconds and frequencies
// as their name strings, matching backups written by the original mobile
// app. Payment records keep the legacy "transactions" field name.
type Document struct {
	Customers    []CustomerRecord `json:"customers"`
	Loans        []LoanRecord     `json:"loans"`
	Transactions []PaymentRecord  `json:"transactions"`
	Timestamp    int64            `json:"timestamp"`
}

type CustomerRecord struct {
	ID        int64  `json:"id"`
	Name      string `json:"name"`
	Phone     string `json:"phone"`
	Address   string `json:"address"`
	Frequency string `json:"frequency"`
	CreatedAt int64  `json:"createdAt"`
}

type LoanRecord struct {
	ID             int64           `json:"loanId"`
	CustomerID     int64           `json:"customerId"`
	ItemName       string          `json:"itemName"`
	TotalPrincipal decimal.Decimal `json:"totalPrincipal"`
	DownPayment    decimal.Decimal `json:"downPayment"`
	CurrentBalance decimal.Decimal `json:"currentBalance"`
	Frequency      string          `json:"emiFrequency"`
	NextDueDate    int64           `json:"nextDueDate"`
	IsClosed       bool            `json:"isClosed"`
}

type PaymentRecord struct {
	ID         string          `json:"transactionId"`
	LoanID     int64           `json:"loanId"`
	AmountPaid decimal.Decimal `json:"amountPaid"`
	DatePaid   int64           `json:"datePaid"`
}

// NewDocument snapshots the given records into the transfer format.
func NewDocument(customers []*customer.Customer, loans []*loan.Loan, payments []*loan.Payment, at time.Time) *Document {
	doc := &Document{
		Customers:    make([]CustomerRecord, 0, len(customers)),
		Loans:        make([]LoanRecord, 0, len(loans)),
		Transactions: make([]PaymentRecord, 0, len(payments)),
		Timestamp:    at.UnixMilli(),
	}

	for _, c := range customers {
		doc.Customers = append(doc.Customers, CustomerRecord{
			ID:        c.ID,
			Name:      c.Name,
			Phone:     c.Phone,
			Address:   c.Address,
			Frequency: string(c.Frequency),
			CreatedAt: c.CreatedAt.UnixMilli(),
		})
	}

	for _, l := range loans {
		doc.Loans = append(doc.Loans, LoanRecord{
			ID:             l.ID,
			CustomerID:     l.CustomerID,
			ItemName:       l.ItemName,
			TotalPrincipal: l.TotalPrincipal,
			DownPayment:    l.DownPayment,
			CurrentBalance: l.CurrentBalance,
			Frequency:      string(l.Frequency),
			NextDueDate:    l.NextDueDate.UnixMilli(),
			IsClosed:       l.IsClosed,
		})
	}

	for _, p := range payments {
		doc.Transactions = append(doc.Transactions, PaymentRecord{
			ID:         p.ID.String(),
			LoanID:     p.LoanID,
			AmountPaid: p.AmountPaid,
			DatePaid:   p.DatePaid.UnixMilli(),
		})
	}

	return doc
}

func (d *Document) Encode() ([]byte, error) {
	data, err := json.Marshal(d)
	if err != nil {
		return nil, fmt.Errorf("encoding backup: %w", err)
	}

	return data, nil
}

// Decode parses and validates a transfer document. Anything structurally
// wrong -- bad JSON, unknown frequencies, dangling references -- comes back
// as ErrMalformedBackup and the caller must not touch the store.
func Decode(data []byte) (*Document, error) {
	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedBackup, err)
	}

	if err := doc.validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedBackup, err)
	}

	return &doc, nil
}

func (d *Document) validate() error {
	customerIDs := make(map[int64]struct{}, len(d.Customers))

	for i, c := range d.Customers {
		if c.ID == 0 {
			return fmt.Errorf("customer %d: missing id", i)
		}

		if _, ok := customerIDs[c.ID]; ok {
			return fmt.Errorf("customer %d: duplicate id %d", i, c.ID)
		}

		if _, err := parseFrequency(c.Frequency); err != nil {
			return fmt.Errorf("customer %d: %v", i, err)
		}

		customerIDs[c.ID] = struct{}{}
	}

	loanIDs := make(map[int64]struct{}, len(d.Loans))

	for i, l := range d.Loans {
		if l.ID == 0 {
			return fmt.Errorf("loan %d: missing id", i)
		}

		if _, ok := loanIDs[l.ID]; ok {
			return fmt.Errorf("loan %d: duplicate id %d", i, l.ID)
		}

		if _, ok := customerIDs[l.CustomerID]; !ok {
			return fmt.Errorf("loan %d: unknown customer %d", i, l.CustomerID)
		}

		if _, err := parseFrequency(l.Frequency); err != nil {
			return fmt.Errorf("loan %d: %v", i, err)
		}

		if l.CurrentBalance.IsNegative() {
			return fmt.Errorf("loan %d: negative balance", i)
		}

		loanIDs[l.ID] = struct{}{}
	}

	for i, p := range d.Transactions {
		if p.ID == "" {
			return fmt.Errorf("transaction %d: missing id", i)
		}

		if _, ok := loanIDs[p.LoanID]; !ok {
			return fmt.Errorf("transaction %d: unknown loan %d", i, p.LoanID)
		}

		if p.AmountPaid.LessThanOrEqual(decimal.Zero) {
			return fmt.Errorf("transaction %d: non-positive amount", i)
		}
	}

	return nil
}

// parseFrequency is lenient about case because early app versions stored
// customer frequencies as "Weekly".
func parseFrequency(s string) (string, error) {
	switch strings.ToUpper(s) {
	case string(loan.FrequencyWeekly):
		return string(loan.FrequencyWeekly), nil
	case string(loan.FrequencyMonthly):
		return string(loan.FrequencyMonthly), nil
	}

	return "", fmt.Errorf("unknown frequency %q", s)
}

// Records converts the document back into domain entities, in dependency
// order. Call only on a validated document.
func (d *Document) Records() ([]*customer.Customer, []*loan.Loan, []*loan.Payment, error) {
	customers := make([]*customer.Customer, 0, len(d.Customers))

	for _, c := range d.Customers {
		freq, err := parseFrequency(c.Frequency)
		if err != nil {
			return nil, nil, nil, fmt.Errorf("%w: %v", ErrMalformedBackup, err)
		}

		customers = append(customers, &customer.Customer{
			ID:        c.ID,
			Name:      c.Name,
			Phone:     c.Phone,
			Address:   c.Address,
			Frequency: customer.Frequency(freq),
			CreatedAt: time.UnixMilli(c.CreatedAt).UTC(),
		})
	}

	loans := make([]*loan.Loan, 0, len(d.Loans))

	for _, l := range d.Loans {
		freq, err := parseFrequency(l.Frequency)
		if err != nil {
			return nil, nil, nil, fmt.Errorf("%w: %v", ErrMalformedBackup, err)
		}

		loans = append(loans, &loan.Loan{
			ID:             l.ID,
			CustomerID:     l.CustomerID,
			ItemName:       l.ItemName,
			TotalPrincipal: l.TotalPrincipal,
			DownPayment:    l.DownPayment,
			CurrentBalance: l.CurrentBalance,
			Frequency:      loan.Frequency(freq),
			NextDueDate:    time.UnixMilli(l.NextDueDate).UTC(),
			IsClosed:       l.IsClosed,
		})
	}

	payments := make([]*loan.Payment, 0, len(d.Transactions))

	for _, p := range d.Transactions {
		id, err := uuid.Parse(p.ID)
		if err != nil {
			return nil, nil, nil, fmt.Errorf("%w: transaction id %q: %v", ErrMalformedBackup, p.ID, err)
		}

		payments = append(payments, &loan.Payment{
			ID:         id,
			LoanID:     p.LoanID,
			AmountPaid: p.AmountPaid,
			DatePaid:   time.UnixMilli(p.DatePaid).UTC(),
		})
	}

	return customers, loans, payments, nil
}
