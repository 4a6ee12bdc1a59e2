// Package ranking orders the customer list for the collector's daily
// worklist. Everything here is a pure projection over a snapshot of
// customers and open loans; callers re-run it whenever the store changes.
package ranking

import (
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/emicollect/internal/customer"
	"github.com/MrJamesThe3rd/emicollect/internal/loan"
)

// Strategy selects the worklist ordering.
type Strategy string

const (
	// Urgent puts the soonest due date first; customers with no open loans
	// sink to the bottom. Ties break on higher debt, then customer id.
	Urgent Strategy = "urgent"
	// HighestDebt orders by outstanding balance, largest first.
	HighestDebt Strategy = "highest_debt"
	// NameAZ is a plain case-sensitive name sort.
	NameAZ Strategy = "name_az"
)

func ParseStrategy(s string) (Strategy, bool) {
	switch Strategy(s) {
	case Urgent, HighestDebt, NameAZ:
		return Strategy(s), true
	case "":
		return Urgent, true
	}

	return "", false
}

// DebtStatus joins a customer with the aggregates over their open loans.
// EarliestNextDueDate is nil when the customer has no open loans;
// TotalRemainingDebt is zero in that case.
type DebtStatus struct {
	Customer            *customer.Customer
	TotalRemainingDebt  decimal.Decimal
	EarliestNextDueDate *time.Time
}

// Rank computes per-customer debt aggregates and orders them by the given
// strategy. Closed loans never contribute. The ordering is total: every
// strategy falls back to customer id ascending on ties.
func Rank(strategy Strategy, customers []*customer.Customer, loans []*loan.Loan) []DebtStatus {
	statuses := aggregate(customers, loans)

	switch strategy {
	case HighestDebt:
		sort.SliceStable(statuses, func(i, j int) bool { return debtLess(statuses[i], statuses[j]) })
	case NameAZ:
		sort.SliceStable(statuses, func(i, j int) bool { return nameLess(statuses[i], statuses[j]) })
	default:
		sort.SliceStable(statuses, func(i, j int) bool { return urgentLess(statuses[i], statuses[j]) })
	}

	return statuses
}

// Search filters customers by a case-insensitive substring match on name or
// phone. An empty query matches everyone. Results are always name-ordered.
func Search(query string, customers []*customer.Customer, loans []*loan.Loan) []DebtStatus {
	q := strings.ToLower(strings.TrimSpace(query))

	matched := customers

	if q != "" {
		matched = make([]*customer.Customer, 0, len(customers))

		for _, c := range customers {
			if strings.Contains(strings.ToLower(c.Name), q) || strings.Contains(strings.ToLower(c.Phone), q) {
				matched = append(matched, c)
			}
		}
	}

	statuses := aggregate(matched, loans)
	sort.SliceStable(statuses, func(i, j int) bool { return nameLess(statuses[i], statuses[j]) })

	return statuses
}

func aggregate(customers []*customer.Customer, loans []*loan.Loan) []DebtStatus {
	type agg struct {
		total    decimal.Decimal
		earliest time.Time
		hasOpen  bool
	}

	byCustomer := make(map[int64]agg, len(customers))

	for _, l := range loans {
		if l.IsClosed {
			continue
		}

		a := byCustomer[l.CustomerID]
		a.total = a.total.Add(l.CurrentBalance)

		if !a.hasOpen || l.NextDueDate.Before(a.earliest) {
			a.earliest = l.NextDueDate
		}

		a.hasOpen = true
		byCustomer[l.CustomerID] = a
	}

	statuses := make([]DebtStatus, 0, len(customers))

	for _, c := range customers {
		s := DebtStatus{Customer: c}

		if a, ok := byCustomer[c.ID]; ok {
			s.TotalRemainingDebt = a.total
			due := a.earliest
			s.EarliestNextDueDate = &due
		}

		statuses = append(statuses, s)
	}

	return statuses
}

func urgentLess(a, b DebtStatus) bool {
	switch {
	case a.EarliestNextDueDate == nil && b.EarliestNextDueDate == nil:
		// fall through to debt, then id
	case a.EarliestNextDueDate == nil:
		return false
	case b.EarliestNextDueDate == nil:
		return true
	case !a.EarliestNextDueDate.Equal(*b.EarliestNextDueDate):
		return a.EarliestNextDueDate.Before(*b.EarliestNextDueDate)
	}

	return debtLess(a, b)
}

func debtLess(a, b DebtStatus) bool {
	if !a.TotalRemainingDebt.Equal(b.TotalRemainingDebt) {
		return a.TotalRemainingDebt.GreaterThan(b.TotalRemainingDebt)
	}

	return a.Customer.ID < b.Customer.ID
}

func nameLess(a, b DebtStatus) bool {
	if a.Customer.Name != b.Customer.Name {
		return a.Customer.Name < b.Customer.Name
	}

	return a.Customer.ID < b.Customer.ID
}
