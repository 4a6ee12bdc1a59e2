package store_test

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrJamesThe3rd/emicollect/internal/backup/store"
	"github.com/MrJamesThe3rd/emicollect/internal/customer"
	"github.com/MrJamesThe3rd/emicollect/internal/database"
	"github.com/MrJamesThe3rd/emicollect/internal/loan"
)

func newTestStore(t *testing.T) *store.Store {
	t.Helper()

	db, err := database.New(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	return store.New(db, nil)
}

func fixtures() ([]*customer.Customer, []*loan.Loan, []*loan.Payment) {
	created := time.Date(2024, 1, 15, 9, 0, 0, 0, time.UTC)

	customers := []*customer.Customer{
		{ID: 1, Name: "Ravi", Phone: "9876543210", Address: "14 Market Road", Frequency: customer.FrequencyWeekly, CreatedAt: created},
		{ID: 2, Name: "Meena", Phone: "9123456780", Frequency: customer.FrequencyMonthly, CreatedAt: created},
	}
	loans := []*loan.Loan{
		{
			ID: 10, CustomerID: 1, ItemName: "Television",
			TotalPrincipal: decimal.NewFromInt(8000), DownPayment: decimal.NewFromInt(1000),
			CurrentBalance: decimal.NewFromInt(7000), Frequency: loan.FrequencyWeekly,
			NextDueDate: created.AddDate(0, 0, 7),
		},
		{
			ID: 11, CustomerID: 2, ItemName: "Mixer",
			TotalPrincipal: decimal.NewFromInt(3000), DownPayment: decimal.Zero,
			CurrentBalance: decimal.Zero, Frequency: loan.FrequencyMonthly,
			NextDueDate: created.AddDate(0, 1, 0), IsClosed: true,
		},
	}
	payments := []*loan.Payment{
		{ID: uuid.New(), LoanID: 10, AmountPaid: decimal.NewFromInt(500), DatePaid: created.AddDate(0, 0, 7)},
		{ID: uuid.New(), LoanID: 11, AmountPaid: decimal.NewFromInt(3000), DatePaid: created.AddDate(0, 1, 0)},
	}

	return customers, loans, payments
}

func TestStore_ReplaceThenSnapshot(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	customers, loans, payments := fixtures()
	require.NoError(t, s.Replace(ctx, customers, loans, payments))

	gotCustomers, gotLoans, gotPayments, err := s.Snapshot(ctx)
	require.NoError(t, err)

	require.Len(t, gotCustomers, 2)
	assert.Equal(t, customers[0].Name, gotCustomers[0].Name)
	assert.Equal(t, customers[0].Frequency, gotCustomers[0].Frequency)

	require.Len(t, gotLoans, 2)
	assert.True(t, gotLoans[0].CurrentBalance.Equal(loans[0].CurrentBalance))
	assert.True(t, gotLoans[1].IsClosed)

	require.Len(t, gotPayments, 2)
	assert.Equal(t, payments[0].ID, gotPayments[0].ID)
	assert.True(t, gotPayments[1].AmountPaid.Equal(decimal.NewFromInt(3000)))
}

func TestStore_ReplaceIsIdempotent(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	customers, loans, payments := fixtures()
	require.NoError(t, s.Replace(ctx, customers, loans, payments))
	require.NoError(t, s.Replace(ctx, customers, loans, payments))

	gotCustomers, gotLoans, gotPayments, err := s.Snapshot(ctx)
	require.NoError(t, err)
	assert.Len(t, gotCustomers, 2)
	assert.Len(t, gotLoans, 2)
	assert.Len(t, gotPayments, 2)
}

func TestStore_ReplaceDropsPreviousRecords(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	customers, loans, payments := fixtures()
	require.NoError(t, s.Replace(ctx, customers, loans, payments))

	// Restore a snapshot with only the second customer and nothing else.
	require.NoError(t, s.Replace(ctx, customers[1:], nil, nil))

	gotCustomers, gotLoans, gotPayments, err := s.Snapshot(ctx)
	require.NoError(t, err)
	require.Len(t, gotCustomers, 1)
	assert.Equal(t, "Meena", gotCustomers[0].Name)
	assert.Empty(t, gotLoans)
	assert.Empty(t, gotPayments)
}

func TestStore_ReplaceFailureLeavesStateUntouched(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	customers, loans, payments := fixtures()
	require.NoError(t, s.Replace(ctx, customers, loans, payments))

	// A loan pointing at a missing customer violates the foreign key and the
	// whole transaction rolls back.
	bad := []*loan.Loan{{
		ID: 99, CustomerID: 404, ItemName: "Ghost",
		TotalPrincipal: decimal.NewFromInt(100), CurrentBalance: decimal.NewFromInt(100),
		Frequency: loan.FrequencyWeekly, NextDueDate: time.Now(),
	}}
	require.Error(t, s.Replace(ctx, nil, bad, nil))

	gotCustomers, gotLoans, gotPayments, err := s.Snapshot(ctx)
	require.NoError(t, err)
	assert.Len(t, gotCustomers, 2)
	assert.Len(t, gotLoans, 2)
	assert.Len(t, gotPayments, 2)
}
