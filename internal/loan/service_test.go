package loan_test

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/MrJamesThe3rd/emicollect/internal/loan"
)

var dueDate = time.Date(2024, 3, 4, 0, 0, 0, 0, time.UTC)

func openLoan(balance int64) *loan.Loan {
	return &loan.Loan{
		ID:             7,
		CustomerID:     3,
		ItemName:       "Sewing machine",
		TotalPrincipal: decimal.NewFromInt(5000),
		DownPayment:    decimal.NewFromInt(500),
		CurrentBalance: decimal.NewFromInt(balance),
		Frequency:      loan.FrequencyWeekly,
		NextDueDate:    dueDate,
	}
}

func TestService_ApplyPayment_PartialAdvancesDueDate(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	repo := loan.NewMockRepository(ctrl)
	stx := loan.NewMockSettlementTx(ctrl)

	paidAt := time.Date(2024, 3, 4, 10, 30, 0, 0, time.UTC)
	svc := loan.NewService(repo, loan.WithClock(func() time.Time { return paidAt }))

	repo.EXPECT().BeginSettlement(gomock.Any()).Return(stx, nil)
	stx.EXPECT().GetLoan(gomock.Any(), int64(7)).Return(openLoan(1000), nil)
	stx.EXPECT().UpdateLoan(gomock.Any(), gomock.Any()).Return(nil)
	stx.EXPECT().CreatePayment(gomock.Any(), gomock.Any()).Return(nil)
	stx.EXPECT().Commit().Return(nil)
	stx.EXPECT().Rollback().Return(nil)

	l, p, err := svc.ApplyPayment(context.Background(), 7, decimal.NewFromInt(300))
	require.NoError(t, err)

	assert.True(t, l.CurrentBalance.Equal(decimal.NewFromInt(700)))
	assert.False(t, l.IsClosed)
	// One period is exactly 7 days for a weekly loan.
	assert.Equal(t, int64(7*24*60*60*1000), l.NextDueDate.UnixMilli()-dueDate.UnixMilli())

	require.NotNil(t, p)
	assert.Equal(t, int64(7), p.LoanID)
	assert.True(t, p.AmountPaid.Equal(decimal.NewFromInt(300)))
	assert.Equal(t, paidAt, p.DatePaid)
	assert.NotEmpty(t, p.ID)
}

func TestService_ApplyPayment_FullSettlementClosesLoan(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	repo := loan.NewMockRepository(ctrl)
	stx := loan.NewMockSettlementTx(ctrl)
	svc := loan.NewService(repo)

	var updated *loan.Loan

	repo.EXPECT().BeginSettlement(gomock.Any()).Return(stx, nil)
	stx.EXPECT().GetLoan(gomock.Any(), int64(7)).Return(openLoan(1000), nil)
	stx.EXPECT().UpdateLoan(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, l *loan.Loan) error {
			updated = l
			return nil
		})
	stx.EXPECT().CreatePayment(gomock.Any(), gomock.Any()).Return(nil)
	stx.EXPECT().Commit().Return(nil)
	stx.EXPECT().Rollback().Return(nil)

	l, p, err := svc.ApplyPayment(context.Background(), 7, decimal.NewFromInt(1000))
	require.NoError(t, err)

	assert.True(t, l.CurrentBalance.IsZero())
	assert.True(t, l.IsClosed)
	// A closing payment leaves the due date where it was.
	assert.Equal(t, dueDate, l.NextDueDate)
	assert.True(t, p.AmountPaid.Equal(decimal.NewFromInt(1000)))
	assert.Same(t, l, updated)
}

func TestService_ApplyPayment_MonthlyAdvance(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	repo := loan.NewMockRepository(ctrl)
	stx := loan.NewMockSettlementTx(ctrl)
	svc := loan.NewService(repo)

	monthly := openLoan(1000)
	monthly.Frequency = loan.FrequencyMonthly

	repo.EXPECT().BeginSettlement(gomock.Any()).Return(stx, nil)
	stx.EXPECT().GetLoan(gomock.Any(), int64(7)).Return(monthly, nil)
	stx.EXPECT().UpdateLoan(gomock.Any(), gomock.Any()).Return(nil)
	stx.EXPECT().CreatePayment(gomock.Any(), gomock.Any()).Return(nil)
	stx.EXPECT().Commit().Return(nil)
	stx.EXPECT().Rollback().Return(nil)

	l, _, err := svc.ApplyPayment(context.Background(), 7, decimal.NewFromInt(200))
	require.NoError(t, err)
	assert.Equal(t, dueDate.AddDate(0, 1, 0), l.NextDueDate)
}

func TestService_ApplyPayment_FixedWeekCompatibility(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	repo := loan.NewMockRepository(ctrl)
	stx := loan.NewMockSettlementTx(ctrl)
	svc := loan.NewService(repo, loan.WithScheduleRule(loan.AdvanceFixedWeek))

	monthly := openLoan(1000)
	monthly.Frequency = loan.FrequencyMonthly

	repo.EXPECT().BeginSettlement(gomock.Any()).Return(stx, nil)
	stx.EXPECT().GetLoan(gomock.Any(), int64(7)).Return(monthly, nil)
	stx.EXPECT().UpdateLoan(gomock.Any(), gomock.Any()).Return(nil)
	stx.EXPECT().CreatePayment(gomock.Any(), gomock.Any()).Return(nil)
	stx.EXPECT().Commit().Return(nil)
	stx.EXPECT().Rollback().Return(nil)

	l, _, err := svc.ApplyPayment(context.Background(), 7, decimal.NewFromInt(200))
	require.NoError(t, err)
	// Legacy rule: monthly loans also move only a week.
	assert.Equal(t, dueDate.AddDate(0, 0, 7), l.NextDueDate)
}

func TestService_ApplyPayment_RejectsBadAmounts(t *testing.T) {
	tests := []struct {
		name    string
		balance int64
		amount  int64
	}{
		{name: "Overpayment", balance: 500, amount: 600},
		{name: "Zero", balance: 500, amount: 0},
		{name: "Negative", balance: 500, amount: -50},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			repo := loan.NewMockRepository(ctrl)
			stx := loan.NewMockSettlementTx(ctrl)
			svc := loan.NewService(repo)

			// No UpdateLoan and no CreatePayment: a rejected payment must
			// leave the loan and the payment set untouched.
			repo.EXPECT().BeginSettlement(gomock.Any()).Return(stx, nil)
			stx.EXPECT().GetLoan(gomock.Any(), int64(7)).Return(openLoan(tt.balance), nil)
			stx.EXPECT().Rollback().Return(nil)

			l, p, err := svc.ApplyPayment(context.Background(), 7, decimal.NewFromInt(tt.amount))
			assert.ErrorIs(t, err, loan.ErrInvalidAmount)
			assert.Nil(t, l)
			assert.Nil(t, p)
		})
	}
}

func TestService_ApplyPayment_LoanNotFound(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	repo := loan.NewMockRepository(ctrl)
	stx := loan.NewMockSettlementTx(ctrl)
	svc := loan.NewService(repo)

	repo.EXPECT().BeginSettlement(gomock.Any()).Return(stx, nil)
	stx.EXPECT().GetLoan(gomock.Any(), int64(99)).Return(nil, loan.ErrNotFound)
	stx.EXPECT().Rollback().Return(nil)

	_, _, err := svc.ApplyPayment(context.Background(), 99, decimal.NewFromInt(100))
	assert.ErrorIs(t, err, loan.ErrNotFound)
}

func TestService_Create(t *testing.T) {
	type testCase struct {
		name        string
		params      loan.CreateParams
		setupMock   func(m *loan.MockRepository)
		wantBalance int64
		wantClosed  bool
		wantErr     error
	}

	tests := []testCase{
		{
			name: "Success",
			params: loan.CreateParams{
				CustomerID:     3,
				ItemName:       "Fridge",
				TotalPrincipal: decimal.NewFromInt(12000),
				DownPayment:    decimal.NewFromInt(2000),
				Frequency:      loan.FrequencyWeekly,
				NextDueDate:    dueDate,
			},
			setupMock: func(m *loan.MockRepository) {
				m.EXPECT().
					CreateLoan(gomock.Any(), gomock.Any()).
					DoAndReturn(func(_ context.Context, l *loan.Loan) error {
						l.ID = 1
						return nil
					})
			},
			wantBalance: 10000,
		},
		{
			name: "FullyPaidUpFront",
			params: loan.CreateParams{
				CustomerID:     3,
				ItemName:       "Fan",
				TotalPrincipal: decimal.NewFromInt(1500),
				DownPayment:    decimal.NewFromInt(1500),
				Frequency:      loan.FrequencyWeekly,
				NextDueDate:    dueDate,
			},
			setupMock: func(m *loan.MockRepository) {
				m.EXPECT().
					CreateLoan(gomock.Any(), gomock.Any()).
					DoAndReturn(func(_ context.Context, l *loan.Loan) error {
						l.ID = 2
						return nil
					})
			},
			wantBalance: 0,
			wantClosed:  true,
		},
		{
			name: "ZeroPrincipal",
			params: loan.CreateParams{
				TotalPrincipal: decimal.Zero,
				Frequency:      loan.FrequencyWeekly,
			},
			wantErr: loan.ErrInvalidLoan,
		},
		{
			name: "NegativeDownPayment",
			params: loan.CreateParams{
				TotalPrincipal: decimal.NewFromInt(1000),
				DownPayment:    decimal.NewFromInt(-1),
				Frequency:      loan.FrequencyWeekly,
			},
			wantErr: loan.ErrInvalidLoan,
		},
		{
			name: "DownPaymentExceedsPrincipal",
			params: loan.CreateParams{
				TotalPrincipal: decimal.NewFromInt(1000),
				DownPayment:    decimal.NewFromInt(1200),
				Frequency:      loan.FrequencyWeekly,
			},
			wantErr: loan.ErrInvalidLoan,
		},
		{
			name: "UnknownFrequency",
			params: loan.CreateParams{
				TotalPrincipal: decimal.NewFromInt(1000),
				Frequency:      "DAILY",
			},
			wantErr: loan.ErrInvalidLoan,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			repo := loan.NewMockRepository(ctrl)
			if tt.setupMock != nil {
				tt.setupMock(repo)
			}

			svc := loan.NewService(repo)
			got, err := svc.Create(context.Background(), tt.params)

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, got)

				return
			}

			require.NoError(t, err)
			assert.True(t, got.CurrentBalance.Equal(decimal.NewFromInt(tt.wantBalance)))
			assert.Equal(t, tt.wantClosed, got.IsClosed)
		})
	}
}

func TestService_Update_DerivesClosedFlag(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	repo := loan.NewMockRepository(ctrl)
	svc := loan.NewService(repo)

	l := openLoan(0)
	l.IsClosed = false // caller lies; the service corrects it

	repo.EXPECT().UpdateLoan(gomock.Any(), gomock.Any()).Return(nil)

	require.NoError(t, svc.Update(context.Background(), l))
	assert.True(t, l.IsClosed)
}

func TestService_Stats(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	repo := loan.NewMockRepository(ctrl)

	now := time.Date(2024, 3, 4, 15, 0, 0, 0, time.UTC)
	svc := loan.NewService(repo, loan.WithClock(func() time.Time { return now }))

	startOfDay := time.Date(2024, 3, 4, 0, 0, 0, 0, time.UTC)

	repo.EXPECT().TotalCollected(gomock.Any()).Return(decimal.NewFromInt(90000), nil)
	repo.EXPECT().CollectedBetween(gomock.Any(), startOfDay, now).Return(decimal.NewFromInt(2500), nil)
	repo.EXPECT().CountOverdue(gomock.Any(), now).Return(4, nil)

	stats, err := svc.Stats(context.Background())
	require.NoError(t, err)
	assert.True(t, stats.TotalCollected.Equal(decimal.NewFromInt(90000)))
	assert.True(t, stats.CollectedToday.Equal(decimal.NewFromInt(2500)))
	assert.Equal(t, 4, stats.OverdueCount)
}
