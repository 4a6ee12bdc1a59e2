package loan

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

//go:generate mockgen -source=service.go -destination=repository_mock.go -package=loan
type Repository interface {
	CreateLoan(ctx context.Context, l *Loan) error
	GetLoan(ctx context.Context, id int64) (*Loan, error)
	UpdateLoan(ctx context.Context, l *Loan) error
	DeleteLoan(ctx context.Context, id int64) error
	ListLoansForCustomer(ctx context.Context, customerID int64) ([]*Loan, error)
	ListOpenLoans(ctx context.Context) ([]*Loan, error)

	ListPayments(ctx context.Context, loanID int64) ([]*Payment, error)
	CollectedBetween(ctx context.Context, start, end time.Time) (decimal.Decimal, error)
	TotalCollected(ctx context.Context) (decimal.Decimal, error)
	CountOverdue(ctx context.Context, asOf time.Time) (int, error)

	BeginSettlement(ctx context.Context) (SettlementTx, error)
}

// SettlementTx scopes the two writes of a settlement to one store
// transaction: the loan update and the payment insert land together or not
// at all.
type SettlementTx interface {
	GetLoan(ctx context.Context, id int64) (*Loan, error)
	UpdateLoan(ctx context.Context, l *Loan) error
	CreatePayment(ctx context.Context, p *Payment) error
	Commit() error
	Rollback() error
}

type Service struct {
	repo    Repository
	advance ScheduleRule
	now     func() time.Time
}

type Option func(*Service)

// WithScheduleRule overrides the due-date advance rule, e.g. to run the
// legacy fixed-week schedule.
func WithScheduleRule(rule ScheduleRule) Option {
	return func(s *Service) { s.advance = rule }
}

// WithClock pins the payment timestamp source.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

func NewService(repo Repository, opts ...Option) *Service {
	s := &Service{
		repo:    repo,
		advance: AdvanceByFrequency,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}

	return s
}

type CreateParams struct {
	CustomerID     int64
	ItemName       string
	TotalPrincipal decimal.Decimal
	DownPayment    decimal.Decimal
	Frequency      Frequency
	NextDueDate    time.Time
}

func (s *Service) Create(ctx context.Context, params CreateParams) (*Loan, error) {
	if params.TotalPrincipal.LessThanOrEqual(decimal.Zero) {
		return nil, fmt.Errorf("%w: principal must be positive", ErrInvalidLoan)
	}

	if params.DownPayment.IsNegative() {
		return nil, fmt.Errorf("%w: down payment cannot be negative", ErrInvalidLoan)
	}

	balance := params.TotalPrincipal.Sub(params.DownPayment)
	if balance.IsNegative() {
		return nil, fmt.Errorf("%w: down payment exceeds principal", ErrInvalidLoan)
	}

	if !params.Frequency.Valid() {
		return nil, fmt.Errorf("%w: unknown frequency %q", ErrInvalidLoan, params.Frequency)
	}

	l := &Loan{
		CustomerID:     params.CustomerID,
		ItemName:       params.ItemName,
		TotalPrincipal: params.TotalPrincipal,
		DownPayment:    params.DownPayment,
		CurrentBalance: balance,
		Frequency:      params.Frequency,
		NextDueDate:    params.NextDueDate,
		IsClosed:       balance.LessThanOrEqual(decimal.Zero),
	}
	if err := s.repo.CreateLoan(ctx, l); err != nil {
		return nil, err
	}

	return l, nil
}

func (s *Service) Get(ctx context.Context, id int64) (*Loan, error) {
	return s.repo.GetLoan(ctx, id)
}

// Update applies a direct edit. The closed flag is derived, never taken from
// the caller, so the balance invariant survives edits.
func (s *Service) Update(ctx context.Context, l *Loan) error {
	if l.CurrentBalance.IsNegative() {
		return fmt.Errorf("%w: balance cannot be negative", ErrInvalidLoan)
	}

	if !l.Frequency.Valid() {
		return fmt.Errorf("%w: unknown frequency %q", ErrInvalidLoan, l.Frequency)
	}

	l.IsClosed = l.CurrentBalance.LessThanOrEqual(decimal.Zero)

	return s.repo.UpdateLoan(ctx, l)
}

func (s *Service) Delete(ctx context.Context, id int64) error {
	return s.repo.DeleteLoan(ctx, id)
}

func (s *Service) ListForCustomer(ctx context.Context, customerID int64) ([]*Loan, error) {
	return s.repo.ListLoansForCustomer(ctx, customerID)
}

func (s *Service) ListOpen(ctx context.Context) ([]*Loan, error) {
	return s.repo.ListOpenLoans(ctx)
}

func (s *Service) Payments(ctx context.Context, loanID int64) ([]*Payment, error) {
	return s.repo.ListPayments(ctx, loanID)
}

// ApplyPayment settles an installment: the balance drops by exactly amount,
// the loan closes when the balance reaches zero, and an open loan's due date
// advances by the schedule rule. Amounts must be positive and no greater
// than the balance; there is no change-making.
func (s *Service) ApplyPayment(ctx context.Context, loanID int64, amount decimal.Decimal) (*Loan, *Payment, error) {
	stx, err := s.repo.BeginSettlement(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("begin settlement: %w", err)
	}
	defer stx.Rollback()

	l, err := stx.GetLoan(ctx, loanID)
	if err != nil {
		return nil, nil, err
	}

	if amount.LessThanOrEqual(decimal.Zero) {
		return nil, nil, fmt.Errorf("%w: amount must be positive", ErrInvalidAmount)
	}

	if amount.GreaterThan(l.CurrentBalance) {
		return nil, nil, fmt.Errorf("%w: amount exceeds current balance", ErrInvalidAmount)
	}

	l.CurrentBalance = l.CurrentBalance.Sub(amount)
	l.IsClosed = l.CurrentBalance.LessThanOrEqual(decimal.Zero)

	if !l.IsClosed {
		l.NextDueDate = s.advance(l.NextDueDate, l.Frequency)
	}

	if err := stx.UpdateLoan(ctx, l); err != nil {
		return nil, nil, fmt.Errorf("updating loan: %w", err)
	}

	p := &Payment{
		ID:         uuid.New(),
		LoanID:     l.ID,
		AmountPaid: amount,
		DatePaid:   s.now(),
	}
	if err := stx.CreatePayment(ctx, p); err != nil {
		return nil, nil, fmt.Errorf("creating payment: %w", err)
	}

	if err := stx.Commit(); err != nil {
		return nil, nil, fmt.Errorf("committing settlement: %w", err)
	}

	return l, p, nil
}

// Stats are the dashboard aggregates shown on the collector's home screen.
type Stats struct {
	TotalCollected decimal.Decimal
	CollectedToday decimal.Decimal
	OverdueCount   int
}

func (s *Service) Stats(ctx context.Context) (*Stats, error) {
	now := s.now()

	total, err := s.repo.TotalCollected(ctx)
	if err != nil {
		return nil, fmt.Errorf("total collected: %w", err)
	}

	startOfDay := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())

	today, err := s.repo.CollectedBetween(ctx, startOfDay, now)
	if err != nil {
		return nil, fmt.Errorf("collected today: %w", err)
	}

	overdue, err := s.repo.CountOverdue(ctx, now)
	if err != nil {
		return nil, fmt.Errorf("counting overdue: %w", err)
	}

	return &Stats{
		TotalCollected: total,
		CollectedToday: today,
		OverdueCount:   overdue,
	}, nil
}
