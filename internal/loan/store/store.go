package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/emicollect/internal/database"
	"github.com/MrJamesThe3rd/emicollect/internal/loan"
)

type Store struct {
	db  *sql.DB
	hub *database.Hub
}

func New(db *sql.DB, hub *database.Hub) *Store {
	return &Store{db: db, hub: hub}
}

// scanner is satisfied by both *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

const selectLoanColumns = `
	id, customer_id, item_name, total_principal, down_payment, current_balance,
	frequency, next_due_date, is_closed
`

func scanLoan(s scanner) (*loan.Loan, error) {
	var l loan.Loan

	var freq string

	if err := s.Scan(
		&l.ID, &l.CustomerID, &l.ItemName, &l.TotalPrincipal, &l.DownPayment,
		&l.CurrentBalance, &freq, &l.NextDueDate, &l.IsClosed,
	); err != nil {
		return nil, err
	}

	l.Frequency = loan.Frequency(freq)

	return &l, nil
}

func scanPayment(s scanner) (*loan.Payment, error) {
	var p loan.Payment

	var idStr string

	if err := s.Scan(&idStr, &p.LoanID, &p.AmountPaid, &p.DatePaid); err != nil {
		return nil, err
	}

	id, err := uuid.Parse(idStr)
	if err != nil {
		return nil, fmt.Errorf("parsing payment id: %w", err)
	}

	p.ID = id

	return &p, nil
}

func (s *Store) CreateLoan(ctx context.Context, l *loan.Loan) error {
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO loans (customer_id, item_name, total_principal, down_payment, current_balance, frequency, next_due_date, is_closed)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		l.CustomerID, l.ItemName, l.TotalPrincipal, l.DownPayment, l.CurrentBalance,
		string(l.Frequency), l.NextDueDate, l.IsClosed,
	)
	if err != nil {
		return fmt.Errorf("creating loan: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("reading loan id: %w", err)
	}

	l.ID = id
	s.hub.Notify()

	return nil
}

func (s *Store) GetLoan(ctx context.Context, id int64) (*loan.Loan, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+selectLoanColumns+` FROM loans WHERE id = ?`, id)

	l, err := scanLoan(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, loan.ErrNotFound
		}

		return nil, fmt.Errorf("getting loan: %w", err)
	}

	return l, nil
}

func (s *Store) UpdateLoan(ctx context.Context, l *loan.Loan) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE loans SET customer_id = ?, item_name = ?, total_principal = ?, down_payment = ?, current_balance = ?, frequency = ?, next_due_date = ?, is_closed = ? WHERE id = ?`,
		l.CustomerID, l.ItemName, l.TotalPrincipal, l.DownPayment, l.CurrentBalance,
		string(l.Frequency), l.NextDueDate, l.IsClosed, l.ID,
	)
	if err != nil {
		return fmt.Errorf("updating loan: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking rows affected: %w", err)
	}

	if affected == 0 {
		return loan.ErrNotFound
	}

	s.hub.Notify()

	return nil
}

// DeleteLoan removes the loan; its payments go with it via the foreign key
// cascade.
func (s *Store) DeleteLoan(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM loans WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("deleting loan: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking rows affected: %w", err)
	}

	if affected == 0 {
		return loan.ErrNotFound
	}

	s.hub.Notify()

	return nil
}

func (s *Store) ListLoansForCustomer(ctx context.Context, customerID int64) ([]*loan.Loan, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+selectLoanColumns+` FROM loans WHERE customer_id = ? ORDER BY id ASC`, customerID)
	if err != nil {
		return nil, fmt.Errorf("listing loans for customer: %w", err)
	}
	defer rows.Close()

	return collectLoans(rows)
}

func (s *Store) ListOpenLoans(ctx context.Context) ([]*loan.Loan, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+selectLoanColumns+` FROM loans WHERE is_closed = 0 ORDER BY id ASC`)
	if err != nil {
		return nil, fmt.Errorf("listing open loans: %w", err)
	}
	defer rows.Close()

	return collectLoans(rows)
}

func collectLoans(rows *sql.Rows) ([]*loan.Loan, error) {
	var loans []*loan.Loan

	for rows.Next() {
		l, err := scanLoan(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning loan: %w", err)
		}

		loans = append(loans, l)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating loans: %w", err)
	}

	return loans, nil
}

func (s *Store) ListPayments(ctx context.Context, loanID int64) ([]*loan.Payment, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, loan_id, amount_paid, date_paid FROM payments WHERE loan_id = ? ORDER BY date_paid DESC`, loanID)
	if err != nil {
		return nil, fmt.Errorf("listing payments: %w", err)
	}
	defer rows.Close()

	var payments []*loan.Payment

	for rows.Next() {
		p, err := scanPayment(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning payment: %w", err)
		}

		payments = append(payments, p)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating payments: %w", err)
	}

	return payments, nil
}

// sumPayments runs a SUM query and maps the NULL of an empty set to zero.
func (s *Store) sumPayments(ctx context.Context, query string, args ...any) (decimal.Decimal, error) {
	var sum sql.NullString

	if err := s.db.QueryRowContext(ctx, query, args...).Scan(&sum); err != nil {
		return decimal.Zero, err
	}

	if !sum.Valid {
		return decimal.Zero, nil
	}

	total, err := decimal.NewFromString(sum.String)
	if err != nil {
		return decimal.Zero, fmt.Errorf("parsing payment sum: %w", err)
	}

	return total, nil
}

func (s *Store) CollectedBetween(ctx context.Context, start, end time.Time) (decimal.Decimal, error) {
	total, err := s.sumPayments(ctx,
		`SELECT SUM(CAST(amount_paid AS REAL)) FROM payments WHERE date_paid BETWEEN ? AND ?`, start, end)
	if err != nil {
		return decimal.Zero, fmt.Errorf("summing collections: %w", err)
	}

	return total, nil
}

func (s *Store) TotalCollected(ctx context.Context) (decimal.Decimal, error) {
	total, err := s.sumPayments(ctx, `SELECT SUM(CAST(amount_paid AS REAL)) FROM payments`)
	if err != nil {
		return decimal.Zero, fmt.Errorf("summing total collection: %w", err)
	}

	return total, nil
}

func (s *Store) CountOverdue(ctx context.Context, asOf time.Time) (int, error) {
	var count int

	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM loans WHERE is_closed = 0 AND next_due_date <= ?`, asOf).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("counting overdue loans: %w", err)
	}

	return count, nil
}

type settlementTx struct {
	tx  *sql.Tx
	hub *database.Hub
}

// BeginSettlement opens the transaction that scopes a settlement's loan
// update and payment insert.
func (s *Store) BeginSettlement(ctx context.Context) (loan.SettlementTx, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("beginning settlement tx: %w", err)
	}

	return &settlementTx{tx: tx, hub: s.hub}, nil
}

func (stx *settlementTx) Commit() error {
	if err := stx.tx.Commit(); err != nil {
		return err
	}

	stx.hub.Notify()

	return nil
}

func (stx *settlementTx) Rollback() error { return stx.tx.Rollback() }

func (stx *settlementTx) GetLoan(ctx context.Context, id int64) (*loan.Loan, error) {
	row := stx.tx.QueryRowContext(ctx, `SELECT `+selectLoanColumns+` FROM loans WHERE id = ?`, id)

	l, err := scanLoan(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, loan.ErrNotFound
		}

		return nil, fmt.Errorf("getting loan: %w", err)
	}

	return l, nil
}

func (stx *settlementTx) UpdateLoan(ctx context.Context, l *loan.Loan) error {
	res, err := stx.tx.ExecContext(ctx,
		`UPDATE loans SET current_balance = ?, frequency = ?, next_due_date = ?, is_closed = ? WHERE id = ?`,
		l.CurrentBalance, string(l.Frequency), l.NextDueDate, l.IsClosed, l.ID,
	)
	if err != nil {
		return fmt.Errorf("updating loan: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking rows affected: %w", err)
	}

	if affected == 0 {
		return loan.ErrNotFound
	}

	return nil
}

func (stx *settlementTx) CreatePayment(ctx context.Context, p *loan.Payment) error {
	_, err := stx.tx.ExecContext(ctx,
		`INSERT INTO payments (id, loan_id, amount_paid, date_paid) VALUES (?, ?, ?, ?)`,
		p.ID.String(), p.LoanID, p.AmountPaid, p.DatePaid,
	)
	if err != nil {
		return fmt.Errorf("creating payment: %w", err)
	}

	return nil
}
