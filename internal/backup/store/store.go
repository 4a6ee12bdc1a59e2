package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/emicollect/internal/customer"
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

// Snapshot reads every record without locking; a write landing between the
// three reads is acceptable staleness.
func (s *Store) Snapshot(ctx context.Context) ([]*customer.Customer, []*loan.Loan, []*loan.Payment, error) {
	customers, err := s.readCustomers(ctx)
	if err != nil {
		return nil, nil, nil, err
	}

	loans, err := s.readLoans(ctx)
	if err != nil {
		return nil, nil, nil, err
	}

	payments, err := s.readPayments(ctx)
	if err != nil {
		return nil, nil, nil, err
	}

	return customers, loans, payments, nil
}

func (s *Store) readCustomers(ctx context.Context) ([]*customer.Customer, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, name, phone, address, frequency, created_at FROM customers ORDER BY id ASC`)
	if err != nil {
		return nil, fmt.Errorf("reading customers: %w", err)
	}
	defer rows.Close()

	var customers []*customer.Customer

	for rows.Next() {
		var c customer.Customer

		var freq string

		if err := rows.Scan(&c.ID, &c.Name, &c.Phone, &c.Address, &freq, &c.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning customer: %w", err)
		}

		c.Frequency = customer.Frequency(freq)
		customers = append(customers, &c)
	}

	return customers, rows.Err()
}

func (s *Store) readLoans(ctx context.Context) ([]*loan.Loan, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, customer_id, item_name, total_principal, down_payment, current_balance, frequency, next_due_date, is_closed
		FROM loans ORDER BY id ASC`)
	if err != nil {
		return nil, fmt.Errorf("reading loans: %w", err)
	}
	defer rows.Close()

	var loans []*loan.Loan

	for rows.Next() {
		var l loan.Loan

		var freq string

		if err := rows.Scan(
			&l.ID, &l.CustomerID, &l.ItemName, &l.TotalPrincipal, &l.DownPayment,
			&l.CurrentBalance, &freq, &l.NextDueDate, &l.IsClosed,
		); err != nil {
			return nil, fmt.Errorf("scanning loan: %w", err)
		}

		l.Frequency = loan.Frequency(freq)
		loans = append(loans, &l)
	}

	return loans, rows.Err()
}

func (s *Store) readPayments(ctx context.Context) ([]*loan.Payment, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, loan_id, amount_paid, date_paid FROM payments ORDER BY date_paid ASC`)
	if err != nil {
		return nil, fmt.Errorf("reading payments: %w", err)
	}
	defer rows.Close()

	var payments []*loan.Payment

	for rows.Next() {
		var p loan.Payment

		var idStr string

		if err := rows.Scan(&idStr, &p.LoanID, &p.AmountPaid, &p.DatePaid); err != nil {
			return nil, fmt.Errorf("scanning payment: %w", err)
		}

		id, err := uuid.Parse(idStr)
		if err != nil {
			return nil, fmt.Errorf("parsing payment id: %w", err)
		}

		p.ID = id
		payments = append(payments, &p)
	}

	return payments, rows.Err()
}

// Replace swaps the full record set in one transaction. Deletes run
// leaf-first and inserts parent-first so the foreign keys hold throughout.
func (s *Store) Replace(ctx context.Context, customers []*customer.Customer, loans []*loan.Loan, payments []*loan.Payment) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning restore tx: %w", err)
	}
	defer tx.Rollback()

	for _, table := range []string{"payments", "loans", "customers"} {
		if _, err := tx.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			return fmt.Errorf("clearing %s: %w", table, err)
		}
	}

	for _, c := range customers {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO customers (id, name, phone, address, frequency, created_at) VALUES (?, ?, ?, ?, ?, ?)`,
			c.ID, c.Name, c.Phone, c.Address, string(c.Frequency), c.CreatedAt,
		); err != nil {
			return fmt.Errorf("inserting customer %d: %w", c.ID, err)
		}
	}

	for _, l := range loans {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO loans (id, customer_id, item_name, total_principal, down_payment, current_balance, frequency, next_due_date, is_closed)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			l.ID, l.CustomerID, l.ItemName, l.TotalPrincipal, l.DownPayment,
			l.CurrentBalance, string(l.Frequency), l.NextDueDate, l.IsClosed,
		); err != nil {
			return fmt.Errorf("inserting loan %d: %w", l.ID, err)
		}
	}

	for _, p := range payments {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO payments (id, loan_id, amount_paid, date_paid) VALUES (?, ?, ?, ?)`,
			p.ID.String(), p.LoanID, p.AmountPaid, p.DatePaid,
		); err != nil {
			return fmt.Errorf("inserting payment %s: %w", p.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing restore: %w", err)
	}

	s.hub.Notify()

	return nil
}
