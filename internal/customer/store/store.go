package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/MrJamesThe3rd/emicollect/internal/customer"
	"github.com/MrJamesThe3rd/emicollect/internal/database"
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

// Expected column order: id, name, phone, address, frequency, created_at
func scanCustomer(s scanner) (*customer.Customer, error) {
	var c customer.Customer

	var freq string

	if err := s.Scan(&c.ID, &c.Name, &c.Phone, &c.Address, &freq, &c.CreatedAt); err != nil {
		return nil, err
	}

	c.Frequency = customer.Frequency(freq)

	return &c, nil
}

func (s *Store) CreateCustomer(ctx context.Context, c *customer.Customer) error {
	c.CreatedAt = time.Now()

	res, err := s.db.ExecContext(ctx,
		`INSERT INTO customers (name, phone, address, frequency, created_at)
		VALUES (?, ?, ?, ?, ?)`,
		c.Name, c.Phone, c.Address, string(c.Frequency), c.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("creating customer: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("reading customer id: %w", err)
	}

	c.ID = id
	s.hub.Notify()

	return nil
}

func (s *Store) GetCustomer(ctx context.Context, id int64) (*customer.Customer, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, name, phone, address, frequency, created_at FROM customers WHERE id = ?`, id)

	c, err := scanCustomer(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, customer.ErrNotFound
		}

		return nil, fmt.Errorf("getting customer: %w", err)
	}

	return c, nil
}

func (s *Store) UpdateCustomer(ctx context.Context, c *customer.Customer) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE customers SET name = ?, phone = ?, address = ?, frequency = ? WHERE id = ?`,
		c.Name, c.Phone, c.Address, string(c.Frequency), c.ID,
	)
	if err != nil {
		return fmt.Errorf("updating customer: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking rows affected: %w", err)
	}

	if affected == 0 {
		return customer.ErrNotFound
	}

	s.hub.Notify()

	return nil
}

// DeleteCustomer removes the customer; the loans and payments underneath go
// with it via the foreign key cascade.
func (s *Store) DeleteCustomer(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM customers WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("deleting customer: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking rows affected: %w", err)
	}

	if affected == 0 {
		return customer.ErrNotFound
	}

	s.hub.Notify()

	return nil
}

func (s *Store) ListCustomers(ctx context.Context) ([]*customer.Customer, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, name, phone, address, frequency, created_at FROM customers ORDER BY id ASC`)
	if err != nil {
		return nil, fmt.Errorf("listing customers: %w", err)
	}
	defer rows.Close()

	var customers []*customer.Customer

	for rows.Next() {
		c, err := scanCustomer(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning customer: %w", err)
		}

		customers = append(customers, c)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating customers: %w", err)
	}

	return customers, nil
}
