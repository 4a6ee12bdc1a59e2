package customer

import (
	"context"
	"fmt"
)

//go:generate mockgen -source=service.go -destination=repository_mock.go -package=customer
type Repository interface {
	CreateCustomer(ctx context.Context, c *Customer) error
	GetCustomer(ctx context.Context, id int64) (*Customer, error)
	UpdateCustomer(ctx context.Context, c *Customer) error
	DeleteCustomer(ctx context.Context, id int64) error
	ListCustomers(ctx context.Context) ([]*Customer, error)
}

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

type CreateParams struct {
	Name      string
	Phone     string
	Address   string
	Frequency Frequency
}

func (s *Service) Create(ctx context.Context, params CreateParams) (*Customer, error) {
	if params.Name == "" {
		return nil, fmt.Errorf("%w: name is required", ErrInvalid)
	}

	if params.Frequency == "" {
		params.Frequency = FrequencyWeekly
	}

	if !params.Frequency.Valid() {
		return nil, fmt.Errorf("%w: unknown frequency %q", ErrInvalid, params.Frequency)
	}

	c := &Customer{
		Name:      params.Name,
		Phone:     params.Phone,
		Address:   params.Address,
		Frequency: params.Frequency,
	}
	if err := s.repo.CreateCustomer(ctx, c); err != nil {
		return nil, err
	}

	return c, nil
}

func (s *Service) Get(ctx context.Context, id int64) (*Customer, error) {
	return s.repo.GetCustomer(ctx, id)
}

func (s *Service) Update(ctx context.Context, c *Customer) error {
	if c.Name == "" {
		return fmt.Errorf("%w: name is required", ErrInvalid)
	}

	if !c.Frequency.Valid() {
		return fmt.Errorf("%w: unknown frequency %q", ErrInvalid, c.Frequency)
	}

	return s.repo.UpdateCustomer(ctx, c)
}

// Delete removes the customer; the store cascades the delete down to the
// customer's loans and their payments.
func (s *Service) Delete(ctx context.Context, id int64) error {
	return s.repo.DeleteCustomer(ctx, id)
}

func (s *Service) List(ctx context.Context) ([]*Customer, error) {
	return s.repo.ListCustomers(ctx)
}
