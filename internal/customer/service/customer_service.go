package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/ridloal/retail-pos/internal/customer/domain"
	"github.com/ridloal/retail-pos/internal/customer/repository"
	"github.com/ridloal/retail-pos/internal/platform/logger"
)

var ErrInvalidCustomer = errors.New("invalid customer")

type CustomerService interface {
	UpsertCustomer(ctx context.Context, req domain.UpsertCustomerRequest) (*domain.Customer, error)
	GetByMobile(ctx context.Context, mobile string) (*domain.Customer, error)
	ListCustomers(ctx context.Context) ([]domain.Customer, error)
}

type customerService struct {
	repo repository.CustomerRepository
}

func NewCustomerService(repo repository.CustomerRepository) CustomerService {
	return &customerService{repo: repo}
}

func (s *customerService) UpsertCustomer(ctx context.Context, req domain.UpsertCustomerRequest) (*domain.Customer, error) {
	mobile := strings.TrimSpace(req.Mobile)
	if mobile == "" {
		return nil, fmt.Errorf("%w: mobile number is required", ErrInvalidCustomer)
	}
	name := strings.TrimSpace(req.Name)

	// A new customer needs a name; an existing one may be updated without it.
	if name == "" {
		if _, err := s.repo.GetCustomerByMobile(ctx, mobile); err != nil {
			if errors.Is(err, repository.ErrCustomerNotFound) {
				return nil, fmt.Errorf("%w: name is required for a new customer", ErrInvalidCustomer)
			}
			return nil, err
		}
	}

	customer := &domain.Customer{
		Name:    name,
		Mobile:  mobile,
		Address: trimmed(req.Address),
		Email:   trimmed(req.Email),
	}
	if err := s.repo.UpsertCustomer(ctx, customer); err != nil {
		logger.Error("UpsertCustomer: failed to save customer", err)
		return nil, fmt.Errorf("could not save customer: %w", err)
	}
	return customer, nil
}

func (s *customerService) GetByMobile(ctx context.Context, mobile string) (*domain.Customer, error) {
	mobile = strings.TrimSpace(mobile)
	if mobile == "" {
		return nil, fmt.Errorf("%w: mobile number is required", ErrInvalidCustomer)
	}
	return s.repo.GetCustomerByMobile(ctx, mobile)
}

func (s *customerService) ListCustomers(ctx context.Context) ([]domain.Customer, error) {
	return s.repo.ListCustomers(ctx)
}

func trimmed(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	if v == "" {
		return nil
	}
	return &v
}
