package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/sangkips/feedledger-api/internal/domain/entity"
	"github.com/sangkips/feedledger-api/internal/domain/repository"
	"github.com/sangkips/feedledger-api/pkg/apperror"
	"github.com/sangkips/feedledger-api/pkg/pagination"
)

// CustomerService handles customer profile operations. Balances are only
// changed through LedgerService.
type CustomerService struct {
	customerRepo repository.CustomerRepository
	batchRepo    repository.BatchRepository
}

// NewCustomerService creates a new customer service
func NewCustomerService(customerRepo repository.CustomerRepository, batchRepo repository.BatchRepository) *CustomerService {
	return &CustomerService{customerRepo: customerRepo, batchRepo: batchRepo}
}

// CreateCustomerInput represents the create customer input
type CreateCustomerInput struct {
	Name    string
	Phone   *string
	Email   *string
	Address *string
}

// CreateCustomer creates a new customer with a zero balance
func (s *CustomerService) CreateCustomer(ctx context.Context, input *CreateCustomerInput) (*entity.Customer, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, apperror.NewInvalidArgumentError("Customer name is required")
	}

	phone := normalize(input.Phone)
	if err := s.ensurePhoneFree(ctx, phone, uuid.Nil); err != nil {
		return nil, err
	}

	customer := &entity.Customer{
		Name:    name,
		Phone:   phone,
		Email:   normalize(input.Email),
		Address: normalize(input.Address),
	}

	if err := s.customerRepo.Create(ctx, customer); err != nil {
		return nil, fmt.Errorf("create customer: %w", err)
	}

	return customer, nil
}

// GetCustomer retrieves a customer by ID
func (s *CustomerService) GetCustomer(ctx context.Context, id uuid.UUID) (*entity.Customer, error) {
	customer, err := s.customerRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("load customer: %w", err)
	}
	if customer == nil {
		return nil, apperror.NewNotFoundError("Customer")
	}
	return customer, nil
}

// ListCustomers lists customers by name, optionally filtered by a search
// term matched against name, phone and email.
func (s *CustomerService) ListCustomers(ctx context.Context, params *pagination.PaginationParams, search string) (*pagination.PaginatedResult[entity.Customer], error) {
	customers, total, err := s.customerRepo.List(ctx, params, search)
	if err != nil {
		return nil, fmt.Errorf("list customers: %w", err)
	}

	pag := pagination.NewPagination(params.Page, params.PerPage, total)
	return pagination.NewPaginatedResult(customers, pag), nil
}

// UpdateCustomerInput represents the update customer input. Nil fields are
// left unchanged.
type UpdateCustomerInput struct {
	ID      uuid.UUID
	Name    *string
	Phone   *string
	Email   *string
	Address *string
}

// UpdateCustomer updates a customer's profile
func (s *CustomerService) UpdateCustomer(ctx context.Context, input *UpdateCustomerInput) (*entity.Customer, error) {
	customer, err := s.GetCustomer(ctx, input.ID)
	if err != nil {
		return nil, err
	}

	if input.Name != nil {
		name := strings.TrimSpace(*input.Name)
		if name == "" {
			return nil, apperror.NewInvalidArgumentError("Customer name is required")
		}
		customer.Name = name
	}
	if input.Phone != nil {
		phone := normalize(input.Phone)
		if err := s.ensurePhoneFree(ctx, phone, customer.ID); err != nil {
			return nil, err
		}
		customer.Phone = phone
	}
	if input.Email != nil {
		customer.Email = normalize(input.Email)
	}
	if input.Address != nil {
		customer.Address = normalize(input.Address)
	}

	if err := s.customerRepo.Update(ctx, customer); err != nil {
		return nil, fmt.Errorf("update customer: %w", err)
	}

	return customer, nil
}

// DeleteCustomer soft-deletes a customer who has never had a batch
func (s *CustomerService) DeleteCustomer(ctx context.Context, id uuid.UUID) error {
	if _, err := s.GetCustomer(ctx, id); err != nil {
		return err
	}

	count, err := s.batchRepo.CountByCustomer(ctx, id)
	if err != nil {
		return fmt.Errorf("count batches: %w", err)
	}
	if count > 0 {
		return apperror.NewConflictError("Customer has batches and cannot be deleted")
	}

	if err := s.customerRepo.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete customer: %w", err)
	}
	return nil
}

func (s *CustomerService) ensurePhoneFree(ctx context.Context, phone *string, self uuid.UUID) error {
	if phone == nil {
		return nil
	}
	existing, err := s.customerRepo.GetByPhone(ctx, *phone)
	if err != nil {
		return fmt.Errorf("look up phone: %w", err)
	}
	if existing != nil && existing.ID != self {
		return apperror.NewConflictError("A customer with this phone number already exists")
	}
	return nil
}

// normalize trims s and maps blank strings to nil.
func normalize(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	if v == "" {
		return nil
	}
	return &v
}
