package domain

import (
	"context"
	"errors"

	"github.com/smallbiznis/fieldbill/internal/gateway"
)

// StorageKey is the persisted blob holding the customer ledger.
const StorageKey = "field-services-customers"

type CreateCustomerRequest struct {
	FirstName   string `json:"firstName"`
	LastName    string `json:"lastName"`
	Email       string `json:"email"`
	Phone       string `json:"phone"`
	Company     string `json:"company"`
	Address     string `json:"address"`
	City        string `json:"city"`
	State       string `json:"state"`
	Zip         string `json:"zip"`
	ServiceType string `json:"serviceType"`
}

type UpdateCustomerRequest struct {
	FirstName   string `json:"firstName"`
	LastName    string `json:"lastName"`
	Email       string `json:"email"`
	Phone       string `json:"phone"`
	Company     string `json:"company"`
	Address     string `json:"address"`
	City        string `json:"city"`
	State       string `json:"state"`
	Zip         string `json:"zip"`
	ServiceType string `json:"serviceType"`
}

// Service keeps the local customer ledger in sync with the platform.
// Writes go remote first; the local record changes only after the
// platform accepts the call.
type Service interface {
	Create(ctx context.Context, req CreateCustomerRequest) (Customer, error)
	Update(ctx context.Context, customerID int64, req UpdateCustomerRequest) (Customer, error)
	Delete(ctx context.Context, customerID int64) error
	Get(ctx context.Context, customerID int64) (Customer, error)
	List(ctx context.Context) ([]Customer, error)
}

// PlatformAPI is the slice of the outbound gateway this ledger uses.
type PlatformAPI interface {
	CreateCustomer(ctx context.Context, req gateway.CustomerRequest) (*gateway.CustomerResponse, error)
	UpdateCustomer(ctx context.Context, customerID int64, req gateway.CustomerUpdateRequest) error
	DeleteCustomer(ctx context.Context, customerID int64) error
}

// CascadePurger removes a deleted customer's dependent local records.
// The platform keeps its own copies; only local ledgers are purged.
type CascadePurger interface {
	RemoveByCustomer(ctx context.Context, customerID int64) error
}

var (
	ErrInvalidName          = errors.New("invalid_name")
	ErrInvalidEmail         = errors.New("invalid_email")
	ErrNotFound             = errors.New("not_found")
	ErrNumberSpaceExhausted = errors.New("customer_number_space_exhausted")
)
