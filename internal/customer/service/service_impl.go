package service

import (
	"context"
	"math/rand/v2"
	"strconv"
	"strings"
	"sync"

	"github.com/smallbiznis/fieldbill/internal/clock"
	credsdomain "github.com/smallbiznis/fieldbill/internal/credentials/domain"
	"github.com/smallbiznis/fieldbill/internal/customer/domain"
	"github.com/smallbiznis/fieldbill/internal/gateway"
	"github.com/smallbiznis/fieldbill/internal/kvstore"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

// numberAttempts caps the search for an unused customer number.
const numberAttempts = 1000

type Params struct {
	fx.In

	Log      *zap.Logger
	Clock    clock.Clock
	KV       kvstore.Store
	API      domain.PlatformAPI
	Creds    credsdomain.Service
	Cascades []domain.CascadePurger `group:"customer.cascades"`
	LC       fx.Lifecycle           `optional:"true"`
}

type Service struct {
	log      *zap.Logger
	clock    clock.Clock
	kv       kvstore.Store
	api      domain.PlatformAPI
	creds    credsdomain.Service
	cascades []domain.CascadePurger

	// randNumber is swappable so collision handling is testable.
	randNumber func() string

	mu    sync.Mutex
	items []domain.Customer
}

func New(p Params) domain.Service {
	s := &Service{
		log:        p.Log.Named("customer.service"),
		clock:      p.Clock,
		kv:         p.KV,
		api:        p.API,
		creds:      p.Creds,
		cascades:   p.Cascades,
		randNumber: randomCustomerNumber,
	}
	if p.LC != nil {
		p.LC.Append(fx.Hook{OnStart: s.load})
	}
	return s
}

// randomCustomerNumber returns an 8 digit number string.
func randomCustomerNumber() string {
	return strconv.Itoa(10000000 + rand.IntN(90000000))
}

func (s *Service) load(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	found, err := s.kv.Get(ctx, domain.StorageKey, &s.items)
	if err != nil {
		return err
	}
	if found {
		s.log.Info("customer ledger loaded", zap.Int("count", len(s.items)))
	}
	return nil
}

func (s *Service) persistLocked(ctx context.Context) error {
	return s.kv.Put(ctx, domain.StorageKey, s.items)
}

func (s *Service) ensureConfigured(ctx context.Context) error {
	ok, err := s.creds.IsConfigured(ctx)
	if err != nil {
		return err
	}
	if !ok {
		return credsdomain.ErrNotConfigured
	}
	return nil
}

// nextCustomerNumber draws random candidates until one is unused
// locally. The number doubles as the platform-side identifier field, so
// collisions within the ledger are not acceptable.
func (s *Service) nextCustomerNumber() (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	used := make(map[string]struct{}, len(s.items))
	for _, c := range s.items {
		used[c.CustomerNumber] = struct{}{}
	}
	for i := 0; i < numberAttempts; i++ {
		candidate := s.randNumber()
		if _, taken := used[candidate]; !taken {
			return candidate, nil
		}
	}
	return "", domain.ErrNumberSpaceExhausted
}

func (s *Service) Create(ctx context.Context, req domain.CreateCustomerRequest) (domain.Customer, error) {
	first := strings.TrimSpace(req.FirstName)
	last := strings.TrimSpace(req.LastName)
	if first == "" || last == "" {
		return domain.Customer{}, domain.ErrInvalidName
	}
	email := strings.TrimSpace(req.Email)
	if email == "" || !strings.Contains(email, "@") {
		return domain.Customer{}, domain.ErrInvalidEmail
	}
	if err := s.ensureConfigured(ctx); err != nil {
		return domain.Customer{}, err
	}

	number, err := s.nextCustomerNumber()
	if err != nil {
		return domain.Customer{}, err
	}

	resp, err := s.api.CreateCustomer(ctx, gateway.CustomerRequest{
		FirstName:        first,
		LastName:         last,
		Email:            email,
		Phone:            strings.TrimSpace(req.Phone),
		CustomerNumber:   number,
		Company:          strings.TrimSpace(req.Company),
		Address:          strings.TrimSpace(req.Address),
		City:             strings.TrimSpace(req.City),
		State:            strings.TrimSpace(req.State),
		Zip:              strings.TrimSpace(req.Zip),
		Country:          "US",
		IdentifierFields: []string{"customerNumber"},
		CustomerStatus:   1,
	})
	if err != nil {
		return domain.Customer{}, err
	}

	customer := domain.Customer{
		CustomerID:     resp.CustomerID,
		CustomerNumber: firstNonEmpty(resp.CustomerNumber, number),
		FirstName:      firstNonEmpty(resp.FirstName, first),
		LastName:       firstNonEmpty(resp.LastName, last),
		Email:          firstNonEmpty(resp.Email, email),
		Phone:          firstNonEmpty(resp.Phone, strings.TrimSpace(req.Phone)),
		Company:        firstNonEmpty(resp.Company, strings.TrimSpace(req.Company)),
		Address:        firstNonEmpty(resp.Address, strings.TrimSpace(req.Address)),
		City:           firstNonEmpty(resp.City, strings.TrimSpace(req.City)),
		State:          firstNonEmpty(resp.State, strings.TrimSpace(req.State)),
		Zip:            firstNonEmpty(resp.Zip, strings.TrimSpace(req.Zip)),
		ServiceType:    strings.TrimSpace(req.ServiceType),
		CreatedAt:      s.clock.Now().UTC(),
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.items = append(s.items, customer)
	if err := s.persistLocked(ctx); err != nil {
		return domain.Customer{}, err
	}

	s.log.Info("customer created",
		zap.Int64("customer_id", customer.CustomerID),
		zap.String("customer_number", customer.CustomerNumber),
	)
	return customer, nil
}

func (s *Service) Update(ctx context.Context, customerID int64, req domain.UpdateCustomerRequest) (domain.Customer, error) {
	first := strings.TrimSpace(req.FirstName)
	last := strings.TrimSpace(req.LastName)
	if first == "" || last == "" {
		return domain.Customer{}, domain.ErrInvalidName
	}
	email := strings.TrimSpace(req.Email)
	if email == "" || !strings.Contains(email, "@") {
		return domain.Customer{}, domain.ErrInvalidEmail
	}

	s.mu.Lock()
	idx := s.indexOfLocked(customerID)
	s.mu.Unlock()
	if idx < 0 {
		return domain.Customer{}, domain.ErrNotFound
	}
	if err := s.ensureConfigured(ctx); err != nil {
		return domain.Customer{}, err
	}

	if err := s.api.UpdateCustomer(ctx, customerID, gateway.CustomerUpdateRequest{
		FirstName:      first,
		LastName:       last,
		Email:          email,
		Phone:          strings.TrimSpace(req.Phone),
		Company:        strings.TrimSpace(req.Company),
		Address:        strings.TrimSpace(req.Address),
		City:           strings.TrimSpace(req.City),
		State:          strings.TrimSpace(req.State),
		Zip:            strings.TrimSpace(req.Zip),
		Country:        "US",
		CustomerStatus: 1,
	}); err != nil {
		return domain.Customer{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	idx = s.indexOfLocked(customerID)
	if idx < 0 {
		return domain.Customer{}, domain.ErrNotFound
	}
	c := &s.items[idx]
	c.FirstName = first
	c.LastName = last
	c.Email = email
	c.Phone = strings.TrimSpace(req.Phone)
	c.Company = strings.TrimSpace(req.Company)
	c.Address = strings.TrimSpace(req.Address)
	c.City = strings.TrimSpace(req.City)
	c.State = strings.TrimSpace(req.State)
	c.Zip = strings.TrimSpace(req.Zip)
	c.ServiceType = strings.TrimSpace(req.ServiceType)
	if err := s.persistLocked(ctx); err != nil {
		return domain.Customer{}, err
	}
	return *c, nil
}

func (s *Service) Delete(ctx context.Context, customerID int64) error {
	s.mu.Lock()
	idx := s.indexOfLocked(customerID)
	s.mu.Unlock()
	if idx < 0 {
		return domain.ErrNotFound
	}
	if err := s.ensureConfigured(ctx); err != nil {
		return err
	}

	if err := s.api.DeleteCustomer(ctx, customerID); err != nil {
		return err
	}

	s.mu.Lock()
	idx = s.indexOfLocked(customerID)
	if idx >= 0 {
		s.items = append(s.items[:idx], s.items[idx+1:]...)
	}
	err := s.persistLocked(ctx)
	s.mu.Unlock()
	if err != nil {
		return err
	}

	for _, purger := range s.cascades {
		if err := purger.RemoveByCustomer(ctx, customerID); err != nil {
			s.log.Warn("cascade purge failed",
				zap.Int64("customer_id", customerID),
				zap.Error(err),
			)
		}
	}
	s.log.Info("customer deleted", zap.Int64("customer_id", customerID))
	return nil
}

func (s *Service) Get(ctx context.Context, customerID int64) (domain.Customer, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	idx := s.indexOfLocked(customerID)
	if idx < 0 {
		return domain.Customer{}, domain.ErrNotFound
	}
	return s.items[idx], nil
}

func (s *Service) List(ctx context.Context) ([]domain.Customer, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]domain.Customer, len(s.items))
	copy(out, s.items)
	return out, nil
}

func (s *Service) indexOfLocked(customerID int64) int {
	for i := range s.items {
		if s.items[i].CustomerID == customerID {
			return i
		}
	}
	return -1
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
