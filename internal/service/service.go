package service

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"vintagepos/backend/internal/cart"
	"vintagepos/backend/internal/domain"
	"vintagepos/backend/internal/ledger"
	"vintagepos/backend/internal/pricing"
	"vintagepos/backend/internal/store"
)

// ErrNotConfirmed is returned when a destructive action was declined.
var ErrNotConfirmed = errors.New("action not confirmed")

type actorContextKey struct{}

func WithActor(ctx context.Context, actor domain.Actor) context.Context {
	return context.WithValue(ctx, actorContextKey{}, actor)
}

func ActorFromContext(ctx context.Context) (domain.Actor, bool) {
	actor, ok := ctx.Value(actorContextKey{}).(domain.Actor)
	return actor, ok
}

type Options struct {
	// TaxRate defaults to pricing.DefaultTaxRate when nil. Zero is a valid rate.
	TaxRate           *decimal.Decimal
	LowStockThreshold int
	Seed              []domain.Product
	Confirmer         Confirmer
	Notifier          Notifier
	Logger            *zap.Logger
	LedgerOptions     []ledger.Option
}

// Service is the single writer over the ledger and the current cart. Every
// mutation holds mu from validation through persistence.
type Service struct {
	mu        sync.Mutex
	ledger    *ledger.Ledger
	cart      *cart.Cart
	theme     domain.Theme
	records   *store.Records
	confirmer Confirmer
	notifier  Notifier
	logger    *zap.Logger
	lowStock  int
}

// New loads stored state through records and builds the service around it.
func New(ctx context.Context, records *store.Records, opts Options) *Service {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	taxRate := pricing.DefaultTaxRate
	if opts.TaxRate != nil {
		taxRate = *opts.TaxRate
	}
	if opts.LowStockThreshold <= 0 {
		opts.LowStockThreshold = 10
	}
	if opts.Confirmer == nil {
		opts.Confirmer = AlwaysConfirm{}
	}
	if opts.Notifier == nil {
		opts.Notifier = LogNotifier{Logger: logger.Named("notify")}
	}

	snap := records.Load(ctx, opts.Seed)
	ledgerOpts := append([]ledger.Option{ledger.WithTaxRate(taxRate)}, opts.LedgerOptions...)

	return &Service{
		ledger:    ledger.New(snap, ledgerOpts...),
		cart:      cart.New(taxRate),
		theme:     records.LoadTheme(ctx),
		records:   records,
		confirmer: opts.Confirmer,
		notifier:  opts.Notifier,
		logger:    logger.Named("service"),
		lowStock:  opts.LowStockThreshold,
	}
}

func (s *Service) ListProducts(_ context.Context, term string) []domain.Product {
	return s.ledger.SearchProducts(term)
}

func (s *Service) GetProduct(_ context.Context, id int) (domain.Product, error) {
	return s.ledger.Product(id)
}

func (s *Service) LookupProduct(_ context.Context, retailCode string) (domain.Product, error) {
	return s.ledger.ProductByRetailCode(retailCode)
}

func (s *Service) CreateProduct(ctx context.Context, p domain.Product) (domain.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	created, err := s.ledger.CreateProduct(p)
	if err != nil {
		return domain.Product{}, s.fail(ctx, err)
	}
	s.persist(ctx, store.KeyProducts)
	s.audit(ctx, "product_create", fmt.Sprint(created.ID), zap.String("design", created.Design), zap.Int("count", created.Count))
	return created, nil
}

func (s *Service) UpdateProduct(ctx context.Context, p domain.Product) (domain.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	updated, err := s.ledger.UpdateProduct(p)
	if err != nil {
		return domain.Product{}, s.fail(ctx, err)
	}
	s.persist(ctx, store.KeyProducts)
	s.audit(ctx, "product_update", fmt.Sprint(updated.ID), zap.Stringer("retail_price", updated.RetailPrice), zap.Int("count", updated.Count))
	return updated, nil
}

// DeleteProduct removes a product after confirmation and drops it from the
// cart. Historical records are untouched.
func (s *Service) DeleteProduct(ctx context.Context, id int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.confirmer.Confirm(ctx, fmt.Sprintf("delete product %d", id)) {
		return ErrNotConfirmed
	}
	deleted, err := s.ledger.DeleteProduct(id)
	if err != nil {
		return s.fail(ctx, err)
	}
	s.cart.Remove(id)
	s.persist(ctx, store.KeyProducts)
	s.audit(ctx, "product_delete", fmt.Sprint(id), zap.String("design", deleted.Design))
	return nil
}

// persist writes the named record sets. Failures are logged; the in-memory
// change stands either way.
func (s *Service) persist(ctx context.Context, keys ...string) {
	if err := s.records.Save(ctx, s.ledger.Snapshot(), keys...); err != nil {
		s.logger.Error("persist record sets", zap.Strings("keys", keys), zap.Error(err))
	}
}

// fail reports validation errors to the notifier and returns err unchanged.
func (s *Service) fail(ctx context.Context, err error) error {
	if domain.IsValidation(err) {
		s.notifier.Notify(ctx, Notification{Level: NotifyError, Message: err.Error()})
	}
	return err
}

func (s *Service) notify(ctx context.Context, format string, args ...any) {
	s.notifier.Notify(ctx, Notification{Level: NotifySuccess, Message: fmt.Sprintf(format, args...)})
}

func (s *Service) audit(ctx context.Context, action string, entityID string, fields ...zap.Field) {
	actor, ok := ActorFromContext(ctx)
	if !ok {
		actor = domain.Actor{Username: "system", Role: "system"}
	}
	s.logger.Info("audit",
		append([]zap.Field{
			zap.String("action", action),
			zap.String("entity_id", entityID),
			zap.String("actor", actor.Username),
			zap.String("role", actor.Role),
		}, fields...)...,
	)
}
