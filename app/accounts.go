package app

import (
	"context"
	"errors"
	"fmt"

	"github.com/artpar/launchpad/domain/account"
	"github.com/artpar/launchpad/domain/paging"
	"github.com/artpar/launchpad/ports"
	"github.com/rs/zerolog"
)

// ErrEmailTaken is returned when registering an email that already has an
// account.
var ErrEmailTaken = errors.New("email already registered")

// AccountService manages user accounts.
type AccountService struct {
	accounts ports.AccountStore
	ids      ports.IDGenerator
	clock    ports.Clock
	logger   zerolog.Logger
}

// NewAccountService creates a new account service.
func NewAccountService(accounts ports.AccountStore, ids ports.IDGenerator, clock ports.Clock, logger zerolog.Logger) *AccountService {
	return &AccountService{accounts: accounts, ids: ids, clock: clock, logger: logger}
}

// Create registers a new active account.
func (s *AccountService) Create(ctx context.Context, email, name string, role account.Role) (account.Account, error) {
	if _, err := s.accounts.GetByEmail(ctx, email); err == nil {
		return account.Account{}, ErrEmailTaken
	}

	now := s.clock.Now().UTC()
	a := account.Account{
		ID:        s.ids.New(),
		Email:     email,
		Name:      name,
		Role:      role,
		Status:    account.StatusActive,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.accounts.Create(ctx, a); err != nil {
		return account.Account{}, fmt.Errorf("store account: %w", err)
	}

	s.logger.Info().Str("account_id", a.ID).Str("email", email).Msg("account created")
	return a, nil
}

// Get retrieves an account by ID.
func (s *AccountService) Get(ctx context.Context, id string) (account.Account, error) {
	return s.accounts.Get(ctx, id)
}

// GetByEmail retrieves an account by email.
func (s *AccountService) GetByEmail(ctx context.Context, email string) (account.Account, error) {
	return s.accounts.GetByEmail(ctx, email)
}

// Update modifies an account's mutable fields and stamps UpdatedAt.
func (s *AccountService) Update(ctx context.Context, a account.Account) (account.Account, error) {
	current, err := s.accounts.Get(ctx, a.ID)
	if err != nil {
		return account.Account{}, err
	}

	// Creation time is immutable; it anchors listing order.
	a.CreatedAt = current.CreatedAt
	a.UpdatedAt = s.clock.Now().UTC()
	if err := s.accounts.Update(ctx, a); err != nil {
		return account.Account{}, fmt.Errorf("update account: %w", err)
	}

	s.logger.Info().Str("account_id", a.ID).Msg("account updated")
	return a, nil
}

// Delete removes an account.
func (s *AccountService) Delete(ctx context.Context, id string) error {
	if err := s.accounts.Delete(ctx, id); err != nil {
		return err
	}
	s.logger.Info().Str("account_id", id).Msg("account deleted")
	return nil
}

// List returns a page of accounts.
func (s *AccountService) List(ctx context.Context, in paging.Instruction) (paging.Page[account.Account], error) {
	return s.accounts.List(ctx, in)
}

// Count returns the total account count.
func (s *AccountService) Count(ctx context.Context) (int, error) {
	return s.accounts.Count(ctx)
}
