package usecase

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/riskibarqy/komiti/internal/domain/committee"
)

// LedgerMutator serializes every read-modify-write of a committee ledger.
// One mutex per committee id; entries are dropped when no caller holds them.
// Reads go to source, writes go to repo so a caching decorator still sees
// every invalidation.
type LedgerMutator struct {
	repo   committee.Repository
	source committee.Repository

	mu    sync.Mutex
	locks map[string]*ledgerLock
}

type ledgerLock struct {
	mu   sync.Mutex
	refs int
}

type MutatorOption func(*LedgerMutator)

// WithLedgerSource makes Mutate load ledgers from an undecorated repository.
func WithLedgerSource(source committee.Repository) MutatorOption {
	return func(m *LedgerMutator) {
		if source != nil {
			m.source = source
		}
	}
}

func NewLedgerMutator(repo committee.Repository, opts ...MutatorOption) *LedgerMutator {
	m := &LedgerMutator{
		repo:   repo,
		source: repo,
		locks:  make(map[string]*ledgerLock),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

func (m *LedgerMutator) lock(committeeID string) func() {
	m.mu.Lock()
	l, ok := m.locks[committeeID]
	if !ok {
		l = &ledgerLock{}
		m.locks[committeeID] = l
	}
	l.refs++
	m.mu.Unlock()

	l.mu.Lock()
	return func() {
		l.mu.Unlock()

		m.mu.Lock()
		l.refs--
		if l.refs == 0 {
			delete(m.locks, committeeID)
		}
		m.mu.Unlock()
	}
}

// Mutate loads the ledger, applies fn to a private copy and stores the result
// with a single Update. Nothing is written when fn fails.
func (m *LedgerMutator) Mutate(ctx context.Context, committeeID string, fn func(*committee.Ledger) error) (committee.Ledger, error) {
	unlock := m.lock(committeeID)
	defer unlock()

	current, exists, err := m.source.GetByID(ctx, committeeID)
	if err != nil {
		return committee.Ledger{}, fmt.Errorf("get committee: %w", err)
	}
	if !exists {
		return committee.Ledger{}, fmt.Errorf("%w: committee=%s", ErrNotFound, committeeID)
	}

	next := current.Clone()
	if err := fn(&next); err != nil {
		return committee.Ledger{}, domainError(err)
	}
	if err := m.repo.Update(ctx, next); err != nil {
		return committee.Ledger{}, fmt.Errorf("update committee: %w", err)
	}

	return next, nil
}

func (m *LedgerMutator) Create(ctx context.Context, ledger committee.Ledger) error {
	unlock := m.lock(ledger.Committee.ID)
	defer unlock()

	if err := m.repo.Create(ctx, ledger); err != nil {
		return domainError(fmt.Errorf("create committee: %w", err))
	}
	return nil
}

func (m *LedgerMutator) Delete(ctx context.Context, committeeID string) error {
	unlock := m.lock(committeeID)
	defer unlock()

	if err := m.repo.Delete(ctx, committeeID); err != nil {
		return fmt.Errorf("delete committee: %w", err)
	}
	return nil
}

func loadLedger(ctx context.Context, repo committee.Repository, committeeID string) (committee.Ledger, error) {
	committeeID = strings.TrimSpace(committeeID)
	if committeeID == "" {
		return committee.Ledger{}, fmt.Errorf("%w: committee id is required", ErrInvalidInput)
	}

	ledger, exists, err := repo.GetByID(ctx, committeeID)
	if err != nil {
		return committee.Ledger{}, fmt.Errorf("get committee: %w", err)
	}
	if !exists {
		return committee.Ledger{}, fmt.Errorf("%w: committee=%s", ErrNotFound, committeeID)
	}
	return ledger, nil
}
