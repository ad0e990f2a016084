package memory

import (
	"context"
	"fmt"
	"sync"

	"github.com/riskibarqy/komiti/internal/domain/committee"
	"github.com/riskibarqy/komiti/internal/domain/user"
	"github.com/riskibarqy/komiti/internal/infrastructure/state"
)

// DB is the in-process dataset shared by the memory repositories. When a
// state.Store is attached every write is persisted before it becomes visible;
// a failed save leaves the previous dataset in place.
type DB struct {
	mu    sync.RWMutex
	data  dataset
	store state.Store
}

type dataset struct {
	ledgers   map[string]committee.Ledger
	order     []string
	users     map[string]user.User
	userOrder []string
	settings  map[string]user.Settings
}

func newDataset() dataset {
	return dataset{
		ledgers:  make(map[string]committee.Ledger),
		users:    make(map[string]user.User),
		settings: make(map[string]user.Settings),
	}
}

// copy is shallow: values are replaced, never mutated, once stored.
func (d dataset) copy() dataset {
	out := dataset{
		ledgers:   make(map[string]committee.Ledger, len(d.ledgers)),
		order:     append([]string(nil), d.order...),
		users:     make(map[string]user.User, len(d.users)),
		userOrder: append([]string(nil), d.userOrder...),
		settings:  make(map[string]user.Settings, len(d.settings)),
	}
	for k, v := range d.ledgers {
		out.ledgers[k] = v
	}
	for k, v := range d.users {
		out.users[k] = v
	}
	for k, v := range d.settings {
		out.settings[k] = v
	}
	return out
}

func (d dataset) snapshot() state.StoredState {
	ledgers := make([]committee.Ledger, 0, len(d.order))
	for _, id := range d.order {
		ledgers = append(ledgers, d.ledgers[id])
	}
	users := make([]user.User, 0, len(d.userOrder))
	settings := make([]user.Settings, 0, len(d.settings))
	for _, id := range d.userOrder {
		users = append(users, d.users[id])
		if s, ok := d.settings[id]; ok {
			settings = append(settings, s)
		}
	}
	// settings for ids without a user row still round-trip
	for id, s := range d.settings {
		if _, ok := d.users[id]; !ok {
			settings = append(settings, s)
		}
	}
	return state.Snapshot(ledgers, users, settings)
}

func NewDB(ledgers ...committee.Ledger) *DB {
	data := newDataset()
	for _, l := range ledgers {
		data.ledgers[l.Committee.ID] = l.Clone()
		data.order = append(data.order, l.Committee.ID)
	}
	return &DB{data: data}
}

// OpenDB loads the dataset from store and keeps writing through to it.
func OpenDB(ctx context.Context, store state.Store) (*DB, error) {
	loaded, err := store.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("load state: %w", err)
	}

	data := newDataset()
	for _, l := range loaded.Ledgers() {
		if _, exists := data.ledgers[l.Committee.ID]; exists {
			continue
		}
		data.ledgers[l.Committee.ID] = l
		data.order = append(data.order, l.Committee.ID)
	}
	for _, u := range loaded.DomainUsers() {
		if _, exists := data.users[u.ID]; exists {
			continue
		}
		data.users[u.ID] = u
		data.userOrder = append(data.userOrder, u.ID)
	}
	for _, s := range loaded.DomainSettings() {
		data.settings[s.UserID] = s
	}

	return &DB{data: data, store: store}, nil
}

func (db *DB) read(fn func(d *dataset)) {
	db.mu.RLock()
	defer db.mu.RUnlock()
	fn(&db.data)
}

// write applies fn to a copy of the dataset, persists it and only then swaps
// it in.
func (db *DB) write(ctx context.Context, fn func(d *dataset) error) error {
	db.mu.Lock()
	defer db.mu.Unlock()

	next := db.data.copy()
	if err := fn(&next); err != nil {
		return err
	}
	if db.store != nil {
		if err := db.store.Save(ctx, next.snapshot()); err != nil {
			return fmt.Errorf("save state: %w", err)
		}
	}
	db.data = next
	return nil
}
