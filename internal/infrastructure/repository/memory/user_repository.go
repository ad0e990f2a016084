package memory

import (
	"context"
	"fmt"
	"strings"

	"github.com/riskibarqy/komiti/internal/domain/user"
)

type UserRepository struct {
	db *DB
}

func NewUserRepository(db *DB) *UserRepository {
	return &UserRepository{db: db}
}

func (r *UserRepository) GetByID(_ context.Context, userID string) (user.User, bool, error) {
	var (
		out user.User
		ok  bool
	)
	r.db.read(func(d *dataset) {
		out, ok = d.users[userID]
	})
	return out, ok, nil
}

func (r *UserRepository) GetByEmailOrPhone(_ context.Context, emailOrPhone string) (user.User, bool, error) {
	var (
		out user.User
		ok  bool
	)
	r.db.read(func(d *dataset) {
		for _, id := range d.userOrder {
			u := d.users[id]
			if strings.EqualFold(u.EmailOrPhone, emailOrPhone) {
				out, ok = u, true
				return
			}
		}
	})
	return out, ok, nil
}

func (r *UserRepository) Create(ctx context.Context, u user.User) error {
	return r.db.write(ctx, func(d *dataset) error {
		if _, exists := d.users[u.ID]; exists {
			return fmt.Errorf("%w: user=%s", user.ErrAlreadyExists, u.ID)
		}
		for _, existing := range d.users {
			if strings.EqualFold(existing.EmailOrPhone, u.EmailOrPhone) {
				return fmt.Errorf("%w: contact=%s", user.ErrAlreadyExists, u.EmailOrPhone)
			}
		}
		d.users[u.ID] = u
		d.userOrder = append(d.userOrder, u.ID)
		return nil
	})
}

func (r *UserRepository) List(_ context.Context) ([]user.User, error) {
	var out []user.User
	r.db.read(func(d *dataset) {
		out = make([]user.User, 0, len(d.userOrder))
		for _, id := range d.userOrder {
			out = append(out, d.users[id])
		}
	})
	return out, nil
}

func (r *UserRepository) GetSettings(_ context.Context, userID string) (user.Settings, bool, error) {
	var (
		out user.Settings
		ok  bool
	)
	r.db.read(func(d *dataset) {
		out, ok = d.settings[userID]
	})
	return out, ok, nil
}

func (r *UserRepository) UpsertSettings(ctx context.Context, s user.Settings) error {
	return r.db.write(ctx, func(d *dataset) error {
		d.settings[s.UserID] = s
		return nil
	})
}
