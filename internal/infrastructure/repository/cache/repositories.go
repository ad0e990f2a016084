package cache

import (
	"context"

	"github.com/riskibarqy/komiti/internal/domain/committee"
	"github.com/riskibarqy/komiti/internal/domain/user"
	basecache "github.com/riskibarqy/komiti/internal/platform/cache"
)

const (
	committeeListPrefix = "committee:list"
	committeeListAll    = committeeListPrefix + ":all"
)

func committeeKey(id string) string         { return "committee:id:" + id }
func committeeOwnerKey(owner string) string { return committeeListPrefix + ":owner:" + owner }

// CommitteeRepository caches reads of the wrapped repository. Every write
// invalidates the ledger and all list keys before returning.
type CommitteeRepository struct {
	next  committee.Repository
	cache *basecache.Store
}

func NewCommitteeRepository(next committee.Repository, cache *basecache.Store) *CommitteeRepository {
	return &CommitteeRepository{next: next, cache: cache}
}

type cachedLedger struct {
	value  committee.Ledger
	exists bool
}

func (r *CommitteeRepository) GetByID(ctx context.Context, committeeID string) (committee.Ledger, bool, error) {
	v, err := r.cache.GetOrLoad(ctx, committeeKey(committeeID), func(ctx context.Context) (any, error) {
		item, exists, err := r.next.GetByID(ctx, committeeID)
		if err != nil {
			return nil, err
		}
		return cachedLedger{value: item.Clone(), exists: exists}, nil
	})
	if err != nil {
		return committee.Ledger{}, false, err
	}

	cached, _ := v.(cachedLedger)
	if !cached.exists {
		return committee.Ledger{}, false, nil
	}
	return cached.value.Clone(), true, nil
}

func (r *CommitteeRepository) List(ctx context.Context) ([]committee.Ledger, error) {
	return r.list(ctx, committeeListAll, r.next.List)
}

func (r *CommitteeRepository) ListByOwner(ctx context.Context, ownerID string) ([]committee.Ledger, error) {
	return r.list(ctx, committeeOwnerKey(ownerID), func(ctx context.Context) ([]committee.Ledger, error) {
		return r.next.ListByOwner(ctx, ownerID)
	})
}

func (r *CommitteeRepository) list(ctx context.Context, key string, load func(context.Context) ([]committee.Ledger, error)) ([]committee.Ledger, error) {
	v, err := r.cache.GetOrLoad(ctx, key, func(ctx context.Context) (any, error) {
		items, err := load(ctx)
		if err != nil {
			return nil, err
		}
		return cloneLedgers(items), nil
	})
	if err != nil {
		return nil, err
	}

	items, _ := v.([]committee.Ledger)
	return cloneLedgers(items), nil
}

func (r *CommitteeRepository) Create(ctx context.Context, ledger committee.Ledger) error {
	defer r.invalidate(ctx, ledger.Committee.ID)
	return r.next.Create(ctx, ledger)
}

func (r *CommitteeRepository) Update(ctx context.Context, ledger committee.Ledger) error {
	defer r.invalidate(ctx, ledger.Committee.ID)
	return r.next.Update(ctx, ledger)
}

func (r *CommitteeRepository) Delete(ctx context.Context, committeeID string) error {
	defer r.invalidate(ctx, committeeID)
	return r.next.Delete(ctx, committeeID)
}

func (r *CommitteeRepository) invalidate(ctx context.Context, committeeID string) {
	r.cache.Invalidate(ctx, []string{committeeKey(committeeID)}, committeeListPrefix)
}

func cloneLedgers(items []committee.Ledger) []committee.Ledger {
	out := make([]committee.Ledger, 0, len(items))
	for _, l := range items {
		out = append(out, l.Clone())
	}
	return out
}

// UserRepository caches settings lookups, which every reminder and profile
// request performs.
type UserRepository struct {
	user.Repository
	cache *basecache.Store
}

func NewUserRepository(next user.Repository, cache *basecache.Store) *UserRepository {
	return &UserRepository{Repository: next, cache: cache}
}

type cachedSettings struct {
	value  user.Settings
	exists bool
}

func settingsKey(userID string) string { return "user:settings:" + userID }

func (r *UserRepository) GetSettings(ctx context.Context, userID string) (user.Settings, bool, error) {
	v, err := r.cache.GetOrLoad(ctx, settingsKey(userID), func(ctx context.Context) (any, error) {
		s, exists, err := r.Repository.GetSettings(ctx, userID)
		if err != nil {
			return nil, err
		}
		return cachedSettings{value: s, exists: exists}, nil
	})
	if err != nil {
		return user.Settings{}, false, err
	}

	cached, _ := v.(cachedSettings)
	return cached.value, cached.exists, nil
}

func (r *UserRepository) UpsertSettings(ctx context.Context, s user.Settings) error {
	defer r.cache.Invalidate(ctx, []string{settingsKey(s.UserID)})
	return r.Repository.UpsertSettings(ctx, s)
}
