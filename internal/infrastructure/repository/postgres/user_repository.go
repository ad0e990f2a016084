package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/riskibarqy/komiti/internal/domain/user"
	qb "github.com/riskibarqy/komiti/internal/platform/querybuilder"
)

type UserRepository struct {
	db *sqlx.DB
}

func NewUserRepository(db *sqlx.DB) *UserRepository {
	return &UserRepository{db: db}
}

func (r *UserRepository) GetByID(ctx context.Context, userID string) (user.User, bool, error) {
	return r.getOne(ctx, qb.Eq("public_id", userID))
}

func (r *UserRepository) GetByEmailOrPhone(ctx context.Context, emailOrPhone string) (user.User, bool, error) {
	return r.getOne(ctx, qb.Expr("LOWER(email_or_phone) = LOWER(?)", emailOrPhone))
}

func (r *UserRepository) getOne(ctx context.Context, cond qb.Condition) (user.User, bool, error) {
	query, args, err := qb.Select("*").From("users").Where(cond).ToSQL()
	if err != nil {
		return user.User{}, false, fmt.Errorf("build get user query: %w", err)
	}

	var row userTableModel
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if isNotFound(err) {
			return user.User{}, false, nil
		}
		return user.User{}, false, fmt.Errorf("get user: %w", err)
	}
	return userFromRow(row), true, nil
}

func (r *UserRepository) Create(ctx context.Context, u user.User) error {
	query, args, err := qb.InsertModel("users", userInsertModel{
		PublicID:     u.ID,
		Name:         u.Name,
		EmailOrPhone: u.EmailOrPhone,
		JoinedAt:     u.JoinedAt,
	}, "")
	if err != nil {
		return fmt.Errorf("build create user query: %w", err)
	}
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: contact=%s", user.ErrAlreadyExists, u.EmailOrPhone)
		}
		return fmt.Errorf("create user: %w", err)
	}
	return nil
}

func (r *UserRepository) List(ctx context.Context) ([]user.User, error) {
	query, args, err := qb.Select("*").From("users").OrderBy("id ASC").ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build list users query: %w", err)
	}

	var rows []userTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}

	out := make([]user.User, 0, len(rows))
	for _, row := range rows {
		out = append(out, userFromRow(row))
	}
	return out, nil
}

func (r *UserRepository) GetSettings(ctx context.Context, userID string) (user.Settings, bool, error) {
	query, args, err := qb.Select("*").From("user_settings").
		Where(qb.Eq("user_id", userID)).
		ToSQL()
	if err != nil {
		return user.Settings{}, false, fmt.Errorf("build get user settings query: %w", err)
	}

	var row userSettingsTableModel
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if isNotFound(err) {
			return user.Settings{}, false, nil
		}
		return user.Settings{}, false, fmt.Errorf("get user settings: %w", err)
	}
	return settingsFromRow(row), true, nil
}

func (r *UserRepository) UpsertSettings(ctx context.Context, s user.Settings) error {
	query, args, err := qb.InsertModel("user_settings", userSettingsTableModel{
		UserID:         s.UserID,
		Language:       string(s.Language),
		Theme:          string(s.Theme),
		Notifications:  s.Notifications,
		EmailReminders: s.EmailReminders,
		UpdatedAt:      s.UpdatedAt,
	}, `ON CONFLICT (user_id) DO UPDATE SET
language = EXCLUDED.language,
theme = EXCLUDED.theme,
notifications = EXCLUDED.notifications,
email_reminders = EXCLUDED.email_reminders,
updated_at = EXCLUDED.updated_at`)
	if err != nil {
		return fmt.Errorf("build upsert user settings query: %w", err)
	}
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("upsert user settings: %w", err)
	}
	return nil
}
