package user

import "context"

type Repository interface {
	GetByID(ctx context.Context, userID string) (User, bool, error)
	GetByEmailOrPhone(ctx context.Context, emailOrPhone string) (User, bool, error)
	Create(ctx context.Context, u User) error
	List(ctx context.Context) ([]User, error)
	GetSettings(ctx context.Context, userID string) (Settings, bool, error)
	UpsertSettings(ctx context.Context, s Settings) error
}
