package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/riskibarqy/komiti/internal/domain/user"
	idgen "github.com/riskibarqy/komiti/internal/platform/id"
	"github.com/riskibarqy/komiti/internal/platform/logging"
)

// TokenIssuer signs access tokens for logged-in users. It is nil when tokens
// come from an external account service.
type TokenIssuer interface {
	IssueAccessToken(ctx context.Context, u user.User) (string, time.Time, error)
}

type LoginInput struct {
	Name         string
	EmailOrPhone string
}

type LoginResult struct {
	User        user.User
	AccessToken string
	ExpiresAt   time.Time
	Created     bool
}

type UpdateSettingsInput struct {
	UserID         string
	Language       *user.Language
	Theme          *user.Theme
	Notifications  *bool
	EmailReminders *bool
}

type UserService struct {
	repo   user.Repository
	issuer TokenIssuer
	idGen  idgen.Generator
	logger *logging.Logger
	now    func() time.Time
}

func NewUserService(repo user.Repository, issuer TokenIssuer, idGen idgen.Generator, logger *logging.Logger) *UserService {
	if logger == nil {
		logger = logging.Default()
	}

	return &UserService{
		repo:   repo,
		issuer: issuer,
		idGen:  idGen,
		logger: logger,
		now:    time.Now,
	}
}

// Login finds the user by email or phone, creating it on first login.
func (s *UserService) Login(ctx context.Context, input LoginInput) (LoginResult, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.UserService.Login")
	defer span.End()

	if s.issuer == nil {
		return LoginResult{}, fmt.Errorf("%w: local login is disabled", ErrDependencyUnavailable)
	}

	contact := strings.ToLower(strings.TrimSpace(input.EmailOrPhone))
	if contact == "" {
		return LoginResult{}, fmt.Errorf("%w: email or phone is required", ErrInvalidInput)
	}

	u, exists, err := s.repo.GetByEmailOrPhone(ctx, contact)
	if err != nil {
		return LoginResult{}, fmt.Errorf("get user by contact: %w", err)
	}

	created := false
	if !exists {
		name := strings.TrimSpace(input.Name)
		if name == "" {
			name, _, _ = strings.Cut(contact, "@")
		}
		userID, err := s.idGen.NewID()
		if err != nil {
			return LoginResult{}, fmt.Errorf("generate user id: %w", err)
		}
		u = user.User{
			ID:           userID,
			Name:         name,
			EmailOrPhone: contact,
			JoinedAt:     s.now().UTC(),
		}
		if err := s.repo.Create(ctx, u); err != nil {
			return LoginResult{}, fmt.Errorf("create user: %w", domainError(err))
		}
		created = true
		s.logger.InfoContext(ctx, "user registered", "user_id", u.ID)
	}

	token, expiresAt, err := s.issuer.IssueAccessToken(ctx, u)
	if err != nil {
		return LoginResult{}, fmt.Errorf("issue access token: %w", err)
	}

	return LoginResult{
		User:        u,
		AccessToken: token,
		ExpiresAt:   expiresAt,
		Created:     created,
	}, nil
}

func (s *UserService) GetProfile(ctx context.Context, userID string) (user.User, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.UserService.GetProfile")
	defer span.End()

	u, exists, err := s.repo.GetByID(ctx, strings.TrimSpace(userID))
	if err != nil {
		return user.User{}, fmt.Errorf("get user: %w", err)
	}
	if !exists {
		return user.User{}, fmt.Errorf("%w: user=%s", ErrNotFound, userID)
	}
	return u, nil
}

func (s *UserService) GetSettings(ctx context.Context, userID string) (user.Settings, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.UserService.GetSettings")
	defer span.End()

	userID = strings.TrimSpace(userID)
	if userID == "" {
		return user.Settings{}, fmt.Errorf("%w: user id is required", ErrInvalidInput)
	}

	settings, exists, err := s.repo.GetSettings(ctx, userID)
	if err != nil {
		return user.Settings{}, fmt.Errorf("get settings: %w", err)
	}
	if !exists {
		return user.DefaultSettings(userID), nil
	}
	return settings, nil
}

func (s *UserService) UpdateSettings(ctx context.Context, input UpdateSettingsInput) (user.Settings, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.UserService.UpdateSettings")
	defer span.End()

	if input.Language != nil && !user.IsValidLanguage(*input.Language) {
		return user.Settings{}, fmt.Errorf("%w: unsupported language %q", ErrInvalidInput, *input.Language)
	}
	if input.Theme != nil && !user.IsValidTheme(*input.Theme) {
		return user.Settings{}, fmt.Errorf("%w: unsupported theme %q", ErrInvalidInput, *input.Theme)
	}

	settings, err := s.GetSettings(ctx, input.UserID)
	if err != nil {
		return user.Settings{}, err
	}
	if input.Language != nil {
		settings.Language = *input.Language
	}
	if input.Theme != nil {
		settings.Theme = *input.Theme
	}
	if input.Notifications != nil {
		settings.Notifications = *input.Notifications
	}
	if input.EmailReminders != nil {
		settings.EmailReminders = *input.EmailReminders
	}
	settings.UpdatedAt = s.now().UTC()

	if err := s.repo.UpsertSettings(ctx, settings); err != nil {
		return user.Settings{}, fmt.Errorf("upsert settings: %w", err)
	}
	return settings, nil
}
