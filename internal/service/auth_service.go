package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/TrueRandolf/Resale-Hub-graduate-work/internal/access"
	"github.com/TrueRandolf/Resale-Hub-graduate-work/internal/featureflags"
	"github.com/TrueRandolf/Resale-Hub-graduate-work/internal/middleware"
	"github.com/TrueRandolf/Resale-Hub-graduate-work/internal/models"
	"github.com/TrueRandolf/Resale-Hub-graduate-work/internal/observability"
	"github.com/TrueRandolf/Resale-Hub-graduate-work/internal/repository"

	"go.opentelemetry.io/otel/attribute"
)

// AuthService verifies credentials and registers new users.
type AuthService struct {
	repos  *repository.Repositories
	tx     repository.Transactor
	hasher PasswordHasher
	flags  *featureflags.Manager
}

// RegisterInput is a validated registration payload.
type RegisterInput struct {
	Username  string
	Password  string
	FirstName string
	LastName  string
	Phone     string
	Role      models.Role
}

func NewAuthService(
	repos *repository.Repositories,
	tx repository.Transactor,
	hasher PasswordHasher,
	flags *featureflags.Manager,
) *AuthService {
	return &AuthService{
		repos:  repos,
		tx:     tx,
		hasher: hasher,
		flags:  flags,
	}
}

// Login checks username and password and returns the user id.
func (s *AuthService) Login(ctx context.Context, username, password string) (userID uint, err error) {
	ctx, span := observability.StartSpan(ctx, "AuthService", "Login")
	defer func() { span.End(err) }()

	credential, err := s.repos.Credentials.GetByUsername(ctx, strings.TrimSpace(username))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return 0, models.NewUnauthorizedError(models.MsgInvalidCredentials)
		}
		return 0, internalError(err)
	}
	if !s.hasher.Matches(password, credential.PasswordHash) {
		return 0, models.NewUnauthorizedError(models.MsgInvalidCredentials)
	}
	return credential.ID, nil
}

// Register creates the User and its Credential in one transaction.
func (s *AuthService) Register(ctx context.Context, in RegisterInput) (user *models.User, err error) {
	ctx, span := observability.StartSpan(ctx, "AuthService", "Register",
		attribute.String("username", in.Username))
	defer func() { span.End(err) }()

	username := strings.TrimSpace(in.Username)
	exists, err := s.repos.Users.ExistsByUsername(ctx, username)
	if err != nil {
		return nil, internalError(err)
	}
	if exists {
		return nil, models.NewBadRequestError(models.MsgUserExists)
	}

	hash, err := s.hasher.Hash(in.Password)
	if err != nil {
		return nil, models.NewInternalError(fmt.Errorf("hash password: %w", err))
	}

	role := s.roleFor(in.Role)
	user = &models.User{
		Username:  username,
		FirstName: in.FirstName,
		LastName:  in.LastName,
		Phone:     in.Phone,
	}
	err = s.tx.WithinTransaction(ctx, func(repos *repository.Repositories) error {
		if err := repos.Users.Create(ctx, user); err != nil {
			return err
		}
		return repos.Credentials.Create(ctx, &models.Credential{
			ID:           user.ID,
			PasswordHash: hash,
			Role:         role,
		})
	})
	if err != nil {
		return nil, internalError(err)
	}

	middleware.Logger.InfoContext(ctx, "user registered",
		slog.Uint64("user_id", uint64(user.ID)),
		slog.String("role", string(role)),
	)
	return user, nil
}

// roleFor defaults to USER. ADMIN is only honoured while the register_admin_role flag is on.
func (s *AuthService) roleFor(requested models.Role) models.Role {
	if requested == models.RoleAdmin && s.flags.Enabled(featureflags.RegisterAdminRole) {
		return models.RoleAdmin
	}
	return models.RoleUser
}

// ResolveByID loads the principal for userID. Users without a credential,
// which includes every soft-deleted user, do not resolve.
func (s *AuthService) ResolveByID(ctx context.Context, userID uint) (*access.Principal, error) {
	credential, err := s.repos.Credentials.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	user, err := s.repos.Users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user.IsDeleted() {
		return nil, fmt.Errorf("user %d is deleted", userID)
	}
	return access.ForUser(user.Username, credential.Role), nil
}

// ResolveByPassword authenticates HTTP Basic credentials.
func (s *AuthService) ResolveByPassword(ctx context.Context, username, password string) (uint, *access.Principal, error) {
	userID, err := s.Login(ctx, username, password)
	if err != nil {
		return 0, nil, err
	}
	p, err := s.ResolveByID(ctx, userID)
	if err != nil {
		return 0, nil, err
	}
	return userID, p, nil
}
