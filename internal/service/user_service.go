package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/TrueRandolf/Resale-Hub-graduate-work/internal/access"
	"github.com/TrueRandolf/Resale-Hub-graduate-work/internal/middleware"
	"github.com/TrueRandolf/Resale-Hub-graduate-work/internal/models"
	"github.com/TrueRandolf/Resale-Hub-graduate-work/internal/repository"
)

// UserService manages the caller's own profile.
type UserService struct {
	repos   *repository.Repositories
	hasher  PasswordHasher
	images  ImageStorage
	baseURL string
}

// UpdateUserInput carries the editable profile fields.
type UpdateUserInput struct {
	FirstName string
	LastName  string
	Phone     string
}

func NewUserService(
	repos *repository.Repositories,
	hasher PasswordHasher,
	images ImageStorage,
	baseURL string,
) *UserService {
	return &UserService{
		repos:   repos,
		hasher:  hasher,
		images:  images,
		baseURL: baseURL,
	}
}

// GetMe returns the caller's profile with role.
func (s *UserService) GetMe(ctx context.Context, p *access.Principal) (models.UserView, error) {
	if err := access.CheckAuthenticated(p); err != nil {
		return models.UserView{}, err
	}
	user, err := currentUser(ctx, s.repos, p)
	if err != nil {
		return models.UserView{}, err
	}
	credential, err := s.repos.Credentials.GetByID(ctx, user.ID)
	if err != nil {
		return models.UserView{}, lookupError(err, models.MsgUserNotFound)
	}
	return models.NewUserView(user, credential.Role, s.baseURL), nil
}

// UpdateMe rewrites the caller's name and phone.
func (s *UserService) UpdateMe(ctx context.Context, p *access.Principal, in UpdateUserInput) (models.UpdateUserView, error) {
	if err := access.CheckAuthenticated(p); err != nil {
		return models.UpdateUserView{}, err
	}
	user, err := currentUser(ctx, s.repos, p)
	if err != nil {
		return models.UpdateUserView{}, err
	}

	user.FirstName = in.FirstName
	user.LastName = in.LastName
	user.Phone = in.Phone
	if err := s.repos.Users.Update(ctx, user); err != nil {
		return models.UpdateUserView{}, internalError(err)
	}
	return models.UpdateUserView{
		FirstName: user.FirstName,
		LastName:  user.LastName,
		Phone:     user.Phone,
	}, nil
}

// SetPassword replaces the caller's password after verifying the current one.
func (s *UserService) SetPassword(ctx context.Context, p *access.Principal, current, next string) error {
	if err := access.CheckAuthenticated(p); err != nil {
		return err
	}
	user, err := currentUser(ctx, s.repos, p)
	if err != nil {
		return err
	}
	credential, err := s.repos.Credentials.GetByID(ctx, user.ID)
	if err != nil {
		return lookupError(err, models.MsgUserNotFound)
	}
	if !s.hasher.Matches(current, credential.PasswordHash) {
		return models.NewUnauthorizedError(models.MsgInvalidPassword)
	}

	hash, err := s.hasher.Hash(next)
	if err != nil {
		return models.NewInternalError(fmt.Errorf("hash password: %w", err))
	}
	if err := s.repos.Credentials.UpdatePassword(ctx, user.ID, hash); err != nil {
		return lookupError(err, models.MsgUserNotFound)
	}
	middleware.Logger.InfoContext(ctx, "password changed", slog.Uint64("user_id", uint64(user.ID)))
	return nil
}

// UpdateMyImage stores a new avatar, points the profile at it and then removes the old file.
func (s *UserService) UpdateMyImage(ctx context.Context, p *access.Principal, upload ImageUpload) error {
	if err := access.CheckAuthenticated(p); err != nil {
		return err
	}
	user, err := currentUser(ctx, s.repos, p)
	if err != nil {
		return err
	}

	newPath, err := s.images.SaveAvatarImage(ctx, upload, user.ID)
	if err != nil {
		return err
	}
	oldPath := user.Image
	user.Image = newPath
	if err := s.repos.Users.Update(ctx, user); err != nil {
		deleteImagesQuietly(ctx, s.images, []string{newPath})
		return internalError(err)
	}

	deleteImagesQuietly(ctx, s.images, uniquePaths(oldPath))
	return nil
}
