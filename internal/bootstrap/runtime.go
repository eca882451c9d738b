// Package bootstrap wires the process-wide dependencies shared by the binaries.
package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/TrueRandolf/Resale-Hub-graduate-work/internal/config"
	"github.com/TrueRandolf/Resale-Hub-graduate-work/internal/database"
	"github.com/TrueRandolf/Resale-Hub-graduate-work/internal/middleware"
	"github.com/TrueRandolf/Resale-Hub-graduate-work/internal/models"
	"github.com/TrueRandolf/Resale-Hub-graduate-work/internal/redisstore"
	"github.com/TrueRandolf/Resale-Hub-graduate-work/internal/repository"
	"github.com/TrueRandolf/Resale-Hub-graduate-work/internal/service"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// Runtime is everything a binary needs after InitRuntime.
type Runtime struct {
	DB     *gorm.DB
	Redis  *redis.Client
	Images *service.ImageStore
}

// PasswordHasher hashes the development root password.
type PasswordHasher interface {
	Hash(plain string) (string, error)
}

// InitRuntime connects to the database and redis and prepares the image directories.
// Redis is optional: when it cannot be reached the runtime continues without it.
func InitRuntime(ctx context.Context, cfg *config.Config) (*Runtime, error) {
	db, err := database.Connect(cfg)
	if err != nil {
		return nil, fmt.Errorf("database connection failed: %w", err)
	}

	rdb, err := redisstore.Connect(ctx, cfg.RedisURL)
	if err != nil {
		middleware.Logger.Warn("redis unavailable, continuing without rate limiting and token revocation",
			slog.String("error", err.Error()))
		if rdb != nil {
			_ = rdb.Close()
		}
		rdb = nil
	}

	images, err := service.NewImageStore(cfg)
	if err != nil {
		return nil, fmt.Errorf("image storage: %w", err)
	}

	if cfg.IsDevelopment() {
		if err := EnsureDevRootAdmin(ctx, cfg, db, service.NewBcryptHasher()); err != nil {
			return nil, fmt.Errorf("failed to bootstrap development root admin: %w", err)
		}
	}

	return &Runtime{DB: db, Redis: rdb, Images: images}, nil
}

// EnsureDevRootAdmin makes DEV_ROOT_USERNAME an administrator, creating the
// account when it does not exist yet. It is a no-op without DEV_ROOT_PASSWORD.
func EnsureDevRootAdmin(ctx context.Context, cfg *config.Config, db *gorm.DB, hasher PasswordHasher) error {
	username := strings.ToLower(strings.TrimSpace(cfg.DevRootUsername))
	if username == "" || cfg.DevRootPassword == "" {
		return nil
	}

	hash, err := hasher.Hash(cfg.DevRootPassword)
	if err != nil {
		return fmt.Errorf("hash root password: %w", err)
	}

	err = repository.NewTransactor(db).WithinTransaction(ctx, func(repos *repository.Repositories) error {
		user, err := repos.Users.GetByUsername(ctx, username)
		switch {
		case errors.Is(err, repository.ErrNotFound):
			user = &models.User{Username: username, FirstName: "Root", LastName: "Admin"}
			if err := repos.Users.Create(ctx, user); err != nil {
				return err
			}
			return repos.Credentials.Create(ctx, &models.Credential{ID: user.ID, PasswordHash: hash, Role: models.RoleAdmin})
		case err != nil:
			return err
		}

		if _, err := repos.Credentials.GetByID(ctx, user.ID); errors.Is(err, repository.ErrNotFound) {
			return repos.Credentials.Create(ctx, &models.Credential{ID: user.ID, PasswordHash: hash, Role: models.RoleAdmin})
		} else if err != nil {
			return err
		}
		return repos.Credentials.UpdateRole(ctx, user.ID, models.RoleAdmin)
	})
	if err != nil {
		return err
	}

	middleware.Logger.Info("development root admin ensured", slog.String("username", username))
	return nil
}
