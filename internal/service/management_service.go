package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/TrueRandolf/Resale-Hub-graduate-work/internal/access"
	"github.com/TrueRandolf/Resale-Hub-graduate-work/internal/middleware"
	"github.com/TrueRandolf/Resale-Hub-graduate-work/internal/models"
	"github.com/TrueRandolf/Resale-Hub-graduate-work/internal/observability"
	"github.com/TrueRandolf/Resale-Hub-graduate-work/internal/repository"

	"go.opentelemetry.io/otel/attribute"
)

// ManagementService holds the administrator-only operations.
type ManagementService struct {
	repos  *repository.Repositories
	tx     repository.Transactor
	ads    *AdService
	images ImageStorage
	now    func() time.Time
}

func NewManagementService(
	repos *repository.Repositories,
	tx repository.Transactor,
	ads *AdService,
	images ImageStorage,
) *ManagementService {
	return &ManagementService{
		repos:  repos,
		tx:     tx,
		ads:    ads,
		images: images,
		now:    time.Now,
	}
}

// DeletedUsername is the synthetic username a soft-deleted user is renamed to.
func DeletedUsername(id uint) string {
	return fmt.Sprintf("id%d@deleted", id)
}

// Metrics counts all, active and soft-deleted users.
func (s *ManagementService) Metrics(ctx context.Context, p *access.Principal) (models.BusinessMetric, error) {
	if err := checkAdmin(p); err != nil {
		return models.BusinessMetric{}, err
	}

	total, err := s.repos.Users.Count(ctx)
	if err != nil {
		return models.BusinessMetric{}, internalError(err)
	}
	active, err := s.repos.Users.CountByDeleted(ctx, false)
	if err != nil {
		return models.BusinessMetric{}, internalError(err)
	}
	deleted, err := s.repos.Users.CountByDeleted(ctx, true)
	if err != nil {
		return models.BusinessMetric{}, internalError(err)
	}
	return models.BusinessMetric{TotalUsers: total, ActiveUsers: active, DeletedUsers: deleted}, nil
}

// SoftDeleteUser removes the target's ads, anonymizes the user row and drops its
// credential in one transaction. Image files are removed after commit and
// failures there are only logged.
func (s *ManagementService) SoftDeleteUser(ctx context.Context, p *access.Principal, targetID uint) (err error) {
	ctx, span := observability.StartSpan(ctx, "ManagementService", "SoftDeleteUser",
		attribute.Int64("target_id", int64(targetID)))
	defer func() { span.End(err) }()

	target, err := s.loadTarget(ctx, p, targetID)
	if err != nil {
		return err
	}

	var paths []string
	err = s.tx.WithinTransaction(ctx, func(repos *repository.Repositories) error {
		adImages, err := s.ads.DeleteAllByUserID(ctx, repos, target.ID)
		if err != nil {
			return err
		}
		paths = uniquePaths(append(adImages, target.Image)...)

		deletedAt := s.now()
		target.Username = DeletedUsername(target.ID)
		target.Image = ""
		target.DeletedAt = &deletedAt
		if err := repos.Users.Update(ctx, target); err != nil {
			return err
		}
		return repos.Credentials.Delete(ctx, target.ID)
	})
	if err != nil {
		return internalError(err)
	}

	deleteImagesQuietly(ctx, s.images, paths)
	observability.UsersDeleted.WithLabelValues("soft").Inc()
	middleware.Logger.InfoContext(ctx, "user soft-deleted",
		slog.Uint64("target_id", uint64(target.ID)),
		slog.Int("images", len(paths)),
	)
	return nil
}

// HardDeleteUser removes the target and everything that references it. Image
// files are removed after commit and failures there are only logged.
func (s *ManagementService) HardDeleteUser(ctx context.Context, p *access.Principal, targetID uint) (err error) {
	ctx, span := observability.StartSpan(ctx, "ManagementService", "HardDeleteUser",
		attribute.Int64("target_id", int64(targetID)))
	defer func() { span.End(err) }()

	target, err := s.loadTarget(ctx, p, targetID)
	if err != nil {
		return err
	}

	var paths []string
	err = s.tx.WithinTransaction(ctx, func(repos *repository.Repositories) error {
		adImages, err := s.ads.DeleteAllByUserID(ctx, repos, target.ID)
		if err != nil {
			return err
		}
		paths = uniquePaths(append(adImages, target.Image)...)

		if err := repos.Comments.DeleteByUserID(ctx, target.ID); err != nil {
			return err
		}
		if err := repos.Credentials.Delete(ctx, target.ID); err != nil {
			return err
		}
		return repos.Users.Delete(ctx, target.ID)
	})
	if err != nil {
		return internalError(err)
	}

	deleteImagesQuietly(ctx, s.images, paths)
	observability.UsersDeleted.WithLabelValues("hard").Inc()
	middleware.Logger.InfoContext(ctx, "user hard-deleted",
		slog.Uint64("target_id", uint64(target.ID)),
		slog.Int("images", len(paths)),
	)
	return nil
}

// SetRole grants or revokes ADMIN on userID.
func (s *ManagementService) SetRole(ctx context.Context, p *access.Principal, userID uint, role models.Role) error {
	if err := checkAdmin(p); err != nil {
		return err
	}
	if !role.Valid() {
		return models.NewBadRequestError(fmt.Sprintf("unknown role %q", role))
	}
	if err := s.repos.Credentials.UpdateRole(ctx, userID, role); err != nil {
		return lookupError(err, models.MsgUserNotFound)
	}
	middleware.Logger.InfoContext(ctx, "role changed",
		slog.Uint64("user_id", uint64(userID)),
		slog.String("role", string(role)),
	)
	return nil
}

// ListAdmins returns every user holding ADMIN.
func (s *ManagementService) ListAdmins(ctx context.Context, p *access.Principal) ([]models.User, error) {
	if err := checkAdmin(p); err != nil {
		return nil, err
	}
	credentials, err := s.repos.Credentials.ListByRole(ctx, models.RoleAdmin)
	if err != nil {
		return nil, internalError(err)
	}
	ids := make([]uint, 0, len(credentials))
	for _, c := range credentials {
		ids = append(ids, c.ID)
	}
	users, err := s.repos.Users.GetByIDs(ctx, ids)
	if err != nil {
		return nil, internalError(err)
	}
	out := make([]models.User, 0, len(ids))
	for _, id := range ids {
		if u, ok := users[id]; ok {
			out = append(out, *u)
		}
	}
	return out, nil
}

// loadTarget authorizes p, loads targetID and rejects self-deletion.
func (s *ManagementService) loadTarget(ctx context.Context, p *access.Principal, targetID uint) (*models.User, error) {
	if err := checkAdmin(p); err != nil {
		return nil, err
	}
	target, err := s.repos.Users.GetByID(ctx, targetID)
	if err != nil {
		return nil, lookupError(err, models.MsgUserNotFound)
	}

	actor, err := s.repos.Users.GetByUsername(ctx, p.Username)
	switch {
	case err == nil:
		if actor.ID == target.ID {
			return nil, models.NewForbiddenError(models.MsgAccessDenied)
		}
	case !errors.Is(err, repository.ErrNotFound):
		return nil, internalError(err)
	}
	return target, nil
}

func checkAdmin(p *access.Principal) error {
	if err := access.CheckAuthenticated(p); err != nil {
		return err
	}
	return access.CheckAdmin(p)
}
