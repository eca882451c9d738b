package service

import (
	"context"
	"errors"
	"log/slog"

	"github.com/TrueRandolf/Resale-Hub-graduate-work/internal/access"
	"github.com/TrueRandolf/Resale-Hub-graduate-work/internal/middleware"
	"github.com/TrueRandolf/Resale-Hub-graduate-work/internal/models"
	"github.com/TrueRandolf/Resale-Hub-graduate-work/internal/observability"
	"github.com/TrueRandolf/Resale-Hub-graduate-work/internal/repository"

	"go.opentelemetry.io/otel/attribute"
)

// AdService orchestrates ad CRUD and ad images.
type AdService struct {
	repos   *repository.Repositories
	tx      repository.Transactor
	images  ImageStorage
	baseURL string
}

// AdInput carries the editable ad fields.
type AdInput struct {
	Title       string
	Price       int
	Description string
}

func NewAdService(
	repos *repository.Repositories,
	tx repository.Transactor,
	images ImageStorage,
	baseURL string,
) *AdService {
	return &AdService{
		repos:   repos,
		tx:      tx,
		images:  images,
		baseURL: baseURL,
	}
}

// ListAds returns every ad. It is readable without authentication.
func (s *AdService) ListAds(ctx context.Context) (models.AdsView, error) {
	ads, err := s.repos.Ads.List(ctx)
	if err != nil {
		return models.AdsView{}, internalError(err)
	}
	return models.NewAdsView(ads, s.baseURL), nil
}

// ListMyAds returns the caller's ads.
func (s *AdService) ListMyAds(ctx context.Context, p *access.Principal) (models.AdsView, error) {
	if err := access.CheckAuthenticated(p); err != nil {
		return models.AdsView{}, err
	}
	ads, err := s.repos.Ads.ListByActiveOwner(ctx, p.Username)
	if err != nil {
		return models.AdsView{}, internalError(err)
	}
	return models.NewAdsView(ads, s.baseURL), nil
}

// CreateAd stores the image first and then the ad. If the ad cannot be
// written the image is removed again.
func (s *AdService) CreateAd(ctx context.Context, p *access.Principal, in AdInput, upload ImageUpload) (view models.AdView, err error) {
	ctx, span := observability.StartSpan(ctx, "AdService", "CreateAd")
	defer func() { span.End(err) }()

	if err := access.CheckAuthenticated(p); err != nil {
		return models.AdView{}, err
	}
	owner, err := currentUser(ctx, s.repos, p)
	if err != nil {
		return models.AdView{}, err
	}

	imagePath, err := s.images.SaveAdImage(ctx, upload, owner.ID)
	if err != nil {
		return models.AdView{}, err
	}

	ad := &models.Ad{
		Title:       in.Title,
		Price:       in.Price,
		Description: in.Description,
		Image:       imagePath,
		UserID:      owner.ID,
	}
	if err := s.repos.Ads.Create(ctx, ad); err != nil {
		deleteImagesQuietly(ctx, s.images, []string{imagePath})
		return models.AdView{}, internalError(err)
	}

	middleware.Logger.InfoContext(ctx, "ad created",
		slog.Uint64("ad_id", uint64(ad.ID)),
		slog.Uint64("user_id", uint64(owner.ID)),
	)
	return models.NewAdView(ad, s.baseURL), nil
}

// GetAd returns one ad with its author's contact details.
func (s *AdService) GetAd(ctx context.Context, p *access.Principal, id uint) (models.ExtendedAdView, error) {
	if err := access.CheckAuthenticated(p); err != nil {
		return models.ExtendedAdView{}, err
	}
	ad, err := s.repos.Ads.GetByID(ctx, id)
	if err != nil {
		return models.ExtendedAdView{}, lookupError(err, models.MsgAdNotFound)
	}
	author, err := s.repos.Users.GetByID(ctx, ad.UserID)
	if err != nil && !errors.Is(err, repository.ErrNotFound) {
		return models.ExtendedAdView{}, internalError(err)
	}
	return models.NewExtendedAdView(ad, author, s.baseURL), nil
}

// UpdateAd rewrites title, price and description. Concurrent updates are last-write-wins.
func (s *AdService) UpdateAd(ctx context.Context, p *access.Principal, id uint, in AdInput) (models.AdView, error) {
	ad, err := s.loadOwnedAd(ctx, p, id)
	if err != nil {
		return models.AdView{}, err
	}

	ad.Title = in.Title
	ad.Price = in.Price
	ad.Description = in.Description
	if err := s.repos.Ads.Update(ctx, ad); err != nil {
		return models.AdView{}, internalError(err)
	}
	return models.NewAdView(ad, s.baseURL), nil
}

// UpdateAdImage replaces the ad image and returns the new image bytes.
// The new file is written before the old one is removed.
func (s *AdService) UpdateAdImage(ctx context.Context, p *access.Principal, id uint, upload ImageUpload) (content []byte, err error) {
	ctx, span := observability.StartSpan(ctx, "AdService", "UpdateAdImage",
		attribute.Int64("ad_id", int64(id)))
	defer func() { span.End(err) }()

	ad, err := s.loadOwnedAd(ctx, p, id)
	if err != nil {
		return nil, err
	}

	newPath, err := s.images.SaveAdImage(ctx, upload, ad.UserID)
	if err != nil {
		return nil, err
	}
	oldPath := ad.Image
	ad.Image = newPath
	if err := s.repos.Ads.Update(ctx, ad); err != nil {
		deleteImagesQuietly(ctx, s.images, []string{newPath})
		return nil, internalError(err)
	}

	deleteImagesQuietly(ctx, s.images, uniquePaths(oldPath))
	return upload.Content, nil
}

// DeleteAd removes the ad and its comments, then the image file.
func (s *AdService) DeleteAd(ctx context.Context, p *access.Principal, id uint) (err error) {
	ctx, span := observability.StartSpan(ctx, "AdService", "DeleteAd",
		attribute.Int64("ad_id", int64(id)))
	defer func() { span.End(err) }()

	ad, err := s.loadOwnedAd(ctx, p, id)
	if err != nil {
		return err
	}

	err = s.tx.WithinTransaction(ctx, func(repos *repository.Repositories) error {
		if err := repos.Comments.DeleteByAdID(ctx, ad.ID); err != nil {
			return err
		}
		return repos.Ads.Delete(ctx, ad.ID)
	})
	if err != nil {
		return internalError(err)
	}

	deleteImagesQuietly(ctx, s.images, uniquePaths(ad.Image))
	return nil
}

// DeleteAllByUserID removes every ad of userID together with the comments on
// them, using repos bound to the caller's transaction. It returns the image
// paths that became unreferenced; the caller deletes them after commit.
func (s *AdService) DeleteAllByUserID(ctx context.Context, repos *repository.Repositories, userID uint) ([]string, error) {
	ads, err := repos.Ads.ListByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}
	paths := make([]string, 0, len(ads))
	for _, ad := range ads {
		paths = append(paths, ad.Image)
	}

	if err := repos.Comments.DeleteByAdOwner(ctx, userID); err != nil {
		return nil, err
	}
	if err := repos.Ads.DeleteByUserID(ctx, userID); err != nil {
		return nil, err
	}
	return uniquePaths(paths...), nil
}

// loadOwnedAd runs the mutation template up to the ownership check.
func (s *AdService) loadOwnedAd(ctx context.Context, p *access.Principal, id uint) (*models.Ad, error) {
	if err := access.CheckAuthenticated(p); err != nil {
		return nil, err
	}
	ad, err := s.repos.Ads.GetByID(ctx, id)
	if err != nil {
		return nil, lookupError(err, models.MsgAdNotFound)
	}
	if err := checkOwnsRecord(ctx, s.repos, p, ad.UserID); err != nil {
		return nil, err
	}
	return ad, nil
}

// checkOwnsRecord resolves ownerID to a username and applies the owner-or-admin rule.
// Records whose owner row is gone are left to administrators.
func checkOwnsRecord(ctx context.Context, repos *repository.Repositories, p *access.Principal, ownerID uint) error {
	owner, err := repos.Users.GetByID(ctx, ownerID)
	if err != nil {
		if !errors.Is(err, repository.ErrNotFound) {
			return internalError(err)
		}
		if p.IsAdmin() {
			return nil
		}
		return models.NewForbiddenError(models.MsgAccessDenied)
	}
	return access.CheckOwnerOrAdmin(p, owner.Username)
}

// currentUser loads the User row behind an authenticated principal.
func currentUser(ctx context.Context, repos *repository.Repositories, p *access.Principal) (*models.User, error) {
	user, err := repos.Users.GetByUsername(ctx, p.Username)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, models.NewUnauthorizedError(models.MsgInvalidCredentials)
		}
		return nil, internalError(err)
	}
	return user, nil
}
