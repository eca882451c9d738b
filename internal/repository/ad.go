package repository

import (
	"context"

	"github.com/TrueRandolf/Resale-Hub-graduate-work/internal/models"

	"gorm.io/gorm"
)

// AdRepository defines persistence operations for ads.
type AdRepository interface {
	List(ctx context.Context) ([]models.Ad, error)
	GetByID(ctx context.Context, id uint) (*models.Ad, error)
	ListByUserID(ctx context.Context, userID uint) ([]models.Ad, error)
	ListByActiveOwner(ctx context.Context, username string) ([]models.Ad, error)
	Create(ctx context.Context, ad *models.Ad) error
	Update(ctx context.Context, ad *models.Ad) error
	Delete(ctx context.Context, id uint) error
	DeleteByUserID(ctx context.Context, userID uint) error
}

type adRepository struct {
	db *gorm.DB
}

// NewAdRepository returns a new AdRepository implementation.
func NewAdRepository(db *gorm.DB) AdRepository {
	return &adRepository{db: db}
}

func (r *adRepository) List(ctx context.Context) ([]models.Ad, error) {
	var ads []models.Ad
	err := r.db.WithContext(ctx).Order("id").Find(&ads).Error
	return ads, wrap("list ads", err)
}

func (r *adRepository) GetByID(ctx context.Context, id uint) (*models.Ad, error) {
	var ad models.Ad
	if err := r.db.WithContext(ctx).First(&ad, id).Error; err != nil {
		return nil, wrap("get ad", err)
	}
	return &ad, nil
}

func (r *adRepository) ListByUserID(ctx context.Context, userID uint) ([]models.Ad, error) {
	var ads []models.Ad
	err := r.db.WithContext(ctx).Where("user_id = ?", userID).Order("id").Find(&ads).Error
	return ads, wrap("list ads by user", err)
}

// ListByActiveOwner returns the ads of username, or none if that user is soft-deleted.
func (r *adRepository) ListByActiveOwner(ctx context.Context, username string) ([]models.Ad, error) {
	var ads []models.Ad
	err := r.db.WithContext(ctx).
		Joins("JOIN users ON users.id = ads.user_id").
		Where("users.username = ? AND users.deleted_at IS NULL", username).
		Order("ads.id").
		Find(&ads).Error
	return ads, wrap("list ads by owner", err)
}

func (r *adRepository) Create(ctx context.Context, ad *models.Ad) error {
	return wrap("create ad", r.db.WithContext(ctx).Create(ad).Error)
}

func (r *adRepository) Update(ctx context.Context, ad *models.Ad) error {
	return wrap("update ad", r.db.WithContext(ctx).Save(ad).Error)
}

func (r *adRepository) Delete(ctx context.Context, id uint) error {
	return wrap("delete ad", r.db.WithContext(ctx).Delete(&models.Ad{}, id).Error)
}

func (r *adRepository) DeleteByUserID(ctx context.Context, userID uint) error {
	return wrap("delete ads by user", r.db.WithContext(ctx).Where("user_id = ?", userID).Delete(&models.Ad{}).Error)
}
