package repository

import (
	"context"

	"github.com/TrueRandolf/Resale-Hub-graduate-work/internal/models"

	"gorm.io/gorm"
)

// CommentRepository defines persistence operations for comments.
type CommentRepository interface {
	ListByAd(ctx context.Context, adID uint) ([]models.Comment, error)
	GetByID(ctx context.Context, id uint) (*models.Comment, error)
	Create(ctx context.Context, comment *models.Comment) error
	Update(ctx context.Context, comment *models.Comment) error
	Delete(ctx context.Context, id uint) error
	DeleteByAdID(ctx context.Context, adID uint) error
	DeleteByAdOwner(ctx context.Context, userID uint) error
	DeleteByUserID(ctx context.Context, userID uint) error
}

type commentRepository struct {
	db *gorm.DB
}

// NewCommentRepository creates a new CommentRepository
func NewCommentRepository(db *gorm.DB) CommentRepository {
	return &commentRepository{db: db}
}

func (r *commentRepository) ListByAd(ctx context.Context, adID uint) ([]models.Comment, error) {
	var comments []models.Comment
	err := r.db.WithContext(ctx).Where("ad_id = ?", adID).Order("created_at desc").Find(&comments).Error
	return comments, wrap("list comments", err)
}

func (r *commentRepository) GetByID(ctx context.Context, id uint) (*models.Comment, error) {
	var comment models.Comment
	if err := r.db.WithContext(ctx).First(&comment, id).Error; err != nil {
		return nil, wrap("get comment", err)
	}
	return &comment, nil
}

func (r *commentRepository) Create(ctx context.Context, comment *models.Comment) error {
	return wrap("create comment", r.db.WithContext(ctx).Create(comment).Error)
}

func (r *commentRepository) Update(ctx context.Context, comment *models.Comment) error {
	return wrap("update comment", r.db.WithContext(ctx).Save(comment).Error)
}

func (r *commentRepository) Delete(ctx context.Context, id uint) error {
	return wrap("delete comment", r.db.WithContext(ctx).Delete(&models.Comment{}, id).Error)
}

func (r *commentRepository) DeleteByAdID(ctx context.Context, adID uint) error {
	return wrap("delete comments by ad", r.db.WithContext(ctx).Where("ad_id = ?", adID).Delete(&models.Comment{}).Error)
}

// DeleteByAdOwner removes every comment posted on ads owned by userID.
func (r *commentRepository) DeleteByAdOwner(ctx context.Context, userID uint) error {
	owned := r.db.Model(&models.Ad{}).Select("id").Where("user_id = ?", userID)
	err := r.db.WithContext(ctx).Where("ad_id IN (?)", owned).Delete(&models.Comment{}).Error
	return wrap("delete comments by ad owner", err)
}

func (r *commentRepository) DeleteByUserID(ctx context.Context, userID uint) error {
	return wrap("delete comments by user", r.db.WithContext(ctx).Where("user_id = ?", userID).Delete(&models.Comment{}).Error)
}
