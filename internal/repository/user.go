package repository

import (
	"context"

	"github.com/TrueRandolf/Resale-Hub-graduate-work/internal/models"

	"gorm.io/gorm"
)

// UserRepository defines persistence operations for users.
type UserRepository interface {
	GetByID(ctx context.Context, id uint) (*models.User, error)
	GetByUsername(ctx context.Context, username string) (*models.User, error)
	GetByIDs(ctx context.Context, ids []uint) (map[uint]*models.User, error)
	ExistsByUsername(ctx context.Context, username string) (bool, error)
	Create(ctx context.Context, user *models.User) error
	Update(ctx context.Context, user *models.User) error
	Delete(ctx context.Context, id uint) error
	Count(ctx context.Context) (int64, error)
	CountByDeleted(ctx context.Context, deleted bool) (int64, error)
}

type userRepository struct {
	db *gorm.DB
}

// NewUserRepository returns a new UserRepository implementation.
func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{db: db}
}

func (r *userRepository) GetByID(ctx context.Context, id uint) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).First(&user, id).Error; err != nil {
		return nil, wrap("get user", err)
	}
	return &user, nil
}

func (r *userRepository) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).Where("username = ?", username).First(&user).Error; err != nil {
		return nil, wrap("get user by username", err)
	}
	return &user, nil
}

func (r *userRepository) GetByIDs(ctx context.Context, ids []uint) (map[uint]*models.User, error) {
	out := make(map[uint]*models.User, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	var users []models.User
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&users).Error; err != nil {
		return nil, wrap("list users", err)
	}
	for i := range users {
		out[users[i].ID] = &users[i]
	}
	return out, nil
}

func (r *userRepository) ExistsByUsername(ctx context.Context, username string) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.User{}).Where("username = ?", username).Count(&count).Error; err != nil {
		return false, wrap("check username", err)
	}
	return count > 0, nil
}

func (r *userRepository) Create(ctx context.Context, user *models.User) error {
	return wrap("create user", r.db.WithContext(ctx).Create(user).Error)
}

func (r *userRepository) Update(ctx context.Context, user *models.User) error {
	return wrap("update user", r.db.WithContext(ctx).Save(user).Error)
}

func (r *userRepository) Delete(ctx context.Context, id uint) error {
	return wrap("delete user", r.db.WithContext(ctx).Delete(&models.User{}, id).Error)
}

func (r *userRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.User{}).Count(&count).Error
	return count, wrap("count users", err)
}

func (r *userRepository) CountByDeleted(ctx context.Context, deleted bool) (int64, error) {
	query := "deleted_at IS NULL"
	if deleted {
		query = "deleted_at IS NOT NULL"
	}
	var count int64
	err := r.db.WithContext(ctx).Model(&models.User{}).Where(query).Count(&count).Error
	return count, wrap("count users", err)
}
