package repository

import (
	"context"

	"github.com/TrueRandolf/Resale-Hub-graduate-work/internal/models"

	"gorm.io/gorm"
)

// CredentialRepository defines persistence operations for login credentials.
// A credential's ID is always its user's ID.
type CredentialRepository interface {
	GetByID(ctx context.Context, userID uint) (*models.Credential, error)
	GetByUsername(ctx context.Context, username string) (*models.Credential, error)
	ListByRole(ctx context.Context, role models.Role) ([]models.Credential, error)
	Create(ctx context.Context, credential *models.Credential) error
	UpdatePassword(ctx context.Context, userID uint, hash string) error
	UpdateRole(ctx context.Context, userID uint, role models.Role) error
	Delete(ctx context.Context, userID uint) error
}

type credentialRepository struct {
	db *gorm.DB
}

// NewCredentialRepository returns a new CredentialRepository implementation.
func NewCredentialRepository(db *gorm.DB) CredentialRepository {
	return &credentialRepository{db: db}
}

func (r *credentialRepository) GetByID(ctx context.Context, userID uint) (*models.Credential, error) {
	var credential models.Credential
	if err := r.db.WithContext(ctx).First(&credential, userID).Error; err != nil {
		return nil, wrap("get credential", err)
	}
	return &credential, nil
}

func (r *credentialRepository) GetByUsername(ctx context.Context, username string) (*models.Credential, error) {
	var credential models.Credential
	err := r.db.WithContext(ctx).
		Joins("JOIN users ON users.id = credentials.id").
		Where("users.username = ?", username).
		First(&credential).Error
	if err != nil {
		return nil, wrap("get credential by username", err)
	}
	return &credential, nil
}

func (r *credentialRepository) ListByRole(ctx context.Context, role models.Role) ([]models.Credential, error) {
	var credentials []models.Credential
	err := r.db.WithContext(ctx).Where("role = ?", role).Order("id").Find(&credentials).Error
	return credentials, wrap("list credentials", err)
}

func (r *credentialRepository) Create(ctx context.Context, credential *models.Credential) error {
	return wrap("create credential", r.db.WithContext(ctx).Create(credential).Error)
}

func (r *credentialRepository) UpdatePassword(ctx context.Context, userID uint, hash string) error {
	return r.updateColumn(ctx, userID, "password_hash", hash)
}

func (r *credentialRepository) UpdateRole(ctx context.Context, userID uint, role models.Role) error {
	return r.updateColumn(ctx, userID, "role", role)
}

func (r *credentialRepository) updateColumn(ctx context.Context, userID uint, column string, value any) error {
	result := r.db.WithContext(ctx).Model(&models.Credential{}).Where("id = ?", userID).Update(column, value)
	if result.Error != nil {
		return wrap("update credential", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *credentialRepository) Delete(ctx context.Context, userID uint) error {
	return wrap("delete credential", r.db.WithContext(ctx).Delete(&models.Credential{}, userID).Error)
}
