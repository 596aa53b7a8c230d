package postgres

import (
	"context"

	"gorm.io/gorm"

	"github.com/docvault/docvault/internal/models"
)

type UserRepository interface {
	Create(ctx context.Context, u *models.User) error
	ByUsername(ctx context.Context, username string) (*models.User, error)
	ByID(ctx context.Context, id uint) (*models.User, error)
	ListByRole(ctx context.Context, role models.Role, skip, limit int) ([]models.User, error)
}

type userRepo struct {
	db *gorm.DB
}

func NewUserRepo(db *gorm.DB) UserRepository {
	return &userRepo{db: db}
}

func (r *userRepo) Create(ctx context.Context, u *models.User) error {
	return r.db.WithContext(ctx).Create(u).Error
}

func (r *userRepo) ByUsername(ctx context.Context, username string) (*models.User, error) {
	var row models.User
	err := r.db.WithContext(ctx).
		Where("username = ?", username).
		Take(&row).Error
	if err != nil {
		return nil, err
	}
	return &row, nil
}

func (r *userRepo) ByID(ctx context.Context, id uint) (*models.User, error) {
	var row models.User
	err := r.db.WithContext(ctx).
		Where("id = ?", id).
		Take(&row).Error
	if err != nil {
		return nil, err
	}
	return &row, nil
}

func (r *userRepo) ListByRole(ctx context.Context, role models.Role, skip, limit int) ([]models.User, error) {
	var rows []models.User
	err := r.db.WithContext(ctx).
		Where("role = ?", role).
		Order("username ASC").
		Offset(skip).
		Limit(limit).
		Find(&rows).Error
	return rows, err
}
