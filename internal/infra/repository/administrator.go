package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/opencivic/civicpulse/internal/domain"
	"github.com/opencivic/civicpulse/internal/infra/database/models"
)

type AdministratorRepository struct {
	db *gorm.DB
}

func NewAdministratorRepository(db *gorm.DB) *AdministratorRepository {
	return &AdministratorRepository{db: db}
}

func (r *AdministratorRepository) GetByID(ctx context.Context, id string) (domain.Administrator, error) {
	var model models.Administrator
	err := r.db.WithContext(ctx).Take(&model, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return domain.Administrator{}, domain.NotFoundError{Resource: "administrator"}
	}
	if err != nil {
		return domain.Administrator{}, domain.StoreError{Op: "administrator lookup", Err: err}
	}
	return adminToDomain(model), nil
}

func (r *AdministratorRepository) GetByUsername(ctx context.Context, username string) (domain.Administrator, error) {
	var model models.Administrator
	err := r.db.WithContext(ctx).Take(&model, "username = ?", username).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return domain.Administrator{}, domain.NotFoundError{Resource: "administrator"}
	}
	if err != nil {
		return domain.Administrator{}, domain.StoreError{Op: "administrator lookup", Err: err}
	}
	return adminToDomain(model), nil
}

// Upsert is used at startup to seed the bootstrap administrator.
func (r *AdministratorRepository) Upsert(ctx context.Context, admin domain.Administrator) error {
	model := models.Administrator{
		ID:           admin.ID,
		Username:     admin.Username,
		DisplayName:  admin.DisplayName,
		PasswordHash: admin.PasswordHash,
		Role:         admin.Role,
		CreatedAt:    admin.CreatedAt,
	}
	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns([]string{"username", "display_name", "password_hash", "role"}),
	}).Create(&model).Error
	if err != nil {
		return domain.StoreError{Op: "administrator upsert", Err: err}
	}
	return nil
}

func adminToDomain(model models.Administrator) domain.Administrator {
	return domain.Administrator{
		ID:           model.ID,
		Username:     model.Username,
		DisplayName:  model.DisplayName,
		PasswordHash: model.PasswordHash,
		Role:         model.Role,
		CreatedAt:    model.CreatedAt,
	}
}
