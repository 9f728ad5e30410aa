package repository

import (
	"context"
	"errors"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/fixwell/docforge/internal/template/domain"
	"gorm.io/gorm"
)

type templateRepository struct{}

// Provide constructs the gorm-backed template repository.
func Provide() domain.Repository {
	return &templateRepository{}
}

func (r *templateRepository) Insert(ctx context.Context, db *gorm.DB, tmpl *domain.Template) error {
	return db.WithContext(ctx).Create(tmpl).Error
}

func (r *templateRepository) Update(ctx context.Context, db *gorm.DB, tmpl *domain.Template) error {
	return db.WithContext(ctx).Save(tmpl).Error
}

func (r *templateRepository) FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*domain.Template, error) {
	var tmpl domain.Template
	err := db.WithContext(ctx).Where("id = ?", id).First(&tmpl).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &tmpl, nil
}

func (r *templateRepository) FindDefault(ctx context.Context, db *gorm.DB, documentType domain.DocumentType) (*domain.Template, error) {
	var tmpl domain.Template
	err := db.WithContext(ctx).
		Where("document_type = ? AND is_default = ?", documentType, true).
		First(&tmpl).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &tmpl, nil
}

func (r *templateRepository) List(ctx context.Context, db *gorm.DB, filter domain.ListRequest) ([]domain.Template, error) {
	query := db.WithContext(ctx).Model(&domain.Template{})
	if name := strings.TrimSpace(filter.Name); name != "" {
		query = query.Where("name LIKE ?", "%"+name+"%")
	}
	if docType := strings.TrimSpace(filter.DocumentType); docType != "" {
		query = query.Where("document_type = ?", docType)
	}
	if filter.IsDefault != nil {
		query = query.Where("is_default = ?", *filter.IsDefault)
	}

	var templates []domain.Template
	if err := query.Order("created_at DESC").Find(&templates).Error; err != nil {
		return nil, err
	}
	return templates, nil
}

func (r *templateRepository) ClearDefault(ctx context.Context, db *gorm.DB, documentType domain.DocumentType) error {
	return db.WithContext(ctx).
		Model(&domain.Template{}).
		Where("document_type = ?", documentType).
		Update("is_default", false).Error
}
