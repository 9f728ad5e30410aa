package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, tmpl *Template) error
	Update(ctx context.Context, db *gorm.DB, tmpl *Template) error
	FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*Template, error)
	FindDefault(ctx context.Context, db *gorm.DB, documentType DocumentType) (*Template, error)
	List(ctx context.Context, db *gorm.DB, filter ListRequest) ([]Template, error)
	ClearDefault(ctx context.Context, db *gorm.DB, documentType DocumentType) error
}
