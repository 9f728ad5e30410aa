package domain

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type ListFilter struct {
	TemplateID snowflake.ID
	RecordID   snowflake.ID
	Style      string
	StartAt    *time.Time
	EndAt      *time.Time
	Limit      int
}

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, entry *RenderLog) error
	List(ctx context.Context, db *gorm.DB, filter ListFilter) ([]*RenderLog, error)
}
