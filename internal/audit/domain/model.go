package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

// RenderLog captures an immutable record of one completed render.
type RenderLog struct {
	ID         snowflake.ID `gorm:"primaryKey"`
	TemplateID snowflake.ID `gorm:"not null;index"`
	RecordID   snowflake.ID `gorm:"not null;index"`
	Style      string       `gorm:"type:text;not null"`
	Engine     string       `gorm:"type:text;not null"`
	ByteCount  int          `gorm:"not null"`
	DurationMS int64        `gorm:"not null"`
	CreatedAt  time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP"`
}

// TableName sets the database table name.
func (RenderLog) TableName() string { return "render_logs" }
