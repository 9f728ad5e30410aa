package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/datatypes"
)

// Records are stored as JSON documents: the render pipeline treats them
// as opaque nested objects, and the back office owns their schemas.

type Invoice struct {
	ID         snowflake.ID      `gorm:"primaryKey"`
	Number     string            `gorm:"type:text;not null;uniqueIndex"`
	CustomerID *snowflake.ID     `gorm:"index"`
	Data       datatypes.JSONMap `gorm:"type:jsonb;not null;default:'{}'"`
	CreatedAt  time.Time         `gorm:"not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt  time.Time         `gorm:"not null;default:CURRENT_TIMESTAMP"`
}

func (Invoice) TableName() string { return "invoices" }

type Customer struct {
	ID        snowflake.ID      `gorm:"primaryKey"`
	Data      datatypes.JSONMap `gorm:"type:jsonb;not null;default:'{}'"`
	CreatedAt time.Time         `gorm:"not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt time.Time         `gorm:"not null;default:CURRENT_TIMESTAMP"`
}

func (Customer) TableName() string { return "customers" }

type RepairTicket struct {
	ID           snowflake.ID      `gorm:"primaryKey"`
	TicketNumber string            `gorm:"type:text;not null;uniqueIndex"`
	Data         datatypes.JSONMap `gorm:"type:jsonb;not null;default:'{}'"`
	CreatedAt    time.Time         `gorm:"not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt    time.Time         `gorm:"not null;default:CURRENT_TIMESTAMP"`
}

func (RepairTicket) TableName() string { return "repair_tickets" }

// QuoteStatus tracks the quote lifecycle. Only approved quotes feed the
// billable job sheet.
type QuoteStatus string

const (
	QuoteStatusDraft    QuoteStatus = "draft"
	QuoteStatusPending  QuoteStatus = "pending"
	QuoteStatusApproved QuoteStatus = "approved"
	QuoteStatusRejected QuoteStatus = "rejected"
)

type Quote struct {
	ID         snowflake.ID   `gorm:"primaryKey"`
	TicketID   snowflake.ID   `gorm:"not null;index"`
	Status     QuoteStatus    `gorm:"type:text;not null;default:'draft'"`
	LineItems  datatypes.JSON `gorm:"type:jsonb"`
	ApprovedAt *time.Time     `gorm:""`
	CreatedAt  time.Time      `gorm:"not null;default:CURRENT_TIMESTAMP"`
}

func (Quote) TableName() string { return "quotes" }
