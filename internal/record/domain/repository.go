package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type Repository interface {
	FindInvoice(ctx context.Context, db *gorm.DB, id snowflake.ID) (*Invoice, error)
	FindCustomer(ctx context.Context, db *gorm.DB, id snowflake.ID) (*Customer, error)
	FindTicket(ctx context.Context, db *gorm.DB, id snowflake.ID) (*RepairTicket, error)
	FindLatestApprovedQuote(ctx context.Context, db *gorm.DB, ticketID snowflake.ID) (*Quote, error)
}
