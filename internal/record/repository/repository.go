package repository

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
	"github.com/fixwell/docforge/internal/record/domain"
	"gorm.io/gorm"
)

type recordRepository struct{}

// Provide constructs the gorm-backed record repository.
func Provide() domain.Repository {
	return &recordRepository{}
}

func (r *recordRepository) FindInvoice(ctx context.Context, db *gorm.DB, id snowflake.ID) (*domain.Invoice, error) {
	var invoice domain.Invoice
	if err := db.WithContext(ctx).Where("id = ?", id).First(&invoice).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &invoice, nil
}

func (r *recordRepository) FindCustomer(ctx context.Context, db *gorm.DB, id snowflake.ID) (*domain.Customer, error) {
	var customer domain.Customer
	if err := db.WithContext(ctx).Where("id = ?", id).First(&customer).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &customer, nil
}

func (r *recordRepository) FindTicket(ctx context.Context, db *gorm.DB, id snowflake.ID) (*domain.RepairTicket, error) {
	var ticket domain.RepairTicket
	if err := db.WithContext(ctx).Where("id = ?", id).First(&ticket).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &ticket, nil
}

func (r *recordRepository) FindLatestApprovedQuote(ctx context.Context, db *gorm.DB, ticketID snowflake.ID) (*domain.Quote, error) {
	var quote domain.Quote
	err := db.WithContext(ctx).
		Where("ticket_id = ? AND status = ?", ticketID, domain.QuoteStatusApproved).
		Order("approved_at DESC").
		First(&quote).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &quote, nil
}
