package service

import (
	"context"
	"encoding/json"

	"github.com/fixwell/docforge/internal/record/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Service struct {
	db  *gorm.DB
	log *zap.Logger

	repo domain.Repository
}

type ServiceParam struct {
	fx.In

	DB   *gorm.DB
	Log  *zap.Logger
	Repo domain.Repository
}

func NewService(p ServiceParam) domain.Service {
	return &Service{
		db:  p.DB,
		log: p.Log.Named("record.service"),

		repo: p.Repo,
	}
}

// GetInvoice returns the invoice document with its customer expanded
// under "customer".
func (s *Service) GetInvoice(ctx context.Context, id string) (map[string]any, error) {
	parsed, err := domain.ParseID(id)
	if err != nil {
		return nil, domain.ErrInvalidID
	}
	invoice, err := s.repo.FindInvoice(ctx, s.db, parsed)
	if err != nil {
		return nil, err
	}
	if invoice == nil {
		return nil, domain.ErrRecordNotFound
	}

	doc := map[string]any(invoice.Data)
	if doc == nil {
		doc = map[string]any{}
	}
	doc["invoiceId"] = invoice.ID.String()
	if doc["number"] == nil {
		doc["number"] = invoice.Number
	}

	if invoice.CustomerID != nil {
		customer, err := s.repo.FindCustomer(ctx, s.db, *invoice.CustomerID)
		if err != nil {
			return nil, err
		}
		if customer != nil {
			doc["customer"] = map[string]any(customer.Data)
		}
	}
	return doc, nil
}

// GetRepairJob assembles the renderable job document. The billable job
// sheet comes from the latest approved quote when one exists; the
// ticket's own sheet is only a fallback.
func (s *Service) GetRepairJob(ctx context.Context, id string) (map[string]any, error) {
	parsed, err := domain.ParseID(id)
	if err != nil {
		return nil, domain.ErrInvalidID
	}
	ticket, err := s.repo.FindTicket(ctx, s.db, parsed)
	if err != nil {
		return nil, err
	}
	if ticket == nil {
		return nil, domain.ErrRecordNotFound
	}

	doc := map[string]any(ticket.Data)
	if doc == nil {
		doc = map[string]any{}
	}
	doc["jobId"] = ticket.ID.String()
	if doc["ticketNumber"] == nil {
		doc["ticketNumber"] = ticket.TicketNumber
	}

	quote, err := s.repo.FindLatestApprovedQuote(ctx, s.db, parsed)
	if err != nil {
		return nil, err
	}
	if quote != nil && len(quote.LineItems) > 0 {
		var lines []any
		if err := json.Unmarshal(quote.LineItems, &lines); err != nil {
			s.log.Warn("discarding malformed quote line items",
				zap.String("quote_id", quote.ID.String()), zap.Error(err))
		} else {
			doc["jobSheet"] = lines
			doc["quoteId"] = quote.ID.String()
		}
	}
	return doc, nil
}
