package domain

import (
	"context"
	"errors"
	"strings"

	"github.com/bwmarrin/snowflake"
)

// Service assembles render-ready record documents. Invoices are direct
// lookups with related-entity expansion; repair jobs merge the latest
// approved quote's line items onto the ticket, because a job's billable
// detail lives in its most recent quote rather than on the ticket.
type Service interface {
	GetInvoice(ctx context.Context, id string) (map[string]any, error)
	GetRepairJob(ctx context.Context, id string) (map[string]any, error)
}

func ParseID(raw string) (snowflake.ID, error) {
	return snowflake.ParseString(strings.TrimSpace(raw))
}

var (
	ErrInvalidID      = errors.New("invalid_id")
	ErrRecordNotFound = errors.New("record_not_found")
)
