package domain

import (
	"context"
	"errors"

	"github.com/fixwell/docforge/internal/render/transform"
)

// Request identifies one document to produce: a stored template, a
// stored record of the template's document type, and an audience style.
type Request struct {
	TemplateID string
	RecordID   string
	Style      transform.Style
}

// Result is a finished document.
type Result struct {
	Filename    string
	ContentType string
	Content     []byte
}

type Service interface {
	// Render produces the PDF for the request.
	Render(ctx context.Context, req Request) (*Result, error)

	// View returns the transformed record without rendering it.
	View(ctx context.Context, req Request) (map[string]any, error)
}

var (
	ErrTemplateNotFound = errors.New("template_not_found")
	ErrRecordNotFound   = errors.New("record_not_found")
	ErrRenderFailure    = errors.New("render_failure")
)
