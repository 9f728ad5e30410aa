package domain

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
)

type ListRequest struct {
	Name         string `form:"name"`
	DocumentType string `form:"document_type"`
	IsDefault    *bool  `form:"is_default"`
}

type CreateRequest struct {
	Name            string  `json:"name"`
	DocumentType    string  `json:"document_type"`
	RenderEngine    string  `json:"render_engine"`
	PaperSize       string  `json:"paper_size"`
	Orientation     string  `json:"orientation"`
	CustomWidthMM   float64 `json:"custom_width_mm"`
	CustomHeightMM  float64 `json:"custom_height_mm"`
	PrintBackground *bool   `json:"print_background"`
	IsDefault       bool    `json:"is_default"`

	Elements []Element `json:"elements"`

	ReportHeaderElements []Element `json:"report_header_elements"`
	PageHeaderElements   []Element `json:"page_header_elements"`
	DetailElements       []Element `json:"detail_elements"`
	PageFooterElements   []Element `json:"page_footer_elements"`
	ReportFooterElements []Element `json:"report_footer_elements"`
}

type UpdateRequest struct {
	ID              string  `json:"id"`
	Name            *string `json:"name"`
	RenderEngine    *string `json:"render_engine"`
	PaperSize       *string `json:"paper_size"`
	Orientation     *string `json:"orientation"`
	CustomWidthMM   *float64 `json:"custom_width_mm"`
	CustomHeightMM  *float64 `json:"custom_height_mm"`
	PrintBackground *bool   `json:"print_background"`

	Elements *[]Element `json:"elements"`

	ReportHeaderElements *[]Element `json:"report_header_elements"`
	PageHeaderElements   *[]Element `json:"page_header_elements"`
	DetailElements       *[]Element `json:"detail_elements"`
	PageFooterElements   *[]Element `json:"page_footer_elements"`
	ReportFooterElements *[]Element `json:"report_footer_elements"`
}

type Response struct {
	ID              string    `json:"id"`
	Name            string    `json:"name"`
	DocumentType    string    `json:"document_type"`
	RenderEngine    string    `json:"render_engine"`
	PaperSize       string    `json:"paper_size"`
	Orientation     string    `json:"orientation"`
	CustomWidthMM   float64   `json:"custom_width_mm,omitempty"`
	CustomHeightMM  float64   `json:"custom_height_mm,omitempty"`
	PrintBackground bool      `json:"print_background"`
	IsDefault       bool      `json:"is_default"`
	Banded          bool      `json:"banded"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

type Service interface {
	Create(ctx context.Context, req CreateRequest) (*Response, error)
	List(ctx context.Context, req ListRequest) ([]Response, error)
	GetByID(ctx context.Context, id string) (*Response, error)
	Update(ctx context.Context, req UpdateRequest) (*Response, error)
	SetDefault(ctx context.Context, id string) (*Response, error)

	// GetModel returns the stored template for the render pipeline.
	GetModel(ctx context.Context, id string) (*Template, error)
}

func ParseID(raw string) (snowflake.ID, error) {
	return snowflake.ParseString(strings.TrimSpace(raw))
}

var (
	ErrInvalidID           = errors.New("invalid_id")
	ErrInvalidName         = errors.New("invalid_name")
	ErrInvalidDocumentType = errors.New("invalid_document_type")
	ErrInvalidRenderEngine = errors.New("invalid_render_engine")
	ErrInvalidPaperSize    = errors.New("invalid_paper_size")
	ErrInvalidOrientation  = errors.New("invalid_orientation")
	ErrInvalidElements     = errors.New("invalid_elements")
	ErrInvalidColumnWidths = errors.New("invalid_column_widths")
	ErrNotFound            = errors.New("template_not_found")
)
