package domain

import (
	"encoding/json"
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/datatypes"
)

// DocumentType identifies which record kind a template renders.
type DocumentType string

const (
	DocumentTypeInvoice   DocumentType = "invoice"
	DocumentTypeRepairJob DocumentType = "repair_job"
)

func (d DocumentType) Valid() bool {
	return d == DocumentTypeInvoice || d == DocumentTypeRepairJob
}

// RenderEngine selects the rendering backend.
type RenderEngine string

const (
	RenderEngineVector RenderEngine = "vector"
	RenderEngineRaster RenderEngine = "raster"
)

func (e RenderEngine) Valid() bool {
	return e == RenderEngineVector || e == RenderEngineRaster
}

// PaperSize names a physical paper format. Custom sizes carry explicit
// millimeter dimensions on the template.
type PaperSize string

const (
	PaperA4     PaperSize = "A4"
	PaperA5     PaperSize = "A5"
	PaperLetter PaperSize = "Letter"
	PaperLegal  PaperSize = "Legal"
	PaperCustom PaperSize = "custom"
)

func (p PaperSize) Valid() bool {
	switch p {
	case PaperA4, PaperA5, PaperLetter, PaperLegal, PaperCustom:
		return true
	default:
		return false
	}
}

type Orientation string

const (
	OrientationPortrait  Orientation = "portrait"
	OrientationLandscape Orientation = "landscape"
)

func (o Orientation) Valid() bool {
	return o == OrientationPortrait || o == OrientationLandscape
}

// Template is the declarative print layout: paper geometry plus either a
// flat element list or five banded element lists.
type Template struct {
	ID              snowflake.ID `gorm:"primaryKey"`
	Name            string       `gorm:"type:text;not null"`
	DocumentType    DocumentType `gorm:"type:text;not null;index"`
	RenderEngine    RenderEngine `gorm:"type:text;not null"`
	PaperSize       PaperSize    `gorm:"type:text;not null;default:'A4'"`
	Orientation     Orientation  `gorm:"type:text;not null;default:'portrait'"`
	CustomWidthMM   float64      `gorm:"not null;default:0"`
	CustomHeightMM  float64      `gorm:"not null;default:0"`
	PrintBackground bool         `gorm:"not null;default:true"`
	IsDefault       bool         `gorm:"not null;default:false"`

	Elements datatypes.JSON `gorm:"type:jsonb"`

	ReportHeaderElements datatypes.JSON `gorm:"type:jsonb"`
	PageHeaderElements   datatypes.JSON `gorm:"type:jsonb"`
	DetailElements       datatypes.JSON `gorm:"type:jsonb"`
	PageFooterElements   datatypes.JSON `gorm:"type:jsonb"`
	ReportFooterElements datatypes.JSON `gorm:"type:jsonb"`

	CreatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP"`
}

// TableName sets the database table name.
func (Template) TableName() string { return "document_templates" }

// Banded reports whether the template uses the five-band layout form.
func (t *Template) Banded() bool {
	return len(t.DetailElements) > 0 || len(t.PageHeaderElements) > 0 ||
		len(t.ReportHeaderElements) > 0
}

// paper dimensions in millimeters, portrait orientation.
var paperSizesMM = map[PaperSize][2]float64{
	PaperA4:     {210, 297},
	PaperA5:     {148, 210},
	PaperLetter: {215.9, 279.4},
	PaperLegal:  {215.9, 355.6},
}

// PaperDimensionsMM returns the physical page size honoring orientation
// and custom dimensions.
func (t *Template) PaperDimensionsMM() (width, height float64) {
	if t.PaperSize == PaperCustom && t.CustomWidthMM > 0 && t.CustomHeightMM > 0 {
		width, height = t.CustomWidthMM, t.CustomHeightMM
	} else if dims, ok := paperSizesMM[t.PaperSize]; ok {
		width, height = dims[0], dims[1]
	} else {
		width, height = paperSizesMM[PaperA4][0], paperSizesMM[PaperA4][1]
	}
	if t.Orientation == OrientationLandscape {
		width, height = height, width
	}
	return width, height
}

// ElementType is the kind of one positioned visual unit.
type ElementType string

const (
	ElementText      ElementType = "text"
	ElementLine      ElementType = "line"
	ElementImage     ElementType = "image"
	ElementTable     ElementType = "table"
	ElementRectangle ElementType = "rectangle"
)

// Element is one positioned visual unit. Positions and dimensions are
// millimeters from the page origin (band origin inside a band).
type Element struct {
	Type       ElementType   `json:"type"`
	Position   Point         `json:"position"`
	Dimensions Size          `json:"dimensions"`
	Content    Content       `json:"content"`
	Style      Style         `json:"style"`
	Table      *TableContent `json:"tableContent,omitempty"`
}

type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

type Size struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Content binds an element to data: a resolvable path, a substitution
// template, or literal text. The first non-empty field wins in that order.
type Content struct {
	DataKey    string `json:"dataKey,omitempty"`
	Template   string `json:"template,omitempty"`
	StaticText string `json:"staticText,omitempty"`
}

type Style struct {
	FontFamily  string  `json:"fontFamily,omitempty"`
	FontSize    float64 `json:"fontSize,omitempty"`
	FontStyle   string  `json:"fontStyle,omitempty"` // "", "B", "I", "BI"
	Color       *RGB    `json:"color,omitempty"`
	Align       string  `json:"align,omitempty"` // left|center|right
	BorderWidth float64 `json:"borderWidth,omitempty"`
	BorderColor *RGB    `json:"borderColor,omitempty"`
}

type RGB struct {
	R int `json:"r"`
	G int `json:"g"`
	B int `json:"b"`
}

// TableContent describes a table element: the path of the row
// collection and its columns. Column widths are interpreted per
// renderer: percentages of the element width in the banded layout
// engine, absolute millimeters in the vector renderer.
type TableContent struct {
	DataKey string        `json:"dataKey"`
	Columns []TableColumn `json:"columns"`
}

type TableColumn struct {
	Header  string  `json:"header"`
	DataKey string  `json:"dataKey"`
	Width   float64 `json:"width"`
	Align   string  `json:"align,omitempty"`
	Format  string  `json:"format,omitempty"` // currency|date
}

// DecodeElements parses a JSON element list column. A nil column decodes
// to an empty slice.
func DecodeElements(raw datatypes.JSON) ([]Element, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	var elements []Element
	if err := json.Unmarshal(raw, &elements); err != nil {
		return nil, err
	}
	return elements, nil
}

// Bands groups the five banded element lists in render order.
type Bands struct {
	ReportHeader []Element
	PageHeader   []Element
	Detail       []Element
	PageFooter   []Element
	ReportFooter []Element
}

// DecodeBands parses all five band columns.
func (t *Template) DecodeBands() (*Bands, error) {
	bands := &Bands{}
	for _, pair := range []struct {
		raw  datatypes.JSON
		dest *[]Element
	}{
		{t.ReportHeaderElements, &bands.ReportHeader},
		{t.PageHeaderElements, &bands.PageHeader},
		{t.DetailElements, &bands.Detail},
		{t.PageFooterElements, &bands.PageFooter},
		{t.ReportFooterElements, &bands.ReportFooter},
	} {
		decoded, err := DecodeElements(pair.raw)
		if err != nil {
			return nil, err
		}
		*pair.dest = decoded
	}
	return bands, nil
}

// DecodeFlatElements parses the flat element list.
func (t *Template) DecodeFlatElements() ([]Element, error) {
	return DecodeElements(t.Elements)
}
