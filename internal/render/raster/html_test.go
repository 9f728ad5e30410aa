package raster

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/fixwell/docforge/internal/render/pathres"
	templatedomain "github.com/fixwell/docforge/internal/template/domain"
	"gorm.io/datatypes"
)

func newShell() *htmlShell {
	resolver := pathres.NewResolver()
	return newHTMLShell(resolver, pathres.NewExpander(resolver))
}

func encode(t *testing.T, v any) datatypes.JSON {
	t.Helper()
	raw, err := json.Marshal(v)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	return raw
}

func TestBuildFlatDocument(t *testing.T) {
	tpl := &templatedomain.Template{
		Name:         "invoice",
		DocumentType: templatedomain.DocumentTypeInvoice,
		RenderEngine: templatedomain.RenderEngineRaster,
		PaperSize:    templatedomain.PaperA4,
		Orientation:  templatedomain.OrientationPortrait,
		Elements: encode(t, []templatedomain.Element{
			{
				Type:       templatedomain.ElementText,
				Position:   templatedomain.Point{X: 10, Y: 10},
				Dimensions: templatedomain.Size{Width: 100, Height: 10},
				Content:    templatedomain.Content{Template: "Invoice {{ number }}"},
				Style:      templatedomain.Style{FontSize: 14, FontStyle: "B", Align: "right"},
			},
			{
				Type:       templatedomain.ElementRectangle,
				Position:   templatedomain.Point{X: 10, Y: 30},
				Dimensions: templatedomain.Size{Width: 190, Height: 50},
			},
		}),
	}

	html, err := newShell().Build(tpl, map[string]any{"number": "INV-007"})
	if err != nil {
		t.Fatalf("build: %v", err)
	}

	for _, want := range []string{
		"size: 210mm 297mm",
		"Invoice INV-007",
		"font-weight: 700",
		"text-align: right",
		"border:",
	} {
		if !strings.Contains(html, want) {
			t.Fatalf("html missing %q:\n%s", want, html)
		}
	}
}

func TestBuildBandedDocumentRepeatsDetail(t *testing.T) {
	tpl := &templatedomain.Template{
		Name:         "job-sheet",
		DocumentType: templatedomain.DocumentTypeRepairJob,
		RenderEngine: templatedomain.RenderEngineRaster,
		PaperSize:    templatedomain.PaperA4,
		Orientation:  templatedomain.OrientationPortrait,
		ReportHeaderElements: encode(t, []templatedomain.Element{
			{
				Type:       templatedomain.ElementText,
				Position:   templatedomain.Point{X: 10, Y: 5},
				Dimensions: templatedomain.Size{Width: 100, Height: 8},
				Content:    templatedomain.Content{Template: "Job {{ ticketNumber }}"},
			},
		}),
		DetailElements: encode(t, []templatedomain.Element{
			{
				Type:       templatedomain.ElementText,
				Position:   templatedomain.Point{X: 10, Y: 0},
				Dimensions: templatedomain.Size{Width: 120, Height: 6},
				Content:    templatedomain.Content{DataKey: "item.description"},
			},
		}),
	}

	data := map[string]any{
		"ticketNumber": "RT-9",
		"jobSheet": []any{
			map[string]any{"description": "Replace screen"},
			map[string]any{"description": "Clean charging port"},
		},
	}

	html, err := newShell().Build(tpl, data)
	if err != nil {
		t.Fatalf("build: %v", err)
	}

	if !strings.Contains(html, "Job RT-9") {
		t.Fatalf("report header not rendered:\n%s", html)
	}
	if !strings.Contains(html, "Replace screen") || !strings.Contains(html, "Clean charging port") {
		t.Fatalf("detail entries not repeated:\n%s", html)
	}
	if strings.Index(html, "Replace screen") > strings.Index(html, "Clean charging port") {
		t.Fatalf("detail entries out of order")
	}
}

func TestBuildTableElement(t *testing.T) {
	tpl := &templatedomain.Template{
		Name:         "invoice",
		DocumentType: templatedomain.DocumentTypeInvoice,
		RenderEngine: templatedomain.RenderEngineRaster,
		PaperSize:    templatedomain.PaperA4,
		Orientation:  templatedomain.OrientationPortrait,
		Elements: encode(t, []templatedomain.Element{
			{
				Type:       templatedomain.ElementTable,
				Position:   templatedomain.Point{X: 10, Y: 40},
				Dimensions: templatedomain.Size{Width: 190, Height: 80},
				Table: &templatedomain.TableContent{
					DataKey: "items",
					Columns: []templatedomain.TableColumn{
						{Header: "Item", DataKey: "description", Width: 60},
						{Header: "Price", DataKey: "finalPrice", Width: 40, Align: "right", Format: "currency"},
					},
				},
			},
		}),
	}

	data := map[string]any{
		"items": []any{
			map[string]any{"description": "Battery", "finalPrice": 1234.5},
		},
	}

	html, err := newShell().Build(tpl, data)
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	for _, want := range []string{"<th", "Battery", "1,234.50", "text-align: right"} {
		if !strings.Contains(html, want) {
			t.Fatalf("html missing %q:\n%s", want, html)
		}
	}
}

func TestSanitizeFontRejectsInjection(t *testing.T) {
	if got := sanitizeFont(`"><script>`); got != "Helvetica" {
		t.Fatalf("sanitizeFont = %q, want fallback", got)
	}
	if got := sanitizeFont("Space Grotesk"); got != "Space Grotesk" {
		t.Fatalf("sanitizeFont = %q, want passthrough", got)
	}
}
