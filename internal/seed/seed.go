// Package seed creates the default templates and a small demo data set
// so a fresh install renders something immediately. Every function is
// idempotent and keyed on natural identifiers.
package seed

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	recorddomain "github.com/fixwell/docforge/internal/record/domain"
	templatedomain "github.com/fixwell/docforge/internal/template/domain"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const (
	defaultInvoiceTemplateName   = "Standard Invoice"
	defaultRasterTemplateName    = "Invoice (Browser Print)"
	defaultRepairJobTemplateName = "Repair Job Sheet"

	demoInvoiceNumber = "INV-1001"
	demoTicketNumber  = "RT-1001"
)

// EnsureDefaults seeds templates and demo records inside one
// transaction.
func EnsureDefaults(db *gorm.DB) error {
	if db == nil {
		return errors.New("seed database handle is required")
	}

	node, err := snowflake.NewNode(1)
	if err != nil {
		return err
	}

	ctx := context.Background()
	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := ensureTemplates(ctx, tx, node); err != nil {
			return err
		}
		return ensureDemoRecords(ctx, tx, node)
	})
}

func ensureTemplates(ctx context.Context, tx *gorm.DB, node *snowflake.Node) error {
	templates := []*templatedomain.Template{
		invoiceVectorTemplate(node),
		invoiceRasterTemplate(node),
		repairJobTemplate(node),
	}
	for _, tpl := range templates {
		var existing templatedomain.Template
		err := tx.WithContext(ctx).Where("name = ?", tpl.Name).First(&existing).Error
		if err == nil {
			continue
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}
		if err := tx.WithContext(ctx).Create(tpl).Error; err != nil {
			return err
		}
	}
	return nil
}

func ensureDemoRecords(ctx context.Context, tx *gorm.DB, node *snowflake.Node) error {
	var invoice recorddomain.Invoice
	err := tx.WithContext(ctx).Where("number = ?", demoInvoiceNumber).First(&invoice).Error
	if err == nil {
		return nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}

	customer := &recorddomain.Customer{
		ID: node.Generate(),
		Data: datatypes.JSONMap{
			"name":  "Jane Cooper",
			"email": "jane.cooper@example.com",
			"phone": "+1-202-555-0147",
		},
	}
	if err := tx.WithContext(ctx).Create(customer).Error; err != nil {
		return err
	}

	customerID := customer.ID
	invoice = recorddomain.Invoice{
		ID:         node.Generate(),
		Number:     demoInvoiceNumber,
		CustomerID: &customerID,
		Data: datatypes.JSONMap{
			"number":      demoInvoiceNumber,
			"issuedAt":    time.Now().UTC().Format("2006-01-02"),
			"subTotal":    245.0,
			"totalAmount": 245.0,
			"items": []any{
				map[string]any{
					"description": "Screen Replacement",
					"itemType":    "service",
					"quantity":    1.0,
					"unitPrice":   180.0,
					"finalPrice":  180.0,
					"costPrice":   95.0,
				},
				map[string]any{
					"description": "Tempered Glass Protector",
					"itemType":    "part",
					"quantity":    1.0,
					"unitPrice":   65.0,
					"finalPrice":  65.0,
					"costPrice":   20.0,
				},
			},
		},
	}
	if err := tx.WithContext(ctx).Create(&invoice).Error; err != nil {
		return err
	}

	ticket := &recorddomain.RepairTicket{
		ID:           node.Generate(),
		TicketNumber: demoTicketNumber,
		Data: datatypes.JSONMap{
			"ticketNumber": demoTicketNumber,
			"deviceModel":  "Pixel 8",
			"customer": map[string]any{
				"name":  "Jane Cooper",
				"phone": "+1-202-555-0147",
			},
			"customerSignature":  "signed",
			"qcStatus":           "passed",
			"assignedTechnician": "T. Okafor",
			"photos": map[string]any{
				"before": []any{"photo-1.jpg"},
			},
			"troubleshootFee": map[string]any{"amount": 25.0},
			"jobSheet": []any{
				map[string]any{
					"description": "Diagnostics",
					"itemType":    "service",
					"unitPrice":   0.0,
					"finalPrice":  0.0,
				},
			},
		},
	}
	if err := tx.WithContext(ctx).Create(ticket).Error; err != nil {
		return err
	}

	lines, err := json.Marshal([]any{
		map[string]any{
			"description": "Battery Replacement",
			"itemType":    "service",
			"quantity":    1.0,
			"unitPrice":   120.0,
			"finalPrice":  120.0,
			"costPrice":   45.0,
		},
		map[string]any{
			"description": "OEM Battery",
			"itemType":    "part",
			"quantity":    1.0,
			"costPrice":   40.0,
			"finalPrice":  0.0,
		},
	})
	if err != nil {
		return err
	}
	approvedAt := time.Now().UTC()
	quote := &recorddomain.Quote{
		ID:         node.Generate(),
		TicketID:   ticket.ID,
		Status:     recorddomain.QuoteStatusApproved,
		LineItems:  lines,
		ApprovedAt: &approvedAt,
	}
	return tx.WithContext(ctx).Create(quote).Error
}

func invoiceVectorTemplate(node *snowflake.Node) *templatedomain.Template {
	elements := mustElements([]templatedomain.Element{
		{
			Type:       templatedomain.ElementText,
			Position:   templatedomain.Point{X: 15, Y: 15},
			Dimensions: templatedomain.Size{Width: 120, Height: 10},
			Content:    templatedomain.Content{Template: "Invoice {{ number }}"},
			Style:      templatedomain.Style{FontSize: 16, FontStyle: "B"},
		},
		{
			Type:       templatedomain.ElementText,
			Position:   templatedomain.Point{X: 15, Y: 28},
			Dimensions: templatedomain.Size{Width: 120, Height: 8},
			Content:    templatedomain.Content{DataKey: "customer.name"},
		},
		{
			Type:       templatedomain.ElementLine,
			Position:   templatedomain.Point{X: 15, Y: 40},
			Dimensions: templatedomain.Size{Width: 180, Height: 0},
		},
		{
			Type:     templatedomain.ElementTable,
			Position: templatedomain.Point{X: 15, Y: 48},
			Table: &templatedomain.TableContent{
				DataKey: "items",
				Columns: []templatedomain.TableColumn{
					{Header: "Description", DataKey: "description", Width: 100},
					{Header: "Qty", DataKey: "quantity", Width: 20, Align: "center"},
					{Header: "Amount", DataKey: "finalPrice", Width: 40, Align: "right", Format: "currency"},
				},
			},
		},
		{
			Type:       templatedomain.ElementText,
			Position:   templatedomain.Point{X: 15, Y: 120},
			Dimensions: templatedomain.Size{Width: 160, Height: 8},
			Content:    templatedomain.Content{Template: "Total: {{ formatCurrency totalAmount }}"},
			Style:      templatedomain.Style{FontSize: 12, FontStyle: "B", Align: "right"},
		},
	})
	return &templatedomain.Template{
		ID:              node.Generate(),
		Name:            defaultInvoiceTemplateName,
		DocumentType:    templatedomain.DocumentTypeInvoice,
		RenderEngine:    templatedomain.RenderEngineVector,
		PaperSize:       templatedomain.PaperA4,
		Orientation:     templatedomain.OrientationPortrait,
		PrintBackground: true,
		IsDefault:       true,
		Elements:        elements,
	}
}

func invoiceRasterTemplate(node *snowflake.Node) *templatedomain.Template {
	elements := mustElements([]templatedomain.Element{
		{
			Type:       templatedomain.ElementText,
			Position:   templatedomain.Point{X: 15, Y: 15},
			Dimensions: templatedomain.Size{Width: 120, Height: 10},
			Content:    templatedomain.Content{Template: "Invoice {{ number }}"},
			Style:      templatedomain.Style{FontSize: 16, FontStyle: "B"},
		},
		{
			Type:       templatedomain.ElementTable,
			Position:   templatedomain.Point{X: 15, Y: 45},
			Dimensions: templatedomain.Size{Width: 180, Height: 80},
			Table: &templatedomain.TableContent{
				DataKey: "items",
				Columns: []templatedomain.TableColumn{
					{Header: "Description", DataKey: "description", Width: 60},
					{Header: "Qty", DataKey: "quantity", Width: 15, Align: "center"},
					{Header: "Amount", DataKey: "finalPrice", Width: 25, Align: "right", Format: "currency"},
				},
			},
		},
	})
	return &templatedomain.Template{
		ID:              node.Generate(),
		Name:            defaultRasterTemplateName,
		DocumentType:    templatedomain.DocumentTypeInvoice,
		RenderEngine:    templatedomain.RenderEngineRaster,
		PaperSize:       templatedomain.PaperA4,
		Orientation:     templatedomain.OrientationPortrait,
		PrintBackground: true,
		Elements:        elements,
	}
}

func repairJobTemplate(node *snowflake.Node) *templatedomain.Template {
	return &templatedomain.Template{
		ID:              node.Generate(),
		Name:            defaultRepairJobTemplateName,
		DocumentType:    templatedomain.DocumentTypeRepairJob,
		RenderEngine:    templatedomain.RenderEngineVector,
		PaperSize:       templatedomain.PaperA4,
		Orientation:     templatedomain.OrientationPortrait,
		PrintBackground: true,
		IsDefault:       true,
		ReportHeaderElements: mustElements([]templatedomain.Element{
			{
				Type:       templatedomain.ElementText,
				Position:   templatedomain.Point{X: 15, Y: 10},
				Dimensions: templatedomain.Size{Width: 150, Height: 10},
				Content:    templatedomain.Content{Template: "Repair Job {{ ticketNumber }}"},
				Style:      templatedomain.Style{FontSize: 15, FontStyle: "B"},
			},
			{
				Type:       templatedomain.ElementText,
				Position:   templatedomain.Point{X: 15, Y: 22},
				Dimensions: templatedomain.Size{Width: 150, Height: 7},
				Content:    templatedomain.Content{Template: "{{ customer.name }} / {{ deviceModel }}"},
			},
		}),
		PageHeaderElements: mustElements([]templatedomain.Element{
			{
				Type:       templatedomain.ElementText,
				Position:   templatedomain.Point{X: 15, Y: 2},
				Dimensions: templatedomain.Size{Width: 100, Height: 6},
				Content:    templatedomain.Content{StaticText: "Job Sheet"},
				Style:      templatedomain.Style{FontSize: 9},
			},
		}),
		DetailElements: mustElements([]templatedomain.Element{
			{
				Type:       templatedomain.ElementText,
				Position:   templatedomain.Point{X: 15, Y: 0},
				Dimensions: templatedomain.Size{Width: 130, Height: 7},
				Content:    templatedomain.Content{DataKey: "item.description"},
			},
			{
				Type:       templatedomain.ElementText,
				Position:   templatedomain.Point{X: 155, Y: 0},
				Dimensions: templatedomain.Size{Width: 40, Height: 7},
				Content:    templatedomain.Content{Template: "{{ formatCurrency item.finalPrice }}"},
				Style:      templatedomain.Style{Align: "right"},
			},
		}),
		PageFooterElements: mustElements([]templatedomain.Element{
			{
				Type:       templatedomain.ElementText,
				Position:   templatedomain.Point{X: 15, Y: 8},
				Dimensions: templatedomain.Size{Width: 60, Height: 6},
				Content:    templatedomain.Content{Template: "Page {{ pageNumber }}"},
				Style:      templatedomain.Style{FontSize: 8},
			},
		}),
		ReportFooterElements: mustElements([]templatedomain.Element{
			{
				Type:       templatedomain.ElementText,
				Position:   templatedomain.Point{X: 15, Y: 4},
				Dimensions: templatedomain.Size{Width: 180, Height: 8},
				Content:    templatedomain.Content{Template: "Total due: {{ formatCurrency totalAmount }}"},
				Style:      templatedomain.Style{FontSize: 11, FontStyle: "B"},
			},
		}),
	}
}

func mustElements(elements []templatedomain.Element) datatypes.JSON {
	raw, err := json.Marshal(elements)
	if err != nil {
		panic(err)
	}
	return raw
}
