package vector

import (
	"bytes"
	"compress/zlib"
	"encoding/base64"
	"encoding/json"
	"io"
	"testing"

	"github.com/fixwell/docforge/internal/render/pathres"
	templatedomain "github.com/fixwell/docforge/internal/template/domain"
	"go.uber.org/zap"
	"gorm.io/datatypes"
)

func newRenderer(t *testing.T) *Renderer {
	t.Helper()
	resolver := pathres.NewResolver()
	return NewRenderer(resolver, pathres.NewExpander(resolver), zap.NewNop())
}

func flatTemplate(t *testing.T, elements []templatedomain.Element) *templatedomain.Template {
	t.Helper()
	raw, err := json.Marshal(elements)
	if err != nil {
		t.Fatalf("marshal elements: %v", err)
	}
	return &templatedomain.Template{
		Name:         "invoice",
		DocumentType: templatedomain.DocumentTypeInvoice,
		RenderEngine: templatedomain.RenderEngineVector,
		PaperSize:    templatedomain.PaperA4,
		Orientation:  templatedomain.OrientationPortrait,
		Elements:     datatypes.JSON(raw),
	}
}

func TestRenderFlatTemplate(t *testing.T) {
	tpl := flatTemplate(t, []templatedomain.Element{
		{
			Type:       templatedomain.ElementText,
			Position:   templatedomain.Point{X: 10, Y: 10},
			Dimensions: templatedomain.Size{Width: 100, Height: 10},
			Content:    templatedomain.Content{Template: "Invoice {{ number }} for {{ customer.name }}"},
			Style:      templatedomain.Style{FontSize: 12, FontStyle: "B"},
		},
		{
			Type:       templatedomain.ElementLine,
			Position:   templatedomain.Point{X: 10, Y: 25},
			Dimensions: templatedomain.Size{Width: 190, Height: 0},
		},
		{
			Type:       templatedomain.ElementRectangle,
			Position:   templatedomain.Point{X: 10, Y: 30},
			Dimensions: templatedomain.Size{Width: 190, Height: 60},
			Style:      templatedomain.Style{BorderWidth: 0.3},
		},
	})

	data := map[string]any{
		"number":   "INV-042",
		"customer": map[string]any{"name": "Jane"},
	}

	out, err := newRenderer(t).Render(tpl, data)
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if !bytes.HasPrefix(out, []byte("%PDF")) {
		t.Fatalf("output does not start with a pdf signature")
	}
	if len(out) < 500 {
		t.Fatalf("output suspiciously small: %d bytes", len(out))
	}
	if !bytes.Contains(inflateStreams(out), []byte("Jane")) {
		t.Fatalf("rendered text stream does not contain the bound value")
	}
}

// inflateStreams decompresses every FlateDecode content stream so text
// operators can be inspected.
func inflateStreams(pdf []byte) []byte {
	var decoded bytes.Buffer
	rest := pdf
	for {
		start := bytes.Index(rest, []byte("stream"))
		if start < 0 {
			break
		}
		body := rest[start+len("stream"):]
		for len(body) > 0 && (body[0] == '\r' || body[0] == '\n') {
			body = body[1:]
		}
		end := bytes.Index(body, []byte("endstream"))
		if end < 0 {
			break
		}
		if r, err := zlib.NewReader(bytes.NewReader(body[:end])); err == nil {
			raw, _ := io.ReadAll(r)
			decoded.Write(raw)
			r.Close()
		}
		rest = body[end+len("endstream"):]
	}
	return decoded.Bytes()
}

func TestRenderTableAbsoluteWidths(t *testing.T) {
	tpl := flatTemplate(t, []templatedomain.Element{
		{
			Type:     templatedomain.ElementTable,
			Position: templatedomain.Point{X: 10, Y: 40},
			Table: &templatedomain.TableContent{
				DataKey: "items",
				Columns: []templatedomain.TableColumn{
					{Header: "Item", DataKey: "description", Width: 90},
					{Header: "Qty", DataKey: "quantity", Width: 20, Align: "center"},
					{Header: "Price", DataKey: "finalPrice", Width: 40, Align: "right", Format: "currency"},
				},
			},
		},
	})

	data := map[string]any{
		"items": []any{
			map[string]any{"description": "Screen", "quantity": 1.0, "finalPrice": 1234.5},
			map[string]any{"description": "Labor", "quantity": 2.0, "finalPrice": 80.0},
		},
	}

	out, err := newRenderer(t).Render(tpl, data)
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if !bytes.HasPrefix(out, []byte("%PDF")) {
		t.Fatalf("output does not start with a pdf signature")
	}
}

func TestRenderSkipsEmptyAndUnresolvedContent(t *testing.T) {
	tpl := flatTemplate(t, []templatedomain.Element{
		{
			Type:       templatedomain.ElementText,
			Position:   templatedomain.Point{X: 10, Y: 10},
			Dimensions: templatedomain.Size{Width: 50, Height: 8},
			Content:    templatedomain.Content{DataKey: "missing.path"},
		},
		{
			Type:       templatedomain.ElementImage,
			Position:   templatedomain.Point{X: 10, Y: 30},
			Dimensions: templatedomain.Size{Width: 40, Height: 40},
			Content:    templatedomain.Content{DataKey: "company.logo"},
		},
	})

	out, err := newRenderer(t).Render(tpl, map[string]any{"company": map[string]any{"logo": "not-base64!!"}})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if !bytes.HasPrefix(out, []byte("%PDF")) {
		t.Fatalf("output does not start with a pdf signature")
	}
}

func TestDecodeImageData(t *testing.T) {
	// Minimal png header payload round-tripped through base64.
	png := []byte("\x89PNG\r\n\x1a\n")
	encoded := "data:image/png;base64," + base64.StdEncoding.EncodeToString(png)

	payload, kind, ok := decodeImageData(encoded)
	if !ok || kind != "PNG" {
		t.Fatalf("decodeImageData ok=%v kind=%q", ok, kind)
	}
	if !bytes.Equal(payload, png) {
		t.Fatalf("payload mismatch")
	}

	if _, _, ok := decodeImageData("%%%not-base64"); ok {
		t.Fatalf("expected invalid base64 to be rejected")
	}
}

func TestCustomPaperSize(t *testing.T) {
	tpl := flatTemplate(t, []templatedomain.Element{
		{
			Type:       templatedomain.ElementText,
			Position:   templatedomain.Point{X: 5, Y: 5},
			Dimensions: templatedomain.Size{Width: 60, Height: 6},
			Content:    templatedomain.Content{StaticText: "Receipt"},
		},
	})
	tpl.PaperSize = templatedomain.PaperCustom
	tpl.CustomWidthMM = 80
	tpl.CustomHeightMM = 200

	out, err := newRenderer(t).Render(tpl, map[string]any{})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if !bytes.HasPrefix(out, []byte("%PDF")) {
		t.Fatalf("output does not start with a pdf signature")
	}
}
