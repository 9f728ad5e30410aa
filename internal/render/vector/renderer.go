// Package vector draws a template's flat element list directly onto a
// PDF canvas. Positions and dimensions arrive in millimeters and are
// converted to points here. Table column widths in this renderer are
// absolute millimeters; the banded layout engine uses percentages — the
// conventions differ per code path and are kept that way.
package vector

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"strings"

	"github.com/fixwell/docforge/internal/render/pathres"
	templatedomain "github.com/fixwell/docforge/internal/template/domain"
	"github.com/jung-kurt/gofpdf"
	"go.uber.org/zap"
)

// PointsPerMM converts millimeters to PDF points.
const PointsPerMM = 2.83465

const (
	defaultFontFamily = "Helvetica"
	defaultFontSize   = 10.0
	defaultLineWidth  = 0.5
	tableRowHeightMM  = 7.0
)

type Renderer struct {
	resolver *pathres.Resolver
	expander *pathres.Expander
	log      *zap.Logger
}

func NewRenderer(resolver *pathres.Resolver, expander *pathres.Expander, log *zap.Logger) *Renderer {
	return &Renderer{
		resolver: resolver,
		expander: expander,
		log:      log.Named("render.vector"),
	}
}

// Render draws every element of the flat list in order and returns the
// PDF bytes.
func (r *Renderer) Render(tpl *templatedomain.Template, data map[string]any) ([]byte, error) {
	elements, err := tpl.DecodeFlatElements()
	if err != nil {
		return nil, fmt.Errorf("vector: decoding elements: %w", err)
	}

	widthMM, heightMM := tpl.PaperDimensionsMM()
	pageW := widthMM * PointsPerMM
	pdf := gofpdf.NewCustom(&gofpdf.InitType{
		UnitStr: "pt",
		Size:    gofpdf.SizeType{Wd: pageW, Ht: heightMM * PointsPerMM},
	})
	pdf.SetAutoPageBreak(false, 0)
	pdf.AddPage()

	for _, element := range elements {
		r.drawElement(pdf, element, data, pageW)
	}

	if pdf.Err() {
		return nil, fmt.Errorf("vector: drawing failed: %w", pdf.Error())
	}
	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("vector: writing pdf: %w", err)
	}
	return buf.Bytes(), nil
}

func (r *Renderer) drawElement(pdf *gofpdf.Fpdf, element templatedomain.Element, data map[string]any, pageW float64) {
	x := element.Position.X * PointsPerMM
	y := element.Position.Y * PointsPerMM
	w := element.Dimensions.Width * PointsPerMM
	h := element.Dimensions.Height * PointsPerMM

	switch element.Type {
	case templatedomain.ElementText:
		r.drawText(pdf, element, data, x, y, w, h, pageW)
	case templatedomain.ElementLine:
		applyDrawStyle(pdf, element.Style)
		pdf.Line(x, y, x+w, y+h)
	case templatedomain.ElementRectangle:
		applyDrawStyle(pdf, element.Style)
		pdf.Rect(x, y, w, h, "D")
	case templatedomain.ElementImage:
		r.drawImage(pdf, element, data, x, y, w, h)
	case templatedomain.ElementTable:
		r.drawTable(pdf, element, data, x, y)
	}
}

func (r *Renderer) drawText(pdf *gofpdf.Fpdf, element templatedomain.Element, data map[string]any, x, y, w, h, pageW float64) {
	text := r.contentText(element.Content, data)
	if text == "" {
		return
	}
	applyFontStyle(pdf, element.Style)

	align := cellAlign(element.Style.Align)
	if strings.HasPrefix(align, "R") {
		// Right-aligned positions mirror x against the page width.
		x = pageW - x - w
	}
	if w <= 0 {
		w = pdf.GetStringWidth(text) + 2
	}
	lineHeight := fontSizeOf(element.Style) * 1.3
	pdf.SetXY(x, y)
	pdf.MultiCell(w, lineHeight, text, "", align, false)
}

func (r *Renderer) drawImage(pdf *gofpdf.Fpdf, element templatedomain.Element, data map[string]any, x, y, w, h float64) {
	if element.Content.DataKey == "" {
		return
	}
	resolved := pathres.Stringify(r.resolver.Resolve(data, element.Content.DataKey))
	if resolved == "" {
		// No embedded image data, nothing to draw. External fetch is out of scope.
		return
	}
	payload, imageType, ok := decodeImageData(resolved)
	if !ok {
		r.log.Warn("skipping image element with undecodable data",
			zap.String("data_key", element.Content.DataKey))
		return
	}
	name := fmt.Sprintf("img-%s", element.Content.DataKey)
	opts := gofpdf.ImageOptions{ImageType: imageType}
	pdf.RegisterImageOptionsReader(name, opts, bytes.NewReader(payload))
	pdf.ImageOptions(name, x, y, w, h, false, opts, 0, "")
}

// drawTable renders a bordered header row and one row per resolved
// item. Column widths are absolute millimeters.
func (r *Renderer) drawTable(pdf *gofpdf.Fpdf, element templatedomain.Element, data map[string]any, x, y float64) {
	if element.Table == nil {
		return
	}
	rows, _ := r.resolver.Resolve(data, element.Table.DataKey).([]any)

	rowHeight := tableRowHeightMM * PointsPerMM
	applyFontStyle(pdf, boldStyle(element.Style))
	cursorX := x
	for _, column := range element.Table.Columns {
		colW := column.Width * PointsPerMM
		pdf.SetXY(cursorX, y)
		pdf.CellFormat(colW, rowHeight, column.Header, "1", 0, cellAlign(column.Align), false, 0, "")
		cursorX += colW
	}

	applyFontStyle(pdf, element.Style)
	rowY := y + rowHeight
	for _, raw := range rows {
		row, ok := raw.(map[string]any)
		if !ok {
			continue
		}
		cursorX = x
		for _, column := range element.Table.Columns {
			colW := column.Width * PointsPerMM
			pdf.SetXY(cursorX, rowY)
			pdf.CellFormat(colW, rowHeight, formatCell(row[column.DataKey], column.Format), "1", 0, cellAlign(column.Align), false, 0, "")
			cursorX += colW
		}
		rowY += rowHeight
	}
}

func (r *Renderer) contentText(content templatedomain.Content, data map[string]any) string {
	switch {
	case content.DataKey != "":
		return r.resolver.ResolveString(data, content.DataKey)
	case content.Template != "":
		return r.expander.Expand(content.Template, data)
	default:
		return content.StaticText
	}
}

func formatCell(value any, format string) string {
	switch format {
	case "currency":
		return pathres.FormatCurrency(numeric(value))
	case "date":
		return pathres.FormatDate(value)
	default:
		return pathres.Stringify(value)
	}
}

func numeric(value any) float64 {
	switch typed := value.(type) {
	case float64:
		return typed
	case int:
		return float64(typed)
	case int64:
		return float64(typed)
	default:
		return 0
	}
}

func applyFontStyle(pdf *gofpdf.Fpdf, style templatedomain.Style) {
	family := style.FontFamily
	if family == "" {
		family = defaultFontFamily
	}
	pdf.SetFont(family, style.FontStyle, fontSizeOf(style))
	if style.Color != nil {
		pdf.SetTextColor(style.Color.R, style.Color.G, style.Color.B)
	} else {
		pdf.SetTextColor(0, 0, 0)
	}
}

func applyDrawStyle(pdf *gofpdf.Fpdf, style templatedomain.Style) {
	width := style.BorderWidth
	if width <= 0 {
		width = defaultLineWidth
	}
	pdf.SetLineWidth(width * PointsPerMM)
	if style.BorderColor != nil {
		pdf.SetDrawColor(style.BorderColor.R, style.BorderColor.G, style.BorderColor.B)
	} else {
		pdf.SetDrawColor(0, 0, 0)
	}
}

func boldStyle(style templatedomain.Style) templatedomain.Style {
	if !strings.Contains(style.FontStyle, "B") {
		style.FontStyle += "B"
	}
	return style
}

func fontSizeOf(style templatedomain.Style) float64 {
	if style.FontSize > 0 {
		return style.FontSize
	}
	return defaultFontSize
}

func cellAlign(align string) string {
	switch strings.ToLower(align) {
	case "center":
		return "C"
	case "right":
		return "R"
	default:
		return "L"
	}
}

// decodeImageData accepts a data URI or raw base64 payload and sniffs
// the image type from the magic bytes.
func decodeImageData(value string) ([]byte, string, bool) {
	if idx := strings.Index(value, "base64,"); idx >= 0 {
		value = value[idx+len("base64,"):]
	}
	payload, err := base64.StdEncoding.DecodeString(value)
	if err != nil || len(payload) < 4 {
		return nil, "", false
	}
	switch {
	case bytes.HasPrefix(payload, []byte("\x89PNG")):
		return payload, "PNG", true
	case bytes.HasPrefix(payload, []byte("\xff\xd8")):
		return payload, "JPG", true
	default:
		return nil, "", false
	}
}
