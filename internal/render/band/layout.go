// Package band implements the banded report layout: report header, a
// page header repeated per page, a detail band repeated per entry, a
// page footer repeated per page, and a report footer. The engine
// measures content in physical units and inserts page breaks so a
// detail band is never split across two pages.
//
// Table column widths in this engine are percentages of the element
// width. The vector renderer uses absolute millimeters instead; the two
// conventions are intentionally left distinct.
package band

import (
	"bytes"
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

	// footerReserveMM is the bottom region kept free for the page footer.
	footerReserveMM = 30.0
	// interItemMM is the spacing between consecutive detail bands.
	interItemMM = 2.0
	// headerMarginMM separates the page header from the first detail band.
	headerMarginMM = 4.0

	tableRowHeightMM = 7.0
)

type Engine struct {
	resolver *pathres.Resolver
	expander *pathres.Expander
	log      *zap.Logger
}

func NewEngine(resolver *pathres.Resolver, expander *pathres.Expander, log *zap.Logger) *Engine {
	return &Engine{
		resolver: resolver,
		expander: expander,
		log:      log.Named("render.band"),
	}
}

// layout tracks the cursor state of one paginated render.
type layout struct {
	pdf        *gofpdf.Fpdf
	pageW      float64
	pageH      float64
	pageNumber int
	currentY   float64
}

// Render paginates the template's bands over the record's detail
// entries and returns the PDF bytes.
func (e *Engine) Render(tpl *templatedomain.Template, data map[string]any) ([]byte, error) {
	bands, err := tpl.DecodeBands()
	if err != nil {
		return nil, fmt.Errorf("band: decoding bands: %w", err)
	}

	widthMM, heightMM := tpl.PaperDimensionsMM()
	pdf := gofpdf.NewCustom(&gofpdf.InitType{
		UnitStr: "pt",
		Size:    gofpdf.SizeType{Wd: widthMM * PointsPerMM, Ht: heightMM * PointsPerMM},
	})
	pdf.SetAutoPageBreak(false, 0)
	pdf.AddPage()

	state := &layout{
		pdf:        pdf,
		pageW:      widthMM * PointsPerMM,
		pageH:      heightMM * PointsPerMM,
		pageNumber: 1,
	}

	entries := detailEntries(tpl.DocumentType, data)
	detailHeight := bandHeight(bands.Detail)
	footerReserve := footerReserveMM * PointsPerMM
	interItem := interItemMM * PointsPerMM

	ctx := pageContext(data, state.pageNumber)

	reportHeaderBottom := e.renderBand(state, bands.ReportHeader, 0, ctx)
	headerBottom := e.renderBand(state, bands.PageHeader, reportHeaderBottom, ctx)
	state.currentY = headerBottom + headerMarginMM*PointsPerMM

	for _, entry := range entries {
		if state.currentY+detailHeight > state.pageH-footerReserve {
			e.breakPage(state, bands, data)
			ctx = pageContext(data, state.pageNumber)
		}
		entryCtx := pageContext(data, state.pageNumber)
		entryCtx["item"] = entry
		bottom := e.renderBand(state, bands.Detail, state.currentY, entryCtx)
		state.currentY = bottom + interItem
	}

	if state.currentY+bandHeight(bands.ReportFooter) > state.pageH-footerReserve {
		e.breakPage(state, bands, data)
		ctx = pageContext(data, state.pageNumber)
	}
	e.renderBand(state, bands.ReportFooter, state.currentY, ctx)
	e.renderBand(state, bands.PageFooter, state.pageH-footerReserve, ctx)

	if pdf.Err() {
		return nil, fmt.Errorf("band: drawing failed: %w", pdf.Error())
	}
	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("band: writing pdf: %w", err)
	}
	return buf.Bytes(), nil
}

// breakPage closes the current page with its footer and opens the next
// one with a fresh page header.
func (e *Engine) breakPage(state *layout, bands *templatedomain.Bands, data map[string]any) {
	ctx := pageContext(data, state.pageNumber)
	e.renderBand(state, bands.PageFooter, state.pageH-footerReserveMM*PointsPerMM, ctx)

	state.pdf.AddPage()
	state.pageNumber++

	ctx = pageContext(data, state.pageNumber)
	headerBottom := e.renderBand(state, bands.PageHeader, 0, ctx)
	state.currentY = headerBottom + headerMarginMM*PointsPerMM
}

// renderBand draws every element at bandBaseY + element.position.y, in
// list order, and returns the lowest Y the band consumed.
func (e *Engine) renderBand(state *layout, elements []templatedomain.Element, bandBaseY float64, ctx map[string]any) float64 {
	maxY := bandBaseY
	for _, element := range elements {
		bottom := e.drawElement(state, element, bandBaseY, ctx)
		if bottom > maxY {
			maxY = bottom
		}
	}
	return maxY
}

func (e *Engine) drawElement(state *layout, element templatedomain.Element, bandBaseY float64, ctx map[string]any) float64 {
	pdf := state.pdf
	x := element.Position.X * PointsPerMM
	y := bandBaseY + element.Position.Y*PointsPerMM
	w := element.Dimensions.Width * PointsPerMM
	h := element.Dimensions.Height * PointsPerMM

	switch element.Type {
	case templatedomain.ElementText:
		text := e.contentText(element.Content, ctx)
		if text == "" {
			return y
		}
		setFont(pdf, element.Style)
		align := cellAlign(element.Style.Align)
		if align == "R" {
			x = state.pageW - x - w
		}
		lineHeight := fontSize(element.Style) * 1.3
		if w <= 0 {
			w = pdf.GetStringWidth(text) + 2
		}
		pdf.SetXY(x, y)
		pdf.MultiCell(w, lineHeight, text, "", align, false)
		lines := strings.Count(text, "\n") + 1
		return y + float64(lines)*lineHeight
	case templatedomain.ElementLine:
		setStroke(pdf, element.Style)
		pdf.Line(x, y, x+w, y+h)
		return y + h
	case templatedomain.ElementRectangle:
		setStroke(pdf, element.Style)
		pdf.Rect(x, y, w, h, "D")
		return y + h
	case templatedomain.ElementImage:
		// Banded documents embed images only through the vector path.
		return y + h
	case templatedomain.ElementTable:
		return e.drawTable(state, element, x, y, w, ctx)
	default:
		return y
	}
}

// drawTable draws a header row and one row per resolved item. Each
// column's offset is the cumulative percentage of the element width
// consumed by the preceding columns.
func (e *Engine) drawTable(state *layout, element templatedomain.Element, x, y, w float64, ctx map[string]any) float64 {
	if element.Table == nil {
		return y
	}
	pdf := state.pdf
	rows, _ := e.resolver.Resolve(ctx, element.Table.DataKey).([]any)

	if w <= 0 {
		w = state.pageW - x
	}
	rowHeight := tableRowHeightMM * PointsPerMM

	header := element.Style
	if !strings.Contains(header.FontStyle, "B") {
		header.FontStyle += "B"
	}
	setFont(pdf, header)
	offset := 0.0
	for _, column := range element.Table.Columns {
		colW := w * column.Width / 100
		pdf.SetXY(x+offset, y)
		pdf.CellFormat(colW, rowHeight, column.Header, "1", 0, cellAlign(column.Align), false, 0, "")
		offset += colW
	}

	setFont(pdf, element.Style)
	rowY := y + rowHeight
	for _, raw := range rows {
		row, ok := raw.(map[string]any)
		if !ok {
			continue
		}
		offset = 0.0
		for _, column := range element.Table.Columns {
			colW := w * column.Width / 100
			pdf.SetXY(x+offset, rowY)
			pdf.CellFormat(colW, rowHeight, formatCell(row[column.DataKey], column.Format), "1", 0, cellAlign(column.Align), false, 0, "")
			offset += colW
		}
		rowY += rowHeight
	}
	return rowY
}

func (e *Engine) contentText(content templatedomain.Content, ctx map[string]any) string {
	switch {
	case content.DataKey != "":
		return e.resolver.ResolveString(ctx, content.DataKey)
	case content.Template != "":
		return e.expander.Expand(content.Template, ctx)
	default:
		return content.StaticText
	}
}

// detailEntries picks the repeating collection per document type.
func detailEntries(docType templatedomain.DocumentType, data map[string]any) []any {
	key := "items"
	if docType == templatedomain.DocumentTypeRepairJob {
		key = "jobSheet"
	}
	entries, _ := data[key].([]any)
	return entries
}

// bandHeight measures the static extent of a band: the deepest
// position plus dimension among its elements.
func bandHeight(elements []templatedomain.Element) float64 {
	var height float64
	for _, element := range elements {
		bottom := element.Position.Y + element.Dimensions.Height
		if element.Dimensions.Height == 0 {
			bottom = element.Position.Y + tableRowHeightMM
		}
		if bottom > height {
			height = bottom
		}
	}
	return height * PointsPerMM
}

// pageContext copies the record root and adds per-page bindings.
func pageContext(data map[string]any, pageNumber int) map[string]any {
	ctx := make(map[string]any, len(data)+2)
	for key, value := range data {
		ctx[key] = value
	}
	ctx["pageNumber"] = pageNumber
	return ctx
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

func setFont(pdf *gofpdf.Fpdf, style templatedomain.Style) {
	family := style.FontFamily
	if family == "" {
		family = defaultFontFamily
	}
	pdf.SetFont(family, style.FontStyle, fontSize(style))
	if style.Color != nil {
		pdf.SetTextColor(style.Color.R, style.Color.G, style.Color.B)
	} else {
		pdf.SetTextColor(0, 0, 0)
	}
}

func setStroke(pdf *gofpdf.Fpdf, style templatedomain.Style) {
	width := style.BorderWidth
	if width <= 0 {
		width = 0.5
	}
	pdf.SetLineWidth(width * PointsPerMM)
	if style.BorderColor != nil {
		pdf.SetDrawColor(style.BorderColor.R, style.BorderColor.G, style.BorderColor.B)
	} else {
		pdf.SetDrawColor(0, 0, 0)
	}
}

func fontSize(style templatedomain.Style) float64 {
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
