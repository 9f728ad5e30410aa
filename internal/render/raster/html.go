package raster

import (
	"bytes"
	"fmt"
	"html/template"
	"regexp"
	"strings"

	"github.com/fixwell/docforge/internal/render/pathres"
	templatedomain "github.com/fixwell/docforge/internal/template/domain"
)

const documentHTMLTemplate = `<!doctype html>
<html lang="en">
<head>
  <meta charset="utf-8" />
  <title>{{.Title}}</title>
  <style>
    @page {
      size: {{.WidthMM}}mm {{.HeightMM}}mm;
      margin: 0;
    }
    * { box-sizing: border-box; }
    body {
      margin: 0;
      width: {{.WidthMM}}mm;
      font-family: "{{.FontFamily}}", "Helvetica Neue", Arial, sans-serif;
      color: #111827;
      background: #ffffff;
    }
    .page {
      position: relative;
      width: {{.WidthMM}}mm;
      min-height: {{.HeightMM}}mm;
    }
    .el { position: absolute; overflow: hidden; }
    .band { position: relative; }
    .band .el { position: absolute; }
    table {
      width: 100%;
      border-collapse: collapse;
    }
    th, td {
      padding: 2px 4px;
      border: 1px solid #111827;
    }
    th { font-weight: 600; }
  </style>
</head>
<body>
  <div class="page">
  {{range .Sections}}
    <div class="band" style="height: {{printf "%.2f" .HeightMM}}mm;">
    {{range .Elements}}
      {{if eq .Kind "text"}}
      <div class="el" style="{{.Style}}">{{.Text}}</div>
      {{else if eq .Kind "line"}}
      <div class="el" style="{{.Style}}"></div>
      {{else if eq .Kind "rectangle"}}
      <div class="el" style="{{.Style}}"></div>
      {{else if eq .Kind "image"}}
      <img class="el" style="{{.Style}}" src="{{.ImageSrc}}" alt="" />
      {{else if eq .Kind "table"}}
      <div class="el" style="{{.Style}}">
        <table>
          <thead>
            <tr>{{range .Table.Columns}}<th style="width: {{printf "%.2f" .WidthPct}}%; text-align: {{.Align}};">{{.Header}}</th>{{end}}</tr>
          </thead>
          <tbody>
            {{range .Table.Rows}}
            <tr>{{range .}}<td style="text-align: {{.Align}};">{{.Text}}</td>{{end}}</tr>
            {{end}}
          </tbody>
        </table>
      </div>
      {{end}}
    {{end}}
    </div>
  {{end}}
  </div>
</body>
</html>
`

var fontFamilyFilter = regexp.MustCompile(`^[A-Za-z0-9 \-]+$`)

type documentView struct {
	Title      string
	WidthMM    float64
	HeightMM   float64
	FontFamily string
	Sections   []sectionView
}

type sectionView struct {
	HeightMM float64
	Elements []elementView
}

type elementView struct {
	Kind     string
	Style    template.CSS
	Text     string
	ImageSrc template.URL
	Table    *tableView
}

type tableView struct {
	Columns []columnView
	Rows    [][]cellView
}

type columnView struct {
	Header   string
	WidthPct float64
	Align    string
}

type cellView struct {
	Text  string
	Align string
}

// htmlShell turns resolved element lists into the printable markup the
// headless browser renders. Data binding happens before templating: the
// view carries only final strings.
type htmlShell struct {
	tpl      *template.Template
	resolver *pathres.Resolver
	expander *pathres.Expander
}

func newHTMLShell(resolver *pathres.Resolver, expander *pathres.Expander) *htmlShell {
	return &htmlShell{
		tpl:      template.Must(template.New("document").Parse(documentHTMLTemplate)),
		resolver: resolver,
		expander: expander,
	}
}

// Build produces the document HTML. Flat templates map each element to an
// absolutely positioned node on a single page region; banded templates
// become flowing sections (report header, one detail section per entry,
// report footer) that the browser paginates.
func (s *htmlShell) Build(tpl *templatedomain.Template, data map[string]any) (string, error) {
	widthMM, heightMM := tpl.PaperDimensionsMM()
	view := documentView{
		Title:      tpl.Name,
		WidthMM:    widthMM,
		HeightMM:   heightMM,
		FontFamily: sanitizeFont(firstFontFamily(tpl)),
	}

	if tpl.Banded() {
		sections, err := s.bandedSections(tpl, data)
		if err != nil {
			return "", err
		}
		view.Sections = sections
	} else {
		elements, err := tpl.DecodeFlatElements()
		if err != nil {
			return "", err
		}
		view.Sections = []sectionView{{
			HeightMM: heightMM,
			Elements: s.buildElements(elements, data),
		}}
	}

	var buf bytes.Buffer
	if err := s.tpl.Execute(&buf, view); err != nil {
		return "", err
	}
	return buf.String(), nil
}

func (s *htmlShell) bandedSections(tpl *templatedomain.Template, data map[string]any) ([]sectionView, error) {
	bands, err := tpl.DecodeBands()
	if err != nil {
		return nil, err
	}

	var sections []sectionView
	appendSection := func(elements []templatedomain.Element, ctx map[string]any) {
		if len(elements) == 0 {
			return
		}
		sections = append(sections, sectionView{
			HeightMM: sectionHeightMM(elements),
			Elements: s.buildElements(elements, ctx),
		})
	}

	appendSection(bands.ReportHeader, data)
	appendSection(bands.PageHeader, data)

	entriesKey := "items"
	if tpl.DocumentType == templatedomain.DocumentTypeRepairJob {
		entriesKey = "jobSheet"
	}
	entries, _ := data[entriesKey].([]any)
	for _, entry := range entries {
		ctx := make(map[string]any, len(data)+1)
		for key, value := range data {
			ctx[key] = value
		}
		ctx["item"] = entry
		appendSection(bands.Detail, ctx)
	}

	appendSection(bands.ReportFooter, data)
	appendSection(bands.PageFooter, data)
	return sections, nil
}

func (s *htmlShell) buildElements(elements []templatedomain.Element, ctx map[string]any) []elementView {
	views := make([]elementView, 0, len(elements))
	for _, element := range elements {
		if view, ok := s.buildElement(element, ctx); ok {
			views = append(views, view)
		}
	}
	return views
}

func (s *htmlShell) buildElement(element templatedomain.Element, ctx map[string]any) (elementView, bool) {
	base := fmt.Sprintf("left: %.2fmm; top: %.2fmm; width: %.2fmm;",
		element.Position.X, element.Position.Y, element.Dimensions.Width)

	switch element.Type {
	case templatedomain.ElementText:
		text := s.contentText(element.Content, ctx)
		if text == "" {
			return elementView{}, false
		}
		style := base + textCSS(element.Style)
		return elementView{Kind: "text", Style: template.CSS(style), Text: text}, true
	case templatedomain.ElementLine:
		style := base + fmt.Sprintf("border-top: %.2fmm solid %s;",
			borderWidth(element.Style), cssColor(element.Style.BorderColor))
		return elementView{Kind: "line", Style: template.CSS(style)}, true
	case templatedomain.ElementRectangle:
		style := base + fmt.Sprintf("height: %.2fmm; border: %.2fmm solid %s;",
			element.Dimensions.Height, borderWidth(element.Style), cssColor(element.Style.BorderColor))
		return elementView{Kind: "rectangle", Style: template.CSS(style)}, true
	case templatedomain.ElementImage:
		src := pathres.Stringify(s.resolver.Resolve(ctx, element.Content.DataKey))
		if src == "" {
			return elementView{}, false
		}
		if !strings.HasPrefix(src, "data:") {
			src = "data:image/png;base64," + src
		}
		style := base + fmt.Sprintf("height: %.2fmm;", element.Dimensions.Height)
		return elementView{Kind: "image", Style: template.CSS(style), ImageSrc: template.URL(src)}, true
	case templatedomain.ElementTable:
		if element.Table == nil {
			return elementView{}, false
		}
		style := base + textCSS(element.Style)
		return elementView{Kind: "table", Style: template.CSS(style), Table: s.buildTable(element.Table, ctx)}, true
	default:
		return elementView{}, false
	}
}

func (s *htmlShell) buildTable(table *templatedomain.TableContent, ctx map[string]any) *tableView {
	view := &tableView{}
	for _, column := range table.Columns {
		view.Columns = append(view.Columns, columnView{
			Header:   column.Header,
			WidthPct: column.Width,
			Align:    cssAlign(column.Align),
		})
	}
	rows, _ := s.resolver.Resolve(ctx, table.DataKey).([]any)
	for _, raw := range rows {
		row, ok := raw.(map[string]any)
		if !ok {
			continue
		}
		var cells []cellView
		for _, column := range table.Columns {
			cells = append(cells, cellView{
				Text:  formatCell(row[column.DataKey], column.Format),
				Align: cssAlign(column.Align),
			})
		}
		view.Rows = append(view.Rows, cells)
	}
	return view
}

func (s *htmlShell) contentText(content templatedomain.Content, ctx map[string]any) string {
	switch {
	case content.DataKey != "":
		return s.resolver.ResolveString(ctx, content.DataKey)
	case content.Template != "":
		return s.expander.Expand(content.Template, ctx)
	default:
		return content.StaticText
	}
}

func formatCell(value any, format string) string {
	switch format {
	case "currency":
		switch typed := value.(type) {
		case float64:
			return pathres.FormatCurrency(typed)
		case int:
			return pathres.FormatCurrency(float64(typed))
		default:
			return pathres.Stringify(value)
		}
	case "date":
		return pathres.FormatDate(value)
	default:
		return pathres.Stringify(value)
	}
}

func sectionHeightMM(elements []templatedomain.Element) float64 {
	var height float64
	for _, element := range elements {
		bottom := element.Position.Y + element.Dimensions.Height
		if bottom > height {
			height = bottom
		}
	}
	return height
}

func firstFontFamily(tpl *templatedomain.Template) string {
	elements, err := tpl.DecodeFlatElements()
	if err != nil || len(elements) == 0 {
		return ""
	}
	for _, element := range elements {
		if element.Style.FontFamily != "" {
			return element.Style.FontFamily
		}
	}
	return ""
}

func textCSS(style templatedomain.Style) string {
	var b strings.Builder
	size := style.FontSize
	if size <= 0 {
		size = 10
	}
	fmt.Fprintf(&b, "font-size: %.1fpt;", size)
	if style.FontFamily != "" {
		fmt.Fprintf(&b, "font-family: %q;", sanitizeFont(style.FontFamily))
	}
	if strings.Contains(style.FontStyle, "B") {
		b.WriteString("font-weight: 700;")
	}
	if strings.Contains(style.FontStyle, "I") {
		b.WriteString("font-style: italic;")
	}
	if style.Color != nil {
		fmt.Fprintf(&b, "color: %s;", cssColor(style.Color))
	}
	if style.Align != "" {
		fmt.Fprintf(&b, "text-align: %s;", cssAlign(style.Align))
	}
	return b.String()
}

func cssColor(color *templatedomain.RGB) string {
	if color == nil {
		return "#111827"
	}
	return fmt.Sprintf("#%02x%02x%02x", clampByte(color.R), clampByte(color.G), clampByte(color.B))
}

func clampByte(v int) int {
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return v
}

func borderWidth(style templatedomain.Style) float64 {
	if style.BorderWidth > 0 {
		return style.BorderWidth
	}
	return 0.3
}

func cssAlign(align string) string {
	switch strings.ToLower(align) {
	case "center":
		return "center"
	case "right":
		return "right"
	default:
		return "left"
	}
}

func sanitizeFont(value string) string {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return "Helvetica"
	}
	if fontFamilyFilter.MatchString(trimmed) {
		return trimmed
	}
	return "Helvetica"
}
