// Package raster renders a template by building an HTML document and
// printing it to PDF through a headless browser. Every render launches
// its own browser process; crashes stay isolated to the request.
package raster

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"
	"github.com/fixwell/docforge/internal/config"
	"github.com/fixwell/docforge/internal/render/pathres"
	templatedomain "github.com/fixwell/docforge/internal/template/domain"
	"go.uber.org/zap"
)

const mmPerInch = 25.4

type Renderer struct {
	cfg   config.Config
	shell *htmlShell
	log   *zap.Logger
}

func NewRenderer(cfg config.Config, resolver *pathres.Resolver, expander *pathres.Expander, log *zap.Logger) *Renderer {
	return &Renderer{
		cfg:   cfg,
		shell: newHTMLShell(resolver, expander),
		log:   log.Named("render.raster"),
	}
}

// Render builds the HTML document, navigates a fresh browser to it and
// returns the printed PDF bytes.
func (r *Renderer) Render(ctx context.Context, tpl *templatedomain.Template, data map[string]any) ([]byte, error) {
	html, err := r.shell.Build(tpl, data)
	if err != nil {
		return nil, fmt.Errorf("raster: building html: %w", err)
	}

	f, err := os.CreateTemp("", "docforge-*.html")
	if err != nil {
		return nil, fmt.Errorf("raster: creating temp file: %w", err)
	}
	name := f.Name()
	defer os.Remove(name)

	if _, err := f.WriteString(html); err != nil {
		f.Close()
		return nil, fmt.Errorf("raster: writing temp file: %w", err)
	}
	if err := f.Close(); err != nil {
		return nil, fmt.Errorf("raster: closing temp file: %w", err)
	}
	abs, err := filepath.Abs(name)
	if err != nil {
		return nil, fmt.Errorf("raster: resolving path: %w", err)
	}

	return r.print(ctx, "file://"+abs, tpl)
}

func (r *Renderer) print(ctx context.Context, targetURL string, tpl *templatedomain.Template) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, r.cfg.RenderTimeout())
	defer cancel()

	allocOpts := append(
		chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.Flag("disable-extensions", true),
		chromedp.Flag("disable-background-networking", true),
		chromedp.Flag("no-first-run", true),
		chromedp.Flag("headless", true),
	)
	if r.cfg.Render.ChromePath != "" {
		allocOpts = append(allocOpts, chromedp.ExecPath(r.cfg.Render.ChromePath))
	}
	if r.cfg.Render.NoSandbox {
		allocOpts = append(allocOpts, chromedp.Flag("no-sandbox", true))
	}

	allocCtx, allocCancel := chromedp.NewExecAllocator(ctx, allocOpts...)
	defer allocCancel()
	browserCtx, browserCancel := chromedp.NewContext(allocCtx)
	defer browserCancel()

	widthMM, heightMM := tpl.PaperDimensionsMM()

	var buf []byte
	if err := chromedp.Run(browserCtx,
		chromedp.Navigate(targetURL),
		chromedp.WaitReady("body", chromedp.ByQuery),
		chromedp.ActionFunc(func(ctx context.Context) error {
			params := page.PrintToPDF().
				WithPaperWidth(widthMM / mmPerInch).
				WithPaperHeight(heightMM / mmPerInch).
				WithMarginTop(0).
				WithMarginRight(0).
				WithMarginBottom(0).
				WithMarginLeft(0).
				WithPrintBackground(tpl.PrintBackground)

			var err error
			buf, _, err = params.Do(ctx)
			return err
		}),
	); err != nil {
		return nil, fmt.Errorf("raster: browser print failed: %w", err)
	}

	r.log.Debug("printed document",
		zap.String("template", tpl.Name),
		zap.Int("bytes", len(buf)))
	return buf, nil
}
