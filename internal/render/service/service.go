package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/bwmarrin/snowflake"
	auditdomain "github.com/fixwell/docforge/internal/audit/domain"
	"github.com/fixwell/docforge/internal/clock"
	"github.com/fixwell/docforge/internal/observability/tracing"
	recorddomain "github.com/fixwell/docforge/internal/record/domain"
	"github.com/fixwell/docforge/internal/render/band"
	"github.com/fixwell/docforge/internal/render/domain"
	"github.com/fixwell/docforge/internal/render/raster"
	"github.com/fixwell/docforge/internal/render/transform"
	"github.com/fixwell/docforge/internal/render/vector"
	templatedomain "github.com/fixwell/docforge/internal/template/domain"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Service dispatches a render request to the engine the template names:
// raster templates print through the headless browser, vector templates
// draw directly, with banded layouts going through the pagination engine.
type Service struct {
	db    *gorm.DB
	log   *zap.Logger
	clk   clock.Clock
	genID *snowflake.Node

	templates   templatedomain.Service
	records     recorddomain.Service
	transformer *transform.Transformer
	vector      *vector.Renderer
	band        *band.Engine
	raster      *raster.Renderer
	auditRepo   auditdomain.Repository
}

type ServiceParam struct {
	fx.In

	DB    *gorm.DB
	Log   *zap.Logger
	Clock clock.Clock
	GenID *snowflake.Node

	Templates   templatedomain.Service
	Records     recorddomain.Service
	Transformer *transform.Transformer
	Vector      *vector.Renderer
	Band        *band.Engine
	Raster      *raster.Renderer
	AuditRepo   auditdomain.Repository
}

func NewService(p ServiceParam) domain.Service {
	return &Service{
		db:    p.DB,
		log:   p.Log.Named("render.service"),
		clk:   p.Clock,
		genID: p.GenID,

		templates:   p.Templates,
		records:     p.Records,
		transformer: p.Transformer,
		vector:      p.Vector,
		band:        p.Band,
		raster:      p.Raster,
		auditRepo:   p.AuditRepo,
	}
}

func (s *Service) Render(ctx context.Context, req domain.Request) (*domain.Result, error) {
	ctx, span := tracing.Start(ctx, "render.dispatch",
		attribute.String("template_id", req.TemplateID),
		attribute.String("record_id", req.RecordID),
		attribute.String("style", string(req.Style)))
	defer span.End()

	started := s.clk.Now()

	tpl, record, err := s.load(ctx, req)
	if err != nil {
		return nil, err
	}
	transformed, err := s.transformer.Transform(record, req.Style)
	if err != nil {
		return nil, err
	}

	content, err := s.dispatch(ctx, tpl, transformed)
	if err != nil {
		s.log.Error("render failed",
			zap.String("template_id", req.TemplateID),
			zap.String("record_id", req.RecordID),
			zap.String("engine", string(tpl.RenderEngine)),
			zap.Error(err))
		return nil, fmt.Errorf("%w: %v", domain.ErrRenderFailure, err)
	}

	s.logRender(ctx, tpl, req, len(content), s.clk.Now().Sub(started))

	return &domain.Result{
		Filename:    documentFilename(tpl, record),
		ContentType: "application/pdf",
		Content:     content,
	}, nil
}

func (s *Service) View(ctx context.Context, req domain.Request) (map[string]any, error) {
	_, record, err := s.load(ctx, req)
	if err != nil {
		return nil, err
	}
	return s.transformer.Transform(record, req.Style)
}

// load fetches the template and the record the template's document type
// points at.
func (s *Service) load(ctx context.Context, req domain.Request) (*templatedomain.Template, map[string]any, error) {
	tpl, err := s.templates.GetModel(ctx, req.TemplateID)
	if err != nil {
		if errors.Is(err, templatedomain.ErrNotFound) || errors.Is(err, templatedomain.ErrInvalidID) {
			return nil, nil, domain.ErrTemplateNotFound
		}
		return nil, nil, err
	}

	var record map[string]any
	switch tpl.DocumentType {
	case templatedomain.DocumentTypeRepairJob:
		record, err = s.records.GetRepairJob(ctx, req.RecordID)
	default:
		record, err = s.records.GetInvoice(ctx, req.RecordID)
	}
	if err != nil {
		if errors.Is(err, recorddomain.ErrRecordNotFound) || errors.Is(err, recorddomain.ErrInvalidID) {
			return nil, nil, domain.ErrRecordNotFound
		}
		return nil, nil, err
	}
	return tpl, record, nil
}

func (s *Service) dispatch(ctx context.Context, tpl *templatedomain.Template, record map[string]any) ([]byte, error) {
	if tpl.RenderEngine == templatedomain.RenderEngineRaster {
		return s.raster.Render(ctx, tpl, record)
	}
	if tpl.Banded() {
		return s.band.Render(tpl, record)
	}
	return s.vector.Render(tpl, record)
}

// logRender records the audit row. A failed insert never fails the
// render that already succeeded.
func (s *Service) logRender(ctx context.Context, tpl *templatedomain.Template, req domain.Request, byteCount int, took time.Duration) {
	recordID, err := recorddomain.ParseID(req.RecordID)
	if err != nil {
		return
	}
	entry := &auditdomain.RenderLog{
		ID:         s.genID.Generate(),
		TemplateID: tpl.ID,
		RecordID:   recordID,
		Style:      string(req.Style),
		Engine:     string(tpl.RenderEngine),
		ByteCount:  byteCount,
		DurationMS: took.Milliseconds(),
	}
	if err := s.auditRepo.Insert(ctx, s.db, entry); err != nil {
		s.log.Warn("render log insert failed", zap.Error(err))
	}
}

func documentFilename(tpl *templatedomain.Template, record map[string]any) string {
	number := ""
	switch tpl.DocumentType {
	case templatedomain.DocumentTypeRepairJob:
		number, _ = record["ticketNumber"].(string)
	default:
		number, _ = record["number"].(string)
	}
	if number == "" {
		number = "document"
	}
	return fmt.Sprintf("%s-%s.pdf", tpl.DocumentType, number)
}
