package service

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/fixwell/docforge/internal/cache"
	"github.com/fixwell/docforge/internal/template/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const modelCacheTTL = 30 * time.Second

type Service struct {
	db  *gorm.DB
	log *zap.Logger

	genID  *snowflake.Node
	repo   domain.Repository
	models *cache.TTLCache[snowflake.ID, *domain.Template]
}

type ServiceParam struct {
	fx.In

	DB    *gorm.DB
	Log   *zap.Logger
	GenID *snowflake.Node
	Repo  domain.Repository
}

func NewService(p ServiceParam) domain.Service {
	return &Service{
		db:  p.DB,
		log: p.Log.Named("template.service"),

		genID:  p.GenID,
		repo:   p.Repo,
		models: cache.NewTTLCache[snowflake.ID, *domain.Template](),
	}
}

func (s *Service) Create(ctx context.Context, req domain.CreateRequest) (*domain.Response, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, domain.ErrInvalidName
	}
	docType := domain.DocumentType(strings.TrimSpace(req.DocumentType))
	if !docType.Valid() {
		return nil, domain.ErrInvalidDocumentType
	}
	engine := domain.RenderEngine(strings.TrimSpace(req.RenderEngine))
	if !engine.Valid() {
		return nil, domain.ErrInvalidRenderEngine
	}
	paper := domain.PaperSize(strings.TrimSpace(req.PaperSize))
	if paper == "" {
		paper = domain.PaperA4
	}
	if !paper.Valid() {
		return nil, domain.ErrInvalidPaperSize
	}
	orientation := domain.Orientation(strings.TrimSpace(req.Orientation))
	if orientation == "" {
		orientation = domain.OrientationPortrait
	}
	if !orientation.Valid() {
		return nil, domain.ErrInvalidOrientation
	}

	if err := validateElements(req.Elements, false); err != nil {
		return nil, err
	}
	for _, elements := range [][]domain.Element{
		req.ReportHeaderElements, req.PageHeaderElements,
		req.DetailElements, req.PageFooterElements, req.ReportFooterElements,
	} {
		if err := validateElements(elements, true); err != nil {
			return nil, err
		}
	}

	printBackground := true
	if req.PrintBackground != nil {
		printBackground = *req.PrintBackground
	}

	now := time.Now().UTC()
	tmpl := &domain.Template{
		ID:              s.genID.Generate(),
		Name:            name,
		DocumentType:    docType,
		RenderEngine:    engine,
		PaperSize:       paper,
		Orientation:     orientation,
		CustomWidthMM:   req.CustomWidthMM,
		CustomHeightMM:  req.CustomHeightMM,
		PrintBackground: printBackground,
		IsDefault:       req.IsDefault,
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	var err error
	if tmpl.Elements, err = encodeElements(req.Elements); err != nil {
		return nil, domain.ErrInvalidElements
	}
	if tmpl.ReportHeaderElements, err = encodeElements(req.ReportHeaderElements); err != nil {
		return nil, domain.ErrInvalidElements
	}
	if tmpl.PageHeaderElements, err = encodeElements(req.PageHeaderElements); err != nil {
		return nil, domain.ErrInvalidElements
	}
	if tmpl.DetailElements, err = encodeElements(req.DetailElements); err != nil {
		return nil, domain.ErrInvalidElements
	}
	if tmpl.PageFooterElements, err = encodeElements(req.PageFooterElements); err != nil {
		return nil, domain.ErrInvalidElements
	}
	if tmpl.ReportFooterElements, err = encodeElements(req.ReportFooterElements); err != nil {
		return nil, domain.ErrInvalidElements
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if tmpl.IsDefault {
			if err := s.repo.ClearDefault(ctx, tx, docType); err != nil {
				return err
			}
		}
		return s.repo.Insert(ctx, tx, tmpl)
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("template created",
		zap.String("template_id", tmpl.ID.String()),
		zap.String("document_type", string(docType)),
		zap.String("render_engine", string(engine)),
	)
	return toResponse(tmpl), nil
}

func (s *Service) List(ctx context.Context, req domain.ListRequest) ([]domain.Response, error) {
	templates, err := s.repo.List(ctx, s.db, req)
	if err != nil {
		return nil, err
	}
	out := make([]domain.Response, 0, len(templates))
	for i := range templates {
		out = append(out, *toResponse(&templates[i]))
	}
	return out, nil
}

func (s *Service) GetByID(ctx context.Context, id string) (*domain.Response, error) {
	tmpl, err := s.findByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return toResponse(tmpl), nil
}

// GetModel serves the render pipeline. Templates are read-only for the
// duration of one render call, so a short TTL cache is safe.
func (s *Service) GetModel(ctx context.Context, id string) (*domain.Template, error) {
	parsed, err := domain.ParseID(id)
	if err != nil {
		return nil, domain.ErrInvalidID
	}
	if cached, ok := s.models.Get(parsed); ok {
		return cached, nil
	}
	tmpl, err := s.repo.FindByID(ctx, s.db, parsed)
	if err != nil {
		return nil, err
	}
	if tmpl == nil {
		return nil, domain.ErrNotFound
	}
	s.models.Set(parsed, tmpl, modelCacheTTL)
	return tmpl, nil
}

func (s *Service) Update(ctx context.Context, req domain.UpdateRequest) (*domain.Response, error) {
	tmpl, err := s.findByID(ctx, req.ID)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return nil, domain.ErrInvalidName
		}
		tmpl.Name = name
	}
	if req.RenderEngine != nil {
		engine := domain.RenderEngine(strings.TrimSpace(*req.RenderEngine))
		if !engine.Valid() {
			return nil, domain.ErrInvalidRenderEngine
		}
		tmpl.RenderEngine = engine
	}
	if req.PaperSize != nil {
		paper := domain.PaperSize(strings.TrimSpace(*req.PaperSize))
		if !paper.Valid() {
			return nil, domain.ErrInvalidPaperSize
		}
		tmpl.PaperSize = paper
	}
	if req.Orientation != nil {
		orientation := domain.Orientation(strings.TrimSpace(*req.Orientation))
		if !orientation.Valid() {
			return nil, domain.ErrInvalidOrientation
		}
		tmpl.Orientation = orientation
	}
	if req.CustomWidthMM != nil {
		tmpl.CustomWidthMM = *req.CustomWidthMM
	}
	if req.CustomHeightMM != nil {
		tmpl.CustomHeightMM = *req.CustomHeightMM
	}
	if req.PrintBackground != nil {
		tmpl.PrintBackground = *req.PrintBackground
	}

	for _, pair := range []struct {
		src      *[]domain.Element
		dest     *datatypes.JSON
		relative bool
	}{
		{req.Elements, &tmpl.Elements, false},
		{req.ReportHeaderElements, &tmpl.ReportHeaderElements, true},
		{req.PageHeaderElements, &tmpl.PageHeaderElements, true},
		{req.DetailElements, &tmpl.DetailElements, true},
		{req.PageFooterElements, &tmpl.PageFooterElements, true},
		{req.ReportFooterElements, &tmpl.ReportFooterElements, true},
	} {
		if pair.src == nil {
			continue
		}
		if err := validateElements(*pair.src, pair.relative); err != nil {
			return nil, err
		}
		encoded, err := encodeElements(*pair.src)
		if err != nil {
			return nil, domain.ErrInvalidElements
		}
		*pair.dest = encoded
	}

	tmpl.UpdatedAt = time.Now().UTC()
	if err := s.repo.Update(ctx, s.db, tmpl); err != nil {
		return nil, err
	}
	s.models.Delete(tmpl.ID)
	return toResponse(tmpl), nil
}

func (s *Service) SetDefault(ctx context.Context, id string) (*domain.Response, error) {
	tmpl, err := s.findByID(ctx, id)
	if err != nil {
		return nil, err
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.repo.ClearDefault(ctx, tx, tmpl.DocumentType); err != nil {
			return err
		}
		tmpl.IsDefault = true
		tmpl.UpdatedAt = time.Now().UTC()
		return s.repo.Update(ctx, tx, tmpl)
	})
	if err != nil {
		return nil, err
	}
	s.models.Delete(tmpl.ID)
	return toResponse(tmpl), nil
}

func (s *Service) findByID(ctx context.Context, id string) (*domain.Template, error) {
	parsed, err := domain.ParseID(id)
	if err != nil {
		return nil, domain.ErrInvalidID
	}
	tmpl, err := s.repo.FindByID(ctx, s.db, parsed)
	if err != nil {
		return nil, err
	}
	if tmpl == nil {
		return nil, domain.ErrNotFound
	}
	return tmpl, nil
}

// validateElements checks element types and the table width invariant.
// Banded lists use percentage column widths (sum at most 100); flat
// lists use absolute millimeters (sum at most the element width). The
// two conventions are intentionally distinct per code path.
func validateElements(elements []domain.Element, relative bool) error {
	for _, element := range elements {
		switch element.Type {
		case domain.ElementText, domain.ElementLine, domain.ElementImage,
			domain.ElementTable, domain.ElementRectangle:
		default:
			return domain.ErrInvalidElements
		}
		if element.Type != domain.ElementTable || element.Table == nil {
			continue
		}
		var total float64
		for _, column := range element.Table.Columns {
			if column.Width < 0 {
				return domain.ErrInvalidColumnWidths
			}
			total += column.Width
		}
		if relative {
			if total > 100 {
				return domain.ErrInvalidColumnWidths
			}
		} else if element.Dimensions.Width > 0 && total > element.Dimensions.Width {
			return domain.ErrInvalidColumnWidths
		}
	}
	return nil
}

func encodeElements(elements []domain.Element) (datatypes.JSON, error) {
	if len(elements) == 0 {
		return nil, nil
	}
	raw, err := json.Marshal(elements)
	if err != nil {
		return nil, err
	}
	return datatypes.JSON(raw), nil
}

func toResponse(tmpl *domain.Template) *domain.Response {
	return &domain.Response{
		ID:              tmpl.ID.String(),
		Name:            tmpl.Name,
		DocumentType:    string(tmpl.DocumentType),
		RenderEngine:    string(tmpl.RenderEngine),
		PaperSize:       string(tmpl.PaperSize),
		Orientation:     string(tmpl.Orientation),
		CustomWidthMM:   tmpl.CustomWidthMM,
		CustomHeightMM:  tmpl.CustomHeightMM,
		PrintBackground: tmpl.PrintBackground,
		IsDefault:       tmpl.IsDefault,
		Banded:          tmpl.Banded(),
		CreatedAt:       tmpl.CreatedAt,
		UpdatedAt:       tmpl.UpdatedAt,
	}
}
