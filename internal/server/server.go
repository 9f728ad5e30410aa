package server

import (
	"context"
	"net/http"

	"github.com/fixwell/docforge/internal/config"
	"github.com/fixwell/docforge/internal/notify"
	"github.com/fixwell/docforge/internal/observability/logger"
	recorddomain "github.com/fixwell/docforge/internal/record/domain"
	renderdomain "github.com/fixwell/docforge/internal/render/domain"
	"github.com/fixwell/docforge/internal/render/transform"
	templatedomain "github.com/fixwell/docforge/internal/template/domain"
	"github.com/gin-gonic/gin"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Server struct {
	cfg config.Config
	db  *gorm.DB
	log *zap.Logger

	templateSvc templatedomain.Service
	recordSvc   recorddomain.Service
	renderSvc   renderdomain.Service
	transformer *transform.Transformer
	mailer      notify.Mailer
}

type ServerParam struct {
	fx.In

	Cfg config.Config
	DB  *gorm.DB
	Log *zap.Logger

	TemplateSvc templatedomain.Service
	RecordSvc   recorddomain.Service
	RenderSvc   renderdomain.Service
	Transformer *transform.Transformer
	Mailer      notify.Mailer
}

func NewServer(p ServerParam) *Server {
	return &Server{
		cfg: p.Cfg,
		db:  p.DB,
		log: p.Log.Named("server"),

		templateSvc: p.TemplateSvc,
		recordSvc:   p.RecordSvc,
		renderSvc:   p.RenderSvc,
		transformer: p.Transformer,
		mailer:      p.Mailer,
	}
}

func NewEngine() *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()
	engine.Use(gin.Recovery())
	engine.Use(logger.GinMiddleware(logger.MiddlewareConfig{
		SkipPaths: []string{"/healthz"},
	}))
	return engine
}

func (s *Server) RegisterRoutes(engine *gin.Engine) {
	engine.GET("/healthz", s.Healthz)

	api := engine.Group("/api")
	{
		templates := api.Group("/templates")
		templates.POST("", s.CreateTemplate)
		templates.GET("", s.ListTemplates)
		templates.GET("/:id", s.GetTemplate)
		templates.PATCH("/:id", s.UpdateTemplate)
		templates.POST("/:id/default", s.SetDefaultTemplate)

		records := api.Group("/records")
		records.GET("/invoices/:id", s.GetInvoiceView)
		records.GET("/repair-jobs/:id", s.GetRepairJobView)

		documents := api.Group("/documents")
		documents.GET("/:templateId/:dataId/render", s.RenderDocument)
		documents.POST("/:templateId/:dataId/email", s.EmailDocument)
	}
}

func (s *Server) Healthz(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func RunHTTP(lc fx.Lifecycle, cfg config.Config, log *zap.Logger, srv *Server, engine *gin.Engine) {
	srv.RegisterRoutes(engine)

	httpSrv := &http.Server{
		Addr:    cfg.HTTP.Addr,
		Handler: engine,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			log.Info("http server starting", zap.String("addr", cfg.HTTP.Addr))
			go func() {
				if err := httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					log.Error("http server stopped", zap.Error(err))
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			return httpSrv.Shutdown(ctx)
		},
	})
}

var Module = fx.Module("server",
	fx.Provide(NewEngine),
	fx.Provide(NewServer),
	fx.Invoke(RunHTTP),
)
