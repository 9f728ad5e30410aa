package render

import (
	"github.com/fixwell/docforge/internal/render/band"
	"github.com/fixwell/docforge/internal/render/pathres"
	"github.com/fixwell/docforge/internal/render/raster"
	"github.com/fixwell/docforge/internal/render/service"
	"github.com/fixwell/docforge/internal/render/transform"
	"github.com/fixwell/docforge/internal/render/vector"
	"go.uber.org/fx"
)

var Module = fx.Module("render.service",
	fx.Provide(pathres.NewResolver),
	fx.Provide(pathres.NewExpander),
	fx.Provide(transform.NewTransformer),
	fx.Provide(vector.NewRenderer),
	fx.Provide(band.NewEngine),
	fx.Provide(raster.NewRenderer),
	fx.Provide(service.NewService),
)
