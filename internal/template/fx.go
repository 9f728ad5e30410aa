package template

import (
	"github.com/fixwell/docforge/internal/template/repository"
	"github.com/fixwell/docforge/internal/template/service"
	"go.uber.org/fx"
)

var Module = fx.Module("template.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.NewService),
)
