package record

import (
	"github.com/fixwell/docforge/internal/record/repository"
	"github.com/fixwell/docforge/internal/record/service"
	"go.uber.org/fx"
)

var Module = fx.Module("record.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.NewService),
)
