package audit

import (
	"github.com/fixwell/docforge/internal/audit/repository"
	"go.uber.org/fx"
)

var Module = fx.Module("audit.repository",
	fx.Provide(repository.Provide),
)
