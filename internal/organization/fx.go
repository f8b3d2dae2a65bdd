package organization

import (
	"github.com/oneeighty/connect/internal/organization/repository"
	"github.com/oneeighty/connect/internal/organization/service"
	"go.uber.org/fx"
)

var Module = fx.Module("organization.service",
	fx.Provide(repository.NewRepository),
	fx.Provide(service.NewService),
)
