package providers

import (
	"go.uber.org/fx"

	"github.com/oneeighty/connect/internal/providers/ai"
	"github.com/oneeighty/connect/internal/providers/email"
)

var Module = fx.Module("providers",
	ai.Module,
	email.Module,
)
