package credentials

import (
	"github.com/smallbiznis/fieldbill/internal/credentials/service"
	"go.uber.org/fx"
)

var Module = fx.Module("credentials.service",
	fx.Provide(service.New),
)
