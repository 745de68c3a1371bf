package dashboard

import (
	"github.com/smallbiznis/fieldbill/internal/dashboard/domain"
	"github.com/smallbiznis/fieldbill/internal/dashboard/service"
	"github.com/smallbiznis/fieldbill/internal/gateway"
	"go.uber.org/fx"
)

var Module = fx.Module("dashboard.service",
	fx.Provide(
		func(g *gateway.Gateway) domain.PlatformAPI { return g },
		service.New,
	),
)
