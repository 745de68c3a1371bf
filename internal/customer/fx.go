package customer

import (
	"github.com/smallbiznis/fieldbill/internal/customer/domain"
	"github.com/smallbiznis/fieldbill/internal/customer/service"
	"github.com/smallbiznis/fieldbill/internal/gateway"
	"go.uber.org/fx"
)

var Module = fx.Module("customer.service",
	fx.Provide(
		func(g *gateway.Gateway) domain.PlatformAPI { return g },
		service.New,
	),
)
