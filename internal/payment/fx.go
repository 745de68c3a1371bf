package payment

import (
	customerdomain "github.com/smallbiznis/fieldbill/internal/customer/domain"
	"github.com/smallbiznis/fieldbill/internal/gateway"
	"github.com/smallbiznis/fieldbill/internal/payment/domain"
	"github.com/smallbiznis/fieldbill/internal/payment/service"
	"go.uber.org/fx"
)

var Module = fx.Module("payment.service",
	fx.Provide(
		func(g *gateway.Gateway) domain.PlatformAPI { return g },
		service.New,
		fx.Annotate(
			func(s domain.Service) customerdomain.CascadePurger { return s },
			fx.ResultTags(`group:"customer.cascades"`),
		),
	),
)
