package invoice

import (
	customerdomain "github.com/smallbiznis/fieldbill/internal/customer/domain"
	"github.com/smallbiznis/fieldbill/internal/gateway"
	"github.com/smallbiznis/fieldbill/internal/invoice/domain"
	"github.com/smallbiznis/fieldbill/internal/invoice/service"
	"go.uber.org/fx"
)

var Module = fx.Module("invoice.service",
	fx.Provide(
		func(g *gateway.Gateway) domain.PlatformAPI { return g },
		service.New,
		fx.Annotate(
			func(s domain.Service) customerdomain.CascadePurger { return s },
			fx.ResultTags(`group:"customer.cascades"`),
		),
	),
)
