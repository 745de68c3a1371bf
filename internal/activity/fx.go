package activity

import (
	"github.com/smallbiznis/fieldbill/internal/activity/service"
	"go.uber.org/fx"
)

var Module = fx.Module("activity.service",
	fx.Provide(service.New),
)
