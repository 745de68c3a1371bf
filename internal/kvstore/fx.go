package kvstore

import "go.uber.org/fx"

var Module = fx.Module("kvstore",
	fx.Provide(Provide),
)
