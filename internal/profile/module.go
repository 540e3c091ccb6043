package profile

import "go.uber.org/fx"

// Module provides the profile repository
var Module = fx.Module("profile",
	fx.Provide(NewRepository),
)
