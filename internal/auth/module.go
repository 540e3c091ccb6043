package auth

import "go.uber.org/fx"

// Module provides the auth service
var Module = fx.Module("auth",
	fx.Provide(NewService),
)
