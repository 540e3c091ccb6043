package session

import "go.uber.org/fx"

// registerHooks attaches the store to the provider for the app's lifetime
func registerHooks(lc fx.Lifecycle, s *Store) {
	lc.Append(fx.StartStopHook(s.Start, s.Close))
}

// Module provides the session store
var Module = fx.Module("session",
	fx.Provide(NewStore),
	fx.Invoke(registerHooks),
)
