package bootstrap

import (
	"tandaro-api/internal/pkg/config"

	"go.uber.org/fx"
)

// ConfigModule loads the process configuration from the environment once,
// before anything that depends on it.
var ConfigModule = fx.Module("config",
	fx.Provide(
		config.LoadConfig,
	),
)
