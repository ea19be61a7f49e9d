package components

import (
	"tandaro-api/internal/domain/reservation"
	"tandaro-api/internal/notify"
	"tandaro-api/internal/pkg/clock"
	"tandaro-api/internal/pkg/config"
	"tandaro-api/internal/usecase/commands"
	"tandaro-api/internal/usecase/queries"

	"go.uber.org/fx"
)

var UseCaseModule = fx.Module("usecase",
	usecaseBaseOption,
	usecaseQueriesModule,
	usecaseValidatorsModule,
	usecaseCommandsModule,
)

var usecaseBaseOption = fx.Provide(
	clock.NewRealClock,
	fx.Annotate(
		reservation.NewHourlyPriceCalculator,
		fx.As(new(reservation.PriceCalculator)),
	),
	reservation.NewFactory,
	func(cfg config.Config) config.BookingConfig { return cfg.Booking },
	func(cfg config.Config) config.CookieConfig { return cfg.Cookie },
	func(cfg config.Config) config.NotifyConfig { return cfg.Notify },
)

var usecaseCommandsModule = fx.Module("usecase/commands",
	fx.Provide(
		commands.NewAuthCommands,
		commands.NewBookingCommands,
		commands.NewWorkflowCommands,
		notify.NewHub,
		func(h *notify.Hub) commands.AssignmentNotifier { return h },
		commands.NewAssignmentCommands,
		commands.NewVehicleCommands,
		commands.NewDriverApplicationCommands,
	),
)

var usecaseQueriesModule = fx.Module("usecase/queries",
	fx.Provide(
		queries.NewUserQueries,
		queries.NewReservationQueries,
		queries.NewVehicleQueries,
		queries.NewAvailabilityQueries,
		queries.NewDriverJobQueries,
		queries.NewDriverApplicationQueries,
	),
)

var usecaseValidatorsModule = fx.Module("usecase/validators",
	fx.Provide(
		commands.NewTokenValidator,
	),
)
