package components

import (
	"tandaro-api/internal/handler"
	"tandaro-api/internal/handler/api"
	"tandaro-api/internal/handler/middleware"

	"go.uber.org/fx"
)

var HandlerModule = fx.Module("handler",
	fx.Provide(
		api.NewAuthHandler,
		api.NewVehicleHandler,
		api.NewBookingHandler,
		api.NewAdminReservationHandler,
		api.NewDriverHandler,
		api.NewDriverApplicationHandler,
		middleware.NewAuthMiddleware,
		NewHandlers,
	),
	fx.Invoke(handler.NewRouter),
)

func NewHandlers(
	auth *api.AuthHandler,
	vehicle *api.VehicleHandler,
	booking *api.BookingHandler,
	adminReservation *api.AdminReservationHandler,
	driver *api.DriverHandler,
	driverApplication *api.DriverApplicationHandler,
) handler.Handlers {
	return handler.Handlers{
		Auth:              auth,
		Vehicle:           vehicle,
		Booking:           booking,
		AdminReservation:  adminReservation,
		Driver:            driver,
		DriverApplication: driverApplication,
	}
}
