package components

import (
	"tandaro-api/internal/infra/db"
	"tandaro-api/internal/infra/readstore"
	"tandaro-api/internal/infra/uow"
	"tandaro-api/internal/usecase/queries"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/fx"
)

var PersistenceModule = fx.Module("persistence",
	baseOption,
	readstoreModule,
	uowModule,
)

var baseOption = fx.Provide(
	NewDBTX,
)

// The read stores run outside transactions on the shared pool. The write
// side never appears here: repositories are reachable only through the
// unit of work.
var readstoreModule = fx.Module("persistence/readstore",
	fx.Provide(
		fx.Annotate(
			readstore.NewReservationReadStore,
			fx.As(new(queries.ReservationViewRepo)),
			fx.As(new(queries.DriverJobRepo)),
			fx.As(new(queries.BlockedSlotRepo)),
		),
		fx.Annotate(
			readstore.NewVehicleReadStore,
			fx.As(new(queries.VehicleViewRepo)),
			fx.As(new(queries.VehicleExistsRepo)),
		),
		fx.Annotate(
			readstore.NewUserReadStore,
			fx.As(new(queries.UserReadStore)),
		),
		fx.Annotate(
			readstore.NewDriverApplicationReadStore,
			fx.As(new(queries.DriverApplicationViewRepo)),
		),
	),
)

var uowModule = fx.Module("persistence/uow",
	fx.Provide(
		uow.NewPostgresUoW,
	),
)

func NewDBTX(pool *pgxpool.Pool) db.DBTX {
	return pool
}
