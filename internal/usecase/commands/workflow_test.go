//go:build unit

package commands_test

import (
	"context"
	"testing"
	"time"

	"tandaro-api/internal/domain/driverapp"
	"tandaro-api/internal/domain/reservation"
	"tandaro-api/internal/domain/user"
	"tandaro-api/internal/domain/vehicle"
	"tandaro-api/internal/infra"
	"tandaro-api/internal/infra/db"
	"tandaro-api/internal/pkg/clock"
	"tandaro-api/internal/usecase/commands"
	"tandaro-api/internal/usecase/shared"
	"tandaro-api/tests/common/builder"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// In-memory unit of work. Within runs the callback against maps instead of a
// transaction; there is no rollback, which is fine because every test asserts
// either the persisted state or the returned error, never both.

type fakeReads struct {
	reservations map[uuid.UUID]*reservation.Reservation
	users        map[uuid.UUID]*user.User
}

func newFakeReads() *fakeReads {
	return &fakeReads{
		reservations: map[uuid.UUID]*reservation.Reservation{},
		users:        map[uuid.UUID]*user.User{},
	}
}

func notFound(msg string) error {
	return infra.WrapRepoErr(msg, nil, infra.KindNotFound)
}

func (f *fakeReads) VehicleByID(context.Context, uuid.UUID) (*vehicle.Vehicle, error) {
	return nil, notFound("vehicle not found")
}

func (f *fakeReads) VehicleByIDForUpdate(context.Context, uuid.UUID) (*vehicle.Vehicle, error) {
	return nil, notFound("vehicle not found")
}

func (f *fakeReads) ActiveSlotsByVehicle(context.Context, uuid.UUID) ([]reservation.BookedSlot, error) {
	return nil, nil
}

func (f *fakeReads) ReservationByID(_ context.Context, id uuid.UUID) (*reservation.Reservation, error) {
	res, ok := f.reservations[id]
	if !ok {
		return nil, notFound("reservation not found")
	}
	return res, nil
}

func (f *fakeReads) ReservationByIDForUpdate(ctx context.Context, id uuid.UUID) (*reservation.Reservation, error) {
	return f.ReservationByID(ctx, id)
}

func (f *fakeReads) UserByID(_ context.Context, id uuid.UUID) (*user.User, error) {
	u, ok := f.users[id]
	if !ok {
		return nil, notFound("user not found")
	}
	return u, nil
}

func (f *fakeReads) ApplicationByID(context.Context, uuid.UUID) (*driverapp.Application, error) {
	return nil, notFound("application not found")
}

func (f *fakeReads) ApplicationByIDForUpdate(context.Context, uuid.UUID) (*driverapp.Application, error) {
	return nil, notFound("application not found")
}

func (f *fakeReads) IdempotencyByKey(context.Context, uuid.UUID, uuid.UUID) (*shared.IdempotencyRecord, error) {
	return nil, notFound("idempotency key not found")
}

type fakeReservationRepo struct {
	reads   *fakeReads
	updates int
}

func (r *fakeReservationRepo) Create(_ context.Context, _ db.DBTX, res *reservation.Reservation) (uuid.UUID, error) {
	r.reads.reservations[res.ID()] = res
	return res.ID(), nil
}

func (r *fakeReservationRepo) Update(_ context.Context, _ db.DBTX, res *reservation.Reservation) error {
	r.reads.reservations[res.ID()] = res
	r.updates++
	return nil
}

type notificationJob struct {
	kind  string
	topic string
}

type fakeNotificationRepo struct {
	jobs []notificationJob
}

func (r *fakeNotificationRepo) CreateJob(_ context.Context, _ db.DBTX, kind, topic string, _ []byte, _ time.Time) error {
	r.jobs = append(r.jobs, notificationJob{kind: kind, topic: topic})
	return nil
}

type fakeVehicleRepo struct{}

func (fakeVehicleRepo) Create(context.Context, db.DBTX, *vehicle.Vehicle) (uuid.UUID, error) {
	return uuid.Nil, nil
}
func (fakeVehicleRepo) Update(context.Context, db.DBTX, *vehicle.Vehicle) error { return nil }
func (fakeVehicleRepo) Delete(context.Context, db.DBTX, uuid.UUID) error        { return nil }

type fakeUserRepo struct{}

func (fakeUserRepo) Create(context.Context, db.DBTX, *user.User) (uuid.UUID, error) {
	return uuid.Nil, nil
}
func (fakeUserRepo) UpdateLastLogin(context.Context, db.DBTX, uuid.UUID) error { return nil }
func (fakeUserRepo) UpdateRole(context.Context, db.DBTX, uuid.UUID, user.Role) error {
	return nil
}

type fakeAppRepo struct{}

func (fakeAppRepo) Create(context.Context, db.DBTX, *driverapp.Application) (uuid.UUID, error) {
	return uuid.Nil, nil
}
func (fakeAppRepo) Update(context.Context, db.DBTX, *driverapp.Application) error { return nil }
func (fakeAppRepo) Delete(context.Context, db.DBTX, uuid.UUID) error              { return nil }

type fakeIdempotencyRepo struct{}

func (fakeIdempotencyRepo) TryInsert(context.Context, db.DBTX, uuid.UUID, uuid.UUID, string, string, time.Time) error {
	return nil
}

func (fakeIdempotencyRepo) UpdateStatusCompleted(context.Context, db.DBTX, uuid.UUID, uuid.UUID, string, uuid.UUID) error {
	return nil
}

type fakeTx struct {
	reads         *fakeReads
	reservations  *fakeReservationRepo
	notifications *fakeNotificationRepo
}

func (t *fakeTx) Reservations() shared.ReservationRepository { return t.reservations }
func (t *fakeTx) Vehicles() shared.VehicleRepository         { return fakeVehicleRepo{} }
func (t *fakeTx) Users() shared.UserRepository               { return fakeUserRepo{} }
func (t *fakeTx) DriverApplications() shared.DriverApplicationRepository {
	return fakeAppRepo{}
}
func (t *fakeTx) Idempotency() shared.IdempotencyRepository   { return fakeIdempotencyRepo{} }
func (t *fakeTx) Notifications() shared.NotificationRepository { return t.notifications }
func (t *fakeTx) Reads() shared.CommandReads                  { return t.reads }
func (t *fakeTx) DB() db.DBTX                                 { return nil }

type fakeUoW struct {
	tx *fakeTx
}

func newFakeUoW() *fakeUoW {
	reads := newFakeReads()
	return &fakeUoW{tx: &fakeTx{
		reads:         reads,
		reservations:  &fakeReservationRepo{reads: reads},
		notifications: &fakeNotificationRepo{},
	}}
}

func (u *fakeUoW) Within(ctx context.Context, fn func(ctx context.Context, tx shared.Tx) error) error {
	return fn(ctx, u.tx)
}

func (u *fakeUoW) WithinReadOnly(ctx context.Context, fn func(ctx context.Context, dbtx db.DBTX) error) error {
	return fn(ctx, nil)
}

func (u *fakeUoW) WithDB(ctx context.Context, fn func(ctx context.Context, dbtx db.DBTX) error) error {
	return fn(ctx, nil)
}

func (u *fakeUoW) CommandReads() shared.CommandReads { return u.tx.reads }

func (u *fakeUoW) add(res *reservation.Reservation) uuid.UUID {
	u.tx.reads.reservations[res.ID()] = res
	return res.ID()
}

func (u *fakeUoW) addDriver() uuid.UUID {
	return u.addUserWithRole(user.RoleDriver)
}

func (u *fakeUoW) addUserWithRole(role user.Role) uuid.UUID {
	email, _ := user.NewEmail(uuid.New().String() + "@example.com")
	name, _ := user.NewName("Jonas Weber")
	phone, _ := user.NewPhone("+49 172 3334455")
	id := uuid.New()
	u.tx.reads.users[id] = user.ReconstructUser(
		id, email, "hash", name, phone, role, nil, true, builder.BaseTime, builder.BaseTime)
	return id
}

func TestWorkflowCommands_Transitions(t *testing.T) {
	t.Parallel()

	newWorkflow := func() (*fakeUoW, commands.WorkflowCommands, *clock.MockClock) {
		uow := newFakeUoW()
		clk := clock.NewMockClock(builder.BaseTime)
		return uow, commands.NewWorkflowCommands(uow, clk), clk
	}

	t.Run("confirm moves pending to confirmed", func(t *testing.T) {
		uow, wf, _ := newWorkflow()
		id := uow.add(builder.NewReservationBuilder().MustBuildDomain())

		require.NoError(t, wf.Confirm(context.Background(), id))

		res := uow.tx.reads.reservations[id]
		assert.Equal(t, reservation.StatusConfirmed, res.Status())
		assert.Equal(t, 1, uow.tx.reservations.updates)
	})

	t.Run("complete from pending is rejected", func(t *testing.T) {
		uow, wf, _ := newWorkflow()
		id := uow.add(builder.NewReservationBuilder().MustBuildDomain())

		err := wf.Complete(context.Background(), id)

		require.ErrorIs(t, err, commands.ErrInvalidTransition)
		assert.Equal(t, reservation.StatusPending, uow.tx.reads.reservations[id].Status())
		assert.Zero(t, uow.tx.reservations.updates, "rejected transition must not persist")
	})

	t.Run("start stamps startedAt exactly once", func(t *testing.T) {
		uow, wf, clk := newWorkflow()
		id := uow.add(builder.NewReservationBuilder().MustBuildDomain())

		require.NoError(t, wf.Start(context.Background(), id))
		started := uow.tx.reads.reservations[id].StartedAt()
		require.NotNil(t, started)
		assert.Equal(t, builder.BaseTime, *started)

		// A later restart attempt must not move the timestamp.
		clk.Add(time.Hour)
		err := wf.Start(context.Background(), id)
		require.ErrorIs(t, err, commands.ErrInvalidTransition)
		assert.Equal(t, builder.BaseTime, *uow.tx.reads.reservations[id].StartedAt())
	})

	t.Run("complete stamps completedAt", func(t *testing.T) {
		uow, wf, clk := newWorkflow()
		id := uow.add(builder.NewReservationBuilder().MustBuildDomain())

		require.NoError(t, wf.Start(context.Background(), id))
		clk.Add(4 * time.Hour)
		require.NoError(t, wf.Complete(context.Background(), id))

		res := uow.tx.reads.reservations[id]
		assert.Equal(t, reservation.StatusCompleted, res.Status())
		require.NotNil(t, res.CompletedAt())
		assert.Equal(t, builder.BaseTime.Add(4*time.Hour), *res.CompletedAt())
	})

	t.Run("terminal reservation rejects every transition", func(t *testing.T) {
		uow, wf, _ := newWorkflow()
		id := uow.add(builder.NewReservationBuilder().MustBuildDomain())
		require.NoError(t, wf.Cancel(context.Background(), id))

		for name, op := range map[string]func() error{
			"confirm":  func() error { return wf.Confirm(context.Background(), id) },
			"start":    func() error { return wf.Start(context.Background(), id) },
			"complete": func() error { return wf.Complete(context.Background(), id) },
			"cancel":   func() error { return wf.Cancel(context.Background(), id) },
		} {
			assert.ErrorIs(t, op(), commands.ErrReservationClosed, name)
		}
	})

	t.Run("cancel enqueues a notification job", func(t *testing.T) {
		uow, wf, _ := newWorkflow()
		id := uow.add(builder.NewReservationBuilder().MustBuildDomain())

		require.NoError(t, wf.Cancel(context.Background(), id))

		require.Len(t, uow.tx.notifications.jobs, 1)
		assert.Equal(t, "booking_cancelled", uow.tx.notifications.jobs[0].topic)
	})

	t.Run("unknown reservation returns not found", func(t *testing.T) {
		_, wf, _ := newWorkflow()

		err := wf.Confirm(context.Background(), uuid.New())
		require.ErrorIs(t, err, commands.ErrReservationNotFound)
	})
}

func TestWorkflowCommands_DriverTransitions(t *testing.T) {
	t.Parallel()

	t.Run("assigned driver can start and complete", func(t *testing.T) {
		uow := newFakeUoW()
		clk := clock.NewMockClock(builder.BaseTime)
		wf := commands.NewWorkflowCommands(uow, clk)

		driverID := uow.addDriver()
		res := builder.NewReservationBuilder().MustBuildDomain()
		require.NoError(t, res.AssignDriver(driverID, "+49 172 3334455", builder.BaseTime))
		id := uow.add(res)

		require.NoError(t, wf.StartByDriver(context.Background(), id, driverID))

		sig := "https://cdn.example.com/sig.png"
		report := commands.CompletionReport{
			Images:       []string{"https://cdn.example.com/1.jpg"},
			SignatureURL: &sig,
			Note:         "Ware unbeschädigt übergeben.",
		}
		require.NoError(t, wf.CompleteByDriver(context.Background(), id, driverID, report))

		got := uow.tx.reads.reservations[id]
		assert.Equal(t, reservation.StatusCompleted, got.Status())
		assert.Equal(t, report.Images, got.Images())
		require.NotNil(t, got.SignatureURL())
		assert.Equal(t, sig, *got.SignatureURL())
	})

	t.Run("foreign driver is rejected", func(t *testing.T) {
		uow := newFakeUoW()
		wf := commands.NewWorkflowCommands(uow, clock.NewMockClock(builder.BaseTime))

		assigned := uow.addDriver()
		other := uow.addDriver()
		res := builder.NewReservationBuilder().MustBuildDomain()
		require.NoError(t, res.AssignDriver(assigned, "+49 172 3334455", builder.BaseTime))
		id := uow.add(res)

		err := wf.StartByDriver(context.Background(), id, other)
		require.ErrorIs(t, err, commands.ErrNotAssignedDriver)
		assert.Equal(t, reservation.StatusPending, uow.tx.reads.reservations[id].Status())
	})
}

func TestWorkflowCommands_Payments(t *testing.T) {
	t.Parallel()

	newWorkflow := func() (*fakeUoW, commands.WorkflowCommands) {
		uow := newFakeUoW()
		return uow, commands.NewWorkflowCommands(uow, clock.NewMockClock(builder.BaseTime))
	}

	t.Run("set amounts derives the payment status", func(t *testing.T) {
		uow, wf := newWorkflow()
		id := uow.add(builder.NewReservationBuilder().MustBuildDomain())

		require.NoError(t, wf.SetAmounts(context.Background(), id, 30000, 15000))

		p := uow.tx.reads.reservations[id].Payment()
		assert.Equal(t, int64(30000), p.Total().Cents())
		assert.Equal(t, int64(15000), p.Paid().Cents())
		assert.Equal(t, reservation.PaymentPartial, p.Status())
	})

	t.Run("recorded payments accumulate up to paid", func(t *testing.T) {
		uow, wf := newWorkflow()
		id := uow.add(builder.NewReservationBuilder().MustBuildDomain())
		require.NoError(t, wf.SetAmounts(context.Background(), id, 30000, 0))

		require.NoError(t, wf.RecordPayment(context.Background(), id, 15000))
		assert.Equal(t, reservation.PaymentPartial, uow.tx.reads.reservations[id].Payment().Status())

		require.NoError(t, wf.RecordPayment(context.Background(), id, 15000))
		assert.Equal(t, reservation.PaymentPaid, uow.tx.reads.reservations[id].Payment().Status())
	})

	t.Run("mark fully paid raises paid to total", func(t *testing.T) {
		uow, wf := newWorkflow()
		id := uow.add(builder.NewReservationBuilder().MustBuildDomain())
		require.NoError(t, wf.SetAmounts(context.Background(), id, 30000, 100))

		require.NoError(t, wf.MarkFullyPaid(context.Background(), id))

		p := uow.tx.reads.reservations[id].Payment()
		assert.Equal(t, p.Total().Cents(), p.Paid().Cents())
		assert.Equal(t, reservation.PaymentPaid, p.Status())
	})

	t.Run("negative amounts are rejected before any load", func(t *testing.T) {
		uow, wf := newWorkflow()
		id := uow.add(builder.NewReservationBuilder().MustBuildDomain())

		require.ErrorIs(t, wf.SetAmounts(context.Background(), id, -1, 0), commands.ErrInvalidAmount)
		require.ErrorIs(t, wf.RecordPayment(context.Background(), id, -500), commands.ErrInvalidAmount)
		assert.Zero(t, uow.tx.reservations.updates)
	})
}
