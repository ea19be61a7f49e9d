//go:build unit

package api_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	nethttptest "net/http/httptest"
	"testing"
	"time"

	"tandaro-api/internal/domain/user"
	"tandaro-api/internal/handler/api"
	reqdto "tandaro-api/internal/handler/dto/request"
	resdto "tandaro-api/internal/handler/dto/response"
	"tandaro-api/internal/usecase/commands"
	"tandaro-api/internal/usecase/queries"
	"tandaro-api/tests/common/httptest"
	commandsmock "tandaro-api/tests/mock/commands"
	queriesmock "tandaro-api/tests/mock/queries"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"
)

type BookingHandlerTestSuite struct {
	suite.Suite
	router       *gin.Engine
	mockCtrl     *gomock.Controller
	mockCommands *commandsmock.MockBookingCommands
	mockQueries  *queriesmock.MockReservationQueries
	customerID   uuid.UUID
}

func (s *BookingHandlerTestSuite) SetupTest() {
	gin.SetMode(gin.TestMode)
	s.router = gin.New()

	s.mockCtrl = gomock.NewController(s.T())
	s.mockCommands = commandsmock.NewMockBookingCommands(s.mockCtrl)
	s.mockQueries = queriesmock.NewMockReservationQueries(s.mockCtrl)
	s.customerID = uuid.New()

	handler := api.NewBookingHandler(s.mockCommands, s.mockQueries)

	// 認証ミドルウェアの代わりにコンテキストへ直接ユーザーを詰める
	authed := s.router.Group("", func(c *gin.Context) {
		c.Set("user_id", s.customerID)
		c.Set("user_role", user.RoleCustomer)
	})
	authed.POST("/bookings", handler.Create)
	authed.GET("/bookings", handler.List)
	authed.GET("/bookings/:id", handler.Get)
	authed.POST("/bookings/:id/cancel", handler.Cancel)
}

func (s *BookingHandlerTestSuite) TearDownTest() {
	s.mockCtrl.Finish()
}

func TestBookingHandlerSuite(t *testing.T) {
	suite.Run(t, new(BookingHandlerTestSuite))
}

// performCreate sends a booking request with the Idempotency-Key header,
// which the shared helper does not support.
func (s *BookingHandlerTestSuite) performCreate(body any, idempotencyKey string) *nethttptest.ResponseRecorder {
	s.T().Helper()

	jsonBody, err := json.Marshal(body)
	require.NoError(s.T(), err)

	req := nethttptest.NewRequest(http.MethodPost, "/bookings", bytes.NewBuffer(jsonBody))
	req.Header.Set("Content-Type", "application/json")
	if idempotencyKey != "" {
		req.Header.Set("Idempotency-Key", idempotencyKey)
	}

	w := nethttptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func (s *BookingHandlerTestSuite) bookingRequest() reqdto.CreateBookingRequest {
	return reqdto.CreateBookingRequest{
		VehicleID:        uuid.New(),
		StartTime:        time.Date(2030, 6, 2, 9, 0, 0, 0, time.UTC),
		DurationHours:    4,
		PickupLocation:   "Lagerstraße 12, München",
		DeliveryLocation: "Hafenweg 3, Hamburg",
	}
}

func (s *BookingHandlerTestSuite) view(id uuid.UUID, status string) *queries.ReservationView {
	return &queries.ReservationView{
		ID:              id,
		VehicleID:       uuid.New(),
		VehicleName:     "Sprinter L2",
		CustomerID:      s.customerID,
		StartTime:       time.Date(2030, 6, 2, 9, 0, 0, 0, time.UTC),
		DurationHours:   4,
		EndTime:         time.Date(2030, 6, 2, 13, 0, 0, 0, time.UTC),
		Status:          status,
		PaymentStatus:   "unpaid",
		TotalPriceCents: 18000,
	}
}

func (s *BookingHandlerTestSuite) TestCreate() {
	reqBody := s.bookingRequest()

	s.Run("success: fresh request returns 201 Created", func() {
		key := uuid.New()
		reservationID := uuid.New()
		s.mockCommands.EXPECT().
			CreateBooking(gomock.Any(), reqBody.ToCommand(), s.customerID, key).
			Return(&commands.CreateBookingResult{Reservation: s.view(reservationID, "pending")}, nil).
			Times(1)

		w := s.performCreate(reqBody, key.String())

		var res resdto.ReservationResponse
		httptest.AssertSuccessResponse(s.T(), w, http.StatusCreated, &res)
		s.Equal(reservationID, res.ID)
		s.Equal("pending", res.Status)
		s.Equal(int64(18000), res.TotalPriceCents)
	})

	s.Run("success: replayed request returns 200 OK with the original reservation", func() {
		key := uuid.New()
		reservationID := uuid.New()
		s.mockCommands.EXPECT().
			CreateBooking(gomock.Any(), reqBody.ToCommand(), s.customerID, key).
			Return(&commands.CreateBookingResult{Reservation: s.view(reservationID, "pending"), IsReplayed: true}, nil).
			Times(1)

		w := s.performCreate(reqBody, key.String())

		var res resdto.ReservationResponse
		httptest.AssertSuccessResponse(s.T(), w, http.StatusOK, &res)
		s.Equal(reservationID, res.ID)
	})

	s.Run("failure: missing idempotency key returns 400", func() {
		w := s.performCreate(reqBody, "")
		s.Equal(http.StatusBadRequest, w.Code)
	})

	s.Run("failure: malformed idempotency key returns 400", func() {
		w := s.performCreate(reqBody, "not-a-uuid")
		s.Equal(http.StatusBadRequest, w.Code)
	})

	s.Run("failure: command errors map to HTTP statuses", func() {
		cases := []struct {
			name       string
			err        error
			wantStatus int
		}{
			{"unknown vehicle", commands.ErrVehicleNotFound, http.StatusNotFound},
			{"inactive vehicle", commands.ErrVehicleInactive, http.StatusConflict},
			{"slot conflict", commands.ErrSlotConflict, http.StatusConflict},
			{"slot in the past", commands.ErrSlotInPast, http.StatusBadRequest},
			{"duration too long", commands.ErrDurationTooLong, http.StatusBadRequest},
			{"same key different payload", commands.ErrDuplicateBooking, http.StatusConflict},
			{"key still processing", commands.ErrIdempotencyInProgress, http.StatusConflict},
			{"domain validation", commands.ErrDomainValidation, http.StatusUnprocessableEntity},
		}

		for _, tc := range cases {
			s.Run(tc.name, func() {
				key := uuid.New()
				s.mockCommands.EXPECT().
					CreateBooking(gomock.Any(), reqBody.ToCommand(), s.customerID, key).
					Return(nil, tc.err).Times(1)

				w := s.performCreate(reqBody, key.String())
				s.Equal(tc.wantStatus, w.Code)
			})
		}
	})

	s.Run("failure: missing duration returns 400 before the command runs", func() {
		body := map[string]any{
			"vehicle_id":        uuid.New().String(),
			"start_time":        "2030-06-02T09:00:00Z",
			"pickup_location":   "Lagerstraße 12, München",
			"delivery_location": "Hafenweg 3, Hamburg",
		}

		w := s.performCreate(body, uuid.New().String())
		s.Equal(http.StatusBadRequest, w.Code)
	})
}

func (s *BookingHandlerTestSuite) TestGet() {
	s.Run("success: returns the reservation view", func() {
		id := uuid.New()
		s.mockQueries.EXPECT().
			GetByID(gomock.Any(), s.customerID, string(user.RoleCustomer), id).
			Return(s.view(id, "confirmed"), nil).Times(1)

		w := httptest.PerformRequest(s.T(), s.router, http.MethodGet, "/bookings/"+id.String(), nil, "")

		var res resdto.ReservationResponse
		httptest.AssertSuccessResponse(s.T(), w, http.StatusOK, &res)
		s.Equal(id, res.ID)
		s.Equal("Sprinter L2", res.VehicleName)
	})

	s.Run("failure: unknown reservation returns 404", func() {
		id := uuid.New()
		s.mockQueries.EXPECT().
			GetByID(gomock.Any(), s.customerID, string(user.RoleCustomer), id).
			Return(nil, queries.ErrReservationNotFound).Times(1)

		w := httptest.PerformRequest(s.T(), s.router, http.MethodGet, "/bookings/"+id.String(), nil, "")
		s.Equal(http.StatusNotFound, w.Code)
	})

	s.Run("failure: malformed id returns 400", func() {
		w := httptest.PerformRequest(s.T(), s.router, http.MethodGet, "/bookings/not-a-uuid", nil, "")
		s.Equal(http.StatusBadRequest, w.Code)
	})
}

func (s *BookingHandlerTestSuite) TestList() {
	s.Run("success: returns items and a cursor for the next page", func() {
		items := []*queries.ReservationListItem{
			{ID: uuid.New(), VehicleName: "Sprinter L2", Status: "pending"},
			{ID: uuid.New(), VehicleName: "Caddy Cargo", Status: "completed"},
		}
		next := &queries.Cursor{After: "v1-opaque-cursor"}
		s.mockQueries.EXPECT().
			ListByCustomer(gomock.Any(), s.customerID, nil, 2).
			Return(items, next, nil).Times(1)

		w := httptest.PerformRequest(s.T(), s.router, http.MethodGet, "/bookings?limit=2", nil, "")

		var res resdto.ReservationPageResponse
		httptest.AssertSuccessResponse(s.T(), w, http.StatusOK, &res)
		s.Len(res.Items, 2)
		s.Require().NotNil(res.NextCursor)
		s.Equal("v1-opaque-cursor", *res.NextCursor)
	})

	s.Run("success: last page has no cursor", func() {
		s.mockQueries.EXPECT().
			ListByCustomer(gomock.Any(), s.customerID, &queries.Cursor{After: "page-two"}, 0).
			Return([]*queries.ReservationListItem{}, nil, nil).Times(1)

		w := httptest.PerformRequest(s.T(), s.router, http.MethodGet, "/bookings?cursor=page-two", nil, "")

		var res resdto.ReservationPageResponse
		httptest.AssertSuccessResponse(s.T(), w, http.StatusOK, &res)
		s.Empty(res.Items)
		s.Nil(res.NextCursor)
	})

	s.Run("failure: undecodable cursor returns 400", func() {
		s.mockQueries.EXPECT().
			ListByCustomer(gomock.Any(), s.customerID, &queries.Cursor{After: "garbage"}, 0).
			Return(nil, nil, queries.ErrInvalidCursor).Times(1)

		w := httptest.PerformRequest(s.T(), s.router, http.MethodGet, "/bookings?cursor=garbage", nil, "")
		s.Equal(http.StatusBadRequest, w.Code)
	})

	s.Run("failure: non-numeric limit returns 400", func() {
		w := httptest.PerformRequest(s.T(), s.router, http.MethodGet, "/bookings?limit=abc", nil, "")
		s.Equal(http.StatusBadRequest, w.Code)
	})
}

func (s *BookingHandlerTestSuite) TestCancel() {
	s.Run("success: returns 204 No Content", func() {
		id := uuid.New()
		s.mockCommands.EXPECT().
			CancelOwn(gomock.Any(), id, s.customerID).
			Return(nil).Times(1)

		w := httptest.PerformRequest(s.T(), s.router, http.MethodPost, "/bookings/"+id.String()+"/cancel", nil, "")
		s.Equal(http.StatusNoContent, w.Code)
	})

	s.Run("failure: not the owner's reservation returns 404", func() {
		id := uuid.New()
		s.mockCommands.EXPECT().
			CancelOwn(gomock.Any(), id, s.customerID).
			Return(commands.ErrReservationNotFound).Times(1)

		w := httptest.PerformRequest(s.T(), s.router, http.MethodPost, "/bookings/"+id.String()+"/cancel", nil, "")
		s.Equal(http.StatusNotFound, w.Code)
	})

	s.Run("failure: closed reservation returns 409", func() {
		id := uuid.New()
		s.mockCommands.EXPECT().
			CancelOwn(gomock.Any(), id, s.customerID).
			Return(commands.ErrReservationClosed).Times(1)

		w := httptest.PerformRequest(s.T(), s.router, http.MethodPost, "/bookings/"+id.String()+"/cancel", nil, "")
		s.Equal(http.StatusConflict, w.Code)
	})
}
