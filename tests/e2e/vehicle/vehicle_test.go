//go:build e2e

package vehicle_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"tandaro-api/internal/domain/user"
	"tandaro-api/internal/handler/dto/request"
	"tandaro-api/internal/handler/dto/response"
	"tandaro-api/tests/common/helper"
	"tandaro-api/tests/e2e"
	jwtHelper "tandaro-api/tests/e2e/common/helper"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

const vehiclesURL = "/api/vehicles"

type vehicleSuite struct {
	e2e.SharedSuite
	jwtHelper *jwtHelper.JWTTestHelper

	adminToken    string
	customerToken string
	vehicleID     uuid.UUID
}

func TestVehicleSuite(t *testing.T) {
	t.Parallel()
	suite.Run(t, new(vehicleSuite))
}

func (s *vehicleSuite) SetupSuite() {
	s.SharedSuite.SetupSuite()
	s.jwtHelper = jwtHelper.NewJWTTestHelper(s.DB, s.Config.JWT)
}

func (s *vehicleSuite) SetupSubTest() {
	s.SharedSuite.SetupSubTest()

	t := s.T()
	s.adminToken = s.jwtHelper.CreateAndLoginWithDB(t, s.DB, s.Router, "admin@example.com", string(user.RoleAdmin))
	s.customerToken = s.jwtHelper.CreateAndLoginWithDB(t, s.DB, s.Router, "customer@example.com", string(user.RoleCustomer))

	err := s.DB.QueryRow(t.Context(), "SELECT id FROM vehicles WHERE name = 'Sprinter L2'").Scan(&s.vehicleID)
	require.NoError(t, err)
}

func (s *vehicleSuite) TestPublicList() {
	s.Run("アクティブな車両のみ返す", func() {
		t := s.T()

		// 片方を非アクティブ化
		inactive := false
		w := helper.PerformRequest(t, s.Router, http.MethodPatch,
			fmt.Sprintf("/api/admin/vehicles/%s", s.vehicleID),
			request.UpdateVehicleRequest{IsActive: &inactive}, s.adminToken)
		require.Equal(t, http.StatusNoContent, w.Code, w.Body.String())

		w = helper.PerformRequest(t, s.Router, http.MethodGet, vehiclesURL, nil, "")
		require.Equal(t, http.StatusOK, w.Code)

		var vehicles []*response.VehicleResponse
		require.NoError(t, helper.DecodeResponseBody(t, w.Body, &vehicles))
		require.Len(t, vehicles, 1)
		require.Equal(t, "Caddy Cargo", vehicles[0].Name)

		// 管理者一覧には非アクティブも含まれる
		w = helper.PerformRequest(t, s.Router, http.MethodGet, "/api/admin/vehicles", nil, s.adminToken)
		require.Equal(t, http.StatusOK, w.Code)
		require.NoError(t, helper.DecodeResponseBody(t, w.Body, &vehicles))
		require.Len(t, vehicles, 2)
	})

	s.Run("車両詳細を取得できる", func() {
		t := s.T()

		w := helper.PerformRequest(t, s.Router, http.MethodGet,
			fmt.Sprintf("%s/%s", vehiclesURL, s.vehicleID), nil, "")
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())

		var v response.VehicleResponse
		require.NoError(t, helper.DecodeResponseBody(t, w.Body, &v))
		require.Equal(t, "Sprinter L2", v.Name)
		require.Equal(t, int64(4500), v.PricePerHourCents)
	})

	s.Run("存在しない車両は404を返す", func() {
		t := s.T()

		w := helper.PerformRequest(t, s.Router, http.MethodGet,
			fmt.Sprintf("%s/%s", vehiclesURL, uuid.New()), nil, "")
		require.Equal(t, http.StatusNotFound, w.Code)
	})
}

func (s *vehicleSuite) TestAdminCRUD() {
	s.Run("車両を作成できる", func() {
		t := s.T()

		w := helper.PerformRequest(t, s.Router, http.MethodPost, "/api/admin/vehicles",
			request.CreateVehicleRequest{
				Name:              "Crafter L3H2",
				Description:       "Großer Kastenwagen",
				PricePerHourCents: 5500,
				CapacityNote:      "14 cbm",
			}, s.adminToken)
		require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

		var res struct {
			ID string `json:"id"`
		}
		require.NoError(t, helper.DecodeResponseBody(t, w.Body, &res))
		require.NotEmpty(t, res.ID)
	})

	s.Run("顧客は車両を作成できない", func() {
		t := s.T()

		w := helper.PerformRequest(t, s.Router, http.MethodPost, "/api/admin/vehicles",
			request.CreateVehicleRequest{Name: "Nope", PricePerHourCents: 100}, s.customerToken)
		require.Equal(t, http.StatusForbidden, w.Code)
	})

	s.Run("名前なしの作成は400を返す", func() {
		t := s.T()

		w := helper.PerformRequest(t, s.Router, http.MethodPost, "/api/admin/vehicles",
			request.CreateVehicleRequest{PricePerHourCents: 100}, s.adminToken)
		require.Equal(t, http.StatusBadRequest, w.Code)
	})

	s.Run("部分更新", func() {
		t := s.T()

		newPrice := int64(4900)
		w := helper.PerformRequest(t, s.Router, http.MethodPatch,
			fmt.Sprintf("/api/admin/vehicles/%s", s.vehicleID),
			request.UpdateVehicleRequest{PricePerHourCents: &newPrice}, s.adminToken)
		require.Equal(t, http.StatusNoContent, w.Code, w.Body.String())

		var price int64
		var name string
		err := s.DB.QueryRow(t.Context(),
			"SELECT price_per_hour_cents, name FROM vehicles WHERE id = $1", s.vehicleID).Scan(&price, &name)
		require.NoError(t, err)
		require.Equal(t, newPrice, price)
		require.Equal(t, "Sprinter L2", name, "指定していないフィールドは変わらないべき")
	})

	s.Run("存在しない車両の更新は404を返す", func() {
		t := s.T()

		name := "Ghost"
		w := helper.PerformRequest(t, s.Router, http.MethodPatch,
			fmt.Sprintf("/api/admin/vehicles/%s", uuid.New()),
			request.UpdateVehicleRequest{Name: &name}, s.adminToken)
		require.Equal(t, http.StatusNotFound, w.Code)
	})

	s.Run("予約のない車両は削除できる", func() {
		t := s.T()

		w := helper.PerformRequest(t, s.Router, http.MethodDelete,
			fmt.Sprintf("/api/admin/vehicles/%s", s.vehicleID), nil, s.adminToken)
		require.Equal(t, http.StatusNoContent, w.Code, w.Body.String())

		var count int
		err := s.DB.QueryRow(t.Context(), "SELECT count(*) FROM vehicles WHERE id = $1", s.vehicleID).Scan(&count)
		require.NoError(t, err)
		require.Zero(t, count)
	})

	s.Run("予約のある車両は削除できない", func() {
		t := s.T()

		s.book(t, 2, 9)

		w := helper.PerformRequest(t, s.Router, http.MethodDelete,
			fmt.Sprintf("/api/admin/vehicles/%s", s.vehicleID), nil, s.adminToken)
		require.Equal(t, http.StatusConflict, w.Code, "予約履歴のある車両の削除は409を返すべき")
	})
}

func (s *vehicleSuite) TestAvailability() {
	s.Run("予約済みスロットがブロックとして返る", func() {
		t := s.T()

		start := s.book(t, 2, 9)

		w := helper.PerformRequest(t, s.Router, http.MethodGet,
			fmt.Sprintf("%s/%s/availability?from=%s&to=%s",
				vehiclesURL, s.vehicleID,
				start.Add(-time.Hour).Format(time.RFC3339),
				start.Add(6*time.Hour).Format(time.RFC3339)),
			nil, "")
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())

		var slots []response.BlockedSlotResponse
		require.NoError(t, helper.DecodeResponseBody(t, w.Body, &slots))
		require.Len(t, slots, 1)
		require.True(t, slots[0].Start.Equal(start))
		require.True(t, slots[0].End.Equal(start.Add(2*time.Hour)))
	})

	s.Run("キャンセル済み予約はブロックにならない", func() {
		t := s.T()

		start := s.book(t, 2, 9)

		var reservationID uuid.UUID
		err := s.DB.QueryRow(t.Context(), "SELECT id FROM reservations LIMIT 1").Scan(&reservationID)
		require.NoError(t, err)

		w := helper.PerformRequest(t, s.Router, http.MethodPost,
			fmt.Sprintf("/api/bookings/%s/cancel", reservationID), nil, s.customerToken)
		require.Equal(t, http.StatusNoContent, w.Code)

		w = helper.PerformRequest(t, s.Router, http.MethodGet,
			fmt.Sprintf("%s/%s/availability?from=%s", vehiclesURL, s.vehicleID,
				start.Add(-time.Hour).Format(time.RFC3339)),
			nil, "")
		require.Equal(t, http.StatusOK, w.Code)

		var slots []response.BlockedSlotResponse
		require.NoError(t, helper.DecodeResponseBody(t, w.Body, &slots))
		require.Empty(t, slots)
	})

	s.Run("カレンダーは営業時間の枠を返す", func() {
		t := s.T()

		start := s.book(t, 2, 10)

		day := start.Format("2006-01-02")
		w := helper.PerformRequest(t, s.Router, http.MethodGet,
			fmt.Sprintf("%s/%s/calendar?from=%sT00:00:00Z&to=%sT23:59:59Z", vehiclesURL, s.vehicleID, day, day),
			nil, "")
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())

		var days []response.DayAvailabilityResponse
		require.NoError(t, helper.DecodeResponseBody(t, w.Body, &days))
		require.Len(t, days, 1)
		require.Equal(t, day, days[0].Date)
		require.Len(t, days[0].Hours, s.Config.Booking.ClosingHour-s.Config.Booking.OpeningHour)

		for _, cell := range days[0].Hours {
			blocked := cell.Hour >= 10 && cell.Hour < 12
			require.Equal(t, !blocked, cell.Available, "hour %d", cell.Hour)
		}
	})

	s.Run("toがfromより前なら400を返す", func() {
		t := s.T()

		w := helper.PerformRequest(t, s.Router, http.MethodGet,
			fmt.Sprintf("%s/%s/availability?from=2030-06-02&to=2030-06-01", vehiclesURL, s.vehicleID),
			nil, "")
		require.Equal(t, http.StatusBadRequest, w.Code)
	})

	s.Run("存在しない車両の空き照会は404を返す", func() {
		t := s.T()

		w := helper.PerformRequest(t, s.Router, http.MethodGet,
			fmt.Sprintf("%s/%s/availability", vehiclesURL, uuid.New()), nil, "")
		require.Equal(t, http.StatusNotFound, w.Code)
	})
}

// book creates a 2 hour booking on the shared vehicle and returns its start.
func (s *vehicleSuite) book(t *testing.T, daysAhead, hour int) time.Time {
	t.Helper()

	day := time.Now().UTC().AddDate(0, 0, daysAhead)
	start := time.Date(day.Year(), day.Month(), day.Day(), hour, 0, 0, 0, time.UTC)

	body := request.CreateBookingRequest{
		VehicleID:        s.vehicleID,
		StartTime:        start,
		DurationHours:    2,
		PickupLocation:   "Ringstraße 5, Köln",
		DeliveryLocation: "Am Hafen 2, Düsseldorf",
	}
	jsonBody, err := json.Marshal(body)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/api/bookings", bytes.NewBuffer(jsonBody))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+s.customerToken)
	req.Header.Set("Idempotency-Key", uuid.New().String())

	w := httptest.NewRecorder()
	s.Router.ServeHTTP(w, req)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	return start
}
