//go:build e2e

package booking_test

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

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

const bookingsURL = "/api/bookings"

type bookingSuite struct {
	e2e.SharedSuite
	jwtHelper *jwtHelper.JWTTestHelper

	customerToken string
	otherToken    string
	adminToken    string
	vehicleID     uuid.UUID
}

func TestBookingSuite(t *testing.T) {
	t.Parallel()
	suite.Run(t, new(bookingSuite))
}

func (s *bookingSuite) SetupSuite() {
	s.SharedSuite.SetupSuite()
	s.jwtHelper = jwtHelper.NewJWTTestHelper(s.DB, s.Config.JWT)
}

func (s *bookingSuite) SetupSubTest() {
	s.SharedSuite.SetupSubTest()

	t := s.T()
	s.customerToken = s.jwtHelper.CreateAndLoginWithDB(t, s.DB, s.Router, "customer@example.com", string(user.RoleCustomer))
	s.otherToken = s.jwtHelper.CreateAndLoginWithDB(t, s.DB, s.Router, "other@example.com", string(user.RoleCustomer))
	s.adminToken = s.jwtHelper.CreateAndLoginWithDB(t, s.DB, s.Router, "admin@example.com", string(user.RoleAdmin))

	// 参照データから予約対象の車両を取得
	err := s.DB.QueryRow(t.Context(), "SELECT id FROM vehicles WHERE name = 'Sprinter L2'").Scan(&s.vehicleID)
	require.NoError(t, err)
}

// performBooking sends POST /api/bookings with the Idempotency-Key header.
func performBooking(t *testing.T, router *gin.Engine, body any, authToken, idempotencyKey string) *httptest.ResponseRecorder {
	t.Helper()

	jsonBody, err := json.Marshal(body)
	require.NoError(t, err, "Failed to encode request body to JSON")

	req := httptest.NewRequest(http.MethodPost, bookingsURL, bytes.NewBuffer(jsonBody))
	req.Header.Set("Content-Type", "application/json")
	if authToken != "" {
		req.Header.Set("Authorization", "Bearer "+authToken)
	}
	if idempotencyKey != "" {
		req.Header.Set("Idempotency-Key", idempotencyKey)
	}

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

// futureSlot returns a whole-hour start time safely in the future.
func futureSlot(days int, hour int) time.Time {
	day := time.Now().UTC().AddDate(0, 0, days)
	return time.Date(day.Year(), day.Month(), day.Day(), hour, 0, 0, 0, time.UTC)
}

func (s *bookingSuite) bookingRequest(start time.Time, durationHours float64) request.CreateBookingRequest {
	return request.CreateBookingRequest{
		VehicleID:        s.vehicleID,
		StartTime:        start,
		DurationHours:    durationHours,
		PickupLocation:   "Hauptstraße 12, Berlin",
		DeliveryLocation: "Lagerweg 3, Potsdam",
	}
}

func (s *bookingSuite) TestCreateBooking() {
	tests := []struct {
		name           string
		buildRequest   func() request.CreateBookingRequest
		token          func() string
		idempotencyKey string
		expectedStatus int
		description    string
	}{
		{
			name: "正常な予約作成",
			buildRequest: func() request.CreateBookingRequest {
				return s.bookingRequest(futureSlot(2, 9), 4)
			},
			token:          func() string { return s.customerToken },
			idempotencyKey: uuid.New().String(),
			expectedStatus: http.StatusCreated,
			description:    "有効なリクエストで予約が作成されること",
		},
		{
			name: "存在しない車両",
			buildRequest: func() request.CreateBookingRequest {
				req := s.bookingRequest(futureSlot(2, 9), 4)
				req.VehicleID = uuid.New()
				return req
			},
			token:          func() string { return s.customerToken },
			idempotencyKey: uuid.New().String(),
			expectedStatus: http.StatusNotFound,
			description:    "存在しない車両は予約できないこと",
		},
		{
			name: "過去の開始時刻",
			buildRequest: func() request.CreateBookingRequest {
				return s.bookingRequest(time.Now().UTC().Add(-24*time.Hour), 4)
			},
			token:          func() string { return s.customerToken },
			idempotencyKey: uuid.New().String(),
			expectedStatus: http.StatusBadRequest,
			description:    "過去のスロットは拒否されること",
		},
		{
			name: "上限を超える利用時間",
			buildRequest: func() request.CreateBookingRequest {
				return s.bookingRequest(futureSlot(2, 8), float64(s.Config.Booking.MaxDurationHours)+1)
			},
			token:          func() string { return s.customerToken },
			idempotencyKey: uuid.New().String(),
			expectedStatus: http.StatusBadRequest,
			description:    "利用時間の上限を超える予約は拒否されること",
		},
		{
			name: "Idempotency-Keyなし",
			buildRequest: func() request.CreateBookingRequest {
				return s.bookingRequest(futureSlot(2, 9), 4)
			},
			token:          func() string { return s.customerToken },
			idempotencyKey: "",
			expectedStatus: http.StatusBadRequest,
			description:    "Idempotency-Keyなしは拒否されること",
		},
		{
			name: "不正なIdempotency-Key",
			buildRequest: func() request.CreateBookingRequest {
				return s.bookingRequest(futureSlot(2, 9), 4)
			},
			token:          func() string { return s.customerToken },
			idempotencyKey: "not-a-uuid",
			expectedStatus: http.StatusBadRequest,
			description:    "UUIDでないIdempotency-Keyは拒否されること",
		},
		{
			name: "未認証",
			buildRequest: func() request.CreateBookingRequest {
				return s.bookingRequest(futureSlot(2, 9), 4)
			},
			token:          func() string { return "" },
			idempotencyKey: uuid.New().String(),
			expectedStatus: http.StatusUnauthorized,
			description:    "未認証では予約できないこと",
		},
	}

	for _, tt := range tests {
		s.Run(tt.name, func() {
			t := s.T()

			w := performBooking(t, s.Router, tt.buildRequest(), tt.token(), tt.idempotencyKey)
			require.Equal(t, tt.expectedStatus, w.Code, "%s: %s", tt.description, w.Body.String())

			if tt.expectedStatus == http.StatusCreated {
				var res response.ReservationResponse
				err := helper.DecodeResponseBody(t, w.Body, &res)
				require.NoError(t, err)
				require.NotEmpty(t, res.ID, "予約IDが空")
				require.Equal(t, s.vehicleID, res.VehicleID)
				require.Equal(t, "pending", res.Status, "新規予約はpendingであるべき")
				require.Equal(t, "unpaid", res.PaymentStatus)
				require.Equal(t, int64(4*4500), res.TotalPriceCents, "時間単価×時間で金額が計算されるべき")
			}
		})
	}
}

func (s *bookingSuite) TestIdempotentReplay() {
	s.Run("同一キーの再送はリプレイされる", func() {
		t := s.T()

		key := uuid.New().String()
		reqBody := s.bookingRequest(futureSlot(3, 10), 2)

		w1 := performBooking(t, s.Router, reqBody, s.customerToken, key)
		require.Equal(t, http.StatusCreated, w1.Code, w1.Body.String())
		var first response.ReservationResponse
		require.NoError(t, helper.DecodeResponseBody(t, w1.Body, &first))

		w2 := performBooking(t, s.Router, reqBody, s.customerToken, key)
		require.Equal(t, http.StatusOK, w2.Code, "リプレイは200を返すべき")
		var second response.ReservationResponse
		require.NoError(t, helper.DecodeResponseBody(t, w2.Body, &second))

		require.Equal(t, first.ID, second.ID, "リプレイは同じ予約を返すべき")

		// 予約は1件だけ作成されていること
		var count int
		err := s.DB.QueryRow(t.Context(), "SELECT count(*) FROM reservations").Scan(&count)
		require.NoError(t, err)
		require.Equal(t, 1, count, "リプレイで予約が重複して作成された")
	})

	s.Run("同一キーで異なる内容は拒否される", func() {
		t := s.T()

		key := uuid.New().String()
		w1 := performBooking(t, s.Router, s.bookingRequest(futureSlot(3, 10), 2), s.customerToken, key)
		require.Equal(t, http.StatusCreated, w1.Code, w1.Body.String())

		w2 := performBooking(t, s.Router, s.bookingRequest(futureSlot(4, 10), 2), s.customerToken, key)
		require.Equal(t, http.StatusConflict, w2.Code, "同一キーで異なる内容は409を返すべき")
	})
}

func (s *bookingSuite) TestSlotConflict() {
	s.Run("重複スロットは拒否される", func() {
		t := s.T()

		w1 := performBooking(t, s.Router, s.bookingRequest(futureSlot(5, 9), 4), s.customerToken, uuid.New().String())
		require.Equal(t, http.StatusCreated, w1.Code, w1.Body.String())

		// 別の顧客が同じ車両の重なるスロットを予約
		w2 := performBooking(t, s.Router, s.bookingRequest(futureSlot(5, 11), 2), s.otherToken, uuid.New().String())
		require.Equal(t, http.StatusConflict, w2.Code, "重なるスロットは409を返すべき")
	})

	s.Run("隣接スロットは予約できる", func() {
		t := s.T()

		w1 := performBooking(t, s.Router, s.bookingRequest(futureSlot(5, 9), 2), s.customerToken, uuid.New().String())
		require.Equal(t, http.StatusCreated, w1.Code, w1.Body.String())

		// 終了時刻ちょうどから始まるスロットは重ならない
		w2 := performBooking(t, s.Router, s.bookingRequest(futureSlot(5, 11), 2), s.otherToken, uuid.New().String())
		require.Equal(t, http.StatusCreated, w2.Code, w2.Body.String())
	})

	s.Run("別の車両なら同じ時間帯でも予約できる", func() {
		t := s.T()

		w1 := performBooking(t, s.Router, s.bookingRequest(futureSlot(5, 9), 4), s.customerToken, uuid.New().String())
		require.Equal(t, http.StatusCreated, w1.Code, w1.Body.String())

		var otherVehicle uuid.UUID
		err := s.DB.QueryRow(t.Context(), "SELECT id FROM vehicles WHERE name = 'Caddy Cargo'").Scan(&otherVehicle)
		require.NoError(t, err)

		req := s.bookingRequest(futureSlot(5, 9), 4)
		req.VehicleID = otherVehicle
		w2 := performBooking(t, s.Router, req, s.otherToken, uuid.New().String())
		require.Equal(t, http.StatusCreated, w2.Code, w2.Body.String())
	})
}

func (s *bookingSuite) TestGetBooking() {
	s.Run("所有者は自分の予約を参照できる", func() {
		t := s.T()

		created := s.createBooking(t, s.customerToken, futureSlot(2, 9), 2)

		w := helper.PerformRequest(t, s.Router, http.MethodGet, fmt.Sprintf("%s/%s", bookingsURL, created.ID), nil, s.customerToken)
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())

		var res response.ReservationResponse
		require.NoError(t, helper.DecodeResponseBody(t, w.Body, &res))
		require.Equal(t, created.ID, res.ID)
		require.Equal(t, "Sprinter L2", res.VehicleName)
	})

	s.Run("他人の予約は見えない", func() {
		t := s.T()

		created := s.createBooking(t, s.customerToken, futureSlot(2, 9), 2)

		w := helper.PerformRequest(t, s.Router, http.MethodGet, fmt.Sprintf("%s/%s", bookingsURL, created.ID), nil, s.otherToken)
		require.Equal(t, http.StatusNotFound, w.Code, "他人の予約は404を返すべき")
	})

	s.Run("管理者は任意の予約を参照できる", func() {
		t := s.T()

		created := s.createBooking(t, s.customerToken, futureSlot(2, 9), 2)

		w := helper.PerformRequest(t, s.Router, http.MethodGet, fmt.Sprintf("/api/admin/reservations/%s", created.ID), nil, s.adminToken)
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	})

	s.Run("不正なIDは400を返す", func() {
		t := s.T()

		w := helper.PerformRequest(t, s.Router, http.MethodGet, bookingsURL+"/not-a-uuid", nil, s.customerToken)
		require.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func (s *bookingSuite) TestListBookings() {
	s.Run("カーソルページング", func() {
		t := s.T()

		for i := range 3 {
			s.createBooking(t, s.customerToken, futureSlot(6+i, 9), 2)
		}

		// 1ページ目
		w := helper.PerformRequest(t, s.Router, http.MethodGet, bookingsURL+"?limit=2", nil, s.customerToken)
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())

		var page1 response.ReservationPageResponse
		require.NoError(t, helper.DecodeResponseBody(t, w.Body, &page1))
		require.Len(t, page1.Items, 2)
		require.NotNil(t, page1.NextCursor, "続きがあるのにnextCursorがない")

		// 2ページ目
		w = helper.PerformRequest(t, s.Router, http.MethodGet, bookingsURL+"?limit=2&cursor="+*page1.NextCursor, nil, s.customerToken)
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())

		var page2 response.ReservationPageResponse
		require.NoError(t, helper.DecodeResponseBody(t, w.Body, &page2))
		require.Len(t, page2.Items, 1)
		require.Nil(t, page2.NextCursor, "最終ページはnextCursorを持たないべき")

		// ページ間で重複しないこと
		seen := map[uuid.UUID]bool{}
		for _, item := range append(page1.Items, page2.Items...) {
			require.False(t, seen[item.ID], "ページ間で予約が重複")
			seen[item.ID] = true
		}
	})

	s.Run("他人の予約は一覧に含まれない", func() {
		t := s.T()

		s.createBooking(t, s.customerToken, futureSlot(6, 9), 2)

		w := helper.PerformRequest(t, s.Router, http.MethodGet, bookingsURL, nil, s.otherToken)
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())

		var page response.ReservationPageResponse
		require.NoError(t, helper.DecodeResponseBody(t, w.Body, &page))
		require.Empty(t, page.Items, "他人の予約が一覧に含まれている")
	})

	s.Run("不正なカーソルは400を返す", func() {
		t := s.T()

		w := helper.PerformRequest(t, s.Router, http.MethodGet, bookingsURL+"?cursor=!!not-a-cursor!!", nil, s.customerToken)
		require.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func (s *bookingSuite) TestCancelBooking() {
	s.Run("待機中の予約はキャンセルできる", func() {
		t := s.T()

		created := s.createBooking(t, s.customerToken, futureSlot(2, 9), 2)

		w := helper.PerformRequest(t, s.Router, http.MethodPost, fmt.Sprintf("%s/%s/cancel", bookingsURL, created.ID), nil, s.customerToken)
		require.Equal(t, http.StatusNoContent, w.Code, w.Body.String())

		var status string
		err := s.DB.QueryRow(t.Context(), "SELECT status FROM reservations WHERE id = $1", created.ID).Scan(&status)
		require.NoError(t, err)
		require.Equal(t, "cancelled", status)
	})

	s.Run("キャンセル済みの予約は再キャンセルできない", func() {
		t := s.T()

		created := s.createBooking(t, s.customerToken, futureSlot(2, 9), 2)

		w := helper.PerformRequest(t, s.Router, http.MethodPost, fmt.Sprintf("%s/%s/cancel", bookingsURL, created.ID), nil, s.customerToken)
		require.Equal(t, http.StatusNoContent, w.Code)

		w = helper.PerformRequest(t, s.Router, http.MethodPost, fmt.Sprintf("%s/%s/cancel", bookingsURL, created.ID), nil, s.customerToken)
		require.Equal(t, http.StatusConflict, w.Code, "キャンセル済みの再キャンセルは409を返すべき")
	})

	s.Run("他人の予約はキャンセルできない", func() {
		t := s.T()

		created := s.createBooking(t, s.customerToken, futureSlot(2, 9), 2)

		w := helper.PerformRequest(t, s.Router, http.MethodPost, fmt.Sprintf("%s/%s/cancel", bookingsURL, created.ID), nil, s.otherToken)
		require.Equal(t, http.StatusNotFound, w.Code, "他人の予約のキャンセルは404を返すべき")
	})

	s.Run("キャンセル後のスロットは再予約できる", func() {
		t := s.T()

		created := s.createBooking(t, s.customerToken, futureSlot(2, 9), 2)

		w := helper.PerformRequest(t, s.Router, http.MethodPost, fmt.Sprintf("%s/%s/cancel", bookingsURL, created.ID), nil, s.customerToken)
		require.Equal(t, http.StatusNoContent, w.Code)

		w2 := performBooking(t, s.Router, s.bookingRequest(futureSlot(2, 9), 2), s.otherToken, uuid.New().String())
		require.Equal(t, http.StatusCreated, w2.Code, "キャンセル済みスロットは再予約できるべき")
	})
}

func (s *bookingSuite) createBooking(t *testing.T, token string, start time.Time, durationHours float64) *response.ReservationResponse {
	t.Helper()

	w := performBooking(t, s.Router, s.bookingRequest(start, durationHours), token, uuid.New().String())
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var res response.ReservationResponse
	require.NoError(t, helper.DecodeResponseBody(t, w.Body, &res))
	return &res
}
