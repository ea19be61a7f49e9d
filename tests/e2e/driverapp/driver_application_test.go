//go:build e2e

package driverapp_test

import (
	"fmt"
	"net/http"
	"testing"

	"tandaro-api/internal/domain/user"
	"tandaro-api/internal/handler/dto/request"
	"tandaro-api/internal/handler/dto/response"
	"tandaro-api/tests/common/authtest"
	"tandaro-api/tests/common/dbtest"
	"tandaro-api/tests/common/helper"
	"tandaro-api/tests/e2e"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

const (
	applyURL      = "/api/driver-applications"
	adminAppsURL  = "/api/admin/driver-applications"
	applicantMail = "bewerber@example.com"
)

type driverAppSuite struct {
	e2e.SharedSuite

	adminToken string
}

func TestDriverApplicationSuite(t *testing.T) {
	t.Parallel()
	suite.Run(t, new(driverAppSuite))
}

func (s *driverAppSuite) SetupSubTest() {
	s.SharedSuite.SetupSubTest()
	s.adminToken = authtest.CreateAndLogin(s.T(), s.DB, s.Router, "admin@example.com", string(user.RoleAdmin))
}

func (s *driverAppSuite) apply(t *testing.T, email string) uuid.UUID {
	t.Helper()

	w := helper.PerformRequest(t, s.Router, http.MethodPost, applyURL,
		request.ApplyAsDriverRequest{
			Name:          "Jonas Weber",
			Email:         email,
			Phone:         "+49 172 3334455",
			LicenseNumber: "B072RRE2I55",
			Message:       "Fahre seit 8 Jahren Transporter.",
		}, "")
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var res struct {
		ID uuid.UUID `json:"id"`
	}
	require.NoError(t, helper.DecodeResponseBody(t, w.Body, &res))
	return res.ID
}

func (s *driverAppSuite) TestApply() {
	s.Run("認証なしで応募できる", func() {
		t := s.T()

		id := s.apply(t, applicantMail)

		w := helper.PerformRequest(t, s.Router, http.MethodGet,
			fmt.Sprintf("%s/%s", adminAppsURL, id), nil, s.adminToken)
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())

		var app response.DriverApplicationResponse
		require.NoError(t, helper.DecodeResponseBody(t, w.Body, &app))
		require.Equal(t, "pending", app.Status)
		require.Equal(t, applicantMail, app.Email)
		require.Nil(t, app.DecidedBy)
	})

	s.Run("不正なメールアドレスは400を返す", func() {
		t := s.T()

		w := helper.PerformRequest(t, s.Router, http.MethodPost, applyURL,
			request.ApplyAsDriverRequest{
				Name:          "X",
				Email:         "not-an-email",
				Phone:         "+49 172 3334455",
				LicenseNumber: "B072RRE2I55",
			}, "")
		require.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func (s *driverAppSuite) TestList() {
	s.Run("ステータスで絞り込める", func() {
		t := s.T()

		first := s.apply(t, "a@example.com")
		s.apply(t, "b@example.com")

		w := helper.PerformRequest(t, s.Router, http.MethodPost,
			fmt.Sprintf("%s/%s/reject", adminAppsURL, first), nil, s.adminToken)
		require.Equal(t, http.StatusNoContent, w.Code, w.Body.String())

		w = helper.PerformRequest(t, s.Router, http.MethodGet, adminAppsURL+"?status=pending", nil, s.adminToken)
		require.Equal(t, http.StatusOK, w.Code)

		var apps []*response.DriverApplicationResponse
		require.NoError(t, helper.DecodeResponseBody(t, w.Body, &apps))
		require.Len(t, apps, 1)
		require.Equal(t, "b@example.com", apps[0].Email)
	})

	s.Run("顧客は応募一覧を見られない", func() {
		t := s.T()

		customerToken := authtest.CreateAndLogin(t, s.DB, s.Router, "customer@example.com", string(user.RoleCustomer))

		w := helper.PerformRequest(t, s.Router, http.MethodGet, adminAppsURL, nil, customerToken)
		require.Equal(t, http.StatusForbidden, w.Code)
	})
}

func (s *driverAppSuite) TestApprove() {
	s.Run("承認で既存ユーザーがドライバーに昇格する", func() {
		t := s.T()

		// 応募者は既に顧客アカウントを持っている
		dbtest.CreateTestUser(t, s.DB, applicantMail, string(user.RoleCustomer))
		id := s.apply(t, applicantMail)

		w := helper.PerformRequest(t, s.Router, http.MethodPost,
			fmt.Sprintf("%s/%s/approve", adminAppsURL, id), nil, s.adminToken)
		require.Equal(t, http.StatusNoContent, w.Code, w.Body.String())

		var role string
		err := s.DB.QueryRow(t.Context(), "SELECT role FROM users WHERE email = $1", applicantMail).Scan(&role)
		require.NoError(t, err)
		require.Equal(t, string(user.RoleDriver), role, "承認された応募者はドライバーに昇格すべき")

		// 応募に決定者が記録される
		w = helper.PerformRequest(t, s.Router, http.MethodGet,
			fmt.Sprintf("%s/%s", adminAppsURL, id), nil, s.adminToken)
		require.Equal(t, http.StatusOK, w.Code)

		var app response.DriverApplicationResponse
		require.NoError(t, helper.DecodeResponseBody(t, w.Body, &app))
		require.Equal(t, "approved", app.Status)
		require.NotNil(t, app.DecidedBy)
		require.NotNil(t, app.DecidedAt)
	})

	s.Run("決定済みの応募は再決定できない", func() {
		t := s.T()

		id := s.apply(t, applicantMail)

		w := helper.PerformRequest(t, s.Router, http.MethodPost,
			fmt.Sprintf("%s/%s/reject", adminAppsURL, id), nil, s.adminToken)
		require.Equal(t, http.StatusNoContent, w.Code)

		w = helper.PerformRequest(t, s.Router, http.MethodPost,
			fmt.Sprintf("%s/%s/approve", adminAppsURL, id), nil, s.adminToken)
		require.Equal(t, http.StatusConflict, w.Code, "却下済みの応募の承認は409を返すべき")
	})

	s.Run("存在しない応募は404を返す", func() {
		t := s.T()

		w := helper.PerformRequest(t, s.Router, http.MethodPost,
			fmt.Sprintf("%s/%s/approve", adminAppsURL, uuid.New()), nil, s.adminToken)
		require.Equal(t, http.StatusNotFound, w.Code)
	})
}

func (s *driverAppSuite) TestDelete() {
	s.Run("応募を削除できる", func() {
		t := s.T()

		id := s.apply(t, applicantMail)

		w := helper.PerformRequest(t, s.Router, http.MethodDelete,
			fmt.Sprintf("%s/%s", adminAppsURL, id), nil, s.adminToken)
		require.Equal(t, http.StatusNoContent, w.Code, w.Body.String())

		w = helper.PerformRequest(t, s.Router, http.MethodGet,
			fmt.Sprintf("%s/%s", adminAppsURL, id), nil, s.adminToken)
		require.Equal(t, http.StatusNotFound, w.Code)
	})
}
