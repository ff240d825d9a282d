package handler

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/blood-donation-api/internal/middleware"
	"github.com/noah-isme/blood-donation-api/internal/models"
	appErrors "github.com/noah-isme/blood-donation-api/pkg/errors"
	"github.com/noah-isme/blood-donation-api/pkg/response"
)

type routerFixture struct {
	engine       *gin.Engine
	evaluations  *sessionServiceMock
	appointments *sessionServiceMock
	inventory    *inventoryServiceMock
	reports      *reportServiceMock
}

// testAuthenticate accepts any request carrying X-Test-Role and derives the claims from it.
func testAuthenticate(c *gin.Context) {
	role := models.Role(c.GetHeader("X-Test-Role"))
	if !role.Valid() {
		response.Error(c, appErrors.ErrUnauthorized)
		c.Abort()
		return
	}
	claims := &models.JWTClaims{AccountID: "acct-1", Role: role}
	if role == models.RoleHospital || role == models.RoleHospitalAdmin {
		claims.HospitalID = "hosp-1"
	}
	c.Set(middleware.ContextUserKey, claims)
	c.Next()
}

func newRouterFixture() *routerFixture {
	gin.SetMode(gin.TestMode)
	f := &routerFixture{
		engine:       gin.New(),
		evaluations:  &sessionServiceMock{},
		appointments: &sessionServiceMock{},
		inventory:    &inventoryServiceMock{},
		reports:      &reportServiceMock{},
	}
	RegisterRoutes(f.engine.Group("/api/v1"), Handlers{
		Auth:           NewAuthHandler(&authServiceMock{}),
		Donors:         NewDonorHandler(nil),
		Hospitals:      NewHospitalHandler(nil),
		HospitalAdmins: NewHospitalAdminHandler(nil),
		Managers:       NewManagerHandler(nil),
		Appointments:   NewSessionHandler(f.appointments),
		Evaluations:    NewSessionHandler(f.evaluations),
		Inventory:      NewInventoryHandler(f.inventory),
		Emergencies:    NewEmergencyHandler(nil),
		Feedback:       NewFeedbackHandler(nil),
		Inquiries:      NewInquiryHandler(nil),
		Reports:        NewReportHandler(f.reports),
	}, testAuthenticate)
	return f
}

func (f *routerFixture) do(method, path, role string, body []byte) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, bytes.NewReader(body))
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if role != "" {
		req.Header.Set("X-Test-Role", role)
	}
	w := httptest.NewRecorder()
	f.engine.ServeHTTP(w, req)
	return w
}

func TestRouterAuthentication(t *testing.T) {
	f := newRouterFixture()

	t.Run("protected route needs a token", func(t *testing.T) {
		w := f.do(http.MethodGet, "/api/v1/blood-inventory", "", nil)
		require.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("login is public", func(t *testing.T) {
		body, _ := json.Marshal(map[string]string{"email": "a@b.co", "password": "secret", "role": "Donor"})
		w := f.do(http.MethodPost, "/api/v1/auth/login", "", body)
		require.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("donor reads inventory", func(t *testing.T) {
		w := f.do(http.MethodGet, "/api/v1/blood-inventory?expiredStatus=Soon", string(models.RoleDonor), nil)
		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, models.ExpirySoon, f.inventory.lastFilter.ExpiredStatus)
	})
}

func TestRouterRoleGates(t *testing.T) {
	f := newRouterFixture()

	w := f.do(http.MethodPost, "/api/v1/manager", string(models.RoleHospitalAdmin), []byte(`{}`))
	require.Equal(t, http.StatusForbidden, w.Code)

	w = f.do(http.MethodPatch, "/api/v1/hospital/toggle-status", string(models.RoleHospital), []byte(`{"id":"hosp-1"}`))
	require.Equal(t, http.StatusForbidden, w.Code)

	w = f.do(http.MethodPost, "/api/v1/reports/generate", string(models.RoleDonor), []byte(`{"type":"inventory","format":"csv"}`))
	require.Equal(t, http.StatusForbidden, w.Code)

	w = f.do(http.MethodPost, "/api/v1/reports/generate", string(models.RoleManager), []byte(`{"type":"inventory","format":"csv"}`))
	require.Equal(t, http.StatusAccepted, w.Code)
	assert.Equal(t, models.ReportFormatCSV, f.reports.lastReq.Format)
}

func TestRouterSessionKindsAreSeparate(t *testing.T) {
	f := newRouterFixture()

	w := f.do(http.MethodPatch, "/api/v1/healthEvaluation/ev-1/cancelD", string(models.RoleDonor), nil)
	require.Equal(t, http.StatusOK, w.Code)
	w = f.do(http.MethodPatch, "/api/v1/blooddonationappointment/apt-1/arrived", string(models.RoleHospitalAdmin), []byte(`{"receiptNumber":"R-001"}`))
	require.Equal(t, http.StatusOK, w.Code)

	assert.Equal(t, []string{"cancelD"}, f.evaluations.calls)
	assert.Equal(t, []string{"arrive"}, f.appointments.calls)
	assert.Equal(t, "apt-1", f.appointments.lastID)
}

func TestRouterSummaryStaticRouteWinsOverID(t *testing.T) {
	f := newRouterFixture()
	f.inventory.summaryHit = true

	w := f.do(http.MethodGet, "/api/v1/blood-inventory/summary", string(models.RoleHospital), nil)
	require.Equal(t, http.StatusOK, w.Code)

	env := decodeEnvelope(t, w)
	assert.Equal(t, true, env.Meta["cache_hit"])
}
