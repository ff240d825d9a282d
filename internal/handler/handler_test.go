package handler

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/blood-donation-api/internal/middleware"
	"github.com/noah-isme/blood-donation-api/internal/models"
)

var (
	donorClaims    = &models.JWTClaims{AccountID: "donor-1", Role: models.RoleDonor}
	staffClaims    = &models.JWTClaims{AccountID: "admin-1", Role: models.RoleHospitalAdmin, HospitalID: "hosp-1"}
	managerClaims  = &models.JWTClaims{AccountID: "mgr-1", Role: models.RoleManager}
	hospitalClaims = &models.JWTClaims{AccountID: "hosp-1", Role: models.RoleHospital, HospitalID: "hosp-1"}
)

func newGinContext(method, target string, body io.Reader) (*gin.Context, *httptest.ResponseRecorder) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req := httptest.NewRequest(method, target, body)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	c.Request = req
	return c, w
}

func jsonBody(t *testing.T, v interface{}) io.Reader {
	t.Helper()
	data, err := json.Marshal(v)
	require.NoError(t, err)
	return bytes.NewReader(data)
}

func withClaims(c *gin.Context, claims *models.JWTClaims) {
	c.Set(middleware.ContextUserKey, claims)
}

type envelope struct {
	Data       json.RawMessage        `json:"data"`
	Error      *struct{ Code string } `json:"error"`
	Pagination *models.Pagination     `json:"pagination"`
	Meta       map[string]interface{} `json:"meta"`
}

func decodeEnvelope(t *testing.T, w *httptest.ResponseRecorder) envelope {
	t.Helper()
	var env envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	return env
}

func TestActorFromContextRejectsAnonymous(t *testing.T) {
	c, w := newGinContext(http.MethodGet, "/donor", nil)

	_, ok := actorFromContext(c)
	require.False(t, ok)
	require.Equal(t, http.StatusUnauthorized, w.Code)
	require.Equal(t, "UNAUTHORIZED", decodeEnvelope(t, w).Error.Code)
}

func TestPageRequestDefaults(t *testing.T) {
	c, _ := newGinContext(http.MethodGet, "/donor?page=3&page_size=500", nil)
	page := pageRequest(c)
	require.Equal(t, 3, page.Page)
	require.Equal(t, 20, page.PageSize)

	c, _ = newGinContext(http.MethodGet, "/donor?page=x", nil)
	require.Equal(t, 1, pageRequest(c).Page)
}

func TestBoolQuery(t *testing.T) {
	c, _ := newGinContext(http.MethodGet, "/hospital?active=false", nil)
	active := boolQuery(c, "active")
	require.NotNil(t, active)
	require.False(t, *active)

	c, _ = newGinContext(http.MethodGet, "/hospital?active=maybe", nil)
	require.Nil(t, boolQuery(c, "active"))
}
