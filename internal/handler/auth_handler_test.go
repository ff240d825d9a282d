package handler

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/blood-donation-api/internal/models"
	appErrors "github.com/noah-isme/blood-donation-api/pkg/errors"
)

type authServiceMock struct {
	loginReq   models.LoginRequest
	loginErr   error
	logoutFor  models.Actor
	logoutReq  models.LogoutRequest
	meResponse *models.AccountInfo
}

func (m *authServiceMock) Login(_ context.Context, req models.LoginRequest) (*models.LoginResponse, error) {
	m.loginReq = req
	if m.loginErr != nil {
		return nil, m.loginErr
	}
	return &models.LoginResponse{AccessToken: "access", RefreshToken: "refresh"}, nil
}

func (m *authServiceMock) RefreshToken(_ context.Context, req models.RefreshTokenRequest) (*models.RefreshTokenResponse, error) {
	return &models.RefreshTokenResponse{AccessToken: "access-2", RefreshToken: "refresh-2"}, nil
}

func (m *authServiceMock) Logout(_ context.Context, actor models.Actor, req models.LogoutRequest) error {
	m.logoutFor = actor
	m.logoutReq = req
	return nil
}

func (m *authServiceMock) Me(_ context.Context, actor models.Actor) (*models.AccountInfo, error) {
	return m.meResponse, nil
}

func TestAuthHandlerLogin(t *testing.T) {
	svc := &authServiceMock{}
	h := NewAuthHandler(svc)

	c, w := newGinContext(http.MethodPost, "/auth/login", jsonBody(t, map[string]string{
		"email": "ana@example.com", "password": "secret123", "role": "Donor",
	}))
	c.Request.Header.Set("User-Agent", "test-agent")
	h.Login(c)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "ana@example.com", svc.loginReq.Email)
	assert.Equal(t, models.RoleDonor, svc.loginReq.Role)
	assert.Equal(t, "test-agent", svc.loginReq.UserAgent)
	assert.Contains(t, w.Body.String(), `"access_token":"access"`)
}

func TestAuthHandlerLoginErrors(t *testing.T) {
	h := NewAuthHandler(&authServiceMock{loginErr: appErrors.ErrInvalidCredentials})

	c, w := newGinContext(http.MethodPost, "/auth/login", jsonBody(t, map[string]string{"email": "a@b.c", "password": "x", "role": "Donor"}))
	h.Login(c)
	require.Equal(t, http.StatusUnauthorized, w.Code)

	c, w = newGinContext(http.MethodPost, "/auth/login", jsonBody(t, "not-an-object"))
	h.Login(c)
	require.Equal(t, http.StatusBadRequest, w.Code)
	require.Equal(t, "VALIDATION_ERROR", decodeEnvelope(t, w).Error.Code)
}

func TestAuthHandlerLogoutUsesActor(t *testing.T) {
	svc := &authServiceMock{}
	h := NewAuthHandler(svc)

	c, w := newGinContext(http.MethodPost, "/auth/logout", jsonBody(t, map[string]string{"refresh_token": "tok"}))
	withClaims(c, donorClaims)
	h.Logout(c)

	require.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "donor-1", svc.logoutFor.ID)
	assert.Equal(t, "tok", svc.logoutReq.RefreshToken)
}

func TestAuthHandlerMe(t *testing.T) {
	h := NewAuthHandler(&authServiceMock{meResponse: &models.AccountInfo{ID: "mgr-1", Email: "boss@example.com"}})

	c, w := newGinContext(http.MethodGet, "/auth/me", nil)
	h.Me(c)
	require.Equal(t, http.StatusUnauthorized, w.Code)

	c, w = newGinContext(http.MethodGet, "/auth/me", nil)
	withClaims(c, managerClaims)
	h.Me(c)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "boss@example.com")
}
