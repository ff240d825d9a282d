package models

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// LoginRequest holds credentials for authenticating an account of the given role.
type LoginRequest struct {
	Email     string `json:"email" validate:"required,email"`
	Password  string `json:"password" validate:"required"`
	Role      Role   `json:"role" validate:"required,oneof=Donor Hospital HospitalAdmin Manager"`
	IP        string `json:"-"`
	UserAgent string `json:"-"`
}

// RequestMeta describes the client of a request for audit purposes.
type RequestMeta struct {
	IP        string
	UserAgent string
}

// LoginResponse returns the issued tokens and account info.
type LoginResponse struct {
	AccessToken  string      `json:"access_token"`
	RefreshToken string      `json:"refresh_token"`
	ExpiresIn    int64       `json:"expires_in"`
	Account      AccountInfo `json:"account"`
	IssuedAt     time.Time   `json:"issued_at"`
}

// RefreshTokenRequest exchanges a refresh token for a new access token.
type RefreshTokenRequest struct {
	RefreshToken string `json:"refresh_token" validate:"required"`
	IP           string `json:"-"`
	UserAgent    string `json:"-"`
}

// RefreshTokenResponse returns the refreshed tokens.
type RefreshTokenResponse struct {
	AccessToken  string    `json:"access_token"`
	RefreshToken string    `json:"refresh_token"`
	ExpiresIn    int64     `json:"expires_in"`
	IssuedAt     time.Time `json:"issued_at"`
}

// LogoutRequest revokes a refresh token.
type LogoutRequest struct {
	RefreshToken string `json:"refresh_token" validate:"required"`
}

// AccountInfo describes the authenticated account in responses.
type AccountInfo struct {
	ID         string `json:"id"`
	Email      string `json:"email"`
	FullName   string `json:"full_name"`
	Role       Role   `json:"role"`
	HospitalID string `json:"hospital_id,omitempty"`
}

// JWTClaims represents the JWT payload for access tokens. It is the only session state;
// every request resolves its actor from these claims.
type JWTClaims struct {
	AccountID  string `json:"account_id"`
	Role       Role   `json:"role"`
	HospitalID string `json:"hospital_id,omitempty"`
	Email      string `json:"email"`
	FullName   string `json:"full_name"`
	jwt.RegisteredClaims
}

// Actor converts claims into the request identity.
func (c *JWTClaims) Actor() Actor {
	if c == nil {
		return Actor{}
	}
	return Actor{ID: c.AccountID, Role: c.Role, HospitalID: c.HospitalID}
}
