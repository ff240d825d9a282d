package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/blood-donation-api/internal/models"
	"github.com/noah-isme/blood-donation-api/internal/service"
	appErrors "github.com/noah-isme/blood-donation-api/pkg/errors"
)

type validatorStub map[string]*models.JWTClaims

func (v validatorStub) ValidateToken(token string) (*models.JWTClaims, error) {
	if claims, ok := v[token]; ok {
		return claims, nil
	}
	return nil, appErrors.Clone(appErrors.ErrUnauthorized, "invalid token")
}

var tokens = validatorStub{
	"donor-token":   {AccountID: "donor-1", Role: models.RoleDonor},
	"manager-token": {AccountID: "mgr-1", Role: models.RoleManager},
}

func newRouter(handlers ...gin.HandlerFunc) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	handlers = append(handlers, func(c *gin.Context) {
		claims, _ := Claims(c)
		role := ""
		if claims != nil {
			role = string(claims.Role)
		}
		c.JSON(http.StatusOK, gin.H{"role": role})
	})
	r.GET("/protected", handlers...)
	return r
}

func do(r http.Handler, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestJWTRequiresValidBearer(t *testing.T) {
	r := newRouter(JWT(tokens))

	assert.Equal(t, http.StatusUnauthorized, do(r, "").Code)
	assert.Equal(t, http.StatusUnauthorized, do(r, "forged").Code)

	w := do(r, "donor-token")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"role":"Donor"`)

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Basic abc")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestRequireRoles(t *testing.T) {
	r := newRouter(JWT(tokens), RequireRoles(models.RoleManager))
	assert.Equal(t, http.StatusForbidden, do(r, "donor-token").Code)
	assert.Equal(t, http.StatusOK, do(r, "manager-token").Code)

	bare := newRouter(RequireRoles(models.RoleManager))
	assert.Equal(t, http.StatusUnauthorized, do(bare, "manager-token").Code)
}

func TestAuditContextStoresClientDetails(t *testing.T) {
	gin.SetMode(gin.TestMode)
	var got models.RequestMeta
	r := gin.New()
	r.Use(AuditContext())
	r.POST("/inventory", func(c *gin.Context) {
		got = service.RequestMetaFrom(c.Request.Context())
		c.Status(http.StatusCreated)
	})

	req := httptest.NewRequest(http.MethodPost, "/inventory", nil)
	req.Header.Set("User-Agent", "audit-test")
	req.RemoteAddr = "10.0.0.7:5555"
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, "audit-test", got.UserAgent)
	assert.Equal(t, "10.0.0.7", got.IP)
}

func TestResponseMeta(t *testing.T) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	assert.Nil(t, ExtractMeta(c))
	SetCacheHit(c, true)
	SetMeta(c, "scope", "h-1")
	meta := ExtractMeta(c)
	assert.Equal(t, true, meta["cache_hit"])
	assert.Equal(t, "h-1", meta["scope"])
}
