package handler

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/dentalcare-api/internal/middleware"
	"github.com/noah-isme/dentalcare-api/internal/models"
	appErrors "github.com/noah-isme/dentalcare-api/pkg/errors"
)

type authServiceMock struct {
	loginReq     models.LoginRequest
	loginErr     error
	logoutToken  string
	logoutUserID string
}

func (m *authServiceMock) Login(ctx context.Context, req models.LoginRequest) (*models.LoginResponse, error) {
	m.loginReq = req
	if m.loginErr != nil {
		return nil, m.loginErr
	}
	return &models.LoginResponse{TokenPair: models.TokenPair{AccessToken: "a", RefreshToken: "r"}}, nil
}

func (m *authServiceMock) RefreshToken(ctx context.Context, req models.RefreshTokenRequest) (*models.TokenPair, error) {
	return &models.TokenPair{AccessToken: "a2", RefreshToken: "r2"}, nil
}

func (m *authServiceMock) Logout(ctx context.Context, refreshToken, userID, ip, userAgent string) error {
	m.logoutToken = refreshToken
	m.logoutUserID = userID
	return nil
}

func TestAuthHandlerLogin(t *testing.T) {
	svc := &authServiceMock{}
	h := NewAuthHandler(svc)

	c, w := newTestContext(http.MethodPost, "/auth/login", `{"email":"front@clinic.test","password":"secret"}`)
	c.Request.Header.Set("User-Agent", "reception-pc")
	h.Login(c)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "front@clinic.test", svc.loginReq.Email)
	assert.Equal(t, "reception-pc", svc.loginReq.UserAgent)
	assert.Contains(t, w.Body.String(), `"access_token":"a"`)
}

func TestAuthHandlerLoginInvalidCredentials(t *testing.T) {
	h := NewAuthHandler(&authServiceMock{loginErr: appErrors.Clone(appErrors.ErrInvalidCredentials, "")})

	c, w := newTestContext(http.MethodPost, "/auth/login", `{"email":"front@clinic.test","password":"nope"}`)
	h.Login(c)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuthHandlerLogout(t *testing.T) {
	svc := &authServiceMock{}
	h := NewAuthHandler(svc)

	c, w := newTestContext(http.MethodPost, "/auth/logout", `{"refresh_token":"rt"}`)
	h.Logout(c)
	require.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "rt", svc.logoutToken)
	assert.Equal(t, "r1", svc.logoutUserID)

	c, w = newTestContext(http.MethodPost, "/auth/logout", `{}`)
	h.Logout(c)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	c, w = newTestContext(http.MethodPost, "/auth/logout", `{"refresh_token":"rt"}`)
	c.Keys = nil
	h.Logout(c)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuthHandlerMe(t *testing.T) {
	h := NewAuthHandler(&authServiceMock{})

	c, w := newTestContext(http.MethodGet, "/auth/me", "")
	c.Set(middleware.ContextUserKey, &models.JWTClaims{UserID: "d1", Role: models.RoleDentist, FullName: "Dr. Ruiz"})
	h.Me(c)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"role":"DENTIST"`)
}
