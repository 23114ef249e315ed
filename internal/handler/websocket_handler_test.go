package handler

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	ledgerws "github.com/mrmbilling/royalty-ledger/internal/websocket"
	"github.com/stretchr/testify/assert"
)

type mockJWTValidator struct {
	subject string
	err     error
	token   string
}

func (m *mockJWTValidator) ValidateToken(ctx context.Context, token string) (ledgerws.Session, error) {
	m.token = token
	if m.err != nil {
		return ledgerws.Session{}, m.err
	}
	return ledgerws.Session{Subject: m.subject}, nil
}

var testAllowedOrigins = []string{"http://localhost:3000", "https://ledger.mrm.example"}

func TestWebSocketHandler_HandleWS_MissingToken(t *testing.T) {
	e := echo.New()
	validator := &mockJWTValidator{subject: "auth0|1"}
	h := NewWebSocketHandler(ledgerws.NewHub(), validator, testAllowedOrigins)

	req := httptest.NewRequest(http.MethodGet, "/ws", nil)
	c := e.NewContext(req, httptest.NewRecorder())

	err := h.HandleWS(c)

	var httpErr *echo.HTTPError
	assert.True(t, errors.As(err, &httpErr))
	assert.Equal(t, http.StatusUnauthorized, httpErr.Code)
	assert.Empty(t, validator.token)
}

func TestWebSocketHandler_HandleWS_InvalidToken(t *testing.T) {
	e := echo.New()
	validator := &mockJWTValidator{err: ledgerws.ErrInvalidToken}
	h := NewWebSocketHandler(ledgerws.NewHub(), validator, testAllowedOrigins)

	req := httptest.NewRequest(http.MethodGet, "/ws?token=invalid-jwt", nil)
	c := e.NewContext(req, httptest.NewRecorder())

	err := h.HandleWS(c)

	var httpErr *echo.HTTPError
	assert.True(t, errors.As(err, &httpErr))
	assert.Equal(t, http.StatusUnauthorized, httpErr.Code)
	assert.Equal(t, "invalid-jwt", validator.token)
}

func TestWebSocketHandler_HandleWS_ValidToken_NoUpgrade(t *testing.T) {
	e := echo.New()
	hub := ledgerws.NewHub()
	h := NewWebSocketHandler(hub, &mockJWTValidator{subject: "auth0|1"}, testAllowedOrigins)

	// Not an upgrade request, so auth passes and the upgrade fails
	req := httptest.NewRequest(http.MethodGet, "/ws?token=valid-jwt&clientId=MRM-1", nil)
	c := e.NewContext(req, httptest.NewRecorder())

	err := h.HandleWS(c)

	assert.Error(t, err)
	var httpErr *echo.HTTPError
	if errors.As(err, &httpErr) {
		assert.NotEqual(t, http.StatusUnauthorized, httpErr.Code)
	}
	assert.Equal(t, 0, hub.TotalClientCount())
}

func TestWebSocketHandler_CheckOrigin(t *testing.T) {
	h := NewWebSocketHandler(ledgerws.NewHub(), &mockJWTValidator{}, testAllowedOrigins)

	tests := []struct {
		name     string
		origin   string
		expected bool
	}{
		{"allowed origin", "http://localhost:3000", true},
		{"allowed origin https", "https://ledger.mrm.example", true},
		{"disallowed origin", "https://evil.com", false},
		{"no origin", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/ws", nil)
			if tt.origin != "" {
				req.Header.Set("Origin", tt.origin)
			}
			assert.Equal(t, tt.expected, h.checkOrigin(req))
		})
	}
}
