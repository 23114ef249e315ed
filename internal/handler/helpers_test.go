package handler

import (
	"context"
	"encoding/json"
	"io"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/auth0/go-jwt-middleware/v2/validator"
	"github.com/labstack/echo/v4"
	"github.com/mrmbilling/royalty-ledger/internal/middleware"
	"github.com/stretchr/testify/require"
)

// setupAuthContext puts validated claims for auth0ID on the request, as the auth middleware would
func setupAuthContext(c echo.Context, auth0ID, email string, roles ...string) {
	claims := &validator.ValidatedClaims{
		RegisteredClaims: validator.RegisteredClaims{Subject: auth0ID},
		CustomClaims:     &middleware.CustomClaims{Email: email, Roles: roles},
	}
	ctx := context.WithValue(c.Request().Context(), middleware.ClaimsKey, claims)
	ctx = context.WithValue(ctx, middleware.Auth0IDKey, auth0ID)
	c.SetRequest(c.Request().WithContext(ctx))
}

// newJSONContext builds an authenticated context for a request with an optional JSON body
func newJSONContext(e *echo.Echo, method, target, body string) (echo.Context, *httptest.ResponseRecorder) {
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, reader)
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	setupAuthContext(c, "auth0|accountant", "accounts@mrm.example", middleware.RoleAccountant)
	return c, rec
}

func decodeJSON(t *testing.T, rec *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), v), rec.Body.String())
}

func decodeProblem(t *testing.T, rec *httptest.ResponseRecorder) ProblemDetails {
	t.Helper()
	var p ProblemDetails
	decodeJSON(t, rec, &p)
	return p
}
