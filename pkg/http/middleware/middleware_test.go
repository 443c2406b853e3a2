// Copyright 2025 Arcade Team
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package middleware

import (
	"context"
	"errors"
	"io"
	nethttp "net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/bytedance/sonic"
	"github.com/go-arcade/taskflow/pkg/apperrors"
	"github.com/go-arcade/taskflow/pkg/http"
	"github.com/go-arcade/taskflow/pkg/http/jwt"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "middleware-test-secret"

type memSessions map[string]string

func (m memSessions) Session(_ context.Context, userId string) (string, error) {
	return m[userId], nil
}

func newTestApp(sessions SessionStore, resolve Resolver) *fiber.App {
	app := fiber.New(fiber.Config{ErrorHandler: ErrorHandler})
	app.Use(ExceptionMiddleware)
	app.Use(UnifiedResponseMiddleware())
	app.Get("/me", AuthorizationMiddleware(testSecret, sessions, resolve), func(c *fiber.Ctx) error {
		c.Locals(DETAIL, c.Locals(CALLER))
		return nil
	})
	return app
}

func decodeErr(t *testing.T, resp *nethttp.Response) http.ResponseErr {
	t.Helper()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	var rep http.ResponseErr
	require.NoError(t, sonic.Unmarshal(body, &rep))
	return rep
}

func TestAuthorizationMiddleware(t *testing.T) {
	pair, err := jwt.GenToken("u1", []byte(testSecret), time.Hour, time.Hour)
	require.NoError(t, err)

	resolveOK := func(_ context.Context, claims *jwt.AuthClaims) (any, error) {
		return map[string]string{"id": claims.UserId}, nil
	}

	tests := []struct {
		name       string
		sessions   memSessions
		resolve    Resolver
		header     string
		query      string
		wantStatus int
		wantCode   int
	}{
		{name: "missing token", sessions: memSessions{}, resolve: resolveOK, wantStatus: 401, wantCode: http.TokenBeEmpty.Code},
		{name: "malformed header", sessions: memSessions{}, resolve: resolveOK, header: "Token abc", wantStatus: 401, wantCode: http.TokenBeEmpty.Code},
		{name: "garbage token", sessions: memSessions{}, resolve: resolveOK, header: "Bearer abc", wantStatus: 401, wantCode: http.InvalidToken.Code},
		{name: "no live session", sessions: memSessions{}, resolve: resolveOK, header: "Bearer " + pair.AccessToken, wantStatus: 401, wantCode: http.TokenExpired.Code},
		{name: "superseded session", sessions: memSessions{"u1": "other"}, resolve: resolveOK, header: "Bearer " + pair.AccessToken, wantStatus: 401, wantCode: http.TokenExpired.Code},
		{
			name:     "inactive caller",
			sessions: memSessions{"u1": pair.SessionId},
			resolve: func(context.Context, *jwt.AuthClaims) (any, error) {
				return nil, apperrors.Unauthorized("user is inactive")
			},
			header:     "Bearer " + pair.AccessToken,
			wantStatus: 401,
			wantCode:   http.Unauthorized.Code,
		},
		{
			name:     "resolver failure",
			sessions: memSessions{"u1": pair.SessionId},
			resolve: func(context.Context, *jwt.AuthClaims) (any, error) {
				return nil, errors.New("db down")
			},
			header:     "Bearer " + pair.AccessToken,
			wantStatus: 500,
			wantCode:   http.InternalError.Code,
		},
		{name: "header token", sessions: memSessions{"u1": pair.SessionId}, resolve: resolveOK, header: "Bearer " + pair.AccessToken, wantStatus: 200},
		{name: "query token", sessions: memSessions{"u1": pair.SessionId}, resolve: resolveOK, query: pair.AccessToken, wantStatus: 200},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app := newTestApp(tt.sessions, tt.resolve)
			target := "/me"
			if tt.query != "" {
				target += "?token=" + tt.query
			}
			req := httptest.NewRequest(nethttp.MethodGet, target, nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			resp, err := app.Test(req)
			require.NoError(t, err)
			assert.Equal(t, tt.wantStatus, resp.StatusCode)
			if tt.wantCode != 0 {
				assert.Equal(t, tt.wantCode, decodeErr(t, resp).ErrCode)
			}
		})
	}
}

func TestUnifiedResponseMiddleware(t *testing.T) {
	app := fiber.New(fiber.Config{ErrorHandler: ErrorHandler})
	app.Use(UnifiedResponseMiddleware())
	app.Get("/detail", func(c *fiber.Ctx) error {
		c.Locals(DETAIL, fiber.Map{"name": "alpha"})
		return nil
	})
	app.Get("/operation", func(c *fiber.Ctx) error {
		c.Locals(OPERATION, "42")
		return nil
	})
	app.Get("/conflict", func(c *fiber.Ctx) error {
		return http.WithAppErr(c, apperrors.Conflict("request already processed"))
	})

	resp, err := app.Test(httptest.NewRequest(nethttp.MethodGet, "/detail", nil))
	require.NoError(t, err)
	body, _ := io.ReadAll(resp.Body)
	var rep http.Response
	require.NoError(t, sonic.Unmarshal(body, &rep))
	assert.Equal(t, 200, rep.Code)
	assert.Equal(t, map[string]any{"name": "alpha"}, rep.Detail)

	resp, err = app.Test(httptest.NewRequest(nethttp.MethodGet, "/operation", nil))
	require.NoError(t, err)
	assert.Equal(t, 200, resp.StatusCode)

	resp, err = app.Test(httptest.NewRequest(nethttp.MethodGet, "/conflict", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusConflict, resp.StatusCode)
	rerr := decodeErr(t, resp)
	assert.Equal(t, http.Conflict.Code, rerr.ErrCode)
	assert.Equal(t, "request already processed", rerr.ErrMsg)
	assert.Equal(t, "/conflict", rerr.Path)
}

func TestExceptionMiddleware(t *testing.T) {
	app := fiber.New()
	app.Use(ExceptionMiddleware)
	app.Get("/panic", func(c *fiber.Ctx) error {
		panic("boom")
	})

	resp, err := app.Test(httptest.NewRequest(nethttp.MethodGet, "/panic", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusInternalServerError, resp.StatusCode)
	rerr := decodeErr(t, resp)
	assert.Equal(t, http.InternalError.Code, rerr.ErrCode)
	assert.Equal(t, http.InternalError.Msg, rerr.ErrMsg)
}

func TestRequestMiddleware(t *testing.T) {
	app := fiber.New()
	app.Use(RequestMiddleware())
	app.Get("/test", func(c *fiber.Ctx) error {
		return c.SendString(c.Locals(REQUEST_ID).(string))
	})

	req := httptest.NewRequest(nethttp.MethodGet, "/test", nil)
	req.Header.Set("X-Request-Id", "existing-request-id-12345")
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, "existing-request-id-12345", resp.Header.Get("X-Request-Id"))

	resp, err = app.Test(httptest.NewRequest(nethttp.MethodGet, "/test", nil))
	require.NoError(t, err)
	_, err = uuid.Parse(resp.Header.Get("X-Request-Id"))
	assert.NoError(t, err)
}

func TestSkipAccessLog(t *testing.T) {
	assert.True(t, skipAccessLog("/health"))
	assert.True(t, skipAccessLog("/ws"))
	assert.False(t, skipAccessLog("/api/tasks"))
}
