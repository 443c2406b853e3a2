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
	"strings"

	"github.com/go-arcade/taskflow/pkg/apperrors"
	"github.com/go-arcade/taskflow/pkg/http"
	"github.com/go-arcade/taskflow/pkg/http/jwt"
	"github.com/go-arcade/taskflow/pkg/log"
	"github.com/gofiber/fiber/v2"
	goJwt "github.com/golang-jwt/jwt/v5"
)

// SessionStore reports the session id currently bound to a user, "" when none.
type SessionStore interface {
	Session(ctx context.Context, userId string) (string, error)
}

// Resolver turns verified claims into the caller stored under CALLER.
// Returning an error wrapping apperrors.ErrUnauthorized rejects the request with 401.
type Resolver func(ctx context.Context, claims *jwt.AuthClaims) (any, error)

// AuthorizationMiddleware verifies the bearer credential, checks that its session is
// still live and resolves the caller. The credential is read from the Authorization
// header, falling back to the "token" query parameter for websocket upgrades.
func AuthorizationMiddleware(secretKey string, sessions SessionStore, resolve Resolver) fiber.Handler {
	return func(c *fiber.Ctx) error {
		token, ok := bearerToken(c)
		if !ok {
			return http.WithRepErrMsg(c, fiber.StatusUnauthorized, http.TokenBeEmpty, "")
		}

		claims, err := jwt.ParseToken(token, secretKey)
		if err != nil {
			if errors.Is(err, goJwt.ErrTokenExpired) {
				return http.WithRepErrMsg(c, fiber.StatusUnauthorized, http.TokenExpired, "")
			}
			log.Debugw("parse token failed", "error", err)
			return http.WithRepErrMsg(c, fiber.StatusUnauthorized, http.InvalidToken, "")
		}

		ctx := c.UserContext()
		sessionId, err := sessions.Session(ctx, claims.UserId)
		if err != nil {
			log.Errorw("session lookup failed", "userId", claims.UserId, "error", err)
			return http.WithRepErrMsg(c, fiber.StatusInternalServerError, http.InternalError, "")
		}
		if sessionId == "" || sessionId != claims.ID {
			return http.WithRepErrMsg(c, fiber.StatusUnauthorized, http.TokenExpired, "")
		}

		caller, err := resolve(ctx, claims)
		if err != nil {
			if errors.Is(err, apperrors.ErrUnauthorized) {
				return http.WithRepErrMsg(c, fiber.StatusUnauthorized, http.Unauthorized, apperrors.Message(err, ""))
			}
			log.Errorw("resolve caller failed", "userId", claims.UserId, "error", err)
			return http.WithRepErrMsg(c, fiber.StatusInternalServerError, http.InternalError, "")
		}

		c.Locals(CLAIMS, claims)
		c.Locals(CALLER, caller)
		return c.Next()
	}
}

func bearerToken(c *fiber.Ctx) (string, bool) {
	if header := c.Get(fiber.HeaderAuthorization); header != "" {
		parts := strings.SplitN(header, " ", 2)
		if len(parts) != 2 || parts[0] != "Bearer" || parts[1] == "" {
			return "", false
		}
		return parts[1], true
	}
	if token := c.Query("token"); token != "" {
		return token, true
	}
	return "", false
}
