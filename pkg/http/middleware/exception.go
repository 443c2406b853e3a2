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
	"runtime/debug"

	"github.com/go-arcade/taskflow/pkg/http"
	"github.com/go-arcade/taskflow/pkg/log"
	"github.com/gofiber/fiber/v2"
)

// ExceptionMiddleware recovers panics and answers with a generic internal error.
func ExceptionMiddleware(c *fiber.Ctx) (err error) {
	defer func() {
		if r := recover(); r != nil {
			log.Errorw("panic recovered", "path", c.Path(), "panic", r, "stack", string(debug.Stack()))
			err = http.WithRepErrMsg(c, fiber.StatusInternalServerError, http.InternalError, "")
		}
	}()

	return c.Next()
}

// ErrorHandler is installed as fiber's error handler for errors returned by handlers.
func ErrorHandler(c *fiber.Ctx, err error) error {
	if fe, ok := err.(*fiber.Error); ok {
		rep := http.BadRequest
		switch fe.Code {
		case fiber.StatusNotFound:
			rep = http.NotFound
		case fiber.StatusUnauthorized:
			rep = http.Unauthorized
		case fiber.StatusForbidden:
			rep = http.Forbidden
		case fiber.StatusRequestEntityTooLarge, fiber.StatusMethodNotAllowed:
			rep = http.BadRequest
		default:
			if fe.Code >= fiber.StatusInternalServerError {
				rep = http.InternalError
			}
		}
		return http.WithRepErrMsg(c, fe.Code, rep, fe.Message)
	}
	log.Errorw("request failed", "path", c.Path(), "error", err)
	return http.WithAppErr(c, err)
}
