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

package http

import (
	"errors"

	"github.com/go-arcade/taskflow/pkg/apperrors"
	"github.com/gofiber/fiber/v2"
)

type ResponseErr struct {
	ErrCode int    `json:"code"`
	ErrMsg  any    `json:"errMsg"`
	Path    string `json:"path,omitempty"`
}

// WithRepErrMsg writes an error body with the given HTTP status.
func WithRepErrMsg(c *fiber.Ctx, status int, rep *Response, errMsg string) error {
	if errMsg == "" {
		errMsg = rep.Msg
	}
	return c.Status(status).JSON(ResponseErr{
		ErrCode: rep.Code,
		ErrMsg:  errMsg,
		Path:    c.Path(),
	})
}

// WithAppErr maps a service error to status, code and message.
// Errors that carry no known kind are reported as internal errors without detail.
func WithAppErr(c *fiber.Ctx, err error) error {
	status, rep := Classify(err)
	msg := rep.Msg
	if rep != InternalError {
		msg = apperrors.Message(err, rep.Msg)
	}
	return WithRepErrMsg(c, status, rep, msg)
}

// Classify returns the HTTP status and response code for err.
func Classify(err error) (int, *Response) {
	switch {
	case errors.Is(err, apperrors.ErrValidation):
		return fiber.StatusBadRequest, ValidationFailed
	case errors.Is(err, apperrors.ErrUnauthorized):
		return fiber.StatusUnauthorized, Unauthorized
	case errors.Is(err, apperrors.ErrForbidden):
		return fiber.StatusForbidden, Forbidden
	case errors.Is(err, apperrors.ErrNotFound):
		return fiber.StatusNotFound, NotFound
	case errors.Is(err, apperrors.ErrConflict):
		return fiber.StatusConflict, Conflict
	default:
		return fiber.StatusInternalServerError, InternalError
	}
}
