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

var (
	Failed                        = failed(500, "Request failed")
	InternalError                 = failed(5000, "Internal error, please contact the administrator")
	RequestParameterParsingFailed = failed(4001, "Request parameter parsing failed")

	// BadRequest 400
	BadRequest       = failed(4000, "Bad request")
	ValidationFailed = failed(4002, "Validation failed")

	// Unauthorized 401
	Unauthorized         = failed(4401, "Unauthorized")
	AuthenticationFailed = failed(4402, "Authentication failed")
	InvalidToken         = failed(4405, "Invalid token")
	TokenBeEmpty         = failed(4406, "Token cannot be empty")
	TokenExpired         = failed(4407, "Token is expired")
	UserInactive         = failed(4408, "User is inactive")

	// Forbidden 403
	Forbidden        = failed(4030, "Forbidden")
	PermissionDenied = failed(4031, "Permission denied")

	// NotFound 404
	NotFound = failed(4004, "Not found")

	// Conflict 409
	Conflict = failed(4090, "Conflict")

	UserIncorrectPassword  = failed(4043, "User incorrect password")
	EmailPasswordRequired  = failed(4045, "Email and password are required")
	UploadFileIsRequired   = failed(4046, "File is required")
	ProjectIdIsEmpty       = failed(4047, "Project id is empty")
	DelegationActionFailed = failed(4048, "Delegation action must be accept or reject")
)

var (
	Success = success(200, "Request Success")
)

func failed(code int, msg string) *Response {
	return &Response{
		Code: code,
		Msg:  msg,
	}
}

func success(code int, msg string) *Response {
	return &Response{
		Code: code,
		Msg:  msg,
	}
}
