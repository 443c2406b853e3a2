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

const (
	// DETAIL carries a response payload, e.g. c.Locals(DETAIL, value)
	DETAIL = "detail"

	// OPERATION marks a successful operation without payload, e.g. c.Locals(OPERATION, id)
	OPERATION = "operation"

	// CLAIMS holds the parsed *jwt.AuthClaims of the request
	CLAIMS = "claims"

	// CALLER holds whatever the identity resolver returned for the request
	CALLER = "caller"

	REQUEST_ID = "request_id"
)
